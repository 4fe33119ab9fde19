package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mypublisher"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mypubsub"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myqueue"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mystore"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mytime"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myuuid"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myvault"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/addressbook"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/cart"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkout"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/order"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/payment"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/paymentmollie"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/paymentstripe"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/pricing"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	cartService, cartCleanup := createCartService(c, router, pubsub, nower, uuider)
	defer cartCleanup()

	addressbookService, addressbookCleanup := createAddressbookService(c, router, nower, uuider)
	defer addressbookCleanup()

	orderService, orderCleanup := createOrderService(c, router, cartService, queue, nower)
	defer orderCleanup()

	confirmer, vaultCleanup := createPaymentConfirmer(c)
	defer vaultCleanup()

	checkoutCleanup := createCheckoutService(c, router, cartService, addressbookService, confirmer, orderService, publisher, nower, uuider)
	defer checkoutCleanup()

	startWebServerBlocking(router)
}

func createCartService(c context.Context, router *mux.Router, subscriber mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) (cart.Accessor, func()) {
	cartStore, cleanup, err := mystore.New[cart.Cart](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}

	service := cart.NewService(cartStore, subscriber, nower, uuider)
	err = service.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart service: %s", err)
	}

	return service, cleanup
}

func createAddressbookService(c context.Context, router *mux.Router, nower mytime.Nower, uuider myuuid.UUIDer) (addressbook.Resolver, func()) {
	entryStore, cleanup, err := mystore.New[addressbook.Entry](c)
	if err != nil {
		log.Fatalf("Error creating addressbook store: %s", err)
	}

	service := addressbook.NewService(entryStore, nower, uuider)
	service.RegisterEndpoints(c, router)

	return service, cleanup
}

func createOrderService(c context.Context, router *mux.Router, carts cart.Accessor, queue myqueue.TaskQueuer, nower mytime.Nower) (order.Committer, func()) {
	orderStore, cleanup, err := mystore.New[order.Order](c)
	if err != nil {
		log.Fatalf("Error creating order store: %s", err)
	}

	service := order.NewService(orderStore, carts, queue, nower)
	service.RegisterEndpoints(c, router)

	return service, cleanup
}

// createPaymentConfirmer picks the configured payment provider. Credentials
// come from the environment first and the vault second. Without either, the
// deployment runs in demo mode: checkouts complete with non-payment orders.
func createPaymentConfirmer(c context.Context) (payment.Confirmer, func()) {
	vault, cleanup, err := myvault.New[myvault.Credentials](c)
	if err != nil {
		log.Fatalf("Error creating vault: %s", err)
	}

	provider := os.Getenv("PAYMENT_PROVIDER")
	stripeKey := os.Getenv("STRIPE_API_KEY")
	mollieKey := os.Getenv("MOLLIE_API_KEY")

	if stripeKey == "" && mollieKey == "" {
		creds, exists, err := vault.Get(c, myvault.CurrentCredentials)
		if err != nil {
			log.Fatalf("Error reading vault: %s", err)
		}
		if exists {
			provider = creds.ProviderName
			switch creds.ProviderName {
			case "stripe":
				stripeKey = creds.APIKey
			case "mollie":
				mollieKey = creds.APIKey
			}
		}
	}

	switch {
	case provider == "mollie" || (provider == "" && mollieKey != ""):
		if mollieKey == "" {
			log.Fatalf("Payment provider mollie selected without MOLLIE_API_KEY")
		}
		payer, err := paymentmollie.NewPayer()
		if err != nil {
			log.Fatalf("Error creating mollie payer: %s", err)
		}
		log.Printf("Payments are confirmed via mollie")
		return paymentmollie.NewConfirmer(mollieKey, payer), cleanup

	case provider == "stripe" || (provider == "" && stripeKey != ""):
		if stripeKey == "" {
			log.Fatalf("Payment provider stripe selected without STRIPE_API_KEY")
		}
		log.Printf("Payments are confirmed via stripe")
		return paymentstripe.NewConfirmer(stripeKey, paymentstripe.NewPayer()), cleanup

	default:
		log.Printf("#####################################################################")
		log.Printf("## NO PAYMENT PROVIDER CONFIGURED: RUNNING IN DEMO MODE            ##")
		log.Printf("## Every completed checkout records a non-payment demo order.      ##")
		log.Printf("## Set STRIPE_API_KEY or MOLLIE_API_KEY to take real payments.     ##")
		log.Printf("#####################################################################")
		return nil, cleanup
	}
}

func createCheckoutService(c context.Context, router *mux.Router, carts cart.Accessor, addresses addressbook.Resolver,
	confirmer payment.Confirmer, orders order.Committer, publisher mypublisher.Publisher,
	nower mytime.Nower, uuider myuuid.UUIDer) func() {
	sessionStore, cleanup, err := mystore.New[checkout.Session](c)
	if err != nil {
		log.Fatalf("Error creating checkout session store: %s", err)
	}

	gatewayURL := os.Getenv("PRICING_GATEWAY_URL")
	if gatewayURL == "" {
		gatewayURL = "http://localhost:8081"
	}
	gateway := pricing.NewClient(gatewayURL)

	service := checkout.NewService(sessionStore, carts, addresses, gateway, confirmer, orders, publisher, nower, uuider)
	err = service.CreateTopics(c)
	if err != nil {
		log.Fatalf("Error creating checkout topics: %s", err)
	}
	service.RegisterEndpoints(c, router)

	return cleanup
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
