package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mycontext"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myerrors"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myhttp"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mylog"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mypubsub"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mystore"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mytime"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myuuid"
)

type service struct {
	cartStore  mystore.Store[Cart]
	subscriber mypubsub.PubSub
	logger     mylog.Logger
	nower      mytime.Nower
	uuider     myuuid.UUIDer
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(cartStore mystore.Store[Cart], subscriber mypubsub.PubSub, nower mytime.Nower, uuider myuuid.UUIDer) *service {
	return &service{
		cartStore:  cartStore,
		subscriber: subscriber,
		logger:     mylog.New("cart"),
		nower:      nower,
		uuider:     uuider,
	}
}

func (s *service) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/cart", s.createCartPage()).Methods("POST")
	router.HandleFunc("/api/cart/{cartUID}", s.cartDetailsPage()).Methods("GET")
	router.HandleFunc("/api/cart/{cartUID}/item", s.addItemPage()).Methods("POST")
	router.HandleFunc("/api/cart/{cartUID}/item/{itemUID}", s.removeItemPage()).Methods("DELETE")
	router.HandleFunc("/api/cart/event", s.eventPage()).Methods("POST")

	return s.Subscribe(c)
}

// ReadItems implements the Accessor capability consumed by the checkout core.
func (s *service) ReadItems(c context.Context, cartUID string) ([]Item, error) {
	cart, found, err := s.cartStore.Get(c, cartUID)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %s", cartUID, err))
	}
	if !found {
		return nil, myerrors.NewNotFoundError(fmt.Errorf("cart with uid %s not found", cartUID))
	}
	return cart.Items, nil
}

// Clear implements the Accessor capability. Only the checkout core calls it,
// and only after an order has been durably recorded.
func (s *service) Clear(c context.Context, cartUID string) error {
	return s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, found, err := s.cartStore.Get(c, cartUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %s", cartUID, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("cart with uid %s not found", cartUID))
		}

		cart.Items = nil
		cart.LastModified = s.nower.Now()

		err = s.cartStore.Put(c, cartUID, cart)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Cleared cart %s", cartUID)

		return nil
	})
}

func (s *service) createCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		now := s.nower.Now()
		cart := Cart{
			UID:          s.uuider.Create(),
			ShopperUID:   r.Header.Get("X-Shopper-UID"),
			CreatedAt:    now,
			LastModified: now,
			Items:        []Item{},
		}

		s.logger.Log(c, cart.UID, mylog.SeverityInfo, "Creating new cart with uid %s", cart.UID)

		err := s.cartStore.Put(c, cart.UID, cart)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, cart)
	}
}

func (s *service) cartDetailsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		cart, found, err := s.cartStore.Get(c, cartUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("cart with uid %s not found", cartUID)))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, cart)
	}
}

func (s *service) addItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		item, err := parseItem(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		var cart Cart
		err = s.cartStore.RunInTransaction(c, func(c context.Context) error {
			var found bool
			cart, found, err = s.cartStore.Get(c, cartUID)
			if err != nil {
				return myerrors.NewInternalError(err)
			}
			if !found {
				return myerrors.NewNotFoundError(fmt.Errorf("cart with uid %s not found", cartUID))
			}

			cart.Items = upsertItem(cart.Items, item)
			cart.LastModified = s.nower.Now()

			return s.cartStore.Put(c, cartUID, cart)
		})
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Added item %s (qty %d) to cart %s", item.ID, item.Quantity, cartUID)

		errorWriter.Write(c, w, http.StatusOK, cart)
	}
}

func (s *service) removeItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		itemUID := mux.Vars(r)["itemUID"]

		var cart Cart
		err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
			var found bool
			var err error
			cart, found, err = s.cartStore.Get(c, cartUID)
			if err != nil {
				return myerrors.NewInternalError(err)
			}
			if !found {
				return myerrors.NewNotFoundError(fmt.Errorf("cart with uid %s not found", cartUID))
			}

			cart.Items = removeItem(cart.Items, itemUID)
			cart.LastModified = s.nower.Now()

			return s.cartStore.Put(c, cartUID, cart)
		})
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, cart)
	}
}

func parseItem(r *http.Request) (Item, error) {
	err := r.ParseForm()
	if err != nil {
		return Item{}, myerrors.NewInvalidInputError(err)
	}

	quantity := 1
	if r.Form.Get("quantity") != "" {
		_, err = fmt.Sscanf(r.Form.Get("quantity"), "%d", &quantity)
		if err != nil {
			return Item{}, myerrors.NewInvalidInputErrorf("invalid quantity '%s'", r.Form.Get("quantity"))
		}
	}

	unitPrice, err := decimal.NewFromString(r.Form.Get("unitPrice"))
	if err != nil {
		return Item{}, myerrors.NewInvalidInputErrorf("invalid unitPrice '%s'", r.Form.Get("unitPrice"))
	}

	item := Item{
		ID:        r.Form.Get("id"),
		Title:     r.Form.Get("title"),
		UnitPrice: unitPrice,
		Quantity:  quantity,
		ImageURL:  r.Form.Get("imageUrl"),
	}
	if !item.Valid() {
		return Item{}, myerrors.NewInvalidInputErrorf("invalid item: id, quantity >= 1 and non-negative unitPrice are mandatory")
	}

	return item, nil
}

func upsertItem(items []Item, item Item) []Item {
	for i, existing := range items {
		if existing.ID == item.ID {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

func removeItem(items []Item, itemUID string) []Item {
	result := make([]Item, 0, len(items))
	for _, existing := range items {
		if existing.ID != itemUID {
			result = append(result, existing)
		}
	}
	return result
}
