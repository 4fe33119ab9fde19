package cart

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mycontext"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myerrors"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myhttp"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mylog"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutevents"
)

// The cart tracks checkout progress for display purposes only: clearing on
// success stays a synchronous call from the checkout core, never an event.

func (s *service) Subscribe(c context.Context) error {
	err := s.subscriber.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	err = s.subscriber.Subscribe(c, checkoutevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/cart/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) eventPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		err := checkoutevents.DispatchEvent(c, r.Body, s)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: "event processed"})
	}
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	return s.annotateCart(c, event.CartUID, "checkout_started", "")
}

func (s *service) OnCheckoutCompleted(c context.Context, topic string, event checkoutevents.CheckoutCompleted) error {
	return s.annotateCart(c, event.CartUID, event.Status, event.OrderUID)
}

func (s *service) OnOrderCommitFailed(c context.Context, topic string, event checkoutevents.OrderCommitFailed) error {
	// no cart uid on this event, nothing to annotate
	return nil
}

func (s *service) annotateCart(c context.Context, cartUID string, status string, orderUID string) error {
	return s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, found, err := s.cartStore.Get(c, cartUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %s", cartUID, err))
		}
		if !found {
			// cart may have been removed, events about it are stale
			return nil
		}

		cart.CheckoutStatus = status
		if orderUID != "" {
			cart.OrderUID = orderUID
		}
		cart.LastModified = s.nower.Now()

		err = s.cartStore.Put(c, cartUID, cart)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Annotated cart %s with checkout status %s", cartUID, status)

		return nil
	})
}
