package order

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mycontext"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myerrors"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myhttp"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mylog"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myqueue"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mystore"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mytime"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/cart"
)

type service struct {
	orderStore  mystore.Store[Order]
	cartFetcher cart.Accessor
	queuer      myqueue.TaskQueuer
	nower       mytime.Nower
	logger      mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(orderStore mystore.Store[Order], cartFetcher cart.Accessor, queuer myqueue.TaskQueuer, nower mytime.Nower) *service {
	return &service{
		orderStore:  orderStore,
		cartFetcher: cartFetcher,
		queuer:      queuer,
		nower:       nower,
		logger:      mylog.New("order"),
	}
}

func (s *service) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/order", s.listOrdersPage()).Methods("GET")
	router.HandleFunc("/api/order/{orderUID}", s.getOrderPage()).Methods("GET")
	router.HandleFunc("/api/order/{orderUID}/reconcile", s.reconcileOrderPage()).Methods("PUT")
}

func (s *service) Commit(c context.Context, order Order) error {
	return s.orderStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent: the uid comes from the pricing gateway so a
		// retried commit overwrites the same record
		existing, found, err := s.orderStore.Get(c, order.UID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", order.UID, err))
		}
		// a failed-attempt record never blocks the real commit: the payment
		// gateway reuses the order uid when the shopper retries the same handle
		if found && !existing.NeedsReconciliation && existing.Status != StatusPaymentFailed {
			s.logger.Log(c, order.UID, mylog.SeverityInfo, "Order %s already committed", order.UID)
			return nil
		}

		err = s.orderStore.Put(c, order.UID, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order %s: %s", order.UID, err))
		}

		s.logger.Log(c, order.UID, mylog.SeverityInfo, "Committed order %s (%s) for shopper %s",
			order.UID, order.Status, order.ShopperUID)

		return nil
	})
}

// RequestReconciliation persists the order marked for repair and schedules a
// background retry. It is called after money has moved, so it must leave a
// durable trace even when the main commit path failed.
func (s *service) RequestReconciliation(c context.Context, order Order) error {
	order.NeedsReconciliation = true

	err := s.orderStore.Put(c, order.UID, order)
	if err != nil {
		// the queue task below still carries the uid, so the repair can
		// be picked up even without the record
		s.logger.Log(c, order.UID, mylog.SeverityError, "Error storing order %s for reconciliation: %s", order.UID, err)
	}

	err = s.queuer.Enqueue(c, myqueue.Task{
		UID:            "reconcile-" + order.UID,
		WebhookURLPath: fmt.Sprintf("/api/order/%s/reconcile", order.UID),
		Payload:        []byte{},
	})
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error enqueuing reconciliation of order %s: %s", order.UID, err))
	}

	s.logger.Log(c, order.UID, mylog.SeverityWarn, "Scheduled reconciliation of order %s", order.UID)

	return nil
}

func (s *service) reconcileOrder(c context.Context, orderUID string) error {
	return s.orderStore.RunInTransaction(c, func(c context.Context) error {
		order, found, err := s.orderStore.Get(c, orderUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching order %s: %s", orderUID, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("order with uid %s not found", orderUID))
		}
		if !order.NeedsReconciliation {
			return nil
		}

		err = s.cartFetcher.Clear(c, order.CartUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error clearing cart %s of order %s: %s", order.CartUID, orderUID, err))
		}

		now := s.nower.Now()
		order.NeedsReconciliation = false
		order.LastModified = &now

		err = s.orderStore.Put(c, order.UID, order)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing order %s: %s", orderUID, err))
		}

		s.logger.Log(c, orderUID, mylog.SeverityInfo, "Reconciled order %s", orderUID)

		return nil
	})
}

func (s *service) getOrderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		orderUID := mux.Vars(r)["orderUID"]

		order, found, err := s.orderStore.Get(c, orderUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}
		if !found {
			responseWriter.WriteError(c, w, 2, myerrors.NewNotFoundError(fmt.Errorf("order with uid %s not found", orderUID)))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, order)
	}
}

func (s *service) listOrdersPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		shopperUID := r.Header.Get("X-Shopper-UID")
		if shopperUID == "" {
			responseWriter.WriteError(c, w, 1, myerrors.NewAuthenticationError(fmt.Errorf("missing shopper uid")))
			return
		}

		orders, err := s.orderStore.Query(c,
			[]mystore.Filter{{Field: "ShopperUID", Compare: "=", Value: shopperUID}}, "-CreatedAt")
		if err != nil {
			responseWriter.WriteError(c, w, 2, myerrors.NewInternalError(err))
			return
		}

		responseWriter.Write(c, w, http.StatusOK, orders)
	}
}

func (s *service) reconcileOrderPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		orderUID := mux.Vars(r)["orderUID"]

		err := s.reconcileOrder(c, orderUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: fmt.Sprintf("order %s reconciled", orderUID)})
	}
}
