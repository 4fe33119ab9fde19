package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myerrors"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mylog"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mypublisher"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mystore"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mytime"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myuuid"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/addressbook"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/cart"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutevents"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/order"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/payment"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/pricing"
)

type service struct {
	sessionStore mystore.Store[Session]
	carts        cart.Accessor
	addresses    addressbook.Resolver
	gateway      pricing.Gateway
	// confirmer is nil when no payment provider is configured: every
	// completed checkout then records a demo order instead of a paid one
	confirmer payment.Confirmer
	orders    order.Committer
	publisher mypublisher.Publisher
	nower     mytime.Nower
	uuider    myuuid.UUIDer
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(sessionStore mystore.Store[Session], carts cart.Accessor, addresses addressbook.Resolver,
	gateway pricing.Gateway, confirmer payment.Confirmer, orders order.Committer,
	publisher mypublisher.Publisher, nower mytime.Nower, uuider myuuid.UUIDer) *service {
	return &service{
		sessionStore: sessionStore,
		carts:        carts,
		addresses:    addresses,
		gateway:      gateway,
		confirmer:    confirmer,
		orders:       orders,
		publisher:    publisher,
		nower:        nower,
		uuider:       uuider,
		logger:       mylog.New("checkout"),
	}
}

func (s *service) CreateTopics(c context.Context) error {
	return s.publisher.CreateTopic(c, checkoutevents.TopicName)
}

func (s *service) start(c context.Context, cartUID string, shopperUID string, email string) (Session, error) {
	items, err := s.carts.ReadItems(c, cartUID)
	if err != nil {
		return Session{}, myerrors.NewInternalError(fmt.Errorf("error reading cart %s: %s", cartUID, err))
	}
	if len(items) == 0 {
		return Session{}, myerrors.NewInvalidInputError(fmt.Errorf("cart %s is empty", cartUID))
	}

	now := s.nower.Now()
	session := Session{
		UID:          s.uuider.Create(),
		CartUID:      cartUID,
		CreatedAt:    now,
		Step:         StepAccount,
		FurthestStep: StepAccount,
		Items:        items,
	}

	if shopperUID != "" {
		// identity is fixed at session start for signed-in shoppers
		session, err = apply(session, identityResolved{identity: checkoutapi.Authenticated(shopperUID, email)})
		if err != nil {
			return Session{}, asHTTPError(err)
		}

		session, err = s.autoSelectDefaultAddress(c, session)
		if err != nil {
			return Session{}, err
		}
	}

	err = s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		err := s.sessionStore.Put(c, session.UID, session)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing checkout session: %s", err))
		}

		return s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			SessionUID: session.UID,
			CartUID:    cartUID,
			ShopperUID: shopperUID,
			Email:      email,
			IsGuest:    shopperUID == "",
		})
	})
	if err != nil {
		return Session{}, err
	}

	s.logger.Log(c, session.UID, mylog.SeverityInfo, "Started checkout %s for cart %s", session.UID, cartUID)

	return session, nil
}

func (s *service) autoSelectDefaultAddress(c context.Context, session Session) (Session, error) {
	entries, err := s.addresses.ListForShopper(c, session.Identity.UserID)
	if err != nil {
		// a missing address book never blocks checkout entry
		s.logger.Log(c, session.UID, mylog.SeverityWarn, "Error loading address book of shopper %s: %s", session.Identity.UserID, err)
		return session, nil
	}
	if len(entries) == 0 || !entries[0].IsDefault {
		return session, nil
	}

	session, err = apply(session, addressEntered{
		address:      entries[0].Address,
		mode:         AddressModeSaved,
		savedUID:     entries[0].UID,
		autoSelected: true,
	})
	if err != nil {
		return Session{}, asHTTPError(err)
	}
	return session, nil
}

func (s *service) getSession(c context.Context, sessionUID string) (Session, error) {
	session, found, err := s.sessionStore.Get(c, sessionUID)
	if err != nil {
		return Session{}, myerrors.NewInternalError(fmt.Errorf("error fetching checkout session %s: %s", sessionUID, err))
	}
	if !found {
		return Session{}, myerrors.NewNotFoundError(fmt.Errorf("checkout session with uid %s not found", sessionUID))
	}
	return session, nil
}

func (s *service) listAddresses(c context.Context, sessionUID string) ([]addressbook.Entry, error) {
	session, err := s.getSession(c, sessionUID)
	if err != nil {
		return nil, err
	}
	if session.Identity.Kind != checkoutapi.IdentityAuthenticated {
		return nil, asHTTPError(IdentityError{Message: "saved addresses require a signed-in shopper"})
	}
	return s.addresses.ListForShopper(c, session.Identity.UserID)
}

// inFlightTimeout bounds how long the PricingInFlight/ConfirmInFlight guards
// are honoured. The guards only need to hold for the duration of one network
// call; without a bound, a process crash while a call was out would leave the
// session refusing new attempts forever.
const inFlightTimeout = 5 * time.Minute

func releaseStaleFlags(s Session, now time.Time) Session {
	if !s.PricingInFlight && !s.ConfirmInFlight {
		return s
	}
	if s.LastModified == nil || now.Sub(*s.LastModified) < inFlightTimeout {
		return s
	}
	s.PricingInFlight = false
	s.ConfirmInFlight = false
	return s
}

// applyInTransaction runs one event against the stored session.
func (s *service) applyInTransaction(c context.Context, sessionUID string, ev event) (Session, error) {
	var session Session
	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		session, err = s.getSession(c, sessionUID)
		if err != nil {
			return err
		}

		session = releaseStaleFlags(session, s.nower.Now())
		session, err = apply(session, ev)
		if err != nil {
			return asHTTPError(err)
		}

		now := s.nower.Now()
		session.LastModified = &now

		return s.sessionStore.Put(c, session.UID, session)
	})
	if err != nil {
		return Session{}, err
	}
	return session, nil
}

// applyIfStillPresent is the settle-path variant of applyInTransaction: the
// shopper may have abandoned the checkout while a network call was out, in
// which case the late result is dropped instead of written.
func (s *service) applyIfStillPresent(c context.Context, sessionUID string, ev event) (Session, bool, error) {
	var session Session
	stillPresent := false
	err := s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		var found bool
		var err error
		session, found, err = s.sessionStore.Get(c, sessionUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching checkout session %s: %s", sessionUID, err))
		}
		if !found {
			return nil
		}
		stillPresent = true

		session, err = apply(session, ev)
		if err != nil {
			return asHTTPError(err)
		}

		now := s.nower.Now()
		session.LastModified = &now

		return s.sessionStore.Put(c, session.UID, session)
	})
	if err != nil {
		return Session{}, stillPresent, err
	}
	if !stillPresent {
		s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Checkout session %s was torn down mid-call, dropping %s", sessionUID, ev.eventName())
	}
	return session, stillPresent, nil
}

func (s *service) submitGuestEmail(c context.Context, sessionUID string, email string) (Session, error) {
	return s.applyInTransaction(c, sessionUID, identityResolved{identity: checkoutapi.Guest(email)})
}

func (s *service) enterAddress(c context.Context, sessionUID string, address checkoutapi.ShippingAddress) (Session, error) {
	return s.applyInTransaction(c, sessionUID, addressEntered{address: address, mode: AddressModeNew})
}

func (s *service) startNewAddress(c context.Context, sessionUID string) (Session, error) {
	return s.applyInTransaction(c, sessionUID, switchedToNewAddress{})
}

func (s *service) selectSavedAddress(c context.Context, sessionUID string, entryUID string) (Session, error) {
	session, err := s.getSession(c, sessionUID)
	if err != nil {
		return Session{}, err
	}

	entry, found, err := s.addresses.Get(c, entryUID)
	if err != nil {
		return Session{}, myerrors.NewInternalError(fmt.Errorf("error fetching addressbook entry %s: %s", entryUID, err))
	}
	if !found || entry.ShopperUID != session.Identity.UserID {
		return Session{}, myerrors.NewNotFoundError(fmt.Errorf("addressbook entry with uid %s not found", entryUID))
	}

	return s.applyInTransaction(c, sessionUID, addressEntered{
		address:  entry.Address,
		mode:     AddressModeSaved,
		savedUID: entry.UID,
	})
}

func (s *service) goBack(c context.Context, sessionUID string, to Step) (Session, error) {
	return s.applyInTransaction(c, sessionUID, wentBack{to: to})
}

// confirmReview prices the current cart and address through the gateway and,
// on success, moves the session to the payment step carrying the returned
// totals and payment handle.
func (s *service) confirmReview(c context.Context, sessionUID string) (Session, error) {
	session, err := s.applyInTransaction(c, sessionUID, pricingRequested{})
	if err != nil {
		return Session{}, err
	}

	items, err := s.carts.ReadItems(c, session.CartUID)
	if err == nil && len(items) == 0 {
		err = fmt.Errorf("cart %s is empty", session.CartUID)
	}
	if err != nil {
		_, _, settleErr := s.applyIfStillPresent(c, sessionUID, pricingFailed{reason: err.Error()})
		if settleErr != nil {
			return Session{}, settleErr
		}
		return Session{}, myerrors.NewInvalidInputError(fmt.Errorf("error reading cart %s: %s", session.CartUID, err))
	}

	resp, gatewayErr := s.gateway.RequestIntent(c, intentRequestFor(session, items))
	if gatewayErr != nil {
		_, _, settleErr := s.applyIfStillPresent(c, sessionUID, pricingFailed{reason: gatewayErr.Error()})
		if settleErr != nil {
			return Session{}, settleErr
		}
		return Session{}, asHTTPError(gatewayErr)
	}

	session, stillPresent, err := s.applyIfStillPresent(c, sessionUID, pricingReceived{
		items:  items,
		totals: resp.Totals,
		handle: checkoutapi.PaymentHandle{ClientSecret: resp.ClientSecret, OrderID: resp.OrderID},
	})
	if err != nil {
		return Session{}, err
	}
	if !stillPresent {
		return Session{}, myerrors.NewNotFoundError(fmt.Errorf("checkout session with uid %s not found", sessionUID))
	}

	s.logger.Log(c, sessionUID, mylog.SeverityInfo, "Checkout %s priced: order %s, total %s",
		sessionUID, resp.OrderID, resp.Totals.Total)

	return session, nil
}

func intentRequestFor(session Session, items []cart.Item) pricing.IntentRequest {
	intentItems := make([]pricing.IntentItem, 0, len(items))
	for _, item := range items {
		intentItems = append(intentItems, pricing.IntentItem{ID: item.ID, Quantity: item.Quantity})
	}
	return pricing.IntentRequest{
		Items:        intentItems,
		ShippingInfo: session.Address,
		UserID:       session.Identity.UserID,
		Email:        session.Identity.Email,
		IsGuest:      session.Identity.IsGuest(),
	}
}

// submitPayment drives one confirmation attempt and, on success, commits the
// order and clears the cart, strictly in that order.
func (s *service) submitPayment(c context.Context, sessionUID string, returnURL string) (Result, error) {
	session, err := s.applyInTransaction(c, sessionUID, confirmRequested{})
	if err != nil {
		return Result{}, err
	}

	if s.confirmer == nil {
		return s.settleOrder(c, session, order.StatusDemo, true)
	}

	outcome, err := s.confirmer.Confirm(c, session.Handle.ClientSecret, returnURL)
	if err != nil {
		_, _, settleErr := s.applyIfStillPresent(c, sessionUID, paymentFailed{message: "payment could not be processed, try again"})
		if settleErr != nil {
			return Result{}, settleErr
		}
		s.logger.Log(c, sessionUID, mylog.SeverityError, "Error confirming payment for checkout %s: %s", sessionUID, err)
		return Result{}, asHTTPError(PaymentError{Reason: "payment could not be processed, try again"})
	}

	switch outcome.Status {
	case payment.OutcomeSucceeded:
		return s.settleOrder(c, session, order.StatusProcessing, false)

	case payment.OutcomeRequiresAction:
		_, _, settleErr := s.applyIfStillPresent(c, sessionUID, paymentRequiresAction{message: outcome.Message})
		if settleErr != nil {
			return Result{}, settleErr
		}
		return Result{Status: ResultRequiresAction, Message: outcome.Message}, nil

	default:
		s.recordFailedAttempt(c, session, outcome.Message)
		_, _, settleErr := s.applyIfStillPresent(c, sessionUID, paymentFailed{
			message:       outcome.Message,
			handleExpired: outcome.HandleExpired,
		})
		if settleErr != nil {
			return Result{}, settleErr
		}
		return Result{}, asHTTPError(PaymentError{Reason: outcome.Message, HandleExpired: outcome.HandleExpired})
	}
}

// recordFailedAttempt keeps an audit trail of definitive payment rejections.
// Best effort: the shopper's error response must not depend on it.
func (s *service) recordFailedAttempt(c context.Context, session Session, reason string) {
	failed := order.Order{
		UID:           session.Handle.OrderID,
		CreatedAt:     s.nower.Now(),
		CartUID:       session.CartUID,
		ShopperUID:    session.Identity.UserID,
		Email:         session.Identity.Email,
		IsGuest:       session.Identity.IsGuest(),
		Address:       session.Address,
		Items:         session.Items,
		Totals:        *session.Totals,
		Status:        order.StatusPaymentFailed,
		FailureReason: reason,
	}
	err := s.orders.Commit(c, failed)
	if err != nil {
		s.logger.Log(c, session.UID, mylog.SeverityError, "Error recording failed payment attempt for checkout %s: %s", session.UID, err)
	}
}

// settleOrder is the success tail of a checkout: record the order, clear the
// cart, mark the session completed. The order is durably recorded before the
// cart is touched so a crash in between never loses a paid order.
func (s *service) settleOrder(c context.Context, session Session, status order.Status, demo bool) (Result, error) {
	now := s.nower.Now()
	newOrder := order.Order{
		UID:        session.Handle.OrderID,
		CreatedAt:  now,
		CartUID:    session.CartUID,
		ShopperUID: session.Identity.UserID,
		Email:      session.Identity.Email,
		IsGuest:    session.Identity.IsGuest(),
		Address:    session.Address,
		Items:      session.Items,
		Totals:     *session.Totals,
		Status:     status,
	}

	err := s.orders.Commit(c, newOrder)
	if err != nil {
		return Result{}, s.handleCommitFailure(c, session, newOrder, fmt.Sprintf("error recording order: %s", err))
	}

	err = s.carts.Clear(c, session.CartUID)
	if err != nil {
		return Result{}, s.handleCommitFailure(c, session, newOrder, fmt.Sprintf("error clearing cart: %s", err))
	}

	_, stillPresent, err := s.applyIfStillPresent(c, session.UID, orderCommitted{orderUID: newOrder.UID})
	if err != nil {
		return Result{}, err
	}
	if stillPresent {
		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			SessionUID: session.UID,
			CartUID:    session.CartUID,
			OrderUID:   newOrder.UID,
			Status:     string(status),
			Success:    true,
			Demo:       demo,
		})
		if err != nil {
			s.logger.Log(c, session.UID, mylog.SeverityError, "Error publishing completion of checkout %s: %s", session.UID, err)
		}
	}

	s.logger.Log(c, session.UID, mylog.SeverityInfo, "Checkout %s completed with order %s (%s)", session.UID, newOrder.UID, status)

	return Result{Status: ResultCompleted, OrderUID: newOrder.UID}, nil
}

// handleCommitFailure deals with the one failure kind that must never look
// like a payment failure: money has moved but the order record or cart could
// not be settled. The cart is left untouched and a background reconciliation
// is scheduled instead of retrying the payment.
func (s *service) handleCommitFailure(c context.Context, session Session, failedOrder order.Order, reason string) error {
	s.logger.Log(c, session.UID, mylog.SeverityError, "Commit failure for checkout %s, order %s: %s", session.UID, failedOrder.UID, reason)

	err := s.orders.RequestReconciliation(c, failedOrder)
	if err != nil {
		s.logger.Log(c, session.UID, mylog.SeverityError, "Error scheduling reconciliation of order %s: %s", failedOrder.UID, err)
	}

	err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.OrderCommitFailed{
		SessionUID: session.UID,
		OrderUID:   failedOrder.UID,
		Reason:     reason,
	})
	if err != nil {
		s.logger.Log(c, session.UID, mylog.SeverityError, "Error publishing commit failure of order %s: %s", failedOrder.UID, err)
	}

	_, _, settleErr := s.applyIfStillPresent(c, session.UID, commitFailed{reason: reason})
	if settleErr != nil {
		s.logger.Log(c, session.UID, mylog.SeverityError, "Error recording commit failure on checkout %s: %s", session.UID, settleErr)
	}

	return asHTTPError(order.CommitError{OrderUID: failedOrder.UID, Reason: reason})
}

func (s *service) abandon(c context.Context, sessionUID string) error {
	return s.sessionStore.RunInTransaction(c, func(c context.Context) error {
		_, found, err := s.sessionStore.Get(c, sessionUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching checkout session %s: %s", sessionUID, err))
		}
		if !found {
			return nil
		}
		return s.sessionStore.Delete(c, sessionUID)
	})
}
