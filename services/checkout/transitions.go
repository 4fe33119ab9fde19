package checkout

import (
	"fmt"

	"github.com/hassiiiwilliam-create/modlift-sub000/services/cart"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

// The session advances through a pure reducer: apply takes the current
// session and an event and returns the next session or a guard error,
// leaving the input untouched. All side effects live in the service layer.

type event interface {
	eventName() string
}

type identityResolved struct {
	identity checkoutapi.BuyerIdentity
}

type switchedToNewAddress struct{}

type addressEntered struct {
	address      checkoutapi.ShippingAddress
	mode         AddressMode
	savedUID     string
	autoSelected bool
}

type wentBack struct {
	to Step
}

type pricingRequested struct{}

type pricingReceived struct {
	items  []cart.Item
	totals checkoutapi.PricedTotals
	handle checkoutapi.PaymentHandle
}

type pricingFailed struct {
	reason string
}

type confirmRequested struct{}

type paymentRequiresAction struct {
	message string
}

type paymentFailed struct {
	message       string
	handleExpired bool
}

type commitFailed struct {
	reason string
}

type orderCommitted struct {
	orderUID string
}

func (identityResolved) eventName() string      { return "identityResolved" }
func (switchedToNewAddress) eventName() string  { return "switchedToNewAddress" }
func (addressEntered) eventName() string        { return "addressEntered" }
func (wentBack) eventName() string              { return "wentBack" }
func (pricingRequested) eventName() string      { return "pricingRequested" }
func (pricingReceived) eventName() string       { return "pricingReceived" }
func (pricingFailed) eventName() string         { return "pricingFailed" }
func (confirmRequested) eventName() string      { return "confirmRequested" }
func (paymentRequiresAction) eventName() string { return "paymentRequiresAction" }
func (paymentFailed) eventName() string         { return "paymentFailed" }
func (commitFailed) eventName() string          { return "commitFailed" }
func (orderCommitted) eventName() string        { return "orderCommitted" }

func apply(s Session, ev event) (Session, error) {
	if s.Completed {
		return s, ValidationError{Message: "checkout is already completed"}
	}

	switch ev := ev.(type) {
	case identityResolved:
		return applyIdentityResolved(s, ev)
	case switchedToNewAddress:
		return applySwitchedToNewAddress(s, ev)
	case addressEntered:
		return applyAddressEntered(s, ev)
	case wentBack:
		return applyWentBack(s, ev)
	case pricingRequested:
		return applyPricingRequested(s, ev)
	case pricingReceived:
		return applyPricingReceived(s, ev)
	case pricingFailed:
		return applyPricingFailed(s, ev)
	case confirmRequested:
		return applyConfirmRequested(s, ev)
	case paymentRequiresAction:
		return applyPaymentRequiresAction(s, ev)
	case paymentFailed:
		return applyPaymentFailed(s, ev)
	case commitFailed:
		return applyCommitFailed(s, ev)
	case orderCommitted:
		return applyOrderCommitted(s, ev)
	default:
		return s, fmt.Errorf("unknown event %s", ev.eventName())
	}
}

func applyIdentityResolved(s Session, ev identityResolved) (Session, error) {
	if s.PaymentInitiated {
		return s, IdentityError{Message: "identity cannot change once payment has been initiated"}
	}
	if s.Identity.Resolved() {
		return s, IdentityError{Message: "identity is already established for this checkout"}
	}
	if ev.identity.IsGuest() && !checkoutapi.ValidEmail(ev.identity.Email) {
		return s, IdentityError{Message: fmt.Sprintf("%s is not a valid email address", ev.identity.Email)}
	}

	s.Identity = ev.identity
	s.Step = StepShipping
	s.FurthestStep = furthest(s.FurthestStep, StepShipping)
	s.Notes = ""
	return s, nil
}

func applySwitchedToNewAddress(s Session, _ switchedToNewAddress) (Session, error) {
	if s.Step != StepShipping {
		return s, ValidationError{Message: "address can only change on the shipping step"}
	}

	s.Address = checkoutapi.ShippingAddress{}
	s.AddressMode = AddressModeNew
	s.AddressAutoSelected = false
	s.SavedAddressUID = ""
	return s, nil
}

func applyAddressEntered(s Session, ev addressEntered) (Session, error) {
	if !s.Identity.Resolved() {
		return s, IdentityError{Message: "establish who is buying before entering an address"}
	}
	if s.Step != StepShipping {
		return s, ValidationError{Message: "address can only change on the shipping step"}
	}
	// an auto-selected default never overrides an explicit earlier choice
	if ev.autoSelected && s.AddressMode != AddressModeNone {
		return s, nil
	}
	if !ev.address.Valid() {
		return s, ValidationError{Message: fmt.Sprintf("invalid address: %s is mandatory", ev.address.MissingField())}
	}

	s.Address = ev.address
	s.AddressMode = ev.mode
	s.AddressAutoSelected = ev.autoSelected
	s.SavedAddressUID = ev.savedUID
	if !ev.autoSelected {
		s.Step = StepReview
		s.FurthestStep = furthest(s.FurthestStep, StepReview)
		// the previous pricing no longer matches the address
		s.Totals = nil
		s.Handle = nil
	}
	s.Notes = ""
	return s, nil
}

func applyWentBack(s Session, ev wentBack) (Session, error) {
	if s.PricingInFlight || s.ConfirmInFlight {
		return s, ValidationError{Message: "a request is still in flight, wait for it to finish"}
	}
	if !ev.to.Before(s.Step) {
		return s, ValidationError{Message: fmt.Sprintf("cannot skip forward to step %s", ev.to)}
	}
	if !ev.to.Before(s.FurthestStep) {
		return s, ValidationError{Message: fmt.Sprintf("step %s has not been reached yet", ev.to)}
	}

	// identity and address survive backward navigation; the payment handle
	// does not: re-entering payment re-issues the pricing call
	s.Step = ev.to
	s.Totals = nil
	s.Handle = nil
	s.Notes = ""
	return s, nil
}

func applyPricingRequested(s Session, _ pricingRequested) (Session, error) {
	if s.Step != StepReview {
		return s, ValidationError{Message: "pricing is only requested from the review step"}
	}
	if !s.Identity.Resolved() {
		return s, IdentityError{Message: "establish who is buying before requesting pricing"}
	}
	if !s.Address.Valid() {
		return s, ValidationError{Message: fmt.Sprintf("invalid address: %s is mandatory", s.Address.MissingField())}
	}
	if s.PricingInFlight {
		return s, ValidationError{Message: "a pricing request is already in flight"}
	}
	if s.ConfirmInFlight {
		return s, ValidationError{Message: "a payment confirmation is still in flight"}
	}

	s.PricingInFlight = true
	// any earlier handle is stale the moment a new pricing cycle starts
	s.Totals = nil
	s.Handle = nil
	return s, nil
}

func applyPricingReceived(s Session, ev pricingReceived) (Session, error) {
	if !s.PricingInFlight {
		return s, ValidationError{Message: "no pricing request is in flight"}
	}

	s.PricingInFlight = false
	s.Items = ev.items
	s.Totals = &ev.totals
	s.Handle = &ev.handle
	s.Step = StepPayment
	s.FurthestStep = furthest(s.FurthestStep, StepPayment)
	s.Notes = ""
	return s, nil
}

func applyPricingFailed(s Session, ev pricingFailed) (Session, error) {
	s.PricingInFlight = false
	s.Notes = ev.reason
	// session stays in review so the shopper can correct and retry
	return s, nil
}

func applyConfirmRequested(s Session, _ confirmRequested) (Session, error) {
	if s.Step != StepPayment {
		return s, ValidationError{Message: "payment can only be submitted from the payment step"}
	}
	if s.Totals == nil || s.Handle == nil {
		return s, ValidationError{Message: "payment is not prepared for this checkout"}
	}
	if s.ConfirmInFlight {
		return s, ValidationError{Message: "a payment confirmation is already in flight"}
	}

	s.ConfirmInFlight = true
	s.PaymentInitiated = true
	return s, nil
}

func applyPaymentRequiresAction(s Session, ev paymentRequiresAction) (Session, error) {
	s.ConfirmInFlight = false
	s.Notes = ev.message
	// stays in payment, same handle, resubmission allowed
	return s, nil
}

func applyPaymentFailed(s Session, ev paymentFailed) (Session, error) {
	s.ConfirmInFlight = false
	s.Notes = ev.message
	if ev.handleExpired {
		// the handle is unusable, force a fresh review/payment cycle
		s.Totals = nil
		s.Handle = nil
		s.Step = StepReview
	}
	return s, nil
}

func applyCommitFailed(s Session, ev commitFailed) (Session, error) {
	s.ConfirmInFlight = false
	s.Notes = ev.reason
	// the payment went through: the handle stays so nothing retries it,
	// and the session waits for reconciliation
	return s, nil
}

func applyOrderCommitted(s Session, ev orderCommitted) (Session, error) {
	s.ConfirmInFlight = false
	s.Completed = true
	s.OrderUID = ev.orderUID
	s.Notes = ""
	return s, nil
}

func furthest(a Step, b Step) Step {
	if a.Index() >= b.Index() {
		return a
	}
	return b
}
