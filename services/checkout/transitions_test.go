package checkout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hassiiiwilliam-create/modlift-sub000/services/cart"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

var (
	validAddress = checkoutapi.ShippingAddress{
		FullName: "Jane Smith",
		Line1:    "123 Ranch Rd",
		City:     "Austin",
		State:    "TX",
		Zip:      "78701",
	}
	exampleItems = []cart.Item{
		{ID: "x", Title: "3 inch lift kit", UnitPrice: decimal.NewFromInt(25), Quantity: 2},
	}
	exampleTotals = checkoutapi.PricedTotals{
		Subtotal: decimal.NewFromInt(50),
		Tax:      decimal.NewFromFloat(4.13),
		Shipping: decimal.Zero,
		Total:    decimal.NewFromFloat(54.13),
	}
	exampleHandle = checkoutapi.PaymentHandle{ClientSecret: "pi_123_secret_456", OrderID: "order-789"}
)

func newSession() Session {
	return Session{
		UID:          "session-1",
		CartUID:      "cart-123",
		Step:         StepAccount,
		FurthestStep: StepAccount,
		Items:        exampleItems,
	}
}

func sessionAt(t *testing.T, step Step) Session {
	t.Helper()
	s := newSession()

	if step == StepAccount {
		return s
	}
	s, err := apply(s, identityResolved{identity: checkoutapi.Guest("a@b.co")})
	assert.NoError(t, err)
	if step == StepShipping {
		return s
	}
	s, err = apply(s, addressEntered{address: validAddress, mode: AddressModeNew})
	assert.NoError(t, err)
	if step == StepReview {
		return s
	}
	s, err = apply(s, pricingRequested{})
	assert.NoError(t, err)
	s, err = apply(s, pricingReceived{items: exampleItems, totals: exampleTotals, handle: exampleHandle})
	assert.NoError(t, err)
	return s
}

func TestIdentityGate(t *testing.T) {
	t.Run("Invalid guest email blocks account step", func(t *testing.T) {
		s, err := apply(newSession(), identityResolved{identity: checkoutapi.Guest("not-an-email")})

		assert.IsType(t, IdentityError{}, err)
		assert.Equal(t, StepAccount, s.Step)
	})

	t.Run("Valid guest email advances to shipping", func(t *testing.T) {
		s, err := apply(newSession(), identityResolved{identity: checkoutapi.Guest("a@b.co")})

		assert.NoError(t, err)
		assert.Equal(t, StepShipping, s.Step)
		assert.True(t, s.Identity.IsGuest())
	})

	t.Run("Identity cannot be resolved twice", func(t *testing.T) {
		s := sessionAt(t, StepShipping)

		_, err := apply(s, identityResolved{identity: checkoutapi.Guest("other@b.co")})

		assert.IsType(t, IdentityError{}, err)
	})

	t.Run("Identity is frozen once payment initiated", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, confirmRequested{})
		assert.NoError(t, err)
		s.Identity = checkoutapi.BuyerIdentity{}

		_, err = apply(s, identityResolved{identity: checkoutapi.Guest("a@b.co")})

		assert.IsType(t, IdentityError{}, err)
	})
}

func TestAddressGate(t *testing.T) {
	t.Run("Missing city blocks shipping step", func(t *testing.T) {
		incomplete := validAddress
		incomplete.City = ""

		s, err := apply(sessionAt(t, StepShipping), addressEntered{address: incomplete, mode: AddressModeNew})

		assert.IsType(t, ValidationError{}, err)
		assert.Contains(t, err.Error(), "city")
		assert.Equal(t, StepShipping, s.Step)
	})

	t.Run("Complete address advances to review", func(t *testing.T) {
		s, err := apply(sessionAt(t, StepShipping), addressEntered{address: validAddress, mode: AddressModeNew})

		assert.NoError(t, err)
		assert.Equal(t, StepReview, s.Step)
		assert.Equal(t, "Austin", s.Address.City)
	})

	t.Run("Address requires resolved identity", func(t *testing.T) {
		_, err := apply(newSession(), addressEntered{address: validAddress, mode: AddressModeNew})

		assert.IsType(t, IdentityError{}, err)
	})

	t.Run("Auto-selected default never overrides an explicit choice", func(t *testing.T) {
		s := sessionAt(t, StepShipping)
		s, err := apply(s, switchedToNewAddress{})
		assert.NoError(t, err)

		other := validAddress
		other.City = "Dallas"
		s, err = apply(s, addressEntered{address: other, mode: AddressModeSaved, savedUID: "entry-1", autoSelected: true})

		assert.NoError(t, err)
		assert.Equal(t, AddressModeNew, s.AddressMode)
		assert.True(t, s.Address.IsZero())
	})

	t.Run("Changing the address invalidates earlier pricing", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, wentBack{to: StepShipping})
		assert.NoError(t, err)

		s, err = apply(s, addressEntered{address: validAddress, mode: AddressModeNew})

		assert.NoError(t, err)
		assert.Nil(t, s.Totals)
		assert.Nil(t, s.Handle)
	})
}

func TestPricingCycle(t *testing.T) {
	t.Run("Payment step is unreachable without totals and handle", func(t *testing.T) {
		s := sessionAt(t, StepReview)

		assert.Equal(t, StepReview, s.Step)
		assert.Nil(t, s.Totals)
		assert.Nil(t, s.Handle)

		s, err := apply(s, pricingRequested{})
		assert.NoError(t, err)
		s, err = apply(s, pricingReceived{items: exampleItems, totals: exampleTotals, handle: exampleHandle})
		assert.NoError(t, err)

		assert.Equal(t, StepPayment, s.Step)
		assert.NotNil(t, s.Totals)
		assert.NotNil(t, s.Handle)
	})

	t.Run("Totals are applied verbatim", func(t *testing.T) {
		s := sessionAt(t, StepPayment)

		assert.True(t, decimal.NewFromInt(50).Equal(s.Totals.Subtotal))
		assert.True(t, decimal.NewFromFloat(4.13).Equal(s.Totals.Tax))
		assert.True(t, decimal.Zero.Equal(s.Totals.Shipping))
		assert.True(t, decimal.NewFromFloat(54.13).Equal(s.Totals.Total))
	})

	t.Run("Pricing is only requested from review", func(t *testing.T) {
		_, err := apply(sessionAt(t, StepShipping), pricingRequested{})

		assert.IsType(t, ValidationError{}, err)
	})

	t.Run("No concurrent pricing calls", func(t *testing.T) {
		s := sessionAt(t, StepReview)
		s, err := apply(s, pricingRequested{})
		assert.NoError(t, err)

		_, err = apply(s, pricingRequested{})

		assert.IsType(t, ValidationError{}, err)
	})

	t.Run("Failed pricing keeps the session in review", func(t *testing.T) {
		s := sessionAt(t, StepReview)
		s, err := apply(s, pricingRequested{})
		assert.NoError(t, err)

		s, err = apply(s, pricingFailed{reason: "item x is out of stock"})

		assert.NoError(t, err)
		assert.Equal(t, StepReview, s.Step)
		assert.False(t, s.PricingInFlight)
		assert.Equal(t, "item x is out of stock", s.Notes)
	})

	t.Run("Re-pricing discards the previous handle", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, wentBack{to: StepReview})
		assert.NoError(t, err)

		s, err = apply(s, pricingRequested{})

		assert.NoError(t, err)
		assert.Nil(t, s.Handle)
	})
}

func TestBackwardNavigation(t *testing.T) {
	t.Run("Going back preserves identity and address", func(t *testing.T) {
		s := sessionAt(t, StepPayment)

		s, err := apply(s, wentBack{to: StepShipping})

		assert.NoError(t, err)
		assert.Equal(t, StepShipping, s.Step)
		assert.Equal(t, "a@b.co", s.Identity.Email)
		assert.Equal(t, "Austin", s.Address.City)
	})

	t.Run("Going back discards totals and handle", func(t *testing.T) {
		s := sessionAt(t, StepPayment)

		s, err := apply(s, wentBack{to: StepReview})

		assert.NoError(t, err)
		assert.Nil(t, s.Totals)
		assert.Nil(t, s.Handle)
	})

	t.Run("Cannot skip forward", func(t *testing.T) {
		_, err := apply(sessionAt(t, StepShipping), wentBack{to: StepReview})

		assert.IsType(t, ValidationError{}, err)
	})

	t.Run("Cannot go back while a confirmation is in flight", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, confirmRequested{})
		assert.NoError(t, err)

		_, err = apply(s, wentBack{to: StepReview})

		assert.IsType(t, ValidationError{}, err)
	})
}

func TestPaymentOutcomes(t *testing.T) {
	t.Run("Declined card keeps session in payment with same handle", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, confirmRequested{})
		assert.NoError(t, err)

		s, err = apply(s, paymentFailed{message: "card_declined"})

		assert.NoError(t, err)
		assert.Equal(t, StepPayment, s.Step)
		assert.Equal(t, &exampleHandle, s.Handle)
		assert.False(t, s.ConfirmInFlight)

		// a second attempt is allowed
		_, err = apply(s, confirmRequested{})
		assert.NoError(t, err)
	})

	t.Run("Expired handle forces a fresh review cycle", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, confirmRequested{})
		assert.NoError(t, err)

		s, err = apply(s, paymentFailed{message: "payment expired", handleExpired: true})

		assert.NoError(t, err)
		assert.Equal(t, StepReview, s.Step)
		assert.Nil(t, s.Totals)
		assert.Nil(t, s.Handle)
	})

	t.Run("Requires action keeps session in payment", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, confirmRequested{})
		assert.NoError(t, err)

		s, err = apply(s, paymentRequiresAction{message: "additional authentication needed"})

		assert.NoError(t, err)
		assert.Equal(t, StepPayment, s.Step)
		assert.NotNil(t, s.Handle)
	})

	t.Run("No concurrent confirmation attempts", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, confirmRequested{})
		assert.NoError(t, err)

		_, err = apply(s, confirmRequested{})

		assert.IsType(t, ValidationError{}, err)
	})

	t.Run("Confirmation requires a prepared payment", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s.Handle = nil

		_, err := apply(s, confirmRequested{})

		assert.IsType(t, ValidationError{}, err)
	})

	t.Run("Commit failure keeps the handle and the payment step", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, confirmRequested{})
		assert.NoError(t, err)

		s, err = apply(s, commitFailed{reason: "error recording order"})

		assert.NoError(t, err)
		assert.Equal(t, StepPayment, s.Step)
		assert.NotNil(t, s.Handle)
		assert.False(t, s.Completed)
	})

	t.Run("Committed order completes the session", func(t *testing.T) {
		s := sessionAt(t, StepPayment)
		s, err := apply(s, confirmRequested{})
		assert.NoError(t, err)

		s, err = apply(s, orderCommitted{orderUID: "order-789"})

		assert.NoError(t, err)
		assert.True(t, s.Completed)
		assert.Equal(t, "order-789", s.OrderUID)

		// completed sessions accept no further events
		_, err = apply(s, confirmRequested{})
		assert.IsType(t, ValidationError{}, err)
	})
}
