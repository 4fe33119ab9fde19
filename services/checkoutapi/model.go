package checkoutapi

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// ShippingAddress is the single shape both saved and freshly entered
// addresses are normalized into.
type ShippingAddress struct {
	FullName string `json:"fullName" form:"fullName"`
	Phone    string `json:"phone,omitempty" form:"phone"`
	Line1    string `json:"line1" form:"line1"`
	City     string `json:"city" form:"city"`
	State    string `json:"state" form:"state"`
	Zip      string `json:"zip" form:"zip"`
}

func (a ShippingAddress) Valid() bool {
	return a.FullName != "" && a.Line1 != "" && a.City != "" && a.Zip != ""
}

// MissingField names the first mandatory field that is empty.
func (a ShippingAddress) MissingField() string {
	switch {
	case a.FullName == "":
		return "fullName"
	case a.Line1 == "":
		return "line1"
	case a.City == "":
		return "city"
	case a.Zip == "":
		return "zip"
	}
	return ""
}

func (a ShippingAddress) IsZero() bool {
	return a == ShippingAddress{}
}

type IdentityKind string

const (
	IdentityAuthenticated IdentityKind = "authenticated"
	IdentityGuest         IdentityKind = "guest"
)

// BuyerIdentity is either an authenticated shopper or a guest with a
// captured email. Exactly one kind is active per checkout session.
type BuyerIdentity struct {
	Kind   IdentityKind `json:"kind"`
	UserID string       `json:"userId,omitempty"`
	Email  string       `json:"email"`
}

func Authenticated(userID string, email string) BuyerIdentity {
	return BuyerIdentity{
		Kind:   IdentityAuthenticated,
		UserID: userID,
		Email:  email,
	}
}

func Guest(email string) BuyerIdentity {
	return BuyerIdentity{
		Kind:  IdentityGuest,
		Email: email,
	}
}

func (b BuyerIdentity) Resolved() bool {
	return b.Kind != ""
}

func (b BuyerIdentity) IsGuest() bool {
	return b.Kind == IdentityGuest
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// PricedTotals are computed by the pricing gateway and are authoritative:
// they are never recomputed or adjusted on this side of the trust boundary.
type PricedTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

func (t PricedTotals) NonNegative() bool {
	zero := decimal.Zero
	return t.Subtotal.GreaterThanOrEqual(zero) &&
		t.Tax.GreaterThanOrEqual(zero) &&
		t.Shipping.GreaterThanOrEqual(zero) &&
		t.Total.GreaterThanOrEqual(zero)
}

// PaymentHandle is opaque beyond handing its client-secret to the payment
// confirmation engine; OrderID ties the payment outcome back to the order record.
type PaymentHandle struct {
	ClientSecret string `json:"clientSecret"`
	OrderID      string `json:"orderId"`
}

func (h PaymentHandle) IsZero() bool {
	return h == PaymentHandle{}
}
