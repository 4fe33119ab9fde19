package pricing

import (
	"context"
	"fmt"

	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

// IntentRequest is the single call across the pricing trust boundary:
// authoritative totals and the payment handle come back together or not at all.
type IntentRequest struct {
	Items        []IntentItem                `json:"items"`
	ShippingInfo checkoutapi.ShippingAddress `json:"shippingInfo"`
	UserID       string                      `json:"userId,omitempty"`
	Email        string                      `json:"email"`
	IsGuest      bool                        `json:"isGuest"`
}

type IntentItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

type IntentResponse struct {
	ClientSecret string                   `json:"clientSecret"`
	OrderID      string                   `json:"orderId"`
	Totals       checkoutapi.PricedTotals `json:"totals"`
	Error        string                   `json:"error,omitempty"`
}

// GatewayError normalizes every pricing/intent failure: network, server-side
// rejection and malformed responses all surface as one kind.
type GatewayError struct {
	Reason string
}

func (e GatewayError) Error() string {
	return fmt.Sprintf("pricing gateway error: %s", e.Reason)
}

//go:generate mockgen -source=api.go -package pricing -destination gateway_mock.go Gateway
type Gateway interface {
	RequestIntent(c context.Context, req IntentRequest) (IntentResponse, error)
}
