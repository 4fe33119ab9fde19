package order

import (
	"fmt"
	"time"

	"github.com/hassiiiwilliam-create/modlift-sub000/services/cart"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

type Status string

const (
	// StatusProcessing means the payment succeeded and fulfilment can start.
	StatusProcessing Status = "processing"
	// StatusDemo marks orders placed without a real payment provider configured.
	StatusDemo Status = "demo"
	// StatusPaymentFailed is kept for audit: the shopper never got this order.
	StatusPaymentFailed Status = "payment_failed"
)

type Order struct {
	UID                 string
	CreatedAt           time.Time
	LastModified        *time.Time
	CartUID             string
	ShopperUID          string
	Email               string
	IsGuest             bool
	Address             checkoutapi.ShippingAddress
	Items               []cart.Item
	Totals              checkoutapi.PricedTotals
	Status              Status
	FailureReason       string
	NeedsReconciliation bool
}

// CommitError reports that money moved but the order record could not be
// written (or the cart could not be cleared). Callers must not retry the
// payment for this failure kind.
type CommitError struct {
	OrderUID string
	Reason   string
}

func (e CommitError) Error() string {
	return fmt.Sprintf("order %s could not be committed: %s", e.OrderUID, e.Reason)
}
