package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a purchasable line in a cart. The checkout core treats items as an
// immutable snapshot taken at checkout entry.
type Item struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

func (i Item) Valid() bool {
	return i.ID != "" && i.Quantity >= 1 && i.UnitPrice.GreaterThanOrEqual(decimal.Zero)
}

type Cart struct {
	UID          string    `json:"uid"`
	ShopperUID   string    `json:"shopperUid,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
	Items        []Item    `json:"items"`

	// filled in from checkout events, display-only
	CheckoutStatus string `json:"checkoutStatus,omitempty"`
	OrderUID       string `json:"orderUid,omitempty"`
}
