package addressbook

import (
	"time"

	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

// Entry is a buyer-owned, persisted reusable shipping address.
type Entry struct {
	UID        string                      `json:"uid"`
	ShopperUID string                      `json:"shopperUid"`
	Label      string                      `json:"label,omitempty"`
	IsDefault  bool                        `json:"isDefault"`
	Address    checkoutapi.ShippingAddress `json:"address"`
	CreatedAt  time.Time                   `json:"createdAt"`
}
