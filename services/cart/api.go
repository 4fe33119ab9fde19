package cart

import "context"

// Accessor is the capability handed to the checkout core: read the cart
// snapshot and, after a verified order commit, clear it. Nothing else in the
// application is permitted to clear a cart.
//
//go:generate mockgen -source=api.go -package cart -destination accessor_mock.go Accessor
type Accessor interface {
	ReadItems(c context.Context, cartUID string) ([]Item, error)
	Clear(c context.Context, cartUID string) error
}
