package addressbook

import "context"

// Resolver is the slice of the address book the checkout core consumes:
// saved entries of a shopper, ordered default-first.
//
//go:generate mockgen -source=api.go -package addressbook -destination resolver_mock.go Resolver
type Resolver interface {
	ListForShopper(c context.Context, shopperUID string) ([]Entry, error)
	Get(c context.Context, entryUID string) (Entry, bool, error)
}
