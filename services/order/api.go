package order

import "context"

//go:generate mockgen -source=api.go -package order -destination committer_mock.go Committer
type Committer interface {
	// Commit durably records the order. It must be called before the
	// originating cart is cleared.
	Commit(c context.Context, order Order) error
	// RequestReconciliation schedules a background retry for an order whose
	// payment succeeded but whose record or cart could not be settled.
	RequestReconciliation(c context.Context, order Order) error
}
