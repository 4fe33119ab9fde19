package payment

import "context"

type OutcomeStatus string

const (
	OutcomeSucceeded      OutcomeStatus = "succeeded"
	OutcomeRequiresAction OutcomeStatus = "requires_action"
	OutcomeError          OutcomeStatus = "error"
)

// Outcome is the provider-neutral result of a confirmation attempt.
// HandleExpired marks failures where the payment handle itself is no longer
// usable and the shopper must obtain a fresh one.
type Outcome struct {
	Status        OutcomeStatus
	Message       string
	HandleExpired bool
}

//go:generate mockgen -source=api.go -package payment -destination confirmer_mock.go Confirmer
type Confirmer interface {
	Name() string
	Confirm(c context.Context, clientSecret string, returnURL string) (Outcome, error)
}
