package paymentstripe

import (
	"context"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

//go:generate mockgen -source=payer.go -package paymentstripe -destination payer_mock.go Payer
type Payer interface {
	UseApiKey(key string)
	GetPaymentIntent(ctx context.Context, id string) (stripe.PaymentIntent, error)
	ConfirmPaymentIntent(ctx context.Context, id string, params stripe.PaymentIntentConfirmParams) (stripe.PaymentIntent, error)
}

type stripePayer struct{}

func NewPayer() Payer {
	return &stripePayer{}
}

func (p *stripePayer) UseApiKey(apiKey string) {
	stripe.Key = apiKey
}

func (p *stripePayer) GetPaymentIntent(ctx context.Context, id string) (stripe.PaymentIntent, error) {
	intent, err := paymentintent.Get(id, &stripe.PaymentIntentParams{})
	if err != nil {
		return stripe.PaymentIntent{}, err
	}
	return *intent, nil
}

func (p *stripePayer) ConfirmPaymentIntent(ctx context.Context, id string, params stripe.PaymentIntentConfirmParams) (stripe.PaymentIntent, error) {
	intent, err := paymentintent.Confirm(id, &params)
	if err != nil {
		return stripe.PaymentIntent{}, err
	}
	return *intent, nil
}
