package paymentstripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mylog"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/payment"
)

type confirmer struct {
	payer  Payer
	logger mylog.Logger
}

// NewConfirmer creates a payment.Confirmer backed by the Stripe platform.
func NewConfirmer(apiKey string, payer Payer) payment.Confirmer {
	payer.UseApiKey(apiKey)
	return &confirmer{
		payer:  payer,
		logger: mylog.New("paymentstripe"),
	}
}

func (cf *confirmer) Name() string {
	return "stripe"
}

func (cf *confirmer) Confirm(c context.Context, clientSecret string, returnURL string) (payment.Outcome, error) {
	intentUID, err := intentUIDFromClientSecret(clientSecret)
	if err != nil {
		return payment.Outcome{
			Status:        payment.OutcomeError,
			Message:       "unusable payment handle",
			HandleExpired: true,
		}, nil
	}

	intent, err := cf.payer.GetPaymentIntent(c, intentUID)
	if err != nil {
		return cf.outcomeFromError(c, intentUID, err)
	}
	if intent.Status == stripe.PaymentIntentStatusSucceeded {
		// already confirmed out-of-band, nothing left to do
		return payment.Outcome{Status: payment.OutcomeSucceeded}, nil
	}

	intent, err = cf.payer.ConfirmPaymentIntent(c, intentUID, stripe.PaymentIntentConfirmParams{
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return cf.outcomeFromError(c, intentUID, err)
	}

	return cf.outcomeFromStatus(c, intentUID, intent.Status), nil
}

func (cf *confirmer) outcomeFromStatus(c context.Context, intentUID string, status stripe.PaymentIntentStatus) payment.Outcome {
	cf.logger.Log(c, intentUID, mylog.SeverityInfo, "Payment-intent %s has status %s", intentUID, status)

	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return payment.Outcome{Status: payment.OutcomeSucceeded}
	case stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresConfirmation,
		stripe.PaymentIntentStatusProcessing:
		return payment.Outcome{
			Status:  payment.OutcomeRequiresAction,
			Message: fmt.Sprintf("payment is not complete yet (%s)", status),
		}
	case stripe.PaymentIntentStatusCanceled:
		return payment.Outcome{
			Status:        payment.OutcomeError,
			Message:       "payment was canceled",
			HandleExpired: true,
		}
	default:
		// requires_payment_method and anything unrecognized
		return payment.Outcome{
			Status:  payment.OutcomeError,
			Message: fmt.Sprintf("payment was not accepted (%s)", status),
		}
	}
}

func (cf *confirmer) outcomeFromError(c context.Context, intentUID string, err error) (payment.Outcome, error) {
	stripeErr := &stripe.Error{}
	if !errors.As(err, &stripeErr) {
		// transport-level failure, not a verdict on the payment
		return payment.Outcome{}, fmt.Errorf("error calling stripe for intent %s: %s", intentUID, err)
	}

	cf.logger.Log(c, intentUID, mylog.SeverityWarn, "Stripe rejected intent %s: code=%s decline=%s",
		intentUID, stripeErr.Code, stripeErr.DeclineCode)

	message := string(stripeErr.Code)
	if stripeErr.DeclineCode != "" {
		message = string(stripeErr.DeclineCode)
	}

	return payment.Outcome{
		Status:        payment.OutcomeError,
		Message:       message,
		HandleExpired: isHandleExpired(stripeErr),
	}, nil
}

func isHandleExpired(stripeErr *stripe.Error) bool {
	return stripeErr.Code == stripe.ErrorCodeResourceMissing ||
		stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState
}

// A client secret has the shape "pi_123_secret_456": everything before the
// "_secret" marker identifies the intent.
func intentUIDFromClientSecret(clientSecret string) (string, error) {
	intentUID, _, found := strings.Cut(clientSecret, "_secret")
	if !found || intentUID == "" {
		return "", fmt.Errorf("client secret %s does not contain an intent uid", clientSecret)
	}
	return intentUID, nil
}
