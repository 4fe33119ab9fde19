package paymentmollie

import (
	"context"
	"fmt"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mylog"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/payment"
)

type confirmer struct {
	payer  Payer
	logger mylog.Logger
}

// NewConfirmer creates a payment.Confirmer backed by the Mollie platform.
// Mollie payments are hosted-page based: confirmation means checking the
// payment status rather than pushing a confirm call.
func NewConfirmer(apiKey string, payer Payer) payment.Confirmer {
	payer.UseAPIKey(apiKey)
	return &confirmer{
		payer:  payer,
		logger: mylog.New("paymentmollie"),
	}
}

func (cf *confirmer) Name() string {
	return "mollie"
}

func (cf *confirmer) Confirm(c context.Context, clientSecret string, returnURL string) (payment.Outcome, error) {
	// with Mollie the handle is the payment id itself
	pmt, err := cf.payer.GetPaymentOnID(c, clientSecret)
	if err != nil {
		return payment.Outcome{}, fmt.Errorf("error fetching mollie payment %s: %s", clientSecret, err)
	}

	cf.logger.Log(c, clientSecret, mylog.SeverityInfo, "Mollie payment %s has status %s", clientSecret, pmt.Status)

	switch pmt.Status {
	case "paid":
		return payment.Outcome{Status: payment.OutcomeSucceeded}, nil
	case "open", "pending", "authorized":
		return payment.Outcome{
			Status:  payment.OutcomeRequiresAction,
			Message: fmt.Sprintf("payment is not complete yet (%s)", pmt.Status),
		}, nil
	case "expired":
		return payment.Outcome{
			Status:        payment.OutcomeError,
			Message:       "payment expired",
			HandleExpired: true,
		}, nil
	case "canceled":
		return payment.Outcome{
			Status:        payment.OutcomeError,
			Message:       "payment was canceled",
			HandleExpired: true,
		}, nil
	default:
		// failed and anything unrecognized
		return payment.Outcome{
			Status:  payment.OutcomeError,
			Message: fmt.Sprintf("payment was not accepted (%s)", pmt.Status),
		}, nil
	}
}
