package paymentmollie

import (
	"context"
	"fmt"
	"testing"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/hassiiiwilliam-create/modlift-sub000/services/payment"
)

func TestConfirm(t *testing.T) {
	c := context.TODO()

	testCases := []struct {
		name          string
		mollieStatus  string
		expected      payment.OutcomeStatus
		handleExpired bool
	}{
		{"Paid succeeds", "paid", payment.OutcomeSucceeded, false},
		{"Open requires action", "open", payment.OutcomeRequiresAction, false},
		{"Pending requires action", "pending", payment.OutcomeRequiresAction, false},
		{"Authorized requires action", "authorized", payment.OutcomeRequiresAction, false},
		{"Failed is an error", "failed", payment.OutcomeError, false},
		{"Expired invalidates the handle", "expired", payment.OutcomeError, true},
		{"Canceled invalidates the handle", "canceled", payment.OutcomeError, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			payer := NewMockPayer(ctrl)
			payer.EXPECT().UseAPIKey("test_123")
			payer.EXPECT().GetPaymentOnID(gomock.Any(), "tr_abc").Return(mollie.Payment{
				ID:     "tr_abc",
				Status: tc.mollieStatus,
			}, nil)

			outcome, err := NewConfirmer("test_123", payer).Confirm(c, "tr_abc", "https://shop.example.com/done")

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, outcome.Status)
			assert.Equal(t, tc.handleExpired, outcome.HandleExpired)
		})
	}

	t.Run("Transport failure surfaces as error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		payer := NewMockPayer(ctrl)
		payer.EXPECT().UseAPIKey("test_123")
		payer.EXPECT().GetPaymentOnID(gomock.Any(), "tr_abc").Return(mollie.Payment{}, fmt.Errorf("connection reset"))

		_, err := NewConfirmer("test_123", payer).Confirm(c, "tr_abc", "https://shop.example.com/done")

		assert.Error(t, err)
	})
}
