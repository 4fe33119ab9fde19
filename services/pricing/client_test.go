package pricing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

func TestRequestIntent(t *testing.T) {
	c := context.TODO()

	req := IntentRequest{
		Items: []IntentItem{
			{ID: "lift-3in", Quantity: 1},
		},
		ShippingInfo: checkoutapi.ShippingAddress{
			FullName: "Jane Smith",
			Line1:    "123 Ranch Rd",
			City:     "Austin",
			State:    "TX",
			Zip:      "78701",
			Phone:    "+15125550100",
		},
		Email:   "jane@example.com",
		IsGuest: true,
	}

	t.Run("Success", func(t *testing.T) {
		ts := serve(t, http.StatusOK, `{
			"clientSecret": "pi_123_secret_456",
			"orderId": "order-789",
			"totals": {"subtotal":"50","tax":"4.13","shipping":"0","total":"54.13"}
		}`)
		defer ts.Close()

		resp, err := NewClient(ts.URL).RequestIntent(c, req)

		assert.NoError(t, err)
		assert.Equal(t, "pi_123_secret_456", resp.ClientSecret)
		assert.Equal(t, "order-789", resp.OrderID)
		assert.True(t, decimal.NewFromFloat(54.13).Equal(resp.Totals.Total))
	})

	t.Run("Server side rejection", func(t *testing.T) {
		ts := serve(t, http.StatusOK, `{"error": "item lift-3in is out of stock"}`)
		defer ts.Close()

		_, err := NewClient(ts.URL).RequestIntent(c, req)

		assert.ErrorContains(t, err, "out of stock")
		assert.IsType(t, GatewayError{}, err)
	})

	t.Run("Missing payment handle", func(t *testing.T) {
		ts := serve(t, http.StatusOK, `{"orderId": "order-789"}`)
		defer ts.Close()

		_, err := NewClient(ts.URL).RequestIntent(c, req)

		assert.ErrorContains(t, err, "payment handle")
		assert.IsType(t, GatewayError{}, err)
	})

	t.Run("Missing order identifier", func(t *testing.T) {
		ts := serve(t, http.StatusOK, `{"clientSecret": "pi_123_secret_456"}`)
		defer ts.Close()

		_, err := NewClient(ts.URL).RequestIntent(c, req)

		assert.ErrorContains(t, err, "order identifier")
	})

	t.Run("Negative totals", func(t *testing.T) {
		ts := serve(t, http.StatusOK, `{
			"clientSecret": "pi_123_secret_456",
			"orderId": "order-789",
			"totals": {"subtotal":"50","tax":"-4.13","shipping":"0","total":"45.87"}
		}`)
		defer ts.Close()

		_, err := NewClient(ts.URL).RequestIntent(c, req)

		assert.ErrorContains(t, err, "negative totals")
	})

	t.Run("Malformed response", func(t *testing.T) {
		ts := serve(t, http.StatusBadGateway, `<html>bad gateway</html>`)
		defer ts.Close()

		_, err := NewClient(ts.URL).RequestIntent(c, req)

		assert.ErrorContains(t, err, "malformed response")
		assert.IsType(t, GatewayError{}, err)
	})

	t.Run("Backend unreachable", func(t *testing.T) {
		ts := serve(t, http.StatusOK, `{}`)
		ts.Close() // connection refused

		_, err := NewClient(ts.URL).RequestIntent(c, req)

		assert.Error(t, err)
		assert.IsType(t, GatewayError{}, err)
	})
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/checkout/intent", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}
