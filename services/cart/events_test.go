package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myevents"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutevents"
)

func TestCheckoutEvents(t *testing.T) {
	c := context.TODO()

	t.Run("Completed checkout annotates the cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, _, store := setup(t, c, ctrl)

		request, err := http.NewRequest(http.MethodPost, "/api/cart/event", pushRequestFor(t, checkoutevents.CheckoutCompleted{
			SessionUID: "session-1",
			CartUID:    "123",
			OrderUID:   "order-789",
			Status:     "processing",
			Success:    true,
		}))
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)

		cart, found, err := store.Get(c, "123")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "processing", cart.CheckoutStatus)
		assert.Equal(t, "order-789", cart.OrderUID)
	})

	t.Run("Event about an unknown cart is ignored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, _, _ := setup(t, c, ctrl)

		request, err := http.NewRequest(http.MethodPost, "/api/cart/event", pushRequestFor(t, checkoutevents.CheckoutStarted{
			SessionUID: "session-1",
			CartUID:    "gone",
		}))
		assert.NoError(t, err)
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 200, response.Code)
	})
}

func pushRequestFor(t *testing.T, event myevents.Event) *bytes.Reader {
	t.Helper()

	payload, err := json.Marshal(event)
	assert.NoError(t, err)

	envelope, err := json.Marshal(myevents.EventEnvelope{
		UID:           "event-1",
		Topic:         checkoutevents.TopicName,
		AggregateUID:  event.GetAggregateName(),
		EventTypeName: event.GetEventTypeName(),
		EventPayload:  string(payload),
	})
	assert.NoError(t, err)

	pushRequest, err := json.Marshal(myevents.PushRequest{
		Message: myevents.PushMessage{Data: envelope},
	})
	assert.NoError(t, err)

	return bytes.NewReader(pushRequest)
}
