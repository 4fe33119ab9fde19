package mypublisher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mytime"
)

type stockReserved struct {
	SKU   string
	Count int
}

func (e stockReserved) GetEventTypeName() string { return "stock.reserved" }
func (e stockReserved) GetAggregateName() string { return e.SKU }

func TestEnveloper(t *testing.T) {
	newTestEnveloper := func(ctrl *gomock.Controller, at time.Time) enveloper {
		nower := mytime.NewMockNower(ctrl)
		nower.EXPECT().Now().Return(at).AnyTimes()
		return newEnveloper(nower)
	}

	t.Run("Envelope carries topic, aggregate, type and payload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		envelope, err := newTestEnveloper(ctrl, mytime.ExampleTime).do("stock", stockReserved{SKU: "lift-3in", Count: 2})

		assert.NoError(t, err)
		assert.Equal(t, "stock", envelope.Topic)
		assert.Equal(t, "lift-3in", envelope.AggregateUID)
		assert.Equal(t, "stock.reserved", envelope.EventTypeName)
		assert.Contains(t, envelope.EventPayload, `"Count":2`)
		assert.False(t, envelope.Published)
		assert.Equal(t, mytime.ExampleTime, envelope.CreatedAt)
		assert.NotEmpty(t, envelope.UID)
	})

	t.Run("Same event gets the same uid no matter when it is enveloped", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		event := stockReserved{SKU: "lift-3in", Count: 2}
		first, err := newTestEnveloper(ctrl, mytime.ExampleTime).do("stock", event)
		assert.NoError(t, err)
		second, err := newTestEnveloper(ctrl, mytime.ExampleTime.Add(time.Hour)).do("stock", event)
		assert.NoError(t, err)

		// a retried publish stores the same envelope instead of a duplicate
		assert.Equal(t, first.UID, second.UID)
	})

	t.Run("Different payloads get different uids", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnveloper(ctrl, mytime.ExampleTime)

		first, err := env.do("stock", stockReserved{SKU: "lift-3in", Count: 2})
		assert.NoError(t, err)
		second, err := env.do("stock", stockReserved{SKU: "lift-3in", Count: 3})
		assert.NoError(t, err)

		assert.NotEqual(t, first.UID, second.UID)
	})

	t.Run("Same payload on different topics gets different uids", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		env := newTestEnveloper(ctrl, mytime.ExampleTime)

		event := stockReserved{SKU: "lift-3in", Count: 2}
		first, err := env.do("stock", event)
		assert.NoError(t, err)
		second, err := env.do("warehouse", event)
		assert.NoError(t, err)

		assert.NotEqual(t, first.UID, second.UID)
	})
}
