package cart

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mypubsub"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mystore"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mytime"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myuuid"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutevents"
)

func TestCartService(t *testing.T) {
	c := context.TODO()

	t.Run("Create cart and add items", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, svc, _ := setup(t, c, ctrl)

		// when
		request, err := http.NewRequest(http.MethodPost, "/api/cart/123/item", strings.NewReader(`id=part_leveling_kit_2in&title=2in+Leveling+Kit&unitPrice=189.99&quantity=1`))
		assert.NoError(t, err)
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		// then
		assert.Equal(t, 200, response.Code)

		items, err := svc.ReadItems(c, "123")
		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, "part_leveling_kit_2in", items[0].ID)
		assert.True(t, decimal.RequireFromString("189.99").Equal(items[0].UnitPrice))
	})

	t.Run("Adding same item twice bumps quantity", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, svc, _ := setup(t, c, ctrl)

		for i := 0; i < 2; i++ {
			request, err := http.NewRequest(http.MethodPost, "/api/cart/123/item", strings.NewReader(`id=part_alloy_wheel_17x9&title=17x9+Alloy+Wheel&unitPrice=245.00&quantity=2`))
			assert.NoError(t, err)
			request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			response := httptest.NewRecorder()
			router.ServeHTTP(response, request)
			assert.Equal(t, 200, response.Code)
		}

		items, err := svc.ReadItems(c, "123")
		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 4, items[0].Quantity)
	})

	t.Run("Invalid item is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		router, _, _ := setup(t, c, ctrl)

		request, err := http.NewRequest(http.MethodPost, "/api/cart/123/item", strings.NewReader(`id=&title=Mystery&unitPrice=10.00`))
		assert.NoError(t, err)
		request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		response := httptest.NewRecorder()
		router.ServeHTTP(response, request)

		assert.Equal(t, 400, response.Code)
	})

	t.Run("Clear empties the cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, svc, store := setup(t, c, ctrl)

		err := svc.Clear(c, "123")
		assert.NoError(t, err)

		cart, found, err := store.Get(c, "123")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Empty(t, cart.Items)
	})

	t.Run("Read items of unknown cart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		_, svc, _ := setup(t, c, ctrl)

		_, err := svc.ReadItems(c, "does-not-exist")
		assert.Error(t, err)
	})
}

func setup(t *testing.T, c context.Context, ctrl *gomock.Controller) (*mux.Router, *service, mystore.Store[Cart]) {
	store, _, err := mystore.NewInMemoryStore[Cart](c)
	assert.NoError(t, err)

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	uuider := myuuid.NewMockUUIDer(ctrl)
	uuider.EXPECT().Create().Return("123").AnyTimes()

	// seed a cart so item endpoints have something to work on
	err = store.Put(c, "123", Cart{UID: "123", CreatedAt: mytime.ExampleTime, LastModified: mytime.ExampleTime, Items: []Item{}})
	assert.NoError(t, err)

	subscriber := mypubsub.NewMockPubSub(ctrl)
	subscriber.EXPECT().CreateTopic(gomock.Any(), checkoutevents.TopicName).Return(nil)
	subscriber.EXPECT().Subscribe(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil)

	svc := NewService(store, subscriber, nower, uuider)

	router := mux.NewRouter()
	err = svc.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return router, svc, store
}
