package checkoutapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressValidity(t *testing.T) {
	complete := ShippingAddress{
		FullName: "Dana Whitfield",
		Phone:    "+15125550101",
		Line1:    "901 Barton Springs Rd",
		City:     "Austin",
		State:    "TX",
		Zip:      "78704",
	}

	t.Run("complete address is valid", func(t *testing.T) {
		assert.True(t, complete.Valid())
		assert.Empty(t, complete.MissingField())
	})

	t.Run("missing city blocks", func(t *testing.T) {
		noCity := complete
		noCity.City = ""
		assert.False(t, noCity.Valid())
		assert.Equal(t, "city", noCity.MissingField())
	})

	t.Run("phone and state are optional", func(t *testing.T) {
		bare := complete
		bare.Phone = ""
		bare.State = ""
		assert.True(t, bare.Valid())
	})
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.co"))
	assert.True(t, ValidEmail("dana.whitfield+parts@example.com"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("a@b"))
	assert.False(t, ValidEmail("a b@c.co"))
}

func TestAddressFormDecoding(t *testing.T) {
	body := "fullName=Dana+Whitfield&line1=901+Barton+Springs+Rd&city=Austin&state=TX&zip=78704"
	request, err := http.NewRequest(http.MethodPost, "/api/checkout/123/address", strings.NewReader(body))
	assert.NoError(t, err)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	address, err := NewAddressFromRequest(request)
	assert.NoError(t, err)
	assert.Equal(t, "Dana Whitfield", address.FullName)
	assert.Equal(t, "Austin", address.City)
	assert.True(t, address.Valid())
}
