package checkoutapi

import (
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myerrors"
)

type StartCheckoutForm struct {
	CartUID string `form:"cartUid"`
}

type GuestEmailForm struct {
	Email string `form:"email"`
}

type PaymentForm struct {
	ReturnURL string `form:"returnUrl"`
}

func NewStartCheckoutFromRequest(r *http.Request) (StartCheckoutForm, error) {
	form := StartCheckoutForm{}
	err := decodeForm(r, &form)
	return form, err
}

func NewGuestEmailFromRequest(r *http.Request) (GuestEmailForm, error) {
	form := GuestEmailForm{}
	err := decodeForm(r, &form)
	return form, err
}

func NewAddressFromRequest(r *http.Request) (ShippingAddress, error) {
	address := ShippingAddress{}
	err := decodeForm(r, &address)
	return address, err
}

func NewPaymentFromRequest(r *http.Request) (PaymentForm, error) {
	form := PaymentForm{}
	err := decodeForm(r, &form)
	return form, err
}

func decodeForm(r *http.Request, target any) error {
	err := r.ParseForm()
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}
	return decodeValues(target, r.Form)
}

func decodeValues(target any, values url.Values) error {
	err := formcodec.NewDecoder().Decode(target, values)
	if err != nil {
		return myerrors.NewInvalidInputErrorf("error decoding form: %s", err)
	}
	return nil
}
