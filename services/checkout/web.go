package checkout

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mycontext"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myerrors"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myhttp"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

func (s *service) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/checkout", s.startCheckoutPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{checkoutUID}", s.getCheckoutPage()).Methods("GET")
	router.HandleFunc("/api/checkout/{checkoutUID}", s.abandonCheckoutPage()).Methods("DELETE")
	router.HandleFunc("/api/checkout/{checkoutUID}/guest", s.guestEmailPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{checkoutUID}/addresses", s.listAddressesPage()).Methods("GET")
	router.HandleFunc("/api/checkout/{checkoutUID}/address", s.enterAddressPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{checkoutUID}/address/new", s.newAddressPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{checkoutUID}/address/saved/{entryUID}", s.savedAddressPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{checkoutUID}/back/{step}", s.goBackPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{checkoutUID}/review/confirm", s.confirmReviewPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{checkoutUID}/payment", s.submitPaymentPage()).Methods("POST")
}

func (s *service) startCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		form, err := checkoutapi.NewStartCheckoutFromRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}
		if form.CartUID == "" {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing cartUid")))
			return
		}

		// populated by the auth middleware for signed-in shoppers
		shopperUID := r.Header.Get("X-Shopper-UID")
		email := r.Header.Get("X-Shopper-Email")

		session, err := s.start(c, form.CartUID, shopperUID, email)
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *service) getCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		session, err := s.getSession(c, mux.Vars(r)["checkoutUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *service) abandonCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		checkoutUID := mux.Vars(r)["checkoutUID"]

		err := s.abandon(c, checkoutUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: fmt.Sprintf("checkout %s abandoned", checkoutUID)})
	}
}

func (s *service) guestEmailPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		form, err := checkoutapi.NewGuestEmailFromRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		session, err := s.submitGuestEmail(c, mux.Vars(r)["checkoutUID"], form.Email)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *service) listAddressesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		entries, err := s.listAddresses(c, mux.Vars(r)["checkoutUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, entries)
	}
}

func (s *service) enterAddressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		address, err := checkoutapi.NewAddressFromRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		session, err := s.enterAddress(c, mux.Vars(r)["checkoutUID"], address)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *service) newAddressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		session, err := s.startNewAddress(c, mux.Vars(r)["checkoutUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *service) savedAddressPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		vars := mux.Vars(r)

		session, err := s.selectSavedAddress(c, vars["checkoutUID"], vars["entryUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *service) goBackPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)
		vars := mux.Vars(r)

		step, err := ParseStep(vars["step"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}

		session, err := s.goBack(c, vars["checkoutUID"], step)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *service) confirmReviewPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		session, err := s.confirmReview(c, mux.Vars(r)["checkoutUID"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, session)
	}
}

func (s *service) submitPaymentPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		form, err := checkoutapi.NewPaymentFromRequest(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		result, err := s.submitPayment(c, mux.Vars(r)["checkoutUID"], form.ReturnURL)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, result)
	}
}
