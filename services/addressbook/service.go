package addressbook

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/gorilla/mux"

	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mycontext"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myerrors"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myhttp"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mylog"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mystore"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/mytime"
	"github.com/hassiiiwilliam-create/modlift-sub000/lib/myuuid"
	"github.com/hassiiiwilliam-create/modlift-sub000/services/checkoutapi"
)

type service struct {
	entryStore mystore.Store[Entry]
	logger     mylog.Logger
	nower      mytime.Nower
	uuider     myuuid.UUIDer
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(entryStore mystore.Store[Entry], nower mytime.Nower, uuider myuuid.UUIDer) *service {
	return &service{
		entryStore: entryStore,
		logger:     mylog.New("addressbook"),
		nower:      nower,
		uuider:     uuider,
	}
}

func (s *service) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/addressbook", s.listEntriesPage()).Methods("GET")
	router.HandleFunc("/api/addressbook", s.createEntryPage()).Methods("POST")
	router.HandleFunc("/api/addressbook/{entryUID}/default", s.markDefaultPage()).Methods("PUT")
	router.HandleFunc("/api/addressbook/{entryUID}", s.deleteEntryPage()).Methods("DELETE")
}

// ListForShopper returns a shopper's entries ordered default-first,
// then most-recently-created.
func (s *service) ListForShopper(c context.Context, shopperUID string) ([]Entry, error) {
	entries, err := s.entryStore.Query(c,
		[]mystore.Filter{{Field: "ShopperUID", Compare: "=", Value: shopperUID}}, "-CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching addressbook of shopper %s: %s", shopperUID, err))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].IsDefault && !entries[j].IsDefault
	})

	return entries, nil
}

func (s *service) Get(c context.Context, entryUID string) (Entry, bool, error) {
	return s.entryStore.Get(c, entryUID)
}

func (s *service) createEntry(c context.Context, shopperUID string, label string, isDefault bool, address checkoutapi.ShippingAddress) (Entry, error) {
	if !address.Valid() {
		return Entry{}, myerrors.NewInvalidInputErrorf("invalid address: %s is mandatory", address.MissingField())
	}

	entry := Entry{
		UID:        s.uuider.Create(),
		ShopperUID: shopperUID,
		Label:      label,
		IsDefault:  isDefault,
		Address:    address,
		CreatedAt:  s.nower.Now(),
	}

	err := s.entryStore.RunInTransaction(c, func(c context.Context) error {
		if entry.IsDefault {
			err := s.clearDefault(c, shopperUID)
			if err != nil {
				return err
			}
		}
		return s.entryStore.Put(c, entry.UID, entry)
	})
	if err != nil {
		return Entry{}, err
	}

	s.logger.Log(c, shopperUID, mylog.SeverityInfo, "Created addressbook entry %s for shopper %s", entry.UID, shopperUID)

	return entry, nil
}

func (s *service) markDefault(c context.Context, entryUID string) (Entry, error) {
	var entry Entry
	err := s.entryStore.RunInTransaction(c, func(c context.Context) error {
		var found bool
		var err error
		entry, found, err = s.entryStore.Get(c, entryUID)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("addressbook entry with uid %s not found", entryUID))
		}

		// at most one default per shopper
		err = s.clearDefault(c, entry.ShopperUID)
		if err != nil {
			return err
		}

		entry.IsDefault = true
		return s.entryStore.Put(c, entry.UID, entry)
	})
	if err != nil {
		return Entry{}, err
	}

	return entry, nil
}

func (s *service) clearDefault(c context.Context, shopperUID string) error {
	current, err := s.entryStore.Query(c, []mystore.Filter{
		{Field: "ShopperUID", Compare: "=", Value: shopperUID},
		{Field: "IsDefault", Compare: "=", Value: true},
	}, "CreatedAt")
	if err != nil {
		return myerrors.NewInternalError(err)
	}
	for _, existing := range current {
		existing.IsDefault = false
		err = s.entryStore.Put(c, existing.UID, existing)
		if err != nil {
			return myerrors.NewInternalError(err)
		}
	}
	return nil
}

func (s *service) listEntriesPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		shopperUID := r.Header.Get("X-Shopper-UID")
		if shopperUID == "" {
			errorWriter.WriteError(c, w, 1, myerrors.NewAuthenticationError(fmt.Errorf("addressbook requires an authenticated shopper")))
			return
		}

		entries, err := s.ListForShopper(c, shopperUID)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, entries)
	}
}

func (s *service) createEntryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		shopperUID := r.Header.Get("X-Shopper-UID")
		if shopperUID == "" {
			errorWriter.WriteError(c, w, 1, myerrors.NewAuthenticationError(fmt.Errorf("addressbook requires an authenticated shopper")))
			return
		}

		address, err := checkoutapi.NewAddressFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		entry, err := s.createEntry(c, shopperUID, r.Form.Get("label"), r.Form.Get("isDefault") == "true", address)
		if err != nil {
			errorWriter.WriteError(c, w, 3, err)
			return
		}

		errorWriter.Write(c, w, http.StatusCreated, entry)
	}
}

func (s *service) markDefaultPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		entry, err := s.markDefault(c, mux.Vars(r)["entryUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, entry)
	}
}

func (s *service) deleteEntryPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := s.entryStore.Delete(c, mux.Vars(r)["entryUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(err))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}
