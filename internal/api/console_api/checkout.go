package console_api

import (
	"net/http"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/checkout"
	"github.com/go-chi/chi/v5"
)

type sessionView struct {
	Session     *models.CheckoutSession `json:"session"`
	StatusLabel string                  `json:"status_label"`
}

func (a *ConsoleAPI) checkout(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	var c checkout.Contact
	if err := decodeJSON(r, &c); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	res, errs, err := a.Checkout.Checkout(r.Context(), acc, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !errs.OK() {
		writeFieldErrors(w, errs)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (a *ConsoleAPI) listCheckouts(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	ss, err := a.Checkout.Sessions(r.Context(), acc, queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (a *ConsoleAPI) getCheckout(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	cs, err := a.Checkout.Session(r.Context(), acc, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{Session: cs, StatusLabel: cs.StatusLabel()})
}

func (a *ConsoleAPI) confirmCheckout(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	cs, err := a.Checkout.Confirm(r.Context(), acc, chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView{Session: cs, StatusLabel: cs.StatusLabel()})
}
