package console_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/cart"
	"github.com/go-chi/chi/v5"
)

// account returns the caller's account or answers 401.
func account(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := AccountFromContext(r.Context())
	if id == "" {
		writeMessage(w, http.StatusUnauthorized, cart.ErrNoAccount.Error())
		return "", false
	}
	return id, true
}

func (a *ConsoleAPI) cartResult(w http.ResponseWriter, r *http.Request, c models.Cart, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *ConsoleAPI) getCart(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	c, err := a.Cart.Get(r.Context(), acc)
	a.cartResult(w, r, c, err)
}

func (a *ConsoleAPI) clearCart(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	c, err := a.Cart.Clear(r.Context(), acc)
	a.cartResult(w, r, c, err)
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (a *ConsoleAPI) addCartItem(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID == "" {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	products, err := a.Catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, p := range products {
		if p.ID == req.ProductID {
			c, err := a.Cart.Add(r.Context(), acc, models.CartItem{ID: p.ID, Name: p.Name, Price: p.Price, Quantity: req.Quantity})
			a.cartResult(w, r, c, err)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, cart.ErrInvalidItem.Error())
}

type addServiceRequest struct {
	ServiceID   string `json:"service_id"`
	BookingDate string `json:"booking_date"`
}

func (a *ConsoleAPI) addCartService(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	var req addServiceRequest
	if err := decodeJSON(r, &req); err != nil || req.ServiceID == "" {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	services, err := a.Catalog.ListServices(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, s := range services {
		if s.ID == req.ServiceID {
			c, err := a.Cart.AddService(r.Context(), acc, s, req.BookingDate)
			a.cartResult(w, r, c, err)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, cart.ErrInvalidItem.Error())
}

func (a *ConsoleAPI) increaseCartItem(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	c, err := a.Cart.Increase(r.Context(), acc, chi.URLParam(r, "id"))
	a.cartResult(w, r, c, err)
}

func (a *ConsoleAPI) decreaseCartItem(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	c, err := a.Cart.Decrease(r.Context(), acc, chi.URLParam(r, "id"))
	a.cartResult(w, r, c, err)
}

func (a *ConsoleAPI) removeCartItem(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	c, err := a.Cart.Remove(r.Context(), acc, chi.URLParam(r, "id"))
	a.cartResult(w, r, c, err)
}

// cartEvents streams the account's cart as server-sent events: the current
// state first, then every change until the client goes away.
func (a *ConsoleAPI) cartEvents(w http.ResponseWriter, r *http.Request) {
	acc, ok := account(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}

	updates := make(chan models.Cart, 8)
	unsubscribe := a.Cart.Subscribe(acc, func(c models.Cart) {
		select {
		case updates <- c:
		default:
			// slow client: drop it, the next event carries the full cart anyway
		}
	})
	defer unsubscribe()

	current, err := a.Cart.Get(r.Context(), acc)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(c models.Cart) bool {
		if c.Items == nil {
			c.Items = []models.CartItem{}
		}
		b, err := json.Marshal(c)
		if err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "event: cart\ndata: %s\n\n", b); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}
	if !send(current) {
		return
	}

	hb := time.NewTicker(a.heartbeat)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case c := <-updates:
			if !send(c) {
				return
			}
		case <-hb.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
