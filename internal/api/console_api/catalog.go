package console_api

import (
	"net/http"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/go-chi/chi/v5"
)

// Catalog lists feed pickers and dashboards; a failing backend renders
// them empty instead of breaking the page.

func (a *ConsoleAPI) listProducts(w http.ResponseWriter, r *http.Request) {
	items, err := a.Catalog.ListProducts(r.Context())
	writeJSON(w, http.StatusOK, cafeapi.Lenient(items, err, "products"))
}

func (a *ConsoleAPI) listProductCategories(w http.ResponseWriter, r *http.Request) {
	items, err := a.Catalog.ListProductCategories(r.Context())
	writeJSON(w, http.StatusOK, cafeapi.Lenient(items, err, "product-categories"))
}

func (a *ConsoleAPI) listServices(w http.ResponseWriter, r *http.Request) {
	items, err := a.Catalog.ListServices(r.Context())
	writeJSON(w, http.StatusOK, cafeapi.Lenient(items, err, "services"))
}

func (a *ConsoleAPI) listTeams(w http.ResponseWriter, r *http.Request) {
	items, err := a.Catalog.ListTeams(r.Context())
	writeJSON(w, http.StatusOK, cafeapi.Lenient(items, err, "teams"))
}

func (a *ConsoleAPI) getTeam(w http.ResponseWriter, r *http.Request) {
	t, err := a.Catalog.GetTeam(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *ConsoleAPI) listNotifications(w http.ResponseWriter, r *http.Request) {
	l, err := a.Catalog.ListNotifications(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *ConsoleAPI) listOrders(w http.ResponseWriter, r *http.Request) {
	l, err := a.Catalog.ListOrders(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (a *ConsoleAPI) listTransactions(w http.ResponseWriter, r *http.Request) {
	l, err := a.Catalog.ListTransactions(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}
