package console_api

import (
	"net/http"

	"github.com/BearBump/PetCafe/internal/services/petgroups"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

func (a *ConsoleAPI) listGroups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := a.Groups.List(r.Context(), petgroups.Filter{
		Search:    q.Get("search"),
		SpeciesID: q.Get("species_id"),
		Page:      queryInt(r, "page"),
		PageSize:  queryInt(r, "page_size"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *ConsoleAPI) createGroup(w http.ResponseWriter, r *http.Request) {
	var in validation.GroupInput
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	g, errs, err := a.Groups.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !errs.OK() {
		writeFieldErrors(w, errs)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (a *ConsoleAPI) updateGroup(w http.ResponseWriter, r *http.Request) {
	var in validation.GroupInput
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	g, errs, err := a.Groups.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !errs.OK() {
		writeFieldErrors(w, errs)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (a *ConsoleAPI) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := a.Groups.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *ConsoleAPI) groupEligibility(w http.ResponseWriter, r *http.Request) {
	cands, err := a.Groups.Eligibility(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cands)
}

type addPetsRequest struct {
	PetIDs []string `json:"pet_ids"`
}

// addGroupPets returns the batch result also on failure, so the UI can show
// which pets were rejected or rolled back.
func (a *ConsoleAPI) addGroupPets(w http.ResponseWriter, r *http.Request) {
	var req addPetsRequest
	if err := decodeJSON(r, &req); err != nil || len(req.PetIDs) == 0 {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	res, err := a.Groups.AddPets(r.Context(), chi.URLParam(r, "id"), req.PetIDs)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, petgroups.ErrIneligible), errors.Is(err, petgroups.ErrBatch):
		writeJSON(w, errorStatus(err), map[string]any{"message": errors.Cause(err).Error(), "result": res})
	default:
		writeError(w, r, err)
	}
}

func (a *ConsoleAPI) removeGroupPet(w http.ResponseWriter, r *http.Request) {
	p, err := a.Groups.RemovePet(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "petId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *ConsoleAPI) groupStatuses(w http.ResponseWriter, r *http.Request) {
	st, err := a.Groups.Statuses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type setStatusRequest struct {
	GroupID string `json:"group_id"`
	Status  string `json:"status"`
	Note    string `json:"note"`
}

func (a *ConsoleAPI) setGroupStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	st, errs, err := a.Groups.SetStatus(r.Context(), req.GroupID, req.Status, req.Note, AccountFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !errs.OK() {
		writeFieldErrors(w, errs)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
