package console_api

import (
	"net/http"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/BearBump/PetCafe/internal/services/assignments"
	"github.com/go-chi/chi/v5"
)

type assignmentView struct {
	Draft     models.AssignmentDraft  `json:"draft"`
	Conflicts []assignments.Conflict `json:"conflicts"`
}

func (a *ConsoleAPI) getAssignment(w http.ResponseWriter, r *http.Request) {
	d, err := a.Assignments.Get(r.Context(), chi.URLParam(r, "taskId"), r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentView{Draft: d, Conflicts: assignments.Conflicts(d)})
}

func (a *ConsoleAPI) putAssignment(w http.ResponseWriter, r *http.Request) {
	var d models.AssignmentDraft
	if err := decodeJSON(r, &d); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	d.TaskID = chi.URLParam(r, "taskId")
	out, err := a.Assignments.Put(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentView{Draft: out, Conflicts: assignments.Conflicts(out)})
}

func (a *ConsoleAPI) applyAssignment(w http.ResponseWriter, r *http.Request) {
	var cmd assignments.Command
	if err := decodeJSON(r, &cmd); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	out, err := a.Assignments.Apply(r.Context(), chi.URLParam(r, "taskId"), r.URL.Query().Get("mode"), cmd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentView{Draft: out, Conflicts: assignments.Conflicts(out)})
}

func (a *ConsoleAPI) submitAssignment(w http.ResponseWriter, r *http.Request) {
	d, conflicts, err := a.Assignments.Submit(r.Context(), chi.URLParam(r, "taskId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, assignmentView{Draft: d, Conflicts: conflicts})
}

func (a *ConsoleAPI) assignmentConflicts(w http.ResponseWriter, r *http.Request) {
	cs, err := a.Assignments.Conflicts(r.Context(), chi.URLParam(r, "taskId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}
