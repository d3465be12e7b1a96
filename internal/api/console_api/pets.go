package console_api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/BearBump/PetCafe/internal/services/pets"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

var errBadRequest = errors.New(msgBadRequest)

func (a *ConsoleAPI) listPets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := a.Pets.List(r.Context(), pets.Filter{
		Search:       q.Get("search"),
		SpeciesID:    q.Get("species_id"),
		BreedID:      q.Get("breed_id"),
		GroupID:      q.Get("group_id"),
		Gender:       q.Get("gender"),
		HealthStatus: q.Get("health_status"),
		Page:         queryInt(r, "page"),
		PageSize:     queryInt(r, "page_size"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *ConsoleAPI) getPet(w http.ResponseWriter, r *http.Request) {
	p, err := a.Pets.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *ConsoleAPI) petDetail(w http.ResponseWriter, r *http.Request) {
	d, err := a.Pets.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// readPetRequest accepts either a JSON body or a multipart form with the
// pet JSON in "data" and an optional "image" file.
func readPetRequest(r *http.Request) (validation.PetInput, *pets.Image, error) {
	var in validation.PetInput
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := decodeJSON(r, &in); err != nil {
			return in, nil, errBadRequest
		}
		return in, nil, nil
	}

	if err := r.ParseMultipartForm(validation.MaxImageBytes + 1<<20); err != nil {
		return in, nil, errBadRequest
	}
	if err := json.Unmarshal([]byte(r.FormValue("data")), &in); err != nil {
		return in, nil, errBadRequest
	}
	img, err := readImage(r, "image")
	if err != nil {
		return in, nil, err
	}
	return in, img, nil
}

func readImage(r *http.Request, field string) (*pets.Image, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errBadRequest
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, validation.MaxImageBytes+1))
	if err != nil {
		return nil, errBadRequest
	}
	return &pets.Image{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func (a *ConsoleAPI) savePet(w http.ResponseWriter, r *http.Request, id string) {
	in, img, err := readPetRequest(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	p, errs, err := a.Pets.Save(r.Context(), id, in, img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !errs.OK() {
		writeFieldErrors(w, errs)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, p)
}

func (a *ConsoleAPI) createPet(w http.ResponseWriter, r *http.Request) {
	a.savePet(w, r, "")
}

func (a *ConsoleAPI) updatePet(w http.ResponseWriter, r *http.Request) {
	a.savePet(w, r, chi.URLParam(r, "id"))
}

func (a *ConsoleAPI) deletePet(w http.ResponseWriter, r *http.Request) {
	if err := a.Pets.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *ConsoleAPI) validatePet(w http.ResponseWriter, r *http.Request) {
	var in validation.PetInput
	if err := decodeJSON(r, &in); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	errs, err := a.Pets.Validate(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !errs.OK() {
		writeFieldErrors(w, errs)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

type formResponse struct {
	Input   validation.PetInput `json:"input"`
	Options pets.FormOptions    `json:"options"`
}

func (a *ConsoleAPI) petForm(w http.ResponseWriter, r *http.Request) {
	f, err := a.Pets.FormFor(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formResponse{Input: f.Input, Options: f.Options()})
}

type formChangeRequest struct {
	Input     validation.PetInput `json:"input"`
	SpeciesID string              `json:"species_id"`
	BreedID   string              `json:"breed_id"`
}

func (a *ConsoleAPI) petFormChange(w http.ResponseWriter, r *http.Request, apply func(*pets.Form, formChangeRequest)) {
	var req formChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	f, err := a.Pets.FormFor(r.Context(), "")
	if err != nil {
		writeError(w, r, err)
		return
	}
	f.Input = req.Input
	apply(f, req)
	writeJSON(w, http.StatusOK, formResponse{Input: f.Input, Options: f.Options()})
}

func (a *ConsoleAPI) petFormSpecies(w http.ResponseWriter, r *http.Request) {
	a.petFormChange(w, r, func(f *pets.Form, req formChangeRequest) { f.OnSpeciesChanged(req.SpeciesID) })
}

func (a *ConsoleAPI) petFormBreed(w http.ResponseWriter, r *http.Request) {
	a.petFormChange(w, r, func(f *pets.Form, req formChangeRequest) { f.OnBreedChanged(req.BreedID) })
}

func (a *ConsoleAPI) healthStatusOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Pets.HealthStatusOptions(r.Context()))
}

func (a *ConsoleAPI) uploadPetImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(validation.MaxImageBytes + 1<<20); err != nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	img, err := readImage(r, "file")
	if err != nil || img == nil {
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
		return
	}
	url, errs, err := a.Pets.UploadImage(r.Context(), *img)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !errs.OK() {
		writeFieldErrors(w, errs)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (a *ConsoleAPI) listSpecies(w http.ResponseWriter, r *http.Request) {
	refs, err := a.Pets.Refs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refs.Species)
}

func (a *ConsoleAPI) listBreeds(w http.ResponseWriter, r *http.Request) {
	refs, err := a.Pets.Refs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sp := r.URL.Query().Get("species_id"); sp != "" {
		writeJSON(w, http.StatusOK, refs.BreedsOf(sp))
		return
	}
	writeJSON(w, http.StatusOK, refs.Breeds)
}
