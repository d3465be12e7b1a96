package console_api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/BearBump/PetCafe/internal/services/assignments"
	"github.com/BearBump/PetCafe/internal/services/cart"
	"github.com/BearBump/PetCafe/internal/services/checkout"
	"github.com/BearBump/PetCafe/internal/services/petgroups"
	"github.com/BearBump/PetCafe/internal/services/validation"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
)

const msgInternal = "Đã có lỗi xảy ra, vui lòng thử lại sau"

const msgBadRequest = "Dữ liệu gửi lên không hợp lệ"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeFieldErrors(w http.ResponseWriter, errs validation.FieldErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	return dec.Decode(v)
}

// errorStatus maps a service error to the HTTP status shown to the user.
// 0 means the error is internal.
func errorStatus(err error) int {
	if code := cafeapi.StatusCode(err); code != 0 {
		return code
	}
	switch {
	case errors.Is(err, cafeapi.ErrPetNotFound),
		errors.Is(err, checkout.ErrSessionNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, petgroups.ErrNotMember),
		errors.Is(err, assignments.ErrDraftNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrNoAccount):
		return http.StatusUnauthorized
	case errors.Is(err, cart.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, checkout.ErrInvalidTransition),
		errors.Is(err, petgroups.ErrGroupNotEmpty),
		errors.Is(err, petgroups.ErrBatch),
		errors.Is(err, assignments.ErrAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, petgroups.ErrIneligible),
		errors.Is(err, assignments.ErrWrongMode),
		errors.Is(err, assignments.ErrUnknownSlot),
		errors.Is(err, assignments.ErrSlotExists),
		errors.Is(err, assignments.ErrLeaderNotMember),
		errors.Is(err, assignments.ErrDuplicateStaff),
		errors.Is(err, assignments.ErrEmptyGroupName),
		errors.Is(err, assignments.ErrPetGroupCount),
		errors.Is(err, assignments.ErrIndexOutOfRange),
		errors.Is(err, assignments.ErrUnknownOp):
		return http.StatusBadRequest
	}
	return 0
}

// writeError shows known errors verbatim and hides everything else behind
// a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == 0 {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err.Error())
		writeMessage(w, http.StatusInternalServerError, msgInternal)
		return
	}
	var apiErr *cafeapi.APIError
	if errors.As(err, &apiErr) {
		writeMessage(w, status, apiErr.Error())
		return
	}
	writeMessage(w, status, errors.Cause(err).Error())
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}
