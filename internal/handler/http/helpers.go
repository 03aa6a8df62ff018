package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"
	"github.com/vasiliy-maslov/equipment-reservations/internal/reservation"
	"github.com/vasiliy-maslov/equipment-reservations/internal/user"
)

type ErrorResponse struct {
	Message             string               `json:"message"`
	Error               string               `json:"error"`
	ConflictReservation *ReservationResponse `json:"conflict_reservation,omitempty"`
	Conflict            any                  `json:"conflict,omitempty"`
}

type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

// respondWithError sends a plain error with message as the human readable text.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Message: message, Error: http.StatusText(code)})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Failed to marshal JSON response","error":"Internal Server Error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrRange),
		errors.Is(err, apperr.ErrPastDate):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithServiceError renders err from a service call. Internal failures
// are logged and replaced by fallback so storage details do not leak.
func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg(fallback)
		respondWithError(w, code, fallback)
		return
	}

	resp := ErrorResponse{Message: apperr.Message(err), Error: http.StatusText(code)}
	switch c := apperr.ConflictOf(err).(type) {
	case *reservation.Reservation:
		conflict := toReservationResponse(*c)
		resp.ConflictReservation = &conflict
	case *equipment.Equipment:
		resp.Conflict = toEquipmentResponse(*c)
	case *user.User:
		resp.Conflict = toUserResponse(*c)
	}
	respondWithJSON(w, code, resp)
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "max":
			details[field] = fmt.Sprintf("must be at most %s characters", fe.Param())
		case "min":
			details[field] = fmt.Sprintf("must be at least %s characters", fe.Param())
		default:
			details[field] = fmt.Sprintf("failed on %q", fe.Tag())
		}
	}
	return details
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// decodeAndValidate reads a JSON body into dst and checks its struct tags.
// It writes the 400 response itself and reports whether decoding succeeded.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request payload: %v", err))
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Message: "Validation failed",
				Error:   http.StatusText(http.StatusBadRequest),
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}
	return true
}

func parseIDParam(r *http.Request) (int64, error) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id parameter %q", idParam)
	}
	return id, nil
}

// parseIDList reads a comma separated list of ids; blanks are skipped.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
