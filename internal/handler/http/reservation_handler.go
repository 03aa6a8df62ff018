package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/interval"
	"github.com/vasiliy-maslov/equipment-reservations/internal/reservation"
)

// IDField accepts an id sent either as a JSON number or as a string.
// Parsing into an integer is left to reservation validation.
type IDField string

func (f *IDField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = IDField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a number or a numeric string")
	}
	*f = IDField(n.String())
	return nil
}

type ReservationRequest struct {
	UserID      IDField `json:"user_id"`
	EquipmentID IDField `json:"equipment_id"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	Purpose     *string `json:"purpose" validate:"omitempty,max=500"`
}

func (req ReservationRequest) draft() reservation.Draft {
	return reservation.Draft{
		UserID:      string(req.UserID),
		EquipmentID: string(req.EquipmentID),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Purpose:     req.Purpose,
	}
}

type ReservationResponse struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	UserName      string    `json:"user_name"`
	EquipmentID   int64     `json:"equipment_id"`
	EquipmentName string    `json:"equipment_name"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Purpose       *string   `json:"purpose"`
	CreatedAt     time.Time `json:"created_at"`
}

func toReservationResponse(r reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		UserName:      r.UserName,
		EquipmentID:   r.EquipmentID,
		EquipmentName: r.EquipmentName,
		StartDate:     interval.Format(r.StartDate),
		EndDate:       interval.Format(r.EndDate),
		Purpose:       r.Purpose,
		CreatedAt:     r.CreatedAt,
	}
}

type ReservationHandler struct {
	service  reservation.Service
	validate *validator.Validate
}

func NewReservationHandler(service reservation.Service) *ReservationHandler {
	return &ReservationHandler{service: service, validate: newValidator()}
}

func (h *ReservationHandler) RegisterRoutes(router chi.Router) {
	router.Get("/reservations", h.handleListReservations)
	router.Post("/reservations", h.handleCreateReservation)
	router.Get("/reservations/{id}", h.handleGetReservation)
	router.Put("/reservations/{id}", h.handleUpdateReservation)
	router.Delete("/reservations/{id}", h.handleDeleteReservation)
}

// parseDateParam reads an optional YYYY-MM-DD query parameter.
func parseDateParam(q url.Values, name string) (*time.Time, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := interval.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &t, nil
}

// parseIDParams merges the single and list forms of an id filter, e.g.
// equipment_id=3 and equipment_ids=4,5.
func parseIDParams(q url.Values, single, list string) ([]int64, error) {
	ids, err := parseIDList(q.Get(single))
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer: %w", single, err)
	}
	more, err := parseIDList(q.Get(list))
	if err != nil {
		return nil, fmt.Errorf("%s must be comma separated integers: %w", list, err)
	}
	return append(ids, more...), nil
}

func (h *ReservationHandler) handleListReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := reservation.Filter{Mode: reservation.ViewRange}

	var err error
	if filter.From, err = parseDateParam(q, "start"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.To, err = parseDateParam(q, "end"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.EquipmentIDs, err = parseIDParams(q, "equipment_id", "equipment_ids"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.UserIDs, err = parseIDParams(q, "user_id", "user_ids"); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	reservations, err := h.service.ListReservations(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, err, "Failed to list reservations")
		return
	}

	response := make([]ReservationResponse, 0, len(reservations))
	for _, res := range reservations {
		response = append(response, toReservationResponse(res))
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *ReservationHandler) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	found, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get reservation")
		return
	}

	respondWithJSON(w, http.StatusOK, toReservationResponse(*found))
}

func (h *ReservationHandler) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var requestPayload ReservationRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	created, err := h.service.CreateReservation(r.Context(), requestPayload.draft())
	if err != nil {
		respondWithServiceError(w, err, "Failed to create reservation")
		return
	}

	respondWithJSON(w, http.StatusCreated, toReservationResponse(*created))
}

func (h *ReservationHandler) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.service.GetReservation(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to get reservation")
		return
	}

	var requestPayload ReservationRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateReservation(r.Context(), id, requestPayload.draft())
	if err != nil {
		respondWithServiceError(w, err, "Failed to update reservation")
		return
	}

	respondWithJSON(w, http.StatusOK, toReservationResponse(*updated))
}

func (h *ReservationHandler) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteReservation(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete reservation")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Reservation deleted"})
}
