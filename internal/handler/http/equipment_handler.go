package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"
)

type EquipmentRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type EquipmentResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toEquipmentResponse(e equipment.Equipment) EquipmentResponse {
	return EquipmentResponse{ID: e.ID, Name: e.Name, Description: e.Description, CreatedAt: e.CreatedAt}
}

type EquipmentHandler struct {
	service  equipment.Service
	validate *validator.Validate
}

func NewEquipmentHandler(service equipment.Service) *EquipmentHandler {
	return &EquipmentHandler{service: service, validate: newValidator()}
}

func (h *EquipmentHandler) RegisterRoutes(router chi.Router) {
	router.Get("/equipment", h.handleListEquipment)
	router.Post("/equipment", h.handleCreateEquipment)
	router.Get("/equipment/{id}", h.handleGetEquipment)
	router.Put("/equipment/{id}", h.handleUpdateEquipment)
	router.Delete("/equipment/{id}", h.handleDeleteEquipment)
}

func (h *EquipmentHandler) handleListEquipment(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListEquipment(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "Failed to list equipment")
		return
	}

	response := make([]EquipmentResponse, 0, len(items))
	for _, e := range items {
		response = append(response, toEquipmentResponse(e))
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *EquipmentHandler) handleCreateEquipment(w http.ResponseWriter, r *http.Request) {
	var requestPayload EquipmentRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	created, err := h.service.CreateEquipment(r.Context(), &equipment.Equipment{
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to create equipment")
		return
	}

	respondWithJSON(w, http.StatusCreated, toEquipmentResponse(*created))
}

func (h *EquipmentHandler) handleGetEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	found, err := h.service.GetEquipmentByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get equipment")
		return
	}

	respondWithJSON(w, http.StatusOK, toEquipmentResponse(*found))
}

func (h *EquipmentHandler) handleUpdateEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var requestPayload EquipmentRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	updated, err := h.service.UpdateEquipment(r.Context(), &equipment.Equipment{
		ID:          id,
		Name:        requestPayload.Name,
		Description: requestPayload.Description,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to update equipment")
		return
	}

	respondWithJSON(w, http.StatusOK, toEquipmentResponse(*updated))
}

func (h *EquipmentHandler) handleDeleteEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteEquipment(r.Context(), id); err != nil {
		respondWithServiceError(w, err, "Failed to delete equipment")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Equipment and its reservations deleted"})
}
