package http_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"

	handler "github.com/vasiliy-maslov/equipment-reservations/internal/handler/http"
)

func TestEquipmentHandler_Create_Success(t *testing.T) {
	s := newTestServer("")

	created := &equipment.Equipment{ID: 4, Name: "Centrifuge", CreatedAt: time.Now().Truncate(time.Second)}
	s.equipment.On("CreateEquipment", mock.Anything, mock.MatchedBy(func(e *equipment.Equipment) bool {
		return e.Name == "Centrifuge" && e.Description != nil && *e.Description == "Sample separation"
	})).Return(created, nil).Once()

	rr := s.do(http.MethodPost, "/api/equipment", `{"name": "Centrifuge", "description": "Sample separation"}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	var got handler.EquipmentResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, int64(4), got.ID)
	assert.WithinDuration(t, created.CreatedAt, got.CreatedAt, time.Second)
	s.equipment.AssertExpectations(t)
}

func TestEquipmentHandler_Create_ValidationFailed(t *testing.T) {
	s := newTestServer("")

	rr := s.do(http.MethodPost, "/api/equipment", `{"description": "no name"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	var got handler.ValidationErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, "is required", got.Details["name"])
	s.equipment.AssertNotCalled(t, "CreateEquipment", mock.Anything, mock.Anything)
}

func TestEquipmentHandler_Create_NameExists(t *testing.T) {
	s := newTestServer("")

	existing := &equipment.Equipment{ID: 1, Name: "Microscope"}
	s.equipment.On("CreateEquipment", mock.Anything, mock.Anything).
		Return(nil, apperr.Conflict(existing, `equipment name "Microscope" already exists`)).Once()

	rr := s.do(http.MethodPost, "/api/equipment", `{"name": "Microscope"}`)

	require.Equal(t, http.StatusConflict, rr.Code)
	var got map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, `equipment name "Microscope" already exists`, got["message"])
	conflict, ok := got["conflict"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Microscope", conflict["name"])
}

func TestEquipmentHandler_Update(t *testing.T) {
	s := newTestServer("")

	s.equipment.On("UpdateEquipment", mock.Anything, mock.MatchedBy(func(e *equipment.Equipment) bool {
		return e.ID == 2 && e.Name == "Microscope #2"
	})).Return(&equipment.Equipment{ID: 2, Name: "Microscope #2"}, nil).Once()
	s.equipment.On("UpdateEquipment", mock.Anything, mock.MatchedBy(func(e *equipment.Equipment) bool {
		return e.ID == 9
	})).Return(nil, apperr.NotFound("equipment 9 not found")).Once()

	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/equipment/2", `{"name": "Microscope #2"}`).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/equipment/9", `{"name": "Ghost"}`).Code)
	s.equipment.AssertExpectations(t)
}

func TestEquipmentHandler_ListGetDelete(t *testing.T) {
	s := newTestServer("")

	s.equipment.On("ListEquipment", mock.Anything).Return([]equipment.Equipment{{ID: 1, Name: "Microscope"}}, nil).Once()
	s.equipment.On("GetEquipmentByID", mock.Anything, int64(1)).Return(&equipment.Equipment{ID: 1, Name: "Microscope"}, nil).Once()
	s.equipment.On("DeleteEquipment", mock.Anything, int64(1)).Return(nil).Once()
	s.equipment.On("DeleteEquipment", mock.Anything, int64(2)).
		Return(apperr.Storage(assert.AnError, "repository: failed to commit transaction")).Once()

	rr := s.do(http.MethodGet, "/api/equipment", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []handler.EquipmentResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&list))
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/equipment/1", "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodDelete, "/api/equipment/1", "").Code)
	assert.Equal(t, http.StatusInternalServerError, s.do(http.MethodDelete, "/api/equipment/2", "").Code)
	s.equipment.AssertExpectations(t)
}
