package equipment

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
)

type Service interface {
	CreateEquipment(ctx context.Context, e *Equipment) (*Equipment, error)
	GetEquipmentByID(ctx context.Context, id int64) (*Equipment, error)
	ListEquipment(ctx context.Context) ([]Equipment, error)
	UpdateEquipment(ctx context.Context, e *Equipment) (*Equipment, error)
	DeleteEquipment(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func normalize(e *Equipment) error {
	e.Name = strings.TrimSpace(e.Name)
	if e.Name == "" {
		return apperr.Validation("equipment name is required")
	}
	if e.Description != nil {
		d := strings.TrimSpace(*e.Description)
		if d == "" {
			e.Description = nil
		} else {
			e.Description = &d
		}
	}
	return nil
}

// checkNameFree returns a conflict carrying the existing equipment when name is taken by another id.
func (s *service) checkNameFree(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return apperr.Conflict(existing, "equipment name %q already exists", name)
}

func (s *service) CreateEquipment(ctx context.Context, e *Equipment) (*Equipment, error) {
	if err := normalize(e); err != nil {
		return nil, err
	}

	if err := s.checkNameFree(ctx, e.Name, 0); err != nil {
		log.Warn().Err(err).Str("name", e.Name).Msg("service: cannot create equipment")
		return nil, err
	}

	id, err := s.repo.Create(ctx, e)
	if err != nil {
		log.Error().Err(err).Str("name", e.Name).Msg("service: failed to create equipment in repository")
		return nil, err
	}
	e.ID = id

	log.Info().Int64("equipment_id", id).Str("name", e.Name).Msg("service: equipment created")
	return e, nil
}

func (s *service) GetEquipmentByID(ctx context.Context, id int64) (*Equipment, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Error().Err(err).Int64("equipment_id", id).Msg("service: failed to get equipment")
		}
		return nil, err
	}

	return e, nil
}

func (s *service) ListEquipment(ctx context.Context) ([]Equipment, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list equipment")
		return nil, err
	}

	return items, nil
}

func (s *service) UpdateEquipment(ctx context.Context, e *Equipment) (*Equipment, error) {
	if err := normalize(e); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	if err := s.checkNameFree(ctx, e.Name, e.ID); err != nil {
		log.Warn().Err(err).Int64("equipment_id", e.ID).Str("name", e.Name).Msg("service: cannot rename equipment")
		return nil, err
	}

	if err := s.repo.Update(ctx, e); err != nil {
		log.Error().Err(err).Int64("equipment_id", e.ID).Msg("service: failed to update equipment")
		return nil, err
	}
	e.CreatedAt = current.CreatedAt

	return e, nil
}

func (s *service) DeleteEquipment(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteWithReservations(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn().Int64("equipment_id", id).Msg("service: equipment not found for deletion")
		} else {
			log.Error().Err(err).Int64("equipment_id", id).Msg("service: failed to delete equipment")
		}
		return err
	}

	log.Info().Int64("equipment_id", id).Int64("reservations_deleted", deleted).Msg("service: equipment deleted")
	return nil
}
