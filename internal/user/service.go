package user

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
)

type Service interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateUser(ctx context.Context, user *User) (*User, error) {
	user.Name = strings.TrimSpace(user.Name)
	if user.Name == "" {
		return nil, apperr.Validation("user name is required")
	}

	existing, err := s.repo.GetByName(ctx, user.Name)
	switch {
	case err == nil:
		log.Warn().Str("name", user.Name).Int64("existing_id", existing.ID).Msg("service: user name already taken")
		return nil, apperr.Conflict(existing, "user name %q already exists", user.Name)
	case !errors.Is(err, apperr.ErrNotFound):
		log.Error().Err(err).Msg("service: failed to look up user by name")
		return nil, err
	}

	createdID, err := s.repo.Create(ctx, user)
	if err != nil {
		log.Error().Err(err).Str("name", user.Name).Msg("service: failed to create user in repository")
		return nil, err
	}
	user.ID = createdID

	return user, nil
}

func (s *service) GetUserByID(ctx context.Context, id int64) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Error().Err(err).Int64("user_id", id).Msg("service: failed to get user by id")
		}
		return nil, err
	}

	return user, nil
}

func (s *service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list users")
		return nil, err
	}

	return users, nil
}

func (s *service) DeleteUser(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteWithReservations(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn().Int64("user_id", id).Msg("service: user not found for deletion")
		} else {
			log.Error().Err(err).Int64("user_id", id).Msg("service: failed to delete user")
		}
		return err
	}

	log.Info().Int64("user_id", id).Int64("reservations_deleted", deleted).Msg("service: user deleted")
	return nil
}
