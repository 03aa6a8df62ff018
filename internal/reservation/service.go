package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/db"
)

type Service interface {
	ListReservations(ctx context.Context, filter Filter) ([]Reservation, error)
	GetReservation(ctx context.Context, id int64) (*Reservation, error)
	CreateReservation(ctx context.Context, draft Draft) (*Reservation, error)
	UpdateReservation(ctx context.Context, id int64, draft Draft) (*Reservation, error)
	DeleteReservation(ctx context.Context, id int64) error
}

type Options struct {
	// AllowPastDates disables the rule rejecting reservations that start before today.
	AllowPastDates bool
	// MaxSaveAttempts bounds the replays of a save that lost a serialization race.
	MaxSaveAttempts int
	// Now defaults to time.Now.
	Now func() time.Time
}

type service struct {
	repo        Repository
	pipeline    Pipeline
	maxAttempts int
}

func NewService(repo Repository, users UserLookup, equip EquipmentLookup, opts Options) Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MaxSaveAttempts < 1 {
		opts.MaxSaveAttempts = 1
	}

	pipeline := Pipeline{ParseFields, OrderedDates}
	if !opts.AllowPastDates {
		pipeline = append(pipeline, NotInPast(opts.Now))
	}
	pipeline = append(pipeline, ReferencesExist(users, equip))

	return &service{repo: repo, pipeline: pipeline, maxAttempts: opts.MaxSaveAttempts}
}

func (s *service) ListReservations(ctx context.Context, filter Filter) ([]Reservation, error) {
	reservations, err := s.repo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("mode", filter.Mode.String()).Msg("service: failed to list reservations")
		return nil, err
	}
	return reservations, nil
}

func (s *service) GetReservation(ctx context.Context, id int64) (*Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Error().Err(err).Int64("reservation_id", id).Msg("service: failed to get reservation")
		}
		return nil, err
	}
	return r, nil
}

func (s *service) CreateReservation(ctx context.Context, draft Draft) (*Reservation, error) {
	r, err := s.validateAndSave(ctx, draft, 0)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("reservation_id", r.ID).Int64("equipment_id", r.EquipmentID).
		Str("interval", r.Interval().String()).Msg("service: reservation created")
	return r, nil
}

func (s *service) UpdateReservation(ctx context.Context, id int64, draft Draft) (*Reservation, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			log.Error().Err(err).Int64("reservation_id", id).Msg("service: failed to load reservation for update")
		}
		return nil, err
	}

	r, err := s.validateAndSave(ctx, draft, current.ID)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("reservation_id", r.ID).Str("interval", r.Interval().String()).Msg("service: reservation updated")
	return r, nil
}

// validateAndSave runs the validation pipeline and persists the result with
// the conflict check inside the write transaction. id is zero for creates.
func (s *service) validateAndSave(ctx context.Context, draft Draft, id int64) (*Reservation, error) {
	for attempt := 1; ; attempt++ {
		c := &Candidate{Draft: draft}
		if err := s.pipeline.Run(ctx, c); err != nil {
			s.logRejected(err, id)
			return nil, err
		}

		r := c.Reservation()
		r.ID = id
		err := s.repo.Save(ctx, r, func(existing []Reservation) error {
			return NoConflict(existing, id)(ctx, c)
		})
		if err == nil {
			return r, nil
		}

		if !db.IsRetryable(err) {
			s.logRejected(err, id)
			return nil, err
		}
		if attempt >= s.maxAttempts {
			log.Warn().Err(err).Int("attempts", attempt).Int64("equipment_id", c.EquipmentID).
				Msg("service: giving up on concurrent reservation save")
			return nil, apperr.Conflict(nil, "equipment is being reserved concurrently for an overlapping period, try again")
		}
		log.Debug().Err(err).Int("attempt", attempt).Msg("service: retrying reservation save")
	}
}

func (s *service) logRejected(err error, id int64) {
	event := log.Warn()
	if errors.Is(err, apperr.ErrStorage) {
		event = log.Error()
	}
	event.Err(err).Int64("reservation_id", id).Msg("service: reservation rejected")
}

func (s *service) DeleteReservation(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn().Int64("reservation_id", id).Msg("service: reservation not found for deletion")
		} else {
			log.Error().Err(err).Int64("reservation_id", id).Msg("service: failed to delete reservation")
		}
		return err
	}

	log.Info().Int64("reservation_id", id).Msg("service: reservation deleted")
	return nil
}
