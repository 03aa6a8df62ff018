package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"
	"github.com/vasiliy-maslov/equipment-reservations/internal/interval"
	"github.com/vasiliy-maslov/equipment-reservations/internal/reservation"
	"github.com/vasiliy-maslov/equipment-reservations/internal/user"
)

// Query selects the reservations a report covers. Empty id lists match all.
type Query struct {
	Start        *time.Time
	End          *time.Time
	EquipmentIDs []int64
	UserIDs      []int64
}

type ReservationSource interface {
	List(ctx context.Context, filter reservation.Filter) ([]reservation.Reservation, error)
	Bounds(ctx context.Context) (*interval.Interval, error)
}

type EquipmentSource interface {
	ListEquipment(ctx context.Context) ([]equipment.Equipment, error)
}

type UserSource interface {
	ListUsers(ctx context.Context) ([]user.User, error)
}

type Service interface {
	Report(ctx context.Context, q Query) (*Report, error)
}

type service struct {
	reservations ReservationSource
	equipment    EquipmentSource
	users        UserSource
}

func NewService(reservations ReservationSource, equip EquipmentSource, users UserSource) Service {
	return &service{reservations: reservations, equipment: equip, users: users}
}

func (s *service) Report(ctx context.Context, q Query) (*Report, error) {
	period, err := s.resolvePeriod(ctx, q)
	if err != nil {
		return nil, err
	}

	reservations, err := s.reservations.List(ctx, reservation.Filter{
		Mode:         reservation.InclusiveRange,
		From:         q.Start,
		To:           q.End,
		EquipmentIDs: q.EquipmentIDs,
		UserIDs:      q.UserIDs,
	})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to load reservations for statistics")
		return nil, err
	}

	allEquipment, err := s.equipment.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	allUsers, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	report := Aggregate(period, reservations, allEquipment, allUsers)
	log.Debug().
		Str("total_days", report.TotalDays.String()).
		Int("reservations", len(reservations)).
		Msg("service: statistics computed")
	return report, nil
}

// resolvePeriod keeps the requested bounds, or spans all reservations when
// neither bound is given.
func (s *service) resolvePeriod(ctx context.Context, q Query) (Period, error) {
	if q.Start != nil && q.End != nil && q.Start.After(*q.End) {
		return Period{}, apperr.Range("start_date %s cannot be after end_date %s",
			interval.Format(*q.Start), interval.Format(*q.End))
	}
	if q.Start != nil || q.End != nil {
		return Period{Start: q.Start, End: q.End}, nil
	}

	bounds, err := s.reservations.Bounds(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to derive statistics period")
		return Period{}, err
	}
	if bounds == nil {
		return Period{}, nil
	}
	return Period{Start: &bounds.Start, End: &bounds.End}, nil
}
