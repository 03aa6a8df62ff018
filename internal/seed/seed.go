// Package seed loads demo users, equipment and reservations into an empty database.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"
	"github.com/vasiliy-maslov/equipment-reservations/internal/reservation"
	"github.com/vasiliy-maslov/equipment-reservations/internal/user"
)

var demoUsers = []string{"Researcher A", "Researcher B", "Lead Researcher"}

var demoEquipment = []struct {
	name, description string
}{
	{"Microscope #1", "Optical microscope"},
	{"Centrifuge", "Sample separation"},
	{"Spectrophotometer", "Concentration measurement"},
}

type demoReservation struct {
	user, equipment string
	start, end      time.Time
	purpose         string
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var demoReservations = []demoReservation{
	{"Researcher A", "Microscope #1", day(2024, 10, 1), day(2024, 10, 5), "Sample observation"},
	{"Researcher A", "Microscope #1", day(2024, 11, 10), day(2024, 11, 12), "Data collection"},
	{"Researcher A", "Microscope #1", day(2025, 1, 20), day(2025, 1, 25), "New sample test"},
	{"Researcher B", "Centrifuge", day(2024, 10, 3), day(2024, 10, 3), "Sample separation"},
	{"Researcher B", "Centrifuge", day(2024, 12, 1), day(2024, 12, 5), "Bulk processing"},
	{"Researcher B", "Centrifuge", day(2025, 2, 15), day(2025, 2, 16), "Use before maintenance"},
	{"Lead Researcher", "Spectrophotometer", day(2024, 10, 15), day(2024, 10, 17), "Concentration analysis"},
	{"Lead Researcher", "Spectrophotometer", day(2025, 3, 1), day(2025, 3, 7), "Reagent test"},
	{"Researcher A", "Centrifuge", day(2024, 11, 5), day(2024, 11, 6), "Additional separation"},
	{"Researcher B", "Microscope #1", day(2025, 3, 10), day(2025, 3, 14), "Microstructure observation"},
	{"Lead Researcher", "Microscope #1", day(2025, 3, 15), day(2025, 3, 18), "Urgent analysis"},
	{"Researcher A", "Spectrophotometer", day(2024, 9, 1), day(2024, 9, 30), "Long-term project"},
	{"Researcher B", "Microscope #1", day(2024, 8, 15), day(2024, 8, 20), "Summer study"},
	{"Lead Researcher", "Centrifuge", day(2025, 4, 1), day(2025, 4, 10), "Spring experiment"},
}

type Loader struct {
	users        user.Repository
	equipment    equipment.Repository
	reservations reservation.Repository
}

func NewLoader(users user.Repository, equip equipment.Repository, reservations reservation.Repository) *Loader {
	return &Loader{users: users, equipment: equip, reservations: reservations}
}

// Load fills each empty table with demo rows. Tables that already hold data
// are left alone. Reservations bypass the past-date rule.
func (l *Loader) Load(ctx context.Context) error {
	users, err := l.users.List(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		for _, name := range demoUsers {
			if _, err := l.users.Create(ctx, &user.User{Name: name}); err != nil {
				return fmt.Errorf("seed user %q: %w", name, err)
			}
		}
		log.Info().Int("count", len(demoUsers)).Msg("seed: demo users created")
	}

	equip, err := l.equipment.List(ctx)
	if err != nil {
		return err
	}
	if len(equip) == 0 {
		for _, e := range demoEquipment {
			description := e.description
			if _, err := l.equipment.Create(ctx, &equipment.Equipment{Name: e.name, Description: &description}); err != nil {
				return fmt.Errorf("seed equipment %q: %w", e.name, err)
			}
		}
		log.Info().Int("count", len(demoEquipment)).Msg("seed: demo equipment created")
	}

	bounds, err := l.reservations.Bounds(ctx)
	if err != nil {
		return err
	}
	if bounds != nil {
		log.Info().Msg("seed: reservations already present, skipping")
		return nil
	}

	created := 0
	for _, d := range demoReservations {
		r, err := l.resolve(ctx, d)
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn().Str("user", d.user).Str("equipment", d.equipment).Msg("seed: demo reference missing, reservation skipped")
			continue
		}
		if err != nil {
			return err
		}
		if err := l.reservations.Save(ctx, r, nil); err != nil {
			return fmt.Errorf("seed reservation %s/%s: %w", d.user, d.equipment, err)
		}
		created++
	}
	log.Info().Int("count", created).Msg("seed: demo reservations created")
	return nil
}

func (l *Loader) resolve(ctx context.Context, d demoReservation) (*reservation.Reservation, error) {
	u, err := l.users.GetByName(ctx, d.user)
	if err != nil {
		return nil, err
	}
	e, err := l.equipment.GetByName(ctx, d.equipment)
	if err != nil {
		return nil, err
	}
	purpose := d.purpose
	return &reservation.Reservation{
		UserID:      u.ID,
		EquipmentID: e.ID,
		StartDate:   d.start,
		EndDate:     d.end,
		Purpose:     &purpose,
	}, nil
}
