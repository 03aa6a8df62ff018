package reservation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/equipment"
	"github.com/vasiliy-maslov/equipment-reservations/internal/interval"
	"github.com/vasiliy-maslov/equipment-reservations/internal/user"
)

// Draft is a reservation request as received from a client, before any parsing.
type Draft struct {
	UserID      string
	EquipmentID string
	StartDate   string
	EndDate     string
	Purpose     *string
}

// Candidate carries a Draft through the validation rules. Each rule fills in
// the fields later rules depend on.
type Candidate struct {
	Draft Draft

	UserID      int64
	EquipmentID int64
	Start       time.Time
	End         time.Time
	Interval    interval.Interval

	User      *user.User
	Equipment *equipment.Equipment
}

// Reservation builds the reservation to be persisted from a validated candidate.
func (c *Candidate) Reservation() *Reservation {
	r := &Reservation{
		UserID:      c.UserID,
		EquipmentID: c.EquipmentID,
		StartDate:   c.Interval.Start,
		EndDate:     c.Interval.End,
	}
	if c.Draft.Purpose != nil {
		if p := strings.TrimSpace(*c.Draft.Purpose); p != "" {
			r.Purpose = &p
		}
	}
	if c.User != nil {
		r.UserName = c.User.Name
	}
	if c.Equipment != nil {
		r.EquipmentName = c.Equipment.Name
	}
	return r
}

// Rule is one validation step. Rules run in order and the first error wins.
type Rule func(ctx context.Context, c *Candidate) error

type Pipeline []Rule

func (p Pipeline) Run(ctx context.Context, c *Candidate) error {
	for _, rule := range p {
		if err := rule(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id int64) (*user.User, error)
}

type EquipmentLookup interface {
	GetEquipmentByID(ctx context.Context, id int64) (*equipment.Equipment, error)
}

// ParseFields checks that every required field is present and well typed.
func ParseFields(_ context.Context, c *Candidate) error {
	d := c.Draft
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"user_id", d.UserID},
		{"equipment_id", d.EquipmentID},
		{"start_date", d.StartDate},
		{"end_date", d.EndDate},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("missing required fields: %s", strings.Join(missing, ", "))
	}

	var err error
	if c.UserID, err = parseID("user_id", d.UserID); err != nil {
		return err
	}
	if c.EquipmentID, err = parseID("equipment_id", d.EquipmentID); err != nil {
		return err
	}
	if c.Start, err = interval.Parse(d.StartDate); err != nil {
		return apperr.Validation("start_date: %v", err)
	}
	if c.End, err = interval.Parse(d.EndDate); err != nil {
		return apperr.Validation("end_date: %v", err)
	}
	return nil
}

func parseID(field, value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("%s must be a positive integer, got %q", field, value)
	}
	return id, nil
}

// OrderedDates requires start_date <= end_date.
func OrderedDates(_ context.Context, c *Candidate) error {
	iv, err := interval.New(c.Start, c.End)
	if err != nil {
		if errors.Is(err, interval.ErrInvertedInterval) {
			return apperr.Range("start date %s cannot be after end date %s",
				interval.Format(c.Start), interval.Format(c.End))
		}
		return apperr.Validation("%v", err)
	}
	c.Interval = iv
	return nil
}

// NotInPast rejects candidates starting before the current calendar date.
func NotInPast(now func() time.Time) Rule {
	return func(_ context.Context, c *Candidate) error {
		today := interval.Today(now())
		if c.Interval.Start.Before(today) {
			return apperr.PastDate("cannot create reservation in the past: %s is before %s",
				interval.Format(c.Interval.Start), interval.Format(today))
		}
		return nil
	}
}

// ReferencesExist resolves the referenced user, then the equipment.
func ReferencesExist(users UserLookup, equip EquipmentLookup) Rule {
	return func(ctx context.Context, c *Candidate) error {
		u, err := users.GetUserByID(ctx, c.UserID)
		if err != nil {
			return err
		}
		e, err := equip.GetEquipmentByID(ctx, c.EquipmentID)
		if err != nil {
			return err
		}
		c.User, c.Equipment = u, e
		return nil
	}
}

// NoConflict rejects candidates overlapping any of existing, other than excludeID.
func NoConflict(existing []Reservation, excludeID int64) Rule {
	return func(_ context.Context, c *Candidate) error {
		if found := FindConflict(existing, c.EquipmentID, c.Interval, excludeID); found != nil {
			return apperr.Conflict(found, "equipment is already reserved from %s to %s",
				interval.Format(found.StartDate), interval.Format(found.EndDate))
		}
		return nil
	}
}
