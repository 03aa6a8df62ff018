package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/db"
	"github.com/vasiliy-maslov/equipment-reservations/internal/interval"
)

// Guard inspects the reservations already booked on the candidate's
// equipment over its dates and vetoes the write by returning an error.
type Guard func(existing []Reservation) error

type Repository interface {
	List(ctx context.Context, filter Filter) ([]Reservation, error)
	GetByID(ctx context.Context, id int64) (*Reservation, error)
	// Save inserts r when r.ID is zero and updates it otherwise. guard runs in
	// the same serializable transaction as the write; a nil guard accepts.
	Save(ctx context.Context, r *Reservation, guard Guard) error
	Delete(ctx context.Context, id int64) error
	// Bounds returns the earliest start and the latest end over all
	// reservations, or nil when there are none.
	Bounds(ctx context.Context) (*interval.Interval, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const selectReservation = `
	SELECT r.id, r.user_id, COALESCE(u.name, 'Unknown User'),
	       r.equipment_id, COALESCE(e.name, 'Unknown Equipment'),
	       r.start_date, r.end_date, r.purpose, r.created_at
	FROM reservations r
	LEFT JOIN users u ON u.id = r.user_id
	LEFT JOIN equipment e ON e.id = r.equipment_id`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var r Reservation
	err := row.Scan(&r.ID, &r.UserID, &r.UserName, &r.EquipmentID, &r.EquipmentName,
		&r.StartDate, &r.EndDate, &r.Purpose, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	r.StartDate, r.EndDate = interval.Date(r.StartDate), interval.Date(r.EndDate)
	return &r, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func collect(ctx context.Context, q querier, query string, args ...any) ([]Reservation, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *r)
	}
	return reservations, rows.Err()
}

func (p *postgresRepository) List(ctx context.Context, filter Filter) ([]Reservation, error) {
	where, args := filter.where()
	query := fmt.Sprintf("%s %s ORDER BY r.start_date, r.id", selectReservation, where)

	reservations, err := collect(ctx, p.pool, query, args...)
	if err != nil {
		return nil, apperr.Storage(err, "repository: failed to list reservations (%s)", filter.Mode)
	}
	return reservations, nil
}

func (p *postgresRepository) GetByID(ctx context.Context, id int64) (*Reservation, error) {
	r, err := scanReservation(p.pool.QueryRow(ctx, selectReservation+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("reservation %d not found", id)
		}
		return nil, apperr.Storage(err, "repository: failed to select reservation %d", id)
	}
	return r, nil
}

func (p *postgresRepository) Save(ctx context.Context, r *Reservation, guard Guard) (err error) {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return apperr.Storage(err, "repository: failed to begin transaction")
	}
	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback(ctx)
			panic(rec)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Int64("reservation_id", r.ID).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(ctx); commitErr != nil {
			err = translate(commitErr, "repository: failed to commit reservation")
		}
	}()

	if guard != nil {
		existing, err := collect(ctx, tx, selectReservation+`
			WHERE r.equipment_id = $1 AND r.start_date <= $3 AND r.end_date >= $2
			ORDER BY r.start_date, r.id`,
			r.EquipmentID, r.StartDate, r.EndDate)
		if err != nil {
			return translate(err, "repository: failed to load reservations of equipment %d", r.EquipmentID)
		}
		if err := guard(existing); err != nil {
			return err
		}
	}

	var id int64
	if r.ID == 0 {
		err = tx.QueryRow(ctx, `
			INSERT INTO reservations (user_id, equipment_id, start_date, end_date, purpose)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			r.UserID, r.EquipmentID, r.StartDate, r.EndDate, r.Purpose).Scan(&id)
	} else {
		err = tx.QueryRow(ctx, `
			UPDATE reservations
			SET user_id = $2, equipment_id = $3, start_date = $4, end_date = $5, purpose = $6
			WHERE id = $1
			RETURNING id`,
			r.ID, r.UserID, r.EquipmentID, r.StartDate, r.EndDate, r.Purpose).Scan(&id)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("reservation %d not found", r.ID)
		}
		return translate(err, "repository: failed to save reservation")
	}

	saved, err := scanReservation(tx.QueryRow(ctx, selectReservation+` WHERE r.id = $1`, id))
	if err != nil {
		return translate(err, "repository: failed to reload reservation %d", id)
	}
	*r = *saved
	return nil
}

func (p *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage(err, "repository: failed to delete reservation %d", id)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("reservation %d not found", id)
	}
	return nil
}

func (p *postgresRepository) Bounds(ctx context.Context) (*interval.Interval, error) {
	var start, end *time.Time
	err := p.pool.QueryRow(ctx, `SELECT MIN(start_date), MAX(end_date) FROM reservations`).Scan(&start, &end)
	if err != nil {
		return nil, apperr.Storage(err, "repository: failed to read reservation bounds")
	}
	if start == nil || end == nil {
		return nil, nil
	}
	return &interval.Interval{Start: interval.Date(*start), End: interval.Date(*end)}, nil
}

func translate(err error, format string, args ...any) error {
	switch {
	case db.IsRetryable(err):
		return fmt.Errorf("%s: %w: %w", fmt.Sprintf(format, args...), db.ErrRetryable, err)
	case db.IsExclusionViolation(err):
		return apperr.Conflict(nil, "equipment is already reserved for an overlapping period")
	case db.IsForeignKeyViolation(err):
		return apperr.NotFound("referenced user or equipment no longer exists")
	default:
		return apperr.Storage(err, format, args...)
	}
}
