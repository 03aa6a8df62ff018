package equipment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/db"
)

type Repository interface {
	Create(ctx context.Context, e *Equipment) (int64, error)
	GetByID(ctx context.Context, id int64) (*Equipment, error)
	GetByName(ctx context.Context, name string) (*Equipment, error)
	List(ctx context.Context) ([]Equipment, error)
	Update(ctx context.Context, e *Equipment) error
	// DeleteWithReservations removes the equipment and all of its reservations
	// in one transaction and returns how many reservations went with it.
	DeleteWithReservations(ctx context.Context, id int64) (int64, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, e *Equipment) (int64, error) {
	query := `
		INSERT INTO equipment (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, e.Name, e.Description).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, apperr.Conflict(nil, "equipment name %q already exists", e.Name)
		}
		return 0, apperr.Storage(err, "repository: failed to insert equipment")
	}

	return e.ID, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*Equipment, error) {
	var e Equipment
	err := r.db.GetContext(ctx, &e, `SELECT id, name, description, created_at FROM equipment WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("equipment %d not found", id)
		}
		return nil, apperr.Storage(err, "repository: failed to select equipment %d", id)
	}

	return &e, nil
}

func (r *postgresRepository) GetByName(ctx context.Context, name string) (*Equipment, error) {
	var e Equipment
	err := r.db.GetContext(ctx, &e, `SELECT id, name, description, created_at FROM equipment WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("equipment %q not found", name)
		}
		return nil, apperr.Storage(err, "repository: failed to select equipment by name")
	}

	return &e, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Equipment, error) {
	items := make([]Equipment, 0)
	err := r.db.SelectContext(ctx, &items, `SELECT id, name, description, created_at FROM equipment ORDER BY id`)
	if err != nil {
		return nil, apperr.Storage(err, "repository: failed to list equipment")
	}

	return items, nil
}

func (r *postgresRepository) Update(ctx context.Context, e *Equipment) error {
	query := `
		UPDATE equipment
		SET name = :name, description = :description
		WHERE id = :id
	`

	res, err := r.db.NamedExecContext(ctx, query, e)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return apperr.Conflict(nil, "equipment name %q already exists", e.Name)
		}
		return apperr.Storage(err, "repository: failed to update equipment %d", e.ID)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Storage(err, "repository: failed to read affected rows")
	}
	if affected == 0 {
		return apperr.NotFound("equipment %d not found", e.ID)
	}

	return nil
}

func (r *postgresRepository) DeleteWithReservations(ctx context.Context, id int64) (deleted int64, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperr.Storage(err, "repository: failed to begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error().Err(rbErr).Int64("equipment_id", id).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = apperr.Storage(commitErr, "repository: failed to commit transaction")
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE equipment_id = $1`, id)
	if err != nil {
		return 0, apperr.Storage(err, "repository: failed to delete reservations of equipment %d", id)
	}
	deleted, err = res.RowsAffected()
	if err != nil {
		return 0, apperr.Storage(err, "repository: failed to read affected rows")
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return 0, apperr.Storage(err, "repository: failed to delete equipment %d", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Storage(err, "repository: failed to read affected rows")
	}
	if affected == 0 {
		return 0, apperr.NotFound("equipment %d not found", id)
	}

	return deleted, nil
}
