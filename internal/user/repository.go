package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/equipment-reservations/internal/apperr"
	"github.com/vasiliy-maslov/equipment-reservations/internal/db"
)

// Repository for users.
type Repository interface {
	Create(ctx context.Context, user *User) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByName(ctx context.Context, name string) (*User, error)
	List(ctx context.Context) ([]User, error)
	// DeleteWithReservations removes the user together with their reservations.
	DeleteWithReservations(ctx context.Context, id int64) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, user *User) (int64, error) {
	rows, err := r.db.NamedQueryContext(ctx, `INSERT INTO users (name) VALUES (:name) RETURNING id, created_at`, user)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, apperr.Conflict(nil, "user name %q already exists", user.Name)
		}
		return 0, apperr.Storage(err, "repository: failed to insert user")
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			if db.IsUniqueViolation(err) {
				return 0, apperr.Conflict(nil, "user name %q already exists", user.Name)
			}
			return 0, apperr.Storage(err, "repository: failed to insert user")
		}
		return 0, apperr.Storage(sql.ErrNoRows, "repository: insert returned no id")
	}
	if err := rows.Scan(&user.ID, &user.CreatedAt); err != nil {
		return 0, apperr.Storage(err, "repository: failed to scan inserted user")
	}

	return user.ID, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT id, name, created_at FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user %d not found", id)
		}
		return nil, apperr.Storage(err, "repository: failed to select user %d", id)
	}

	return &u, nil
}

func (r *repository) GetByName(ctx context.Context, name string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `SELECT id, name, created_at FROM users WHERE name = $1`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("user %q not found", name)
		}
		return nil, apperr.Storage(err, "repository: failed to select user by name")
	}

	return &u, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	users := make([]User, 0)
	if err := r.db.SelectContext(ctx, &users, `SELECT id, name, created_at FROM users ORDER BY id`); err != nil {
		return nil, apperr.Storage(err, "repository: failed to list users")
	}

	return users, nil
}

func (r *repository) DeleteWithReservations(ctx context.Context, id int64) (deleted int64, err error) {
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
				log.Error().Err(rbErr).Int64("user_id", id).Msg("Failed to rollback transaction")
			}
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = apperr.Storage(commitErr, "repository: failed to commit transaction")
		}
	}()

	res, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE user_id = $1`, id)
	if err != nil {
		return 0, apperr.Storage(err, "repository: failed to delete reservations of user %d", id)
	}
	if deleted, err = res.RowsAffected(); err != nil {
		return 0, apperr.Storage(err, "repository: failed to read affected rows")
	}

	res, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return 0, apperr.Storage(err, "repository: failed to delete user %d", id)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, apperr.Storage(err, "repository: failed to read affected rows")
	}
	if affected == 0 {
		return 0, apperr.NotFound("user %d not found", id)
	}

	return deleted, nil
}
