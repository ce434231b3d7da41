package database

import (
	"errors"

	"github.com/BradenHooton/lumina/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func MapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return models.ErrBadRequest
		case "22021": // character_not_in_repertoire
			return models.ErrBadRequest
		}
	}

	return err
}
