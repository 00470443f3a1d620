package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database backs the two durable concerns of the dashboard: operator
// accounts and the settings key-value store. Everything else lives in
// memory and is rebuilt from the upstream API.
type Database struct {
	pool *pgxpool.Pool
}

func NewDatabase(connString string) (*Database, error) {

	err := Migrate(connString)

	if err != nil {
		return nil, fmt.Errorf("failed to migrate %w", err)
	}

	ctx := context.Background()
	p, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	return &Database{
		pool: p,
	}, nil
}

func (d *Database) CreateOperator(ctx context.Context, username string, password string) error {

	query := `
		INSERT INTO operator (username, password)
		VALUES ($1, $2)
		`
	_, err := d.pool.Exec(ctx, query, username, password)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return fmt.Errorf("%w", &OperatorExistsError{Username: username})
		}
		return err
	}
	return nil
}

func (d *Database) GetOperatorHashedPassword(ctx context.Context, username string) (string, error) {
	query := `
		SELECT password
		FROM operator
		WHERE username = $1`

	row := d.pool.QueryRow(ctx, query, username)

	var password string

	err := row.Scan(&password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w", &OperatorNotFoundError{Username: username})
		}
		return "", err
	}
	return password, nil
}

// SaveSetting upserts one settings key. Values are opaque strings; the
// engine serializes what it needs (JSON for the filter config).
func (d *Database) SaveSetting(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO dashboard_setting (key, value)
		VALUES ($1, $2)
		ON CONFLICT(key)
		DO UPDATE SET value = $2
	`
	_, err := d.pool.Exec(ctx, query, key, value)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (d *Database) GetSetting(ctx context.Context, key string) (string, error) {
	query := `
		SELECT value
		FROM dashboard_setting
		WHERE key = $1
	`
	row := d.pool.QueryRow(ctx, query, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w", ErrSettingNotFound)
		}
		return "", fmt.Errorf("%w", err)
	}
	return value, nil
}

func (d *Database) Close() {
	d.pool.Close()
}
