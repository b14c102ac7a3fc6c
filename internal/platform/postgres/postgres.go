// Package postgres opens the shared sql.DB handle and bootstraps the
// schema. Migrations stay in-process because the schema is four tables.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS owners (
	id    UUID PRIMARY KEY,
	name  TEXT NOT NULL,
	email TEXT
);

CREATE TABLE IF NOT EXISTS cars (
	id       UUID PRIMARY KEY,
	vin      TEXT NOT NULL, -- uniqueness deliberately not constrained, see store validation
	make     TEXT,
	model    TEXT,
	year     INT NOT NULL,
	owner_id UUID NOT NULL REFERENCES owners (id)
);
CREATE INDEX IF NOT EXISTS cars_owner_id_idx ON cars (owner_id);

CREATE TABLE IF NOT EXISTS insurance_policies (
	id                 UUID PRIMARY KEY,
	car_id             UUID NOT NULL REFERENCES cars (id),
	provider           TEXT,
	start_date         DATE NOT NULL,
	end_date           DATE, -- NULL means open-ended coverage
	expiration_logged  BOOLEAN NOT NULL DEFAULT FALSE,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS insurance_policies_car_id_idx ON insurance_policies (car_id);
CREATE INDEX IF NOT EXISTS insurance_policies_expiration_idx
	ON insurance_policies (end_date) WHERE NOT expiration_logged;

CREATE TABLE IF NOT EXISTS claims (
	id          UUID PRIMARY KEY,
	policy_id   UUID NOT NULL REFERENCES insurance_policies (id),
	claim_date  DATE NOT NULL,
	description TEXT NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS claims_policy_id_idx ON claims (policy_id);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
