package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cases (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL REFERENCES users(id),
		case_status TEXT NOT NULL,
		progress_status TEXT NOT NULL,
		employer_name TEXT NOT NULL,
		beneficiary_identifier TEXT NOT NULL DEFAULT '',
		position_title TEXT NOT NULL DEFAULT '',
		is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
		pwd_filing_date DATE,
		pwd_determination_date DATE,
		pwd_expiration_date DATE,
		recruitment_start_date DATE,
		recruitment_end_date DATE,
		notice_of_filing_start_date DATE,
		notice_of_filing_end_date DATE,
		job_order_start_date DATE,
		job_order_end_date DATE,
		sunday_ad_first_date DATE,
		sunday_ad_second_date DATE,
		additional_recruitment_end_date DATE,
		is_professional_occupation BOOLEAN NOT NULL DEFAULT FALSE,
		eta9089_filing_date DATE,
		eta9089_certification_date DATE,
		eta9089_expiration_date DATE,
		i140_filing_date DATE,
		i140_approval_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_owner ON cases (owner_id) WHERE deleted_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS case_requests (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL REFERENCES cases(id) ON DELETE CASCADE,
		kind TEXT NOT NULL CHECK (kind IN ('rfi', 'rfe')),
		received_date DATE NOT NULL,
		response_due_date DATE,
		response_submitted_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_case_requests_case ON case_requests (case_id)`,
}

// EnsureSchema creates the tables the service needs when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
