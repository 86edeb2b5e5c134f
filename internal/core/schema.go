package core

import (
	"context"
	"fmt"
)

// catalogDDL creates the static catalogs. The companies table is owned by
// this service; students and users are maintained by the profile and
// account services and only read here for export joins, but are created
// if absent so a fresh database is usable.
var catalogDDL = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		company_name       text PRIMARY KEY,
		table_ident        text NOT NULL,
		role               text NOT NULL DEFAULT '',
		ctc                text NOT NULL DEFAULT '',
		location           text[] NOT NULL DEFAULT '{}',
		description        text NOT NULL DEFAULT '',
		docs_attached      text[] NOT NULL DEFAULT '{}',
		deadline           timestamptz,
		eligible_branch    text[] NOT NULL DEFAULT '{}',
		tenth_percentage   double precision,
		twelfth_percentage double precision,
		diploma_cgpa       double precision,
		ug_cgpa            double precision,
		status             text NOT NULL DEFAULT 'Open',
		data_file          text NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS companies_table_ident_idx ON companies (table_ident)`,
	`CREATE TABLE IF NOT EXISTS students (
		enrollment_no      text PRIMARY KEY,
		name               text NOT NULL DEFAULT '',
		branch             text NOT NULL DEFAULT '',
		tenth_percentage   double precision,
		twelfth_percentage double precision,
		diploma_cgpa       double precision,
		ug_cgpa            double precision
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		institute_email text PRIMARY KEY,
		enrollment_no   text NOT NULL UNIQUE,
		role            text NOT NULL DEFAULT 'student'
	)`,
}

// EnsureSchema creates the static catalog tables if they do not exist.
// Per-company application tables are provisioned on demand by listing.
func (s *Service) EnsureSchema(ctx context.Context) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	for _, ddl := range catalogDDL {
		if _, err := s.pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
