package core

import (
	"context"
	"fmt"
)

// applicationTableBody is the schema contract for every per-company
// application table. The composite primary key makes a second apply for
// the same (enrollment_no, role) a uniqueness violation at the storage
// layer; the check constraint pins status to the four lifecycle values.
const applicationTableBody = ` (
	enrollment_no text NOT NULL,
	role          text NOT NULL,
	resume        text NOT NULL DEFAULT '',
	status        text NOT NULL DEFAULT 'Applied',
	PRIMARY KEY (enrollment_no, role),
	CHECK (status IN ('Applied', 'Shortlisted', 'Selected', 'Rejected'))
)`

// applicationTableDDL returns the CREATE TABLE statement for a sanitized
// identifier. The identifier is still quoted; sanitization is not a
// substitute for quoting.
func applicationTableDDL(ident string) string {
	return "CREATE TABLE " + quoteIdentifier(ident) + applicationTableBody
}

// tableExists reports whether a table with the given name exists in the
// public schema.
func tableExists(ctx context.Context, db DBTX, ident string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, ident).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", ident, err)
	}
	return exists, nil
}

// provisionTable creates the application table for ident unless it
// already exists. A pre-existing table is a conflict unless shared
// tables are enabled, in which case the create is idempotent and the
// new listing shares the existing applicant pool.
//
// Runs inside the caller's transaction so a failure here rolls back the
// catalog insert that triggered it.
func (s *Service) provisionTable(ctx context.Context, db DBTX, ident string) error {
	exists, err := tableExists(ctx, db, ident)
	if err != nil {
		return err
	}
	if exists {
		if s.allowSharedTable {
			return nil
		}
		return Errorf(KindConflict, "an application table named %q already exists", ident)
	}

	// Two creations can race past the exists check; the loser's CREATE
	// fails with duplicate_table and reports the same conflict.
	if _, err := db.Exec(ctx, applicationTableDDL(ident)); err != nil {
		if isDuplicateTable(err) {
			return Errorf(KindConflict, "an application table named %q already exists", ident)
		}
		return fmt.Errorf("create table %s: %w", ident, err)
	}
	return nil
}

// resolveTable maps a company name to its application table identifier.
// Fails with NotFound when the table does not exist, e.g. when the
// listing step failed or was skipped.
func resolveTable(ctx context.Context, db DBTX, companyName string) (string, error) {
	ident, err := SanitizeIdentifier(companyName)
	if err != nil {
		return "", err
	}

	exists, err := tableExists(ctx, db, ident)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", Errorf(KindNotFound, "company %q has no application table", companyName)
	}
	return ident, nil
}

// dropTable removes a per-company application table.
func dropTable(ctx context.Context, db DBTX, ident string) error {
	if _, err := db.Exec(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(ident)); err != nil {
		return fmt.Errorf("drop table %s: %w", ident, err)
	}
	return nil
}
