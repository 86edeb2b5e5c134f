package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestApplicationTableDDL(t *testing.T) {
	ddl := applicationTableDDL("acme_corp")

	if !strings.HasPrefix(ddl, `CREATE TABLE "acme_corp"`) {
		t.Errorf("DDL should create the quoted table, got: %s", ddl)
	}
	if !strings.Contains(ddl, "PRIMARY KEY (enrollment_no, role)") {
		t.Error("DDL missing composite primary key")
	}
	for _, status := range []string{"'Applied'", "'Shortlisted'", "'Selected'", "'Rejected'"} {
		if !strings.Contains(ddl, status) {
			t.Errorf("DDL check constraint missing status %s", status)
		}
	}
}

func TestApplicationTableDDL_QuotesHostileIdent(t *testing.T) {
	// Sanitization should make this impossible, but quoting is the last
	// line of defense and must hold on its own.
	ddl := applicationTableDDL(`x"; DROP TABLE companies; --`)

	if !strings.Contains(ddl, `"x""; DROP TABLE companies; --"`) {
		t.Errorf("hostile identifier not neutralized by quoting: %s", ddl)
	}
}

func TestIsDuplicateTable(t *testing.T) {
	dup := &pgconn.PgError{Code: "42P07"}

	if !isDuplicateTable(dup) {
		t.Error("isDuplicateTable should match code 42P07")
	}
	if !isDuplicateTable(fmt.Errorf("create table: %w", dup)) {
		t.Error("isDuplicateTable should match a wrapped 42P07")
	}
	if isDuplicateTable(&pgconn.PgError{Code: "23505"}) {
		t.Error("isDuplicateTable must not match a unique violation")
	}
	if isUniqueViolation(dup) {
		t.Error("isUniqueViolation must not match duplicate_table")
	}
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"duplicates removed", []string{"E1", "E2", "E1", "E3", "E2"}, []string{"E1", "E2", "E3"}},
		{"empties dropped", []string{"", "E1", ""}, []string{"E1"}},
		{"order preserved", []string{"E3", "E1", "E2"}, []string{"E3", "E1", "E2"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupe(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("dedupe(%v) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("dedupe(%v)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}
