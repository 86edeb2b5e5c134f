// Package core implements the placement domain: the company catalog, the
// per-company application tables, the application lifecycle, and the
// spreadsheet export/import bridge. It has no HTTP dependencies.
package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Role identifies the kind of authenticated principal.
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
	RoleAdmin   Role = "admin"
)

// Principal is the authenticated caller, supplied by the identity gateway.
type Principal struct {
	Email string
	Role  Role
}

// IsStudent reports whether the principal is a student account.
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }

// CanManage reports whether the principal may perform staff operations.
// Students are excluded; unauthenticated principals have no role at all.
func (p Principal) CanManage() bool {
	return p.Role == RoleStaff || p.Role == RoleAdmin
}

// CompanyStatus is the listing lifecycle state of a company.
type CompanyStatus string

const (
	CompanyOpen      CompanyStatus = "Open"
	CompanyCompleted CompanyStatus = "Completed"
)

// Company is a row in the company catalog.
type Company struct {
	Name              string        `json:"company_name"`
	TableIdent        string        `json:"-"`
	Role              string        `json:"role,omitempty"`
	CTC               string        `json:"ctc,omitempty"`
	Location          []string      `json:"location,omitempty"`
	Description       string        `json:"description,omitempty"`
	DocsAttached      []string      `json:"docs_attached,omitempty"`
	Deadline          *time.Time    `json:"deadline,omitempty"`
	EligibleBranch    []string      `json:"eligible_branch,omitempty"`
	TenthPercentage   *float64      `json:"tenth_percentage,omitempty"`
	TwelfthPercentage *float64      `json:"twelfth_percentage,omitempty"`
	DiplomaCGPA       *float64      `json:"diploma_cgpa,omitempty"`
	UGCGPA            *float64      `json:"ug_cgpa,omitempty"`
	Status            CompanyStatus `json:"status"`
	DataFile          string        `json:"data_file,omitempty"`
}

// CompanyInput is the allow-listed field set accepted when listing a
// company. Unknown JSON keys are dropped by decoding, matching the
// observed behavior of rejecting them by omission rather than by error.
type CompanyInput struct {
	Name              string     `json:"company_name"`
	Role              string     `json:"role"`
	CTC               string     `json:"ctc"`
	Location          []string   `json:"location"`
	Description       string     `json:"description"`
	Deadline          *time.Time `json:"deadline"`
	EligibleBranch    []string   `json:"eligible_branch"`
	TenthPercentage   *float64   `json:"tenth_percentage"`
	TwelfthPercentage *float64   `json:"twelfth_percentage"`
	DiplomaCGPA       *float64   `json:"diploma_cgpa"`
	UGCGPA            *float64   `json:"ug_cgpa"`

	// Docs are file attachments uploaded to the blob store before the
	// catalog row is written.
	Docs []FileUpload `json:"-"`
}

// Empty reports whether no recognized field was supplied.
func (in CompanyInput) Empty() bool {
	return in.Name == "" && in.Role == "" && in.CTC == "" &&
		len(in.Location) == 0 && in.Description == "" && in.Deadline == nil &&
		len(in.EligibleBranch) == 0 && in.TenthPercentage == nil &&
		in.TwelfthPercentage == nil && in.DiplomaCGPA == nil &&
		in.UGCGPA == nil && len(in.Docs) == 0
}

// FileUpload is an in-memory file destined for the blob store.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// ApplicationStatus is the lifecycle state of a single application row.
//
// Transitions: Applied -> {Shortlisted, Rejected},
// Shortlisted -> {Selected, Rejected}. Selected and Rejected are terminal.
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "Applied"
	StatusShortlisted ApplicationStatus = "Shortlisted"
	StatusSelected    ApplicationStatus = "Selected"
	StatusRejected    ApplicationStatus = "Rejected"
)

// Application is a row in a per-company application table.
// The composite key (EnrollmentNo, Role) allows one application per role.
type Application struct {
	EnrollmentNo string            `json:"enrollment_no"`
	Role         string            `json:"role"`
	Resume       string            `json:"resume"`
	Status       ApplicationStatus `json:"status"`
}

// ApplyInput carries a student's application request.
type ApplyInput struct {
	CompanyName string
	Role        string
	Resume      FileUpload
}

// BulkResult reports the effect of a bulk finalize operation.
type BulkResult struct {
	Updated int64 `json:"updated"`
	Deleted int64 `json:"deleted"`
}

// TriageResult reports the effect of a bulk triage operation.
type TriageResult struct {
	Shortlisted int64 `json:"shortlisted"`
	Rejected    int64 `json:"rejected"`
}

// ImportMode selects which bulk transition an imported spreadsheet drives.
type ImportMode int

const (
	// ModeTriage splits existing applicants into Shortlisted/Rejected.
	ModeTriage ImportMode = iota
	// ModeFinalize collapses existing applicants into Selected/deleted.
	ModeFinalize
)
