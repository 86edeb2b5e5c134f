package core

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Apply records one application for the calling student. The enrollment
// number is resolved from the principal's institute email, the resume is
// uploaded to the blob store first, and only then is the row inserted.
// A second application for the same (enrollment_no, role) hits the
// composite primary key and is reported as a conflict; under two
// concurrent applies exactly one insert wins.
func (s *Service) Apply(ctx context.Context, p Principal, in ApplyInput) (*Application, error) {
	if !p.IsStudent() {
		return nil, Errorf(KindForbidden, "only students may apply")
	}
	if in.CompanyName == "" {
		return nil, Errorf(KindValidation, "company_name is required")
	}
	if in.Role == "" {
		return nil, Errorf(KindValidation, "role is required")
	}
	if len(in.Resume.Data) == 0 {
		return nil, Errorf(KindValidation, "a resume file is required")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	enrollment, err := s.enrollmentForEmail(ctx, p.Email)
	if err != nil {
		return nil, err
	}

	ident, err := resolveTable(ctx, s.pool, in.CompanyName)
	if err != nil {
		return nil, err
	}

	// Upload before insert so the table never references a missing blob.
	// An insert failure after upload orphans the blob, which is
	// acceptable: keys are unique and re-uploads are independent.
	key := path.Join("resumes", ident, enrollment+"-"+uuid.New().String()+"-"+path.Base(in.Resume.Name))
	resumeURL, err := s.blobs.Put(ctx, key, in.Resume.ContentType, in.Resume.Data)
	if err != nil {
		return nil, fmt.Errorf("upload resume: %w", err)
	}

	app := Application{
		EnrollmentNo: enrollment,
		Role:         in.Role,
		Resume:       resumeURL,
		Status:       StatusApplied,
	}

	_, err = s.pool.Exec(ctx,
		"INSERT INTO "+quoteIdentifier(ident)+" (enrollment_no, role, resume, status) VALUES ($1, $2, $3, $4)",
		app.EnrollmentNo, app.Role, app.Resume, app.Status)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, Errorf(KindConflict, "already applied to %q for role %q", in.CompanyName, in.Role)
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return &app, nil
}

// enrollmentForEmail maps an institute email to an enrollment number via
// the users catalog.
func (s *Service) enrollmentForEmail(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", Errorf(KindValidation, "authenticated email is missing")
	}
	var enrollment string
	err := s.pool.QueryRow(ctx,
		"SELECT enrollment_no FROM users WHERE institute_email = $1", email).Scan(&enrollment)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", Errorf(KindNotFound, "no enrollment found for %q", email)
	}
	if err != nil {
		return "", fmt.Errorf("lookup enrollment: %w", err)
	}
	return enrollment, nil
}

// BulkFinalize marks every applicant in the selected set as Selected and
// deletes every other row. This reconciliation is destructive: rows
// absent from the import set are removed, not marked rejected.
//
// Both statements run in one transaction so the operation is applied
// against a single snapshot of the table and is all-or-nothing.
func (s *Service) BulkFinalize(ctx context.Context, p Principal, companyName string, selected []string) (*BulkResult, error) {
	if !p.CanManage() {
		return nil, Errorf(KindForbidden, "only staff may finalize applications")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ident, err := resolveTable(ctx, s.pool, companyName)
	if err != nil {
		return nil, err
	}
	table := quoteIdentifier(ident)
	selected = dedupe(selected)

	// Repeatable read so both statements see the same snapshot; a row
	// inserted between them is neither updated nor deleted here.
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin finalize: %w", err)
	}
	defer tx.Rollback(ctx)

	updated, err := tx.Exec(ctx,
		"UPDATE "+table+" SET status = $1 WHERE enrollment_no = ANY($2)",
		StatusSelected, selected)
	if err != nil {
		return nil, fmt.Errorf("finalize update: %w", err)
	}

	deleted, err := tx.Exec(ctx,
		"DELETE FROM "+table+" WHERE NOT (enrollment_no = ANY($1))", selected)
	if err != nil {
		return nil, fmt.Errorf("finalize delete: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit finalize: %w", err)
	}
	return &BulkResult{Updated: updated.RowsAffected(), Deleted: deleted.RowsAffected()}, nil
}

// BulkTriage marks every applicant in the shortlist as Shortlisted and
// everyone else as Rejected. Every existing row receives exactly one of
// the two statuses; nothing is deleted at this stage. Enrollments in the
// import set without a matching row are ignored.
func (s *Service) BulkTriage(ctx context.Context, p Principal, companyName string, shortlisted []string) (*TriageResult, error) {
	if !p.CanManage() {
		return nil, Errorf(KindForbidden, "only staff may triage applications")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	ident, err := resolveTable(ctx, s.pool, companyName)
	if err != nil {
		return nil, err
	}
	table := quoteIdentifier(ident)
	shortlisted = dedupe(shortlisted)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin triage: %w", err)
	}
	defer tx.Rollback(ctx)

	marked, err := tx.Exec(ctx,
		"UPDATE "+table+" SET status = $1 WHERE enrollment_no = ANY($2)",
		StatusShortlisted, shortlisted)
	if err != nil {
		return nil, fmt.Errorf("triage shortlist: %w", err)
	}

	rejected, err := tx.Exec(ctx,
		"UPDATE "+table+" SET status = $1 WHERE NOT (enrollment_no = ANY($2))",
		StatusRejected, shortlisted)
	if err != nil {
		return nil, fmt.Errorf("triage reject: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit triage: %w", err)
	}
	return &TriageResult{Shortlisted: marked.RowsAffected(), Rejected: rejected.RowsAffected()}, nil
}

// dedupe removes duplicate and empty enrollment numbers while keeping
// first-seen order. Bulk operations are keyed by enrollment_no, so
// duplicates in an import set must not change the outcome.
func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}
