package core

// Storage-backed behavior needs a real database: provisioning atomicity,
// the apply-once primary key, and the bulk transitions. These tests run
// against DATABASE_URL and skip when it is unset. Every test works on a
// uniquely named company so runs do not interfere.

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var staffPrincipal = Principal{Email: "placement@institute.edu", Role: RoleStaff}

// memBlobs keeps uploaded objects in memory so storage tests do not
// touch the filesystem.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memBlobs) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	return "/files/" + key, nil
}

func testService(t *testing.T) *Service {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping database tests")
	}

	pool, err := pgxpool.New(context.Background(), url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	s := &Service{
		pool:          pool,
		blobs:         &memBlobs{},
		opTimeout:     30 * time.Second,
		exportTimeout: 30 * time.Second,
	}
	if err := s.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	return s
}

func testCompanyName(t *testing.T) string {
	t.Helper()
	return "itest " + strings.ReplaceAll(uuid.New().String(), "-", "")
}

func createTestCompany(t *testing.T, s *Service) (name, ident string) {
	t.Helper()
	name = testCompanyName(t)

	c, err := s.CreateCompany(context.Background(), staffPrincipal, CompanyInput{Name: name, Role: "SDE"})
	if err != nil {
		t.Fatalf("CreateCompany(%q) error = %v", name, err)
	}
	t.Cleanup(func() {
		s.DeleteCompany(context.Background(), staffPrincipal, name)
	})
	return name, c.TableIdent
}

func seedApplications(t *testing.T, s *Service, ident string, enrollments ...string) {
	t.Helper()
	for _, e := range enrollments {
		_, err := s.pool.Exec(context.Background(),
			"INSERT INTO "+quoteIdentifier(ident)+" (enrollment_no, role, resume, status) VALUES ($1, $2, '', $3)",
			e, "SDE", StatusApplied)
		if err != nil {
			t.Fatalf("seed application %q: %v", e, err)
		}
	}
}

func tableStatuses(t *testing.T, s *Service, ident string) map[string]ApplicationStatus {
	t.Helper()
	rows, err := s.pool.Query(context.Background(),
		"SELECT enrollment_no, status FROM "+quoteIdentifier(ident))
	if err != nil {
		t.Fatalf("read table %s: %v", ident, err)
	}
	defer rows.Close()

	statuses := make(map[string]ApplicationStatus)
	for rows.Next() {
		var enrollment string
		var status ApplicationStatus
		if err := rows.Scan(&enrollment, &status); err != nil {
			t.Fatalf("scan row: %v", err)
		}
		statuses[enrollment] = status
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("read table %s: %v", ident, err)
	}
	return statuses
}

func TestCreateCompany_ProvisionFailureRollsBack(t *testing.T) {
	s := testService(t)
	ctx := context.Background()

	name := testCompanyName(t)
	ident, err := SanitizeIdentifier(name)
	if err != nil {
		t.Fatalf("SanitizeIdentifier(%q) error = %v", name, err)
	}

	// Occupy the identifier with a table no catalog row references, so
	// provisioning fails after the catalog insert has run.
	if _, err := s.pool.Exec(ctx, applicationTableDDL(ident)); err != nil {
		t.Fatalf("pre-create table: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+quoteIdentifier(ident))
	})

	_, err = s.CreateCompany(ctx, staffPrincipal, CompanyInput{Name: name})
	if !IsKind(err, KindConflict) {
		t.Fatalf("CreateCompany() error = %v, want conflict", err)
	}

	var n int
	if err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM companies WHERE company_name = $1", name).Scan(&n); err != nil {
		t.Fatalf("count catalog rows: %v", err)
	}
	if n != 0 {
		t.Errorf("catalog has %d rows for %q after failed provisioning, want 0", n, name)
	}
}

func TestApply_SecondApplicationConflicts(t *testing.T) {
	s := testService(t)
	ctx := context.Background()
	name, ident := createTestCompany(t, s)

	enrollment := "E" + strings.ReplaceAll(uuid.New().String(), "-", "")
	email := enrollment + "@institute.edu"
	if _, err := s.pool.Exec(ctx,
		"INSERT INTO users (institute_email, enrollment_no, role) VALUES ($1, $2, 'student')",
		email, enrollment); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM users WHERE institute_email = $1", email)
	})

	student := Principal{Email: email, Role: RoleStudent}
	in := ApplyInput{
		CompanyName: name,
		Role:        "SDE",
		Resume:      FileUpload{Name: "resume.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
	}

	app, err := s.Apply(ctx, student, in)
	if err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}
	if app.Status != StatusApplied {
		t.Errorf("first Apply() status = %q, want %q", app.Status, StatusApplied)
	}

	if _, err := s.Apply(ctx, student, in); !IsKind(err, KindConflict) {
		t.Fatalf("second Apply() error = %v, want conflict", err)
	}

	statuses := tableStatuses(t, s, ident)
	if len(statuses) != 1 {
		t.Errorf("table has %d rows after duplicate apply, want 1", len(statuses))
	}
}

func TestBulkFinalize_SelectsAndSweeps(t *testing.T) {
	s := testService(t)
	name, ident := createTestCompany(t, s)
	seedApplications(t, s, ident, "E1", "E2", "E3")

	res, err := s.BulkFinalize(context.Background(), staffPrincipal, name, []string{"E1", "E3"})
	if err != nil {
		t.Fatalf("BulkFinalize() error = %v", err)
	}
	if res.Updated != 2 || res.Deleted != 1 {
		t.Errorf("BulkFinalize() = {Updated: %d, Deleted: %d}, want {2, 1}", res.Updated, res.Deleted)
	}

	statuses := tableStatuses(t, s, ident)
	if len(statuses) != 2 {
		t.Fatalf("table has %d rows after finalize, want 2: %v", len(statuses), statuses)
	}
	for _, e := range []string{"E1", "E3"} {
		if statuses[e] != StatusSelected {
			t.Errorf("status[%s] = %q, want %q", e, statuses[e], StatusSelected)
		}
	}
	if _, ok := statuses["E2"]; ok {
		t.Error("E2 should have been deleted by finalize")
	}
}

func TestBulkTriage_SplitsApplicants(t *testing.T) {
	s := testService(t)
	name, ident := createTestCompany(t, s)
	seedApplications(t, s, ident, "E1", "E2")

	res, err := s.BulkTriage(context.Background(), staffPrincipal, name, []string{"E1"})
	if err != nil {
		t.Fatalf("BulkTriage() error = %v", err)
	}
	if res.Shortlisted != 1 || res.Rejected != 1 {
		t.Errorf("BulkTriage() = {Shortlisted: %d, Rejected: %d}, want {1, 1}", res.Shortlisted, res.Rejected)
	}

	statuses := tableStatuses(t, s, ident)
	if statuses["E1"] != StatusShortlisted {
		t.Errorf("status[E1] = %q, want %q", statuses["E1"], StatusShortlisted)
	}
	if statuses["E2"] != StatusRejected {
		t.Errorf("status[E2] = %q, want %q", statuses["E2"], StatusRejected)
	}
}

func TestExportSnapshot_NoApplicants(t *testing.T) {
	s := testService(t)
	name, _ := createTestCompany(t, s)

	_, err := s.ExportSnapshot(context.Background(), staffPrincipal, name)
	if !IsKind(err, KindNotFound) {
		t.Fatalf("ExportSnapshot() on empty table error = %v, want not found", err)
	}
}
