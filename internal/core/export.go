package core

import (
	"context"
	"fmt"
	"path"
	"strconv"

	"github.com/campushire/placementd/internal/sheet"
	"github.com/google/uuid"
)

// exportHeaders is the fixed, ordered column set of an export snapshot.
// importDecisions reads the enrollment column back out of edited copies,
// so its header must stay stable.
var exportHeaders = []string{
	"Enrollment No",
	"Name",
	"Institute Email",
	"Branch",
	"Tenth Percentage",
	"Twelfth Percentage",
	"Diploma CGPA",
	"UG CGPA",
	"Role",
	"Resume",
	"Status",
}

const enrollmentHeader = "Enrollment No"

// exportRow is one applicant joined against the student and user catalogs.
type exportRow struct {
	EnrollmentNo      string
	Name              string
	InstituteEmail    string
	Branch            string
	TenthPercentage   *float64
	TwelfthPercentage *float64
	DiplomaCGPA       *float64
	UGCGPA            *float64
	Role              string
	Resume            string
	Status            string
}

// cells projects an export row into spreadsheet cells in header order.
// Email and resume are hyperlinks, not bare strings.
func (r exportRow) cells() []sheet.Cell {
	email := sheet.Cell{Value: r.InstituteEmail}
	if r.InstituteEmail != "" {
		email.Link = "mailto:" + r.InstituteEmail
	}
	resume := sheet.Cell{Value: r.Resume, Link: r.Resume}

	return []sheet.Cell{
		{Value: r.EnrollmentNo},
		{Value: r.Name},
		email,
		{Value: r.Branch},
		{Value: formatFloat(r.TenthPercentage)},
		{Value: formatFloat(r.TwelfthPercentage)},
		{Value: formatFloat(r.DiplomaCGPA)},
		{Value: formatFloat(r.UGCGPA)},
		{Value: r.Role},
		resume,
		{Value: r.Status},
	}
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

// ExportSnapshot joins a company's application table with the student
// and user catalogs, encodes the result as a spreadsheet, uploads it to
// the blob store, and records the URL on the catalog row. An empty join
// is NotFound, not an empty file.
func (s *Service) ExportSnapshot(ctx context.Context, p Principal, companyName string) (string, error) {
	if !p.CanManage() {
		return "", Errorf(KindForbidden, "only staff may export application data")
	}

	ctx, cancel := s.exportContext(ctx)
	defer cancel()

	ident, err := resolveTable(ctx, s.pool, companyName)
	if err != nil {
		return "", err
	}

	exportRows, err := s.queryExportRows(ctx, ident)
	if err != nil {
		return "", err
	}
	if len(exportRows) == 0 {
		return "", Errorf(KindNotFound, "company %q has no applicants yet", companyName)
	}

	cells := make([][]sheet.Cell, len(exportRows))
	for i, r := range exportRows {
		cells[i] = r.cells()
	}
	data, err := sheet.Encode("Applications", exportHeaders, cells)
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	key := path.Join("exports", ident, uuid.New().String()+".xlsx")
	const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	url, err := s.blobs.Put(ctx, key, xlsxContentType, data)
	if err != nil {
		return "", fmt.Errorf("upload export: %w", err)
	}

	if err := s.RecordExportSnapshot(ctx, companyName, url); err != nil {
		return "", err
	}
	return url, nil
}

func (s *Service) queryExportRows(ctx context.Context, ident string) ([]exportRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT a.enrollment_no,
		       COALESCE(st.name, ''),
		       COALESCE(u.institute_email, ''),
		       COALESCE(st.branch, ''),
		       st.tenth_percentage, st.twelfth_percentage,
		       st.diploma_cgpa, st.ug_cgpa,
		       a.role, a.resume, a.status
		FROM `+quoteIdentifier(ident)+` a
		LEFT JOIN students st ON st.enrollment_no = a.enrollment_no
		LEFT JOIN users u ON u.enrollment_no = a.enrollment_no
		ORDER BY a.enrollment_no, a.role`)
	if err != nil {
		return nil, fmt.Errorf("query export rows: %w", err)
	}
	defer rows.Close()

	var result []exportRow
	for rows.Next() {
		var r exportRow
		if err := rows.Scan(&r.EnrollmentNo, &r.Name, &r.InstituteEmail,
			&r.Branch, &r.TenthPercentage, &r.TwelfthPercentage,
			&r.DiplomaCGPA, &r.UGCGPA, &r.Role, &r.Resume, &r.Status); err != nil {
			return nil, fmt.Errorf("scan export row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	return result, nil
}

// ImportResult reports what an imported spreadsheet changed.
type ImportResult struct {
	Mode        string        `json:"mode"`
	Enrollments int           `json:"enrollments"`
	Finalize    *BulkResult   `json:"finalize,omitempty"`
	Triage      *TriageResult `json:"triage,omitempty"`
}

// ImportDecisions decodes an edited export spreadsheet and applies it as
// a bulk transition. The file is decoded in full before any mutation so
// a corrupt file or a missing enrollment column fails with a validation
// error and changes nothing.
func (s *Service) ImportDecisions(ctx context.Context, p Principal, companyName string, data []byte, mode ImportMode) (*ImportResult, error) {
	if !p.CanManage() {
		return nil, Errorf(KindForbidden, "only staff may import application decisions")
	}
	if len(data) == 0 {
		return nil, Errorf(KindValidation, "no spreadsheet file provided")
	}

	enrollments, err := sheet.ReadColumn(data, enrollmentHeader)
	if err != nil {
		return nil, NewError(KindValidation, "spreadsheet could not be decoded", err)
	}

	switch mode {
	case ModeFinalize:
		res, err := s.BulkFinalize(ctx, p, companyName, enrollments)
		if err != nil {
			return nil, err
		}
		return &ImportResult{Mode: "finalize", Enrollments: len(enrollments), Finalize: res}, nil
	case ModeTriage:
		res, err := s.BulkTriage(ctx, p, companyName, enrollments)
		if err != nil {
			return nil, err
		}
		return &ImportResult{Mode: "triage", Enrollments: len(enrollments), Triage: res}, nil
	default:
		return nil, Errorf(KindValidation, "unknown import mode")
	}
}
