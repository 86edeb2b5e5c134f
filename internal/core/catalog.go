package core

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const companyColumns = `company_name, table_ident, role, ctc, location, description,
	docs_attached, deadline, eligible_branch, tenth_percentage,
	twelfth_percentage, diploma_cgpa, ug_cgpa, status, data_file`

// PostgreSQL error codes for duplicate keys and duplicate relations.
const (
	uniqueViolation = "23505"
	duplicateTable  = "42P07"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isDuplicateTable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == duplicateTable
}

// ListCompanies returns every company in the catalog. The read is
// unauthenticated; students browse listings before applying.
func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, "SELECT "+companyColumns+" FROM companies ORDER BY company_name")
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

// GetCompany returns a single catalog row by display name.
func (s *Service) GetCompany(ctx context.Context, name string) (*Company, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	row := s.pool.QueryRow(ctx, "SELECT "+companyColumns+" FROM companies WHERE company_name = $1", name)
	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, Errorf(KindNotFound, "company %q is not listed", name)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	err := row.Scan(&c.Name, &c.TableIdent, &c.Role, &c.CTC, &c.Location,
		&c.Description, &c.DocsAttached, &c.Deadline, &c.EligibleBranch,
		&c.TenthPercentage, &c.TwelfthPercentage, &c.DiplomaCGPA,
		&c.UGCGPA, &c.Status, &c.DataFile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c, err
		}
		return c, fmt.Errorf("scan company: %w", err)
	}
	return c, nil
}

// CreateCompany lists a company and provisions its application table as
// one logical operation. The catalog insert and the table creation share
// a transaction, so a provisioning failure leaves no orphaned catalog
// row and an insert failure leaves no orphaned table.
//
// Document attachments are uploaded to the blob store before the
// transaction begins; the database never references a blob that was not
// written first.
func (s *Service) CreateCompany(ctx context.Context, p Principal, in CompanyInput) (*Company, error) {
	if !p.CanManage() {
		return nil, Errorf(KindForbidden, "only staff may list companies")
	}
	if in.Empty() {
		return nil, Errorf(KindValidation, "no recognized company fields supplied")
	}
	if in.Name == "" {
		return nil, Errorf(KindValidation, "company_name is required")
	}

	ident, err := SanitizeIdentifier(in.Name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	docURLs := make([]string, 0, len(in.Docs))
	for _, doc := range in.Docs {
		key := path.Join("company-docs", ident, uuid.New().String()+"-"+path.Base(doc.Name))
		url, err := s.blobs.Put(ctx, key, doc.ContentType, doc.Data)
		if err != nil {
			return nil, fmt.Errorf("upload company document: %w", err)
		}
		docURLs = append(docURLs, url)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create company: %w", err)
	}
	defer tx.Rollback(ctx)

	// Reject distinct company names that collapse to one identifier;
	// sharing a table must be an explicit configuration choice.
	if !s.allowSharedTable {
		var taken bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM companies WHERE table_ident = $1)", ident,
		).Scan(&taken); err != nil {
			return nil, fmt.Errorf("check identifier collision: %w", err)
		}
		if taken {
			return nil, Errorf(KindConflict, "company name %q collides with an existing listing", in.Name)
		}
	}

	company := Company{
		Name:              in.Name,
		TableIdent:        ident,
		Role:              in.Role,
		CTC:               in.CTC,
		Location:          emptyIfNil(in.Location),
		Description:       in.Description,
		DocsAttached:      docURLs,
		Deadline:          in.Deadline,
		EligibleBranch:    emptyIfNil(in.EligibleBranch),
		TenthPercentage:   in.TenthPercentage,
		TwelfthPercentage: in.TwelfthPercentage,
		DiplomaCGPA:       in.DiplomaCGPA,
		UGCGPA:            in.UGCGPA,
		Status:            CompanyOpen,
	}

	_, err = tx.Exec(ctx, `INSERT INTO companies (`+companyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		company.Name, company.TableIdent, company.Role, company.CTC,
		company.Location, company.Description, company.DocsAttached,
		company.Deadline, company.EligibleBranch, company.TenthPercentage,
		company.TwelfthPercentage, company.DiplomaCGPA, company.UGCGPA,
		company.Status, company.DataFile)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, Errorf(KindConflict, "company %q is already listed", in.Name)
		}
		return nil, fmt.Errorf("insert company: %w", err)
	}

	if err := s.provisionTable(ctx, tx, ident); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create company: %w", err)
	}
	return &company, nil
}

// RecordExportSnapshot stores the URL of the latest export for a company.
func (s *Service) RecordExportSnapshot(ctx context.Context, companyName, url string) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx,
		"UPDATE companies SET data_file = $2 WHERE company_name = $1", companyName, url)
	if err != nil {
		return fmt.Errorf("record export snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Errorf(KindNotFound, "company %q is not listed", companyName)
	}
	return nil
}

// DeleteCompany removes a catalog row and drops its application table in
// the same transaction. When shared tables are enabled the table is only
// dropped once no remaining listing references it.
func (s *Service) DeleteCompany(ctx context.Context, p Principal, name string) error {
	if !p.CanManage() {
		return Errorf(KindForbidden, "only staff may delete companies")
	}

	ctx, cancel := s.opContext(ctx)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete company: %w", err)
	}
	defer tx.Rollback(ctx)

	var ident string
	err = tx.QueryRow(ctx,
		"DELETE FROM companies WHERE company_name = $1 RETURNING table_ident", name).Scan(&ident)
	if errors.Is(err, pgx.ErrNoRows) {
		return Errorf(KindNotFound, "company %q is not listed", name)
	}
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}

	var remaining int
	if err := tx.QueryRow(ctx,
		"SELECT COUNT(*) FROM companies WHERE table_ident = $1", ident).Scan(&remaining); err != nil {
		return fmt.Errorf("count shared listings: %w", err)
	}
	if remaining == 0 {
		if err := dropTable(ctx, tx, ident); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete company: %w", err)
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
