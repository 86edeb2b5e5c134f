package web

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/campushire/placementd/internal/core"
	"github.com/campushire/placementd/internal/logging"
	"github.com/campushire/placementd/internal/web/middleware"
	"github.com/go-chi/chi/v5"
)

// handleHealthz reports database connectivity.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Ping(r.Context()); err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListCompanies returns every company listing. Unauthenticated.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.service.ListCompanies(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if companies == nil {
		companies = []core.Company{}
	}
	respondJSON(w, http.StatusOK, companies)
}

// handleGetCompany returns a single listing by display name.
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := s.service.GetCompany(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, company)
}

// handleAddCompany lists a company and provisions its application table.
// Accepts JSON, or multipart form data when document attachments are
// included. Unknown fields are dropped, matching the allow-list contract.
func (s *Server) handleAddCompany(w http.ResponseWriter, r *http.Request) {
	in, err := s.parseCompanyInput(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	company, err := s.service.CreateCompany(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("company listed",
		"company", company.Name, "table", company.TableIdent)
	respondJSON(w, http.StatusCreated, company)
}

// handleDeleteCompany removes a listing and drops its application table.
func (s *Server) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	err := s.service.DeleteCompany(r.Context(), middleware.PrincipalFromContext(r.Context()), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("company deleted", "company", name)
	respondJSON(w, http.StatusOK, map[string]string{"deleted": name})
}

// handleApply records one application for the calling student.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		s.respondError(w, r, core.NewError(core.KindValidation, "invalid multipart form", err))
		return
	}

	resume, err := readFormFile(r, "resume")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	in := core.ApplyInput{
		CompanyName: r.FormValue("company_name"),
		Role:        r.FormValue("role"),
		Resume:      resume,
	}

	app, err := s.service.Apply(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("application recorded",
		"company", in.CompanyName, "enrollment", app.EnrollmentNo, "role", app.Role)
	respondJSON(w, http.StatusCreated, app)
}

// handleExportData produces a spreadsheet snapshot of a company's
// applicant pool and returns the blob URL it was uploaded to.
func (s *Server) handleExportData(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyName string `json:"company_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r, core.NewError(core.KindValidation, "invalid JSON body", err))
		return
	}

	url, err := s.service.ExportSnapshot(r.Context(), middleware.PrincipalFromContext(r.Context()), body.CompanyName)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("applications exported",
		"company", body.CompanyName, "file", url)
	respondJSON(w, http.StatusOK, map[string]string{"fileUrl": url})
}

// handleImportData applies an edited export spreadsheet as a bulk
// transition: triage by default, finalize when finalSelects is true.
func (s *Server) handleImportData(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		s.respondError(w, r, core.NewError(core.KindValidation, "invalid multipart form", err))
		return
	}

	file, err := readFormFile(r, "file")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	mode := core.ModeTriage
	if v := r.FormValue("finalSelects"); v != "" {
		final, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, r, core.Errorf(core.KindValidation, "finalSelects must be a boolean, got %q", v))
			return
		}
		if final {
			mode = core.ModeFinalize
		}
	}

	companyName := r.FormValue("company_name")
	result, err := s.service.ImportDecisions(r.Context(),
		middleware.PrincipalFromContext(r.Context()), companyName, file.Data, mode)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("decisions imported",
		"company", companyName, "mode", result.Mode, "enrollments", result.Enrollments)
	respondJSON(w, http.StatusOK, result)
}

// parseCompanyInput decodes a company listing request from JSON or a
// multipart form with optional "docs" attachments.
func (s *Server) parseCompanyInput(r *http.Request) (core.CompanyInput, error) {
	var in core.CompanyInput

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, s.maxUploadSize)).Decode(&in); err != nil {
			return in, core.NewError(core.KindValidation, "invalid JSON body", err)
		}
		return in, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		return in, core.NewError(core.KindValidation, "invalid multipart form", err)
	}

	in.Name = r.FormValue("company_name")
	in.Role = r.FormValue("role")
	in.CTC = r.FormValue("ctc")
	in.Description = r.FormValue("description")
	in.Location = splitCSV(r.FormValue("location"))
	in.EligibleBranch = splitCSV(r.FormValue("eligible_branch"))

	if v := r.FormValue("deadline"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return in, core.Errorf(core.KindValidation, "deadline must be RFC 3339, got %q", v)
		}
		in.Deadline = &t
	}

	for field, dst := range map[string]**float64{
		"tenth_percentage":   &in.TenthPercentage,
		"twelfth_percentage": &in.TwelfthPercentage,
		"diploma_cgpa":       &in.DiplomaCGPA,
		"ug_cgpa":            &in.UGCGPA,
	} {
		v := r.FormValue(field)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return in, core.Errorf(core.KindValidation, "%s must be numeric, got %q", field, v)
		}
		*dst = &f
	}

	if r.MultipartForm != nil {
		for _, hdr := range r.MultipartForm.File["docs"] {
			doc, err := readFileHeader(hdr)
			if err != nil {
				return in, err
			}
			in.Docs = append(in.Docs, doc)
		}
	}

	return in, nil
}

// readFormFile reads a single multipart file field. A missing field
// yields a zero FileUpload; validation of required files is the core's
// concern.
func readFormFile(r *http.Request, field string) (core.FileUpload, error) {
	file, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return core.FileUpload{}, nil
	}
	if err != nil {
		return core.FileUpload{}, core.NewError(core.KindValidation, "could not read uploaded file", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return core.FileUpload{}, core.NewError(core.KindValidation, "could not read uploaded file", err)
	}

	return core.FileUpload{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileHeader(hdr *multipart.FileHeader) (core.FileUpload, error) {
	file, err := hdr.Open()
	if err != nil {
		return core.FileUpload{}, core.NewError(core.KindValidation, "could not read attachment", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return core.FileUpload{}, core.NewError(core.KindValidation, "could not read attachment", err)
	}

	return core.FileUpload{
		Name:        hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// splitCSV splits a comma-separated form value, trimming whitespace and
// dropping empty entries.
func splitCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
