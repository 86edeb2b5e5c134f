package core

import (
	"testing"

	"github.com/campushire/placementd/internal/sheet"
)

func floatPtr(f float64) *float64 { return &f }

func TestExportRow_Cells(t *testing.T) {
	r := exportRow{
		EnrollmentNo:    "E001",
		Name:            "Asha Rao",
		InstituteEmail:  "asha@institute.edu",
		Branch:          "CSE",
		TenthPercentage: floatPtr(91.5),
		UGCGPA:          floatPtr(8.2),
		Role:            "SDE",
		Resume:          "/files/resumes/acme/E001.pdf",
		Status:          "Applied",
	}

	cells := r.cells()
	if len(cells) != len(exportHeaders) {
		t.Fatalf("cells() returned %d cells, want %d", len(cells), len(exportHeaders))
	}

	if cells[0].Value != "E001" {
		t.Errorf("enrollment cell = %q, want E001", cells[0].Value)
	}
	if cells[2].Link != "mailto:asha@institute.edu" {
		t.Errorf("email cell should be a mailto hyperlink, got %q", cells[2].Link)
	}
	if cells[9].Link != r.Resume {
		t.Errorf("resume cell should link to %q, got %q", r.Resume, cells[9].Link)
	}
	if cells[4].Value != "91.5" {
		t.Errorf("tenth percentage cell = %q, want 91.5", cells[4].Value)
	}
	if cells[5].Value != "" {
		t.Errorf("missing twelfth percentage should render empty, got %q", cells[5].Value)
	}
	if cells[10].Value != "Applied" {
		t.Errorf("status cell = %q, want Applied", cells[10].Value)
	}
}

func TestExportRow_NoEmailNoLink(t *testing.T) {
	r := exportRow{EnrollmentNo: "E002", Status: "Applied"}

	cells := r.cells()
	if cells[2].Link != "" {
		t.Errorf("empty email must not produce a mailto link, got %q", cells[2].Link)
	}
}

func TestExportRoundTrip_EnrollmentColumn(t *testing.T) {
	// An unmodified export fed back through the import path must yield
	// the same enrollment set in the same order.
	rows := []exportRow{
		{EnrollmentNo: "E001", Role: "SDE", Status: "Selected"},
		{EnrollmentNo: "E002", Role: "SDE", Status: "Selected"},
		{EnrollmentNo: "E003", Role: "Analyst", Status: "Selected"},
	}

	cells := make([][]sheet.Cell, len(rows))
	for i, r := range rows {
		cells[i] = r.cells()
	}

	data, err := sheet.Encode("Applications", exportHeaders, cells)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := sheet.ReadColumn(data, enrollmentHeader)
	if err != nil {
		t.Fatalf("ReadColumn() error = %v", err)
	}

	want := []string{"E001", "E002", "E003"}
	if len(got) != len(want) {
		t.Fatalf("ReadColumn() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ReadColumn()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input *float64
		want  string
	}{
		{nil, ""},
		{floatPtr(91.5), "91.5"},
		{floatPtr(8), "8"},
	}

	for _, tt := range tests {
		if got := formatFloat(tt.input); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
