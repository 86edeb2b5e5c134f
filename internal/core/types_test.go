package core

import (
	"testing"
	"time"
)

func TestPrincipal_Roles(t *testing.T) {
	tests := []struct {
		name      string
		p         Principal
		isStudent bool
		canManage bool
	}{
		{"student", Principal{Email: "s@x.edu", Role: RoleStudent}, true, false},
		{"staff", Principal{Email: "t@x.edu", Role: RoleStaff}, false, true},
		{"admin", Principal{Email: "a@x.edu", Role: RoleAdmin}, false, true},
		{"unauthenticated", Principal{}, false, false},
		{"unknown role", Principal{Role: Role("auditor")}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsStudent(); got != tt.isStudent {
				t.Errorf("IsStudent() = %v, want %v", got, tt.isStudent)
			}
			if got := tt.p.CanManage(); got != tt.canManage {
				t.Errorf("CanManage() = %v, want %v", got, tt.canManage)
			}
		})
	}
}

func TestCompanyInput_Empty(t *testing.T) {
	deadline := time.Now()
	ninety := 90.0

	tests := []struct {
		name  string
		input CompanyInput
		want  bool
	}{
		{"zero value", CompanyInput{}, true},
		{"name only", CompanyInput{Name: "Acme"}, false},
		{"ctc only", CompanyInput{CTC: "12 LPA"}, false},
		{"deadline only", CompanyInput{Deadline: &deadline}, false},
		{"cutoff only", CompanyInput{TenthPercentage: &ninety}, false},
		{"location only", CompanyInput{Location: []string{"Pune"}}, false},
		{"docs only", CompanyInput{Docs: []FileUpload{{Name: "jd.pdf"}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.input.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}
