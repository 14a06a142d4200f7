package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestVulnerabilityRemediate(t *testing.T) {
	t.Run("open vulnerability transitions to remediated", func(t *testing.T) {
		v := Vulnerability{ID: "CVE-2021-44228", Status: VulnOpen}
		at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

		if err := v.Remediate("patched", at); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if v.Status != VulnRemediated {
			t.Errorf("expected status remediated, got %s", v.Status)
		}
		if v.RemediatedAt == nil || !v.RemediatedAt.Equal(at) {
			t.Errorf("expected remediatedAt %v, got %v", at, v.RemediatedAt)
		}
		if v.RemediationAction != "patched" {
			t.Errorf("expected action 'patched', got %s", v.RemediationAction)
		}
	})

	t.Run("second remediation is a conflict", func(t *testing.T) {
		v := Vulnerability{ID: "CVE-2021-44228", Status: VulnOpen}
		_ = v.Remediate("patched", time.Now())

		err := v.Remediate("patched again", time.Now())
		if !errors.Is(err, ErrConflict) {
			t.Errorf("expected conflict error, got %v", err)
		}
		if v.RemediationAction != "patched" {
			t.Errorf("expected original action to be kept, got %s", v.RemediationAction)
		}
	})
}

func TestHostOpenRiskLevel(t *testing.T) {
	host := Host{Vulnerabilities: []Vulnerability{
		{ID: "a", Severity: SeverityCritical, Status: VulnRemediated},
		{ID: "b", Severity: SeverityMedium, Status: VulnOpen},
	}}

	if got := host.OpenRiskLevel(); got != SeverityMedium {
		t.Errorf("expected medium, got %s", got)
	}

	host.Vulnerabilities[1].Status = VulnRemediated
	if got := host.OpenRiskLevel(); got != SeverityLow {
		t.Errorf("expected low with nothing open, got %s", got)
	}
}

func TestHostClone(t *testing.T) {
	now := time.Now()
	orig := Host{
		IP:              "10.0.0.1",
		Services:        []Service{{Port: 22, Name: "ssh"}},
		Vulnerabilities: []Vulnerability{{ID: "x", RemediatedAt: &now}},
	}

	clone := orig.Clone()
	clone.Services[0].Port = 2222
	*clone.Vulnerabilities[0].RemediatedAt = now.Add(time.Hour)

	if orig.Services[0].Port != 22 {
		t.Error("expected clone services to be independent")
	}
	if !orig.Vulnerabilities[0].RemediatedAt.Equal(now) {
		t.Error("expected clone remediation timestamp to be independent")
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		input string
		want  Severity
	}{
		{"CRITICAL", SeverityCritical},
		{" high ", SeverityHigh},
		{"moderate", SeverityMedium},
		{"low", SeverityLow},
		{"bogus", ""},
	}
	for _, tt := range tests {
		if got := ParseSeverity(tt.input); got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if SeverityFromCVSS(9.8) != SeverityCritical {
		t.Error("expected 9.8 to be critical")
	}
	if SeverityFromCVSS(5.3) != SeverityMedium {
		t.Error("expected 5.3 to be medium")
	}
	if !SeverityHigh.IsHigherThan(SeverityMedium) {
		t.Error("expected high to rank above medium")
	}
}

func TestErrorKinds(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("store.Host", "host 10.0.0.9 not found"))

	if !errors.Is(err, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}
	if errors.Is(err, ErrConflict) {
		t.Error("expected not-found error not to match ErrConflict")
	}
	if KindOf(err) != KindNotFound {
		t.Errorf("expected kind not_found, got %s", KindOf(err))
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Error("expected foreign errors to have unknown kind")
	}
}
