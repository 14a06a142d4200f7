package domain

import (
	"strings"
	"time"
)

// Severity is the shared low/medium/high/critical scale used for
// vulnerability severity and host risk level
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists all levels from lowest to highest
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Priority returns the numeric rank of the severity (higher = worse)
func (s Severity) Priority() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// IsHigherThan reports whether s ranks above other
func (s Severity) IsHigherThan(other Severity) bool {
	return s.Priority() > other.Priority()
}

// Valid reports whether s is one of the known levels
func (s Severity) Valid() bool {
	return s.Priority() > 0
}

// ParseSeverity normalizes a severity string; unknown input yields ""
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "crit":
		return SeverityCritical
	case "high":
		return SeverityHigh
	case "medium", "moderate":
		return SeverityMedium
	case "low":
		return SeverityLow
	}
	return ""
}

// SeverityFromCVSS maps a CVSS v3 base score onto the severity scale
func SeverityFromCVSS(score float64) Severity {
	switch {
	case score >= 9.0:
		return SeverityCritical
	case score >= 7.0:
		return SeverityHigh
	case score >= 4.0:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// VulnStatus tracks remediation state; the only transition is open -> remediated
type VulnStatus string

const (
	VulnOpen       VulnStatus = "open"
	VulnRemediated VulnStatus = "remediated"
)

// Vulnerability is a weakness found on exactly one host
type Vulnerability struct {
	ID                string     `json:"id" yaml:"id"`
	Name              string     `json:"name" yaml:"name"`
	Severity          Severity   `json:"severity" yaml:"severity"`
	CVSS              float64    `json:"cvss" yaml:"cvss"`
	Description       string     `json:"description" yaml:"description"`
	Remediation       string     `json:"remediation" yaml:"remediation"`
	Status            VulnStatus `json:"status" yaml:"status"`
	DiscoveredAt      time.Time  `json:"discoveredAt" yaml:"discovered_at"`
	RemediatedAt      *time.Time `json:"remediatedAt,omitempty" yaml:"remediated_at,omitempty"`
	RemediationAction string     `json:"remediationAction,omitempty" yaml:"remediation_action,omitempty"`
}

// Clone returns a copy that does not share the remediation timestamp
func (v Vulnerability) Clone() Vulnerability {
	out := v
	if v.RemediatedAt != nil {
		t := *v.RemediatedAt
		out.RemediatedAt = &t
	}
	return out
}

// Remediate performs the open -> remediated transition.
// It returns a Conflict error if the vulnerability is already remediated.
func (v *Vulnerability) Remediate(action string, at time.Time) error {
	if v.Status == VulnRemediated {
		return Conflict("vulnerability.Remediate", "vulnerability "+v.ID+" already remediated")
	}
	v.Status = VulnRemediated
	v.RemediatedAt = &at
	v.RemediationAction = action
	return nil
}

// HostVulnerability is a vulnerability annotated with its owning host
type HostVulnerability struct {
	Vulnerability
	HostIP   string `json:"hostIp"`
	Hostname string `json:"hostname"`
}
