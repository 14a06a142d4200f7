package domain

import "time"

// Metrics holds the process-wide counters
type Metrics struct {
	TotalScans           int64     `json:"totalScans" yaml:"total_scans"`
	HostsDiscovered      int64     `json:"hostsDiscovered" yaml:"hosts_discovered"`
	VulnerabilitiesFound int64     `json:"vulnerabilitiesFound" yaml:"vulnerabilities_found"`
	PoliciesEnforced     int64     `json:"policiesEnforced" yaml:"policies_enforced"`
	RemediationsApplied  int64     `json:"remediationsApplied" yaml:"remediations_applied"`
	LastUpdate           time.Time `json:"lastUpdate" yaml:"last_update"`
}
