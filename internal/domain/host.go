package domain

import (
	"net/netip"
	"time"
)

// DeviceType classifies what kind of endpoint a host is
type DeviceType string

const (
	DeviceServer      DeviceType = "server"
	DeviceWorkstation DeviceType = "workstation"
	DeviceRouter      DeviceType = "router"
	DeviceSwitch      DeviceType = "switch"
	DeviceFirewall    DeviceType = "firewall"
	DevicePrinter     DeviceType = "printer"
	DeviceIoT         DeviceType = "iot"
	DeviceMobile      DeviceType = "mobile"
)

// DeviceTypes lists every device type in a stable order
var DeviceTypes = []DeviceType{
	DeviceServer, DeviceWorkstation, DeviceRouter, DeviceSwitch,
	DeviceFirewall, DevicePrinter, DeviceIoT, DeviceMobile,
}

// HostStatus indicates whether a host answered during discovery
type HostStatus string

const (
	HostActive   HostStatus = "active"
	HostInactive HostStatus = "inactive"
)

// HostSource records where a host record came from
type HostSource string

const (
	SourceSimulated  HostSource = "simulated"
	SourceNmapImport HostSource = "nmap-import"
)

// Host represents a discovered network endpoint
type Host struct {
	ID              string          `json:"id" yaml:"id"`
	IP              string          `json:"ip" yaml:"ip"`
	Hostname        string          `json:"hostname" yaml:"hostname"`
	MAC             string          `json:"mac" yaml:"mac"`
	DeviceType      DeviceType      `json:"deviceType" yaml:"device_type"`
	OS              string          `json:"os" yaml:"os"`
	Status          HostStatus      `json:"status" yaml:"status"`
	RiskLevel       Severity        `json:"riskLevel" yaml:"risk_level"`
	DiscoveredAt    time.Time       `json:"discoveredAt" yaml:"discovered_at"`
	ResponseTime    int             `json:"responseTime" yaml:"response_time_ms"`
	Services        []Service       `json:"services" yaml:"services"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities" yaml:"vulnerabilities"`
	ScanID          string          `json:"scanId,omitempty" yaml:"scan_id,omitempty"`
	Source          HostSource      `json:"source,omitempty" yaml:"source,omitempty"`
}

// Service is a network service exposed by a host
type Service struct {
	Port    int    `json:"port" yaml:"port"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	State   string `json:"state" yaml:"state"`
}

// Clone returns a deep copy so callers can't mutate shared slices
func (h Host) Clone() Host {
	out := h
	if h.Services != nil {
		out.Services = append([]Service(nil), h.Services...)
	}
	if h.Vulnerabilities != nil {
		out.Vulnerabilities = make([]Vulnerability, len(h.Vulnerabilities))
		for i, v := range h.Vulnerabilities {
			out.Vulnerabilities[i] = v.Clone()
		}
	}
	return out
}

// FindVulnerability returns the index of the vulnerability with the given id, or -1
func (h *Host) FindVulnerability(id string) int {
	for i := range h.Vulnerabilities {
		if h.Vulnerabilities[i].ID == id {
			return i
		}
	}
	return -1
}

// OpenRiskLevel returns the highest severity among open vulnerabilities.
// A host with nothing open is low risk.
func (h *Host) OpenRiskLevel() Severity {
	risk := SeverityLow
	for _, v := range h.Vulnerabilities {
		if v.Status == VulnOpen && v.Severity.IsHigherThan(risk) {
			risk = v.Severity
		}
	}
	return risk
}

// Addr parses the host IP, returning the zero Addr when it is invalid
func (h *Host) Addr() netip.Addr {
	addr, err := netip.ParseAddr(h.IP)
	if err != nil {
		return netip.Addr{}
	}
	return addr
}
