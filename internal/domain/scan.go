package domain

import "time"

// ScanStatus is the terminal state of a discovery run
type ScanStatus string

const (
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// ScanTrigger records what started a scan
type ScanTrigger string

const (
	TriggerAPI      ScanTrigger = "api"
	TriggerSchedule ScanTrigger = "schedule"
)

// ScanRecord is the immutable result of one discovery run
type ScanRecord struct {
	ID         string      `json:"id" yaml:"id"`
	Subnet     string      `json:"subnet" yaml:"subnet"`
	StartTime  time.Time   `json:"startTime" yaml:"start_time"`
	EndTime    time.Time   `json:"endTime" yaml:"end_time"`
	Duration   int64       `json:"duration" yaml:"duration_ms"`
	Hosts      []Host      `json:"hosts" yaml:"hosts"`
	Topology   Topology    `json:"topology" yaml:"topology"`
	HostsFound int         `json:"hostsFound" yaml:"hosts_found"`
	Status     ScanStatus  `json:"status" yaml:"status"`
	Error      string      `json:"error,omitempty" yaml:"error,omitempty"`
	Trigger    ScanTrigger `json:"trigger,omitempty" yaml:"trigger,omitempty"`
}

// ScanStatusInfo describes the scan currently running, if any
type ScanStatusInfo struct {
	Running   bool       `json:"running"`
	ScanID    string     `json:"scanId,omitempty"`
	Subnet    string     `json:"subnet,omitempty"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
}
