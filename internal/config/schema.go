package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Scan       ScanConfig       `yaml:"scan"`
	Topology   TopologyConfig   `yaml:"topology"`
	Logs       LogsConfig       `yaml:"logs"`
	Log        LogConfig        `yaml:"log"`
	Live       LiveConfig       `yaml:"live"`
	Frameworks FrameworksConfig `yaml:"frameworks"`
	Schedules  []ScheduleConfig `yaml:"schedules,omitempty"`
	Policies   PoliciesConfig   `yaml:"policies"`
	Tracing    TracingConfig    `yaml:"tracing"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"` // 0 keeps live streams open
	IdleTimeout  Duration `yaml:"idle_timeout"`
	CORSOrigin   string   `yaml:"cors_origin"`
}

// ScanConfig tunes simulated discovery
type ScanConfig struct {
	MaxCandidates       int      `yaml:"max_candidates"`
	ProbeLimit          int      `yaml:"probe_limit"`
	PresenceProbability float64  `yaml:"presence_probability"`
	HostDelay           Duration `yaml:"host_delay"`
	Seed                int64    `yaml:"seed"` // 0 = seed from clock
}

// TopologyConfig controls graph derivation
type TopologyConfig struct {
	Gateway         string  `yaml:"gateway"` // first_discovered, lowest_ip
	MeshCandidates  int     `yaml:"mesh_candidates"`
	MeshProbability float64 `yaml:"mesh_probability"`
}

// LogsConfig sizes the activity log
type LogsConfig struct {
	Capacity int `yaml:"capacity"`
	Replay   int `yaml:"replay"`
}

// LogConfig controls process logging
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text, json
}

// LiveConfig tunes the live channel
type LiveConfig struct {
	ClientBuffer  int      `yaml:"client_buffer"`
	KeepAlive     Duration `yaml:"keepalive"`
	ReconnectHint Duration `yaml:"reconnect_hint"`
}

// FrameworksConfig points at the compliance catalog file
type FrameworksConfig struct {
	Path  string `yaml:"path,omitempty"`
	Watch bool   `yaml:"watch"`
}

// ScheduleConfig is one recurring scan
type ScheduleConfig struct {
	Subnet string `yaml:"subnet"`
	Cron   string `yaml:"cron"`
}

// PoliciesConfig holds the policy table location
type PoliciesConfig struct {
	DSN string `yaml:"dsn"`
}

// TracingConfig controls OpenTelemetry export
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint,omitempty"` // OTLP gRPC; empty logs spans instead
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
