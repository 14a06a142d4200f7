// Package config provides configuration management for sentinel.
//
// Config file locations (priority order):
//  1. $SENTINEL_CONFIG
//  2. ./sentinel.yaml
//  3. $XDG_CONFIG_HOME/sentinel/config.yaml
//  4. ~/.config/sentinel/config.yaml
//  5. /etc/sentinel/config.yaml
//
// Keys missing from the file keep their defaults.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"sentinel/internal/topology"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return cfg, path, nil
}

// DefaultConfig returns the settings used when no file is found
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":3001",
			ReadTimeout: Duration(15 * time.Second),
			IdleTimeout: Duration(60 * time.Second),
			CORSOrigin:  "*",
		},
		Scan: ScanConfig{
			MaxCandidates:       254,
			ProbeLimit:          50,
			PresenceProbability: 0.4,
			HostDelay:           Duration(50 * time.Millisecond),
		},
		Topology: TopologyConfig{
			Gateway:         "first_discovered",
			MeshCandidates:  topology.DefaultMeshCandidates,
			MeshProbability: topology.DefaultMeshProbability,
		},
		Logs: LogsConfig{Capacity: 1000, Replay: 50},
		Log:  LogConfig{Level: "info", Format: "text"},
		Live: LiveConfig{
			ClientBuffer:  64,
			KeepAlive:     Duration(30 * time.Second),
			ReconnectHint: Duration(3 * time.Second),
		},
		Frameworks: FrameworksConfig{Watch: true},
		Policies:   PoliciesConfig{DSN: "file:sentinel-policies?mode=memory&cache=shared"},
		Tracing:    TracingConfig{ServiceName: "sentinel"},
	}
}

// applyDefaults fills values a file explicitly blanked
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Topology.Gateway == "" {
		c.Topology.Gateway = def.Topology.Gateway
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	if c.Live.ClientBuffer == 0 {
		c.Live.ClientBuffer = def.Live.ClientBuffer
	}
	if c.Live.KeepAlive == 0 {
		c.Live.KeepAlive = def.Live.KeepAlive
	}
	if c.Live.ReconnectHint == 0 {
		c.Live.ReconnectHint = def.Live.ReconnectHint
	}
	if c.Policies.DSN == "" {
		c.Policies.DSN = def.Policies.DSN
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = def.Tracing.ServiceName
	}
}

// Validate reports every out-of-range setting
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Scan.MaxCandidates < 1 {
		add("scan.max_candidates must be at least 1")
	}
	if c.Scan.ProbeLimit < 1 {
		add("scan.probe_limit must be at least 1")
	}
	if p := c.Scan.PresenceProbability; p < 0 || p > 1 {
		add("scan.presence_probability must be within [0,1], got %v", p)
	}
	if c.Scan.HostDelay < 0 {
		add("scan.host_delay must not be negative")
	}
	if _, err := topology.SelectorByName(c.Topology.Gateway); err != nil {
		add("topology.gateway: %v", err)
	}
	if c.Topology.MeshCandidates < 0 {
		add("topology.mesh_candidates must not be negative")
	}
	if p := c.Topology.MeshProbability; p < 0 || p > 1 {
		add("topology.mesh_probability must be within [0,1], got %v", p)
	}
	if c.Logs.Capacity < 1 {
		add("logs.capacity must be at least 1")
	}
	if c.Logs.Replay < 0 || c.Logs.Replay > c.Logs.Capacity {
		add("logs.replay must be within [0,capacity]")
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		add("log.level: %v", err)
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		add("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Live.ClientBuffer < 1 {
		add("live.client_buffer must be at least 1")
	}
	for i, s := range c.Schedules {
		prefix, err := netip.ParsePrefix(s.Subnet)
		if err != nil || !prefix.Addr().Is4() {
			add("schedules[%d].subnet %q is not an IPv4 CIDR", i, s.Subnet)
		}
		if strings.TrimSpace(s.Cron) == "" {
			add("schedules[%d].cron is required", i)
		}
	}

	return errors.Join(errs...)
}
