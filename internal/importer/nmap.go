// Package importer turns reports from real scanners into store hosts.
//
// Imported hosts go through the same store path as simulated ones, so they
// show up in topology, metrics and live events. Nothing here probes the
// network.
package importer

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/Ullaakut/nmap/v3"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sentinel/internal/domain"
	"sentinel/internal/generator"
)

// Store is the subset of the discovery store an import writes to
type Store interface {
	UpsertHost(ctx context.Context, host domain.Host) error
	AppendLog(ctx context.Context, level domain.LogLevel, message string, details map[string]any) (domain.LogEntry, error)
}

// Result summarizes an import
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Hosts    []string `json:"hosts"`
}

// Importer loads scanner reports into the store
type Importer struct {
	store Store
	now   func() time.Time
}

// New creates an importer
func New(store Store) *Importer {
	return &Importer{store: store, now: time.Now}
}

// ImportNmapXML parses an nmap XML report (nmap -oX) and upserts every
// host that was up and has an IPv4 address
func (i *Importer) ImportNmapXML(ctx context.Context, data []byte) (Result, error) {
	const op = "importer.ImportNmapXML"

	run := &nmap.Run{}
	if err := nmap.Parse(data, run); err != nil {
		return Result{}, domain.Validation(op, fmt.Sprintf("invalid nmap report: %v", err))
	}

	hosts, skipped := HostsFromRun(run, i.now().UTC())
	res := Result{Skipped: skipped, Hosts: make([]string, 0, len(hosts))}
	for _, h := range hosts {
		if err := i.store.UpsertHost(ctx, h); err != nil {
			return res, err
		}
		res.Imported++
		res.Hosts = append(res.Hosts, h.IP)
	}

	log.WithFields(log.Fields{"imported": res.Imported, "skipped": res.Skipped}).Info("Nmap report imported")
	_, _ = i.store.AppendLog(ctx, domain.LogSuccess, fmt.Sprintf("Imported %d hosts from nmap report", res.Imported), map[string]any{
		"imported": res.Imported,
		"skipped":  res.Skipped,
	})
	return res, nil
}

// HostsFromRun converts nmap results to hosts. Hosts that are down or have
// no IPv4 address are counted as skipped.
func HostsFromRun(run *nmap.Run, now time.Time) ([]domain.Host, int) {
	if run == nil {
		return nil, 0
	}

	var (
		hosts   []domain.Host
		skipped int
	)
	for _, h := range run.Hosts {
		if h.Status.State != "up" {
			skipped++
			continue
		}
		ip := ipv4Address(h.Addresses)
		if ip == "" {
			skipped++
			continue
		}
		hosts = append(hosts, hostFromNmap(h, ip, now))
	}
	return hosts, skipped
}

func ipv4Address(addrs []nmap.Address) string {
	for _, a := range addrs {
		if a.AddrType != "ipv4" {
			continue
		}
		if addr, err := netip.ParseAddr(a.Addr); err == nil && addr.Is4() {
			return addr.String()
		}
	}
	return ""
}

func hostFromNmap(h nmap.Host, ip string, now time.Time) domain.Host {
	deviceType := inferDeviceType(h.Ports)

	host := domain.Host{
		ID:              uuid.NewString(),
		IP:              ip,
		DeviceType:      deviceType,
		OS:              "Unknown",
		Status:          domain.HostActive,
		RiskLevel:       domain.SeverityLow,
		DiscoveredAt:    now,
		Services:        servicesFromPorts(h.Ports),
		Vulnerabilities: []domain.Vulnerability{},
		Source:          domain.SourceNmapImport,
	}

	if len(h.Hostnames) > 0 && h.Hostnames[0].Name != "" {
		host.Hostname = h.Hostnames[0].Name
	} else {
		host.Hostname = fmt.Sprintf("%s-%s", deviceType, ip[strings.LastIndex(ip, ".")+1:])
	}

	for _, a := range h.Addresses {
		if a.AddrType == "mac" {
			host.MAC = strings.ToUpper(a.Addr)
		}
	}

	// First OS match is nmap's best guess
	if len(h.OS.Matches) > 0 && h.OS.Matches[0].Name != "" {
		host.OS = h.OS.Matches[0].Name
	}

	return host
}

// servicesFromPorts keeps open ports, first occurrence per port number
func servicesFromPorts(ports []nmap.Port) []domain.Service {
	services := make([]domain.Service, 0, len(ports))
	seen := make(map[int]bool)

	for _, port := range ports {
		if port.State.State != "open" || seen[int(port.ID)] {
			continue
		}
		seen[int(port.ID)] = true

		name := port.Service.Name
		if name == "" {
			name = catalogName(int(port.ID))
		}

		version := port.Service.Product
		if port.Service.Version != "" {
			version = strings.TrimSpace(version + " " + port.Service.Version)
		}

		services = append(services, domain.Service{
			Port:    int(port.ID),
			Name:    name,
			Version: version,
			State:   "open",
		})
	}
	return services
}

func catalogName(port int) string {
	for _, s := range generator.ServiceCatalog {
		if s.Port == port {
			return s.Name
		}
	}
	return fmt.Sprintf("unknown-%d", port)
}

// inferDeviceType guesses the device type from open ports
func inferDeviceType(ports []nmap.Port) domain.DeviceType {
	open := make(map[uint16]bool)
	for _, p := range ports {
		if p.State.State == "open" {
			open[p.ID] = true
		}
	}

	switch {
	case open[9100] || open[631]:
		return domain.DevicePrinter
	case open[53] && (open[80] || open[443]):
		return domain.DeviceRouter
	case open[1883] || open[5683]:
		return domain.DeviceIoT
	case open[161] && len(open) == 1:
		return domain.DeviceSwitch
	case open[3389]:
		return domain.DeviceWorkstation
	case open[22] || open[80] || open[443] || open[8080] || open[3306] || open[5432]:
		return domain.DeviceServer
	default:
		return domain.DeviceWorkstation
	}
}
