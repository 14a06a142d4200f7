// Package generator produces synthetic hosts for the discovery simulator.
//
// Generation is pure: it has no metric or store side effects, and a
// Generator built from a fixed seed returns the same sequence of hosts.
package generator

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"net/netip"
	"time"

	"github.com/google/uuid"

	"sentinel/internal/domain"
)

const (
	maxServices        = 4
	maxVulnerabilities = 2
)

// Generator draws synthetic host records. It is not safe for concurrent use.
type Generator struct {
	src *rand.ChaCha8
	rng *rand.Rand
	now func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// New creates a generator. A zero seed selects a time-based seed.
func New(seed int64, opts ...Option) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(seed))
	src := rand.NewChaCha8(key)

	g := &Generator{
		src: src,
		rng: rand.New(src),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Rand exposes the generator's random source for callers that need further
// draws from the same deterministic stream (presence checks, topology mesh)
func (g *Generator) Rand() *rand.Rand {
	return g.rng
}

// Host synthesizes one discovered host at the given address
func (g *Generator) Host(ip string) domain.Host {
	now := g.now()
	deviceType := domain.DeviceTypes[g.rng.IntN(len(domain.DeviceTypes))]

	host := domain.Host{
		ID:           g.uuid(),
		IP:           ip,
		Hostname:     hostname(deviceType, ip, g.rng),
		MAC:          g.mac(),
		DeviceType:   deviceType,
		OS:           OSCatalog[g.rng.IntN(len(OSCatalog))],
		Status:       domain.HostActive,
		RiskLevel:    domain.Severities[g.rng.IntN(len(domain.Severities))],
		DiscoveredAt: now,
		ResponseTime: 1 + g.rng.IntN(100),
		Source:       domain.SourceSimulated,
	}
	host.Services = g.services()
	host.Vulnerabilities = g.vulnerabilities(now)
	return host
}

// services draws 1-4 catalog entries with replacement and drops repeated ports
func (g *Generator) services() []domain.Service {
	n := 1 + g.rng.IntN(maxServices)
	seen := make(map[int]bool, n)
	out := make([]domain.Service, 0, n)
	for i := 0; i < n; i++ {
		svc := ServiceCatalog[g.rng.IntN(len(ServiceCatalog))]
		if seen[svc.Port] {
			continue
		}
		seen[svc.Port] = true
		out = append(out, svc)
	}
	return out
}

// vulnerabilities draws 0-2 catalog entries with replacement and drops repeated ids
func (g *Generator) vulnerabilities(now time.Time) []domain.Vulnerability {
	n := g.rng.IntN(maxVulnerabilities + 1)
	seen := make(map[string]bool, n)
	out := make([]domain.Vulnerability, 0, n)
	for i := 0; i < n; i++ {
		v := VulnerabilityCatalog[g.rng.IntN(len(VulnerabilityCatalog))]
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		v.Status = domain.VulnOpen
		v.DiscoveredAt = now
		out = append(out, v)
	}
	return out
}

// mac returns a locally administered unicast address
func (g *Generator) mac() string {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], g.rng.Uint64())
	b[0] = (b[0] | 0x02) &^ 0x01
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

func (g *Generator) uuid() string {
	id, err := uuid.NewRandomFromReader(g.src)
	if err != nil {
		// ChaCha8 reads never fail
		return uuid.NewString()
	}
	return id.String()
}

func hostname(deviceType domain.DeviceType, ip string, rng *rand.Rand) string {
	if addr, err := netip.ParseAddr(ip); err == nil && addr.Is4() {
		octets := addr.As4()
		return fmt.Sprintf("%s-%d", deviceType, octets[3])
	}
	return fmt.Sprintf("%s-%04x", deviceType, rng.Uint32()&0xffff)
}
