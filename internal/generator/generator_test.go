package generator

import (
	"reflect"
	"regexp"
	"testing"
	"time"

	"sentinel/internal/domain"
)

var fixedClock = WithClock(func() time.Time {
	return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
})

func TestHostInvariants(t *testing.T) {
	gen := New(42, fixedClock)
	macPattern := regexp.MustCompile(`^([0-9a-f]{2}:){5}[0-9a-f]{2}$`)

	for i := 0; i < 500; i++ {
		host := gen.Host("10.0.0.7")

		ports := make(map[int]bool)
		for _, s := range host.Services {
			if ports[s.Port] {
				t.Fatalf("duplicate port %d in %+v", s.Port, host.Services)
			}
			ports[s.Port] = true
		}
		if len(host.Services) < 1 || len(host.Services) > maxServices {
			t.Fatalf("expected 1-%d services, got %d", maxServices, len(host.Services))
		}

		ids := make(map[string]bool)
		for _, v := range host.Vulnerabilities {
			if ids[v.ID] {
				t.Fatalf("duplicate vulnerability %s", v.ID)
			}
			ids[v.ID] = true
			if v.Status != domain.VulnOpen {
				t.Fatalf("expected new vulnerability to be open, got %s", v.Status)
			}
		}
		if len(host.Vulnerabilities) > maxVulnerabilities {
			t.Fatalf("expected at most %d vulnerabilities, got %d", maxVulnerabilities, len(host.Vulnerabilities))
		}

		if !macPattern.MatchString(host.MAC) {
			t.Fatalf("unexpected MAC format %q", host.MAC)
		}
		if !host.RiskLevel.Valid() {
			t.Fatalf("unexpected risk level %q", host.RiskLevel)
		}
		if host.Hostname != string(host.DeviceType)+"-7" {
			t.Fatalf("unexpected hostname %q", host.Hostname)
		}
		if host.Status != domain.HostActive {
			t.Fatalf("expected active host, got %s", host.Status)
		}
	}
}

func TestHostDeterministicForSeed(t *testing.T) {
	a := New(7, fixedClock)
	b := New(7, fixedClock)

	for i := 0; i < 20; i++ {
		ha := a.Host("192.168.1.10")
		hb := b.Host("192.168.1.10")
		if !reflect.DeepEqual(ha, hb) {
			t.Fatalf("expected identical hosts for same seed at draw %d:\n%+v\n%+v", i, ha, hb)
		}
	}

	c := New(8, fixedClock)
	if reflect.DeepEqual(New(7, fixedClock).Host("192.168.1.10"), c.Host("192.168.1.10")) {
		t.Error("expected different seeds to produce different hosts")
	}
}

func TestDeviceTypeCoverage(t *testing.T) {
	gen := New(1, fixedClock)
	seen := make(map[domain.DeviceType]bool)
	for i := 0; i < 1000; i++ {
		seen[gen.Host("10.1.1.1").DeviceType] = true
	}
	for _, dt := range domain.DeviceTypes {
		if !seen[dt] {
			t.Errorf("expected device type %s to be drawn at least once", dt)
		}
	}
}

func TestCatalogsHaveUniqueKeys(t *testing.T) {
	ports := make(map[int]bool)
	for _, s := range ServiceCatalog {
		if ports[s.Port] {
			t.Errorf("duplicate catalog port %d", s.Port)
		}
		ports[s.Port] = true
	}
	ids := make(map[string]bool)
	for _, v := range VulnerabilityCatalog {
		if ids[v.ID] {
			t.Errorf("duplicate catalog id %s", v.ID)
		}
		ids[v.ID] = true
		if v.Severity != domain.SeverityFromCVSS(v.CVSS) {
			t.Errorf("catalog entry %s severity %s does not match cvss %.1f", v.ID, v.Severity, v.CVSS)
		}
	}
}
