package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"sentinel/internal/domain"
	"sentinel/internal/events"
	"sentinel/internal/store"
)

func TestObserve(t *testing.T) {
	e := New(func() int { return 2 })

	e.Observe(events.New(events.TypeHostDiscovered, domain.Host{
		IP:     "10.0.0.1",
		Source: domain.SourceSimulated,
		Vulnerabilities: []domain.Vulnerability{
			{ID: "a", Severity: domain.SeverityCritical},
			{ID: "b", Severity: domain.SeverityLow},
		},
	}))
	e.Observe(events.New(events.TypeHostDiscovered, domain.Host{IP: "10.0.0.2", Source: domain.SourceNmapImport}))
	e.Observe(events.New(events.TypeScanComplete, domain.ScanRecord{Status: domain.ScanCompleted, Duration: 1500}))
	e.Observe(events.New(events.TypeScanComplete, domain.ScanRecord{Status: domain.ScanFailed}))
	e.Observe(events.New(events.TypeRemediationApplied, store.RemediationResult{HostIP: "10.0.0.1"}))
	e.Observe(events.New(events.TypePolicyCreated, domain.Policy{ID: "p"}))
	e.Observe(events.New(events.TypeLog, domain.LogEntry{Level: domain.LogSuccess}))
	e.Observe(events.New(events.TypeScanStarted, map[string]any{"scanId": "x"}))

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"simulated hosts", testutil.ToFloat64(e.hosts.WithLabelValues("simulated")), 1},
		{"imported hosts", testutil.ToFloat64(e.hosts.WithLabelValues("nmap-import")), 1},
		{"critical vulns", testutil.ToFloat64(e.vulns.WithLabelValues("critical")), 1},
		{"completed scans", testutil.ToFloat64(e.scans.WithLabelValues("completed")), 1},
		{"failed scans", testutil.ToFloat64(e.scans.WithLabelValues("failed")), 1},
		{"remediations", testutil.ToFloat64(e.remediations), 1},
		{"policies", testutil.ToFloat64(e.policies), 1},
		{"success logs", testutil.ToFloat64(e.logs.WithLabelValues("success")), 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, c.got)
		}
	}
}

func TestHandler(t *testing.T) {
	e := New(func() int { return 3 })
	e.Observe(events.New(events.TypePolicyCreated, domain.Policy{ID: "p"}))

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"sentinel_policies_created_total 1", "sentinel_live_clients 3", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected metrics output to contain %q", want)
		}
	}
}
