package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sentinel/internal/domain"
	"sentinel/internal/frameworks"
	"sentinel/internal/importer"
	"sentinel/internal/policy"
	"sentinel/internal/repository/sqlite"
	"sentinel/internal/scanner"
	"sentinel/internal/store"
)

type testEnv struct {
	mux     *http.ServeMux
	store   *store.Store
	scanner *scanner.Orchestrator
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	st := store.New(store.Options{Seed: 11})
	ctx, cancel := context.WithCancel(context.Background())
	go st.Run(ctx)

	repo, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}

	cfg := scanner.DefaultConfig()
	cfg.HostDelay = 0
	cfg.Seed = 7
	sc := scanner.New(cfg, st)

	t.Cleanup(func() {
		sc.Wait()
		repo.Close()
		cancel()
		<-st.Done()
	})

	h := New(st, sc, policy.NewService(repo, st), frameworks.NewLoader(""), importer.New(st))
	mux := http.NewServeMux()
	h.Register(mux)
	return &testEnv{mux: mux, store: st, scanner: sc}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func seedHost(t *testing.T, st *store.Store, ip string) {
	t.Helper()
	err := st.UpsertHost(context.Background(), domain.Host{
		ID:         "h-" + ip,
		IP:         ip,
		Hostname:   "web-" + ip,
		DeviceType: domain.DeviceServer,
		Status:     domain.HostActive,
		RiskLevel:  domain.SeverityCritical,
		Vulnerabilities: []domain.Vulnerability{
			{ID: "CVE-2021-44228", Name: "Log4Shell", Severity: domain.SeverityCritical, Status: domain.VulnOpen},
			{ID: "CVE-2019-0708", Name: "BlueKeep", Severity: domain.SeverityHigh, Status: domain.VulnOpen},
		},
	})
	if err != nil {
		t.Fatalf("seed host: %v", err)
	}
}

func TestHealth(t *testing.T) {
	env := setup(t)
	seedHost(t, env.store, "10.0.0.1")

	rec := env.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeJSON[HealthResponse](t, rec)
	if resp.Status != "healthy" || resp.Service != "sentinel" {
		t.Errorf("unexpected health %+v", resp)
	}
	if resp.Metrics.HostsDiscovered != 1 {
		t.Errorf("expected 1 host in metrics, got %d", resp.Metrics.HostsDiscovered)
	}
}

func TestGetHost(t *testing.T) {
	env := setup(t)
	seedHost(t, env.store, "10.0.0.1")

	t.Run("known host", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/hosts/10.0.0.1", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		host := decodeJSON[domain.Host](t, rec)
		if host.Hostname != "web-10.0.0.1" {
			t.Errorf("expected web-10.0.0.1, got %s", host.Hostname)
		}
	})

	t.Run("never discovered address is 404 with error body", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/hosts/203.0.113.5", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		body := decodeJSON[ErrorResponse](t, rec)
		if body.Error == "" {
			t.Error("expected error message in body")
		}
	})

	t.Run("malformed address is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/hosts/not-an-ip", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("list hosts", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/hosts", "")
		hosts := decodeJSON[[]domain.Host](t, rec)
		if len(hosts) != 1 {
			t.Errorf("expected 1 host, got %d", len(hosts))
		}
	})
}

func TestRemediate(t *testing.T) {
	env := setup(t)
	seedHost(t, env.store, "10.0.0.1")

	metrics := func() domain.Metrics {
		m, err := env.store.Metrics(context.Background())
		if err != nil {
			t.Fatalf("metrics: %v", err)
		}
		return m
	}

	t.Run("unknown host is 404 and leaves metrics unchanged", func(t *testing.T) {
		before := metrics()
		rec := env.do(t, http.MethodPost, "/api/remediate",
			`{"hostIp":"192.0.2.99","vulnerabilityId":"CVE-2021-44228","action":"patch"}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		after := metrics()
		if after.RemediationsApplied != before.RemediationsApplied || !after.LastUpdate.Equal(before.LastUpdate) {
			t.Errorf("expected metrics unchanged, before %+v after %+v", before, after)
		}
	})

	t.Run("unknown vulnerability is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/remediate",
			`{"hostIp":"10.0.0.1","vulnerabilityId":"CVE-0000-0000","action":"patch"}`)
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("missing fields is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/remediate", `{"hostIp":"10.0.0.1"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("empty body is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/remediate", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("remediating twice counts once", func(t *testing.T) {
		body := `{"hostIp":"10.0.0.1","vulnerabilityId":"CVE-2021-44228","action":"patch"}`

		rec := env.do(t, http.MethodPost, "/api/remediate", body)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		resp := decodeJSON[RemediateResponse](t, rec)
		if !resp.Success || resp.Vulnerability.Status != domain.VulnRemediated {
			t.Errorf("unexpected response %+v", resp)
		}
		if resp.RiskLevel != domain.SeverityHigh {
			t.Errorf("expected risk to drop to high, got %s", resp.RiskLevel)
		}

		rec = env.do(t, http.MethodPost, "/api/remediate", body)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, got %d", rec.Code)
		}
		if got := metrics().RemediationsApplied; got != 1 {
			t.Errorf("expected 1 remediation, got %d", got)
		}
	})
}

func TestVulnerabilities(t *testing.T) {
	env := setup(t)
	seedHost(t, env.store, "10.0.0.1")

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"", http.StatusOK, 2},
		{"?severity=critical", http.StatusOK, 1},
		{"?status=remediated", http.StatusOK, 0},
		{"?severity=urgent", http.StatusBadRequest, 0},
		{"?status=ignored", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/vulnerabilities"+tt.query, "")
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			vulns := decodeJSON[[]domain.HostVulnerability](t, rec)
			if len(vulns) != tt.count {
				t.Errorf("expected %d vulnerabilities, got %d", tt.count, len(vulns))
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	env := setup(t)

	t.Run("missing subnet is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/scanner/discover", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("malformed subnet is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/scanner/discover", `{"subnet":"10.0.0.0/33"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("accepted scan is recorded", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/scanner/discover", `{"subnet":"10.0.0.0/29"}`)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
		}
		resp := decodeJSON[DiscoverResponse](t, rec)
		if resp.ScanID == "" || resp.ScanID == "pending" {
			t.Fatalf("expected a real scan id, got %q", resp.ScanID)
		}
		if resp.Subnet != "10.0.0.0/29" {
			t.Errorf("expected subnet echoed, got %s", resp.Subnet)
		}

		env.scanner.Wait()

		rec = env.do(t, http.MethodGet, "/api/scanner/results/"+resp.ScanID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		scan := decodeJSON[domain.ScanRecord](t, rec)
		if scan.Status != domain.ScanCompleted {
			t.Errorf("expected completed scan, got %s", scan.Status)
		}

		rec = env.do(t, http.MethodGet, "/api/topology", "")
		topo := decodeJSON[domain.Topology](t, rec)
		if len(topo.Nodes) != scan.HostsFound {
			t.Errorf("expected %d topology nodes, got %d", scan.HostsFound, len(topo.Nodes))
		}

		rec = env.do(t, http.MethodGet, "/api/scanner/results", "")
		if scans := decodeJSON[[]domain.ScanRecord](t, rec); len(scans) != 1 {
			t.Errorf("expected 1 scan record, got %d", len(scans))
		}
	})

	t.Run("unknown scan is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/scanner/results/nope", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("cancel without a running scan is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/scanner/scans/nope", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("status is idle after completion", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/scanner/status", "")
		status := decodeJSON[domain.ScanStatusInfo](t, rec)
		if status.Running {
			t.Errorf("expected idle scanner, got %+v", status)
		}
	})
}

func TestLogs(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	for _, lvl := range []domain.LogLevel{domain.LogInfo, domain.LogError, domain.LogInfo} {
		if _, err := env.store.AppendLog(ctx, lvl, "entry", nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	tests := []struct {
		query string
		code  int
		count int
	}{
		{"", http.StatusOK, 3},
		{"?limit=2", http.StatusOK, 2},
		{"?level=error", http.StatusOK, 1},
		{"?limit=-1", http.StatusBadRequest, 0},
		{"?level=loud", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/logs"+tt.query, "")
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			if tt.code != http.StatusOK {
				return
			}
			if entries := decodeJSON[[]domain.LogEntry](t, rec); len(entries) != tt.count {
				t.Errorf("expected %d entries, got %d", tt.count, len(entries))
			}
		})
	}
}

func TestPolicies(t *testing.T) {
	env := setup(t)
	seedHost(t, env.store, "10.0.0.1")

	rec := env.do(t, http.MethodPost, "/api/policies", `{"name":"No criticals","framework":"nist-csf","severity":"high"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeJSON[domain.Policy](t, rec)
	if created.ID == "" {
		t.Fatal("expected generated id")
	}

	t.Run("invalid policy is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/policies", `{"framework":"cis-v8"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("list filters by framework", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/policies?framework=nist-csf", "")
		if got := decodeJSON[[]domain.Policy](t, rec); len(got) != 1 {
			t.Errorf("expected 1 policy, got %d", len(got))
		}
		rec = env.do(t, http.MethodGet, "/api/policies?framework=pci-dss", "")
		if got := decodeJSON[[]domain.Policy](t, rec); len(got) != 0 {
			t.Errorf("expected 0 policies, got %d", len(got))
		}
	})

	t.Run("evaluate reports violations", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/policies/"+created.ID+"/evaluate", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		eval := decodeJSON[domain.PolicyEvaluation](t, rec)
		if eval.Compliant || len(eval.Violations) != 2 {
			t.Errorf("expected 2 violations, got %+v", eval)
		}
	})

	t.Run("metrics count created policies", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/metrics", "")
		if m := decodeJSON[domain.Metrics](t, rec); m.PoliciesEnforced != 1 {
			t.Errorf("expected 1 policy enforced, got %d", m.PoliciesEnforced)
		}
	})

	t.Run("delete then get is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, "/api/policies/"+created.ID, "")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		rec = env.do(t, http.MethodGet, "/api/policies/"+created.ID, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestFrameworks(t *testing.T) {
	env := setup(t)

	rec := env.do(t, http.MethodGet, "/api/frameworks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc := decodeJSON[domain.FrameworkDocument](t, rec)
	if len(doc.Frameworks) == 0 {
		t.Error("expected built-in frameworks")
	}
}

func TestExport(t *testing.T) {
	env := setup(t)
	seedHost(t, env.store, "10.0.0.1")

	t.Run("yaml", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/export/yaml", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
			t.Errorf("expected application/yaml, got %s", ct)
		}
		if !strings.Contains(rec.Body.String(), "10.0.0.1") {
			t.Error("expected host in export")
		}
	})

	t.Run("json", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/export/json", "")
		inv := decodeJSON[domain.Inventory](t, rec)
		if len(inv.Hosts) != 1 {
			t.Errorf("expected 1 host, got %d", len(inv.Hosts))
		}
	})

	t.Run("unknown format is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/export/csv", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestImportNmap(t *testing.T) {
	env := setup(t)

	t.Run("empty body is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/import/nmap", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("garbage is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/import/nmap", "not xml at all")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.Validation("op", "x"), http.StatusBadRequest},
		{domain.NotFound("op", "x"), http.StatusNotFound},
		{domain.Conflict("op", "x"), http.StatusConflict},
		{domain.Busy("op", "x"), http.StatusConflict},
		{domain.Internal("op", context.Canceled), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
