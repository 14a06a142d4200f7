package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"sentinel/internal/codec"
	"sentinel/internal/domain"
	"sentinel/internal/importer"
	"sentinel/internal/logring"
	"sentinel/internal/scanner"
	"sentinel/internal/store"
)

// maxBodyBytes bounds JSON request bodies; nmap reports get maxImportBytes
const (
	maxBodyBytes   = 1 << 20
	maxImportBytes = 32 << 20
)

// Store is the read and remediation surface of the discovery store
type Store interface {
	Metrics(ctx context.Context) (domain.Metrics, error)
	Logs(ctx context.Context, f logring.Filter) ([]domain.LogEntry, error)
	Scans(ctx context.Context) ([]domain.ScanRecord, error)
	Scan(ctx context.Context, id string) (domain.ScanRecord, error)
	SnapshotTopology(ctx context.Context) (domain.Topology, error)
	Host(ctx context.Context, ip string) (domain.Host, error)
	Hosts(ctx context.Context) ([]domain.Host, error)
	AllVulnerabilities(ctx context.Context, f store.VulnerabilityFilter) ([]domain.HostVulnerability, error)
	ApplyRemediation(ctx context.Context, ip, vulnID, action string) (store.RemediationResult, error)
	Export(ctx context.Context) (domain.Inventory, error)
}

// Scanner starts and cancels scans
type Scanner interface {
	Start(ctx context.Context, subnet string, trigger domain.ScanTrigger) (scanner.StartedScan, error)
	Cancel(id string) error
	Status() domain.ScanStatusInfo
}

// Policies is the policy service
type Policies interface {
	Create(ctx context.Context, p domain.Policy) (domain.Policy, error)
	Get(ctx context.Context, id string) (domain.Policy, error)
	List(ctx context.Context, framework string) ([]domain.Policy, error)
	Delete(ctx context.Context, id string) error
	Evaluate(ctx context.Context, id string) (domain.PolicyEvaluation, error)
}

// Frameworks serves the compliance catalog
type Frameworks interface {
	Current() *domain.FrameworkDocument
}

// Importer loads external scan reports
type Importer interface {
	ImportNmapXML(ctx context.Context, data []byte) (importer.Result, error)
}

// Handler serves the REST API
type Handler struct {
	store      Store
	scanner    Scanner
	policies   Policies
	frameworks Frameworks
	importer   Importer
	started    time.Time
}

// New creates a handler
func New(st Store, sc Scanner, policies Policies, frameworks Frameworks, imp Importer) *Handler {
	return &Handler{
		store:      st,
		scanner:    sc,
		policies:   policies,
		frameworks: frameworks,
		importer:   imp,
		started:    time.Now(),
	}
}

// Register adds every API route to mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /api/logs", h.ListLogs)
	mux.HandleFunc("GET /api/metrics", h.GetMetrics)

	// Scanner
	mux.HandleFunc("POST /api/scanner/discover", h.Discover)
	mux.HandleFunc("GET /api/scanner/status", h.ScanStatus)
	mux.HandleFunc("GET /api/scanner/results", h.ListScans)
	mux.HandleFunc("GET /api/scanner/results/{scanId}", h.GetScan)
	mux.HandleFunc("DELETE /api/scanner/scans/{scanId}", h.CancelScan)

	// Inventory
	mux.HandleFunc("GET /api/topology", h.GetTopology)
	mux.HandleFunc("GET /api/hosts", h.ListHosts)
	mux.HandleFunc("GET /api/hosts/{ip}", h.GetHost)
	mux.HandleFunc("GET /api/vulnerabilities", h.ListVulnerabilities)
	mux.HandleFunc("POST /api/remediate", h.Remediate)

	// Compliance
	mux.HandleFunc("GET /api/policies", h.ListPolicies)
	mux.HandleFunc("POST /api/policies", h.CreatePolicy)
	mux.HandleFunc("GET /api/policies/{id}", h.GetPolicy)
	mux.HandleFunc("DELETE /api/policies/{id}", h.DeletePolicy)
	mux.HandleFunc("POST /api/policies/{id}/evaluate", h.EvaluatePolicy)
	mux.HandleFunc("GET /api/frameworks", h.GetFrameworks)

	// Import/Export
	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("POST /api/import/nmap", h.ImportNmap)
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status  string         `json:"status"`
	Service string         `json:"service"`
	Uptime  float64        `json:"uptime"`
	Metrics domain.Metrics `json:"metrics"`
}

// Health reports liveness with the current counters
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Metrics(r.Context())
	if err != nil {
		h.fail(w, "Failed to read metrics", err)
		return
	}

	writeJSON(w, HealthResponse{
		Status:  "healthy",
		Service: "sentinel",
		Uptime:  time.Since(h.started).Seconds(),
		Metrics: m,
	}, http.StatusOK)
}

// GetMetrics returns the counters
func (h *Handler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.Metrics(r.Context())
	if err != nil {
		h.fail(w, "Failed to read metrics", err)
		return
	}
	writeJSON(w, m, http.StatusOK)
}

// fail maps err to a status code and writes the error body.
// Internal failures are logged and hidden from the client.
func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error(msg)
		writeError(w, msg, "internal error", status)
		return
	}

	details := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		details = de.Message
	}
	writeError(w, msg, details, status)
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict, domain.KindBusy:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a bounded JSON body into v
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Validation("decode", "request body is required")
		}
		return domain.Validation("decode", "invalid JSON: "+err.Error())
	}
	return nil
}

// Helper methods

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.WithError(err).Warn("Failed to encode JSON")
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.WithError(err).Warn("Failed to encode error response")
	}
}

// exportCodec resolves the export format path value
func exportCodec(format string) (codec.Codec, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, domain.Validation("export", err.Error())
	}
	return c, nil
}
