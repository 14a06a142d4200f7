package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"sentinel/internal/domain"
	"sentinel/internal/logring"
	"sentinel/internal/store"
)

// DiscoverRequest starts a scan
type DiscoverRequest struct {
	Subnet string `json:"subnet"`
}

// DiscoverResponse acknowledges an accepted scan
type DiscoverResponse struct {
	Message string `json:"message"`
	Subnet  string `json:"subnet"`
	ScanID  string `json:"scanId"`
}

// RemediateRequest applies a remediation
type RemediateRequest struct {
	HostIP          string `json:"hostIp"`
	VulnerabilityID string `json:"vulnerabilityId"`
	Action          string `json:"action"`
}

// RemediateResponse reports the applied remediation
type RemediateResponse struct {
	Success bool `json:"success"`
	store.RemediationResult
}

// Discover starts a background scan of a subnet
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	var req DiscoverRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}

	started, err := h.scanner.Start(r.Context(), strings.TrimSpace(req.Subnet), domain.TriggerAPI)
	if err != nil {
		h.fail(w, "Failed to start scan", err)
		return
	}

	writeJSON(w, DiscoverResponse{
		Message: "Network discovery started",
		Subnet:  started.Subnet,
		ScanID:  started.ID,
	}, http.StatusAccepted)
}

// ScanStatus reports the running scan
func (h *Handler) ScanStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.scanner.Status(), http.StatusOK)
}

// ListScans returns every recorded scan
func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	scans, err := h.store.Scans(r.Context())
	if err != nil {
		h.fail(w, "Failed to list scans", err)
		return
	}
	writeJSON(w, scans, http.StatusOK)
}

// GetScan returns one scan record
func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Scan(r.Context(), r.PathValue("scanId"))
	if err != nil {
		h.fail(w, "Scan not found", err)
		return
	}
	writeJSON(w, rec, http.StatusOK)
}

// CancelScan stops a running scan
func (h *Handler) CancelScan(w http.ResponseWriter, r *http.Request) {
	if err := h.scanner.Cancel(r.PathValue("scanId")); err != nil {
		h.fail(w, "Failed to cancel scan", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTopology returns the derived graph
func (h *Handler) GetTopology(w http.ResponseWriter, r *http.Request) {
	topo, err := h.store.SnapshotTopology(r.Context())
	if err != nil {
		h.fail(w, "Failed to get topology", err)
		return
	}
	writeJSON(w, topo, http.StatusOK)
}

// ListHosts returns every host in discovery order
func (h *Handler) ListHosts(w http.ResponseWriter, r *http.Request) {
	hosts, err := h.store.Hosts(r.Context())
	if err != nil {
		h.fail(w, "Failed to list hosts", err)
		return
	}
	writeJSON(w, hosts, http.StatusOK)
}

// GetHost returns a single host by IP
func (h *Handler) GetHost(w http.ResponseWriter, r *http.Request) {
	ip := r.PathValue("ip")
	if _, err := netip.ParseAddr(ip); err != nil {
		writeError(w, "Invalid host address", fmt.Sprintf("%q is not an IP address", ip), http.StatusBadRequest)
		return
	}

	host, err := h.store.Host(r.Context(), ip)
	if err != nil {
		h.fail(w, "Host not found", err)
		return
	}
	writeJSON(w, host, http.StatusOK)
}

// ListVulnerabilities flattens vulnerabilities across hosts
func (h *Handler) ListVulnerabilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.VulnerabilityFilter

	if s := q.Get("severity"); s != "" {
		f.Severity = domain.ParseSeverity(s)
		if f.Severity == "" {
			writeError(w, "Invalid severity", fmt.Sprintf("unknown severity %q", s), http.StatusBadRequest)
			return
		}
	}
	switch s := domain.VulnStatus(strings.ToLower(q.Get("status"))); s {
	case "":
	case domain.VulnOpen, domain.VulnRemediated:
		f.Status = s
	default:
		writeError(w, "Invalid status", fmt.Sprintf("unknown status %q", s), http.StatusBadRequest)
		return
	}

	vulns, err := h.store.AllVulnerabilities(r.Context(), f)
	if err != nil {
		h.fail(w, "Failed to list vulnerabilities", err)
		return
	}
	writeJSON(w, vulns, http.StatusOK)
}

// Remediate marks a vulnerability remediated
func (h *Handler) Remediate(w http.ResponseWriter, r *http.Request) {
	var req RemediateRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, "Invalid request body", err)
		return
	}
	if req.HostIP == "" || req.VulnerabilityID == "" {
		writeError(w, "Missing required fields", "hostIp and vulnerabilityId are required", http.StatusBadRequest)
		return
	}

	res, err := h.store.ApplyRemediation(r.Context(), req.HostIP, req.VulnerabilityID, req.Action)
	if err != nil {
		h.fail(w, "Remediation failed", err)
		return
	}
	writeJSON(w, RemediateResponse{Success: true, RemediationResult: res}, http.StatusOK)
}

// ListLogs returns activity log entries, oldest first
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f logring.Filter

	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, "Invalid limit", fmt.Sprintf("limit must be a non-negative integer, got %q", s), http.StatusBadRequest)
			return
		}
		f.Limit = n
	}
	if s := q.Get("level"); s != "" {
		f.Level = domain.ParseLogLevel(s)
		if f.Level == "" {
			writeError(w, "Invalid level", fmt.Sprintf("unknown level %q", s), http.StatusBadRequest)
			return
		}
	}

	entries, err := h.store.Logs(r.Context(), f)
	if err != nil {
		h.fail(w, "Failed to read logs", err)
		return
	}
	writeJSON(w, entries, http.StatusOK)
}

// Export writes the inventory as JSON or YAML
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	c, err := exportCodec(r.PathValue("format"))
	if err != nil {
		h.fail(w, "Unsupported export format", err)
		return
	}

	inv, err := h.store.Export(r.Context())
	if err != nil {
		h.fail(w, "Failed to export inventory", err)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=sentinel-inventory."+c.Format())
	if err := c.Export(&inv, w); err != nil {
		// Headers are already sent
		log.WithError(err).WithField("format", c.Format()).Error("Failed to export inventory")
	}
}

// ImportNmap loads an nmap XML report
func (h *Handler) ImportNmap(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		writeError(w, "Empty report", "request body must contain nmap XML output", http.StatusBadRequest)
		return
	}

	res, err := h.importer.ImportNmapXML(r.Context(), data)
	if err != nil {
		h.fail(w, "Failed to import nmap report", err)
		return
	}
	writeJSON(w, res, http.StatusOK)
}
