// Package scanner runs simulated subnet discovery.
//
// At most one scan runs at a time. Each scan walks the candidate addresses
// of a subnet, synthesizes the hosts that "answer" and writes them to the
// store as it goes, so live clients watch the network appear progressively.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"sentinel/internal/domain"
	"sentinel/internal/events"
	"sentinel/internal/generator"
	"sentinel/internal/topology"
)

// Store is the subset of the discovery store a scan writes to
type Store interface {
	UpsertHost(ctx context.Context, host domain.Host) error
	RecordScan(ctx context.Context, rec domain.ScanRecord) error
	AppendLog(ctx context.Context, level domain.LogLevel, message string, details map[string]any) (domain.LogEntry, error)
	Announce(ctx context.Context, t events.Type, data any) error
}

// Config holds scan tuning
type Config struct {
	MaxCandidates       int
	ProbeLimit          int
	PresenceProbability float64
	HostDelay           time.Duration
	// Seed makes scans reproducible; 0 seeds from the clock
	Seed     int64
	Topology topology.Options
}

// DefaultConfig returns the standard discovery settings
func DefaultConfig() Config {
	return Config{
		MaxCandidates:       254,
		ProbeLimit:          50,
		PresenceProbability: 0.4,
		HostDelay:           50 * time.Millisecond,
		Topology: topology.Options{
			Gateway:         topology.FirstDiscovered{},
			MeshCandidates:  topology.DefaultMeshCandidates,
			MeshProbability: topology.DefaultMeshProbability,
		},
	}
}

type run struct {
	id      string
	subnet  string
	started time.Time
	cancel  context.CancelFunc
}

// Orchestrator starts and tracks scans
type Orchestrator struct {
	cfg    Config
	store  Store
	tracer trace.Tracer
	now    func() time.Time

	mu      sync.Mutex
	running *run
	seq     int64
	closed  bool
	wg      sync.WaitGroup
}

// New creates an orchestrator writing to store
func New(cfg Config, store Store) *Orchestrator {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 254
	}
	if cfg.ProbeLimit <= 0 {
		cfg.ProbeLimit = 50
	}
	return &Orchestrator{
		cfg:    cfg,
		store:  store,
		tracer: otel.Tracer("sentinel/scanner"),
		now:    time.Now,
	}
}

// StartedScan describes an accepted scan request
type StartedScan struct {
	ID     string `json:"scanId"`
	Subnet string `json:"subnet"`
}

// Start validates subnet, claims the scan slot and runs the scan in the
// background. It returns once the scan is announced.
func (o *Orchestrator) Start(ctx context.Context, subnet string, trigger domain.ScanTrigger) (StartedScan, error) {
	const op = "scanner.Start"

	if subnet == "" {
		return StartedScan{}, domain.Validation(op, "subnet is required")
	}
	ips, err := expandCIDR(subnet, o.cfg.MaxCandidates)
	if err != nil {
		return StartedScan{}, domain.Validation(op, fmt.Sprintf("invalid subnet %q: %v", subnet, err))
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return StartedScan{}, domain.Busy(op, "scanner is shutting down")
	}
	if o.running != nil {
		busy := o.running.id
		o.mu.Unlock()
		return StartedScan{}, domain.Busy(op, "scan "+busy+" is already running")
	}
	o.seq++
	seed := o.cfg.Seed
	if seed != 0 {
		seed += o.seq
	}
	scanCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &run{
		id:      uuid.NewString(),
		subnet:  subnet,
		started: o.now().UTC(),
		cancel:  cancel,
	}
	o.running = r
	// Added under mu so Shutdown's Wait cannot miss this scan
	o.wg.Add(1)
	o.mu.Unlock()

	started := StartedScan{ID: r.id, Subnet: subnet}
	if err := o.announce(ctx, r, trigger, len(ips)); err != nil {
		cancel()
		o.release(r)
		o.wg.Done()
		return StartedScan{}, err
	}

	log.WithFields(log.Fields{"scan": r.id, "subnet": subnet, "trigger": trigger}).Info("Scan started")

	go func() {
		defer o.wg.Done()
		defer o.release(r)
		defer cancel()
		o.scan(scanCtx, r, trigger, ips, generator.New(seed))
	}()

	return started, nil
}

func (o *Orchestrator) announce(ctx context.Context, r *run, trigger domain.ScanTrigger, candidates int) error {
	if _, err := o.store.AppendLog(ctx, domain.LogInfo, "Starting network discovery on "+r.subnet, map[string]any{
		"scanId":     r.id,
		"subnet":     r.subnet,
		"candidates": candidates,
		"trigger":    trigger,
	}); err != nil {
		return fmt.Errorf("log scan start: %w", err)
	}
	return o.store.Announce(ctx, events.TypeScanStarted, map[string]any{
		"scanId":    r.id,
		"subnet":    r.subnet,
		"startTime": r.started,
		"trigger":   trigger,
	})
}

func (o *Orchestrator) release(r *run) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running == r {
		o.running = nil
	}
}

func (o *Orchestrator) scan(ctx context.Context, r *run, trigger domain.ScanTrigger, ips []string, gen *generator.Generator) {
	ctx, span := o.tracer.Start(ctx, "scanner.scan", trace.WithAttributes(
		attribute.String("scan.id", r.id),
		attribute.String("scan.subnet", r.subnet),
		attribute.Int("scan.candidates", len(ips)),
	))
	defer span.End()

	var limiter *rate.Limiter
	if o.cfg.HostDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(o.cfg.HostDelay), 1)
	}

	probe := ips[:min(len(ips), o.cfg.ProbeLimit)]
	hosts := make([]domain.Host, 0, len(probe))
	rng := gen.Rand()

	var err error
	for _, ip := range probe {
		if err = ctx.Err(); err != nil {
			break
		}
		if rng.Float64() >= o.cfg.PresenceProbability {
			continue
		}
		if limiter != nil {
			if err = limiter.Wait(ctx); err != nil {
				break
			}
		}

		h := gen.Host(ip)
		h.ScanID = r.id
		if err = o.store.UpsertHost(ctx, h); err != nil {
			break
		}
		hosts = append(hosts, h)
		span.AddEvent("host_discovered", trace.WithAttributes(attribute.String("host.ip", ip)))
	}

	end := o.now().UTC()
	topts := o.cfg.Topology
	topts.Rand = rng
	rec := domain.ScanRecord{
		ID:         r.id,
		Subnet:     r.subnet,
		StartTime:  r.started,
		EndTime:    end,
		Duration:   end.Sub(r.started).Milliseconds(),
		Hosts:      hosts,
		Topology:   topology.Derive(hosts, topts),
		HostsFound: len(hosts),
		Status:     domain.ScanCompleted,
		Trigger:    trigger,
	}
	if err != nil {
		rec.Status = domain.ScanFailed
		rec.Error = err.Error()
		span.RecordError(err)
		span.SetStatus(codes.Error, "scan failed")
	}
	span.SetAttributes(attribute.Int("scan.hosts_found", rec.HostsFound))

	// Record even when the scan itself was cancelled
	bg := context.WithoutCancel(ctx)
	if recErr := o.store.RecordScan(bg, rec); recErr != nil {
		log.WithError(recErr).WithField("scan", r.id).Error("Failed to record scan")
		return
	}

	fields := log.Fields{"scan": r.id, "subnet": r.subnet, "hosts": rec.HostsFound, "duration_ms": rec.Duration}
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("Scan failed")
		_, _ = o.store.AppendLog(bg, domain.LogError, fmt.Sprintf("Discovery failed on %s: %v", r.subnet, err), map[string]any{
			"scanId":     r.id,
			"hostsFound": rec.HostsFound,
		})
		return
	}

	log.WithFields(fields).Info("Scan complete")
	_, _ = o.store.AppendLog(bg, domain.LogSuccess, fmt.Sprintf("Discovery completed: %d hosts found in %s", rec.HostsFound, r.subnet), map[string]any{
		"scanId":     r.id,
		"hostsFound": rec.HostsFound,
		"duration":   rec.Duration,
	})
}

// Cancel stops the running scan with the given id
func (o *Orchestrator) Cancel(id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running == nil || o.running.id != id {
		return domain.NotFound("scanner.Cancel", "no running scan "+id)
	}
	o.running.cancel()
	return nil
}

// Status reports the running scan, if any
func (o *Orchestrator) Status() domain.ScanStatusInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running == nil {
		return domain.ScanStatusInfo{}
	}
	started := o.running.started
	return domain.ScanStatusInfo{
		Running:   true,
		ScanID:    o.running.id,
		Subnet:    o.running.subnet,
		StartedAt: &started,
	}
}

// Wait blocks until no scan goroutine is running
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Shutdown cancels any running scan and waits for it to finish recording.
// Later Start calls fail with Busy.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closed = true
	if o.running != nil {
		o.running.cancel()
	}
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
