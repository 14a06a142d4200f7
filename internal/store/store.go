// Package store holds the in-memory discovery state: hosts, scan records,
// metrics and the activity log.
//
// The store is an actor. Run starts a single owner goroutine and every
// operation is a closure executed on it, so reads always see a consistent
// state and events leave the store in the order mutations happened.
package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"sentinel/internal/domain"
	"sentinel/internal/events"
	"sentinel/internal/logring"
	"sentinel/internal/topology"
)

// ErrStopped is returned for operations issued after Run has returned
var ErrStopped = errors.New("store stopped")

// DefaultReplay is how many recent log entries a new subscriber receives
const DefaultReplay = 50

// Publisher receives every event emitted by the store
type Publisher interface {
	Publish(events.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

// Options configures a Store
type Options struct {
	// Seed fixes the topology overlay; 0 picks one from the clock
	Seed            int64
	LogCapacity     int
	LogReplay       int
	Gateway         topology.GatewaySelector
	MeshCandidates  int
	MeshProbability float64
	Publisher       Publisher
	Clock           func() time.Time
}

// Store is the discovery store
type Store struct {
	ops     chan func(*state)
	stopped chan struct{}

	seed   uint64
	replay int
	topo   topology.Options
	pub    Publisher
	now    func() time.Time

	st *state
}

type state struct {
	hosts     map[string]*domain.Host
	order     []string
	scans     map[string]*domain.ScanRecord
	scanOrder []string
	metrics   domain.Metrics
	logs      *logring.Ring
}

// New creates a store. Nothing is served until Run is called.
func New(opts Options) *Store {
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	if opts.LogReplay <= 0 {
		opts.LogReplay = DefaultReplay
	}
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &Store{
		ops:     make(chan func(*state)),
		stopped: make(chan struct{}),
		seed:    uint64(opts.Seed),
		replay:  opts.LogReplay,
		topo: topology.Options{
			Gateway:         opts.Gateway,
			MeshCandidates:  opts.MeshCandidates,
			MeshProbability: opts.MeshProbability,
		},
		pub: opts.Publisher,
		now: opts.Clock,
		st: &state{
			hosts: make(map[string]*domain.Host),
			scans: make(map[string]*domain.ScanRecord),
			logs:  logring.New(opts.LogCapacity),
		},
	}
}

// Run serves operations until ctx is cancelled
func (s *Store) Run(ctx context.Context) {
	defer close(s.stopped)
	for {
		select {
		case op := <-s.ops:
			op(s.st)
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed once Run has returned
func (s *Store) Done() <-chan struct{} {
	return s.stopped
}

// do runs fn on the owner goroutine and waits for it to finish
func (s *Store) do(ctx context.Context, fn func(*state)) error {
	done := make(chan struct{})
	op := func(st *state) {
		defer close(done)
		fn(st)
	}

	select {
	case s.ops <- op:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Accepted ops always run to completion
	<-done
	return nil
}

func (s *Store) emit(t events.Type, data any) {
	s.pub.Publish(events.Event{Type: t, Data: data, Timestamp: s.now().UTC()})
}

func (st *state) touch(now time.Time) {
	st.metrics.LastUpdate = now.UTC()
}

func (st *state) orderedHosts() []domain.Host {
	hosts := make([]domain.Host, 0, len(st.order))
	for _, ip := range st.order {
		hosts = append(hosts, st.hosts[ip].Clone())
	}
	return hosts
}

func (s *Store) deriveTopology(st *state) domain.Topology {
	hosts := st.orderedHosts()
	opts := s.topo
	opts.Rand = rand.New(rand.NewPCG(s.seed, uint64(len(hosts))))
	return topology.Derive(hosts, opts)
}

// UpsertHost inserts or replaces the host at its IP. A replaced host keeps
// its original position in insertion order.
func (s *Store) UpsertHost(ctx context.Context, host domain.Host) error {
	const op = "store.UpsertHost"
	if !host.Addr().IsValid() {
		return domain.Validation(op, "host ip is not a valid address")
	}
	if host.ID == "" {
		host.ID = uuid.NewString()
	}

	return s.do(ctx, func(st *state) {
		h := host.Clone()
		if _, exists := st.hosts[h.IP]; !exists {
			st.order = append(st.order, h.IP)
		}
		st.hosts[h.IP] = &h
		st.metrics.HostsDiscovered++
		st.metrics.VulnerabilitiesFound += int64(len(h.Vulnerabilities))
		st.touch(s.now())
		s.emit(events.TypeHostDiscovered, h.Clone())
	})
}

// RecordScan stores a finished scan. Only completed scans count towards
// totalScans, but every record is announced.
func (s *Store) RecordScan(ctx context.Context, rec domain.ScanRecord) error {
	const op = "store.RecordScan"
	if rec.ID == "" {
		return domain.Validation(op, "scan id is required")
	}

	var err error
	doErr := s.do(ctx, func(st *state) {
		if _, exists := st.scans[rec.ID]; exists {
			err = domain.Conflict(op, "scan "+rec.ID+" already recorded")
			return
		}
		r := cloneScan(rec)
		st.scans[r.ID] = &r
		st.scanOrder = append(st.scanOrder, r.ID)
		if r.Status == domain.ScanCompleted {
			st.metrics.TotalScans++
		}
		st.touch(s.now())
		s.emit(events.TypeScanComplete, cloneScan(r))
	})
	if doErr != nil {
		return doErr
	}
	return err
}

// RemediationResult is returned from ApplyRemediation and carried by the
// remediation_applied event
type RemediationResult struct {
	HostIP        string               `json:"hostIp"`
	Vulnerability domain.Vulnerability `json:"vulnerability"`
	Action        string               `json:"action"`
	RiskLevel     domain.Severity      `json:"riskLevel"`
}

// ApplyRemediation marks one vulnerability on one host as remediated.
// A vulnerability can only be remediated once.
func (s *Store) ApplyRemediation(ctx context.Context, ip, vulnID, action string) (RemediationResult, error) {
	const op = "store.ApplyRemediation"
	var (
		res RemediationResult
		err error
	)

	doErr := s.do(ctx, func(st *state) {
		h, ok := st.hosts[ip]
		if !ok {
			err = domain.NotFound(op, "host "+ip+" not found")
			return
		}
		idx := h.FindVulnerability(vulnID)
		if idx < 0 {
			err = domain.NotFound(op, "vulnerability "+vulnID+" not found on host "+ip)
			return
		}

		now := s.now().UTC()
		if err = h.Vulnerabilities[idx].Remediate(action, now); err != nil {
			return
		}
		h.RiskLevel = h.OpenRiskLevel()
		st.metrics.RemediationsApplied++
		st.touch(now)

		res = RemediationResult{
			HostIP:        ip,
			Vulnerability: h.Vulnerabilities[idx].Clone(),
			Action:        action,
			RiskLevel:     h.RiskLevel,
		}
		s.emit(events.TypeRemediationApplied, res)
	})
	if doErr != nil {
		return RemediationResult{}, doErr
	}
	return res, err
}

// SnapshotTopology derives the topology over every host in the store
func (s *Store) SnapshotTopology(ctx context.Context) (domain.Topology, error) {
	var topo domain.Topology
	err := s.do(ctx, func(st *state) {
		topo = s.deriveTopology(st)
	})
	return topo, err
}

// VulnerabilityFilter narrows AllVulnerabilities. Zero values match all.
type VulnerabilityFilter struct {
	Severity domain.Severity
	Status   domain.VulnStatus
}

// AllVulnerabilities flattens every host's vulnerabilities in host order
func (s *Store) AllVulnerabilities(ctx context.Context, f VulnerabilityFilter) ([]domain.HostVulnerability, error) {
	out := make([]domain.HostVulnerability, 0)
	err := s.do(ctx, func(st *state) {
		for _, ip := range st.order {
			h := st.hosts[ip]
			for _, v := range h.Vulnerabilities {
				if f.Severity != "" && v.Severity != f.Severity {
					continue
				}
				if f.Status != "" && v.Status != f.Status {
					continue
				}
				out = append(out, domain.HostVulnerability{
					Vulnerability: v.Clone(),
					HostIP:        h.IP,
					Hostname:      h.Hostname,
				})
			}
		}
	})
	return out, err
}

// Host returns the host at ip
func (s *Store) Host(ctx context.Context, ip string) (domain.Host, error) {
	var (
		host  domain.Host
		found bool
	)
	err := s.do(ctx, func(st *state) {
		if h, ok := st.hosts[ip]; ok {
			host, found = h.Clone(), true
		}
	})
	if err != nil {
		return domain.Host{}, err
	}
	if !found {
		return domain.Host{}, domain.NotFound("store.Host", "host "+ip+" not found")
	}
	return host, nil
}

// Hosts returns every host in insertion order
func (s *Store) Hosts(ctx context.Context) ([]domain.Host, error) {
	var hosts []domain.Host
	err := s.do(ctx, func(st *state) {
		hosts = st.orderedHosts()
	})
	return hosts, err
}

// Scan returns one scan record
func (s *Store) Scan(ctx context.Context, id string) (domain.ScanRecord, error) {
	var (
		rec   domain.ScanRecord
		found bool
	)
	err := s.do(ctx, func(st *state) {
		if r, ok := st.scans[id]; ok {
			rec, found = cloneScan(*r), true
		}
	})
	if err != nil {
		return domain.ScanRecord{}, err
	}
	if !found {
		return domain.ScanRecord{}, domain.NotFound("store.Scan", "scan "+id+" not found")
	}
	return rec, nil
}

// Scans returns every scan record, oldest first
func (s *Store) Scans(ctx context.Context) ([]domain.ScanRecord, error) {
	var recs []domain.ScanRecord
	err := s.do(ctx, func(st *state) {
		recs = make([]domain.ScanRecord, 0, len(st.scanOrder))
		for _, id := range st.scanOrder {
			recs = append(recs, cloneScan(*st.scans[id]))
		}
	})
	return recs, err
}

// Metrics returns the current counters
func (s *Store) Metrics(ctx context.Context) (domain.Metrics, error) {
	var m domain.Metrics
	err := s.do(ctx, func(st *state) {
		m = st.metrics
	})
	return m, err
}

// AppendLog adds an entry to the activity log and announces it
func (s *Store) AppendLog(ctx context.Context, level domain.LogLevel, message string, details map[string]any) (domain.LogEntry, error) {
	entry := domain.LogEntry{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		Details: details,
	}
	err := s.do(ctx, func(st *state) {
		entry.Timestamp = s.now().UTC()
		st.logs.Append(entry)
		s.emit(events.TypeLog, entry)
	})
	return entry, err
}

// Logs queries the activity log
func (s *Store) Logs(ctx context.Context, f logring.Filter) ([]domain.LogEntry, error) {
	var entries []domain.LogEntry
	err := s.do(ctx, func(st *state) {
		entries = st.logs.Query(f)
	})
	return entries, err
}

// RecordPolicy counts a newly created policy and announces it
func (s *Store) RecordPolicy(ctx context.Context, p domain.Policy) error {
	return s.do(ctx, func(st *state) {
		st.metrics.PoliciesEnforced++
		st.touch(s.now())
		s.emit(events.TypePolicyCreated, p)
	})
}

// Announce emits an event that does not change stored state, such as a
// scan starting, in order with the store's own events
func (s *Store) Announce(ctx context.Context, t events.Type, data any) error {
	return s.do(ctx, func(*state) {
		s.emit(t, data)
	})
}

// Snapshot is the state handed to a new live subscriber
type Snapshot struct {
	Topology domain.Topology   `json:"topology"`
	Metrics  domain.Metrics    `json:"metrics"`
	Logs     []domain.LogEntry `json:"logs"`
}

// Subscribe calls fn with the current snapshot on the owner goroutine.
// Events emitted after fn returns are guaranteed to postdate the snapshot,
// so a subscriber attached inside fn sees no gap and no duplicates.
func (s *Store) Subscribe(ctx context.Context, fn func(Snapshot)) error {
	return s.do(ctx, func(st *state) {
		fn(Snapshot{
			Topology: s.deriveTopology(st),
			Metrics:  st.metrics,
			Logs:     st.logs.Recent(s.replay),
		})
	})
}

// Export returns hosts and scans for the export endpoints
func (s *Store) Export(ctx context.Context) (domain.Inventory, error) {
	var inv domain.Inventory
	err := s.do(ctx, func(st *state) {
		inv.Hosts = st.orderedHosts()
		inv.Scans = make([]domain.ScanRecord, 0, len(st.scanOrder))
		for _, id := range st.scanOrder {
			inv.Scans = append(inv.Scans, cloneScan(*st.scans[id]))
		}
		inv.Metrics = st.metrics
	})
	return inv, err
}

func cloneScan(r domain.ScanRecord) domain.ScanRecord {
	out := r
	out.Hosts = make([]domain.Host, len(r.Hosts))
	for i := range r.Hosts {
		out.Hosts[i] = r.Hosts[i].Clone()
	}
	out.Topology.Nodes = make([]domain.Host, len(r.Topology.Nodes))
	for i := range r.Topology.Nodes {
		out.Topology.Nodes[i] = r.Topology.Nodes[i].Clone()
	}
	out.Topology.Edges = append([]domain.Edge(nil), r.Topology.Edges...)
	return out
}
