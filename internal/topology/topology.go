// Package topology derives the node/edge graph shown on the dashboard from
// a set of discovered hosts.
//
// The graph is a star rooted at a gateway host plus a sparse random mesh of
// communication edges. The gateway rule is a pluggable GatewaySelector.
package topology

import (
	"fmt"
	"math/rand/v2"

	"sentinel/internal/domain"
)

const (
	DefaultMeshCandidates  = 10
	DefaultMeshProbability = 0.3
)

// GatewaySelector picks which host acts as the gateway.
// It returns an index into hosts, or -1 for an empty slice.
type GatewaySelector interface {
	Name() string
	Select(hosts []domain.Host) int
}

// FirstDiscovered treats the earliest inserted host as the gateway
type FirstDiscovered struct{}

func (FirstDiscovered) Name() string { return "first_discovered" }

func (FirstDiscovered) Select(hosts []domain.Host) int {
	if len(hosts) == 0 {
		return -1
	}
	return 0
}

// LowestIP treats the host with the numerically lowest address as the
// gateway, which matches the usual .1 router convention
type LowestIP struct{}

func (LowestIP) Name() string { return "lowest_ip" }

func (LowestIP) Select(hosts []domain.Host) int {
	best := -1
	for i := range hosts {
		addr := hosts[i].Addr()
		if !addr.IsValid() {
			continue
		}
		if best == -1 || addr.Less(hosts[best].Addr()) {
			best = i
		}
	}
	if best == -1 && len(hosts) > 0 {
		return 0
	}
	return best
}

// SelectorByName resolves a configured gateway strategy
func SelectorByName(name string) (GatewaySelector, error) {
	switch name {
	case "", "first_discovered":
		return FirstDiscovered{}, nil
	case "lowest_ip":
		return LowestIP{}, nil
	default:
		return nil, fmt.Errorf("unknown gateway strategy %q", name)
	}
}

// Options controls derivation
type Options struct {
	Gateway         GatewaySelector
	MeshCandidates  int
	MeshProbability float64
	// Rand drives the mesh overlay; a fixed seed gives a fixed topology
	Rand *rand.Rand
}

func (o *Options) withDefaults() {
	if o.Gateway == nil {
		o.Gateway = FirstDiscovered{}
	}
	if o.MeshCandidates <= 0 {
		o.MeshCandidates = DefaultMeshCandidates
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(1, 2))
	}
}

// Derive builds the topology for hosts, which must be in insertion order
func Derive(hosts []domain.Host, opts Options) domain.Topology {
	opts.withDefaults()

	topo := domain.Topology{
		Nodes: make([]domain.Host, len(hosts)),
		Edges: []domain.Edge{},
	}
	for i := range hosts {
		topo.Nodes[i] = hosts[i].Clone()
	}

	gw := opts.Gateway.Select(hosts)
	if gw < 0 {
		return topo
	}
	gateway := hosts[gw]
	topo.Gateway = gateway.ID

	others := make([]domain.Host, 0, len(hosts)-1)
	for i := range hosts {
		if i != gw {
			others = append(others, hosts[i])
		}
	}

	// Star: gateway to every other host
	for _, h := range others {
		topo.Edges = append(topo.Edges, domain.NewEdge(gateway.ID, h.ID, domain.EdgeTypeNetwork))
	}

	// Mesh overlay among non-gateway hosts
	limit := min(len(others), opts.MeshCandidates)
	for i := 0; i < limit; i++ {
		if opts.Rand.Float64() >= opts.MeshProbability {
			continue
		}
		if len(others) < 2 {
			continue
		}
		j := opts.Rand.IntN(len(others) - 1)
		if j >= i {
			j++
		}
		topo.Edges = append(topo.Edges, domain.NewEdge(others[i].ID, others[j].ID, domain.EdgeTypeCommunication))
	}

	return topo
}
