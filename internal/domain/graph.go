package domain

// Topology is the derived node/edge view over a set of hosts
type Topology struct {
	Nodes   []Host `json:"nodes" yaml:"nodes"`
	Edges   []Edge `json:"edges" yaml:"edges"`
	Gateway string `json:"gateway,omitempty" yaml:"gateway,omitempty"`
}

// NodeIDs returns the set of node ids in the topology
func (t *Topology) NodeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(t.Nodes))
	for _, n := range t.Nodes {
		ids[n.ID] = struct{}{}
	}
	return ids
}

// EdgesOfType counts edges with the given type
func (t *Topology) EdgesOfType(edgeType EdgeType) int {
	count := 0
	for _, e := range t.Edges {
		if e.Type == edgeType {
			count++
		}
	}
	return count
}
