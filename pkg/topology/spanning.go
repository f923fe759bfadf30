package topology

import (
	"gonum.org/v1/gonum/graph/simple"
)

// SpanningTreeTargets returns the switches and switch-cores that should pin
// their spanning-tree priority. A device qualifies when it has a router
// neighbor and at least two switch-like neighbors that are themselves
// adjacent: the resulting triangle would otherwise let the spanning tree
// elect an arbitrary root and black-hole the router-facing uplink.
func SpanningTreeTargets(idx *Index) map[NodeID]bool {
	g := simple.NewUndirectedGraph()

	gid := make(map[NodeID]int64, len(idx.NodeByID))
	byGID := make(map[int64]NodeID, len(idx.NodeByID))
	next := int64(1)
	ensure := func(id NodeID) int64 {
		if n, ok := gid[id]; ok {
			return n
		}
		n := next
		next++
		gid[id] = n
		byGID[n] = id
		g.AddNode(simple.Node(n))
		return n
	}

	for _, e := range idx.Edges {
		f, t := ensure(e.From), ensure(e.To)
		if f == t {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(f), T: simple.Node(t)})
	}

	targets := make(map[NodeID]bool)
	for id, node := range idx.NodeByID {
		if !node.Role().IsSwitchLike() {
			continue
		}
		self, ok := gid[id]
		if !ok {
			continue
		}

		var hasRouter bool
		var switchNbrs []int64
		nbrs := g.From(self)
		for nbrs.Next() {
			nbrGID := nbrs.Node().ID()
			switch idx.NodeByID[byGID[nbrGID]].Role() {
			case RoleRouter:
				hasRouter = true
			case RoleSwitch, RoleSwitchCore:
				switchNbrs = append(switchNbrs, nbrGID)
			}
		}
		if !hasRouter || len(switchNbrs) < 2 {
			continue
		}

	pairs:
		for i := 0; i < len(switchNbrs); i++ {
			for j := i + 1; j < len(switchNbrs); j++ {
				if g.HasEdgeBetween(switchNbrs[i], switchNbrs[j]) {
					targets[id] = true
					break pairs
				}
			}
		}
	}

	return targets
}
