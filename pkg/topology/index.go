package topology

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// Index provides O(1) lookups over a topology plus the device buckets the
// compiler processes in order. Attached computers declared inline on
// switches and switch-cores are materialized as computer nodes with
// synthetic access edges, so every consumer sees one uniform graph.
type Index struct {
	NodeByID    map[NodeID]*Node
	VLANByName  map[string]*VLAN
	EdgesByNode map[NodeID][]*Edge

	// Device buckets in input order.
	Routers     []*Node
	Switches    []*Node
	SwitchCores []*Node
	Servers     []*Node
	Computers   []*Node

	// Edges whose endpoints both resolve, in input order, including
	// synthetic access edges for materialized computers.
	Edges []*Edge
}

var portPattern = regexp.MustCompile(`^([A-Za-z]+)(.+)$`)

// splitPort separates "FastEthernet0/1" into type and number, falling back
// to FastEthernet0/1 when the string does not parse.
func splitPort(port string) InterfaceRef {
	if m := portPattern.FindStringSubmatch(port); m != nil {
		return InterfaceRef{Type: m[1], Number: m[2]}
	}
	return InterfaceRef{Type: "FastEthernet", Number: "0/1"}
}

// BuildIndex constructs the lookup maps in one linear pass each. Edges that
// reference a missing node id are dropped with a warning rather than
// aborting the run; everything else about the input is taken as validated.
func BuildIndex(t *Topology, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := &Index{
		NodeByID:    make(map[NodeID]*Node, len(t.Nodes)),
		VLANByName:  make(map[string]*VLAN, len(t.VLANs)),
		EdgesByNode: make(map[NodeID][]*Edge),
	}

	nodes := make([]*Node, 0, len(t.Nodes))
	for i := range t.Nodes {
		n := &t.Nodes[i]
		nodes = append(nodes, n)
		idx.NodeByID[n.ID] = n
	}
	for i := range t.VLANs {
		v := &t.VLANs[i]
		idx.VLANByName[v.Name] = v
	}

	edges := make([]*Edge, 0, len(t.Edges))
	for i := range t.Edges {
		edges = append(edges, &t.Edges[i])
	}

	// Materialize inline computers. Switches first, then switch-cores, so
	// the global PC numbering matches the device processing order.
	pcCounter := 1
	materialize := func(parent *Node) {
		for _, pc := range parent.Data.Computers {
			name := fmt.Sprintf("PC%d", pcCounter)
			pcCounter++

			pcNode := &Node{
				ID: NodeID(fmt.Sprintf("%s_pc_%s", parent.ID, pc.Name)),
				Data: NodeData{
					Type: RoleComputer,
					Name: name,
					VLAN: pc.VLAN,
					Port: pc.PortNumber,
				},
			}
			nodes = append(nodes, pcNode)
			idx.NodeByID[pcNode.ID] = pcNode

			edges = append(edges, &Edge{
				ID:   fmt.Sprintf("edge_%s_to_%s", parent.ID, pcNode.ID),
				From: parent.ID,
				To:   pcNode.ID,
				Data: EdgeData{
					FromInterface: splitPort(pc.PortNumber),
					ToInterface:   InterfaceRef{Type: "FastEthernet", Number: "0"},
				},
			})
		}
	}
	for _, n := range nodes[:len(t.Nodes)] {
		if n.Role() == RoleSwitch {
			materialize(n)
		}
	}
	for _, n := range nodes[:len(t.Nodes)] {
		if n.Role() == RoleSwitchCore {
			materialize(n)
		}
	}

	for _, n := range nodes {
		switch n.Role() {
		case RoleRouter:
			idx.Routers = append(idx.Routers, n)
		case RoleSwitch:
			idx.Switches = append(idx.Switches, n)
		case RoleSwitchCore:
			idx.SwitchCores = append(idx.SwitchCores, n)
		case RoleServer:
			idx.Servers = append(idx.Servers, n)
		case RoleComputer:
			idx.Computers = append(idx.Computers, n)
		}
	}

	for _, e := range edges {
		_, fromOK := idx.NodeByID[e.From]
		_, toOK := idx.NodeByID[e.To]
		if !fromOK || !toOK {
			logger.Warn("dropping edge with unresolved endpoint",
				zap.String("edge", e.ID),
				zap.String("from", string(e.From)),
				zap.String("to", string(e.To)))
			continue
		}
		idx.Edges = append(idx.Edges, e)
		idx.EdgesByNode[e.From] = append(idx.EdgesByNode[e.From], e)
		if e.To != e.From {
			idx.EdgesByNode[e.To] = append(idx.EdgesByNode[e.To], e)
		}
	}

	return idx
}

// Node returns the node with the given id, or nil.
func (idx *Index) Node(id NodeID) *Node { return idx.NodeByID[id] }

// EdgesOf returns the edges touching the given node, in input order.
func (idx *Index) EdgesOf(id NodeID) []*Edge { return idx.EdgesByNode[id] }

// BackboneEdges returns the edges whose endpoints are both layer-3 devices,
// in input order. These are the links that receive point-to-point blocks.
func (idx *Index) BackboneEdges() []*Edge {
	var out []*Edge
	for _, e := range idx.Edges {
		from, to := idx.NodeByID[e.From], idx.NodeByID[e.To]
		if from.Role().IsLayer3() && to.Role().IsLayer3() {
			out = append(out, e)
		}
	}
	return out
}

// SwitchCoreOrdinal returns the 1-based position of the switch-core among
// all switch-cores, used for management VLAN addressing. Zero means the node
// is not a switch-core.
func (idx *Index) SwitchCoreOrdinal(id NodeID) int {
	for i, swc := range idx.SwitchCores {
		if swc.ID == id {
			return i + 1
		}
	}
	return 0
}

// SwitchOrdinal returns the 1-based position of the switch among all
// layer-2 switches. Zero means the node is not a switch.
func (idx *Index) SwitchOrdinal(id NodeID) int {
	for i, sw := range idx.Switches {
		if sw.ID == id {
			return i + 1
		}
	}
	return 0
}
