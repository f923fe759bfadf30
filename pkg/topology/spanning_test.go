package topology

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestSpanningTreeTargetsTriangle(t *testing.T) {
	// R1 uplinks into SW1; SW1, SW2, SW3 form a triangle. SW1 must pin its
	// priority or the tree may root away from the router-facing uplink.
	topo := &Topology{
		Nodes: []Node{
			{ID: "r1", Data: NodeData{Type: RoleRouter, Name: "R1"}},
			{ID: "sw1", Data: NodeData{Type: RoleSwitch, Name: "S1"}},
			{ID: "sw2", Data: NodeData{Type: RoleSwitch, Name: "S2"}},
			{ID: "sw3", Data: NodeData{Type: RoleSwitch, Name: "S3"}},
		},
		Edges: []Edge{
			edgeBetween("r1", "sw1"),
			edgeBetween("sw1", "sw2"),
			edgeBetween("sw1", "sw3"),
			edgeBetween("sw2", "sw3"),
		},
	}

	targets := SpanningTreeTargets(BuildIndex(topo, zaptest.NewLogger(t)))

	if !targets["sw1"] {
		t.Error("sw1 closes a switch triangle below a router and should be a target")
	}
	if targets["sw2"] || targets["sw3"] {
		t.Error("switches without a router neighbor should not be targets")
	}
}

func TestSpanningTreeTargetsNoTriangle(t *testing.T) {
	// A chain has no triangle, so nothing qualifies.
	topo := &Topology{
		Nodes: []Node{
			{ID: "r1", Data: NodeData{Type: RoleRouter, Name: "R1"}},
			{ID: "sw1", Data: NodeData{Type: RoleSwitch, Name: "S1"}},
			{ID: "sw2", Data: NodeData{Type: RoleSwitch, Name: "S2"}},
			{ID: "sw3", Data: NodeData{Type: RoleSwitch, Name: "S3"}},
		},
		Edges: []Edge{
			edgeBetween("r1", "sw1"),
			edgeBetween("sw1", "sw2"),
			edgeBetween("sw2", "sw3"),
		},
	}

	targets := SpanningTreeTargets(BuildIndex(topo, zaptest.NewLogger(t)))
	if len(targets) != 0 {
		t.Errorf("chain topology should have no targets, got %v", targets)
	}
}

func TestSpanningTreeTargetsSwitchCore(t *testing.T) {
	// Switch-cores qualify the same way plain switches do.
	topo := &Topology{
		Nodes: []Node{
			{ID: "r1", Data: NodeData{Type: RoleRouter, Name: "R1"}},
			{ID: "swc1", Data: NodeData{Type: RoleSwitchCore, Name: "SWC1"}},
			{ID: "sw1", Data: NodeData{Type: RoleSwitch, Name: "S1"}},
			{ID: "sw2", Data: NodeData{Type: RoleSwitch, Name: "S2"}},
		},
		Edges: []Edge{
			edgeBetween("r1", "swc1"),
			edgeBetween("swc1", "sw1"),
			edgeBetween("swc1", "sw2"),
			edgeBetween("sw1", "sw2"),
		},
	}

	targets := SpanningTreeTargets(BuildIndex(topo, zaptest.NewLogger(t)))
	if !targets["swc1"] {
		t.Error("switch-core closing a triangle below a router should be a target")
	}
}
