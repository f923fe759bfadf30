package topology

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func edgeBetween(from, to NodeID) Edge {
	return Edge{
		ID:   "edge_" + string(from) + "_" + string(to),
		From: from,
		To:   to,
		Data: EdgeData{
			FromInterface: InterfaceRef{Type: "GigabitEthernet", Number: "0/0"},
			ToInterface:   InterfaceRef{Type: "GigabitEthernet", Number: "0/1"},
		},
	}
}

func TestBuildIndexBuckets(t *testing.T) {
	topo := &Topology{
		Nodes: []Node{
			{ID: "swc1", Data: NodeData{Type: RoleSwitchCore, Name: "SWC1"}},
			{ID: "r1", Data: NodeData{Type: RoleRouter, Name: "R1"}},
			{ID: "sw1", Data: NodeData{Type: RoleSwitch, Name: "S1"}},
			{ID: "srv1", Data: NodeData{Type: RoleServer, Name: "SRV1", VLAN: "VLAN10"}},
		},
		Edges: []Edge{
			edgeBetween("r1", "swc1"),
			edgeBetween("swc1", "sw1"),
		},
	}

	idx := BuildIndex(topo, zaptest.NewLogger(t))

	if len(idx.Routers) != 1 || idx.Routers[0].Name() != "R1" {
		t.Error("router bucket wrong")
	}
	if len(idx.SwitchCores) != 1 || len(idx.Switches) != 1 || len(idx.Servers) != 1 {
		t.Error("role buckets wrong")
	}
	if idx.SwitchCoreOrdinal("swc1") != 1 {
		t.Errorf("SwitchCoreOrdinal = %d, want 1", idx.SwitchCoreOrdinal("swc1"))
	}
	if idx.SwitchOrdinal("sw1") != 1 {
		t.Errorf("SwitchOrdinal = %d, want 1", idx.SwitchOrdinal("sw1"))
	}
	if idx.SwitchOrdinal("r1") != 0 {
		t.Error("SwitchOrdinal of a non-switch should be 0")
	}

	bb := idx.BackboneEdges()
	if len(bb) != 1 || bb[0].From != "r1" {
		t.Errorf("BackboneEdges = %v, want the router/core link only", bb)
	}
}

func TestBuildIndexMaterializesComputers(t *testing.T) {
	topo := &Topology{
		Nodes: []Node{
			{ID: "swc1", Data: NodeData{
				Type: RoleSwitchCore, Name: "SWC1",
				Computers: []Computer{{Name: "core-pc", VLAN: "VLAN20", PortNumber: "GigabitEthernet1/0/5"}},
			}},
			{ID: "sw1", Data: NodeData{
				Type: RoleSwitch, Name: "S1",
				Computers: []Computer{
					{Name: "a", VLAN: "VLAN10", PortNumber: "FastEthernet0/2"},
					{Name: "b", VLAN: "VLAN10", PortNumber: "FastEthernet0/3"},
				},
			}},
		},
		VLANs: []VLAN{{Name: "VLAN10", Prefix: 26}, {Name: "VLAN20", Prefix: 26}},
	}

	idx := BuildIndex(topo, zaptest.NewLogger(t))

	if len(idx.Computers) != 3 {
		t.Fatalf("materialized %d computers, want 3", len(idx.Computers))
	}
	// Switch-attached computers number first, then switch-core ones.
	wantNames := []string{"PC1", "PC2", "PC3"}
	for i, want := range wantNames {
		if idx.Computers[i].Name() != want {
			t.Errorf("Computers[%d] = %s, want %s", i, idx.Computers[i].Name(), want)
		}
	}
	if idx.Computers[2].Data.VLAN != "VLAN20" {
		t.Error("the switch-core computer should number last")
	}

	// Each computer gets a synthetic access edge with the declared port.
	edges := idx.EdgesOf("sw1")
	if len(edges) != 2 {
		t.Fatalf("switch has %d edges, want 2", len(edges))
	}
	if got := edges[0].InterfaceFor("sw1").FullName(); got != "FastEthernet0/2" {
		t.Errorf("access port = %s, want FastEthernet0/2", got)
	}
}

func TestBuildIndexDropsUnresolvedEdges(t *testing.T) {
	topo := &Topology{
		Nodes: []Node{
			{ID: "r1", Data: NodeData{Type: RoleRouter, Name: "R1"}},
		},
		Edges: []Edge{
			edgeBetween("r1", "missing"),
		},
	}

	idx := BuildIndex(topo, zaptest.NewLogger(t))
	if len(idx.Edges) != 0 {
		t.Errorf("unresolved edge should be dropped, got %d edges", len(idx.Edges))
	}
	if len(idx.EdgesOf("r1")) != 0 {
		t.Error("dropped edge should not appear in EdgesOf")
	}
}

func TestSplitPort(t *testing.T) {
	tests := []struct {
		in       string
		wantType string
		wantNum  string
	}{
		{"FastEthernet0/1", "FastEthernet", "0/1"},
		{"GigabitEthernet1/0/24", "GigabitEthernet", "1/0/24"},
		{"", "FastEthernet", "0/1"},
		{"0/5", "FastEthernet", "0/1"},
	}
	for _, tt := range tests {
		got := splitPort(tt.in)
		if got.Type != tt.wantType || got.Number != tt.wantNum {
			t.Errorf("splitPort(%q) = %+v, want {%s %s}", tt.in, got, tt.wantType, tt.wantNum)
		}
	}
}
