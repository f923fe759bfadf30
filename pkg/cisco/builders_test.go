package cisco

import (
	"net/netip"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/dd0wney/topoforge/pkg/ipam"
	"github.com/dd0wney/topoforge/pkg/topology"
)

func hasLine(cmds []string, want string) bool {
	for _, c := range cmds {
		if c == want {
			return true
		}
	}
	return false
}

func lineIndex(cmds []string, want string) int {
	for i, c := range cmds {
		if c == want {
			return i
		}
	}
	return -1
}

// newTestEnv indexes the topology, reserves the backbone /30 at 19.0.0.4/30
// for the named edge, and reserves the first switch-core management /24 the
// way the orchestrator does before builders run.
func newTestEnv(t *testing.T, topo *topology.Topology, backboneEdgeID string) *Env {
	t.Helper()
	logger := zaptest.NewLogger(t)
	idx := topology.BuildIndex(topo, logger)

	base, err := ipam.BaseForOctet(topo.BaseOctet())
	if err != nil {
		t.Fatal(err)
	}
	alloc, err := ipam.NewAllocator(base)
	if err != nil {
		t.Fatal(err)
	}

	edgeIPs := make(map[string]EdgeAddressing)
	if backboneEdgeID != "" {
		block, ok := alloc.AllocateOne(30, true)
		if !ok {
			t.Fatal("backbone allocation failed")
		}
		from, _ := ipam.Host(block, 0)
		to, _ := ipam.Host(block, 1)
		edgeIPs[backboneEdgeID] = EdgeAddressing{
			Network: block,
			FromIP:  from,
			ToIP:    to,
			Netmask: ipam.Netmask(block),
		}
	}
	for i := range idx.SwitchCores {
		if err := alloc.Reserve(ManagementNetwork(topo.BaseOctet(), i+1)); err != nil {
			t.Fatal(err)
		}
	}

	return &Env{
		Index:           idx,
		Catalog:         topo.VLANs,
		Alloc:           alloc,
		EdgeIPs:         edgeIPs,
		NativeVLANID:    topo.NativeVLANID(),
		BaseOctet:       topo.BaseOctet(),
		SpanningTargets: topology.SpanningTreeTargets(idx),
		Logger:          logger,
	}
}

func routerTopology() *topology.Topology {
	return &topology.Topology{
		Nodes: []topology.Node{
			{ID: "r1", Data: topology.NodeData{Type: topology.RoleRouter, Name: "R1"}},
			{ID: "r2", Data: topology.NodeData{Type: topology.RoleRouter, Name: "R2"}},
			{ID: "sw1", Data: topology.NodeData{Type: topology.RoleSwitch, Name: "S1"}},
		},
		Edges: []topology.Edge{
			{
				ID: "bb", From: "r1", To: "r2",
				Data: topology.EdgeData{
					FromInterface: topology.InterfaceRef{Type: "GigabitEthernet", Number: "0/0"},
					ToInterface:   topology.InterfaceRef{Type: "GigabitEthernet", Number: "0/0"},
				},
			},
			{
				ID: "trunk", From: "r1", To: "sw1",
				Data: topology.EdgeData{
					FromInterface: topology.InterfaceRef{Type: "GigabitEthernet", Number: "0/1"},
					ToInterface:   topology.InterfaceRef{Type: "FastEthernet", Number: "0/24"},
				},
			},
		},
		VLANs: []topology.VLAN{
			{Name: "VLAN10", Prefix: 26},
			{Name: "VLAN20", Prefix: 26},
		},
	}
}

func buildDevice(t *testing.T, env *Env, role topology.Role, id topology.NodeID) *DeviceConfig {
	t.Helper()
	b, err := NewBuilder(role, env)
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := b.Build(env.Index.Node(id))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRouterBuilder(t *testing.T) {
	env := newTestEnv(t, routerTopology(), "bb")
	cfg := buildDevice(t, env, topology.RoleRouter, "r1")

	if !hasLine(cfg.Commands, "hostname R1") {
		t.Error("missing hostname")
	}
	if !hasLine(cfg.Commands, "ip domain-name cisco.com") || !hasLine(cfg.Commands, "crypto key generate rsa") {
		t.Error("missing SSH preamble")
	}

	// Backbone interface gets the first usable host of 19.0.0.4/30.
	if !hasLine(cfg.Commands, "int GigabitEthernet0/0") {
		t.Error("missing backbone interface command")
	}
	if !hasLine(cfg.Commands, "ip address 19.0.0.5 255.255.255.252") {
		t.Errorf("missing backbone address, got:\n%s", strings.Join(cfg.Commands, "\n"))
	}
	if len(cfg.Backbone) != 1 || cfg.Backbone[0].NextHop.String() != "19.0.0.6" {
		t.Errorf("backbone attachment = %+v", cfg.Backbone)
	}

	// Sub-interfaces ride the plain-switch trunk. The /30 is reserved, so
	// VLAN blocks start at 19.0.0.64/26.
	if !hasLine(cfg.Commands, "int GigabitEthernet0/1.10") {
		t.Error("missing VLAN10 sub-interface")
	}
	if !hasLine(cfg.Commands, "encapsulation dot1Q 10") {
		t.Error("missing dot1Q encapsulation")
	}
	if !hasLine(cfg.Commands, "ip add 19.0.0.126 255.255.255.192") {
		t.Errorf("VLAN10 gateway should be the last usable host, got:\n%s", strings.Join(cfg.Commands, "\n"))
	}

	// DHCP pools without DNS, first ten hosts excluded.
	if !hasLine(cfg.Commands, "ip dhcp pool vlan10") {
		t.Error("missing DHCP pool vlan10")
	}
	if !hasLine(cfg.Commands, "ip dhcp excluded-address 19.0.0.65 19.0.0.74") {
		t.Error("missing excluded-address guard")
	}
	if hasLine(cfg.Commands, "dns-server 8.8.8.8") {
		t.Error("router pools do not carry DNS")
	}

	if len(cfg.VLANs) != 2 {
		t.Errorf("router should terminate both catalog VLANs, got %d", len(cfg.VLANs))
	}
}

func TestRouterWithoutSwitchTerminatesNoVLANs(t *testing.T) {
	topo := routerTopology()
	topo.Nodes = topo.Nodes[:2] // drop the switch
	topo.Edges = topo.Edges[:1] // and its trunk

	env := newTestEnv(t, topo, "bb")
	cfg := buildDevice(t, env, topology.RoleRouter, "r1")

	if len(cfg.VLANs) != 0 {
		t.Errorf("router with no switch neighbor should own no VLANs, got %+v", cfg.VLANs)
	}
	if hasLine(cfg.Commands, "ip dhcp pool vlan10") {
		t.Error("no VLANs means no pools")
	}
}

func coreTopology() *topology.Topology {
	return &topology.Topology{
		Nodes: []topology.Node{
			{ID: "swc1", Data: topology.NodeData{Type: topology.RoleSwitchCore, Name: "SWC1"}},
			{ID: "sw1", Data: topology.NodeData{
				Type: topology.RoleSwitch, Name: "S1",
				Computers: []topology.Computer{{Name: "pc-a", VLAN: "VLAN20", PortNumber: "FastEthernet0/2"}},
			}},
			{ID: "srv1", Data: topology.NodeData{Type: topology.RoleServer, Name: "SRV1", VLAN: "VLAN10"}},
		},
		Edges: []topology.Edge{
			{
				ID: "uplink", From: "swc1", To: "sw1",
				Data: topology.EdgeData{
					FromInterface: topology.InterfaceRef{Type: "GigabitEthernet", Number: "1/0/1"},
					ToInterface:   topology.InterfaceRef{Type: "FastEthernet", Number: "0/24"},
				},
			},
			{
				ID: "srv", From: "swc1", To: "srv1",
				Data: topology.EdgeData{
					FromInterface: topology.InterfaceRef{Type: "GigabitEthernet", Number: "1/0/10"},
					ToInterface:   topology.InterfaceRef{Type: "GigabitEthernet", Number: "0"},
				},
			},
		},
		VLANs: []topology.VLAN{
			{Name: "VLAN20", Prefix: 26},
			{Name: "VLAN10", Prefix: 26},
		},
	}
}

func TestSwitchCoreBuilder(t *testing.T) {
	env := newTestEnv(t, coreTopology(), "")
	cfg := buildDevice(t, env, topology.RoleSwitchCore, "swc1")

	if !hasLine(cfg.Commands, "ip routing") {
		t.Error("missing ip routing")
	}

	// VLAN declarations sort by name regardless of catalog order.
	i10 := lineIndex(cfg.Commands, "vlan 10")
	i20 := lineIndex(cfg.Commands, "vlan 20")
	if i10 == -1 || i20 == -1 || i10 > i20 {
		t.Errorf("VLAN declarations missing or unsorted: vlan10@%d vlan20@%d", i10, i20)
	}
	if !hasLine(cfg.Commands, " name vlan10") {
		t.Error("missing lowercase vlan name")
	}

	// Trunk toward the attached switch.
	if !hasLine(cfg.Commands, "interface GigabitEthernet1/0/1") {
		t.Error("missing trunk interface")
	}
	if !hasLine(cfg.Commands, " switchport trunk encapsulation dot1Q") {
		t.Error("missing trunk encapsulation")
	}

	// Server access port.
	if !hasLine(cfg.Commands, "interface GigabitEthernet1/0/10") {
		t.Error("missing server access interface")
	}
	if !hasLine(cfg.Commands, " switchport access vlan 10") {
		t.Error("missing access vlan assignment")
	}

	// Management SVI at .254 of the core's /24.
	if !hasLine(cfg.Commands, "ip address 19.0.1.254 255.255.255.0") {
		t.Errorf("missing management SVI address, got:\n%s", strings.Join(cfg.Commands, "\n"))
	}

	// Pools carry DNS and uppercase pool names.
	if !hasLine(cfg.Commands, "ip dhcp pool VLAN10") {
		t.Error("missing DHCP pool VLAN10")
	}
	if !hasLine(cfg.Commands, "dns-server 8.8.8.8") {
		t.Error("switch-core pools carry DNS")
	}

	// Assignments: management VLAN1 first, then hosted SVIs.
	if len(cfg.VLANs) != 3 {
		t.Fatalf("got %d assignments, want 3 (VLAN1 + two hosted)", len(cfg.VLANs))
	}
	if cfg.VLANs[0].Name != "VLAN1" || cfg.VLANs[0].Network.String() != "19.0.1.0/24" {
		t.Errorf("first assignment = %+v, want the management block", cfg.VLANs[0])
	}

	// Hosted VLAN blocks must avoid the reserved management /24.
	for _, v := range cfg.VLANs[1:] {
		if v.Network.Overlaps(ManagementNetwork(19, 1)) {
			t.Errorf("VLAN block %v overlaps the management network", v.Network)
		}
	}
}

func TestSwitchBuilder(t *testing.T) {
	env := newTestEnv(t, coreTopology(), "")
	cfg := buildDevice(t, env, topology.RoleSwitch, "sw1")

	// Management address: .9+ordinal inside the upstream core's /24.
	if !hasLine(cfg.Commands, "ip address 19.0.1.10 255.255.255.0") {
		t.Errorf("missing management address, got:\n%s", strings.Join(cfg.Commands, "\n"))
	}
	if !hasLine(cfg.Commands, "ip default-Gateway 19.0.1.254") {
		t.Error("missing default gateway toward the core SVI")
	}

	// All catalog VLANs declared even though only VLAN20 has a host here.
	if !hasLine(cfg.Commands, "vlan 10") || !hasLine(cfg.Commands, "vlan 20") {
		t.Error("switch should declare every catalog VLAN")
	}

	// Uplink trunks toward the core.
	if !hasLine(cfg.Commands, "int FastEthernet0/24") {
		t.Error("missing uplink interface")
	}
	if !hasLine(cfg.Commands, "switchport mode trunk") {
		t.Error("missing trunk mode")
	}

	// The materialized computer lands on its declared access port.
	if !hasLine(cfg.Commands, "int FastEthernet0/2") {
		t.Error("missing access interface for attached computer")
	}
	if !hasLine(cfg.Commands, "switchport access vlan 20") {
		t.Error("missing access vlan for attached computer")
	}

	// Layer-2 switches own no networks and get no routes or pools.
	if len(cfg.VLANs) != 0 || len(cfg.Routes) != 0 {
		t.Errorf("switch config should carry no assignments or routes, got %d/%d", len(cfg.VLANs), len(cfg.Routes))
	}
	for _, c := range cfg.Commands {
		if strings.HasPrefix(c, "ip dhcp pool") {
			t.Errorf("switch must not emit DHCP pools: %q", c)
		}
	}
}

func TestSwitchCoreConfirmsKeyReplace(t *testing.T) {
	env := newTestEnv(t, coreTopology(), "")
	cfg := buildDevice(t, env, topology.RoleSwitchCore, "swc1")

	rsa := lineIndex(cfg.Commands, "crypto key generate rsa")
	if rsa == -1 || rsa+1 >= len(cfg.Commands) || cfg.Commands[rsa+1] != "yes" {
		t.Error("switch-core should answer the key replacement prompt")
	}
}

func TestNewBuilderUnknownRole(t *testing.T) {
	if _, err := NewBuilder(topology.RoleComputer, &Env{}); err == nil {
		t.Error("computers have no builder")
	}
}

func TestAllocateVLANSkipsUnusable(t *testing.T) {
	env := newTestEnv(t, routerTopology(), "")
	dev := env.Index.Node("r1")

	if _, ok := env.allocateVLAN(dev, topology.VLAN{Name: "Management", Prefix: 26}); ok {
		t.Error("VLAN without digits in the name has no id and must be skipped")
	}
	if _, ok := env.allocateVLAN(dev, topology.VLAN{Name: "VLAN31", Prefix: 31}); ok {
		t.Error("/31 cannot host DHCP and must be skipped")
	}
	if _, ok := env.allocateVLAN(dev, topology.VLAN{Name: "VLAN32", Prefix: 32}); ok {
		t.Error("/32 cannot host DHCP and must be skipped")
	}

	assign, ok := env.allocateVLAN(dev, topology.VLAN{Name: "VLAN10", Prefix: 26})
	if !ok {
		t.Fatal("a /26 should allocate")
	}
	if assign.Gateway != ipam.LastHost(assign.Network) {
		t.Error("gateway should be the last usable host")
	}
}

func TestBackboneForFallsBackToBidirectional(t *testing.T) {
	env := newTestEnv(t, routerTopology(), "bb")
	dev := env.Index.Node("r1")

	var edge *topology.Edge
	for _, e := range env.Index.EdgesOf(dev.ID) {
		if e.ID == "bb" {
			edge = e
		}
	}
	bb, ok := env.backboneFor(dev, edge)
	if !ok {
		t.Fatal("backboneFor should resolve the addressed edge")
	}
	if bb.Direction != topology.DirectionBidirectional {
		t.Errorf("empty direction should default to bidirectional, got %q", bb.Direction)
	}
	if !bb.IsFrom || bb.Target != "R2" {
		t.Errorf("attachment = %+v", bb)
	}

	var trunk *topology.Edge
	for _, e := range env.Index.EdgesOf(dev.ID) {
		if e.ID == "trunk" {
			trunk = e
		}
	}
	if _, ok := env.backboneFor(dev, trunk); ok {
		t.Error("unaddressed edges carry no backbone attachment")
	}
}

func TestManagementNetwork(t *testing.T) {
	net := ManagementNetwork(19, 2)
	if net.String() != "19.0.2.0/24" {
		t.Errorf("ManagementNetwork = %v, want 19.0.2.0/24", net)
	}
	gw := ManagementGateway(19, 2)
	if gw != netip.AddrFrom4([4]byte{19, 0, 2, 254}) {
		t.Errorf("ManagementGateway = %v, want 19.0.2.254", gw)
	}
}
