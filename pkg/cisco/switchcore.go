package cisco

import (
	"fmt"
	"net/netip"
	"sort"
	"strings"

	"github.com/dd0wney/topoforge/pkg/ipam"
	"github.com/dd0wney/topoforge/pkg/topology"
)

// switchCoreBuilder emits layer-3 switch configs: ip routing, VLAN
// declarations, backbone ports converted with "no switchport", trunks to
// downstream switches and WLCs, access ports, the management VLAN 1 SVI,
// one SVI per VLAN that actually has hosts, and DHCP pools.
type switchCoreBuilder struct {
	env *Env
}

func (b *switchCoreBuilder) Role() topology.Role { return topology.RoleSwitchCore }

// ManagementNetwork returns the /24 management block owned by the k-th
// switch-core (1-based): <octet>.0.<k>.0/24 with the SVI at .254.
func ManagementNetwork(baseOctet, ordinal int) netip.Prefix {
	return netip.PrefixFrom(netip.AddrFrom4([4]byte{byte(baseOctet), 0, byte(ordinal), 0}), 24)
}

// ManagementGateway returns the management SVI address of the k-th
// switch-core.
func ManagementGateway(baseOctet, ordinal int) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(baseOctet), 0, byte(ordinal), 254})
}

func (b *switchCoreBuilder) Build(dev *topology.Node) (*DeviceConfig, error) {
	env := b.env
	cfg := &DeviceConfig{Name: dev.Name(), Role: topology.RoleSwitchCore}
	edges := env.Index.EdgesOf(dev.ID)

	cmds := []string{
		dev.Name(),
		"enable",
		"config terminal",
		"hostname " + dev.Name(),
		"ip routing",
	}
	cmds = append(cmds, sshPreamble(true)...)

	hostedVLANs, hasSwitches := b.hostedVLANs(dev, edges)

	// Declare every catalog VLAN when switches hang off the core, so the
	// trunks carry them all; otherwise only the VLANs that have hosts.
	declare := make([]string, 0, len(env.Catalog))
	if hasSwitches {
		for _, v := range env.Catalog {
			declare = append(declare, v.Name)
		}
	} else {
		for name := range hostedVLANs {
			declare = append(declare, name)
		}
	}
	sort.Strings(declare)

	for _, name := range declare {
		v, ok := env.Index.VLANByName[name]
		if !ok {
			continue
		}
		if num, ok := v.Number(); ok {
			cmds = append(cmds,
				fmt.Sprintf("vlan %d", num),
				" name "+strings.ToLower(name),
			)
		}
	}
	cmds = append(cmds, "exit", "")

	if env.SpanningTargets[dev.ID] {
		cmds = append(cmds, "spanning-tree vlan 1 priority 4096", "")
	}

	for _, e := range edges {
		bb, ok := env.backboneFor(dev, e)
		if !ok {
			continue
		}
		addr := env.EdgeIPs[e.ID]
		cmds = append(cmds,
			"interface "+bb.Interface,
			" no switchport",
			fmt.Sprintf(" ip address %s %s", bb.IP, addr.Netmask),
			" no shutdown",
			"",
		)
		cfg.Backbone = append(cfg.Backbone, bb)
	}

	var channels []*topology.Edge
	for _, e := range edges {
		target := env.Index.Node(e.OtherEnd(dev.ID))
		role := target.Role()
		if role != topology.RoleSwitch && role != topology.RoleWLC {
			continue
		}
		if e.Data.EtherChannel != nil {
			channels = append(channels, e)
			continue
		}
		iface := e.InterfaceFor(dev.ID)
		cmds = append(cmds,
			"interface "+iface.FullName(),
			" switchport trunk encapsulation dot1Q",
			" switchport mode trunk",
		)
		if env.NativeVLANID != 0 {
			cmds = append(cmds, fmt.Sprintf(" switchport trunk native vlan %d", env.NativeVLANID))
		}
		cmds = append(cmds, " no shutdown", "")
	}

	for _, e := range channels {
		cmds = append(cmds, etherChannelCommands(e.Data.EtherChannel, e.From == dev.ID)...)
	}

	// Access ports: servers cabled straight into the core, then the
	// core's own attached computers.
	for _, e := range edges {
		target := env.Index.Node(e.OtherEnd(dev.ID))
		role := target.Role()
		if role != topology.RoleServer && role != topology.RoleComputer {
			continue
		}
		vlan, ok := env.Index.VLANByName[target.Data.VLAN]
		if !ok {
			continue
		}
		num, ok := vlan.Number()
		if !ok {
			continue
		}
		cmds = append(cmds,
			"interface "+e.InterfaceFor(dev.ID).FullName(),
			fmt.Sprintf(" switchport access vlan %d", num),
			" no shutdown",
			"",
		)
	}

	// Management VLAN 1. The block itself is reserved up front by the
	// orchestrator so VLAN allocation cannot collide with it.
	ordinal := env.Index.SwitchCoreOrdinal(dev.ID)
	mgmtNet := ManagementNetwork(env.BaseOctet, ordinal)
	mgmtGW := ManagementGateway(env.BaseOctet, ordinal)
	cmds = append(cmds,
		"",
		"interface vlan 1",
		fmt.Sprintf("ip address %s %s", mgmtGW, ipam.Netmask(mgmtNet)),
		" no shut",
		"exit",
		"",
	)
	cfg.VLANs = append(cfg.VLANs, VLANAssignment{
		Name:    "VLAN1",
		VLANID:  1,
		Network: mgmtNet,
		Gateway: mgmtGW,
		Netmask: ipam.Netmask(mgmtNet),
	})

	// One SVI per VLAN that actually has hosts behind this core.
	for _, v := range env.Catalog {
		if !hostedVLANs[v.Name] {
			continue
		}
		assign, ok := env.allocateVLAN(dev, v)
		if !ok {
			continue
		}
		cmds = append(cmds,
			fmt.Sprintf("interface vlan %d", assign.VLANID),
			fmt.Sprintf(" ip address %s %s", assign.Gateway, assign.Netmask),
			" no shutdown",
			"",
		)
		cfg.VLANs = append(cfg.VLANs, assign)
	}

	for _, assign := range cfg.VLANs {
		cmds = append(cmds, dhcpPool(assign, fmt.Sprintf("VLAN%d", assign.VLANID), true)...)
	}

	cfg.Commands = cmds
	return cfg, nil
}

// hostedVLANs collects the VLAN names that have a computer or server behind
// this core, directly or through an attached switch, and reports whether
// any plain switch is attached at all.
func (b *switchCoreBuilder) hostedVLANs(dev *topology.Node, edges []*topology.Edge) (map[string]bool, bool) {
	env := b.env
	hosted := make(map[string]bool)
	hasSwitches := false

	for _, e := range edges {
		target := env.Index.Node(e.OtherEnd(dev.ID))
		switch target.Role() {
		case topology.RoleServer, topology.RoleComputer:
			if target.Data.VLAN != "" {
				hosted[target.Data.VLAN] = true
			}
		case topology.RoleSwitch:
			hasSwitches = true
			for _, se := range env.Index.EdgesOf(target.ID) {
				leaf := env.Index.Node(se.OtherEnd(target.ID))
				if leaf.Role() == topology.RoleComputer && leaf.Data.VLAN != "" {
					hosted[leaf.Data.VLAN] = true
				}
			}
		}
	}
	return hosted, hasSwitches
}
