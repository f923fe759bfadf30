package cisco

import (
	"fmt"

	"github.com/dd0wney/topoforge/pkg/ipam"
	"github.com/dd0wney/topoforge/pkg/topology"
)

// routerBuilder emits router configs: SSH preamble, backbone interfaces with
// directly assigned addresses, one 802.1Q sub-interface per catalog VLAN on
// the trunk toward the first plain switch, DHCP pools, and finally static
// routes (appended by the orchestrator after route synthesis).
type routerBuilder struct {
	env *Env
}

func (b *routerBuilder) Role() topology.Role { return topology.RoleRouter }

func (b *routerBuilder) Build(dev *topology.Node) (*DeviceConfig, error) {
	env := b.env
	cfg := &DeviceConfig{Name: dev.Name(), Role: topology.RoleRouter}

	cmds := []string{
		dev.Name(),
		"enable",
		"config terminal",
		"hostname " + dev.Name(),
	}
	cmds = append(cmds, sshPreamble(false)...)
	cmds = append(cmds, "")

	// First pass over the router's edges: backbone addresses, and the
	// candidate trunk link toward a plain switch for VLAN termination.
	var trunkEdge *topology.Edge
	for _, e := range env.Index.EdgesOf(dev.ID) {
		target := env.Index.Node(e.OtherEnd(dev.ID))

		if trunkEdge == nil && target.Role() == topology.RoleSwitch {
			trunkEdge = e
		}

		bb, ok := env.backboneFor(dev, e)
		if !ok {
			continue
		}
		addr := env.EdgeIPs[e.ID]
		cmds = append(cmds,
			"int "+bb.Interface,
			fmt.Sprintf("ip address %s %s", bb.IP, addr.Netmask),
			" no shut",
		)
		cfg.Backbone = append(cfg.Backbone, bb)
	}

	// VLAN sub-interfaces ride the first plain-switch trunk. A router with
	// only switch-core neighbors terminates no VLANs: the core owns them.
	if trunkEdge != nil {
		iface := trunkEdge.InterfaceFor(dev.ID)
		cmds = append(cmds,
			"int "+iface.FullName(),
			"no shut",
		)

		for _, v := range env.Catalog {
			assign, ok := env.allocateVLAN(dev, v)
			if !ok {
				continue
			}
			assign.InterfaceType = iface.Type
			assign.InterfaceNumber = iface.Number

			cmds = append(cmds,
				fmt.Sprintf("int %s.%d", iface.FullName(), assign.VLANID),
				fmt.Sprintf("encapsulation dot1Q %d", assign.VLANID),
				fmt.Sprintf("ip add %s %s", assign.Gateway, assign.Netmask),
				"no shut",
			)
			cfg.VLANs = append(cfg.VLANs, assign)
		}

		cmds = append(cmds, "exit", "")
	}

	for _, assign := range cfg.VLANs {
		cmds = append(cmds, dhcpPool(assign, fmt.Sprintf("vlan%d", assign.VLANID), false)...)
	}

	cfg.Commands = cmds
	return cfg, nil
}

// dhcpPool emits the excluded-address guard and pool block for one VLAN.
// The first ten usable hosts are held back for static assignment; smaller
// networks hold back everything except the gateway and one lease.
func dhcpPool(assign VLANAssignment, poolName string, withDNS bool) []string {
	n := ipam.HostCount(assign.Network)
	if n < 2 {
		return nil
	}

	first, _ := ipam.Host(assign.Network, 0)
	excludedEnd, _ := ipam.Host(assign.Network, n-2)
	if n > 10 {
		excludedEnd, _ = ipam.Host(assign.Network, 9)
	}

	cmds := []string{
		fmt.Sprintf("ip dhcp excluded-address %s %s", first, excludedEnd),
		"",
		"ip dhcp pool " + poolName,
		fmt.Sprintf("network %s %s", ipam.NetworkAddr(assign.Network), assign.Netmask),
		fmt.Sprintf("default-router %s", assign.Gateway),
	}
	if withDNS {
		cmds = append(cmds, "dns-server 8.8.8.8")
	}
	cmds = append(cmds, "exit", "")
	return cmds
}
