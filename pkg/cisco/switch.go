package cisco

import (
	"fmt"
	"strings"

	"github.com/dd0wney/topoforge/pkg/topology"
)

// switchBuilder emits layer-2 switch configs: SSH preamble, management
// VLAN 1 addressing pointed at the upstream switch-core, every catalog VLAN
// declared so trunks carry them, trunk and EtherChannel uplinks, and access
// ports for attached computers. Switches terminate no IP networks and never
// receive static routes.
type switchBuilder struct {
	env *Env
}

func (b *switchBuilder) Role() topology.Role { return topology.RoleSwitch }

func (b *switchBuilder) Build(dev *topology.Node) (*DeviceConfig, error) {
	env := b.env
	cfg := &DeviceConfig{Name: dev.Name(), Role: topology.RoleSwitch}
	edges := env.Index.EdgesOf(dev.ID)

	cmds := []string{
		"enable",
		"config terminal",
		"hostname " + dev.Name(),
	}
	cmds = append(cmds, sshPreamble(false)...)
	cmds = append(cmds, "", "")

	// Management addressing: each switch gets an address in the VLAN 1
	// network of the switch-core it hangs off; .10 upward by switch
	// order, gateway at .254. Without an upstream core the first core's
	// network is assumed.
	coreOrdinal := 1
	for _, e := range edges {
		target := env.Index.Node(e.OtherEnd(dev.ID))
		if target.Role() == topology.RoleSwitchCore {
			coreOrdinal = env.Index.SwitchCoreOrdinal(target.ID)
			break
		}
	}
	mgmtIP := fmt.Sprintf("%d.0.%d.%d", env.BaseOctet, coreOrdinal, 9+env.Index.SwitchOrdinal(dev.ID))
	cmds = append(cmds,
		fmt.Sprintf("ip default-Gateway %s", ManagementGateway(env.BaseOctet, coreOrdinal)),
		"interface vlan 1",
		fmt.Sprintf("ip address %s 255.255.255.0", mgmtIP),
		" no shut",
		"exit",
		"",
		"",
	)

	// Declare every catalog VLAN so inter-switch trunks work regardless
	// of which hosts sit where.
	declared := false
	for _, v := range env.Catalog {
		if num, ok := v.Number(); ok {
			cmds = append(cmds,
				fmt.Sprintf("vlan %d", num),
				" name "+strings.ToLower(v.Name),
			)
			declared = true
		}
	}
	if declared {
		cmds = append(cmds, "exit", "")
	}

	if env.SpanningTargets[dev.ID] {
		cmds = append(cmds, "spanning-tree vlan 1 priority 4096", "")
	}

	var channels []*topology.Edge
	processed := make(map[string]bool)
	for _, e := range edges {
		if processed[e.ID] {
			continue
		}
		target := env.Index.Node(e.OtherEnd(dev.ID))
		switch target.Role() {
		case topology.RoleSwitchCore, topology.RoleRouter, topology.RoleSwitch, topology.RoleWLC, topology.RoleAP:
		default:
			continue
		}
		processed[e.ID] = true

		if e.Data.EtherChannel != nil {
			channels = append(channels, e)
			continue
		}

		iface := e.InterfaceFor(dev.ID)
		cmds = append(cmds,
			"int "+iface.FullName(),
			"switchport mode trunk",
		)
		// The native VLAN matters on uplinks that carry untagged
		// control traffic: cores, WLCs, and APs.
		switch target.Role() {
		case topology.RoleWLC, topology.RoleAP, topology.RoleSwitchCore:
			if env.NativeVLANID != 0 {
				cmds = append(cmds, fmt.Sprintf("switchport trunk native vlan %d", env.NativeVLANID))
			}
		}
		cmds = append(cmds, "no shut", "")
	}

	for _, e := range channels {
		cmds = append(cmds, etherChannelCommands(e.Data.EtherChannel, e.From == dev.ID)...)
	}

	for _, e := range edges {
		target := env.Index.Node(e.OtherEnd(dev.ID))
		if target.Role() != topology.RoleComputer {
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
			"int "+e.InterfaceFor(dev.ID).FullName(),
			fmt.Sprintf("switchport access vlan %d", num),
			" no shut",
		)
	}

	cfg.Commands = cmds
	return cfg, nil
}
