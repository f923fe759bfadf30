// Package export renders compiled device configurations into downloadable
// text documents: per-role config files, a WLAN addressing sheet, and the
// consolidated address report.
package export

import (
	"fmt"
	"strings"

	"github.com/dd0wney/topoforge/pkg/cisco"
	"github.com/dd0wney/topoforge/pkg/ipam"
	"github.com/dd0wney/topoforge/pkg/topology"
)

const wideBar = "================================================================================"
const narrowBar = "========================================"

// Reports splits the device configs into the five standard documents, keyed
// routers, switch_cores, switches, wlan, and complete. Content is built in
// memory; callers decide whether it becomes files or an HTTP response.
func Reports(devices []*cisco.DeviceConfig) map[string]string {
	byRole := func(role topology.Role) []*cisco.DeviceConfig {
		var out []*cisco.DeviceConfig
		for _, d := range devices {
			if d.Role == role {
				out = append(out, d)
			}
		}
		return out
	}

	routers := byRole(topology.RoleRouter)
	cores := byRole(topology.RoleSwitchCore)
	switches := byRole(topology.RoleSwitch)

	return map[string]string{
		"routers":      roleDocument("ROUTER CONFIGURATIONS", "ROUTER", routers),
		"switch_cores": roleDocument("SWITCH CORE CONFIGURATIONS", "SWITCH CORE", cores),
		"switches":     roleDocument("SWITCH CONFIGURATIONS", "SWITCH", switches),
		"wlan":         wlanDocument(devices),
		"complete":     completeDocument(routers, cores, switches),
	}
}

func roleDocument(title, label string, devices []*cisco.DeviceConfig) string {
	var b strings.Builder
	writeLines(&b, wideBar, title, wideBar, "")
	for _, d := range devices {
		writeLines(&b, wideBar, label+": "+d.Name, wideBar)
		writeLines(&b, d.Commands...)
		writeLines(&b, "", "")
	}
	return b.String()
}

// wlanDocument lists, per device that terminates VLANs, the WLC addressing
// for native VLANs and the usable range of every VLAN block. The WLC address
// is the one just below the gateway.
func wlanDocument(devices []*cisco.DeviceConfig) string {
	var b strings.Builder
	for _, d := range devices {
		if len(d.VLANs) == 0 {
			continue
		}
		writeLines(&b, narrowBar, "BLOCK: "+d.Name, narrowBar, "")

		wlcCounter := 1
		for _, v := range d.VLANs {
			if !v.IsNative {
				continue
			}
			n := ipam.HostCount(v.Network)
			wlcIP, _ := ipam.Host(v.Network, 0)
			if n >= 2 {
				wlcIP, _ = ipam.Host(v.Network, n-2)
			}
			writeLines(&b,
				fmt.Sprintf("WLC%d", wlcCounter),
				fmt.Sprintf("Ip Address: %s", wlcIP),
				fmt.Sprintf("Subnet MASK: %s", v.Netmask),
				fmt.Sprintf("Default Gateway: %s", v.Gateway),
				"")
			wlcCounter++
		}

		for _, v := range d.VLANs {
			n := ipam.HostCount(v.Network)
			first, _ := ipam.Host(v.Network, 0)
			last := first
			if n > 1 {
				last, _ = ipam.Host(v.Network, n-2)
			}
			writeLines(&b,
				fmt.Sprintf("---%s---", v.Name),
				"Usable range:",
				"|"+first.String(),
				"|",
				"|",
				"|"+last.String(),
				"Gateway: "+v.Gateway.String(),
				"Netmask: "+v.Netmask,
				"")
		}
		writeLines(&b, "")
	}
	return b.String()
}

func completeDocument(routers, cores, switches []*cisco.DeviceConfig) string {
	var b strings.Builder
	writeLines(&b, wideBar, "COMPLETE TOPOLOGY CONFIGURATION", wideBar, "")

	section := func(title string, devices []*cisco.DeviceConfig) {
		if len(devices) == 0 {
			return
		}
		writeLines(&b, "", wideBar, title, wideBar, "")
		for _, d := range devices {
			writeLines(&b, fmt.Sprintf("--- %s ---", d.Name))
			writeLines(&b, d.Commands...)
			writeLines(&b, "", "")
		}
	}
	section("ROUTERS", routers)
	section("SWITCH CORES", cores)
	section("SWITCHES", switches)
	return b.String()
}

func writeLines(b *strings.Builder, lines ...string) {
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
}
