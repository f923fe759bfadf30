package export

import (
	"net/netip"
	"strings"

	"github.com/dd0wney/topoforge/pkg/compile"
	"github.com/dd0wney/topoforge/pkg/ipam"
)

// AddressReport renders the network plan: the backbone /30 blocks first,
// then one section per device listing each VLAN's mask, network range, and
// gateway.
func AddressReport(result *compile.Result) string {
	var b strings.Builder

	writeLines(&b, "", "=== BACKBONE ===")
	var backbone []compile.BlockAssignment
	for _, blk := range result.Blocks {
		if blk.Group == compile.GroupBackbone {
			backbone = append(backbone, blk)
		}
	}
	if len(backbone) > 0 {
		writeLines(&b, "Netmask: "+ipam.Netmask(backbone[0].Network))
		for _, blk := range backbone {
			writeLines(&b, "", blk.Name)
			writeBlock(&b, blk.Network)
		}
	}

	for _, d := range result.Devices {
		if len(d.VLANs) == 0 {
			continue
		}
		writeLines(&b, "", "=== "+d.Name+" ===")
		for _, v := range d.VLANs {
			writeLines(&b, "", v.Name+" - Netmask: "+v.Netmask)
			writeLines(&b,
				"|"+ipam.NetworkAddr(v.Network).String(),
				"|Gateway: "+v.Gateway.String(),
				"|",
				"|"+ipam.BroadcastAddr(v.Network).String())
		}
	}
	return b.String()
}

func writeBlock(b *strings.Builder, net netip.Prefix) {
	writeLines(b,
		"|"+ipam.NetworkAddr(net).String(),
		"|",
		"|",
		"|"+ipam.BroadcastAddr(net).String())
}
