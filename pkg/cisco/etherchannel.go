package cisco

import (
	"fmt"

	"github.com/dd0wney/topoforge/pkg/topology"
)

// etherChannelCommands emits the aggregation block for one side of an
// EtherChannel edge. The initiating side runs active (LACP) or desirable
// (PAgP); the far side runs passive or auto. Both sides must carry the same
// group number; that is enforced by the editor, not checkable here.
func etherChannelCommands(ec *topology.EtherChannel, isFrom bool) []string {
	var mode string
	if ec.Protocol == topology.ProtocolLACP {
		mode = "passive"
		if isFrom {
			mode = "active"
		}
	} else {
		mode = "auto"
		if isFrom {
			mode = "desirable"
		}
	}

	ifaceType, ifaceRange := ec.ToType, ec.ToRange
	if isFrom {
		ifaceType, ifaceRange = ec.FromType, ec.FromRange
	}

	return []string{
		fmt.Sprintf("interface range %s%s", ifaceType, ifaceRange),
		"switchport mode trunk",
		fmt.Sprintf("channel-group %d mode %s", ec.Group, mode),
		"no shutdown",
		"",
	}
}
