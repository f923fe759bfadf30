package cisco

import (
	"fmt"
	"strings"

	"github.com/dd0wney/topoforge/pkg/ipam"
	"github.com/dd0wney/topoforge/pkg/routing"
)

// StaticRouteCommands renders computed routes as "ip route" lines preceded
// by a single exit, leaving whatever configuration mode the command list is
// currently in. Routes sharing a next-hop stay grouped, in the order the
// next-hop first appears.
func StaticRouteCommands(routes []routing.Route) []string {
	if len(routes) == 0 {
		return nil
	}

	cmds := []string{"exit"}

	var hopOrder []string
	byHop := make(map[string][]routing.Route)
	for _, r := range routes {
		hop := r.NextHop.String()
		if _, ok := byHop[hop]; !ok {
			hopOrder = append(hopOrder, hop)
		}
		byHop[hop] = append(byHop[hop], r)
	}

	for _, hop := range hopOrder {
		for _, r := range byHop[hop] {
			cmds = append(cmds, fmt.Sprintf("ip route %s %s %s",
				ipam.NetworkAddr(r.Network), ipam.Netmask(r.Network), hop))
		}
	}
	return cmds
}

// AppendRoutes attaches route commands to a finished device config. When the
// config already ends in an exit the leading exit of the route block is
// dropped so the two do not stack.
func AppendRoutes(cfg *DeviceConfig, routes []routing.Route) {
	cmds := StaticRouteCommands(routes)
	if len(cmds) == 0 {
		return
	}

	lastNonEmpty := ""
	for i := len(cfg.Commands) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(cfg.Commands[i]); s != "" {
			lastNonEmpty = strings.ToLower(s)
			break
		}
	}
	if lastNonEmpty == "exit" && strings.EqualFold(strings.TrimSpace(cmds[0]), "exit") {
		cmds = cmds[1:]
	}

	cfg.Commands = append(cfg.Commands, "")
	cfg.Commands = append(cfg.Commands, cmds...)
	cfg.Routes = routes
}
