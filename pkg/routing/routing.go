// Package routing computes the static routes each layer-3 device needs to
// reach every subnet it does not own, by breadth-first search over the
// directed backbone graph derived from edge direction policies.
package routing

import (
	"net/netip"
	"sort"

	"github.com/dd0wney/topoforge/pkg/topology"
)

// NetworkType tags what kind of network a route points at.
type NetworkType string

const (
	NetworkVLAN     NetworkType = "VLAN"
	NetworkBackbone NetworkType = "BACKBONE"
)

// BackboneInterface is one point-to-point attachment of a layer-3 device.
type BackboneInterface struct {
	Interface string             `json:"interface"`
	IP        netip.Addr         `json:"ip"`
	Network   netip.Prefix       `json:"network"`
	Target    string             `json:"target"`
	NextHop   netip.Addr         `json:"nextHop"`
	Direction topology.Direction `json:"routingDirection"`
	IsFrom    bool               `json:"isFrom"`
}

// NetworkRef names a network a device owns locally.
type NetworkRef struct {
	Name    string
	Network netip.Prefix
}

// Router is the routing view of one layer-3 device: its name, its backbone
// attachments, and the networks it terminates locally.
type Router struct {
	Name     string
	Backbone []BackboneInterface
	VLANs    []NetworkRef
}

// Route is one computed static route.
type Route struct {
	Network           netip.Prefix `json:"network"`
	NextHop           netip.Addr   `json:"nextHop"`
	Interface         string       `json:"interface"`
	DestinationRouter string       `json:"destinationRouter"`
	ViaRouter         string       `json:"viaRouter,omitempty"`
	NetworkType       NetworkType  `json:"networkType"`
	NetworkName       string       `json:"networkName"`
}

// neighborLink is one usable directed adjacency entry. Adjacency is kept as
// an ordered slice, not a map: route tie-breaking is "first discovery wins"
// and must be deterministic for identical input order.
type neighborLink struct {
	target  string
	nextHop netip.Addr
}

// buildAdjacency derives, per router, the ordered list of neighbors the
// router may forward to under each link's direction policy. Attachments
// without a resolvable next-hop are skipped for that entry only. A later
// link to an already-listed neighbor is ignored, matching first-wins
// insertion semantics.
func buildAdjacency(routers []Router) map[string][]neighborLink {
	adj := make(map[string][]neighborLink, len(routers))
	for _, r := range routers {
		seen := make(map[string]bool)
		var links []neighborLink
		for _, bb := range r.Backbone {
			if !bb.NextHop.IsValid() {
				continue
			}
			if !bb.Direction.Usable(bb.IsFrom) {
				continue
			}
			if seen[bb.Target] {
				continue
			}
			seen[bb.Target] = true
			links = append(links, neighborLink{target: bb.Target, nextHop: bb.NextHop})
		}
		adj[r.Name] = links
	}
	return adj
}

type bfsEntry struct {
	router        string
	firstHop      netip.Addr
	firstIface    string
	firstNeighbor string
}

// Synthesize computes the static route set for every router. Routes funnel
// through the first hop discovered toward each BFS subtree: all networks
// behind a neighbor share that neighbor's next-hop and egress interface,
// even across multiple logical hops. Equal-cost alternatives are never
// considered; the visited set caps each destination network at one route.
//
// Output order is by destination network address, so identical input yields
// identical tables.
func Synthesize(routers []Router) map[string][]Route {
	byName := make(map[string]*Router, len(routers))
	known := make(map[string]map[string]bool, len(routers))
	for i := range routers {
		r := &routers[i]
		byName[r.Name] = r
		nets := make(map[string]bool, len(r.VLANs)+len(r.Backbone))
		for _, v := range r.VLANs {
			nets[v.Network.String()] = true
		}
		for _, bb := range r.Backbone {
			nets[bb.Network.String()] = true
		}
		known[r.Name] = nets
	}

	adjacency := buildAdjacency(routers)

	tables := make(map[string][]Route, len(routers))
	for i := range routers {
		src := &routers[i]
		tables[src.Name] = routesFrom(src, byName, known[src.Name], adjacency)
	}
	return tables
}

func routesFrom(src *Router, byName map[string]*Router, known map[string]bool,
	adjacency map[string][]neighborLink) []Route {

	reachable := make(map[string]Route)
	visited := map[string]bool{src.Name: true}
	queue := []bfsEntry{{router: src.Name}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, link := range adjacency[cur.router] {
			if visited[link.target] {
				continue
			}
			visited[link.target] = true

			hopIP := cur.firstHop
			if !hopIP.IsValid() {
				hopIP = link.nextHop
			}
			hopIface := cur.firstIface
			if hopIface == "" {
				for _, bb := range src.Backbone {
					if bb.Target == link.target {
						hopIface = bb.Interface
						break
					}
				}
			}
			firstNeighbor := cur.firstNeighbor
			if firstNeighbor == "" {
				firstNeighbor = link.target
			}

			// The intermediate router is the funnel neighbor, recorded
			// only when the destination sits more than one hop away.
			via := ""
			if cur.firstHop.IsValid() {
				via = firstNeighbor
			}

			if neighbor := byName[link.target]; neighbor != nil {
				for _, v := range neighbor.VLANs {
					key := v.Network.String()
					if known[key] {
						continue
					}
					if _, dup := reachable[key]; dup {
						continue
					}
					reachable[key] = Route{
						Network:           v.Network,
						NextHop:           hopIP,
						Interface:         hopIface,
						DestinationRouter: link.target,
						ViaRouter:         via,
						NetworkType:       NetworkVLAN,
						NetworkName:       v.Name,
					}
				}
				for _, bb := range neighbor.Backbone {
					key := bb.Network.String()
					if known[key] {
						continue
					}
					if _, dup := reachable[key]; dup {
						continue
					}
					reachable[key] = Route{
						Network:           bb.Network,
						NextHop:           hopIP,
						Interface:         hopIface,
						DestinationRouter: link.target,
						ViaRouter:         via,
						NetworkType:       NetworkBackbone,
						NetworkName:       "Backbone-" + link.target + "-" + bb.Target,
					}
				}
			}

			queue = append(queue, bfsEntry{
				router:        link.target,
				firstHop:      hopIP,
				firstIface:    hopIface,
				firstNeighbor: firstNeighbor,
			})
		}
	}

	routes := make([]Route, 0, len(reachable))
	for _, r := range reachable {
		routes = append(routes, r)
	}
	sort.Slice(routes, func(i, j int) bool {
		a, b := routes[i].Network, routes[j].Network
		if c := a.Addr().Compare(b.Addr()); c != 0 {
			return c < 0
		}
		return a.Bits() < b.Bits()
	})
	return routes
}
