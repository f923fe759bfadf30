// Package cisco turns allocated addresses, VLAN assignments, and computed
// routes into ordered IOS command sequences, one builder per device role.
package cisco

import (
	"fmt"
	"net/netip"

	"go.uber.org/zap"

	"github.com/dd0wney/topoforge/pkg/ipam"
	"github.com/dd0wney/topoforge/pkg/routing"
	"github.com/dd0wney/topoforge/pkg/topology"
)

// VLANAssignment binds an allocated network block to a VLAN on one device.
type VLANAssignment struct {
	Name            string       `json:"name"`
	VLANID          int          `json:"vlanId"`
	Network         netip.Prefix `json:"network"`
	Gateway         netip.Addr   `json:"gateway"`
	Netmask         string       `json:"netmask"`
	IsNative        bool         `json:"isNative,omitempty"`
	InterfaceType   string       `json:"interfaceType,omitempty"`
	InterfaceNumber string       `json:"interfaceNumber,omitempty"`
}

// NetworkRef converts the assignment to the routing engine's view.
func (a VLANAssignment) NetworkRef() routing.NetworkRef {
	return routing.NetworkRef{Name: a.Name, Network: a.Network}
}

// DeviceConfig is the final artifact for one device: the ordered CLI command
// list plus everything the route synthesizer and exporter need to know about
// the device. This shape is the binding contract with the exporter.
type DeviceConfig struct {
	Name     string                      `json:"name"`
	Role     topology.Role               `json:"role"`
	Commands []string                    `json:"commands"`
	VLANs    []VLANAssignment            `json:"vlans"`
	Backbone []routing.BackboneInterface `json:"backboneInterfaces"`
	Routes   []routing.Route             `json:"routes"`
}

// RoutingView returns the device as the route synthesizer consumes it.
func (d *DeviceConfig) RoutingView() routing.Router {
	r := routing.Router{Name: d.Name, Backbone: d.Backbone}
	for _, v := range d.VLANs {
		r.VLANs = append(r.VLANs, v.NetworkRef())
	}
	return r
}

// EdgeAddressing is the /30 block assigned to one backbone edge with the
// host addresses bound to each side.
type EdgeAddressing struct {
	Network netip.Prefix
	FromIP  netip.Addr
	ToIP    netip.Addr
	Netmask string
}

// Env is the request-scoped state shared by all builders in one compilation
// run. The allocator inside is mutated as builders claim VLAN blocks, which
// is why devices must be built in the fixed documented order.
type Env struct {
	Index           *topology.Index
	Catalog         []topology.VLAN
	Alloc           *ipam.Allocator
	EdgeIPs         map[string]EdgeAddressing
	NativeVLANID    int
	BaseOctet       int
	SpanningTargets map[topology.NodeID]bool
	Logger          *zap.Logger
}

func (env *Env) logger() *zap.Logger {
	if env.Logger == nil {
		return zap.NewNop()
	}
	return env.Logger
}

// Builder produces the DeviceConfig for one device role.
type Builder interface {
	Role() topology.Role
	Build(dev *topology.Node) (*DeviceConfig, error)
}

// NewBuilder returns the builder for the given role.
func NewBuilder(role topology.Role, env *Env) (Builder, error) {
	switch role {
	case topology.RoleRouter:
		return &routerBuilder{env: env}, nil
	case topology.RoleSwitchCore:
		return &switchCoreBuilder{env: env}, nil
	case topology.RoleSwitch:
		return &switchBuilder{env: env}, nil
	default:
		return nil, fmt.Errorf("no config builder for role %q", role)
	}
}

// backboneFor assembles the backbone attachment of dev over the given edge,
// if the edge carries an address assignment.
func (env *Env) backboneFor(dev *topology.Node, e *topology.Edge) (routing.BackboneInterface, bool) {
	addr, ok := env.EdgeIPs[e.ID]
	if !ok {
		return routing.BackboneInterface{}, false
	}
	isFrom := e.From == dev.ID
	iface := e.InterfaceFor(dev.ID)
	target := env.Index.Node(e.OtherEnd(dev.ID))

	ip, nextHop := addr.FromIP, addr.ToIP
	if !isFrom {
		ip, nextHop = addr.ToIP, addr.FromIP
	}

	dir := e.Data.RoutingDirection
	if dir == "" {
		dir = topology.DirectionBidirectional
	}

	return routing.BackboneInterface{
		Interface: iface.FullName(),
		IP:        ip,
		Network:   addr.Network,
		Target:    target.Name(),
		NextHop:   nextHop,
		Direction: dir,
		IsFrom:    isFrom,
	}, true
}

// allocateVLAN claims a block for one catalog VLAN on one device. It
// returns false when the VLAN cannot be realized (/31 and /32 cannot host
// DHCP, exhausted space, or a usable range under two hosts); those are
// skipped with a warning, not terminal errors.
func (env *Env) allocateVLAN(dev *topology.Node, v topology.VLAN) (VLANAssignment, bool) {
	num, ok := v.Number()
	if !ok {
		return VLANAssignment{}, false
	}
	if v.Prefix >= 31 {
		env.logger().Warn("skipping vlan: /31 and /32 networks cannot host DHCP",
			zap.String("device", dev.Name()),
			zap.String("vlan", v.Name),
			zap.Int("prefix", int(v.Prefix)))
		return VLANAssignment{}, false
	}
	block, ok := env.Alloc.AllocateOne(int(v.Prefix), false)
	if !ok {
		env.logger().Warn("skipping vlan: address space exhausted",
			zap.String("device", dev.Name()),
			zap.String("vlan", v.Name))
		return VLANAssignment{}, false
	}
	if ipam.HostCount(block) < 2 {
		env.logger().Warn("skipping vlan: not enough usable hosts",
			zap.String("device", dev.Name()),
			zap.String("vlan", v.Name),
			zap.Stringer("network", block))
		return VLANAssignment{}, false
	}
	return VLANAssignment{
		Name:     v.Name,
		VLANID:   num,
		Network:  block,
		Gateway:  ipam.LastHost(block),
		Netmask:  ipam.Netmask(block),
		IsNative: v.IsNative,
	}, true
}
