// Package topology defines the input schema of a network topology and the
// O(1) lookup index the compiler works from.
package topology

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Role identifies what kind of device a node represents.
type Role string

const (
	RoleRouter     Role = "router"
	RoleSwitch     Role = "switch"
	RoleSwitchCore Role = "switch_core"
	RoleComputer   Role = "computer"
	RoleServer     Role = "server"
	RoleWLC        Role = "wlc"
	RoleAP         Role = "ap"
)

// IsLayer3 reports whether the role participates in backbone addressing and
// routing.
func (r Role) IsLayer3() bool { return r == RoleRouter || r == RoleSwitchCore }

// IsSwitchLike reports whether the role is a layer-2 or layer-3 switch.
func (r Role) IsSwitchLike() bool { return r == RoleSwitch || r == RoleSwitchCore }

// NodeID is a node identifier. Visual editors emit numeric ids while
// synthesized nodes use strings, so both decode into the same type.
type NodeID string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = NodeID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("node id must be a string or number, got %s", data)
	}
	*id = NodeID(n.String())
	return nil
}

// UnmarshalYAML accepts either a scalar string or number.
func (id *NodeID) UnmarshalYAML(value *yaml.Node) error {
	*id = NodeID(value.Value)
	return nil
}

// PrefixLength is a prefix length that decodes from a bare integer, a digit
// string, or a "/26"-style string.
type PrefixLength int

// UnmarshalJSON accepts 26, "26", or "/26".
func (p *PrefixLength) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*p = PrefixLength(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("prefix length must be a number or string, got %s", data)
	}
	return p.parse(s)
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON.
func (p *PrefixLength) UnmarshalYAML(value *yaml.Node) error {
	return p.parse(value.Value)
}

func (p *PrefixLength) parse(s string) error {
	s = strings.TrimPrefix(strings.TrimSpace(s), "/")
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("prefix length %q: %w", s, err)
	}
	*p = PrefixLength(n)
	return nil
}

// Computer is an end host attached directly to a switch or switch-core.
type Computer struct {
	Name       string `json:"name" yaml:"name"`
	VLAN       string `json:"vlan" yaml:"vlan"`
	PortNumber string `json:"portNumber" yaml:"portNumber"`
}

// NodeData carries the role-specific attributes of a node.
type NodeData struct {
	Type      Role       `json:"type" yaml:"type" validate:"required,oneof=router switch switch_core computer server wlc ap"`
	Name      string     `json:"name" yaml:"name" validate:"required"`
	VLAN      string     `json:"vlan,omitempty" yaml:"vlan,omitempty"`
	Port      string     `json:"port,omitempty" yaml:"port,omitempty"`
	Computers []Computer `json:"computers,omitempty" yaml:"computers,omitempty"`
}

// Node is one device in the topology.
type Node struct {
	ID   NodeID   `json:"id" yaml:"id" validate:"required"`
	Data NodeData `json:"data" yaml:"data" validate:"required"`
}

// Name returns the device name.
func (n *Node) Name() string { return n.Data.Name }

// Role returns the device role.
func (n *Node) Role() Role { return n.Data.Type }

// InterfaceRef names one physical interface by type and number, for example
// {GigabitEthernet 0/0}.
type InterfaceRef struct {
	Type   string `json:"type" yaml:"type" validate:"required"`
	Number string `json:"number" yaml:"number" validate:"required"`
}

// FullName renders the interface the way it appears in CLI commands.
func (r InterfaceRef) FullName() string { return r.Type + r.Number }

// EtherChannelProtocol selects the link aggregation protocol.
type EtherChannelProtocol string

const (
	ProtocolLACP EtherChannelProtocol = "lacp"
	ProtocolPAgP EtherChannelProtocol = "pagp"
)

// EtherChannel describes link aggregation carried by an edge. The group
// number must match on both ends; that is a cross-device contract the
// builders cannot check locally.
type EtherChannel struct {
	Protocol  EtherChannelProtocol `json:"protocol" yaml:"protocol" validate:"required,oneof=lacp pagp"`
	Group     int                  `json:"group" yaml:"group" validate:"required,min=1"`
	FromType  string               `json:"fromType" yaml:"fromType"`
	ToType    string               `json:"toType" yaml:"toType"`
	FromRange string               `json:"fromRange" yaml:"fromRange"`
	ToRange   string               `json:"toRange" yaml:"toRange"`
}

// Direction is the routing direction policy of an edge. It restricts which
// side may use the link as a forwarding step.
type Direction string

const (
	DirectionBidirectional Direction = "bidirectional"
	DirectionFromTo        Direction = "from-to"
	DirectionToFrom        Direction = "to-from"
)

// Usable reports whether the side indicated by isFrom may forward over an
// edge with this policy. An empty direction means bidirectional.
func (d Direction) Usable(isFrom bool) bool {
	switch d {
	case DirectionFromTo:
		return isFrom
	case DirectionToFrom:
		return !isFrom
	default:
		return true
	}
}

// EdgeData carries the per-side interface descriptors and link options.
type EdgeData struct {
	FromInterface    InterfaceRef  `json:"fromInterface" yaml:"fromInterface" validate:"required"`
	ToInterface      InterfaceRef  `json:"toInterface" yaml:"toInterface" validate:"required"`
	EtherChannel     *EtherChannel `json:"etherChannel,omitempty" yaml:"etherChannel,omitempty"`
	RoutingDirection Direction     `json:"routingDirection,omitempty" yaml:"routingDirection,omitempty" validate:"omitempty,oneof=bidirectional from-to to-from"`
}

// Edge is a link between two nodes.
type Edge struct {
	ID   string   `json:"id" yaml:"id"`
	From NodeID   `json:"from" yaml:"from" validate:"required"`
	To   NodeID   `json:"to" yaml:"to" validate:"required"`
	Data EdgeData `json:"data" yaml:"data" validate:"required"`
}

// InterfaceFor returns the interface descriptor on the side owned by id.
func (e *Edge) InterfaceFor(id NodeID) InterfaceRef {
	if e.From == id {
		return e.Data.FromInterface
	}
	return e.Data.ToInterface
}

// OtherEnd returns the node id on the far side of the edge from id.
func (e *Edge) OtherEnd(id NodeID) NodeID {
	if e.From == id {
		return e.To
	}
	return e.From
}

// VLAN is a broadcast domain definition from the catalog.
type VLAN struct {
	Name     string       `json:"name" yaml:"name" validate:"required"`
	Prefix   PrefixLength `json:"prefix" yaml:"prefix" validate:"required,min=1,max=32"`
	IsNative bool         `json:"isNative,omitempty" yaml:"isNative,omitempty"`
}

// Number extracts the numeric VLAN id from the digits of the name
// ("VLAN10" yields 10). The boolean is false when the name holds no digits.
func (v VLAN) Number() (int, bool) {
	var digits strings.Builder
	for _, r := range v.Name {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// DefaultBaseOctet is the first octet of the base block when the topology
// does not specify one.
const DefaultBaseOctet = 19

// Topology is the full input document.
type Topology struct {
	Nodes            []Node `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Edges            []Edge `json:"edges" yaml:"edges" validate:"dive"`
	VLANs            []VLAN `json:"vlans" yaml:"vlans" validate:"dive"`
	BaseNetworkOctet int    `json:"baseNetworkOctet,omitempty" yaml:"baseNetworkOctet,omitempty" validate:"omitempty,min=1,max=223"`
}

// BaseOctet returns the configured base octet or the default.
func (t *Topology) BaseOctet() int {
	if t.BaseNetworkOctet == 0 {
		return DefaultBaseOctet
	}
	return t.BaseNetworkOctet
}

// NativeVLANID returns the numeric id of the first VLAN flagged native, or
// zero when the catalog has none.
func (t *Topology) NativeVLANID() int {
	for _, v := range t.VLANs {
		if v.IsNative {
			if n, ok := v.Number(); ok {
				return n
			}
		}
	}
	return 0
}
