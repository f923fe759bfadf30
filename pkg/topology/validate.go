package topology

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level validator instance; validator.Validate is
// safe for concurrent use.
var validate = validator.New()

// Validate checks the structural integrity of a topology document. Failures
// are terminal: the compiler produces no partial output for malformed input.
// Edges pointing at missing nodes are NOT rejected here; the index drops
// those fail-soft with a warning.
func Validate(t *Topology) error {
	if t == nil || len(t.Nodes) == 0 {
		return inputErr("Validate", "topology", "", ErrNoNodes)
	}

	seen := make(map[NodeID]struct{}, len(t.Nodes))
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.ID == "" {
			return inputErr("Validate", "node", fmt.Sprintf("index %d", i), ErrMissingField)
		}
		if _, dup := seen[n.ID]; dup {
			return inputErr("Validate", "node", string(n.ID), ErrDuplicateNode)
		}
		seen[n.ID] = struct{}{}

		if err := validate.Struct(n); err != nil {
			return inputErr("Validate", "node", string(n.ID), fmt.Errorf("%w: %v", ErrMissingField, err))
		}
		switch n.Data.Type {
		case RoleRouter, RoleSwitch, RoleSwitchCore, RoleComputer, RoleServer, RoleWLC, RoleAP:
		default:
			return inputErr("Validate", "node", string(n.ID), fmt.Errorf("%w: %q", ErrUnknownRole, n.Data.Type))
		}
	}

	for i := range t.Edges {
		e := &t.Edges[i]
		if err := validate.Struct(e); err != nil {
			return inputErr("Validate", "edge", e.ID, fmt.Errorf("%w: %v", ErrMissingField, err))
		}
	}

	for i := range t.VLANs {
		v := &t.VLANs[i]
		if v.Name == "" {
			return inputErr("Validate", "vlan", fmt.Sprintf("index %d", i), ErrMissingField)
		}
		if v.Prefix < 1 || v.Prefix > 32 {
			return inputErr("Validate", "vlan", v.Name, fmt.Errorf("%w: /%d", ErrInvalidPrefix, v.Prefix))
		}
	}

	if t.BaseNetworkOctet != 0 && (t.BaseNetworkOctet < 1 || t.BaseNetworkOctet > 223) {
		return inputErr("Validate", "topology", "baseNetworkOctet",
			fmt.Errorf("octet %d out of range", t.BaseNetworkOctet))
	}

	return nil
}
