// Package compile orchestrates one topology-to-configuration run: index the
// input, assign backbone addresses, build per-device configs in the fixed
// documented order, synthesize static routes, and hand back one Result.
//
// All allocation state is request-scoped. Nothing here caches results
// between runs; the caller owns the Result.
package compile

import (
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dd0wney/topoforge/pkg/cisco"
	"github.com/dd0wney/topoforge/pkg/ipam"
	"github.com/dd0wney/topoforge/pkg/metrics"
	"github.com/dd0wney/topoforge/pkg/routing"
	"github.com/dd0wney/topoforge/pkg/topology"
)

// Options configures a compilation run.
type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Registry
}

// BlockAssignment records one allocated network block and its purpose, for
// the address report.
type BlockAssignment struct {
	Network netip.Prefix `json:"network"`
	Name    string       `json:"name"`
	Group   string       `json:"group"`
}

// GroupBackbone tags point-to-point blocks in the address report.
const GroupBackbone = "BACKBONE"

// VLANSummary is the per-VLAN roll-up shown alongside the configs.
type VLANSummary struct {
	Name      string   `json:"name"`
	VLANID    int      `json:"vlanId"`
	Prefix    string   `json:"prefix"`
	Computers []string `json:"computers"`
}

// Result is everything one compilation run produced.
type Result struct {
	RunID   string                `json:"runId"`
	Devices []*cisco.DeviceConfig `json:"devices"`
	Blocks  []BlockAssignment     `json:"blocks"`
	Summary []VLANSummary         `json:"vlanSummary"`
}

// Device returns the config for the named device, or nil.
func (r *Result) Device(name string) *cisco.DeviceConfig {
	for _, d := range r.Devices {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// Run compiles a topology into per-device CLI configurations. Terminal
// errors abort the whole run; there is no partial-device success.
func Run(t *topology.Topology, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	if err := topology.Validate(t); err != nil {
		if opts.Metrics != nil {
			opts.Metrics.RecordCompile("rejected", time.Since(start))
		}
		return nil, err
	}

	idx := topology.BuildIndex(t, logger)

	base, err := ipam.BaseForOctet(t.BaseOctet())
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	alloc, err := ipam.NewAllocator(base)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	logger.Info("compiling topology",
		zap.Stringer("base", base),
		zap.Int("nodes", len(t.Nodes)),
		zap.Int("edges", len(idx.Edges)),
		zap.Int("vlans", len(t.VLANs)))

	result := &Result{RunID: uuid.NewString()}

	edgeIPs := assignBackbone(idx, alloc, result, logger)
	reserveManagement(idx, alloc, t.BaseOctet(), logger)

	env := &cisco.Env{
		Index:           idx,
		Catalog:         t.VLANs,
		Alloc:           alloc,
		EdgeIPs:         edgeIPs,
		NativeVLANID:    t.NativeVLANID(),
		BaseOctet:       t.BaseOctet(),
		SpanningTargets: topology.SpanningTreeTargets(idx),
		Logger:          logger,
	}

	// Builders run in the fixed order backbone-first implies: routers,
	// then switch-cores, then switches. Allocation is stateful, so this
	// order is part of the output contract.
	for _, group := range []struct {
		role  topology.Role
		nodes []*topology.Node
	}{
		{topology.RoleRouter, idx.Routers},
		{topology.RoleSwitchCore, idx.SwitchCores},
		{topology.RoleSwitch, idx.Switches},
	} {
		if len(group.nodes) == 0 {
			continue
		}
		builder, err := cisco.NewBuilder(group.role, env)
		if err != nil {
			return nil, err
		}
		for _, dev := range group.nodes {
			cfg, err := builder.Build(dev)
			if err != nil {
				return nil, fmt.Errorf("compile %s %q: %w", group.role, dev.Name(), err)
			}
			result.Devices = append(result.Devices, cfg)
			for _, assign := range cfg.VLANs {
				result.Blocks = append(result.Blocks, BlockAssignment{
					Network: assign.Network,
					Name:    assign.Name,
					Group:   cfg.Name,
				})
			}
		}
	}

	synthesizeRoutes(result)
	result.Summary = summarize(t, idx)

	if opts.Metrics != nil {
		opts.Metrics.RecordCompile("ok", time.Since(start))
		opts.Metrics.ObserveRun(result.deviceCounts(), len(result.Blocks), result.routeCount())
	}
	logger.Info("compilation complete",
		zap.String("run_id", result.RunID),
		zap.Int("devices", len(result.Devices)),
		zap.Int("blocks", len(result.Blocks)))

	return result, nil
}

// assignBackbone gives every router/switch-core link a dedicated /30 and
// binds the first usable host to the "from" side, the second to the "to"
// side. The all-zeros block is reserved by convention and never issued.
func assignBackbone(idx *topology.Index, alloc *ipam.Allocator, result *Result, logger *zap.Logger) map[string]cisco.EdgeAddressing {
	edgeIPs := make(map[string]cisco.EdgeAddressing)

	for _, e := range idx.BackboneEdges() {
		block, ok := alloc.AllocateOne(30, true)
		if !ok {
			logger.Warn("backbone address space exhausted, link left unaddressed",
				zap.String("edge", e.ID))
			continue
		}

		fromIP, ok := ipam.Host(block, 0)
		if !ok {
			fromIP = ipam.NetworkAddr(block)
		}
		toIP, ok := ipam.Host(block, 1)
		if !ok {
			toIP = ipam.NetworkAddr(block).Next()
		}

		edgeIPs[e.ID] = cisco.EdgeAddressing{
			Network: block,
			FromIP:  fromIP,
			ToIP:    toIP,
			Netmask: ipam.Netmask(block),
		}
		result.Blocks = append(result.Blocks, BlockAssignment{
			Network: block,
			Name:    idx.Node(e.From).Name() + "-" + idx.Node(e.To).Name(),
			Group:   GroupBackbone,
		})
	}
	return edgeIPs
}

// reserveManagement registers every switch-core's VLAN 1 management /24
// before any VLAN allocation happens, so catalog VLANs can never land on a
// management network.
func reserveManagement(idx *topology.Index, alloc *ipam.Allocator, baseOctet int, logger *zap.Logger) {
	for i, swc := range idx.SwitchCores {
		net := cisco.ManagementNetwork(baseOctet, i+1)
		if err := alloc.Reserve(net); err != nil {
			logger.Warn("management network conflicts with an allocated block",
				zap.String("switch_core", swc.Name()),
				zap.Stringer("network", net),
				zap.Error(err))
		}
	}
}

// synthesizeRoutes computes static routes over the layer-3 devices and
// appends them to each device's command list.
func synthesizeRoutes(result *Result) {
	var views []routing.Router
	for _, d := range result.Devices {
		if d.Role.IsLayer3() {
			views = append(views, d.RoutingView())
		}
	}
	tables := routing.Synthesize(views)

	for _, d := range result.Devices {
		if !d.Role.IsLayer3() {
			continue
		}
		cisco.AppendRoutes(d, tables[d.Name])
	}
}

// summarize builds the per-VLAN host roll-up.
func summarize(t *topology.Topology, idx *topology.Index) []VLANSummary {
	out := make([]VLANSummary, 0, len(t.VLANs))
	for _, v := range t.VLANs {
		num, _ := v.Number()
		s := VLANSummary{
			Name:   v.Name,
			VLANID: num,
			Prefix: fmt.Sprintf("/%d", v.Prefix),
		}
		for _, c := range idx.Computers {
			if c.Data.VLAN == v.Name {
				s.Computers = append(s.Computers, c.Name())
			}
		}
		out = append(out, s)
	}
	return out
}

func (r *Result) deviceCounts() map[string]int {
	counts := make(map[string]int)
	for _, d := range r.Devices {
		counts[string(d.Role)]++
	}
	return counts
}

func (r *Result) routeCount() int {
	n := 0
	for _, d := range r.Devices {
		n += len(d.Routes)
	}
	return n
}
