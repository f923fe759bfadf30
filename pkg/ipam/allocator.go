// Package ipam carves non-overlapping IPv4 networks out of a base block.
//
// An Allocator is request-scoped: every block it hands out is remembered for
// the lifetime of the allocator, so two compilation runs must never share one.
package ipam

import (
	"fmt"
	"net/netip"
)

// UsedSet tracks the blocks already issued within one request. The linear
// scan is fine at the scale topologies reach in practice; the interface
// exists so it can be swapped for an interval tree without touching callers.
type UsedSet interface {
	// Conflicts reports whether p overlaps any recorded block.
	Conflicts(p netip.Prefix) bool
	// Add records p. The caller guarantees Conflicts(p) was false.
	Add(p netip.Prefix)
	// All returns the recorded blocks in insertion order.
	All() []netip.Prefix
}

type sliceSet struct {
	blocks []netip.Prefix
}

func (s *sliceSet) Conflicts(p netip.Prefix) bool { return Conflicts(p, s.blocks) }
func (s *sliceSet) Add(p netip.Prefix)            { s.blocks = append(s.blocks, p) }
func (s *sliceSet) All() []netip.Prefix           { return s.blocks }

// Allocator partitions a base block into non-overlapping networks on demand.
type Allocator struct {
	base netip.Prefix
	used UsedSet
}

// NewAllocator returns an allocator over the given IPv4 base block with an
// empty used set.
func NewAllocator(base netip.Prefix) (*Allocator, error) {
	if !base.IsValid() || !base.Addr().Is4() {
		return nil, fmt.Errorf("allocator base %v: must be a valid IPv4 prefix", base)
	}
	return &Allocator{base: base.Masked(), used: &sliceSet{}}, nil
}

// Base returns the base block the allocator partitions.
func (a *Allocator) Base() netip.Prefix { return a.base }

// Used returns every block issued or reserved so far, in insertion order.
func (a *Allocator) Used() []netip.Prefix { return a.used.All() }

// Reserve records an externally assigned block (such as a management
// network) so later allocations cannot collide with it. It returns an error
// if the block conflicts with one already issued.
func (a *Allocator) Reserve(p netip.Prefix) error {
	p = p.Masked()
	if a.used.Conflicts(p) {
		return fmt.Errorf("reserve %v: conflicts with an already issued block", p)
	}
	a.used.Add(p)
	return nil
}

// Allocate returns up to count blocks of the requested prefix length, taken
// from the base block in ascending address order. Candidates that overlap,
// contain, or are contained by any issued block are skipped. With skipFirst
// the first candidate (the all-zeros block, reserved by convention) is never
// considered.
//
// The result may hold fewer than count blocks when the address space runs
// out; callers must check the length. Identical allocator history and
// arguments always produce identical results.
func (a *Allocator) Allocate(prefixLen, count int, skipFirst bool) []netip.Prefix {
	if prefixLen < a.base.Bits() || prefixLen > 32 || count <= 0 {
		return nil
	}

	var out []netip.Prefix
	step := uint64(1) << (32 - prefixLen)
	start := uint64(addrToUint32(a.base.Masked().Addr()))
	end := uint64(addrToUint32(BroadcastAddr(a.base))) + 1

	for pos := start; pos < end; pos += step {
		if skipFirst && pos == start {
			continue
		}
		cand := netip.PrefixFrom(uint32ToAddr(uint32(pos)), prefixLen)
		if a.used.Conflicts(cand) {
			continue
		}
		a.used.Add(cand)
		out = append(out, cand)
		if len(out) == count {
			break
		}
	}
	return out
}

// AllocateOne is the common single-block case. The boolean is false when the
// address space is exhausted.
func (a *Allocator) AllocateOne(prefixLen int, skipFirst bool) (netip.Prefix, bool) {
	blocks := a.Allocate(prefixLen, 1, skipFirst)
	if len(blocks) == 0 {
		return netip.Prefix{}, false
	}
	return blocks[0], true
}
