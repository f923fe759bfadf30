package ipam

import (
	"net/netip"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestAllocatorInvariants uses property-based testing to verify allocation
// invariants. These properties should ALWAYS hold for any request sequence.
func TestAllocatorInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	base := netip.PrefixFrom(netip.AddrFrom4([4]byte{19, 0, 0, 0}), 8)

	// Property 1: no two issued blocks ever overlap
	properties.Property("issued blocks are pairwise disjoint", prop.ForAll(
		func(sizes []int) bool {
			a, err := NewAllocator(base)
			if err != nil {
				return false
			}
			for _, s := range sizes {
				a.Allocate(s, 1, false)
			}
			used := a.Used()
			for i := 0; i < len(used); i++ {
				for j := i + 1; j < len(used); j++ {
					if used[i].Overlaps(used[j]) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(9, 30)),
	))

	// Property 2: every issued block stays inside the base
	properties.Property("issued blocks stay inside the base", prop.ForAll(
		func(sizes []int) bool {
			a, err := NewAllocator(base)
			if err != nil {
				return false
			}
			for _, s := range sizes {
				a.Allocate(s, 1, true)
			}
			for _, u := range a.Used() {
				if !base.Overlaps(u) || !base.Contains(u.Addr()) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(9, 30)),
	))

	// Property 3: identical request sequences produce identical results
	properties.Property("allocation is deterministic", prop.ForAll(
		func(sizes []int) bool {
			run := func() []netip.Prefix {
				a, err := NewAllocator(base)
				if err != nil {
					return nil
				}
				var out []netip.Prefix
				for _, s := range sizes {
					out = append(out, a.Allocate(s, 2, s%2 == 0)...)
				}
				return out
			}
			first := run()
			second := run()
			if len(first) != len(second) {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(9, 30)),
	))

	properties.TestingRun(t)
}
