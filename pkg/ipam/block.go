package ipam

import (
	"fmt"
	"net/netip"
)

// Address arithmetic for IPv4 prefixes. Everything in this package works on
// netip.Prefix values that are known to be valid IPv4 networks; the allocator
// rejects anything else at the door.

// addrToUint32 converts an IPv4 address to its numeric form.
func addrToUint32(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// uint32ToAddr converts a numeric IPv4 address back to netip.Addr.
func uint32ToAddr(v uint32) netip.Addr {
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// NetworkAddr returns the network address of p.
func NetworkAddr(p netip.Prefix) netip.Addr {
	return p.Masked().Addr()
}

// BroadcastAddr returns the broadcast address of p.
func BroadcastAddr(p netip.Prefix) netip.Addr {
	base := addrToUint32(p.Masked().Addr())
	span := uint32(1)<<(32-p.Bits()) - 1
	return uint32ToAddr(base | span)
}

// Netmask returns the dotted-decimal netmask for p (e.g. 255.255.255.252).
func Netmask(p netip.Prefix) string {
	mask := ^uint32(0) << (32 - p.Bits())
	if p.Bits() == 0 {
		mask = 0
	}
	return uint32ToAddr(mask).String()
}

// HostCount returns the number of usable host addresses in p. Point-to-point
// /31 networks count both addresses, a /32 counts its single address; this
// mirrors how the usable range is interpreted by the builders.
func HostCount(p netip.Prefix) int {
	switch {
	case p.Bits() >= 32:
		return 1
	case p.Bits() == 31:
		return 2
	default:
		return (1 << (32 - p.Bits())) - 2
	}
}

// Host returns the i-th usable host address of p, counting from zero.
// The second return value is false when i is out of range.
func Host(p netip.Prefix, i int) (netip.Addr, bool) {
	n := HostCount(p)
	if i < 0 || i >= n {
		return netip.Addr{}, false
	}
	base := addrToUint32(p.Masked().Addr())
	if p.Bits() >= 31 {
		return uint32ToAddr(base + uint32(i)), true
	}
	return uint32ToAddr(base + 1 + uint32(i)), true
}

// FirstHost returns the lowest usable host address of p, falling back to the
// network address when the block has no usable range.
func FirstHost(p netip.Prefix) netip.Addr {
	if a, ok := Host(p, 0); ok {
		return a
	}
	return NetworkAddr(p)
}

// LastHost returns the highest usable host address of p, falling back to the
// network address when the block has no usable range.
func LastHost(p netip.Prefix) netip.Addr {
	if a, ok := Host(p, HostCount(p)-1); ok {
		return a
	}
	return NetworkAddr(p)
}

// Conflicts reports whether candidate overlaps, is a subnet of, or is a
// supernet of any block in used. For valid IPv4 prefixes the three conditions
// collapse into a single overlap test, but they are spelled out so the
// invariant reads the same way it is specified.
func Conflicts(candidate netip.Prefix, used []netip.Prefix) bool {
	for _, u := range used {
		if candidate.Overlaps(u) || u.Contains(candidate.Addr()) || candidate.Contains(u.Addr()) {
			return true
		}
	}
	return false
}

// ParseBase validates and normalizes a base network in CIDR form.
func ParseBase(cidr string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("parse base network %q: %w", cidr, err)
	}
	if !p.Addr().Is4() {
		return netip.Prefix{}, fmt.Errorf("base network %q: only IPv4 is supported", cidr)
	}
	return p.Masked(), nil
}

// BaseForOctet returns the conventional base block <octet>.0.0.0/8 used for
// all allocations in one compilation run.
func BaseForOctet(octet int) (netip.Prefix, error) {
	if octet < 1 || octet > 223 {
		return netip.Prefix{}, fmt.Errorf("base network octet %d: must be between 1 and 223", octet)
	}
	return netip.PrefixFrom(netip.AddrFrom4([4]byte{byte(octet), 0, 0, 0}), 8), nil
}
