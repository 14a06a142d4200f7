package scanner

import (
	"encoding/binary"
	"fmt"
	"net/netip"
)

// expandCIDR lists usable addresses of an IPv4 subnet, first to last,
// stopping after limit entries. Network and broadcast addresses are skipped
// except for /31 and /32 where every address is usable.
func expandCIDR(cidr string, limit int) ([]string, error) {
	prefix, err := netip.ParsePrefix(cidr)
	if err != nil {
		return nil, err
	}
	// IPv4-mapped IPv6 prefixes are not Is4 and are rejected here too
	if !prefix.Addr().Is4() {
		return nil, fmt.Errorf("only IPv4 supported")
	}

	base := prefix.Masked().Addr().As4()
	bits := prefix.Bits()

	first := binary.BigEndian.Uint32(base[:])
	last := first | (^uint32(0) >> bits)

	if bits <= 30 {
		first++
		last--
	}

	var ips []string
	for i := first; i <= last; i++ {
		if limit > 0 && len(ips) >= limit {
			break
		}
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], i)
		ips = append(ips, netip.AddrFrom4(b).String())
		if i == last {
			// avoid wrapping at 255.255.255.255
			break
		}
	}
	return ips, nil
}
