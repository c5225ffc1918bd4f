package targets

import (
	"encoding/binary"
	"net"
	"strconv"
	"strings"
)

// expand reports whether seed is a CIDR or an IP range. For a malformed or
// oversized one it returns (nil, true).
func expand(seed string) ([]string, bool) {
	if _, ipnet, err := net.ParseCIDR(seed); err == nil {
		return expandCIDR(ipnet), true
	}

	parts := strings.Split(seed, "-")
	if len(parts) != 2 {
		return nil, false
	}
	start := net.ParseIP(strings.TrimSpace(parts[0]))
	if start == nil {
		return nil, false
	}
	end := net.ParseIP(strings.TrimSpace(parts[1]))
	if end == nil {
		// 192.168.1.1-20
		end = shortRangeEnd(start, strings.TrimSpace(parts[1]))
		if end == nil {
			return nil, true
		}
	}
	return expandRange(start, end), true
}

func expandCIDR(ipnet *net.IPNet) []string {
	ip4 := ipnet.IP.To4()
	if ip4 == nil {
		// IPv6 网段只接受单个地址
		ones, bits := ipnet.Mask.Size()
		if ones == bits {
			return []string{ipnet.IP.String()}
		}
		return nil
	}
	ones, bits := ipnet.Mask.Size()
	size := uint64(1) << uint(bits-ones)
	if size > MaxExpand {
		return nil
	}
	first := binary.BigEndian.Uint32(ip4)
	out := make([]string, 0, size)
	for i := uint64(0); i < size; i++ {
		out = append(out, uint32ToIP(first+uint32(i)).String())
	}
	return out
}

func expandRange(start, end net.IP) []string {
	s4, e4 := start.To4(), end.To4()
	if s4 == nil || e4 == nil {
		return nil
	}
	lo := binary.BigEndian.Uint32(s4)
	hi := binary.BigEndian.Uint32(e4)
	if lo > hi || uint64(hi-lo)+1 > MaxExpand {
		return nil
	}
	out := make([]string, 0, hi-lo+1)
	for v := uint64(lo); v <= uint64(hi); v++ {
		out = append(out, uint32ToIP(uint32(v)).String())
	}
	return out
}

func shortRangeEnd(start net.IP, last string) net.IP {
	s4 := start.To4()
	if s4 == nil {
		return nil
	}
	n, err := strconv.Atoi(last)
	if err != nil || n < 0 || n > 255 {
		return nil
	}
	return net.IPv4(s4[0], s4[1], s4[2], byte(n)).To4()
}

func uint32ToIP(v uint32) net.IP {
	ip := make(net.IP, 4)
	binary.BigEndian.PutUint32(ip, v)
	return ip
}
