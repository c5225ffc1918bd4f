package targets

import (
	"net"
	"net/url"
	"strings"
)

// MaxExpand bounds the hosts a single CIDR or IP range may expand to.
const MaxExpand = 65536

// TargetIndex turns user supplied seeds into a deduplicated host list.
// A seed is a hostname, an IP, host:port, a URL, a CIDR or an IPv4 range
// such as 192.168.1.1-192.168.1.20.
type TargetIndex struct {
	Hosts   []string
	Invalid []string

	seen map[string]struct{}
}

func NewTargetIndex() *TargetIndex {
	return &TargetIndex{
		seen: make(map[string]struct{}),
	}
}

func BuildTargetIndex(seeds []string) *TargetIndex {
	idx := NewTargetIndex()
	idx.AddAll(seeds)
	return idx
}

func (idx *TargetIndex) AddAll(seeds []string) {
	for _, s := range seeds {
		idx.Add(s)
	}
}

// Add indexes one seed and reports whether it contributed a new host.
// Empty seeds and # comments are ignored; unparsable seeds go to Invalid.
func (idx *TargetIndex) Add(seed string) bool {
	seed = strings.TrimSpace(seed)
	if seed == "" || strings.HasPrefix(seed, "#") {
		return false
	}

	if hosts, ok := expand(seed); ok {
		if hosts == nil {
			idx.Invalid = append(idx.Invalid, seed)
			return false
		}
		added := false
		for _, h := range hosts {
			if idx.addHost(h) {
				added = true
			}
		}
		return added
	}

	if host, ok := hostFromURL(seed); ok {
		return idx.addHost(host)
	}
	if host, ok := hostFromHostPort(seed); ok {
		return idx.addHost(host)
	}
	if host, ok := normalizeHost(seed); ok {
		return idx.addHost(host)
	}

	idx.Invalid = append(idx.Invalid, seed)
	return false
}

func (idx *TargetIndex) addHost(host string) bool {
	key := strings.ToLower(host)
	if _, ok := idx.seen[key]; ok {
		return false
	}
	idx.seen[key] = struct{}{}
	idx.Hosts = append(idx.Hosts, host)
	return true
}

func (idx *TargetIndex) Len() int {
	return len(idx.Hosts)
}

func hostFromURL(seed string) (string, bool) {
	if !strings.Contains(seed, "://") && !strings.ContainsAny(seed, "/?#") {
		return "", false
	}
	parseInput := seed
	if !strings.Contains(parseInput, "://") {
		parseInput = "http://" + parseInput
	}
	u, err := url.Parse(parseInput)
	if err != nil || u == nil || u.Hostname() == "" {
		return "", false
	}
	return normalizeHostValue(u.Hostname()), true
}

func hostFromHostPort(seed string) (string, bool) {
	host, _, ok := splitHostPortLoose(seed)
	if !ok {
		return "", false
	}
	host = normalizeHostValue(host)
	return host, host != ""
}

func splitHostPortLoose(s string) (host string, port string, ok bool) {
	if strings.HasPrefix(s, "[") {
		h, p, err := net.SplitHostPort(s)
		if err != nil {
			return "", "", false
		}
		return h, p, true
	}

	// 多个冒号视为 IPv6 地址而非 host:port
	if strings.Count(s, ":") != 1 {
		return "", "", false
	}
	parts := strings.SplitN(s, ":", 2)
	h := strings.TrimSpace(parts[0])
	p := strings.TrimSpace(parts[1])
	if h == "" || p == "" {
		return "", "", false
	}
	return h, p, true
}

func normalizeHost(seed string) (string, bool) {
	if strings.Contains(seed, ":") {
		if ip := net.ParseIP(trimBrackets(seed)); ip != nil {
			return ip.String(), true
		}
		return "", false
	}
	if strings.ContainsAny(seed, " \t,") {
		return "", false
	}
	n := normalizeHostValue(seed)
	return n, n != ""
}

func normalizeHostValue(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		return ""
	}
	if ip := net.ParseIP(trimBrackets(host)); ip != nil {
		return ip.String()
	}
	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(host)
}

func trimBrackets(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") && len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
