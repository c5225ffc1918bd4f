package portscan

import (
	"context"
	"errors"
	"net"
	"strings"
)

// resolveHost returns the address to dial for host, preferring IPv4.
// Literal addresses are returned unchanged.
func resolveHost(ctx context.Context, host string) (string, error) {
	host = strings.Trim(strings.TrimSpace(host), "[]")
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return "", &ResolutionError{Host: host, Err: err}
	}
	if len(addrs) == 0 {
		return "", &ResolutionError{Host: host, Err: errors.New("no addresses found")}
	}
	for _, a := range addrs {
		if v4 := a.IP.To4(); v4 != nil {
			return v4.String(), nil
		}
	}
	return addrs[0].IP.String(), nil
}
