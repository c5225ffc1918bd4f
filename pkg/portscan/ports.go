package portscan

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePortRange parses "80" or "1-1024" into an inclusive range.
func ParsePortRange(portStr string) (int, int, error) {
	portStr = strings.TrimSpace(portStr)
	if portStr == "" {
		return 0, 0, fmt.Errorf("%w: empty port string", ErrInvalidRange)
	}

	if portStr == "full" || portStr == "all" {
		return 1, 65535, nil
	}

	if !strings.Contains(portStr, "-") {
		port, err := strconv.Atoi(portStr)
		if err != nil || !isValidPort(port) {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, portStr)
		}
		return port, port, nil
	}

	rangeParts := strings.Split(portStr, "-")
	if len(rangeParts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, portStr)
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
	end, err2 := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
	if err1 != nil || err2 != nil || !isValidPort(start) || !isValidPort(end) || start > end {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidRange, portStr)
	}
	return start, end, nil
}

// NewScanTarget builds a target from a host and a port range string.
func NewScanTarget(host, portStr string) (ScanTarget, error) {
	start, end, err := ParsePortRange(portStr)
	if err != nil {
		return ScanTarget{}, err
	}
	t := ScanTarget{Host: strings.TrimSpace(host), StartPort: start, EndPort: end}
	return t, t.Validate()
}

func isValidPort(p int) bool {
	return p > 0 && p <= 65535
}
