package portscan

import (
	"fmt"
	"strings"
	"time"
)

// PortStatus represents the state of a port
type PortStatus int

const (
	StatusOpen PortStatus = iota
	StatusClosed
	StatusError
)

func (s PortStatus) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClosed:
		return "closed"
	default:
		return "error"
	}
}

func (s PortStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PortStatus) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "open":
		*s = StatusOpen
	case "closed":
		*s = StatusClosed
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown port status %q", string(b))
	}
	return nil
}

// PortResult holds the outcome of a single probe
type PortResult struct {
	Port   int        `json:"port"`
	Status PortStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// ScanTarget is one host and an inclusive port range
type ScanTarget struct {
	Host      string `json:"host"`
	StartPort int    `json:"start_port"`
	EndPort   int    `json:"end_port"`
}

func (t ScanTarget) Validate() error {
	if strings.TrimSpace(t.Host) == "" {
		return ErrEmptyHost
	}
	if !isValidPort(t.StartPort) || !isValidPort(t.EndPort) || t.StartPort > t.EndPort {
		return fmt.Errorf("%w: %d-%d", ErrInvalidRange, t.StartPort, t.EndPort)
	}
	return nil
}

// Total is the number of ports in the target range
func (t ScanTarget) Total() int {
	return t.EndPort - t.StartPort + 1
}

// ScanJob is the half-open range [Lo, Hi) owned by one worker
type ScanJob struct {
	ID int
	Lo int
	Hi int
}

func (j ScanJob) Len() int {
	if j.Hi <= j.Lo {
		return 0
	}
	return j.Hi - j.Lo
}

func (j ScanJob) Empty() bool {
	return j.Len() == 0
}

// ScanReport is the ordered result of one scan. Results are sorted by port
// and hold exactly one entry per port in [StartPort, EndPort].
type ScanReport struct {
	ID        string        `json:"id"`
	Host      string        `json:"host"`
	Address   string        `json:"address"`
	StartPort int           `json:"start_port"`
	EndPort   int           `json:"end_port"`
	Workers   int           `json:"workers"`
	Results   []PortResult  `json:"results"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

func (r *ScanReport) Len() int {
	return len(r.Results)
}

// Count returns how many ports ended in the given status
func (r *ScanReport) Count(status PortStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

// Open returns the open ports in ascending order
func (r *ScanReport) Open() []int {
	ports := make([]int, 0)
	for _, res := range r.Results {
		if res.Status == StatusOpen {
			ports = append(ports, res.Port)
		}
	}
	return ports
}
