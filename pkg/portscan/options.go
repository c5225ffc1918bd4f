package portscan

import (
	"time"
)

const (
	DefaultWorkers = 10
	DefaultTimeout = time.Second

	// one worker per port of the full range at most
	MaxWorkers = 65535
)

// Options configuration for the port scanner
type Options struct {
	Workers  int           // Fixed worker pool size, one contiguous chunk per worker
	Timeout  time.Duration // Per-probe connect timeout
	Proxy    string        // socks5:// or http:// proxy, empty for direct dialing
	OnResult func(PortResult)
	Debug    bool
}

// DefaultOptions returns a safe default configuration
func DefaultOptions() *Options {
	return &Options{
		Workers: DefaultWorkers,
		Timeout: DefaultTimeout,
	}
}
