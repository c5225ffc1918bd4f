package portscan

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyHost      = errors.New("empty target host")
	ErrInvalidRange   = errors.New("invalid port range")
	ErrInvalidWorkers = fmt.Errorf("worker count must be between 1 and %d", MaxWorkers)
	ErrResolution     = errors.New("host resolution failed")
	ErrCanceled       = errors.New("scan canceled")
)

// ResolutionError is returned when the target host cannot be resolved.
// The scan is aborted before any probe is sent.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %s: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// ValidateWorkers checks a worker count before any pool is built.
func ValidateWorkers(n int) error {
	if n < 1 || n > MaxWorkers {
		return ErrInvalidWorkers
	}
	return nil
}

// ProxyError is a failure on the proxy's side: the proxy could not be
// reached, or it rejected the request. It says nothing about the target port.
type ProxyError struct {
	Proxy string
	Err   error
}

func (e *ProxyError) Error() string {
	return fmt.Sprintf("proxy %s: %v", e.Proxy, e.Err)
}

func (e *ProxyError) Unwrap() error {
	return e.Err
}
