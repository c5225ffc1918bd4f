package config

import (
	"net"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
)

const (
	SOCKS5  = "socks5"
	SOCKS5H = "socks5h"
	HTTP    = "http"
	HTTPS   = "https"
)

// ValidateProxyURL checks the proxy has a supported scheme and a host:port.
func ValidateProxyURL(proxy string) (*url.URL, error) {
	u, err := url.Parse(proxy)
	if err == nil && isSupportedProtocol(u.Scheme) && u.Hostname() != "" && u.Port() != "" {
		return u, nil
	}
	return nil, errors.New("invalid proxy format (It should be http[s]/socks5://[username:password@]host:port), ProxyURL: " + proxy)
}

// CheckProxy makes sure the proxy server accepts TCP connections.
func CheckProxy(proxy string, timeout time.Duration) error {
	u, err := ValidateProxyURL(proxy)
	if err != nil {
		return err
	}
	conn, err := net.DialTimeout("tcp", u.Host, timeout)
	if err != nil {
		return errors.Wrapf(err, "proxy %s is not reachable", u.Host)
	}
	conn.Close()
	gologger.Verbose().Msgf("Using %s as proxy server", u.Redacted())
	return nil
}

// isSupportedProtocol checks given protocols are supported
func isSupportedProtocol(value string) bool {
	return value == HTTP || value == HTTPS || value == SOCKS5 || value == SOCKS5H
}
