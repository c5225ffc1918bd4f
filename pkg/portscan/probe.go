package portscan

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/net/proxy"
)

// Prober performs single TCP connect probes.
type Prober struct {
	timeout time.Duration
	dialer  proxy.ContextDialer
	proxied bool
}

// NewProber builds a prober for the given timeout. An empty proxyAddr dials
// directly.
func NewProber(timeout time.Duration, proxyAddr string) (*Prober, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	p := &Prober{
		timeout: timeout,
		dialer:  &net.Dialer{Timeout: timeout},
	}
	if proxyAddr == "" {
		return p, nil
	}

	proxyURL, err := url.Parse(proxyAddr)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "invalid proxy URL")
	}
	switch proxyURL.Scheme {
	case "http", "https":
		p.dialer = &httpProxyDialer{proxyAddr: proxyURL.Host, timeout: timeout}
	case "socks5", "socks5h":
		forward := &proxyForward{proxyAddr: proxyURL.Host, dialer: &net.Dialer{Timeout: timeout}}
		d, err := proxy.FromURL(proxyURL, forward)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to create proxy dialer")
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("proxy dialer for %s does not support contexts", proxyURL.Scheme)
		}
		p.dialer = cd
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", proxyURL.Scheme)
	}
	p.proxied = true
	return p, nil
}

// Proxied reports whether probes go through a proxy.
func (p *Prober) Proxied() bool {
	return p.proxied
}

// Probe attempts one TCP connection to address:port and classifies the
// outcome. The socket is always closed before Probe returns.
func (p *Prober) Probe(ctx context.Context, address string, port int) PortResult {
	res := PortResult{Port: port}
	if !isValidPort(port) {
		res.Status = StatusError
		res.Reason = "invalid port"
		return res
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(address, strconv.Itoa(port)))
	if err == nil {
		_ = conn.Close()
		res.Status = StatusOpen
		return res
	}

	if ctx.Err() != nil {
		res.Status = StatusError
		res.Reason = "canceled"
		return res
	}

	res.Status, res.Reason = classifyDialError(err)
	return res
}

func classifyDialError(err error) (PortStatus, string) {
	// the proxy failed, the target port was never reached
	var perr *ProxyError
	if errors.As(err, &perr) {
		return StatusError, perr.Error()
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return StatusClosed, "connection refused"
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return StatusClosed, "connection reset"
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return StatusClosed, "timeout"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return StatusClosed, "timeout"
	}

	// socks5 reports target refusals as text only
	errStr := err.Error()
	if strings.Contains(errStr, "refused") {
		return StatusClosed, "connection refused"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return StatusError, "resolution failed: " + dnsErr.Err
	}
	return StatusError, errStr
}

// proxyForward dials the socks5 proxy itself and marks its failures.
type proxyForward struct {
	proxyAddr string
	dialer    *net.Dialer
}

func (f *proxyForward) Dial(network, addr string) (net.Conn, error) {
	return f.DialContext(context.Background(), network, addr)
}

func (f *proxyForward) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := f.dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, &ProxyError{Proxy: f.proxyAddr, Err: err}
	}
	return conn, nil
}

type httpProxyDialer struct {
	proxyAddr string
	timeout   time.Duration
}

func (h *httpProxyDialer) Dial(network, addr string) (net.Conn, error) {
	return h.DialContext(context.Background(), network, addr)
}

func (h *httpProxyDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &net.Dialer{Timeout: h.timeout}
	conn, err := d.DialContext(ctx, "tcp", h.proxyAddr)
	if err != nil {
		return nil, &ProxyError{Proxy: h.proxyAddr, Err: err}
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	req := &http.Request{
		Method: "CONNECT",
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, &ProxyError{Proxy: h.proxyAddr, Err: err}
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		// the proxy is still connecting to the target
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProxyError{Proxy: h.proxyAddr, Err: err}
	}
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		conn.Close()
		return nil, fmt.Errorf("CONNECT %s: %s: %w", addr, resp.Status, syscall.ECONNREFUSED)
	case http.StatusGatewayTimeout:
		conn.Close()
		return nil, fmt.Errorf("CONNECT %s: %s: %w", addr, resp.Status, context.DeadlineExceeded)
	default:
		conn.Close()
		return nil, &ProxyError{Proxy: h.proxyAddr, Err: fmt.Errorf("CONNECT %s: %s", addr, resp.Status)}
	}

	_ = conn.SetDeadline(time.Time{})
	return &bufferedConn{Conn: conn, r: br}, nil
}

type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(b []byte) (int, error) {
	return c.r.Read(b)
}
