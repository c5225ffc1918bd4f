package tcpscan

import (
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/zan8in/tcpscan/pkg/portscan"
)

func listenLocal(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			_ = c.Close()
		}
	}()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("SplitHostPort: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("Atoi: %v", err)
	}
	return portStr, port
}

func TestSDKCallbackAndCollection(t *testing.T) {
	portStr, port := listenLocal(t)

	opts := NewSDKOptions()
	opts.Targets = []string{"127.0.0.1"}
	opts.Ports = portStr
	opts.Timeout = 500

	sc, err := NewSDKScanner(opts)
	if err != nil {
		t.Fatalf("NewSDKScanner: %v", err)
	}
	t.Cleanup(sc.Close)

	got := make(chan struct{}, 1)
	sc.OnPort = func(host string, p int) {
		if host == "127.0.0.1" && p == port {
			select {
			case got <- struct{}{}:
			default:
			}
		}
	}

	if err := sc.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	select {
	case <-got:
	default:
		t.Fatalf("OnPort callback not called")
	}

	open := sc.GetOpenPorts()
	ports, ok := open["127.0.0.1"]
	if !ok || len(ports) != 1 || ports[0] != port {
		t.Fatalf("expected open port %d for 127.0.0.1, got: %v", port, open)
	}
	if rep := sc.GetReport("127.0.0.1"); rep == nil || rep.Len() != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if p := sc.GetProgress(); p != 100 {
		t.Fatalf("expected progress 100, got %v", p)
	}
	if err := sc.Run(); err == nil {
		t.Fatalf("second Run must fail")
	}
}

func TestSDKStream(t *testing.T) {
	_, port := listenLocal(t)

	opts := NewSDKOptions()
	opts.Targets = []string{"127.0.0.1", "localhost"}
	opts.Ports = strconv.Itoa(port-2) + "-" + strconv.Itoa(port)
	opts.Workers = 2
	opts.Timeout = 500
	opts.EnableStream = true

	sc, err := NewSDKScanner(opts)
	if err != nil {
		t.Fatalf("NewSDKScanner: %v", err)
	}
	t.Cleanup(sc.Close)

	if err := sc.RunAsync(); err != nil {
		t.Fatalf("RunAsync: %v", err)
	}

	count := map[string]int{}
	for r := range sc.ResultChan() {
		count[r.Host]++
		if r.Port == port && r.Status != portscan.StatusOpen {
			t.Errorf("%s: expected %d open, got %s", r.Host, port, r.Status)
		}
	}
	if err := sc.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if count["127.0.0.1"] != 3 || count["localhost"] != 3 {
		t.Fatalf("expected 3 results per host, got %v", count)
	}
	if len(sc.GetReports()) != 2 {
		t.Fatalf("expected two reports, got %d", len(sc.GetReports()))
	}
}

func TestSDKStop(t *testing.T) {
	opts := NewSDKOptions()
	opts.Targets = []string{"192.0.2.1"}
	opts.Ports = "full"
	opts.Timeout = 2000

	sc, err := NewSDKScanner(opts)
	if err != nil {
		t.Fatalf("NewSDKScanner: %v", err)
	}
	if err := sc.RunAsync(); err != nil {
		t.Fatalf("RunAsync: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	sc.Stop()

	done := make(chan error, 1)
	go func() { done <- sc.Wait() }()
	select {
	case err := <-done:
		if !errors.Is(err, portscan.ErrCanceled) {
			t.Fatalf("expected ErrCanceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("scan did not stop")
	}
	if sc.GetReport("192.0.2.1") != nil {
		t.Fatalf("canceled scan must not produce a report")
	}
}

func TestSDKOptionsValidation(t *testing.T) {
	cases := []func(o *SDKOptions){
		func(o *SDKOptions) { o.Targets = nil },
		func(o *SDKOptions) { o.Targets = []string{"127.0.0.1"}; o.Ports = "9-1" },
		func(o *SDKOptions) { o.Targets = []string{"127.0.0.1"}; o.Workers = 0 },
		func(o *SDKOptions) { o.Targets = []string{"127.0.0.1"}; o.Workers = portscan.MaxWorkers + 1 },
		func(o *SDKOptions) { o.Targets = []string{"127.0.0.1"}; o.Timeout = 0 },
	}
	for i, mod := range cases {
		o := NewSDKOptions()
		mod(o)
		if _, err := NewSDKScanner(o); err == nil {
			t.Fatalf("case %d: expected an error", i)
		}
	}
}
