package tcpscan

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
	"github.com/zan8in/tcpscan/pkg/portscan"
	"github.com/zan8in/tcpscan/pkg/targets"
)

// SDKOptions configures an SDKScanner.
type SDKOptions struct {
	Targets []string
	Ports   string // "80", "1-1024", "full"

	Workers           int // per target
	Timeout           int // connect timeout in milliseconds
	TargetConcurrency int
	Proxy             string

	// EnableStream delivers every probed port on ResultChan. The channel must
	// be drained while the scan runs.
	EnableStream bool
	StreamBuffer int

	Debug bool
}

func NewSDKOptions() *SDKOptions {
	return &SDKOptions{
		Ports:             "1-1024",
		Workers:           portscan.DefaultWorkers,
		Timeout:           int(portscan.DefaultTimeout / time.Millisecond),
		TargetConcurrency: 4,
		StreamBuffer:      1000,
	}
}

// SDKResult is one probed port of one target.
type SDKResult struct {
	Host string
	portscan.PortResult
}

type SDKScanner struct {
	opts    *SDKOptions
	targets []portscan.ScanTarget
	progs   []*portscan.Progress

	// OnPort is called for every open port as it is found.
	OnPort func(host string, port int)

	resultChan chan SDKResult

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	reports map[string]*portscan.ScanReport
	errs    map[string]error

	started atomic.Bool
	done    chan struct{}
	runErr  error
}

func NewSDKScanner(opts *SDKOptions) (*SDKScanner, error) {
	if opts == nil {
		opts = NewSDKOptions()
	}
	if err := portscan.ValidateWorkers(opts.Workers); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %dms", opts.Timeout)
	}
	if opts.TargetConcurrency < 1 {
		opts.TargetConcurrency = 1
	}

	start, end, err := portscan.ParsePortRange(opts.Ports)
	if err != nil {
		return nil, err
	}

	s := &SDKScanner{
		opts:    opts,
		reports: make(map[string]*portscan.ScanReport),
		errs:    make(map[string]error),
		done:    make(chan struct{}),
	}
	idx := targets.BuildTargetIndex(opts.Targets)
	if len(idx.Invalid) > 0 {
		return nil, fmt.Errorf("invalid targets: %s", strings.Join(idx.Invalid, ", "))
	}
	for _, host := range idx.Hosts {
		s.targets = append(s.targets, portscan.ScanTarget{Host: host, StartPort: start, EndPort: end})
		s.progs = append(s.progs, portscan.NewProgress())
	}
	if len(s.targets) == 0 {
		return nil, portscan.ErrEmptyHost
	}

	if opts.EnableStream {
		buf := opts.StreamBuffer
		if buf < 0 {
			buf = 0
		}
		s.resultChan = make(chan SDKResult, buf)
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s, nil
}

// Run scans every target and blocks until done. A scanner runs once.
func (s *SDKScanner) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("scanner already started")
	}
	s.run()
	return s.runErr
}

// RunAsync starts the scan in the background; use Wait or ResultChan to
// follow it.
func (s *SDKScanner) RunAsync() error {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("scanner already started")
	}
	go s.run()
	return nil
}

// Wait blocks until a started scan has finished.
func (s *SDKScanner) Wait() error {
	if !s.started.Load() {
		return errors.New("scanner not started")
	}
	<-s.done
	return s.runErr
}

func (s *SDKScanner) run() {
	defer close(s.done)
	if s.resultChan != nil {
		defer close(s.resultChan)
	}

	swg := sizedwaitgroup.New(s.opts.TargetConcurrency)
	for i := range s.targets {
		if s.ctx.Err() != nil {
			break
		}
		swg.Add()
		go func(t portscan.ScanTarget, p *portscan.Progress) {
			defer swg.Done()
			rep, err := s.scanOne(t, p)
			s.mu.Lock()
			if err != nil {
				s.errs[t.Host] = err
			} else {
				s.reports[t.Host] = rep
			}
			s.mu.Unlock()
		}(s.targets[i], s.progs[i])
	}
	swg.Wait()

	if err := s.ctx.Err(); err != nil {
		s.runErr = fmt.Errorf("%w: %w", portscan.ErrCanceled, err)
	}
}

func (s *SDKScanner) scanOne(t portscan.ScanTarget, p *portscan.Progress) (*portscan.ScanReport, error) {
	host := t.Host
	opt := &portscan.Options{
		Workers: s.opts.Workers,
		Timeout: time.Duration(s.opts.Timeout) * time.Millisecond,
		Proxy:   s.opts.Proxy,
		Debug:   s.opts.Debug,
		OnResult: func(r portscan.PortResult) {
			if r.Status == portscan.StatusOpen && s.OnPort != nil {
				s.OnPort(host, r.Port)
			}
			if s.resultChan != nil {
				select {
				case s.resultChan <- SDKResult{Host: host, PortResult: r}:
				case <-s.ctx.Done():
				}
			}
		},
	}
	scanner, err := portscan.NewScanner(opt)
	if err != nil {
		return nil, err
	}
	return scanner.Scan(s.ctx, t, p)
}

// ResultChan is nil unless EnableStream is set. It is closed when the scan ends.
func (s *SDKScanner) ResultChan() <-chan SDKResult {
	return s.resultChan
}

// GetReport returns the finished report of host, nil while it is running or
// when its scan failed.
func (s *SDKScanner) GetReport(host string) *portscan.ScanReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reports[host]
}

// GetReports returns every finished report ordered by host.
func (s *SDKScanner) GetReports() []*portscan.ScanReport {
	s.mu.Lock()
	out := make([]*portscan.ScanReport, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Host < out[j].Host })
	return out
}

// GetErrors returns the hosts whose scan failed.
func (s *SDKScanner) GetErrors() map[string]error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]error, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

func (s *SDKScanner) GetOpenPorts() map[string][]int {
	out := make(map[string][]int)
	for _, r := range s.GetReports() {
		if open := r.Open(); len(open) > 0 {
			out[r.Host] = open
		}
	}
	return out
}

// GetProgress is the percentage of probed ports over all targets.
func (s *SDKScanner) GetProgress() float64 {
	var curr, total uint64
	for i, t := range s.targets {
		curr += s.progs[i].Current()
		total += uint64(t.Total())
	}
	if total == 0 {
		return 0
	}
	return float64(curr) * 100 / float64(total)
}

// Stop cancels the scan; Run returns ErrCanceled.
func (s *SDKScanner) Stop() {
	s.cancel()
}

// Close stops the scan and waits for it to return.
func (s *SDKScanner) Close() {
	s.cancel()
	if s.started.Load() {
		<-s.done
	}
}
