package portscan

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/zan8in/gologger"
)

// Scanner is the main entry point for port scanning. A Scanner holds no
// per-scan state and may run several scans at once.
type Scanner struct {
	options *Options
	prober  *Prober
}

// NewScanner creates a new scanner instance
func NewScanner(opt *Options) (*Scanner, error) {
	if opt == nil {
		opt = DefaultOptions()
	}
	if err := ValidateWorkers(opt.Workers); err != nil {
		return nil, err
	}
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}

	prober, err := NewProber(opt.Timeout, opt.Proxy)
	if err != nil {
		return nil, err
	}

	return &Scanner{
		options: opt,
		prober:  prober,
	}, nil
}

// Scan probes every port of target and returns the results ordered by port.
// progress may be nil; when given it is reset and updated after each probe.
// On cancellation Scan returns ErrCanceled and no report.
func (s *Scanner) Scan(ctx context.Context, target ScanTarget, progress *Progress) (*ScanReport, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = NewProgress()
	}
	progress.reset(target.Total())

	if err := ctx.Err(); err != nil {
		return nil, canceled(err)
	}

	// resolve once for the whole range; a proxy resolves remotely
	address := target.Host
	if !s.prober.Proxied() {
		addr, err := resolveHost(ctx, target.Host)
		if err != nil {
			if ctx.Err() != nil {
				return nil, canceled(ctx.Err())
			}
			return nil, err
		}
		address = addr
	}

	startedAt := time.Now()
	jobs := Partition(target.StartPort, target.EndPort, s.options.Workers)

	if s.options.Debug {
		gologger.Debug().Msgf("%-18s | %-9s | host=%s addr=%s ports=%d-%d workers=%d", "Port scan", "started",
			target.Host, address, target.StartPort, target.EndPort, s.options.Workers)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([]PortResult, 0, target.Total())
	)

	poolSize := s.options.Workers
	if len(jobs) < poolSize {
		poolSize = len(jobs)
	}
	pool, err := ants.NewPoolWithFunc(poolSize, func(i interface{}) {
		defer wg.Done()
		job := i.(ScanJob)

		local := s.runJob(ctx, address, job, progress)

		mu.Lock()
		results = append(results, local...)
		mu.Unlock()
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not create worker pool")
	}
	defer pool.Release()

	for _, job := range jobs {
		if job.Empty() {
			continue
		}
		wg.Add(1)
		if err := pool.Invoke(job); err != nil {
			wg.Done()
			wg.Wait()
			return nil, errors.Wrapf(err, "could not dispatch job %d", job.ID)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		if s.options.Debug {
			gologger.Debug().Msgf("%-18s | %-9s | host=%s probed=%d/%d", "Port scan", "canceled",
				target.Host, progress.Current(), progress.Total())
		}
		return nil, canceled(err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Port < results[j].Port
	})

	report := &ScanReport{
		ID:        xid.New().String(),
		Host:      target.Host,
		Address:   address,
		StartPort: target.StartPort,
		EndPort:   target.EndPort,
		Workers:   s.options.Workers,
		Results:   results,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
	}

	if s.options.Debug {
		gologger.Debug().Msgf("%-18s | %-9s | host=%s open=%d duration=%s", "Port scan", "completed",
			target.Host, report.Count(StatusOpen), report.Duration.Truncate(time.Millisecond))
	}
	return report, nil
}

// runJob probes the ports of one job in ascending order into a local buffer.
func (s *Scanner) runJob(ctx context.Context, address string, job ScanJob, progress *Progress) []PortResult {
	local := make([]PortResult, 0, job.Len())
	for port := job.Lo; port < job.Hi; port++ {
		if ctx.Err() != nil {
			return local
		}

		res := s.prober.Probe(ctx, address, port)
		local = append(local, res)
		progress.inc()

		if s.options.OnResult != nil && ctx.Err() == nil {
			s.options.OnResult(res)
		}
	}
	return local
}

func canceled(err error) error {
	return fmt.Errorf("%w: %w", ErrCanceled, err)
}
