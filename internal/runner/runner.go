package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/remeh/sizedwaitgroup"
	"github.com/zan8in/gologger"
	"github.com/zan8in/tcpscan/pkg/config"
	"github.com/zan8in/tcpscan/pkg/log"
	"github.com/zan8in/tcpscan/pkg/portscan"
	"github.com/zan8in/tcpscan/pkg/progress"
	"github.com/zan8in/tcpscan/pkg/report"
	"github.com/zan8in/tcpscan/pkg/web"
	"go.uber.org/zap"
)

type Runner struct {
	options *config.Options
	scanner *portscan.Scanner
	reports []*report.Report

	// table output, stdout unless replaced by tests
	out io.Writer
}

// targetCounter reports the full port count of a target before its scan
// starts, so the shared bar never moves backwards.
type targetCounter struct {
	p     *portscan.Progress
	total uint64
}

func (c targetCounter) Current() uint64 { return c.p.Current() }
func (c targetCounter) Total() uint64   { return c.total }

func New(options *config.Options) (*Runner, error) {
	runner := &Runner{options: options, out: os.Stdout}

	logFile := ""
	if options.Config != nil {
		logFile = options.Config.LogFile
	}
	log.Init(logFile, options.Debug)

	if options.Web != "" {
		return runner, nil
	}

	if err := options.LoadTargets(); err != nil {
		return nil, err
	}
	log.Debug("targets loaded", zap.Stringer("targets", options.Targets))

	if options.Proxy != "" {
		if err := config.CheckProxy(options.Proxy, options.TimeoutDuration()); err != nil {
			return nil, err
		}
	}

	scanner, err := portscan.NewScanner(options.ScanOptions())
	if err != nil {
		return nil, err
	}
	runner.scanner = scanner

	// output files
	if options.Output != "" {
		r, err := report.NewReport(options.Output, report.FormatJSON)
		if err != nil {
			return nil, err
		}
		runner.reports = append(runner.reports, r)
	}
	if options.JsonExport {
		r, err := report.NewReport("", report.FormatJSON)
		if err != nil {
			return nil, err
		}
		runner.reports = append(runner.reports, r)
	}
	if options.CsvExport {
		r, err := report.NewReport("", report.FormatCSV)
		if err != nil {
			return nil, err
		}
		runner.reports = append(runner.reports, r)
	}

	return runner, nil
}

// Run scans every target, or serves the web API when -web is set.
func (runner *Runner) Run(ctx context.Context) error {
	defer log.Sync()

	options := runner.options
	if options.Web != "" {
		log.Info("web mode", zap.String("addr", options.Web))
		return web.StartServer(ctx, options.Web, *options.ScanOptions())
	}

	if !options.Silent {
		ShowBanner2()
		gologger.Info().Msgf("Targets loaded for scan: %d", len(options.Targets))
		gologger.Info().Msgf("Ports: %s, workers: %d, timeout: %dms", options.Ports, options.Workers, options.Timeout)
		for _, r := range runner.reports {
			gologger.Info().Msgf("Creating output file: %s", r.ReportFile)
		}
	}

	reports, err := runner.scanTargets(ctx)
	if err != nil {
		return err
	}

	sort.SliceStable(reports, func(i, j int) bool { return reports[i].Host < reports[j].Host })
	for _, rep := range reports {
		report.PrintTable(runner.out, rep, options.OpenOnly)
	}

	for _, r := range runner.reports {
		for _, rep := range reports {
			r.Append(rep)
		}
		if err := r.Save(); err != nil {
			return err
		}
		gologger.Info().Msgf("Results saved to %s", r.ReportFile)
	}
	return nil
}

func (runner *Runner) scanTargets(ctx context.Context) ([]*portscan.ScanReport, error) {
	options := runner.options
	start, end, err := portscan.ParsePortRange(options.Ports)
	if err != nil {
		return nil, err
	}

	var bar *progress.Bar
	if !options.Silent {
		bar = progress.NewBar(os.Stderr, time.Second)
	}

	targets := make([]portscan.ScanTarget, 0, len(options.Targets))
	progs := make([]*portscan.Progress, 0, len(options.Targets))
	for _, host := range options.Targets {
		t := portscan.ScanTarget{Host: host, StartPort: start, EndPort: end}
		p := portscan.NewProgress()
		targets = append(targets, t)
		progs = append(progs, p)
		if bar != nil {
			bar.Track(targetCounter{p: p, total: uint64(t.Total())})
		}
	}
	if bar != nil {
		bar.Start()
	}

	var (
		mu      sync.Mutex
		reports []*portscan.ScanReport
		failed  int
	)
	swg := sizedwaitgroup.New(options.TargetConcurrency)
	for i := range targets {
		if ctx.Err() != nil {
			break
		}
		swg.Add()
		go func(t portscan.ScanTarget, p *portscan.Progress) {
			defer swg.Done()

			log.Info("scan started", zap.String("host", t.Host), zap.Int("start", t.StartPort), zap.Int("end", t.EndPort))
			rep, err := runner.scanner.Scan(ctx, t, p)
			if err != nil {
				if !errors.Is(err, portscan.ErrCanceled) {
					gologger.Error().Msgf("\r\033[2K%s: %v", t.Host, err)
					log.Error("scan failed", zap.String("host", t.Host), zap.Error(err))
				}
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			log.Info("scan finished", zap.String("host", t.Host), zap.String("id", rep.ID),
				zap.Int("open", rep.Count(portscan.StatusOpen)), zap.Duration("duration", rep.Duration))

			mu.Lock()
			reports = append(reports, rep)
			mu.Unlock()
		}(targets[i], progs[i])
	}
	swg.Wait()

	if ctx.Err() != nil {
		if bar != nil {
			bar.Stop(false)
		}
		log.Warn("scan canceled", zap.Int("finished", len(reports)))
		return nil, fmt.Errorf("%w: %w", portscan.ErrCanceled, ctx.Err())
	}
	if bar != nil {
		bar.Stop(true)
	}
	if failed == len(targets) {
		return nil, errors.New("all targets failed")
	}
	return reports, nil
}
