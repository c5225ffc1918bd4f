package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/goflags"
	"github.com/zan8in/tcpscan/pkg/portscan"
	"github.com/zan8in/tcpscan/pkg/targets"
	"github.com/zan8in/tcpscan/pkg/utils"
)

type Options struct {
	// tcpscan-config.yaml configuration file
	Config *Config

	// ConfigFile overrides ~/.config/tcpscan/tcpscan-config.yaml
	ConfigFile string

	// Target hosts to scan, comma separated
	Target string

	// TargetsFilePath specifies the targets from a file to scan.
	TargetsFilePath string

	// Targets is the deduplicated list built from Target and TargetsFilePath
	Targets utils.StringSlice

	// Port range, "80" or "1-1024"
	Ports string

	// Workers per target
	Workers int

	// Per-probe timeout in milliseconds
	Timeout int

	// Number of targets scanned at the same time
	TargetConcurrency int

	// socks5:// or http:// proxy
	Proxy string

	// output file, .json or .csv
	Output string

	// write a time-stamped json/csv file under ./reports
	JsonExport bool
	CsvExport  bool

	// only show open ports in the table
	OpenOnly bool

	// no progress if silent is true
	Silent bool

	Debug bool

	// start the HTTP API on this address instead of scanning
	Web string

	// start the HTTP API on the server address from the config file
	Serve bool
}

// ParseOptions parses the command line and merges it with the config file.
func ParseOptions() (*Options, error) {
	options := &Options{}

	flagSet := goflags.NewFlagSet()
	flagSet.SetDescription(`tcpscan is a concurrent TCP connect port scanner`)

	flagSet.CreateGroup("input", "Target",
		flagSet.StringVarP(&options.Target, "target", "t", "", "target hosts to scan, comma separated"),
		flagSet.StringVarP(&options.TargetsFilePath, "target-file", "T", "", "path to file containing a list of target hosts to scan (one per line)"),
	)

	flagSet.CreateGroup("scan", "Scan",
		flagSet.StringVarP(&options.Ports, "port", "p", "", "port range to scan, eg: -p 1-1024 (default from config, 1-1024)"),
		flagSet.IntVarP(&options.Workers, "workers", "c", 0, "number of workers per target (default from config, 10)"),
		flagSet.IntVar(&options.Timeout, "timeout", 0, "connect timeout in milliseconds (default from config, 1000)"),
		flagSet.IntVarP(&options.TargetConcurrency, "target-concurrency", "tc", 0, "number of targets scanned at the same time (default from config, 4)"),
		flagSet.StringVar(&options.Proxy, "proxy", "", "socks5:// or http:// proxy for all probes"),
	)

	flagSet.CreateGroup("output", "Output",
		flagSet.StringVarP(&options.Output, "output", "o", "", "write results to a .json or .csv file, eg: -o result.csv"),
		flagSet.BoolVarP(&options.JsonExport, "json-export", "je", false, "write results to ./reports/<time>.json"),
		flagSet.BoolVarP(&options.CsvExport, "csv-export", "ce", false, "write results to ./reports/<time>.csv"),
		flagSet.BoolVarP(&options.OpenOnly, "open-only", "oo", false, "only show open ports in the table"),
	)

	flagSet.CreateGroup("server", "Server",
		flagSet.StringVar(&options.Web, "web", "", "start the HTTP API on the given address, eg: -web 127.0.0.1:16868"),
		flagSet.BoolVar(&options.Serve, "serve", false, "start the HTTP API on the server address from the config file"),
	)

	flagSet.CreateGroup("debug", "Debug",
		flagSet.StringVar(&options.ConfigFile, "config", "", "path to the tcpscan-config.yaml file"),
		flagSet.BoolVar(&options.Silent, "silent", false, "no progress, only results"),
		flagSet.BoolVar(&options.Debug, "debug", false, "show debug output"),
	)

	if err := flagSet.Parse(); err != nil {
		return nil, errors.Wrap(err, "could not parse flags")
	}

	config, err := NewConfig(options.ConfigFile)
	if err != nil {
		return nil, err
	}
	options.Config = config
	options.ApplyConfig()

	if err := options.Verify(); err != nil {
		return nil, err
	}
	return options, nil
}

// ApplyConfig fills every unset option from the config file.
func (o *Options) ApplyConfig() {
	c := o.Config
	if c == nil {
		c = DefaultConfig()
		o.Config = c
	}
	if o.Ports == "" {
		o.Ports = c.Ports
	}
	if o.Workers == 0 {
		o.Workers = c.Workers
	}
	if o.Timeout == 0 {
		o.Timeout = c.TimeoutMs
	}
	if o.TargetConcurrency == 0 {
		o.TargetConcurrency = c.TargetConcurrency
	}
	if o.Proxy == "" {
		o.Proxy = c.Proxy
	}
	if o.Serve && o.Web == "" {
		o.Web = c.ServerAddress
	}
}

// Verify checks the merged options.
func (o *Options) Verify() error {
	if err := portscan.ValidateWorkers(o.Workers); err != nil {
		return err
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %dms", o.Timeout)
	}
	if o.TargetConcurrency < 1 {
		return fmt.Errorf("target concurrency must be positive, got %d", o.TargetConcurrency)
	}
	if _, _, err := portscan.ParsePortRange(o.Ports); err != nil {
		return err
	}
	if o.Proxy != "" {
		if _, err := ValidateProxyURL(o.Proxy); err != nil {
			return err
		}
	}
	if o.Output != "" {
		switch strings.ToLower(filepath.Ext(o.Output)) {
		case ".json", ".csv":
		default:
			return fmt.Errorf("unsupported output file %s, use .json or .csv", o.Output)
		}
	}
	if o.Web == "" && len(o.Target) == 0 && len(o.TargetsFilePath) == 0 {
		return errors.New("either `target` or `target-file` must be set")
	}
	return nil
}

// LoadTargets builds Targets from the -t and -T flags. CIDRs and IP ranges
// are expanded and duplicates dropped.
func (o *Options) LoadTargets() error {
	seeds := strings.Split(o.Target, ",")
	if len(o.TargetsFilePath) > 0 {
		allTargets, err := utils.ReadFileLineByLine(o.TargetsFilePath)
		if err != nil {
			return errors.Wrap(err, "could not read target file")
		}
		seeds = append(seeds, allTargets...)
	}

	idx := targets.BuildTargetIndex(seeds)
	if len(idx.Invalid) > 0 {
		return fmt.Errorf("invalid targets: %s", strings.Join(idx.Invalid, ", "))
	}
	for _, h := range idx.Hosts {
		o.Targets.Set(h)
	}
	if len(o.Targets) == 0 {
		return errors.New("target not found")
	}
	return nil
}

// TimeoutDuration is the per-probe timeout.
func (o *Options) TimeoutDuration() time.Duration {
	return time.Duration(o.Timeout) * time.Millisecond
}

// ScanOptions builds the core scanner options.
func (o *Options) ScanOptions() *portscan.Options {
	opts := portscan.DefaultOptions()
	opts.Workers = o.Workers
	opts.Timeout = o.TimeoutDuration()
	opts.Proxy = o.Proxy
	opts.Debug = o.Debug
	return opts
}
