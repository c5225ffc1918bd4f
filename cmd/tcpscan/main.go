package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/tcpscan/internal/runner"
	"github.com/zan8in/tcpscan/pkg/config"
	"github.com/zan8in/tcpscan/pkg/portscan"
)

func main() {
	options, err := config.ParseOptions()
	if err != nil {
		gologger.Error().Msg(err.Error())
		gologger.Print().Msg(runner.ShowUsage())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := runner.New(options)
	if err != nil {
		gologger.Fatal().Msgf("Could not create runner: %s", err)
	}

	if err := r.Run(ctx); err != nil {
		if errors.Is(err, portscan.ErrCanceled) {
			gologger.Warning().Msg("You pressed Ctrl+C, scan canceled")
			os.Exit(130)
		}
		gologger.Fatal().Msgf("%s", err)
	}
}
