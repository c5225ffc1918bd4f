package web

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/zan8in/gologger"
	"github.com/zan8in/tcpscan/pkg/log"
	"github.com/zan8in/tcpscan/pkg/portscan"
	"go.uber.org/zap"
)

// Server exposes the scanner over a JWT protected JSON API.
type Server struct {
	password  string
	jwtSecret []byte
	tasks     *TaskManager
	monitor   *SystemMonitor
	limiter   *loginLimiter
}

// NewServer creates a server whose scans default to opt. The access
// password is generated once per process.
func NewServer(opt portscan.Options) *Server {
	return &Server{
		password:  generateRandomPassword(),
		jwtSecret: newJWTSecret(),
		tasks:     NewTaskManager(opt, 0),
		monitor:   NewSystemMonitor(),
		limiter:   newLoginLimiter(30*time.Minute, 10),
	}
}

func (s *Server) Password() string {
	return s.password
}

func (s *Server) Handler() http.Handler {
	return s.setupHandler()
}

// Close stops every running scan and the monitor.
func (s *Server) Close() {
	s.tasks.Close()
	s.monitor.Stop()
}

// StartServer serves the API on addr until ctx is done.
func StartServer(ctx context.Context, addr string, opt portscan.Options) error {
	s := NewServer(opt)
	defer s.Close()

	gologger.Info().Msgf("Web access password: %s", s.Password())

	s.monitor.Start(3 * time.Second)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	gologger.Info().Msgf("Web server listening on: http://%s", addr)
	log.Info("web server started", zap.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "web server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("web server stopping", zap.String("addr", addr))
	return srv.Shutdown(shutdownCtx)
}
