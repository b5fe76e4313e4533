// Package metricsserver serves the exporter's HTTP endpoints.
package metricsserver

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aalvaropc/pdu-exporter/internal/buildinfo"
	"github.com/aalvaropc/pdu-exporter/internal/domain"
)

const (
	MetricsPath = "/metrics"
	HealthPath  = "/healthz"

	shutdownTimeout = 5 * time.Second
)

var landing = template.Must(template.New("landing").Parse(`<!doctype html>
<html><head><title>{{.Name}}</title></head>
<body>
<h1>{{.Name}}</h1>
<p>{{.Version}} polling <code>{{.Target}}</code></p>
<p><a href="{{.MetricsPath}}">Metrics</a></p>
</body></html>
`))

type Server struct {
	srv    *http.Server
	log    *slog.Logger
	target string
}

// New builds a server exposing the gatherer on MetricsPath.
func New(addr string, g prometheus.Gatherer, target string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{log: log, target: target}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(g),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(g, promhttp.HandlerOpts{
		ErrorLog:      slog.NewLogLogger(s.log.Handler(), slog.LevelError),
		ErrorHandling: promhttp.ContinueOnError,
	}))
	mux.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = landing.Execute(w, map[string]string{
			"Name":        buildinfo.Name,
			"Version":     buildinfo.Version,
			"Target":      s.target,
			"MetricsPath": MetricsPath,
		})
	})
	return mux
}

// Listen binds the socket so bind errors surface before polling starts.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "metricsserver.listen",
			Kind: domain.KindExecution,
			Path: s.srv.Addr,
			Err:  err,
		}
	}
	return ln, nil
}

// Serve runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server.listening", "addr", ln.Addr().String(), "path", MetricsPath)
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return &domain.OpError{Op: "metricsserver.serve", Kind: domain.KindExecution, Err: err}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metricsserver.shutdown: %w", err)
	}
	s.log.Info("server.stopped")
	return nil
}
