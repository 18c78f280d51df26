package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ib-77/navload/internal/catalog"
	"github.com/ib-77/navload/internal/config"
	"github.com/ib-77/navload/internal/logger"
	"github.com/ib-77/navload/pkg/navload/guard"
	navprom "github.com/ib-77/navload/pkg/navload/metrics/prometheus"
	"github.com/ib-77/navload/pkg/navload/nav"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

// InitLogger initializes the process logger from the loaded configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// demo is one storefront mounted on one router.
type demo struct {
	catalog  *catalog.Catalog
	router   *nav.Router
	guard    *guard.Guard
	registry *prometheus.Registry
}

func newDemo(cfg *config.Config, opts ...nav.Option) (*demo, error) {
	mode, err := cfg.CommitMode()
	if err != nil {
		return nil, err
	}

	d := &demo{catalog: catalog.New(catalog.Options{Latency: cfg.Demo.Latency, Commit: mode})}
	if cfg.Metrics.Enabled {
		d.registry = prometheus.NewRegistry()
		opts = append(opts, nav.WithMetrics(navprom.New(d.registry)))
	}
	d.router = nav.New(opts...)
	d.guard = d.catalog.Register(guard.New(d.router))
	return d, nil
}

// navigate runs one navigation and prints its outcome and the visible state.
func (d *demo) navigate(ctx context.Context, w io.Writer, raw string) error {
	loc, err := nav.ParseLocation(raw)
	if err != nil {
		return err
	}

	start := time.Now()
	to, err := d.guard.Navigate(ctx, loc)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		fmt.Fprintf(w, "%s -> failed after %s: %v\n", raw, elapsed, err)
		return err
	}

	fmt.Fprintf(w, "%s -> %s (%s)\n", raw, to, elapsed)
	for _, line := range d.catalog.Describe(ctx, d.router) {
		fmt.Fprintf(w, "  %s\n", line)
	}
	return nil
}

// dumpMetrics writes the collected metrics in the Prometheus text format.
func (d *demo) dumpMetrics(w io.Writer) error {
	if d.registry == nil {
		return nil
	}
	families, err := d.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// serveMetrics exposes the registry on addr until ctx ends.
func (d *demo) serveMetrics(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Get().Info("serving metrics", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
