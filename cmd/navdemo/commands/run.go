package commands

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	continueOnError bool
	concurrent      bool
)

var defaultTour = []string{
	"/",
	"/product?id=1",
	"/product?id=2",
	"/account",
	"/account?user=ada",
	"/product?id=404",
}

var runCmd = &cobra.Command{
	Use:   "run [location...]",
	Short: "Navigate through a list of locations on a client router",
	Long: `Navigate through the given locations (or a default tour of the
storefront) and print what each navigation made visible.

With --concurrent every navigation starts without waiting for the previous
one; each new navigation aborts the one still pending, so all but the last to
start report an abort.

When metrics.listen is set, /metrics keeps being served after the tour until
the process is interrupted.

Examples:
  navdemo run
  navdemo run "/product?id=3" "/account?user=grace"
  NAVDEMO_DEMO_LATENCY=1s navdemo run --concurrent "/product?id=1" "/product?id=2"`,
	RunE: runTour,
}

func init() {
	runCmd.Flags().BoolVar(&continueOnError, "continue", true, "keep navigating after a failed navigation")
	runCmd.Flags().BoolVar(&concurrent, "concurrent", false, "start all navigations at once")
}

func runTour(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(args) == 0 {
		args = defaultTour
	}

	d, err := newDemo(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if concurrent {
		runConcurrent(ctx, out, d, args)
	} else {
		for _, raw := range args {
			if err := d.navigate(ctx, out, raw); err != nil && !continueOnError {
				return err
			}
		}
	}

	if cfg.Metrics.Listen != "" {
		return d.serveMetrics(ctx, cfg.Metrics.Listen)
	}
	return d.dumpMetrics(out)
}

// runConcurrent starts every navigation at once and prints in argument order.
func runConcurrent(ctx context.Context, w io.Writer, d *demo, args []string) {
	outputs := make([]bytes.Buffer, len(args))
	var wg sync.WaitGroup
	for i, raw := range args {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = d.navigate(ctx, &outputs[i], raw)
		}()
	}
	wg.Wait()
	for i := range outputs {
		_, _ = outputs[i].WriteTo(w)
	}
}
