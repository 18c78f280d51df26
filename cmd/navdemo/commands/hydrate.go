package commands

import (
	"fmt"
	"os"

	"github.com/ib-77/navload/internal/catalog"
	"github.com/ib-77/navload/pkg/navload/nav"
	"github.com/spf13/cobra"
)

var hydrateIn string

var hydrateCmd = &cobra.Command{
	Use:   "hydrate [location...]",
	Short: "Replay a server snapshot on a client router",
	Long: `Install a snapshot written by render as initial data, navigate to the
rendered location, then to any further locations. Loaders found in the
snapshot do not fetch on the first navigation; the fetch counts show it.

Examples:
  navdemo render "/product?id=1" && navdemo hydrate
  navdemo hydrate --in /tmp/account.toml "/product?id=2"`,
	RunE: runHydrate,
}

func init() {
	hydrateCmd.Flags().StringVarP(&hydrateIn, "in", "i", "", "snapshot file (default: demo.snapshot)")
}

func runHydrate(cmd *cobra.Command, args []string) error {
	path := hydrateIn
	if path == "" {
		path = cfg.Demo.Snapshot
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	snap, err := catalog.ReadSnapshot(f)
	f.Close()
	if err != nil {
		return err
	}

	d, err := newDemo(cfg, nav.WithInitialData(snap.Data))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, raw := range append([]string{snap.Path}, args...) {
		if err := d.navigate(cmd.Context(), out, raw); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "fetches:")
	for _, key := range []string{catalog.KeySession, catalog.KeyAccount, catalog.KeyProduct, catalog.KeyStock, catalog.KeyReviews} {
		fmt.Fprintf(out, "  %s: %d\n", key, d.catalog.Calls(key))
	}
	return nil
}
