package commands

import (
	"fmt"
	"os"

	"github.com/ib-77/navload/internal/catalog"
	"github.com/ib-77/navload/pkg/navload/nav"
	"github.com/spf13/cobra"
)

var renderOut string

var renderCmd = &cobra.Command{
	Use:   "render <location>",
	Short: "Render a location in server mode and write its snapshot",
	Long: `Navigate to the location on a server-mode router. Every loader error
fails the render, client-only loaders are skipped, and the committed value of
each keyed loader is written to a TOML snapshot that hydrate can replay.

Examples:
  navdemo render "/product?id=1"
  navdemo render "/account?user=ada" --out /tmp/account.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "snapshot file (default: demo.snapshot)")
}

func runRender(cmd *cobra.Command, args []string) error {
	d, err := newDemo(cfg, nav.WithServerMode(true))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := d.navigate(cmd.Context(), out, args[0]); err != nil {
		return err
	}

	path := renderOut
	if path == "" {
		path = cfg.Demo.Snapshot
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()

	snap := catalog.Snapshot{Path: d.router.Current().String(), Data: d.router.ServerSnapshot()}
	if err := catalog.WriteSnapshot(f, snap); err != nil {
		return err
	}
	fmt.Fprintf(out, "snapshot with %d value(s) written to %s\n", len(snap.Data), path)
	return nil
}
