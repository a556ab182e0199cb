package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"filefield/internal/host"
	"filefield/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var checkType string

// checkCmd checks paths without opening the form
var checkCmd = &cobra.Command{
	Use:   "check PATH...",
	Short: "Check whether paths exist for a field type",
	Long: `Runs the same existence check a field runs on every change and prints
one line per path. Exits non-zero when any path is missing.

Example:
  filefield check --type output ./build/report.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkType, "type", "t", "input", "Field type whose rule applies")
}

func runCheck(cmd *cobra.Command, args []string) error {
	caps, err := newCapabilities(cfg)
	if err != nil {
		return err
	}
	return checkPaths(cmd.Context(), caps, checkType, args, cmd.OutOrStdout(), cfg.GetCheckTimeout())
}

// checkPaths checks every path concurrently and prints results in argument order.
func checkPaths(ctx context.Context, caps host.Capabilities, fieldType string, paths []string, out io.Writer, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := logging.Get(logging.CategoryHost)

	results := make([]bool, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range paths {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, timeout)
			defer cancel()
			ok, err := caps.FileExists(cctx, p, fieldType)
			if err != nil {
				return fmt.Errorf("check %s: %w", p, err)
			}
			results[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	missing := 0
	for i, p := range paths {
		status := "exists"
		if !results[i] {
			status = "missing"
			missing++
		}
		fmt.Fprintf(out, "%s\t%s\n", status, p)
	}
	log.Debug("checked", zap.String("type", fieldType), zap.Int("paths", len(paths)), zap.Int("missing", missing))

	if missing > 0 {
		return fmt.Errorf("%d of %d path(s) missing", missing, len(paths))
	}
	return nil
}
