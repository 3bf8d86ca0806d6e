// check.go declares 'conductor check', a drift guard comparing the current layout with a recorded one.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/example/conductor/internal/config"
	"github.com/example/conductor/pkg/compose"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

const defaultLayoutFile = "conductor.layout.yaml"

var errLayoutDrift = errors.New("layout drift detected")

func newCheckCommand(global *globalOptions) *cobra.Command {
	opts := config.NewOptions()
	layoutPath := defaultLayoutFile
	write := false
	cmd := &cobra.Command{
		Use:   "check [SERVICES...]",
		Short: "Compare the current layout with a recorded layout file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ColorMode = global.colorMode
			if err := opts.Validate(); err != nil {
				return err
			}
			return runCheck(cmd, opts, args, layoutPath, write)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.AddFlags(cmd)
	cmd.Flags().StringVar(&layoutPath, "layout", layoutPath, "Recorded layout file")
	cmd.Flags().BoolVar(&write, "write", false, "Record the current layout instead of comparing")
	return cmd
}

func runCheck(cmd *cobra.Command, opts *config.Options, services []string, layoutPath string, write bool) error {
	ctx := cmd.Context()
	log := logr.FromContextOrDiscard(ctx)
	current, err := planLayout(ctx, opts, services)
	if err != nil {
		return err
	}
	if write {
		if err := compose.WriteLayoutFile(layoutPath, current); err != nil {
			return err
		}
		log.Info("recorded layout", "path", layoutPath, "services", len(current.Entries))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", layoutPath)
		return nil
	}
	if _, err := os.Stat(layoutPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("layout file %s not found (run with --write to create it)", layoutPath)
		}
		return err
	}
	recorded, err := compose.ReadLayoutFile(layoutPath)
	if err != nil {
		return err
	}
	diff, err := compose.DiffLayout(recorded, current)
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "layout matches %s\n", layoutPath)
		return nil
	}
	writeDiff(cmd.OutOrStdout(), diff, colorEnabled(opts.ColorMode, cmd.OutOrStdout()))
	return fmt.Errorf("%w against %s", errLayoutDrift, layoutPath)
}
