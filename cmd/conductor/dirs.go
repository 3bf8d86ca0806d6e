// dirs.go declares 'conductor dirs', which prints the local build directory of every compose service.
package main

import (
	"github.com/example/conductor/internal/config"
	"github.com/spf13/cobra"
)

func newDirsCommand(global *globalOptions) *cobra.Command {
	opts := config.NewOptions()
	cmd := &cobra.Command{
		Use:   "dirs [SERVICES...]",
		Short: "Show the local build directory of each compose service",
		Long:  "Resolve every selected service's build context to a directory under the project root. Services without a build section are listed as skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ColorMode = global.colorMode
			if err := opts.Validate(); err != nil {
				return err
			}
			layout, err := planLayout(cmd.Context(), opts, args)
			if err != nil {
				return err
			}
			return renderLayout(cmd.OutOrStdout(), rootedLayout(layout, opts), opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.AddFlags(cmd)
	return cmd
}
