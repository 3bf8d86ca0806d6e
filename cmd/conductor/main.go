// main.go bootstraps conductor: it builds the root Cobra command, layers env and config-file overrides, and executes with signal-aware contexts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/example/conductor/internal/config"
	"github.com/example/conductor/internal/logging"
	"github.com/example/conductor/pkg/compose"
	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type globalOptions struct {
	logLevel   string
	configPath string
	colorMode  string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(os.Stderr, err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	global := &globalOptions{logLevel: "info", colorMode: config.ColorAuto}
	cmd := &cobra.Command{
		Use:           "conductor",
		Short:         "Map compose build contexts onto the local project layout",
		Long:          "conductor reads compose files and reports where each service's source lives on disk: Git contexts under src/, directory contexts under pods/.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := applyConfig(cmd, global.configPath); err != nil {
				return err
			}
			logger, err := logging.New(global.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			cmd.SetContext(logr.NewContext(cmd.Context(), logger))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&global.logLevel, "log-level", global.logLevel, "Log level for conductor output (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&global.configPath, "config", "", "Path to a conductor config file (defaults to $XDG_CONFIG_HOME/conductor/config.yaml)")
	cmd.PersistentFlags().StringVar(&global.colorMode, "color", global.colorMode, "Colorize output: auto, always, never")

	cmd.AddCommand(
		newDirsCommand(global),
		newCheckCommand(global),
		newVersionCommand(),
	)
	cmd.Example = `  # Show where every service in ./docker-compose.yml builds from
  conductor dirs

  # Absolute directories for two services, as YAML
  conductor dirs api worker -f pods/docker-compose.yml --root ~/src/project -o yaml

  # Fail when the layout no longer matches the recorded one
  conductor check --layout conductor.layout.yaml`
	return cmd
}

// applyConfig fills flags that were not set on the command line from
// CONDUCTOR_* environment variables and the config file, in that order of precedence.
func applyConfig(cmd *cobra.Command, explicitPath string) error {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("CONDUCTOR")
	v.AutomaticEnv()
	if explicitPath == "" {
		explicitPath = os.Getenv("CONDUCTOR_CONFIG")
	}
	if explicitPath != "" {
		expanded, err := homedir.Expand(explicitPath)
		if err != nil {
			return fmt.Errorf("expand config path: %w", err)
		}
		explicitPath = expanded
	}
	configureConfigFile(v, explicitPath)
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := readConfigFile(v, explicitPath != ""); err != nil {
		return err
	}

	var setErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if setErr != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			if err := sv.Replace(v.GetStringSlice(f.Name)); err != nil {
				setErr = fmt.Errorf("config %s: %w", f.Name, err)
			}
			return
		}
		val := fmt.Sprintf("%v", v.Get(f.Name))
		if val == "" {
			return
		}
		if err := f.Value.Set(val); err != nil {
			setErr = fmt.Errorf("config %s: %w", f.Name, err)
		}
	})
	return setErr
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("config")
	for _, dir := range configSearchDirs() {
		v.AddConfigPath(dir)
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func configSearchDirs() []string {
	added := make(map[string]struct{})
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := added[path]; ok {
			return
		}
		added[path] = struct{}{}
		dirs = append(dirs, path)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		add(filepath.Join(xdg, "conductor"))
	}
	if home, err := homedir.Dir(); err == nil && home != "" {
		add(filepath.Join(home, ".config", "conductor"))
		add(filepath.Join(home, ".conductor"))
	}
	return dirs
}

func handleError(w io.Writer, err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case errors.Is(err, compose.ErrCannotDeriveName):
		message = fmt.Sprintf("%s\nHint: a Git build context must end in a repository name without dots, e.g. https://github.com/org/repo.git.", err)
	case errors.Is(err, compose.ErrLayoutConflict):
		message = fmt.Sprintf("%s\nHint: two repositories share a name; give one service a directory context instead.", err)
	case errors.Is(err, errLayoutDrift):
		message = fmt.Sprintf("%s\nHint: run 'conductor check --write' to record the current layout.", err)
	case errors.Is(err, context.Canceled):
		message = "interrupted"
	}
	red := color.New(color.FgRed, color.Bold)
	fmt.Fprintf(w, "%s %s\n", red.Sprint("Error:"), message)
}
