// File: internal/config/config.go
// Brief: Internal config package implementation for 'config'.

// Package config defines the flag plumbing and runtime options shared by
// conductor's layout commands, translating Cobra/Viper flag values into a
// strongly typed struct that the compose planner consumes.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options holds the CLI configuration used to locate compose files and render layouts.
type Options struct {
	Files        []string
	ProjectName  string
	Profiles     []string
	OutputFormat string
	Root         string
	Parallelism  int
	ColorMode    string
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		OutputFormat: OutputTable,
		ColorMode:    ColorAuto,
	}
}

// AddFlags binds configuration flags to the provided Cobra command.
func (o *Options) AddFlags(cmd *cobra.Command) {
	o.BindFlags(cmd.Flags())
}

// BindFlags attaches layout flags to an arbitrary FlagSet and returns the flag names for further customization.
func (o *Options) BindFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.StringArrayVarP(&o.Files, "file", "f", nil, "Specify an additional compose file (repeatable)")
	names = append(names, "file")
	fs.StringVar(&o.ProjectName, "project-name", "", "Override the compose project name")
	names = append(names, "project-name")
	fs.StringArrayVar(&o.Profiles, "profile", nil, "Enable an optional profile")
	names = append(names, "profile")
	fs.StringVarP(&o.OutputFormat, "output", "o", OutputTable, "Output format: table, yaml, json")
	names = append(names, "output")
	fs.StringVar(&o.Root, "root", "", "Project root to prefix onto every build directory (defaults to relative paths)")
	names = append(names, "root")
	fs.IntVar(&o.Parallelism, "parallel", 0, "Number of services resolved concurrently (0 uses the CPU count)")
	names = append(names, "parallel")
	return names
}

// Validate normalizes option values and rejects incoherent combinations.
func (o *Options) Validate() error {
	o.OutputFormat = strings.ToLower(strings.TrimSpace(o.OutputFormat))
	if o.OutputFormat == "" {
		o.OutputFormat = OutputTable
	}
	switch o.OutputFormat {
	case OutputTable, OutputYAML, OutputJSON:
	default:
		return fmt.Errorf("unsupported output %q (expected table, yaml, or json)", o.OutputFormat)
	}

	o.ColorMode = strings.ToLower(strings.TrimSpace(o.ColorMode))
	if o.ColorMode == "" {
		o.ColorMode = ColorAuto
	}
	switch o.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("unsupported color mode %q (expected auto, always, or never)", o.ColorMode)
	}

	if o.Parallelism < 0 {
		return fmt.Errorf("--parallel must be >= 0, got %d", o.Parallelism)
	}

	for i, file := range o.Files {
		expanded, err := expandPath(file)
		if err != nil {
			return err
		}
		if expanded == "" {
			return fmt.Errorf("compose file path cannot be empty")
		}
		o.Files[i] = expanded
	}
	root, err := expandPath(o.Root)
	if err != nil {
		return err
	}
	o.Root = root
	return nil
}

// RootedDir joins a layout directory onto the configured root. Absolute
// directories and an empty root leave dir untouched; nothing is cleaned.
func (o *Options) RootedDir(dir string) string {
	if o.Root == "" || filepath.IsAbs(dir) {
		return dir
	}
	return strings.TrimRight(o.Root, string(filepath.Separator)) + string(filepath.Separator) + dir
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return expanded, nil
}
