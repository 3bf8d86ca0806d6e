package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/example/conductor/internal/config"
	"github.com/example/conductor/pkg/compose"
	"github.com/go-logr/logr"
)

var composeDefaultFilenames = []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"}

func resolveComposeFiles(files []string) ([]string, error) {
	if len(files) > 0 {
		return files, nil
	}
	detected, err := findComposeFiles(".")
	if err != nil {
		return nil, err
	}
	if len(detected) == 0 {
		return nil, errors.New("no compose files specified and none found in the current directory")
	}
	return detected, nil
}

func findComposeFiles(base string) ([]string, error) {
	detected := make([]string, 0)
	for _, candidate := range composeDefaultFilenames {
		path := candidate
		if base != "" && base != "." {
			path = filepath.Join(base, candidate)
		}
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		detected = append(detected, abs)
	}
	return detected, nil
}

// planLayout loads the compose project described by opts and resolves the
// build directory of the requested services.
func planLayout(ctx context.Context, opts *config.Options, services []string) (*compose.Layout, error) {
	files, err := resolveComposeFiles(opts.Files)
	if err != nil {
		return nil, err
	}
	log := logr.FromContextOrDiscard(ctx)
	log.V(1).Info("loading compose project", "files", files)
	project, err := compose.LoadComposeProject(files, opts.ProjectName, opts.Profiles)
	if err != nil {
		return nil, err
	}
	return compose.PlanLayout(ctx, project, compose.LayoutOptions{
		Services:    services,
		Parallelism: opts.Parallelism,
	})
}
