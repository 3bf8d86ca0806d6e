package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	composetypes "github.com/compose-spec/compose-go/v2/types"
)

// LoadComposeProject loads compose files without resolving relative paths, so
// directory build contexts reach the mapper exactly as they were written.
// The project name comes from projectName, then COMPOSE_PROJECT_NAME, then a
// top-level name: in the files, and finally the first file's directory.
func LoadComposeProject(files []string, projectName string, profiles []string) (*composetypes.Project, error) {
	if len(files) == 0 {
		return nil, errors.New("no compose files specified")
	}
	normalized, err := absolutePaths(files)
	if err != nil {
		return nil, err
	}

	env := make(composetypes.Mapping)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		env[key] = value
	}

	configFiles := make([]composetypes.ConfigFile, 0, len(normalized))
	for _, path := range normalized {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read compose file %s: %w", path, err)
		}
		configFiles = append(configFiles, composetypes.ConfigFile{Filename: path, Content: data})
	}

	details := composetypes.ConfigDetails{
		WorkingDir:  filepath.Dir(normalized[0]),
		ConfigFiles: configFiles,
		Environment: env,
	}

	if projectName == "" {
		projectName = env["COMPOSE_PROJECT_NAME"]
	}
	imperative := projectName != ""
	if !imperative {
		projectName = loader.NormalizeProjectName(filepath.Base(details.WorkingDir))
	}

	project, err := loader.Load(details, func(o *loader.Options) {
		o.ResolvePaths = false
		o.SetProjectName(projectName, imperative)
		if len(profiles) > 0 {
			o.Profiles = append(o.Profiles, profiles...)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("load compose project: %w", err)
	}
	return project, nil
}

// SelectServices returns the requested services plus everything they depend
// on, sorted by name. An empty request selects every service in the project.
func SelectServices(project *composetypes.Project, requested []string) ([]string, error) {
	if project == nil {
		return nil, errors.New("compose project is required")
	}
	visited := make(map[string]bool)
	var visit func(string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		svc, ok := project.Services[name]
		if !ok {
			return fmt.Errorf("unknown compose service %q (available: %s)", name, strings.Join(serviceNames(project), ", "))
		}
		visited[name] = true
		for dep := range svc.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}

	names := requested
	if len(names) == 0 {
		names = serviceNames(project)
	}
	for _, name := range names {
		if err := visit(strings.TrimSpace(name)); err != nil {
			return nil, err
		}
	}

	selection := make([]string, 0, len(visited))
	for name := range visited {
		selection = append(selection, name)
	}
	sort.Strings(selection)
	return selection, nil
}

func serviceNames(project *composetypes.Project) []string {
	names := make([]string, 0, len(project.Services))
	for name := range project.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func absolutePaths(paths []string) ([]string, error) {
	out := make([]string, len(paths))
	for i, p := range paths {
		if p == "" {
			return nil, errors.New("compose file path cannot be empty")
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("abs %s: %w", p, err)
		}
		out[i] = abs
	}
	return out, nil
}
