package compose

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"

	composetypes "github.com/compose-spec/compose-go/v2/types"
	"github.com/distribution/reference"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// LayoutEntry records where one service's source is expected on disk.
type LayoutEntry struct {
	Service string      `json:"service" yaml:"service"`
	Kind    ContextKind `json:"kind" yaml:"kind"`
	Context string      `json:"context" yaml:"context"`
	Dir     string      `json:"dir" yaml:"dir"`
	Image   string      `json:"image,omitempty" yaml:"image,omitempty"`
}

// Layout is the set of local build directories for a compose project.
type Layout struct {
	Project string        `json:"project" yaml:"project"`
	Entries []LayoutEntry `json:"entries" yaml:"entries"`
	Skipped []string      `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// LayoutOptions select which services are planned and how many resolve at once.
type LayoutOptions struct {
	Services    []string
	Parallelism int
}

// PlanLayout resolves the local build directory of every selected service.
// Services without a build section are listed in Skipped.
func PlanLayout(ctx context.Context, project *composetypes.Project, opts LayoutOptions) (*Layout, error) {
	names, err := SelectServices(project, opts.Services)
	if err != nil {
		return nil, err
	}
	log := logr.FromContextOrDiscard(ctx).WithValues("project", project.Name)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	var (
		mu      sync.Mutex
		entries = make([]LayoutEntry, 0, len(names))
		skipped = make([]string, 0)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for _, name := range names {
		name := name // per-iteration copy for the goroutine (go 1.21 loop semantics)
		svc := project.Services[name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entry, ok, err := resolveEntry(name, svc)
			if err != nil {
				return fmt.Errorf("service %s: %w", name, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if !ok {
				skipped = append(skipped, name)
				log.V(1).Info("service has no build section", "service", name)
				return nil
			}
			entries = append(entries, entry)
			log.V(1).Info("resolved build directory", "service", name, "kind", entry.Kind.String(), "dir", entry.Dir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Service < entries[j].Service })
	sort.Strings(skipped)
	if err := checkConflicts(entries); err != nil {
		return nil, err
	}
	return &Layout{Project: project.Name, Entries: entries, Skipped: skipped}, nil
}

func resolveEntry(name string, svc composetypes.ServiceConfig) (LayoutEntry, bool, error) {
	dir, ok, err := LocalBuildDir(svc)
	if err != nil || !ok {
		return LayoutEntry{}, ok, err
	}
	// LocalBuildDir already read the context successfully.
	bctx, _ := ReadContext(svc.Build)
	entry := LayoutEntry{
		Service: name,
		Kind:    bctx.Kind,
		Context: bctx.Value,
		Dir:     dir,
	}
	if svc.Image != "" {
		named, err := reference.ParseNormalizedNamed(svc.Image)
		if err != nil {
			return LayoutEntry{}, false, fmt.Errorf("invalid image %q: %w", svc.Image, err)
		}
		entry.Image = named.String()
	}
	return entry, true, nil
}

var (
	gitProtocolRE = regexp.MustCompile(`^(https?|git|ssh|ftp)://`)
	scpLikeRE     = regexp.MustCompile(`^[^@/]+@([^:/]+):`)
	dotGitRE      = regexp.MustCompile(`\.git$`)
)

// repoIdentity reduces the URL spellings of one repository to a single key,
// so git@host:org/repo.git and https://host/org/repo are not reported as a conflict.
func repoIdentity(url string) string {
	id := gitProtocolRE.ReplaceAllString(url, "")
	id = scpLikeRE.ReplaceAllString(id, "$1/")
	if at := strings.Index(id, "@"); at >= 0 && at < strings.Index(id+"/", "/") {
		id = id[at+1:]
	}
	id = dotGitRE.ReplaceAllString(id, "")
	return strings.ToLower(strings.TrimSuffix(id, "/"))
}

// checkConflicts rejects two Git services that resolve to the same directory
// but point at different repositories. Directory contexts may share a directory.
func checkConflicts(entries []LayoutEntry) error {
	owners := make(map[string]LayoutEntry)
	for _, entry := range entries {
		if entry.Kind != KindGitURL {
			continue
		}
		prev, seen := owners[entry.Dir]
		if !seen {
			owners[entry.Dir] = entry
			continue
		}
		if repoIdentity(prev.Context) != repoIdentity(entry.Context) {
			return fmt.Errorf("%w: services %s (%s) and %s (%s) both map to %s",
				ErrLayoutConflict, prev.Service, prev.Context, entry.Service, entry.Context, entry.Dir)
		}
	}
	return nil
}
