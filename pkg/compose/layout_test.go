package compose

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	composetypes "github.com/compose-spec/compose-go/v2/types"
)

func buildService(name, context string) composetypes.ServiceConfig {
	return composetypes.ServiceConfig{Name: name, Build: &composetypes.BuildConfig{Context: context}}
}

func TestPlanLayoutFromTestdata(t *testing.T) {
	project, err := LoadComposeProject([]string{testComposePath()}, "conductor-tests", nil)
	if err != nil {
		t.Fatalf("LoadComposeProject: %v", err)
	}
	layout, err := PlanLayout(context.Background(), project, LayoutOptions{})
	if err != nil {
		t.Fatalf("PlanLayout: %v", err)
	}
	want := []LayoutEntry{
		{Service: "api", Kind: KindGitURL, Context: "git@github.com:example/api.git", Dir: sep("src", "api"), Image: "docker.io/example/api:dev"},
		{Service: "web", Kind: KindGitURL, Context: "https://github.com/example/web.git", Dir: sep("src", "web")},
		{Service: "worker", Kind: KindDir, Context: "../worker", Dir: sep("pods", "../worker")},
	}
	if !reflect.DeepEqual(layout.Entries, want) {
		t.Fatalf("unexpected entries:\n got %+v\nwant %+v", layout.Entries, want)
	}
	if !reflect.DeepEqual(layout.Skipped, []string{"db"}) {
		t.Fatalf("expected db to be skipped, got %v", layout.Skipped)
	}
	if layout.Project != "conductor-tests" {
		t.Fatalf("unexpected project %s", layout.Project)
	}
}

func TestPlanLayoutSelectedServices(t *testing.T) {
	project, err := LoadComposeProject([]string{testComposePath()}, "conductor-tests", nil)
	if err != nil {
		t.Fatalf("LoadComposeProject: %v", err)
	}
	layout, err := PlanLayout(context.Background(), project, LayoutOptions{Services: []string{"worker"}, Parallelism: 1})
	if err != nil {
		t.Fatalf("PlanLayout: %v", err)
	}
	if len(layout.Entries) != 1 || layout.Entries[0].Service != "worker" {
		t.Fatalf("expected only worker, got %+v", layout.Entries)
	}
	if len(layout.Skipped) != 0 {
		t.Fatalf("expected nothing skipped, got %v", layout.Skipped)
	}
}

func TestPlanLayoutPropagatesServiceErrors(t *testing.T) {
	t.Parallel()

	project := &composetypes.Project{
		Name: "broken",
		Services: composetypes.Services{
			"site": buildService("site", "http://www.example.com/"),
			"api":  buildService("api", "../api"),
		},
	}
	_, err := PlanLayout(context.Background(), project, LayoutOptions{})
	if !errors.Is(err, ErrCannotDeriveName) {
		t.Fatalf("expected ErrCannotDeriveName, got %v", err)
	}
}

func TestPlanLayoutRejectsInvalidImage(t *testing.T) {
	t.Parallel()

	svc := buildService("api", "../api")
	svc.Image = "Not A Valid Image"
	project := &composetypes.Project{Name: "img", Services: composetypes.Services{"api": svc}}
	if _, err := PlanLayout(context.Background(), project, LayoutOptions{}); err == nil {
		t.Fatalf("expected image validation error")
	}
}

func TestPlanLayoutDetectsConflicts(t *testing.T) {
	t.Parallel()

	project := &composetypes.Project{
		Name: "conflict",
		Services: composetypes.Services{
			"a": buildService("a", "https://github.com/acme/tools.git"),
			"b": buildService("b", "git@github.com:other/tools.git"),
		},
	}
	_, err := PlanLayout(context.Background(), project, LayoutOptions{})
	if !errors.Is(err, ErrLayoutConflict) {
		t.Fatalf("expected ErrLayoutConflict, got %v", err)
	}
}

func TestPlanLayoutAllowsSameRepositorySpellings(t *testing.T) {
	t.Parallel()

	project := &composetypes.Project{
		Name: "shared",
		Services: composetypes.Services{
			"a": buildService("a", "https://github.com/acme/tools.git"),
			"b": buildService("b", "git@github.com:acme/tools.git"),
			"c": buildService("c", "ssh://git@github.com/acme/tools"),
			"d": buildService("d", "."),
			"e": buildService("e", "."),
		},
	}
	layout, err := PlanLayout(context.Background(), project, LayoutOptions{Parallelism: 2})
	if err != nil {
		t.Fatalf("PlanLayout: %v", err)
	}
	if len(layout.Entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(layout.Entries))
	}
}

func TestPlanLayoutManyServicesDeterministic(t *testing.T) {
	t.Parallel()

	services := composetypes.Services{}
	for i := 0; i < 50; i++ {
		name := fmt.Sprintf("svc%02d", i)
		services[name] = buildService(name, fmt.Sprintf("https://github.com/acme/repo%02d.git", i))
	}
	project := &composetypes.Project{Name: "many", Services: services}
	first, err := PlanLayout(context.Background(), project, LayoutOptions{Parallelism: 8})
	if err != nil {
		t.Fatalf("PlanLayout: %v", err)
	}
	second, err := PlanLayout(context.Background(), project, LayoutOptions{Parallelism: 3})
	if err != nil {
		t.Fatalf("PlanLayout: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected deterministic layout across parallelism settings")
	}
	if first.Entries[0].Service != "svc00" || first.Entries[49].Service != "svc49" {
		t.Fatalf("entries not sorted: %s .. %s", first.Entries[0].Service, first.Entries[49].Service)
	}
}

func TestPlanLayoutCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	project := &composetypes.Project{Name: "cancel", Services: composetypes.Services{"a": buildService("a", ".")}}
	if _, err := PlanLayout(ctx, project, LayoutOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRepoIdentity(t *testing.T) {
	t.Parallel()

	want := "github.com/acme/tools"
	for _, url := range []string{
		"https://github.com/acme/tools.git",
		"git@github.com:acme/tools.git",
		"ssh://git@github.com/acme/tools",
		"git://github.com/acme/tools",
		"github.com/acme/tools.git",
	} {
		if got := repoIdentity(url); got != want {
			t.Fatalf("repoIdentity(%q) = %q, want %q", url, got, want)
		}
	}
}
