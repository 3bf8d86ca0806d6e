package compose

import (
	"errors"
	"testing"

	composetypes "github.com/compose-spec/compose-go/v2/types"
)

func TestLocalBuildDirWithoutBuild(t *testing.T) {
	t.Parallel()

	dir, ok, err := LocalBuildDir(composetypes.ServiceConfig{Name: "db", Image: "postgres:16"})
	if err != nil {
		t.Fatalf("LocalBuildDir: %v", err)
	}
	if ok || dir != "" {
		t.Fatalf("expected no build dir, got %q (ok=%t)", dir, ok)
	}
}

func TestLocalBuildDirDelegatesToMapper(t *testing.T) {
	t.Parallel()

	cases := []struct {
		context string
		want    string
	}{
		{"git@github.com:docker/docker.git", sep("src", "docker")},
		{"../src/foo", sep("pods", "../src/foo")},
	}
	for _, tc := range cases {
		svc := composetypes.ServiceConfig{Name: "api", Build: &composetypes.BuildConfig{Context: tc.context}}
		dir, ok, err := LocalBuildDir(svc)
		if err != nil {
			t.Fatalf("LocalBuildDir(%q): %v", tc.context, err)
		}
		if !ok || dir != tc.want {
			t.Fatalf("LocalBuildDir(%q) = %q (ok=%t), want %q", tc.context, dir, ok, tc.want)
		}
	}
}

func TestLocalBuildDirPropagatesErrors(t *testing.T) {
	t.Parallel()

	_, ok, err := LocalBuildDir(composetypes.ServiceConfig{Build: &composetypes.BuildConfig{Context: "http://www.example.com/"}})
	if !errors.Is(err, ErrCannotDeriveName) || ok {
		t.Fatalf("expected ErrCannotDeriveName, got %v (ok=%t)", err, ok)
	}

	_, ok, err = LocalBuildDir(composetypes.ServiceConfig{Build: &composetypes.BuildConfig{}})
	if !errors.Is(err, ErrContextRead) || ok {
		t.Fatalf("expected ErrContextRead, got %v (ok=%t)", err, ok)
	}
}
