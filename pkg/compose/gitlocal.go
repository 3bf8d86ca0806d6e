package compose

import (
	"fmt"
	"path/filepath"
	"regexp"
)

const (
	// SourceDir holds checkouts of Git-sourced services, relative to the project root.
	SourceDir = "src"
	// PodsDir holds the main compose documents; directory contexts are relative to it.
	PodsDir = "pods"
)

// shortNameRE captures the final path segment of a Git URL, minus an optional ".git".
// The name may not contain "." so file-like segments (index.html) are rejected.
var shortNameRE = regexp.MustCompile(`/([^./]+)(?:\.git)?$`)

// ShortName returns the repository name at the end of a Git URL.
func ShortName(url string) (string, error) {
	m := shortNameRE.FindStringSubmatch(url)
	if len(m) != 2 {
		return "", &NameError{URL: url}
	}
	return m[1], nil
}

// GitToLocal maps a build context onto the local directory that holds its source.
// Git URLs land in src/<short name>; directories are interpreted relative to pods/.
// An empty directory is an ErrContextRead.
// The result is never cleaned, so ".." segments survive as written.
func GitToLocal(ctx BuildContext) (string, error) {
	switch ctx.Kind {
	case KindGitURL:
		name, err := ShortName(ctx.Value)
		if err != nil {
			return "", err
		}
		return joinLocal(SourceDir, name), nil
	case KindDir:
		if ctx.Value == "" {
			return "", fmt.Errorf("%w: directory context is empty", ErrContextRead)
		}
		return joinLocal(PodsDir, ctx.Value), nil
	default:
		return "", fmt.Errorf("unknown build context kind %d", int(ctx.Kind))
	}
}

// joinLocal appends segment to prefix with the host separator without
// filepath.Clean. An absolute segment replaces the prefix.
func joinLocal(prefix, segment string) string {
	if filepath.IsAbs(segment) {
		return segment
	}
	return prefix + string(filepath.Separator) + segment
}
