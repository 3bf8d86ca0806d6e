package compose

import (
	"fmt"
	"strings"

	composetypes "github.com/compose-spec/compose-go/v2/types"
)

// ContextKind tags the two forms a service build context can take.
type ContextKind int

const (
	// KindDir is a directory reference, interpreted relative to the pods directory.
	KindDir ContextKind = iota
	// KindGitURL is a remote Git repository URL.
	KindGitURL
)

func (k ContextKind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindGitURL:
		return "git"
	default:
		return fmt.Sprintf("ContextKind(%d)", int(k))
	}
}

// MarshalText renders the kind as "git" or "dir" for layout documents.
func (k ContextKind) MarshalText() ([]byte, error) {
	switch k {
	case KindDir, KindGitURL:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown context kind %d", int(k))
	}
}

func (k *ContextKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "dir":
		*k = KindDir
	case "git":
		*k = KindGitURL
	default:
		return fmt.Errorf("unknown context kind %q (expected git or dir)", string(text))
	}
	return nil
}

// BuildContext is where a service's source material comes from.
type BuildContext struct {
	Kind  ContextKind
	Value string
}

// GitURL returns a build context for a remote Git repository.
func GitURL(url string) BuildContext {
	return BuildContext{Kind: KindGitURL, Value: url}
}

// Dir returns a build context for a directory reference.
func Dir(dir string) BuildContext {
	return BuildContext{Kind: KindDir, Value: dir}
}

func (c BuildContext) String() string {
	return fmt.Sprintf("%s(%s)", c.Kind, c.Value)
}

// remoteContextPrefixes are the prefixes compose tooling treats as remote Git build contexts.
var remoteContextPrefixes = []string{"https://", "http://", "git://", "ssh://", "github.com/", "git@"}

// ParseContext classifies a raw build.context value. Values that carry any
// other "scheme://" prefix (docker-image://, oci-layout://, ...) are rejected
// because neither form can represent them.
func ParseContext(raw string) (BuildContext, error) {
	if strings.TrimSpace(raw) == "" {
		return BuildContext{}, fmt.Errorf("%w: build context is empty", ErrContextRead)
	}
	for _, prefix := range remoteContextPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return GitURL(raw), nil
		}
	}
	if scheme, _, ok := strings.Cut(raw, "://"); ok && !strings.ContainsAny(scheme, `/\`) {
		return BuildContext{}, fmt.Errorf("%w: unsupported build context scheme %q in %q", ErrContextRead, scheme, raw)
	}
	return Dir(raw), nil
}

// ReadContext extracts the build context from a compose build section.
func ReadContext(build *composetypes.BuildConfig) (BuildContext, error) {
	if build == nil {
		return BuildContext{}, fmt.Errorf("%w: service has no build section", ErrContextRead)
	}
	return ParseContext(build.Context)
}
