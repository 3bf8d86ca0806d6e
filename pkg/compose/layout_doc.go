package compose

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	yamlv3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"
)

// EncodeLayout writes the layout as a YAML document.
func EncodeLayout(w io.Writer, layout *Layout) error {
	if layout == nil {
		return errors.New("layout is required")
	}
	data, err := yaml.Marshal(layout)
	if err != nil {
		return errors.Wrap(err, "marshal layout")
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write layout")
	}
	return nil
}

// DecodeLayout reads a layout document, rejecting unknown fields.
func DecodeLayout(r io.Reader) (*Layout, error) {
	dec := yamlv3.NewDecoder(r)
	dec.KnownFields(true)
	var layout Layout
	if err := dec.Decode(&layout); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("layout document is empty")
		}
		return nil, errors.Wrap(err, "decode layout")
	}
	return &layout, nil
}

// ReadLayoutFile decodes the layout stored at path.
func ReadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open layout %s", path)
	}
	defer f.Close()
	layout, err := DecodeLayout(f)
	if err != nil {
		return nil, errors.Wrapf(err, "layout %s", path)
	}
	return layout, nil
}

// WriteLayoutFile stores the layout at path, replacing any previous content.
func WriteLayoutFile(path string, layout *Layout) error {
	var buf bytes.Buffer
	if err := EncodeLayout(&buf, layout); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write layout %s", path)
	}
	return nil
}

// DiffLayout returns a unified diff from recorded to current, or "" when they match.
func DiffLayout(recorded, current *Layout) (string, error) {
	var before, after bytes.Buffer
	if err := EncodeLayout(&before, recorded); err != nil {
		return "", errors.Wrap(err, "recorded layout")
	}
	if err := EncodeLayout(&after, current); err != nil {
		return "", errors.Wrap(err, "current layout")
	}
	if bytes.Equal(before.Bytes(), after.Bytes()) {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before.String()),
		B:        difflib.SplitLines(after.String()),
		FromFile: "recorded",
		ToFile:   "current",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", errors.Wrap(err, "diff layout")
	}
	return text, nil
}
