// Package gfile assembles complete galfit input files: one header record,
// an ordered list of profile components, free-text comments, and a working
// directory against which the header's file parameters resolve.
package gfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hujh08/galfit/internal/header"
	"github.com/hujh08/galfit/internal/profile"
)

// File is one galfit input document.
type File struct {
	Header *header.Header
	Comps  []*profile.Model

	// Workdir is where galfit would run this file; the header's file
	// parameters are paths relative to it.
	Workdir string

	// Comments are free-text lines echoed at the top of the rendered file.
	Comments []string
}

// New returns an empty document rooted in the current directory.
func New() *File {
	return &File{Header: header.New(), Workdir: "."}
}

// Reset clears the header, components, and comments.
func (f *File) Reset() {
	f.Header.Reset()
	f.Comps = nil
	f.Comments = nil
	f.Workdir = "."
}

// varLine matches a parameter line: key, ")", value, optional "# comment".
var varLine = regexp.MustCompile(`^\s*([0-9a-zA-Z.]+)\)\s+([^#]+?)(?:\s+#|\s*$)`)

// Parse reads a galfit file. Recognized keys route to the header first; a
// "0" line opens a new component and later keys land on the newest one.
// Everything else, banners and comments included, is skipped.
func Parse(r io.Reader) (*File, error) {
	f := New()

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		m := varLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		key, val := m[1], m[2]

		if f.Header.IsValidKey(key) {
			if err := f.Header.Set(key, val); err != nil {
				return nil, fmt.Errorf("header %s: %w", key, err)
			}
			continue
		}

		if key == "0" {
			comp, err := profile.New(val)
			if err != nil {
				return nil, fmt.Errorf("component %d: %w", len(f.Comps)+1, err)
			}
			f.Comps = append(f.Comps, comp)
			continue
		}

		// A component key before any "0" line has nowhere to go.
		if len(f.Comps) == 0 {
			continue
		}
		comp := f.Comps[len(f.Comps)-1]
		if !comp.Record().IsValidKey(key) {
			continue
		}
		if err := comp.Set(key, val); err != nil {
			return nil, fmt.Errorf("component %d key %s: %w", len(f.Comps), key, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading galfit file: %w", err)
	}
	return f, nil
}

// Load parses the file at path and roots the document in its directory.
func Load(path string) (*File, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading galfit file: %w", err)
	}
	defer fp.Close()

	f, err := Parse(fp)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	f.Workdir = filepath.Dir(path)
	return f, nil
}

// LoadIndex loads the numbered result file galfit.NN from dir.
func LoadIndex(dir string, n int) (*File, error) {
	return Load(filepath.Join(dir, NameFromIndex(n)))
}

// AddComment appends one comment line.
func (f *File) AddComment(s string) {
	f.Comments = append(f.Comments, s)
}

// AddCommentPair appends a "key: value" comment line.
func (f *File) AddCommentPair(key, val string) {
	f.AddComment(fmt.Sprintf("%s: %s", key, val))
}

// ClearComments drops all comment lines.
func (f *File) ClearComments() {
	f.Comments = nil
}

// Render produces the full file text: comment block, banner, header, then
// one numbered block per component. Unset required parameters anywhere make
// it fail.
func (f *File) Render() (string, error) {
	var lines []string

	if len(f.Comments) > 0 {
		lines = append(lines, "")
		for _, c := range f.Comments {
			lines = append(lines, "# "+c)
		}
		lines = append(lines, "")
	}

	rule := strings.Repeat("=", 80)
	lines = append(lines, rule, "# IMAGE and GALFIT CONTROL PARAMETERS")

	hdr, err := f.Header.Lines(false)
	if err != nil {
		return "", fmt.Errorf("rendering header: %w", err)
	}
	lines = append(lines, hdr...)

	lines = append(lines,
		"",
		"# INITIAL FITTING PARAMETERS",
		"#",
		"#   For component type, the allowed functions:",
		"#     sersic, expdisk, edgedisk, devauc,",
		"#     king, nuker, psf, gaussian, moffat,",
		"#     ferrer, and sky.",
		"#",
		"#   Hidden parameters appear only when specified:",
		"#     Bn (n=integer, Bending Modes).",
		"#     C0 (diskyness/boxyness),",
		"#     Fn (n=integer, Azimuthal Fourier Modes).",
		"#     R0-R10 (coordinate rotation, for spiral).",
		"#     To, Ti, T0-T10 (truncation function).",
		"#",
	)
	sep := "# " + strings.Repeat("-", 78)
	lines = append(lines, sep, "#   par)    par value(s)    fit toggle(s)", sep, "")

	for i, comp := range f.Comps {
		lines = append(lines, fmt.Sprintf("# Component number: %d", i+1))
		block, err := comp.Lines(false)
		if err != nil {
			return "", fmt.Errorf("rendering component %d: %w", i+1, err)
		}
		lines = append(lines, block...)
		lines = append(lines, "")
	}

	lines = append(lines, rule)
	return strings.Join(lines, "\n"), nil
}

// String renders the document, substituting a diagnostic when it cannot be
// rendered.
func (f *File) String() string {
	s, err := f.Render()
	if err != nil {
		return fmt.Sprintf("galfit file (unrenderable: %v)", err)
	}
	return s
}

// WriteFile renders the document into path.
func (f *File) WriteFile(path string) error {
	s, err := f.Render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s+"\n"), 0o644)
}

// WriteIndex writes the document as galfit.NN inside its working directory.
func (f *File) WriteIndex(n int) error {
	return f.WriteFile(filepath.Join(f.Workdir, NameFromIndex(n)))
}
