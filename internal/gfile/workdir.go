package gfile

import (
	"fmt"
	"path/filepath"

	"github.com/hujh08/galfit/internal/constraint"
	"github.com/hujh08/galfit/internal/header"
	"github.com/hujh08/galfit/internal/record"
)

// joinWorkdir resolves a header file name against the working directory;
// absolute names stand on their own.
func joinWorkdir(wd, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(wd, name)
}

// SetWorkdir moves the document root without touching the header, so the
// file parameters now resolve relative to dir.
func (f *File) SetWorkdir(dir string) {
	f.Workdir = dir
}

// ChdirTo moves the document root to dest and rewrites every set file
// parameter so it still points at the same file on disk.
func (f *File) ChdirTo(dest string) error {
	for _, par := range header.FilePars() {
		none, err := f.Header.IsNone(par)
		if err != nil {
			return err
		}
		if none {
			continue
		}

		name, err := f.Header.GetString(par)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dest, joinWorkdir(f.Workdir, name))
		if err != nil {
			return fmt.Errorf("relocating %s: %w", par, err)
		}
		if err := f.Header.Set(par, rel); err != nil {
			return err
		}
	}
	f.Workdir = dest
	return nil
}

// PathOfFilePar returns the on-disk path of a file parameter. ok is false
// when the parameter is "none".
func (f *File) PathOfFilePar(par string, abs bool) (string, bool, error) {
	if !header.IsFilePar(par) {
		return "", false, fmt.Errorf("%w: %q is not a file parameter", record.ErrUnknownKey, par)
	}

	none, err := f.Header.IsNone(par)
	if err != nil {
		return "", false, err
	}
	if none {
		return "", false, nil
	}

	name, err := f.Header.GetString(par)
	if err != nil {
		return "", false, err
	}
	p := joinWorkdir(f.Workdir, name)
	if abs {
		if p, err = filepath.Abs(p); err != nil {
			return "", false, err
		}
	}
	return p, true, nil
}

// SetFileParPath points a file parameter at path. With rel the stored name
// is made relative to the working directory, the form galfit expects.
func (f *File) SetFileParPath(par, path string, rel bool) error {
	if !header.IsFilePar(par) {
		return fmt.Errorf("%w: %q is not a file parameter", record.ErrUnknownKey, par)
	}
	if rel {
		p, err := filepath.Rel(f.Workdir, path)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", par, err)
		}
		path = p
	}
	return f.Header.Set(par, path)
}

// LoadConstraints loads the constraint file named by the header, or returns
// an empty collection when there is none.
func (f *File) LoadConstraints() (*constraint.Constraints, error) {
	p, ok, err := f.PathOfFilePar("constraints", false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return constraint.New(), nil
	}
	return constraint.Load(p)
}
