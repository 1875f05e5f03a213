// Package preset compiles declarative HCL fit presets into ready-to-run
// galfit documents. A preset file ends in .gfp.hcl and holds fit blocks;
// each names a run, fills in the control parameters, lists components with
// initial values, and optionally declares parameter constraints.
package preset

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/hujh08/galfit/internal/constraint"
	"github.com/hujh08/galfit/internal/ctxlog"
	"github.com/hujh08/galfit/internal/fsutil"
	"github.com/hujh08/galfit/internal/gfile"
)

// ErrPreset marks a preset that decoded but does not describe a runnable
// fit.
var ErrPreset = errors.New("invalid preset")

// Ext is the preset file extension.
const Ext = ".gfp.hcl"

// Preset is one compiled fit block.
type Preset struct {
	Name string
	File *gfile.File
	Cons *constraint.Constraints
}

// Load reads a preset file that defines exactly one fit.
func Load(ctx context.Context, path string) (*Preset, error) {
	ps, err := loadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(ps) != 1 {
		return nil, fmt.Errorf("%w: %s defines %d fits, want exactly one", ErrPreset, path, len(ps))
	}
	return ps[0], nil
}

// LoadDir compiles every preset file under dir, in path order.
func LoadDir(ctx context.Context, dir string) ([]*Preset, error) {
	files, err := fsutil.FindFilesByExtension(dir, Ext)
	if err != nil {
		return nil, fmt.Errorf("scanning presets: %w", err)
	}

	var out []*Preset
	for _, file := range files {
		ps, err := loadFile(ctx, file)
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}
	return out, nil
}

func loadFile(ctx context.Context, path string) ([]*Preset, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("loading preset file", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing preset %s: %w", path, diags)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("decoding preset %s: %w", path, diags)
	}

	ps := make([]*Preset, 0, len(root.Fits))
	for _, fb := range root.Fits {
		p, err := buildFit(ctx, fb)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		ps = append(ps, p)
	}
	logger.Debug("loaded presets", "path", path, "count", len(ps))
	return ps, nil
}

// Render writes the document into dir as <name>.galfit. When the preset
// carries constraints they go to <name>.cons, wired into the header's G
// parameter. The document's working directory is pointed at dir, so its
// file parameters resolve there.
func (p *Preset) Render(dir string) error {
	if p.Cons.Len() > 0 {
		consName := p.Name + ".cons"
		if err := p.File.Header.Set("cons", consName); err != nil {
			return fmt.Errorf("wiring constraint file: %w", err)
		}
		if err := p.Cons.WriteFile(filepath.Join(dir, consName)); err != nil {
			return err
		}
	}

	p.File.SetWorkdir(dir)
	return p.File.WriteFile(filepath.Join(dir, p.Name+".galfit"))
}
