package preset

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/hujh08/galfit/internal/constraint"
	"github.com/hujh08/galfit/internal/ctxlog"
	"github.com/hujh08/galfit/internal/gfile"
	"github.com/hujh08/galfit/internal/profile"
)

// buildFit compiles one fit block into a preset.
func buildFit(ctx context.Context, b *fitBlock) (*Preset, error) {
	f := gfile.New()
	h := f.Header

	if err := h.Set("output", b.Output); err != nil {
		return nil, fmt.Errorf("fit %q: %w", b.Name, err)
	}
	if len(b.Region) != 4 {
		return nil, fmt.Errorf("%w: fit %q region wants 4 bounds, got %d",
			ErrPreset, b.Name, len(b.Region))
	}
	if err := h.SetRegion(b.Region[0], b.Region[1], b.Region[2], b.Region[3]); err != nil {
		return nil, fmt.Errorf("fit %q: %w", b.Name, err)
	}
	if len(b.ConvBox) != 2 {
		return nil, fmt.Errorf("%w: fit %q convbox wants 2 sizes, got %d",
			ErrPreset, b.Name, len(b.ConvBox))
	}
	if err := h.SetConvBox(b.ConvBox[0], b.ConvBox[1]); err != nil {
		return nil, fmt.Errorf("fit %q: %w", b.Name, err)
	}

	opts := []struct {
		key string
		val any
	}{
		{"input", strOrNil(b.Input)},
		{"sigma", strOrNil(b.Sigma)},
		{"psf", strOrNil(b.PSF)},
		{"mask", strOrNil(b.Mask)},
		{"disp", strOrNil(b.Display)},
	}
	for _, o := range opts {
		if o.val == nil {
			continue
		}
		if err := h.Set(o.key, o.val); err != nil {
			return nil, fmt.Errorf("fit %q: %w", b.Name, err)
		}
	}
	if b.PSFFactor != nil {
		if err := h.Set("psfFactor", *b.PSFFactor); err != nil {
			return nil, fmt.Errorf("fit %q: %w", b.Name, err)
		}
	}
	if b.Zeropoint != nil {
		if err := h.Set("zerop", *b.Zeropoint); err != nil {
			return nil, fmt.Errorf("fit %q: %w", b.Name, err)
		}
	}
	if len(b.PixScale) > 0 {
		if err := h.Set("pscale", b.PixScale); err != nil {
			return nil, fmt.Errorf("fit %q pixscale: %w", b.Name, err)
		}
	}
	if b.Mode != nil {
		if err := h.SetMode(*b.Mode); err != nil {
			return nil, fmt.Errorf("fit %q: %w", b.Name, err)
		}
	}

	for i, cb := range b.Components {
		m, err := buildComp(cb)
		if err != nil {
			return nil, fmt.Errorf("fit %q component %d: %w", b.Name, i+1, err)
		}
		f.AddModel(m)
	}

	cons := constraint.New()
	for _, rb := range b.Constraints {
		if err := cons.AddRule(rb.Components, rb.Parameter, rb.Kind, rb.Range...); err != nil {
			return nil, fmt.Errorf("fit %q constraint: %w", b.Name, err)
		}
	}

	ctxlog.FromContext(ctx).Debug("built preset",
		"name", b.Name, "components", f.NumComps(), "constraints", cons.Len())
	return &Preset{Name: b.Name, File: f, Cons: cons}, nil
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// buildComp compiles a component block. Parameter attributes hold the
// initial values; everything starts frozen and the free list then frees the
// parameters to fit. position is the one non-scalar attribute, feeding the
// two center parameters.
func buildComp(b *componentBlock) (*profile.Model, error) {
	m, err := profile.New(b.Type)
	if err != nil {
		return nil, err
	}

	attrs, diags := b.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s body: %w", b.Type, diags)
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		attr := attrs[name]
		if name == "position" {
			if err := setPosition(m, attr); err != nil {
				return nil, err
			}
			continue
		}

		val, err := exprFloat(attr.Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", attr.Range, name, err)
		}
		if err := m.SetVar(name, val); err != nil {
			return nil, fmt.Errorf("%s: %w", attr.Range, err)
		}
	}

	rec := m.Record()
	for _, k := range m.VarKeys() {
		if !rec.IsSetKey(k) && !rec.IsOptKey(k) {
			return nil, fmt.Errorf("%w: %s parameter %s not set",
				ErrPreset, b.Type, rec.Schema().DisplayName(k))
		}
	}

	if err := m.Freeze(); err != nil {
		return nil, err
	}
	if len(b.Free) > 0 {
		free := make([]string, 0, len(b.Free))
		for _, name := range b.Free {
			if name == "position" {
				if m.IsSky() {
					return nil, fmt.Errorf("%w: sky takes no position", ErrPreset)
				}
				free = append(free, "1", "2")
				continue
			}
			free = append(free, name)
		}
		if err := m.Free(free...); err != nil {
			return nil, err
		}
	}
	if b.Skip != nil {
		if err := m.SetSkip(*b.Skip); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func setPosition(m *profile.Model, attr *hcl.Attribute) error {
	if m.IsSky() {
		return fmt.Errorf("%w: %s: sky takes no position", ErrPreset, attr.Range)
	}
	pos, err := exprFloats(attr.Expr)
	if err != nil {
		return fmt.Errorf("%s: position: %w", attr.Range, err)
	}
	if len(pos) != 2 {
		return fmt.Errorf("%w: %s: position wants 2 values, got %d",
			ErrPreset, attr.Range, len(pos))
	}
	if err := m.SetVar("1", pos[0]); err != nil {
		return err
	}
	return m.SetVar("2", pos[1])
}

// exprFloat evaluates an expression and converts the result to a float64.
func exprFloat(expr hcl.Expression) (float64, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return 0, diags
	}
	conv, err := convert.Convert(val, cty.Number)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %s to number: %w", val.Type().FriendlyName(), err)
	}
	var f float64
	if err := gocty.FromCtyValue(conv, &f); err != nil {
		return 0, err
	}
	return f, nil
}

// exprFloats evaluates an expression into a list of float64.
func exprFloats(expr hcl.Expression) ([]float64, error) {
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	conv, err := convert.Convert(val, cty.List(cty.Number))
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s to number list: %w", val.Type().FriendlyName(), err)
	}
	var out []float64
	if err := gocty.FromCtyValue(conv, &out); err != nil {
		return nil, err
	}
	return out, nil
}
