package gfile

import (
	"context"
	"fmt"
	"slices"

	"github.com/hujh08/galfit/internal/param"
	"github.com/hujh08/galfit/internal/profile"
	"github.com/hujh08/galfit/internal/record"
)

// NumComps returns the number of components.
func (f *File) NumComps() int {
	return len(f.Comps)
}

// compIndex resolves i, counting from the end when negative.
func (f *File) compIndex(i int) (int, error) {
	n := len(f.Comps)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("%w: component index %d of %d", record.ErrInvalidValue, i, n)
	}
	return idx, nil
}

// Comp returns the i-th component; negative i counts from the end.
func (f *File) Comp(i int) (*profile.Model, error) {
	idx, err := f.compIndex(i)
	if err != nil {
		return nil, err
	}
	return f.Comps[idx], nil
}

// AddModel appends a component.
func (f *File) AddModel(m *profile.Model) {
	f.Comps = append(f.Comps, m)
}

// InsertModel inserts a component before index i; i may equal the current
// count to append, and negative i counts from the end.
func (f *File) InsertModel(i int, m *profile.Model) error {
	n := len(f.Comps)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx > n {
		return fmt.Errorf("%w: component index %d of %d", record.ErrInvalidValue, i, n)
	}
	f.Comps = slices.Insert(f.Comps, idx, m)
	return nil
}

// AddComp creates a model by name and appends it. When vals are given there
// must be one per fit parameter, applied in file order.
func (f *File) AddComp(name string, vals ...any) (*profile.Model, error) {
	m, err := profile.New(name)
	if err != nil {
		return nil, err
	}

	if len(vals) > 0 {
		keys := m.VarKeys()
		if len(vals) != len(keys) {
			return nil, fmt.Errorf("%w: %d values for %d fit parameters of %s",
				record.ErrInvalidValue, len(vals), len(keys), m.Type())
		}
		for i, k := range keys {
			if err := m.SetVar(k, vals[i]); err != nil {
				return nil, err
			}
		}
	}

	f.AddModel(m)
	return m, nil
}

// DelComp removes the i-th component.
func (f *File) DelComp(i int) error {
	idx, err := f.compIndex(i)
	if err != nil {
		return err
	}
	f.Comps = slices.Delete(f.Comps, idx, idx+1)
	return nil
}

// DupComp copies the i-th component, inserts the copy right after it, and
// returns the copy.
func (f *File) DupComp(i int) (*profile.Model, error) {
	idx, err := f.compIndex(i)
	if err != nil {
		return nil, err
	}
	cp := f.Comps[idx].Copy()
	f.Comps = slices.Insert(f.Comps, idx+1, cp)
	return cp, nil
}

// TransComp converts the i-th component to the target profile in place.
func (f *File) TransComp(ctx context.Context, i int, target string, opts ...profile.TransformOption) error {
	idx, err := f.compIndex(i)
	if err != nil {
		return err
	}
	t, err := f.Comps[idx].TransformTo(ctx, target, opts...)
	if err != nil {
		return err
	}
	f.Comps[idx] = t
	return nil
}

// Free marks every fit parameter of the listed components free; no indices
// means all components.
func (f *File) Free(comps ...int) error {
	return f.setCompStates(param.Free, comps)
}

// Freeze locks every fit parameter of the listed components; no indices
// means all components.
func (f *File) Freeze(comps ...int) error {
	return f.setCompStates(param.Frozen, comps)
}

func (f *File) setCompStates(s param.State, comps []int) error {
	targets := f.Comps
	if len(comps) > 0 {
		targets = make([]*profile.Model, 0, len(comps))
		for _, i := range comps {
			idx, err := f.compIndex(i)
			if err != nil {
				return err
			}
			targets = append(targets, f.Comps[idx])
		}
	}
	for _, m := range targets {
		if err := m.SetVarState(s); err != nil {
			return err
		}
	}
	return nil
}
