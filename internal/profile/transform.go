package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/hujh08/galfit/internal/ctxlog"
	"github.com/hujh08/galfit/internal/param"
	"github.com/hujh08/galfit/internal/record"
)

type transformOptions struct {
	freeN bool
}

// TransformOption tunes a model conversion.
type TransformOption func(*transformOptions)

// WithFreeN leaves the sersic index free to fit after a conversion that
// introduces it. Conversions not producing a sersic model ignore it.
func WithFreeN(free bool) TransformOption {
	return func(o *transformOptions) {
		o.freeN = free
	}
}

// GenericTransformTo converts the model by carrying over the shared fit
// parameters, key by key. Parameters missing from the target profile are
// dropped, parameters the source lacks stay unset; both are reported on the
// context logger, as this fallback loses any profile-specific meaning.
// The skip flag always travels.
func (m *Model) GenericTransformTo(ctx context.Context, name string) (*Model, error) {
	t, err := New(name)
	if err != nil {
		return nil, err
	}
	log := ctxlog.FromContext(ctx)
	log.Warn("general transform between models, use cautiously",
		"from", m.Type(), "to", t.Type())

	z, err := m.rec.GetInt("Z")
	if err != nil {
		return nil, err
	}
	if err := t.rec.Set("Z", z); err != nil {
		return nil, err
	}

	keysNow := m.VarKeys()
	nowSet := make(map[string]bool, len(keysNow))
	known := make(map[string]bool, len(keysNow))
	var unset []string
	for _, k := range keysNow {
		nowSet[k] = true
		if m.rec.IsKnownKey(k) {
			known[k] = true
		} else {
			unset = append(unset, k)
		}
	}

	keysNew := t.VarKeys()
	newSet := make(map[string]bool, len(keysNew))
	var notFound []string
	for _, k := range keysNew {
		newSet[k] = true
		if !nowSet[k] {
			notFound = append(notFound, k)
		}
	}
	var discarded []string
	for _, k := range keysNow {
		if known[k] && !newSet[k] {
			discarded = append(discarded, k)
		}
	}

	if len(notFound) > 0 {
		log.Warn("fit parameters not found in source model", "keys", notFound)
	}
	if len(unset) > 0 {
		log.Warn("unset fit parameters in source model", "keys", unset)
	}
	if len(discarded) > 0 {
		log.Warn("fit parameters discarded by target model", "keys", discarded)
	}

	for _, k := range keysNew {
		if !known[k] {
			continue
		}
		p, err := m.Param(k)
		if err != nil {
			return nil, err
		}
		if err := t.SetVar(k, p); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// TransformTo converts the model to the named profile. A conversion to the
// own profile copies the model. Otherwise a direct conversion is used when
// one is registered; failing that, the shortest chain of direct conversions
// is applied hop by hop, each hop receiving the same options.
func (m *Model) TransformTo(ctx context.Context, target string, opts ...TransformOption) (*Model, error) {
	var o transformOptions
	for _, fn := range opts {
		fn(&o)
	}

	name := strings.ToLower(target)
	if _, ok := defs[name]; !ok {
		return nil, fmt.Errorf("%w: unknown model %q", ErrNoTransformPath, target)
	}
	if name == m.def.Name {
		return m.Copy(), nil
	}
	if fn, ok := edges[m.def.Name][name]; ok {
		return fn(ctx, m, o)
	}

	chain, ok := pathTo(m.def.Name, name)
	if !ok {
		return nil, fmt.Errorf("%w: from %q to %q", ErrNoTransformPath, m.def.Name, name)
	}
	cur := m
	for _, fn := range chain {
		next, err := fn(ctx, cur, o)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func sersicToDevauc(ctx context.Context, m *Model, _ transformOptions) (*Model, error) {
	if m.rec.IsKnownKey("5") {
		n, err := m.Param("5")
		if err != nil {
			return nil, err
		}
		if n.Val() != 4 {
			ctxlog.FromContext(ctx).Warn("irreversible transform",
				"from", m.Type(), "to", "devauc")
		}
	}
	return m.GenericTransformTo(ctxlog.Quiet(ctx), "devauc")
}

func sersicToExpdisk(ctx context.Context, m *Model, _ transformOptions) (*Model, error) {
	if m.rec.IsKnownKey("5") {
		n, err := m.Param("5")
		if err != nil {
			return nil, err
		}
		if n.Val() != 1 {
			ctxlog.FromContext(ctx).Warn("irreversible transform",
				"from", m.Type(), "to", "expdisk")
		}
	}
	t, err := m.GenericTransformTo(ctxlog.Quiet(ctx), "expdisk")
	if err != nil {
		return nil, err
	}
	// effective radius to scale length
	if t.rec.IsKnownKey("4") {
		rs, err := t.Param("4")
		if err != nil {
			return nil, err
		}
		if err := rs.Mul(1 / 1.678); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func sersicFrom(ctx context.Context, m *Model, o transformOptions, n float64, scaleRe bool) (*Model, error) {
	ctxlog.FromContext(ctx).Debug("transform to compatible model",
		"from", m.Type(), "to", "sersic")

	t, err := m.GenericTransformTo(ctxlog.Quiet(ctx), "sersic")
	if err != nil {
		return nil, err
	}
	if scaleRe && t.rec.IsKnownKey("4") {
		// scale length to effective radius
		re, err := t.Param("4")
		if err != nil {
			return nil, err
		}
		if err := re.Mul(1.678); err != nil {
			return nil, err
		}
	}
	if err := t.SetVar("5", n); err != nil {
		return nil, err
	}
	np, err := t.Param("5")
	if err != nil {
		return nil, err
	}
	np.Freeze()
	if o.freeN {
		np.Free()
	}
	return t, nil
}

func expdiskToSersic(ctx context.Context, m *Model, o transformOptions) (*Model, error) {
	return sersicFrom(ctx, m, o, 1, true)
}

func devaucToSersic(ctx context.Context, m *Model, o transformOptions) (*Model, error) {
	return sersicFrom(ctx, m, o, 4, false)
}

func expdiskToEdgedisk(ctx context.Context, m *Model, _ transformOptions) (*Model, error) {
	ctxlog.FromContext(ctx).Warn("destructive transform",
		"from", m.Type(), "to", "edgedisk")

	t, err := m.GenericTransformTo(ctxlog.Quiet(ctx), "edgedisk")
	if err != nil {
		return nil, err
	}

	// scale length is "5" in edgedisk but "4" in expdisk
	rs, err := m.Param("4")
	if err != nil {
		return nil, err
	}
	if err := t.SetVar("5", rs); err != nil {
		return nil, err
	}

	// scale height from axis ratio and scale length; free to fit when
	// either input is free
	ba, err := m.Param("9")
	if err != nil {
		return nil, err
	}
	hs := rs.Val() * ba.Val()
	shs, err := param.CombineState(rs, ba)
	if err != nil {
		return nil, err
	}
	if err := t.SetVar("4", []any{hs, shs}); err != nil {
		return nil, err
	}
	return t, nil
}

func edgediskToExpdisk(ctx context.Context, m *Model, _ transformOptions) (*Model, error) {
	ctxlog.FromContext(ctx).Warn("destructive transform",
		"from", m.Type(), "to", "expdisk")

	t, err := m.GenericTransformTo(ctxlog.Quiet(ctx), "expdisk")
	if err != nil {
		return nil, err
	}

	// scale length is "4" in expdisk but "5" in edgedisk
	rs, err := m.Param("5")
	if err != nil {
		return nil, err
	}
	if err := t.SetVar("4", rs); err != nil {
		return nil, err
	}

	// axis ratio from scale height and scale length
	hs, err := m.Param("4")
	if err != nil {
		return nil, err
	}
	if hs.Val() <= 0 {
		return nil, fmt.Errorf("%w: scale height must be positive, got %v",
			record.ErrInvalidValue, hs.Val())
	}
	ba := hs.Val() / rs.Val()
	sba, err := param.CombineState(rs, hs)
	if err != nil {
		return nil, err
	}
	if err := t.SetVar("9", []any{ba, sba}); err != nil {
		return nil, err
	}
	return t, nil
}
