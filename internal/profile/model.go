// Package profile implements the galfit component models: a registry of
// profile definitions (sersic, sky, expdisk, ...), the Model type wrapping
// one component block, and conversions between profiles.
package profile

import (
	"fmt"
	"strings"

	"github.com/hujh08/galfit/internal/param"
	"github.com/hujh08/galfit/internal/record"
)

// Model is one fit component: a record of fit parameters plus the profile
// definition it follows.
type Model struct {
	def *Definition
	rec *record.Record
}

// New returns an empty model of the named profile.
func New(name string) (*Model, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return &Model{def: def, rec: def.Schema.NewRecord()}, nil
}

// MustNew is New for static wiring; it panics on unknown names.
func MustNew(name string) *Model {
	m, err := New(name)
	if err != nil {
		panic(err)
	}
	return m
}

// Type returns the canonical profile name.
func (m *Model) Type() string {
	return m.def.Name
}

// Name returns the component name printed on the type line. It defaults to
// the profile name unless overridden.
func (m *Model) Name() (string, error) {
	return m.rec.GetString("0")
}

// IsSky reports whether the model describes the background sky.
func (m *Model) IsSky() bool {
	return m.def.Sky
}

// NeedPixelSize reports whether the profile measures surface brightness and
// therefore needs the plate scale from the file header.
func (m *Model) NeedPixelSize() bool {
	return m.def.NeedPixelSize
}

// Record exposes the underlying record.
func (m *Model) Record() *record.Record {
	return m.rec
}

// Copy returns an independent copy holding the same set keys.
func (m *Model) Copy() *Model {
	return &Model{def: m.def, rec: m.rec.Copy()}
}

// IsVarKey reports whether key names a fit parameter, directly or by alias.
func (m *Model) IsVarKey(key string) bool {
	k, ok := m.rec.Schema().Canonical(key)
	return ok && isVarKey(k)
}

func isVarKey(canonical string) bool {
	return canonical != "0" && canonical != "Z"
}

// VarKeys lists the fit-parameter keys in file order.
func (m *Model) VarKeys() []string {
	var keys []string
	for _, k := range m.rec.Schema().Keys() {
		if isVarKey(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// Param returns the fit parameter stored under key. Reading an unset
// required key fails; an optional key materializes its default first.
func (m *Model) Param(key string) (*param.Parameter, error) {
	k, ok := m.rec.Schema().Canonical(key)
	if !ok || !isVarKey(k) {
		return nil, fmt.Errorf("%w: no fit parameter %q in model %s",
			record.ErrUnknownKey, key, m.def.Name)
	}
	v, err := m.rec.Get(k)
	if err != nil {
		return nil, err
	}
	p, ok := v.(*param.Parameter)
	if !ok {
		return nil, fmt.Errorf("%w: key %q holds %T", record.ErrInvalidValue, k, v)
	}
	return p, nil
}

// Vars returns the fit parameters for the given keys, or all of them.
func (m *Model) Vars(keys ...string) ([]*param.Parameter, error) {
	if len(keys) == 0 {
		keys = m.VarKeys()
	}
	pars := make([]*param.Parameter, 0, len(keys))
	for _, k := range keys {
		p, err := m.Param(k)
		if err != nil {
			return nil, err
		}
		pars = append(pars, p)
	}
	return pars, nil
}

// Set assigns a value to any key of the component, routing fit-parameter
// keys through SetVar.
func (m *Model) Set(key string, val any) error {
	k, ok := m.rec.Schema().Canonical(key)
	if !ok {
		return fmt.Errorf("%w: %q in model %s", record.ErrUnknownKey, key, m.def.Name)
	}
	if isVarKey(k) {
		return m.SetVar(k, val)
	}
	return m.rec.Set(k, val)
}

// Get returns the value stored under key, following the record's default
// rules for unset keys.
func (m *Model) Get(key string) (any, error) {
	return m.rec.Get(key)
}

// SetVar assigns a fit parameter. A parameter already present is updated in
// place, so references to it stay valid. For non-sky models a string value
// of four fields on key "1" carries both coordinates, x and y interleaved
// with their fit states, as galfit files write the position line.
func (m *Model) SetVar(key string, val any) error {
	k, ok := m.rec.Schema().Canonical(key)
	if !ok || !isVarKey(k) {
		return fmt.Errorf("%w: no fit parameter %q in model %s",
			record.ErrUnknownKey, key, m.def.Name)
	}

	if k == "1" && !m.def.Sky {
		if s, isStr := val.(string); isStr {
			fields := strings.Fields(s)
			if len(fields) == 4 {
				if err := m.SetVar("1", []string{fields[0], fields[2]}); err != nil {
					return err
				}
				return m.SetVar("2", []string{fields[1], fields[3]})
			}
		}
	}

	if !m.rec.IsSetKey(k) {
		if !m.rec.IsOptKey(k) {
			return m.rec.Set(k, val)
		}
		if err := m.rec.Touch(k); err != nil {
			return err
		}
	}
	p, err := m.Param(k)
	if err != nil {
		return err
	}
	return p.Update(val)
}

// SetVars assigns several fit parameters, applied in file order.
func (m *Model) SetVars(vals map[string]any) error {
	byKey := make(map[string]any, len(vals))
	for key, v := range vals {
		k, ok := m.rec.Schema().Canonical(key)
		if !ok || !isVarKey(k) {
			return fmt.Errorf("%w: no fit parameter %q in model %s",
				record.ErrUnknownKey, key, m.def.Name)
		}
		byKey[k] = v
	}
	for _, k := range m.VarKeys() {
		if v, ok := byKey[k]; ok {
			if err := m.SetVar(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetVarState sets the fit state of the given parameters, or of all of
// them. Updating an unset required parameter fails.
func (m *Model) SetVarState(state any, keys ...string) error {
	if len(keys) == 0 {
		keys = m.VarKeys()
	}
	for _, key := range keys {
		k, ok := m.rec.Schema().Canonical(key)
		if !ok || !isVarKey(k) {
			return fmt.Errorf("%w: no fit parameter %q in model %s",
				record.ErrUnknownKey, key, m.def.Name)
		}
		if !m.rec.IsSetKey(k) {
			if !m.rec.IsOptKey(k) {
				return fmt.Errorf("%w: cannot update %q in model %s",
					record.ErrUnsetRequired, m.rec.Schema().DisplayName(k), m.def.Name)
			}
			if err := m.rec.Touch(k); err != nil {
				return err
			}
		}
		p, err := m.Param(k)
		if err != nil {
			return err
		}
		if err := p.SetState(state); err != nil {
			return err
		}
	}
	return nil
}

// Free marks the given parameters, or all of them, free to fit.
func (m *Model) Free(keys ...string) error {
	return m.SetVarState(param.Free, keys...)
}

// Freeze locks the given parameters, or all of them.
func (m *Model) Freeze(keys ...string) error {
	return m.SetVarState(param.Frozen, keys...)
}

// FreeVarNames lists the display names of the parameters free to fit.
func (m *Model) FreeVarNames() ([]string, error) {
	var names []string
	for _, k := range m.VarKeys() {
		p, err := m.Param(k)
		if err != nil {
			return nil, err
		}
		if p.IsFree() {
			names = append(names, m.rec.Schema().DisplayName(k))
		}
	}
	return names, nil
}

// Skip reports whether galfit should skip the component.
func (m *Model) Skip() (bool, error) {
	z, err := m.rec.GetInt("Z")
	if err != nil {
		return false, err
	}
	return z != 0, nil
}

// SetSkip marks the component skipped or active.
func (m *Model) SetSkip(skip bool) error {
	z := 0
	if skip {
		z = 1
	}
	return m.rec.Set("Z", z)
}

// Lines renders the component block. For non-sky models the x and y
// parameters merge into one position line; key "2" prints nothing of its
// own. With ignoreUnset, lines of unset parameters are omitted.
func (m *Model) Lines(ignoreUnset bool) ([]string, error) {
	var lines []string
	for _, k := range m.rec.Schema().Keys() {
		if !m.def.Sky {
			if k == "2" {
				continue
			}
			if k == "1" {
				line, err := m.positionLine(ignoreUnset)
				if err != nil {
					return nil, err
				}
				if line != "" {
					lines = append(lines, line)
				}
				continue
			}
		}
		line, err := m.rec.Line(k, ignoreUnset)
		if err != nil {
			return nil, err
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func (m *Model) positionLine(ignoreUnset bool) (string, error) {
	if ignoreUnset && !(m.rec.IsKnownKey("1") && m.rec.IsKnownKey("2")) {
		// only one coordinate present; fall back to a plain line
		return m.rec.Line("1", true)
	}
	x, err := m.Param("1")
	if err != nil {
		return "", err
	}
	y, err := m.Param("2")
	if err != nil {
		return "", err
	}
	val := fmt.Sprintf("%s %s  %d %d", x.StrVal(), y.StrVal(), x.State(), y.State())
	fields := []string{"1", val}
	if c := m.rec.Schema().Comment("1"); c != "" {
		fields = append(fields, c)
	}
	return m.rec.FormatFields(fields), nil
}
