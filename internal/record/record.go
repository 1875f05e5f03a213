package record

import (
	"fmt"
	"sort"
)

// Record holds the values of one record instance. Only keys declared by its
// schema can be set; values pass through the key's normalizer on the way in.
type Record struct {
	schema *Schema
	pars   map[string]any
}

// Schema returns the schema this record is bound to.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Set resolves the key, applies value aliases and the key's normalizer,
// checks the allowed set, and stores the value.
func (r *Record) Set(key string, val any) error {
	k, ok := r.schema.Canonical(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	f := r.schema.fields[k]

	if s, isStr := val.(string); isStr && f.valAlias != nil {
		if c, found := f.valAlias[s]; found {
			val = c
		}
	}

	v, err := f.norm(val)
	if err != nil {
		return fmt.Errorf("set %s: %w", f.name, err)
	}

	if f.allowed != nil && !f.allowed[fmt.Sprint(v)] {
		return fmt.Errorf("%w for %s: only accept %v", ErrInvalidValue, f.name, sortedSet(f.allowed))
	}

	r.pars[k] = v
	return nil
}

// Get returns the value of a key. Unset optional keys fall back to their
// default: a mutable default is materialized into the record first so later
// mutation sticks, an immutable one is returned as is.
func (r *Record) Get(key string) (any, error) {
	k, ok := r.schema.Canonical(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if v, set := r.pars[k]; set {
		return v, nil
	}

	f := r.schema.fields[k]
	if f.required {
		return nil, fmt.Errorf("%w: %s", ErrUnsetRequired, f.name)
	}
	if !f.hasDef {
		return nil, fmt.Errorf("%w: no default for %s", ErrUnsetRequired, f.name)
	}
	if f.mutable {
		if err := r.Touch(k); err != nil {
			return nil, err
		}
		return r.pars[k], nil
	}
	return f.def, nil
}

// Touch materializes the default of an unset optional key into the record.
// Set keys and required keys are left alone.
func (r *Record) Touch(key string) error {
	k, ok := r.schema.Canonical(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	f := r.schema.fields[k]
	if _, set := r.pars[k]; set || f.required || !f.hasDef {
		return nil
	}
	// The normalizer returns a fresh value for mutable kinds, so the stored
	// default never aliases the schema's copy.
	return r.Set(k, f.def)
}

// Unset removes an explicitly set value.
func (r *Record) Unset(key string) error {
	k, ok := r.schema.Canonical(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	delete(r.pars, k)
	return nil
}

// Reset clears every set value.
func (r *Record) Reset() {
	clear(r.pars)
}

// Len returns the number of explicitly set keys.
func (r *Record) Len() int {
	return len(r.pars)
}

// IsValidKey reports whether the key or alias is declared.
func (r *Record) IsValidKey(key string) bool {
	return r.schema.IsValid(key)
}

// IsSetKey reports whether the key holds an explicitly set value.
func (r *Record) IsSetKey(key string) bool {
	k, ok := r.schema.Canonical(key)
	if !ok {
		return false
	}
	_, set := r.pars[k]
	return set
}

// IsOptKey reports whether the key is optional.
func (r *Record) IsOptKey(key string) bool {
	return r.schema.IsValid(key) && r.schema.IsOptional(key)
}

// IsKnownKey reports whether reading the key would yield a value: either it
// is set, or it is optional with a default.
func (r *Record) IsKnownKey(key string) bool {
	if r.IsSetKey(key) {
		return true
	}
	if !r.IsOptKey(key) {
		return false
	}
	_, hasDef := r.schema.Default(key)
	return hasDef
}

// SetKeys returns the explicitly set keys in file order.
func (r *Record) SetKeys() []string {
	var keys []string
	for _, k := range r.schema.keys {
		if _, set := r.pars[k]; set {
			keys = append(keys, k)
		}
	}
	return keys
}

// KnownKeys returns the keys with a known value in file order.
func (r *Record) KnownKeys() []string {
	var keys []string
	for _, k := range r.schema.keys {
		if r.IsKnownKey(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

// SetMany sets all entries of vals, resolving aliases per key. Entries are
// applied in sorted key order so failures are deterministic.
func (r *Record) SetMany(vals map[string]any) error {
	for _, k := range sortedKeys(vals) {
		if err := r.Set(k, vals[k]); err != nil {
			return err
		}
	}
	return nil
}

// SetPairs zips keys and vals and sets each pair.
func (r *Record) SetPairs(keys []string, vals []any) error {
	if len(keys) != len(vals) {
		return fmt.Errorf("%w: %d keys for %d values", ErrInvalidValue, len(keys), len(vals))
	}
	for i, k := range keys {
		if err := r.Set(k, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// Copy returns a new record with every set key re-applied through Set.
// Normalizers return fresh values for mutable kinds, so the copy shares no
// state with the original.
func (r *Record) Copy() *Record {
	n := r.schema.NewRecord()
	for _, k := range r.schema.keys {
		if v, set := r.pars[k]; set {
			// Re-normalizing an already normalized value cannot fail.
			_ = n.Set(k, v)
		}
	}
	return n
}

// Typed getters. Each fails when the stored value has another type.

func (r *Record) GetString(key string) (string, error) {
	v, err := r.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s holds %T, not string", ErrInvalidValue, key, v)
	}
	return s, nil
}

func (r *Record) GetInt(key string) (int, error) {
	v, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("%w: %s holds %T, not int", ErrInvalidValue, key, v)
	}
	return n, nil
}

func (r *Record) GetFloat(key string) (float64, error) {
	v, err := r.Get(key)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %s holds %T, not float64", ErrInvalidValue, key, v)
	}
	return f, nil
}

func (r *Record) GetInts(key string) ([]int, error) {
	v, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	ns, ok := v.([]int)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T, not []int", ErrInvalidValue, key, v)
	}
	return ns, nil
}

func (r *Record) GetFloats(key string) ([]float64, error) {
	v, err := r.Get(key)
	if err != nil {
		return nil, err
	}
	fs, ok := v.([]float64)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T, not []float64", ErrInvalidValue, key, v)
	}
	return fs, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSet(m map[string]bool) []string {
	vals := make([]string, 0, len(m))
	for v := range m {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return vals
}
