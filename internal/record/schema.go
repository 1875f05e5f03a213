// Package record implements the slot-like typed records behind galfit input
// files: a fixed, ordered set of keys, each with aliases, a value normalizer
// derived from an example value, optional defaults, and line formatting.
//
// A Spec describes a record type declaratively and compiles once into an
// immutable Schema; Schema.NewRecord hands out empty records bound to it.
package record

import (
	"fmt"
)

// Normalizer converts an input into the canonical value of a key, or fails
// with an error wrapping ErrInvalidValue. Normalizers are idempotent on
// their own output and return fresh values for mutable kinds, so re-applying
// one is also how records deep-copy.
type Normalizer func(v any) (any, error)

// Format holds the line templates of a record type.
type Format struct {
	// Float is the verb for formatting float values, e.g. "%.3f". Values
	// with magnitude below 1e-3 are rendered with %g instead.
	Float string

	// Line2 and Line3 are the templates for lines of two fields
	// (key, value) and three fields (key, value, comment).
	Line2 string
	Line3 string
}

// Spec declares a record type. All maps are keyed by canonical key.
type Spec struct {
	// Keys lists the valid keys in their file order.
	Keys []string

	// Aliases maps a key to its spoken names. Aliases share one namespace
	// with keys: reusing a name for two keys is a compile error.
	Aliases map[string][]string

	// Names maps a key to a user-friendly name for messages. A key without
	// one falls back to its first alias, then to the key itself.
	Names map[string]string

	// Comments holds the trailing per-line comments.
	Comments map[string]string

	// Examples supplies an example value per key. The example drives
	// normalizer derivation (see deriveNormalizer) and doubles as the
	// default value unless Defaults overrides it.
	Examples map[string]any

	// Required lists keys that must be set explicitly; the rest are
	// optional and fall back to their default on read.
	Required []string

	// Defaults overrides the example-derived default of a key.
	Defaults map[string]any

	// Allowed restricts a key to a fixed value set, compared on the
	// normalized value's string form.
	Allowed map[string][]string

	// ValueAliases maps a canonical value to its spoken forms, applied to
	// string inputs before normalization.
	ValueAliases map[string]map[string][]string

	// Normalizers overrides derivation for keys whose example alone cannot
	// describe the conversion (e.g. fit parameters).
	Normalizers map[string]Normalizer

	Format Format
}

type field struct {
	key      string
	name     string
	comment  string
	def      any
	hasDef   bool
	required bool
	mutable  bool
	allowed  map[string]bool
	valAlias map[string]string
	norm     Normalizer
}

// Schema is the compiled, immutable form of a Spec.
type Schema struct {
	keys    []string
	fields  map[string]*field
	aliases map[string]string
	format  Format
}

// Compile validates a Spec and builds its Schema.
func Compile(spec Spec) (*Schema, error) {
	if len(spec.Keys) == 0 {
		return nil, fmt.Errorf("record schema: no keys declared")
	}

	s := &Schema{
		keys:    append([]string(nil), spec.Keys...),
		fields:  make(map[string]*field, len(spec.Keys)),
		aliases: make(map[string]string, len(spec.Keys)),
		format:  spec.Format,
	}
	if s.format.Float == "" {
		s.format.Float = "%.3f"
	}
	if s.format.Line2 == "" {
		s.format.Line2 = "%s) %s"
	}
	if s.format.Line3 == "" {
		s.format.Line3 = "%s) %-19s # %s"
	}

	for _, k := range spec.Keys {
		if _, dup := s.fields[k]; dup {
			return nil, fmt.Errorf("record schema: duplicate key %q", k)
		}
		s.fields[k] = &field{key: k, name: k}
		s.aliases[k] = k
	}

	check := func(m string, key string) error {
		if _, ok := s.fields[key]; !ok {
			return fmt.Errorf("record schema: %s for undeclared key %q", m, key)
		}
		return nil
	}

	for key, names := range spec.Aliases {
		if err := check("alias", key); err != nil {
			return nil, err
		}
		for _, a := range names {
			if prev, taken := s.aliases[a]; taken && prev != key {
				return nil, fmt.Errorf("record schema: alias %q maps to both %q and %q", a, prev, key)
			}
			s.aliases[a] = key
		}
		if len(names) > 0 {
			s.fields[key].name = names[0]
		}
	}

	for key, name := range spec.Names {
		if err := check("name", key); err != nil {
			return nil, err
		}
		s.fields[key].name = name
	}

	for key, c := range spec.Comments {
		if err := check("comment", key); err != nil {
			return nil, err
		}
		s.fields[key].comment = c
	}

	required := make(map[string]bool, len(spec.Required))
	for _, key := range spec.Required {
		if err := check("required entry", key); err != nil {
			return nil, err
		}
		required[key] = true
	}

	for key, example := range spec.Examples {
		if err := check("example", key); err != nil {
			return nil, err
		}
		f := s.fields[key]
		f.def = example
		f.hasDef = true
		f.mutable = mutableValue(example)
	}

	for key, def := range spec.Defaults {
		if err := check("default", key); err != nil {
			return nil, err
		}
		f := s.fields[key]
		f.def = def
		f.hasDef = true
	}

	for key, vals := range spec.Allowed {
		if err := check("allowed set", key); err != nil {
			return nil, err
		}
		set := make(map[string]bool, len(vals))
		for _, v := range vals {
			set[v] = true
		}
		s.fields[key].allowed = set
	}

	for key, m := range spec.ValueAliases {
		if err := check("value alias", key); err != nil {
			return nil, err
		}
		inv := make(map[string]string)
		for canonical, spoken := range m {
			for _, a := range spoken {
				if prev, taken := inv[a]; taken && prev != canonical {
					return nil, fmt.Errorf("record schema: value alias %q of key %q maps to both %q and %q",
						a, key, prev, canonical)
				}
				inv[a] = canonical
			}
		}
		s.fields[key].valAlias = inv
	}

	for _, k := range spec.Keys {
		f := s.fields[k]
		f.required = required[k]

		if n, ok := spec.Normalizers[k]; ok {
			f.norm = n
			if ex, exists := spec.Examples[k]; exists {
				f.mutable = mutableValue(ex)
			} else {
				// No example to judge by; a custom conversion implies a
				// non-scalar value.
				f.mutable = true
			}
			continue
		}

		ex, ok := spec.Examples[k]
		if !ok {
			return nil, fmt.Errorf("record schema: key %q has neither example nor normalizer", k)
		}
		n, err := deriveNormalizer(ex)
		if err != nil {
			return nil, fmt.Errorf("record schema: key %q: %w", k, err)
		}
		f.norm = n
	}
	for k := range spec.Normalizers {
		if err := check("normalizer", k); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// MustCompile is Compile for package-init schemas; it panics on error.
func MustCompile(spec Spec) *Schema {
	s, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Keys returns the valid keys in file order.
func (s *Schema) Keys() []string {
	return append([]string(nil), s.keys...)
}

// Canonical resolves a key or alias to its canonical key.
func (s *Schema) Canonical(key string) (string, bool) {
	k, ok := s.aliases[key]
	return k, ok
}

// IsValid reports whether key names a declared key, directly or by alias.
func (s *Schema) IsValid(key string) bool {
	_, ok := s.aliases[key]
	return ok
}

// IsOptional reports whether the key may be left unset.
func (s *Schema) IsOptional(key string) bool {
	k, ok := s.Canonical(key)
	if !ok {
		return false
	}
	return !s.fields[k].required
}

// DisplayName returns the user-friendly name of a key, falling back to the
// key itself for unknown keys.
func (s *Schema) DisplayName(key string) string {
	k, ok := s.Canonical(key)
	if !ok {
		return key
	}
	return s.fields[k].name
}

// Comment returns the per-line comment of a key, or "".
func (s *Schema) Comment(key string) string {
	k, ok := s.Canonical(key)
	if !ok {
		return ""
	}
	return s.fields[k].comment
}

// Default returns the default value of a key, if it has one.
func (s *Schema) Default(key string) (any, bool) {
	k, ok := s.Canonical(key)
	if !ok {
		return nil, false
	}
	f := s.fields[k]
	if !f.hasDef {
		return nil, false
	}
	return f.def, true
}

// Format returns the line formatting templates.
func (s *Schema) Format() Format {
	return s.format
}

// NewRecord returns an empty record bound to this schema.
func (s *Schema) NewRecord() *Record {
	return &Record{schema: s, pars: make(map[string]any)}
}
