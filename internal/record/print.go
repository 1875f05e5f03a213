package record

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// FormatScalar renders one scalar value the way galfit files write it.
// Floats use the schema's float verb, except small magnitudes which use %g
// to keep precision visible; everything else falls back to its natural
// string form.
func (r *Record) FormatScalar(v any) string {
	switch x := v.(type) {
	case float64:
		if math.Abs(x) < 1e-3 {
			return fmt.Sprintf("%g", x)
		}
		return fmt.Sprintf(r.schema.format.Float, x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// FormatValue renders a value, joining vector elements with single spaces.
func (r *Record) FormatValue(v any) string {
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() == reflect.Slice {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = r.FormatValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, " ")
	}
	return r.FormatScalar(v)
}

// LineFields returns the print fields of a key: [key, value] or
// [key, value, comment]. It returns nil fields for a key whose line is
// omitted (ignoreUnset with no known value). Reading an unset required key
// with ignoreUnset false is an error.
func (r *Record) LineFields(key string, ignoreUnset bool) ([]string, error) {
	k, ok := r.schema.Canonical(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if ignoreUnset && !r.IsKnownKey(k) {
		return nil, nil
	}

	v, err := r.Get(k)
	if err != nil {
		return nil, err
	}

	fields := []string{k, r.FormatValue(v)}
	if c := r.schema.fields[k].comment; c != "" {
		fields = append(fields, c)
	}
	return fields, nil
}

// Line renders one key as a file line, or "" when the line is omitted.
func (r *Record) Line(key string, ignoreUnset bool) (string, error) {
	fields, err := r.LineFields(key, ignoreUnset)
	if err != nil || fields == nil {
		return "", err
	}
	return r.FormatFields(fields), nil
}

// FormatFields applies the two- or three-field line template.
func (r *Record) FormatFields(fields []string) string {
	if len(fields) <= 2 {
		return fmt.Sprintf(r.schema.format.Line2, toAny(fields)...)
	}
	return fmt.Sprintf(r.schema.format.Line3, toAny(fields)...)
}

// Lines renders every key in file order, skipping omitted ones.
func (r *Record) Lines(ignoreUnset bool) ([]string, error) {
	var lines []string
	for _, k := range r.schema.keys {
		line, err := r.Line(k, ignoreUnset)
		if err != nil {
			return nil, err
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

func toAny(fields []string) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out
}
