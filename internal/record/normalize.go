package record

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// deriveNormalizer builds a Normalizer from an example value. Scalars map to
// their own kind (string stays strict, int accepts numeric strings, float
// accepts ints and strings); slice examples recurse per element and carry a
// fixed arity.
func deriveNormalizer(example any) (Normalizer, error) {
	switch example.(type) {
	case string:
		return normString, nil
	case int:
		return normInt, nil
	case float64:
		return normFloat, nil
	}

	ev := reflect.ValueOf(example)
	if ev.Kind() != reflect.Slice {
		return nil, fmt.Errorf("cannot derive normalizer from example of type %T", example)
	}

	elems := make([]Normalizer, ev.Len())
	for i := range elems {
		n, err := deriveNormalizer(ev.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elems[i] = n
	}
	return vectorNormalizer(ev.Type(), elems), nil
}

func normString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: want string, got %T", ErrInvalidValue, v)
	}
	return s, nil
}

func normInt(v any) (any, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, x)
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: want integer, got %T", ErrInvalidValue, v)
}

func normFloat(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, x)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%w: want number, got %T", ErrInvalidValue, v)
}

// vectorNormalizer accepts either a slice of matching length or a single
// string, which is split on whitespace and commas first. The result is a
// fresh slice of the example's concrete type.
func vectorNormalizer(sliceType reflect.Type, elems []Normalizer) Normalizer {
	var norm Normalizer
	norm = func(v any) (any, error) {
		if s, ok := v.(string); ok {
			fields := splitVector(s)
			parts := make([]any, len(fields))
			for i, f := range fields {
				parts[i] = f
			}
			return norm(parts)
		}

		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("%w: want %d fields, got %T", ErrInvalidValue, len(elems), v)
		}
		if rv.Len() != len(elems) {
			return nil, fmt.Errorf("%w: want %d fields, got %d", ErrInvalidValue, len(elems), rv.Len())
		}

		out := reflect.MakeSlice(sliceType, len(elems), len(elems))
		for i, n := range elems {
			nv, err := n(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(nv))
		}
		return out.Interface(), nil
	}
	return norm
}

// splitVector splits a vector-valued string on whitespace and commas, so
// both "1 93 1 93" and "1, 93, 1, 93" parse.
func splitVector(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// mutableValue classifies a value as mutable for default materialization:
// plain scalars are immutable, containers and pointers are not.
func mutableValue(v any) bool {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return false
	}
	return true
}
