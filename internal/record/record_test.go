package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hujh08/galfit/internal/record"
)

// testSpec builds a small schema exercising every field kind: strings,
// ints, floats, vectors, aliases, allowed sets, and value aliases.
func testSpec() record.Spec {
	return record.Spec{
		Keys: []string{"A", "E", "H", "J", "K", "P"},
		Aliases: map[string][]string{
			"A": {"input"},
			"E": {"factor"},
			"H": {"region", "fitregion"},
			"J": {"zerop"},
			"K": {"pscale"},
			"P": {"mode"},
		},
		Comments: map[string]string{
			"A": "Input data image (FITS file)",
			"H": "Image region",
			"J": "Magnitude photometric zeropoint",
		},
		Examples: map[string]any{
			"A": "none",
			"E": 1,
			"H": []int{0, 0, 0, 0},
			"J": 20.0,
			"K": []float64{1.0, 1.0},
			"P": "0",
		},
		Required: []string{"H"},
		Allowed: map[string][]string{
			"P": {"0", "1", "2", "3"},
		},
		ValueAliases: map[string]map[string][]string{
			"P": {
				"0": {"optimize", "opt", "o"},
				"1": {"model", "m"},
			},
		},
	}
}

func newTestRecord(t *testing.T) *record.Record {
	t.Helper()
	schema, err := record.Compile(testSpec())
	require.NoError(t, err)
	return schema.NewRecord()
}

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("Success: valid spec compiles", func(t *testing.T) {
		t.Parallel()

		schema, err := record.Compile(testSpec())
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "E", "H", "J", "K", "P"}, schema.Keys())
	})

	testCases := []struct {
		name        string
		mutate      func(*record.Spec)
		errContains string
	}{
		{
			name: "duplicate key",
			mutate: func(s *record.Spec) {
				s.Keys = append(s.Keys, "A")
			},
			errContains: "duplicate key",
		},
		{
			name: "alias bound to two keys",
			mutate: func(s *record.Spec) {
				s.Aliases["J"] = []string{"input"}
			},
			errContains: "alias",
		},
		{
			name: "alias shadowing another key",
			mutate: func(s *record.Spec) {
				s.Aliases["A"] = []string{"E"}
			},
			errContains: "alias",
		},
		{
			name: "alias for undeclared key",
			mutate: func(s *record.Spec) {
				s.Aliases["Q"] = []string{"quiet"}
			},
			errContains: "undeclared key",
		},
		{
			name: "key without example",
			mutate: func(s *record.Spec) {
				delete(s.Examples, "J")
			},
			errContains: "neither example nor normalizer",
		},
		{
			name: "value alias bound to two values",
			mutate: func(s *record.Spec) {
				s.ValueAliases["P"]["1"] = []string{"optimize"}
			},
			errContains: "value alias",
		},
	}

	for _, tc := range testCases {
		t.Run("Failure: "+tc.name, func(t *testing.T) {
			t.Parallel()

			spec := testSpec()
			tc.mutate(&spec)

			_, err := record.Compile(spec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	t.Run("Success: set by alias, read by key", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Set("input", "gal.fits"))

		got, err := r.GetString("A")
		require.NoError(t, err)
		assert.Equal(t, "gal.fits", got)
	})

	t.Run("Success: value alias normalizes to canonical value", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Set("mode", "optimize"))

		got, err := r.GetString("P")
		require.NoError(t, err)
		assert.Equal(t, "0", got)
	})

	t.Run("Success: int accepts numeric string", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Set("E", "3"))

		got, err := r.GetInt("E")
		require.NoError(t, err)
		assert.Equal(t, 3, got)
	})

	t.Run("Success: float accepts int and string", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Set("J", 26))
		got, err := r.GetFloat("J")
		require.NoError(t, err)
		assert.Equal(t, 26.0, got)

		require.NoError(t, r.Set("J", "26.563"))
		got, err = r.GetFloat("J")
		require.NoError(t, err)
		assert.Equal(t, 26.563, got)
	})

	t.Run("Success: vector from string splits on spaces and commas", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Set("region", "1 93 1 93"))
		got, err := r.GetInts("H")
		require.NoError(t, err)
		assert.Equal(t, []int{1, 93, 1, 93}, got)

		require.NoError(t, r.Set("region", "2, 94, 2, 94"))
		got, err = r.GetInts("H")
		require.NoError(t, err)
		assert.Equal(t, []int{2, 94, 2, 94}, got)
	})

	t.Run("Success: normalization is idempotent", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Set("H", "1 93 1 93"))
		first, err := r.Get("H")
		require.NoError(t, err)

		require.NoError(t, r.Set("H", first))
		second, err := r.Get("H")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Failure: unknown key", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		err := r.Set("Q", 1)
		assert.ErrorIs(t, err, record.ErrUnknownKey)

		_, err = r.Get("Q")
		assert.ErrorIs(t, err, record.ErrUnknownKey)
	})

	t.Run("Failure: unset required key", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		_, err := r.Get("region")
		assert.ErrorIs(t, err, record.ErrUnsetRequired)
	})

	t.Run("Failure: string key rejects non-string", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		err := r.Set("A", 12)
		assert.ErrorIs(t, err, record.ErrInvalidValue)
	})

	t.Run("Failure: value outside allowed set", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		err := r.Set("P", "9")
		require.ErrorIs(t, err, record.ErrInvalidValue)
		assert.Contains(t, err.Error(), "only accept")
	})

	t.Run("Failure: vector arity mismatch", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		err := r.Set("H", "1 93")
		assert.ErrorIs(t, err, record.ErrInvalidValue)
	})
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	t.Run("Success: immutable default is returned without storing", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		got, err := r.GetString("A")
		require.NoError(t, err)
		assert.Equal(t, "none", got)
		assert.False(t, r.IsSetKey("A"))
	})

	t.Run("Success: mutable default is materialized on read", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		got, err := r.GetFloats("K")
		require.NoError(t, err)
		assert.Equal(t, []float64{1.0, 1.0}, got)
		assert.True(t, r.IsSetKey("K"))

		// The stored slice is private to this record.
		got[0] = 99
		other := newTestRecord(t)
		fresh, err := other.GetFloats("K")
		require.NoError(t, err)
		assert.Equal(t, []float64{1.0, 1.0}, fresh)
	})

	t.Run("Success: touch is a no-op for set and required keys", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Touch("H"))
		assert.False(t, r.IsSetKey("H"))

		require.NoError(t, r.Set("A", "img.fits"))
		require.NoError(t, r.Touch("A"))
		got, err := r.GetString("A")
		require.NoError(t, err)
		assert.Equal(t, "img.fits", got)
	})

	t.Run("Success: known keys cover set and defaulted", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Set("H", "1 93 1 93"))
		assert.True(t, r.IsKnownKey("H"))
		assert.True(t, r.IsKnownKey("A"))
		assert.Equal(t, []string{"A", "E", "H", "J", "K", "P"}, r.KnownKeys())
		assert.Equal(t, []string{"H"}, r.SetKeys())
	})
}

func TestCopy(t *testing.T) {
	t.Parallel()

	r := newTestRecord(t)
	require.NoError(t, r.Set("A", "gal.fits"))
	require.NoError(t, r.Set("H", []int{1, 93, 1, 93}))

	c := r.Copy()

	got, err := c.GetInts("H")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 93, 1, 93}, got)

	// Mutating the copy's vector must not leak back.
	got[0] = 42
	orig, err := r.GetInts("H")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 93, 1, 93}, orig)

	// Only set keys travel.
	assert.Equal(t, []string{"A", "H"}, c.SetKeys())
}

func TestLines(t *testing.T) {
	t.Parallel()

	t.Run("Success: formats lines with and without comments", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)
		require.NoError(t, r.Set("A", "gal.fits"))
		require.NoError(t, r.Set("H", "1 93 1 93"))

		line, err := r.Line("A", false)
		require.NoError(t, err)
		assert.Equal(t, "A) gal.fits            # Input data image (FITS file)", line)

		line, err = r.Line("E", false)
		require.NoError(t, err)
		assert.Equal(t, "E) 1", line)

		line, err = r.Line("J", false)
		require.NoError(t, err)
		assert.Equal(t, "J) 20.000              # Magnitude photometric zeropoint", line)
	})

	t.Run("Success: small floats use compact form", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		require.NoError(t, r.Set("J", 0.0005))
		line, err := r.Line("J", false)
		require.NoError(t, err)
		assert.Contains(t, line, "0.0005")
	})

	t.Run("Success: full listing in key order", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)
		require.NoError(t, r.Set("H", "1 93 1 93"))

		lines, err := r.Lines(false)
		require.NoError(t, err)
		require.Len(t, lines, 6)
		assert.Equal(t, "H) 1 93 1 93           # Image region", lines[2])
	})

	t.Run("Failure: strict render of unset required key", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		_, err := r.Lines(false)
		assert.ErrorIs(t, err, record.ErrUnsetRequired)
	})

	t.Run("Success: ignoreUnset omits unknown keys", func(t *testing.T) {
		t.Parallel()
		r := newTestRecord(t)

		lines, err := r.Lines(true)
		require.NoError(t, err)
		// All keys but required H have defaults.
		assert.Len(t, lines, 5)
	})
}
