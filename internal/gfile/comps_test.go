package gfile_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hujh08/galfit/internal/ctxlog"
	"github.com/hujh08/galfit/internal/gfile"
	"github.com/hujh08/galfit/internal/profile"
	"github.com/hujh08/galfit/internal/record"
)

func compTypes(f *gfile.File) []string {
	types := make([]string, 0, f.NumComps())
	for _, c := range f.Comps {
		types = append(types, c.Type())
	}
	return types
}

func TestCompOps(t *testing.T) {
	t.Parallel()

	t.Run("Success: negative indexing", func(t *testing.T) {
		t.Parallel()

		f := newDoc(t)
		last, err := f.Comp(-1)
		require.NoError(t, err)
		assert.Equal(t, "sky", last.Type())

		first, err := f.Comp(-2)
		require.NoError(t, err)
		assert.Equal(t, "sersic", first.Type())
	})

	t.Run("Failure: index out of range", func(t *testing.T) {
		t.Parallel()

		f := newDoc(t)
		_, err := f.Comp(2)
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrInvalidValue)

		_, err = f.Comp(-3)
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrInvalidValue)
	})

	t.Run("Success: insert and delete", func(t *testing.T) {
		t.Parallel()

		f := newDoc(t)
		require.NoError(t, f.InsertModel(0, profile.MustNew("psf")))
		assert.Equal(t, []string{"psf", "sersic", "sky"}, compTypes(f))

		require.NoError(t, f.InsertModel(-1, profile.MustNew("gaussian")))
		assert.Equal(t, []string{"psf", "sersic", "gaussian", "sky"}, compTypes(f))

		require.NoError(t, f.InsertModel(4, profile.MustNew("moffat")))
		assert.Equal(t, []string{"psf", "sersic", "gaussian", "sky", "moffat"}, compTypes(f))

		require.NoError(t, f.DelComp(-1))
		require.NoError(t, f.DelComp(0))
		assert.Equal(t, []string{"sersic", "gaussian", "sky"}, compTypes(f))

		err := f.InsertModel(7, profile.MustNew("psf"))
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrInvalidValue)

		err = f.DelComp(3)
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrInvalidValue)
	})

	t.Run("Success: duplicate inserts after the source", func(t *testing.T) {
		t.Parallel()

		f := newDoc(t)
		dup, err := f.DupComp(0)
		require.NoError(t, err)
		assert.Equal(t, []string{"sersic", "sersic", "sky"}, compTypes(f))

		require.NoError(t, dup.SetVar("x0", 60.0))

		orig, err := f.Comp(0)
		require.NoError(t, err)
		x, err := orig.Param("x0")
		require.NoError(t, err)
		assert.Equal(t, 48.518, x.Val())
	})

	t.Run("Failure: bad component constructors", func(t *testing.T) {
		t.Parallel()

		f := gfile.New()
		_, err := f.AddComp("spiral")
		require.Error(t, err)
		assert.ErrorIs(t, err, profile.ErrUnknownModel)

		_, err = f.AddComp("sersic", 48.5, 51.3)
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrInvalidValue)

		assert.Zero(t, f.NumComps())
	})

	t.Run("Success: transform in place", func(t *testing.T) {
		t.Parallel()

		ctx := ctxlog.Quiet(context.Background())

		f := newDoc(t)
		require.NoError(t, f.TransComp(ctx, 0, "expdisk"))
		assert.Equal(t, []string{"expdisk", "sky"}, compTypes(f))

		disk, err := f.Comp(0)
		require.NoError(t, err)
		rs, err := disk.Param("rs")
		require.NoError(t, err)
		assert.InDelta(t, 5.116/1.678, rs.Val(), 1e-12)

		err = f.TransComp(ctx, 1, "spiral")
		require.Error(t, err)
		assert.ErrorIs(t, err, profile.ErrNoTransformPath)
	})

	t.Run("Success: free and freeze across components", func(t *testing.T) {
		t.Parallel()

		f := newDoc(t)
		require.NoError(t, f.Freeze())

		for i := range f.Comps {
			names, err := f.Comps[i].FreeVarNames()
			require.NoError(t, err)
			assert.Empty(t, names, "component %d", i)
		}

		require.NoError(t, f.Free(0))

		gal, err := f.Comp(0)
		require.NoError(t, err)
		names, err := gal.FreeVarNames()
		require.NoError(t, err)
		assert.Equal(t, []string{"x0", "y0", "mag", "re", "n", "ba", "pa"}, names)

		sky, err := f.Comp(-1)
		require.NoError(t, err)
		names, err = sky.FreeVarNames()
		require.NoError(t, err)
		assert.Empty(t, names)

		err = f.Free(9)
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrInvalidValue)
	})
}
