package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hujh08/galfit/internal/app"
	"github.com/hujh08/galfit/internal/gfile"
	"github.com/hujh08/galfit/internal/record"
)

// fitLogDoc is a single-run journal in galfit's on-disk layout.
const fitLogDoc = `
#  Input menu file: galfit.feedme

-----------------------------------------------------------------------------
Input image     : gal.fits[1:93,1:93]      Output image : gal_out.fits
Init. par. file : galfit.feedme            Restart file : galfit.01
-----------------------------------------------------------------------------

 sersic    : (  48.52,   51.28)   20.09     5.12    4.25    0.76   -60.37
              (   0.01,    0.01)    0.00     0.02    0.04    0.00     0.19
 sky       : [  47.00,   47.00]  1.392e-02  -2.18e-05  1.52e-05
                                 6.20e-04   1.80e-05  1.80e-05
 Chi^2 = 8765.432,  ndof = 8527
 Chi^2/nu = 1.028

`

const skyPreset = `
fit "min" {
  output  = "min.fits"
  region  = [1, 93, 1, 93]
  convbox = [60, 60]

  component "sky" {
    bkg  = 0.39
    free = ["bkg"]
  }
}
`

func writeDoc(t *testing.T, dir string) string {
	t.Helper()

	f := gfile.New()
	require.NoError(t, f.Header.Set("output", "gal_out.fits"))
	require.NoError(t, f.Header.SetRegion(1, 93, 1, 93))
	require.NoError(t, f.Header.SetConvBox(60, 60))
	require.NoError(t, f.Header.Set("zerop", 26.563))
	_, err := f.AddComp("sersic", 48.5, 51.2, 20.1, 5.1, 2.0, 0.8, -60.0)
	require.NoError(t, err)
	_, err = f.AddComp("sky", 0.39, 0.0, 0.0)
	require.NoError(t, err)

	path := filepath.Join(dir, "gal.galfit")
	require.NoError(t, f.WriteFile(path))
	return path
}

func writeScript(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "fake-galfit")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// runApp validates cfg, runs it, and returns what landed on stdout.
func runApp(t *testing.T, cfg app.Config) (string, error) {
	t.Helper()
	c, err := app.NewConfig(cfg)
	require.NoError(t, err)
	a, out, _ := app.SetupAppTest(t, c)
	runErr := a.Run(context.Background())
	return out.String(), runErr
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	t.Run("Success: minimal edit config", func(t *testing.T) {
		t.Parallel()
		cfg, err := app.NewConfig(app.Config{Path: "gal.galfit"})
		require.NoError(t, err)
		assert.Equal(t, "gal.galfit", cfg.Path)
	})

	failures := []struct {
		name string
		cfg  app.Config
		want string
	}{
		{"no path and no mode", app.Config{}, "galfit file argument"},
		{"fitlog with preset", app.Config{FitLog: true, Preset: "p"}, "mutually exclusive"},
		{"free with freeze", app.Config{Path: "f", Free: true, Freeze: true}, "mutually exclusive"},
		{"negative timeout", app.Config{Path: "f", Timeout: -1}, "timeout"},
		{"yaml without fitlog", app.Config{Path: "f", YAML: true}, "yaml"},
		{"fitlog with edits", app.Config{FitLog: true, Free: true}, "do not apply"},
		{"preset with edits", app.Config{Preset: "p", Out: "x"}, "do not apply"},
		{"malformed assignment", app.Config{Path: "f", Sets: []string{"zerop"}}, "KEY=VALUE"},
		{"malformed transform", app.Config{Path: "f", Trans: "sersic"}, "N=TYPE"},
	}
	for _, tc := range failures {
		t.Run("Failure: "+tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := app.NewConfig(tc.cfg)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestRunEdit(t *testing.T) {
	t.Parallel()

	t.Run("Success: prints the document by default", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, t.TempDir())
		out, err := runApp(t, app.Config{Path: path})
		require.NoError(t, err)
		assert.Contains(t, out, "# IMAGE and GALFIT CONTROL PARAMETERS")
		assert.Contains(t, out, "0) sersic")
		assert.Contains(t, out, "0) sky")
	})

	t.Run("Success: header assignment lands in the output", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, t.TempDir())
		out, err := runApp(t, app.Config{Path: path, Sets: []string{"zerop=25.0"}, Show: true})
		require.NoError(t, err)
		assert.Contains(t, out, "25.000")
		assert.NotContains(t, out, "26.563")
	})

	t.Run("Success: duplicating a component", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, t.TempDir())
		first := 0
		out, err := runApp(t, app.Config{Path: path, Dup: &first})
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(out, "0) sersic"))
	})

	t.Run("Success: deleting a component", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, t.TempDir())
		last := -1
		out, err := runApp(t, app.Config{Path: path, Del: &last})
		require.NoError(t, err)
		assert.Contains(t, out, "0) sersic")
		assert.NotContains(t, out, "0) sky")
	})

	t.Run("Success: transforming a component", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, t.TempDir())
		out, err := runApp(t, app.Config{Path: path, Trans: "0=devauc"})
		require.NoError(t, err)
		assert.Contains(t, out, "0) devauc")
		assert.NotContains(t, out, "0) sersic")
	})

	t.Run("Success: state toggles survive a round trip", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, t.TempDir())

		out, err := runApp(t, app.Config{Path: path, Free: true})
		require.NoError(t, err)
		f, err := gfile.Parse(strings.NewReader(out))
		require.NoError(t, err)
		m, err := f.Comp(0)
		require.NoError(t, err)
		names, err := m.FreeVarNames()
		require.NoError(t, err)
		assert.Equal(t, []string{"x0", "y0", "mag", "re", "n", "ba", "pa"}, names)

		out, err = runApp(t, app.Config{Path: path, Freeze: true})
		require.NoError(t, err)
		f, err = gfile.Parse(strings.NewReader(out))
		require.NoError(t, err)
		m, err = f.Comp(0)
		require.NoError(t, err)
		names, err = m.FreeVarNames()
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("Success: writing the document silences stdout", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeDoc(t, dir)
		outPath := filepath.Join(dir, "new.galfit")

		out, err := runApp(t, app.Config{Path: path, Out: outPath})
		require.NoError(t, err)
		assert.Empty(t, out)

		f, err := gfile.Load(outPath)
		require.NoError(t, err)
		assert.Equal(t, 2, f.NumComps())
	})

	t.Run("Success: relocating rebases file parameters", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeDoc(t, dir)
		sub := filepath.Join(dir, "run1")
		require.NoError(t, os.Mkdir(sub, 0o755))

		out, err := runApp(t, app.Config{
			Path:    path,
			Sets:    []string{"input=gal.fits"},
			Workdir: sub,
			Show:    true,
		})
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Join("..", "gal.fits"))
	})

	t.Run("Success: running the fit claims the next slot", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeDoc(t, dir)
		bin := writeScript(t, dir, "touch galfit.01")

		out, err := runApp(t, app.Config{Path: path, Run: true, Quiet: true, Bin: bin})
		require.NoError(t, err)
		assert.Contains(t, out, "galfit.01")
		assert.FileExists(t, filepath.Join(dir, "galfit.01"))
		assert.FileExists(t, filepath.Join(dir, "galfit.input"))
	})

	t.Run("Failure: missing document", func(t *testing.T) {
		t.Parallel()
		_, err := runApp(t, app.Config{Path: filepath.Join(t.TempDir(), "nope.galfit")})
		require.Error(t, err)
	})

	t.Run("Failure: unknown header parameter", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, t.TempDir())
		_, err := runApp(t, app.Config{Path: path, Sets: []string{"twinkle=1"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrUnknownKey)
		assert.ErrorContains(t, err, "applying")
	})

	t.Run("Failure: component index out of range", func(t *testing.T) {
		t.Parallel()
		path := writeDoc(t, t.TempDir())
		fifth := 5
		_, err := runApp(t, app.Config{Path: path, Dup: &fifth})
		require.Error(t, err)
		assert.ErrorContains(t, err, "component index")
	})
}

func TestRunFitLog(t *testing.T) {
	t.Parallel()

	t.Run("Success: text summary", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "fit.log"), []byte(fitLogDoc), 0o644))

		out, err := runApp(t, app.Config{Path: dir, FitLog: true})
		require.NoError(t, err)
		assert.Contains(t, out, "galfit.01: gal.fits[1:93,1:93] -> gal_out.fits")
		assert.Contains(t, out, "chi2/nu=1.028")
		assert.Contains(t, out, "sersic")
		assert.Contains(t, out, "48.52")
	})

	t.Run("Success: yaml summary", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "fit.log"), []byte(fitLogDoc), 0o644))

		out, err := runApp(t, app.Config{Path: dir, FitLog: true, YAML: true})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "---\n"))
		assert.Contains(t, out, "result_file: galfit.01")
		assert.Contains(t, out, "name: sersic")
		assert.Contains(t, out, "flags:")
	})

	t.Run("Failure: no journal", func(t *testing.T) {
		t.Parallel()
		_, err := runApp(t, app.Config{Path: t.TempDir(), FitLog: true})
		require.Error(t, err)
	})
}

func TestRunPreset(t *testing.T) {
	t.Parallel()

	t.Run("Success: compiles a preset directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "min.gfp.hcl"), []byte(skyPreset), 0o644))

		out, err := runApp(t, app.Config{Preset: dir, Show: true})
		require.NoError(t, err)
		assert.Contains(t, out, "0) sky")
		assert.FileExists(t, filepath.Join(dir, "min.galfit"))
	})

	t.Run("Success: workdir overrides the render directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		presetPath := filepath.Join(dir, "min.gfp.hcl")
		require.NoError(t, os.WriteFile(presetPath, []byte(skyPreset), 0o644))
		sub := filepath.Join(dir, "runs")
		require.NoError(t, os.Mkdir(sub, 0o755))

		_, err := runApp(t, app.Config{Preset: presetPath, Workdir: sub})
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(sub, "min.galfit"))
	})

	t.Run("Success: renders and runs in one pass", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "min.gfp.hcl"), []byte(skyPreset), 0o644))
		bin := writeScript(t, dir, "touch galfit.01")

		out, err := runApp(t, app.Config{Preset: dir, Run: true, Quiet: true, Bin: bin})
		require.NoError(t, err)
		assert.Contains(t, out, "galfit.01")
		assert.FileExists(t, filepath.Join(dir, "galfit.01"))
	})

	t.Run("Failure: missing preset path", func(t *testing.T) {
		t.Parallel()
		_, err := runApp(t, app.Config{Preset: filepath.Join(t.TempDir(), "nope")})
		require.Error(t, err)
		assert.ErrorContains(t, err, "locating presets")
	})

	t.Run("Failure: empty preset directory", func(t *testing.T) {
		t.Parallel()
		_, err := runApp(t, app.Config{Preset: t.TempDir()})
		require.Error(t, err)
		assert.ErrorContains(t, err, "no presets")
	})
}
