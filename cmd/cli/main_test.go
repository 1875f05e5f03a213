package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hujh08/galfit/internal/cli"
)

const sampleDoc = `# IMAGE and GALFIT CONTROL PARAMETERS
A) gal.fits
B) out.fits
H) 1 93 1 93
I) 60 60
J) 20.0

# Component number: 1
 0) sky
 1) 0.39  1
 2) 0.0  0
 3) 0.0  0
 Z) 0
`

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("Success: help flag prints usage", func(t *testing.T) {
		t.Parallel()
		var out, logs bytes.Buffer
		err := run(&out, &logs, []string{"-h"})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("Success: no arguments prints usage", func(t *testing.T) {
		t.Parallel()
		var out, logs bytes.Buffer
		err := run(&out, &logs, nil)
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Usage:")
	})

	t.Run("Failure: unknown flag carries exit code 2", func(t *testing.T) {
		t.Parallel()
		var out, logs bytes.Buffer
		err := run(&out, &logs, []string{"--explode"})
		require.Error(t, err)
		var exitErr *cli.ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 2, exitErr.Code)
		assert.Contains(t, exitErr.Message, "flag provided but not defined")
	})

	t.Run("Success: edits and prints a document", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "gal.galfit")
		require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

		var out, logs bytes.Buffer
		err := run(&out, &logs, []string{"--set", "zerop=25.0", path})
		require.NoError(t, err)
		assert.Contains(t, out.String(), "25.000")
		assert.Contains(t, out.String(), "0) sky")
	})

	t.Run("Failure: missing document surfaces the load error", func(t *testing.T) {
		t.Parallel()
		var out, logs bytes.Buffer
		err := run(&out, &logs, []string{filepath.Join(t.TempDir(), "nope.galfit")})
		require.Error(t, err)
	})
}
