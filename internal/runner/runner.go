// Package runner drives the external galfit binary. galfit is run inside
// a working directory, reads the named input file there, and on success
// drops the fitted parameters into the next free galfit.NN slot; the
// runner pins that slot down before launching so the caller learns which
// file the run produced.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hujh08/galfit/internal/ctxlog"
	"github.com/hujh08/galfit/internal/gfile"
)

// ErrProcess marks a galfit run that failed: the process could not start,
// exited non-zero, timed out, or finished without producing a result file.
var ErrProcess = errors.New("galfit process failed")

// InputName is the file name RunFile writes the document under.
const InputName = "galfit.input"

// Runner configures how galfit is launched. The zero value runs "galfit"
// from PATH in the current directory with no time limit.
type Runner struct {
	Bin     string        // galfit executable; default "galfit"
	Dir     string        // working directory; default "."
	Timeout time.Duration // kill the run after this long; 0 means no limit
	Quiet   bool          // drop galfit's terminal chatter
}

func (r Runner) bin() string {
	if r.Bin == "" {
		return "galfit"
	}
	return r.Bin
}

func (r Runner) dir() string {
	if r.Dir == "" {
		return "."
	}
	return r.Dir
}

// Run executes galfit on the named input file, which is resolved relative
// to the working directory. The next galfit.NN slot is claimed before the
// run; success requires both a zero exit and that file showing up. The
// returned path joins the working directory and the result name.
func (r Runner) Run(ctx context.Context, inputName string) (string, error) {
	dir := r.dir()
	next, err := gfile.NextIndex(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProcess, err)
	}
	resultName := gfile.NameFromIndex(next)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.bin(), inputName)
	cmd.Dir = dir
	if r.Quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	logger := ctxlog.FromContext(ctx)
	logger.Info("running galfit",
		"bin", r.bin(), "input", inputName, "dir", dir, "result", resultName)

	runErr := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%w: timed out after %s", ErrProcess, r.Timeout)
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return "", fmt.Errorf("%w: %s exited %d", ErrProcess, r.bin(), exitErr.ExitCode())
		}
		return "", fmt.Errorf("%w: %v", ErrProcess, runErr)
	}

	resultPath := filepath.Join(dir, resultName)
	if _, err := os.Stat(resultPath); err != nil {
		return "", fmt.Errorf("%w: exited cleanly but %s was not produced", ErrProcess, resultName)
	}

	logger.Info("galfit finished", "result", resultPath)
	return resultPath, nil
}

// RunFile writes the document into its working directory as galfit.input
// and runs it there. The document's working directory, when set, overrides
// the runner's.
func (r Runner) RunFile(ctx context.Context, f *gfile.File) (string, error) {
	if f.Workdir != "" {
		r.Dir = f.Workdir
	}
	if err := f.WriteFile(filepath.Join(r.dir(), InputName)); err != nil {
		return "", err
	}
	return r.Run(ctx, InputName)
}
