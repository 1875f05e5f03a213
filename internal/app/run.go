package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hujh08/galfit/internal/ctxlog"
	"github.com/hujh08/galfit/internal/fitlog"
	"github.com/hujh08/galfit/internal/gfile"
	"github.com/hujh08/galfit/internal/preset"
	"github.com/hujh08/galfit/internal/runner"
)

// Run executes the selected mode. The logger travels on the context so the
// document packages share it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	switch {
	case a.cfg.FitLog:
		return a.summarizeFitLog(ctx)
	case a.cfg.Preset != "":
		return a.compilePresets(ctx)
	default:
		return a.editFile(ctx)
	}
}

// editFile is the default mode: load the document, apply the edits in a
// fixed order (header assignments, component edits, state toggles,
// relocation), then show, write, or run the result. With no output flag at
// all the document is printed.
func (a *App) editFile(ctx context.Context) error {
	f, err := gfile.Load(a.cfg.Path)
	if err != nil {
		return err
	}
	a.logger.Debug("document loaded", "path", a.cfg.Path, "comps", f.NumComps())

	for _, asg := range a.cfg.Sets {
		key, val, _ := strings.Cut(asg, "=")
		if err := f.Header.Set(key, val); err != nil {
			return fmt.Errorf("applying %q: %w", asg, err)
		}
	}
	if a.cfg.Dup != nil {
		if _, err := f.DupComp(*a.cfg.Dup); err != nil {
			return err
		}
	}
	if a.cfg.Del != nil {
		if err := f.DelComp(*a.cfg.Del); err != nil {
			return err
		}
	}
	if a.cfg.Trans != "" {
		n, target, err := splitTrans(a.cfg.Trans)
		if err != nil {
			return err
		}
		if err := f.TransComp(ctx, n, target); err != nil {
			return err
		}
	}
	if a.cfg.Free {
		if err := f.Free(); err != nil {
			return err
		}
	}
	if a.cfg.Freeze {
		if err := f.Freeze(); err != nil {
			return err
		}
	}
	if a.cfg.Workdir != "" {
		if err := f.ChdirTo(a.cfg.Workdir); err != nil {
			return err
		}
	}

	if a.cfg.Show || (a.cfg.Out == "" && !a.cfg.Run) {
		text, err := f.Render()
		if err != nil {
			return err
		}
		fmt.Fprint(a.outW, text)
	}
	if a.cfg.Out != "" {
		if err := f.WriteFile(a.cfg.Out); err != nil {
			return err
		}
		a.logger.Info("document written", "path", a.cfg.Out)
	}
	if a.cfg.Run {
		result, err := a.runner().RunFile(ctx, f)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.outW, result)
	}
	return nil
}

// compilePresets renders every preset under the configured path. The
// documents land in the preset's own directory unless -workdir says
// otherwise; -run fits each one as it is rendered.
func (a *App) compilePresets(ctx context.Context) error {
	info, err := os.Stat(a.cfg.Preset)
	if err != nil {
		return fmt.Errorf("locating presets: %w", err)
	}

	dir := a.cfg.Workdir
	var presets []*preset.Preset
	if info.IsDir() {
		presets, err = preset.LoadDir(ctx, a.cfg.Preset)
		if dir == "" {
			dir = a.cfg.Preset
		}
	} else {
		var p *preset.Preset
		if p, err = preset.Load(ctx, a.cfg.Preset); err == nil {
			presets = append(presets, p)
		}
		if dir == "" {
			dir = filepath.Dir(a.cfg.Preset)
		}
	}
	if err != nil {
		return err
	}
	if len(presets) == 0 {
		return fmt.Errorf("no presets under %s", a.cfg.Preset)
	}

	for _, p := range presets {
		if err := p.Render(dir); err != nil {
			return fmt.Errorf("rendering %s: %w", p.Name, err)
		}
		a.logger.Info("preset rendered", "name", p.Name, "dir", dir)
		if a.cfg.Show {
			text, err := p.File.Render()
			if err != nil {
				return err
			}
			fmt.Fprint(a.outW, text)
		}
		if a.cfg.Run {
			result, err := a.runner().RunFile(ctx, p.File)
			if err != nil {
				return fmt.Errorf("running %s: %w", p.Name, err)
			}
			fmt.Fprintln(a.outW, result)
		}
	}
	return nil
}

// summarizeFitLog prints one stanza per fit recorded in the journal, either
// as YAML documents or as compact text lines.
func (a *App) summarizeFitLog(ctx context.Context) error {
	logs, err := fitlog.Load(a.cfg.Path)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("fit.log loaded", "runs", logs.Len())

	for _, l := range logs.All() {
		if a.cfg.YAML {
			s, err := l.Summary()
			if err != nil {
				return err
			}
			text, err := s.YAML()
			if err != nil {
				return err
			}
			fmt.Fprintf(a.outW, "---\n%s", text)
			continue
		}

		fmt.Fprintf(a.outW, "%s: %s -> %s  chi2=%g ndof=%d chi2/nu=%g\n",
			l.ResultFile, l.InputImage, l.OutputImage, l.ChiSq, l.Ndof, l.ReducedChiSq)
		mods, err := l.Mods()
		if err != nil {
			return err
		}
		for _, m := range mods {
			fmt.Fprintf(a.outW, "  %-10s%s\n", m.Name, fmtVals(m.Vals))
		}
	}
	return nil
}

func (a *App) runner() runner.Runner {
	return runner.Runner{Bin: a.cfg.Bin, Timeout: a.cfg.Timeout, Quiet: a.cfg.Quiet}
}

func fmtVals(vals []float64) string {
	var b strings.Builder
	for _, v := range vals {
		fmt.Fprintf(&b, " %g", v)
	}
	return b.String()
}
