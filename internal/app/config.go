package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config holds everything an App instance needs to run. Exactly one mode is
// active at a time: fit.log summaries (FitLog), preset compilation (Preset
// non-empty), or the default edit pipeline on Path.
type Config struct {
	Path string // galfit file; with FitLog, a fit.log file or directory

	LogFormat string
	LogLevel  string

	Show   bool
	Sets   []string // header assignments, KEY=VALUE
	Dup    *int
	Del    *int
	Trans  string // component transform, N=TYPE
	Free   bool
	Freeze bool

	Workdir string
	Out     string

	Run     bool
	Bin     string
	Timeout time.Duration
	Quiet   bool

	FitLog bool
	YAML   bool

	Preset string
}

// NewConfig validates a Config and returns it ready for NewApp.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.FitLog && cfg.Preset != "" {
		return nil, errors.New("fitlog and preset are mutually exclusive")
	}
	if cfg.Path == "" && !cfg.FitLog && cfg.Preset == "" {
		return nil, errors.New("a galfit file argument is required")
	}
	if cfg.Free && cfg.Freeze {
		return nil, errors.New("free and freeze are mutually exclusive")
	}
	if cfg.Timeout < 0 {
		return nil, errors.New("timeout must not be negative")
	}
	if cfg.YAML && !cfg.FitLog {
		return nil, errors.New("yaml output only applies to fitlog summaries")
	}
	if cfg.FitLog && (cfg.hasEdits() || cfg.Workdir != "" || cfg.Run) {
		return nil, errors.New("editing and run flags do not apply to fitlog summaries")
	}
	if cfg.Preset != "" && cfg.hasEdits() {
		return nil, errors.New("editing flags do not apply to presets")
	}

	for _, asg := range cfg.Sets {
		if key, _, ok := strings.Cut(asg, "="); !ok || key == "" {
			return nil, fmt.Errorf("header assignment %q wants the form KEY=VALUE", asg)
		}
	}
	if cfg.Trans != "" {
		if _, _, err := splitTrans(cfg.Trans); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func (c *Config) hasEdits() bool {
	return len(c.Sets) > 0 || c.Dup != nil || c.Del != nil || c.Trans != "" ||
		c.Free || c.Freeze || c.Out != ""
}

// splitTrans parses a component transform directive of the form N=TYPE.
func splitTrans(s string) (int, string, error) {
	ns, target, ok := strings.Cut(s, "=")
	if !ok || target == "" {
		return 0, "", fmt.Errorf("transform %q wants the form N=TYPE", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(ns))
	if err != nil {
		return 0, "", fmt.Errorf("transform %q wants a numeric component index", s)
	}
	return n, strings.TrimSpace(target), nil
}
