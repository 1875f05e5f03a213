// Package fitlog reads fit.log, the running journal galfit appends to in
// its working directory. Each block of the file records one run: the files
// involved, the fitted parameter values per component, and the goodness of
// fit. Parameter lines are kept raw and only parsed on demand, since most
// callers just want the file names of the latest run.
package fitlog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ErrLog marks a fit.log that does not follow galfit's output format.
var ErrLog = errors.New("malformed fit.log")

var (
	// filePattern matches the run's file references; one line may carry two.
	filePattern = regexp.MustCompile(`(Input image|Init\. par\. file|Restart file|Output image)\s+:\s+(\S+)`)

	// chisqPattern matches the goodness-of-fit figures.
	chisqPattern = regexp.MustCompile(`(Chi\^2/nu|Chi\^2|ndof)\s+=\s+([-+\d.eE]+)`)
)

// Log is one run's block.
type Log struct {
	InputImage  string
	OutputImage string
	InitFile    string
	ResultFile  string

	ChiSq        float64
	Ndof         int
	ReducedChiSq float64

	parLines []string
	mods     []*Mod
}

// ParLines returns the raw, not yet parsed parameter-result lines.
func (l *Log) ParLines() []string {
	return append([]string(nil), l.parLines...)
}

// Mods parses the parameter-result lines into per-component results. The
// parse runs once; later calls return the cached result.
func (l *Log) Mods() ([]*Mod, error) {
	if l.mods != nil || len(l.parLines) == 0 {
		return l.mods, nil
	}
	if len(l.parLines)%2 != 0 {
		return nil, fmt.Errorf("%w: %d parameter lines, want value/uncertainty pairs",
			ErrLog, len(l.parLines))
	}

	mods := make([]*Mod, 0, len(l.parLines)/2)
	for i := 0; i < len(l.parLines); i += 2 {
		m, err := parseMod(l.parLines[i], l.parLines[i+1])
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	l.mods = mods
	return mods, nil
}

func (l *Log) setFile(key, name string) {
	switch key {
	case "Input image":
		l.InputImage = name
	case "Output image":
		l.OutputImage = name
	case "Init. par. file":
		l.InitFile = name
	case "Restart file":
		l.ResultFile = name
	}
}

func (l *Log) setChiSq(key, val string) error {
	if key == "ndof" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("%w: ndof %q", ErrLog, val)
		}
		l.Ndof = n
		return nil
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fmt.Errorf("%w: %s %q", ErrLog, key, val)
	}
	switch key {
	case "Chi^2":
		l.ChiSq = f
	case "Chi^2/nu":
		l.ReducedChiSq = f
	}
	return nil
}

// Logs is the whole journal, oldest run first.
type Logs struct {
	logs []*Log
}

// Load reads a fit.log file. A directory, or the empty string for the
// current one, names the fit.log inside it.
func Load(path string) (*Logs, error) {
	if path == "" {
		path = "fit.log"
	} else if st, err := os.Stat(path); err == nil && st.IsDir() {
		path = filepath.Join(path, "fit.log")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading fit.log: %w", err)
	}
	defer f.Close()

	ls, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return ls, nil
}

// Parse reads the journal. A new block opens at every "Input image" entry;
// dashed separator lines, blanks, and text before the first block are
// skipped.
func Parse(r io.Reader) (*Logs, error) {
	ls := &Logs{}
	var cur *Log

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if line == "" || strings.HasPrefix(line, "----------") {
			continue
		}

		if pairs := filePattern.FindAllStringSubmatch(line, -1); len(pairs) > 0 {
			for _, m := range pairs {
				if m[1] == "Input image" {
					cur = &Log{}
					ls.logs = append(ls.logs, cur)
				}
				if cur != nil {
					cur.setFile(m[1], m[2])
				}
			}
			continue
		}

		if cur == nil {
			continue
		}

		if pairs := chisqPattern.FindAllStringSubmatch(line, -1); len(pairs) > 0 {
			for _, m := range pairs {
				if err := cur.setChiSq(m[1], m[2]); err != nil {
					return nil, err
				}
			}
			continue
		}

		cur.parLines = append(cur.parLines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading fit.log: %w", err)
	}
	return ls, nil
}

// Len returns the number of runs.
func (ls *Logs) Len() int {
	return len(ls.logs)
}

// All returns the runs, oldest first.
func (ls *Logs) All() []*Log {
	return append([]*Log(nil), ls.logs...)
}

// Log returns the i-th run; negative i counts back from the newest.
func (ls *Logs) Log(i int) (*Log, error) {
	n := len(ls.logs)
	idx := i
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return nil, fmt.Errorf("%w: log index %d of %d", ErrLog, i, n)
	}
	return ls.logs[idx], nil
}

// Last returns the newest run, or nil for an empty journal.
func (ls *Logs) Last() *Log {
	if len(ls.logs) == 0 {
		return nil
	}
	return ls.logs[len(ls.logs)-1]
}

// ByResult returns the runs whose result file is name, oldest first.
func (ls *Logs) ByResult(name string) []*Log {
	var out []*Log
	for _, l := range ls.logs {
		if l.ResultFile == name {
			out = append(out, l)
		}
	}
	return out
}

// ByInit returns the runs started from the named parameter file.
func (ls *Logs) ByInit(name string) []*Log {
	var out []*Log
	for _, l := range ls.logs {
		if l.InitFile == name {
			out = append(out, l)
		}
	}
	return out
}

// ByOutput returns the runs that wrote the named output image.
func (ls *Logs) ByOutput(name string) []*Log {
	var out []*Log
	for _, l := range ls.logs {
		if l.OutputImage == name {
			out = append(out, l)
		}
	}
	return out
}
