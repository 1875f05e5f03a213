package cli

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hujh08/galfit/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("gftool", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
gftool - edit, run, and summarize GALFIT input files.

Usage:
  gftool [options] [GALFIT_FILE]

Arguments:
  GALFIT_FILE
    Path to a galfit input file. With -fitlog it instead names a
    fit.log file, or the directory holding one; with -preset it is
    unused.

Options:
`)
		flagSet.PrintDefaults()
	}

	var sets []string
	flagSet.Func("set", "Assign a header parameter, as KEY=VALUE. Repeatable.", func(v string) error {
		sets = append(sets, v)
		return nil
	})
	showFlag := flagSet.Bool("show", false, "Print the document after applying the edits.")
	dupFlag := flagSet.String("dup", "", "Duplicate component N. Negative N counts from the end.")
	delFlag := flagSet.String("del", "", "Delete component N.")
	transFlag := flagSet.String("trans", "", "Transform component N to another profile, as N=TYPE.")
	freeFlag := flagSet.Bool("free", false, "Free the fit parameters of every component.")
	freezeFlag := flagSet.Bool("freeze", false, "Freeze the fit parameters of every component.")
	workdirFlag := flagSet.String("workdir", "", "Relocate the document to this directory.")
	outFlag := flagSet.String("out", "", "Write the edited document to this path.")
	runFlag := flagSet.Bool("run", false, "Run galfit on the result.")
	binFlag := flagSet.String("bin", "galfit", "Name or path of the galfit executable.")
	timeoutFlag := flagSet.Duration("timeout", 0, "Kill the galfit run after this long. 0 is no limit.")
	quietFlag := flagSet.Bool("quiet", false, "Discard galfit's terminal output.")
	fitlogFlag := flagSet.Bool("fitlog", false, "Summarize a fit.log journal instead of editing.")
	yamlFlag := flagSet.Bool("yaml", false, "Emit fit.log summaries as YAML.")
	presetFlag := flagSet.String("preset", "", "Compile a preset file, or a directory of them, into galfit inputs.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := flagSet.Arg(0)
	if path == "" && !*fitlogFlag && *presetFlag == "" {
		flagSet.Usage()
		return nil, true, nil
	}

	dup, err := indexArg("dup", *dupFlag)
	if err != nil {
		return nil, false, err
	}
	del, err := indexArg("del", *delFlag)
	if err != nil {
		return nil, false, err
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	config, err := app.NewConfig(app.Config{
		Path:      path,
		LogFormat: logFormat,
		LogLevel:  logLevel,
		Show:      *showFlag,
		Sets:      sets,
		Dup:       dup,
		Del:       del,
		Trans:     *transFlag,
		Free:      *freeFlag,
		Freeze:    *freezeFlag,
		Workdir:   *workdirFlag,
		Out:       *outFlag,
		Run:       *runFlag,
		Bin:       *binFlag,
		Timeout:   *timeoutFlag,
		Quiet:     *quietFlag,
		FitLog:    *fitlogFlag,
		YAML:      *yamlFlag,
		Preset:    *presetFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}

// indexArg converts a component-index flag value; empty means unused.
func indexArg(name, val string) (*int, error) {
	if val == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: fmt.Sprintf("invalid %s index %q", name, val)}
	}
	return &n, nil
}
