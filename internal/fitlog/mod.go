package fitlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Flag is galfit's per-value verdict, read from the decoration around a
// fitted value in fit.log.
type Flag int

const (
	// Normal is an undecorated, trustworthy value.
	Normal Flag = iota
	// Unreliable marks *starred* values whose fit ran into trouble.
	Unreliable
	// Fixed marks [bracketed] values that were held during the fit.
	Fixed
	// Constrained marks {braced} values tied to another parameter.
	Constrained
)

func (f Flag) String() string {
	switch f {
	case Unreliable:
		return "unreliable"
	case Fixed:
		return "fixed"
	case Constrained:
		return "constrained"
	default:
		return "normal"
	}
}

// Mod is one component's fitted result: values, their uncertainties, and
// the flag galfit printed each value with. Sky components report only the
// background terms; the image-center columns galfit echoes for them are
// dropped.
type Mod struct {
	Name    string
	Vals    []float64
	Uncerts []float64
	Flags   []Flag
}

// itemPattern splits a field into leading marks, a numeric core, and
// trailing marks. Commas and parentheses around the position pair count
// as marks too, so the same parse handles every column.
var itemPattern = regexp.MustCompile(`^([\[\]()*,{}]*)([^\[\]()*,{}]*)([\[\]()*,{}]*)$`)

// parseItem reads one whitespace-separated field of a result line. Fields
// that are pure decoration report ok=false and are skipped.
func parseItem(field string) (val float64, flag Flag, ok bool, err error) {
	m := itemPattern.FindStringSubmatch(field)
	if m == nil || m[2] == "" {
		return 0, Normal, false, nil
	}

	val, err = strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, Normal, false, fmt.Errorf("%w: numeric field %q", ErrLog, field)
	}

	flag = Normal
	if m[1] != "" && m[3] != "" {
		switch m[1][len(m[1])-1:] + m[3][:1] {
		case "**":
			flag = Unreliable
		case "[]":
			flag = Fixed
		case "{}":
			flag = Constrained
		}
	}
	return val, flag, true, nil
}

// parseMod reads a value line and the uncertainty line below it.
func parseMod(valLine, uncertLine string) (*Mod, error) {
	name, rest, found := strings.Cut(valLine, ":")
	if !found {
		return nil, fmt.Errorf("%w: result line %q has no component name", ErrLog, valLine)
	}
	m := &Mod{Name: strings.ToLower(strings.TrimSpace(name))}

	for _, field := range strings.Fields(rest) {
		val, flag, ok, err := parseItem(field)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		m.Vals = append(m.Vals, val)
		m.Flags = append(m.Flags, flag)
	}

	if m.Name == "sky" {
		drop := min(2, len(m.Vals))
		m.Vals = m.Vals[drop:]
		m.Flags = m.Flags[drop:]
	}

	for _, field := range strings.Fields(uncertLine) {
		val, _, ok, err := parseItem(field)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		m.Uncerts = append(m.Uncerts, val)
	}

	if len(m.Vals) != len(m.Uncerts) {
		return nil, fmt.Errorf("%w: %s has %d values but %d uncertainties",
			ErrLog, m.Name, len(m.Vals), len(m.Uncerts))
	}
	return m, nil
}
