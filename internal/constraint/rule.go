// Package constraint reads and writes galfit constraint files: ordered
// collections of rules tying fit parameters of one or two components to an
// offset, a ratio, or a numeric range.
package constraint

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind names one of the six rule grammars.
type Kind string

const (
	// HardOffset keeps pairwise differences of a parameter fixed across
	// the listed components.
	HardOffset Kind = "hard_offset"

	// HardRatio keeps pairwise ratios fixed.
	HardRatio Kind = "hard_ratio"

	// SoftFromTo clamps a parameter value to a range.
	SoftFromTo Kind = "soft_fromto"

	// SoftShift clamps the deviation from the input value to a range.
	SoftShift Kind = "soft_shift"

	// SoftOffset clamps the difference between two components' parameter
	// to a range.
	SoftOffset Kind = "soft_offset"

	// SoftRatio clamps the ratio between two components' parameter to a
	// range.
	SoftRatio Kind = "soft_ratio"
)

var kindAliases = map[string]Kind{
	"hard_diff": HardOffset,
	"soft_vary": SoftShift,
	"soft_diff": SoftOffset,
}

// ParseKind resolves a kind name or one of its aliases.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	k := Kind(s)
	if _, ok := kindSeps[k]; !ok {
		return "", fmt.Errorf("%w: unknown kind %q", ErrRule, s)
	}
	return k, nil
}

// IsSoft reports whether the kind carries a numeric range.
func (k Kind) IsSoft() bool {
	return strings.HasPrefix(string(k), "soft_")
}

// kindSeps maps each kind to the separator joining its component list.
var kindSeps = map[Kind]string{
	HardOffset: "_",
	HardRatio:  "_",
	SoftFromTo: "",
	SoftShift:  "",
	SoftOffset: "-",
	SoftRatio:  "/",
}

// compsRequired returns the exact component count a kind demands; hard
// kinds accept any.
func (k Kind) compsRequired() (int, bool) {
	switch k {
	case SoftFromTo, SoftShift:
		return 1, true
	case SoftOffset, SoftRatio:
		return 2, true
	}
	return 0, false
}

// Parameter vocabulary of the constraint file. Plain parameter numbers are
// also accepted.
var parNames = map[string]bool{
	"x": true, "y": true, "mag": true, "re": true, "rs": true,
	"n": true, "q": true, "pa": true,
	"alpha": true, "beta": true, "gamma": true,
	"c": true, // boxy/disky
	"f1a": true, "f1p": true, "f2a": true, "f2p": true, // Fourier
	"r5": true, // coordinate rotation
}

// parAliases maps the model-module spellings onto the constraint-file ones.
var parAliases = map[string]string{
	"ba": "q",
	"x0": "x",
	"y0": "y",
}

// CanonicalPar validates a parameter token and resolves its alias.
func CanonicalPar(par string) (string, error) {
	if isDigits(par) {
		return par, nil
	}
	if std, ok := parAliases[par]; ok {
		return std, nil
	}
	if parNames[par] {
		return par, nil
	}
	return "", fmt.Errorf("%w: %q", ErrParameterName, par)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Line grammars. Shared shape: components, parameter token, kind-specific
// tail, then end of line or a comment.
const floatPat = `[+-]?\d+(?:\.\d*)?(?:[eE][+-]?\d+)?`

func rulePattern(comps, tail string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*(` + comps + `)\s+([a-zA-Z\d]+)\s+(` + tail + `)(?:\s*$|\s+#)`)
}

var grammars = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{HardOffset, rulePattern(`\d+_\d+(?:_\d+)*`, `offset`)},
	{HardRatio, rulePattern(`\d+_\d+(?:_\d+)*`, `ratio`)},
	{SoftFromTo, rulePattern(`\d+`, `(`+floatPat+`)\s+to\s+(`+floatPat+`)`)},
	{SoftShift, rulePattern(`\d+`, `(`+floatPat+`)\s+(`+floatPat+`)`)},
	{SoftOffset, rulePattern(`\d+-\d+`, `(`+floatPat+`)\s+(`+floatPat+`)`)},
	{SoftRatio, rulePattern(`\d+/\d+`, `(`+floatPat+`)\s+(`+floatPat+`)`)},
}

// Rule is one constraint: a kind, the component indices it binds (1-based),
// the constrained parameter, and for soft kinds the allowed range.
type Rule struct {
	Kind  Kind
	Comps []int
	Par   string
	Range [2]float64
}

// NewRule builds a validated rule. kind accepts aliases. The range is
// required for soft kinds and ignored for hard ones.
func NewRule(comps []int, par string, kind string, rng ...float64) (*Rule, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return nil, err
	}
	if n, exact := k.compsRequired(); exact && len(comps) != n {
		return nil, fmt.Errorf("%w: %s takes %d components, got %d",
			ErrRule, k, n, len(comps))
	}
	p, err := CanonicalPar(par)
	if err != nil {
		return nil, err
	}
	r := &Rule{
		Kind:  k,
		Comps: append([]int(nil), comps...),
		Par:   p,
	}
	if k.IsSoft() {
		if len(rng) != 2 {
			return nil, fmt.Errorf("%w: %s takes a two-value range, got %d values",
				ErrRule, k, len(rng))
		}
		r.Range = [2]float64{rng[0], rng[1]}
	}
	return r, nil
}

// ParseRule matches a line against the grammars in declared order; the
// first match wins. Blank and comment lines do not parse as rules.
func ParseRule(line string) (*Rule, error) {
	for _, g := range grammars {
		m := g.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		comps, err := splitComps(m[1], g.kind)
		if err != nil {
			return nil, err
		}
		if g.kind.IsSoft() {
			lo, err := strconv.ParseFloat(m[len(m)-2], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrGrammar, err)
			}
			hi, err := strconv.ParseFloat(m[len(m)-1], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrGrammar, err)
			}
			return NewRule(comps, m[2], string(g.kind), lo, hi)
		}
		return NewRule(comps, m[2], string(g.kind))
	}
	return nil, fmt.Errorf("%w: %q", ErrGrammar, line)
}

func splitComps(s string, k Kind) ([]int, error) {
	parts := []string{s}
	if sep := kindSeps[k]; sep != "" {
		parts = strings.Split(s, sep)
	}
	comps := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: component %q", ErrGrammar, p)
		}
		comps[i] = n
	}
	return comps, nil
}

// String renders the rule in constraint-file form. A rule with no
// components renders empty.
func (r *Rule) String() string {
	if len(r.Comps) == 0 {
		return ""
	}
	parts := make([]string, len(r.Comps))
	for i, c := range r.Comps {
		parts[i] = strconv.Itoa(c)
	}
	comps := strings.Join(parts, kindSeps[r.Kind])

	var vals string
	switch {
	case !r.Kind.IsSoft():
		vals = strings.TrimPrefix(string(r.Kind), "hard_")
	case r.Kind == SoftFromTo:
		vals = fmt.Sprintf("%g to %g", r.Range[0], r.Range[1])
	default:
		vals = fmt.Sprintf("%g %g", r.Range[0], r.Range[1])
	}
	return fmt.Sprintf("%s    %s    %s", comps, r.Par, vals)
}
