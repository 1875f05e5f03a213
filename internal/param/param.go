// Package param implements the fitting parameter of a galfit model: a value
// together with its fit state (free or frozen) and an optional uncertainty
// filled in from fit results.
package param

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrArity reports an update called with more arguments than
	// value, state, uncertainty.
	ErrArity = errors.New("mismatched argument count")

	// ErrValue reports an argument that cannot serve as value, state or
	// uncertainty.
	ErrValue = errors.New("invalid parameter value")
)

// State tells galfit whether a parameter is optimized (Free) or held fixed
// (Frozen) during the fit.
type State int

const (
	Frozen State = 0
	Free   State = 1
)

func (s State) String() string {
	return strconv.Itoa(int(s))
}

// ParseState accepts a State, an int, or a string: "free", "freeze", or a
// numeric string.
func ParseState(v any) (State, error) {
	switch x := v.(type) {
	case State:
		return x, nil
	case int:
		return State(x), nil
	case string:
		switch x {
		case "free":
			return Free, nil
		case "freeze":
			return Frozen, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return Frozen, fmt.Errorf("%w: state %q", ErrValue, x)
		}
		return State(n), nil
	}
	return Frozen, fmt.Errorf("%w: state of type %T", ErrValue, v)
}

// Parameter is one fitting parameter. Methods mutate in place: a Parameter
// held inside a model keeps its identity across updates.
type Parameter struct {
	val    float64
	state  State
	uncert float64
	hasUnc bool
}

// New returns a frozen parameter with the given value and no uncertainty.
func New(val float64) *Parameter {
	return &Parameter{val: val}
}

// NewState returns a parameter with the given value and state.
func NewState(val float64, s State) *Parameter {
	return &Parameter{val: val, state: s}
}

// Parse builds a parameter from any argument form Update accepts. At least
// one argument is required.
func Parse(args ...any) (*Parameter, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("%w: need at least one argument", ErrArity)
	}
	p := &Parameter{}
	if err := p.Update(args...); err != nil {
		return nil, err
	}
	return p, nil
}

// Normalize adapts Parse to the record.Normalizer signature. Given another
// *Parameter it returns a fresh copy, never the input itself.
func Normalize(v any) (any, error) {
	return Parse(v)
}

// Update applies a flexible argument list:
//
//	Update()                      no-op
//	Update(v)                     value; a string is field-split first and a
//	                              multi-field string or a slice re-dispatches
//	                              as separate arguments; another *Parameter
//	                              is copied entirely
//	Update(v, state)
//	Update(v, state, uncertainty)
func (p *Parameter) Update(args ...any) error {
	switch len(args) {
	case 0:
		return nil
	case 1:
		switch v := args[0].(type) {
		case *Parameter:
			*p = *v
			return nil
		case string:
			fields := strings.Fields(v)
			if len(fields) != 1 {
				return p.Update(anySlice(fields)...)
			}
			return p.SetVal(fields[0])
		default:
			if elems, ok := sliceElems(v); ok {
				return p.Update(elems...)
			}
			return p.SetVal(v)
		}
	case 2:
		if err := p.SetVal(args[0]); err != nil {
			return err
		}
		return p.SetState(args[1])
	case 3:
		if err := p.SetVal(args[0]); err != nil {
			return err
		}
		if err := p.SetState(args[1]); err != nil {
			return err
		}
		return p.SetUncert(args[2])
	}
	return fmt.Errorf("%w: only allow 0-3 arguments, got %d", ErrArity, len(args))
}

// Val returns the value.
func (p *Parameter) Val() float64 {
	return p.val
}

// SetVal accepts a float, an int, or a numeric string.
func (p *Parameter) SetVal(v any) error {
	f, err := toFloat(v)
	if err != nil {
		return err
	}
	p.val = f
	return nil
}

// State returns the fit state.
func (p *Parameter) State() State {
	return p.state
}

// SetState accepts anything ParseState does.
func (p *Parameter) SetState(v any) error {
	s, err := ParseState(v)
	if err != nil {
		return err
	}
	p.state = s
	return nil
}

// Uncert returns the uncertainty and whether one is present.
func (p *Parameter) Uncert() (float64, bool) {
	return p.uncert, p.hasUnc
}

// SetUncert accepts a number or numeric string; nil clears.
func (p *Parameter) SetUncert(v any) error {
	if v == nil {
		p.ClearUncert()
		return nil
	}
	f, err := toFloat(v)
	if err != nil {
		return err
	}
	p.uncert = f
	p.hasUnc = true
	return nil
}

// ClearUncert removes the uncertainty.
func (p *Parameter) ClearUncert() {
	p.uncert = 0
	p.hasUnc = false
}

// Free marks the parameter to be optimized.
func (p *Parameter) Free() {
	p.state = Free
}

// Freeze holds the parameter fixed.
func (p *Parameter) Freeze() {
	p.state = Frozen
}

func (p *Parameter) IsFree() bool {
	return !p.IsFrozen()
}

func (p *Parameter) IsFrozen() bool {
	return p.state == Frozen
}

// Add adds to the value in place. The operand may be a number, a numeric
// string, or another Parameter, of which only the value is used.
func (p *Parameter) Add(v any) error {
	f, err := operand(v)
	if err != nil {
		return err
	}
	p.val += f
	return nil
}

// Mul scales the value in place, with the same operands as Add.
func (p *Parameter) Mul(v any) error {
	f, err := operand(v)
	if err != nil {
		return err
	}
	p.val *= f
	return nil
}

// Copy returns an independent parameter with the same value, state and
// uncertainty.
func (p *Parameter) Copy() *Parameter {
	c := *p
	return &c
}

// CombineState merges the states of two parameters: the combination is Free
// unless both are frozen. Operands may be *Parameter, State, or int.
func CombineState(a, b any) (State, error) {
	sa, err := operandState(a)
	if err != nil {
		return Frozen, err
	}
	sb, err := operandState(b)
	if err != nil {
		return Frozen, err
	}
	if sa+sb != 0 {
		return Free, nil
	}
	return Frozen, nil
}

// StrVal renders the value: scientific for small magnitudes, fixed-point
// otherwise.
func (p *Parameter) StrVal() string {
	if v := p.val; v < 1e-3 && v > -1e-3 {
		return fmt.Sprintf("%.3e", v)
	}
	return fmt.Sprintf("%.4f", p.val)
}

// String renders "value state" the way model lines carry parameters.
func (p *Parameter) String() string {
	return fmt.Sprintf("%-11s %d", p.StrVal(), p.state)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrValue, x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: want number, got %T", ErrValue, v)
}

func operand(v any) (float64, error) {
	if p, ok := v.(*Parameter); ok {
		return p.val, nil
	}
	return toFloat(v)
}

func operandState(v any) (State, error) {
	switch x := v.(type) {
	case *Parameter:
		return x.state, nil
	case State:
		return x, nil
	case int:
		return State(x), nil
	}
	return Frozen, fmt.Errorf("%w: state of type %T", ErrValue, v)
}

func anySlice(fields []string) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		out[i] = f
	}
	return out
}

func sliceElems(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
