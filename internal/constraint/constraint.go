package constraint

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Constraints is an ordered collection of rules, one constraint file's
// worth. Order is kept for round-trip serialization; it carries no meaning.
type Constraints struct {
	rules []*Rule
}

// New returns an empty collection.
func New() *Constraints {
	return &Constraints{}
}

// Load reads a constraint file. The name "none", like an empty name, stands
// for no file and yields an empty collection.
func Load(path string) (*Constraints, error) {
	if path == "" || path == "none" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loading constraints: %w", err)
	}
	defer f.Close()

	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading constraints from %q: %w", path, err)
	}
	return c, nil
}

// Parse reads rules line by line, skipping blank lines and comments.
func Parse(r io.Reader) (*Constraints, error) {
	c := New()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := c.AddLine(line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading constraints: %w", err)
	}
	return c, nil
}

// Add appends a rule.
func (c *Constraints) Add(r *Rule) {
	c.rules = append(c.rules, r)
}

// AddLine parses one constraint-file line and appends it.
func (c *Constraints) AddLine(line string) error {
	r, err := ParseRule(line)
	if err != nil {
		return err
	}
	c.Add(r)
	return nil
}

// AddRule builds a rule from its parts and appends it.
func (c *Constraints) AddRule(comps []int, par string, kind string, rng ...float64) error {
	r, err := NewRule(comps, par, kind, rng...)
	if err != nil {
		return err
	}
	c.Add(r)
	return nil
}

// AddHardOffset locks the pairwise differences of par across the
// components.
func (c *Constraints) AddHardOffset(comps []int, par string) error {
	return c.AddRule(comps, par, string(HardOffset))
}

// AddHardRatio locks the pairwise ratios of par across the components.
func (c *Constraints) AddHardRatio(comps []int, par string) error {
	return c.AddRule(comps, par, string(HardRatio))
}

// AddPositionOffsets locks the relative positions of the components, a
// hard offset on x and y both. Typical for homocentric bulge/disk fits.
func (c *Constraints) AddPositionOffsets(comps ...int) error {
	if err := c.AddHardOffset(comps, "x"); err != nil {
		return err
	}
	return c.AddHardOffset(comps, "y")
}

// AddRange clamps par of one component to [lo, hi].
func (c *Constraints) AddRange(comp int, par string, lo, hi float64) error {
	return c.AddRule([]int{comp}, par, string(SoftFromTo), lo, hi)
}

// AddShift clamps the deviation of par from its input value to [lo, hi].
func (c *Constraints) AddShift(comp int, par string, lo, hi float64) error {
	return c.AddRule([]int{comp}, par, string(SoftShift), lo, hi)
}

// AddOffsetRange clamps the difference of par between two components to
// [lo, hi].
func (c *Constraints) AddOffsetRange(comp1, comp2 int, par string, lo, hi float64) error {
	return c.AddRule([]int{comp1, comp2}, par, string(SoftOffset), lo, hi)
}

// AddRatioRange clamps the ratio of par between two components to [lo, hi].
func (c *Constraints) AddRatioRange(comp1, comp2 int, par string, lo, hi float64) error {
	return c.AddRule([]int{comp1, comp2}, par, string(SoftRatio), lo, hi)
}

// Len returns the number of rules.
func (c *Constraints) Len() int {
	return len(c.rules)
}

// Rules returns the rules in order.
func (c *Constraints) Rules() []*Rule {
	return append([]*Rule(nil), c.rules...)
}

// String renders the collection one rule per line.
func (c *Constraints) String() string {
	lines := make([]string, len(c.rules))
	for i, r := range c.rules {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

// WriteFile writes the collection as a constraint file.
func (c *Constraints) WriteFile(path string) error {
	if err := os.WriteFile(path, []byte(c.String()+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing constraints: %w", err)
	}
	return nil
}
