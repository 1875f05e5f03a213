package preset

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes the top-level blocks of a preset file.
type fileRoot struct {
	Fits []*fitBlock `hcl:"fit,block"`
}

// fitBlock is one `fit "name" { ... }` block: the control parameters of a
// run plus its components and constraints. Only the parameters galfit
// requires are mandatory here; the rest fall back to the header defaults.
type fitBlock struct {
	Name string `hcl:"name,label"`

	Input     *string `hcl:"input,optional"`
	Output    string  `hcl:"output"`
	Sigma     *string `hcl:"sigma,optional"`
	PSF       *string `hcl:"psf,optional"`
	PSFFactor *int    `hcl:"psf_factor,optional"`
	Mask      *string `hcl:"mask,optional"`

	Region    []int     `hcl:"region"`
	ConvBox   []int     `hcl:"convbox"`
	Zeropoint *float64  `hcl:"zeropoint,optional"`
	PixScale  []float64 `hcl:"pixscale,optional"`
	Display   *string   `hcl:"display,optional"`
	Mode      *string   `hcl:"mode,optional"`

	Components  []*componentBlock  `hcl:"component,block"`
	Constraints []*constraintBlock `hcl:"constraint,block"`
}

// componentBlock is a `component "type" { ... }` block. Everything beyond
// free and skip stays in Body: those attributes are the component's fit
// parameters, named by their aliases.
type componentBlock struct {
	Type string   `hcl:"type,label"`
	Free []string `hcl:"free,optional"`
	Skip *bool    `hcl:"skip,optional"`
	Body hcl.Body `hcl:",remain"`
}

// constraintBlock is one rule of the generated constraint file. Soft kinds
// carry a two-value range.
type constraintBlock struct {
	Kind       string    `hcl:"kind"`
	Components []int     `hcl:"components"`
	Parameter  string    `hcl:"parameter"`
	Range      []float64 `hcl:"range,optional"`
}
