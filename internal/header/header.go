// Package header implements the control block of a galfit input file: the
// lettered parameters A through P naming the images, fit region, zeropoint,
// and run mode. File-path parameters are plain strings here; resolving them
// against a working directory is the document's business.
package header

import (
	"fmt"

	"github.com/hujh08/galfit/internal/record"
)

var schema = record.MustCompile(record.Spec{
	Keys: []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "O", "P"},
	Aliases: map[string][]string{
		"A": {"input"},
		"B": {"output"},
		"C": {"sigma"},
		"D": {"psf"},
		"E": {"psfFactor"},
		"F": {"mask"},
		"G": {"constraints", "cons"},
		"H": {"region", "fitregion", "xyminmax"},
		"I": {"conv"},
		"J": {"zerop"},
		"K": {"pscale", "psize"},
		"O": {"disp"},
		"P": {"mod"},
	},
	Names: map[string]string{
		"A": "input image",
		"B": "output image block",
		"C": "sigma file",
		"D": "psf file",
		"E": "psf sampling factor",
		"F": "mask file",
		"G": "constraint file",
		"H": "fit region",
		"I": "convolution box",
		"J": "magnitude zeropoint",
		"K": "pixel size",
		"O": "display type",
		"P": "fit mode",
	},
	Comments: map[string]string{
		"A": "Input data image (FITS file)",
		"B": "Output data image block",
		"C": "Sigma image",
		"D": "Input PSF image",
		"E": "PSF fine sampling factor relative to data",
		"F": "Bad pixel mask",
		"G": "File with parameter constraints (ASCII file)",
		"H": "Image region",
		"I": "Size for convolution (x y)",
		"J": "Magnitude photometric zeropoint",
		"K": "Plate scale (dx dy)   [arcsec per pixel]",
		"O": "Display type (regular, curses, both)",
		"P": "0=optimize, 1=model, 2=imgblock, 3=subcomps",
	},
	Examples: map[string]any{
		"A": "none",
		"B": "none",
		"C": "none",
		"D": "none",
		"E": 1, // galfit only accepts an integer here
		"F": "none",
		"G": "none",
		"H": []int{0, 0, 0, 0},
		"I": []int{0, 0},
		"J": 20.0,
		"K": []float64{1.0, 1.0},
		"O": "regular",
		"P": "0",
	},
	Required: []string{"B", "H", "I"},
	Allowed: map[string][]string{
		"O": {"regular", "curses", "both"},
		"P": {"0", "1", "2", "3"},
	},
	ValueAliases: map[string]map[string][]string{
		"P": {
			"0": {"optimize", "opt", "o"},
			"1": {"model", "mod", "m"},
			"2": {"imgblock", "block", "b"},
			"3": {"subcomps", "sub", "s"},
		},
	},
})

// modeNames maps the stored fit mode to its spoken name.
var modeNames = map[string]string{
	"0": "optimize",
	"1": "model",
	"2": "imgblock",
	"3": "subcomps",
}

// filePars are the parameters naming files on disk.
var filePars = []string{"A", "C", "D", "F", "G"}

// Header is the control block of one galfit input file.
type Header struct {
	*record.Record
}

// New returns an empty header.
func New() *Header {
	return &Header{Record: schema.NewRecord()}
}

// Schema returns the header schema, shared by all headers.
func Schema() *record.Schema {
	return schema
}

// Copy returns an independent header with the same set keys.
func (h *Header) Copy() *Header {
	return &Header{Record: h.Record.Copy()}
}

// FilePars lists the parameters that name files on disk.
func FilePars() []string {
	return append([]string(nil), filePars...)
}

// IsFilePar reports whether the key names a file parameter, directly or by
// alias.
func IsFilePar(key string) bool {
	k, ok := schema.Canonical(key)
	if !ok {
		return false
	}
	for _, p := range filePars {
		if p == k {
			return true
		}
	}
	return false
}

// IsNone reports whether a string parameter holds "none", galfit's marker
// for an absent file.
func (h *Header) IsNone(key string) (bool, error) {
	v, err := h.GetString(key)
	if err != nil {
		return false, err
	}
	return v == "none", nil
}

// SetMode sets the fit mode, parameter P. Ints 0 to 3 and the spoken names
// (optimize, model, imgblock, subcomps) are accepted.
func (h *Header) SetMode(mode any) error {
	switch v := mode.(type) {
	case int:
		return h.Set("P", fmt.Sprintf("%d", v))
	case string:
		return h.Set("P", v)
	}
	return fmt.Errorf("%w: fit mode of type %T", record.ErrInvalidValue, mode)
}

// Mode returns the stored fit mode, "0" to "3".
func (h *Header) Mode() (string, error) {
	return h.GetString("P")
}

// ModeName returns the spoken name of the fit mode.
func (h *Header) ModeName() (string, error) {
	m, err := h.Mode()
	if err != nil {
		return "", err
	}
	return modeNames[m], nil
}

// UseFitMode sets the optimize mode: run the fit.
func (h *Header) UseFitMode() error {
	return h.SetMode(0)
}

// UseCreateMode sets an image-creation mode, no optimizing. Mode 3 when
// subcomps is set, else 2 when block is set, else 1.
func (h *Header) UseCreateMode(block, subcomps bool) error {
	switch {
	case subcomps:
		return h.SetMode(3)
	case block:
		return h.SetMode(2)
	default:
		return h.SetMode(1)
	}
}

// SetRegion sets the fit region, 1-based inclusive pixel bounds.
func (h *Header) SetRegion(x0, x1, y0, y1 int) error {
	return h.Set("H", []int{x0, x1, y0, y1})
}

// Region returns the fit region bounds (x0, x1, y0, y1).
func (h *Header) Region() ([4]int, error) {
	v, err := h.GetInts("H")
	if err != nil {
		return [4]int{}, err
	}
	var r [4]int
	copy(r[:], v)
	return r, nil
}

// RegionShape returns the pixel shape of the fit region, (nx, ny) when
// xyOrder, (ny, nx) otherwise to match array indexing.
func (h *Header) RegionShape(xyOrder bool) (int, int, error) {
	r, err := h.Region()
	if err != nil {
		return 0, 0, err
	}
	nx, ny := r[1]-r[0]+1, r[3]-r[2]+1
	if xyOrder {
		return nx, ny, nil
	}
	return ny, nx, nil
}

// SetConvBox sets the convolution box size.
func (h *Header) SetConvBox(nx, ny int) error {
	return h.Set("I", []int{nx, ny})
}
