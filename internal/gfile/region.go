package gfile

// Region is a rectangular pixel region, 1-based inclusive on both axes, the
// convention of the header's fit-region parameter.
type Region struct {
	X0, X1 int
	Y0, Y1 int
}

// Shape returns the pixel extent (nx, ny) of the region.
func (r Region) Shape() (int, int) {
	return r.X1 - r.X0 + 1, r.Y1 - r.Y0 + 1
}

// Clip bounds the region to a w by h image.
func (r Region) Clip(w, h int) Region {
	c := r
	if c.X0 < 1 {
		c.X0 = 1
	}
	if c.Y0 < 1 {
		c.Y0 = 1
	}
	if c.X1 > w {
		c.X1 = w
	}
	if c.Y1 > h {
		c.Y1 = h
	}
	return c
}

// PixelSource is the view of image data the document needs: its shape and
// rectangular cutouts. Reading pixel files is the caller's concern.
type PixelSource interface {
	Shape() (w, h int)
	SubImage(r Region) ([][]float64, error)
}

// Region returns the header's fit region.
func (f *File) Region() (Region, error) {
	b, err := f.Header.Region()
	if err != nil {
		return Region{}, err
	}
	return Region{X0: b[0], X1: b[1], Y0: b[2], Y1: b[3]}, nil
}

// SetRegion stores the fit region in the header.
func (f *File) SetRegion(r Region) error {
	return f.Header.SetRegion(r.X0, r.X1, r.Y0, r.Y1)
}

// CutRegion returns the fit region's pixels from src, clipped to the
// image bounds.
func (f *File) CutRegion(src PixelSource) ([][]float64, error) {
	reg, err := f.Region()
	if err != nil {
		return nil, err
	}
	w, h := src.Shape()
	return src.SubImage(reg.Clip(w, h))
}
