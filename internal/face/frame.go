package face

// Frame is a single grayscale camera frame, row-major, one byte per pixel.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// Rect is a face region inside a frame.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Area() int {
	return r.W * r.H
}

// NewFrame allocates a zeroed frame.
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

func (f *Frame) At(x, y int) uint8 {
	return f.Pix[y*f.Width+x]
}

func (f *Frame) Set(x, y int, v uint8) {
	f.Pix[y*f.Width+x] = v
}

// MeanBrightness is the mean pixel value of the frame.
func (f *Frame) MeanBrightness() float64 {
	if len(f.Pix) == 0 {
		return 0
	}
	var sum int64
	for _, p := range f.Pix {
		sum += int64(p)
	}
	return float64(sum) / float64(len(f.Pix))
}

// LaplacianVariance is the variance of the 4-neighbor Laplacian response over
// interior pixels. Low values indicate a blurred capture.
func (f *Frame) LaplacianVariance() float64 {
	if f.Width < 3 || f.Height < 3 {
		return 0
	}

	n := (f.Width - 2) * (f.Height - 2)
	responses := make([]float64, 0, n)
	var sum float64

	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			v := 4*float64(f.At(x, y)) -
				float64(f.At(x-1, y)) - float64(f.At(x+1, y)) -
				float64(f.At(x, y-1)) - float64(f.At(x, y+1))
			responses = append(responses, v)
			sum += v
		}
	}

	mean := sum / float64(n)
	var variance float64
	for _, v := range responses {
		d := v - mean
		variance += d * d
	}
	return variance / float64(n)
}

// Crop returns a copy of the region r, clipped to the frame bounds.
func (f *Frame) Crop(r Rect) *Frame {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.W, f.Width), min(r.Y+r.H, f.Height)
	if x1 <= x0 || y1 <= y0 {
		return NewFrame(0, 0)
	}

	out := NewFrame(x1-x0, y1-y0)
	for y := y0; y < y1; y++ {
		copy(out.Pix[(y-y0)*out.Width:(y-y0+1)*out.Width], f.Pix[y*f.Width+x0:y*f.Width+x1])
	}
	return out
}
