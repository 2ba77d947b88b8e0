/*package render rasterizes emitter batches into synthetic camera frames by
evaluating a cubic-spline PSF model at every pixel the model supports.
Rendering is embarrassingly parallel across emitters: workers accumulate into
private buffers which are summed into the output frame afterwards, so no pixel
is ever written concurrently.
*/
package render

import (
	"math"
	"runtime"

	decode "github.com/nima-vakili/DECODE"
	"github.com/nima-vakili/DECODE/spline"
)

// NumCores is the number of worker goroutines used per render call. It
// defaults to the number of logical cores and may be lowered by callers that
// share the machine.
var NumCores = runtime.NumCPU()

// Render accumulates every emitter's PSF contribution into a fresh
// imgSize x imgSize frame, row-major with pixel (0, 0) at corner. Emitter
// positions are physical; corner is the physical coordinate of the frame's
// lower corner.
//
// Render returns a DomainError if imgSize is not positive or any photon
// count is negative. Emitters whose support lies outside the frame or the
// grid contribute nothing.
func Render(
	g *spline.Grid, em []decode.Emitter, imgSize int, corner [2]float64,
) ([]float64, error) {
	if err := validate(em, imgSize); err != nil {
		return nil, err
	}

	img := make([]float64, imgSize*imgSize)
	renderParallel(img, g, em, imgSize, corner)
	return img, nil
}

// RenderArrays is the parallel-array entry point: positions and photon
// counts are given as four equal-length slices. It returns a ShapeError if
// the lengths differ.
func RenderArrays(
	g *spline.Grid, xs, ys, zs, phots []float64,
	imgSize int, corner [2]float64,
) ([]float64, error) {
	em, ok := decode.Emitters(xs, ys, zs, phots)
	if !ok {
		return nil, spline.ShapeErrorf(
			"Emitter arrays have lengths (%d, %d, %d, %d).",
			len(xs), len(ys), len(zs), len(phots),
		)
	}
	return Render(g, em, imgSize, corner)
}

// RenderFrames renders a batch of emitters into the frame stack
// [ixLo, ixHi], selected per emitter by its Frame index. Emitters outside
// the range are skipped. The result holds ixHi-ixLo+1 frames.
func RenderFrames(
	g *spline.Grid, em []decode.Emitter,
	ixLo, ixHi, imgSize int, corner [2]float64,
) ([][]float64, error) {
	if ixHi < ixLo {
		return nil, spline.DomainErrorf("Frame range [%d, %d] is empty.", ixLo, ixHi)
	}
	if err := validate(em, imgSize); err != nil {
		return nil, err
	}

	frames := make([][]float64, ixHi-ixLo+1)
	byFrame := make([][]decode.Emitter, len(frames))
	for _, e := range em {
		if e.Frame < ixLo || e.Frame > ixHi {
			continue
		}
		byFrame[e.Frame-ixLo] = append(byFrame[e.Frame-ixLo], e)
	}

	for fi := range frames {
		frames[fi] = make([]float64, imgSize*imgSize)
		renderParallel(frames[fi], g, byFrame[fi], imgSize, corner)
	}
	return frames, nil
}

// validate fails fast before any pixel is touched, so erroring calls have no
// partial effect.
func validate(em []decode.Emitter, imgSize int) error {
	if imgSize <= 0 {
		return spline.DomainErrorf("Image size %d must be positive.", imgSize)
	}
	for i := range em {
		if em[i].Phot < 0 {
			return spline.DomainErrorf(
				"Emitter %d has negative photon count %g.", i, em[i].Phot,
			)
		}
	}
	return nil
}

// renderParallel fans emitters out over NumCores workers with private image
// buffers and reduces them by elementwise summation. Buffers are merged in
// worker order, so repeated calls sum in the same order.
func renderParallel(
	img []float64, g *spline.Grid, em []decode.Emitter,
	imgSize int, corner [2]float64,
) {
	workers := NumCores
	if workers < 1 {
		workers = 1
	}
	if workers > len(em) {
		workers = len(em)
	}
	if workers <= 1 {
		renderInto(img, g, em, imgSize, corner)
		return
	}

	bufs := make([][]float64, workers)
	out := make(chan int, workers)

	chunk := (len(em) + workers - 1) / workers
	for id := 0; id < workers; id++ {
		bufs[id] = make([]float64, len(img))
		lo, hi := id*chunk, (id+1)*chunk
		if hi > len(em) {
			hi = len(em)
		}

		go func(id, lo, hi int) {
			renderInto(bufs[id], g, em[lo:hi], imgSize, corner)
			out <- id
		}(id, lo, hi)
	}

	for i := 0; i < workers; i++ {
		<-out
	}
	for id := 0; id < workers; id++ {
		for i, x := range bufs[id] {
			img[i] += x
		}
	}
}

// renderInto is the sequential kernel shared by all entry points. For each
// emitter it walks the pixel window covered by the grid's support, queries
// the spline at the pixel's offset from the emitter and deposits the photon
// scaled intensity. Pixels outside the frame are clipped; pixels outside the
// grid evaluate to zero.
func renderInto(
	img []float64, g *spline.Grid, em []decode.Emitter,
	imgSize int, corner [2]float64,
) {
	nx, ny, _ := g.Dims()
	ref0 := g.Ref0()

	for _, e := range em {
		if e.Phot == 0 {
			continue
		}

		// Pixel-local emitter position.
		px := e.X - corner[0]
		py := e.Y - corner[1]

		// The grid supports pixels whose offset from the emitter maps
		// inside it: exactly nx (ny) consecutive pixels per axis, ending at
		// the emitter's pixel shifted by the reference cell.
		bx := int(math.Floor(px)) + ref0[0]
		by := int(math.Floor(py)) + ref0[1]

		x0, x1 := clip(bx-nx+1, bx, imgSize)
		y0, y1 := clip(by-ny+1, by, imgSize)

		for iy := y0; iy <= y1; iy++ {
			row := iy * imgSize
			for ix := x0; ix <= x1; ix++ {
				f := g.Eval(px-float64(ix), py-float64(iy), e.Z)
				if f != 0 {
					img[row+ix] += f * e.Phot
				}
			}
		}
	}
}

// clip intersects the inclusive pixel range [lo, hi] with [0, size).
func clip(lo, hi, size int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > size-1 {
		hi = size - 1
	}
	return lo, hi
}
