package render

import (
	"math"

	decode "github.com/nima-vakili/DECODE"
	"github.com/nima-vakili/DECODE/math/mat"
	"github.com/nima-vakili/DECODE/spline"
)

// NPar is the number of fit parameters per emitter: x, y, z, phot, bg.
const NPar = 5

// roiCorner returns the physical coordinate of a ROI's pixel (0, 0) corner,
// chosen so the emitter sits in the central pixel.
func roiCorner(e decode.Emitter, roiSize int) (cx, cy float64) {
	cx = math.Floor(e.X) - float64((roiSize-1)/2)
	cy = math.Floor(e.Y) - float64((roiSize-1)/2)
	return cx, cy
}

// ROIs renders each emitter alone into its own roiSize x roiSize patch
// centred on the emitter's pixel. Photon counts scale each patch the same way
// they scale full frames.
func ROIs(
	g *spline.Grid, em []decode.Emitter, roiSize int,
) ([][]float64, error) {
	if roiSize <= 0 {
		return nil, spline.DomainErrorf("ROI size %d must be positive.", roiSize)
	}
	if err := validate(em, roiSize); err != nil {
		return nil, err
	}

	rois := make([][]float64, len(em))
	eachEmitter(len(em), func(i int) {
		cx, cy := roiCorner(em[i], roiSize)
		rois[i] = make([]float64, roiSize*roiSize)
		renderInto(
			rois[i], g, em[i:i+1], roiSize, [2]float64{cx, cy},
		)
	})
	return rois, nil
}

// Derivatives returns, for each emitter, the ROI maps of the partial
// derivatives of the expected pixel value mu = phot*f + bg with respect to
// the NPar parameters (order x, y, z, phot, bg), along with the rendered
// ROIs themselves. bgs is the per-emitter background level.
func Derivatives(
	g *spline.Grid, em []decode.Emitter, bgs []float64, roiSize int,
) (drv [][][]float64, rois [][]float64, err error) {
	if err := validateFit(em, bgs, roiSize); err != nil {
		return nil, nil, err
	}

	drv = make([][][]float64, len(em))
	rois = make([][]float64, len(em))

	eachEmitter(len(em), func(i int) {
		drv[i], rois[i] = emitterDerivatives(g, em[i], roiSize)
	})
	return drv, rois, nil
}

func emitterDerivatives(
	g *spline.Grid, e decode.Emitter, roiSize int,
) (drv [][]float64, roi []float64) {
	drv = make([][]float64, NPar)
	for p := range drv {
		drv[p] = make([]float64, roiSize*roiSize)
	}
	roi = make([]float64, roiSize*roiSize)

	cx, cy := roiCorner(e, roiSize)
	px, py := e.X-cx, e.Y-cy

	for iy := 0; iy < roiSize; iy++ {
		for ix := 0; ix < roiSize; ix++ {
			idx := iy*roiSize + ix
			f, dfx, dfy, dfz := g.EvalGrad(
				px-float64(ix), py-float64(iy), e.Z,
			)

			roi[idx] = f * e.Phot
			drv[0][idx] = e.Phot * dfx
			drv[1][idx] = e.Phot * dfy
			drv[2][idx] = e.Phot * dfz
			drv[3][idx] = f
			drv[4][idx] = 1
		}
	}
	return drv, roi
}

// Fisher computes each emitter's NPar x NPar Fisher information matrix under
// the Poisson pixel model mu = phot*f + bg,
//
//	F_ab = sum_px (d mu / d a)(d mu / d b) / mu.
//
// Pixels with non-positive expected value carry no information and are
// skipped.
func Fisher(
	g *spline.Grid, em []decode.Emitter, bgs []float64, roiSize int,
) (fishers [][]float64, rois [][]float64, err error) {
	drv, rois, err := Derivatives(g, em, bgs, roiSize)
	if err != nil {
		return nil, nil, err
	}

	fishers = make([][]float64, len(em))
	for i := range em {
		f := make([]float64, NPar*NPar)
		for idx := range rois[i] {
			mu := rois[i][idx] + bgs[i]
			if mu <= 0 {
				continue
			}
			for a := 0; a < NPar; a++ {
				for b := 0; b < NPar; b++ {
					f[a*NPar+b] += drv[i][a][idx] * drv[i][b][idx] / mu
				}
			}
		}
		fishers[i] = f
	}
	return fishers, rois, nil
}

// CRLB computes each emitter's Cramer-Rao lower bounds, the diagonal of the
// inverted Fisher matrix, in parameter order x, y, z, phot, bg. Emitters
// with a singular Fisher matrix get NaN bounds.
func CRLB(
	g *spline.Grid, em []decode.Emitter, bgs []float64, roiSize int,
) (crlb [][]float64, rois [][]float64, err error) {
	fishers, rois, err := Fisher(g, em, bgs, roiSize)
	if err != nil {
		return nil, nil, err
	}

	crlb = make([][]float64, len(em))
	inv := mat.NewMatrix(make([]float64, NPar*NPar), NPar, NPar)
	luf := mat.NewLUFactors(NPar)

	for i := range fishers {
		crlb[i] = make([]float64, NPar)

		m := mat.NewMatrix(fishers[i], NPar, NPar)
		m.LUFactorsAt(luf)
		if luf.Determinant() == 0 {
			for p := range crlb[i] {
				crlb[i][p] = math.NaN()
			}
			continue
		}

		luf.InvertAt(inv)
		for p := 0; p < NPar; p++ {
			crlb[i][p] = inv.Vals[p*NPar+p]
		}
	}
	return crlb, rois, nil
}

func validateFit(em []decode.Emitter, bgs []float64, roiSize int) error {
	if len(bgs) != len(em) {
		return spline.ShapeErrorf(
			"Got %d emitters but %d background values.", len(em), len(bgs),
		)
	}
	if roiSize <= 0 {
		return spline.DomainErrorf("ROI size %d must be positive.", roiSize)
	}
	return validate(em, roiSize)
}

// eachEmitter runs fn for every index in [0, n), fanned out over NumCores
// workers in contiguous chunks. fn must only write state owned by its index.
func eachEmitter(n int, fn func(i int)) {
	workers := NumCores
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	out := make(chan int, workers)
	chunk := (n + workers - 1) / workers
	for id := 0; id < workers; id++ {
		lo, hi := id*chunk, (id+1)*chunk
		if hi > n {
			hi = n
		}
		go func(lo, hi int) {
			for i := lo; i < hi; i++ {
				fn(i)
			}
			out <- 1
		}(lo, hi)
	}
	for i := 0; i < workers; i++ {
		<-out
	}
}
