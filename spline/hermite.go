package spline

// CellCoeffs1D fits one cubic polynomial per interval of a uniformly sampled
// function, returning the coefficients of cell i as [a0, a1, a2, a3] with
// p(t) = a0 + a1 t + a2 t^2 + a3 t^3 for t in [0, 1). Knot derivatives come
// from centered differences (one-sided at the ends), so value and first
// derivative match across every knot.
//
// fs holds the samples at the n+1 knots of n cells; len(fs) must be at
// least 2.
func CellCoeffs1D(fs []float64) [][4]float64 {
	n := len(fs) - 1
	if n < 1 {
		panic("CellCoeffs1D needs at least two samples.")
	}

	ms := make([]float64, n+1)
	ms[0] = fs[1] - fs[0]
	ms[n] = fs[n] - fs[n-1]
	for i := 1; i < n; i++ {
		ms[i] = (fs[i+1] - fs[i-1]) / 2
	}

	cs := make([][4]float64, n)
	for i := 0; i < n; i++ {
		d := fs[i+1] - fs[i]
		cs[i] = [4]float64{
			fs[i],
			ms[i],
			3*d - 2*ms[i] - ms[i+1],
			-2*d + ms[i] + ms[i+1],
		}
	}
	return cs
}

// Separable builds a Grid for a model that factorizes along the axes,
// f(x, y, z) = fx(x) fy(y) fz(z). cx, cy and cz are the per-axis cell
// coefficients, usually from CellCoeffs1D. Each cell's tensor-product
// coefficients are the outer product of the three 1D polynomials.
func Separable(cx, cy, cz [][4]float64, ref0 [3]int, dz float64) (*Grid, error) {
	nx, ny, nz := len(cx), len(cy), len(cz)
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, ShapeErrorf(
			"Separable axis cell counts (%d, %d, %d) must all be at least 1.",
			nx, ny, nz,
		)
	}

	coeff := make([]float64, nx*ny*nz*CellLen)
	idx := 0
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				for ox := 0; ox < 4; ox++ {
					for oy := 0; oy < 4; oy++ {
						for oz := 0; oz < 4; oz++ {
							coeff[idx] = cx[i][ox] * cy[j][oy] * cz[k][oz]
							idx++
						}
					}
				}
			}
		}
	}

	return NewGrid(coeff, nx, ny, nz, ref0, dz)
}
