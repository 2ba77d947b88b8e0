/*package mat contains the small dense-matrix routines the fitting code
needs: LU decomposition with partial pivoting, linear solves, inversion and
determinants. Everything works on square matrices only.
*/
package mat

import (
	"math"
)

// Matrix represents a row-major matrix of float64 values.
type Matrix struct {
	Vals          []float64
	Width, Height int
}

// LUFactors holds an LU decomposition. Exporting this type lets callers
// reuse one decomposition for many solves and avoid reallocating workspaces
// in inner loops.
type LUFactors struct {
	lu    Matrix
	pivot []int
	d     float64
}

// NewMatrix creates a matrix with the specified values and dimensions.
func NewMatrix(vals []float64, width, height int) *Matrix {
	if width <= 0 {
		panic("width must be positive.")
	} else if height <= 0 {
		panic("height must be positive.")
	} else if width*height != len(vals) {
		panic("height * width must equal len(vals).")
	}

	return &Matrix{Vals: vals, Width: width, Height: height}
}

// NewLUFactors creates an LUFactors instance of the requested dimension.
func NewLUFactors(n int) *LUFactors {
	luf := new(LUFactors)

	luf.lu.Vals, luf.lu.Width, luf.lu.Height = make([]float64, n*n), n, n
	luf.pivot = make([]int, n)
	luf.d = 1

	return luf
}

// LU returns the LU decomposition of a matrix.
func (m *Matrix) LU() *LUFactors {
	if m.Width != m.Height {
		panic("m is non-square.")
	}

	luf := NewLUFactors(m.Width)
	m.LUFactorsAt(luf)
	return luf
}

// LUFactorsAt stores the LU decomposition of m into luf.
func (m *Matrix) LUFactorsAt(luf *LUFactors) {
	if luf.lu.Width != m.Width || luf.lu.Height != m.Height {
		panic("luf has different dimensions than m.")
	}

	copy(luf.lu.Vals, m.Vals)
	luf.factorizeInPlace()
}

// factorizeInPlace is Crout's algorithm with implicit-scaling partial
// pivoting. pivot[k] records the row swapped into position k at step k.
func (luf *LUFactors) factorizeInPlace() {
	lu, n := luf.lu.Vals, luf.lu.Width
	vv := make([]float64, n)
	luf.d = 1

	for i := 0; i < n; i++ {
		big := 0.0
		for j := 0; j < n; j++ {
			if tmp := math.Abs(lu[i*n+j]); tmp > big {
				big = tmp
			}
		}
		if big == 0 {
			// All-zero row: leave the zero pivot in place so Determinant
			// reports 0 instead of panicking mid-decomposition.
			big = 1
		}
		vv[i] = 1 / big
	}

	for k := 0; k < n; k++ {
		big, imax := 0.0, k
		for i := k; i < n; i++ {
			if tmp := vv[i] * math.Abs(lu[i*n+k]); tmp > big {
				big = tmp
				imax = i
			}
		}

		if k != imax {
			for j := 0; j < n; j++ {
				lu[imax*n+j], lu[k*n+j] = lu[k*n+j], lu[imax*n+j]
			}
			luf.d = -luf.d
			vv[imax] = vv[k]
		}
		luf.pivot[k] = imax

		if lu[k*n+k] == 0 {
			continue
		}
		for i := k + 1; i < n; i++ {
			lu[i*n+k] /= lu[k*n+k]
			tmp := lu[i*n+k]
			for j := k + 1; j < n; j++ {
				lu[i*n+j] -= tmp * lu[k*n+j]
			}
		}
	}
}

// SolveVector solves M * xs = bs for xs.
//
// bs and xs may point to the same physical memory. bs is clobbered either
// way.
func (luf *LUFactors) SolveVector(bs, xs []float64) []float64 {
	n := luf.lu.Width
	if n != len(bs) {
		panic("len(b) != luf.Width")
	} else if n != len(xs) {
		panic("len(x) != luf.Width")
	}

	ys := xs
	if &bs[0] == &ys[0] {
		bs = make([]float64, n)
		copy(bs, ys)
	}

	// Solve L * y = P b for y, then U * x = y for x.
	forwardSubst(n, luf.pivot, luf.lu.Vals, bs, ys)
	backSubst(n, luf.lu.Vals, ys, xs)

	return xs
}

// forwardSubst replays the row swaps recorded during factorization while
// solving L * y = b. pivot[i] >= i always holds, so the swap at step i only
// touches the not-yet-consumed tail of bs.
func forwardSubst(n int, pivot []int, lu, bs, ys []float64) {
	for i := 0; i < n; i++ {
		ip := pivot[i]
		sum := bs[ip]
		bs[ip] = bs[i]
		for j := 0; j < i; j++ {
			sum -= lu[i*n+j] * ys[j]
		}
		ys[i] = sum
	}
}

// backSubst solves U * x = y.
func backSubst(n int, lu, ys, xs []float64) {
	for i := n - 1; i >= 0; i-- {
		sum := ys[i]
		for j := i + 1; j < n; j++ {
			sum -= lu[i*n+j] * xs[j]
		}
		xs[i] = sum / lu[i*n+i]
	}
}

// SolveMatrix solves the equation M * x = b column by column.
//
// x and b may point to the same physical memory.
func (luf *LUFactors) SolveMatrix(b, x *Matrix) *Matrix {
	n := luf.lu.Width

	if b.Width != b.Height {
		panic("b matrix is non-square.")
	} else if x.Width != x.Height {
		panic("x matrix is non-square.")
	} else if n != b.Width {
		panic("b matrix different size than m matrix.")
	} else if n != x.Width {
		panic("x matrix different size than m matrix.")
	}

	col := make([]float64, n)
	buf := make([]float64, n)

	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			col[i] = b.Vals[i*n+j]
		}
		luf.SolveVector(col, buf)
		for i := 0; i < n; i++ {
			x.Vals[i*n+j] = buf[i]
		}
	}

	return x
}

// InvertAt inverts the matrix represented by the given LU decomposition and
// writes the result into out.
func (luf *LUFactors) InvertAt(out *Matrix) *Matrix {
	n := luf.lu.Width
	if out.Width != out.Height {
		panic("out matrix is non-square.")
	} else if n != out.Width {
		panic("out matrix different size than m matrix.")
	}

	id := NewMatrix(make([]float64, n*n), n, n)
	for i := 0; i < n; i++ {
		id.Vals[i*n+i] = 1
	}

	luf.SolveMatrix(id, out)
	return out
}

// Invert computes the inverse of a matrix.
func (m *Matrix) Invert() *Matrix {
	luf := m.LU()
	inv := NewMatrix(make([]float64, len(m.Vals)), m.Width, m.Height)
	return luf.InvertAt(inv)
}

// Determinant computes the determinant of the matrix represented by the
// given LU decomposition.
func (luf *LUFactors) Determinant() float64 {
	d := luf.d
	lu := luf.lu.Vals
	n := luf.lu.Width

	for i := 0; i < n; i++ {
		d *= lu[i*n+i]
	}
	return d
}

// Determinant computes the determinant of a matrix.
func (m *Matrix) Determinant() float64 {
	return m.LU().Determinant()
}
