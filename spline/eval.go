package spline

import (
	"math"
)

// Locate maps a physical coordinate to the cell containing it and the local
// fractional offsets within that cell. x and y are in cell units, z in
// physical units. ok is false when the coordinate falls outside the grid; the
// model has no support there and callers substitute zero intensity.
func (g *Grid) Locate(x, y, z float64) (i, j, k int, u, v, w float64, ok bool) {
	zc := z / g.dz
	fx, fy, fz := math.Floor(x), math.Floor(y), math.Floor(zc)

	i = int(fx) + g.ref0[0]
	j = int(fy) + g.ref0[1]
	k = int(fz) + g.ref0[2]

	u, v, w = x-fx, y-fy, zc-fz

	ok = i >= 0 && i < g.nx &&
		j >= 0 && j < g.ny &&
		k >= 0 && k < g.nz
	return i, j, k, u, v, w, ok
}

// EvalCell evaluates the tensor-product cubic polynomial of a single cell at
// the local offsets (u, v, w),
//
//	sum_{ox,oy,oz} c[(ox*4+oy)*4+oz] u^ox v^oy w^oz,
//
// using a nested Horner scheme, innermost in z.
func EvalCell(c []float64, u, v, w float64) float64 {
	val := 0.0
	for ox := 3; ox >= 0; ox-- {
		yAcc := 0.0
		for oy := 3; oy >= 0; oy-- {
			off := (ox*4 + oy) * 4
			zAcc := 0.0
			for oz := 3; oz >= 0; oz-- {
				zAcc = zAcc*w + c[off+oz]
			}
			yAcc = yAcc*v + zAcc
		}
		val = val*u + yAcc
	}
	return val
}

// EvalCellGrad evaluates a cell's polynomial along with its first partial
// derivatives with respect to the local offsets. The polynomial is collapsed
// onto each axis in turn, then the 1D value and derivative come from the same
// Horner scheme as EvalCell with the power rule applied term-wise.
func EvalCellGrad(c []float64, u, v, w float64) (val, du, dv, dw float64) {
	// au[ox]: the (v, w) sub-polynomials, and likewise for the other axes.
	var au, av, aw [4]float64

	uPow := 1.0
	for ox := 0; ox < 4; ox++ {
		vPow := 1.0
		for oy := 0; oy < 4; oy++ {
			off := (ox*4 + oy) * 4

			zAcc := 0.0
			wPow := 1.0
			for oz := 0; oz < 4; oz++ {
				zAcc += c[off+oz] * wPow
				aw[oz] += c[off+oz] * uPow * vPow
				wPow *= w
			}

			au[ox] += zAcc * vPow
			av[oy] += zAcc * uPow
			vPow *= v
		}
		uPow *= u
	}

	val = ((au[3]*u+au[2])*u+au[1])*u + au[0]
	du = (3*au[3]*u+2*au[2])*u + au[1]
	dv = (3*av[3]*v+2*av[2])*v + av[1]
	dw = (3*aw[3]*w+2*aw[2])*w + aw[1]
	return val, du, dv, dw
}

// Eval returns the model intensity at a single physical coordinate. Points
// outside the grid evaluate to 0.
func (g *Grid) Eval(x, y, z float64) float64 {
	i, j, k, u, v, w, ok := g.Locate(x, y, z)
	if !ok {
		return 0
	}
	return EvalCell(g.Cell(i, j, k), u, v, w)
}

// EvalGrad returns the model intensity at a physical coordinate together
// with its gradient in physical units. The z derivative is rescaled from
// cell-local to physical spacing. Points outside the grid evaluate to zeros.
func (g *Grid) EvalGrad(x, y, z float64) (val, dx, dy, dz float64) {
	i, j, k, u, v, w, ok := g.Locate(x, y, z)
	if !ok {
		return 0, 0, 0, 0
	}
	val, du, dv, dw := EvalCellGrad(g.Cell(i, j, k), u, v, w)
	return val, du, dv, dw / g.dz
}
