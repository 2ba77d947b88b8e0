/*package spline evaluates precomputed 3D cubic-spline models of microscope
point-spread functions. A Grid stores one 4x4x4 tensor-product polynomial per
cell, the format produced by standard bead-calibration fits. Grids are
immutable after construction and may be shared freely between goroutines.
*/
package spline

import (
	"fmt"
)

// CellLen is the number of polynomial coefficients stored per grid cell, one
// for each (ox, oy, oz) power triple with ox, oy, oz in 0..3.
const CellLen = 64

// ShapeError indicates a coefficient buffer whose size is inconsistent with
// the requested grid dimensions.
type ShapeError struct {
	msg string
}

func (e *ShapeError) Error() string { return e.msg }

// DomainError indicates a scalar parameter outside its valid range.
type DomainError struct {
	msg string
}

func (e *DomainError) Error() string { return e.msg }

// ShapeErrorf formats a new ShapeError.
func ShapeErrorf(format string, args ...interface{}) error {
	return &ShapeError{fmt.Sprintf(format, args...)}
}

// DomainErrorf formats a new DomainError.
func DomainErrorf(format string, args ...interface{}) error {
	return &DomainError{fmt.Sprintf(format, args...)}
}

// Grid is an immutable lattice of spline cells. Cell (i, j, k) covers the
// unit cube of local coordinates (u, v, w) in [0, 1)^3 and holds the CellLen
// coefficients of its cubic polynomial.
type Grid struct {
	coeff      []float64
	nx, ny, nz int
	ref0       [3]int
	dz         float64
}

// NewGrid constructs a Grid from a flat row-major coefficient buffer with
// shape [nx][ny][nz][CellLen]. ref0 is the cell index corresponding to the
// physical origin and dz the physical z spacing per cell.
//
// The buffer is copied, so the caller may reuse coeff afterwards. NewGrid
// returns a ShapeError if the buffer does not match the dimensions or any
// dimension is smaller than 1, and a DomainError if dz is not positive.
func NewGrid(coeff []float64, nx, ny, nz int, ref0 [3]int, dz float64) (*Grid, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, ShapeErrorf(
			"Grid dimensions (%d, %d, %d) must all be at least 1.",
			nx, ny, nz,
		)
	}
	if len(coeff)%CellLen != 0 {
		return nil, ShapeErrorf(
			"Coefficient buffer length %d is not a multiple of %d.",
			len(coeff), CellLen,
		)
	}
	if len(coeff) != nx*ny*nz*CellLen {
		return nil, ShapeErrorf(
			"Coefficient buffer length %d does not match %d x %d x %d cells.",
			len(coeff), nx, ny, nz,
		)
	}
	if dz <= 0 {
		return nil, DomainErrorf("Z spacing %g must be positive.", dz)
	}

	g := &Grid{
		coeff: make([]float64, len(coeff)),
		nx:    nx, ny: ny, nz: nz,
		ref0: ref0,
		dz:   dz,
	}
	copy(g.coeff, coeff)

	return g, nil
}

// Dims returns the number of cells along each axis.
func (g *Grid) Dims() (nx, ny, nz int) { return g.nx, g.ny, g.nz }

// Ref0 returns the cell index of the physical origin.
func (g *Grid) Ref0() [3]int { return g.ref0 }

// Dz returns the physical z spacing per cell.
func (g *Grid) Dz() float64 { return g.dz }

// Cell returns the coefficient slice of cell (i, j, k). The indices must be
// within the grid.
func (g *Grid) Cell(i, j, k int) []float64 {
	idx := ((i*g.ny + j) * g.nz) + k
	return g.coeff[idx*CellLen : (idx+1)*CellLen]
}
