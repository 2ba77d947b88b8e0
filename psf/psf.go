/*package psf provides the point-spread-function models frames can be
simulated with. CubicSpline wraps the calibrated spline engine; Delta and
GaussianExpect are the simpler reference models used for debugging and for
generating synthetic calibrations.
*/
package psf

import (
	decode "github.com/nima-vakili/DECODE"
	"github.com/nima-vakili/DECODE/render"
	"github.com/nima-vakili/DECODE/spline"
)

// Model renders an emitter batch into a single square frame. corner is the
// physical coordinate of pixel (0, 0).
type Model interface {
	Forward(em []decode.Emitter, imgSize int, corner [2]float64) ([]float64, error)
}

var (
	_ Model = &CubicSpline{}
	_ Model = &Delta{}
	_ Model = &GaussianExpect{}
)

// CubicSpline is the calibrated spline PSF, the model used for realistic
// simulations.
type CubicSpline struct {
	Grid *spline.Grid
}

func (cs *CubicSpline) Forward(
	em []decode.Emitter, imgSize int, corner [2]float64,
) ([]float64, error) {
	return render.Render(cs.Grid, em, imgSize, corner)
}
