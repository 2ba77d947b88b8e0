/*psf_profile plots the lateral profile of a synthesized spline PSF against
the exact pixel-integrated Gaussian it was fit to, along with the axial
intensity falloff. Useful for eyeballing interpolation error before using a
grid in a simulation.
*/
package main

import (
	"log"

	plt "github.com/phil-mansfield/pyplot"

	decode "github.com/nima-vakili/DECODE"
	"github.com/nima-vakili/DECODE/psf"
)

const (
	sigma = 1.3
	depth = 400.0

	gridSize = 16
	gridNz   = 32
	gridDz   = 25.0

	samples = 400
)

func main() {
	grid, err := psf.SplineGaussian(gridSize, sigma, gridNz, gridDz, depth)
	if err != nil {
		log.Fatal(err.Error())
	}
	exact := &psf.GaussianExpect{Sigma0: sigma, Depth: depth}

	plt.Reset()

	xs := make([]float64, samples)
	spYs := make([]float64, samples)
	exYs := make([]float64, samples)
	for i := range xs {
		xs[i] = -6 + 12*float64(i)/float64(samples-1)
		spYs[i] = grid.Eval(xs[i], 0.5, 0)

		// One pixel whose far edge sits at the spline offset.
		img, err := exact.Forward(pointAt(xs[i]), 1, [2]float64{-1, -1})
		if err != nil {
			log.Fatal(err.Error())
		}
		exYs[i] = img[0]
	}

	plt.Figure()
	plt.Plot(xs, exYs, "k", plt.Label("Pixel-integrated Gaussian"), plt.LW(3))
	plt.Plot(xs, spYs, "r", plt.Label("Spline fit"), plt.LW(1))
	plt.XLabel("Lateral offset [pixels]")
	plt.YLabel("Expected pixel fraction")
	plt.Legend(plt.Loc("upper left"))

	zs := make([]float64, samples)
	axYs := make([]float64, samples)
	zMax := gridDz * float64(gridNz) / 2
	for i := range zs {
		zs[i] = -zMax + 2*zMax*float64(i)/float64(samples-1)
		axYs[i] = grid.Eval(0.5, 0.5, zs[i])
	}

	plt.Figure()
	plt.Plot(zs, axYs, "b", plt.Label("Axial falloff"), plt.LW(3))
	plt.XLabel("z offset")
	plt.YLabel("Peak intensity")
	plt.Legend(plt.Loc("upper right"))

	plt.Show()
}

// pointAt places a unit emitter so its offset from the single output pixel
// is x.
func pointAt(x float64) []decode.Emitter {
	return []decode.Emitter{{X: x - 1, Y: -0.5, Z: 0, Phot: 1}}
}
