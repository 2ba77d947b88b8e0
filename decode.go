/*package decode simulates camera frames of single-molecule localization
microscopy experiments. A fitted cubic-spline point-spread-function model
(package spline) is evaluated at emitter positions and rendered additively
into images (package render). Simpler reference PSF models live in package
psf.
*/
package decode

// Emitter is a single point source. X, Y are given in pixel/cell units, Z in
// physical units, Phot is the photon count that scales the PSF and Frame
// selects the output frame in batched rendering.
type Emitter struct {
	X, Y, Z float64
	Phot    float64
	Frame   int
}

// Emitters collects parallel position and photon arrays into an Emitter
// slice. The arrays must have equal lengths.
func Emitters(xs, ys, zs, phots []float64) ([]Emitter, bool) {
	if len(ys) != len(xs) || len(zs) != len(xs) || len(phots) != len(xs) {
		return nil, false
	}

	em := make([]Emitter, len(xs))
	for i := range em {
		em[i] = Emitter{X: xs[i], Y: ys[i], Z: zs[i], Phot: phots[i]}
	}
	return em, true
}
