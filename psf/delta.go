package psf

import (
	"math"

	decode "github.com/nima-vakili/DECODE"
	"github.com/nima-vakili/DECODE/spline"
)

// Delta deposits every emitter's full photon count on the pixel containing
// it. It is mostly useful as a ground-truth target when training localizers
// and as a cheap stand-in while debugging pipelines.
type Delta struct{}

func (d *Delta) Forward(
	em []decode.Emitter, imgSize int, corner [2]float64,
) ([]float64, error) {
	if imgSize <= 0 {
		return nil, spline.DomainErrorf("Image size %d must be positive.", imgSize)
	}

	img := make([]float64, imgSize*imgSize)
	for i := range em {
		if em[i].Phot < 0 {
			return nil, spline.DomainErrorf(
				"Emitter %d has negative photon count %g.", i, em[i].Phot,
			)
		}
	}

	for _, e := range em {
		ix := int(math.Floor(e.X - corner[0]))
		iy := int(math.Floor(e.Y - corner[1]))
		if ix < 0 || ix >= imgSize || iy < 0 || iy >= imgSize {
			continue
		}
		img[iy*imgSize+ix] += e.Phot
	}
	return img, nil
}
