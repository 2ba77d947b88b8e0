package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	decode "github.com/nima-vakili/DECODE"
	"github.com/nima-vakili/DECODE/spline"
)

// unitGrid is the smallest possible model: a single constant cell with value
// val, supported on offsets in [0, 1)^2 laterally and one dz slab axially.
func unitGrid(t testing.TB, val float64) *spline.Grid {
	coeff := make([]float64, spline.CellLen)
	coeff[0] = val
	g, err := spline.NewGrid(coeff, 1, 1, 1, [3]int{}, 1.0)
	assert.NoError(t, err)
	return g
}

// bellGrid is a smooth separable model over n x n cells laterally and nz
// slabs of thickness dz, the shape of a real bead calibration.
func bellGrid(t testing.TB, n, nz int, dz float64) *spline.Grid {
	lat := make([]float64, n+1)
	for i := range lat {
		x := float64(i) - float64(n)/2
		lat[i] = math.Exp(-x * x / 4)
	}
	ax := make([]float64, nz+1)
	for k := range ax {
		z := float64(k) - float64(nz)/2
		ax[k] = 1 / (1 + z*z/4)
	}

	cLat := spline.CellCoeffs1D(lat)
	cAx := spline.CellCoeffs1D(ax)
	g, err := spline.Separable(cLat, cLat, cAx, [3]int{n / 2, n / 2, nz / 2}, dz)
	assert.NoError(t, err)
	return g
}

func TestRenderSinglePixel(t *testing.T) {
	g := unitGrid(t, 0.01)

	table := []struct {
		x, y, phot float64
		ix, iy     int
	}{
		{16.2, 16.2, 100, 16, 16},
		{16.0, 16.0, 100, 16, 16},
		{3.9, 30.1, 50, 3, 30},
		{0.5, 0.5, 200, 0, 0},
	}

	for n, test := range table {
		em := []decode.Emitter{{X: test.x, Y: test.y, Z: 0.5, Phot: test.phot}}
		img, err := Render(g, em, 32, [2]float64{0, 0})
		assert.NoError(t, err)

		hot := 0
		for i, px := range img {
			if px == 0 {
				continue
			}
			hot++
			if i != test.iy*32+test.ix {
				t.Errorf("%d) Expected hot pixel (%d, %d), got index %d.",
					n, test.ix, test.iy, i)
			}
			if math.Abs(px-0.01*test.phot) > 1e-12 {
				t.Errorf("%d) Expected value %g, got %g.", n, 0.01*test.phot, px)
			}
		}
		if hot != 1 {
			t.Errorf("%d) Expected exactly 1 non-zero pixel, got %d.", n, hot)
		}
	}
}

func TestRenderLinearity(t *testing.T) {
	g := bellGrid(t, 8, 4, 10.0)
	corner := [2]float64{0, 0}

	em1 := []decode.Emitter{{X: 15.3, Y: 16.7, Z: 5, Phot: 100}}
	em2 := []decode.Emitter{{X: 15.3, Y: 16.7, Z: 5, Phot: 300}}

	img1, err := Render(g, em1, 32, corner)
	assert.NoError(t, err)
	img2, err := Render(g, em2, 32, corner)
	assert.NoError(t, err)

	for i := range img1 {
		if math.Abs(img2[i]-3*img1[i]) > 1e-10 {
			t.Errorf("%d) Expected %g at 3x photons, got %g.",
				i, 3*img1[i], img2[i])
		}
	}
}

func TestRenderAdditivity(t *testing.T) {
	g := bellGrid(t, 8, 4, 10.0)
	corner := [2]float64{0, 0}

	a := decode.Emitter{X: 10.1, Y: 12.9, Z: -3, Phot: 80}
	b := decode.Emitter{X: 22.6, Y: 8.4, Z: 7, Phot: 120}

	imgA, err := Render(g, []decode.Emitter{a}, 32, corner)
	assert.NoError(t, err)
	imgB, err := Render(g, []decode.Emitter{b}, 32, corner)
	assert.NoError(t, err)
	imgAB, err := Render(g, []decode.Emitter{a, b}, 32, corner)
	assert.NoError(t, err)

	for i := range imgAB {
		if math.Abs(imgAB[i]-(imgA[i]+imgB[i])) > 1e-10 {
			t.Errorf("%d) Expected %g, got %g.", i, imgA[i]+imgB[i], imgAB[i])
		}
	}
}

// Far-separated emitters must not bleed into each other's windows.
func TestRenderDisjointSupports(t *testing.T) {
	g := bellGrid(t, 4, 2, 10.0)
	em := []decode.Emitter{
		{X: 5.5, Y: 5.5, Z: 0, Phot: 100},
		{X: 26.5, Y: 26.5, Z: 0, Phot: 100},
	}

	img, err := Render(g, em, 32, [2]float64{0, 0})
	assert.NoError(t, err)

	solo, err := Render(g, em[:1], 32, [2]float64{0, 0})
	assert.NoError(t, err)

	// The first emitter's neighbourhood is untouched by the second.
	for iy := 0; iy < 12; iy++ {
		for ix := 0; ix < 12; ix++ {
			i := iy*32 + ix
			if img[i] != solo[i] {
				t.Errorf("(%d, %d) Expected %g, got %g.", ix, iy, solo[i], img[i])
			}
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	g := bellGrid(t, 8, 4, 10.0)

	em := make([]decode.Emitter, 40)
	for i := range em {
		em[i] = decode.Emitter{
			X:    float64(i%7)*4 + 2.3,
			Y:    float64(i%5)*6 + 1.7,
			Z:    float64(i%3-1) * 8,
			Phot: float64(100 + i),
		}
	}

	defer func(n int) { NumCores = n }(NumCores)

	NumCores = 1
	ref, err := Render(g, em, 32, [2]float64{0, 0})
	assert.NoError(t, err)

	for _, workers := range []int{2, 3, 4, 16} {
		NumCores = workers
		img, err := Render(g, em, 32, [2]float64{0, 0})
		assert.NoError(t, err)
		for i := range ref {
			if img[i] != ref[i] {
				t.Errorf("workers=%d pixel %d: Expected %g, got %g.",
					workers, i, ref[i], img[i])
			}
		}
	}
}

func TestRenderOutside(t *testing.T) {
	g := bellGrid(t, 4, 2, 10.0)

	em := []decode.Emitter{
		{X: -50, Y: 16, Z: 0, Phot: 100},
		{X: 16, Y: 500, Z: 0, Phot: 100},
		{X: 16, Y: 16, Z: 1e4, Phot: 100},
		{X: 16, Y: 16, Z: 0, Phot: 0},
	}

	img, err := Render(g, em, 32, [2]float64{0, 0})
	assert.NoError(t, err)
	for i, px := range img {
		if px != 0 {
			t.Errorf("Pixel %d: Expected 0, got %g.", i, px)
		}
	}
}

func TestRenderErrors(t *testing.T) {
	g := unitGrid(t, 1.0)
	em := []decode.Emitter{{X: 1, Y: 1, Z: 0.5, Phot: 10}}

	_, err := Render(g, em, 0, [2]float64{0, 0})
	if _, ok := err.(*spline.DomainError); !ok {
		t.Errorf("Expected DomainError for size 0, got %v.", err)
	}

	bad := []decode.Emitter{{X: 1, Y: 1, Z: 0.5, Phot: -5}}
	_, err = Render(g, bad, 32, [2]float64{0, 0})
	if _, ok := err.(*spline.DomainError); !ok {
		t.Errorf("Expected DomainError for negative photons, got %v.", err)
	}

	_, err = RenderArrays(
		g, []float64{1, 2}, []float64{1}, []float64{0, 0}, []float64{10, 10},
		32, [2]float64{0, 0},
	)
	if _, ok := err.(*spline.ShapeError); !ok {
		t.Errorf("Expected ShapeError for mismatched arrays, got %v.", err)
	}
}

func TestRenderArraysMatchesRender(t *testing.T) {
	g := bellGrid(t, 8, 4, 10.0)

	xs := []float64{10.1, 20.2}
	ys := []float64{12.3, 18.4}
	zs := []float64{-5, 5}
	phots := []float64{100, 150}

	fromArrays, err := RenderArrays(g, xs, ys, zs, phots, 32, [2]float64{0, 0})
	assert.NoError(t, err)

	em, ok := decode.Emitters(xs, ys, zs, phots)
	assert.True(t, ok)
	fromEmitters, err := Render(g, em, 32, [2]float64{0, 0})
	assert.NoError(t, err)

	assert.Equal(t, fromEmitters, fromArrays)
}

func TestRenderFrames(t *testing.T) {
	g := unitGrid(t, 0.01)

	em := []decode.Emitter{
		{X: 5.5, Y: 5.5, Z: 0.5, Phot: 100, Frame: 0},
		{X: 10.5, Y: 10.5, Z: 0.5, Phot: 100, Frame: 1},
		{X: 20.5, Y: 20.5, Z: 0.5, Phot: 100, Frame: 1},
		{X: 5.5, Y: 5.5, Z: 0.5, Phot: 100, Frame: 5},
	}

	frames, err := RenderFrames(g, em, 0, 2, 32, [2]float64{0, 0})
	assert.NoError(t, err)
	assert.Equal(t, 3, len(frames))

	sum := func(img []float64) float64 {
		s := 0.0
		for _, px := range img {
			s += px
		}
		return s
	}

	assert.InDelta(t, 1.0, sum(frames[0]), 1e-12, "frame 0")
	assert.InDelta(t, 2.0, sum(frames[1]), 1e-12, "frame 1")
	assert.InDelta(t, 0.0, sum(frames[2]), 1e-12, "empty frame 2")

	_, err = RenderFrames(g, em, 3, 1, 32, [2]float64{0, 0})
	if _, ok := err.(*spline.DomainError); !ok {
		t.Errorf("Expected DomainError for empty frame range, got %v.", err)
	}
}

func TestRenderCornerOffset(t *testing.T) {
	g := bellGrid(t, 8, 4, 10.0)

	em := []decode.Emitter{{X: 16.3, Y: 16.7, Z: 0, Phot: 100}}
	shifted := []decode.Emitter{{X: 26.3, Y: 26.7, Z: 0, Phot: 100}}

	img, err := Render(g, em, 32, [2]float64{0, 0})
	assert.NoError(t, err)
	imgShifted, err := Render(g, shifted, 32, [2]float64{10, 10})
	assert.NoError(t, err)

	assert.Equal(t, img, imgShifted)
}

func BenchmarkRender(b *testing.B) {
	g := bellGrid(b, 16, 8, 10.0)

	em := make([]decode.Emitter, 100)
	for i := range em {
		em[i] = decode.Emitter{
			X:    float64(i%10)*6 + 2.5,
			Y:    float64(i/10)*6 + 2.5,
			Z:    float64(i%5-2) * 10,
			Phot: 500,
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Render(g, em, 64, [2]float64{0, 0})
		if err != nil {
			b.Fatal(err)
		}
	}
}
