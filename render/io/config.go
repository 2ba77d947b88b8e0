/*package io handles the file formats surrounding frame simulation: the
configuration files driving the decode-render tool, the emitter tables it
reads and the frame stacks it writes.
*/
package io

import (
	"gopkg.in/gcfg.v1"
)

const (
	ExampleSimulateFile = `[Simulate]

#######################
# Required Parameters #
#######################

# Table of emitters to simulate. Whitespace-separated columns:
# x y z phot frame. Lines starting with # are skipped.
Emitters = path/to/emitters.txt

# File the simulated frame stack will be written to.
Output = path/to/frames.bin

# Side length of the simulated frames, in pixels.
ImgSize = 64

# PSF model used for rendering. One of:
# [ Spline | Gaussian | Delta ]
# Spline renders through a cubic-spline grid synthesized from the Gaussian
# parameters below. Gaussian integrates the Gaussian over each pixel
# directly. Delta drops each emitter's photons on a single pixel.
Model = Spline

#######################
# Optional Parameters #
#######################

# Physical coordinate of the frames' pixel (0, 0). Defaults to the origin.
# CornerX = 0.0
# CornerY = 0.0

# (Inclusive) frame range to simulate. Defaults to the range spanned by the
# emitter table.
# FrameStart = 0
# FrameEnd = 100

# In-focus width of the Gaussian PSF, in pixels, and the axial depth scale
# in the same units as the emitter z column. Used by the Spline and
# Gaussian models.
# Sigma = 1.3
# Depth = 400.0

# Geometry of the synthesized spline grid: cells per lateral axis, cells
# along z and the z extent of one cell. Only used by the Spline model.
# GridSize = 16
# GridNz = 8
# GridDz = 100.0

# Number of worker goroutines used while rendering. Defaults to the number
# of cores on your machine.
# Threads = 4

# Output file which is useful for profiling and debugging. Generally, there
# isn't a reason to use this unless something goes wrong.
# LogFile = log.out`
)

type SimulateConfig struct {
	// Required
	Emitters, Output string
	ImgSize          int
	Model            string

	// Optional
	CornerX, CornerY     float64
	FrameStart, FrameEnd int
	Sigma, Depth         float64
	GridSize, GridNz     int
	GridDz               float64
	Threads              int
	LogFile              string
}

type SimulateWrapper struct {
	Simulate SimulateConfig
}

func DefaultSimulateWrapper() *SimulateWrapper {
	con := SimulateConfig{}
	con.FrameStart = 0
	con.FrameEnd = -1
	con.Sigma = 1.3
	con.Depth = 400.0
	con.GridSize = 16
	con.GridNz = 8
	con.GridDz = 100.0
	return &SimulateWrapper{con}
}

func (con *SimulateConfig) ValidEmitters() bool {
	return con.Emitters != ""
}
func (con *SimulateConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SimulateConfig) ValidImgSize() bool {
	return con.ImgSize > 0
}
func (con *SimulateConfig) ValidModel() bool {
	switch con.Model {
	case "Spline", "Gaussian", "Delta":
		return true
	}
	return false
}
func (con *SimulateConfig) ValidFrameRange() bool {
	return con.FrameEnd >= con.FrameStart
}
func (con *SimulateConfig) ValidSigma() bool {
	return con.Sigma > 0
}
func (con *SimulateConfig) ValidDepth() bool {
	return con.Depth > 0
}
func (con *SimulateConfig) ValidGrid() bool {
	return con.GridSize > 0 && con.GridNz > 0 && con.GridDz > 0
}
func (con *SimulateConfig) ValidThreads() bool {
	return con.Threads > 0
}
func (con *SimulateConfig) ValidLogFile() bool {
	return con.LogFile != ""
}

// ReadSimulateConfig parses a [Simulate] configuration file on top of the
// defaults. Validation is left to the caller, which knows which parameters
// its mode actually needs.
func ReadSimulateConfig(fname string) (*SimulateConfig, error) {
	wrap := DefaultSimulateWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	return &wrap.Simulate, nil
}
