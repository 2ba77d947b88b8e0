package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	decode "github.com/nima-vakili/DECODE"
	"github.com/nima-vakili/DECODE/psf"
	"github.com/nima-vakili/DECODE/render"
	"github.com/nima-vakili/DECODE/render/io"
)

func main() {
	// The main function manages input sanitization and calls the secondary
	// main functions for each mode.

	var (
		simulateStr   string
		exampleConfig bool
	)
	vars := map[string]func() bool{
		"Simulate":      func() bool { return simulateStr != "" },
		"ExampleConfig": func() bool { return exampleConfig },
	}

	flag.IntVar(
		&render.NumCores, "Threads", runtime.NumCPU(),
		"Number of threads used. Default is the number of logical cores.",
	)
	flag.StringVar(
		&simulateStr, "Simulate", "",
		"Configuration file for [Simulate] mode.",
	)
	flag.BoolVar(
		&exampleConfig, "ExampleConfig", false,
		"Prints an example [Simulate] configuration file to stdout.",
	)

	flag.Parse()

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Simulate":
		con, err := io.ReadSimulateConfig(simulateStr)
		if err != nil {
			log.Fatal(err.Error())
		}

		if !con.ValidEmitters() {
			log.Fatal("Invalid/non-existent 'Emitters' value.")
		} else if !con.ValidOutput() {
			log.Fatal("Invalid/non-existent 'Output' value.")
		} else if !con.ValidImgSize() {
			log.Fatal("Invalid/non-existent 'ImgSize' value.")
		} else if !con.ValidModel() {
			log.Fatal(
				"Invalid/non-existent 'Model' value. Accepted values are " +
					"'Spline', 'Gaussian', and 'Delta'.",
			)
		}

		switch con.Model {
		case "Spline", "Gaussian":
			if !con.ValidSigma() {
				log.Fatal("Invalid 'Sigma' value.")
			} else if !con.ValidDepth() {
				log.Fatal("Invalid 'Depth' value.")
			}
		}
		if con.Model == "Spline" && !con.ValidGrid() {
			log.Fatal("Invalid 'GridSize'/'GridNz'/'GridDz' values.")
		}

		if con.ValidThreads() {
			render.NumCores = con.Threads
		}
		if con.ValidLogFile() {
			f, err := os.Create(con.LogFile)
			if err != nil {
				log.Fatal(err.Error())
			}
			defer f.Close()
			log.SetOutput(f)
		}

		simulateMain(con)

	case "ExampleConfig":
		fmt.Println(io.ExampleSimulateFile)

	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive
// error if the user provided less or more than one mode flag.
func getModeName(vars map[string]func() bool) (string, error) {
	setNames := []string{}
	for name, isSet := range vars {
		if isSet() {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}
	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but decode_cmd only accepts "+
				"one flag at a time.",
			strings.Join(setNames, ", "),
		)
	}
	return setNames[0], nil
}

func simulateMain(con *io.SimulateConfig) {
	model, err := chooseModel(con)
	if err != nil {
		log.Fatal(err.Error())
	}

	em, err := io.ReadEmitters(con.Emitters)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Read %d emitters from %s.", len(em), con.Emitters)

	lo, hi := con.FrameStart, con.FrameEnd
	if !con.ValidFrameRange() {
		lo, hi = io.FrameRange(em)
	}
	if hi < lo {
		log.Fatal("The emitter table is empty and no frame range is set.")
	}

	corner := [2]float64{con.CornerX, con.CornerY}
	frames, err := renderFrames(model, em, lo, hi, con.ImgSize, corner)
	if err != nil {
		log.Fatal(err.Error())
	}

	err = io.WriteFrames(con.Output, con.ImgSize, lo, corner, frames)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.Printf("Wrote frames [%d, %d] to %s.", lo, hi, con.Output)
}

func chooseModel(con *io.SimulateConfig) (psf.Model, error) {
	switch con.Model {
	case "Delta":
		return &psf.Delta{}, nil
	case "Gaussian":
		return &psf.GaussianExpect{Sigma0: con.Sigma, Depth: con.Depth}, nil
	case "Spline":
		grid, err := psf.SplineGaussian(
			con.GridSize, con.Sigma, con.GridNz, con.GridDz, con.Depth,
		)
		if err != nil {
			return nil, err
		}
		return &psf.CubicSpline{Grid: grid}, nil
	}
	panic("Impossible")
}

// renderFrames runs one Forward call per frame over that frame's emitters.
func renderFrames(
	model psf.Model, em []decode.Emitter,
	lo, hi, imgSize int, corner [2]float64,
) ([][]float64, error) {
	byFrame := make([][]decode.Emitter, hi-lo+1)
	for _, e := range em {
		if e.Frame < lo || e.Frame > hi {
			continue
		}
		byFrame[e.Frame-lo] = append(byFrame[e.Frame-lo], e)
	}

	frames := make([][]float64, hi-lo+1)
	for fi := range frames {
		img, err := model.Forward(byFrame[fi], imgSize, corner)
		if err != nil {
			return nil, err
		}
		frames[fi] = img
	}
	return frames, nil
}
