package io

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"
)

// FrameHeader describes a stack of simulated frames. Frames are square,
// stored row-major as float32 in frame order, and share the physical corner
// coordinate.
type FrameHeader struct {
	ImgSize, FrameCount int64
	FrameStart          int64
	CornerX, CornerY    float64
}

// WriteFrames writes a frame stack to file. Each frame must hold
// imgSize*imgSize pixels; pixel values are narrowed to float32 on disk.
func WriteFrames(
	file string, imgSize, frameStart int, corner [2]float64,
	frames [][]float64,
) error {
	for i := range frames {
		if len(frames[i]) != imgSize*imgSize {
			return fmt.Errorf(
				"Frame %d has %d pixels, but the image size is %d.",
				i, len(frames[i]), imgSize,
			)
		}
	}

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	order := binary.LittleEndian
	hd := &FrameHeader{
		ImgSize:    int64(imgSize),
		FrameCount: int64(len(frames)),
		FrameStart: int64(frameStart),
		CornerX:    corner[0],
		CornerY:    corner[1],
	}

	if err := binary.Write(f, order, int32(unsafe.Sizeof(*hd))); err != nil {
		return err
	}
	if err := binary.Write(f, order, hd); err != nil {
		return err
	}

	buf := make([]float32, imgSize*imgSize)
	for _, frame := range frames {
		for i, px := range frame {
			buf[i] = float32(px)
		}
		if err := binary.Write(f, order, buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadFrames reads a frame stack written by WriteFrames, widening the pixel
// values back to float64.
func ReadFrames(file string) (*FrameHeader, [][]float64, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	order := binary.LittleEndian
	hd := &FrameHeader{}

	var headerSize int32
	if err := binary.Read(f, order, &headerSize); err != nil {
		return nil, nil, err
	}
	if headerSize != int32(unsafe.Sizeof(*hd)) {
		return nil, nil, fmt.Errorf(
			"Expected header size of %d in %s, found %d.",
			unsafe.Sizeof(*hd), file, headerSize,
		)
	}
	if err := binary.Read(f, order, hd); err != nil {
		return nil, nil, err
	}

	n := int(hd.ImgSize * hd.ImgSize)
	frames := make([][]float64, hd.FrameCount)
	buf := make([]float32, n)
	for fi := range frames {
		if err := binary.Read(f, order, buf); err != nil {
			return nil, nil, err
		}
		frames[fi] = make([]float64, n)
		for i, px := range buf {
			frames[fi][i] = float64(px)
		}
	}
	return hd, frames, nil
}
