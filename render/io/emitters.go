package io

import (
	"github.com/phil-mansfield/table"

	decode "github.com/nima-vakili/DECODE"
)

// ReadEmitters reads an emitter table from a whitespace-separated text file
// with the columns x, y, z, phot and frame. Comment lines starting with #
// are skipped.
func ReadEmitters(file string) ([]decode.Emitter, error) {
	xCol, yCol, zCol, photCol, frameCol := 0, 1, 2, 3, 4

	colIdxs := []int{xCol, yCol, zCol, photCol, frameCol}
	cols, err := table.ReadTable(file, colIdxs, nil)
	if err != nil {
		return nil, err
	}

	xs, ys, zs, phots, frames := cols[0], cols[1], cols[2], cols[3], cols[4]

	em, _ := decode.Emitters(xs, ys, zs, phots)
	for i := range em {
		em[i].Frame = int(frames[i])
	}
	return em, nil
}

// FrameRange returns the inclusive frame index range spanned by an emitter
// batch. An empty batch gives the empty range (0, -1).
func FrameRange(em []decode.Emitter) (lo, hi int) {
	if len(em) == 0 {
		return 0, -1
	}
	lo, hi = em[0].Frame, em[0].Frame
	for _, e := range em[1:] {
		if e.Frame < lo {
			lo = e.Frame
		}
		if e.Frame > hi {
			hi = e.Frame
		}
	}
	return lo, hi
}
