// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prach

import "fmt"

// WindowInfo describes how the 64 candidate preambles of an occasion
// map onto root sequences and cyclic-shift detection windows.
//
// NCS, the window widths and the window starts are expressed in
// samples at the native PRACH rate LRA·Δf_RA. WindowInfo is computed
// once per detection call and never mutated afterwards.
type WindowInfo struct {
	NCS          int   // cyclic-shift spacing; 0 means one full-width shift
	NumShifts    int   // preambles sharing one root sequence
	NumSequences int   // root sequences needed to cover 64 preambles
	Widths       []int // per-shift detection-window width
	Starts       []int // per-shift detection-window start offset
}

// Windows derives the shift-window layout of cfg for the carrier
// numerology mu.
func Windows(cfg Config, mu int) (WindowInfo, error) {
	ncs, err := ncsFor(cfg)
	if err != nil {
		return WindowInfo{}, err
	}

	cp, err := cpSamples(cfg, mu)
	if err != nil {
		return WindowInfo{}, err
	}

	wi := WindowInfo{NCS: ncs}
	switch {
	case ncs == 0:
		wi.NumShifts = 1
		wi.NumSequences = NumPreambles
	default:
		wi.NumShifts = cfg.L / ncs
		if wi.NumShifts < 1 {
			return WindowInfo{}, fmt.Errorf(
				"prach: invalid NCS=%d for sequence length %d", ncs, cfg.L,
			)
		}
		wi.NumSequences = (NumPreambles + wi.NumShifts - 1) / wi.NumShifts
	}

	width := cp
	if ncs > 0 && ncs < cp {
		width = ncs
	}

	wi.Widths = make([]int, wi.NumShifts)
	wi.Starts = make([]int, wi.NumShifts)
	for i := range wi.Widths {
		wi.Widths[i] = width
		wi.Starts[i] = i * ncs
	}

	return wi, nil
}
