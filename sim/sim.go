// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim synthesizes PRACH occasions and runs Monte-Carlo
// detection campaigns against the preamble detector.
package sim // import "github.com/go-nr/phytest/sim"

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/go-nr/phytest/prach"
)

// Occasion describes the shape of the synthesized PRACH occasions.
type Occasion struct {
	Carrier prach.Carrier
	Config  prach.Config
	Reps    int // preamble replicas per occasion
	NumAnt  int // antenna ports
}

// Synthesize builds one occasion grid with preamble embedded at the
// given timing offset (µs) over AWGN at the given SNR (dB, per
// sample, relative to the unit-power preamble). A negative preamble
// index synthesizes a noise-only occasion.
func Synthesize(occ Occasion, preamble int, offsetUS, snrdB float64, rng *rand.Rand) (*mat.CDense, error) {
	cfg := occ.Config
	if occ.Reps < 1 || occ.NumAnt < 1 {
		return nil, fmt.Errorf("sim: invalid occasion shape (reps=%d, nant=%d)", occ.Reps, occ.NumAnt)
	}

	var (
		rows  = cfg.L * occ.Reps
		grid  = mat.NewCDense(rows, occ.NumAnt, nil)
		sigma = math.Sqrt(math.Pow(10, -snrdB/10) / 2)
	)

	var signal []complex128
	if preamble >= 0 {
		if preamble >= prach.NumPreambles {
			return nil, fmt.Errorf("sim: invalid preamble index %d", preamble)
		}
		wi, err := prach.Windows(cfg, occ.Carrier.Mu())
		if err != nil {
			return nil, err
		}

		scfg := cfg
		scfg.PreambleIndex = preamble
		root, err := prach.DefaultSequencer.RootSequence(occ.Carrier, scfg)
		if err != nil {
			return nil, fmt.Errorf("sim: could not generate preamble %d: %w", preamble, err)
		}

		// cyclic shift of the preamble within its root sequence,
		// plus the propagation delay, as a phase ramp.
		var (
			v     = preamble % wi.NumShifts
			shift = float64(v*wi.NCS) + offsetUS*1e-6*float64(cfg.L)*cfg.SCS
		)
		signal = make([]complex128, cfg.L)
		for k := range signal {
			arg := 2 * math.Pi * float64(k) * shift / float64(cfg.L)
			ramp := complex(math.Cos(arg), math.Sin(arg))
			signal[k] = root[k] * ramp
		}
	}

	for ant := 0; ant < occ.NumAnt; ant++ {
		for rep := 0; rep < occ.Reps; rep++ {
			for k := 0; k < cfg.L; k++ {
				v := complex(rng.NormFloat64()*sigma, rng.NormFloat64()*sigma)
				if signal != nil {
					v += signal[k]
				}
				grid.Set(rep*cfg.L+k, ant, v)
			}
		}
	}

	return grid, nil
}
