// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"go-hep.org/x/hep/hbook"
	"golang.org/x/sync/errgroup"

	"github.com/go-nr/phytest/prach"
)

// Params describes one Monte-Carlo campaign point.
type Params struct {
	Occasion

	Preamble  int     // preamble to embed; negative for noise-only trials
	OffsetUS  float64 // timing offset of the embedded preamble, µs
	SNRdB     float64
	IgnoreCFO bool

	Trials  int
	Seed    int64
	Workers int // parallel workers; 0 or 1 runs serially
}

// Stats aggregates the outcome of a campaign point.
//
// Detected counts trials where the embedded preamble was found;
// FalseAlarms counts every detection of a preamble that was not
// embedded, over all trials. Metric histograms the detection metric
// (dB) of the true detections.
type Stats struct {
	Trials      int
	Detected    int
	Missed      int
	FalseAlarms int
	Metric      *hbook.H1D
}

// Pdet returns the detection probability of the campaign point.
func (st Stats) Pdet() float64 {
	if st.Trials == 0 {
		return 0
	}
	return float64(st.Detected) / float64(st.Trials)
}

// Pfa returns the per-occasion false-alarm probability.
func (st Stats) Pfa() float64 {
	if st.Trials == 0 {
		return 0
	}
	return float64(st.FalseAlarms) / float64(st.Trials)
}

// Run executes one campaign point. Trials are split across workers;
// results are deterministic for a fixed (Seed, Workers) pair.
func Run(ctx context.Context, det *prach.Detector, p Params) (Stats, error) {
	if p.Trials < 1 {
		return Stats{}, fmt.Errorf("sim: invalid number of trials %d", p.Trials)
	}

	workers := p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > p.Trials {
		workers = p.Trials
	}

	var (
		mu        sync.Mutex
		st        = Stats{Metric: hbook.NewH1D(40, 0, 8)}
		grp, gctx = errgroup.WithContext(ctx)
	)

	for w := 0; w < workers; w++ {
		w := w
		grp.Go(func() error {
			rng := rand.New(rand.NewSource(p.Seed + int64(w)))
			for trial := w; trial < p.Trials; trial += workers {
				if err := gctx.Err(); err != nil {
					return err
				}

				grid, err := Synthesize(p.Occasion, p.Preamble, p.OffsetUS, p.SNRdB, rng)
				if err != nil {
					return fmt.Errorf("sim: could not synthesize trial %d: %w", trial, err)
				}

				res, err := det.Detect(p.Carrier, p.Config, grid, p.IgnoreCFO)
				if err != nil {
					return fmt.Errorf("sim: could not detect trial %d: %w", trial, err)
				}

				mu.Lock()
				st.Trials++
				for i, hit := range res.Indices {
					switch {
					case !hit:
						continue
					case i == p.Preamble:
						st.Detected++
						if v := res.SINR[i]; !math.IsNaN(v) {
							st.Metric.Fill(v, 1)
						}
					default:
						st.FalseAlarms++
					}
				}
				if p.Preamble >= 0 && !res.Indices[p.Preamble] {
					st.Missed++
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return st, err
	}
	return st, nil
}
