// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/go-nr/phytest/prach"
)

var testOccasion = Occasion{
	Carrier: prach.Carrier{SCS: 15e3},
	Config: prach.Config{
		Format:        prach.Format0,
		SCS:           1250,
		L:             839,
		RestrictedSet: prach.Unrestricted,
		ZCZ:           1,
		SequenceIndex: 22,
	},
	Reps:   1,
	NumAnt: 1,
}

func TestSynthesize(t *testing.T) {
	occ := testOccasion
	occ.Reps = 2
	occ.NumAnt = 2

	grid, err := Synthesize(occ, 7, 1.5, 10, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("could not synthesize occasion: %+v", err)
	}

	rows, cols := grid.Dims()
	if rows != occ.Config.L*occ.Reps || cols != occ.NumAnt {
		t.Fatalf("invalid shape: got=(%d,%d), want=(%d,%d)",
			rows, cols, occ.Config.L*occ.Reps, occ.NumAnt,
		)
	}

	// same seed, same occasion.
	grid2, err := Synthesize(occ, 7, 1.5, 10, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("could not synthesize occasion: %+v", err)
	}
	if !mat.CEqual(grid, grid2) {
		t.Fatalf("synthesis not deterministic for a fixed seed")
	}
}

func TestSynthesizeNoiseOnly(t *testing.T) {
	const snr = 0.0 // unit noise power

	grid, err := Synthesize(testOccasion, -1, 0, snr, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("could not synthesize occasion: %+v", err)
	}

	rows, _ := grid.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		v := grid.At(i, 0)
		re, im := real(v), imag(v)
		sum += re*re + im*im
	}
	if got, want := sum/float64(rows), 1.0; math.Abs(got-want) > 0.15 {
		t.Fatalf("invalid noise power: got=%v, want=%v", got, want)
	}
}

func TestSynthesizeInvalid(t *testing.T) {
	occ := testOccasion
	occ.Reps = 0
	if _, err := Synthesize(occ, 7, 0, 10, rand.New(rand.NewSource(1))); err == nil {
		t.Fatalf("expected an error for invalid replicas")
	}

	if _, err := Synthesize(testOccasion, prach.NumPreambles, 0, 10, rand.New(rand.NewSource(1))); err == nil {
		t.Fatalf("expected an error for invalid preamble index")
	}
}

func TestRun(t *testing.T) {
	det := prach.New()
	p := Params{
		Occasion: testOccasion,
		Preamble: 7,
		OffsetUS: 1.5,
		SNRdB:    30,
		Trials:   8,
		Seed:     1,
		Workers:  3,
	}

	st, err := Run(context.Background(), det, p)
	if err != nil {
		t.Fatalf("could not run campaign point: %+v", err)
	}

	if got, want := st.Trials, p.Trials; got != want {
		t.Fatalf("invalid number of trials: got=%d, want=%d", got, want)
	}
	if got, want := st.Pdet(), 1.0; got != want {
		t.Fatalf("invalid detection probability at high SNR: got=%v, want=%v", got, want)
	}
	if got, want := st.Missed, 0; got != want {
		t.Fatalf("invalid misses: got=%d, want=%d", got, want)
	}
	if got, want := st.FalseAlarms, 0; got != want {
		t.Fatalf("invalid false alarms: got=%d, want=%d", got, want)
	}
	if got, want := int(st.Metric.Entries()), st.Detected; got != want {
		t.Fatalf("invalid metric histogram entries: got=%d, want=%d", got, want)
	}

	// a second run with the same seed and workers is identical.
	st2, err := Run(context.Background(), det, p)
	if err != nil {
		t.Fatalf("could not re-run campaign point: %+v", err)
	}
	if st2.Detected != st.Detected || st2.Missed != st.Missed || st2.FalseAlarms != st.FalseAlarms {
		t.Fatalf("campaign not deterministic: got=%+d/%d/%d, want=%d/%d/%d",
			st2.Detected, st2.Missed, st2.FalseAlarms,
			st.Detected, st.Missed, st.FalseAlarms,
		)
	}
}

func TestRunNoiseOnly(t *testing.T) {
	det := prach.New()
	st, err := Run(context.Background(), det, Params{
		Occasion: testOccasion,
		Preamble: -1,
		SNRdB:    0,
		Trials:   4,
		Seed:     1,
		Workers:  2,
	})
	if err != nil {
		t.Fatalf("could not run campaign point: %+v", err)
	}

	if got, want := st.Pfa(), 0.0; got != want {
		t.Fatalf("invalid false-alarm rate: got=%v, want=%v", got, want)
	}
	if got, want := st.Detected, 0; got != want {
		t.Fatalf("invalid detections: got=%d, want=%d", got, want)
	}
}

func TestRunInvalidTrials(t *testing.T) {
	det := prach.New()
	if _, err := Run(context.Background(), det, Params{Occasion: testOccasion}); err == nil {
		t.Fatalf("expected an error for zero trials")
	}
}
