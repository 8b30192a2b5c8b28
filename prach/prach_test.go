// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prach

import (
	"math"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for _, tc := range []struct {
		name string
		want Format
		long bool
		l    int
		nfft int
	}{
		{"0", Format0, true, 839, 1024},
		{"1", Format1, true, 839, 1024},
		{"2", Format2, true, 839, 1024},
		{"3", Format3, true, 839, 1024},
		{"A1", FormatA1, false, 139, 256},
		{"B4", FormatB4, false, 139, 256},
		{"C0", FormatC0, false, 139, 256},
		{"C2", FormatC2, false, 139, 256},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, err := ParseFormat(tc.name)
			if err != nil {
				t.Fatalf("could not parse format: %+v", err)
			}
			if f != tc.want {
				t.Fatalf("invalid format: got=%v, want=%v", f, tc.want)
			}
			if got, want := f.String(), tc.name; got != want {
				t.Fatalf("invalid format name: got=%q, want=%q", got, want)
			}
			if got, want := f.Long(), tc.long; got != want {
				t.Fatalf("invalid format class: got long=%v, want=%v", got, want)
			}
			if got, want := f.SeqLen(), tc.l; got != want {
				t.Fatalf("invalid sequence length: got=%d, want=%d", got, want)
			}
			if got, want := f.DFTSize(), tc.nfft; got != want {
				t.Fatalf("invalid DFT size: got=%d, want=%d", got, want)
			}
		})
	}

	if _, err := ParseFormat("A4"); err == nil {
		t.Fatalf("expected an error for unknown format")
	}
}

func TestCarrierMu(t *testing.T) {
	for _, tc := range []struct {
		scs  float64
		want int
	}{
		{15e3, 0},
		{30e3, 1},
		{60e3, 2},
		{120e3, 3},
	} {
		if got := (Carrier{SCS: tc.scs}).Mu(); got != tc.want {
			t.Fatalf("scs=%g: got mu=%d, want=%d", tc.scs, got, tc.want)
		}
	}
}

func TestNewResult(t *testing.T) {
	res := newResult()
	for i := 0; i < NumPreambles; i++ {
		if res.Indices[i] {
			t.Fatalf("preamble %d flagged in empty result", i)
		}
		if !math.IsNaN(res.Offsets[i]) {
			t.Fatalf("offset %d not NaN in empty result", i)
		}
		if !math.IsNaN(res.SINR[i]) {
			t.Fatalf("sinr %d not NaN in empty result", i)
		}
	}
}

func TestDefaultThresholds(t *testing.T) {
	tbl := DefaultThresholds()
	if got, want := len(tbl), len(builtinThresholds); got != want {
		t.Fatalf("invalid table size: got=%d, want=%d", got, want)
	}

	// the copy must not alias the built-in table.
	key := ThresholdKey{NumAnt: 1, Long: true, ZCZZero: true}
	org := builtinThresholds[key]
	tbl[key] = Threshold{Value: 42, Margin: 1}
	if got := builtinThresholds[key]; got != org {
		t.Fatalf("built-in table mutated: got=%v, want=%v", got, org)
	}

	if _, ok := tbl.Lookup(ThresholdKey{NumAnt: 3, Long: true}); ok {
		t.Fatalf("unexpected calibration for 3 antenna ports")
	}
}
