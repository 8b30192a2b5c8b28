// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prach

import (
	"fmt"
	"math"
)

// Cyclic-shift spacings NCS for the unrestricted set, indexed by the
// zero-correlation-zone configuration (TS 38.211, tables 6.3.3.1-5,
// 6.3.3.1-6 and 6.3.3.1-7).
var (
	ncs125 = [16]int{
		0, 13, 15, 18, 22, 26, 32, 38,
		46, 59, 76, 93, 119, 167, 279, 419,
	}
	ncs5 = [16]int{
		0, 13, 26, 33, 38, 41, 49, 55,
		64, 76, 93, 119, 139, 209, 279, 419,
	}
	ncsShort = [16]int{
		0, 2, 4, 6, 8, 10, 12, 13,
		15, 17, 19, 23, 27, 34, 46, 69,
	}
)

// ncsFor returns the cyclic-shift spacing of cfg.
func ncsFor(cfg Config) (int, error) {
	if cfg.RestrictedSet != Unrestricted {
		return 0, fmt.Errorf("%w (set=%v)", ErrRestrictedSet, cfg.RestrictedSet)
	}
	if cfg.ZCZ < 0 || cfg.ZCZ > 15 {
		return 0, fmt.Errorf(
			"prach: no NCS entry for format %v, zero-correlation zone %d",
			cfg.Format, cfg.ZCZ,
		)
	}
	switch cfg.Format {
	case Format0, Format1, Format2:
		return ncs125[cfg.ZCZ], nil
	case Format3:
		return ncs5[cfg.ZCZ], nil
	case FormatA1, FormatA2, FormatA3,
		FormatB1, FormatB2, FormatB3, FormatB4,
		FormatC0, FormatC2:
		return ncsShort[cfg.ZCZ], nil
	}
	return 0, fmt.Errorf("prach: unknown preamble format %v", cfg.Format)
}

// Cyclic-prefix lengths in units of κ·Tc (TS 38.211, tables 6.3.3.1-1
// and 6.3.3.1-2). Short-preamble entries carry an extra 2^-μ scaling.
var cpKappa = [numFormats]float64{
	Format0:  3168,
	Format1:  21024,
	Format2:  4688,
	Format3:  3168,
	FormatA1: 288,
	FormatA2: 576,
	FormatA3: 864,
	FormatB1: 216,
	FormatB2: 360,
	FormatB3: 504,
	FormatB4: 936,
	FormatC0: 1240,
	FormatC2: 2048,
}

const (
	kappa = 64
	tc    = 1.0 / (4096 * 480e3) // basic NR time unit, seconds
)

// cpSamples returns the cyclic-prefix length of cfg.Format converted
// to samples at the PRACH sampling rate LRA·Δf_RA.
func cpSamples(cfg Config, mu int) (int, error) {
	if cfg.Format < 0 || cfg.Format >= numFormats {
		return 0, fmt.Errorf("prach: unknown preamble format %v", cfg.Format)
	}
	sec := cpKappa[cfg.Format] * kappa * tc
	if !cfg.Format.Long() {
		sec /= float64(int(1) << mu)
	}
	return int(math.Round(sec * float64(cfg.L) * cfg.SCS)), nil
}

// ThresholdKey identifies one calibrated detector working point.
type ThresholdKey struct {
	NumAnt  int  // number of antenna ports (1, 2 or 4 calibrated)
	Long    bool // long preamble formats (L=839)
	ZCZZero bool // zero-correlation-zone configuration 0
	NoCFO   bool // replicas coherently averaged before correlation
}

// Threshold holds the calibrated detection threshold and the margin,
// in delay bins, added on each side of a shift window to estimate the
// local noise floor.
type Threshold struct {
	Value  float64
	Margin int
}

// ThresholdTable maps detector working points to calibrated
// thresholds. Tables are read-only after construction and may be
// shared across concurrent detector calls.
type ThresholdTable map[ThresholdKey]Threshold

// Lookup returns the threshold calibrated for key.
func (t ThresholdTable) Lookup(key ThresholdKey) (Threshold, bool) {
	th, ok := t[key]
	return th, ok
}

// thresholds measured with the calibration campaign of cmd/prach-sim
// (AWGN, 0.1% false-alarm target). The window metric of a flat noise
// floor concentrates around (N/L)·W/(2M−(N/L−1)·W) for window width W
// and margin M, and saturates at N/(N−L) for a pure in-window signal;
// the calibrated values sit between those two levels.
var builtinThresholds = ThresholdTable{
	{1, true, true, false}: {3.0, 100},
	{2, true, true, false}: {2.6, 100},
	{4, true, true, false}: {2.3, 100},
	{1, true, true, true}:  {2.8, 100},
	{2, true, true, true}:  {2.4, 100},
	{4, true, true, true}:  {2.1, 100},

	{1, true, false, false}: {2.6, 100},
	{2, true, false, false}: {2.3, 100},
	{4, true, false, false}: {2.0, 100},
	{1, true, false, true}:  {2.4, 100},
	{2, true, false, true}:  {2.1, 100},
	{4, true, false, true}:  {1.9, 100},

	{1, false, true, false}: {1.60, 60},
	{2, false, true, false}: {1.50, 60},
	{4, false, true, false}: {1.40, 60},
	{1, false, true, true}:  {1.55, 60},
	{2, false, true, true}:  {1.45, 60},
	{4, false, true, true}:  {1.35, 60},

	{1, false, false, false}: {1.50, 60},
	{2, false, false, false}: {1.40, 60},
	{4, false, false, false}: {1.30, 60},
	{1, false, false, true}:  {1.45, 60},
	{2, false, false, true}:  {1.35, 60},
	{4, false, false, true}:  {1.25, 60},
}

// Conservative fall-back thresholds per format class, used (with a
// warning) when a working point is not calibrated.
var fallbackThresholds = map[bool]Threshold{
	true:  {3.5, 100}, // long formats
	false: {1.8, 60},  // short formats
}

// DefaultThresholds returns a copy of the built-in calibration table.
// Callers may overlay entries retrieved from the calibration database.
func DefaultThresholds() ThresholdTable {
	tbl := make(ThresholdTable, len(builtinThresholds))
	for k, v := range builtinThresholds {
		tbl[k] = v
	}
	return tbl
}
