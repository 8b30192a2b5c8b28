// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package prach implements the NR random-access preamble detector:
// given the baseband samples of one PRACH occasion, it decides which
// of the 64 candidate preambles were transmitted and estimates their
// timing offsets, a detection metric and the received signal strength.
package prach // import "github.com/go-nr/phytest/prach"

import (
	"errors"
	"fmt"
	"math"
)

// NumPreambles is the number of candidate preambles per PRACH occasion.
const NumPreambles = 64

// Format identifies a PRACH preamble format.
type Format int

const (
	Format0 Format = iota // long, L=839, Δf=1.25 kHz
	Format1
	Format2
	Format3 // long, L=839, Δf=5 kHz
	FormatA1
	FormatA2
	FormatA3
	FormatB1
	FormatB2
	FormatB3
	FormatB4
	FormatC0
	FormatC2

	numFormats
)

var fmtNames = [numFormats]string{
	"0", "1", "2", "3",
	"A1", "A2", "A3",
	"B1", "B2", "B3", "B4",
	"C0", "C2",
}

func (f Format) String() string {
	if f < 0 || f >= numFormats {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return fmtNames[f]
}

// ParseFormat returns the preamble format named by s ("0"..."3",
// "A1"..."C2").
func ParseFormat(s string) (Format, error) {
	for i, name := range fmtNames {
		if name == s {
			return Format(i), nil
		}
	}
	return 0, fmt.Errorf("prach: unknown preamble format %q", s)
}

// Long reports whether f is one of the long preamble formats (L=839).
func (f Format) Long() bool {
	return f >= Format0 && f <= Format3
}

// SeqLen returns the preamble sequence length LRA of f.
func (f Format) SeqLen() int {
	if f.Long() {
		return 839
	}
	return 139
}

// DFTSize returns the size of the delay transform used by the detector
// for format f.
func (f Format) DFTSize() int {
	if f.Long() {
		return 1024
	}
	return 256
}

// RestrictedSet selects the cyclic-shift restriction of a cell.
type RestrictedSet int

const (
	Unrestricted RestrictedSet = iota
	RestrictedTypeA
	RestrictedTypeB
)

func (rs RestrictedSet) String() string {
	switch rs {
	case Unrestricted:
		return "unrestricted"
	case RestrictedTypeA:
		return "restricted-type-a"
	case RestrictedTypeB:
		return "restricted-type-b"
	}
	return fmt.Sprintf("RestrictedSet(%d)", int(rs))
}

// ErrRestrictedSet is returned when a configuration selects a
// restricted cyclic-shift set, which the detector does not support.
var ErrRestrictedSet = errors.New("prach: restricted sets not supported")

// Config describes one PRACH configuration.
//
// The detector trusts the configuration to be internally consistent
// (it is validated by the configuration layer of the bench); only the
// restricted set and the preamble format are checked.
type Config struct {
	Format        Format
	SCS           float64 // PRACH subcarrier spacing Δf_RA, in Hz
	L             int     // sequence length LRA (839 or 139)
	RestrictedSet RestrictedSet
	ZCZ           int // zero-correlation-zone configuration index
	SequenceIndex int // logical root-sequence index of preamble 0
	PreambleIndex int
}

// Carrier describes the carrier the PRACH occasion belongs to.
type Carrier struct {
	SCS float64 // carrier subcarrier spacing, in Hz
}

// Mu returns the carrier numerology index μ = log2(SCS/15kHz).
func (c Carrier) Mu() int {
	return int(math.Round(math.Log2(c.SCS / 15e3)))
}

// Result holds the outcome of the detection of one PRACH occasion.
type Result struct {
	Indices [NumPreambles]bool    // Indices[i] is true if preamble i was detected
	Offsets [NumPreambles]float64 // timing offsets in µs; NaN when not detected
	SINR    [NumPreambles]float64 // detection metric in dB; NaN when not detected
	RSSI    float64               // received signal strength over the occasion, in dB
}

func newResult() Result {
	var res Result
	for i := range res.Offsets {
		res.Offsets[i] = math.NaN()
		res.SINR[i] = math.NaN()
	}
	return res
}
