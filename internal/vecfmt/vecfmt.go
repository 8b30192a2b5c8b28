// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vecfmt describes and handles PRACH occasion test vectors in
// their binary stream format.
package vecfmt // import "github.com/go-nr/phytest/internal/vecfmt"

import (
	"gonum.org/v1/gonum/mat"

	"github.com/go-nr/phytest/prach"
)

const (
	gbHeader  = 0xe1 // global header marker
	gbTrailer = 0xe0 // global trailer marker

	antHeader = 0xe4 // antenna block marker
)

// Vector is one PRACH occasion capture: the configuration it was
// taken with and the baseband samples, LRA·Reps rows and one column
// per antenna port.
type Vector struct {
	Carrier prach.Carrier
	Config  prach.Config
	Reps    int
	Samples *mat.CDense
}

// NumAnt returns the number of antenna ports of the capture.
func (v *Vector) NumAnt() int {
	if v.Samples == nil {
		return 0
	}
	_, n := v.Samples.Dims()
	return n
}
