// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package zcseq generates the Zadoff-Chu root sequences the NR
// random-access preambles are built from.
package zcseq // import "github.com/go-nr/phytest/zcseq"

import (
	"fmt"
	"math"
	"math/cmplx"
)

// RootSequence returns the length-l Zadoff-Chu sequence of physical
// root u:
//
//	x_u(n) = exp(-iπ·u·n·(n+1)/l), n = 0..l-1.
//
// All samples have unit magnitude.
func RootSequence(u, l int) ([]complex128, error) {
	if l < 3 || u < 1 || u >= l {
		return nil, fmt.Errorf("zcseq: invalid root u=%d for length %d", u, l)
	}
	seq := make([]complex128, l)
	for n := 0; n < l; n++ {
		// n·(n+1) may not overflow for NR lengths; reduce mod 2l
		// to keep the phase argument small anyway.
		arg := -math.Pi * float64(u) * float64((n*(n+1))%(2*l)) / float64(l)
		seq[n] = cmplx.Exp(complex(0, arg))
	}
	return seq, nil
}

// PhysicalRoot maps a logical root-sequence index to the physical
// root u, pairing low and high roots (1, l-1, 2, l-2, ...). Logical
// indices wrap modulo the l-1 available roots.
func PhysicalRoot(logical, l int) (int, error) {
	if l < 3 {
		return 0, fmt.Errorf("zcseq: invalid sequence length %d", l)
	}
	if logical < 0 {
		return 0, fmt.Errorf("zcseq: invalid logical root index %d", logical)
	}
	i := logical % (l - 1)
	u := i/2 + 1
	if i%2 != 0 {
		u = l - u
	}
	return u, nil
}
