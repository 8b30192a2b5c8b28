// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prach

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// preprocess reshapes the occasion grid (LRA·reps rows, one column
// per antenna) into one column per preamble replica per antenna.
//
// With ignoreCFO, the replicas of each antenna are coherently
// averaged into a single column: the correlation gain improves, at
// the price of destructive averaging when a residual carrier
// frequency offset rotates the replicas.
func preprocess(grid *mat.CDense, l int, ignoreCFO bool) (*mat.CDense, error) {
	rows, nAnt := grid.Dims()
	if l <= 0 || rows%l != 0 {
		return nil, fmt.Errorf(
			"prach: occasion shape mismatch: %d samples not a multiple of LRA=%d",
			rows, l,
		)
	}
	reps := rows / l

	if ignoreCFO {
		out := mat.NewCDense(l, nAnt, nil)
		inv := complex(1/float64(reps), 0)
		for ant := 0; ant < nAnt; ant++ {
			for n := 0; n < l; n++ {
				var sum complex128
				for rep := 0; rep < reps; rep++ {
					sum += grid.At(rep*l+n, ant)
				}
				out.Set(n, ant, sum*inv)
			}
		}
		return out, nil
	}

	out := mat.NewCDense(l, reps*nAnt, nil)
	for ant := 0; ant < nAnt; ant++ {
		for rep := 0; rep < reps; rep++ {
			col := ant*reps + rep
			for n := 0; n < l; n++ {
				out.Set(n, col, grid.At(rep*l+n, ant))
			}
		}
	}
	return out, nil
}
