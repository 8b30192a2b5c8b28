// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package prach

import (
	"fmt"

	"github.com/go-nr/phytest/zcseq"
)

// RootSequencer produces the ideal root sequence of a PRACH
// configuration. The detector calls it once per candidate root
// sequence, with cfg.PreambleIndex set to the first preamble of that
// root.
type RootSequencer interface {
	RootSequence(carrier Carrier, cfg Config) ([]complex128, error)
}

// DefaultSequencer is the standards-based Zadoff-Chu generator the
// detector uses unless WithSequencer overrides it.
var DefaultSequencer RootSequencer = zcSequencer{}

// zcSequencer is the standards-based generator used by default.
type zcSequencer struct{}

func (zcSequencer) RootSequence(carrier Carrier, cfg Config) ([]complex128, error) {
	wi, err := Windows(cfg, carrier.Mu())
	if err != nil {
		return nil, err
	}
	logical := cfg.SequenceIndex + cfg.PreambleIndex/wi.NumShifts
	u, err := zcseq.PhysicalRoot(logical, cfg.L)
	if err != nil {
		return nil, fmt.Errorf("prach: could not map logical root %d: %w", logical, err)
	}
	return zcseq.RootSequence(u, cfg.L)
}
