// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// prach-vec-gen synthesizes a PRACH occasion and writes it as a
// binary occasion vector file.
//
// Usage: prach-vec-gen [OPTIONS]
//
// Example:
//
//	$> prach-vec-gen -o fmt0-zcz1-pre7.prv -format 0 -zcz 1 -seq-idx 22 \
//	      -preamble 7 -offset-us 1.5 -snr 10 -ant 2
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/go-nr/phytest/internal/vecfmt"
	"github.com/go-nr/phytest/prach"
	"github.com/go-nr/phytest/sim"
)

func main() {
	log.SetPrefix("prach-vec-gen: ")
	log.SetFlags(0)

	var (
		oname    = flag.String("o", "occasion.prv", "path to output vector file")
		format   = flag.String("format", "0", "preamble format (0-3, A1-C2)")
		zcz      = flag.Int("zcz", 0, "zero-correlation-zone configuration")
		seqIdx   = flag.Int("seq-idx", 0, "logical root-sequence index")
		preamble = flag.Int("preamble", -1, "preamble index to embed (negative: noise only)")
		offset   = flag.Float64("offset-us", 0, "timing offset of the preamble, in µs")
		snr      = flag.Float64("snr", 20, "SNR of the occasion, in dB")
		ant      = flag.Int("ant", 1, "number of antenna ports")
		reps     = flag.Int("reps", 1, "number of preamble replicas")
		carrier  = flag.Float64("carrier-scs", 15e3, "carrier subcarrier spacing, in Hz")
		seed     = flag.Int64("seed", 1, "seed of the noise generator")
	)

	flag.Parse()

	err := run(*oname, *format, *zcz, *seqIdx, *preamble, *offset, *snr, *ant, *reps, *carrier, *seed)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(oname, format string, zcz, seqIdx, preamble int, offset, snr float64, ant, reps int, carrierSCS float64, seed int64) error {
	f, err := prach.ParseFormat(format)
	if err != nil {
		return err
	}

	scs := 1250.0
	switch f {
	case prach.Format3:
		scs = 5e3
	default:
		if !f.Long() {
			scs = carrierSCS
		}
	}

	occ := sim.Occasion{
		Carrier: prach.Carrier{SCS: carrierSCS},
		Config: prach.Config{
			Format:        f,
			SCS:           scs,
			L:             f.SeqLen(),
			RestrictedSet: prach.Unrestricted,
			ZCZ:           zcz,
			SequenceIndex: seqIdx,
		},
		Reps:   reps,
		NumAnt: ant,
	}

	rng := rand.New(rand.NewSource(seed))
	grid, err := sim.Synthesize(occ, preamble, offset, snr, rng)
	if err != nil {
		return fmt.Errorf("could not synthesize occasion: %w", err)
	}

	o, err := os.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", oname, err)
	}
	defer o.Close()

	enc := vecfmt.NewEncoder(o)
	err = enc.Encode(&vecfmt.Vector{
		Carrier: occ.Carrier,
		Config:  occ.Config,
		Reps:    reps,
		Samples: grid,
	})
	if err != nil {
		return fmt.Errorf("could not encode occasion: %w", err)
	}

	err = o.Close()
	if err != nil {
		return fmt.Errorf("could not close %q: %w", oname, err)
	}

	log.Printf("wrote %q (format=%v, preamble=%d, snr=%g dB)", oname, f, preamble, snr)
	return nil
}
