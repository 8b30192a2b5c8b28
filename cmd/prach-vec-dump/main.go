// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// prach-vec-dump decodes and displays PRACH occasion vector files.
//
// Usage: prach-vec-dump FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> prach-vec-dump ./testdata/fmt0-zcz1-pre7.prv
//	=== occasion fmt0-zcz1-pre7.prv ===
//	format:      0
//	set:         unrestricted
//	zcz:         1
//	seq-idx:     22
//	prach-scs:   1250 Hz
//	carrier-scs: 15000 Hz
//	replicas:    1
//	antennas:    2
//	  ant 0: 839 samples, power +0.98 dB
//	  ant 1: 839 samples, power +1.02 dB
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/go-nr/phytest/internal/vecfmt"
)

func main() {
	log.SetPrefix("prach-vec-dump: ")
	log.SetFlags(0)

	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatalf("missing path to input vector file")
	}

	for _, fname := range flag.Args() {
		err := process(os.Stdout, fname)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	dec := vecfmt.NewDecoder(f)
loop:
	for {
		var vec vecfmt.Vector
		err := dec.Decode(&vec)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not decode occasion: %w", err)
		}

		fmt.Fprintf(wbuf, "=== occasion %s ===\n", filepath.Base(fname))
		fmt.Fprintf(wbuf, "format:      %v\n", vec.Config.Format)
		fmt.Fprintf(wbuf, "set:         %v\n", vec.Config.RestrictedSet)
		fmt.Fprintf(wbuf, "zcz:         %d\n", vec.Config.ZCZ)
		fmt.Fprintf(wbuf, "seq-idx:     %d\n", vec.Config.SequenceIndex)
		fmt.Fprintf(wbuf, "prach-scs:   %.0f Hz\n", vec.Config.SCS)
		fmt.Fprintf(wbuf, "carrier-scs: %.0f Hz\n", vec.Carrier.SCS)
		fmt.Fprintf(wbuf, "replicas:    %d\n", vec.Reps)
		fmt.Fprintf(wbuf, "antennas:    %d\n", vec.NumAnt())

		rows, nAnt := vec.Samples.Dims()
		for ant := 0; ant < nAnt; ant++ {
			var sum float64
			for i := 0; i < rows; i++ {
				v := vec.Samples.At(i, ant)
				re, im := real(v), imag(v)
				sum += re*re + im*im
			}
			fmt.Fprintf(wbuf, "  ant %d: %d samples, power %+.2f dB\n",
				ant, rows, 10*math.Log10(sum/float64(rows)),
			)
		}
	}

	return nil
}
