// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// prach-detect decodes PRACH occasion vector files and displays the
// detected preambles.
//
// Usage: prach-detect [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> prach-detect ./testdata/fmt0-zcz1-pre7.prv
//	=== occasion fmt0-zcz1-pre7.prv ===
//	format:   0
//	zcz:      1
//	seq-idx:  22
//	antennas: 2
//	rssi:     -28.82 dB
//	preamble 07: offset=1.56 us, sinr=6.93 dB
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-nr/phytest/internal/vecfmt"
	"github.com/go-nr/phytest/prach"
)

func main() {
	log.SetPrefix("prach-detect: ")
	log.SetFlags(0)

	noCFO := flag.Bool("ignore-cfo", false, "average preamble replicas per antenna")

	flag.Usage = func() {
		fmt.Printf(`prach-detect decodes PRACH occasion vector files and displays the detected preambles.

Usage: prach-detect [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> prach-detect ./testdata/fmt0-zcz1-pre7.prv
 === occasion fmt0-zcz1-pre7.prv ===
 format:   0
 zcz:      1
 seq-idx:  22
 antennas: 2
 rssi:     -28.82 dB
 preamble 07: offset=1.56 us, sinr=6.93 dB

`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input vector file")
	}

	det := prach.New()
	for _, fname := range flag.Args() {
		err := process(os.Stdout, det, fname, *noCFO)
		if err != nil {
			log.Fatalf("could not process file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, det *prach.Detector, fname string, noCFO bool) error {
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

		res, err := det.Detect(vec.Carrier, vec.Config, vec.Samples, noCFO)
		if err != nil {
			return fmt.Errorf("could not detect preambles: %w", err)
		}

		fmt.Fprintf(wbuf, "=== occasion %s ===\n", filepath.Base(fname))
		fmt.Fprintf(wbuf, "format:   %v\n", vec.Config.Format)
		fmt.Fprintf(wbuf, "zcz:      %d\n", vec.Config.ZCZ)
		fmt.Fprintf(wbuf, "seq-idx:  %d\n", vec.Config.SequenceIndex)
		fmt.Fprintf(wbuf, "antennas: %d\n", vec.NumAnt())
		fmt.Fprintf(wbuf, "rssi:     %+.2f dB\n", res.RSSI)

		n := 0
		for i, hit := range res.Indices {
			if !hit {
				continue
			}
			n++
			fmt.Fprintf(wbuf, "preamble %02d: offset=%.2f us, sinr=%.2f dB\n",
				i, res.Offsets[i], res.SINR[i],
			)
		}
		if n == 0 {
			fmt.Fprintf(wbuf, "no preamble detected\n")
		}
	}

	return nil
}
