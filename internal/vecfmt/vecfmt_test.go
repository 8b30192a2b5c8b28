// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecfmt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/go-nr/phytest/prach"
)

func testVector(l, reps, nAnt int) *Vector {
	format := prach.Format0
	if l != 839 {
		format = prach.FormatA1
	}

	samples := mat.NewCDense(l*reps, nAnt, nil)
	for ant := 0; ant < nAnt; ant++ {
		for i := 0; i < l*reps; i++ {
			// float32-exact values survive the stream round-trip.
			samples.Set(i, ant, complex(
				float64(i%7)*0.25,
				-float64(ant+1)*0.5,
			))
		}
	}
	return &Vector{
		Carrier: prach.Carrier{SCS: 15e3},
		Config: prach.Config{
			Format:        format,
			SCS:           1250,
			L:             l,
			RestrictedSet: prach.Unrestricted,
			ZCZ:           1,
			SequenceIndex: 22,
		},
		Reps:    reps,
		Samples: samples,
	}
}

func TestRW(t *testing.T) {
	for _, tc := range []struct {
		name             string
		l, reps, nAnt, n int
	}{
		{name: "single", l: 839, reps: 1, nAnt: 1, n: 1},
		{name: "multi-antenna", l: 139, reps: 2, nAnt: 4, n: 1},
		{name: "multi-vector", l: 139, reps: 1, nAnt: 2, n: 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			enc := NewEncoder(buf)

			vec := testVector(tc.l, tc.reps, tc.nAnt)
			for i := 0; i < tc.n; i++ {
				err := enc.Encode(vec)
				if err != nil {
					t.Fatalf("could not encode vector %d: %+v", i, err)
				}
			}

			dec := NewDecoder(buf)
			for i := 0; i < tc.n; i++ {
				var got Vector
				err := dec.Decode(&got)
				if err != nil {
					t.Fatalf("could not decode vector %d: %+v", i, err)
				}

				if got.Config != vec.Config {
					t.Fatalf("invalid config:\ngot= %#v\nwant=%#v", got.Config, vec.Config)
				}
				if got.Carrier != vec.Carrier {
					t.Fatalf("invalid carrier: got=%#v, want=%#v", got.Carrier, vec.Carrier)
				}
				if got.Reps != vec.Reps {
					t.Fatalf("invalid replicas: got=%d, want=%d", got.Reps, vec.Reps)
				}
				if got.NumAnt() != tc.nAnt {
					t.Fatalf("invalid antennas: got=%d, want=%d", got.NumAnt(), tc.nAnt)
				}
				if !mat.CEqual(got.Samples, vec.Samples) {
					t.Fatalf("samples differ")
				}
			}

			var last Vector
			if err := dec.Decode(&last); !errors.Is(err, io.EOF) {
				t.Fatalf("expected EOF at end of stream, got: %+v", err)
			}
		})
	}
}

func TestEncodeInvalidShape(t *testing.T) {
	enc := NewEncoder(new(bytes.Buffer))

	vec := testVector(139, 1, 1)
	vec.Reps = 2 // rows no longer match L·reps
	if err := enc.Encode(vec); err == nil {
		t.Fatalf("expected an error")
	}

	if err := enc.Encode(nil); err != nil {
		t.Fatalf("nil vector must be a no-op, got: %+v", err)
	}
}

type failingWriter struct {
	n int // number of writes before failing
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.n <= 0 {
		return 0, io.ErrClosedPipe
	}
	w.n--
	return len(p), nil
}

func TestEncoderFailingWriter(t *testing.T) {
	for _, n := range []int{0, 1, 5, 100} {
		enc := NewEncoder(&failingWriter{n: n})
		err := enc.Encode(testVector(139, 1, 2))
		if err == nil {
			t.Fatalf("n=%d: expected an error", n)
		}
		if !errors.Is(err, io.ErrClosedPipe) {
			t.Fatalf("n=%d: invalid error: got=%+v", n, err)
		}
	}
}

func TestDecodeCorruptStream(t *testing.T) {
	raw := func() []byte {
		buf := new(bytes.Buffer)
		err := NewEncoder(buf).Encode(testVector(139, 1, 1))
		if err != nil {
			t.Fatalf("could not encode vector: %+v", err)
		}
		return buf.Bytes()
	}

	t.Run("bad-header-marker", func(t *testing.T) {
		data := raw()
		data[0] = 0x42
		var vec Vector
		err := NewDecoder(bytes.NewReader(data)).Decode(&vec)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if !strings.Contains(err.Error(), "global header marker") {
			t.Fatalf("invalid error: got=%+v", err)
		}
	})

	t.Run("bad-antenna-marker", func(t *testing.T) {
		data := raw()
		data[18] = 0x42 // first antenna block marker
		var vec Vector
		err := NewDecoder(bytes.NewReader(data)).Decode(&vec)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if !strings.Contains(err.Error(), "antenna block") {
			t.Fatalf("invalid error: got=%+v", err)
		}
	})

	t.Run("bad-crc", func(t *testing.T) {
		data := raw()
		data[20] ^= 0xff // flip a sample byte, keep the stored CRC
		var vec Vector
		err := NewDecoder(bytes.NewReader(data)).Decode(&vec)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if !strings.Contains(err.Error(), "inconsistent CRC") {
			t.Fatalf("invalid error: got=%+v", err)
		}
	})

	t.Run("truncated", func(t *testing.T) {
		data := raw()
		var vec Vector
		err := NewDecoder(bytes.NewReader(data[:40])).Decode(&vec)
		if err == nil {
			t.Fatalf("expected an error")
		}
		if errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("truncated stream must not report clean EOF: %+v", err)
		}
	})
}
