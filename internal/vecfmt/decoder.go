// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecfmt

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/mat"

	"github.com/go-nr/phytest/internal/crc16"
	"github.com/go-nr/phytest/prach"
)

// Decoder reads (and validates) occasion vectors from an underlying
// data source. Decoder recomputes the CRC-16 checksum on the fly and
// checks it against the stream trailer.
type Decoder struct {
	r io.Reader

	buf []byte
	err error
	crc crc16.Hash16
}

// NewDecoder creates a decoder that reads and validates vectors from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		r:   r,
		buf: make([]byte, 8),
		crc: crc16.New(nil),
	}
}

func (dec *Decoder) reset() {
	dec.crc.Reset()
}

// Decode reads the next occasion vector from the stream into vec.
// It returns io.EOF when the stream is exhausted.
func (dec *Decoder) Decode(vec *Vector) error {
	dec.reset()

	v := dec.readU8()
	if dec.err != nil {
		if xerrors.Is(dec.err, io.EOF) {
			return io.EOF
		}
		return xerrors.Errorf("vecfmt: could not read global header marker: %w", dec.err)
	}
	if v != gbHeader {
		return xerrors.Errorf("vecfmt: could not read global header marker (got=0x%x)", v)
	}

	var (
		format  = dec.readU8()
		rset    = dec.readU8()
		zcz     = dec.readU8()
		seqIdx  = dec.readU16()
		seqLen  = dec.readU16()
		scsRA   = dec.readU32()
		scsCarr = dec.readU32()
		reps    = dec.readU8()
		nAnt    = dec.readU8()
	)
	if dec.err != nil {
		return xerrors.Errorf("vecfmt: could not read vector header: %w", dec.err)
	}
	if reps < 1 || nAnt < 1 || seqLen < 1 {
		return xerrors.Errorf(
			"vecfmt: invalid vector header (l=%d, reps=%d, nant=%d)",
			seqLen, reps, nAnt,
		)
	}

	vec.Config = prach.Config{
		Format:        prach.Format(format),
		SCS:           float64(scsRA),
		L:             int(seqLen),
		RestrictedSet: prach.RestrictedSet(rset),
		ZCZ:           int(zcz),
		SequenceIndex: int(seqIdx),
	}
	vec.Carrier = prach.Carrier{SCS: float64(scsCarr)}
	vec.Reps = int(reps)

	rows := int(seqLen) * int(reps)
	vec.Samples = mat.NewCDense(rows, int(nAnt), nil)

	for ant := 0; ant < int(nAnt); ant++ {
		v := dec.readU8()
		if dec.err != nil {
			return xerrors.Errorf(
				"vecfmt: could not read antenna block %d marker: %w",
				ant, dec.err,
			)
		}
		if v != antHeader {
			return xerrors.Errorf(
				"vecfmt: invalid antenna block %d marker (got=0x%x)",
				ant, v,
			)
		}
		for i := 0; i < rows; i++ {
			re := dec.readF32()
			im := dec.readF32()
			vec.Samples.Set(i, ant, complex(float64(re), float64(im)))
		}
		if dec.err != nil {
			return xerrors.Errorf(
				"vecfmt: could not read antenna block %d: %w",
				ant, dec.err,
			)
		}
	}

	v = dec.readU8()
	if dec.err != nil {
		return xerrors.Errorf("vecfmt: could not read global trailer marker: %w", dec.err)
	}
	if v != gbTrailer {
		return xerrors.Errorf("vecfmt: invalid global trailer marker (got=0x%x)", v)
	}

	var (
		compCRC = dec.crc.Sum16()
		recvCRC = dec.readU16()
	)
	if dec.err != nil {
		return xerrors.Errorf("vecfmt: could not read CRC-16: %w", dec.err)
	}
	if compCRC != recvCRC {
		return xerrors.Errorf(
			"vecfmt: inconsistent CRC: recv=0x%04x comp=0x%04x",
			recvCRC, compCRC,
		)
	}

	return nil
}

func (dec *Decoder) load(n int) {
	if dec.err != nil {
		return
	}
	_, dec.err = io.ReadFull(dec.r, dec.buf[:n])
	if dec.err != nil {
		return
	}
	_, _ = dec.crc.Write(dec.buf[:n]) // can not fail.
}

func (dec *Decoder) readU8() uint8 {
	dec.load(1)
	if dec.err != nil {
		return 0
	}
	return dec.buf[0]
}

func (dec *Decoder) readU16() uint16 {
	const n = 2
	dec.load(n)
	if dec.err != nil {
		return 0
	}
	return binary.BigEndian.Uint16(dec.buf[:n])
}

func (dec *Decoder) readU32() uint32 {
	const n = 4
	dec.load(n)
	if dec.err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(dec.buf[:n])
}

func (dec *Decoder) readF32() float32 {
	return math.Float32frombits(dec.readU32())
}
