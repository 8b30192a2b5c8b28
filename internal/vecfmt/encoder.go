// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vecfmt

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/go-nr/phytest/internal/crc16"
)

// Encoder writes occasion vectors to an output stream.
// Encoder computes the CRC-16 checksum on the fly and appends it
// at the end of the stream.
type Encoder struct {
	w   io.Writer
	buf []byte
	err error
	crc crc16.Hash16
}

// NewEncoder returns a new Encoder that writes to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		w:   w,
		buf: make([]byte, 8),
		crc: crc16.New(nil),
	}
}

func (enc *Encoder) crcw(p []byte) {
	_, _ = enc.crc.Write(p) // can not fail.
}

func (enc *Encoder) reset() {
	enc.crc.Reset()
}

// Encode writes the occasion vector to the stream, computes the
// corresponding CRC-16 checksum on the fly and appends it to the
// stream.
func (enc *Encoder) Encode(vec *Vector) error {
	if vec == nil {
		return nil
	}

	rows, nAnt := 0, 0
	if vec.Samples != nil {
		rows, nAnt = vec.Samples.Dims()
	}
	if vec.Reps < 1 || rows != vec.Config.L*vec.Reps {
		return fmt.Errorf(
			"vecfmt: invalid sample shape: %d rows, want %d×%d",
			rows, vec.Config.L, vec.Reps,
		)
	}

	enc.reset()

	enc.writeU8(gbHeader)
	if enc.err != nil {
		return fmt.Errorf("vecfmt: could not write global header marker: %w", enc.err)
	}

	enc.writeU8(uint8(vec.Config.Format))
	enc.writeU8(uint8(vec.Config.RestrictedSet))
	enc.writeU8(uint8(vec.Config.ZCZ))
	enc.writeU16(uint16(vec.Config.SequenceIndex))
	enc.writeU16(uint16(vec.Config.L))
	enc.writeU32(uint32(vec.Config.SCS))
	enc.writeU32(uint32(vec.Carrier.SCS))
	enc.writeU8(uint8(vec.Reps))
	enc.writeU8(uint8(nAnt))

	for ant := 0; ant < nAnt; ant++ {
		enc.writeU8(antHeader)
		for i := 0; i < rows; i++ {
			v := vec.Samples.At(i, ant)
			enc.writeF32(float32(real(v)))
			enc.writeF32(float32(imag(v)))
		}
	}
	if enc.err != nil {
		return fmt.Errorf("vecfmt: could not write antenna blocks: %w", enc.err)
	}

	enc.writeU8(gbTrailer)

	crc := enc.crc.Sum16()
	enc.writeU16(crc)
	if enc.err != nil {
		return fmt.Errorf("vecfmt: could not write stream trailer: %w", enc.err)
	}

	return enc.err
}

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
	enc.crcw(p)
}

func (enc *Encoder) writeU8(v uint8) {
	const n = 1
	enc.buf[0] = v
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU16(v uint16) {
	const n = 2
	binary.BigEndian.PutUint16(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeU32(v uint32) {
	const n = 4
	binary.BigEndian.PutUint32(enc.buf[:n], v)
	enc.write(enc.buf[:n])
}

func (enc *Encoder) writeF32(v float32) {
	const n = 4
	binary.BigEndian.PutUint32(enc.buf[:n], math.Float32bits(v))
	enc.write(enc.buf[:n])
}
