// Copyright 2026 The go-nr Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package crc16 implements the 16-bit CRC used by the test-vector
// stream format.
package crc16 // import "github.com/go-nr/phytest/internal/crc16"

import "hash"

const (
	// Size of a CRC-16 checksum in bytes.
	Size = 2

	// CCITT is the generator polynomial of the vector stream
	// checksum (x^16 + x^12 + x^5 + 1).
	CCITT = 0x1021
)

// Table is a 256-word lookup table of a CRC-16 polynomial.
type Table [256]uint16

// MakeTable returns a Table built from the polynomial poly.
func MakeTable(poly uint16) *Table {
	var tab Table
	for i := range tab {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ poly
				continue
			}
			crc <<= 1
		}
		tab[i] = crc
	}
	return &tab
}

var ccittTable = MakeTable(CCITT)

// Hash16 is the common interface implemented by 16-bit hashes.
type Hash16 interface {
	hash.Hash
	Sum16() uint16
}

type digest struct {
	crc uint16
	tab *Table
}

// New creates a Hash16 computing the CRC-16 of tab. A nil tab selects
// the CCITT polynomial.
func New(tab *Table) Hash16 {
	if tab == nil {
		tab = ccittTable
	}
	return &digest{crc: 0xffff, tab: tab}
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return 1 }
func (d *digest) Reset()         { d.crc = 0xffff }

func (d *digest) Write(p []byte) (int, error) {
	crc := d.crc
	for _, v := range p {
		crc = crc<<8 ^ d.tab[byte(crc>>8)^v]
	}
	d.crc = crc
	return len(p), nil
}

func (d *digest) Sum16() uint16 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum16()
	return append(in, byte(s>>8), byte(s))
}
