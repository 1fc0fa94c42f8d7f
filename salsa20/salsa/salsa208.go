// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package salsa provides the Salsa20/8 core function used by scrypt.
//
// The core takes 16 little-endian 32-bit words, applies 8 rounds of the
// Salsa20 permutation and adds the result back to the input word by word.
// That final addition makes it a compression function rather than a stream
// cipher; see https://cr.yp.to/salsa20.html and RFC 7914, section 3.
package salsa

import (
	"encoding/binary"
	"math/bits"
)

// Core208 applies the Salsa20/8 core function to the 64-byte array in and puts
// the result into the 64-byte array out. The input and output may be the same array.
func Core208(out *[64]byte, in *[64]byte) {
	var w [16]uint32
	for i := range w {
		w[i] = binary.LittleEndian.Uint32(in[i*4:])
	}

	Mix208(&w)

	for i, v := range w {
		binary.LittleEndian.PutUint32(out[i*4:], v)
	}
}

// Mix208 applies the Salsa20/8 core function to the 16 words of b in place.
func Mix208(b *[16]uint32) {
	x0, x1, x2, x3 := b[0], b[1], b[2], b[3]
	x4, x5, x6, x7 := b[4], b[5], b[6], b[7]
	x8, x9, x10, x11 := b[8], b[9], b[10], b[11]
	x12, x13, x14, x15 := b[12], b[13], b[14], b[15]

	for i := 0; i < 8; i += 2 {
		// columns
		x0, x4, x8, x12 = quarterRound(x0, x4, x8, x12)
		x5, x9, x13, x1 = quarterRound(x5, x9, x13, x1)
		x10, x14, x2, x6 = quarterRound(x10, x14, x2, x6)
		x15, x3, x7, x11 = quarterRound(x15, x3, x7, x11)

		// rows
		x0, x1, x2, x3 = quarterRound(x0, x1, x2, x3)
		x5, x6, x7, x4 = quarterRound(x5, x6, x7, x4)
		x10, x11, x8, x9 = quarterRound(x10, x11, x8, x9)
		x15, x12, x13, x14 = quarterRound(x15, x12, x13, x14)
	}

	b[0] += x0
	b[1] += x1
	b[2] += x2
	b[3] += x3
	b[4] += x4
	b[5] += x5
	b[6] += x6
	b[7] += x7
	b[8] += x8
	b[9] += x9
	b[10] += x10
	b[11] += x11
	b[12] += x12
	b[13] += x13
	b[14] += x14
	b[15] += x15
}

// quarterRound mixes a diagonal of the state. a is the word on the diagonal;
// b, c and d follow it in the column (or row) being processed.
func quarterRound(a, b, c, d uint32) (uint32, uint32, uint32, uint32) {
	b ^= bits.RotateLeft32(a+d, 7)
	c ^= bits.RotateLeft32(b+a, 9)
	d ^= bits.RotateLeft32(c+b, 13)
	a ^= bits.RotateLeft32(d+c, 18)
	return a, b, c, d
}
