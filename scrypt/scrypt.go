// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scrypt implements the scrypt key derivation function as defined in
// Colin Percival's paper "Stronger Key Derivation via Sequential Memory-Hard
// Functions" (https://www.tarsnap.com/scrypt/scrypt.pdf) and RFC 7914.
//
// Derived keys are a non-zero multiple of 32 bytes long.
package scrypt

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/sync/errgroup"

	"github.com/walletcore/crypto/salsa20/salsa"
)

// blockCopy copies n numbers from src into dst.
func blockCopy(dst, src []uint32, n int) {
	copy(dst, src[:n])
}

// blockXOR XORs numbers from dst with n numbers from src.
func blockXOR(dst, src []uint32, n int) {
	for i, v := range src[:n] {
		dst[i] ^= v
	}
}

// salsaXOR XORs the 16 numbers of in into tmp, applies Salsa20/8 to tmp and
// puts the result into out.
func salsaXOR(tmp *[16]uint32, in, out []uint32) {
	for i := range tmp {
		tmp[i] ^= in[i]
	}
	salsa.Mix208(tmp)
	copy(out[:16], tmp[:])
}

// blockMix runs BlockMix over the 2*r 64-byte words of in. Words produced
// at even positions land in the first half of out and words produced at odd
// positions in the second half.
func blockMix(tmp *[16]uint32, in, out []uint32, r int) {
	blockCopy(tmp[:], in[(2*r-1)*16:], 16)
	for i := 0; i < 2*r; i += 2 {
		salsaXOR(tmp, in[i*16:], out[i*8:])
		salsaXOR(tmp, in[i*16+16:], out[i*8+r*16:])
	}
}

// integer returns the low 64 bits of the last 64-byte word of b as a
// little-endian number.
func integer(b []uint32, r int) uint64 {
	j := (2*r - 1) * 16
	return uint64(b[j]) | uint64(b[j+1])<<32
}

// smix runs ROMix over the 128*r bytes of b in place, using v (32*r*N words)
// as the scratch table and xy (64*r words) as BlockMix space.
func smix(b []byte, r, N int, v, xy []uint32) {
	var tmp [16]uint32
	R := 32 * r
	x := xy
	y := xy[R:]

	j := 0
	for i := 0; i < R; i++ {
		x[i] = binary.LittleEndian.Uint32(b[j:])
		j += 4
	}
	for i := 0; i < N; i += 2 {
		blockCopy(v[i*R:], x, R)
		blockMix(&tmp, x, y, r)

		blockCopy(v[(i+1)*R:], y, R)
		blockMix(&tmp, y, x, r)
	}
	for i := 0; i < N; i += 2 {
		j := int(integer(x, r) & uint64(N-1))
		blockXOR(x, v[j*R:], R)
		blockMix(&tmp, x, y, r)

		j = int(integer(y, r) & uint64(N-1))
		blockXOR(y, v[j*R:], R)
		blockMix(&tmp, y, x, r)
	}
	j = 0
	for _, v := range x[:R] {
		binary.LittleEndian.PutUint32(b[j:], v)
		j += 4
	}
}

// Config collects options for a derivation. A nil *Config is valid and
// results in all default values.
type Config struct {
	// Workers bounds how many of the p ROMix passes run concurrently. Each
	// worker holds its own 128*r*N byte scratch table, so memory use grows
	// linearly with it. Zero or one runs the passes sequentially; values
	// above p are capped at p. The output does not depend on Workers.
	Workers int

	// LockMemory asks the operating system to keep scratch tables and the
	// stretched password out of swap. It is best effort and a no-op on
	// platforms without mlock.
	LockMemory bool
}

func (c *Config) workers() int {
	if c == nil {
		return 1
	}
	return c.Workers
}

func (c *Config) lockMemory() bool {
	return c != nil && c.LockMemory
}

func effectiveWorkers(workers, p int) int {
	if workers < 1 {
		workers = 1
	}
	if workers > p {
		workers = p
	}
	return workers
}

// Derive fills out with the key derived from the password, salt and cost
// parameters. len(out) must be a non-zero multiple of 32.
//
// All arguments are validated before any memory is allocated. On failure the
// returned error wraps ErrInvalidArgument and out is left untouched.
func (c *Config) Derive(password, salt []byte, params Params, out []byte) error {
	if err := validateOutput(out); err != nil {
		return err
	}
	if err := params.Validate(); err != nil {
		return err
	}
	N, r, p := params.N, params.R, params.P

	b := pbkdf2.Key(password, salt, 1, p*128*r, sha256.New)
	unlock := func() {}
	if c.lockMemory() {
		unlock = lockBytes(b)
	}
	defer func() {
		clear(b)
		unlock()
	}()

	c.romix(b, r, N, p)

	dk := pbkdf2.Key(password, b, 1, len(out), sha256.New)
	copy(out, dk)
	clear(dk)
	return nil
}

// romix transforms each of the p blocks of b in place. Blocks are
// independent, so the result is the same however they are scheduled.
func (c *Config) romix(b []byte, r, N, p int) {
	workers := effectiveWorkers(c.workers(), p)
	lock := c.lockMemory()
	blockSize := 128 * r

	if workers == 1 {
		s := newScratch(r, N, lock)
		defer s.release()
		for i := 0; i < p; i++ {
			smix(b[i*blockSize:], r, N, s.v, s.xy)
		}
		return
	}

	// Scratch tables are allocated up front so peak memory does not depend
	// on scheduling.
	blocks := make(chan int)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		s := newScratch(r, N, lock)
		defer s.release()
		g.Go(func() error {
			for i := range blocks {
				smix(b[i*blockSize:(i+1)*blockSize], r, N, s.v, s.xy)
			}
			return nil
		})
	}
	for i := 0; i < p; i++ {
		blocks <- i
	}
	close(blocks)
	_ = g.Wait()
}

// Derive fills out with the key derived from the password, salt, and cost
// parameters, running the p ROMix passes sequentially. It is equivalent to
// calling Derive on a nil *Config.
//
// N is a CPU/memory cost parameter, which must be a power of two greater than 1.
// r and p must be positive and satisfy r * p < 2³⁰. len(out) must be a
// non-zero multiple of 32. If the arguments do not satisfy these limits,
// Derive returns an error wrapping ErrInvalidArgument and does not modify out.
// The password and salt may be empty.
func Derive(password, salt []byte, N, r, p int, out []byte) error {
	var c *Config
	return c.Derive(password, salt, Params{N: N, R: r, P: p}, out)
}

// Key derives a key from the password, salt, and cost parameters, returning
// a byte slice of length keyLen that can be used as cryptographic key.
//
// The parameter limits are those of Derive; keyLen must be a non-zero
// multiple of 32. If they are not met, Key returns a nil byte slice and an
// error wrapping ErrInvalidArgument.
//
// For example, you can get a derived key for e.g. AES-256 (which needs a
// 32-byte key) by doing:
//
//	dk, err := scrypt.Key([]byte("some password"), salt, 32768, 8, 1, 32)
//
// The recommended parameters for interactive logins as of 2017 are N=32768,
// r=8 and p=1. The parameters N, r, and p should be increased as memory
// latency and CPU parallelism increases; consider setting N to the highest
// power of 2 you can derive within 100 milliseconds. Remember to get a good
// random salt.
func Key(password, salt []byte, N, r, p, keyLen int) ([]byte, error) {
	if keyLen <= 0 {
		return nil, invalid("keyLen", "must be > 0")
	}
	if keyLen%32 != 0 {
		return nil, invalid("keyLen", "must be a multiple of 32")
	}
	out := make([]byte, keyLen)
	if err := Derive(password, salt, N, r, p, out); err != nil {
		return nil, err
	}
	return out, nil
}
