// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrypt

import (
	"errors"
	"fmt"
	"math/bits"
)

const maxInt = int(^uint(0) >> 1)

// maxAlloc bounds the size in bytes of any single buffer. It is 2^47 on
// 64-bit platforms, below the largest slice the runtime can allocate, and
// maxInt elsewhere.
const maxAlloc = 1<<47*(bits.UintSize/64) + maxInt*(1-bits.UintSize/64)

// ErrInvalidArgument is the only error returned by the derivation functions.
// Every validation failure wraps it, so callers can test for it with errors.Is.
var ErrInvalidArgument = errors.New("scrypt: invalid argument")

// ParamError describes which argument failed validation and why.
type ParamError struct {
	Param  string // "out", "N", "r", "p", or a product such as "128*r*N"
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("scrypt: invalid argument %s: %s", e.Param, e.Reason)
}

// Unwrap returns ErrInvalidArgument.
func (e *ParamError) Unwrap() error {
	return ErrInvalidArgument
}

func invalid(param, reason string) error {
	return &ParamError{Param: param, Reason: reason}
}

// Params holds the scrypt cost parameters.
type Params struct {
	N int // CPU/memory cost, a power of two greater than 1
	R int // block size
	P int // parallelism
}

// Validate reports whether the parameters are usable: N must be a power of
// two greater than 1, r and p must be positive, and none of the buffer sizes
// derived from them may overflow an int or exceed what can be allocated.
func (p Params) Validate() error {
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return invalid("N", "must be > 1 and a power of 2")
	}
	if p.R <= 0 {
		return invalid("r", "must be > 0")
	}
	if p.P <= 0 {
		return invalid("p", "must be > 0")
	}
	scratch, ok := mulSize(128, p.R, p.N)
	if !ok {
		return invalid("128*r*N", "overflows")
	}
	if scratch > maxAlloc {
		return invalid("128*r*N", "exceeds allocatable memory")
	}
	stretch, ok := mulSize(128, p.R, p.P)
	if !ok {
		return invalid("128*r*p", "overflows")
	}
	if stretch > maxAlloc {
		return invalid("128*r*p", "exceeds allocatable memory")
	}
	if _, ok := mulSize(256, p.R, 1); !ok {
		return invalid("256*r", "overflows")
	}
	// PBKDF2 can produce at most (2^32-1)*32 bytes for the stretch.
	if uint64(p.R)*uint64(p.P) >= 1<<30 {
		return invalid("r*p", "must be < 2^30")
	}
	return nil
}

// ScratchSize returns the size in bytes of one ROMix scratch table, 128*r*N.
// The result is only meaningful for parameters that pass Validate.
func (p Params) ScratchSize() int {
	return 128 * p.R * p.N
}

// MemoryUsage returns the number of bytes a derivation with the given
// number of workers keeps live at its peak: one scratch table and one
// BlockMix buffer per worker plus the stretched password.
func (p Params) MemoryUsage(workers int) (uint64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	workers = effectiveWorkers(workers, p.P)

	perWorker := uint64(p.ScratchSize()) + 256*uint64(p.R)
	hi, total := bits.Mul64(perWorker, uint64(workers))
	if hi != 0 {
		return 0, invalid("workers", "memory usage overflows")
	}
	total, carry := bits.Add64(total, 128*uint64(p.R)*uint64(p.P), 0)
	if carry != 0 {
		return 0, invalid("workers", "memory usage overflows")
	}
	return total, nil
}

// mulSize returns a*b*c if the product of the non-negative operands fits in
// an int.
func mulSize(a, b, c int) (int, bool) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > uint64(maxInt) {
		return 0, false
	}
	hi, lo = bits.Mul64(lo, uint64(c))
	if hi != 0 || lo > uint64(maxInt) {
		return 0, false
	}
	return int(lo), true
}

// validateOutput checks the caller's output buffer.
func validateOutput(out []byte) error {
	switch {
	case out == nil:
		return invalid("out", "nil output buffer")
	case len(out) == 0:
		return invalid("out", "length must be > 0")
	case len(out)%32 != 0:
		return invalid("out", "length must be a multiple of 32")
	}
	return nil
}
