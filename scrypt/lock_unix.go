// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build unix

package scrypt

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// lockBytes pins b in physical memory so intermediate key material is not
// written to swap. Locking is best effort: a refused mlock (for example under
// a small RLIMIT_MEMLOCK) leaves b unlocked. The returned function undoes a
// successful lock.
func lockBytes(b []byte) func() {
	if len(b) == 0 {
		return func() {}
	}
	if err := unix.Mlock(b); err != nil {
		return func() {}
	}
	return func() { unix.Munlock(b) }
}

func lockWords(w []uint32) func() {
	if len(w) == 0 {
		return func() {}
	}
	return lockBytes(unsafe.Slice((*byte)(unsafe.Pointer(&w[0])), len(w)*4))
}
