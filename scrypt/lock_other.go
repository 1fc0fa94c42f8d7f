// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !unix

package scrypt

func lockBytes(b []byte) func() { return func() {} }

func lockWords(w []uint32) func() { return func() {} }
