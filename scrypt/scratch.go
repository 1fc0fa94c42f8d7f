// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrypt

// scratch is the working memory of one ROMix worker: the V table of N
// blocks and the two-block BlockMix buffer. A scratch never outlives the
// derivation that allocated it.
type scratch struct {
	v, xy  []uint32
	unlock func()
}

func newScratch(r, N int, lock bool) *scratch {
	s := &scratch{
		v:  make([]uint32, 32*r*N),
		xy: make([]uint32, 64*r),
	}
	s.unlock = func() {}
	if lock {
		unlockV := lockWords(s.v)
		unlockXY := lockWords(s.xy)
		s.unlock = func() {
			unlockXY()
			unlockV()
		}
	}
	return s
}

// release wipes the scratch and drops any memory lock on it.
func (s *scratch) release() {
	clear(s.v)
	clear(s.xy)
	s.unlock()
}
