// Copyright 2012 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scrypt

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math/bits"
	"strings"
	"testing"

	refsalsa "golang.org/x/crypto/salsa20/salsa"
	refscrypt "golang.org/x/crypto/scrypt"
)

type testVector struct {
	password string
	salt     string
	N, r, p  int
	output   string
	huge     bool
}

// unhex decodes a vector, ignoring the spaces used to group its bytes.
func unhex(s string) []byte {
	b, err := hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		panic(err)
	}
	return b
}

// https://tools.ietf.org/html/rfc7914#section-12
var good = []testVector{
	{
		"", "",
		16, 1, 1,
		"77 d6 57 62 38 65 7b 20 3b 19 ca 42 c1 8a 04 97" +
			"f1 6b 48 44 e3 07 4a e8 df df fa 3f ed e2 14 42" +
			"fc d0 06 9d ed 09 48 f8 32 6a 75 3a 0f c8 1f 17" +
			"e8 d3 e0 fb 2e 0d 36 28 cf 35 e2 0c 38 d1 89 06",
		false,
	},
	{
		"password", "NaCl",
		1024, 8, 16,
		"fd ba be 1c 9d 34 72 00 78 56 e7 19 0d 01 e9 fe" +
			"7c 6a d7 cb c8 23 78 30 e7 73 76 63 4b 37 31 62" +
			"2e af 30 d9 2e 22 a3 88 6f f1 09 27 9d 98 30 da" +
			"c7 27 af b9 4a 83 ee 6d 83 60 cb df a2 cc 06 40",
		false,
	},
	{
		"pleaseletmein", "SodiumChloride",
		16384, 8, 1,
		"70 23 bd cb 3a fd 73 48 46 1c 06 cd 81 fd 38 eb" +
			"fd a8 fb ba 90 4f 8e 3e a9 b5 43 f6 54 5d a1 f2" +
			"d5 43 29 55 61 3f 0f cf 62 d4 97 05 24 2a 9a f9" +
			"e6 1e 85 dc 0d 65 1e 40 df cf 01 7b 45 57 58 87",
		false,
	},
	{
		"pleaseletmein", "SodiumChloride",
		1048576, 8, 1,
		"21 01 cb 9b 6a 51 1a ae ad db be 09 cf 70 f8 81" +
			"ec 56 8d 57 4a 2f fd 4d ab e5 ee 98 20 ad aa 47" +
			"8e 56 fd 8f 4b a5 d0 9f fa 1c 6d 92 7c 40 f4 c3" +
			"37 30 40 49 e8 a9 52 fb cb f4 5c 6f a7 7a 41 a4",
		true, // 1 GiB of scratch
	},
}

func TestKey(t *testing.T) {
	for i, v := range good {
		if v.huge && testing.Short() {
			t.Logf("%d: skipping N=%d in short mode", i, v.N)
			continue
		}
		want := unhex(v.output)
		k, err := Key([]byte(v.password), []byte(v.salt), v.N, v.r, v.p, len(want))
		if err != nil {
			t.Errorf("%d: got unexpected error: %s", i, err)
			continue
		}
		if !bytes.Equal(want, k) {
			t.Errorf("%d: expected %x, got %x", i, want, k)
		}
	}
}

func TestDeriveFillsBuffer(t *testing.T) {
	for i, v := range good {
		if v.huge {
			continue
		}
		want := unhex(v.output)
		out := bytes.Repeat([]byte{0x5a}, len(want))
		if err := Derive([]byte(v.password), []byte(v.salt), v.N, v.r, v.p, out); err != nil {
			t.Fatalf("%d: got unexpected error: %s", i, err)
		}
		if !bytes.Equal(want, out) {
			t.Errorf("%d: expected %x, got %x", i, want, out)
		}
	}
}

func TestConfigWorkers(t *testing.T) {
	v := good[1]
	want := unhex(v.output)
	for _, c := range []*Config{
		nil,
		{},
		{Workers: 1},
		{Workers: 3},
		{Workers: 5},
		{Workers: v.p},
		{Workers: 4 * v.p},
		{Workers: 4, LockMemory: true},
	} {
		out := make([]byte, len(want))
		err := c.Derive([]byte(v.password), []byte(v.salt), Params{N: v.N, R: v.r, P: v.p}, out)
		if err != nil {
			t.Fatalf("%+v: got unexpected error: %s", c, err)
		}
		if !bytes.Equal(want, out) {
			t.Errorf("%+v: expected %x, got %x", c, want, out)
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	pwd, salt := []byte("password"), []byte("NaCl")
	type invalidCase struct {
		name    string
		N, r, p int
		out     []byte
		param   string
	}
	tests := []invalidCase{
		{"nil output", 16, 1, 1, nil, "out"},
		{"empty output", 16, 1, 1, []byte{}, "out"},
		{"output not multiple of 32", 16, 1, 1, make([]byte, 33), "out"},
		{"output shorter than 32", 16, 1, 1, make([]byte, 31), "out"},
		{"N zero", 0, 1, 1, make([]byte, 32), "N"},
		{"N one", 1, 1, 1, make([]byte, 32), "N"},
		{"N not power of two", 3, 1, 1, make([]byte, 32), "N"},
		{"N negative", -16, 1, 1, make([]byte, 32), "N"},
		{"r zero", 16, 0, 1, make([]byte, 32), "r"},
		{"r negative", 16, -1, 1, make([]byte, 32), "r"},
		{"p zero", 16, 1, 0, make([]byte, 32), "p"},
		{"p negative", 16, 1, -8, make([]byte, 32), "p"},
		{"128*r*N overflows", 1 << (bits.UintSize - 3), 1, 1, make([]byte, 32), "128*r*N"},
		{"128*r*p overflows", 2, maxInt / 256, 4, make([]byte, 32), "128*r*p"},
		// output is checked first, whatever the cost parameters
		{"output checked before N", 3, 0, 0, make([]byte, 33), "out"},
	}
	if bits.UintSize == 64 {
		// Sizes that fit in an int but not in memory.
		tests = append(tests,
			invalidCase{"128*r*N too large to allocate", 1 << (bits.UintSize - 14), 1, 1, make([]byte, 32), "128*r*N"},
			invalidCase{"128*r*p too large to allocate", 2, 1, 1 << (bits.UintSize - 23), make([]byte, 32), "128*r*p"},
		)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var orig []byte
			if tt.out != nil {
				for i := range tt.out {
					tt.out[i] = 0xa5
				}
				orig = append([]byte{}, tt.out...)
			}

			err := Derive(pwd, salt, tt.N, tt.r, tt.p, tt.out)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			var perr *ParamError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParamError, got %T", err)
			}
			if perr.Param != tt.param {
				t.Errorf("expected failure on %q, got %q (%s)", tt.param, perr.Param, perr.Reason)
			}
			if tt.out != nil && !bytes.Equal(tt.out, orig) {
				t.Errorf("output buffer modified on failure")
			}
		})
	}
}

func TestInvalidProductOfRandP(t *testing.T) {
	if bits.UintSize < 64 {
		t.Skip("128*r*p overflows first on 32-bit platforms")
	}
	err := Derive(nil, nil, 2, 1<<15, 1<<15, make([]byte, 32))
	var perr *ParamError
	if !errors.As(err, &perr) || perr.Param != "r*p" {
		t.Fatalf("expected r*p failure, got %v", err)
	}
}

func TestKeyInvalidLength(t *testing.T) {
	for _, keyLen := range []int{-32, 0, 1, 16, 33, 65} {
		k, err := Key([]byte("password"), []byte("NaCl"), 16, 1, 1, keyLen)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("keyLen %d: expected ErrInvalidArgument, got %v", keyLen, err)
		}
		if k != nil {
			t.Errorf("keyLen %d: expected nil key, got %x", keyLen, k)
		}
	}
}

func TestKeyInvalidParams(t *testing.T) {
	for _, v := range []Params{{N: 3, R: 1, P: 1}, {N: 16, R: 0, P: 1}, {N: 16, R: 1, P: 0}} {
		k, err := Key([]byte("password"), []byte("NaCl"), v.N, v.R, v.P, 32)
		var perr *ParamError
		if !errors.As(err, &perr) || !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%+v: expected *ParamError wrapping ErrInvalidArgument, got %v", v, err)
		}
		if k != nil {
			t.Errorf("%+v: expected nil key, got %x", v, k)
		}
	}
}

func TestEmptyPasswordAndSalt(t *testing.T) {
	for _, in := range [][2][]byte{{nil, nil}, {{}, {}}, {nil, []byte("salt")}, {[]byte("pw"), nil}} {
		k, err := Key(in[0], in[1], 16, 1, 1, 32)
		if err != nil {
			t.Fatalf("password %q salt %q: %v", in[0], in[1], err)
		}
		if len(k) != 32 {
			t.Errorf("expected 32 bytes, got %d", len(k))
		}
	}
}

func TestDeterministicAndLength(t *testing.T) {
	for _, keyLen := range []int{32, 64, 96, 256} {
		a, err := Key([]byte("pleaseletmein"), []byte("SodiumChloride"), 32, 2, 2, keyLen)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Key([]byte("pleaseletmein"), []byte("SodiumChloride"), 32, 2, 2, keyLen)
		if err != nil {
			t.Fatal(err)
		}
		if len(a) != keyLen {
			t.Errorf("expected %d bytes, got %d", keyLen, len(a))
		}
		if !bytes.Equal(a, b) {
			t.Errorf("keyLen %d: two derivations differ: %x vs %x", keyLen, a, b)
		}
	}
}

func TestSensitivity(t *testing.T) {
	base := func() (pwd, salt []byte, N, r, p int) {
		return []byte("password"), []byte("NaCl"), 16, 1, 1
	}
	pwd, salt, N, r, p := base()
	want, err := Key(pwd, salt, N, r, p, 32)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(pwd, salt []byte, N, r, p *int)
	}{
		{"password bit", func(pwd, salt []byte, N, r, p *int) { pwd[0] ^= 1 }},
		{"salt bit", func(pwd, salt []byte, N, r, p *int) { salt[len(salt)-1] ^= 0x80 }},
		{"N", func(pwd, salt []byte, N, r, p *int) { *N <<= 1 }},
		{"r", func(pwd, salt []byte, N, r, p *int) { *r++ }},
		{"p", func(pwd, salt []byte, N, r, p *int) { *p++ }},
	}
	for _, tt := range tests {
		pwd, salt, N, r, p := base()
		tt.mutate(pwd, salt, &N, &r, &p)
		got, err := Key(pwd, salt, N, r, p, 32)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if bytes.Equal(want, got) {
			t.Errorf("%s: changing the input did not change the key", tt.name)
		}
	}
}

func TestMatchesReference(t *testing.T) {
	pwd := make([]byte, 24)
	salt := make([]byte, 16)
	for _, N := range []int{2, 4, 16, 64} {
		for r := 1; r <= 3; r++ {
			for p := 1; p <= 3; p++ {
				if _, err := rand.Read(pwd); err != nil {
					t.Fatal(err)
				}
				if _, err := rand.Read(salt); err != nil {
					t.Fatal(err)
				}
				want, err := refscrypt.Key(pwd, salt, N, r, p, 64)
				if err != nil {
					t.Fatal(err)
				}
				got, err := Key(pwd, salt, N, r, p, 64)
				if err != nil {
					t.Fatalf("N=%d r=%d p=%d: %v", N, r, p, err)
				}
				if !bytes.Equal(want, got) {
					t.Errorf("N=%d r=%d p=%d: expected %x, got %x", N, r, p, want, got)
				}
			}
		}
	}
}

// byteBlockMix is BlockMix written directly against RFC 7914 on bytes, with
// an explicit de-interleave pass.
func byteBlockMix(b, y []byte, r int) {
	var x [64]byte
	copy(x[:], b[(2*r-1)*64:])
	for i := 0; i < 2*r*64; i += 64 {
		for k := range x {
			x[k] ^= b[i+k]
		}
		refsalsa.Core208(&x, &x)
		copy(y[i:], x[:])
	}
	for i := 0; i < r; i++ {
		copy(b[i*64:(i+1)*64], y[i*2*64:])
	}
	for i := 0; i < r; i++ {
		copy(b[(i+r)*64:(i+r+1)*64], y[(i*2+1)*64:])
	}
}

func TestBlockMix(t *testing.T) {
	for r := 1; r <= 4; r++ {
		in := make([]byte, 128*r)
		if _, err := rand.Read(in); err != nil {
			t.Fatal(err)
		}
		words := make([]uint32, 32*r)
		for i := range words {
			words[i] = binary.LittleEndian.Uint32(in[i*4:])
		}
		out := make([]uint32, 32*r)
		var tmp [16]uint32
		blockMix(&tmp, words, out, r)

		got := make([]byte, 128*r)
		for i, w := range out {
			binary.LittleEndian.PutUint32(got[i*4:], w)
		}
		byteBlockMix(in, make([]byte, 128*r), r)
		if !bytes.Equal(in, got) {
			t.Errorf("r=%d: expected %x, got %x", r, in, got)
		}
	}
}

func TestSmixLeavesScratchUsable(t *testing.T) {
	// Running the same block twice through one scratch must give the same
	// result: phase 1 overwrites every slot of V before phase 2 reads it.
	const r, N = 2, 32
	s := newScratch(r, N, false)
	defer s.release()

	a := make([]byte, 128*r)
	if _, err := rand.Read(a); err != nil {
		t.Fatal(err)
	}
	b := append([]byte{}, a...)
	smix(a, r, N, s.v, s.xy)
	smix(b, r, N, s.v, s.xy)
	if !bytes.Equal(a, b) {
		t.Errorf("smix depends on previous scratch contents")
	}
}

func TestScratchRelease(t *testing.T) {
	s := newScratch(1, 16, true)
	for i := range s.v {
		s.v[i] = uint32(i) + 1
	}
	s.xy[0] = 0xffffffff
	s.release()
	for i, w := range s.v {
		if w != 0 {
			t.Fatalf("v[%d] = %#x after release", i, w)
		}
	}
	if s.xy[0] != 0 {
		t.Errorf("xy not wiped after release")
	}
}

func TestMemoryUsage(t *testing.T) {
	p := Params{N: 1024, R: 8, P: 16}
	if got, want := p.ScratchSize(), 1<<20; got != want {
		t.Errorf("ScratchSize: expected %d, got %d", want, got)
	}
	tests := []struct {
		workers int
		want    uint64
	}{
		{0, 1067008},
		{1, 1067008},
		{4, 4218880},
		{100, 16826368},
	}
	for _, tt := range tests {
		got, err := p.MemoryUsage(tt.workers)
		if err != nil {
			t.Fatalf("workers=%d: %v", tt.workers, err)
		}
		if got != tt.want {
			t.Errorf("workers=%d: expected %d, got %d", tt.workers, tt.want, got)
		}
	}
	if _, err := (Params{N: 3, R: 1, P: 1}).MemoryUsage(1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for invalid params, got %v", err)
	}
}

func benchmarkKey(b *testing.B, N, r, p int, c *Config) {
	out := make([]byte, 64)
	params := Params{N: N, R: r, P: p}
	for i := 0; i < b.N; i++ {
		if err := c.Derive([]byte("password"), []byte("salt"), params, out); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkKey(b *testing.B) {
	benchmarkKey(b, 1<<14, 8, 1, nil)
}

func BenchmarkKeyParallel(b *testing.B) {
	b.Run("sequential", func(b *testing.B) { benchmarkKey(b, 1<<12, 8, 8, nil) })
	b.Run("workers=4", func(b *testing.B) { benchmarkKey(b, 1<<12, 8, 8, &Config{Workers: 4}) })
}
