// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/walletcore/crypto/scrypt"
)

type knownAnswer struct {
	password, salt string
	params         scrypt.Params
	key            string
}

// RFC 7914, section 12.
var knownAnswers = []knownAnswer{
	{"", "", scrypt.Params{N: 16, R: 1, P: 1},
		"77d6576238657b203b19ca42c18a0497f16b4844e3074ae8dfdffa3fede21442" +
			"fcd0069ded0948f8326a753a0fc81f17e8d3e0fb2e0d3628cf35e20c38d18906"},
	{"password", "NaCl", scrypt.Params{N: 1024, R: 8, P: 16},
		"fdbabe1c9d3472007856e7190d01e9fe7c6ad7cbc8237830e77376634b373162" +
			"2eaf30d92e22a3886ff109279d9830dac727afb94a83ee6d8360cbdfa2cc0640"},
	{"pleaseletmein", "SodiumChloride", scrypt.Params{N: 16384, R: 8, P: 1},
		"7023bdcb3afd7348461c06cd81fd38ebfda8fbba904f8e3ea9b543f6545da1f2" +
			"d5432955613f0fcf62d49705242a9af9e61e85dc0d651e40dfcf017b45575887"},
	{"pleaseletmein", "SodiumChloride", scrypt.Params{N: 1048576, R: 8, P: 1},
		"2101cb9b6a511aaeaddbbe09cf70f881ec568d574a2ffd4dabe5ee9820adaa47" +
			"8e56fd8f4ba5d09ffa1c6d927c40f4c337304049e8a952fbcbf45c6fa77a41a4"},
}

// SelftestOptions bundle the options of the selftest command.
type SelftestOptions struct {
	All     bool
	Workers int
}

func newSelftestCommand(gopts *GlobalOptions) *cobra.Command {
	var opts SelftestOptions
	cmd := &cobra.Command{
		Use:   "selftest [flags]",
		Short: "Check the implementation against the RFC 7914 test vectors",
		Long: `
The "selftest" command derives the RFC 7914 test vectors and compares the
results. Vectors needing more than 64 MiB of scratch memory are skipped
unless --all is given.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelftest(opts, gopts)
		},
	}
	f := cmd.Flags()
	f.BoolVar(&opts.All, "all", false, "also run the 1 GiB vector")
	f.IntVar(&opts.Workers, "workers", 1, "number of ROMix passes run concurrently")
	return cmd
}

const selftestMemoryLimit = 64 << 20

func runSelftest(opts SelftestOptions, gopts *GlobalOptions) error {
	c := &scrypt.Config{Workers: opts.Workers}
	failed := 0
	for _, ka := range knownAnswers {
		p := ka.params
		if !opts.All && p.ScratchSize() > selftestMemoryLimit {
			gopts.Verbosef("skip  N=%d r=%d p=%d (%s scratch)\n", p.N, p.R, p.P, humanize.IBytes(uint64(p.ScratchSize())))
			continue
		}

		want, err := hex.DecodeString(ka.key)
		if err != nil {
			return errors.Wrap(err, "DecodeString")
		}
		got := make([]byte, len(want))
		start := time.Now()
		if err := c.Derive([]byte(ka.password), []byte(ka.salt), p, got); err != nil {
			return errors.Wrapf(err, "N=%d r=%d p=%d", p.N, p.R, p.P)
		}
		log.Debugf("N=%d r=%d p=%d took %v", p.N, p.R, p.P, time.Since(start))

		if !bytes.Equal(want, got) {
			failed++
			gopts.Printf("FAIL  N=%d r=%d p=%d: got %x\n", p.N, p.R, p.P, got)
			continue
		}
		gopts.Verbosef("ok    N=%d r=%d p=%d\n", p.N, p.R, p.P)
	}
	if failed > 0 {
		return errors.Errorf("%d of %d vectors failed", failed, len(knownAnswers))
	}
	return nil
}
