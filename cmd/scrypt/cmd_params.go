// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/walletcore/crypto/scrypt"
)

// addParamFlags registers the cost parameter flags on f.
func addParamFlags(f *pflag.FlagSet, p *scrypt.Params, workers *int) {
	f.IntVarP(&p.N, "cost", "N", 16384, "CPU/memory cost `N`, a power of two greater than 1")
	f.IntVarP(&p.R, "block-size", "r", 8, "block size `r`")
	f.IntVarP(&p.P, "parallelism", "p", 1, "parallelism `p`")
	f.IntVar(workers, "workers", 1, "number of ROMix passes run concurrently (each uses 128*r*N bytes)")
}

// ParamsOptions bundle the options of the params command.
type ParamsOptions struct {
	Params  scrypt.Params
	Workers int
}

func newParamsCommand(gopts *GlobalOptions) *cobra.Command {
	var opts ParamsOptions
	cmd := &cobra.Command{
		Use:   "params [flags]",
		Short: "Validate cost parameters and show their memory cost",
		Long: `
The "params" command checks N, r and p the way "derive" would and prints the
size of one scratch table and the peak memory a derivation needs.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParams(opts, gopts)
		},
	}
	addParamFlags(cmd.Flags(), &opts.Params, &opts.Workers)
	return cmd
}

func runParams(opts ParamsOptions, gopts *GlobalOptions) error {
	p := opts.Params
	total, err := p.MemoryUsage(opts.Workers)
	if err != nil {
		return errors.Wrap(err, "params")
	}

	gopts.Printf("N=%d r=%d p=%d\n", p.N, p.R, p.P)
	gopts.Printf("scratch table: %s\n", humanize.IBytes(uint64(p.ScratchSize())))
	gopts.Printf("peak memory:   %s\n", humanize.IBytes(total))
	return nil
}
