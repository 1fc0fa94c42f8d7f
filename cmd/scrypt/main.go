// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scrypt derives keys from passwords with the scrypt key derivation
// function.
package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/walletcore/crypto/scrypt"
)

// Exit codes. An invalid argument keeps its own status so scripts can tell
// bad parameters apart from I/O failures.
const (
	exitOK              = 0
	exitError           = 1
	exitInvalidArgument = 2
)

// errInvalidFlags marks command line combinations that are rejected before
// scrypt runs; it is reported with the invalid argument status.
var errInvalidFlags = errors.New("invalid flags")

func newRootCommand(gopts *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrypt",
		Short: "Derive keys from passwords with scrypt",
		Long: `
scrypt derives keys from passwords with the memory-hard scrypt key
derivation function (RFC 7914).
`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		DisableAutoGenTag: true,

		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			gopts.parseEnvironment()
			return setupLogging(gopts.stderr, gopts.DebugLevel)
		},
	}
	gopts.addFlags(cmd)

	cmd.AddCommand(
		newDeriveCommand(gopts),
		newParamsCommand(gopts),
		newSelftestCommand(gopts),
	)
	return cmd
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, scrypt.ErrInvalidArgument), errors.Is(err, errInvalidFlags):
		return exitInvalidArgument
	default:
		return exitError
	}
}

func main() {
	gopts := newGlobalOptions()
	err := newRootCommand(gopts).Execute()
	if err != nil {
		gopts.Warnf("%v\n", err)
	}
	os.Exit(exitCode(err))
}
