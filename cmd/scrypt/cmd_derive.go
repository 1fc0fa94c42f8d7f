// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/walletcore/crypto/scrypt"
)

// DeriveOptions bundle the options of the derive command.
type DeriveOptions struct {
	Params       scrypt.Params
	Length       int
	Salt         string
	SaltHex      string
	PasswordFile string
	Workers      int
	LockMemory   bool
}

func newDeriveCommand(gopts *GlobalOptions) *cobra.Command {
	var opts DeriveOptions
	cmd := &cobra.Command{
		Use:   "derive [flags]",
		Short: "Derive a key from a password",
		Long: `
The "derive" command derives a key from a password and salt and prints it in
hex. The password is taken from $SCRYPT_PASSWORD if it is set (even to
the empty string), the file named by --password-file, an interactive
prompt, or the first line of stdin, in that order.

EXIT STATUS
===========

Exit status is 0 if the key was derived, 2 if an argument was invalid
and 1 for any other error.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDerive(opts, gopts)
		},
	}

	f := cmd.Flags()
	addParamFlags(f, &opts.Params, &opts.Workers)
	f.IntVarP(&opts.Length, "length", "l", 32, "key length in bytes, a multiple of 32")
	f.StringVar(&opts.Salt, "salt", "", "salt as a string")
	f.StringVar(&opts.SaltHex, "salt-hex", "", "salt in hex")
	f.StringVar(&opts.PasswordFile, "password-file", "", "read the password from `file`")
	f.BoolVar(&opts.LockMemory, "lock-memory", false, "keep scratch memory out of swap where supported")
	return cmd
}

func (opts DeriveOptions) salt() ([]byte, error) {
	if opts.Salt != "" && opts.SaltHex != "" {
		return nil, errors.Wrap(errInvalidFlags, "--salt and --salt-hex are mutually exclusive")
	}
	if opts.SaltHex == "" {
		return []byte(opts.Salt), nil
	}
	salt, err := hex.DecodeString(opts.SaltHex)
	if err != nil {
		return nil, errors.Wrapf(errInvalidFlags, "--salt-hex: %v", err)
	}
	return salt, nil
}

func runDerive(opts DeriveOptions, gopts *GlobalOptions) error {
	salt, err := opts.salt()
	if err != nil {
		return err
	}

	// Check the arguments before asking for a password.
	if opts.Length <= 0 || opts.Length%32 != 0 {
		return errors.Wrapf(scrypt.ErrInvalidArgument, "--length %d is not a positive multiple of 32", opts.Length)
	}
	mem, err := opts.Params.MemoryUsage(opts.Workers)
	if err != nil {
		return errors.Wrap(err, "derive")
	}

	password, err := gopts.ReadPassword(opts.PasswordFile)
	if err != nil {
		return err
	}
	defer clear(password)

	p := opts.Params
	log.Debugf("Deriving %d-byte key with N=%d r=%d p=%d, %d worker(s), peak memory %s",
		opts.Length, p.N, p.R, p.P, opts.Workers, humanize.IBytes(mem))

	out := make([]byte, opts.Length)
	c := &scrypt.Config{Workers: opts.Workers, LockMemory: opts.LockMemory}
	if err := c.Derive(password, salt, p, out); err != nil {
		return errors.Wrap(err, "derive")
	}
	defer clear(out)

	gopts.Printf("%s\n", hex.EncodeToString(out))
	return nil
}
