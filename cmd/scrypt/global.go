// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// GlobalOptions hold the options shared by all commands.
type GlobalOptions struct {
	DebugLevel string
	Quiet      bool

	password    string
	passwordSet bool
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
}

func newGlobalOptions() *GlobalOptions {
	return &GlobalOptions{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func (opts *GlobalOptions) addFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&opts.DebugLevel, "debuglevel", "info", "logging level: trace, debug, info, warn, error, critical or off")
	f.BoolVarP(&opts.Quiet, "quiet", "q", false, "only print the derived key")
}

// parseEnvironment picks up settings that may come from the environment.
func (opts *GlobalOptions) parseEnvironment() {
	// An empty $SCRYPT_PASSWORD selects the empty password.
	if pw, ok := os.LookupEnv("SCRYPT_PASSWORD"); ok {
		opts.password, opts.passwordSet = pw, true
	}
}

// Printf writes the message to the configured stdout stream.
func (opts *GlobalOptions) Printf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(opts.stdout, format, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to write to stdout: %v\n", err)
	}
}

// Verbosef calls Printf unless the quiet flag is set.
func (opts *GlobalOptions) Verbosef(format string, args ...interface{}) {
	if opts.Quiet {
		return
	}
	opts.Printf(format, args...)
}

// Warnf writes the message to the configured stderr stream.
func (opts *GlobalOptions) Warnf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(opts.stderr, format, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to write to stderr: %v\n", err)
	}
}

// stdinTerminal returns the file descriptor of stdin if it is a terminal.
func (opts *GlobalOptions) stdinTerminal() (int, bool) {
	f, ok := opts.stdin.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// readPassword reads the first line of in. The trailing newline, if any,
// is not part of the password.
func readPassword(in io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "read password")
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

// readPasswordTerminal prompts on stderr and reads a password from the
// terminal without echo.
func (opts *GlobalOptions) readPasswordTerminal(fd int, prompt string) ([]byte, error) {
	fmt.Fprint(opts.stderr, prompt)
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(opts.stderr)
	if err != nil {
		return nil, errors.Wrap(err, "ReadPassword")
	}
	return pw, nil
}

// ReadPassword returns the password from, in order of preference, the
// environment, the password file, an interactive prompt, or stdin.
func (opts *GlobalOptions) ReadPassword(passwordFile string) ([]byte, error) {
	if opts.passwordSet {
		return []byte(opts.password), nil
	}

	if passwordFile != "" {
		f, err := os.Open(passwordFile)
		if err != nil {
			return nil, errors.Wrapf(err, "open password file %v", passwordFile)
		}
		defer f.Close()
		return readPassword(f)
	}

	if fd, ok := opts.stdinTerminal(); ok {
		return opts.readPasswordTerminal(fd, "enter password: ")
	}
	return readPassword(opts.stdin)
}
