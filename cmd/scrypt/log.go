// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io"

	"github.com/btcsuite/btclog"
	"github.com/pkg/errors"
)

// log is the logger of the command line tool. It is disabled until
// setupLogging runs.
var log = btclog.Disabled

// setupLogging directs log output to w at the named level.
func setupLogging(w io.Writer, level string) error {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return errors.Errorf("invalid debug level %q", level)
	}
	backend := btclog.NewBackend(w)
	log = backend.Logger("SCRY")
	log.SetLevel(lvl)
	return nil
}
