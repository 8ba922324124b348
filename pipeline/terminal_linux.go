// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// +build linux

package pipeline

import (
	"os"

	"golang.org/x/sys/unix"
)

// StdinIsTerminal reports whether stdin is an interactive terminal.
func StdinIsTerminal() bool {
	_, err := unix.IoctlGetTermios(int(os.Stdin.Fd()), unix.TCGETS)
	return err == nil
}
