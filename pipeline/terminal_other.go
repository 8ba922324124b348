// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// +build !linux,!darwin,!freebsd,!netbsd,!openbsd

package pipeline

import "os"

// StdinIsTerminal reports whether stdin is a character device, which is
// the closest approximation available without termios.
func StdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
