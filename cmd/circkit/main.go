// Copyright 2018 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
  circkit is a toolkit for circular DNA and RNA sequences such as plasmids,
  viroids and circular assembly contigs.  Run "circkit help" for the list of
  subcommands.
*/
package main

import (
	"github.com/grailbio/base/grail"
	"github.com/grailbio/circkit/cmd/circkit/cmd"
)

func main() {
	grail.Init()
	cmd.Run()
}
