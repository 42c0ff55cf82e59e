package jotter

import _ "embed"

// Version is the release version of jotter.
//
//go:embed VERSION
var Version string
