//go:build !cgo_sqlite
// +build !cgo_sqlite

package tracker

// This file is compiled by default and uses a pure Go SQLite implementation,
// so no C compiler is needed and the binary cross-compiles cleanly.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
