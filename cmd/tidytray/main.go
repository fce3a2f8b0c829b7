// Package main provides the entry point for the tidytray recycle bin tray
// manager.
package main

import (
	"os"
	"runtime"
)

func init() {
	// Tray toolkits on macOS and Windows must run on the thread that
	// started the process.
	runtime.LockOSThread()
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
