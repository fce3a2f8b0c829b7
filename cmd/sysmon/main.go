// Package main provides the entry point for sysmon, the system monitor that
// streams memory usage and answers disk and temperature queries.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
