// Package main provides zonedump, which prints the intervals of time zones
// over a range of time and resolves local times against them.
//
// Usage:
//
//	zonedump [flags] ZONE...
//
// Each ZONE is an IANA zone ID, such as "Europe/Berlin", or a POSIX TZ
// string, such as "EST5EDT,M3.2.0,M11.1.0". Settings not given as flags
// come from ZONEDUMP_* environment variables.
package main

import (
	"context"
	"os"
	"time"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Environ(), time.Now, os.Stdout, os.Stderr))
}
