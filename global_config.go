package scanadc

import (
	"log"
	"os"
	"time"
)

// Portnumbers holds all TCP port numbers used by the scanadc daemon.
type Portnumbers struct {
	RPC      int
	Readings int
}

// Ports globally holds all TCP port numbers used by the scanadc daemon.
var Ports Portnumbers

func setPortnumbers(base int) {
	Ports.RPC = base
	Ports.Readings = base + 1
}

// BuildInfo contains compile-time information about the build.
type BuildInfo struct {
	Version string
	Githash string
	Date    string
}

// Build is a global holding compile-time information about the build.
var Build = BuildInfo{
	Version: "0.1.0",
	Githash: "no git hash computed",
	Date:    "no build date computed",
}

// StartTime is a global holding the time init() was run.
var StartTime time.Time

// ProblemLogger logs warning messages; the daemon routes it to a rotating
// file.
var ProblemLogger *log.Logger

// UpdateLogger logs normal activity; the daemon routes it to a rotating
// file.
var UpdateLogger *log.Logger

func init() {
	setPortnumbers(5650)
	StartTime = time.Now()

	// The daemon overrides these, but initialize with sensible values.
	ProblemLogger = log.New(os.Stderr, "", log.LstdFlags)
	UpdateLogger = log.New(os.Stdout, "", log.LstdFlags)
}
