// Command reactord runs a minimal HTTP/1.1 static-file server backed by
// an epoll reactor and a fixed-size worker pool. Grounded on the
// teacher's samples/mount_hello/mount.go: parse flags, construct (exit
// -1 on failure), then block, log.Fatalf if Run returns an error.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/nwidger/reactord"
)

var (
	fDocRoot     = flag.String("doc-root", "/home/wensong/webserver/resources", "Directory to serve static files from.")
	fWorkers     = flag.Int("workers", 8, "Number of worker pool goroutines.")
	fMaxRequests = flag.Int("max-requests", 10000, "Maximum number of requests queued for the worker pool.")
	fIdleTimeout = flag.Duration("idle-timeout", 0, "Close connections idle longer than this (0 disables the sweep).")
	fHardened    = flag.Bool("hardened", false, "Reject request targets that would traverse outside doc-root.")
	fDebug       = flag.Bool("debug", false, "Write per-event debug logging to stderr.")
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] port\n", os.Args[0])
		os.Exit(-1)
	}

	port, err := strconv.Atoi(flag.Arg(0))
	if err != nil {
		log.Fatalf("invalid port %q: %v", flag.Arg(0), err)
	}

	// SIGPIPE would otherwise terminate the process the first time a
	// client closes its read side while we are still writing to it.
	signal.Ignore(unix.SIGPIPE)

	srv, err := reactord.New(reactord.Config{
		Port:        port,
		DocRoot:     *fDocRoot,
		Workers:     *fWorkers,
		MaxRequests: *fMaxRequests,
		IdleTimeout: *fIdleTimeout,
		Hardened:    *fHardened,
		Verbose:     *fDebug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "reactord.New: %v\n", err)
		os.Exit(-1)
	}

	if err := srv.Run(); err != nil {
		log.Fatalf("Run: %v", err)
	}
}
