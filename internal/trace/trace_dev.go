//go:build dev

// Package trace records runtime/trace regions in development builds.
//
// Usage:
//
//	ADDRSEARCH_TRACE=trace.out addrsearch query 123 Main
//	go tool trace trace.out
package trace

import (
	"context"
	"fmt"
	"os"
	"runtime/trace"
	"sync"
)

var (
	traceFile   *os.File
	traceMu     sync.Mutex
	traceActive bool
)

// Init starts tracing when ADDRSEARCH_TRACE names an output file.
// The returned function stops it and must be deferred.
func Init() func() {
	tracePath := os.Getenv("ADDRSEARCH_TRACE")
	if tracePath == "" {
		return func() {}
	}

	traceMu.Lock()
	defer traceMu.Unlock()

	var err error
	traceFile, err = os.Create(tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "addrsearch: failed to create trace file %s: %v\n", tracePath, err)
		return func() {}
	}

	if err := trace.Start(traceFile); err != nil {
		fmt.Fprintf(os.Stderr, "addrsearch: failed to start trace: %v\n", err)
		traceFile.Close()
		traceFile = nil
		return func() {}
	}

	traceActive = true
	fmt.Fprintf(os.Stderr, "addrsearch: tracing to %s\n", tracePath)

	return func() {
		traceMu.Lock()
		defer traceMu.Unlock()

		if traceActive {
			trace.Stop()
			traceActive = false
		}
		if traceFile != nil {
			traceFile.Close()
			traceFile = nil
		}
	}
}

// Region starts a trace region and returns the function that ends it.
func Region(ctx context.Context, regionType string) func() {
	if !traceActive {
		return func() {}
	}
	return trace.StartRegion(ctx, regionType).End
}

// Log attaches a message to the trace.
func Log(ctx context.Context, category, message string) {
	if traceActive {
		trace.Log(ctx, category, message)
	}
}

// IsEnabled reports whether a trace is being recorded.
func IsEnabled() bool {
	return traceActive
}
