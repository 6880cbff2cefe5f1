package main

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"ffaa/cmd"
	applog "ffaa/internal/log"
	"ffaa/pkg/build"
)

func main() {
	if err := build.Initialize(); err != nil {
		applog.Debugf("Build: %v, using development build info", err)
	}

	// Limit OS threads to optimize for real-time audio processing:
	// - One thread dedicated to the audio callback (time-critical)
	// - One thread for UI and I/O operations
	runtime.GOMAXPROCS(2)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:], os.Stdout); err != nil {
		stop()
		applog.Fatalf("%v", err)
	}
}
