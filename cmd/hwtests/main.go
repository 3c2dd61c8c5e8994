// Package main implements the hwtests conformance harness executable.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"hwtests/internal/app"
	"hwtests/internal/graphics"
	"hwtests/internal/input"
	"hwtests/internal/ledger"
	"hwtests/internal/scenario"
	"hwtests/internal/version"
)

// Exit codes.
const (
	exitPassed   = 0
	exitFailures = 1
	exitError    = 2
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to configuration file")
		listen     = flag.String("listen", "", "Address the observer connects to (host:port)")
		programs   = flag.String("programs", "", "Comma-separated programs to run (copyfilter,intensity,pixelformat,fifo)")
		viewer     = flag.String("viewer", "", "EFB viewer: ebitengine, headless, terminal or none")
		fault      = flag.String("fault", "", "Software device fault: none, saturating-filter, float-intensity, ignore-gamma")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *help {
		printUsage()
		os.Exit(exitPassed)
	}
	if *showVer {
		version.WriteBuildInfo(os.Stdout)
		os.Exit(exitPassed)
	}

	configPath := *configFile
	if configPath == "" {
		configPath = app.GetDefaultConfigPath()
	}
	cfg := app.NewConfig()
	if err := cfg.LoadFromFile(configPath); err != nil {
		log.Printf("[APP_WARNING] Could not load config from %s, using defaults: %v", configPath, err)
		cfg = app.NewConfig()
	}

	// Flags override the file
	if *listen != "" {
		cfg.Network.Listen = *listen
	}
	if *programs != "" {
		cfg.Sweep.Programs = strings.Split(*programs, ",")
	}
	if *viewer != "" {
		cfg.Viewer.Kind = *viewer
	}
	if *fault != "" {
		cfg.Device.Fault = *fault
	}
	if *debug {
		cfg.Debug.Verbose = true
	}

	os.Exit(run(cfg))
}

func run(cfg *app.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pad := input.NewPad()
	pad.EnableDebug(cfg.Debug.Verbose)
	term := input.NewTerminal(pad, os.Stdin)
	if err := term.Start(); err != nil {
		log.Printf("[APP_WARNING] terminal abort key unavailable: %v", err)
	}
	defer term.Stop()
	log.SetOutput(term.Output(os.Stderr))
	defer log.SetOutput(os.Stderr)

	application, err := app.NewApplication(cfg, app.WithPad(pad))
	if err != nil {
		log.Printf("Failed to create application: %v", err)
		return exitError
	}
	defer func() {
		if err := application.Cleanup(); err != nil {
			log.Printf("Application cleanup error: %v", err)
		}
	}()

	log.Printf("hwtests %s run %s, press q or Home to abort", version.GetVersion(), application.RunID())

	var (
		totals ledger.Totals
		runErr error
	)
	if runner, ok := application.Viewer().(graphics.Runner); ok {
		// The window owns the main goroutine; closing it cancels the run.
		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			totals, runErr = application.Run(runCtx)
			runner.Close()
		}()
		if err := runner.Run(); err != nil {
			log.Printf("[APP_ERROR] viewer: %v", err)
		}
		cancel()
		<-done
	} else {
		totals, runErr = application.Run(ctx)
	}

	switch {
	case errors.Is(runErr, scenario.ErrAborted):
		log.Printf("Run aborted: %d/%d tests passed", totals.TestsPassed, totals.Tests)
	case runErr != nil:
		log.Printf("Run failed: %v", runErr)
		return exitError
	}
	if totals.TestsPassed != totals.Tests {
		return exitFailures
	}
	return exitPassed
}

func printUsage() {
	fmt.Println("hwtests - GPU pixel pipeline conformance harness")
	fmt.Println()
	fmt.Println("DESCRIPTION:")
	fmt.Println("  Drives EFB copies with raw register writes, predicts every pixel with a")
	fmt.Println("  software model and streams pass/fail results to one TCP observer.")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  hwtests [options]")
	fmt.Println()
	fmt.Println("OPTIONS:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  hwtests                                 # Run every program, wait on :16784")
	fmt.Println("  hwtests -programs fifo                  # FIFO smoke test only")
	fmt.Println("  hwtests -fault ignore-gamma -debug      # Show the harness catching a bad device")
	fmt.Println("  hwtests -viewer ebitengine              # Watch the readback buffers")
	fmt.Println()
	fmt.Println("OBSERVER:")
	fmt.Println("  nc <host> 16784")
	fmt.Println()
	fmt.Println("CONFIGURATION:")
	fmt.Println("  Config file: ./config/hwtests.json")
}
