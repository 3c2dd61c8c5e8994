package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"path/filepath"

	"github.com/google/uuid"

	"hwtests/internal/debug"
	"hwtests/internal/gpu/softgpu"
	"hwtests/internal/graphics"
	"hwtests/internal/input"
	"hwtests/internal/ledger"
	"hwtests/internal/model"
	"hwtests/internal/report"
	"hwtests/internal/scenario"
)

// Application wires the device, the programs and the observer connection
// for one run.
type Application struct {
	config *Config
	runID  uuid.UUID
	log    *log.Logger

	gpu      *softgpu.GPU
	viewer   graphics.Viewer
	tracer   *debug.PipelineTracer
	dumper   *debug.FrameDumper
	pad      *input.Pad
	abort    input.AbortSource
	programs []scenario.Program

	reportOpts []report.Option
}

// HarnessError represents application-specific errors
type HarnessError struct {
	Component string
	Operation string
	Err       error
}

func (e *HarnessError) Error() string {
	return fmt.Sprintf("harness %s error during %s: %v", e.Component, e.Operation, e.Err)
}

func (e *HarnessError) Unwrap() error {
	return e.Err
}

// Option configures an Application.
type Option func(*Application)

// WithPad lets Home on pad abort the run and receives Home presses from
// the viewer window.
func WithPad(p *input.Pad) Option {
	return func(a *Application) { a.pad = p }
}

// WithAbort adds an abort source, e.g. a signal context.
func WithAbort(src input.AbortSource) Option {
	return func(a *Application) { a.abort = src }
}

// WithReportOptions passes options to the observer connection.
func WithReportOptions(opts ...report.Option) Option {
	return func(a *Application) { a.reportOpts = append(a.reportOpts, opts...) }
}

// NewApplication builds every component except the observer connection,
// which Run opens.
func NewApplication(cfg *Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, &HarnessError{Component: "config", Operation: "validation", Err: err}
	}

	app := &Application{
		config: cfg,
		runID:  uuid.New(),
		log:    log.New(io.Discard, "", log.LstdFlags),
	}
	for _, o := range opts {
		o(app)
	}
	if cfg.Debug.Verbose {
		app.log = log.New(log.Writer(), "", log.LstdFlags)
	}

	if err := app.initializeComponents(); err != nil {
		return nil, &HarnessError{Component: "initialization", Operation: "component setup", Err: err}
	}
	return app, nil
}

func (app *Application) initializeComponents() error {
	cfg := app.config

	fault, err := softgpu.ParseFault(cfg.Device.Fault)
	if err != nil {
		return err
	}
	gpuOpts := []softgpu.Option{softgpu.WithFault(fault)}
	if cfg.Debug.Verbose {
		gpuOpts = append(gpuOpts, softgpu.WithLogger(log.New(log.Writer(), "[SOFTGPU] ", log.LstdFlags)))
	}
	app.gpu = softgpu.New(gpuOpts...)

	app.viewer, err = graphics.NewViewer(graphics.ViewerType(cfg.Viewer.Kind), graphics.Config{
		WindowTitle:  "hwtests " + app.runID.String(),
		WindowWidth:  cfg.Viewer.Width,
		WindowHeight: cfg.Viewer.Height,
		DumpDir:      cfg.Viewer.DumpDir,
		Pad:          app.pad,
		Debug:        cfg.Debug.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create viewer: %w", err)
	}

	runDir := filepath.Join(cfg.Debug.TraceDir, app.runID.String())
	app.tracer = debug.NewPipelineTracer(runDir, cfg.Debug.MaxTraces)
	if cfg.Debug.TraceDir != "" {
		app.tracer.Enable()
	}
	app.dumper = debug.NewFrameDumper(runDir)
	if cfg.Debug.DumpFrames && cfg.Debug.TraceDir != "" {
		app.dumper.Enable()
	}

	app.programs, err = BuildPrograms(cfg.Sweep)
	return err
}

// BuildPrograms creates the configured programs in order.
func BuildPrograms(sc SweepConfig) ([]scenario.Program, error) {
	values := steppedValues(sc.ValueStep)
	gammas := []model.Gamma{model.Gamma1_0}
	if sc.AllGammas {
		gammas = model.Gammas
	}
	formats := scenario.ReliableFormats()
	if sc.LowConfidenceFormats {
		formats = model.PixelFormats
	}

	var out []scenario.Program
	for _, name := range sc.Programs {
		switch name {
		case "copyfilter":
			out = append(out, &scenario.CopyFilterProgram{Values: values, MaxFilterSum: sc.MaxFilterSum, Gammas: gammas})
		case "intensity":
			out = append(out, &scenario.IntensityProgram{Blues: values, Conversions: scenario.Conversions()})
		case "pixelformat":
			out = append(out, &scenario.PixelFormatProgram{Formats: formats, Values: values})
		case "fifo":
			out = append(out, scenario.ClearProgram{})
		default:
			return nil, fmt.Errorf("unknown program %q", name)
		}
	}
	return out, nil
}

// steppedValues returns 0, step, 2*step, ... and always ends with 255.
func steppedValues(step int) []uint8 {
	if step <= 1 {
		return scenario.AllValues()
	}
	var out []uint8
	for v := 0; v < 255; v += step {
		out = append(out, uint8(v))
	}
	return append(out, 255)
}

// RunID identifies this run in logs and trace directories.
func (app *Application) RunID() uuid.UUID {
	return app.runID
}

// Viewer returns the EFB viewer. A graphics.Runner must be run on the main
// goroutine while Run executes elsewhere.
func (app *Application) Viewer() graphics.Viewer {
	return app.viewer
}

// Programs returns the programs Run executes.
func (app *Application) Programs() []scenario.Program {
	return app.programs
}

// Device returns the software device.
func (app *Application) Device() *softgpu.GPU {
	return app.gpu
}

// Run listens for the observer and runs every program once it connects.
func (app *Application) Run(ctx context.Context) (ledger.Totals, error) {
	ln, err := net.Listen("tcp", app.config.Network.Listen)
	if err != nil {
		return ledger.Totals{}, &HarnessError{Component: "network", Operation: "listen", Err: err}
	}
	return app.Serve(ctx, ln)
}

// Serve waits for the observer on ln and runs the programs. ln is closed
// when Serve returns.
func (app *Application) Serve(ctx context.Context, ln net.Listener) (ledger.Totals, error) {
	app.log.Printf("[APP] run %s waiting for observer on %s", app.runID, ln.Addr())
	rep, err := report.Serve(ctx, ln, app.reportOpts...)
	if err != nil {
		ln.Close()
		return ledger.Totals{}, &HarnessError{Component: "network", Operation: "accept", Err: err}
	}
	defer rep.Close()

	abort := input.Any(input.ContextAbort(ctx), app.abort)
	if app.pad != nil {
		abort = input.Any(abort, input.PadAbort(app.pad))
	}

	driver := scenario.NewDriver(app.gpu.Device(), ledger.New(rep),
		scenario.WithAbort(abort),
		scenario.WithTracer(app.tracer),
		scenario.WithDisplay(&frameSink{viewer: app.viewer, dumper: app.dumper, log: app.log}),
		scenario.WithLogger(app.log),
	)

	totals, runErr := driver.Run(app.programs...)
	app.log.Printf("[APP] run %s finished: %d/%d tests passed", app.runID, totals.TestsPassed, totals.Tests)

	if err := app.writeTraces(); err != nil {
		app.log.Printf("[APP_ERROR] %v", err)
	}
	if runErr != nil && !errors.Is(runErr, scenario.ErrAborted) {
		return totals, &HarnessError{Component: "scenario", Operation: "run", Err: runErr}
	}
	return totals, runErr
}

func (app *Application) writeTraces() error {
	if !app.tracer.Enabled() || len(app.tracer.Traces()) == 0 {
		return nil
	}
	path, err := app.tracer.Dump("mismatches.txt")
	if err != nil {
		return &HarnessError{Component: "debug", Operation: "trace dump", Err: err}
	}
	app.log.Printf("[APP] %d mismatches traced to %s", len(app.tracer.Traces()), path)
	return nil
}

// Tracer returns the mismatch tracer.
func (app *Application) Tracer() *debug.PipelineTracer {
	return app.tracer
}

// Cleanup releases the viewer.
func (app *Application) Cleanup() error {
	if app.viewer != nil {
		if err := app.viewer.Close(); err != nil {
			return &HarnessError{Component: "viewer", Operation: "close", Err: err}
		}
	}
	return nil
}

// frameSink sends readback frames to the viewer and the frame dumper.
type frameSink struct {
	viewer graphics.Viewer
	dumper *debug.FrameDumper
	log    *log.Logger
	count  int
}

func (s *frameSink) Show(f graphics.Frame) error {
	s.count++
	if path, err := s.dumper.DumpBuffer(fmt.Sprintf("frame_%04d", s.count), f.Width, f.Height, f.Pixels); err != nil {
		s.log.Printf("[APP_ERROR] frame dump: %v", err)
	} else if path != "" {
		s.log.Printf("[APP] dumped %q to %s", f.Caption, path)
	}
	return s.viewer.Show(f)
}
