// Package debug provides mismatch tracing and readback dumping for the
// copy pipeline.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"hwtests/internal/model"
)

// Diagnosis names the pipeline stage a mismatching readback matches, which
// usually points at the step the hardware did differently.
type Diagnosis string

const (
	DiagnosisNone          Diagnosis = "unexplained"
	DiagnosisFilterSkipped Diagnosis = "filter_skipped"       // readback equals the stored input
	DiagnosisGammaSkipped  Diagnosis = "gamma_skipped"        // readback equals the filter output
	DiagnosisNoConversion  Diagnosis = "intensity_skipped"    // RGB where Y/U/V was predicted
	DiagnosisUnexpectedYUV Diagnosis = "intensity_unexpected" // Y/U/V where RGB was predicted
	DiagnosisUnreduced     Diagnosis = "format_unreduced"     // input survived at 8 bits
	DiagnosisAlpha         Diagnosis = "alpha_only"           // only alpha differs
	DiagnosisOffByOne      Diagnosis = "off_by_one"           // every channel within one step
)

// Mismatch is one failed prediction with the stage-by-stage model values.
type Mismatch struct {
	Timestamp time.Time
	Program   string
	Test      int
	X, Y      int
	Point     string
	Context   model.Context
	Stages    model.Stages
	Got       model.Sample
}

// Expected is the predicted readback.
func (m Mismatch) Expected() model.Sample {
	return m.Stages.Output
}

// Diagnose classifies the mismatch.
func (m Mismatch) Diagnose() Diagnosis {
	st := m.Stages
	got := m.Got
	switch {
	case got == st.Output:
		return DiagnosisNone
	case sameColor(got, st.Output):
		return DiagnosisAlpha
	case st.Intensity && sameColor(got, st.Corrected):
		return DiagnosisNoConversion
	case !st.Intensity && sameColor(got, model.ToIntensity(st.Corrected)):
		return DiagnosisUnexpectedYUV
	case sameColor(got, st.Filtered) && st.Filtered != st.Corrected:
		return DiagnosisGammaSkipped
	case sameColor(got, st.Stored[1]) && st.Stored[1] != st.Filtered:
		return DiagnosisFilterSkipped
	case sameColor(got, st.Input[1]) && st.Input[1] != st.Stored[1]:
		return DiagnosisUnreduced
	case withinOne(got, st.Output):
		return DiagnosisOffByOne
	}
	return DiagnosisNone
}

func sameColor(a, b model.Sample) bool {
	return a.R == b.R && a.G == b.G && a.B == b.B
}

func withinOne(a, b model.Sample) bool {
	for i := 0; i < model.NumChannels; i++ {
		d := int(a.Channel(i)) - int(b.Channel(i))
		if d < -1 || d > 1 {
			return false
		}
	}
	return true
}

// PipelineTracer keeps the first mismatches of a run. Later ones are only
// counted.
type PipelineTracer struct {
	mu        sync.Mutex
	enabled   bool
	maxTraces int
	traces    []Mismatch
	dropped   int
	outputDir string
}

// NewPipelineTracer creates a disabled tracer writing into outputDir.
func NewPipelineTracer(outputDir string, maxTraces int) *PipelineTracer {
	if maxTraces <= 0 {
		maxTraces = 1000
	}
	return &PipelineTracer{
		maxTraces: maxTraces,
		traces:    make([]Mismatch, 0),
		outputDir: outputDir,
	}
}

// Enable activates tracing.
func (pt *PipelineTracer) Enable() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.enabled = true
}

// Disable deactivates tracing.
func (pt *PipelineTracer) Disable() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.enabled = false
}

// Enabled reports whether Record keeps anything.
func (pt *PipelineTracer) Enabled() bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.enabled
}

// Record stores m.
func (pt *PipelineTracer) Record(m Mismatch) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if !pt.enabled {
		return
	}
	if len(pt.traces) >= pt.maxTraces {
		pt.dropped++
		return
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	pt.traces = append(pt.traces, m)
}

// Traces returns the kept mismatches.
func (pt *PipelineTracer) Traces() []Mismatch {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return append([]Mismatch(nil), pt.traces...)
}

// Dropped is the number of mismatches past the limit.
func (pt *PipelineTracer) Dropped() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return pt.dropped
}

// Clear forgets everything recorded.
func (pt *PipelineTracer) Clear() {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.traces = pt.traces[:0]
	pt.dropped = 0
}

// MismatchAnalysis groups kept mismatches.
type MismatchAnalysis struct {
	Total       int
	Dropped     int
	ByDiagnosis map[Diagnosis]int
	ByProgram   map[string]int
	Samples     []Mismatch
}

// Analyze classifies the kept mismatches. It returns nil when there are
// none.
func (pt *PipelineTracer) Analyze() *MismatchAnalysis {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	if len(pt.traces) == 0 {
		return nil
	}
	a := &MismatchAnalysis{
		Total:       len(pt.traces),
		Dropped:     pt.dropped,
		ByDiagnosis: make(map[Diagnosis]int),
		ByProgram:   make(map[string]int),
	}
	for _, m := range pt.traces {
		a.ByDiagnosis[m.Diagnose()]++
		a.ByProgram[m.Program]++
		if len(a.Samples) < 10 {
			a.Samples = append(a.Samples, m)
		}
	}
	return a
}

// WriteTo writes the trace log.
func (pt *PipelineTracer) WriteTo(w io.Writer) (int64, error) {
	traces := pt.Traces()
	cw := &countingWriter{w: w}

	fmt.Fprintf(cw, "Copy Pipeline Mismatch Log\n")
	fmt.Fprintf(cw, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(cw, "Mismatches: %d kept, %d dropped\n\n", len(traces), pt.Dropped())

	if a := pt.Analyze(); a != nil {
		fmt.Fprintf(cw, "By diagnosis:\n")
		keys := make([]string, 0, len(a.ByDiagnosis))
		for d := range a.ByDiagnosis {
			keys = append(keys, string(d))
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(cw, "  %-22s %d\n", k, a.ByDiagnosis[Diagnosis(k)])
		}
		fmt.Fprintf(cw, "\n")
	}

	for _, m := range traces {
		st := m.Stages
		fmt.Fprintf(cw, "%s test %d (%d,%d) %s\n", m.Program, m.Test, m.X, m.Y, m.Point)
		fmt.Fprintf(cw, "  format %v filter %d/%d/%d gamma %v intensity %t\n",
			m.Context.Format, m.Context.Filter.Prev, m.Context.Filter.Cur, m.Context.Filter.Next, m.Context.Gamma, st.Intensity)
		fmt.Fprintf(cw, "  input     %v %v %v\n", st.Input[0], st.Input[1], st.Input[2])
		fmt.Fprintf(cw, "  stored    %v %v %v\n", st.Stored[0], st.Stored[1], st.Stored[2])
		fmt.Fprintf(cw, "  filtered  %v\n", st.Filtered)
		fmt.Fprintf(cw, "  gamma     %v\n", st.Corrected)
		fmt.Fprintf(cw, "  expected  %v\n", st.Output)
		fmt.Fprintf(cw, "  readback  %v  [%s]\n", m.Got, m.Diagnose())
		if cw.err != nil {
			break
		}
	}
	return cw.n, cw.err
}

// Dump writes the trace log to filename inside the output directory and
// returns its path.
func (pt *PipelineTracer) Dump(filename string) (string, error) {
	if err := os.MkdirAll(pt.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create trace directory: %w", err)
	}
	path := filepath.Join(pt.outputDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create trace file: %w", err)
	}
	if _, err := pt.WriteTo(f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write trace file: %w", err)
	}
	return path, f.Close()
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
