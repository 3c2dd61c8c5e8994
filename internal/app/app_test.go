package app

import (
	"bufio"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"hwtests/internal/model"
	"hwtests/internal/report"
	"hwtests/internal/scenario"
)

func testConfig(t *testing.T, programs ...string) *Config {
	t.Helper()
	cfg := NewConfig()
	cfg.Network.Listen = "127.0.0.1:0"
	cfg.Sweep.Programs = programs
	cfg.Debug.TraceDir = t.TempDir()
	return cfg
}

func quietReporter(t *testing.T) Option {
	return WithReportOptions(
		report.WithMirror(nil),
		report.WithFatal(func(err error) { t.Errorf("observer write failed: %v", err) }),
	)
}

// observe connects to ln and collects every line until the harness hangs
// up.
func observe(t *testing.T, ln net.Listener) <-chan []string {
	t.Helper()
	out := make(chan []string, 1)
	go func() {
		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			t.Errorf("dial: %v", err)
			out <- nil
			return
		}
		defer conn.Close()
		var lines []string
		sc := bufio.NewScanner(conn)
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		out <- lines
	}()
	return out
}

func TestServe_StreamsResultsToObserver(t *testing.T) {
	defer goleak.VerifyNone(t)

	app, err := NewApplication(testConfig(t, "fifo"), quietReporter(t))
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	lines := observe(t, ln)
	totals, err := app.Serve(context.Background(), ln)
	require.NoError(t, err)
	got := <-lines

	assert.Equal(t, 1, totals.TestsPassed)
	require.Len(t, got, 4)
	assert.Equal(t, report.Greeting, got[0])
	assert.Equal(t, "Test 1 passed (6 subtests)", got[1])
	assert.Equal(t, "1 tests passed out of 1; 6 subtests passed out of 6", got[2])
	assert.Equal(t, scenario.ShutdownNote, got[3])
}

func TestServe_TracesFaultyDevice(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := testConfig(t, "copyfilter")
	cfg.Device.Fault = "saturating-filter"
	cfg.Sweep.MaxFilterSum = model.MaxFilterSum
	cfg.Sweep.ValueStep = 255
	app, err := NewApplication(cfg, quietReporter(t))
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	lines := observe(t, ln)
	totals, err := app.Serve(context.Background(), ln)
	require.NoError(t, err)
	got := <-lines

	assert.Equal(t, 2, totals.Tests)
	assert.Equal(t, 1, totals.TestsPassed)
	assert.Contains(t, got, "Test 1 passed (190 subtests)")

	path := filepath.Join(cfg.Debug.TraceDir, app.RunID().String(), "mismatches.txt")
	_, err = os.Stat(path)
	assert.NoError(t, err, "mismatch trace should be written")
	assert.NotEmpty(t, app.Tracer().Traces())
}

func TestServe_CancelledBeforeObserver(t *testing.T) {
	defer goleak.VerifyNone(t)

	app, err := NewApplication(testConfig(t, "fifo"), quietReporter(t))
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = app.Serve(ctx, ln)

	var he *HarnessError
	require.True(t, errors.As(err, &he), "got %v", err)
	assert.Equal(t, "network", he.Component)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewApplication_RejectsInvalidConfig(t *testing.T) {
	cfg := NewConfig()
	cfg.Device.Fault = "melted"
	_, err := NewApplication(cfg)

	var he *HarnessError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, "config", he.Component)
}

func TestBuildPrograms(t *testing.T) {
	progs, err := BuildPrograms(SweepConfig{
		Programs:     []string{"copyfilter", "intensity", "pixelformat", "fifo"},
		MaxFilterSum: 64,
		AllGammas:    true,
		ValueStep:    64,
	})
	require.NoError(t, err)
	require.Len(t, progs, 4)

	cf := progs[0].(*scenario.CopyFilterProgram)
	assert.Equal(t, []uint8{0, 64, 128, 192, 255}, cf.Values)
	assert.Equal(t, model.Gammas, cf.Gammas)
	assert.Equal(t, "intensity", progs[1].Name())
	assert.Equal(t, scenario.ReliableFormats(), progs[2].(*scenario.PixelFormatProgram).Formats)
	assert.Equal(t, "fifo", progs[3].Name())

	_, err = BuildPrograms(SweepConfig{Programs: []string{"tev"}})
	assert.Error(t, err)
}
