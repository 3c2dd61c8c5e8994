package report

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"log"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestTextFormatter(t *testing.T) {
	var f TextFormatter
	tests := []struct {
		rec  Record
		want string
	}{
		{Failure{Subtest: 3, File: "scenario/copyfilter.go", Line: 42, Message: "expected 5, was 6"},
			"Subtest 3 failed in scenario/copyfilter.go on line 42: expected 5, was 6\n"},
		{TestResult{Test: 1, Subtests: 256}, "Test 1 passed (256 subtests)\n"},
		{TestResult{Test: 2, Subtests: 256, Failures: 7}, "Test 2 failed (256 subtests, 7 failures)\n"},
		{Summary{TestsPassed: 1, Tests: 2, SubtestsPassed: 505, Subtests: 512},
			"1 tests passed out of 2; 505 subtests passed out of 512\n"},
		{Note{Text: "Shutting down..."}, "Shutting down...\n"},
		{Note{Text: "already terminated\n"}, "already terminated\n"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Format(tt.rec))
	}
}

func TestReporterMirrorsOutput(t *testing.T) {
	var wire, mirror bytes.Buffer
	r := New(&wire, WithMirror(log.New(&mirror, "", 0)))

	r.Printf("value %d\n", 7)
	r.Emit(TestResult{Test: 1, Subtests: 4})

	assert.Equal(t, "value 7\nTest 1 passed (4 subtests)\n", wire.String())
	assert.Equal(t, wire.String(), mirror.String())
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset by peer")
}

func TestReporterSendFailureIsFatal(t *testing.T) {
	var got error
	r := New(brokenWriter{}, WithMirror(nil), WithFatal(func(err error) { got = err }))

	r.Printf("anything\n")

	require.Error(t, got)
	assert.Contains(t, got.Error(), "reset")
}

type upperFormatter struct{}

func (upperFormatter) Format(rec Record) string {
	if n, ok := rec.(Note); ok {
		return "NOTE " + n.Text + "\n"
	}
	return TextFormatter{}.Format(rec)
}

func TestReporterCustomFormatter(t *testing.T) {
	var wire bytes.Buffer
	r := New(&wire, WithMirror(nil), WithFormatter(upperFormatter{}))

	r.Emit(Note{Text: "hi"})

	assert.Equal(t, "NOTE hi\n", wire.String())
}

func TestServeAcceptsOneObserver(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	type result struct {
		r   *Reporter
		err error
	}
	done := make(chan result, 1)
	go func() {
		r, err := Serve(context.Background(), ln, WithMirror(nil))
		done <- result{r, err}
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	res := <-done
	require.NoError(t, res.err)

	lines := bufio.NewScanner(conn)
	require.True(t, lines.Scan())
	assert.Equal(t, Greeting, lines.Text())

	res.r.Emit(Failure{Subtest: 1, File: "a.go", Line: 2, Message: "boom"})
	res.r.Emit(Summary{Tests: 1, Subtests: 1})
	require.NoError(t, res.r.Close())

	var got []string
	for lines.Scan() {
		got = append(got, lines.Text())
	}
	assert.Equal(t, []string{
		"Subtest 1 failed in a.go on line 2: boom",
		"0 tests passed out of 1; 0 subtests passed out of 1",
	}, got)

	// The listener went away with the reporter.
	_, err = net.DialTimeout("tcp", ln.Addr().String(), time.Second)
	assert.Error(t, err)
}

func TestServeAbortedByContext(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Serve(ctx, ln, WithMirror(nil))
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestListenBadAddress(t *testing.T) {
	_, err := Listen(context.Background(), "256.0.0.1:bogus", WithMirror(nil))
	assert.Error(t, err)
}

func TestRecorder(t *testing.T) {
	var rec Recorder
	rec.Emit(Failure{Subtest: 1})
	rec.Emit(TestResult{Test: 1, Subtests: 1, Failures: 1})

	assert.Len(t, rec.Failures(), 1)
	assert.Len(t, rec.Results(), 1)
	assert.Equal(t, "Test 1 failed (1 subtests, 1 failures)\n", rec.Lines()[1])
}
