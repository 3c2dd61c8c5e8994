package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"hwtests/internal/report"
)

func TestPassingTest(t *testing.T) {
	var rec report.Recorder
	l := New(&rec)

	l.Begin()
	for i := 0; i < 5; i++ {
		l.Check(true, "never formatted %d", i)
	}
	e := l.End()

	assert.Equal(t, int64(5), e.Subtests)
	assert.Equal(t, int64(5), e.Passes)
	assert.Zero(t, e.Failures)
	require.Len(t, rec.Records, 1)
	assert.Equal(t, "Test 1 passed (5 subtests)\n", rec.Lines()[0])
}

func TestFailingTestForwardsEachFailure(t *testing.T) {
	var rec report.Recorder
	l := New(&rec)

	l.Begin()
	l.Check(true, "ok")
	l.Check(false, "expected %d, was %d", 4, 5)
	l.Check(true, "ok")
	l.Check(false, "second")
	e := l.End()

	assert.Equal(t, int64(2), e.Failures)
	failures := rec.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, int64(2), failures[0].Subtest)
	assert.Equal(t, "expected 4, was 5", failures[0].Message)
	assert.Equal(t, "ledger/ledger_test.go", failures[0].File)
	assert.Positive(t, failures[0].Line)
	assert.Equal(t, int64(4), failures[1].Subtest)

	lines := rec.Lines()
	assert.True(t, strings.HasPrefix(lines[0], "Subtest 2 failed in ledger/ledger_test.go on line "))
	assert.Equal(t, "Test 1 failed (4 subtests, 2 failures)\n", lines[len(lines)-1])
}

func TestReportAggregatesAcrossTests(t *testing.T) {
	var rec report.Recorder
	l := New(&rec)

	l.Begin()
	l.Check(true, "")
	l.Check(true, "")
	l.End()

	l.Begin()
	l.Check(false, "bad")
	l.Check(true, "")
	l.Check(true, "")
	l.End()

	totals := l.Report()
	assert.Equal(t, Totals{Tests: 2, TestsPassed: 1, Subtests: 5, SubtestsPassed: 4}, totals)
	assert.Equal(t, "1 tests passed out of 2; 4 subtests passed out of 5\n", rec.Lines()[len(rec.Records)-1])

	// Report does not reset.
	assert.Equal(t, totals, l.Report())
}

func TestTestNumbersIncrement(t *testing.T) {
	var rec report.Recorder
	l := New(&rec)
	for i := 1; i <= 3; i++ {
		l.Begin()
		assert.Equal(t, i, l.Current().Test)
		assert.True(t, l.Open())
		l.End()
		assert.False(t, l.Open())
	}
}

func TestMisuseFailsLoudly(t *testing.T) {
	l := New(&report.Recorder{})

	assert.Panics(t, func() { l.Check(true, "") }, "check outside a test")
	assert.Panics(t, func() { l.End() }, "end without begin")

	l.Begin()
	assert.Panics(t, func() { l.Begin() }, "nested begin")
}

func TestCheckAtUsesGivenLocation(t *testing.T) {
	var rec report.Recorder
	l := New(&rec)
	l.BeginAt(Location{File: "gxtest/intensity.go", Line: 1})
	l.CheckAt(Location{File: "gxtest/intensity.go", Line: 77}, false, "x")
	l.End()

	assert.Equal(t, "Subtest 1 failed in gxtest/intensity.go on line 77: x\n", rec.Lines()[0])
}

func TestInvariantPassesPlusFailures(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var rec report.Recorder
		l := New(&rec)
		var want Totals

		tests := rapid.IntRange(0, 8).Draw(t, "tests")
		for i := 0; i < tests; i++ {
			l.Begin()
			outcomes := rapid.SliceOf(rapid.Bool()).Draw(t, "outcomes")
			for _, ok := range outcomes {
				l.Check(ok, "subtest")
			}
			e := l.End()

			if e.Passes+e.Failures != e.Subtests {
				t.Fatalf("passes %d + failures %d != subtests %d", e.Passes, e.Failures, e.Subtests)
			}
			if int(e.Subtests) != len(outcomes) {
				t.Fatalf("subtests %d, want %d", e.Subtests, len(outcomes))
			}
			want.Tests++
			want.Subtests += e.Subtests
			want.SubtestsPassed += e.Passes
			if e.Failures == 0 {
				want.TestsPassed++
			}
			if int64(len(rec.Failures())) != want.Subtests-want.SubtestsPassed {
				t.Fatalf("forwarded %d failures, want %d", len(rec.Failures()), want.Subtests-want.SubtestsPassed)
			}
		}
		if got := l.Totals(); got != want {
			t.Fatalf("totals %+v, want %+v", got, want)
		}
	})
}

func TestNoteGoesStraightToSink(t *testing.T) {
	var rec report.Recorder
	l := New(&rec)

	l.Note("Shutting down...")

	require.Len(t, rec.Records, 1)
	assert.Equal(t, report.Note{Text: "Shutting down..."}, rec.Records[0])
	assert.False(t, l.Open())
}
