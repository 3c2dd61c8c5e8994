// Package ledger counts tests and subtests and forwards failures to the
// observer.
//
// A Ledger is owned by the loop that runs the test programs. Exactly one
// test is open at a time; Begin, Check and End must be called in order and
// misuse panics.
package ledger

import (
	"fmt"
	"path/filepath"
	"runtime"

	"hwtests/internal/report"
)

// Sink receives the records the ledger produces.
type Sink interface {
	Emit(rec report.Record)
}

// Location is a source position used in failure messages.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Caller returns the location skip frames above the function calling it,
// with the file shortened to its last directory and name.
func Caller(skip int) Location {
	_, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return Location{File: "???", Line: 0}
	}
	return Location{File: filepath.ToSlash(filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))), Line: line}
}

// Entry is the running tally of one test.
type Entry struct {
	Location Location
	Test     int
	Subtests int64
	Passes   int64
	Failures int64
}

// Totals are the process-wide counters.
type Totals struct {
	Tests          int
	TestsPassed    int
	Subtests       int64
	SubtestsPassed int64
}

// Ledger tracks the current test and the totals of the run.
type Ledger struct {
	sink   Sink
	cur    Entry
	open   bool
	totals Totals
}

// New returns an empty ledger reporting to sink.
func New(sink Sink) *Ledger {
	return &Ledger{sink: sink}
}

// Begin opens a new test at the caller's location.
func (l *Ledger) Begin() {
	l.BeginAt(Caller(1))
}

// BeginAt opens a new test at loc.
func (l *Ledger) BeginAt(loc Location) {
	if l.open {
		panic(fmt.Sprintf("ledger: test started at %v while test %d from %v is still open", loc, l.cur.Test, l.cur.Location))
	}
	l.totals.Tests++
	l.cur = Entry{Location: loc, Test: l.totals.Tests}
	l.open = true
}

// Check records one subtest at the caller's location. The message is only
// formatted when cond is false.
func (l *Ledger) Check(cond bool, format string, args ...any) bool {
	return l.CheckAt(Caller(1), cond, format, args...)
}

// CheckAt records one subtest attributed to loc.
func (l *Ledger) CheckAt(loc Location, cond bool, format string, args ...any) bool {
	if !l.open {
		panic(fmt.Sprintf("ledger: check at %v outside of a test", loc))
	}
	l.cur.Subtests++
	if cond {
		l.cur.Passes++
		return true
	}
	l.cur.Failures++
	l.sink.Emit(report.Failure{
		Subtest: l.cur.Subtests,
		File:    loc.File,
		Line:    loc.Line,
		Message: fmt.Sprintf(format, args...),
	})
	return false
}

// End closes the current test, reports its result and adds it to the
// totals.
func (l *Ledger) End() Entry {
	if !l.open {
		panic("ledger: End without a matching Begin")
	}
	e := l.cur
	if e.Failures == 0 {
		l.totals.TestsPassed++
	}
	l.totals.Subtests += e.Subtests
	l.totals.SubtestsPassed += e.Passes
	l.open = false

	l.sink.Emit(report.TestResult{Test: e.Test, Subtests: e.Subtests, Failures: e.Failures})
	return e
}

// Report sends the run summary. Counters are not reset.
func (l *Ledger) Report() Totals {
	t := l.totals
	l.sink.Emit(report.Summary{
		TestsPassed:    t.TestsPassed,
		Tests:          t.Tests,
		SubtestsPassed: t.SubtestsPassed,
		Subtests:       t.Subtests,
	})
	return t
}

// Note sends free text to the observer.
func (l *Ledger) Note(text string) {
	l.sink.Emit(report.Note{Text: text})
}

// Open reports whether a test is in progress.
func (l *Ledger) Open() bool {
	return l.open
}

// Current returns the in-progress entry. Only meaningful while Open.
func (l *Ledger) Current() Entry {
	return l.cur
}

// Totals returns the counters of all finished tests.
func (l *Ledger) Totals() Totals {
	return l.totals
}
