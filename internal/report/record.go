// Package report streams harness results to the remote observer.
//
// Results travel as structured records up to this package and are turned
// into text only when written, so the wire format can change without
// touching the code that produces results.
package report

import "fmt"

// Record is one unit of output for the observer.
type Record interface {
	record()
}

// Failure is a single failed subtest.
type Failure struct {
	Subtest int64
	File    string
	Line    int
	Message string
}

// TestResult closes one test.
type TestResult struct {
	Test     int
	Subtests int64
	Failures int64
}

// Passed reports whether the test had no failing subtests.
func (r TestResult) Passed() bool {
	return r.Failures == 0
}

// Summary is the final tally of a run.
type Summary struct {
	TestsPassed    int
	Tests          int
	SubtestsPassed int64
	Subtests       int64
}

// Note is free text, e.g. progress or shutdown messages.
type Note struct {
	Text string
}

func (Failure) record()    {}
func (TestResult) record() {}
func (Summary) record()    {}
func (Note) record()       {}

// Formatter turns records into wire text.
type Formatter interface {
	Format(rec Record) string
}

// TextFormatter produces the newline-terminated human-readable lines the
// observer expects.
type TextFormatter struct{}

// Format implements Formatter.
func (TextFormatter) Format(rec Record) string {
	switch r := rec.(type) {
	case Failure:
		return fmt.Sprintf("Subtest %d failed in %s on line %d: %s\n", r.Subtest, r.File, r.Line, r.Message)
	case TestResult:
		if r.Passed() {
			return fmt.Sprintf("Test %d passed (%d subtests)\n", r.Test, r.Subtests)
		}
		return fmt.Sprintf("Test %d failed (%d subtests, %d failures)\n", r.Test, r.Subtests, r.Failures)
	case Summary:
		return fmt.Sprintf("%d tests passed out of %d; %d subtests passed out of %d\n",
			r.TestsPassed, r.Tests, r.SubtestsPassed, r.Subtests)
	case Note:
		return terminate(r.Text)
	}
	return fmt.Sprintf("%v\n", rec)
}

func terminate(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\n' {
		return s + "\n"
	}
	return s
}
