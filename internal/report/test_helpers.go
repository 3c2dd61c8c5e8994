package report

// Recorder keeps every emitted record in memory. Useful as a sink in tests
// of code that reports through the ledger.
type Recorder struct {
	Records []Record
}

// Emit implements the ledger sink interface.
func (r *Recorder) Emit(rec Record) {
	r.Records = append(r.Records, rec)
}

// Failures returns only the failure records.
func (r *Recorder) Failures() []Failure {
	var out []Failure
	for _, rec := range r.Records {
		if f, ok := rec.(Failure); ok {
			out = append(out, f)
		}
	}
	return out
}

// Results returns only the per-test results.
func (r *Recorder) Results() []TestResult {
	var out []TestResult
	for _, rec := range r.Records {
		if tr, ok := rec.(TestResult); ok {
			out = append(out, tr)
		}
	}
	return out
}

// Lines renders the records with the text formatter.
func (r *Recorder) Lines() []string {
	var f TextFormatter
	out := make([]string, len(r.Records))
	for i, rec := range r.Records {
		out[i] = f.Format(rec)
	}
	return out
}
