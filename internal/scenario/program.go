package scenario

import (
	"errors"
	"fmt"

	"hwtests/internal/ledger"
)

// ShutdownNote is sent after the summary.
const ShutdownNote = "Shutting down..."

// Program is one test program. It opens and closes its own tests on the
// driver's ledger.
type Program interface {
	Name() string
	Run(d *Driver) error
}

// Run executes programs in order, then reports the summary and the
// shutdown note. An abort stops the remaining programs; the summary is sent
// anyway. Any other program error is returned after reporting.
func (d *Driver) Run(programs ...Program) (ledger.Totals, error) {
	var runErr error
	for _, p := range programs {
		d.program = p.Name()
		d.log.Printf("[DRIVER] running %s", d.program)
		err := p.Run(d)
		if d.ledger.Open() {
			d.End()
		}
		if err != nil {
			if !errors.Is(err, ErrAborted) {
				err = fmt.Errorf("program %s: %w", p.Name(), err)
			}
			runErr = err
			break
		}
	}
	d.program = ""
	totals := d.ledger.Report()
	d.ledger.Note(ShutdownNote)
	return totals, runErr
}
