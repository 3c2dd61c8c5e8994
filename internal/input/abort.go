package input

import "context"

// AbortSource is polled between sweep iterations.
type AbortSource interface {
	AbortRequested() bool
}

// AbortFunc adapts a function to AbortSource.
type AbortFunc func() bool

func (f AbortFunc) AbortRequested() bool { return f() }

// Never is a source that never aborts.
var Never AbortSource = AbortFunc(func() bool { return false })

type padAbort struct{ pad *Pad }

// PadAbort scans pad on every poll and aborts when Home went down.
func PadAbort(pad *Pad) AbortSource {
	return padAbort{pad: pad}
}

func (a padAbort) AbortRequested() bool {
	a.pad.Scan()
	return a.pad.ButtonsDown()&ButtonHome != 0
}

type contextAbort struct{ ctx context.Context }

// ContextAbort aborts once ctx is done, e.g. a signal.NotifyContext.
func ContextAbort(ctx context.Context) AbortSource {
	return contextAbort{ctx: ctx}
}

func (a contextAbort) AbortRequested() bool {
	return a.ctx.Err() != nil
}

type anyAbort []AbortSource

// Any aborts when any source does. Every source is polled on each call so
// pads are scanned regularly.
func Any(srcs ...AbortSource) AbortSource {
	return anyAbort(srcs)
}

func (a anyAbort) AbortRequested() bool {
	abort := false
	for _, s := range a {
		if s != nil && s.AbortRequested() {
			abort = true
		}
	}
	return abort
}
