package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
)

// DefaultPort is the well-known port observers connect to.
const DefaultPort = 16784

// Greeting is sent as soon as the observer connects.
const Greeting = "Hello world!"

// Reporter writes text to the single observer connection and mirrors it to
// a local debug log. There is no buffering and no retry: a failed write
// calls the fatal hook.
type Reporter struct {
	out       io.Writer
	conn      io.Closer
	listener  net.Listener
	mirror    *log.Logger
	formatter Formatter
	fatal     func(error)

	closeOnce sync.Once
	closeErr  error
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithMirror sets the local debug sink. Nil disables mirroring.
func WithMirror(l *log.Logger) Option {
	return func(r *Reporter) { r.mirror = l }
}

// WithFormatter replaces the wire text format.
func WithFormatter(f Formatter) Option {
	return func(r *Reporter) { r.formatter = f }
}

// WithFatal replaces the handler for send failures. The default logs and
// exits the process.
func WithFatal(fn func(error)) Option {
	return func(r *Reporter) { r.fatal = fn }
}

// DefaultMirror logs observer traffic to the standard logger's output.
func DefaultMirror() *log.Logger {
	return log.New(log.Writer(), "[REPORT] ", log.LstdFlags)
}

// New returns a Reporter writing to w. If w is also an io.Closer it is
// closed by Close.
func New(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:       w,
		mirror:    DefaultMirror(),
		formatter: TextFormatter{},
		fatal: func(err error) {
			log.Fatalf("[REPORT] observer connection lost: %v", err)
		},
	}
	if c, ok := w.(io.Closer); ok {
		r.conn = c
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Listen opens addr and blocks until exactly one observer connects.
func Listen(ctx context.Context, addr string, opts ...Option) (*Reporter, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	r, err := Serve(ctx, ln, opts...)
	if err != nil {
		ln.Close()
		return nil, err
	}
	return r, nil
}

// Serve accepts one observer on ln and sends the greeting. The listener is
// owned by the returned Reporter. Cancelling ctx aborts the accept.
func Serve(ctx context.Context, ln net.Listener, opts ...Option) (*Reporter, error) {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	conn, err := ln.Accept()
	if !stop() {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("accept on %s aborted: %w", ln.Addr(), context.Cause(ctx))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to accept observer on %s: %w", ln.Addr(), err)
	}

	r := New(conn, opts...)
	r.listener = ln
	if r.mirror != nil {
		r.mirror.Printf("observer connected from %s", conn.RemoteAddr())
	}
	r.Printf("%s\n", Greeting)
	return r, nil
}

// Printf formats and sends text. The text is sent as-is; callers terminate
// their own lines.
func (r *Reporter) Printf(format string, args ...any) {
	r.write(fmt.Sprintf(format, args...))
}

// Emit serializes rec and sends it.
func (r *Reporter) Emit(rec Record) {
	r.write(r.formatter.Format(rec))
}

func (r *Reporter) write(text string) {
	if r.mirror != nil {
		r.mirror.Print(text)
	}
	if _, err := io.WriteString(r.out, text); err != nil {
		r.fatal(err)
	}
}

// Close closes the observer connection and the listener.
func (r *Reporter) Close() error {
	r.closeOnce.Do(func() {
		var errs []error
		if r.conn != nil {
			errs = append(errs, r.conn.Close())
		}
		if r.listener != nil {
			errs = append(errs, r.listener.Close())
		}
		r.closeErr = errors.Join(errs...)
	})
	return r.closeErr
}
