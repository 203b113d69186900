package server

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chazu/gwbasic/interp"
	"github.com/chazu/gwbasic/session"
)

// runTimeout bounds a program run started from the editor.
const runTimeout = 10 * time.Second

// sessionRequest is a unit of work for the session goroutine.
type sessionRequest struct {
	fn   func(*session.Session) any
	done chan sessionResult
}

type sessionResult struct {
	value any
	err   error
}

// Worker serializes all session access through a single goroutine.
// A session is not safe for concurrent use and LSP handlers run
// concurrently.
type Worker struct {
	session  *session.Session
	out      *strings.Builder
	requests chan sessionRequest
	quit     chan struct{}
	stopOnce sync.Once
}

// NewWorker creates a session with its console captured and starts the
// processing goroutine. The console has no input, so INPUT ends a run.
func NewWorker(opts ...session.Option) *Worker {
	out := &strings.Builder{}
	opts = append(opts, session.WithConsole(strings.NewReader(""), out))
	w := &Worker{
		session:  session.New(opts...),
		out:      out,
		requests: make(chan sessionRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Worker) loop() {
	for {
		select {
		case <-w.quit:
			return
		default:
		}
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs fn on the session, recovering from panics.
func (w *Worker) execute(fn func(*session.Session) any) sessionResult {
	var result sessionResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("server: session panic: %v", r)
			}
		}()
		result.value = fn(w.session)
	}()
	return result
}

// Do submits fn for execution on the session goroutine and blocks until
// it completes.
func (w *Worker) Do(fn func(*session.Session) any) (any, error) {
	req := sessionRequest{
		fn:   fn,
		done: make(chan sessionResult, 1),
	}
	select {
	case <-w.quit:
		return nil, fmt.Errorf("server: worker stopped")
	default:
	}
	select {
	case w.requests <- req:
	case <-w.quit:
		return nil, fmt.Errorf("server: worker stopped")
	}
	select {
	case result := <-req.done:
		return result.value, result.err
	case <-w.quit:
		return nil, fmt.Errorf("server: worker stopped")
	}
}

// Run loads program text into the session, runs it and returns what it
// printed. BASIC errors are part of the output; only text that cannot be
// loaded is an error.
func (w *Worker) Run(ctx context.Context, text string) (string, error) {
	v, err := w.Do(func(s *session.Session) any {
		s.Console().Fresh()
		w.out.Reset()
		if err := s.LoadProgram(text); err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(ctx, runTimeout)
		defer cancel()
		s.RunProgram(ctx, interp.NoLine)
		return w.out.String()
	})
	if err != nil {
		return "", err
	}
	if err, ok := v.(error); ok {
		return "", fmt.Errorf("server: loading program: %w", err)
	}
	return v.(string), nil
}

// Stop shuts down the worker goroutine. Requests still waiting fail;
// further calls do nothing.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.quit) })
}
