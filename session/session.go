// Package session wires the interpreter core into a working BASIC: it owns
// the program, variables, event traps and console, installs the handlers
// for statements that touch them, and takes direct-mode input line by line.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/config"
	"github.com/chazu/gwbasic/events"
	"github.com/chazu/gwbasic/expr"
	"github.com/chazu/gwbasic/interp"
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/program"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/store"
	"github.com/chazu/gwbasic/tokenise"
)

var log = commonlog.GetLogger("gwbasic.session")

// Library is where SAVE, LOAD, MERGE, KILL and FILES keep programs.
type Library interface {
	Save(name string, format store.Format, data []byte) error
	Load(name string) (store.Entry, error)
	Delete(name string) error
	List(pattern string) ([]string, error)
}

// Session is one BASIC machine.
type Session struct {
	program *program.Program
	memory  *memory.Memory
	events  *events.Events
	eval    *expr.Evaluator
	parser  *statements.Parser
	interp  *interp.Interpreter
	console *Console
	lib     Library
	pump    events.Pump

	syntax    statements.Syntax
	width     int
	maxGosub  int
	tron      bool
	protected bool
	keyMacros [10]string
}

// Option configures a Session.
type Option func(*Session)

// WithConsole sets the console's input and output.
func WithConsole(in io.Reader, out io.Writer) Option {
	return func(s *Session) { s.console = NewConsole(in, out) }
}

// WithWidth sets the console width.
func WithWidth(width int) Option {
	return func(s *Session) { s.width = width }
}

// WithLibrary installs a program library.
func WithLibrary(lib Library) Option {
	return func(s *Session) { s.lib = lib }
}

// WithPump installs a host input pump, polled before every statement.
func WithPump(p events.Pump) Option {
	return func(s *Session) { s.pump = p }
}

// WithSyntax selects the dialect.
func WithSyntax(syntax statements.Syntax) Option {
	return func(s *Session) { s.syntax = syntax }
}

// WithMaxGosubDepth bounds GOSUB nesting.
func WithMaxGosubDepth(n int) Option {
	return func(s *Session) { s.maxGosub = n }
}

// WithTron starts with line tracing on.
func WithTron(on bool) Option {
	return func(s *Session) { s.tron = on }
}

// OptionsFrom translates a configuration into options.
func OptionsFrom(cfg *config.Config) ([]Option, error) {
	syntax, err := statements.ParseSyntax(cfg.Session.Syntax)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return []Option{
		WithSyntax(syntax),
		WithMaxGosubDepth(cfg.Session.MaxGosubDepth),
		WithTron(cfg.Session.Tron),
		WithWidth(cfg.Session.Width),
	}, nil
}

// New returns a session with an empty program.
func New(opts ...Option) *Session {
	s := &Session{
		program:  program.New(),
		memory:   memory.New(),
		console:  NewConsole(strings.NewReader(""), io.Discard),
		syntax:   statements.Advanced,
		maxGosub: interp.DefaultMaxGosubDepth,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.width > 0 {
		s.console.width = s.width
	}
	if s.pump != nil {
		s.events = events.New(events.WithPump(s.pump))
	} else {
		s.events = events.New()
	}
	s.eval = expr.New(s)
	s.parser = statements.New(s.eval, s, s.syntax)
	s.interp = interp.New(s.program, s.memory, s.events, s.parser,
		interp.WithTrace(s.console),
		interp.WithMaxGosubDepth(s.maxGosub))
	s.interp.SetTron(s.tron)
	s.program.OnChange(s.interp.ProgramChanged)
	s.register()
	return s
}

// ---------------------------------------------------------------------------
// Environment of the expression evaluator and statement parser
// ---------------------------------------------------------------------------

// Memory returns the variable store.
func (s *Session) Memory() *memory.Memory { return s.memory }

// LastStored is the line number "." stands for.
func (s *Session) LastStored() int { return s.program.LastStored() }

// Err is ERR.
func (s *Session) Err() int { return s.interp.Err() }

// Erl is ERL.
func (s *Session) Erl() int { return s.interp.Erl() }

// Inkey pops a keystroke for INKEY$.
func (s *Session) Inkey() string { return s.events.Inkey() }

// Program opens a stream on the stored program.
func (s *Session) Program() *codestream.Stream { return s.program.Stream() }

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Interpreter returns the execution engine.
func (s *Session) Interpreter() *interp.Interpreter { return s.interp }

// Events returns the trap table, for hosts posting keystrokes.
func (s *Session) Events() *events.Events { return s.events }

// Console returns the console.
func (s *Session) Console() *Console { return s.console }

// Stored returns the program.
func (s *Session) Stored() *program.Program { return s.program }

// ---------------------------------------------------------------------------
// Direct mode
// ---------------------------------------------------------------------------

// Execute takes one line of direct-mode input. A numbered line is stored
// in the program, or deleted if it has no body; anything else runs at
// once. Errors and breaks are shown on the console and also returned; an
// *runerr.Exit means SYSTEM was executed.
func (s *Session) Execute(ctx context.Context, line string) error {
	num, hasNum, body, err := tokenise.TokeniseLine(line)
	if err != nil {
		return s.report(err)
	}
	if hasNum {
		return s.report(s.storeLine(num, body))
	}
	if strings.Trim(body, " \t") == "" {
		return nil
	}
	s.interp.SetDirect(body)
	return s.report(s.interp.Run(ctx))
}

// storeLine edits the program. Any edit clears the variables.
func (s *Session) storeLine(num int, body string) error {
	if err := s.program.StoreLine(num, body); err != nil {
		return err
	}
	s.clear()
	return nil
}

// RunProgram runs the stored program from line start, or from its
// beginning if start is interp.NoLine.
func (s *Session) RunProgram(ctx context.Context, start int) error {
	err := runerr.Catch(func() { s.run(start) })
	if err == nil {
		err = s.interp.Run(ctx)
	}
	return s.report(err)
}

// Continue resumes a program halted by STOP, END or a break.
func (s *Session) Continue(ctx context.Context) error {
	return s.Execute(ctx, "CONT")
}

// report shows an error on the console the way the prompt does.
func (s *Session) report(err error) error {
	if err == nil {
		return nil
	}
	var (
		brk  *runerr.Break
		exit *runerr.Exit
	)
	switch {
	case errors.As(err, &exit):
		return err
	case errors.As(err, &brk):
		s.console.Fresh()
		if line := s.program.LineNumberAt(brk.Pos); brk.Pos >= 0 && line >= 0 {
			s.console.WriteString(fmt.Sprintf("Break in %d\n", line))
		} else {
			s.console.WriteString("Break\n")
		}
	default:
		if e, ok := runerr.AsError(err); ok {
			log.Debugf("error %d at %d", e.Code, e.Pos)
		}
		s.console.Fresh()
		s.console.WriteString(runerr.Describe(err, s.interp.ErrorLine(err)) + "\n")
	}
	return err
}

// clear resets what CLEAR resets.
func (s *Session) clear() {
	s.memory.Clear()
	s.interp.Clear()
}

// run prepares a RUN from line start.
func (s *Session) run(start int) {
	s.clear()
	s.interp.ClearStacksAndPointers()
	if start == interp.NoLine {
		s.interp.SetPointer(true, 0)
		return
	}
	s.interp.Jump(start)
}

// ---------------------------------------------------------------------------
// Program text
// ---------------------------------------------------------------------------

// LoadProgram replaces the program with ASCII program text. Every line
// must have a line number.
func (s *Session) LoadProgram(text string) error {
	p, err := ParseProgram(text)
	if err != nil {
		return err
	}
	return runerr.Catch(func() { s.replaceProgram(p, false) })
}

// ParseProgram tokenises ASCII program text.
func ParseProgram(text string) (*program.Program, error) {
	p := program.New()
	text = strings.TrimSuffix(text, "\x1a")
	for n, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		num, hasNum, body, err := tokenise.TokeniseLine(line)
		if err != nil {
			return nil, fmt.Errorf("session: line %d: %w", n+1, err)
		}
		if !hasNum {
			return nil, fmt.Errorf("session: line %d: %w", n+1, runerr.New(runerr.DirectInFile))
		}
		if err := p.StoreLine(num, body); err != nil {
			return nil, fmt.Errorf("session: line %d: %w", n+1, err)
		}
	}
	return p, nil
}

// replaceProgram swaps in a new program, as NEW followed by MERGE.
func (s *Session) replaceProgram(p *program.Program, protected bool) {
	s.program.Erase()
	if err := s.program.Merge(p); err != nil {
		runerr.Rethrow(err)
	}
	s.protected = protected
	s.clear()
}

// ListProgram writes lines from..to as LIST shows them. Negative bounds
// are open.
func (s *Session) ListProgram(w io.Writer, from, to int) error {
	if from < 0 {
		from = 0
	}
	for line := range s.program.Lines(from, to) {
		if _, err := fmt.Fprintln(w, tokenise.ListLine(line.Number, line.Body)); err != nil {
			return fmt.Errorf("session: list: %w", err)
		}
	}
	return nil
}

// ProgramText returns the whole program as ASCII text.
func (s *Session) ProgramText() string {
	var b strings.Builder
	s.ListProgram(&b, -1, -1)
	return b.String()
}
