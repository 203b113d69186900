// Package interp is the execution engine: it owns the program and direct
// line cursors, the loop and subroutine stacks, the DATA pointer and the
// error trap state, and runs the statement loop that hands each statement to
// the recogniser.
//
// Inside the loop errors travel by panic (see package runerr). Run recovers
// them at the boundary and returns ordinary errors.
package interp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tliron/commonlog"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/events"
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/program"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

var log = commonlog.GetLogger("gwbasic.interp")

// NoLine stands for an omitted line number: Jump(NoLine) starts the
// program from the top, Return(NoLine) returns to the GOSUB.
const NoLine = -1

// directEnd closes a direct line with a line marker whose next-line offset
// is zero, so the loop halts there.
const directEnd = "\x00\x00\x00\x00\x00"

// DefaultMaxGosubDepth bounds the GOSUB stack.
const DefaultMaxGosubDepth = 1000

// ---------------------------------------------------------------------------
// Stack frames
// ---------------------------------------------------------------------------

type gosubFrame struct {
	pos     int
	runMode bool
	event   *events.Event // set for event trap subroutines
}

type forFrame struct {
	name    string
	counter *memory.Cell
	stop    values.Value
	step    values.Value
	sign    int
	forPos  int // end of the FOR statement
	nextPos int // just after the matching NEXT variable
}

type whileFrame struct {
	whilePos int // just after the WHILE token
	wendPos  int // end of the WEND statement
}

type resumePoint struct {
	pos     int
	runMode bool
}

// ---------------------------------------------------------------------------
// Interpreter
// ---------------------------------------------------------------------------

// Interpreter executes tokenised BASIC.
type Interpreter struct {
	program *program.Program
	memory  *memory.Memory
	events  *events.Events
	parser  *statements.Parser

	prog             *codestream.Stream
	direct           *codestream.Stream
	runMode          bool
	currentStatement int

	gosubStack []gosubFrame
	forStack   []forFrame
	whileStack []whileFrame
	dataPos    int

	onError  int // trap line, 0 for off, NoLine if never set
	handling bool
	resume   *resumePoint
	errNum   int
	errPos   int

	stop int // CONT position, NoLine if execution cannot continue
	tron bool

	trace    io.Writer
	maxGosub int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithTrace sets where TRON writes line numbers.
func WithTrace(w io.Writer) Option {
	return func(i *Interpreter) { i.trace = w }
}

// WithMaxGosubDepth bounds GOSUB nesting; deeper calls raise Out of memory.
func WithMaxGosubDepth(n int) Option {
	return func(i *Interpreter) { i.maxGosub = n }
}

// New returns an interpreter over prog and registers the flow control
// statements on parser.
func New(prog *program.Program, mem *memory.Memory, ev *events.Events, parser *statements.Parser, opts ...Option) *Interpreter {
	i := &Interpreter{
		program:  prog,
		memory:   mem,
		events:   ev,
		parser:   parser,
		prog:     prog.Stream(),
		direct:   codestream.New(directEnd),
		trace:    io.Discard,
		maxGosub: DefaultMaxGosubDepth,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.ClearStacksAndPointers()
	i.initErrorTrapping()
	i.errNum, i.errPos = 0, 0
	i.SetPointer(false, 0)
	i.register()
	return i
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// RunMode reports whether the program, rather than the direct line, is
// executing.
func (i *Interpreter) RunMode() bool { return i.runMode }

// Current returns the cursor that is executing.
func (i *Interpreter) Current() *codestream.Stream {
	if i.runMode {
		return i.prog
	}
	return i.direct
}

// CurrentStatement returns the offset where the executing statement began.
func (i *Interpreter) CurrentStatement() int { return i.currentStatement }

// Tron reports whether line tracing is on.
func (i *Interpreter) Tron() bool { return i.tron }

// SetTron switches line tracing.
func (i *Interpreter) SetTron(on bool) { i.tron = on }

// Handling reports whether an error trap routine is running.
func (i *Interpreter) Handling() bool { return i.handling }

// ResumePoint returns the statement an error trap will resume at.
func (i *Interpreter) ResumePoint() (pos int, runMode, ok bool) {
	if i.resume == nil {
		return 0, false, false
	}
	return i.resume.pos, i.resume.runMode, true
}

// GosubDepth returns the number of open subroutine calls.
func (i *Interpreter) GosubDepth() int { return len(i.gosubStack) }

// ForDepth returns the number of open FOR loops.
func (i *Interpreter) ForDepth() int { return len(i.forStack) }

// WhileDepth returns the number of open WHILE loops.
func (i *Interpreter) WhileDepth() int { return len(i.whileStack) }

// DataPos returns the DATA pointer.
func (i *Interpreter) DataPos() int { return i.dataPos }

// CanContinue reports whether CONT would resume a stopped program.
func (i *Interpreter) CanContinue() bool { return i.stop != NoLine }

// Err returns the code of the last error (ERR).
func (i *Interpreter) Err() int { return i.errNum }

// Erl returns the line of the last error (ERL): 0 if none, 65535 if it
// happened in a direct line.
func (i *Interpreter) Erl() int {
	switch i.errPos {
	case 0:
		return 0
	case -1:
		return 65535
	}
	if n := i.program.LineNumberAt(i.errPos); n >= 0 {
		return n
	}
	return 65535
}

// SetError records ERR and ERL without raising, as ERROR does before it
// raises.
func (i *Interpreter) SetError(code, pos int) {
	i.errNum, i.errPos = code, pos
}

// ---------------------------------------------------------------------------
// Clearing
// ---------------------------------------------------------------------------

func (i *Interpreter) initErrorTrapping() {
	i.handling = false
	i.resume = nil
	i.onError = NoLine
}

// Clear resets what CLEAR resets: ERR and ERL, error and event trapping,
// the loop stacks and the DATA pointer.
func (i *Interpreter) Clear() {
	i.errNum, i.errPos = 0, 0
	i.initErrorTrapping()
	i.events.Reset()
	i.clearLoopStacks()
	i.dataPos = 0
}

// ClearStacksAndPointers prepares for a new program run: execution halts,
// all stacks empty, CONT is disabled and the DATA pointer rewinds.
func (i *Interpreter) ClearStacksAndPointers() {
	i.SetPointer(false, NoLine)
	i.gosubStack = nil
	i.clearLoopStacks()
	i.prog.Seek(0)
	i.stop = NoLine
	i.dataPos = 0
}

func (i *Interpreter) clearLoopStacks() {
	i.forStack = nil
	i.whileStack = nil
}

// ProgramChanged reopens the program cursor after an edit. Offsets into
// the old buffer are dropped with it.
func (i *Interpreter) ProgramChanged() {
	i.prog = i.program.Stream()
	i.ClearStacksAndPointers()
}

// ---------------------------------------------------------------------------
// Pointers and jumps
// ---------------------------------------------------------------------------

// SetPointer selects the program (runMode) or the direct line and moves
// its cursor to pos. NoLine moves to the end so that nothing runs until the
// next jump.
func (i *Interpreter) SetPointer(runMode bool, pos int) {
	i.runMode = runMode
	i.events.SetActive(runMode)
	s := i.Current()
	if pos == NoLine {
		s.SeekEnd()
	} else {
		s.Seek(pos)
	}
}

// SetDirect installs a tokenised direct line and points execution at it.
func (i *Interpreter) SetDirect(line string) {
	i.direct = codestream.New(line + directEnd)
	i.SetPointer(false, 0)
}

// Jump continues execution at line n of the program, or at its start for
// NoLine.
func (i *Interpreter) Jump(n int) {
	i.jumpCode(n, runerr.UndefinedLineNumber)
}

func (i *Interpreter) jumpCode(n, code int) {
	if n == NoLine {
		i.SetPointer(true, 0)
		return
	}
	pos, ok := i.program.LineOffset(n)
	if !ok {
		runerr.Raise(code)
	}
	log.Debugf("jump to %d", n)
	i.SetPointer(true, pos)
}

// JumpSub calls the subroutine at line n. ev is the event whose trap made
// the call, or nil.
func (i *Interpreter) JumpSub(n int, ev *events.Event) {
	if len(i.gosubStack) >= i.maxGosub {
		runerr.Raise(runerr.OutOfMemory)
	}
	frame := gosubFrame{pos: i.Current().Tell(), runMode: i.runMode, event: ev}
	i.Jump(n)
	i.gosubStack = append(i.gosubStack, frame)
}

// Return leaves the innermost subroutine, continuing after the GOSUB or at
// line n.
func (i *Interpreter) Return(n int) {
	if len(i.gosubStack) == 0 {
		runerr.Raise(runerr.ReturnWithoutGosub)
	}
	frame := i.gosubStack[len(i.gosubStack)-1]
	i.gosubStack = i.gosubStack[:len(i.gosubStack)-1]
	if frame.event != nil {
		// the event may fire again
		frame.event.Stopped = false
	}
	if n != NoLine {
		i.Jump(n)
		return
	}
	i.SetPointer(frame.runMode, frame.pos)
	// the rest of the GOSUB statement is ignored
	i.Current().SkipTo(tokens.EndStatement, true)
}

// ---------------------------------------------------------------------------
// Statement loop
// ---------------------------------------------------------------------------

// Run executes from the current pointer until execution halts. Break, Exit
// and Reset come back as errors, as do untrapped runtime errors.
func (i *Interpreter) Run(ctx context.Context) error {
	err := runerr.Catch(func() { i.parse(ctx) })
	var brk *runerr.Break
	if errors.As(err, &brk) {
		if i.runMode {
			// CONT resumes at the pointer; the message names the line
			// of the statement that was last executed.
			i.stop = i.prog.Tell()
			brk.Pos = max(i.stop-1, 0)
		}
		i.SetPointer(false, NoLine)
	} else if _, ok := runerr.AsError(err); ok {
		i.stop = NoLine
	}
	return err
}

func (i *Interpreter) parse(ctx context.Context) {
	for {
		// may raise Break
		i.events.Check(ctx)
		if i.step() {
			return
		}
	}
}

// step executes one statement and reports whether execution has halted.
func (i *Interpreter) step() (halted bool) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*runerr.Error)
			if !ok {
				panic(r)
			}
			i.trapError(e)
		}
	}()
	i.handleEvents()
	s := i.Current()
	i.currentStatement = s.Tell()
	c := s.SkipBlankRead()
	if tokens.In(c, tokens.EndLine...) {
		record := s.Read(4)
		if len(record) < 4 || record[:2] == "\x00\x00" {
			if i.resume != nil {
				// an unfinished trap routine is not itself trapped
				i.handling = true
				runerr.RaiseAt(runerr.NoResume, s.Tell()-len(record)-2)
			}
			i.SetPointer(false, NoLine)
			return true
		}
		if i.tron {
			fmt.Fprintf(i.trace, "[%d]", int(record[2])|int(record[3])<<8)
		}
	} else if c != tokens.Separator {
		s.SeekRel(-len(c))
	}
	i.parser.ParseStatement(s)
	return false
}

// handleEvents calls the trap subroutine of the first triggered event.
func (i *Interpreter) handleEvents() {
	if i.events.SuspendAll() || !i.runMode {
		return
	}
	for _, ev := range i.events.Enabled() {
		if ev.Triggered && !ev.Stopped && ev.Gosub >= 0 {
			ev.Release()
			// no re-entry until RETURN
			ev.Stopped = true
			log.Debugf("%s trap to %d", ev.Name, ev.Gosub)
			i.JumpSub(ev.Gosub, ev)
		}
	}
}

// trapError records the error and jumps to the ON ERROR routine, or halts
// and re-raises if there is none or one is already running.
func (i *Interpreter) trapError(e *runerr.Error) {
	if e.Pos == runerr.NoPos {
		if i.runMode {
			e.Pos = i.prog.Tell() - 1
		} else {
			e.Pos = -1
		}
	}
	i.errNum, i.errPos = e.Code, e.Pos
	if i.onError > 0 && !i.handling {
		log.Debugf("error %d trapped at %d, handler at %d", e.Code, e.Pos, i.onError)
		i.resume = &resumePoint{pos: i.currentStatement, runMode: i.runMode}
		i.Jump(i.onError)
		i.handling = true
		i.events.SetSuspendAll(true)
		return
	}
	i.handling = false
	i.SetPointer(false, NoLine)
	panic(e)
}

// ErrorLine returns the program line an error occurred in, or -1 for a
// direct line.
func (i *Interpreter) ErrorLine(err error) int {
	e, ok := runerr.AsError(err)
	if !ok || e.Pos < 0 {
		return -1
	}
	return i.program.LineNumberAt(e.Pos)
}
