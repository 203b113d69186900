// Package runerr holds the interpreter's error taxonomy and control signals.
//
// Inside the interpreter core, errors and signals travel by panic, the same
// way a non-local return unwinds Go frames: a statement handler several calls
// deep raises a *Error and the fetch loop recovers it. Catch converts a
// recovered value back into an ordinary error at package boundaries.
package runerr

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error codes
// ---------------------------------------------------------------------------

const (
	NextWithoutFor        = 1
	SyntaxError           = 2
	ReturnWithoutGosub    = 3
	OutOfData             = 4
	IllegalFunctionCall   = 5
	Overflow              = 6
	OutOfMemory           = 7
	UndefinedLineNumber   = 8
	SubscriptOutOfRange   = 9
	DuplicateDefinition   = 10
	DivisionByZero        = 11
	IllegalDirect         = 12
	TypeMismatch          = 13
	StringTooLong         = 15
	CantContinue          = 17
	UndefinedUserFunction = 18
	NoResume              = 19
	ResumeWithoutError    = 20
	MissingOperand        = 22
	ForWithoutNext        = 26
	WhileWithoutWend      = 29
	WendWithoutWhile      = 30
	BadFileNumber         = 52
	FileNotFound          = 53
	BadFileMode           = 54
	DeviceIOError         = 57
	FileAlreadyExists     = 58
	BadFileName           = 64
	DirectInFile          = 66
	AdvancedFeature       = 73
)

var messages = map[int]string{
	NextWithoutFor:        "NEXT without FOR",
	SyntaxError:           "Syntax error",
	ReturnWithoutGosub:    "RETURN without GOSUB",
	OutOfData:             "Out of DATA",
	IllegalFunctionCall:   "Illegal function call",
	Overflow:              "Overflow",
	OutOfMemory:           "Out of memory",
	UndefinedLineNumber:   "Undefined line number",
	SubscriptOutOfRange:   "Subscript out of range",
	DuplicateDefinition:   "Duplicate Definition",
	DivisionByZero:        "Division by zero",
	IllegalDirect:         "Illegal direct",
	TypeMismatch:          "Type mismatch",
	StringTooLong:         "String too long",
	CantContinue:          "Can't continue",
	UndefinedUserFunction: "Undefined user function",
	NoResume:              "No RESUME",
	ResumeWithoutError:    "RESUME without error",
	MissingOperand:        "Missing operand",
	ForWithoutNext:        "FOR without NEXT",
	WhileWithoutWend:      "WHILE without WEND",
	WendWithoutWhile:      "WEND without WHILE",
	BadFileNumber:         "Bad file number",
	FileNotFound:          "File not found",
	BadFileMode:           "Bad file mode",
	DeviceIOError:         "Device I/O error",
	FileAlreadyExists:     "File already exists",
	BadFileName:           "Bad file name",
	DirectInFile:          "Direct statement in file",
	AdvancedFeature:       "Advanced feature",
}

// Message returns the text for an error code.
func Message(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "Unprintable error"
}

// Category groups error codes by where they arise.
type Category int

const (
	Runtime Category = iota
	Syntax
	ControlFlow
	TrapResume
	Device
)

func (c Category) String() string {
	switch c {
	case Syntax:
		return "syntax"
	case ControlFlow:
		return "control-flow"
	case TrapResume:
		return "trap-resume"
	case Device:
		return "device"
	default:
		return "runtime"
	}
}

// ---------------------------------------------------------------------------
// Error
// ---------------------------------------------------------------------------

// NoPos marks an error whose position has not been recorded yet.
const NoPos = -2

// Error is a trappable BASIC runtime error.
type Error struct {
	Code int
	Pos  int // byte offset in the active buffer, -1 in direct mode, NoPos if unset
}

func (e *Error) Error() string {
	return Message(e.Code)
}

// Category classifies the error code.
func (e *Error) Category() Category {
	switch e.Code {
	case SyntaxError, MissingOperand, IllegalDirect, UndefinedLineNumber:
		return Syntax
	case NextWithoutFor, ReturnWithoutGosub, ForWithoutNext,
		WhileWithoutWend, WendWithoutWhile, CantContinue:
		return ControlFlow
	case NoResume, ResumeWithoutError:
		return TrapResume
	case BadFileNumber, FileNotFound, BadFileMode, DeviceIOError, FileAlreadyExists,
		BadFileName, DirectInFile:
		return Device
	default:
		return Runtime
	}
}

// New returns an error with no recorded position.
func New(code int) *Error {
	return &Error{Code: code, Pos: NoPos}
}

// Raise panics with a new error.
func Raise(code int) {
	panic(New(code))
}

// RaiseAt panics with an error at a known position.
func RaiseAt(code, pos int) {
	panic(&Error{Code: code, Pos: pos})
}

// ThrowIf raises code when cond holds.
func ThrowIf(cond bool, code int) {
	if cond {
		Raise(code)
	}
}

// RangeCheck raises Illegal function call unless lo <= v <= hi.
func RangeCheck(lo, hi, v int) {
	if v < lo || v > hi {
		Raise(IllegalFunctionCall)
	}
}

// ---------------------------------------------------------------------------
// Control signals
// ---------------------------------------------------------------------------

// Break interrupts a running program (Ctrl-Break or STOP).
type Break struct {
	Stop bool
	Pos  int
}

func (b *Break) Error() string {
	return "Break"
}

// Exit is raised by SYSTEM.
type Exit struct{}

func (*Exit) Error() string { return "exit" }

// Reset unwinds to the session after the program has been replaced.
type Reset struct{}

func (*Reset) Error() string { return "reset" }

// IsSignal reports whether err is a control signal rather than a trappable
// error.
func IsSignal(err error) bool {
	var b *Break
	var x *Exit
	var r *Reset
	return errors.As(err, &b) || errors.As(err, &x) || errors.As(err, &r)
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ---------------------------------------------------------------------------
// Recovery
// ---------------------------------------------------------------------------

// FromPanic converts a recovered panic value into an error. Values that are
// not runerr types are re-panicked.
func FromPanic(r interface{}) error {
	switch v := r.(type) {
	case nil:
		return nil
	case *Error:
		return v
	case *Break:
		return v
	case *Exit:
		return v
	case *Reset:
		return v
	default:
		panic(r)
	}
}

// Catch runs fn and returns any runerr value it panicked with as an error.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = FromPanic(r)
		}
	}()
	fn()
	return nil
}

// Rethrow re-raises err inside the core. Errors that are not runerr values
// become Illegal function call.
func Rethrow(err error) {
	if err == nil {
		return
	}
	var (
		e *Error
		b *Break
		x *Exit
		r *Reset
	)
	switch {
	case errors.As(err, &e):
		panic(e)
	case errors.As(err, &b):
		panic(b)
	case errors.As(err, &x):
		panic(x)
	case errors.As(err, &r):
		panic(r)
	}
	panic(New(IllegalFunctionCall))
}

// Describe formats an error with its line number the way the prompt shows it.
func Describe(err error, line int) string {
	if line >= 0 && line != 65535 {
		return fmt.Sprintf("%s in %d", err.Error(), line)
	}
	return err.Error()
}
