package interp

import (
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// register installs the statements that move the execution pointer.
func (i *Interpreter) register() {
	p := i.parser
	p.Register(tokens.GOTO, i.gotoStatement)
	p.Register(tokens.GOSUB, i.gosubStatement)
	p.Register(tokens.RETURN, i.returnStatement)
	p.Register(tokens.IF, i.ifStatement)
	p.Register(tokens.ON, i.onJump)
	p.Register(tokens.FOR, i.forStatement)
	p.Register(tokens.NEXT, i.nextStatement)
	p.Register(tokens.WHILE, i.whileStatement)
	p.Register(tokens.WEND, i.wendStatement)
	p.Register(tokens.RESTORE, i.restoreStatement)
	p.Register(tokens.READ, i.readStatement)
	p.Register(tokens.ON+tokens.ERROR, i.onErrorGoto)
	p.Register(tokens.RESUME, i.resumeStatement)
	p.Register(tokens.DEF+tokens.FN, i.defFn)
	p.Register(tokens.SYSTEM, i.system)
	p.Register(tokens.STOP, i.stopStatement)
	p.Register(tokens.CONT, i.cont)
	p.Register(tokens.TRON, func(a *statements.Args) { a.Drain(); i.tron = true })
	p.Register(tokens.TROFF, func(a *statements.Args) { a.Drain(); i.tron = false })
}

// lineArg takes an optional line number argument.
func lineArg(a *statements.Args) int {
	if n, ok := statements.Take[int](a); ok {
		return n
	}
	return NoLine
}

// ---------------------------------------------------------------------------
// Jumps and branches
// ---------------------------------------------------------------------------

func (i *Interpreter) gotoStatement(a *statements.Args) {
	i.Jump(lineArg(a))
}

func (i *Interpreter) gosubStatement(a *statements.Args) {
	i.JumpSub(lineArg(a), nil)
}

func (i *Interpreter) returnStatement(a *statements.Args) {
	i.Return(lineArg(a))
}

// ifStatement decides on the condition before the rest of the line is
// lexed. A false condition moves the cursor past the matching ELSE, or to
// the end of the line.
func (i *Interpreter) ifStatement(a *statements.Args) {
	// single precision, so that large values do not overflow
	cond := values.ToType(values.SingleSigil, a.Value())
	if values.IsZero(cond) {
		i.Current().SkipToElse()
	}
	// a line number may follow THEN or ELSE directly
	if n := lineArg(a); n != NoLine {
		i.Jump(n)
	}
}

// onJump is ON n GOTO and ON n GOSUB. Targets past the chosen one are not
// lexed.
func (i *Interpreter) onJump(a *statements.Args) {
	sel := values.ToInt(a.Value())
	runerr.RangeCheck(0, 255, sel)
	kind, _ := statements.Take[string](a)
	n := -1
	for {
		v, ok := a.Pull()
		if !ok {
			break
		}
		n++
		if n == sel-1 {
			if kind == tokens.GOSUB {
				i.JumpSub(v.(int), nil)
			} else {
				i.Jump(v.(int))
			}
			return
		}
	}
	// a missing target just where one is needed
	if n == sel-2 {
		runerr.Raise(runerr.SyntaxError)
	}
}

// ---------------------------------------------------------------------------
// Error trapping
// ---------------------------------------------------------------------------

func (i *Interpreter) onErrorGoto(a *statements.Args) {
	n := lineArg(a)
	if n != 0 {
		if _, ok := i.program.LineOffset(n); !ok {
			runerr.Raise(runerr.UndefinedLineNumber)
		}
	}
	i.onError = n
	// ON ERROR GOTO 0 inside a trap routine stops with the pending error
	if n == 0 && i.handling {
		runerr.RaiseAt(i.errNum, i.errPos)
	}
}

func (i *Interpreter) resumeStatement(a *statements.Args) {
	if i.resume == nil {
		i.onError = 0
		runerr.Raise(runerr.ResumeWithoutError)
	}
	where := a.Next()
	rp := *i.resume
	i.errNum = 0
	i.handling = false
	i.resume = nil
	i.events.SetSuspendAll(false)
	switch w := where.(type) {
	case nil:
		i.SetPointer(rp.runMode, rp.pos)
	case string:
		// RESUME NEXT
		i.SetPointer(rp.runMode, rp.pos)
		i.Current().SkipTo(tokens.EndStatement, false)
	case int:
		if w == 0 {
			i.SetPointer(rp.runMode, rp.pos)
		} else {
			i.Jump(w)
		}
	}
}

// ---------------------------------------------------------------------------
// Halting
// ---------------------------------------------------------------------------

func (i *Interpreter) system(a *statements.Args) {
	a.Drain()
	panic(&runerr.Exit{})
}

func (i *Interpreter) stopStatement(a *statements.Args) {
	a.Drain()
	panic(&runerr.Break{Stop: true, Pos: runerr.NoPos})
}

// End halts the program so that CONT can pick up after the END.
func (i *Interpreter) End() {
	if i.runMode {
		i.stop = i.prog.Tell()
	}
	i.SetPointer(false, NoLine)
}

func (i *Interpreter) cont(a *statements.Args) {
	a.Drain()
	if i.stop == NoLine {
		runerr.Raise(runerr.CantContinue)
	}
	i.SetPointer(true, i.stop)
}

// ---------------------------------------------------------------------------
// User functions
// ---------------------------------------------------------------------------

// defFn records the function's parameters and where its body starts in the
// program. The body is evaluated at each call.
func (i *Interpreter) defFn(a *statements.Args) {
	name, _ := statements.Take[string](a)
	// the body lives in the stored program
	if !i.runMode {
		runerr.Raise(runerr.IllegalDirect)
	}
	s := i.prog
	var params []string
	if _, ok := s.SkipBlankReadIf(1, "("); ok {
		for {
			params = append(params, i.parser.Name(s))
			if _, ok := s.SkipBlankReadIf(1, ","); !ok {
				break
			}
		}
		s.RequireRead(")")
	}
	s.RequireRead(tokens.OEq)
	i.memory.DefFn(memory.UserFunction{Name: name, Params: params, Body: s.Tell()})
	s.SkipTo(tokens.EndStatement, true)
}
