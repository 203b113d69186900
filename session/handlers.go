package session

import (
	"github.com/chazu/gwbasic/interp"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/tokenise"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// register installs the handlers of statements that reach beyond the
// execution pointer. Statements without a handler here or in interp have
// their arguments checked and do nothing.
func (s *Session) register() {
	p := s.parser
	// program
	p.Register(tokens.END, s.end)
	p.Register(tokens.NEW, s.newStatement)
	p.Register(tokens.RUN, s.runStatement)
	p.Register(tokens.CLEAR, s.clearStatement)
	p.Register(tokens.LIST, s.listStatement)
	p.Register(tokens.DELETE, s.deleteStatement)
	// variables
	p.Register(tokens.LET, s.let)
	p.Register(tokens.LSET, s.lset)
	p.Register(tokens.RSET, s.rset)
	p.Register(tokens.MID, s.midStatement)
	p.Register(tokens.DIM, s.dim)
	p.Register(tokens.ERASE, s.erase)
	p.Register(tokens.SWAP, s.swap)
	p.Register(tokens.DEFINT, s.deftype(values.IntSigil))
	p.Register(tokens.DEFSNG, s.deftype(values.SingleSigil))
	p.Register(tokens.DEFDBL, s.deftype(values.DoubleSigil))
	p.Register(tokens.DEFSTR, s.deftype(values.StringSigil))
	p.Register(tokens.OPTION, s.optionBase)
	p.Register(tokens.RANDOMIZE, s.randomize)
	p.Register(tokens.ERROR, s.errorStatement)
	// console
	p.Register(tokens.PRINT, s.print)
	p.Register(tokens.WRITE, s.write)
	p.Register(tokens.INPUT, s.input)
	p.Register(tokens.LINE+tokens.INPUT, s.lineInput)
	p.Register(tokens.CLS, s.cls)
	p.Register(tokens.KEY, s.keyDefine)
	p.Register(tokens.KEY+tokens.ON, s.keyMacro)
	p.Register(tokens.KEY+tokens.OFF, s.keyMacro)
	p.Register(tokens.KEY+tokens.LIST, s.keyMacro)
	// events
	s.registerEvents()
	// library
	p.Register(tokens.SAVE, s.save)
	p.Register(tokens.LOAD, s.load)
	p.Register(tokens.MERGE, s.merge)
	p.Register(tokens.KILL, s.kill)
	p.Register(tokens.FILES, s.files)
	// extensions
	p.Register("_DEBUG", s.debug)
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

func (s *Session) end(a *statements.Args) {
	a.Drain()
	s.interp.End()
}

func (s *Session) newStatement(a *statements.Args) {
	a.Drain()
	s.program.Erase()
	s.protected = false
	s.clear()
}

func (s *Session) runStatement(a *statements.Args) {
	first := a.Next()
	// the ,R flag keeps files open; there are no files to keep
	a.Next()
	switch v := first.(type) {
	case int:
		s.run(v)
	case values.String:
		s.loadFromLibrary(string(v))
		s.run(interp.NoLine)
	default:
		s.run(interp.NoLine)
	}
}

func (s *Session) clearStatement(a *statements.Args) {
	// memory and stack sizes are accepted and ignored
	a.Drain()
	s.clear()
}

func (s *Session) listStatement(a *statements.Args) {
	r, _ := statements.Take[statements.LineRange](a)
	dest := a.Next()
	if s.protected {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	if name, ok := dest.(values.String); ok {
		s.saveASCII(string(name), r.From, r.To)
	} else {
		if r.From < 0 {
			r.From = 0
		}
		for line := range s.program.Lines(r.From, r.To) {
			s.console.Fresh()
			s.console.WriteString(tokenise.ListLine(line.Number, line.Body) + "\n")
		}
	}
	// LIST returns to the prompt
	if s.interp.RunMode() {
		s.interp.SetPointer(false, interp.NoLine)
	}
}

func (s *Session) deleteStatement(a *statements.Args) {
	r, _ := statements.Take[statements.LineRange](a)
	if r.From < 0 && r.To < 0 {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	if r.From < 0 {
		r.From = 0
	}
	runerr.Rethrow(s.program.Delete(r.From, r.To))
	s.clear()
}

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

func (s *Session) let(a *statements.Args) {
	v, _ := statements.Take[statements.Variable](a)
	s.memory.SetVariable(v.Name, v.Indices, a.Value())
}

func (s *Session) lset(a *statements.Args) {
	v, _ := statements.Take[statements.Variable](a)
	s.memory.LSet(v.Name, v.Indices, a.Value())
}

func (s *Session) rset(a *statements.Args) {
	v, _ := statements.Take[statements.Variable](a)
	s.memory.RSet(v.Name, v.Indices, a.Value())
}

func (s *Session) midStatement(a *statements.Args) {
	v, _ := statements.Take[statements.Variable](a)
	start, _ := statements.Take[int](a)
	num := -1
	if n, ok := statements.Take[int](a); ok {
		runerr.RangeCheck(0, 255, n)
		num = n
	}
	s.memory.MidSet(v.Name, v.Indices, start, num, a.Value())
}

func (s *Session) dim(a *statements.Args) {
	for {
		v, ok := statements.Take[statements.Variable](a)
		if !ok {
			return
		}
		s.memory.Dim(v.Name, v.Indices)
	}
}

func (s *Session) erase(a *statements.Args) {
	for {
		name, ok := statements.Take[string](a)
		if !ok {
			return
		}
		s.memory.Erase(name)
	}
}

func (s *Session) swap(a *statements.Args) {
	v1, _ := statements.Take[statements.Variable](a)
	v2, _ := statements.Take[statements.Variable](a)
	s.memory.Swap(v1.Name, v1.Indices, v2.Name, v2.Indices)
}

func (s *Session) deftype(sigil byte) statements.Handler {
	return func(a *statements.Args) {
		for {
			r, ok := statements.Take[statements.LetterRange](a)
			if !ok {
				return
			}
			stop := r.Stop
			if stop == 0 {
				stop = r.Start
			}
			s.memory.DefType(sigil, r.Start, stop)
		}
	}
}

func (s *Session) optionBase(a *statements.Args) {
	base, _ := statements.Take[int](a)
	s.memory.SetBase(base)
}

func (s *Session) randomize(a *statements.Args) {
	v := a.Value()
	if v == nil {
		// ask for the seed until a number is given
		for {
			s.console.WriteString("Random number seed (-32768 to 32767)? ")
			if n, ok := values.FromRepr(s.console.ReadLine()); ok {
				v = n
				break
			}
		}
	}
	s.eval.Randomiser().Randomize(v)
}

func (s *Session) errorStatement(a *statements.Args) {
	code := values.ToInt(a.Value())
	runerr.RangeCheck(1, 255, code)
	runerr.Raise(code)
}
