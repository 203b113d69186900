package interp

import (
	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// FOR and NEXT
// ---------------------------------------------------------------------------

func (i *Interpreter) forStatement(a *statements.Args) {
	name, _ := statements.Take[string](a)
	sigil := name[len(name)-1]
	start := values.ToType(sigil, a.Value())
	if sigil == values.StringSigil || sigil == values.DoubleSigil {
		runerr.Raise(runerr.TypeMismatch)
	}
	stop := values.ToType(sigil, a.Value())
	step := a.Value()
	a.Drain()
	if step == nil {
		step = values.ToType(sigil, values.Integer(1))
	} else {
		step = values.ToType(sigil, step)
	}
	s := i.Current()
	forPos, nextPos := i.findNext(s, name)
	counter := i.memory.View(name)
	counter.Set(start)
	sign := values.Sign(step)
	i.forStack = append(i.forStack, forFrame{
		name: name, counter: counter, stop: stop, step: step,
		sign: sign, forPos: forPos, nextPos: nextPos,
	})
	log.Debugf("FOR %s frame %d..%d", name, forPos, nextPos)
	// an empty loop skips straight to its NEXT
	if sign > 0 && values.Gt(start, stop) || sign <= 0 && values.Gt(stop, start) {
		s.Seek(nextPos)
		i.iterate()
	}
}

// findNext locates the NEXT closing the FOR whose statement ends at the
// cursor, and returns the FOR end and the position after NEXT's variable.
// The cursor is left where it was.
func (i *Interpreter) findNext(s *codestream.Stream, name string) (forPos, nextPos int) {
	forPos = s.Tell()
	s.SkipBlock(tokens.FOR, tokens.NEXT, true)
	if !tokens.In(s.SkipBlank(), tokens.NEXT, ",") {
		// reported on the FOR line
		s.Seek(forPos)
		runerr.Raise(runerr.ForWithoutNext)
	}
	comma := s.Read(1) == ","
	// a bare NEXT closes any loop; after a comma a name is required
	var name2 string
	if !tokens.In(s.SkipBlank(), tokens.EndStatement...) {
		name2 = i.parser.Name(s)
	}
	nextPos = s.Tell()
	if (comma || name2 != "") && name2 != name {
		runerr.Raise(runerr.NextWithoutFor)
	}
	s.Seek(forPos)
	return forPos, nextPos
}

func (i *Interpreter) nextStatement(a *statements.Args) {
	for {
		if _, ok := a.Pull(); !ok {
			return
		}
		if i.iterate() {
			return
		}
	}
}

// iterate advances the loop whose NEXT variable ends at the cursor. Loops
// nested inside it that were left without NEXT are dropped. It reports
// whether the loop goes round again.
func (i *Interpreter) iterate() bool {
	s := i.Current()
	pos := s.Tell()
	depth := -1
	for d := len(i.forStack) - 1; d >= 0; d-- {
		if i.forStack[d].nextPos == pos {
			depth = d
			break
		}
	}
	if depth < 0 {
		runerr.Raise(runerr.NextWithoutFor)
	}
	i.forStack = i.forStack[:depth+1]
	f := i.forStack[depth]
	f.counter.Add(f.step)
	var ends bool
	if f.sign > 0 {
		ends = values.Gt(f.counter.Get(), f.stop)
	} else {
		ends = values.Gt(f.stop, f.counter.Get())
	}
	if ends {
		log.Debugf("NEXT %s done", f.name)
		i.forStack = i.forStack[:depth]
	} else {
		s.Seek(f.forPos)
	}
	return !ends
}

// ---------------------------------------------------------------------------
// WHILE and WEND
// ---------------------------------------------------------------------------

func (i *Interpreter) whileStatement(a *statements.Args) {
	a.Drain()
	s := i.Current()
	whilePos, wendPos := findWend(s)
	i.whileStack = append(i.whileStack, whileFrame{whilePos: whilePos, wendPos: wendPos})
	i.checkWhile(s, whilePos)
}

// findWend locates the WEND matching the WHILE just read.
func findWend(s *codestream.Stream) (whilePos, wendPos int) {
	whilePos = s.Tell()
	s.SkipBlock(tokens.WHILE, tokens.WEND, false)
	if s.Read(1) != tokens.WEND {
		s.Seek(whilePos)
		runerr.Raise(runerr.WhileWithoutWend)
	}
	s.SkipTo(tokens.EndStatement, true)
	wendPos = s.Tell()
	s.Seek(whilePos)
	return whilePos, wendPos
}

// checkWhile evaluates the condition at whilePos: true continues into the
// body, false pops the frame and continues after WEND.
func (i *Interpreter) checkWhile(s *codestream.Stream, whilePos int) {
	s.Seek(whilePos)
	cond := values.PassNumber(i.parser.Expression(s))
	if !values.IsZero(cond) {
		// the statement starts before the WHILE token
		i.currentStatement = whilePos - 2
		s.RequireEnd()
		return
	}
	f := i.whileStack[len(i.whileStack)-1]
	i.whileStack = i.whileStack[:len(i.whileStack)-1]
	s.Seek(f.wendPos)
}

func (i *Interpreter) wendStatement(a *statements.Args) {
	a.Drain()
	s := i.Current()
	pos := s.Tell()
	for {
		if len(i.whileStack) == 0 {
			runerr.Raise(runerr.WendWithoutWhile)
		}
		if i.whileStack[len(i.whileStack)-1].wendPos == pos {
			break
		}
		// a loop that was jumped out of
		i.whileStack = i.whileStack[:len(i.whileStack)-1]
	}
	i.checkWhile(s, i.whileStack[len(i.whileStack)-1].whilePos)
}
