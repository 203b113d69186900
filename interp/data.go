package interp

import (
	"strings"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// DATA, READ and RESTORE
// ---------------------------------------------------------------------------

func (i *Interpreter) restoreStatement(a *statements.Args) {
	n := lineArg(a)
	if n == NoLine {
		i.dataPos = 0
		return
	}
	pos, ok := i.program.LineOffset(n)
	if !ok {
		runerr.Raise(runerr.UndefinedLineNumber)
	}
	i.dataPos = pos
}

func (i *Interpreter) readStatement(a *statements.Args) {
	for {
		v, ok := statements.Take[statements.Variable](a)
		if !ok {
			return
		}
		val, next := i.readData(v.Name)
		i.memory.SetVariable(v.Name, v.Indices, val)
		i.dataPos = next
	}
}

// readData reads the DATA item at the DATA pointer as a value for the named
// variable and returns it with the position of the following item. The
// program cursor is left where it was.
func (i *Interpreter) readData(name string) (values.Value, int) {
	s := i.prog
	current := s.Tell()
	s.Seek(i.dataPos)
	if tokens.In(s.Peek(1), tokens.EndStatement...) {
		// find the first DATA from here
		s.SkipTo([]string{tokens.DATA}, true)
	}
	if !tokens.In(s.Read(1), tokens.DATA, ",") {
		s.Seek(current)
		runerr.Raise(runerr.OutOfData)
	}
	item := s.Tell()
	s.SkipBlank()
	word := s.ReadTo(",", tokens.Quote, tokens.LineMarker, tokens.Separator)
	if s.Peek(1) == tokens.Quote {
		if word == "" {
			word = strings.Trim(s.ReadString(), tokens.Quote)
		} else {
			word += s.ReadString()
		}
		if !tokens.In(s.SkipBlank(), append([]string{","}, tokens.EndStatement...)...) {
			s.Seek(current)
			runerr.RaiseAt(runerr.SyntaxError, item-1)
		}
	} else {
		word = strings.Trim(word, tokens.Blanks)
	}
	next := s.Tell()
	var v values.Value
	if name[len(name)-1] == values.StringSigil {
		v = values.String(word)
	} else {
		num, ok := values.FromRepr(word)
		if !ok {
			// reported on the DATA line, not as a type mismatch; the
			// pointer stays so that the item is read again
			s.Seek(current)
			runerr.RaiseAt(runerr.SyntaxError, item-1)
		}
		v = num
	}
	s.Seek(current)
	return v, next
}
