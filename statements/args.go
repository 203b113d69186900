package statements

import (
	"iter"

	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// Argument kinds
// ---------------------------------------------------------------------------

// Variable is a scalar or an array element named by a statement.
type Variable struct {
	Name    string // complete name, with sigil
	Indices []int  // nil for a scalar
}

// Coord is a graphics coordinate pair.
type Coord struct {
	X, Y float64
	Step bool
}

// PrintItem is one item of a PRINT or LPRINT list. Sep is "" for a value,
// "," or ";" for a separator, tokens.SPC or tokens.TAB with an int Value,
// or tokens.USING with the format string as Value.
type PrintItem struct {
	Sep   string
	Value any
}

// Prompt is the prompt clause of INPUT and LINE INPUT.
type Prompt struct {
	Newline   bool   // false after a leading semicolon
	Text      string // literal prompt without quotes
	Following string // ";" shows a question mark, "," does not
}

// LineRange is a line number range as in LIST and DELETE. Omitted bounds
// are -1.
type LineRange struct {
	From, To int
}

// LetterRange is a DEFtype letter range. Stop is zero for a single letter.
type LetterRange struct {
	Start, Stop byte
}

// CommonName is an entry of a COMMON list.
type CommonName struct {
	Name  string
	Array bool
}

// ---------------------------------------------------------------------------
// Args
// ---------------------------------------------------------------------------

// Args is the argument list of one statement, decoded as the handler pulls
// it. Lexing happens inside Pull, so a handler may move the cursor between
// pulls and a grammar error surfaces at the pull that hits it.
type Args struct {
	next func() (any, bool)
	stop func()
}

func newArgs(seq iter.Seq[any]) *Args {
	next, stop := iter.Pull(seq)
	return &Args{next: next, stop: stop}
}

// Of returns Args that yield the given values, for driving handlers
// without a token stream.
func Of(vals ...any) *Args {
	return newArgs(func(yield func(any) bool) {
		for _, v := range vals {
			if !yield(v) {
				return
			}
		}
	})
}

// Pull decodes the next argument. ok is false once the grammar is done.
func (a *Args) Pull() (v any, ok bool) { return a.next() }

// Next decodes the next argument, or returns nil when there are none left.
func (a *Args) Next() any {
	v, _ := a.next()
	return v
}

// NextN decodes n arguments, padding with nil.
func (a *Args) NextN(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = a.Next()
	}
	return out
}

// Drain decodes all remaining arguments.
func (a *Args) Drain() []any {
	var out []any
	for {
		v, ok := a.next()
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

// Stop abandons the rest of the argument list without lexing it.
func (a *Args) Stop() { a.stop() }

// Value decodes the next argument as a value, nil if omitted.
func (a *Args) Value() values.Value {
	v, _ := a.Next().(values.Value)
	return v
}

// Take decodes the next argument as a T. ok is false if it was omitted or
// of another kind.
func Take[T any](a *Args) (T, bool) {
	v, ok := a.Next().(T)
	return v, ok
}
