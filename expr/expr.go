// Package expr evaluates BASIC expressions directly from the token stream.
//
// The evaluator reads operands and operators from a codestream.Stream and
// leaves the cursor on the first byte that cannot continue the expression.
// It reaches variables, error state and user functions through Env so that
// it does not depend on the interpreter.
package expr

import (
	"encoding/binary"
	"time"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// maxFnDepth bounds user function recursion.
const maxFnDepth = 100

// Env is what the evaluator needs from its session.
type Env interface {
	Memory() *memory.Memory
	Err() int
	Erl() int
	Inkey() string
	// Program opens a stream on the current program for DEF FN bodies.
	Program() *codestream.Stream
}

// Function evaluates a function whose token has just been read.
type Function func(e *Evaluator, s *codestream.Stream) values.Value

// Evaluator parses and evaluates expressions.
type Evaluator struct {
	env       Env
	functions map[string]Function
	rnd       Randomiser
	now       func() time.Time
	depth     int
}

// New returns an evaluator bound to env.
func New(env Env) *Evaluator {
	e := &Evaluator{
		env:       env,
		functions: make(map[string]Function, len(builtins)),
		rnd:       NewRandomiser(),
		now:       time.Now,
	}
	for tok, fn := range builtins {
		e.functions[tok] = fn
	}
	return e
}

// Register adds or replaces the function for a token.
func (e *Evaluator) Register(token string, fn Function) {
	e.functions[token] = fn
}

// SetClock replaces the clock behind TIMER.
func (e *Evaluator) SetClock(now func() time.Time) { e.now = now }

// Randomiser returns the RND generator.
func (e *Evaluator) Randomiser() *Randomiser { return &e.rnd }

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// Parse evaluates a required expression.
func (e *Evaluator) Parse(s *codestream.Stream) values.Value {
	v, ok := e.ParseOptional(s)
	if !ok {
		if tokens.In(s.SkipBlank(), tokens.EndExpression...) {
			runerr.Raise(runerr.MissingOperand)
		}
		runerr.Raise(runerr.SyntaxError)
	}
	return v
}

// ParseOptional evaluates an expression if one starts at the cursor.
func (e *Evaluator) ParseOptional(s *codestream.Stream) (values.Value, bool) {
	if !e.canStart(s) {
		return nil, false
	}
	return e.binary(s, 0), true
}

// ParseInt evaluates a required expression and rounds it to an integer.
func (e *Evaluator) ParseInt(s *codestream.Stream) int {
	return values.ToInt(e.Parse(s))
}

// ParseString evaluates a required string expression.
func (e *Evaluator) ParseString(s *codestream.Stream) string {
	return string(values.PassString(e.Parse(s)))
}

// ParseIndices reads an optional bracketed subscript list.
func (e *Evaluator) ParseIndices(s *codestream.Stream) []int {
	if _, ok := s.SkipBlankReadIf(1, "(", "["); !ok {
		return nil
	}
	var indices []int
	for {
		indices = append(indices, e.ParseInt(s))
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			break
		}
	}
	s.RequireRead(")", "]")
	return indices
}

// canStart reports whether the next token can begin an operand.
func (e *Evaluator) canStart(s *codestream.Stream) bool {
	d := s.SkipBlank()
	switch {
	case tokens.In(d, tokens.EndExpression...):
		return false
	case tokens.IsNumber(d), tokens.IsLetter(d):
		return true
	case tokens.In(d, `"`, "(", tokens.OMinus, tokens.OPlus, tokens.NOT, tokens.FN, tokens.ERR, tokens.ERL):
		return true
	}
	tok := d
	if d[0] >= 0xfd {
		tok = s.SkipBlankN(2)
	}
	_, ok := e.functions[tok]
	return ok
}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Precedence levels, loosest first.
const (
	levelImp = iota
	levelEqv
	levelXor
	levelOr
	levelAnd
	levelNot
	levelRel
	levelAdd
	levelMod
	levelIntDiv
	levelMul
	levelNeg
	levelPow
)

var binaryOps = map[int][]string{
	levelImp:    {tokens.IMP},
	levelEqv:    {tokens.EQV},
	levelXor:    {tokens.XOR},
	levelOr:     {tokens.OR},
	levelAnd:    {tokens.AND},
	levelAdd:    {tokens.OPlus, tokens.OMinus},
	levelMod:    {tokens.MOD},
	levelIntDiv: {tokens.OIntDiv},
	levelMul:    {tokens.OTimes, tokens.ODiv},
}

var relational = []string{tokens.OGt, tokens.OEq, tokens.OLt}

func (e *Evaluator) binary(s *codestream.Stream, level int) values.Value {
	switch level {
	case levelNot:
		if _, ok := s.SkipBlankReadIf(1, tokens.NOT); ok {
			return values.Not(e.binary(s, levelNot))
		}
		return e.binary(s, levelRel)
	case levelRel:
		return e.relation(s)
	case levelNeg:
		if _, ok := s.SkipBlankReadIf(1, tokens.OMinus); ok {
			return values.Neg(e.binary(s, levelNeg))
		}
		if _, ok := s.SkipBlankReadIf(1, tokens.OPlus); ok {
			return e.binary(s, levelNeg)
		}
		return e.power(s)
	}
	left := e.binary(s, level+1)
	for {
		op, ok := s.SkipBlankReadIf(1, binaryOps[level]...)
		if !ok {
			return left
		}
		right := e.operandAfter(s, level+1)
		left = apply(op, left, right)
	}
}

// operandAfter parses the right-hand side of an operator; an operator at the
// end of the expression is a missing operand.
func (e *Evaluator) operandAfter(s *codestream.Stream, level int) values.Value {
	if tokens.In(s.SkipBlank(), tokens.EndExpression...) {
		runerr.Raise(runerr.MissingOperand)
	}
	return e.binary(s, level)
}

func apply(op string, a, b values.Value) values.Value {
	switch op {
	case tokens.IMP:
		return values.Imp(a, b)
	case tokens.EQV:
		return values.Eqv(a, b)
	case tokens.XOR:
		return values.Xor(a, b)
	case tokens.OR:
		return values.Or(a, b)
	case tokens.AND:
		return values.And(a, b)
	case tokens.OPlus:
		return values.Add(a, b)
	case tokens.OMinus:
		return values.Sub(a, b)
	case tokens.MOD:
		return values.Mod(a, b)
	case tokens.OIntDiv:
		return values.IntDiv(a, b)
	case tokens.OTimes:
		return values.Mul(a, b)
	case tokens.ODiv:
		return values.Div(a, b)
	}
	runerr.Raise(runerr.SyntaxError)
	return nil
}

// relation handles = <> >< < > <= =< >= => which may chain left to right.
func (e *Evaluator) relation(s *codestream.Stream) values.Value {
	left := e.binary(s, levelAdd)
	for {
		op, ok := s.SkipBlankReadIf(1, relational...)
		if !ok {
			return left
		}
		lt, eq, gt := op == tokens.OLt, op == tokens.OEq, op == tokens.OGt
		if second, ok := s.SkipBlankReadIf(1, relational...); ok {
			if second == op {
				runerr.Raise(runerr.SyntaxError)
			}
			lt = lt || second == tokens.OLt
			eq = eq || second == tokens.OEq
			gt = gt || second == tokens.OGt
		}
		right := e.operandAfter(s, levelAdd)
		c := values.Compare(left, right)
		left = values.Bool(c < 0 && lt || c == 0 && eq || c > 0 && gt)
	}
}

// power handles ^, which is left associative and allows a signed exponent.
func (e *Evaluator) power(s *codestream.Stream) values.Value {
	left := e.operand(s)
	for {
		if _, ok := s.SkipBlankReadIf(1, tokens.OCaret); !ok {
			return left
		}
		var right values.Value
		if _, ok := s.SkipBlankReadIf(1, tokens.OMinus); ok {
			right = values.Neg(e.operandAfterCaret(s))
		} else {
			s.SkipBlankReadIf(1, tokens.OPlus)
			right = e.operandAfterCaret(s)
		}
		left = values.Pow(left, right)
	}
}

func (e *Evaluator) operandAfterCaret(s *codestream.Stream) values.Value {
	if tokens.In(s.SkipBlank(), tokens.EndExpression...) {
		runerr.Raise(runerr.MissingOperand)
	}
	return e.operand(s)
}

// ---------------------------------------------------------------------------
// Operands
// ---------------------------------------------------------------------------

func (e *Evaluator) operand(s *codestream.Stream) values.Value {
	d := s.SkipBlank()
	switch {
	case tokens.IsNumber(d):
		return NumberValue(s.ReadNumberToken())
	case d == `"`:
		lit := s.ReadString()
		lit = lit[1:]
		if len(lit) > 0 && lit[len(lit)-1] == '"' {
			lit = lit[:len(lit)-1]
		}
		return values.String(lit)
	case d == "(":
		s.Read(1)
		v := e.Parse(s)
		s.RequireRead(")")
		return v
	case tokens.IsLetter(d):
		name := s.ReadName()
		indices := e.ParseIndices(s)
		return e.env.Memory().GetVariable(name, indices)
	case d == tokens.FN:
		s.Read(1)
		return e.callFn(s)
	case d == tokens.ERR:
		s.Read(1)
		return values.Integer(e.env.Err())
	case d == tokens.ERL:
		s.Read(1)
		return wide(e.env.Erl())
	case d == tokens.NOT:
		s.Read(1)
		return values.Not(e.operandAfterCaret(s))
	case d == tokens.OMinus, d == tokens.OPlus:
		return e.binary(s, levelNeg)
	}
	tok := s.ReadKeywordToken()
	if fn, ok := e.functions[tok]; ok {
		return fn(e, s)
	}
	s.SeekRel(-len(tok))
	if tokens.In(d, tokens.EndExpression...) {
		runerr.Raise(runerr.MissingOperand)
	}
	runerr.Raise(runerr.SyntaxError)
	return nil
}

// wide returns n as an Integer if it fits, else as a Single.
func wide(n int) values.Value {
	if n < -32768 || n > 32767 {
		return values.Single(n)
	}
	return values.Integer(n)
}

// NumberValue decodes a number token read with ReadNumberToken.
func NumberValue(tok string) values.Value {
	if tok == "" {
		runerr.Raise(runerr.SyntaxError)
	}
	lead, operand := tok[:1], []byte(tok[1:])
	switch {
	case lead[0] >= tokens.C0[0] && lead[0] <= tokens.C10[0]:
		return values.Integer(lead[0] - tokens.C0[0])
	case lead == tokens.TByte && len(operand) == 1:
		return values.Integer(operand[0])
	case tokens.In(lead, tokens.TInt, tokens.THex, tokens.TOct) && len(operand) == 2:
		return values.Integer(int16(binary.LittleEndian.Uint16(operand)))
	case tokens.In(lead, tokens.TUint, tokens.TUintPtr) && len(operand) == 2:
		return wide(int(binary.LittleEndian.Uint16(operand)))
	case lead == tokens.TSingle && len(operand) == 4:
		return values.SingleFromMBF([4]byte(operand))
	case lead == tokens.TDouble && len(operand) == 8:
		return values.DoubleFromMBF([8]byte(operand))
	}
	runerr.Raise(runerr.SyntaxError)
	return nil
}

// callFn evaluates FN name(args) by binding the parameters and evaluating the
// stored body from the program.
func (e *Evaluator) callFn(s *codestream.Stream) values.Value {
	name := s.ReadName()
	if name == "" {
		runerr.Raise(runerr.SyntaxError)
	}
	mem := e.env.Memory()
	fn, ok := mem.Fn(name)
	if !ok {
		runerr.Raise(runerr.UndefinedUserFunction)
	}
	var args []values.Value
	if _, ok := s.SkipBlankReadIf(1, "("); ok {
		for {
			args = append(args, e.Parse(s))
			if _, ok := s.SkipBlankReadIf(1, ","); !ok {
				break
			}
		}
		s.RequireRead(")")
	}
	if len(args) != len(fn.Params) {
		runerr.Raise(runerr.SyntaxError)
	}
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > maxFnDepth {
		runerr.Raise(runerr.OutOfMemory)
	}
	restore := mem.Shadow(fn.Params, args)
	defer restore()
	body := e.env.Program()
	body.Seek(fn.Body)
	v := e.Parse(body)
	return values.ToType(fn.Name[len(fn.Name)-1], v)
}
