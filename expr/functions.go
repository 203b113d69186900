package expr

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// Argument helpers
// ---------------------------------------------------------------------------

// args reads a parenthesised list of lo..hi expressions.
func (e *Evaluator) args(s *codestream.Stream, lo, hi int) []values.Value {
	s.RequireRead("(")
	out := []values.Value{e.Parse(s)}
	for len(out) < hi {
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			break
		}
		out = append(out, e.Parse(s))
	}
	s.RequireRead(")")
	if len(out) < lo {
		runerr.Raise(runerr.MissingOperand)
	}
	return out
}

func (e *Evaluator) arg(s *codestream.Stream) values.Value {
	return e.args(s, 1, 1)[0]
}

// number wraps a float64 function into a BASIC function that keeps double
// precision for double arguments and returns single otherwise.
func number(fn func(float64) float64) Function {
	return func(e *Evaluator, s *codestream.Stream) values.Value {
		x := values.PassNumber(e.arg(s))
		r := fn(values.ToFloat(x))
		if math.IsNaN(r) {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		return values.ToType(floatSigil(x), values.Double(r))
	}
}

func floatSigil(v values.Value) byte {
	if v.Sigil() == values.DoubleSigil {
		return values.DoubleSigil
	}
	return values.SingleSigil
}

// typed wraps a function that keeps the type of its numeric argument.
func typed(fn func(float64) float64) Function {
	return func(e *Evaluator, s *codestream.Stream) values.Value {
		x := values.PassNumber(e.arg(s))
		return values.ToType(x.Sigil(), values.Double(fn(values.ToFloat(x))))
	}
}

func str(v values.Value) string { return string(values.PassString(v)) }

// ---------------------------------------------------------------------------
// Built-in functions
// ---------------------------------------------------------------------------

var builtins = map[string]Function{
	tokens.ABS: typed(math.Abs),
	tokens.INT: typed(math.Floor),
	tokens.FIX: typed(math.Trunc),
	tokens.SGN: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.Integer(values.Sign(e.arg(s)))
	},
	tokens.SQR: number(func(x float64) float64 {
		if x < 0 {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		return math.Sqrt(x)
	}),
	tokens.SIN: number(math.Sin),
	tokens.COS: number(math.Cos),
	tokens.TAN: number(math.Tan),
	tokens.ATN: number(math.Atan),
	tokens.EXP: number(func(x float64) float64 {
		r := math.Exp(x)
		if r > math.MaxFloat32 {
			runerr.Raise(runerr.Overflow)
		}
		return r
	}),
	tokens.LOG: number(func(x float64) float64 {
		if x <= 0 {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		return math.Log(x)
	}),
	tokens.CINT: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.ToType(values.IntSigil, e.arg(s))
	},
	tokens.CSNG: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.ToType(values.SingleSigil, e.arg(s))
	},
	tokens.CDBL: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.ToType(values.DoubleSigil, e.arg(s))
	},
	tokens.RND: func(e *Evaluator, s *codestream.Stream) values.Value {
		var x values.Value = values.Integer(1)
		if s.SkipBlank() == "(" {
			x = e.arg(s)
		}
		return e.rnd.Rnd(x)
	},
	tokens.TIMER: func(e *Evaluator, s *codestream.Stream) values.Value {
		t := e.now()
		midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		return values.Single(float32(t.Sub(midnight).Seconds()))
	},
	tokens.INKEY: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.String(e.env.Inkey())
	},

	tokens.LEN: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.Integer(len(str(e.arg(s))))
	},
	tokens.ASC: func(e *Evaluator, s *codestream.Stream) values.Value {
		v := str(e.arg(s))
		if v == "" {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		return values.Integer(v[0])
	},
	tokens.CHR: func(e *Evaluator, s *codestream.Stream) values.Value {
		n := values.ToInt(e.arg(s))
		runerr.RangeCheck(0, 255, n)
		return values.String([]byte{byte(n)})
	},
	tokens.STR: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.String(values.Repr(values.PassNumber(e.arg(s))))
	},
	tokens.VAL: func(e *Evaluator, s *codestream.Stream) values.Value {
		return Val(str(e.arg(s)))
	},
	tokens.LEFT: func(e *Evaluator, s *codestream.Stream) values.Value {
		a := e.args(s, 2, 2)
		v, n := str(a[0]), values.ToInt(a[1])
		runerr.RangeCheck(0, 255, n)
		return values.String(v[:min(n, len(v))])
	},
	tokens.RIGHT: func(e *Evaluator, s *codestream.Stream) values.Value {
		a := e.args(s, 2, 2)
		v, n := str(a[0]), values.ToInt(a[1])
		runerr.RangeCheck(0, 255, n)
		return values.String(v[len(v)-min(n, len(v)):])
	},
	tokens.MID: func(e *Evaluator, s *codestream.Stream) values.Value {
		a := e.args(s, 2, 3)
		v, start := str(a[0]), values.ToInt(a[1])
		n := 255
		if len(a) == 3 {
			n = values.ToInt(a[2])
		}
		runerr.RangeCheck(1, 255, start)
		runerr.RangeCheck(0, 255, n)
		if start > len(v) {
			return values.String("")
		}
		v = v[start-1:]
		return values.String(v[:min(n, len(v))])
	},
	tokens.SPACE: func(e *Evaluator, s *codestream.Stream) values.Value {
		n := values.ToInt(e.arg(s))
		runerr.RangeCheck(0, 255, n)
		return values.String(strings.Repeat(" ", n))
	},
	tokens.STRING: func(e *Evaluator, s *codestream.Stream) values.Value {
		a := e.args(s, 2, 2)
		n := values.ToInt(a[0])
		runerr.RangeCheck(0, 255, n)
		var c byte
		if text, ok := a[1].(values.String); ok {
			if text == "" {
				runerr.Raise(runerr.IllegalFunctionCall)
			}
			c = text[0]
		} else {
			code := values.ToInt(a[1])
			runerr.RangeCheck(0, 255, code)
			c = byte(code)
		}
		return values.String(strings.Repeat(string([]byte{c}), n))
	},
	tokens.INSTR: func(e *Evaluator, s *codestream.Stream) values.Value {
		a := e.args(s, 2, 3)
		start := 1
		if values.IsNumber(a[0]) {
			start = values.ToInt(a[0])
			runerr.RangeCheck(1, 255, start)
			a = a[1:]
		}
		if len(a) != 2 {
			runerr.Raise(runerr.SyntaxError)
		}
		hay, needle := str(a[0]), str(a[1])
		if start > len(hay) {
			return values.Integer(0)
		}
		if needle == "" {
			return values.Integer(start)
		}
		i := strings.Index(hay[start-1:], needle)
		if i < 0 {
			return values.Integer(0)
		}
		return values.Integer(start + i)
	},
	tokens.HEX: func(e *Evaluator, s *codestream.Stream) values.Value {
		n := values.ToUint(e.arg(s))
		return values.String(strings.ToUpper(strconv.FormatInt(int64(n), 16)))
	},
	tokens.OCT: func(e *Evaluator, s *codestream.Stream) values.Value {
		n := values.ToUint(e.arg(s))
		return values.String(strconv.FormatInt(int64(n), 8))
	},

	tokens.CVI: func(e *Evaluator, s *codestream.Stream) values.Value {
		b := fixedBytes(str(e.arg(s)), 2)
		return values.Integer(int16(binary.LittleEndian.Uint16(b)))
	},
	tokens.CVS: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.SingleFromMBF([4]byte(fixedBytes(str(e.arg(s)), 4)))
	},
	tokens.CVD: func(e *Evaluator, s *codestream.Stream) values.Value {
		return values.DoubleFromMBF([8]byte(fixedBytes(str(e.arg(s)), 8)))
	},
	tokens.MKI: func(e *Evaluator, s *codestream.Stream) values.Value {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(values.ToInt(e.arg(s))))
		return values.String(b[:])
	},
	tokens.MKS: func(e *Evaluator, s *codestream.Stream) values.Value {
		b := values.MBFSingle(values.ToType(values.SingleSigil, e.arg(s)).(values.Single))
		return values.String(b[:])
	},
	tokens.MKD: func(e *Evaluator, s *codestream.Stream) values.Value {
		b := values.MBFDouble(values.ToType(values.DoubleSigil, e.arg(s)).(values.Double))
		return values.String(b[:])
	},
}

// fixedBytes returns the first n bytes of v, raising Illegal function call
// if v is shorter.
func fixedBytes(v string, n int) []byte {
	if len(v) < n {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	return []byte(v[:n])
}

// Val converts the leading numeric part of a string, as VAL and INPUT do.
// Text that is not a number yields zero.
func Val(text string) values.Value {
	s := codestream.New(strings.TrimLeft(text, tokens.Blanks))
	word := s.ReadNumber()
	v, ok := values.FromRepr(word)
	if !ok {
		return values.Single(0)
	}
	if n, isInt := v.(values.Integer); isInt {
		return values.Single(n)
	}
	return v
}

// ---------------------------------------------------------------------------
// RND
// ---------------------------------------------------------------------------

const (
	rndMultiplier = 214013
	rndIncrement  = 2531011
	rndPeriod     = 1 << 24
	rndInitial    = 5228370
)

// Randomiser is the linear congruential generator behind RND.
type Randomiser struct {
	seed uint32
}

// NewRandomiser returns a generator in its power-on state.
func NewRandomiser() Randomiser {
	return Randomiser{seed: rndInitial}
}

// Seed returns the generator state.
func (r *Randomiser) Seed() uint32 { return r.seed }

// SetSeed restores the generator state.
func (r *Randomiser) SetSeed(seed uint32) { r.seed = seed % rndPeriod }

// Randomize reseeds from a number (RANDOMIZE n).
func (r *Randomiser) Randomize(v values.Value) {
	bits := math.Float64bits(values.ToFloat(values.PassNumber(v)))
	r.seed = uint32(bits^bits>>32) % rndPeriod
}

func (r *Randomiser) next() {
	r.seed = uint32((uint64(r.seed)*rndMultiplier + rndIncrement) % rndPeriod)
}

// Rnd implements RND(x): a negative x reseeds, zero repeats the last value
// and anything else advances the sequence.
func (r *Randomiser) Rnd(x values.Value) values.Value {
	switch values.Sign(x) {
	case -1:
		bits := math.Float32bits(float32(values.ToFloat(x)))
		r.seed = (bits + bits>>24) % rndPeriod
		r.next()
	case 1:
		r.next()
	}
	return values.Single(float32(r.seed) / rndPeriod)
}
