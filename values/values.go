// Package values implements BASIC's four value types and the operators
// defined on them.
//
// Integer is a 16-bit signed integer, Single and Double are binary floating
// point numbers stored in the token stream in Microsoft Binary Format, and
// String is a byte string of at most 255 bytes. Operators follow the usual
// promotion rules: integers combine as integers, any double makes the result
// double, otherwise single. Type and range errors are raised as runerr
// panics so callers deep inside the evaluator need not thread errors.
package values

import (
	"math"
	"strconv"

	"github.com/chazu/gwbasic/runerr"
)

// MaxStringLength is the longest string a variable can hold.
const MaxStringLength = 255

// Type sigils.
const (
	IntSigil    byte = '%'
	SingleSigil byte = '!'
	DoubleSigil byte = '#'
	StringSigil byte = '$'
)

// Value is a BASIC value.
type Value interface {
	Sigil() byte
}

type (
	Integer int16
	Single  float32
	Double  float64
	String  string
)

func (Integer) Sigil() byte { return IntSigil }
func (Single) Sigil() byte  { return SingleSigil }
func (Double) Sigil() byte  { return DoubleSigil }
func (String) Sigil() byte  { return StringSigil }

// True and False are the results of relational and logical operators.
const (
	True  = Integer(-1)
	False = Integer(0)
)

// Bool converts a Go bool to BASIC truth.
func Bool(b bool) Integer {
	if b {
		return True
	}
	return False
}

// Zero returns the default value for a sigil.
func Zero(sigil byte) Value {
	switch sigil {
	case IntSigil:
		return Integer(0)
	case DoubleSigil:
		return Double(0)
	case StringSigil:
		return String("")
	default:
		return Single(0)
	}
}

// IsNumber reports whether v is numeric.
func IsNumber(v Value) bool {
	_, ok := v.(String)
	return v != nil && !ok
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

// PassNumber raises Type mismatch unless v is numeric.
func PassNumber(v Value) Value {
	if !IsNumber(v) {
		runerr.Raise(runerr.TypeMismatch)
	}
	return v
}

// PassString raises Type mismatch unless v is a string.
func PassString(v Value) String {
	s, ok := v.(String)
	if !ok {
		runerr.Raise(runerr.TypeMismatch)
	}
	return s
}

// ToFloat returns a numeric value as float64.
func ToFloat(v Value) float64 {
	switch n := PassNumber(v).(type) {
	case Integer:
		return float64(n)
	case Single:
		return float64(n)
	case Double:
		return float64(n)
	}
	return 0
}

// ToInt rounds a numeric value to a 16-bit signed integer.
func ToInt(v Value) int {
	if i, ok := v.(Integer); ok {
		return int(i)
	}
	f := math.Round(ToFloat(v))
	if f < -32768 || f > 32767 {
		runerr.Raise(runerr.Overflow)
	}
	return int(f)
}

// ToUint rounds a numeric value into the range -32768..65535, folding values
// above 32767 the way address arguments are interpreted.
func ToUint(v Value) int {
	f := math.Round(ToFloat(v))
	if f < -32768 || f > 65535 {
		runerr.Raise(runerr.Overflow)
	}
	n := int(f)
	if n < 0 {
		n += 0x10000
	}
	return n
}

// ToType converts v to the type named by sigil.
func ToType(sigil byte, v Value) Value {
	if sigil == StringSigil {
		return PassString(v)
	}
	switch sigil {
	case IntSigil:
		return Integer(ToInt(v))
	case DoubleSigil:
		if s, ok := v.(Single); ok {
			return Double(singleToDouble(s))
		}
		return Double(ToFloat(v))
	default:
		return checkSingle(ToFloat(v))
	}
}

// singleToDouble widens through the decimal representation so that
// 0.1! becomes 0.1# rather than 0.100000001490116.
func singleToDouble(s Single) float64 {
	f, err := strconv.ParseFloat(strconv.FormatFloat(float64(s), 'e', 6, 32), 64)
	if err != nil {
		return float64(s)
	}
	return f
}

func checkSingle(f float64) Single {
	if math.IsInf(f, 0) || math.Abs(f) > math.MaxFloat32 {
		runerr.Raise(runerr.Overflow)
	}
	return Single(f)
}

func checkDouble(f float64) Double {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		runerr.Raise(runerr.Overflow)
	}
	return Double(f)
}

func checkInteger(n int) Integer {
	if n < -32768 || n > 32767 {
		runerr.Raise(runerr.Overflow)
	}
	return Integer(n)
}

// promote keeps an integer result as Integer when it fits and widens it to
// Single otherwise.
func promote(n int) Value {
	if n < -32768 || n > 32767 {
		return checkSingle(float64(n))
	}
	return Integer(n)
}

// IsZero reports whether a numeric value is zero. Strings raise Type mismatch.
func IsZero(v Value) bool {
	return ToFloat(v) == 0
}

// Sign returns -1, 0 or 1.
func Sign(v Value) int {
	f := ToFloat(v)
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	}
	return 0
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

// widest returns the sigil both operands promote to.
func widest(a, b Value) byte {
	PassNumber(a)
	PassNumber(b)
	switch {
	case a.Sigil() == DoubleSigil || b.Sigil() == DoubleSigil:
		return DoubleSigil
	case a.Sigil() == SingleSigil || b.Sigil() == SingleSigil:
		return SingleSigil
	}
	return IntSigil
}

func float(sigil byte, f float64) Value {
	if sigil == DoubleSigil {
		return checkDouble(f)
	}
	return checkSingle(f)
}

// Add implements + for numbers and string concatenation.
func Add(a, b Value) Value {
	if sa, ok := a.(String); ok {
		sb := PassString(b)
		if len(sa)+len(sb) > MaxStringLength {
			runerr.Raise(runerr.StringTooLong)
		}
		return sa + sb
	}
	switch widest(a, b) {
	case IntSigil:
		return promote(int(a.(Integer)) + int(b.(Integer)))
	case DoubleSigil:
		return checkDouble(ToFloat(ToType(DoubleSigil, a)) + ToFloat(ToType(DoubleSigil, b)))
	}
	return checkSingle(float64(float32(ToFloat(a)) + float32(ToFloat(b))))
}

// Sub implements binary minus.
func Sub(a, b Value) Value {
	return Add(a, Neg(b))
}

// Neg implements unary minus.
func Neg(a Value) Value {
	switch n := PassNumber(a).(type) {
	case Integer:
		if n == -32768 {
			return Single(32768)
		}
		return -n
	case Single:
		return -n
	case Double:
		return -n
	}
	return a
}

// Mul implements *.
func Mul(a, b Value) Value {
	switch widest(a, b) {
	case IntSigil:
		return promote(int(a.(Integer)) * int(b.(Integer)))
	case DoubleSigil:
		return checkDouble(ToFloat(ToType(DoubleSigil, a)) * ToFloat(ToType(DoubleSigil, b)))
	}
	return checkSingle(float64(float32(ToFloat(a)) * float32(ToFloat(b))))
}

// Div implements /, which always yields a floating point result.
func Div(a, b Value) Value {
	sigil := widest(a, b)
	if sigil == IntSigil {
		sigil = SingleSigil
	}
	d := ToFloat(ToType(sigil, b))
	if d == 0 {
		runerr.Raise(runerr.DivisionByZero)
	}
	return float(sigil, ToFloat(ToType(sigil, a))/d)
}

// IntDiv implements \ on values rounded to integers.
func IntDiv(a, b Value) Value {
	x, y := ToInt(a), ToInt(b)
	if y == 0 {
		runerr.Raise(runerr.DivisionByZero)
	}
	return checkInteger(x / y)
}

// Mod implements MOD on values rounded to integers.
func Mod(a, b Value) Value {
	x, y := ToInt(a), ToInt(b)
	if y == 0 {
		runerr.Raise(runerr.DivisionByZero)
	}
	return Integer(x % y)
}

// Pow implements ^.
func Pow(a, b Value) Value {
	sigil := widest(a, b)
	if sigil == IntSigil {
		sigil = SingleSigil
	}
	x, y := ToFloat(a), ToFloat(b)
	if x == 0 && y < 0 {
		runerr.Raise(runerr.DivisionByZero)
	}
	if x < 0 && y != math.Trunc(y) {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	return float(sigil, math.Pow(x, y))
}

// ---------------------------------------------------------------------------
// Relations
// ---------------------------------------------------------------------------

// Compare returns -1, 0 or 1. Strings compare bytewise; mixing a string with
// a number raises Type mismatch.
func Compare(a, b Value) int {
	if sa, ok := a.(String); ok {
		sb := PassString(b)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	}
	PassNumber(b)
	x, y := ToFloat(a), ToFloat(b)
	if widest(a, b) == SingleSigil {
		x, y = float64(float32(x)), float64(float32(y))
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// Eq reports whether a equals b.
func Eq(a, b Value) bool { return Compare(a, b) == 0 }

// Gt reports whether a is greater than b.
func Gt(a, b Value) bool { return Compare(a, b) > 0 }

// ---------------------------------------------------------------------------
// Logical operators on 16-bit integers
// ---------------------------------------------------------------------------

func bits(v Value) uint16 {
	return uint16(int16(ToInt(v)))
}

func Not(a Value) Value { return Integer(int16(^bits(a))) }

func And(a, b Value) Value { return Integer(int16(bits(a) & bits(b))) }

func Or(a, b Value) Value { return Integer(int16(bits(a) | bits(b))) }

func Xor(a, b Value) Value { return Integer(int16(bits(a) ^ bits(b))) }

func Eqv(a, b Value) Value { return Integer(int16(^(bits(a) ^ bits(b)))) }

func Imp(a, b Value) Value { return Integer(int16(^bits(a) | bits(b))) }
