package values

import (
	"math"
	"strconv"
	"strings"

	"github.com/chazu/gwbasic/runerr"
)

// ---------------------------------------------------------------------------
// Parsing literals
// ---------------------------------------------------------------------------

// FromRepr converts a numeric literal as written in program text, DATA or
// INPUT into a value. It accepts decimal numbers with an optional E or D
// exponent and a type suffix, &H hex and &O or & octal. The second result
// is false when word is not a number.
func FromRepr(word string) (Value, bool) {
	s := strings.TrimSpace(word)
	if s == "" {
		return Integer(0), true
	}
	if s[0] == '&' {
		return fromRadix(s[1:])
	}
	return fromDecimal(s)
}

func fromRadix(s string) (Value, bool) {
	base := 8
	if s != "" && (s[0] == 'H' || s[0] == 'h') {
		base, s = 16, s[1:]
	} else if s != "" && (s[0] == 'O' || s[0] == 'o') {
		s = s[1:]
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return Integer(0), true
	}
	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return nil, false
	}
	if n > 0xffff {
		runerr.Raise(runerr.Overflow)
	}
	return Integer(int16(uint16(n))), true
}

func fromDecimal(s string) (Value, bool) {
	var (
		sigil   byte
		mant    strings.Builder
		digits  int
		point   bool
		expSeen bool
		expD    bool
	)
	i := 0
	if s[i] == '+' || s[i] == '-' {
		mant.WriteByte(s[i])
		i++
	}
	leading := true
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			if c != '0' || !leading {
				leading = false
				digits++
			}
			mant.WriteByte(c)
		case c == '.' && !point && !expSeen:
			point = true
			mant.WriteByte(c)
		case (c == 'E' || c == 'e' || c == 'D' || c == 'd') && !expSeen:
			expSeen = true
			expD = c == 'D' || c == 'd'
			mant.WriteByte('E')
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
				mant.WriteByte(s[i])
			}
		case (c == '!' || c == '#' || c == '%') && i == len(s)-1:
			sigil = c
		default:
			return nil, false
		}
	}
	text := mant.String()
	if strings.HasSuffix(text, "E") || strings.HasSuffix(text, "+") || strings.HasSuffix(text, "-") {
		text += "0"
	}
	if text == "+0" || text == "-0" || text == "." || text == "+." || text == "-." {
		text = "0"
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			runerr.Raise(runerr.Overflow)
		}
		return nil, false
	}
	switch {
	case sigil == '%':
		return Integer(ToInt(Double(f))), true
	case sigil == '#' || expD:
		return Double(f), true
	case sigil == '!':
		return checkSingle(f), true
	case digits > 7:
		return Double(f), true
	case !point && !expSeen && f >= -32768 && f <= 32767:
		return Integer(int(f)), true
	}
	return checkSingle(f), true
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

// Repr renders a value as STR$ does: numbers get a leading space when not
// negative, strings are returned as is.
func Repr(v Value) string {
	switch n := v.(type) {
	case String:
		return string(n)
	case Integer:
		if n >= 0 {
			return " " + strconv.Itoa(int(n))
		}
		return strconv.Itoa(int(n))
	case Single:
		return signed(float64(n), formatFloat(float64(n), 7, "E"))
	case Double:
		return signed(float64(n), formatFloat(float64(n), 16, "D"))
	}
	return ""
}

func signed(f float64, s string) string {
	if f < 0 {
		return s
	}
	return " " + s
}

// formatFloat renders f to the given number of significant digits using
// fixed notation within range and exponent notation outside it.
func formatFloat(f float64, digits int, expChar string) string {
	if f == 0 {
		return "0"
	}
	rounded := strconv.FormatFloat(f, 'e', digits-1, 64)
	g, _ := strconv.ParseFloat(rounded, 64)
	a := math.Abs(g)
	if a >= 0.01 && a < math.Pow(10, float64(digits)) {
		s := strconv.FormatFloat(g, 'f', -1, 64)
		if strings.HasPrefix(s, "0.") {
			s = s[1:]
		} else if strings.HasPrefix(s, "-0.") {
			s = "-" + s[2:]
		}
		return s
	}
	mant, exp, _ := strings.Cut(rounded, "e")
	if strings.Contains(mant, ".") {
		mant = strings.TrimRight(mant, "0")
		mant = strings.TrimSuffix(mant, ".")
	}
	sign := exp[:1]
	e := strings.TrimLeft(exp[1:], "0")
	for len(e) < 2 {
		e = "0" + e
	}
	return mant + expChar + sign + e
}
