package session

import (
	"math"
	"strconv"
	"strings"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// PRINT USING
// ---------------------------------------------------------------------------

// usingFormat walks a PRINT USING format string, applying it to one value
// after another and starting over when the fields run out.
type usingFormat struct {
	pattern string
	pos  int
}

// numField is a parsed numeric field such as "+**$#,###.##^^^^-".
type numField struct {
	width    int
	plus     bool // leading sign
	trail    byte // '+', '-' or 0
	star     bool // fill with asterisks
	dollar   bool
	comma    bool
	digits   int // digit positions before the point
	point    bool
	decimals int
	exp      int // number of ^ characters, 0 if none
}

// literals writes text up to the next field and returns the field's
// length, or 0 at the end of the format.
func (u *usingFormat) literals(out *strings.Builder) int {
	for u.pos < len(u.pattern) {
		if n := fieldLen(u.pattern, u.pos); n > 0 {
			return n
		}
		c := u.pattern[u.pos]
		if c == '_' && u.pos+1 < len(u.pattern) {
			u.pos++
			c = u.pattern[u.pos]
		}
		out.WriteByte(c)
		u.pos++
	}
	return 0
}

// apply formats v with the next field.
func (u *usingFormat) apply(out *strings.Builder, v values.Value) {
	n := u.literals(out)
	if n == 0 {
		// start over; a format without any field is an error
		u.pos = 0
		if n = u.literals(out); n == 0 {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
	}
	field := u.pattern[u.pos : u.pos+n]
	u.pos += n
	if isStringField(field) {
		str, ok := v.(values.String)
		if !ok {
			runerr.Raise(runerr.TypeMismatch)
		}
		out.WriteString(formatString(field, string(str)))
		return
	}
	if _, ok := v.(values.String); ok {
		runerr.Raise(runerr.TypeMismatch)
	}
	f, _ := parseNumField(field, 0)
	out.WriteString(f.format(values.ToFloat(v)))
}

// finish writes the literal text that follows the last field used.
func (u *usingFormat) finish(out *strings.Builder) {
	u.literals(out)
}

func isStringField(field string) bool {
	switch field[0] {
	case '!', '&', '\\':
		return true
	}
	return false
}

// fieldLen returns the length of the field starting at i, or 0.
func fieldLen(pattern string, i int) int {
	switch pattern[i] {
	case '!', '&':
		return 1
	case '\\':
		j := i + 1
		for j < len(pattern) && pattern[j] == ' ' {
			j++
		}
		if j < len(pattern) && pattern[j] == '\\' {
			return j - i + 1
		}
		return 0
	}
	_, n := parseNumField(pattern, i)
	return n
}

func formatString(field, s string) string {
	switch field[0] {
	case '!':
		if s == "" {
			return " "
		}
		return s[:1]
	case '&':
		return s
	}
	n := len(field)
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

// parseNumField parses a numeric field at i and returns it with its
// length, or a zero length if none starts there.
func parseNumField(pattern string, i int) (numField, int) {
	var f numField
	j := i
	if pattern[j] == '+' {
		f.plus = true
		j++
	}
	body := j
	switch {
	case strings.HasPrefix(pattern[j:], "**$"):
		f.star, f.dollar = true, true
		f.digits += 2
		j += 3
	case strings.HasPrefix(pattern[j:], "**"):
		f.star = true
		f.digits += 2
		j += 2
	case strings.HasPrefix(pattern[j:], "$$"):
		f.dollar = true
		f.digits++
		j += 2
	}
	prefixed := j > body
	for j < len(pattern) && (pattern[j] == '#' || pattern[j] == ',' && (f.digits > 0 || prefixed)) {
		if pattern[j] == ',' {
			f.comma = true
		}
		f.digits++
		j++
	}
	if j < len(pattern) && pattern[j] == '.' && (f.digits > 0 || j+1 < len(pattern) && pattern[j+1] == '#') {
		f.point = true
		j++
		for j < len(pattern) && pattern[j] == '#' {
			f.decimals++
			j++
		}
	}
	if f.digits == 0 && !f.point {
		return numField{}, 0
	}
	if strings.HasPrefix(pattern[j:], "^^^^^") {
		f.exp = 5
		j += 5
	} else if strings.HasPrefix(pattern[j:], "^^^^") {
		f.exp = 4
		j += 4
	}
	if !f.plus && j < len(pattern) && (pattern[j] == '+' || pattern[j] == '-') {
		f.trail = pattern[j]
		j++
	}
	f.width = j - i
	return f, f.width
}

func (f numField) format(x float64) string {
	neg := x < 0
	x = math.Abs(x)
	var num string
	if f.exp > 0 {
		num = f.mantissa(x)
	} else {
		num = strconv.FormatFloat(x, 'f', f.decimals, 64)
		intPart, frac, _ := strings.Cut(num, ".")
		if intPart == "0" && f.digits == 0 {
			intPart = ""
		}
		if f.comma {
			intPart = groupThousands(intPart)
		}
		num = intPart
		if f.point {
			num += "." + frac
		}
	}
	var sign, suffix string
	switch {
	case f.plus && neg:
		sign = "-"
	case f.plus:
		sign = "+"
	case f.trail == '+' && neg, f.trail == '-' && neg:
		suffix = "-"
	case f.trail == '+':
		suffix = "+"
	case f.trail == '-':
		suffix = " "
	case neg:
		sign = "-"
	}
	if f.dollar {
		num = "$" + num
	}
	body := sign + num
	room := f.width - len(suffix)
	if len(body) > room {
		return "%" + body + suffix
	}
	fill := " "
	if f.star {
		fill = "*"
	}
	return strings.Repeat(fill, room-len(body)) + body + suffix
}

// mantissa renders x in scientific form with the field's digit counts.
func (f numField) mantissa(x float64) string {
	lead := f.digits
	if !f.plus && f.trail == 0 && lead > 0 {
		// one position is kept for the sign
		lead--
	}
	exp := 0
	if x != 0 {
		exp = int(math.Floor(math.Log10(x))) - lead + 1
	}
	m := x / math.Pow(10, float64(exp))
	s := strconv.FormatFloat(m, 'f', f.decimals, 64)
	if intPart, _, _ := strings.Cut(s, "."); len(intPart) > lead && lead > 0 {
		// rounding carried into a new digit
		exp++
		s = strconv.FormatFloat(m/10, 'f', f.decimals, 64)
	}
	if intPart, frac, ok := strings.Cut(s, "."); ok && lead == 0 && intPart == "0" {
		s = "." + frac
	}
	if !f.point {
		s, _, _ = strings.Cut(s, ".")
	}
	expSign := "+"
	if exp < 0 {
		expSign = "-"
		exp = -exp
	}
	digits := strconv.Itoa(exp)
	for len(digits) < f.exp-2 {
		digits = "0" + digits
	}
	return s + "E" + expSign + digits
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
