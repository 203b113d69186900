package tokenise

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// Lister: tokens to program text
// ---------------------------------------------------------------------------

// ListLine renders a stored line as LIST shows it.
func ListLine(num int, body string) string {
	return strconv.Itoa(num) + " " + Detokenise(body)
}

// Detokenise converts a token stream fragment back to text.
func Detokenise(body string) string {
	var b strings.Builder
	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '"':
			end := strings.IndexByte(body[i+1:], '"')
			if end < 0 {
				b.WriteString(body[i:])
				return b.String()
			}
			b.WriteString(body[i : i+end+2])
			i += end + 2
		case c == ':' && strings.HasPrefix(body[i+1:], tokens.REM+tokens.QUOTE):
			b.WriteByte('\'')
			b.WriteString(body[i+3:])
			return b.String()
		case c == ':' && strings.HasPrefix(body[i+1:], tokens.ELSE):
			i++
		case c == tokens.REM[0]:
			b.WriteString("REM")
			b.WriteString(body[i+1:])
			return b.String()
		case c == tokens.DATA[0]:
			b.WriteString("DATA")
			i++
			quoted := false
			for ; i < len(body); i++ {
				if body[i] == '"' {
					quoted = !quoted
				} else if body[i] == ':' && !quoted {
					break
				}
				b.WriteByte(body[i])
			}
		case tokens.IsNumber(body[i : i+1]):
			n := 1 + tokens.PlusBytes[c]
			if i+n > len(body) {
				n = len(body) - i
			}
			b.WriteString(DecodeNumber(body[i : i+n]))
			i += n
		case c >= 0xfd:
			n := 2
			if i+n > len(body) {
				n = len(body) - i
			}
			b.WriteString(keywordText(body[i : i+n]))
			i += n
		case c >= 0x80:
			b.WriteString(keywordText(body[i : i+1]))
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func keywordText(tok string) string {
	if name := tokens.Name(tok); name != "" {
		return name
	}
	return tok
}

// DecodeNumber renders a number token as it would be typed.
func DecodeNumber(tok string) string {
	if tok == "" {
		return ""
	}
	lead, operand := tok[:1], []byte(tok[1:])
	switch {
	case lead[0] >= tokens.C0[0] && lead[0] <= tokens.C10[0]:
		return strconv.Itoa(int(lead[0] - tokens.C0[0]))
	case lead == tokens.TByte && len(operand) == 1:
		return strconv.Itoa(int(operand[0]))
	case len(operand) < 2:
		return ""
	case lead == tokens.TInt:
		return strconv.Itoa(int(int16(binary.LittleEndian.Uint16(operand))))
	case lead == tokens.TUint || lead == tokens.TUintPtr:
		return strconv.Itoa(int(binary.LittleEndian.Uint16(operand)))
	case lead == tokens.THex:
		return "&H" + strings.ToUpper(strconv.FormatUint(uint64(binary.LittleEndian.Uint16(operand)), 16))
	case lead == tokens.TOct:
		return "&O" + strconv.FormatUint(uint64(binary.LittleEndian.Uint16(operand)), 8)
	case lead == tokens.TSingle && len(operand) == 4:
		s := values.SingleFromMBF([4]byte(operand))
		text := strings.TrimPrefix(values.Repr(s), " ")
		if float64(s) == float64(int64(s)) && s >= -32768 && s <= 32767 {
			text += "!"
		}
		return text
	case lead == tokens.TDouble && len(operand) == 8:
		d := values.DoubleFromMBF([8]byte(operand))
		text := strings.TrimPrefix(values.Repr(d), " ")
		if !strings.Contains(text, "D") {
			text += "#"
		}
		return text
	}
	return ""
}
