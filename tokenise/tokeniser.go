// Package tokenise converts between program text and the token stream.
package tokenise

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// Tokeniser: program text to tokens
// ---------------------------------------------------------------------------

// lineNumberKeywords are followed by line numbers rather than values.
var lineNumberKeywords = []string{
	tokens.GOTO, tokens.GOSUB, tokens.THEN, tokens.ELSE, tokens.RESTORE,
	tokens.RESUME, tokens.RUN, tokens.LIST, tokens.LLIST, tokens.DELETE,
	tokens.RENUM, tokens.EDIT, tokens.AUTO, tokens.ERL,
}

// Tokeniser turns a line of program text into tokens.
type Tokeniser struct {
	input string
	pos   int
	out   strings.Builder

	// expectLine is set after a keyword that takes line numbers and holds
	// until something other than a number, comma, blank or dash appears.
	expectLine bool
	// afterERL lets a relational operator keep expectLine (IF ERL=100).
	afterERL bool
}

// TokeniseLine splits off a leading line number and tokenises the rest.
// hasNum reports whether the text started with a line number.
func TokeniseLine(text string) (num int, hasNum bool, body string, err error) {
	text = strings.TrimRight(text, "\r\n")
	trimmed := strings.TrimLeft(text, tokens.Blanks)
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i > 0 {
		n, convErr := strconv.Atoi(trimmed[:i])
		if convErr != nil || n > 65529 {
			return 0, false, "", runerr.New(runerr.SyntaxError)
		}
		num, hasNum = n, true
		trimmed = trimmed[i:]
		if strings.HasPrefix(trimmed, " ") {
			trimmed = trimmed[1:]
		}
	}
	return num, hasNum, Tokenise(trimmed), nil
}

// Tokenise converts a statement sequence (without line number) to tokens.
func Tokenise(text string) string {
	t := &Tokeniser{input: text}
	t.run()
	return t.out.String()
}

func (t *Tokeniser) peek() byte {
	if t.pos >= len(t.input) {
		return 0
	}
	return t.input[t.pos]
}

func (t *Tokeniser) peekAt(n int) byte {
	if t.pos+n >= len(t.input) {
		return 0
	}
	return t.input[t.pos+n]
}

func (t *Tokeniser) rest() string {
	return t.input[t.pos:]
}

func (t *Tokeniser) run() {
	for t.pos < len(t.input) {
		c := t.peek()
		switch {
		case c == '"':
			t.copyString()
		case c == '\'':
			t.pos++
			t.out.WriteString(tokens.Separator + tokens.REM + tokens.QUOTE)
			t.copyRest()
		case c == '?':
			t.pos++
			t.emitKeyword(tokens.PRINT)
		case isLetter(c):
			t.word()
		case c >= '0' && c <= '9' || c == '.':
			t.number()
		case c == '&':
			t.radix()
		case strings.IndexByte(" \t", c) >= 0:
			t.out.WriteByte(c)
			t.pos++
		case c == ',':
			t.out.WriteByte(c)
			t.pos++
		case c == '-' && t.expectLine:
			// line ranges: the bound after the minus is a line number too
			t.out.WriteString(tokens.OMinus)
			t.pos++
		default:
			t.operator(c)
		}
	}
}

func (t *Tokeniser) copyString() {
	end := strings.IndexByte(t.input[t.pos+1:], '"')
	if end < 0 {
		t.out.WriteString(t.rest())
		t.pos = len(t.input)
	} else {
		t.out.WriteString(t.input[t.pos : t.pos+end+2])
		t.pos += end + 2
	}
	t.expectLine = false
}

func (t *Tokeniser) copyRest() {
	t.out.WriteString(t.rest())
	t.pos = len(t.input)
}

// copyData copies DATA items verbatim up to a separator outside quotes.
func (t *Tokeniser) copyData() {
	quoted := false
	for t.pos < len(t.input) {
		c := t.input[t.pos]
		if c == '"' {
			quoted = !quoted
		} else if c == ':' && !quoted {
			return
		}
		t.out.WriteByte(c)
		t.pos++
	}
}

func (t *Tokeniser) emitKeyword(tok string) {
	t.out.WriteString(tok)
	t.expectLine = tokens.In(tok, lineNumberKeywords...)
	t.afterERL = tok == tokens.ERL
}

func (t *Tokeniser) word() {
	if name := tokens.MatchWord(t.rest()); name != "" {
		tok, _ := tokens.Lookup(name)
		t.pos += len(name)
		switch tok {
		case tokens.REM:
			t.out.WriteString(tok)
			t.copyRest()
			return
		case tokens.DATA:
			t.out.WriteString(tok)
			t.copyData()
			return
		case tokens.ELSE:
			if !strings.HasSuffix(t.out.String(), tokens.Separator) {
				t.out.WriteString(tokens.Separator)
			}
		}
		t.emitKeyword(tok)
		return
	}
	start := t.pos
	for t.pos < len(t.input) && isNameChar(t.input[t.pos]) {
		t.pos++
	}
	if t.pos < len(t.input) && strings.IndexByte(tokens.Sigils, t.input[t.pos]) >= 0 {
		t.pos++
	}
	t.out.WriteString(strings.ToUpper(t.input[start:t.pos]))
	t.expectLine = false
	t.afterERL = false
}

func (t *Tokeniser) number() {
	if t.expectLine && t.peek() != '.' {
		start := t.pos
		for t.pos < len(t.input) && t.input[t.pos] >= '0' && t.input[t.pos] <= '9' {
			t.pos++
		}
		if n, err := strconv.Atoi(t.input[start:t.pos]); err == nil && n <= 65529 {
			t.out.WriteString(tokens.TUint)
			t.out.Write(le16(n))
			return
		}
		t.pos = start
	}
	// a lone period stands for the last line stored, as in LIST .
	if t.expectLine && t.peek() == '.' && !(t.peekAt(1) >= '0' && t.peekAt(1) <= '9') {
		t.out.WriteByte('.')
		t.pos++
		return
	}
	s := codestream.New(t.rest())
	word := s.ReadNumber()
	t.pos += s.Tell()
	t.expectLine, t.afterERL = false, false
	var v values.Value
	var ok bool
	if err := runerr.Catch(func() { v, ok = values.FromRepr(word) }); err != nil || !ok {
		t.out.WriteString(word)
		return
	}
	t.out.WriteString(EncodeNumber(v))
}

func (t *Tokeniser) radix() {
	s := codestream.New(t.rest())
	word := s.ReadNumber()
	t.pos += s.Tell()
	t.expectLine, t.afterERL = false, false
	var v values.Value
	var ok bool
	if err := runerr.Catch(func() { v, ok = values.FromRepr(word) }); err != nil || !ok {
		t.out.WriteString(word)
		return
	}
	lead := tokens.TOct
	if strings.HasPrefix(word, "&H") {
		lead = tokens.THex
	}
	t.out.WriteString(lead)
	t.out.Write(le16(int(uint16(v.(values.Integer)))))
}

func (t *Tokeniser) operator(c byte) {
	t.pos++
	if tok, ok := tokens.Lookup(string(c)); ok {
		t.out.WriteString(tok)
		keep := t.afterERL && (c == '=' || c == '<' || c == '>')
		if !keep {
			t.expectLine, t.afterERL = false, false
		}
		return
	}
	t.out.WriteByte(c)
	t.expectLine, t.afterERL = false, false
}

// EncodeNumber returns the shortest number token for v.
func EncodeNumber(v values.Value) string {
	switch n := v.(type) {
	case values.Integer:
		switch {
		case n >= 0 && n <= 9:
			return string([]byte{tokens.C0[0] + byte(n)})
		case n == 10:
			return tokens.C10
		case n > 10 && n < 256:
			return tokens.TByte + string([]byte{byte(n)})
		}
		return tokens.TInt + string(le16(int(uint16(n))))
	case values.Single:
		b := values.MBFSingle(n)
		return tokens.TSingle + string(b[:])
	case values.Double:
		b := values.MBFDouble(n)
		return tokens.TDouble + string(b[:])
	}
	return ""
}

func le16(n int) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(n))
	return b[:]
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '.'
}
