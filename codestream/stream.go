// Package codestream implements a seekable cursor over a tokenised program
// buffer and the scans the interpreter uses to find block boundaries.
//
// The buffer is an immutable string; editing a program produces a new buffer
// and callers open a new Stream on it. Reads past the end return fewer bytes
// than asked for, or the empty string, and never fail.
package codestream

import (
	"strings"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
)

// maxNameLength is the number of significant characters in a variable name.
const maxNameLength = 40

// Stream is a cursor over a token buffer.
type Stream struct {
	buf string
	pos int
}

// New opens a stream positioned at the start of buf.
func New(buf string) *Stream {
	return &Stream{buf: buf}
}

// ---------------------------------------------------------------------------
// Cursor
// ---------------------------------------------------------------------------

// Buffer returns the underlying buffer.
func (s *Stream) Buffer() string { return s.buf }

// Len returns the buffer length.
func (s *Stream) Len() int { return len(s.buf) }

// Tell returns the current position.
func (s *Stream) Tell() int { return s.pos }

// Seek moves to an absolute position, clamped to the buffer.
func (s *Stream) Seek(pos int) {
	switch {
	case pos < 0:
		pos = 0
	case pos > len(s.buf):
		pos = len(s.buf)
	}
	s.pos = pos
}

// SeekRel moves relative to the current position.
func (s *Stream) SeekRel(delta int) {
	s.Seek(s.pos + delta)
}

// SeekEnd moves to the end of the buffer.
func (s *Stream) SeekEnd() {
	s.pos = len(s.buf)
}

// Read consumes up to n bytes.
func (s *Stream) Read(n int) string {
	end := s.pos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	if end < s.pos {
		return ""
	}
	out := s.buf[s.pos:end]
	s.pos = end
	return out
}

// Peek returns up to n bytes without consuming them.
func (s *Stream) Peek(n int) string {
	end := s.pos + n
	if end > len(s.buf) {
		end = len(s.buf)
	}
	if end < s.pos {
		return ""
	}
	return s.buf[s.pos:end]
}

// unread steps back over a string just read.
func (s *Stream) unread(d string) {
	s.pos -= len(d)
}

// ---------------------------------------------------------------------------
// Skipping
// ---------------------------------------------------------------------------

// SkipRead skips bytes in set, then reads n bytes.
func (s *Stream) SkipRead(set string, n int) string {
	for {
		d := s.Read(1)
		if d == "" || !strings.Contains(set, d) {
			return d + s.Read(n-1)
		}
	}
}

// Skip skips bytes in set, then peeks n bytes.
func (s *Stream) Skip(set string, n int) string {
	d := s.SkipRead(set, n)
	s.unread(d)
	return d
}

// SkipBlankRead skips whitespace, then reads one byte.
func (s *Stream) SkipBlankRead() string {
	return s.SkipRead(tokens.Blanks, 1)
}

// SkipBlank skips whitespace, then peeks one byte.
func (s *Stream) SkipBlank() string {
	return s.Skip(tokens.Blanks, 1)
}

// SkipBlankN skips whitespace, then peeks n bytes.
func (s *Stream) SkipBlankN(n int) string {
	return s.Skip(tokens.Blanks, n)
}

// BackskipBlank steps back over whitespace and peeks the byte found.
func (s *Stream) BackskipBlank() string {
	for {
		if s.pos == 0 {
			return s.Peek(1)
		}
		s.pos--
		d := s.Peek(1)
		if d == "" || !tokens.IsBlank(d) {
			return d
		}
	}
}

// ReadIf consumes d if it is one of set.
func (s *Stream) ReadIf(d string, set ...string) (string, bool) {
	if d != "" && tokens.In(d, set...) {
		s.Read(len(d))
		return d, true
	}
	return "", false
}

// SkipBlankReadIf skips whitespace and consumes the next n bytes if they
// are one of set.
func (s *Stream) SkipBlankReadIf(n int, set ...string) (string, bool) {
	return s.ReadIf(s.SkipBlankN(n), set...)
}

// ReadTo reads up to, not including, the first byte in set.
func (s *Stream) ReadTo(set ...string) string {
	start := s.pos
	for s.pos < len(s.buf) {
		if tokens.In(s.buf[s.pos:s.pos+1], set...) {
			break
		}
		s.pos++
	}
	return s.buf[start:s.pos]
}

// ---------------------------------------------------------------------------
// Lexing
// ---------------------------------------------------------------------------

// ReadName reads a variable name: a letter, then letters, digits and
// points, then an optional sigil. Only the first 40 characters are kept.
// The result is upper case; "" means no name and nothing consumed past
// leading blanks.
func (s *Stream) ReadName() string {
	d := s.SkipBlankRead()
	if !tokens.IsLetter(d) {
		s.unread(d)
		return ""
	}
	var name strings.Builder
	for tokens.IsNameChar(d) {
		name.WriteString(d)
		d = s.Read(1)
	}
	out := name.String()
	if len(out) > maxNameLength {
		out = out[:maxNameLength]
	}
	if tokens.IsSigil(d) {
		out += d
	} else {
		s.unread(d)
	}
	return strings.ToUpper(out)
}

// ReadNumber reads an ASCII numeric literal. Decimal literals are returned
// with blanks and separator bytes removed; hex literals as "&H..." and
// octal literals as "&O...". It returns "" if no literal starts here.
func (s *Stream) ReadNumber() string {
	c := s.Peek(1)
	switch {
	case c == "":
		return ""
	case c == "&":
		s.Read(1)
		if s.peekUpper() == 'H' {
			return "&H" + s.readHex()
		}
		return "&O" + s.readOct()
	case tokens.IsDigit(c) || c == "." || c == "+" || c == "-":
		return s.readDecimal()
	}
	return ""
}

func (s *Stream) readDecimal() string {
	var (
		haveExp, havePoint bool
		word               []byte
	)
loop:
	for {
		c := s.Read(1)
		if c == "" {
			break
		}
		b := upper(c[0])
		switch {
		case b == '.' && !havePoint && !haveExp:
			havePoint = true
			word = append(word, b)
		case (b == 'E' || b == 'D') && !haveExp:
			// a number followed by EL or EQ is taken to end before ELSE or EQV
			if next := s.peekUpper(); b == 'E' && (next == 'L' || next == 'Q') {
				s.unread(c)
				break loop
			}
			haveExp = true
			word = append(word, b)
		case (b == '-' || b == '+') && (len(word) == 0 || word[len(word)-1] == 'E' || word[len(word)-1] == 'D'):
			word = append(word, b)
		case tokens.IsDigit(c) || tokens.IsBlank(c) || strings.IndexByte(tokens.NumeralSeparators, b) >= 0:
			word = append(word, b)
		case (b == '!' || b == '#') && !haveExp:
			word = append(word, b)
			break loop
		case b == '%':
			break loop
		default:
			s.unread(c)
			break loop
		}
	}
	trimmed := strings.TrimRight(string(word), tokens.Blanks)
	s.SeekRel(len(trimmed) - len(word))
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(tokens.Blanks+tokens.NumeralSeparators, r) {
			return -1
		}
		return r
	}, trimmed)
}

func (s *Stream) readHex() string {
	s.Read(1)
	start := s.pos
	for s.pos < len(s.buf) && isHexDigit(s.buf[s.pos]) {
		s.pos++
	}
	return s.buf[start:s.pos]
}

func (s *Stream) readOct() string {
	if s.peekUpper() == 'O' {
		s.Read(1)
	}
	var word []byte
	for s.pos < len(s.buf) {
		b := s.buf[s.pos]
		if b >= '0' && b <= '7' {
			word = append(word, b)
		} else if !tokens.IsBlank(string(b)) {
			break
		}
		s.pos++
	}
	return string(word)
}

// peekUpper returns the next byte upper-cased, or 0 at the end.
func (s *Stream) peekUpper() byte {
	if s.pos >= len(s.buf) {
		return 0
	}
	return upper(s.buf[s.pos])
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// ReadString reads a quoted string literal including its quotes. A string
// left open at the end of a line is returned without the closing quote.
func (s *Stream) ReadString() string {
	word := s.Read(1)
	if word != tokens.Quote {
		s.unread(word)
		return ""
	}
	word += s.ReadTo(tokens.Quote, tokens.LineMarker)
	if delim := s.Read(1); delim == tokens.Quote {
		word += delim
	} else {
		s.unread(delim)
	}
	return word
}

// ReadKeywordToken reads one keyword token, two bytes for the escaped
// families.
func (s *Stream) ReadKeywordToken() string {
	token := s.Read(1)
	if token == "\xfd" || token == "\xfe" || token == "\xff" {
		token += s.Read(1)
	}
	return token
}

// ReadNumberToken reads a number token including its operand bytes, or
// returns "" if the next byte is not a number token.
func (s *Stream) ReadNumberToken() string {
	lead := s.Read(1)
	if !tokens.IsNumber(lead) {
		s.unread(lead)
		return ""
	}
	return lead + s.Read(tokens.PlusBytes[lead[0]])
}

// RequireRead skips blanks and reads a token of the width of set's first
// member, raising Syntax error with the cursor restored if it is not in set.
func (s *Stream) RequireRead(set ...string) string {
	return s.RequireReadCode(runerr.SyntaxError, set...)
}

// RequireReadCode is RequireRead with a chosen error code.
func (s *Stream) RequireReadCode(code int, set ...string) string {
	d := s.SkipBlankRead()
	c := d + s.Read(len(set[0])-1)
	if c == "" || !tokens.In(c, set...) {
		s.unread(c)
		runerr.Raise(code)
	}
	return c
}

// RequireEnd skips blanks and raises Syntax error unless at the end of a
// statement.
func (s *Stream) RequireEnd() {
	s.RequireEndCode(runerr.SyntaxError)
}

// RequireEndCode is RequireEnd with a chosen error code.
func (s *Stream) RequireEndCode(code int) {
	if d := s.SkipBlank(); !tokens.In(d, tokens.EndStatement...) {
		runerr.Raise(code)
	}
}
