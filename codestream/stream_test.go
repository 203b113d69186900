package codestream

import (
	"strings"
	"testing"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// prog builds a token buffer from line bodies numbered 10, 20, ...
// Offsets only need to be non-zero for the scanners.
func prog(bodies ...string) string {
	var b strings.Builder
	for i, body := range bodies {
		num := (i + 1) * 10
		b.WriteString("\x00\x01\x01")
		b.WriteByte(byte(num))
		b.WriteByte(byte(num >> 8))
		b.WriteString(body)
	}
	b.WriteString("\x00\x00\x00")
	return b.String()
}

func TestReadPeekAtEnd(t *testing.T) {
	s := New("AB")
	if got := s.Peek(5); got != "AB" {
		t.Errorf("Peek(5) = %q, want AB", got)
	}
	if got := s.Read(1); got != "A" {
		t.Errorf("Read(1) = %q, want A", got)
	}
	if got := s.Read(3); got != "B" {
		t.Errorf("Read(3) = %q, want B", got)
	}
	if got := s.Read(1); got != "" {
		t.Errorf("Read at end = %q, want empty", got)
	}
	s.Seek(-4)
	if s.Tell() != 0 {
		t.Errorf("Seek(-4) left position %d, want 0", s.Tell())
	}
}

func TestSkipBlank(t *testing.T) {
	s := New("  \tX Y")
	if got := s.SkipBlank(); got != "X" {
		t.Errorf("SkipBlank = %q, want X", got)
	}
	if s.Tell() != 3 {
		t.Errorf("position = %d, want 3", s.Tell())
	}
	s.Read(1)
	if got := s.SkipBlankRead(); got != "Y" {
		t.Errorf("SkipBlankRead = %q, want Y", got)
	}
	if got := s.BackskipBlank(); got != "Y" {
		t.Errorf("BackskipBlank = %q, want Y", got)
	}
	if got := s.BackskipBlank(); got != "X" {
		t.Errorf("BackskipBlank = %q, want X", got)
	}
}

func TestReadName(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		restPos int
	}{
		{"abc=1", "ABC", 3},
		{" x1.y$ ", "X1.Y$", 6},
		{"A%(1)", "A%", 2},
		{"1A", "", 0},
		{strings.Repeat("N", 45) + "#", strings.Repeat("N", 40) + "#", 46},
	}
	for _, tt := range tests {
		s := New(tt.in)
		if got := s.ReadName(); got != tt.want {
			t.Errorf("ReadName(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if s.Tell() != tt.restPos {
			t.Errorf("ReadName(%q) left position %d, want %d", tt.in, s.Tell(), tt.restPos)
		}
	}
}

func TestReadNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		restPos int
	}{
		{"123", "123", 3},
		{"1.5E+3,", "1.5E+3", 6},
		{"12 ", "12", 2},
		{"1 2 3:", "123", 5},
		{"1\x1c2", "12", 3},
		{"2#X", "2#", 2},
		{"7%,", "7", 2},
		{"1ELSE", "1", 1},
		{"1EQV", "1", 1},
		{"&H1F ", "&H1F", 4},
		{"&H1 F", "&H1", 3},
		{"&O1 7", "&O17", 5},
		{"&17", "&O17", 3},
		{"-4", "-4", 2},
		{"X", "", 0},
	}
	for _, tt := range tests {
		s := New(tt.in)
		if got := s.ReadNumber(); got != tt.want {
			t.Errorf("ReadNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if s.Tell() != tt.restPos {
			t.Errorf("ReadNumber(%q) left position %d, want %d", tt.in, s.Tell(), tt.restPos)
		}
	}
}

func TestReadNumberBlanksRoundTrip(t *testing.T) {
	for _, pair := range [][2]string{
		{"1 2 3 . 5", "123.5"},
		{"1\x1d0 0", "100"},
		{"2 E 3", "2E3"},
		{" 4\x1f2 ", "42"},
	} {
		spaced, plain := New(pair[0]), New(pair[1])
		spaced.SkipBlank()
		a, _ := values.FromRepr(spaced.ReadNumber())
		b, _ := values.FromRepr(plain.ReadNumber())
		if a != b {
			t.Errorf("%q lexes to %v, %q to %v", pair[0], a, pair[1], b)
		}
	}
}

func TestReadString(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`"HELLO" X`, `"HELLO"`},
		{`"OPEN` + "\x00", `"OPEN`},
		{`"A:B"`, `"A:B"`},
		{`X`, ``},
	}
	for _, tt := range tests {
		if got := New(tt.in).ReadString(); got != tt.want {
			t.Errorf("ReadString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeywordAndNumberTokens(t *testing.T) {
	s := New(tokens.MID + tokens.PRINT + tokens.TInt + "\x34\x12" + "A")
	if got := s.ReadKeywordToken(); got != tokens.MID {
		t.Errorf("ReadKeywordToken = %q, want MID$", got)
	}
	if got := s.ReadKeywordToken(); got != tokens.PRINT {
		t.Errorf("ReadKeywordToken = %q, want PRINT", got)
	}
	if got := s.ReadNumberToken(); got != tokens.TInt+"\x34\x12" {
		t.Errorf("ReadNumberToken = %q", got)
	}
	if got := s.ReadNumberToken(); got != "" {
		t.Errorf("ReadNumberToken on letter = %q, want empty", got)
	}
	if s.Tell() != 6 {
		t.Errorf("position = %d, want 6", s.Tell())
	}
}

func TestRequireRead(t *testing.T) {
	s := New("  " + tokens.THEN + "X")
	if got := s.RequireRead(tokens.THEN, tokens.GOTO); got != tokens.THEN {
		t.Errorf("RequireRead = %q, want THEN", got)
	}
	pos := s.Tell()
	err := runerr.Catch(func() { s.RequireRead(tokens.THEN) })
	if e, ok := runerr.AsError(err); !ok || e.Code != runerr.SyntaxError {
		t.Errorf("RequireRead mismatch gave %v, want Syntax error", err)
	}
	if s.Tell() != pos {
		t.Errorf("RequireRead failure moved cursor to %d, want %d", s.Tell(), pos)
	}

	s = New("SEG=1")
	if got := s.RequireRead(tokens.WordSeg); got != "SEG" {
		t.Errorf("RequireRead(SEG) = %q", got)
	}
}

func TestRequireEnd(t *testing.T) {
	for _, ok := range []string{"", "  :", "\x00"} {
		if err := runerr.Catch(func() { New(ok).RequireEnd() }); err != nil {
			t.Errorf("RequireEnd(%q) = %v, want nil", ok, err)
		}
	}
	err := runerr.Catch(func() { New(" X").RequireEndCode(runerr.IllegalFunctionCall) })
	if e, ok := runerr.AsError(err); !ok || e.Code != runerr.IllegalFunctionCall {
		t.Errorf("RequireEndCode gave %v, want Illegal function call", err)
	}
}
