package codestream

import (
	"strings"
	"testing"

	"github.com/chazu/gwbasic/tokens"
)

func TestSkipToIgnoresStringsAndComments(t *testing.T) {
	buf := prog(
		tokens.PRINT+`"A:B"`+tokens.REM+" X:Y",
		tokens.PRINT+"1:"+tokens.END,
	)
	s := New(buf)
	s.Read(5)
	s.SkipTo([]string{tokens.Separator}, true)
	want := strings.Index(buf, "1:") + 1
	if s.Tell() != want {
		t.Errorf("SkipTo(:) stopped at %d, want %d", s.Tell(), want)
	}
}

func TestSkipToStepsOverOperands(t *testing.T) {
	// the int16 operand 0x3A3A looks like two separators
	buf := prog(tokens.PRINT + tokens.TInt + "::" + ":" + tokens.END)
	s := New(buf)
	s.Read(5)
	s.SkipTo([]string{tokens.Separator}, true)
	if s.Tell() != 9 {
		t.Errorf("SkipTo stopped at %d, want 9", s.Tell())
	}
}

func TestSkipToStopsAtProgramEnd(t *testing.T) {
	buf := prog(tokens.PRINT + "1")
	s := New(buf)
	s.Read(5)
	s.SkipTo([]string{tokens.NEXT}, true)
	if s.Tell() != len(buf) {
		t.Errorf("SkipTo stopped at %d, want end %d", s.Tell(), len(buf))
	}
}

func TestSkipToBreakOnFirstFalse(t *testing.T) {
	s := New(":A:B")
	s.SkipTo([]string{tokens.Separator}, false)
	if s.Tell() != 2 {
		t.Errorf("SkipTo stopped at %d, want 2", s.Tell())
	}
}

func TestSkipBlockNested(t *testing.T) {
	buf := prog(
		tokens.FOR+"I"+tokens.OEq+"\x12"+tokens.TO+"\x13",
		tokens.FOR+"J"+tokens.OEq+"\x12"+tokens.TO+"\x13:"+tokens.NEXT+"J",
		tokens.NEXT+"I",
	)
	s := New(buf)
	s.Read(6) // marker record and FOR
	s.SkipBlock(tokens.FOR, tokens.NEXT, false)
	want := strings.LastIndex(buf, tokens.NEXT+"I")
	if s.Tell() != want {
		t.Errorf("SkipBlock stopped at %d, want %d", s.Tell(), want)
	}
}

func TestSkipBlockIgnoresStringsAndComments(t *testing.T) {
	buf := prog(
		tokens.WHILE+"X",
		tokens.PRINT+`"`+tokens.WEND+`"`,
		tokens.REM+tokens.WHILE,
		tokens.PRINT+`":`+tokens.WHILE+`"`,
		tokens.WEND,
	)
	s := New(buf)
	s.Read(6)
	s.SkipBlock(tokens.WHILE, tokens.WEND, false)
	want := strings.LastIndex(buf, tokens.WEND)
	if s.Tell() != want {
		t.Errorf("SkipBlock stopped at %d, want %d", s.Tell(), want)
	}
	if s.Peek(1) != tokens.WEND {
		t.Errorf("SkipBlock stopped before %q, want WEND", s.Peek(1))
	}
}

func TestSkipBlockAfterThenAndElse(t *testing.T) {
	buf := prog(
		tokens.FOR+"I",
		tokens.IF+"X"+tokens.THEN+tokens.NEXT+":"+tokens.ELSE+tokens.NEXT,
	)
	s := New(buf)
	s.Read(6)
	s.SkipBlock(tokens.FOR, tokens.NEXT, false)
	want := strings.Index(buf, tokens.THEN) + 1
	if s.Tell() != want {
		t.Errorf("SkipBlock stopped at %d, want %d", s.Tell(), want)
	}
}

func TestSkipBlockCommaList(t *testing.T) {
	// FOR I: FOR J: NEXT J,I  -- searching from the outer FOR lands on ",I"
	buf := prog(
		tokens.FOR+"I",
		tokens.FOR+"J",
		tokens.NEXT+"J,I",
	)
	s := New(buf)
	s.Read(6)
	s.SkipBlock(tokens.FOR, tokens.NEXT, true)
	want := strings.Index(buf, ",I")
	if s.Tell() != want {
		t.Errorf("SkipBlock stopped at %d, want %d", s.Tell(), want)
	}

	// from the inner FOR the NEXT itself matches
	s = New(buf)
	s.Seek(strings.Index(buf, tokens.FOR+"J") + 1)
	s.SkipBlock(tokens.FOR, tokens.NEXT, true)
	want = strings.Index(buf, tokens.NEXT)
	if s.Tell() != want {
		t.Errorf("inner SkipBlock stopped at %d, want %d", s.Tell(), want)
	}
}

func TestSkipBlockMissingClose(t *testing.T) {
	buf := prog(tokens.WHILE+"X", tokens.PRINT+"1")
	s := New(buf)
	s.Read(6)
	s.SkipBlock(tokens.WHILE, tokens.WEND, false)
	if s.Read(1) == tokens.WEND {
		t.Error("SkipBlock found a WEND that does not exist")
	}
}

func TestSkipToElse(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string // text expected right after the cursor
	}{
		{"plain else", "X" + tokens.THEN + "A:" + tokens.ELSE + "B", "B"},
		{"no else", "X" + tokens.THEN + "A:C", "\x00"},
		{
			"nested if takes first else",
			"X" + tokens.THEN + tokens.IF + "Y" + tokens.THEN + "A:" + tokens.ELSE + "B:" + tokens.ELSE + "C",
			"C",
		},
		{"else in string", "X" + tokens.THEN + `"::` + tokens.ELSE + `":` + tokens.ELSE + "D", "D"},
	}
	for _, tt := range tests {
		buf := prog(tokens.IF + tt.body)
		s := New(buf)
		s.Read(6)
		s.SkipToElse()
		if got := s.Peek(1); got != tt.want {
			t.Errorf("%s: cursor before %q, want %q", tt.name, got, tt.want)
		}
	}
}
