package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// ---------------------------------------------------------------------------
// LSP text extraction helpers
// ---------------------------------------------------------------------------

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		text string
		pos  protocol.Position
		want string
	}{
		{"10 PRI", protocol.Position{Line: 0, Character: 6}, "PRI"},
		{"10 PRINT A:GO", protocol.Position{Line: 0, Character: 13}, "GO"},
		{"", protocol.Position{Line: 0, Character: 0}, ""},
		{"10 END\n20 RET", protocol.Position{Line: 1, Character: 6}, "RET"},
		{"10 GOTO 2", protocol.Position{Line: 0, Character: 9}, ""},
		{"single line", protocol.Position{Line: 5, Character: 0}, ""},
		{`10 PRINT "GO`, protocol.Position{Line: 0, Character: 12}, ""},
		{"10 REM GO", protocol.Position{Line: 0, Character: 9}, ""},
		{"10 A=1'GO", protocol.Position{Line: 0, Character: 9}, ""},
		{`10 PRINT "A":GO`, protocol.Position{Line: 0, Character: 15}, "GO"},
		{"10 REMARK=1:GO", protocol.Position{Line: 0, Character: 14}, ""},
	}
	for _, tt := range tests {
		if got := extractPrefix(tt.text, tt.pos); got != tt.want {
			t.Errorf("extractPrefix(%q, %v) = %q, want %q", tt.text, tt.pos, got, tt.want)
		}
	}
}

func TestExtractWord(t *testing.T) {
	tests := []struct {
		text string
		pos  protocol.Position
		want string
	}{
		{"10 PRINT LEFT$(A$,1)", protocol.Position{Line: 0, Character: 11}, "LEFT$"},
		{"10 GOTO 200", protocol.Position{Line: 0, Character: 9}, "200"},
		{"10 GOTO 200\r", protocol.Position{Line: 0, Character: 11}, "200"},
		{"10 A = 1", protocol.Position{Line: 0, Character: 5}, ""},
		{"10 END", protocol.Position{Line: 3, Character: 0}, ""},
		{"10 PRINT A$(1)", protocol.Position{Line: 0, Character: 9}, "A$"},
		{"10 PRINT A$(1)", protocol.Position{Line: 0, Character: 11}, "A$"},
		{"10 X%=1", protocol.Position{Line: 0, Character: 3}, "X%"},
		{"10 GOSUB 100", protocol.Position{Line: 0, Character: 12}, "100"},
		{`10 PRINT "GOTO 5"`, protocol.Position{Line: 0, Character: 12}, ""},
	}
	for _, tt := range tests {
		if got := extractWord(tt.text, tt.pos); got != tt.want {
			t.Errorf("extractWord(%q, %v) = %q, want %q", tt.text, tt.pos, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Completion and hover
// ---------------------------------------------------------------------------

func TestComplete(t *testing.T) {
	items := complete("gos")
	if len(items) != 1 || items[0].Label != "GOSUB" {
		t.Fatalf("complete(gos) = %v, want GOSUB", items)
	}
	if items[0].Detail == nil || !strings.Contains(*items[0].Detail, "subroutine") {
		t.Errorf("GOSUB detail = %v", items[0].Detail)
	}

	labels := map[string]bool{}
	for _, it := range complete("TA") {
		labels[it.Label] = true
	}
	if !labels["TAB"] || !labels["TAN"] {
		t.Errorf("complete(TA) = %v, want TAB and TAN", labels)
	}

	if items := complete("XYZ"); len(items) != 0 {
		t.Errorf("complete(XYZ) = %v, want none", items)
	}
}

func TestHoverKeyword(t *testing.T) {
	h := hover("", "print")
	if h == nil {
		t.Fatal("hover(print) = nil")
	}
	value := h.Contents.(protocol.MarkupContent).Value
	if !strings.HasPrefix(value, "**PRINT**") {
		t.Errorf("hover(print) = %q", value)
	}
	if hover("", "SPC") == nil {
		t.Error("hover(SPC) = nil")
	}
	if hover("", "LEFT$") == nil {
		t.Error("hover(LEFT$) = nil")
	}
	if hover("", "FOO") != nil {
		t.Error("hover(FOO) is not nil")
	}
}

func TestHoverLineNumber(t *testing.T) {
	text := "10 GOSUB 100\n20 END\n100 print \"HI\"\n"
	h := hover(text, "100")
	if h == nil {
		t.Fatal("hover(100) = nil")
	}
	if value := h.Contents.(protocol.MarkupContent).Value; !strings.Contains(value, `100 PRINT "HI"`) {
		t.Errorf("hover(100) = %q", value)
	}
	if hover(text, "30") != nil {
		t.Error("hover on a missing line is not nil")
	}
}
