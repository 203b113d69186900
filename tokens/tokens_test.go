package tokens

import "testing"

func TestIn(t *testing.T) {
	tests := []struct {
		c    string
		set  []string
		want bool
	}{
		{"", EndStatement, true},
		{"\x00", EndStatement, true},
		{":", EndStatement, true},
		{"A", EndStatement, false},
		{"", []string{":"}, false},
		{MID, []string{LEFT, MID}, true},
		{"\xff", []string{MID}, false},
	}
	for _, tt := range tests {
		if got := In(tt.c, tt.set...); got != tt.want {
			t.Errorf("In(%q) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestKeywordRoundTrip(t *testing.T) {
	for _, kw := range Keywords() {
		tok, ok := Lookup(kw.Name)
		if !ok {
			t.Errorf("Lookup(%q) failed", kw.Name)
			continue
		}
		if tok != kw.Token {
			t.Errorf("Lookup(%q) = %q, want %q", kw.Name, tok, kw.Token)
		}
		if Name(tok) != kw.Name {
			t.Errorf("Name(%q) = %q, want %q", tok, Name(tok), kw.Name)
		}
	}
}

func TestMatchWord(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"INPUT A", "INPUT"},
		{"inp(3)", "INP"},
		{"printx", "PRINT"},
		{"DEFINT A-Z", "DEFINT"},
		{"DEF FNA", "DEF"},
		{"XYZ", ""},
		{"LEFT$(A$,1)", "LEFT$"},
	}
	for _, tt := range tests {
		if got := MatchWord(tt.in); got != tt.want {
			t.Errorf("MatchWord(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlusBytes(t *testing.T) {
	tests := []struct {
		lead byte
		want int
	}{
		{TByte[0], 1},
		{TUint[0], 2},
		{TSingle[0], 4},
		{TDouble[0], 8},
		{0xfe, 1},
	}
	for _, tt := range tests {
		if got := PlusBytes[tt.lead]; got != tt.want {
			t.Errorf("PlusBytes[%#x] = %d, want %d", tt.lead, got, tt.want)
		}
	}
	if _, ok := PlusBytes['A']; ok {
		t.Error("PlusBytes should not contain letters")
	}
}
