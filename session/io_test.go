package session

import (
	"reflect"
	"strings"
	"testing"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/values"
)

func TestSplitInput(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"1,2", []string{"1", "2"}},
		{" a , b ", []string{"a", "b"}},
		{`"a,b",c`, []string{"a,b", "c"}},
		{`  "x y"`, []string{"x y"}},
		{"", []string{""}},
		{"a,", []string{"a", ""}},
	}
	for _, tt := range tests {
		if got := splitInput(tt.line); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitInput(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestParseInput(t *testing.T) {
	vars := []statements.Variable{{Name: "A!"}, {Name: "B$"}}
	vals, ok := parseInput("2.5, hello", vars)
	if !ok {
		t.Fatal("parseInput rejected valid input")
	}
	if vals[0] != values.Single(2.5) {
		t.Errorf("A = %v, want 2.5", vals[0])
	}
	if vals[1] != values.String("hello") {
		t.Errorf("B$ = %v, want hello", vals[1])
	}

	bad := []string{"x,y", "1", "1,2,3"}
	for _, line := range bad {
		if _, ok := parseInput(line, vars); ok {
			t.Errorf("parseInput(%q) accepted", line)
		}
	}

	// an empty numeric field reads as zero
	vals, ok = parseInput(",s", vars)
	if !ok || vals[0] != values.Integer(0) {
		t.Errorf("parseInput(\",s\") = %v, %v; want zero", vals, ok)
	}
}

// ---------------------------------------------------------------------------
// PRINT USING
// ---------------------------------------------------------------------------

func using(format string, vals ...values.Value) string {
	u := &usingFormat{pattern: format}
	var out strings.Builder
	for _, v := range vals {
		u.apply(&out, v)
	}
	u.finish(&out)
	return out.String()
}

func TestUsingNumbers(t *testing.T) {
	tests := []struct {
		format string
		v      values.Value
		want   string
	}{
		{"##.##", values.Single(3.14159), " 3.14"},
		{"##.##", values.Single(-1.5), "-1.50"},
		{"+##", values.Integer(5), " +5"},
		{"##-", values.Integer(-5), " 5-"},
		{"##-", values.Integer(5), " 5 "},
		{"#,###", values.Integer(1234), "1,234"},
		{"$$##", values.Integer(12), " $12"},
		{"**##", values.Integer(5), "***5"},
		{"**$##.##", values.Single(2.5), "***$2.50"},
		{"##", values.Integer(123), "%123"},
		{".##", values.Single(0.5), ".50"},
		{"##.##^^^^", values.Single(1234.5), " 1.23E+03"},
		{"X=##", values.Integer(5), "X= 5"},
		{"_###", values.Integer(5), "# 5"},
		{"(###)", values.Integer(42), "( 42)"},
	}
	for _, tt := range tests {
		if got := using(tt.format, tt.v); got != tt.want {
			t.Errorf("USING %q; %v = %q, want %q", tt.format, tt.v, got, tt.want)
		}
	}
}

func TestUsingStrings(t *testing.T) {
	tests := []struct {
		format string
		v      string
		want   string
	}{
		{"!", "HELLO", "H"},
		{"!", "", " "},
		{`\  \`, "HELLO", "HELL"},
		{`\  \`, "HI", "HI  "},
		{"&", "HI", "HI"},
		{"[&]", "HI", "[HI]"},
	}
	for _, tt := range tests {
		if got := using(tt.format, values.String(tt.v)); got != tt.want {
			t.Errorf("USING %q; %q = %q, want %q", tt.format, tt.v, got, tt.want)
		}
	}
}

func TestUsingReusesFormat(t *testing.T) {
	if got := using("#", values.Integer(1), values.Integer(2), values.Integer(3)); got != "123" {
		t.Errorf("got %q, want %q", got, "123")
	}
	if got := using("A#B", values.Integer(1), values.Integer(2)); got != "A1BA2B" {
		t.Errorf("got %q, want %q", got, "A1BA2B")
	}
}

func TestUsingErrors(t *testing.T) {
	tests := []struct {
		format string
		v      values.Value
		code   int
	}{
		{"##", values.String("A"), runerr.TypeMismatch},
		{"!", values.Integer(1), runerr.TypeMismatch},
		{"ABC", values.Integer(1), runerr.IllegalFunctionCall},
	}
	for _, tt := range tests {
		err := runerr.Catch(func() { using(tt.format, tt.v) })
		e, ok := runerr.AsError(err)
		if !ok || e.Code != tt.code {
			t.Errorf("USING %q; %v error = %v, want code %d", tt.format, tt.v, err, tt.code)
		}
	}
}

// ---------------------------------------------------------------------------
// Console
// ---------------------------------------------------------------------------

func TestConsoleColumns(t *testing.T) {
	var out strings.Builder
	c := NewConsole(strings.NewReader(""), &out)
	c.width = 30
	c.WriteString("AB")
	c.NextZone()
	if c.Col() != 14 {
		t.Errorf("Col after NextZone = %d, want 14", c.Col())
	}
	// no room for a second zone in 30 columns
	c.NextZone()
	if c.Col() != 0 {
		t.Errorf("Col after full line = %d, want 0", c.Col())
	}
	c.Tab(5)
	if c.Col() != 4 {
		t.Errorf("Col after TAB(5) = %d, want 4", c.Col())
	}
	c.Tab(2)
	if c.Col() != 1 {
		t.Errorf("Col after TAB(2) past the column = %d, want 1", c.Col())
	}
	c.Item(strings.Repeat("x", 30))
	if got := out.String(); !strings.HasSuffix(got, "\n"+strings.Repeat("x", 30)) {
		t.Errorf("long item did not start a new line: %q", got)
	}
}

func TestConsoleReadLine(t *testing.T) {
	c := NewConsole(strings.NewReader("one\r\ntwo"), &strings.Builder{})
	if got := c.ReadLine(); got != "one" {
		t.Errorf("ReadLine = %q, want one", got)
	}
	if got := c.ReadLine(); got != "two" {
		t.Errorf("ReadLine = %q, want two", got)
	}
	err := runerr.Catch(func() { c.ReadLine() })
	if _, ok := err.(*runerr.Exit); !ok {
		t.Errorf("ReadLine at end = %v, want exit", err)
	}
}
