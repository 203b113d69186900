package expr

import (
	"testing"
	"time"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokenise"
	"github.com/chazu/gwbasic/values"
)

type testEnv struct {
	mem     *memory.Memory
	program string
	keys    []string
}

func newEnv() *testEnv {
	return &testEnv{mem: memory.New()}
}

func (t *testEnv) Memory() *memory.Memory { return t.mem }
func (t *testEnv) Err() int               { return 11 }
func (t *testEnv) Erl() int               { return 65535 }

func (t *testEnv) Inkey() string {
	if len(t.keys) == 0 {
		return ""
	}
	k := t.keys[0]
	t.keys = t.keys[1:]
	return k
}

func (t *testEnv) Program() *codestream.Stream {
	return codestream.New(t.program)
}

func eval(t *testing.T, e *Evaluator, text string) values.Value {
	t.Helper()
	var v values.Value
	if err := runerr.Catch(func() { v = e.Parse(codestream.New(tokenise.Tokenise(text))) }); err != nil {
		t.Fatalf("eval(%q): %v", text, err)
	}
	return v
}

func evalErr(e *Evaluator, text string) int {
	err := runerr.Catch(func() { e.Parse(codestream.New(tokenise.Tokenise(text))) })
	if re, ok := runerr.AsError(err); ok {
		return re.Code
	}
	return 0
}

func TestArithmeticPrecedence(t *testing.T) {
	e := New(newEnv())
	tests := []struct {
		text string
		want values.Value
	}{
		{"1+2*3", values.Integer(7)},
		{"(1+2)*3", values.Integer(9)},
		{"-2^2", values.Single(-4)},
		{"2^-1", values.Single(0.5)},
		{"2^3^2", values.Single(64)},
		{"7\\2", values.Integer(3)},
		{"7 MOD 3", values.Integer(1)},
		{"10-4-3", values.Integer(3)},
		{"1/4", values.Single(0.25)},
		{"2*-3", values.Integer(-6)},
		{"1.5#+1", values.Double(2.5)},
	}
	for _, tt := range tests {
		if got := eval(t, e, tt.text); got != tt.want {
			t.Errorf("%s = %v (%T), want %v (%T)", tt.text, got, got, tt.want, tt.want)
		}
	}
}

func TestRelationalAndLogical(t *testing.T) {
	e := New(newEnv())
	tests := []struct {
		text string
		want values.Value
	}{
		{"1<2", values.True},
		{"2<=2", values.True},
		{"2=<1", values.False},
		{"1<>1", values.False},
		{"1><2", values.True},
		{"3>=4", values.False},
		{`"A"<"B"`, values.True},
		{"NOT 0", values.Integer(-1)},
		{"NOT 1=2", values.True},
		{"1 AND 3", values.Integer(1)},
		{"1 OR 2", values.Integer(3)},
		{"5 XOR 1", values.Integer(4)},
		{"0 IMP 0", values.Integer(-1)},
		{"1<2 AND 2<3", values.True},
	}
	for _, tt := range tests {
		if got := eval(t, e, tt.text); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestVariablesAndArrays(t *testing.T) {
	env := newEnv()
	env.mem.Set("A", values.Integer(4))
	env.mem.SetVariable("B%", []int{2}, values.Integer(7))
	e := New(env)
	if got := eval(t, e, "A*B%(1+1)"); got != values.Single(28) {
		t.Errorf("A*B%%(2) = %v, want 28", got)
	}
	if got := eval(t, e, "ERR"); got != values.Integer(11) {
		t.Errorf("ERR = %v, want 11", got)
	}
	if got := eval(t, e, "ERL"); got != values.Single(65535) {
		t.Errorf("ERL = %v, want 65535", got)
	}
}

func TestStringFunctions(t *testing.T) {
	e := New(newEnv())
	tests := []struct {
		text string
		want values.Value
	}{
		{`LEFT$("HELLO",2)`, values.String("HE")},
		{`RIGHT$("HELLO",3)`, values.String("LLO")},
		{`MID$("HELLO",2,3)`, values.String("ELL")},
		{`MID$("HELLO",9)`, values.String("")},
		{`LEN("ABC")`, values.Integer(3)},
		{`ASC("A")`, values.Integer(65)},
		{`CHR$(66)`, values.String("B")},
		{`STR$(5)`, values.String(" 5")},
		{`VAL(" 12.5")`, values.Single(12.5)},
		{`VAL("X")`, values.Single(0)},
		{`STRING$(3,"*")`, values.String("***")},
		{`SPACE$(2)`, values.String("  ")},
		{`INSTR("ABCABC","C")`, values.Integer(3)},
		{`INSTR(4,"ABCABC","C")`, values.Integer(6)},
		{`HEX$(255)`, values.String("FF")},
		{`HEX$(-1)`, values.String("FFFF")},
		{`OCT$(8)`, values.String("10")},
		{`CVI(MKI$(-2))`, values.Integer(-2)},
		{`CVS(MKS$(1.5))`, values.Single(1.5)},
		{`"A"+"B"`, values.String("AB")},
	}
	for _, tt := range tests {
		if got := eval(t, e, tt.text); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestNumericFunctions(t *testing.T) {
	e := New(newEnv())
	tests := []struct {
		text string
		want values.Value
	}{
		{"ABS(-3)", values.Integer(3)},
		{"INT(-2.5)", values.Single(-3)},
		{"FIX(-2.5)", values.Single(-2)},
		{"SGN(-7)", values.Integer(-1)},
		{"SQR(16)", values.Single(4)},
		{"CINT(2.5)", values.Integer(3)},
		{"CDBL(1)", values.Double(1)},
	}
	for _, tt := range tests {
		if got := eval(t, e, tt.text); got != tt.want {
			t.Errorf("%s = %v (%T), want %v (%T)", tt.text, got, got, tt.want, tt.want)
		}
	}
}

func TestErrors(t *testing.T) {
	e := New(newEnv())
	tests := []struct {
		text string
		want int
	}{
		{"1/0", runerr.DivisionByZero},
		{"1+", runerr.MissingOperand},
		{"", runerr.MissingOperand},
		{`1+"A"`, runerr.TypeMismatch},
		{"SQR(-1)", runerr.IllegalFunctionCall},
		{`ASC("")`, runerr.IllegalFunctionCall},
		{"FNX(1)", runerr.UndefinedUserFunction},
		{"(1", runerr.SyntaxError},
	}
	for _, tt := range tests {
		if got := evalErr(e, tt.text); got != tt.want {
			t.Errorf("%q error %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestUserFunction(t *testing.T) {
	env := newEnv()
	body := tokenise.Tokenise("X*X+Y")
	env.program = "\x00\x00\x00" + body
	env.mem.DefFn(memory.UserFunction{Name: "SQ", Params: []string{"X"}, Body: 3})
	env.mem.Set("X", values.Integer(100))
	env.mem.Set("Y", values.Integer(1))
	e := New(env)
	if got := eval(t, e, "FNSQ(3)"); got != values.Single(10) {
		t.Errorf("FNSQ(3) = %v, want 10", got)
	}
	if got := env.mem.Get("X"); got != values.Single(100) {
		t.Errorf("X after call = %v, want 100", got)
	}
	if c := evalErr(e, "FNSQ(1,2)"); c != runerr.SyntaxError {
		t.Errorf("wrong arity error %d, want Syntax error", c)
	}
}

func TestParseOptional(t *testing.T) {
	e := New(newEnv())
	s := codestream.New(":")
	if _, ok := e.ParseOptional(s); ok {
		t.Error("ParseOptional found an expression at a separator")
	}
	s = codestream.New(tokenise.Tokenise("1,2"))
	v, ok := e.ParseOptional(s)
	if !ok || v != values.Integer(1) || s.Peek(1) != "," {
		t.Errorf("ParseOptional = %v, %v, stopped before %q", v, ok, s.Peek(1))
	}
}

func TestRndSequence(t *testing.T) {
	a, b := NewRandomiser(), NewRandomiser()
	for range 5 {
		if a.Rnd(values.Integer(1)) != b.Rnd(values.Integer(1)) {
			t.Fatal("generators in the same state diverged")
		}
	}
	last := a.Rnd(values.Integer(1))
	if again := a.Rnd(values.Integer(0)); again != last {
		t.Errorf("RND(0) = %v, want last value %v", again, last)
	}
	a.Randomize(values.Integer(42))
	b.Randomize(values.Integer(42))
	if a.Rnd(values.Integer(1)) != b.Rnd(values.Integer(1)) {
		t.Error("RANDOMIZE with the same seed gave different sequences")
	}
	v := float32(a.Rnd(values.Integer(1)).(values.Single))
	if v < 0 || v >= 1 {
		t.Errorf("RND out of range: %v", v)
	}
}

func TestTimer(t *testing.T) {
	e := New(newEnv())
	e.SetClock(func() time.Time { return time.Date(2024, 1, 1, 1, 0, 30, 0, time.UTC) })
	if got := eval(t, e, "TIMER"); got != values.Single(3630) {
		t.Errorf("TIMER = %v, want 3630", got)
	}
}
