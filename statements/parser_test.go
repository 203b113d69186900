package statements

import (
	"reflect"
	"testing"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/expr"
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokenise"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

type testEnv struct {
	mem *memory.Memory
}

func (e *testEnv) Memory() *memory.Memory      { return e.mem }
func (e *testEnv) LastStored() int             { return 40 }
func (e *testEnv) Err() int                    { return 0 }
func (e *testEnv) Erl() int                    { return 0 }
func (e *testEnv) Inkey() string               { return "" }
func (e *testEnv) Program() *codestream.Stream { return codestream.New("") }

func newParser(syntax Syntax) *Parser {
	env := &testEnv{mem: memory.New()}
	return New(expr.New(env), env, syntax)
}

// record registers a handler on key that drains and keeps its arguments.
func record(p *Parser, key string) *[]any {
	var got []any
	p.Register(key, func(a *Args) { got = a.Drain() })
	return &got
}

func parse(p *Parser, text string) (*codestream.Stream, error) {
	s := codestream.New(tokenise.Tokenise(text))
	return s, runerr.Catch(func() { p.ParseStatement(s) })
}

func code(err error) int {
	if e, ok := runerr.AsError(err); ok {
		return e.Code
	}
	return 0
}

func TestGrammars(t *testing.T) {
	tests := []struct {
		key  string
		text string
		want []any
	}{
		{tokens.PRINT, `PRINT 1;"A",`, []any{nil,
			PrintItem{Value: values.Integer(1)}, PrintItem{Sep: ";"},
			PrintItem{Value: values.String("A")}, PrintItem{Sep: ","}}},
		{tokens.PRINT, `PRINT #2, TAB(5)`, []any{2, PrintItem{Sep: tokens.TAB, Value: 5}}},
		{tokens.PRINT, `PRINT USING "##";7`, []any{nil,
			PrintItem{Sep: tokens.USING, Value: "##"}, PrintItem{Value: values.Integer(7)}}},
		{tokens.LET, `A=2`, []any{Variable{Name: "A!"}, values.Integer(2)}},
		{tokens.LET, `LET B%(1,2)=3`, []any{Variable{Name: "B%", Indices: []int{1, 2}}, values.Integer(3)}},
		{tokens.FOR, `FOR I=1 TO 3`, []any{"I!", values.Integer(1), values.Integer(3), nil}},
		{tokens.FOR, `FOR I%=10 TO 1 STEP -1`, []any{"I%", values.Integer(10), values.Integer(1), values.Integer(-1)}},
		{tokens.NEXT, `NEXT I,J`, []any{"I!", "J!"}},
		{tokens.NEXT, `NEXT`, []any{nil}},
		{tokens.GOTO, `GOTO 100`, []any{100}},
		{tokens.RETURN, `RETURN`, []any{nil}},
		{tokens.RESTORE, `RESTORE 30`, []any{30}},
		{tokens.RESUME, `RESUME NEXT`, []any{tokens.NEXT}},
		{tokens.RESUME, `RESUME`, []any{nil}},
		{tokens.RUN, `RUN "PROG",R`, []any{values.String("PROG"), true}},
		{tokens.RUN, `RUN`, []any{nil, nil}},
		{tokens.ON, `ON 2 GOSUB 10,20`, []any{values.Integer(2), tokens.GOSUB, 10, 20}},
		{tokens.ON + tokens.ERROR, `ON ERROR GOTO 100`, []any{100}},
		{tokens.ON + "\xfe", `ON TIMER(5) GOSUB 200`, []any{tokens.TIMER, values.Integer(5), 200}},
		{tokens.ON + "\xff", `ON PEN GOSUB 300`, []any{tokens.PEN, nil, 300}},
		{tokens.KEY + "(", `KEY(3) STOP`, []any{values.Integer(3), tokens.STOP}},
		{tokens.KEY + tokens.OFF, `KEY OFF`, []any{tokens.OFF}},
		{tokens.KEY, `KEY 1,"RUN"`, []any{values.Integer(1), values.String("RUN")}},
		{tokens.TIMER, `TIMER ON`, []any{tokens.ON}},
		{tokens.DIM, `DIM A(10),B$(2,2)`, []any{Variable{Name: "A!", Indices: []int{10}},
			Variable{Name: "B$", Indices: []int{2, 2}}}},
		{tokens.DEFINT, `DEFINT A-C,X`, []any{LetterRange{Start: 'A', Stop: 'C'}, LetterRange{Start: 'X'}}},
		{tokens.LIST, `LIST 10-20`, []any{LineRange{From: 10, To: 20}, nil}},
		{tokens.LIST, `LIST .`, []any{LineRange{From: 40, To: 40}, nil}},
		{tokens.DELETE, `DELETE -50`, []any{LineRange{From: -1, To: 50}}},
		{tokens.INPUT, `INPUT "X";A`, []any{nil, Prompt{Newline: true, Text: "X", Following: ";"},
			Variable{Name: "A!"}}},
		{tokens.INPUT, `INPUT #1,A$`, []any{1, Variable{Name: "A$"}}},
		{tokens.LINE + tokens.INPUT, `LINE INPUT ;A$`, []any{nil, Prompt{Following: ";"}, Variable{Name: "A$"}}},
		{tokens.OPTION, `OPTION BASE 1`, []any{1}},
		{tokens.SWAP, `SWAP A,B`, []any{Variable{Name: "A!"}, Variable{Name: "B!"}}},
		{tokens.ERASE, `ERASE A,B`, []any{"A!", "B!"}},
		{tokens.WRITE, `WRITE 1,"A"`, []any{nil, values.Integer(1), values.String("A")}},
		{tokens.LOCATE, `LOCATE ,5`, []any{nil, 5}},
		{tokens.SCREEN, `SCREEN 1`, []any{1, nil, nil, nil, nil}},
		{tokens.COLOR, `COLOR 7,,1`, []any{7, nil, 1}},
		{tokens.OPEN, `OPEN "O",#1,"FILE"`, []any{1, values.String("FILE"), "O", nil, nil, nil}},
		{tokens.OPEN, `OPEN "FILE" FOR INPUT AS #2 LEN=128`, []any{2, values.String("FILE"), "I",
			values.Integer(128), nil, nil}},
		{tokens.OPEN, `OPEN "FILE" FOR OUTPUT AS 3`, []any{3, values.String("FILE"), "O", nil, nil, nil}},
		{tokens.CLOSE, `CLOSE #1,2`, []any{1, 2}},
		{tokens.PSET, `PSET STEP(1,2),3`, []any{Coord{X: 1, Y: 2, Step: true}, values.Integer(3)}},
		{tokens.LINE, `LINE (0,0)-(10,10),1,BF`, []any{Coord{}, Coord{X: 10, Y: 10}, values.Integer(1), "BF", nil}},
		{tokens.CIRCLE, `CIRCLE (5,5),3`, []any{Coord{X: 5, Y: 5}, values.Integer(3), nil, nil, nil, nil}},
		{tokens.COMMON, `COMMON A,B()`, []any{CommonName{Name: "A!"}, CommonName{Name: "B!", Array: true}}},
		{tokens.MID, `MID$(A$,2)="X"`, []any{Variable{Name: "A$"}, 2, nil, values.String("X")}},
		{tokens.RENUM, `RENUM 100`, []any{100, nil, 10}},
		{tokens.CHAIN, `CHAIN MERGE "B",1000,ALL`, []any{true, values.String("B"), values.Integer(1000), true, nil}},
		{tokens.SAVE, `SAVE "P",a`, []any{values.String("P"), "A"}},
		{tokens.WIDTH, `WIDTH 40`, []any{nil, values.Integer(40), nil}},
		{"_DEBUG", `_DEBUG "X"`, []any{values.String("X")}},
	}
	for _, tt := range tests {
		p := newParser(Advanced)
		got := record(p, tt.key)
		if _, err := parse(p, tt.text); err != nil {
			t.Errorf("%s: %v", tt.text, err)
			continue
		}
		if !reflect.DeepEqual(*got, tt.want) {
			t.Errorf("%s args = %#v, want %#v", tt.text, *got, tt.want)
		}
	}
}

func TestGrammarErrors(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{`FOR I=1`, runerr.SyntaxError},
		{`FOR I=1 TO`, runerr.MissingOperand},
		{`GOTO X`, runerr.SyntaxError},
		{`PRINT USING "";1`, runerr.IllegalFunctionCall},
		{`PRINT USING "#";`, runerr.MissingOperand},
		{`COLOR`, runerr.IllegalFunctionCall},
		{`COLOR 1,`, runerr.MissingOperand},
		{`SCREEN 1,`, runerr.MissingOperand},
		{`RESTORE X`, runerr.UndefinedLineNumber},
		{`OPEN "X",1,"F"`, runerr.BadFileMode},
		{`OPTION BASE 2`, runerr.SyntaxError},
		{`_NOSUCH`, runerr.SyntaxError},
		{`CLOSE #300`, runerr.IllegalFunctionCall},
		{`A`, runerr.SyntaxError},
		{`)`, runerr.SyntaxError},
		{`DEFINT 1`, runerr.SyntaxError},
		{`LINE (1,1)-(2,2),`, runerr.MissingOperand},
	}
	for _, tt := range tests {
		_, err := parse(newParser(Advanced), tt.text)
		if got := code(err); got != tt.want {
			t.Errorf("%s error = %d (%v), want %d", tt.text, got, err, tt.want)
		}
	}
}

func TestEmptyStatement(t *testing.T) {
	for _, text := range []string{"", "   ", ":"} {
		if _, err := parse(newParser(Advanced), text); err != nil {
			t.Errorf("%q: %v", text, err)
		}
	}
}

func TestEndCheckedBeforeHandler(t *testing.T) {
	p := newParser(Advanced)
	ran := false
	p.Register(tokens.SYSTEM, func(a *Args) { a.Drain(); ran = true })
	_, err := parse(p, "SYSTEM LAH")
	if code(err) != runerr.SyntaxError || ran {
		t.Errorf("SYSTEM LAH: err %v, handler ran %v", err, ran)
	}

	ran = false
	p.Register(tokens.TRON, func(a *Args) { a.Drain(); ran = true })
	_, err = parse(p, "TRON LAH")
	if code(err) != runerr.SyntaxError || !ran {
		t.Errorf("TRON LAH: err %v, handler ran %v", err, ran)
	}
}

func TestUnregisteredStatementDrains(t *testing.T) {
	p := newParser(Advanced)
	s, err := parse(p, `DATA 1,2:PRINT`)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Peek(1); got != ":" {
		t.Errorf("DATA stopped before %q, want the separator", got)
	}
	if _, err := parse(p, `BEEP 1`); code(err) != runerr.SyntaxError {
		t.Errorf("BEEP 1 error = %v, want Syntax error", err)
	}
}

func TestIfPullsJumpAfterDecision(t *testing.T) {
	p := newParser(Advanced)
	var jump any
	var cur *codestream.Stream
	p.Register(tokens.IF, func(a *Args) {
		if values.IsZero(a.Value()) {
			cur.SkipToElse()
		}
		jump = a.Next()
	})
	for _, tt := range []struct {
		text string
		want any
	}{
		{"IF 1 THEN 10 ELSE 20", 10},
		{"IF 0 THEN 10 ELSE 20", 20},
		{"IF 0 THEN 10", nil},
		{"IF 0 THEN IF 1 THEN 5 ELSE 6 ELSE 7", 7},
	} {
		cur = codestream.New(tokenise.Tokenise(tt.text))
		if err := runerr.Catch(func() { p.ParseStatement(cur) }); err != nil {
			t.Errorf("%s: %v", tt.text, err)
			continue
		}
		if jump != tt.want {
			t.Errorf("%s jumps to %v, want %v", tt.text, jump, tt.want)
		}
	}
}

func TestHandlerStopsEarly(t *testing.T) {
	p := newParser(Advanced)
	var cur *codestream.Stream
	var target any
	p.Register(tokens.ON, func(a *Args) {
		a.NextN(2)
		target = a.Next()
		// a jump moves the cursor off the statement
		cur.SeekEnd()
	})
	cur = codestream.New(tokenise.Tokenise("ON 1 GOTO 10,20,X"))
	if err := runerr.Catch(func() { p.ParseStatement(cur) }); err != nil {
		t.Fatalf("unpulled arguments were lexed: %v", err)
	}
	if target != 10 {
		t.Errorf("target = %v, want 10", target)
	}
}

func TestSyntaxDialects(t *testing.T) {
	p := newParser(PCjr)
	got := record(p, tokens.BEEP)
	if _, err := parse(p, "BEEP ON"); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(*got, []any{tokens.ON}) {
		t.Errorf("pcjr BEEP ON args = %v", *got)
	}
	if _, err := parse(newParser(Advanced), "BEEP ON"); code(err) != runerr.SyntaxError {
		t.Errorf("advanced BEEP ON error = %v, want Syntax error", err)
	}
	if _, err := parse(newParser(Tandy), "NOISE 1,2,3"); err != nil {
		t.Errorf("tandy NOISE: %v", err)
	}
	if _, err := parse(newParser(Advanced), "NOISE 1,2,3"); code(err) != runerr.SyntaxError {
		t.Errorf("advanced NOISE error = %v, want Syntax error", err)
	}

	if s, err := ParseSyntax("Tandy"); err != nil || s != Tandy {
		t.Errorf("ParseSyntax(Tandy) = %v, %v", s, err)
	}
	if _, err := ParseSyntax("c64"); err == nil {
		t.Error("ParseSyntax accepted an unknown dialect")
	}
}

func TestArgsOf(t *testing.T) {
	a := Of(values.Integer(1), nil, "x")
	if v := a.Value(); v != values.Integer(1) {
		t.Errorf("Value = %v", v)
	}
	if v := a.Value(); v != nil {
		t.Errorf("omitted Value = %v", v)
	}
	if s, ok := Take[string](a); !ok || s != "x" {
		t.Errorf("Take = %q, %v", s, ok)
	}
	if _, ok := a.Pull(); ok {
		t.Error("Pull past the end reported ok")
	}
}
