package session

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/chazu/gwbasic/config"
	"github.com/chazu/gwbasic/events"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/snapshot"
	"github.com/chazu/gwbasic/store"
)

// ---------------------------------------------------------------------------
// Scenarios
// ---------------------------------------------------------------------------

type scenario struct {
	Name    string   `yaml:"name"`
	Library bool     `yaml:"library"`
	Stdin   string   `yaml:"stdin"`
	Input   []string `yaml:"input"`
	Output  string   `yaml:"output"`
}

func loadScenarios(t *testing.T) []scenario {
	t.Helper()
	f, err := os.Open("testdata/scenarios.yaml")
	if err != nil {
		t.Fatalf("opening scenarios: %v", err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var out []scenario
	if err := dec.Decode(&out); err != nil {
		t.Fatalf("decoding scenarios: %v", err)
	}
	return out
}

func openLibrary(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// feed types lines at the prompt until the input runs out or SYSTEM.
func feed(t *testing.T, s *Session, lines ...string) {
	t.Helper()
	for _, line := range lines {
		var exit *runerr.Exit
		if err := s.Execute(context.Background(), line); errors.As(err, &exit) {
			return
		}
	}
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t) {
		t.Run(sc.Name, func(t *testing.T) {
			var out strings.Builder
			opts := []Option{WithConsole(strings.NewReader(sc.Stdin), &out)}
			if sc.Library {
				opts = append(opts, WithLibrary(openLibrary(t)))
			}
			feed(t, New(opts...), sc.Input...)
			if got := out.String(); got != sc.Output {
				t.Errorf("output = %q, want %q", got, sc.Output)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Direct mode
// ---------------------------------------------------------------------------

func TestExecuteReturnsErrors(t *testing.T) {
	s := New()
	err := s.Execute(context.Background(), "GOTO 100")
	e, ok := runerr.AsError(err)
	if !ok || e.Code != runerr.UndefinedLineNumber {
		t.Errorf("Execute error = %v, want Undefined line number", err)
	}
	if err := s.Execute(context.Background(), "A=1"); err != nil {
		t.Errorf("Execute(A=1) = %v", err)
	}
}

func TestSystemExits(t *testing.T) {
	s := New()
	var exit *runerr.Exit
	if err := s.Execute(context.Background(), "SYSTEM"); !errors.As(err, &exit) {
		t.Errorf("SYSTEM = %v, want exit", err)
	}
}

func TestInputAtEndOfStdinExits(t *testing.T) {
	s := New()
	var exit *runerr.Exit
	if err := s.Execute(context.Background(), "INPUT A"); !errors.As(err, &exit) {
		t.Errorf("INPUT with no stdin = %v, want exit", err)
	}
}

func TestEditClearsVariables(t *testing.T) {
	var out strings.Builder
	s := New(WithConsole(strings.NewReader(""), &out))
	feed(t, s, "A=5", "10 REM", "PRINT A")
	if got := out.String(); got != " 0 \n" {
		t.Errorf("A after edit printed %q, want %q", got, " 0 \n")
	}
}

func TestCancelBreaksProgram(t *testing.T) {
	var out strings.Builder
	s := New(WithConsole(strings.NewReader(""), &out))
	feed(t, s, "10 GOTO 10")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.RunProgram(ctx, -1)
	var brk *runerr.Break
	if !errors.As(err, &brk) {
		t.Fatalf("RunProgram = %v, want break", err)
	}
	if got := out.String(); !strings.HasPrefix(got, "Break") {
		t.Errorf("output = %q, want a break message", got)
	}
}

func TestKeyList(t *testing.T) {
	var out strings.Builder
	s := New(WithConsole(strings.NewReader(""), &out))
	feed(t, s, `KEY 1,"LIST"`, `KEY 10,"RUN"+CHR$(13)`, "KEY LIST")
	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("KEY LIST printed %d lines, want 10: %q", len(lines), out.String())
	}
	if lines[0] != "F1 LIST" {
		t.Errorf("line 1 = %q, want %q", lines[0], "F1 LIST")
	}
	if lines[9] != "F10 RUN\r" {
		t.Errorf("line 10 = %q, want %q", lines[9], "F10 RUN\r")
	}
	if lines[4] != "F5 " {
		t.Errorf("line 5 = %q, want %q", lines[4], "F5 ")
	}
}

func TestKeyDefineRange(t *testing.T) {
	var out strings.Builder
	s := New(WithConsole(strings.NewReader(""), &out))
	feed(t, s, `KEY 11,"X"`)
	if got := out.String(); got != "Illegal function call\n" {
		t.Errorf("KEY 11 printed %q, want Illegal function call", got)
	}
}

// ---------------------------------------------------------------------------
// Event traps
// ---------------------------------------------------------------------------

// f1Pump presses F1 once, as soon as KEY(1) is switched on.
type f1Pump struct{ pressed bool }

func (p *f1Pump) Poll(e *events.Events) {
	if !p.pressed && e.Keys[0].Enabled {
		p.pressed = true
		e.Post(events.Key{Scancode: 59})
	}
}

func TestKeyTrap(t *testing.T) {
	var out strings.Builder
	s := New(WithConsole(strings.NewReader(""), &out), WithPump(&f1Pump{}))
	feed(t, s,
		"10 ON KEY(1) GOSUB 100",
		"20 KEY(1) ON",
		`30 PRINT "A"`,
		"40 END",
		`100 PRINT "F1"`,
		"110 RETURN",
		"RUN")
	if got := out.String(); got != "F1\nA\n" {
		t.Errorf("output = %q, want %q", got, "F1\nA\n")
	}
}

func TestOnTimerSetsPeriod(t *testing.T) {
	s := New()
	feed(t, s, "10 ON TIMER(5) GOSUB 100", "20 TIMER ON", "30 END", "100 RETURN", "RUN")
	ev := s.Events()
	if ev.Timer.Gosub != 100 || !ev.Timer.Enabled {
		t.Errorf("TIMER gosub=%d enabled=%v, want 100 and on", ev.Timer.Gosub, ev.Timer.Enabled)
	}
	if st := ev.State(); st.TimerPeriod != int64(5e9) {
		t.Errorf("TimerPeriod = %d, want 5s", st.TimerPeriod)
	}
}

func TestStrigSwitch(t *testing.T) {
	s := New()
	feed(t, s, "STRIG(2) STOP", "STRIG ON")
	if ev := s.Events().Strig[1]; !ev.Enabled || !ev.Stopped {
		t.Errorf("STRIG(2) enabled=%v stopped=%v, want both", ev.Enabled, ev.Stopped)
	}
}

// ---------------------------------------------------------------------------
// Program text
// ---------------------------------------------------------------------------

func TestLoadProgram(t *testing.T) {
	s := New()
	text := "20 PRINT 2\r\n10 PRINT 1\r\n\x1a"
	if err := s.LoadProgram(text); err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	if got, want := s.ProgramText(), "10 PRINT 1\n20 PRINT 2\n"; got != want {
		t.Errorf("ProgramText = %q, want %q", got, want)
	}
}

func TestLoadProgramRejectsDirectLines(t *testing.T) {
	s := New()
	err := s.LoadProgram("10 PRINT 1\nPRINT 2\n")
	e, ok := runerr.AsError(err)
	if !ok || e.Code != runerr.DirectInFile {
		t.Errorf("LoadProgram error = %v, want Direct statement in file", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name line 2", err)
	}
}

func TestListProgramRange(t *testing.T) {
	s := New()
	if err := s.LoadProgram("10 A=1\n20 B=2\n30 C=3\n"); err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := s.ListProgram(&b, 15, 25); err != nil {
		t.Fatal(err)
	}
	if got := b.String(); got != "20 B=2\n" {
		t.Errorf("ListProgram(15, 25) = %q, want %q", got, "20 B=2\n")
	}
}

// ---------------------------------------------------------------------------
// Snapshots
// ---------------------------------------------------------------------------

func TestSnapshotContinuesElsewhere(t *testing.T) {
	var out1 strings.Builder
	s1 := New(WithConsole(strings.NewReader(""), &out1))
	if err := s1.LoadProgram("10 A=5\n20 FOR I=1 TO 2\n30 STOP\n40 PRINT A+I;\n50 NEXT\n"); err != nil {
		t.Fatal(err)
	}
	s1.RunProgram(context.Background(), -1)
	if got := out1.String(); got != "Break in 30\n" {
		t.Fatalf("first run printed %q", got)
	}

	data, err := snapshot.Marshal(s1.Snapshot())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	st, err := snapshot.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	var out2 strings.Builder
	s2 := New(WithConsole(strings.NewReader(""), &out2))
	if err := s2.Restore(st); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	s2.Continue(context.Background())
	if got, want := out2.String(), " 6 \nBreak in 30\n"; got != want {
		t.Errorf("after CONT: %q, want %q", got, want)
	}
	out2.Reset()
	s2.Continue(context.Background())
	if got, want := out2.String(), " 7 "; got != want {
		t.Errorf("after second CONT: %q, want %q", got, want)
	}
}

func TestRestoreRejectsOtherDialect(t *testing.T) {
	st := New().Snapshot()
	st.Syntax = "pcjr"
	if err := New().Restore(st); err == nil {
		t.Error("Restore accepted a snapshot of another dialect")
	}
}

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

func TestOptionsFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Width = 40
	cfg.Session.Tron = true
	opts, err := OptionsFrom(cfg)
	if err != nil {
		t.Fatalf("OptionsFrom: %v", err)
	}
	s := New(opts...)
	if s.Console().Width() != 40 {
		t.Errorf("width = %d, want 40", s.Console().Width())
	}
	if !s.Interpreter().Tron() {
		t.Error("TRON not switched on")
	}

	cfg.Session.Syntax = "vic20"
	if _, err := OptionsFrom(cfg); err == nil {
		t.Error("OptionsFrom accepted an unknown syntax")
	}
}
