package runerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{SyntaxError, "Syntax error"},
		{NextWithoutFor, "NEXT without FOR"},
		{WendWithoutWhile, "WEND without WHILE"},
		{250, "Unprintable error"},
	}
	for _, tt := range tests {
		if got := Message(tt.code); got != tt.want {
			t.Errorf("Message(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		code int
		want Category
	}{
		{SyntaxError, Syntax},
		{ForWithoutNext, ControlFlow},
		{NoResume, TrapResume},
		{FileNotFound, Device},
		{DivisionByZero, Runtime},
	}
	for _, tt := range tests {
		if got := New(tt.code).Category(); got != tt.want {
			t.Errorf("Category(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestCatch(t *testing.T) {
	err := Catch(func() { Raise(DivisionByZero) })
	e, ok := AsError(err)
	if !ok {
		t.Fatalf("Catch returned %T, want *Error", err)
	}
	if e.Code != DivisionByZero || e.Pos != NoPos {
		t.Errorf("got %+v, want code 11 with no position", e)
	}

	if err := Catch(func() {}); err != nil {
		t.Errorf("Catch(no panic) = %v, want nil", err)
	}

	err = Catch(func() { panic(&Break{Stop: true}) })
	if !IsSignal(err) {
		t.Errorf("IsSignal(%v) = false, want true", err)
	}
}

func TestCatchRepanicsForeignValues(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Errorf("recovered %v, want boom", r)
		}
	}()
	_ = Catch(func() { panic("boom") })
	t.Error("Catch swallowed a foreign panic")
}

func TestRethrow(t *testing.T) {
	wrapped := fmt.Errorf("store: load: %w", New(FileNotFound))
	err := Catch(func() { Rethrow(wrapped) })
	if e, ok := AsError(err); !ok || e.Code != FileNotFound {
		t.Errorf("Rethrow(wrapped) gave %v, want File not found", err)
	}

	err = Catch(func() { Rethrow(errors.New("disk on fire")) })
	if e, ok := AsError(err); !ok || e.Code != IllegalFunctionCall {
		t.Errorf("Rethrow(foreign) gave %v, want Illegal function call", err)
	}

	err = Catch(func() { Rethrow(fmt.Errorf("x: %w", &Exit{})) })
	var x *Exit
	if !errors.As(err, &x) {
		t.Errorf("Rethrow(exit) gave %v, want *Exit", err)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(New(SyntaxError), 20); got != "Syntax error in 20" {
		t.Errorf("Describe = %q", got)
	}
	if got := Describe(New(SyntaxError), 65535); got != "Syntax error" {
		t.Errorf("Describe(direct) = %q", got)
	}
}

func TestRangeCheck(t *testing.T) {
	if err := Catch(func() { RangeCheck(0, 255, 255) }); err != nil {
		t.Errorf("RangeCheck(255) = %v, want nil", err)
	}
	if err := Catch(func() { RangeCheck(0, 255, 256) }); err == nil {
		t.Error("RangeCheck(256) succeeded, want Illegal function call")
	}
}
