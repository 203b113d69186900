package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
)

func TestCommand(t *testing.T) {
	ev := newEvent("PEN")
	ev.Trigger()
	if ev.Triggered {
		t.Error("disabled event was triggered")
	}
	ev.Command(tokens.ON)
	ev.Trigger()
	if !ev.Enabled || !ev.Triggered {
		t.Errorf("after ON and trigger = %+v", ev)
	}
	ev.Command(tokens.STOP)
	if !ev.Stopped || !ev.Triggered {
		t.Errorf("STOP should keep the trigger: %+v", ev)
	}
	ev.Command(tokens.OFF)
	if ev.Enabled || ev.Triggered {
		t.Errorf("after OFF = %+v", ev)
	}
}

func TestCheckBreaksOnCancel(t *testing.T) {
	e := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runerr.Catch(func() { e.Check(ctx) })
	var b *runerr.Break
	if !errors.As(err, &b) {
		t.Fatalf("Check on cancelled context = %v, want Break", err)
	}
	if b.Stop {
		t.Error("cancellation reported as STOP")
	}
}

func TestTimer(t *testing.T) {
	now := time.Unix(0, 0)
	e := New(WithClock(func() time.Time { return now }))
	e.Timer.Command(tokens.ON)
	e.SetTimer(2)
	now = now.Add(time.Second)
	e.Check(context.Background())
	if e.Timer.Triggered {
		t.Error("timer fired early")
	}
	now = now.Add(time.Second)
	e.Check(context.Background())
	if !e.Timer.Triggered {
		t.Error("timer did not fire after its period")
	}
}

func TestPostedKeys(t *testing.T) {
	e := New()
	e.Key(1).Command(tokens.ON)
	e.Post(Key{Scancode: 59})
	e.Post(Key{Char: "a", Scancode: 30})
	e.Check(context.Background())
	if !e.Key(1).Triggered {
		t.Error("F1 did not trigger KEY(1)")
	}
	if got := e.Inkey(); got != "a" {
		t.Errorf("Inkey = %q, want a", got)
	}
	if got := e.Inkey(); got != "" {
		t.Errorf("empty Inkey = %q", got)
	}
}

func TestUserKey(t *testing.T) {
	e := New()
	e.DefineKey(15, 30)
	e.Key(15).Command(tokens.ON)
	e.Post(Key{Char: "a", Scancode: 30})
	e.Check(nil)
	if !e.Key(15).Triggered {
		t.Error("user key 15 did not trigger")
	}
	if got := e.Inkey(); got != "" {
		t.Errorf("trapped key reached the buffer: %q", got)
	}
}

func TestEnabledOrder(t *testing.T) {
	e := New()
	e.Pen.Command(tokens.ON)
	e.Timer.Command(tokens.ON)
	e.Key(3).Command(tokens.ON)
	got := e.Enabled()
	if len(got) != 3 || got[0] != e.Timer || got[1] != e.Keys[2] || got[2] != e.Pen {
		t.Errorf("Enabled order wrong: %v", got)
	}
	e.Reset()
	if len(e.Enabled()) != 0 {
		t.Error("Reset left events enabled")
	}
}

func TestSelectionRanges(t *testing.T) {
	e := New()
	for _, fn := range []func(){
		func() { e.Key(0) },
		func() { e.Key(21) },
		func() { e.ComPort(3) },
		func() { e.Trigger(3) },
		func() { e.SetTimer(0) },
	} {
		err := runerr.Catch(fn)
		if c, ok := runerr.AsError(err); !ok || c.Code != runerr.IllegalFunctionCall {
			t.Errorf("out of range selection error = %v, want Illegal function call", err)
		}
	}
}

func TestStateRoundTrip(t *testing.T) {
	e := New()
	e.Timer.Command(tokens.ON)
	e.Timer.Gosub = 500
	e.Timer.Trigger()
	e.Keys[2].Command(tokens.STOP)
	e.SetTimer(2)
	e.DefineKey(15, 30)
	e.SetSuspendAll(true)

	st := e.State()
	f := New()
	f.SetState(st)

	if !f.Timer.Enabled || !f.Timer.Triggered || f.Timer.Gosub != 500 {
		t.Errorf("restored timer = %+v", f.Timer)
	}
	if !f.Keys[2].Stopped {
		t.Errorf("restored KEY(3) = %+v", f.Keys[2])
	}
	if !f.SuspendAll() {
		t.Error("suspension not restored")
	}
	if f.period != 2*time.Second {
		t.Errorf("period = %v, want 2s", f.period)
	}
	if f.keyDefs[14] != 30 {
		t.Errorf("key 15 scancode = %d, want 30", f.keyDefs[14])
	}
}
