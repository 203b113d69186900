// Package events keeps the event trap table (TIMER, KEY, PEN, PLAY, COM,
// STRIG) and polls host input between statements.
//
// Host goroutines never touch the table. They post keystrokes to a buffered
// channel and cancel a context to break; the interpreter drains both from
// Check on its own goroutine.
package events

import (
	"context"
	"time"

	"github.com/tliron/commonlog"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
)

var log = commonlog.GetLogger("gwbasic.events")

// NumKeys is the number of trappable keys.
const NumKeys = 20

// postBuffer is the number of keystrokes a host may post between polls.
const postBuffer = 256

// pollInterval is the sleep between polls while a statement waits.
const pollInterval = 10 * time.Millisecond

// keyScancodes are the scancodes of trappable keys 1..14: F1..F10 and the
// cursor keys. Keys 15..20 are user defined.
var keyScancodes = []int{59, 60, 61, 62, 63, 64, 65, 66, 67, 68, 72, 75, 77, 80}

// ---------------------------------------------------------------------------
// Event
// ---------------------------------------------------------------------------

// Event is one trappable event source.
type Event struct {
	Name      string
	Enabled   bool
	Stopped   bool
	Triggered bool
	Gosub     int // target line, or -1
}

func newEvent(name string) *Event {
	return &Event{Name: name, Gosub: -1}
}

// Command applies ON, OFF or STOP.
func (e *Event) Command(cmd string) {
	switch cmd {
	case tokens.ON:
		e.Enabled, e.Stopped = true, false
	case tokens.OFF:
		e.Enabled, e.Stopped, e.Triggered = false, false, false
	case tokens.STOP:
		e.Enabled, e.Stopped = true, true
	default:
		runerr.Raise(runerr.SyntaxError)
	}
}

// Trigger marks the event as having happened. Disabled events ignore it.
func (e *Event) Trigger() {
	if e.Enabled {
		e.Triggered = true
	}
}

// Release clears the trigger.
func (e *Event) Release() { e.Triggered = false }

// Key is a keystroke posted by the host.
type Key struct {
	Char     string // bytes for INKEY$, may be empty
	Scancode int
}

// Pump collects input from the host. Poll must not block.
type Pump interface {
	Poll(e *Events)
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// Events is the trap table of one session.
type Events struct {
	Timer *Event
	Keys  [NumKeys]*Event
	Play  *Event
	Com   [2]*Event
	Pen   *Event
	Strig [4]*Event

	all        []*Event
	suspendAll bool
	active     bool

	period    time.Duration
	lastTimer time.Time
	now       func() time.Time

	keyDefs [NumKeys]int // scancodes for user keys 15..20
	posted  chan Key
	keyBuf  []string
	pump    Pump
}

// Option configures Events.
type Option func(*Events)

// WithClock replaces the wall clock used for TIMER.
func WithClock(now func() time.Time) Option {
	return func(e *Events) { e.now = now }
}

// WithPump installs a host input pump.
func WithPump(p Pump) Option {
	return func(e *Events) { e.pump = p }
}

// New returns a table with every event off.
func New(opts ...Option) *Events {
	e := &Events{
		now:    time.Now,
		posted: make(chan Key, postBuffer),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.Reset()
	return e
}

// Reset turns every event off and forgets trap targets (CLEAR, RUN).
func (e *Events) Reset() {
	e.Timer = newEvent("TIMER")
	for i := range e.Keys {
		e.Keys[i] = newEvent("KEY")
	}
	e.Play = newEvent("PLAY")
	for i := range e.Com {
		e.Com[i] = newEvent("COM")
	}
	e.Pen = newEvent("PEN")
	for i := range e.Strig {
		e.Strig[i] = newEvent("STRIG")
	}
	e.all = []*Event{e.Timer}
	e.all = append(e.all, e.Keys[:]...)
	e.all = append(e.all, e.Play)
	e.all = append(e.all, e.Com[:]...)
	e.all = append(e.all, e.Pen)
	e.all = append(e.all, e.Strig[:]...)
	e.suspendAll = false
	e.period = 0
	e.lastTimer = e.now()
}

// All returns every event in dispatch order.
func (e *Events) All() []*Event { return e.all }

// Enabled returns the enabled events in dispatch order.
func (e *Events) Enabled() []*Event {
	var out []*Event
	for _, ev := range e.all {
		if ev.Enabled {
			out = append(out, ev)
		}
	}
	return out
}

// SuspendAll reports whether trapping is suspended by an error handler.
func (e *Events) SuspendAll() bool { return e.suspendAll }

// SetSuspendAll suspends or resumes trapping.
func (e *Events) SetSuspendAll(b bool) { e.suspendAll = b }

// SetActive enables dispatch in run mode and disables it in direct mode.
func (e *Events) SetActive(runMode bool) { e.active = runMode }

// Active reports whether traps may be dispatched.
func (e *Events) Active() bool { return e.active }

// ---------------------------------------------------------------------------
// Event selection
// ---------------------------------------------------------------------------

// Key returns KEY(n) for n in 1..20.
func (e *Events) Key(n int) *Event {
	runerr.RangeCheck(1, NumKeys, n)
	return e.Keys[n-1]
}

// ComPort returns COM(n) for n in 1..2.
func (e *Events) ComPort(n int) *Event {
	runerr.RangeCheck(1, 2, n)
	return e.Com[n-1]
}

// Trigger returns STRIG(n) for n in 0, 2, 4, 6.
func (e *Events) Trigger(n int) *Event {
	if n < 0 || n > 6 || n%2 != 0 {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	return e.Strig[n/2]
}

// SetTimer sets the TIMER period in seconds.
func (e *Events) SetTimer(seconds float64) {
	if seconds <= 0 || seconds > 86400 {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	e.period = time.Duration(seconds * float64(time.Second))
	e.lastTimer = e.now()
}

// DefineKey assigns a scancode to user key 15..20.
func (e *Events) DefineKey(n, scancode int) {
	runerr.RangeCheck(15, NumKeys, n)
	e.keyDefs[n-1] = scancode
}

// ---------------------------------------------------------------------------
// Polling
// ---------------------------------------------------------------------------

// Post queues a keystroke from any goroutine. It drops the key if the queue
// is full.
func (e *Events) Post(k Key) {
	select {
	case e.posted <- k:
	default:
		log.Warningf("key queue full, dropped scancode %d", k.Scancode)
	}
}

// Check raises Break if ctx is cancelled, polls the host and updates event
// triggers. The interpreter calls it before every statement.
func (e *Events) Check(ctx context.Context) {
	if ctx != nil {
		select {
		case <-ctx.Done():
			panic(&runerr.Break{Pos: runerr.NoPos})
		default:
		}
	}
	if e.pump != nil {
		e.pump.Poll(e)
	}
drain:
	for {
		select {
		case k := <-e.posted:
			e.key(k)
		default:
			break drain
		}
	}
	if e.period > 0 && e.now().Sub(e.lastTimer) >= e.period {
		e.lastTimer = e.now()
		e.Timer.Trigger()
	}
}

func (e *Events) key(k Key) {
	for i, code := range keyScancodes {
		if code == k.Scancode && k.Scancode != 0 {
			if e.Keys[i].Enabled {
				e.Keys[i].Trigger()
				return
			}
		}
	}
	for i := len(keyScancodes); i < NumKeys; i++ {
		if e.keyDefs[i] != 0 && e.keyDefs[i] == k.Scancode && e.Keys[i].Enabled {
			e.Keys[i].Trigger()
			return
		}
	}
	if k.Char != "" {
		e.keyBuf = append(e.keyBuf, k.Char)
	}
}

// Inkey pops one character from the keyboard buffer, or returns "".
func (e *Events) Inkey() string {
	if len(e.keyBuf) == 0 {
		return ""
	}
	c := e.keyBuf[0]
	e.keyBuf = e.keyBuf[1:]
	return c
}

// Wait polls until cond holds, sleeping between polls. Break and trap
// dispatch still happen through Check.
func (e *Events) Wait(ctx context.Context, cond func() bool) {
	for {
		e.Check(ctx)
		if cond() {
			return
		}
		time.Sleep(pollInterval)
	}
}
