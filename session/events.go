package session

import (
	"github.com/chazu/gwbasic/events"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

func (s *Session) registerEvents() {
	p := s.parser
	p.Register(tokens.TIMER, s.eventSwitch(func() *events.Event { return s.events.Timer }))
	p.Register(tokens.PEN, s.eventSwitch(func() *events.Event { return s.events.Pen }))
	playSwitch := s.eventSwitch(func() *events.Event { return s.events.Play })
	p.Register(tokens.PLAY+tokens.ON, playSwitch)
	p.Register(tokens.PLAY+tokens.OFF, playSwitch)
	p.Register(tokens.PLAY+tokens.STOP, playSwitch)
	p.Register(tokens.KEY+"(", s.numberedSwitch(s.events.Key))
	p.Register(tokens.COM, s.numberedSwitch(s.events.ComPort))
	p.Register(tokens.STRIG, s.numberedSwitch(s.events.Trigger))
	// STRIG ON and OFF switch joystick reading, which is always on
	p.Register(tokens.STRIG+tokens.ON, drain)
	p.Register(tokens.STRIG+tokens.OFF, drain)
	p.Register(tokens.ON+tokens.KEY, s.onEvent)
	p.Register(tokens.ON+"\xfe", s.onEvent)
	p.Register(tokens.ON+"\xff", s.onEvent)
}

func drain(a *statements.Args) { a.Drain() }

// eventSwitch handles TIMER, PEN and PLAY followed by ON, OFF or STOP.
func (s *Session) eventSwitch(ev func() *events.Event) statements.Handler {
	return func(a *statements.Args) {
		cmd, _ := statements.Take[string](a)
		ev().Command(cmd)
	}
}

// numberedSwitch handles KEY(n), COM(n) and STRIG(n) followed by ON, OFF
// or STOP.
func (s *Session) numberedSwitch(ev func(int) *events.Event) statements.Handler {
	return func(a *statements.Args) {
		n := values.ToInt(a.Value())
		cmd, _ := statements.Take[string](a)
		ev(n).Command(cmd)
	}
}

// onEvent is ON event GOSUB line.
func (s *Session) onEvent(a *statements.Args) {
	token, _ := statements.Take[string](a)
	num := a.Value()
	line, _ := statements.Take[int](a)
	var ev *events.Event
	switch token {
	case tokens.PEN:
		ev = s.events.Pen
	case tokens.TIMER:
		s.events.SetTimer(values.ToFloat(num))
		ev = s.events.Timer
	case tokens.PLAY:
		// the queue threshold has no meaning without sound
		runerr.RangeCheck(1, 255, values.ToInt(num))
		ev = s.events.Play
	case tokens.KEY:
		ev = s.events.Key(values.ToInt(num))
	case tokens.COM:
		ev = s.events.ComPort(values.ToInt(num))
	case tokens.STRIG:
		ev = s.events.Trigger(values.ToInt(num))
	}
	ev.Gosub = line
}
