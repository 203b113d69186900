package events

import "time"

// EventState is one event in plain form.
type EventState struct {
	Enabled   bool `cbor:"1,keyasint"`
	Stopped   bool `cbor:"2,keyasint"`
	Triggered bool `cbor:"3,keyasint"`
	Gosub     int  `cbor:"4,keyasint"`
}

// State is the serialisable content of the trap table. Events are listed
// in the order of All.
type State struct {
	Events     []EventState `cbor:"1,keyasint"`
	SuspendAll bool         `cbor:"2,keyasint"`
	// TimerPeriod is in nanoseconds; zero means no TIMER interval is set.
	TimerPeriod int64 `cbor:"3,keyasint"`
	KeyDefs     []int `cbor:"4,keyasint"`
}

// State captures the trap table. Queued keystrokes are not included.
func (e *Events) State() State {
	st := State{
		SuspendAll:  e.suspendAll,
		TimerPeriod: int64(e.period),
		KeyDefs:     append([]int(nil), e.keyDefs[:]...),
	}
	for _, ev := range e.all {
		st.Events = append(st.Events, EventState{
			Enabled:   ev.Enabled,
			Stopped:   ev.Stopped,
			Triggered: ev.Triggered,
			Gosub:     ev.Gosub,
		})
	}
	return st
}

// SetState restores a captured trap table. The TIMER interval restarts
// from now.
func (e *Events) SetState(st State) {
	e.Reset()
	for i, es := range st.Events {
		if i >= len(e.all) {
			break
		}
		ev := e.all[i]
		ev.Enabled, ev.Stopped, ev.Triggered, ev.Gosub = es.Enabled, es.Stopped, es.Triggered, es.Gosub
	}
	e.suspendAll = st.SuspendAll
	e.period = time.Duration(st.TimerPeriod)
	copy(e.keyDefs[:], st.KeyDefs)
}
