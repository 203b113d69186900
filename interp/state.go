package interp

import (
	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// Serialisable state
// ---------------------------------------------------------------------------

// GosubState is a GOSUB frame in plain form. Event indexes events.All, or
// is -1.
type GosubState struct {
	Pos     int  `cbor:"1,keyasint"`
	RunMode bool `cbor:"2,keyasint"`
	Event   int  `cbor:"3,keyasint"`
}

// ForState is a FOR frame in plain form. The counter is rebound by name.
type ForState struct {
	Name    string             `cbor:"1,keyasint"`
	Stop    memory.StoredValue `cbor:"2,keyasint"`
	Step    memory.StoredValue `cbor:"3,keyasint"`
	ForPos  int                `cbor:"4,keyasint"`
	NextPos int                `cbor:"5,keyasint"`
}

// WhileState is a WHILE frame in plain form.
type WhileState struct {
	WhilePos int `cbor:"1,keyasint"`
	WendPos  int `cbor:"2,keyasint"`
}

// State is everything the interpreter needs to pick up where it left off,
// given the same program, memory and events.
type State struct {
	RunMode          bool         `cbor:"1,keyasint"`
	ProgramPos       int          `cbor:"2,keyasint"`
	DirectLine       string       `cbor:"3,keyasint"`
	DirectPos        int          `cbor:"4,keyasint"`
	CurrentStatement int          `cbor:"5,keyasint"`
	Gosub            []GosubState `cbor:"6,keyasint"`
	For              []ForState   `cbor:"7,keyasint"`
	While            []WhileState `cbor:"8,keyasint"`
	DataPos          int          `cbor:"9,keyasint"`
	OnError          int          `cbor:"10,keyasint"`
	Handling         bool         `cbor:"11,keyasint"`
	HasResume        bool         `cbor:"12,keyasint"`
	ResumePos        int          `cbor:"13,keyasint"`
	ResumeRunMode    bool         `cbor:"14,keyasint"`
	ErrNum           int          `cbor:"15,keyasint"`
	ErrPos           int          `cbor:"16,keyasint"`
	Stop             int          `cbor:"17,keyasint"`
	Tron             bool         `cbor:"18,keyasint"`
}

// State captures the interpreter's state.
func (i *Interpreter) State() State {
	st := State{
		RunMode:          i.runMode,
		ProgramPos:       i.prog.Tell(),
		DirectLine:       i.direct.Buffer(),
		DirectPos:        i.direct.Tell(),
		CurrentStatement: i.currentStatement,
		DataPos:          i.dataPos,
		OnError:          i.onError,
		Handling:         i.handling,
		ErrNum:           i.errNum,
		ErrPos:           i.errPos,
		Stop:             i.stop,
		Tron:             i.tron,
	}
	all := i.events.All()
	for _, f := range i.gosubStack {
		g := GosubState{Pos: f.pos, RunMode: f.runMode, Event: -1}
		for n, ev := range all {
			if ev == f.event {
				g.Event = n
			}
		}
		st.Gosub = append(st.Gosub, g)
	}
	for _, f := range i.forStack {
		st.For = append(st.For, ForState{
			Name:    f.name,
			Stop:    memory.Store(f.stop),
			Step:    memory.Store(f.step),
			ForPos:  f.forPos,
			NextPos: f.nextPos,
		})
	}
	for _, f := range i.whileStack {
		st.While = append(st.While, WhileState{WhilePos: f.whilePos, WendPos: f.wendPos})
	}
	if i.resume != nil {
		st.HasResume = true
		st.ResumePos, st.ResumeRunMode = i.resume.pos, i.resume.runMode
	}
	return st
}

// SetState restores a captured state. The program and memory must already
// hold what they held when it was captured.
func (i *Interpreter) SetState(st State) {
	i.prog = i.program.Stream()
	i.prog.Seek(st.ProgramPos)
	i.direct = codestream.New(st.DirectLine)
	i.direct.Seek(st.DirectPos)
	i.runMode = st.RunMode
	i.events.SetActive(st.RunMode)
	i.currentStatement = st.CurrentStatement
	i.dataPos = st.DataPos
	i.onError = st.OnError
	i.handling = st.Handling
	i.errNum, i.errPos = st.ErrNum, st.ErrPos
	i.stop = st.Stop
	i.tron = st.Tron

	all := i.events.All()
	i.gosubStack = nil
	for _, g := range st.Gosub {
		f := gosubFrame{pos: g.Pos, runMode: g.RunMode}
		if g.Event >= 0 && g.Event < len(all) {
			f.event = all[g.Event]
		}
		i.gosubStack = append(i.gosubStack, f)
	}
	i.forStack = nil
	for _, fs := range st.For {
		step := fs.Step.Value()
		i.forStack = append(i.forStack, forFrame{
			name:    fs.Name,
			counter: i.memory.View(fs.Name),
			stop:    fs.Stop.Value(),
			step:    step,
			sign:    values.Sign(step),
			forPos:  fs.ForPos,
			nextPos: fs.NextPos,
		})
	}
	i.whileStack = nil
	for _, ws := range st.While {
		i.whileStack = append(i.whileStack, whileFrame{whilePos: ws.WhilePos, wendPos: ws.WendPos})
	}
	i.resume = nil
	if st.HasResume {
		i.resume = &resumePoint{pos: st.ResumePos, runMode: st.ResumeRunMode}
	}
}
