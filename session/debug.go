package session

import (
	"strings"

	"github.com/goforj/godump"

	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/values"
)

// debug is _DEBUG "what": it dumps part of the machine to standard output.
// "" or "STATE" dumps the interpreter, "VARS" the variables, "EVENTS" the
// trap table; anything else is read as a variable name.
func (s *Session) debug(a *statements.Args) {
	what := strings.ToUpper(strings.TrimSpace(string(values.PassString(a.Value()))))
	s.console.Fresh()
	switch what {
	case "", "STATE":
		godump.Dump(s.interp.State())
	case "VARS":
		godump.Dump(s.memory.Snapshot())
	case "EVENTS":
		godump.Dump(s.events.State())
	case "PROGRAM":
		godump.Dump(s.program.LineNumbers())
	default:
		godump.Dump(s.memory.Get(what))
	}
}
