package session

import (
	"fmt"

	"github.com/chazu/gwbasic/program"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/snapshot"
)

// Snapshot captures the session so that it can be restored later, in this
// process or another.
func (s *Session) Snapshot() *snapshot.State {
	return &snapshot.State{
		Version:    snapshot.Version,
		Program:    s.program.Bytes(),
		Interp:     s.interp.State(),
		Memory:     s.memory.Snapshot(),
		Events:     s.events.State(),
		RandomSeed: s.eval.Randomiser().Seed(),
		Syntax:     s.syntax.String(),
	}
}

// Restore replaces the session's state with a snapshot taken by Snapshot.
// The snapshot must come from a session of the same dialect.
func (s *Session) Restore(st *snapshot.State) error {
	if st.Syntax != s.syntax.String() {
		return fmt.Errorf("session: snapshot is for %s, session is %s", st.Syntax, s.syntax)
	}
	p, err := program.FromBytes(st.Program)
	if err != nil {
		return fmt.Errorf("session: restoring program: %w", err)
	}
	err = runerr.Catch(func() {
		s.replaceProgram(p, false)
		s.memory.Restore(st.Memory)
		s.interp.SetState(st.Interp)
		s.events.SetState(st.Events)
	})
	if err != nil {
		return fmt.Errorf("session: restoring: %w", err)
	}
	s.eval.Randomiser().SetSeed(st.RandomSeed)
	log.Infof("restored session, run mode %t", st.Interp.RunMode)
	return nil
}
