package session

import (
	"errors"
	"strings"

	"github.com/chazu/gwbasic/interp"
	"github.com/chazu/gwbasic/program"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/store"
	"github.com/chazu/gwbasic/tokenise"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// Program library
// ---------------------------------------------------------------------------

// libraryError raises the BASIC error for a library failure.
func libraryError(err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, store.ErrNotFound):
		runerr.Raise(runerr.FileNotFound)
	case errors.Is(err, store.ErrBadName):
		runerr.Raise(runerr.BadFileName)
	}
	log.Errorf("library: %s", err.Error())
	runerr.Raise(runerr.DeviceIOError)
}

func (s *Session) library() Library {
	if s.lib == nil {
		runerr.Raise(runerr.BadFileName)
	}
	return s.lib
}

func (s *Session) save(a *statements.Args) {
	name := string(values.PassString(a.Value()))
	mode, _ := statements.Take[string](a)
	switch {
	case mode == "A":
		s.saveASCII(name, -1, -1)
	case mode == "P" || s.protected:
		libraryError(s.library().Save(name, store.Protected, s.program.Bytes()))
	default:
		libraryError(s.library().Save(name, store.Tokenised, s.program.Bytes()))
	}
}

// saveASCII stores lines from..to as program text.
func (s *Session) saveASCII(name string, from, to int) {
	if from < 0 {
		from = 0
	}
	var b strings.Builder
	for line := range s.program.Lines(from, to) {
		b.WriteString(tokenise.ListLine(line.Number, line.Body))
		b.WriteString("\r\n")
	}
	b.WriteString("\x1a")
	libraryError(s.library().Save(name, store.ASCII, []byte(b.String())))
}

// fetch reads a saved program in any format.
func (s *Session) fetch(name string) (*program.Program, store.Format) {
	entry, err := s.library().Load(name)
	libraryError(err)
	var p *program.Program
	if entry.Format == store.ASCII {
		p, err = ParseProgram(string(entry.Data))
	} else {
		p, err = program.FromBytes(entry.Data)
	}
	if err != nil {
		log.Errorf("library: %s: %s", entry.Name, err.Error())
		runerr.Rethrow(asBasicError(err, runerr.BadFileMode))
	}
	return p, entry.Format
}

// asBasicError keeps a BASIC error and replaces anything else with code.
func asBasicError(err error, code int) error {
	if e, ok := runerr.AsError(err); ok {
		return e
	}
	return runerr.New(code)
}

// loadFromLibrary replaces the program with a saved one.
func (s *Session) loadFromLibrary(name string) {
	p, format := s.fetch(name)
	s.replaceProgram(p, format == store.Protected)
}

func (s *Session) load(a *statements.Args) {
	name := string(values.PassString(a.Value()))
	run, _ := statements.Take[bool](a)
	s.loadFromLibrary(name)
	if run {
		s.run(interp.NoLine)
	}
}

func (s *Session) merge(a *statements.Args) {
	name := string(values.PassString(a.Value()))
	p, format := s.fetch(name)
	if format != store.ASCII {
		runerr.Raise(runerr.BadFileMode)
	}
	runerr.Rethrow(s.program.Merge(p))
	s.clear()
}

func (s *Session) kill(a *statements.Args) {
	name := string(values.PassString(a.Value()))
	libraryError(s.library().Delete(name))
}

// files lists the library, names laid out in columns of 13 characters.
func (s *Session) files(a *statements.Args) {
	pattern := ""
	if v := a.Value(); v != nil {
		pattern = string(values.PassString(v))
	}
	names, err := s.library().List(pattern)
	libraryError(err)
	if len(names) == 0 {
		runerr.Raise(runerr.FileNotFound)
	}
	c := s.console
	c.Fresh()
	for _, name := range names {
		cell := name + strings.Repeat(" ", max(0, 13-len(name)))
		c.Item(cell)
		if c.Col()+13 > c.Width() {
			c.Newline()
		}
	}
	c.Fresh()
}
