package session

import (
	"fmt"
	"strings"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/statements"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// PRINT and WRITE
// ---------------------------------------------------------------------------

// requireConsole rejects a file number: there are no open files.
func requireConsole(file any) {
	if file != nil {
		runerr.Raise(runerr.BadFileNumber)
	}
}

// printRepr renders a value as PRINT shows it: numbers with a sign
// position and a trailing blank.
func printRepr(v values.Value) string {
	if str, ok := v.(values.String); ok {
		return string(str)
	}
	return values.Repr(v) + " "
}

func (s *Session) print(a *statements.Args) {
	requireConsole(a.Next())
	c := s.console
	newline := true
	for {
		v, ok := a.Pull()
		if !ok {
			break
		}
		item := v.(statements.PrintItem)
		newline = true
		switch item.Sep {
		case "":
			c.Item(printRepr(item.Value.(values.Value)))
		case ",":
			c.NextZone()
			newline = false
		case ";":
			newline = false
		case tokens.SPC:
			c.Spaces(item.Value.(int))
			newline = false
		case tokens.TAB:
			c.Tab(item.Value.(int))
			newline = false
		case tokens.USING:
			newline = s.printUsing(a, item.Value.(string))
		}
	}
	if newline {
		c.Newline()
	}
}

// printUsing takes the values following a USING format and reports
// whether the statement ends with a newline.
func (s *Session) printUsing(a *statements.Args, format string) bool {
	u := &usingFormat{pattern: format}
	var out strings.Builder
	newline := true
	for {
		v, ok := a.Pull()
		if !ok || v == nil {
			break
		}
		item := v.(statements.PrintItem)
		if item.Sep != "" {
			newline = false
			continue
		}
		newline = true
		u.apply(&out, item.Value.(values.Value))
	}
	u.finish(&out)
	s.console.WriteString(out.String())
	return newline
}

// writeRepr renders a value as WRITE shows it.
func writeRepr(v values.Value) string {
	if str, ok := v.(values.String); ok {
		return `"` + string(str) + `"`
	}
	return strings.TrimPrefix(values.Repr(v), " ")
}

func (s *Session) write(a *statements.Args) {
	requireConsole(a.Next())
	var parts []string
	for {
		v, ok := a.Pull()
		if !ok {
			break
		}
		parts = append(parts, writeRepr(v.(values.Value)))
	}
	s.console.WriteString(strings.Join(parts, ",") + "\n")
}

// ---------------------------------------------------------------------------
// INPUT
// ---------------------------------------------------------------------------

func (s *Session) prompt(p statements.Prompt, question bool) {
	s.console.WriteString(p.Text)
	if question && p.Following == ";" {
		s.console.WriteString("? ")
	}
}

func (s *Session) input(a *statements.Args) {
	requireConsole(a.Next())
	p, _ := statements.Take[statements.Prompt](a)
	var vars []statements.Variable
	for {
		v, ok := statements.Take[statements.Variable](a)
		if !ok {
			break
		}
		vars = append(vars, v)
	}
	for {
		s.prompt(p, true)
		vals, ok := parseInput(s.console.ReadLine(), vars)
		if ok {
			for i, v := range vars {
				s.memory.SetVariable(v.Name, v.Indices, vals[i])
			}
			return
		}
		s.console.WriteString("?Redo from start\n")
	}
}

// parseInput splits an INPUT reply into one value per variable. It fails
// if the count is wrong or a number does not parse.
func parseInput(line string, vars []statements.Variable) ([]values.Value, bool) {
	fields := splitInput(line)
	if len(fields) != len(vars) {
		return nil, false
	}
	vals := make([]values.Value, len(vars))
	for i, v := range vars {
		if v.Name[len(v.Name)-1] == values.StringSigil {
			vals[i] = values.String(fields[i])
			continue
		}
		if strings.TrimSpace(fields[i]) == "" {
			vals[i] = values.Integer(0)
			continue
		}
		n, ok := values.FromRepr(strings.TrimSpace(fields[i]))
		if !ok {
			return nil, false
		}
		vals[i] = n
	}
	return vals, true
}

// splitInput splits at commas outside quotes. Quoted fields lose their
// quotes; unquoted fields lose surrounding blanks.
func splitInput(line string) []string {
	var fields []string
	var cur strings.Builder
	quoted, wasQuoted := false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if !quoted && strings.TrimSpace(cur.String()) == "" {
				cur.Reset()
				quoted, wasQuoted = true, true
			} else if quoted {
				quoted = false
			} else {
				cur.WriteByte(c)
			}
		case c == ',' && !quoted:
			fields = append(fields, inputField(cur.String(), wasQuoted))
			cur.Reset()
			wasQuoted = false
		default:
			cur.WriteByte(c)
		}
	}
	return append(fields, inputField(cur.String(), wasQuoted))
}

func inputField(f string, quoted bool) string {
	if quoted {
		return f
	}
	return strings.Trim(f, " \t")
}

func (s *Session) lineInput(a *statements.Args) {
	requireConsole(a.Next())
	p, _ := statements.Take[statements.Prompt](a)
	v, _ := statements.Take[statements.Variable](a)
	if v.Name[len(v.Name)-1] != values.StringSigil {
		runerr.Raise(runerr.TypeMismatch)
	}
	s.prompt(p, false)
	s.memory.SetVariable(v.Name, v.Indices, values.String(s.console.ReadLine()))
}

// ---------------------------------------------------------------------------
// Screen and keys
// ---------------------------------------------------------------------------

func (s *Session) cls(a *statements.Args) {
	a.Drain()
	s.console.Fresh()
}

// keyDefine is KEY n, text: a function key macro for keys 1..10, or a
// trappable scancode for keys 15..20.
func (s *Session) keyDefine(a *statements.Args) {
	n := values.ToInt(a.Value())
	text := string(values.PassString(a.Value()))
	switch {
	case n >= 1 && n <= len(s.keyMacros):
		if len(text) > 15 {
			text = text[:15]
		}
		s.keyMacros[n-1] = text
	case n >= 15 && n <= 20:
		if len(text) != 2 {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		s.events.DefineKey(n, int(text[1]))
	default:
		runerr.Raise(runerr.IllegalFunctionCall)
	}
}

// keyMacro is KEY ON, KEY OFF and KEY LIST. Only LIST has a visible
// effect on a stream console.
func (s *Session) keyMacro(a *statements.Args) {
	cmd, _ := statements.Take[string](a)
	if cmd != tokens.LIST {
		return
	}
	for i, m := range s.keyMacros {
		s.console.WriteString(fmt.Sprintf("F%d %s\n", i+1, m))
	}
}
