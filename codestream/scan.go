package codestream

import "github.com/chazu/gwbasic/tokens"

// ---------------------------------------------------------------------------
// Block scanning
// ---------------------------------------------------------------------------

// SkipTo scans forward to the first byte in set that is outside a string
// literal or comment, and stops before it. With breakOnFirst false a match on
// the very first byte is stepped over instead. A line marker ends strings and
// comments; a marker whose next-line offset is zero or truncated ends the
// scan, leaving the cursor after the offset. Operand bytes of number tokens
// and escaped keywords are never taken for structure.
func (s *Stream) SkipTo(set []string, breakOnFirst bool) {
	literal, rem := false, false
	for {
		c := s.Read(1)
		if c == "" {
			return
		}
		switch c {
		case tokens.Quote:
			literal = !literal
		case tokens.REM:
			rem = true
		case tokens.LineMarker:
			literal, rem = false, false
		}
		if literal || rem {
			continue
		}
		if tokens.In(c, set...) && breakOnFirst {
			s.unread(c)
			return
		}
		breakOnFirst = true
		if c == tokens.LineMarker {
			off := s.Read(2)
			if len(off) < 2 || off == "\x00\x00" {
				return
			}
			s.Read(2)
		} else if n, ok := tokens.PlusBytes[c[0]]; ok {
			s.Read(n)
		}
	}
}

// SkipToRead scans to the first byte in set and reads it.
func (s *Stream) SkipToRead(set ...string) string {
	s.SkipTo(set, true)
	return s.Read(1)
}

var blockStarts = append(append([]string{}, tokens.EndStatement...), tokens.THEN, tokens.ELSE)

// SkipBlock moves to the close token matching an already consumed open
// token, counting nested open/close pairs at the start of statements. It
// stops before the matching close token, or at the end of the program. With
// allowComma set, a comma list after a close token (NEXT I,J) closes one
// further level per comma; if the list closes the block being searched for,
// the cursor stops before that comma.
func (s *Stream) SkipBlock(open, close string, allowComma bool) {
	stack := 0
	for {
		c := s.SkipToRead(blockStarts...)
		if c == tokens.LineMarker {
			trail := s.Read(4)
			if len(trail) < 2 || trail[:2] == "\x00\x00" {
				return
			}
		}
		d := s.SkipBlank()
		switch {
		case d == "":
			return
		case d == open:
			s.Read(1)
			stack++
		case d == close:
			if stack <= 0 {
				return
			}
			s.Read(1)
			stack--
			if !allowComma {
				continue
			}
			for !tokens.In(s.SkipBlank(), tokens.EndStatement...) {
				s.SkipTo(append(append([]string{}, tokens.EndStatement...), ","), true)
				if s.Peek(1) == "," {
					if stack <= 0 {
						return
					}
					s.Read(1)
					stack--
				}
			}
		}
	}
}

// SkipToElse moves past the ELSE matching a false IF condition. Nested IFs
// each claim one ELSE; only a ":ELSE" at nesting level zero matches. If no
// ELSE matches, the cursor stops before the end of the line.
func (s *Stream) SkipToElse() {
	nesting := 0
	for {
		d := s.SkipToRead(tokens.LineMarker, tokens.Separator, tokens.IF)
		switch d {
		case tokens.IF:
			nesting++
		case tokens.Separator:
			if _, ok := s.SkipBlankReadIf(1, tokens.ELSE); ok {
				if nesting == 0 {
					return
				}
				nesting--
			}
		default:
			s.unread(d)
			return
		}
	}
}
