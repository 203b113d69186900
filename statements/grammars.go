package statements

import (
	"strings"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/expr"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

// ---------------------------------------------------------------------------
// No arguments
// ---------------------------------------------------------------------------

// nothing lets the handler run before the end of statement is checked:
// TRON LAH traces and then fails.
func nothing(s *codestream.Stream, emit func(any)) {}

// end checks the end of statement before the handler runs: SYSTEM LAH
// does not exit.
func end(s *codestream.Stream, emit func(any)) {
	s.RequireEnd()
}

func skipLine(s *codestream.Stream, emit func(any)) {
	s.SkipTo(tokens.EndLine, true)
}

func skipStatement(s *codestream.Stream, emit func(any)) {
	s.SkipTo(tokens.EndStatement, true)
}

// ---------------------------------------------------------------------------
// Single arguments
// ---------------------------------------------------------------------------

func (p *Parser) optionalArg(s *codestream.Stream, emit func(any)) {
	emit(p.optExpression(s))
	s.RequireEnd()
}

func (p *Parser) singleArg(s *codestream.Stream, emit func(any)) {
	emit(p.Expression(s))
	s.RequireEnd()
}

func (p *Parser) singleLineNumber(s *codestream.Stream, emit func(any)) {
	emit(jumpnum(s))
}

func (p *Parser) optionalLineNumber(s *codestream.Stream, emit func(any)) {
	emit(optJumpnum(s))
}

// stringArg is DRAW.
func (p *Parser) stringArg(s *codestream.Stream, emit func(any)) {
	emit(p.str(s, false))
	s.RequireEnd()
}

func (p *Parser) singleStringArg(s *codestream.Stream, emit func(any)) {
	emit(p.str(s, false))
}

func (p *Parser) optionalStringArg(s *codestream.Stream, emit func(any)) {
	if tokens.In(s.SkipBlank(), tokens.EndStatement...) {
		emit(nil)
		return
	}
	emit(p.str(s, false))
}

// ---------------------------------------------------------------------------
// Flow control
// ---------------------------------------------------------------------------

// runArgs yields a line number and nil, or a file name and the R flag, or
// nil and nil.
func (p *Parser) runArgs(s *codestream.Stream, emit func(any)) {
	c := s.SkipBlank()
	switch {
	case c == tokens.TUint:
		// the rest of the line is ignored
		emit(jumpnum(s))
		emit(nil)
	case !tokens.In(c, tokens.EndStatement...):
		emit(p.str(s, false))
		if _, ok := s.SkipBlankReadIf(1, ","); ok {
			s.RequireRead("R", "r")
			emit(true)
		} else {
			emit(false)
		}
		s.RequireEnd()
	default:
		emit(nil)
		emit(nil)
	}
}

// resumeArgs yields nil, tokens.NEXT or a line number.
func (p *Parser) resumeArgs(s *codestream.Stream, emit func(any)) {
	c := s.SkipBlank()
	switch {
	case c == tokens.NEXT:
		emit(s.Read(1))
	case tokens.In(c, tokens.EndStatement...):
		emit(nil)
	default:
		emit(jumpnum(s))
	}
	s.RequireEnd()
}

func (p *Parser) onErrorGotoArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.ERROR)
	s.RequireRead(tokens.GOTO)
	emit(jumpnum(s))
}

// onJumpArgs yields the selector, GOTO or GOSUB, then the line numbers one
// by one so that a handler stops lexing at the one it takes.
func (p *Parser) onJumpArgs(s *codestream.Stream, emit func(any)) {
	emit(p.Expression(s))
	emit(s.RequireRead(tokens.GOTO, tokens.GOSUB))
	for {
		n := optJumpnum(s)
		if n == nil {
			break
		}
		emit(n)
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			break
		}
	}
	s.RequireEnd()
}

// ifArgs yields the condition, then the line number after THEN if there
// is one. By the time the second value is pulled the handler may have
// moved the cursor to the ELSE clause.
func (p *Parser) ifArgs(s *codestream.Stream, emit func(any)) {
	cond := p.Expression(s)
	s.SkipBlankReadIf(1, ",")
	s.RequireRead(tokens.THEN, tokens.GOTO)
	emit(cond)
	if s.SkipBlank() == tokens.TUint {
		emit(jumpnum(s))
	} else {
		emit(nil)
	}
}

func (p *Parser) forArgs(s *codestream.Stream, emit func(any)) {
	emit(p.Name(s))
	s.RequireRead(tokens.OEq)
	emit(p.Expression(s))
	s.RequireRead(tokens.TO)
	emit(p.Expression(s))
	if _, ok := s.SkipBlankReadIf(1, tokens.STEP); ok {
		emit(p.Expression(s))
	} else {
		emit(nil)
	}
	s.RequireEnd()
}

// nextArgs yields the loop variables of NEXT, nil for a bare NEXT. The
// handler stops pulling once a loop iterates.
func (p *Parser) nextArgs(s *codestream.Stream, emit func(any)) {
	for {
		if d := s.SkipBlank(); !tokens.In(d, tokens.EndStatement...) && d != "," {
			emit(p.Name(s))
		} else {
			emit(nil)
		}
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

// eventCommand is PEN, PLAY or TIMER followed by ON, OFF or STOP.
func eventCommand(s *codestream.Stream, emit func(any)) {
	emit(s.RequireRead(tokens.ON, tokens.OFF, tokens.STOP))
}

// comCommand is KEY(n), COM(n) or STRIG(n) followed by ON, OFF or STOP.
func (p *Parser) comCommand(s *codestream.Stream, emit func(any)) {
	emit(p.bracket(s))
	emit(s.RequireRead(tokens.ON, tokens.OFF, tokens.STOP))
}

func strigSwitch(s *codestream.Stream, emit func(any)) {
	emit(s.RequireRead(tokens.ON, tokens.OFF))
}

// onEventArgs yields the event token, its bracketed number (nil for PEN)
// and the trap line.
func (p *Parser) onEventArgs(s *codestream.Stream, emit func(any)) {
	s.SkipBlank()
	token := s.ReadKeywordToken()
	emit(token)
	if !tokens.In(token, tokens.PEN, tokens.KEY, tokens.TIMER, tokens.PLAY, tokens.COM, tokens.STRIG) {
		runerr.Raise(runerr.SyntaxError)
	}
	if token != tokens.PEN {
		emit(p.bracket(s))
	} else {
		emit(nil)
	}
	s.RequireRead(tokens.GOSUB)
	emit(jumpnum(s))
	s.RequireEnd()
}

// ---------------------------------------------------------------------------
// Sound
// ---------------------------------------------------------------------------

func (p *Parser) beepArgs(s *codestream.Stream, emit func(any)) {
	if p.syntax.hasPCjrForms() {
		if d, ok := s.SkipBlankReadIf(1, tokens.ON, tokens.OFF); ok {
			emit(d)
			return
		}
	}
	emit(nil)
}

func (p *Parser) noiseArgs(s *codestream.Stream, emit func(any)) {
	emit(p.Expression(s))
	s.RequireRead(",")
	emit(p.Expression(s))
	s.RequireRead(",")
	emit(p.Expression(s))
	s.RequireEnd()
}

func (p *Parser) soundArgs(s *codestream.Stream, emit func(any)) {
	if p.syntax.hasPCjrForms() {
		if d, ok := s.SkipBlankReadIf(1, tokens.ON, tokens.OFF); ok {
			emit(d)
			s.RequireEnd()
			return
		}
	}
	emit(p.Expression(s))
	s.RequireRead(",")
	dur := p.Expression(s)
	emit(dur)
	// volume and voice only follow a positive duration, and only on PCjr
	comma := false
	if values.Sign(dur) == 1 {
		_, comma = s.SkipBlankReadIf(1, ",")
	}
	if comma && p.syntax.hasPCjrForms() {
		emit(p.Expression(s))
		if _, ok := s.SkipBlankReadIf(1, ","); ok {
			emit(p.Expression(s))
		} else {
			emit(nil)
		}
	} else {
		emit(nil)
		emit(nil)
	}
	s.RequireEnd()
}

func (p *Parser) playArgs(s *codestream.Stream, emit func(any)) {
	if !p.syntax.hasPCjrForms() {
		emit(p.str(s, true))
		s.RequireEndCode(runerr.IllegalFunctionCall)
		return
	}
	var last any
	for voice := 0; ; voice++ {
		if voice == 3 {
			runerr.Raise(runerr.SyntaxError)
		}
		last = p.str(s, true)
		emit(last)
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			break
		}
	}
	if last == nil {
		runerr.Raise(runerr.MissingOperand)
	}
	s.RequireEnd()
}

// ---------------------------------------------------------------------------
// Memory and ports
// ---------------------------------------------------------------------------

func (p *Parser) defSegArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.WordSeg)
	if _, ok := s.SkipBlankReadIf(1, tokens.OEq); ok {
		emit(p.Expression(s))
	} else {
		emit(nil)
	}
}

func (p *Parser) defUsrArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.USR)
	if d, ok := s.SkipBlankReadIf(1, "0", "1", "2", "3", "4", "5", "6", "7", "8", "9"); ok {
		emit(d)
	} else {
		emit(nil)
	}
	s.RequireRead(tokens.OEq)
	emit(p.Expression(s))
}

func (p *Parser) pokeOutArgs(s *codestream.Stream, emit func(any)) {
	emit(p.Expression(s))
	s.RequireRead(",")
	emit(p.Expression(s))
}

func (p *Parser) bloadArgs(s *codestream.Stream, emit func(any)) {
	emit(p.str(s, false))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(p.Expression(s))
	} else {
		emit(nil)
	}
	s.RequireEnd()
}

func (p *Parser) bsaveArgs(s *codestream.Stream, emit func(any)) {
	emit(p.str(s, false))
	s.RequireRead(",")
	emit(p.Expression(s))
	s.RequireRead(",")
	emit(p.Expression(s))
	s.RequireEnd()
}

func (p *Parser) callArgs(s *codestream.Stream, emit func(any)) {
	emit(p.Name(s))
	if _, ok := s.SkipBlankReadIf(1, "("); ok {
		for {
			emit(p.variable(s))
			if _, ok := s.SkipBlankReadIf(1, ","); !ok {
				break
			}
		}
		s.RequireRead(")")
	}
	s.RequireEnd()
}

func (p *Parser) waitArgs(s *codestream.Stream, emit func(any)) {
	emit(p.Expression(s))
	s.RequireRead(",")
	emit(p.Expression(s))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(p.Expression(s))
	} else {
		emit(nil)
	}
	s.RequireEnd()
}

// ---------------------------------------------------------------------------
// Disk and clock
// ---------------------------------------------------------------------------

func (p *Parser) nameArgs(s *codestream.Stream, emit func(any)) {
	emit(p.str(s, false))
	// AS is not tokenised
	s.RequireRead(tokens.WordAs)
	emit(p.str(s, false))
}

func (p *Parser) timeDateArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.OEq)
	emit(p.str(s, false))
	s.RequireEnd()
}

// ---------------------------------------------------------------------------
// Program editing
// ---------------------------------------------------------------------------

func (p *Parser) deleteLlistArgs(s *codestream.Stream, emit func(any)) {
	emit(p.lineRange(s))
	s.RequireEnd()
}

func (p *Parser) editArgs(s *codestream.Stream, emit func(any)) {
	if !tokens.In(s.SkipBlank(), tokens.EndStatement...) {
		emit(p.jumpnumOrDot(s, false, runerr.IllegalFunctionCall))
	} else {
		emit(nil)
	}
	s.RequireEndCode(runerr.IllegalFunctionCall)
}

func (p *Parser) autoArgs(s *codestream.Stream, emit func(any)) {
	emit(p.jumpnumOrDot(s, true, runerr.SyntaxError))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		inc := optJumpnum(s)
		if inc == nil {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		emit(inc)
	} else {
		emit(nil)
	}
	s.RequireEnd()
}

func (p *Parser) saveArgs(s *codestream.Stream, emit func(any)) {
	emit(p.str(s, false))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(strings.ToUpper(s.RequireRead("A", "a", "P", "p")))
	} else {
		emit(nil)
	}
}

func (p *Parser) listArgs(s *codestream.Stream, emit func(any)) {
	emit(p.lineRange(s))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(p.str(s, false))
		// anything after the file spec is ignored
		s.SkipTo(tokens.EndLine, true)
	} else {
		emit(nil)
		s.RequireEnd()
	}
}

func (p *Parser) loadArgs(s *codestream.Stream, emit func(any)) {
	emit(p.str(s, false))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		s.RequireRead("R", "r")
		emit(true)
	} else {
		emit(false)
	}
	s.RequireEnd()
}

// renumArgs yields new start, old start and increment. Omitted values are
// nil; a missing increment after a second comma is an error.
func (p *Parser) renumArgs(s *codestream.Stream, emit func(any)) {
	var newStart, oldStart, step any = nil, nil, 10
	if !tokens.In(s.SkipBlank(), tokens.EndStatement...) {
		newStart = p.jumpnumOrDot(s, true, runerr.SyntaxError)
		if _, ok := s.SkipBlankReadIf(1, ","); ok {
			oldStart = p.jumpnumOrDot(s, true, runerr.SyntaxError)
			if _, ok := s.SkipBlankReadIf(1, ","); ok {
				step = optJumpnum(s)
			}
		}
	}
	s.RequireEnd()
	if step == nil {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	emit(newStart)
	emit(oldStart)
	emit(step)
}

// chainArgs yields MERGE flag, file name, start line expression, ALL flag
// and the DELETE range.
func (p *Parser) chainArgs(s *codestream.Stream, emit func(any)) {
	_, merge := s.SkipBlankReadIf(1, tokens.MERGE)
	emit(merge)
	emit(p.str(s, false))
	var jump values.Value
	all, deleteRange := false, true
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		// the start line is an expression, not a line number token, so
		// RENUM leaves it alone
		jump = p.optExpression(s)
		if _, ok := s.SkipBlankReadIf(1, ","); ok {
			_, all = s.SkipBlankReadIf(3, tokens.WordAll)
			if all {
				// CHAIN "file", , ALL, DELETE
				_, deleteRange = s.SkipBlankReadIf(1, ",")
			}
		}
	}
	emit(jump)
	emit(all)
	if !deleteRange {
		emit(nil)
		s.RequireEnd()
		return
	}
	if _, ok := s.SkipBlankReadIf(1, tokens.DELETE); ok {
		from := optJumpnum(s)
		to := from
		if _, ok := s.SkipBlankReadIf(1, tokens.OMinus); ok {
			to = optJumpnum(s)
		}
		runerr.ThrowIf(to == nil, runerr.IllegalFunctionCall)
		if _, ok := s.SkipBlankReadIf(1, ","); ok {
			s.SkipTo(tokens.EndStatement, true)
		}
		emit(LineRange{From: orMinus(from), To: orMinus(to)})
	} else {
		emit(nil)
	}
	s.RequireEnd()
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

// openArgs yields file number, name, mode, record length, access and lock.
func (p *Parser) openArgs(s *codestream.Stream, emit func(any)) {
	first := p.str(s, false).(values.String)
	var args []any
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		args = p.openShort(s, first)
	} else {
		args = p.openLong(s, first)
	}
	for _, a := range args {
		emit(a)
	}
}

// openShort is OPEN "mode", #n, "name"[, reclen].
func (p *Parser) openShort(s *codestream.Stream, first values.String) []any {
	mode := strings.ToUpper(string(first[:min(1, len(first))]))
	if !tokens.In(mode, "I", "O", "A", "R") {
		runerr.Raise(runerr.BadFileMode)
	}
	number := p.fileNumber(s, true)
	s.RequireRead(",")
	name := p.str(s, false)
	var reclen any
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		reclen = p.Expression(s)
	}
	return []any{number, name, mode, reclen, nil, nil}
}

// openLong is OPEN "name" [FOR mode] [ACCESS a] [lock] AS #n [LEN=r].
func (p *Parser) openLong(s *codestream.Stream, name values.String) []any {
	var mode any
	if _, ok := s.SkipBlankReadIf(1, tokens.FOR); ok {
		if _, ok := s.SkipBlankReadIf(1, tokens.INPUT); ok {
			mode = "I"
		} else if _, ok := s.SkipBlankReadIf(1, tokens.OUT); ok {
			// OUTPUT tokenises as OUT followed by PUT
			s.RequireRead(tokens.PUT)
			mode = "O"
		} else {
			word := s.ReadName()
			switch word {
			case tokens.WordOutput:
				mode = "O"
			case tokens.WordRandom:
				mode = "R"
			case tokens.WordAppend:
				mode = "A"
			default:
				s.SeekRel(-len(word))
				runerr.Raise(runerr.SyntaxError)
			}
		}
	}
	var access, lock any
	if _, ok := s.SkipBlankReadIf(6, tokens.WordAccess); ok {
		access = readWrite(s)
	}
	if _, ok := s.SkipBlankReadIf(2, tokens.LOCK); ok {
		lock = readWrite(s)
	} else if d, ok := s.SkipBlankReadIf(6, tokens.WordShared); ok {
		lock = d
	}
	s.RequireRead(tokens.WordAs)
	number := p.fileNumber(s, true)
	var reclen any
	if _, ok := s.SkipBlankReadIf(2, tokens.LEN); ok {
		s.RequireRead(tokens.OEq)
		reclen = p.Expression(s)
	}
	return []any{number, name, mode, reclen, access, lock}
}

func readWrite(s *codestream.Stream) string {
	d, _ := s.SkipBlankReadIf(1, tokens.READ, tokens.WRITE)
	switch d {
	case tokens.WRITE:
		return "W"
	case tokens.READ:
		if _, ok := s.SkipBlankReadIf(1, tokens.WRITE); ok {
			return "RW"
		}
		return "R"
	}
	runerr.Raise(runerr.SyntaxError)
	return ""
}

func (p *Parser) closeArgs(s *codestream.Stream, emit func(any)) {
	if tokens.In(s.SkipBlank(), tokens.EndStatement...) {
		return
	}
	for {
		emit(p.fileNumber(s, true))
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			return
		}
	}
}

func (p *Parser) fieldArgs(s *codestream.Stream, emit func(any)) {
	emit(p.fileNumber(s, true))
	if _, ok := s.SkipBlankReadIf(1, ","); !ok {
		return
	}
	for {
		emit(p.Expression(s))
		s.RequireReadCode(runerr.IllegalFunctionCall, tokens.WordAs)
		emit(p.variable(s))
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			return
		}
	}
}

func (p *Parser) lockUnlockArgs(s *codestream.Stream, emit func(any)) {
	emit(p.fileNumber(s, true))
	if _, ok := s.SkipBlankReadIf(1, ","); !ok {
		s.RequireEnd()
		emit(nil)
		emit(nil)
		return
	}
	from := p.optExpression(s)
	emit(from)
	if _, ok := s.SkipBlankReadIf(1, tokens.TO); ok {
		emit(p.Expression(s))
	} else if from != nil {
		emit(nil)
	} else {
		runerr.Raise(runerr.MissingOperand)
	}
}

func (p *Parser) ioctlArgs(s *codestream.Stream, emit func(any)) {
	emit(p.fileNumber(s, true))
	s.RequireRead(",")
	emit(p.str(s, false))
}

func (p *Parser) putGetFileArgs(s *codestream.Stream, emit func(any)) {
	emit(p.fileNumber(s, true))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(p.Expression(s))
	} else {
		emit(nil)
	}
}

// ---------------------------------------------------------------------------
// Graphics
// ---------------------------------------------------------------------------

func (p *Parser) coordBare(s *codestream.Stream) Coord {
	s.RequireRead("(")
	x := values.ToFloat(values.ToType(values.SingleSigil, p.Expression(s)))
	s.RequireRead(",")
	y := values.ToFloat(values.ToType(values.SingleSigil, p.Expression(s)))
	s.RequireRead(")")
	return Coord{X: x, Y: y}
}

func (p *Parser) coordStep(s *codestream.Stream) Coord {
	_, step := s.SkipBlankReadIf(1, tokens.STEP)
	c := p.coordBare(s)
	c.Step = step
	return c
}

func (p *Parser) psetArgs(s *codestream.Stream, emit func(any)) {
	emit(p.coordStep(s))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(p.Expression(s))
	} else {
		emit(nil)
	}
	s.RequireEnd()
}

func (p *Parser) windowArgs(s *codestream.Stream, emit func(any)) {
	_, screen := s.SkipBlankReadIf(1, tokens.SCREEN)
	emit(screen)
	switch {
	case s.SkipBlank() == "(":
		emit(p.coordBare(s))
		s.RequireRead(tokens.OMinus)
		emit(p.coordBare(s))
	case screen:
		runerr.Raise(runerr.SyntaxError)
	default:
		emit(nil)
		emit(nil)
	}
}

func (p *Parser) circleArgs(s *codestream.Stream, emit func(any)) {
	emit(p.coordStep(s))
	s.RequireRead(",")
	var last any = p.Expression(s)
	emit(last)
	n := 0
	for ; n < 4; n++ {
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			break
		}
		last = p.optExpression(s)
		emit(last)
	}
	if last == nil {
		runerr.Raise(runerr.MissingOperand)
	}
	for ; n < 4; n++ {
		emit(nil)
	}
	s.RequireEnd()
}

func (p *Parser) paintArgs(s *codestream.Stream, emit func(any)) {
	emit(p.coordStep(s))
	if _, ok := s.SkipBlankReadIf(1, ","); !ok {
		emit(nil)
		emit(nil)
		emit(nil)
		return
	}
	last := p.optExpression(s)
	emit(last)
	if _, ok := s.SkipBlankReadIf(1, ","); !ok {
		if last == nil {
			runerr.Raise(runerr.MissingOperand)
		}
		emit(nil)
		emit(nil)
		return
	}
	last = p.optExpression(s)
	emit(last)
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(p.Expression(s))
	} else if last == nil {
		runerr.Raise(runerr.MissingOperand)
	} else {
		emit(nil)
	}
}

func (p *Parser) viewArgs(s *codestream.Stream, emit func(any)) {
	_, screen := s.SkipBlankReadIf(1, tokens.SCREEN)
	emit(screen)
	if s.SkipBlank() != "(" {
		return
	}
	emit(p.coordBare(s))
	s.RequireRead(tokens.OMinus)
	emit(p.coordBare(s))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(p.Expression(s))
		s.RequireRead(",")
		emit(p.Expression(s))
	}
}

// lineArgs yields the start (nil if omitted), end, colour, shape ("B",
// "BF" or nil) and line style.
func (p *Parser) lineArgs(s *codestream.Stream, emit func(any)) {
	if tokens.In(s.SkipBlank(), "(", tokens.STEP) {
		emit(p.coordStep(s))
	} else {
		emit(nil)
	}
	s.RequireRead(tokens.OMinus)
	emit(p.coordStep(s))
	if _, ok := s.SkipBlankReadIf(1, ","); !ok {
		emit(nil)
		emit(nil)
		emit(nil)
		s.RequireEnd()
		return
	}
	colour := p.optExpression(s)
	emit(colour)
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		var shape any
		if _, ok := s.SkipBlankReadIf(1, "B", "b"); ok {
			shape = "B"
			if _, ok := s.SkipBlankReadIf(1, "F", "f"); ok {
				shape = "BF"
			}
		}
		emit(shape)
		if _, ok := s.SkipBlankReadIf(1, ","); ok {
			emit(p.intArg(s, false))
		} else {
			// must not end on a comma
			runerr.ThrowIf(shape == nil, runerr.SyntaxError)
			emit(nil)
		}
	} else if colour == nil {
		runerr.Raise(runerr.MissingOperand)
	} else {
		emit(nil)
		emit(nil)
	}
	s.RequireEnd()
}

func (p *Parser) getGraphArgs(s *codestream.Stream, emit func(any)) {
	// no STEP on the first corner
	emit(p.coordBare(s))
	s.RequireRead(tokens.OMinus)
	emit(p.coordStep(s))
	s.RequireRead(",")
	emit(p.Name(s))
	s.RequireEnd()
}

func (p *Parser) putGraphArgs(s *codestream.Stream, emit func(any)) {
	emit(p.coordBare(s))
	s.RequireRead(",")
	emit(p.Name(s))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(s.RequireRead(tokens.PSET, tokens.PRESET, tokens.AND, tokens.OR, tokens.XOR))
	} else {
		emit(nil)
	}
	s.RequireEnd()
}

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

func (p *Parser) clearArgs(s *codestream.Stream, emit func(any)) {
	// the first argument is accepted and ignored
	emit(p.optExpression(s))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		mem := p.optExpression(s)
		emit(mem)
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			runerr.ThrowIf(mem == nil, runerr.SyntaxError)
		} else {
			stack := p.optExpression(s)
			emit(stack)
			if _, ok := s.SkipBlankReadIf(1, ","); ok && p.syntax.hasPCjrForms() {
				// video memory size
				emit(p.Expression(s))
			} else if stack == nil {
				runerr.Raise(runerr.SyntaxError)
			}
		}
	}
	s.RequireEnd()
}

func (p *Parser) commonArgs(s *codestream.Stream, emit func(any)) {
	for {
		name := p.Name(s)
		_, brackets := s.SkipBlankReadIf(1, "[", "(")
		if brackets {
			s.RequireRead("]", ")")
		}
		emit(CommonName{Name: name, Array: brackets})
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			return
		}
	}
}

// defFnArgs yields the function name; the handler reads the parameter
// list and records where the body starts.
func (p *Parser) defFnArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.FN)
	emit(p.Name(s))
}

func (p *Parser) varList(s *codestream.Stream, emit func(any)) {
	for {
		emit(p.variable(s))
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			return
		}
	}
}

func (p *Parser) deftypeArgs(s *codestream.Stream, emit func(any)) {
	for {
		r := LetterRange{Start: upper(s.RequireRead(letters...))}
		if _, ok := s.SkipBlankReadIf(1, tokens.OMinus); ok {
			r.Stop = upper(s.RequireRead(letters...))
		}
		emit(r)
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			return
		}
	}
}

func upper(c string) byte {
	return strings.ToUpper(c)[0]
}

func (p *Parser) eraseArgs(s *codestream.Stream, emit func(any)) {
	for {
		emit(p.Name(s))
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			return
		}
	}
}

// letArgs is LET, LSET, RSET and implicit assignment.
func (p *Parser) letArgs(s *codestream.Stream, emit func(any)) {
	emit(p.variable(s))
	s.RequireRead(tokens.OEq)
	emit(p.Expression(s))
}

// midArgs is the MID$ statement: variable, start, length (nil if
// omitted), value.
func (p *Parser) midArgs(s *codestream.Stream, emit func(any)) {
	// no blanks allowed before the bracket
	if s.Read(1) != "(" {
		runerr.Raise(runerr.SyntaxError)
	}
	emit(p.variable(s))
	s.RequireRead(",")
	emit(p.intArg(s, false))
	if _, ok := s.SkipBlankReadIf(1, ","); ok {
		emit(p.intArg(s, false))
	} else {
		emit(nil)
	}
	s.RequireRead(")")
	s.RequireRead(tokens.OEq)
	emit(p.Expression(s))
	s.RequireEnd()
}

// optionBaseArgs accepts only a literal 0 or 1: OPTION BASE 1 tokenises
// the digit as a one byte constant.
func (p *Parser) optionBaseArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.WordBase)
	// "\x12" is the constant token for 1
	d := s.RequireRead("0", "1", tokens.C0, "\x12")
	switch d {
	case "0", tokens.C0:
		emit(0)
	default:
		emit(1)
	}
}

func (p *Parser) prompt(s *codestream.Stream) Prompt {
	_, semicolon := s.SkipBlankReadIf(1, ";")
	pr := Prompt{Newline: !semicolon, Following: ";"}
	if s.SkipBlank() == tokens.Quote {
		// only a literal is allowed here
		pr.Text = strings.Trim(s.ReadString(), tokens.Quote)
		pr.Following = s.RequireRead(";", ",")
	}
	return pr
}

// inputArgs yields the file number (nil for the keyboard), the prompt for
// keyboard input, then the variables.
func (p *Parser) inputArgs(s *codestream.Stream, emit func(any)) {
	n := p.fileNumber(s, false)
	emit(n)
	if n != nil {
		s.RequireRead(",")
	} else {
		emit(p.prompt(s))
	}
	p.varList(s, emit)
}

func (p *Parser) lineInputArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.INPUT)
	n := p.fileNumber(s, false)
	emit(n)
	if n == nil {
		emit(p.prompt(s))
	} else {
		s.RequireRead(",")
	}
	emit(p.variable(s))
}

func (p *Parser) restoreArgs(s *codestream.Stream, emit func(any)) {
	if s.SkipBlank() == tokens.TUint {
		emit(jumpnum(s))
		s.RequireEnd()
		return
	}
	s.RequireEndCode(runerr.UndefinedLineNumber)
	emit(nil)
}

func (p *Parser) swapArgs(s *codestream.Stream, emit func(any)) {
	emit(p.variable(s))
	s.RequireRead(",")
	emit(p.variable(s))
}

// ---------------------------------------------------------------------------
// Console
// ---------------------------------------------------------------------------

func keyMacroArgs(s *codestream.Stream, emit func(any)) {
	s.SkipBlank()
	emit(s.ReadKeywordToken())
}

func (p *Parser) keyDefineArgs(s *codestream.Stream, emit func(any)) {
	emit(p.Expression(s))
	s.RequireRead(",")
	emit(p.str(s, false))
}

func (p *Parser) clsArgs(s *codestream.Stream, emit func(any)) {
	if p.syntax == PCjr {
		emit(nil)
		return
	}
	emit(p.intArg(s, true))
	if _, ok := s.SkipBlankReadIf(1, ","); !ok {
		s.RequireEndCode(runerr.IllegalFunctionCall)
	}
}

func (p *Parser) colorArgs(s *codestream.Stream, emit func(any)) {
	last := p.intArg(s, true)
	emit(last)
	if _, ok := s.SkipBlankReadIf(1, ","); !ok {
		if last == nil {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		return
	}
	// unlike LOCATE, any trailing comma is a missing operand
	for {
		last = p.intArg(s, true)
		emit(last)
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			break
		}
	}
	if last == nil {
		runerr.Raise(runerr.MissingOperand)
	}
}

func (p *Parser) paletteArgs(s *codestream.Stream, emit func(any)) {
	attrib := p.intArg(s, true)
	emit(attrib)
	if attrib == nil {
		emit(nil)
		s.RequireEnd()
		return
	}
	s.RequireRead(",")
	colour := p.intArg(s, true)
	emit(colour)
	runerr.ThrowIf(colour == nil, runerr.SyntaxError)
}

func (p *Parser) paletteUsingArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.USING)
	v := p.variable(s)
	emit(v)
	// the brackets are required
	runerr.ThrowIf(len(v.Indices) == 0, runerr.SyntaxError)
}

// locateArgs yields up to five values: row, column, cursor, start, stop.
func (p *Parser) locateArgs(s *codestream.Stream, emit func(any)) {
	for range 5 {
		emit(p.intArg(s, true))
		// a fifth comma is accepted if nothing follows it
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			break
		}
	}
	s.RequireEnd()
}

func (p *Parser) viewPrintArgs(s *codestream.Stream, emit func(any)) {
	s.RequireRead(tokens.PRINT)
	start := p.intArg(s, true)
	emit(start)
	if start != nil {
		s.RequireRead(tokens.TO)
		emit(p.intArg(s, false))
	} else {
		emit(nil)
	}
	s.RequireEnd()
}

// writeArgs yields the file number, then each expression.
func (p *Parser) writeArgs(s *codestream.Stream, emit func(any)) {
	n := p.fileNumber(s, false)
	emit(n)
	if n != nil {
		s.RequireRead(",")
	}
	first := p.optExpression(s)
	if first == nil {
		return
	}
	emit(first)
	for {
		if _, ok := s.SkipBlankReadIf(1, ",", ";"); !ok {
			s.RequireEnd()
			return
		}
		emit(p.Expression(s))
	}
}

// widthArgs yields the target (nil for the screen, a file number, or
// tokens.LPRINT), then the width or device name, then the rows setting.
func (p *Parser) widthArgs(s *codestream.Stream, emit func(any)) {
	d, ok := s.SkipBlankReadIf(1, "#", tokens.LPRINT)
	if ok {
		if d == "#" {
			emit(values.ToInt(p.Expression(s)))
			s.RequireRead(",")
		} else {
			emit(tokens.LPRINT)
		}
		emit(p.intArg(s, false))
		s.RequireEnd()
		return
	}
	emit(nil)
	var v values.Value
	s.SkipBlank()
	if tok := s.ReadNumberToken(); tok != "" {
		v = expr.NumberValue(tok)
	} else {
		v = p.Expression(s)
	}
	emit(v)
	if _, isString := v.(values.String); isString {
		s.RequireRead(",")
		emit(p.intArg(s, false))
	} else if _, ok := s.SkipBlankReadIf(1, ","); !ok {
		emit(nil)
		s.RequireEndCode(runerr.IllegalFunctionCall)
	} else {
		emit(p.intArg(s, true))
		// a trailing comma is accepted
		s.SkipBlankReadIf(1, ",")
	}
	s.RequireEnd()
}

// screenArgs yields exactly five values; all but the last given may be
// empty.
func (p *Parser) screenArgs(s *codestream.Stream, emit func(any)) {
	n := 0
	var last any
	for {
		last = p.intArg(s, true)
		emit(last)
		n++
		if _, ok := s.SkipBlankReadIf(1, ","); !ok {
			break
		}
	}
	if last == nil {
		if p.syntax == Tandy && n == 1 {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		runerr.Raise(runerr.MissingOperand)
	}
	for ; n < 5; n++ {
		emit(nil)
	}
	s.RequireEnd()
}

func (p *Parser) pcopyArgs(s *codestream.Stream, emit func(any)) {
	emit(p.Expression(s))
	s.RequireRead(",")
	emit(p.Expression(s))
	s.RequireEnd()
}

// printArgs yields PrintItems. With parseFile, the first value is the file
// number or nil.
func (p *Parser) printArgs(parseFile bool) grammar {
	return func(s *codestream.Stream, emit func(any)) {
		if parseFile {
			n := p.fileNumber(s, false)
			emit(n)
			if n != nil {
				s.RequireRead(",")
			}
		}
		for {
			d := s.SkipBlankRead()
			switch {
			case tokens.In(d, tokens.EndStatement...):
				s.SeekRel(-len(d))
				return
			case d == tokens.USING:
				p.printUsing(s, emit)
				return
			case d == "," || d == ";":
				emit(PrintItem{Sep: d})
			case d == tokens.SPC || d == tokens.TAB:
				n := values.ToUint(p.Expression(s))
				s.RequireRead(")")
				emit(PrintItem{Sep: d, Value: n})
			default:
				s.SeekRel(-len(d))
				emit(PrintItem{Value: p.Expression(s)})
			}
		}
	}
}

func (p *Parser) printUsing(s *codestream.Stream, emit func(any)) {
	format := p.str(s, false).(values.String)
	if format == "" {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	s.RequireRead(";")
	emit(PrintItem{Sep: tokens.USING, Value: string(format)})
	hasArgs := false
	for {
		v := p.optExpression(s)
		if v == nil {
			s.RequireEnd()
			// at least one value must follow the format
			runerr.ThrowIf(!hasArgs, runerr.MissingOperand)
			emit(nil)
			return
		}
		emit(PrintItem{Value: v})
		hasArgs = true
		if d, ok := s.SkipBlankReadIf(1, ";", ","); ok {
			emit(PrintItem{Sep: d})
		} else {
			return
		}
	}
}
