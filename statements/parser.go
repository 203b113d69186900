// Package statements recognises statements in the token stream and decodes
// their arguments for the handlers that carry them out.
//
// Each statement family has a grammar: a generator that lexes the
// statement's arguments and yields them one at a time. ParseStatement picks
// the grammar from the lead keyword, hands the handler an *Args pulling
// from it, and checks for the end of the statement when the handler
// returns. Nothing is parsed ahead of the handler: IF decides on its
// condition before the rest of the line is looked at.
package statements

import (
	"fmt"
	"iter"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/expr"
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
	"github.com/chazu/gwbasic/values"
)

var log = commonlog.GetLogger("gwbasic.statements")

// ---------------------------------------------------------------------------
// Syntax dialects
// ---------------------------------------------------------------------------

// Syntax selects the machine whose statement forms are accepted.
type Syntax int

const (
	Advanced Syntax = iota // GW-BASIC on IBM compatibles
	PCjr
	Tandy
)

var syntaxNames = []string{"advanced", "pcjr", "tandy"}

func (s Syntax) String() string {
	if int(s) < len(syntaxNames) {
		return syntaxNames[s]
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}

// ParseSyntax reads a dialect name.
func ParseSyntax(name string) (Syntax, error) {
	for i, n := range syntaxNames {
		if strings.EqualFold(n, name) {
			return Syntax(i), nil
		}
	}
	return Advanced, fmt.Errorf("statements: unknown syntax %q", name)
}

func (s Syntax) hasPCjrForms() bool { return s == PCjr || s == Tandy }

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

// Handler carries out a statement.
type Handler func(args *Args)

// grammar lexes one statement family, emitting arguments in order.
type grammar func(s *codestream.Stream, emit func(any))

// Env is what the parser needs from its session.
type Env interface {
	Memory() *memory.Memory
	// LastStored is the line number "." stands for.
	LastStored() int
}

// Parser recognises statements and dispatches them to handlers.
type Parser struct {
	syntax Syntax
	eval   *expr.Evaluator
	env    Env

	simple     map[string]grammar
	complex    map[string]map[string]grammar // "" selects the fallback
	extensions map[string]grammar
	handlers   map[string]Handler
}

// New returns a parser for the given dialect.
func New(eval *expr.Evaluator, env Env, syntax Syntax) *Parser {
	p := &Parser{
		syntax:   syntax,
		eval:     eval,
		env:      env,
		handlers: make(map[string]Handler),
	}
	p.initTables()
	return p
}

// Syntax returns the dialect.
func (p *Parser) Syntax() Syntax { return p.syntax }

// Evaluator returns the expression evaluator.
func (p *Parser) Evaluator() *expr.Evaluator { return p.eval }

// Register installs the handler for a statement key: the lead token, the
// lead token followed by its selector byte for two-level statements (ON
// followed by ERROR, KEY, 0xFE or 0xFF), or "_" and the name for
// extension statements.
func (p *Parser) Register(key string, h Handler) {
	p.handlers[key] = h
}

// Handles reports whether a handler is registered for key.
func (p *Parser) Handles(key string) bool {
	_, ok := p.handlers[key]
	return ok
}

// ParseStatement recognises and executes the statement at the cursor.
func (p *Parser) ParseStatement(s *codestream.Stream) {
	s.SkipBlank()
	c := s.ReadKeywordToken()
	var g grammar
	if sg, ok := p.simple[c]; ok {
		g = sg
	} else if table, ok := p.complex[c]; ok {
		selector := s.SkipBlank()
		if cg, ok := table[selector]; ok && selector != "" {
			c += selector
			g = cg
		} else {
			g = table[""]
		}
	} else if c == "_" {
		word := s.ReadName()
		eg, ok := p.extensions[word]
		if !ok {
			runerr.Raise(runerr.SyntaxError)
		}
		c += word
		g = eg
	} else {
		s.SeekRel(-len(c))
		if !tokens.IsLetter(c) {
			s.RequireEnd()
			return
		}
		c = tokens.LET
		g = p.simple[tokens.LET]
	}
	args := newArgs(p.generate(g, s))
	defer args.Stop()
	p.handler(c)(args)
	if c != tokens.IF {
		s.RequireEnd()
	}
}

// stopped unwinds a grammar whose handler has stopped pulling.
type stopped struct{}

func (p *Parser) generate(g grammar, s *codestream.Stream) iter.Seq[any] {
	return func(yield func(any) bool) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(stopped); !ok {
					panic(r)
				}
			}
		}()
		g(s, func(v any) {
			if !yield(v) {
				panic(stopped{})
			}
		})
	}
}

func (p *Parser) handler(key string) Handler {
	if h, ok := p.handlers[key]; ok {
		return h
	}
	return func(args *Args) {
		args.Drain()
		log.Debugf("no handler for %s, arguments ignored", tokens.Describe(key))
	}
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

func (p *Parser) initTables() {
	p.simple = map[string]grammar{
		tokens.DATA:      skipStatement,
		tokens.REM:       skipLine,
		tokens.ELSE:      skipLine,
		tokens.CONT:      nothing,
		tokens.TRON:      nothing,
		tokens.TROFF:     nothing,
		tokens.WHILE:     nothing,
		tokens.RESET:     end,
		tokens.END:       end,
		tokens.STOP:      end,
		tokens.NEW:       end,
		tokens.WEND:      end,
		tokens.SYSTEM:    end,
		tokens.FOR:       p.forArgs,
		tokens.NEXT:      p.nextArgs,
		tokens.INPUT:     p.inputArgs,
		tokens.DIM:       p.varList,
		tokens.READ:      p.varList,
		tokens.LET:       p.letArgs,
		tokens.GOTO:      p.singleLineNumber,
		tokens.RUN:       p.runArgs,
		tokens.IF:        p.ifArgs,
		tokens.RESTORE:   p.restoreArgs,
		tokens.GOSUB:     p.singleLineNumber,
		tokens.RETURN:    p.optionalLineNumber,
		tokens.PRINT:     p.printArgs(true),
		tokens.CLEAR:     p.clearArgs,
		tokens.LIST:      p.listArgs,
		tokens.WAIT:      p.waitArgs,
		tokens.POKE:      p.pokeOutArgs,
		tokens.OUT:       p.pokeOutArgs,
		tokens.LPRINT:    p.printArgs(false),
		tokens.LLIST:     p.deleteLlistArgs,
		tokens.WIDTH:     p.widthArgs,
		tokens.SWAP:      p.swapArgs,
		tokens.ERASE:     p.eraseArgs,
		tokens.EDIT:      p.editArgs,
		tokens.ERROR:     p.singleArg,
		tokens.RESUME:    p.resumeArgs,
		tokens.DELETE:    p.deleteLlistArgs,
		tokens.AUTO:      p.autoArgs,
		tokens.RENUM:     p.renumArgs,
		tokens.DEFSTR:    p.deftypeArgs,
		tokens.DEFINT:    p.deftypeArgs,
		tokens.DEFSNG:    p.deftypeArgs,
		tokens.DEFDBL:    p.deftypeArgs,
		tokens.CALL:      p.callArgs,
		tokens.CALLS:     p.callArgs,
		tokens.WRITE:     p.writeArgs,
		tokens.OPTION:    p.optionBaseArgs,
		tokens.RANDOMIZE: p.optionalArg,
		tokens.OPEN:      p.openArgs,
		tokens.CLOSE:     p.closeArgs,
		tokens.LOAD:      p.loadArgs,
		tokens.MERGE:     p.singleStringArg,
		tokens.SAVE:      p.saveArgs,
		tokens.COLOR:     p.colorArgs,
		tokens.CLS:       p.clsArgs,
		tokens.MOTOR:     p.optionalArg,
		tokens.BSAVE:     p.bsaveArgs,
		tokens.BLOAD:     p.bloadArgs,
		tokens.SOUND:     p.soundArgs,
		tokens.BEEP:      p.beepArgs,
		tokens.PSET:      p.psetArgs,
		tokens.PRESET:    p.psetArgs,
		tokens.SCREEN:    p.screenArgs,
		tokens.LOCATE:    p.locateArgs,
		tokens.FILES:     p.optionalStringArg,
		tokens.FIELD:     p.fieldArgs,
		tokens.NAME:      p.nameArgs,
		tokens.LSET:      p.letArgs,
		tokens.RSET:      p.letArgs,
		tokens.KILL:      p.singleStringArg,
		tokens.COMMON:    p.commonArgs,
		tokens.CHAIN:     p.chainArgs,
		tokens.DATE:      p.timeDateArgs,
		tokens.TIME:      p.timeDateArgs,
		tokens.PAINT:     p.paintArgs,
		tokens.COM:       p.comCommand,
		tokens.CIRCLE:    p.circleArgs,
		tokens.DRAW:      p.stringArg,
		tokens.TIMER:     eventCommand,
		tokens.IOCTL:     p.ioctlArgs,
		tokens.CHDIR:     p.singleStringArg,
		tokens.MKDIR:     p.singleStringArg,
		tokens.RMDIR:     p.singleStringArg,
		tokens.SHELL:     p.optionalStringArg,
		tokens.ENVIRON:   p.singleStringArg,
		tokens.WINDOW:    p.windowArgs,
		tokens.LCOPY:     p.optionalArg,
		tokens.PCOPY:     p.pcopyArgs,
		tokens.LOCK:      p.lockUnlockArgs,
		tokens.UNLOCK:    p.lockUnlockArgs,
		tokens.MID:       p.midArgs,
		tokens.PEN:       eventCommand,
	}
	if p.syntax.hasPCjrForms() {
		p.simple[tokens.TERM] = end
		p.simple[tokens.NOISE] = p.noiseArgs
	}
	p.complex = map[string]map[string]grammar{
		tokens.ON: {
			tokens.ERROR: p.onErrorGotoArgs,
			tokens.KEY:   p.onEventArgs,
			"\xfe":       p.onEventArgs,
			"\xff":       p.onEventArgs,
			"":           p.onJumpArgs,
		},
		tokens.DEF: {
			tokens.FN:  p.defFnArgs,
			tokens.USR: p.defUsrArgs,
			"":         p.defSegArgs,
		},
		tokens.LINE: {
			tokens.INPUT: p.lineInputArgs,
			"":           p.lineArgs,
		},
		tokens.KEY: {
			tokens.ON:   keyMacroArgs,
			tokens.OFF:  keyMacroArgs,
			tokens.LIST: keyMacroArgs,
			"(":         p.comCommand,
			"":          p.keyDefineArgs,
		},
		tokens.PUT: {
			"(": p.putGraphArgs,
			"":  p.putGetFileArgs,
		},
		tokens.GET: {
			"(": p.getGraphArgs,
			"":  p.putGetFileArgs,
		},
		tokens.PLAY: {
			tokens.ON:   eventCommand,
			tokens.OFF:  eventCommand,
			tokens.STOP: eventCommand,
			"":          p.playArgs,
		},
		tokens.VIEW: {
			tokens.PRINT: p.viewPrintArgs,
			"":           p.viewArgs,
		},
		tokens.PALETTE: {
			tokens.USING: p.paletteUsingArgs,
			"":           p.paletteArgs,
		},
		tokens.STRIG: {
			tokens.ON:  strigSwitch,
			tokens.OFF: strigSwitch,
			"":         p.comCommand,
		},
	}
	p.extensions = map[string]grammar{
		"DEBUG": p.singleStringArg,
	}
}

// ---------------------------------------------------------------------------
// Shared lexing helpers
// ---------------------------------------------------------------------------

// Name reads a variable name and completes its sigil.
func (p *Parser) Name(s *codestream.Stream) string {
	name := s.ReadName()
	runerr.ThrowIf(name == "", runerr.SyntaxError)
	return p.env.Memory().CompleteName(name)
}

// Expression evaluates a required expression.
func (p *Parser) Expression(s *codestream.Stream) values.Value {
	return p.eval.Parse(s)
}

// optExpression returns nil at the end of an expression context and
// otherwise evaluates a required expression.
func (p *Parser) optExpression(s *codestream.Stream) values.Value {
	if tokens.In(s.SkipBlank(), tokens.EndExpression...) {
		return nil
	}
	return p.eval.Parse(s)
}

// intArg evaluates an expression as an int, or returns nil if empty and
// allowed.
func (p *Parser) intArg(s *codestream.Stream, allowEmpty bool) any {
	var v values.Value
	if allowEmpty {
		v = p.optExpression(s)
		if v == nil {
			return nil
		}
	} else {
		v = p.eval.Parse(s)
	}
	return values.ToInt(v)
}

// str evaluates a string expression, or returns nil if empty and allowed.
func (p *Parser) str(s *codestream.Stream, allowEmpty bool) any {
	var v values.Value
	if allowEmpty {
		v = p.optExpression(s)
		if v == nil {
			return nil
		}
	} else {
		v = p.eval.Parse(s)
	}
	return values.PassString(v)
}

func (p *Parser) bracket(s *codestream.Stream) values.Value {
	s.RequireRead("(")
	v := p.eval.Parse(s)
	s.RequireRead(")")
	return v
}

// fileNumber reads "#n" or, with optHash, a bare "n". Without a hash and
// without optHash it returns nil.
func (p *Parser) fileNumber(s *codestream.Stream, optHash bool) any {
	if _, ok := s.SkipBlankReadIf(1, "#"); !ok && !optHash {
		return nil
	}
	n := values.ToInt(p.eval.Parse(s))
	runerr.RangeCheck(0, 255, n)
	return n
}

func (p *Parser) variable(s *codestream.Stream) Variable {
	name := p.Name(s)
	return Variable{Name: name, Indices: p.eval.ParseIndices(s)}
}

// jumpnum reads a line number token.
func jumpnum(s *codestream.Stream) int {
	s.RequireRead(tokens.TUint)
	return le16(s.Read(2))
}

func optJumpnum(s *codestream.Stream) any {
	if s.SkipBlank() != tokens.TUint {
		return nil
	}
	return jumpnum(s)
}

// jumpnumOrDot reads a line number or "." for the last line stored.
func (p *Parser) jumpnumOrDot(s *codestream.Stream, allowEmpty bool, code int) any {
	c := s.SkipBlankRead()
	switch {
	case c == tokens.TUint:
		return le16(s.Read(2))
	case c == ".":
		return p.env.LastStored()
	case allowEmpty:
		s.SeekRel(-len(c))
		return nil
	}
	runerr.Raise(code)
	return nil
}

func (p *Parser) lineRange(s *codestream.Stream) LineRange {
	from := orMinus(p.jumpnumOrDot(s, true, runerr.SyntaxError))
	to := from
	if _, ok := s.SkipBlankReadIf(1, tokens.OMinus); ok {
		to = orMinus(p.jumpnumOrDot(s, true, runerr.SyntaxError))
	}
	return LineRange{From: from, To: to}
}

func orMinus(v any) int {
	if n, ok := v.(int); ok {
		return n
	}
	return -1
}

func le16(b string) int {
	if len(b) < 2 {
		runerr.Raise(runerr.SyntaxError)
	}
	return int(b[0]) | int(b[1])<<8
}

var letters = func() []string {
	var out []string
	for c := 'A'; c <= 'Z'; c++ {
		out = append(out, string(c), strings.ToLower(string(c)))
	}
	return out
}()
