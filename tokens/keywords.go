package tokens

import (
	"fmt"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Keyword table
// ---------------------------------------------------------------------------

// Keyword pairs a keyword's spelling with its token.
type Keyword struct {
	Name  string
	Token string
}

// keywordTable lists every tokenised keyword. Order only matters for
// listing; the tokeniser matches by longest name.
var keywordTable = []Keyword{
	{"END", END}, {"FOR", FOR}, {"NEXT", NEXT}, {"DATA", DATA},
	{"INPUT", INPUT}, {"DIM", DIM}, {"READ", READ}, {"LET", LET},
	{"GOTO", GOTO}, {"RUN", RUN}, {"IF", IF}, {"RESTORE", RESTORE},
	{"GOSUB", GOSUB}, {"RETURN", RETURN}, {"REM", REM}, {"STOP", STOP},
	{"PRINT", PRINT}, {"CLEAR", CLEAR}, {"LIST", LIST}, {"NEW", NEW},
	{"ON", ON}, {"WAIT", WAIT}, {"DEF", DEF}, {"POKE", POKE},
	{"CONT", CONT}, {"OUT", OUT}, {"LPRINT", LPRINT}, {"LLIST", LLIST},
	{"WIDTH", WIDTH}, {"ELSE", ELSE}, {"TRON", TRON}, {"TROFF", TROFF},
	{"SWAP", SWAP}, {"ERASE", ERASE}, {"EDIT", EDIT}, {"ERROR", ERROR},
	{"RESUME", RESUME}, {"DELETE", DELETE}, {"AUTO", AUTO}, {"RENUM", RENUM},
	{"DEFSTR", DEFSTR}, {"DEFINT", DEFINT}, {"DEFSNG", DEFSNG}, {"DEFDBL", DEFDBL},
	{"LINE", LINE}, {"WHILE", WHILE}, {"WEND", WEND}, {"CALL", CALL},
	{"WRITE", WRITE}, {"OPTION", OPTION}, {"RANDOMIZE", RANDOMIZE}, {"OPEN", OPEN},
	{"CLOSE", CLOSE}, {"LOAD", LOAD}, {"MERGE", MERGE}, {"SAVE", SAVE},
	{"COLOR", COLOR}, {"CLS", CLS}, {"MOTOR", MOTOR}, {"BSAVE", BSAVE},
	{"BLOAD", BLOAD}, {"SOUND", SOUND}, {"BEEP", BEEP}, {"PSET", PSET},
	{"PRESET", PRESET}, {"SCREEN", SCREEN}, {"KEY", KEY}, {"LOCATE", LOCATE},
	{"TO", TO}, {"THEN", THEN}, {"TAB(", TAB}, {"STEP", STEP},
	{"USR", USR}, {"FN", FN}, {"SPC(", SPC}, {"NOT", NOT},
	{"ERL", ERL}, {"ERR", ERR}, {"STRING$", STRING}, {"USING", USING},
	{"INSTR", INSTR}, {"'", QUOTE}, {"VARPTR", VARPTR}, {"CSRLIN", CSRLIN},
	{"POINT", POINT}, {"OFF", OFF}, {"INKEY$", INKEY},

	{">", OGt}, {"=", OEq}, {"<", OLt}, {"+", OPlus}, {"-", OMinus},
	{"*", OTimes}, {"/", ODiv}, {"^", OCaret}, {"AND", AND}, {"OR", OR},
	{"XOR", XOR}, {"EQV", EQV}, {"IMP", IMP}, {"MOD", MOD}, {`\`, OIntDiv},

	{"CVI", CVI}, {"CVS", CVS}, {"CVD", CVD}, {"MKI$", MKI}, {"MKS$", MKS},
	{"MKD$", MKD}, {"EXTERR", EXTERR},

	{"FILES", FILES}, {"FIELD", FIELD}, {"SYSTEM", SYSTEM}, {"NAME", NAME},
	{"LSET", LSET}, {"RSET", RSET}, {"KILL", KILL}, {"PUT", PUT},
	{"GET", GET}, {"RESET", RESET}, {"COMMON", COMMON}, {"CHAIN", CHAIN},
	{"DATE$", DATE}, {"TIME$", TIME}, {"PAINT", PAINT}, {"COM", COM},
	{"CIRCLE", CIRCLE}, {"DRAW", DRAW}, {"PLAY", PLAY}, {"TIMER", TIMER},
	{"ERDEV", ERDEV}, {"IOCTL", IOCTL}, {"CHDIR", CHDIR}, {"MKDIR", MKDIR},
	{"RMDIR", RMDIR}, {"SHELL", SHELL}, {"ENVIRON", ENVIRON}, {"VIEW", VIEW},
	{"WINDOW", WINDOW}, {"PMAP", PMAP}, {"PALETTE", PALETTE}, {"LCOPY", LCOPY},
	{"CALLS", CALLS}, {"NOISE", NOISE}, {"PCOPY", PCOPY}, {"TERM", TERM},
	{"LOCK", LOCK}, {"UNLOCK", UNLOCK},

	{"LEFT$", LEFT}, {"RIGHT$", RIGHT}, {"MID$", MID}, {"SGN", SGN},
	{"INT", INT}, {"ABS", ABS}, {"SQR", SQR}, {"RND", RND},
	{"SIN", SIN}, {"LOG", LOG}, {"EXP", EXP}, {"COS", COS},
	{"TAN", TAN}, {"ATN", ATN}, {"FRE", FRE}, {"INP", INP},
	{"POS", POS}, {"LEN", LEN}, {"STR$", STR}, {"VAL", VAL},
	{"ASC", ASC}, {"CHR$", CHR}, {"PEEK", PEEK}, {"SPACE$", SPACE},
	{"OCT$", OCT}, {"HEX$", HEX}, {"LPOS", LPOS}, {"CINT", CINT},
	{"CSNG", CSNG}, {"CDBL", CDBL}, {"FIX", FIX}, {"PEN", PEN},
	{"STICK", STICK}, {"STRIG", STRIG}, {"EOF", EOF}, {"LOC", LOC},
	{"LOF", LOF},
}

var (
	nameOf  = make(map[string]string, len(keywordTable))
	tokenOf = make(map[string]string, len(keywordTable))
	// wordNames holds alphabetic keyword names sorted longest first.
	wordNames []string
)

func init() {
	for _, kw := range keywordTable {
		nameOf[kw.Token] = kw.Name
		tokenOf[kw.Name] = kw.Token
		if isLetter(kw.Name[0]) {
			wordNames = append(wordNames, kw.Name)
		}
	}
	sort.SliceStable(wordNames, func(i, j int) bool {
		return len(wordNames[i]) > len(wordNames[j])
	})
}

// Keywords returns a copy of the keyword table.
func Keywords() []Keyword {
	out := make([]Keyword, len(keywordTable))
	copy(out, keywordTable)
	return out
}

// Name returns the spelling of a keyword token, or "" if unknown.
func Name(token string) string {
	return nameOf[token]
}

// Lookup returns the token for an upper-case keyword spelling.
func Lookup(name string) (string, bool) {
	t, ok := tokenOf[name]
	return t, ok
}

// MatchWord returns the longest alphabetic keyword that prefixes s
// (case-insensitive), or "" if none does.
func MatchWord(s string) string {
	upper := strings.ToUpper(s)
	for _, name := range wordNames {
		if strings.HasPrefix(upper, name) {
			return name
		}
	}
	return ""
}

// Describe renders a token for diagnostics.
func Describe(token string) string {
	if token == "" {
		return "<end>"
	}
	if name, ok := nameOf[token]; ok {
		return name
	}
	if len(token) == 1 && token[0] >= 0x20 && token[0] < 0x7f {
		return token
	}
	return fmt.Sprintf("%q", token)
}
