// Package tokens defines the GW-BASIC token stream encoding: line markers,
// number tokens, keyword tokens and the byte sets the scanners work with.
//
// Tokens are represented as strings holding their raw bytes. Most keywords
// are a single byte; the 0xFD, 0xFE and 0xFF families are two bytes. An empty
// string stands for end of stream wherever a token is read or peeked.
package tokens

import "strings"

// ---------------------------------------------------------------------------
// Structural bytes
// ---------------------------------------------------------------------------

const (
	// LineMarker introduces a line record: marker, 2-byte next-line offset,
	// 2-byte line number, all little endian.
	LineMarker = "\x00"
	// Separator ends a statement within a line.
	Separator = ":"
	// Quote delimits string literals.
	Quote = `"`

	// FileLead is the first byte of a tokenised program file.
	FileLead = "\xff"
)

// ---------------------------------------------------------------------------
// Number tokens
// ---------------------------------------------------------------------------

const (
	TOct     = "\x0b" // octal constant, 2 bytes
	THex     = "\x0c" // hex constant, 2 bytes
	TUintPtr = "\x0d" // line pointer, 2 bytes
	TUint    = "\x0e" // line number, 2 bytes
	TByte    = "\x0f" // byte constant 11..255, 1 byte
	C0       = "\x11" // constants 0..9 follow consecutively
	C10      = "\x1b"
	TInt     = "\x1c" // int16, 2 bytes
	TSingle  = "\x1d" // MBF single, 4 bytes
	TDouble  = "\x1f" // MBF double, 8 bytes
)

// ---------------------------------------------------------------------------
// Keyword tokens
// ---------------------------------------------------------------------------

const (
	END       = "\x81"
	FOR       = "\x82"
	NEXT      = "\x83"
	DATA      = "\x84"
	INPUT     = "\x85"
	DIM       = "\x86"
	READ      = "\x87"
	LET       = "\x88"
	GOTO      = "\x89"
	RUN       = "\x8a"
	IF        = "\x8b"
	RESTORE   = "\x8c"
	GOSUB     = "\x8d"
	RETURN    = "\x8e"
	REM       = "\x8f"
	STOP      = "\x90"
	PRINT     = "\x91"
	CLEAR     = "\x92"
	LIST      = "\x93"
	NEW       = "\x94"
	ON        = "\x95"
	WAIT      = "\x96"
	DEF       = "\x97"
	POKE      = "\x98"
	CONT      = "\x99"
	OUT       = "\x9c"
	LPRINT    = "\x9d"
	LLIST     = "\x9e"
	WIDTH     = "\xa0"
	ELSE      = "\xa1"
	TRON      = "\xa2"
	TROFF     = "\xa3"
	SWAP      = "\xa4"
	ERASE     = "\xa5"
	EDIT      = "\xa6"
	ERROR     = "\xa7"
	RESUME    = "\xa8"
	DELETE    = "\xa9"
	AUTO      = "\xaa"
	RENUM     = "\xab"
	DEFSTR    = "\xac"
	DEFINT    = "\xad"
	DEFSNG    = "\xae"
	DEFDBL    = "\xaf"
	LINE      = "\xb0"
	WHILE     = "\xb1"
	WEND      = "\xb2"
	CALL      = "\xb3"
	WRITE     = "\xb7"
	OPTION    = "\xb8"
	RANDOMIZE = "\xb9"
	OPEN      = "\xba"
	CLOSE     = "\xbb"
	LOAD      = "\xbc"
	MERGE     = "\xbd"
	SAVE      = "\xbe"
	COLOR     = "\xbf"
	CLS       = "\xc0"
	MOTOR     = "\xc1"
	BSAVE     = "\xc2"
	BLOAD     = "\xc3"
	SOUND     = "\xc4"
	BEEP      = "\xc5"
	PSET      = "\xc6"
	PRESET    = "\xc7"
	SCREEN    = "\xc8"
	KEY       = "\xc9"
	LOCATE    = "\xca"
	TO        = "\xcc"
	THEN      = "\xcd"
	TAB       = "\xce"
	STEP      = "\xcf"
	USR       = "\xd0"
	FN        = "\xd1"
	SPC       = "\xd2"
	NOT       = "\xd3"
	ERL       = "\xd4"
	ERR       = "\xd5"
	STRING    = "\xd6"
	USING     = "\xd7"
	INSTR     = "\xd8"
	QUOTE     = "\xd9" // apostrophe comment, stored as :REM'
	VARPTR    = "\xda"
	CSRLIN    = "\xdb"
	POINT     = "\xdc"
	OFF       = "\xdd"
	INKEY     = "\xde"

	OGt     = "\xe6"
	OEq     = "\xe7"
	OLt     = "\xe8"
	OPlus   = "\xe9"
	OMinus  = "\xea"
	OTimes  = "\xeb"
	ODiv    = "\xec"
	OCaret  = "\xed"
	AND     = "\xee"
	OR      = "\xef"
	XOR     = "\xf0"
	EQV     = "\xf1"
	IMP     = "\xf2"
	MOD     = "\xf3"
	OIntDiv = "\xf4"
)

// 0xFD family.
const (
	CVI    = "\xfd\x81"
	CVS    = "\xfd\x82"
	CVD    = "\xfd\x83"
	MKI    = "\xfd\x84"
	MKS    = "\xfd\x85"
	MKD    = "\xfd\x86"
	EXTERR = "\xfd\x8b"
)

// 0xFE family.
const (
	FILES   = "\xfe\x81"
	FIELD   = "\xfe\x82"
	SYSTEM  = "\xfe\x83"
	NAME    = "\xfe\x84"
	LSET    = "\xfe\x85"
	RSET    = "\xfe\x86"
	KILL    = "\xfe\x87"
	PUT     = "\xfe\x88"
	GET     = "\xfe\x89"
	RESET   = "\xfe\x8a"
	COMMON  = "\xfe\x8b"
	CHAIN   = "\xfe\x8c"
	DATE    = "\xfe\x8d"
	TIME    = "\xfe\x8e"
	PAINT   = "\xfe\x8f"
	COM     = "\xfe\x90"
	CIRCLE  = "\xfe\x91"
	DRAW    = "\xfe\x92"
	PLAY    = "\xfe\x93"
	TIMER   = "\xfe\x94"
	ERDEV   = "\xfe\x95"
	IOCTL   = "\xfe\x96"
	CHDIR   = "\xfe\x97"
	MKDIR   = "\xfe\x98"
	RMDIR   = "\xfe\x99"
	SHELL   = "\xfe\x9a"
	ENVIRON = "\xfe\x9b"
	VIEW    = "\xfe\x9c"
	WINDOW  = "\xfe\x9d"
	PMAP    = "\xfe\x9e"
	PALETTE = "\xfe\x9f"
	LCOPY   = "\xfe\xa0"
	CALLS   = "\xfe\xa1"
	NOISE   = "\xfe\xa4"
	PCOPY   = "\xfe\xa5"
	TERM    = "\xfe\xa6"
	LOCK    = "\xfe\xa7"
	UNLOCK  = "\xfe\xa8"
)

// 0xFF family (functions, plus MID$ PEN STRIG which are also statements).
const (
	LEFT   = "\xff\x81"
	RIGHT  = "\xff\x82"
	MID    = "\xff\x83"
	SGN    = "\xff\x84"
	INT    = "\xff\x85"
	ABS    = "\xff\x86"
	SQR    = "\xff\x87"
	RND    = "\xff\x88"
	SIN    = "\xff\x89"
	LOG    = "\xff\x8a"
	EXP    = "\xff\x8b"
	COS    = "\xff\x8c"
	TAN    = "\xff\x8d"
	ATN    = "\xff\x8e"
	FRE    = "\xff\x8f"
	INP    = "\xff\x90"
	POS    = "\xff\x91"
	LEN    = "\xff\x92"
	STR    = "\xff\x93"
	VAL    = "\xff\x94"
	ASC    = "\xff\x95"
	CHR    = "\xff\x96"
	PEEK   = "\xff\x97"
	SPACE  = "\xff\x98"
	OCT    = "\xff\x99"
	HEX    = "\xff\x9a"
	LPOS   = "\xff\x9b"
	CINT   = "\xff\x9c"
	CSNG   = "\xff\x9d"
	CDBL   = "\xff\x9e"
	FIX    = "\xff\x9f"
	PEN    = "\xff\xa0"
	STICK  = "\xff\xa1"
	STRIG  = "\xff\xa2"
	EOF    = "\xff\xa3"
	LOC    = "\xff\xa4"
	LOF    = "\xff\xa5"
)

// Plain words that are not tokenised but required by some grammars.
const (
	WordSeg    = "SEG"
	WordAs     = "AS"
	WordBase   = "BASE"
	WordAll    = "ALL"
	WordOutput = "OUTPUT"
	WordRandom = "RANDOM"
	WordAppend = "APPEND"
	WordAccess = "ACCESS"
	WordShared = "SHARED"
)

// ---------------------------------------------------------------------------
// Sets
// ---------------------------------------------------------------------------

// Blanks is the whitespace skipped between tokens.
const Blanks = " \t\n"

// Separator control bytes that may occur inside decimal numerals.
const NumeralSeparators = "\x1c\x1d\x1f"

var (
	// EndLine holds end of stream and the line marker.
	EndLine = []string{"", LineMarker}
	// EndStatement adds the statement separator.
	EndStatement = []string{"", LineMarker, Separator}
	// EndExpression holds the tokens that cannot start an expression.
	EndExpression = []string{"", LineMarker, Separator, ")", "]", ",", ";"}

	// Number holds the number token lead bytes.
	Number = []string{
		TOct, THex, TUintPtr, TUint, TByte,
		"\x11", "\x12", "\x13", "\x14", "\x15", "\x16", "\x17", "\x18", "\x19", "\x1a", C10,
		TInt, TSingle, TDouble,
	}
)

// PlusBytes gives the number of operand bytes following a lead byte.
var PlusBytes = map[byte]int{
	TByte[0]:    1,
	TOct[0]:     2,
	THex[0]:     2,
	TUintPtr[0]: 2,
	TUint[0]:    2,
	TInt[0]:     2,
	TSingle[0]:  4,
	TDouble[0]:  8,
	0xfd:        1,
	0xfe:        1,
	0xff:        1,
}

// Sigils are the type characters that may end a variable name.
const Sigils = "%&!#$"

// In reports whether token c is one of set. The empty string only matches
// an explicit "" member, never by substring.
func In(c string, set ...string) bool {
	for _, s := range set {
		if c == s {
			return true
		}
	}
	return false
}

// IsLetter reports whether c is a single ASCII letter.
func IsLetter(c string) bool {
	return len(c) == 1 && isLetter(c[0])
}

// IsDigit reports whether c is a single ASCII digit.
func IsDigit(c string) bool {
	return len(c) == 1 && c[0] >= '0' && c[0] <= '9'
}

// IsNameChar reports whether c may continue a variable name.
func IsNameChar(c string) bool {
	return len(c) == 1 && (isLetter(c[0]) || (c[0] >= '0' && c[0] <= '9') || c[0] == '.')
}

// IsSigil reports whether c is a type sigil.
func IsSigil(c string) bool {
	return len(c) == 1 && strings.IndexByte(Sigils, c[0]) >= 0
}

// IsBlank reports whether c is a single whitespace byte.
func IsBlank(c string) bool {
	return len(c) == 1 && strings.IndexByte(Blanks, c[0]) >= 0
}

// IsNumber reports whether c leads a number token.
func IsNumber(c string) bool {
	return len(c) == 1 && In(c, Number...)
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
