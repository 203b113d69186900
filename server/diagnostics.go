package server

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokenise"
	"github.com/chazu/gwbasic/tokens"
)

// Severity mirrors the LSP diagnostic severities we report.
type Severity int

const (
	SeverityError   Severity = 1
	SeverityWarning Severity = 2
)

// Diagnostic is a problem found in a program listing. Line is the
// zero-based document line; Start and End delimit the columns.
type Diagnostic struct {
	Line       int
	Start, End int
	Severity   Severity
	Message    string
}

// listingLine is one numbered line of a document.
type listingLine struct {
	doc    int // document line
	number int
	text   string
	body   string
}

// Diagnose checks an ASCII program listing the way LOAD would read it, and
// also reports jumps to lines that do not exist.
func Diagnose(text string) []Diagnostic {
	var (
		diags []Diagnostic
		lines []listingLine
	)
	defined := make(map[int]int)
	last := -1
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimRight(raw, "\r\x1a")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		num, hasNum, body, err := tokenise.TokeniseLine(raw)
		if err != nil {
			diags = append(diags, numberDiagnostic(i, raw, SeverityError, "Line number out of range"))
			continue
		}
		if !hasNum {
			diags = append(diags, wholeLine(i, raw, SeverityError, runerr.Message(runerr.DirectInFile)))
			continue
		}
		if prev, ok := defined[num]; ok {
			diags = append(diags, numberDiagnostic(i, raw, SeverityWarning,
				fmt.Sprintf("Line %d replaces line %d of the document", num, prev+1)))
		} else if num < last {
			diags = append(diags, numberDiagnostic(i, raw, SeverityWarning,
				fmt.Sprintf("Line %d is out of order after %d", num, last)))
		}
		defined[num] = i
		if num > last {
			last = num
		}
		lines = append(lines, listingLine{doc: i, number: num, text: raw, body: body})
	}

	for _, l := range lines {
		for _, target := range jumpTargets(l.body) {
			if _, ok := defined[target]; ok {
				continue
			}
			diags = append(diags, referenceDiagnostic(l, target))
		}
	}
	return diags
}

// jumpTargets returns the line numbers a tokenised body refers to. Line 0
// is skipped: ON ERROR GOTO 0 and RESUME 0 do not name a line.
func jumpTargets(body string) []int {
	var out []int
	s := codestream.New(body)
	for {
		s.SkipTo([]string{tokens.TUint}, true)
		if s.Read(1) != tokens.TUint {
			return out
		}
		b := s.Read(2)
		if len(b) < 2 {
			return out
		}
		if n := int(b[0]) | int(b[1])<<8; n != 0 {
			out = append(out, n)
		}
	}
}

func numberDiagnostic(doc int, raw string, sev Severity, msg string) Diagnostic {
	start := len(raw) - len(strings.TrimLeft(raw, tokens.Blanks))
	end := start
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == start {
		return wholeLine(doc, raw, sev, msg)
	}
	return Diagnostic{Line: doc, Start: start, End: end, Severity: sev, Message: msg}
}

// referenceDiagnostic points at the target's digits in the statement text,
// past the line's own number.
func referenceDiagnostic(l listingLine, target int) Diagnostic {
	msg := fmt.Sprintf("%s %d", runerr.Message(runerr.UndefinedLineNumber), target)
	digits := strconv.Itoa(target)
	from := numberDiagnostic(l.doc, l.text, SeverityError, msg).End
	for i := from; i+len(digits) <= len(l.text); i++ {
		j := i + len(digits)
		if l.text[i:j] != digits || isDigitAt(l.text, i-1) || isDigitAt(l.text, j) {
			continue
		}
		return Diagnostic{Line: l.doc, Start: i, End: j, Severity: SeverityError, Message: msg}
	}
	return wholeLine(l.doc, l.text, SeverityError, msg)
}

func wholeLine(doc int, raw string, sev Severity, msg string) Diagnostic {
	return Diagnostic{Line: doc, Start: 0, End: len(raw), Severity: sev, Message: msg}
}

func isDigitAt(s string, i int) bool {
	return i >= 0 && i < len(s) && s[i] >= '0' && s[i] <= '9'
}
