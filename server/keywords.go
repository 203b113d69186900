package server

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/gwbasic/tokenise"
	"github.com/chazu/gwbasic/tokens"
)

// maxCompletions limits a completion list.
const maxCompletions = 100

var descriptions = map[string]string{
	"CLEAR":     "Clears variables, arrays and open loops.",
	"CONT":      "Continues a program halted by STOP, END or Break.",
	"DATA":      "Holds constants for READ.",
	"DEF":       "Defines a user function: `DEF FNname(args) = expr`.",
	"DELETE":    "Deletes a range of program lines.",
	"DIM":       "Dimensions arrays.",
	"END":       "Ends the program.",
	"ERROR":     "Raises the error with the given code.",
	"FILES":     "Lists the saved programs.",
	"FOR":       "Starts a counted loop: `FOR v = a TO b [STEP s]`.",
	"GOSUB":     "Calls a subroutine at a line number.",
	"GOTO":      "Jumps to a line number.",
	"IF":        "Conditional: `IF expr THEN ... [ELSE ...]`.",
	"INPUT":     "Reads values typed by the user.",
	"KEY":       "Defines function keys and switches key traps.",
	"KILL":      "Deletes a saved program.",
	"LET":       "Assigns a value to a variable.",
	"LIST":      "Lists program lines.",
	"LOAD":      "Loads a saved program; `,R` runs it.",
	"MERGE":     "Merges an ASCII-saved program into the current one.",
	"NEW":       "Erases the program and its variables.",
	"NEXT":      "Ends a FOR loop.",
	"ON":        "Computed jump, error trap or event trap.",
	"PRINT":     "Writes values to the screen.",
	"RANDOMIZE": "Seeds the random number generator.",
	"READ":      "Reads the next DATA items into variables.",
	"REM":       "Comment to the end of the line.",
	"RESTORE":   "Resets the DATA pointer.",
	"RESUME":    "Leaves an error handler.",
	"RETURN":    "Returns from a subroutine.",
	"RUN":       "Runs the program, from a line or a saved name.",
	"SAVE":      "Saves the program; `,A` as text, `,P` protected.",
	"STOP":      "Halts the program with a Break message.",
	"SWAP":      "Exchanges two variables.",
	"SYSTEM":    "Leaves the interpreter.",
	"TIMER":     "Seconds since midnight; `TIMER ON` enables the timer trap.",
	"TRON":      "Turns on line tracing.",
	"TROFF":     "Turns off line tracing.",
	"WEND":      "Ends a WHILE loop.",
	"WHILE":     "Loops while a condition holds.",
	"WRITE":     "Writes values separated by commas, strings quoted.",
}

// keywordNames lists alphabetic keyword spellings, sorted.
var keywordNames = func() []string {
	var out []string
	for _, kw := range tokens.Keywords() {
		c := kw.Name[0]
		if c >= 'A' && c <= 'Z' {
			out = append(out, strings.TrimSuffix(kw.Name, "("))
		}
	}
	sort.Strings(out)
	return out
}()

// complete returns the keywords starting with prefix.
func complete(prefix string) []protocol.CompletionItem {
	upper := strings.ToUpper(prefix)
	var items []protocol.CompletionItem
	for _, name := range keywordNames {
		if !strings.HasPrefix(name, upper) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		detail := "keyword"
		if d, ok := descriptions[name]; ok {
			detail = d
		}
		label := name
		items = append(items, protocol.CompletionItem{
			Label:      label,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &label,
		})
		if len(items) == maxCompletions {
			break
		}
	}
	return items
}

// hover describes a keyword, or shows the line a line number refers to.
func hover(text, word string) *protocol.Hover {
	var value string
	if n, err := strconv.Atoi(word); err == nil {
		value = lineText(text, n)
	} else {
		name := strings.ToUpper(word)
		if !isKeyword(name) {
			return nil
		}
		value = fmt.Sprintf("**%s**", name)
		if d, ok := descriptions[name]; ok {
			value += "\n\n" + d
		}
	}
	if value == "" {
		return nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: value,
		},
	}
}

// isKeyword also accepts TAB and SPC, which are spelt with their bracket.
func isKeyword(name string) bool {
	_, ok := tokens.Lookup(name)
	if !ok {
		_, ok = tokens.Lookup(name + "(")
	}
	return ok
}

// lineText returns program line n of a listing, as LIST would show it.
func lineText(text string, n int) string {
	for _, raw := range strings.Split(text, "\n") {
		num, hasNum, body, err := tokenise.TokeniseLine(raw)
		if err == nil && hasNum && num == n {
			return "```\n" + tokenise.ListLine(num, body) + "\n```"
		}
	}
	return ""
}
