package session

import (
	"bufio"
	"io"
	"strings"

	"github.com/chazu/gwbasic/runerr"
)

// zoneWidth is the spacing of PRINT's comma zones.
const zoneWidth = 14

// Console is the text screen as a stream: output goes to a writer with the
// cursor column tracked, input comes a line at a time from a reader.
type Console struct {
	out   io.Writer
	in    *bufio.Reader
	col   int // 0-based cursor column
	width int
}

// NewConsole returns an 80 column console.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{out: out, in: bufio.NewReader(in), width: 80}
}

// Width returns the line width.
func (c *Console) Width() int { return c.width }

// Col returns the 0-based cursor column.
func (c *Console) Col() int { return c.col }

// Write implements io.Writer so the console can take the TRON trace.
func (c *Console) Write(p []byte) (int, error) {
	c.WriteString(string(p))
	return len(p), nil
}

// WriteString writes text, following the cursor column.
func (c *Console) WriteString(text string) {
	if text == "" {
		return
	}
	io.WriteString(c.out, text)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		c.col = len(text) - i - 1
	} else {
		c.col += len(text)
	}
}

// Newline ends the current line.
func (c *Console) Newline() { c.WriteString("\n") }

// Fresh moves to the start of a line unless already there.
func (c *Console) Fresh() {
	if c.col > 0 {
		c.Newline()
	}
}

// Item writes text that should not be split across lines: if it does not
// fit on the rest of the line it starts a new one.
func (c *Console) Item(text string) {
	if c.col > 0 && c.col+len(text) > c.width {
		c.Newline()
	}
	c.WriteString(text)
}

// NextZone moves to the next comma zone, or to a new line if there is no
// room for another zone.
func (c *Console) NextZone() {
	next := (c.col/zoneWidth + 1) * zoneWidth
	if next+zoneWidth > c.width {
		c.Newline()
		return
	}
	c.WriteString(strings.Repeat(" ", next-c.col))
}

// Tab moves to 1-based column n, on the next line if already past it.
func (c *Console) Tab(n int) {
	if n < 1 {
		n = 1
	}
	n = (n-1)%c.width + 1
	if n-1 < c.col {
		c.Newline()
	}
	c.WriteString(strings.Repeat(" ", n-1-c.col))
}

// Spaces writes SPC(n).
func (c *Console) Spaces(n int) {
	c.WriteString(strings.Repeat(" ", n%c.width))
}

// ReadLine reads a line of input without its line ending. End of input
// ends the session, as it would with no keyboard left.
func (c *Console) ReadLine() string {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		panic(&runerr.Exit{})
	}
	// the user's Enter leaves the cursor at column 0
	c.col = 0
	return strings.TrimRight(line, "\r\n")
}
