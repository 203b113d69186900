// Package program holds a BASIC program as a token buffer together with an
// index of its line numbers.
//
// The buffer is laid out as a sequence of line records:
//
//	[0x00] [next-line offset:2] [line number:2] [tokens...]
//
// followed by a terminating marker 0x00 0x00 0x00. Offsets and line numbers
// are little endian; the offset is the absolute position of the following
// line's marker. Every edit produces a new immutable buffer and a rebuilt
// index, and registered listeners are told so they can drop positions into
// the old buffer.
package program

import (
	"encoding/binary"
	"fmt"
	"iter"
	"strings"

	"github.com/google/btree"

	"github.com/chazu/gwbasic/codestream"
	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/tokens"
)

// MaxLineNumber is the highest line number a program may use.
const MaxLineNumber = 65529

// maxSize is the largest buffer whose offsets fit in 16 bits.
const maxSize = 0xffff

// terminator ends every program buffer.
const terminator = "\x00\x00\x00"

// ---------------------------------------------------------------------------
// Index items
// ---------------------------------------------------------------------------

// Line is one stored program line.
type Line struct {
	Number int
	Body   string // tokens, without the record header or terminator
	Pos    int    // offset of the line's marker in the buffer
}

// Less orders lines by number.
func (l Line) Less(than btree.Item) bool {
	return l.Number < than.(Line).Number
}

// position orders lines by buffer offset.
type position struct {
	pos, number int
}

func (p position) Less(than btree.Item) bool {
	return p.pos < than.(position).pos
}

// ---------------------------------------------------------------------------
// Program
// ---------------------------------------------------------------------------

// Program is an editable tokenised BASIC program.
type Program struct {
	buf        string
	lines      *btree.BTree // Line by number
	positions  *btree.BTree // position by offset
	lastStored int
	listeners  []func()
}

// New returns an empty program.
func New() *Program {
	p := &Program{lastStored: -1}
	p.lines = btree.New(4)
	p.rebuild()
	return p
}

// OnChange registers fn to be called after every edit.
func (p *Program) OnChange(fn func()) {
	p.listeners = append(p.listeners, fn)
}

func (p *Program) changed() {
	for _, fn := range p.listeners {
		fn()
	}
}

// Buffer returns the current token buffer.
func (p *Program) Buffer() string { return p.buf }

// Stream opens a cursor on the current buffer.
func (p *Program) Stream() *codestream.Stream {
	return codestream.New(p.buf)
}

// Len returns the number of stored lines.
func (p *Program) Len() int { return p.lines.Len() }

// LastStored returns the number of the line most recently stored, or -1.
func (p *Program) LastStored() int { return p.lastStored }

// rebuild lays out the buffer from the line tree and indexes positions.
func (p *Program) rebuild() {
	var b strings.Builder
	positions := btree.New(4)
	var laid []Line
	p.lines.Ascend(func(item btree.Item) bool {
		laid = append(laid, item.(Line))
		return true
	})
	pos := 0
	for i := range laid {
		laid[i].Pos = pos
		pos += 5 + len(laid[i].Body)
	}
	for i, line := range laid {
		next := pos
		if i+1 < len(laid) {
			next = laid[i+1].Pos
		}
		var hdr [5]byte
		binary.LittleEndian.PutUint16(hdr[1:], uint16(next))
		binary.LittleEndian.PutUint16(hdr[3:], uint16(line.Number))
		b.Write(hdr[:])
		b.WriteString(line.Body)
		p.lines.ReplaceOrInsert(line)
		positions.ReplaceOrInsert(position{pos: line.Pos, number: line.Number})
	}
	b.WriteString(terminator)
	p.buf = b.String()
	p.positions = positions
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

// LineOffset returns the buffer offset of line n's marker.
func (p *Program) LineOffset(n int) (int, bool) {
	item := p.lines.Get(Line{Number: n})
	if item == nil {
		return 0, false
	}
	return item.(Line).Pos, true
}

// EndOffset returns the offset of the terminating marker.
func (p *Program) EndOffset() int {
	return len(p.buf) - len(terminator)
}

// LineNumberAt returns the number of the line containing buffer offset pos,
// or -1 if pos precedes the first line or lies in the terminator.
func (p *Program) LineNumberAt(pos int) int {
	if pos >= p.EndOffset() {
		return -1
	}
	found := -1
	p.positions.DescendLessOrEqual(position{pos: pos}, func(item btree.Item) bool {
		found = item.(position).number
		return false
	})
	return found
}

// LineNumbers returns the stored line numbers in order.
func (p *Program) LineNumbers() []int {
	nums := make([]int, 0, p.lines.Len())
	p.lines.Ascend(func(item btree.Item) bool {
		nums = append(nums, item.(Line).Number)
		return true
	})
	return nums
}

// Lines iterates over the lines numbered from..to inclusive. A negative to
// means no upper bound.
func (p *Program) Lines(from, to int) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		p.lines.AscendGreaterOrEqual(Line{Number: from}, func(item btree.Item) bool {
			line := item.(Line)
			if to >= 0 && line.Number > to {
				return false
			}
			return yield(line)
		})
	}
}

// First returns the lowest line number, or -1 for an empty program.
func (p *Program) First() int {
	if item := p.lines.Min(); item != nil {
		return item.(Line).Number
	}
	return -1
}

// Last returns the highest line number, or -1 for an empty program.
func (p *Program) Last() int {
	if item := p.lines.Max(); item != nil {
		return item.(Line).Number
	}
	return -1
}

// ---------------------------------------------------------------------------
// Edits
// ---------------------------------------------------------------------------

// StoreLine replaces or inserts line num. A body of only blanks deletes the
// line, which must then exist.
func (p *Program) StoreLine(num int, body string) error {
	if num < 0 || num > MaxLineNumber {
		return runerr.New(runerr.SyntaxError)
	}
	if strings.Trim(body, tokens.Blanks) == "" {
		if p.lines.Delete(Line{Number: num}) == nil {
			return runerr.New(runerr.UndefinedLineNumber)
		}
	} else {
		old := p.lines.ReplaceOrInsert(Line{Number: num, Body: body})
		if p.size()+5 > maxSize {
			if old != nil {
				p.lines.ReplaceOrInsert(old)
			} else {
				p.lines.Delete(Line{Number: num})
			}
			return runerr.New(runerr.OutOfMemory)
		}
		p.lastStored = num
	}
	p.rebuild()
	p.changed()
	return nil
}

// size is the buffer length the current tree would lay out to.
func (p *Program) size() int {
	n := len(terminator)
	p.lines.Ascend(func(item btree.Item) bool {
		n += 5 + len(item.(Line).Body)
		return true
	})
	return n
}

// Delete removes lines from..to inclusive. It fails with Illegal function
// call if no line lies in the range.
func (p *Program) Delete(from, to int) error {
	var doomed []Line
	for line := range p.Lines(from, to) {
		doomed = append(doomed, line)
	}
	if len(doomed) == 0 {
		return runerr.New(runerr.IllegalFunctionCall)
	}
	for _, line := range doomed {
		p.lines.Delete(line)
	}
	p.rebuild()
	p.changed()
	return nil
}

// Merge stores every line of other into p, replacing lines with the same
// number.
func (p *Program) Merge(other *Program) error {
	other.lines.Ascend(func(item btree.Item) bool {
		line := item.(Line)
		p.lines.ReplaceOrInsert(Line{Number: line.Number, Body: line.Body})
		return true
	})
	if p.size() > maxSize {
		return runerr.New(runerr.OutOfMemory)
	}
	p.rebuild()
	p.changed()
	return nil
}

// Erase removes all lines (NEW).
func (p *Program) Erase() {
	p.lines.Clear(false)
	p.lastStored = -1
	p.rebuild()
	p.changed()
}

// ---------------------------------------------------------------------------
// Tokenised file format
// ---------------------------------------------------------------------------

// Bytes encodes the program in the tokenised file format: a 0xFF lead byte
// followed by the line records without the leading marker.
func (p *Program) Bytes() []byte {
	out := make([]byte, 0, len(p.buf))
	out = append(out, tokens.FileLead...)
	out = append(out, p.buf[1:]...)
	return out
}

// FromBytes decodes a tokenised program file. Offsets in the file are not
// trusted; line bodies are found by scanning for the end-of-line marker.
func FromBytes(data []byte) (*Program, error) {
	if len(data) == 0 || data[0] != tokens.FileLead[0] {
		return nil, fmt.Errorf("program: not a tokenised program file")
	}
	p := New()
	// re-insert the marker dropped by the file format so offsets line up
	s := codestream.New("\x00" + string(data[1:]))
	for {
		if s.Read(1) != tokens.LineMarker {
			break
		}
		hdr := s.Read(4)
		if len(hdr) < 4 || hdr[:2] == "\x00\x00" {
			break
		}
		num := int(binary.LittleEndian.Uint16([]byte(hdr[2:])))
		start := s.Tell()
		s.SkipTo([]string{tokens.LineMarker}, true)
		p.lines.ReplaceOrInsert(Line{Number: num, Body: s.Buffer()[start:s.Tell()]})
	}
	if p.size() > maxSize {
		return nil, fmt.Errorf("program: %w", runerr.New(runerr.OutOfMemory))
	}
	p.rebuild()
	return p, nil
}
