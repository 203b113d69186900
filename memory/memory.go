// Package memory stores BASIC variables, arrays and user function
// definitions for one session.
package memory

import (
	"slices"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/gwbasic/runerr"
	"github.com/chazu/gwbasic/values"
)

var log = commonlog.GetLogger("gwbasic.memory")

// defaultDim is the upper bound given to arrays used before a DIM.
const defaultDim = 10

// ---------------------------------------------------------------------------
// Cells
// ---------------------------------------------------------------------------

// Cell holds one scalar variable. A FOR loop keeps a *Cell for its counter so
// each NEXT updates it without looking the name up again.
type Cell struct {
	sigil byte
	value values.Value
}

// Get returns the cell's value.
func (c *Cell) Get() values.Value { return c.value }

// Set converts v to the cell's type and stores it.
func (c *Cell) Set(v values.Value) {
	c.value = values.ToType(c.sigil, v)
}

// Add adds step to the cell in place.
func (c *Cell) Add(step values.Value) {
	c.Set(values.Add(c.value, step))
}

// Sigil returns the cell's type sigil.
func (c *Cell) Sigil() byte { return c.sigil }

// ---------------------------------------------------------------------------
// Arrays
// ---------------------------------------------------------------------------

// Array is a dimensioned array. Dims holds the upper bound of each dimension.
type Array struct {
	Sigil byte
	Dims  []int
	Data  []values.Value
}

func newArray(sigil byte, dims []int, base int) *Array {
	size := 1
	for _, d := range dims {
		size *= d + 1 - base
	}
	data := make([]values.Value, size)
	zero := values.Zero(sigil)
	for i := range data {
		data[i] = zero
	}
	return &Array{Sigil: sigil, Dims: slices.Clone(dims), Data: data}
}

func (a *Array) index(indices []int, base int) int {
	if len(indices) != len(a.Dims) {
		runerr.Raise(runerr.SubscriptOutOfRange)
	}
	flat := 0
	for i, idx := range indices {
		if idx < base || idx > a.Dims[i] {
			runerr.Raise(runerr.SubscriptOutOfRange)
		}
		flat = flat*(a.Dims[i]+1-base) + idx - base
	}
	return flat
}

// ---------------------------------------------------------------------------
// User functions
// ---------------------------------------------------------------------------

// UserFunction is a DEF FN definition. Body is the program offset of the
// expression after the equals sign.
type UserFunction struct {
	Name   string
	Params []string
	Body   int
}

// ---------------------------------------------------------------------------
// Memory
// ---------------------------------------------------------------------------

// Memory is the variable store.
type Memory struct {
	deftype   [26]byte
	scalars   map[string]*Cell
	arrays    map[string]*Array
	base      int // -1 until OPTION BASE or the first array
	functions map[string]*UserFunction
}

// New returns an empty store with every letter defaulting to single.
func New() *Memory {
	m := &Memory{}
	m.Clear()
	return m
}

// Clear removes all variables, arrays and functions and resets DEFtype and
// OPTION BASE.
func (m *Memory) Clear() {
	for i := range m.deftype {
		m.deftype[i] = values.SingleSigil
	}
	m.scalars = make(map[string]*Cell)
	m.arrays = make(map[string]*Array)
	m.functions = make(map[string]*UserFunction)
	m.base = -1
	log.Debug("memory cleared")
}

// DefType sets the default type for names starting with letters first..last.
func (m *Memory) DefType(sigil byte, first, last byte) {
	first, last = upper(first), upper(last)
	if first < 'A' || last > 'Z' || first > last {
		runerr.Raise(runerr.SyntaxError)
	}
	for c := first; c <= last; c++ {
		m.deftype[c-'A'] = sigil
	}
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// CompleteName appends the default sigil to a name that has none.
func (m *Memory) CompleteName(name string) string {
	if name == "" {
		runerr.Raise(runerr.SyntaxError)
	}
	switch name[len(name)-1] {
	case values.IntSigil, values.SingleSigil, values.DoubleSigil, values.StringSigil:
		return name
	case '&':
		runerr.Raise(runerr.SyntaxError)
	}
	first := upper(name[0])
	if first < 'A' || first > 'Z' {
		runerr.Raise(runerr.SyntaxError)
	}
	return name + string(m.deftype[first-'A'])
}

func sigilOf(name string) byte {
	return name[len(name)-1]
}

// View returns the cell for a scalar, creating it if needed.
func (m *Memory) View(name string) *Cell {
	name = m.CompleteName(name)
	c, ok := m.scalars[name]
	if !ok {
		c = &Cell{sigil: sigilOf(name), value: values.Zero(sigilOf(name))}
		m.scalars[name] = c
	}
	return c
}

// Get returns a scalar's value; unset variables read as zero or empty.
func (m *Memory) Get(name string) values.Value {
	name = m.CompleteName(name)
	if c, ok := m.scalars[name]; ok {
		return c.value
	}
	return values.Zero(sigilOf(name))
}

// Set assigns a scalar, converting v to the variable's type.
func (m *Memory) Set(name string, v values.Value) {
	m.View(name).Set(v)
}

// Scalars returns the defined scalar names in order.
func (m *Memory) Scalars() []string {
	names := make([]string, 0, len(m.scalars))
	for name := range m.scalars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Arrays returns the dimensioned array names in order.
func (m *Memory) Arrays() []string {
	names := make([]string, 0, len(m.arrays))
	for name := range m.arrays {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ---------------------------------------------------------------------------
// Arrays
// ---------------------------------------------------------------------------

// Base returns the array lower bound in effect.
func (m *Memory) Base() int {
	if m.base < 0 {
		return 0
	}
	return m.base
}

// SetBase implements OPTION BASE.
func (m *Memory) SetBase(base int) {
	if base != 0 && base != 1 {
		runerr.Raise(runerr.SyntaxError)
	}
	if m.base >= 0 && m.base != base || len(m.arrays) > 0 {
		runerr.Raise(runerr.DuplicateDefinition)
	}
	m.base = base
}

// Dim dimensions an array.
func (m *Memory) Dim(name string, dims []int) {
	name = m.CompleteName(name)
	if _, ok := m.arrays[name]; ok {
		runerr.Raise(runerr.DuplicateDefinition)
	}
	for _, d := range dims {
		if d < 0 {
			runerr.Raise(runerr.IllegalFunctionCall)
		}
		if d < m.Base() {
			runerr.Raise(runerr.SubscriptOutOfRange)
		}
	}
	if m.base < 0 {
		m.base = 0
	}
	m.arrays[name] = newArray(sigilOf(name), dims, m.base)
	log.Debugf("dim %s%v", name, dims)
}

// Erase removes an array.
func (m *Memory) Erase(name string) {
	name = m.CompleteName(name)
	if _, ok := m.arrays[name]; !ok {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	delete(m.arrays, name)
}

// array returns the named array, dimensioning it to 10 per index if it does
// not exist yet.
func (m *Memory) array(name string, n int) *Array {
	a, ok := m.arrays[name]
	if !ok {
		dims := make([]int, n)
		for i := range dims {
			dims[i] = defaultDim
		}
		m.Dim(name, dims)
		a = m.arrays[name]
	}
	return a
}

// Array returns a copy of an array's shape and contents, or false.
func (m *Memory) Array(name string) (Array, bool) {
	a, ok := m.arrays[m.CompleteName(name)]
	if !ok {
		return Array{}, false
	}
	return Array{Sigil: a.Sigil, Dims: slices.Clone(a.Dims), Data: slices.Clone(a.Data)}, true
}

// ---------------------------------------------------------------------------
// Variables
// ---------------------------------------------------------------------------

// GetVariable reads a scalar or, with indices, an array element.
func (m *Memory) GetVariable(name string, indices []int) values.Value {
	if len(indices) == 0 {
		return m.Get(name)
	}
	name = m.CompleteName(name)
	a := m.array(name, len(indices))
	return a.Data[a.index(indices, m.Base())]
}

// SetVariable assigns a scalar or array element.
func (m *Memory) SetVariable(name string, indices []int, v values.Value) {
	if len(indices) == 0 {
		m.Set(name, v)
		return
	}
	name = m.CompleteName(name)
	a := m.array(name, len(indices))
	a.Data[a.index(indices, m.Base())] = values.ToType(a.Sigil, v)
}

// Swap exchanges two variables of the same type.
func (m *Memory) Swap(name1 string, idx1 []int, name2 string, idx2 []int) {
	name1, name2 = m.CompleteName(name1), m.CompleteName(name2)
	if sigilOf(name1) != sigilOf(name2) {
		runerr.Raise(runerr.TypeMismatch)
	}
	v1 := m.GetVariable(name1, idx1)
	v2 := m.GetVariable(name2, idx2)
	m.SetVariable(name1, idx1, v2)
	m.SetVariable(name2, idx2, v1)
}

// LSet left-justifies v into the variable's current length.
func (m *Memory) LSet(name string, indices []int, v values.Value) {
	m.justify(name, indices, v, false)
}

// RSet right-justifies v into the variable's current length.
func (m *Memory) RSet(name string, indices []int, v values.Value) {
	m.justify(name, indices, v, true)
}

func (m *Memory) justify(name string, indices []int, v values.Value, right bool) {
	old := string(values.PassString(m.GetVariable(name, indices)))
	s := string(values.PassString(v))
	if len(s) > len(old) {
		s = s[:len(old)]
	}
	pad := strings.Repeat(" ", len(old)-len(s))
	if right {
		s = pad + s
	} else {
		s += pad
	}
	m.SetVariable(name, indices, values.String(s))
}

// MidSet overwrites part of a string variable in place (MID$ statement).
// start is 1-based; num < 0 means as much of v as fits.
func (m *Memory) MidSet(name string, indices []int, start, num int, v values.Value) {
	old := string(values.PassString(m.GetVariable(name, indices)))
	s := string(values.PassString(v))
	if start < 1 || start > len(old) {
		runerr.Raise(runerr.IllegalFunctionCall)
	}
	if num >= 0 && num < len(s) {
		s = s[:num]
	}
	if start-1+len(s) > len(old) {
		s = s[:len(old)-start+1]
	}
	m.SetVariable(name, indices, values.String(old[:start-1]+s+old[start-1+len(s):]))
}

// ---------------------------------------------------------------------------
// User functions
// ---------------------------------------------------------------------------

// DefFn records a user function. Redefinition replaces the old one.
func (m *Memory) DefFn(fn UserFunction) {
	fn.Name = m.CompleteName(fn.Name)
	for i, p := range fn.Params {
		fn.Params[i] = m.CompleteName(p)
	}
	m.functions[fn.Name] = &fn
}

// Fn looks up a user function.
func (m *Memory) Fn(name string) (*UserFunction, bool) {
	fn, ok := m.functions[m.CompleteName(name)]
	return fn, ok
}

// Shadow binds names to vals for the duration of a function call and
// returns a func that restores the previous bindings.
func (m *Memory) Shadow(names []string, vals []values.Value) (restore func()) {
	type saved struct {
		cell   *Cell
		exists bool
	}
	old := make(map[string]saved, len(names))
	for _, name := range names {
		c, ok := m.scalars[name]
		if _, seen := old[name]; !seen {
			old[name] = saved{c, ok}
		}
		delete(m.scalars, name)
	}
	for i, name := range names {
		m.Set(name, vals[i])
	}
	return func() {
		for name, s := range old {
			if s.exists {
				m.scalars[name] = s.cell
			} else {
				delete(m.scalars, name)
			}
		}
	}
}
