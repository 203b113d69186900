package memory

import "github.com/chazu/gwbasic/values"

// StoredValue is a value in plain form for serialisation.
type StoredValue struct {
	Sigil byte    `cbor:"1,keyasint"`
	Num   float64 `cbor:"2,keyasint,omitempty"`
	Str   string  `cbor:"3,keyasint,omitempty"`
}

// Store converts a value to plain form.
func Store(v values.Value) StoredValue {
	if s, ok := v.(values.String); ok {
		return StoredValue{Sigil: values.StringSigil, Str: string(s)}
	}
	return StoredValue{Sigil: v.Sigil(), Num: values.ToFloat(v)}
}

// Value converts back from plain form.
func (s StoredValue) Value() values.Value {
	switch s.Sigil {
	case values.StringSigil:
		return values.String(s.Str)
	case values.IntSigil:
		return values.Integer(int16(s.Num))
	case values.DoubleSigil:
		return values.Double(s.Num)
	}
	return values.Single(float32(s.Num))
}

// StoredArray is an array in plain form.
type StoredArray struct {
	Sigil byte          `cbor:"1,keyasint"`
	Dims  []int         `cbor:"2,keyasint"`
	Data  []StoredValue `cbor:"3,keyasint"`
}

// State is the serialisable content of a Memory.
type State struct {
	DefType   string                  `cbor:"1,keyasint"`
	Base      int                     `cbor:"2,keyasint"`
	Scalars   map[string]StoredValue  `cbor:"3,keyasint"`
	Arrays    map[string]StoredArray  `cbor:"4,keyasint"`
	Functions map[string]UserFunction `cbor:"5,keyasint"`
}

// Snapshot captures the store's contents.
func (m *Memory) Snapshot() State {
	st := State{
		DefType:   string(m.deftype[:]),
		Base:      m.base,
		Scalars:   make(map[string]StoredValue, len(m.scalars)),
		Arrays:    make(map[string]StoredArray, len(m.arrays)),
		Functions: make(map[string]UserFunction, len(m.functions)),
	}
	for name, c := range m.scalars {
		st.Scalars[name] = Store(c.value)
	}
	for name, a := range m.arrays {
		sa := StoredArray{Sigil: a.Sigil, Dims: append([]int(nil), a.Dims...)}
		for _, v := range a.Data {
			sa.Data = append(sa.Data, Store(v))
		}
		st.Arrays[name] = sa
	}
	for name, fn := range m.functions {
		st.Functions[name] = *fn
	}
	return st
}

// Restore replaces the store's contents with st.
func (m *Memory) Restore(st State) {
	m.Clear()
	copy(m.deftype[:], st.DefType)
	m.base = st.Base
	for name, sv := range st.Scalars {
		m.scalars[name] = &Cell{sigil: sigilOf(name), value: sv.Value()}
	}
	for name, sa := range st.Arrays {
		a := &Array{Sigil: sa.Sigil, Dims: append([]int(nil), sa.Dims...)}
		for _, sv := range sa.Data {
			a.Data = append(a.Data, sv.Value())
		}
		m.arrays[name] = a
	}
	for name, fn := range st.Functions {
		m.functions[name] = &fn
	}
}
