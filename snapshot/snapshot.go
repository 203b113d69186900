// Package snapshot encodes a whole session state (program, interpreter
// pointers and stacks, variables, event traps) as canonical CBOR, so that a
// stopped program can be saved and continued later.
package snapshot

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/gwbasic/events"
	"github.com/chazu/gwbasic/interp"
	"github.com/chazu/gwbasic/memory"
)

// Version is the snapshot format version written by Marshal.
const Version = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// State is a session at rest.
type State struct {
	Version int `cbor:"1,keyasint"`
	// Program is in the tokenised file format.
	Program    []byte       `cbor:"2,keyasint"`
	Interp     interp.State `cbor:"3,keyasint"`
	Memory     memory.State `cbor:"4,keyasint"`
	Events     events.State `cbor:"5,keyasint"`
	RandomSeed uint32       `cbor:"6,keyasint"`
	Syntax     string       `cbor:"7,keyasint"`
}

// Marshal serialises a State to CBOR bytes, stamping the current version.
func Marshal(st *State) ([]byte, error) {
	st.Version = Version
	data, err := cborEncMode.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal: %w", err)
	}
	return data, nil
}

// Unmarshal deserialises a State from CBOR bytes.
func Unmarshal(data []byte) (*State, error) {
	var st State
	if err := cbor.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("snapshot: unmarshal: %w", err)
	}
	if st.Version != Version {
		return nil, fmt.Errorf("snapshot: unsupported version %d", st.Version)
	}
	return &st, nil
}

// Save writes a State to a file.
func Save(path string, st *State) error {
	data, err := Marshal(st)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: cannot write %s: %w", path, err)
	}
	return nil
}

// Load reads a State from a file.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: cannot read %s: %w", path, err)
	}
	return Unmarshal(data)
}
