package snapshot

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/gwbasic/events"
	"github.com/chazu/gwbasic/interp"
	"github.com/chazu/gwbasic/memory"
	"github.com/chazu/gwbasic/values"
)

func sample() *State {
	return &State{
		Program: []byte{0xff, 0x09, 0x00, 0x0a, 0x00, 0x81, 0x00, 0x00, 0x00},
		Interp: interp.State{
			RunMode:    true,
			ProgramPos: 6,
			DirectLine: "\x00\x00\x00\x00\x00",
			Gosub:      []interp.GosubState{{Pos: 3, RunMode: true, Event: -1}},
			For: []interp.ForState{{
				Name: "I!",
				Stop: memory.Store(values.Single(10)),
				Step: memory.Store(values.Single(1)),
			}},
			OnError: -1,
			Stop:    6,
		},
		Memory: memory.State{
			DefType: strings.Repeat("!", 26),
			Base:    -1,
			Scalars: map[string]memory.StoredValue{"I!": memory.Store(values.Single(3))},
		},
		Events: events.State{
			Events:  []events.EventState{{Enabled: true, Gosub: 100}},
			KeyDefs: make([]int, events.NumKeys),
		},
		RandomSeed: 5228,
		Syntax:     "advanced",
	}
}

func TestRoundTrip(t *testing.T) {
	st := sample()
	data, err := Marshal(st)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, st) {
		t.Errorf("round trip = %+v\nwant %+v", got, st)
	}
}

func TestDeterministic(t *testing.T) {
	a, _ := Marshal(sample())
	b, _ := Marshal(sample())
	if string(a) != string(b) {
		t.Error("two encodings of the same state differ")
	}
}

func TestVersionChecked(t *testing.T) {
	st := sample()
	st.Version = 99
	data, err := cbor.Marshal(st)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Unmarshal(data); err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("Unmarshal error = %v, want a version error", err)
	}
	if _, err := Unmarshal([]byte("garbage")); err == nil {
		t.Error("Unmarshal of garbage succeeded")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.cbor")
	if err := Save(path, sample()); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.RandomSeed != 5228 || got.Interp.Stop != 6 {
		t.Errorf("Load = %+v", got)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}
