/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package block

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kvark/dark"
	"github.com/kvark/dark/internal"
	"github.com/kvark/dark/model"
)

// recorder collects every Event fired during a round trip, so a test can
// assert the orchestrator announced the stages it claims to.
type recorder struct {
	types []int
}

func (this *recorder) ProcessEvent(evt *dark.Event) {
	this.types = append(this.types, evt.Type())
}

func (this *recorder) has(evtType int) bool {
	for _, t := range this.types {
		if t == evtType {
			return true
		}
	}

	return false
}

// roundtrip encodes input under name into an internal.BufferStream (so
// that teacher-derived helper is genuinely exercised as this project's
// in-memory transport), decodes it back, and checks the result matches
// input exactly.
func roundtrip(t *testing.T, input []byte, name string, checksum bool) {
	t.Helper()

	rec := &recorder{}
	stream := internal.NewBufferStream()

	enc, err := NewEncoder(len(input), name, checksum, rec)

	if err != nil {
		t.Fatalf("NewEncoder(%s): %v", name, err)
	}

	if err := enc.Encode(input, stream); err != nil {
		t.Fatalf("Encode(%s): %v", name, err)
	}

	if !rec.has(dark.EvtBlockStart) || !rec.has(dark.EvtBlockEnd) {
		t.Fatalf("Encode(%s) did not fire BlockStart/BlockEnd events: %v", name, rec.types)
	}

	dec, err := NewDecoder(len(input), name, checksum, rec)

	if err != nil {
		t.Fatalf("NewDecoder(%s): %v", name, err)
	}

	var out bytes.Buffer

	if err := dec.Decode(stream, &out); err != nil {
		t.Fatalf("Decode(%s): %v", name, err)
	}

	if diff := cmp.Diff(input, out.Bytes()); diff != "" {
		t.Fatalf("roundtrip(%s) mismatch (-want +got):\n%s", name, diff)
	}
}

func TestScenarioAbracadabraSimple(t *testing.T) {
	roundtrip(t, []byte("abracadabra"), model.NameSimple, false)
}

func TestAlphabetStatsEventsFire(t *testing.T) {
	// "abracadabra" has 5 distinct bytes (a,b,r,c,d): a sparse alphabet,
	// so both EvtSparseAlphabet and EvtDataType should fire once.
	rec := &recorder{}
	enc, err := NewEncoder(64, model.NameSimple, false, rec)

	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	var buf bytes.Buffer

	if err := enc.Encode([]byte("abracadabra"), &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	if !rec.has(dark.EvtSparseAlphabet) {
		t.Fatal("Encode of a sparse-alphabet block did not fire EvtSparseAlphabet")
	}

	if !rec.has(dark.EvtDataType) {
		t.Fatal("Encode did not fire EvtDataType")
	}

	wantE := byte(5 - 1)

	if got := buf.Bytes()[4]; got != wantE {
		t.Fatalf("E marker = %d, want %d (5 distinct bytes)", got, wantE)
	}
}

func TestScenarioAbracadabraSimpleWithChecksum(t *testing.T) {
	roundtrip(t, []byte("abracadabra"), model.NameSimple, true)
}

func TestScenarioBananaExp(t *testing.T) {
	roundtrip(t, []byte("banana"), model.NameExp, false)
}

func TestEmptyBlock(t *testing.T) {
	for _, checksum := range []bool{false, true} {
		roundtrip(t, nil, model.NameYBS, checksum)
	}
}

func TestEmptyBlockWireFormat(t *testing.T) {
	// Scenario 6: an empty block is the header (4-byte N, 1-byte E) plus
	// the 4-byte RC flush tail every block ends in, with no payload and,
	// if enabled, an 8-byte checksum between the header and the tail.
	enc, err := NewEncoder(0, model.NameSimple, false)

	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	var buf bytes.Buffer

	if err := enc.Encode(nil, &buf); err != nil {
		t.Fatalf("Encode(nil): %v", err)
	}

	want := headerBytes + rcTailBytes

	if buf.Len() != want {
		t.Fatalf("Encode(nil) wrote %d bytes, want %d (header plus RC flush tail, no payload)", buf.Len(), want)
	}
}

func allModelNames() []string {
	names := append([]string{}, model.DistanceModelNames()...)
	return append(names, model.ByteModelNames()...)
}

func Test10KBTextAllModels(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 250)
	input := []byte(text)[:10000]

	for _, name := range allModelNames() {
		name := name

		t.Run(name, func(t *testing.T) {
			var compressed bytes.Buffer

			enc, err := NewEncoder(len(input), name, false)

			if err != nil {
				t.Fatalf("NewEncoder(%s): %v", name, err)
			}

			if err := enc.Encode(input, &compressed); err != nil {
				t.Fatalf("Encode(%s): %v", name, err)
			}

			isDistanceModel := false

			for _, dn := range model.DistanceModelNames() {
				if dn == name {
					isDistanceModel = true
				}
			}

			if isDistanceModel && compressed.Len() > len(input) {
				t.Fatalf("%s: compressed %d bytes, input was %d bytes", name, compressed.Len(), len(input))
			}

			dec, err := NewDecoder(len(input), name, false)

			if err != nil {
				t.Fatalf("NewDecoder(%s): %v", name, err)
			}

			var out bytes.Buffer

			if err := dec.Decode(&compressed, &out); err != nil {
				t.Fatalf("Decode(%s): %v", name, err)
			}

			if diff := cmp.Diff(input, out.Bytes()); diff != "" {
				t.Fatalf("roundtrip(%s) mismatch (-want +got):\n%s", name, diff)
			}
		})
	}
}

func TestOversizeBlockRejected(t *testing.T) {
	enc, err := NewEncoder(4, model.NameSimple, false)

	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	var buf bytes.Buffer

	if err := enc.Encode([]byte("too long"), &buf); err == nil {
		t.Fatal("Encode of an over-capacity block: want error, got nil")
	}
}

func TestOversizeHeaderRejected(t *testing.T) {
	// A header claiming a block bigger than the decoder's capacity must
	// be rejected before any model/BWT work starts.
	dec, err := NewDecoder(4, model.NameSimple, false)

	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var hdr [headerBytes]byte
	hdr[0] = 100 // N = 100, exceeds capacity 4
	hdr[4] = 0

	var out bytes.Buffer

	if err := dec.Decode(bytes.NewReader(hdr[:]), &out); err == nil {
		t.Fatal("Decode with N > capacity: want error, got nil")
	}
}

func TestTruncatedHeaderRejected(t *testing.T) {
	dec, err := NewDecoder(100, model.NameSimple, false)

	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var out bytes.Buffer

	if err := dec.Decode(bytes.NewReader([]byte{1, 2}), &out); err == nil {
		t.Fatal("Decode of a truncated header: want error, got nil")
	}
}

func TestChecksumMismatchRejected(t *testing.T) {
	input := []byte("abracadabra")

	enc, err := NewEncoder(len(input), model.NameSimple, true)

	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	var buf bytes.Buffer

	if err := enc.Encode(input, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	encoded := buf.Bytes()
	corrupted := make([]byte, len(encoded))
	copy(corrupted, encoded)
	corrupted[headerBytes] ^= 0xFF // flip every bit of the checksum's first byte

	dec, err := NewDecoder(len(input), model.NameSimple, true)

	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	var out bytes.Buffer

	if err := dec.Decode(bytes.NewReader(corrupted), &out); err == nil {
		t.Fatal("Decode with a corrupted checksum: want error, got nil")
	}
}
