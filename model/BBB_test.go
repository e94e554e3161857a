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

package model

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/kvark/dark/entropy"
)

func TestBBBRoundtrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(55))
	data := make([]byte, 1000)
	rnd.Read(data)

	enc := NewBBB()
	var buf bytes.Buffer
	rcEnc, err := entropy.NewRangeEncoder(&buf)

	if err != nil {
		t.Fatalf("NewRangeEncoder: %v", err)
	}

	for i, sym := range data {
		if err := enc.Encode(sym, rcEnc); err != nil {
			t.Fatalf("byte %d: Encode: %v", i, err)
		}
	}

	if err := rcEnc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	dec := NewBBB()
	rcDec, err := entropy.NewRangeDecoder(&buf)

	if err != nil {
		t.Fatalf("NewRangeDecoder: %v", err)
	}

	for i, want := range data {
		got, err := dec.Decode(rcDec)

		if err != nil {
			t.Fatalf("byte %d: Decode: %v", i, err)
		}

		if got != want {
			t.Fatalf("byte %d: got %d, want %d", i, got, want)
		}
	}
}

func TestBBBRepeatedByteRuns(t *testing.T) {
	// A long run of a single repeated byte exercises the run-length
	// bucket (runCount/runContext) in update(), including the threshold
	// crossings at 1, 2 and 4.
	data := bytes.Repeat([]byte{0x42}, 5000)

	enc := NewBBB()
	var buf bytes.Buffer
	rcEnc, err := entropy.NewRangeEncoder(&buf)

	if err != nil {
		t.Fatalf("NewRangeEncoder: %v", err)
	}

	for _, sym := range data {
		if err := enc.Encode(sym, rcEnc); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	if err := rcEnc.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	dec := NewBBB()
	rcDec, err := entropy.NewRangeDecoder(&buf)

	if err != nil {
		t.Fatalf("NewRangeDecoder: %v", err)
	}

	for i, want := range data {
		got, err := dec.Decode(rcDec)

		if err != nil {
			t.Fatalf("byte %d: Decode: %v", i, err)
		}

		if got != want {
			t.Fatalf("byte %d: got %d, want %d", i, got, want)
		}
	}
}

func TestBBBResetReturnsToNeutralState(t *testing.T) {
	m := NewBBB()

	var buf bytes.Buffer
	rc, err := entropy.NewRangeEncoder(&buf)

	if err != nil {
		t.Fatalf("NewRangeEncoder: %v", err)
	}

	for i := 0; i < 100; i++ {
		if err := m.Encode(byte(i), rc); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	m.Reset()

	if m.ctxID != 0 || m.bitContext != 1 || m.runCount != 0 || m.runContext != 0 || m.lastBytes != 0 {
		t.Fatalf("Reset left stale state: ctxID=%d bitContext=%d runCount=%d runContext=%d lastBytes=%d",
			m.ctxID, m.bitContext, m.runCount, m.runContext, m.lastBytes)
	}

	fresh := NewBBB()

	var bufM, bufF bytes.Buffer
	rcM, _ := entropy.NewRangeEncoder(&bufM)
	rcF, _ := entropy.NewRangeEncoder(&bufF)

	if err := m.Encode(0x7A, rcM); err != nil {
		t.Fatalf("Encode after Reset: %v", err)
	}

	if err := fresh.Encode(0x7A, rcF); err != nil {
		t.Fatalf("Encode on fresh model: %v", err)
	}

	if err := rcM.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if err := rcF.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	if !bytes.Equal(bufM.Bytes(), bufF.Bytes()) {
		t.Fatal("Reset model diverged from a fresh model on the same input")
	}
}
