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

func TestByteModelsRoundtrip(t *testing.T) {
	for _, name := range ByteModelNames() {
		name := name

		t.Run(name, func(t *testing.T) {
			rnd := rand.New(rand.NewSource(77))
			data := make([]byte, 1000)
			rnd.Read(data)

			enc, err := NewByteModel(name)

			if err != nil {
				t.Fatalf("NewByteModel(%s): %v", name, err)
			}

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

			dec, err := NewByteModel(name)

			if err != nil {
				t.Fatalf("NewByteModel(%s): %v", name, err)
			}

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
		})
	}
}

func TestByteModelsResetReturnsToNeutral(t *testing.T) {
	for _, name := range ByteModelNames() {
		name := name

		t.Run(name, func(t *testing.T) {
			m, err := NewByteModel(name)

			if err != nil {
				t.Fatalf("NewByteModel(%s): %v", name, err)
			}

			var buf bytes.Buffer
			rc, err := entropy.NewRangeEncoder(&buf)

			if err != nil {
				t.Fatalf("NewRangeEncoder: %v", err)
			}

			for i := 0; i < 50; i++ {
				if err := m.Encode(byte(i*3), rc); err != nil {
					t.Fatalf("Encode: %v", err)
				}
			}

			m.Reset()

			fresh, err := NewByteModel(name)

			if err != nil {
				t.Fatalf("NewByteModel(%s): %v", name, err)
			}

			var bufM, bufF bytes.Buffer
			rcM, _ := entropy.NewRangeEncoder(&bufM)
			rcF, _ := entropy.NewRangeEncoder(&bufF)

			if err := m.Encode(0x5A, rcM); err != nil {
				t.Fatalf("Encode after Reset: %v", err)
			}

			if err := fresh.Encode(0x5A, rcF); err != nil {
				t.Fatalf("Encode on fresh model: %v", err)
			}

			if err := rcM.Finish(); err != nil {
				t.Fatalf("Finish: %v", err)
			}

			if err := rcF.Finish(); err != nil {
				t.Fatalf("Finish: %v", err)
			}

			if !bytes.Equal(bufM.Bytes(), bufF.Bytes()) {
				t.Fatalf("%s: Reset model diverged from a fresh model on the same input", name)
			}
		})
	}
}
