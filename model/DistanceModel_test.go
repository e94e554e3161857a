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

	"github.com/kvark/dark"
	"github.com/kvark/dark/entropy"
)

func TestDistanceModelsRoundtrip(t *testing.T) {
	for _, name := range DistanceModelNames() {
		name := name

		t.Run(name, func(t *testing.T) {
			rnd := rand.New(rand.NewSource(99))
			const n = 1000

			dists := make([]uint32, n)
			ctxs := make([]dark.DistanceContext, n)

			for i := range dists {
				dists[i] = uint32(rnd.Intn(1 << 24))
				ctxs[i] = dark.DistanceContext{
					Symbol:        byte(rnd.Intn(256)),
					LastRank:      byte(rnd.Intn(256)),
					DistanceLimit: uint32(rnd.Intn(1<<24) + 1),
				}
			}

			enc, err := NewDistanceModel(name)

			if err != nil {
				t.Fatalf("NewDistanceModel(%s): %v", name, err)
			}

			var buf bytes.Buffer
			rcEnc, err := entropy.NewRangeEncoder(&buf)

			if err != nil {
				t.Fatalf("NewRangeEncoder: %v", err)
			}

			for i := range dists {
				if err := enc.Encode(dists[i], ctxs[i], rcEnc); err != nil {
					t.Fatalf("pair %d: Encode: %v", i, err)
				}
			}

			if err := rcEnc.Finish(); err != nil {
				t.Fatalf("Finish: %v", err)
			}

			dec, err := NewDistanceModel(name)

			if err != nil {
				t.Fatalf("NewDistanceModel(%s): %v", name, err)
			}

			rcDec, err := entropy.NewRangeDecoder(&buf)

			if err != nil {
				t.Fatalf("NewRangeDecoder: %v", err)
			}

			for i, want := range dists {
				got, err := dec.Decode(ctxs[i], rcDec)

				if err != nil {
					t.Fatalf("pair %d: Decode: %v", i, err)
				}

				if got != want {
					t.Fatalf("pair %d: got %d, want %d (ctx %+v)", i, got, want, ctxs[i])
				}
			}
		})
	}
}

func TestDistanceModelsResetReturnsToNeutral(t *testing.T) {
	for _, name := range DistanceModelNames() {
		name := name

		t.Run(name, func(t *testing.T) {
			m, err := NewDistanceModel(name)

			if err != nil {
				t.Fatalf("NewDistanceModel(%s): %v", name, err)
			}

			ctx := dark.DistanceContext{Symbol: 42, LastRank: 3, DistanceLimit: 1000}

			var buf bytes.Buffer
			rc, err := entropy.NewRangeEncoder(&buf)

			if err != nil {
				t.Fatalf("NewRangeEncoder: %v", err)
			}

			for i := 0; i < 50; i++ {
				if err := m.Encode(uint32(i*37), ctx, rc); err != nil {
					t.Fatalf("Encode: %v", err)
				}
			}

			m.Reset()

			fresh, err := NewDistanceModel(name)

			if err != nil {
				t.Fatalf("NewDistanceModel(%s): %v", name, err)
			}

			var bufM, bufF bytes.Buffer
			rcM, _ := entropy.NewRangeEncoder(&bufM)
			rcF, _ := entropy.NewRangeEncoder(&bufF)

			if err := m.Encode(12345, ctx, rcM); err != nil {
				t.Fatalf("Encode after Reset: %v", err)
			}

			if err := fresh.Encode(12345, ctx, rcF); err != nil {
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

func TestUnknownModelName(t *testing.T) {
	if _, err := NewDistanceModel("nonexistent"); err == nil {
		t.Fatal("NewDistanceModel(nonexistent): want error, got nil")
	}

	if _, err := NewByteModel("nonexistent"); err == nil {
		t.Fatal("NewByteModel(nonexistent): want error, got nil")
	}
}
