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

package entropy

import (
	"math/rand"
	"testing"
)

func TestBitUpdateMonotonic(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))

	for trial := 0; trial < 500; trial++ {
		b := BitFromFlat(1 + rnd.Intn(FlatMax-1))
		before := b.ToFlat()
		b.Update(1, uint(1+rnd.Intn(7)), 0)

		if b.ToFlat() < before {
			t.Fatalf("trial %d: update(1) decreased p: %d -> %d", trial, before, b.ToFlat())
		}
	}

	for trial := 0; trial < 500; trial++ {
		b := BitFromFlat(1 + rnd.Intn(FlatMax-1))
		before := b.ToFlat()
		b.Update(0, uint(1+rnd.Intn(7)), 0)

		if b.ToFlat() > before {
			t.Fatalf("trial %d: update(0) increased p: %d -> %d", trial, before, b.ToFlat())
		}
	}
}

func TestBitFromFlatClamps(t *testing.T) {
	if v := BitFromFlat(-5).ToFlat(); v != 1 {
		t.Fatalf("BitFromFlat(-5) = %d, want 1", v)
	}

	if v := BitFromFlat(FlatTotal + 5).ToFlat(); v != FlatMax-1 {
		t.Fatalf("BitFromFlat(FlatTotal+5) = %d, want %d", v, FlatMax-1)
	}
}

func TestGateIdentitySeed(t *testing.T) {
	g := NewGate()
	in := NewEqualBit()
	out, _ := g.Pass(&in)

	// A fresh Gate is seeded through Squash/Stretch so it starts close to
	// the identity mapping: passing 1/2 through it should still read
	// close to 1/2.
	if d := out.ToFlat() - FlatTotal/2; d < -64 || d > 64 {
		t.Fatalf("NewGate().Pass(1/2) = %d, want close to %d", out.ToFlat(), FlatTotal/2)
	}
}

func TestGateUpdateConvergesTowardObserved(t *testing.T) {
	g := NewGate()
	in := BitFromFlat(FlatTotal / 2)

	var out Bit
	var coords BinCoords

	for i := 0; i < 200; i++ {
		out, coords = g.Pass(&in)
		g.Update(true, coords, 3, 0)
	}

	if out.ToFlat() < FlatTotal/2 {
		t.Fatalf("after 200 updates toward 1, gate output = %d, want >= %d", out.ToFlat(), FlatTotal/2)
	}
}

func TestMixAverages(t *testing.T) {
	a := BitFromFlat(1000)
	b := BitFromFlat(3000)

	if m := Mix(a, b, 1, 1, 1); m.ToFlat() != 2000 {
		t.Fatalf("Mix(1000, 3000, 1, 1, 1) = %d, want 2000", m.ToFlat())
	}

	if m := Mix(a, b, 3, 1, 2); m.ToFlat() != 1500 {
		t.Fatalf("Mix(1000, 3000, 3, 1, 2) = %d, want 1500", m.ToFlat())
	}
}
