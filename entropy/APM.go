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

import internal "github.com/kvark/dark/internal"

// FlatBits is the width, in bits, of the flat probability representation
// shared by every model in this package: a Bit holds P(bit=1) scaled to
// [0, FlatMax]. Mirrors kanzi's AdaptiveProbMap logistic-domain tables
// (internal.Squash/internal.STRETCH) sized for a 12-bit probability.
const (
	FlatBits  = 12
	FlatTotal = 1 << FlatBits
	FlatMax   = FlatTotal - 1
)

// Bit is a stateful flat probability in (0, FlatMax), representing
// P(next bit == 1). The strict-interior invariant (never touching 0 or
// FlatMax) keeps range-coder intervals non-degenerate.
type Bit struct {
	flat uint16
}

// NewEqualBit returns a Bit with probability 1/2, the neutral prior used
// to reset per-block model tables.
func NewEqualBit() Bit {
	return Bit{flat: FlatTotal / 2}
}

// BitFromFlat wraps a precomputed flat probability, clamping it into the
// strict-interior range.
func BitFromFlat(flat int) Bit {
	if flat <= 0 {
		flat = 1
	} else if flat >= FlatMax {
		flat = FlatMax - 1
	}

	return Bit{flat: uint16(flat)}
}

// ToFlat returns the raw flat probability.
func (this Bit) ToFlat() int {
	return int(this.flat)
}

// Predict reports the maximum-likelihood bit under this probability.
func (this Bit) Predict() bool {
	return this.flat >= FlatTotal/2
}

// Update nudges the probability toward observed (0 or 1) by rate_shift,
// optionally keeping it at least floor away from the bounds. This is the
// APM primitive spec names "Bit.update": after update(1), p never
// decreases; after update(0), p never increases.
func (this *Bit) Update(observed int, rateShift uint, floor int) {
	top := observed * FlatMax
	p := int(this.flat) + ((top - int(this.flat)) >> rateShift)

	if p < floor+1 {
		p = floor + 1
	} else if p > FlatMax-1-floor {
		p = FlatMax - 1 - floor
	}

	this.flat = uint16(p)
}

// BinCoords are the interpolation coordinates a Gate returns from Pass so
// that a later Update call can adjust exactly the two table cells that
// were read.
type BinCoords struct {
	index int
	low   int
}

// Gate is a two-sided adaptive probability map: it takes an incoming Bit,
// quantizes it into the logistic (stretch) domain, and interpolates
// between two neighboring table rows indexed by an external context. This
// grounds the raw bbb model's gate1..gate5 stages.
type Gate struct {
	data []uint16 // 33 entries: quantized stretch bucket -> flat probability
}

// NewGate creates a Gate initialized to the identity mapping (output ==
// input), matching kanzi's AdaptiveProbMap seeding via internal.Squash.
func NewGate() Gate {
	data := make([]uint16, 33)

	for j := 0; j <= 32; j++ {
		data[j] = uint16(internal.Squash((j-16)<<7)) << 4
	}

	return Gate{data: data}
}

// Pass maps in through the gate, returning the mapped Bit and the
// coordinates needed to Update this call later.
func (this *Gate) Pass(in *Bit) (Bit, BinCoords) {
	pr := internal.Stretch(in.ToFlat())
	index := (pr + 2048) >> 7

	if index < 0 {
		index = 0
	} else if index > 31 {
		index = 31
	}

	w := pr & 127
	flat := (int(this.data[index+1])*w + int(this.data[index])*(128-w)) >> 11
	return BitFromFlat(flat), BinCoords{index: index, low: w}
}

// Update adjusts the two table cells identified by coords toward observed,
// at the given rate. floor is accepted for symmetry with Bit.Update and
// is ignored.
func (this *Gate) Update(observed bool, coords BinCoords, rate uint, floor int) {
	bit := 0

	if observed {
		bit = 1
	}

	target := 0

	if bit == 1 {
		target = FlatMax << 4
	}

	this.data[coords.index] += uint16((target - int(this.data[coords.index])) >> rate)
	this.data[coords.index+1] += uint16((target - int(this.data[coords.index+1])) >> rate)
}

// Mix combines two Bits with integer weights w1,w2 summing to 1<<shift,
// the weighted mixer spec §4.2 describes.
func Mix(p1, p2 Bit, w1, w2 int, shift uint) Bit {
	return BitFromFlat((w1*p1.ToFlat() + w2*p2.ToFlat()) >> shift)
}
