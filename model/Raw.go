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

import "github.com/kvark/dark/entropy"

// rawRate is the single adaptation rate shared by every bit the raw
// models code: no per-position tree, no per-stage schedule. Standing in
// for original_source/src/model/raw.rs's `Out`/`DcOut`, which only ever
// wrote their input to a side file and returned `Ok(0) // not supported`
// from decode, so neither can be ported literally into a model that has
// to round-trip through the range coder.
const rawRate = 8

// Raw codes every byte through 8 independent, context-free bit
// probabilities, one per bit position. It is the plainest byte model
// that still round-trips: no DC front end, no symbol context, just an
// adaptive probability per wire position.
type Raw struct {
	bits [8]bitCoder
}

// NewRaw creates a Raw model with a neutral prior.
func NewRaw() *Raw {
	this := &Raw{}
	this.Reset()
	return this
}

// Reset returns every bit probability to its neutral prior.
func (this *Raw) Reset() {
	for i := range this.bits {
		this.bits[i] = newBitCoder()
	}
}

// Encode codes sym bit by bit, MSB first, through rc.
func (this *Raw) Encode(sym byte, rc *entropy.RangeEncoder) error {
	for i := 7; i >= 0; i-- {
		bit := (sym >> uint(i)) & 1

		if err := this.bits[7-i].encode(rc, bit, rawRate); err != nil {
			return err
		}
	}

	return nil
}

// Decode decodes one byte, MSB first, from rc.
func (this *Raw) Decode(rc *entropy.RangeDecoder) (byte, error) {
	var sym byte

	for i := 0; i < 8; i++ {
		bit, err := this.bits[i].decode(rc, rawRate)

		if err != nil {
			return 0, err
		}

		sym = (sym << 1) | bit
	}

	return sym, nil
}
