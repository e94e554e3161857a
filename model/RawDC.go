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
	"github.com/kvark/dark"
	"github.com/kvark/dark/entropy"
)

// RawDC codes a DC distance as 32 raw bits, MSB first, through 32
// independent, context-free bit probabilities (one per wire position) —
// the distance-side counterpart of Raw, feeding the same kind of coded
// stream through the DC front-end rather than bypassing it. It exists so
// the DC path can be exercised with the plainest possible coded payload,
// mirroring the "raw"/"rawdc" split in original_source/src/model/raw.rs
// (whose `DcOut` distance dump also never supported decode).
type RawDC struct {
	bits [32]bitCoder
}

// NewRawDC creates a RawDC model with a neutral prior.
func NewRawDC() *RawDC {
	this := &RawDC{}
	this.Reset()
	return this
}

// Reset returns every bit probability to its neutral prior.
func (this *RawDC) Reset() {
	for i := range this.bits {
		this.bits[i] = newBitCoder()
	}
}

// Encode codes dist as 32 bits through rc. ctx is unused: this model
// carries no context beyond wire position.
func (this *RawDC) Encode(dist uint32, _ dark.DistanceContext, rc *entropy.RangeEncoder) error {
	for i := 31; i >= 0; i-- {
		bit := byte((dist >> uint(i)) & 1)

		if err := this.bits[31-i].encode(rc, bit, rawRate); err != nil {
			return err
		}
	}

	return nil
}

// Decode decodes a 32-bit distance from rc. ctx is unused.
func (this *RawDC) Decode(_ dark.DistanceContext, rc *entropy.RangeDecoder) (uint32, error) {
	var dist uint32

	for i := 0; i < 32; i++ {
		bit, err := this.bits[i].decode(rc, rawRate)

		if err != nil {
			return 0, err
		}

		dist = (dist << 1) | uint32(bit)
	}

	return dist, nil
}
