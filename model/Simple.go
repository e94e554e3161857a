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

// Simple is the raw-table baseline model: a distance is coded as one
// byte, saturated at 0xFF, followed by three more bytes carrying
// dist-0xFF when saturated. Each byte is coded through its own bit-tree
// with a distinct adaptation rate: the first byte adapts slowest and the
// rarer overflow bytes faster.
type Simple struct {
	tables [4]*byteCoder
	rates  [4]uint
}

// NewSimple creates a Simple model with a neutral prior.
func NewSimple() *Simple {
	this := &Simple{rates: [4]uint{10, 8, 7, 6}}

	for i := range this.tables {
		this.tables[i] = newByteCoder()
	}

	return this
}

// Reset returns every byte table to its neutral prior.
func (this *Simple) Reset() {
	for _, t := range this.tables {
		t.Reset()
	}
}

// Encode codes dist under ctx through rc. ctx is unused: this model's
// tables are global, not per-symbol.
func (this *Simple) Encode(dist uint32, _ dark.DistanceContext, rc *entropy.RangeEncoder) error {
	val := dist

	if val > 0xFF {
		val = 0xFF
	}

	if err := this.tables[0].Encode(rc, byte(val), this.rates[0]); err != nil {
		return err
	}

	if val != 0xFF {
		return nil
	}

	rem := dist - 0xFF

	for i := 1; i < 4; i++ {
		if err := this.tables[i].Encode(rc, byte(rem&0xFF), this.rates[i]); err != nil {
			return err
		}

		rem >>= 8
	}

	return nil
}

// Decode decodes a distance under ctx through rc.
func (this *Simple) Decode(_ dark.DistanceContext, rc *entropy.RangeDecoder) (uint32, error) {
	val, err := this.tables[0].Decode(rc, this.rates[0])

	if err != nil {
		return 0, err
	}

	if val != 0xFF {
		return uint32(val), nil
	}

	var rem uint32

	for i := 1; i < 4; i++ {
		b, err := this.tables[i].Decode(rc, this.rates[i])

		if err != nil {
			return 0, err
		}

		rem |= uint32(b) << uint((i-1)*8)
	}

	return 0xFF + rem, nil
}
