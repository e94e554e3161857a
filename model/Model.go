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

// Package model implements the pluggable distance and byte entropy
// models that sit behind the range coder: simple, exp, dark, ybs (coding
// DC distances) and bbb (coding raw bytes bit by bit).
package model

import "github.com/kvark/dark/entropy"

// intLog returns floor(log2(v+1)): 0 for v==0, 1 for v in {1, 2}, 2 for
// v in 3..6, and so on, the log token the log/mantissa models split a
// distance into.
func intLog(v uint32) uint {
	n := uint(0)
	v++

	for v > 1 {
		v >>= 1
		n++
	}

	return n
}

// byteCoder codes one byte through an 8-level binary tree of adaptive
// Bit probabilities, the "bit decomposition" the raw table model and the
// mantissa stages of exp/dark/ybs use to proxy a frequency table.
type byteCoder struct {
	probs [256]entropy.Bit
}

func newByteCoder() *byteCoder {
	this := &byteCoder{}
	this.Reset()
	return this
}

// Reset returns every tree node to the neutral 1/2 prior.
func (this *byteCoder) Reset() {
	for i := range this.probs {
		this.probs[i] = entropy.NewEqualBit()
	}
}

// Encode codes val's 8 bits MSB first.
func (this *byteCoder) Encode(rc *entropy.RangeEncoder, val byte, rate uint) error {
	ctx := 1

	for i := 7; i >= 0; i-- {
		bit := (val >> uint(i)) & 1
		p := this.probs[ctx]

		if err := rc.EncodeBit(bit, p); err != nil {
			return err
		}

		p.Update(int(bit), rate, 0)
		this.probs[ctx] = p
		ctx = ctx*2 + int(bit)
	}

	return nil
}

// Decode decodes one byte MSB first.
func (this *byteCoder) Decode(rc *entropy.RangeDecoder, rate uint) (byte, error) {
	ctx := 1

	for i := 0; i < 8; i++ {
		p := this.probs[ctx]
		bit, err := rc.DecodeBit(p)

		if err != nil {
			return 0, err
		}

		p.Update(int(bit), rate, 0)
		this.probs[ctx] = p
		ctx = ctx*2 + int(bit)
	}

	return byte(ctx - 256), nil
}

// bitCoder codes a single bit with its own adaptive Bit probability: the
// unit used by the log/unary stages of exp/dark/ybs, separate from the
// byte tree above.
type bitCoder struct {
	p entropy.Bit
}

func newBitCoder() bitCoder {
	return bitCoder{p: entropy.NewEqualBit()}
}

func (this *bitCoder) encode(rc *entropy.RangeEncoder, bit byte, rate uint) error {
	if err := rc.EncodeBit(bit, this.p); err != nil {
		return err
	}

	this.p.Update(int(bit), rate, 0)
	return nil
}

func (this *bitCoder) decode(rc *entropy.RangeDecoder, rate uint) (byte, error) {
	bit, err := rc.DecodeBit(this.p)

	if err != nil {
		return 0, err
	}

	this.p.Update(int(bit), rate, 0)
	return bit, nil
}
