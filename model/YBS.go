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

// ybsLowMax is the size of the low, directly-coded distance range 0..3.
const (
	ybsLowMax    = 4
	ybsGroupBits = 5
	ybsMantCap   = 16
)

// YBS codes the low distance range 0..ybsLowMax-1 directly through a
// small tree, and anything at or above it as a group index
// (intLog(dist-ybsLowMax)) followed by that many extension bits, the
// group index itself coded through a ybsGroupBits-deep binary tree.
type YBS struct {
	lowFlag [256]entropy.Bit
	low     [256][ybsLowMax]entropy.Bit
	group   [256][1 << ybsGroupBits]entropy.Bit
	ext     [ybsMantCap]entropy.Bit
}

// NewYBS creates a YBS model with a neutral prior.
func NewYBS() *YBS {
	this := &YBS{}
	this.Reset()
	return this
}

// Reset returns every table to its neutral prior.
func (this *YBS) Reset() {
	for s := range this.lowFlag {
		this.lowFlag[s] = entropy.NewEqualBit()

		for i := range this.low[s] {
			this.low[s][i] = entropy.NewEqualBit()
		}

		for i := range this.group[s] {
			this.group[s][i] = entropy.NewEqualBit()
		}
	}

	for i := range this.ext {
		this.ext[i] = entropy.NewEqualBit()
	}
}

// Encode codes dist under ctx through rc.
func (this *YBS) Encode(dist uint32, ctx dark.DistanceContext, rc *entropy.RangeEncoder) error {
	sym := ctx.Symbol

	if dist < ybsLowMax {
		p := this.lowFlag[sym]

		if err := rc.EncodeBit(1, p); err != nil {
			return err
		}

		p.Update(1, 5, 0)
		this.lowFlag[sym] = p

		node := 1

		for i := 1; i >= 0; i-- {
			bit := byte((dist >> uint(i)) & 1)
			q := this.low[sym][node-1]

			if err := rc.EncodeBit(bit, q); err != nil {
				return err
			}

			q.Update(int(bit), 5, 0)
			this.low[sym][node-1] = q
			node = node*2 + int(bit)
		}

		return nil
	}

	p := this.lowFlag[sym]

	if err := rc.EncodeBit(0, p); err != nil {
		return err
	}

	p.Update(0, 5, 0)
	this.lowFlag[sym] = p

	rest := dist - ybsLowMax
	g := intLog(rest)
	gtok := g

	if gtok >= 1<<ybsGroupBits {
		gtok = 1<<ybsGroupBits - 1
	}

	node := 1

	for i := ybsGroupBits - 1; i >= 0; i-- {
		bit := byte((gtok >> uint(i)) & 1)
		q := this.group[sym][node]

		if err := rc.EncodeBit(bit, q); err != nil {
			return err
		}

		q.Update(int(bit), 5, 0)
		this.group[sym][node] = q
		node = node*2 + int(bit)
	}

	if g > 0 {
		base := uint32(1)<<g - 1
		mant := rest - base

		for i := int(g) - 1; i >= 0; i-- {
			bit := byte((mant >> uint(i)) & 1)
			pos := i

			if pos >= ybsMantCap {
				pos = ybsMantCap - 1
			}

			q := this.ext[pos]

			if err := rc.EncodeBit(bit, q); err != nil {
				return err
			}

			q.Update(int(bit), 6, 0)
			this.ext[pos] = q
		}
	}

	return nil
}

// Decode decodes a distance under ctx through rc.
func (this *YBS) Decode(ctx dark.DistanceContext, rc *entropy.RangeDecoder) (uint32, error) {
	sym := ctx.Symbol
	p := this.lowFlag[sym]
	low, err := rc.DecodeBit(p)

	if err != nil {
		return 0, err
	}

	p.Update(int(low), 5, 0)
	this.lowFlag[sym] = p

	if low == 1 {
		node := 1
		var v uint32

		for i := 1; i >= 0; i-- {
			q := this.low[sym][node-1]
			bit, err := rc.DecodeBit(q)

			if err != nil {
				return 0, err
			}

			q.Update(int(bit), 5, 0)
			this.low[sym][node-1] = q
			node = node*2 + int(bit)
			v = (v << 1) | uint32(bit)
		}

		return v, nil
	}

	node := 1
	var gtok uint

	for i := ybsGroupBits - 1; i >= 0; i-- {
		q := this.group[sym][node]
		bit, err := rc.DecodeBit(q)

		if err != nil {
			return 0, err
		}

		q.Update(int(bit), 5, 0)
		this.group[sym][node] = q
		node = node*2 + int(bit)
		gtok = (gtok << 1) | uint(bit)
	}

	g := gtok
	var rest uint32

	if g > 0 {
		base := uint32(1)<<g - 1
		var mant uint32

		for i := int(g) - 1; i >= 0; i-- {
			pos := i

			if pos >= ybsMantCap {
				pos = ybsMantCap - 1
			}

			q := this.ext[pos]
			bit, err := rc.DecodeBit(q)

			if err != nil {
				return 0, err
			}

			q.Update(int(bit), 6, 0)
			this.ext[pos] = q
			mant = (mant << 1) | uint32(bit)
		}

		rest = base + mant
	}

	return ybsLowMax + rest, nil
}
