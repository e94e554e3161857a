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

// expTreeDepth bounds the number of bits Exp codes per distance: values
// are saturated to 2^expTreeDepth-1, wide enough for any block this
// package is sized for.
const (
	expTreeDepth = 24
	expRows      = 32
	expScale     = 4 // avgLog fixed-point fractional bits
)

// Exp codes a distance as an expTreeDepth-bit binary tree, where each
// node's probability is a weighted mix of two adjacent rows selected by
// a per-symbol average-log register: avgLog tracks (in fixed point) a
// running estimate of log2(distance+1) for that symbol, nudging the
// model toward the row pair matching its typical magnitude.
type Exp struct {
	avgLog [256]int32
	rows   [expRows + 1][1 << 8]entropy.Bit // node index space reused per tree level via ctx below
}

// NewExp creates an Exp model with a neutral prior.
func NewExp() *Exp {
	this := &Exp{}
	this.Reset()
	return this
}

// Reset returns every row and average-log register to its neutral state.
func (this *Exp) Reset() {
	for s := range this.avgLog {
		this.avgLog[s] = 0
	}

	for r := range this.rows {
		for i := range this.rows[r] {
			this.rows[r][i] = entropy.NewEqualBit()
		}
	}
}

func (this *Exp) rowPair(sym byte) (int, int, int) {
	a := this.avgLog[sym]
	row := int(a) >> expScale

	if row >= expRows {
		row = expRows - 1
	}

	frac := int(a) & ((1 << expScale) - 1)
	return row, row + 1, frac
}

func (this *Exp) updateAvgLog(sym byte, dist uint32) {
	target := int32(intLog(dist)) << expScale
	a := this.avgLog[sym]
	this.avgLog[sym] = a + ((target - a) >> 3)
}

// Encode codes dist under ctx through rc.
func (this *Exp) Encode(dist uint32, ctx dark.DistanceContext, rc *entropy.RangeEncoder) error {
	if dist >= (1 << expTreeDepth) {
		dist = (1 << expTreeDepth) - 1
	}

	lo, hi, frac := this.rowPair(ctx.Symbol)
	node := 1

	for i := expTreeDepth - 1; i >= 0; i-- {
		bit := byte((dist >> uint(i)) & 1)
		idx := node & 0xFF
		pLo := this.rows[lo][idx]
		pHi := this.rows[hi][idx]
		mixed := entropy.Mix(pLo, pHi, (1<<expScale)-frac, frac, expScale)

		if err := rc.EncodeBit(bit, mixed); err != nil {
			return err
		}

		pLo.Update(int(bit), 5, 0)
		pHi.Update(int(bit), 5, 0)
		this.rows[lo][idx] = pLo
		this.rows[hi][idx] = pHi
		node = node*2 + int(bit)
	}

	this.updateAvgLog(ctx.Symbol, dist)
	return nil
}

// Decode decodes a distance under ctx through rc.
func (this *Exp) Decode(ctx dark.DistanceContext, rc *entropy.RangeDecoder) (uint32, error) {
	lo, hi, frac := this.rowPair(ctx.Symbol)
	node := 1
	var dist uint32

	for i := expTreeDepth - 1; i >= 0; i-- {
		idx := node & 0xFF
		pLo := this.rows[lo][idx]
		pHi := this.rows[hi][idx]
		mixed := entropy.Mix(pLo, pHi, (1<<expScale)-frac, frac, expScale)
		bit, err := rc.DecodeBit(mixed)

		if err != nil {
			return 0, err
		}

		pLo.Update(int(bit), 5, 0)
		pHi.Update(int(bit), 5, 0)
		this.rows[lo][idx] = pLo
		this.rows[hi][idx] = pHi
		node = node*2 + int(bit)
		dist = (dist << 1) | uint32(bit)
	}

	this.updateAvgLog(ctx.Symbol, dist)
	return dist, nil
}
