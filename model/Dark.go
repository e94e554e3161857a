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

// darkLogBits bounds the binary tree coding the exponent (log2) of a
// distance: values above 2^darkLogBits-1 are treated as the maximum log
// token and their excess length coded as mantissa bits instead.
const (
	darkLogBits   = 6
	darkLogTokens = 1 << darkLogBits
	darkMantCap   = 16
)

// adaptPowers is the EMA rate table indexed by 6+logDiff, where logDiff
// is the observed log minus the capped running average log
// (avgLogCapped), clamped to [-6,2]; outside that window the fixed rates
// 7 (logDiff<-6) and 3 (logDiff>=3) apply instead. Matches
// original_source/src/model/dark.rs's ADAPT_POWERS and its
// SymbolContext::update indexing exactly.
var adaptPowers = [9]uint{6, 5, 4, 3, 2, 1, 4, 6, 4}

// Dark is the namesake hierarchical exponent/mantissa model: the log of
// a distance is coded through a small binary tree whose probabilities
// sum a per-symbol local table and a table shared across symbols, keyed
// by a capped running average log and the symbol's previous log token;
// mantissa bits below the leading one use a per-position model with a
// shared fallback for positions deeper than darkMantCap.
type Dark struct {
	local    [256][darkLogTokens]entropy.Bit
	global   [darkLogBits + 1][darkLogBits + 1][darkLogTokens]entropy.Bit
	mant     [darkMantCap]entropy.Bit
	avgLog   [256]int32 // Q4 fixed point
	lastLog  [256]byte
}

// NewDark creates a Dark model with a neutral prior.
func NewDark() *Dark {
	this := &Dark{}
	this.Reset()
	return this
}

// Reset returns every table and register to its neutral state.
func (this *Dark) Reset() {
	for s := range this.local {
		for i := range this.local[s] {
			this.local[s][i] = entropy.NewEqualBit()
		}

		this.avgLog[s] = 0
		this.lastLog[s] = 0
	}

	for a := range this.global {
		for b := range this.global[a] {
			for i := range this.global[a][b] {
				this.global[a][b][i] = entropy.NewEqualBit()
			}
		}
	}

	for i := range this.mant {
		this.mant[i] = entropy.NewEqualBit()
	}
}

func (this *Dark) avgLogCapped(sym byte) int {
	v := int(this.avgLog[sym]) >> 4

	if v > darkLogBits {
		v = darkLogBits
	}

	return v
}

func (this *Dark) sumProxy(sym byte, node int) (entropy.Bit, func(bit int)) {
	capped := this.avgLogCapped(sym)
	lastTok := int(this.lastLog[sym])

	if lastTok > darkLogBits {
		lastTok = darkLogBits
	}

	local := this.local[sym][node]
	global := this.global[capped][lastTok][node]
	mixed := entropy.Mix(local, global, 1, 1, 1)

	return mixed, func(bit int) {
		local.Update(bit, 5, 0)
		global.Update(bit, 7, 0)
		this.local[sym][node] = local
		this.global[capped][lastTok][node] = global
	}
}

func (this *Dark) updateAfter(sym byte, logVal byte) {
	target := int32(logVal) << 4
	avg := this.avgLog[sym]
	logDiff := int(logVal) - this.avgLogCapped(sym)

	var rate uint

	switch {
	case logDiff < -6:
		rate = 7
	case logDiff >= 3:
		rate = 3
	default:
		rate = adaptPowers[6+logDiff]
	}

	this.avgLog[sym] = avg + ((target - avg) >> rate)
	this.lastLog[sym] = logVal
}

// Encode codes dist under ctx through rc.
func (this *Dark) Encode(dist uint32, ctx dark.DistanceContext, rc *entropy.RangeEncoder) error {
	logVal := intLog(dist)
	tok := logVal

	if tok >= darkLogTokens {
		tok = darkLogTokens - 1
	}

	node := 1

	for i := darkLogBits - 1; i >= 0; i-- {
		bit := byte((tok >> uint(i)) & 1)
		p, commit := this.sumProxy(ctx.Symbol, node)

		if err := rc.EncodeBit(bit, p); err != nil {
			return err
		}

		commit(int(bit))
		node = node*2 + int(bit)
	}

	// Mantissa: dist always falls in [2^logVal-1, 2^(logVal+1)-2], so the
	// logVal low bits of (dist - (2^logVal - 1)) complete the value.
	if logVal > 0 {
		base := uint32(1)<<logVal - 1
		mant := dist - base

		for i := int(logVal) - 1; i >= 0; i-- {
			bit := byte((mant >> uint(i)) & 1)
			pos := i

			if pos >= darkMantCap {
				pos = darkMantCap - 1
			}

			p := this.mant[pos]

			if err := rc.EncodeBit(bit, p); err != nil {
				return err
			}

			p.Update(int(bit), 6, 0)
			this.mant[pos] = p
		}
	}

	this.updateAfter(ctx.Symbol, byte(logVal))
	return nil
}

// Decode decodes a distance under ctx through rc.
func (this *Dark) Decode(ctx dark.DistanceContext, rc *entropy.RangeDecoder) (uint32, error) {
	node := 1
	var tok uint

	for i := darkLogBits - 1; i >= 0; i-- {
		p, commit := this.sumProxy(ctx.Symbol, node)
		bit, err := rc.DecodeBit(p)

		if err != nil {
			return 0, err
		}

		commit(int(bit))
		node = node*2 + int(bit)
		tok = (tok << 1) | uint(bit)
	}

	logVal := tok
	var dist uint32

	if logVal > 0 {
		base := uint32(1)<<logVal - 1
		var mant uint32

		for i := int(logVal) - 1; i >= 0; i-- {
			pos := i

			if pos >= darkMantCap {
				pos = darkMantCap - 1
			}

			p := this.mant[pos]
			bit, err := rc.DecodeBit(p)

			if err != nil {
				return 0, err
			}

			p.Update(int(bit), 6, 0)
			this.mant[pos] = p
			mant = (mant << 1) | uint32(bit)
		}

		dist = base + mant
	}

	this.updateAfter(ctx.Symbol, byte(logVal))
	return dist, nil
}
