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

package transform

import (
	"container/heap"

	"github.com/kvark/dark"
)

// MTF is a 256-entry move-to-front queue over the byte alphabet. Rank
// reports a symbol's current position in the recency list and then moves
// it to the front.
type MTF struct {
	order [256]byte
}

// NewMTF creates an MTF queue in identity order (byte value == rank).
func NewMTF() *MTF {
	this := &MTF{}

	for i := 0; i < 256; i++ {
		this.order[i] = byte(i)
	}

	return this
}

// Rank returns sym's rank before this call, then moves it to the front.
func (this *MTF) Rank(sym byte) byte {
	for i, b := range this.order {
		if b == sym {
			copy(this.order[1:i+1], this.order[0:i])
			this.order[0] = sym
			return byte(i)
		}
	}

	return 0 // unreachable: order is always a full permutation of 0..255
}

// DCEvent is one (distance, context) pair of the DC main stream.
type DCEvent struct {
	Dist uint32
	Ctx  dark.DistanceContext
}

type dcSlot struct {
	pos int
	sym byte
}

type dcHeap []dcSlot

func (this dcHeap) Len() int            { return len(this) }
func (this dcHeap) Less(i, j int) bool  { return this[i].pos < this[j].pos }
func (this dcHeap) Swap(i, j int)       { this[i], this[j] = this[j], this[i] }
func (this *dcHeap) Push(x interface{}) { *this = append(*this, x.(dcSlot)) }

func (this *dcHeap) Pop() interface{} {
	old := *this
	n := len(old)
	item := old[n-1]
	*this = old[:n-1]
	return item
}

// nextOccurrence[i] is the first index after i sharing data[i]'s symbol,
// or n if data[i] never recurs.
func nextOccurrence(data []byte) []int {
	n := len(data)
	next := make([]int, n)
	var last [256]int

	for i := range last {
		last[i] = n
	}

	for i := n - 1; i >= 0; i-- {
		next[i] = last[data[i]]
		last[data[i]] = i
	}

	return next
}

// DCEncode converts a BWT column into an init[256] table (the first
// occurrence index of each symbol, or n if absent) and a stream of
// (distance, context) pairs, one per occurrence-to-occurrence gap,
// ordered by the position each gap is resolved at rather than by the
// position it starts from: this is the order in which a decoder, walking
// the same induced schedule, can resolve each context's Symbol without
// having seen the output yet.
func DCEncode(data []byte) (init [256]uint32, events []DCEvent) {
	n := len(data)

	for i := range init {
		init[i] = uint32(n)
	}

	if n == 0 {
		return init, nil
	}

	var firstPos [256]int

	for i := range firstPos {
		firstPos[i] = -1
	}

	for i, sym := range data {
		if firstPos[sym] < 0 {
			firstPos[sym] = i
			init[sym] = uint32(i)
		}
	}

	next := nextOccurrence(data)
	mtf := NewMTF()
	h := &dcHeap{}

	for sym := 0; sym < 256; sym++ {
		if firstPos[sym] >= 0 {
			heap.Push(h, dcSlot{pos: firstPos[sym], sym: byte(sym)})
		}
	}

	for h.Len() > 0 {
		slot := heap.Pop(h).(dcSlot)
		rank := mtf.Rank(slot.sym)
		limit := uint32(n - slot.pos)
		nxt := next[slot.pos]
		dist := uint32(n - slot.pos)

		if nxt < n {
			dist = uint32(nxt - slot.pos)
		}

		events = append(events, DCEvent{
			Dist: dist,
			Ctx:  dark.DistanceContext{Symbol: slot.sym, LastRank: rank, DistanceLimit: limit},
		})

		if nxt < n {
			heap.Push(h, dcSlot{pos: nxt, sym: slot.sym})
		}
	}

	return init, events
}

// DistanceDecoder supplies the next distance for a context, reading from
// the entropy-coded stream.
type DistanceDecoder func(ctx dark.DistanceContext) (uint32, error)

// DCDecode reconstructs a BWT column of length n from init and a callback
// invoked once per (position, symbol) slot the same induced schedule
// DCEncode produced.
func DCDecode(init [256]uint32, n int, next DistanceDecoder) ([]byte, error) {
	out := make([]byte, n)

	if n == 0 {
		return out, nil
	}

	mtf := NewMTF()
	h := &dcHeap{}

	for sym := 0; sym < 256; sym++ {
		if init[sym] < uint32(n) {
			pos := int(init[sym])
			out[pos] = byte(sym)
			heap.Push(h, dcSlot{pos: pos, sym: byte(sym)})
		}
	}

	for h.Len() > 0 {
		slot := heap.Pop(h).(dcSlot)
		rank := mtf.Rank(slot.sym)
		limit := uint32(n - slot.pos)
		dist, err := next(dark.DistanceContext{Symbol: slot.sym, LastRank: rank, DistanceLimit: limit})

		if err != nil {
			return nil, err
		}

		nxt := slot.pos + int(dist)

		if nxt < n {
			out[nxt] = slot.sym
			heap.Push(h, dcSlot{pos: nxt, sym: slot.sym})
		}
	}

	return out, nil
}
