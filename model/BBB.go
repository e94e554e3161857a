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

// stateTable is the bit-history state machine from Matt Mahoney's bbb:
// stateTable[s][0]/[1] is the next state after observing bit 0/1 in
// state s; [2]/[3] are the (n0,n1) bit-history counts the state
// represents. States 253-255 are unused padding.
var stateTable = [256][4]byte{
	{1, 2, 0, 0}, {3, 5, 1, 0}, {4, 6, 0, 1}, {7, 10, 2, 0},
	{8, 12, 1, 1}, {9, 13, 1, 1}, {11, 14, 0, 2}, {15, 19, 3, 0},
	{16, 23, 2, 1}, {17, 24, 2, 1}, {18, 25, 2, 1}, {20, 27, 1, 2},
	{21, 28, 1, 2}, {22, 29, 1, 2}, {26, 30, 0, 3}, {31, 33, 4, 0},
	{32, 35, 3, 1}, {32, 35, 3, 1}, {32, 35, 3, 1}, {32, 35, 3, 1},
	{34, 37, 2, 2}, {34, 37, 2, 2}, {34, 37, 2, 2}, {34, 37, 2, 2},
	{34, 37, 2, 2}, {34, 37, 2, 2}, {36, 39, 1, 3}, {36, 39, 1, 3},
	{36, 39, 1, 3}, {36, 39, 1, 3}, {38, 40, 0, 4}, {41, 43, 5, 0},
	{42, 45, 4, 1}, {42, 45, 4, 1}, {44, 47, 3, 2}, {44, 47, 3, 2},
	{46, 49, 2, 3}, {46, 49, 2, 3}, {48, 51, 1, 4}, {48, 51, 1, 4},
	{50, 52, 0, 5}, {53, 43, 6, 0}, {54, 57, 5, 1}, {54, 57, 5, 1},
	{56, 59, 4, 2}, {56, 59, 4, 2}, {58, 61, 3, 3}, {58, 61, 3, 3},
	{60, 63, 2, 4}, {60, 63, 2, 4}, {62, 65, 1, 5}, {62, 65, 1, 5},
	{50, 66, 0, 6}, {67, 55, 7, 0}, {68, 57, 6, 1}, {68, 57, 6, 1},
	{70, 73, 5, 2}, {70, 73, 5, 2}, {72, 75, 4, 3}, {72, 75, 4, 3},
	{74, 77, 3, 4}, {74, 77, 3, 4}, {76, 79, 2, 5}, {76, 79, 2, 5},
	{62, 81, 1, 6}, {62, 81, 1, 6}, {64, 82, 0, 7}, {83, 69, 8, 0},
	{84, 71, 7, 1}, {84, 71, 7, 1}, {86, 73, 6, 2}, {86, 73, 6, 2},
	{44, 59, 5, 3}, {44, 59, 5, 3}, {58, 61, 4, 4}, {58, 61, 4, 4},
	{60, 49, 3, 5}, {60, 49, 3, 5}, {76, 89, 2, 6}, {76, 89, 2, 6},
	{78, 91, 1, 7}, {78, 91, 1, 7}, {80, 92, 0, 8}, {93, 69, 9, 0},
	{94, 87, 8, 1}, {94, 87, 8, 1}, {96, 45, 7, 2}, {96, 45, 7, 2},
	{48, 99, 2, 7}, {48, 99, 2, 7}, {88, 101, 1, 8}, {88, 101, 1, 8},
	{80, 102, 0, 9}, {103, 69, 10, 0}, {104, 87, 9, 1}, {104, 87, 9, 1},
	{106, 57, 8, 2}, {106, 57, 8, 2}, {62, 109, 2, 8}, {62, 109, 2, 8},
	{88, 111, 1, 9}, {88, 111, 1, 9}, {80, 112, 0, 10}, {113, 85, 11, 0},
	{114, 87, 10, 1}, {114, 87, 10, 1}, {116, 57, 9, 2}, {116, 57, 9, 2},
	{62, 119, 2, 9}, {62, 119, 2, 9}, {88, 121, 1, 10}, {88, 121, 1, 10},
	{90, 122, 0, 11}, {123, 85, 12, 0}, {124, 97, 11, 1}, {124, 97, 11, 1},
	{126, 57, 10, 2}, {126, 57, 10, 2}, {62, 129, 2, 10}, {62, 129, 2, 10},
	{98, 131, 1, 11}, {98, 131, 1, 11}, {90, 132, 0, 12}, {133, 85, 13, 0},
	{134, 97, 12, 1}, {134, 97, 12, 1}, {136, 57, 11, 2}, {136, 57, 11, 2},
	{62, 139, 2, 11}, {62, 139, 2, 11}, {98, 141, 1, 12}, {98, 141, 1, 12},
	{90, 142, 0, 13}, {143, 95, 14, 0}, {144, 97, 13, 1}, {144, 97, 13, 1},
	{68, 57, 12, 2}, {68, 57, 12, 2}, {62, 81, 2, 12}, {62, 81, 2, 12},
	{98, 147, 1, 13}, {98, 147, 1, 13}, {100, 148, 0, 14}, {149, 95, 15, 0},
	{150, 107, 14, 1}, {150, 107, 14, 1}, {108, 151, 1, 14}, {108, 151, 1, 14},
	{100, 152, 0, 15}, {153, 95, 16, 0}, {154, 107, 15, 1}, {108, 155, 1, 15},
	{100, 156, 0, 16}, {157, 95, 17, 0}, {158, 107, 16, 1}, {108, 159, 1, 16},
	{100, 160, 0, 17}, {161, 105, 18, 0}, {162, 107, 17, 1}, {108, 163, 1, 17},
	{110, 164, 0, 18}, {165, 105, 19, 0}, {166, 117, 18, 1}, {118, 167, 1, 18},
	{110, 168, 0, 19}, {169, 105, 20, 0}, {170, 117, 19, 1}, {118, 171, 1, 19},
	{110, 172, 0, 20}, {173, 105, 21, 0}, {174, 117, 20, 1}, {118, 175, 1, 20},
	{110, 176, 0, 21}, {177, 105, 22, 0}, {178, 117, 21, 1}, {118, 179, 1, 21},
	{110, 180, 0, 22}, {181, 115, 23, 0}, {182, 117, 22, 1}, {118, 183, 1, 22},
	{120, 184, 0, 23}, {185, 115, 24, 0}, {186, 127, 23, 1}, {128, 187, 1, 23},
	{120, 188, 0, 24}, {189, 115, 25, 0}, {190, 127, 24, 1}, {128, 191, 1, 24},
	{120, 192, 0, 25}, {193, 115, 26, 0}, {194, 127, 25, 1}, {128, 195, 1, 25},
	{120, 196, 0, 26}, {197, 115, 27, 0}, {198, 127, 26, 1}, {128, 199, 1, 26},
	{120, 200, 0, 27}, {201, 115, 28, 0}, {202, 127, 27, 1}, {128, 203, 1, 27},
	{120, 204, 0, 28}, {205, 115, 29, 0}, {206, 127, 28, 1}, {128, 207, 1, 28},
	{120, 208, 0, 29}, {209, 125, 30, 0}, {210, 127, 29, 1}, {128, 211, 1, 29},
	{130, 212, 0, 30}, {213, 125, 31, 0}, {214, 137, 30, 1}, {138, 215, 1, 30},
	{130, 216, 0, 31}, {217, 125, 32, 0}, {218, 137, 31, 1}, {138, 219, 1, 31},
	{130, 220, 0, 32}, {221, 125, 33, 0}, {222, 137, 32, 1}, {138, 223, 1, 32},
	{130, 224, 0, 33}, {225, 125, 34, 0}, {226, 137, 33, 1}, {138, 227, 1, 33},
	{130, 228, 0, 34}, {229, 125, 35, 0}, {230, 137, 34, 1}, {138, 231, 1, 34},
	{130, 232, 0, 35}, {233, 125, 36, 0}, {234, 137, 35, 1}, {138, 235, 1, 35},
	{130, 236, 0, 36}, {237, 125, 37, 0}, {238, 137, 36, 1}, {138, 239, 1, 36},
	{130, 240, 0, 37}, {241, 125, 38, 0}, {242, 137, 37, 1}, {138, 243, 1, 37},
	{130, 244, 0, 38}, {245, 135, 39, 0}, {246, 137, 38, 1}, {138, 247, 1, 38},
	{140, 248, 0, 39}, {249, 135, 40, 0}, {250, 69, 39, 1}, {80, 251, 1, 39},
	{140, 252, 0, 40}, {249, 135, 41, 0}, {250, 69, 40, 1}, {80, 251, 1, 40},
	{140, 252, 0, 41}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0},
}

// stateMap maps a bit-history state to a flat probability, adjusting the
// previous slot toward the observed bit each time it trains.
type stateMap struct {
	context byte
	table   [256]entropy.Bit
}

func newStateMap() *stateMap {
	this := &stateMap{}

	for i := 0; i < 256; i++ {
		n0 := int(stateTable[i][2])
		n1 := int(stateTable[i][3])

		if n0 == 0 {
			n1 <<= 3
		}

		if n1 == 0 {
			n0 <<= 3
		}

		pr := ((n1 + 1) << entropy.FlatBits) / (n0 + n1 + 2)
		this.table[i] = entropy.BitFromFlat(pr)
	}

	return this
}

func (this *stateMap) update(bit byte, cx byte) {
	top := int(bit) << entropy.FlatBits
	old := this.table[this.context].ToFlat()
	pr := (0xF*old + top + 0x8) >> 4
	this.table[this.context] = entropy.BitFromFlat(pr)
	this.context = cx
}

func (this *stateMap) predict() entropy.Bit {
	return this.table[this.context]
}

// bbbCookie carries the gate coordinates predict() computed, so update()
// can adjust exactly the cells that were read.
type bbbCookie struct {
	b11, b12, b2, b3, b4, b5       entropy.BinCoords
	c1, c2, c3, c4, c5             int
}

// BBB predicts each byte bit by bit using a PAQ-style bit-history state
// machine gated through five context mixers: the raw state prediction,
// then successive gates keyed by the current bit context, the last whole
// byte, a run-length bucket, the last 5 bits of context history, and a
// hashed wide context over the last 3 bytes.
type BBB struct {
	ctx2state  [256]byte
	ctxID      byte
	stateMap   *stateMap
	bitContext byte
	lastBytes  uint32
	runCount   uint16
	runContext uint32
	gate1      [256][2]entropy.Gate
	gate2      [0x10000]entropy.Gate
	gate3      [0x400]entropy.Gate
	gate4      [0x2000]entropy.Gate
	gate5      [0x4000]entropy.Gate
}

// NewBBB creates a BBB model with a neutral prior.
func NewBBB() *BBB {
	this := &BBB{}
	this.Reset()
	return this
}

// Reset returns every table and register to its neutral state.
func (this *BBB) Reset() {
	for i := range this.ctx2state {
		this.ctx2state[i] = 0
	}

	this.ctxID = 0
	this.stateMap = newStateMap()
	this.bitContext = 1
	this.lastBytes = 0
	this.runCount = 0
	this.runContext = 0

	for i := range this.gate1 {
		this.gate1[i][0] = entropy.NewGate()
		this.gate1[i][1] = entropy.NewGate()
	}

	for i := range this.gate2 {
		this.gate2[i] = entropy.NewGate()
	}

	for i := range this.gate3 {
		this.gate3[i] = entropy.NewGate()
	}

	for i := range this.gate4 {
		this.gate4[i] = entropy.NewGate()
	}

	for i := range this.gate5 {
		this.gate5[i] = entropy.NewGate()
	}
}

func (this *BBB) predict() (entropy.Bit, bbbCookie) {
	p0 := this.stateMap.predict()
	bitContext := uint32(this.bitContext)
	lastBytes := this.lastBytes

	c1 := int(bitContext)
	p11, b11 := this.gate1[c1][0].Pass(&p0)
	p12, b12 := this.gate1[c1][1].Pass(&p0)
	p1 := entropy.BitFromFlat((p11.ToFlat() + p12.ToFlat() + 1) >> 1)

	c2 := int(bitContext | ((lastBytes & 0xFF) << 8))
	p2, b2 := this.gate2[c2].Pass(&p1)

	c3 := int((lastBytes & 0xFF) | this.runContext)
	p3, b3 := this.gate3[c3].Pass(&p2)

	c4 := int(bitContext | ((lastBytes & 0x1F) << 8))
	p4x, b4 := this.gate4[c4].Pass(&p3)
	p4y := (p4x.ToFlat()*3 + p3.ToFlat() + 2) >> 2
	p4 := entropy.BitFromFlat(p4y)

	c5y := bitContext ^ (lastBytes & 0xFFFFFF)
	c5 := int((c5y * 123456791) >> 18)

	if c5 >= len(this.gate5) {
		c5 %= len(this.gate5)
	}

	p5x, b5 := this.gate5[c5].Pass(&p4)
	p5y := (p5x.ToFlat() + p4.ToFlat() + 1) >> 1
	pr := entropy.BitFromFlat(p5y)

	cookie := bbbCookie{b11: b11, b12: b12, b2: b2, b3: b3, b4: b4, b5: b5,
		c1: c1, c2: c2, c3: c3, c4: c4, c5: c5}

	if !pr.Predict() {
		pr = entropy.BitFromFlat(pr.ToFlat() + 1)
	}

	return pr, cookie
}

func (this *BBB) update(bit byte, reset bool, cookie bbbCookie) {
	stateOld := this.ctx2state[this.ctxID]
	this.ctx2state[this.ctxID] = stateTable[stateOld][bit]

	this.bitContext = ((this.bitContext & 0x7F) << 1) + bit

	if reset {
		this.lastBytes = (this.lastBytes << 8) | uint32(this.bitContext)
		this.bitContext = 1

		if (this.lastBytes>>8)&0xFF == this.lastBytes&0xFF {
			if this.runCount < 0xFFFF {
				this.runCount++
			}

			switch this.runCount {
			case 1, 2, 4:
				this.runContext += 0x100
			}
		} else {
			this.runCount = 0
			this.runContext = 0
		}
	}

	this.ctxID = this.bitContext
	this.stateMap.update(bit, this.ctx2state[this.ctxID])

	this.gate1[cookie.c1][0].Update(bit != 0, cookie.b11, 1, 0)
	this.gate1[cookie.c1][1].Update(bit != 0, cookie.b12, 5, 0)
	this.gate2[cookie.c2].Update(bit != 0, cookie.b2, 3, 0)
	this.gate3[cookie.c3].Update(bit != 0, cookie.b3, 4, 0)
	this.gate4[cookie.c4].Update(bit != 0, cookie.b4, 3, 0)
	this.gate5[cookie.c5].Update(bit != 0, cookie.b5, 3, 0)
}

// Encode codes sym bit by bit, MSB first, through rc.
func (this *BBB) Encode(sym byte, rc *entropy.RangeEncoder) error {
	for i := 7; i >= 0; i-- {
		bit := (sym >> uint(i)) & 1
		prob, cookie := this.predict()

		if err := rc.EncodeBit(bit, prob); err != nil {
			return err
		}

		this.update(bit, i == 0, cookie)
	}

	return nil
}

// Decode decodes one byte, MSB first, from rc.
func (this *BBB) Decode(rc *entropy.RangeDecoder) (byte, error) {
	var sym byte

	for i := 7; i >= 0; i-- {
		prob, cookie := this.predict()
		bit, err := rc.DecodeBit(prob)

		if err != nil {
			return 0, err
		}

		sym |= bit << uint(i)
		this.update(bit, i == 0, cookie)
	}

	return sym, nil
}
