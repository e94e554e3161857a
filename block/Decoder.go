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

package block

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kvark/dark"
	"github.com/kvark/dark/entropy"
	"github.com/kvark/dark/hash"
	"github.com/kvark/dark/model"
	"github.com/kvark/dark/transform"
)

// Decoder is the mirror image of Encoder: it reads one self-delimiting
// block and reconstructs the original input.
type Decoder struct {
	capacity  int
	modelName string
	distModel dark.DistanceModel
	byteModel dark.ByteModel
	bwt       *transform.BWT
	checksum  bool
	listeners []dark.Listener
}

// NewDecoder creates a Decoder accepting blocks of up to capacity bytes,
// using the named model. checksum must match the value the corresponding
// Encoder was created with. Returns dark.ErrInvalidInput if name is not
// registered.
func NewDecoder(capacity int, name string, checksum bool, listeners ...dark.Listener) (*Decoder, error) {
	this := &Decoder{
		capacity:  capacity,
		modelName: name,
		bwt:       transform.NewBWT(),
		checksum:  checksum,
		listeners: listeners,
	}

	if dm, err := model.NewDistanceModel(name); err == nil {
		this.distModel = dm
		return this, nil
	}

	bm, err := model.NewByteModel(name)

	if err != nil {
		return nil, err
	}

	this.byteModel = bm
	return this, nil
}

// Decode reads one block from r and writes the reconstructed input to w.
func (this *Decoder) Decode(r io.Reader, w io.Writer) error {
	var hdr [headerBytes]byte

	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return err
	}

	n := int(binary.LittleEndian.Uint32(hdr[:4]))

	if n > this.capacity {
		return fmt.Errorf("%w: block of %d bytes exceeds capacity %d", dark.ErrInvalidInput, n, this.capacity)
	}

	dark.Notify(this.listeners, dark.NewEvent(dark.EvtBlockStart, int64(n), ""))

	if n > 0 {
		distinct := int(hdr[4]) + 1

		if distinct < 256 {
			dark.Notify(this.listeners, dark.NewEvent(dark.EvtSparseAlphabet, int64(distinct), ""))
		}
	}

	var wantSum uint64
	haveSum := false

	if this.checksum {
		var sum [checksumBytes]byte

		if _, err := io.ReadFull(r, sum[:]); err != nil {
			return err
		}

		wantSum = binary.LittleEndian.Uint64(sum[:])
		haveSum = true
	}

	if n == 0 {
		var tail [rcTailBytes]byte

		if _, err := io.ReadFull(r, tail[:]); err != nil {
			return err
		}

		dark.Notify(this.listeners, dark.NewEvent(dark.EvtBlockEnd, 0, ""))
		return nil
	}

	rc, err := entropy.NewRangeDecoder(r)

	if err != nil {
		return err
	}

	var bwtOut []byte
	var origin uint32

	if this.distModel != nil {
		bwtOut, origin, err = this.decodeDC(n, rc)
	} else {
		bwtOut, origin, err = this.decodeRaw(n, rc)
	}

	if err != nil {
		return err
	}

	dark.Notify(this.listeners, dark.NewEvent(dark.EvtDCDone, int64(n), ""))

	if int(origin) >= n {
		return fmt.Errorf("%w: origin %d out of range for block of %d bytes", dark.ErrInvalidInput, origin, n)
	}

	output := make([]byte, n)

	if err := this.bwt.Inverse(bwtOut, output, origin); err != nil {
		return err
	}

	dark.Notify(this.listeners, dark.NewEvent(dark.EvtBWTDone, int64(origin), ""))

	if haveSum {
		h, _ := hash.NewXXHash64(0)

		if h.Hash(output) != wantSum {
			return fmt.Errorf("%w: checksum mismatch", dark.ErrCorruption)
		}
	}

	if _, err := w.Write(output); err != nil {
		return err
	}

	dark.Notify(this.listeners, dark.NewEvent(dark.EvtBlockEnd, int64(n), ""))
	return nil
}

// decodeDC mirrors Encoder.encodeDC: it reads the init table, then the DC
// stream via transform.DCDecode, then origin. Grounded on
// original_source/src/block/dc.rs's Decoder::decode.
func (this *Decoder) decodeDC(n int, rc *entropy.RangeDecoder) ([]byte, uint32, error) {
	this.distModel.Reset()

	var init [256]uint32

	for i := range init {
		init[i] = uint32(n)
	}

	curActive := true
	i := 0

	for i < 0x100 {
		add := 1

		if i == 0 && curActive {
			add = 0
		}

		numVal, err := this.distModel.Decode(ctxZero, rc)

		if err != nil {
			return nil, 0, err
		}

		num := int(numVal) + add

		if curActive {
			for k := 0; k < num; k++ {
				sym := i + k
				ctx := dark.DistanceContext{Symbol: byte(sym), LastRank: 0, DistanceLimit: uint32(n)}
				d, err := this.distModel.Decode(ctx, rc)

				if err != nil {
					return nil, 0, err
				}

				init[sym] = d
			}

			curActive = false
		} else {
			curActive = true
		}

		i += num
	}

	bwtOut, err := transform.DCDecode(init, n, func(ctx dark.DistanceContext) (uint32, error) {
		return this.distModel.Decode(ctx, rc)
	})

	if err != nil {
		return nil, 0, err
	}

	origin, err := this.distModel.Decode(ctxZero, rc)

	if err != nil {
		return nil, 0, err
	}

	return bwtOut, origin, nil
}

// decodeRaw mirrors Encoder.encodeRaw: four origin bytes then n bytes of
// BWT output, all through this.byteModel. Grounded on
// original_source/src/block/raw.rs's Decoder::decode.
func (this *Decoder) decodeRaw(n int, rc *entropy.RangeDecoder) ([]byte, uint32, error) {
	this.byteModel.Reset()

	var originBytes [4]byte

	for i := range originBytes {
		b, err := this.byteModel.Decode(rc)

		if err != nil {
			return nil, 0, err
		}

		originBytes[i] = b
	}

	origin := uint32(originBytes[0])<<24 | uint32(originBytes[1])<<16 | uint32(originBytes[2])<<8 | uint32(originBytes[3])

	bwtOut := make([]byte, n)

	for i := range bwtOut {
		b, err := this.byteModel.Decode(rc)

		if err != nil {
			return nil, 0, err
		}

		bwtOut[i] = b
	}

	return bwtOut, origin, nil
}
