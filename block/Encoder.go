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

// Package block orchestrates one block's encode/decode pipeline: suffix
// array construction, BWT, distance coding (or raw byte coding), and
// range coding, behind a pluggable model chosen by name.
package block

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kvark/dark"
	"github.com/kvark/dark/entropy"
	"github.com/kvark/dark/hash"
	"github.com/kvark/dark/internal"
	"github.com/kvark/dark/model"
	"github.com/kvark/dark/transform"
)

// ctxZero is the fixed zero-context models see when coding the init-table
// run lengths and the block's origin; distance_limit 0x101 mirrors
// original_source's CTX_0 constant.
var ctxZero = dark.DistanceContext{Symbol: 0, LastRank: 0, DistanceLimit: 0x101}

// headerBytes is the length, in bytes, of the fixed N/E header.
const headerBytes = 5

// checksumBytes is the length of the optional XXHash64 field written
// between the header and the payload when checksumming is enabled.
const checksumBytes = 8

// rcTailBytes is the width of entropy.RangeEncoder.Finish's flush tail:
// an empty block has no payload bits but still ends in this fixed tail,
// matching every non-empty block's self-delimiting shape.
const rcTailBytes = 4

// Encoder drives one block's encode pipeline. It is not safe for use by
// more than one goroutine at a time; a caller wanting parallelism runs
// one Encoder per block.
type Encoder struct {
	capacity  int
	modelName string
	distModel dark.DistanceModel
	byteModel dark.ByteModel
	bwt       *transform.BWT
	checksum  bool
	listeners []dark.Listener
}

// NewEncoder creates an Encoder for blocks of up to capacity bytes, using
// the named model. checksum, when true, prefixes the payload with an
// XXHash64 of the input block. Returns dark.ErrInvalidInput if name is
// not registered as either a DistanceModel or a ByteModel.
func NewEncoder(capacity int, name string, checksum bool, listeners ...dark.Listener) (*Encoder, error) {
	this := &Encoder{
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

// alphabetStats computes the order-0 histogram of data (via
// internal.ComputeHistogram, the teacher's own order-0/order-1 histogram
// routine) and derives the distinct byte count and a coarse data-type
// guess (internal.DetectSimpleType) from it, so the orchestrator's E
// marker and diagnostic events are driven by the same histogram rather
// than a second hand-rolled scan.
func alphabetStats(data []byte) (distinct int, dt internal.DataType) {
	var freqs [257]int
	internal.ComputeHistogram(data, freqs[:], true, true)

	for _, f := range freqs[:256] {
		if f != 0 {
			distinct++
		}
	}

	return distinct, internal.DetectSimpleType(len(data), freqs[:])
}

// Encode writes one self-delimiting block for input to w: a 4-byte
// little-endian N, a 1-byte alphabet marker E (the input's distinct byte
// count minus one, a diagnostic value the decoder does not need for
// correctness), an optional 8-byte XXHash64 checksum, then the
// arithmetic-coded payload.
func (this *Encoder) Encode(input []byte, w io.Writer) error {
	n := len(input)

	if n > this.capacity {
		return fmt.Errorf("%w: block of %d bytes exceeds capacity %d", dark.ErrInvalidInput, n, this.capacity)
	}

	dark.Notify(this.listeners, dark.NewEvent(dark.EvtBlockStart, int64(n), ""))

	var hdr [headerBytes]byte
	binary.LittleEndian.PutUint32(hdr[:4], uint32(n))

	if n > 0 {
		distinct, dt := alphabetStats(input)
		hdr[4] = byte(distinct - 1)

		if distinct < 256 {
			dark.Notify(this.listeners, dark.NewEvent(dark.EvtSparseAlphabet, int64(distinct), ""))
		}

		dark.Notify(this.listeners, dark.NewEvent(dark.EvtDataType, int64(dt), ""))
	}

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}

	if this.checksum {
		h, _ := hash.NewXXHash64(0)
		var sum [checksumBytes]byte
		binary.LittleEndian.PutUint64(sum[:], h.Hash(input))

		if _, err := w.Write(sum[:]); err != nil {
			return err
		}
	}

	if n == 0 {
		rc, err := entropy.NewRangeEncoder(w)

		if err != nil {
			return err
		}

		if err := rc.Finish(); err != nil {
			return err
		}

		dark.Notify(this.listeners, dark.NewEvent(dark.EvtBlockEnd, 0, ""))
		return nil
	}

	bwtOut := make([]byte, n)
	origin, err := this.bwt.Forward(input, bwtOut)

	if err != nil {
		return err
	}

	dark.Notify(this.listeners, dark.NewEvent(dark.EvtSACDone, int64(n), ""))
	dark.Notify(this.listeners, dark.NewEvent(dark.EvtBWTDone, int64(origin), ""))

	rc, err := entropy.NewRangeEncoder(w)

	if err != nil {
		return err
	}

	if this.distModel != nil {
		err = this.encodeDC(bwtOut, origin, rc)
	} else {
		err = this.encodeRaw(bwtOut, origin, rc)
	}

	if err != nil {
		return err
	}

	dark.Notify(this.listeners, dark.NewEvent(dark.EvtBlockEnd, int64(n), ""))
	return nil
}

// encodeDC codes bwtOut through the DC front-end and this.distModel: the
// init table under a pair-alternation run-length scheme, then the
// (distance, context) stream, then origin, all under ctxZero for the run
// lengths and origin. Grounded on original_source/src/block/dc.rs's
// Encoder::encode.
func (this *Encoder) encodeDC(bwtOut []byte, origin uint32, rc *entropy.RangeEncoder) error {
	this.distModel.Reset()
	n := len(bwtOut)
	init, events := transform.DCEncode(bwtOut)
	dark.Notify(this.listeners, dark.NewEvent(dark.EvtDCDone, int64(len(events)), ""))

	curActive := true
	i := 0

	for i < 0x100 {
		base := i

		if curActive {
			for i < 0x100 && init[i] < uint32(n) {
				i++
			}

			num := i

			if base != 0 {
				num = i - base - 1
			}

			if err := this.distModel.Encode(uint32(num), ctxZero, rc); err != nil {
				return err
			}

			for sym := base; sym < i; sym++ {
				ctx := dark.DistanceContext{Symbol: byte(sym), LastRank: 0, DistanceLimit: uint32(n)}

				if err := this.distModel.Encode(init[sym], ctx, rc); err != nil {
					return err
				}
			}

			curActive = false
		} else {
			i++

			for i < 0x100 && init[i] == uint32(n) {
				i++
			}

			num := i - base - 1

			if err := this.distModel.Encode(uint32(num), ctxZero, rc); err != nil {
				return err
			}

			curActive = true
		}
	}

	for _, ev := range events {
		if err := this.distModel.Encode(ev.Dist, ev.Ctx, rc); err != nil {
			return err
		}
	}

	if err := this.distModel.Encode(origin, ctxZero, rc); err != nil {
		return err
	}

	return rc.Finish()
}

// encodeRaw codes origin as four bytes then every byte of bwtOut through
// this.byteModel, with no DC front-end. Grounded on
// original_source/src/block/raw.rs's Encoder::encode.
func (this *Encoder) encodeRaw(bwtOut []byte, origin uint32, rc *entropy.RangeEncoder) error {
	this.byteModel.Reset()

	originBytes := [4]byte{byte(origin >> 24), byte(origin >> 16), byte(origin >> 8), byte(origin)}

	for _, b := range originBytes {
		if err := this.byteModel.Encode(b, rc); err != nil {
			return err
		}
	}

	for _, sym := range bwtOut {
		if err := this.byteModel.Encode(sym, rc); err != nil {
			return err
		}
	}

	return rc.Finish()
}
