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

// Package dark defines the top level interfaces and error taxonomy shared
// by the block orchestrator and its collaborators (transform, model,
// entropy).
package dark

import (
	"errors"

	"github.com/kvark/dark/entropy"
)

// Sentinel errors making up the taxonomy: IoError propagates from the
// underlying reader/writer or the range coder, InvalidInput flags bad
// arguments or out-of-bounds decoded values, and Corruption flags a
// decode-time state that cannot correspond to any valid encode.
var (
	// ErrInvalidInput is returned when a block exceeds constructor capacity,
	// a model name is not recognized by the registry, or a decoded value is
	// out of its declared bounds (e.g. origin >= N).
	ErrInvalidInput = errors.New("dark: invalid input")

	// ErrCorruption is returned when a decoded block does not match its
	// stored checksum. The range decoder zero-fills past the end of its
	// input, so a truncated payload is not reported by itself.
	ErrCorruption = errors.New("dark: corrupted stream")
)

// Suffix is an index into a block, as produced by the suffix array
// constructor.
type Suffix = int32

// ByteTransform transforms a source byte slice into a destination byte
// slice; the result may have a different size. Implementations must be
// stateless across Forward/Inverse calls other than scratch they own.
type ByteTransform interface {
	// Forward applies the transform to src and writes the result to dst.
	// Returns bytes read, bytes written, and an error.
	Forward(src, dst []byte) (uint, uint, error)

	// Inverse applies the reverse transform to src and writes the result
	// to dst. Returns bytes read, bytes written, and an error.
	Inverse(src, dst []byte) (uint, uint, error)
}

// Predictor predicts the probability of the next bit being 1.
type Predictor interface {
	// Update updates the internal probability model based on the observed bit.
	Update(bit byte)

	// Get returns the probability of the next bit being 1 in [0, FlatMax].
	Get() int
}

// DistanceModel is the narrow capability set a pluggable entropy model
// exposes to the block orchestrator for coding DC (distance, context)
// pairs. encode/decode return an error instead of panicking so that a
// range-coder write/read failure or corrupted stream surfaces cleanly.
type DistanceModel interface {
	// Reset returns the model to its neutral/flat prior.
	Reset()

	// Encode codes dist under ctx through rc.
	Encode(dist uint32, ctx DistanceContext, rc *entropy.RangeEncoder) error

	// Decode decodes a distance under ctx through rc.
	Decode(ctx DistanceContext, rc *entropy.RangeDecoder) (uint32, error)
}

// ByteModel is the narrow capability set for models that code raw bytes
// (the "raw"/"bbb" path) rather than DC distances.
type ByteModel interface {
	Reset()
	Encode(sym byte, rc *entropy.RangeEncoder) error
	Decode(rc *entropy.RangeDecoder) (byte, error)
}

// DistanceContext accompanies every distance coded by a DistanceModel.
// DistanceLimit is the number of remaining bytes plus one, bounding the
// coder's state; LastRank is the move-to-front rank from the previous
// step.
type DistanceContext struct {
	Symbol        byte
	LastRank      byte
	DistanceLimit uint32
}
