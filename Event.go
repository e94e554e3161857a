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

package dark

import (
	"fmt"
	"time"
)

const (
	EvtBlockStart     = 0 // A block encode/decode starts
	EvtSACDone        = 1 // Suffix array construction ends
	EvtBWTDone        = 2 // BWT forward/inverse ends
	EvtDCDone         = 3 // Distance coding ends
	EvtSparseAlphabet = 4 // The block uses fewer than 256 distinct bytes (E < 0xFF)
	EvtBlockEnd       = 5 // A block encode/decode ends
	EvtDataType       = 6 // The encoder's coarse guess at the block's data type
)

// Event is a diagnostic message about one stage of a block's processing.
// Generalized from kanzi's Event/Listener pair to this pipeline's stages.
type Event struct {
	eventType int
	size      int64
	eventTime time.Time
	msg       string
}

// NewEvent creates a new Event instance.
func NewEvent(evtType int, size int64, msg string) *Event {
	return &Event{eventType: evtType, size: size, eventTime: time.Now(), msg: msg}
}

// Type returns the event type.
func (this *Event) Type() int {
	return this.eventType
}

// Size returns the size info attached to this event (block size, bytes
// written, etc, depending on Type).
func (this *Event) Size() int64 {
	return this.size
}

// Time returns the event timestamp.
func (this *Event) Time() time.Time {
	return this.eventTime
}

// String returns a human-readable representation of this event.
func (this *Event) String() string {
	if len(this.msg) > 0 {
		return this.msg
	}

	t := ""

	switch this.eventType {
	case EvtBlockStart:
		t = "BLOCK_START"
	case EvtSACDone:
		t = "SAC_DONE"
	case EvtBWTDone:
		t = "BWT_DONE"
	case EvtDCDone:
		t = "DC_DONE"
	case EvtSparseAlphabet:
		t = "SPARSE_ALPHABET"
	case EvtBlockEnd:
		t = "BLOCK_END"
	case EvtDataType:
		t = "DATA_TYPE"
	}

	return fmt.Sprintf("{ \"type\":\"%s\", \"size\":%d, \"time\":%d }", t, this.size,
		this.eventTime.UnixNano()/1000000)
}

// Listener is implemented by event processors (e.g. a CLI's verbose logger).
type Listener interface {
	ProcessEvent(evt *Event)
}

// Notify dispatches evt to every listener, matching kanzi's BlockCompressor
// notification pattern.
func Notify(listeners []Listener, evt *Event) {
	for _, l := range listeners {
		if l != nil {
			l.ProcessEvent(evt)
		}
	}
}
