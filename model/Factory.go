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
	"fmt"

	"github.com/kvark/dark"
)

// Names of the registered distance models, in the order the CLI lists them.
const (
	NameSimple = "simple"
	NameExp    = "exp"
	NameDark   = "dark"
	NameYBS    = "ybs"
	NameRawDC  = "rawdc"
)

// NameBBB names the registered bit-history byte model; NameRaw names the
// flat context-free byte model.
const (
	NameBBB = "bbb"
	NameRaw = "raw"
)

// NewDistanceModel builds the named DistanceModel, or returns
// dark.ErrInvalidInput if name is not registered.
func NewDistanceModel(name string) (dark.DistanceModel, error) {
	switch name {
	case NameSimple:
		return NewSimple(), nil
	case NameExp:
		return NewExp(), nil
	case NameDark:
		return NewDark(), nil
	case NameYBS:
		return NewYBS(), nil
	case NameRawDC:
		return NewRawDC(), nil
	default:
		return nil, fmt.Errorf("%w: unknown distance model %q", dark.ErrInvalidInput, name)
	}
}

// NewByteModel builds the named ByteModel, or returns dark.ErrInvalidInput
// if name is not registered.
func NewByteModel(name string) (dark.ByteModel, error) {
	switch name {
	case NameBBB:
		return NewBBB(), nil
	case NameRaw:
		return NewRaw(), nil
	default:
		return nil, fmt.Errorf("%w: unknown byte model %q", dark.ErrInvalidInput, name)
	}
}

// DistanceModelNames lists every registered distance model name, in
// registration order.
func DistanceModelNames() []string {
	return []string{NameSimple, NameExp, NameDark, NameYBS, NameRawDC}
}

// ByteModelNames lists every registered byte model name.
func ByteModelNames() []string {
	return []string{NameBBB, NameRaw}
}
