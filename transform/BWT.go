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

import "errors"

// BWT computes the Burrows-Wheeler Transform of a block and its inverse,
// backed by the induced-sorting suffix array constructor in this package.
type BWT struct {
	buf []int
}

// NewBWT creates a BWT transform instance. The same instance may be
// reused across blocks; its scratch buffer grows to fit the largest
// block seen.
func NewBWT() *BWT {
	return &BWT{}
}

func (this *BWT) ints(src []byte) []int {
	if cap(this.buf) < len(src) {
		this.buf = make([]int, len(src))
	}

	buf := this.buf[:len(src)]

	for i, b := range src {
		buf[i] = int(b)
	}

	return buf
}

// Forward writes the BWT last column of src into dst (same length) and
// returns the origin row: the index i such that sa[i] == 0, i.e. the row
// of the sorted rotation matrix equal to src itself.
func (this *BWT) Forward(src, dst []byte) (uint32, error) {
	n := len(src)

	if n == 0 {
		return 0, nil
	}

	if len(dst) < n {
		return 0, errors.New("transform: destination buffer too small")
	}

	data := this.ints(src)
	fs := scratchExtra(n, 256)
	sa := make([]int, n+fs)
	pidx := ComputeSuffixArray(data, sa, fs, n, 256, true)

	for i := 0; i < n; i++ {
		dst[i] = byte(sa[i])
	}

	dst[pidx] = src[n-1]

	return uint32(pidx), nil
}

// Inverse reconstructs the original block from its BWT last column src
// and origin row, writing it to dst (same length).
//
// Radix-counts symbols to get each row's rank in the sorted first column,
// then walks the resulting permutation starting at origin, one row per
// output byte. Forward sorts suffixes with an implicit end sentinel that
// sorts before every byte, so the walk runs over n+1 rows with the
// sentinel row first.
func (this *BWT) Inverse(src, dst []byte, origin uint32) error {
	n := len(src)

	if n == 0 {
		return nil
	}

	if int(origin) >= n {
		return errors.New("transform: origin out of range")
	}

	if len(dst) < n {
		return errors.New("transform: destination buffer too small")
	}

	var c [256]int

	for _, b := range src {
		c[b]++
	}

	sum := 1

	for i, v := range c {
		sum += v
		c[i] = sum - v
	}

	tt := make([]int, n+1)
	tt[c[src[origin]]] = 0
	c[src[origin]]++

	for i := 0; i < n; i++ {
		if i == int(origin) {
			tt[0] = i + 1
			continue
		}

		b := src[i]
		tt[c[b]] = i + 1
		c[b]++
	}

	pos := tt[origin+1]

	for i := 0; i < n; i++ {
		if pos == 0 {
			dst[i] = src[origin]
		} else {
			dst[i] = src[pos-1]
		}

		pos = tt[pos]
	}

	return nil
}
