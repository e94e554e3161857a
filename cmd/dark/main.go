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

// Command dark is a thin driver over the block/model/transform packages:
// it takes one input file and either encodes it to a sibling ".dark" file
// or, if the input already carries that extension, decodes it back to a
// sibling ".orig" file.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kvark/dark"
	"github.com/kvark/dark/block"
	"github.com/kvark/dark/internal"
	"github.com/kvark/dark/model"
)

const extension = ".dark"

// maxBlockCapacity bounds the block size the CLI will accept from a
// header before allocating buffers for it.
const maxBlockCapacity = 1<<31 - 1

var verbose = false

// printer turns block events into one-line progress output, generalized
// from kanzi's InfoPrinter/BlockListener pair to this pipeline's Event
// types.
type printer struct{}

func (printer) ProcessEvent(evt *dark.Event) {
	if !verbose {
		return
	}

	fmt.Fprintln(os.Stderr, evt.String())
}

func usage() {
	fmt.Println("Dark usage:")
	fmt.Println("\tdark [-m model] [-v] input_file[" + extension + "]")
	fmt.Printf("\tmodel one of: %v %v\n", model.DistanceModelNames(), model.ByteModelNames())
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	modelName := model.NameYBS
	checksum := false
	var inputPath string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-m" && i+1 < len(args):
			i++
			modelName = args[i]
		case args[i] == "-v":
			verbose = true
		case args[i] == "-c":
			checksum = true
		case args[i] == "-h" || args[i] == "--help":
			usage()
			return 0
		case inputPath == "":
			inputPath = args[i]
		}
	}

	if inputPath == "" {
		usage()
		return 1
	}

	if strings.HasSuffix(inputPath, extension) {
		return decodeFile(inputPath, modelName, checksum)
	}

	return encodeFile(inputPath, modelName, checksum)
}

func encodeFile(inputPath, modelName string, checksum bool) int {
	data, err := os.ReadFile(inputPath)

	if err != nil {
		fmt.Printf("Input %s can not be read: %v\n", inputPath, err)
		return 1
	}

	outPath := inputPath + extension
	out, err := os.Create(outPath)

	if err != nil {
		fmt.Printf("Output %s can not be created: %v\n", outPath, err)
		return 1
	}

	defer out.Close()

	if verbose {
		fmt.Printf("AVX2: %v\n", internal.HasAVX2())
	}

	start := time.Now()
	enc, err := block.NewEncoder(len(data), modelName, checksum, printer{})

	if err != nil {
		fmt.Printf("Failed to create encoder: %v\n", err)
		return 1
	}

	if err := enc.Encode(data, out); err != nil {
		fmt.Printf("Encoding failed: %v\n", err)
		return 1
	}

	if verbose {
		fmt.Printf("Encoded %d bytes in %v\n", len(data), time.Since(start))
	}

	return 0
}

func decodeFile(inputPath, modelName string, checksum bool) int {
	in, err := os.Open(inputPath)

	if err != nil {
		fmt.Printf("Input %s can not be read: %v\n", inputPath, err)
		return 1
	}

	defer in.Close()

	outPath := strings.TrimSuffix(inputPath, extension) + ".orig"
	out, err := os.Create(outPath)

	if err != nil {
		fmt.Printf("Output %s can not be created: %v\n", outPath, err)
		return 1
	}

	defer out.Close()

	// The decoder does not know N until it reads the block header; the
	// decoder is created with the CLI's maxBlockCapacity as its bound.
	start := time.Now()
	dec, err := block.NewDecoder(maxBlockCapacity, modelName, checksum, printer{})

	if err != nil {
		fmt.Printf("Failed to create decoder: %v\n", err)
		return 1
	}

	if err := dec.Decode(in, out); err != nil && err != io.EOF {
		fmt.Printf("Decoding failed: %v\n", err)
		return 1
	}

	if verbose {
		fmt.Printf("Decoded %s in %v\n", inputPath, time.Since(start))
	}

	return 0
}
