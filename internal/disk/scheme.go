// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package disk

import (
	"bytes"
	"fmt"
)

// Scheme identifies the partitioning scheme of an image.
type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeMBR
	SchemeGPT
)

func (s Scheme) String() string {
	switch s {
	case SchemeMBR:
		return "MBR"
	case SchemeGPT:
		return "GPT"
	default:
		return "Unknown"
	}
}

const (
	mbrSize               = 512
	mbrSignatureOffset    = 0x1FE
	mbrPartitionsOffset   = 0x1BE
	mbrPartitionEntrySize = 16
	mbrPartitionCount     = 4
)

var (
	mbrBootSignature = []byte{0x55, 0xAA}
	gptSignature     = []byte("EFI PART")
)

// Detect classifies the image by inspecting sector 0 and, for a protective MBR,
// the signature of the header at LBA 1.
//
// The boot signature is checked before any partition entry is interpreted, so
// a corrupt sector 0 always yields SchemeUnknown with ErrInvalidMBRSignature.
func Detect(src *Source) (Scheme, error) {
	sector, err := src.readStruct(0, mbrSize, "sector 0")
	if err != nil {
		return SchemeUnknown, err
	}

	if !bytes.Equal(sector[mbrSignatureOffset:mbrSignatureOffset+2], mbrBootSignature) {
		return SchemeUnknown, fmt.Errorf("%w: got 0x%02X%02X", ErrInvalidMBRSignature,
			sector[mbrSignatureOffset], sector[mbrSignatureOffset+1])
	}

	firstType := MBRPartitionType(sector[mbrPartitionsOffset+4])
	if firstType != PartitionTypeGPTProtective {
		return SchemeMBR, nil
	}

	sig, err := src.readStruct(SectorSize, int64(len(gptSignature)), "GPT header signature")
	if err != nil {
		return SchemeUnknown, err
	}
	if !bytes.Equal(sig, gptSignature) {
		return SchemeUnknown, fmt.Errorf("%w: protective MBR found but LBA 1 starts with %q", ErrInvalidGPTSignature, sig)
	}
	return SchemeGPT, nil
}
