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

import "errors"

var (
	// ErrTruncatedImage is returned when the image ends before a fixed-size structure.
	ErrTruncatedImage = errors.New("truncated image")
	// ErrShortRead is returned by Source.ReadAt when fewer bytes than requested remain.
	ErrShortRead = errors.New("short read")

	ErrInvalidMBRSignature = errors.New("invalid MBR signature")
	ErrInvalidGPTSignature = errors.New("invalid GPT header signature")
	ErrInvalidGPTHeader    = errors.New("invalid GPT header")

	// ErrAmbiguousScheme is returned when the image is neither a valid MBR nor a valid GPT disk.
	ErrAmbiguousScheme = errors.New("unable to determine partition scheme")

	// ErrMalformedEntry marks a GPT entry whose ending LBA precedes its starting LBA.
	ErrMalformedEntry = errors.New("malformed partition entry")
)
