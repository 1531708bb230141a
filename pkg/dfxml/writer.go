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
package dfxml

import (
	"encoding/xml"
	"errors"
	"io"
)

// ErrNoHeader is returned when volumes are written before the document header.
var ErrNoHeader = errors.New("dfxml: header not written")

const rootElement = "dfxml"

// DFXMLWriter streams a DFXML document: one header, any number of volumes, then Close.
type DFXMLWriter struct {
	w       io.Writer
	enc     *xml.Encoder
	started bool
}

// NewDFXMLWriter returns a writer indenting its output by two spaces.
func NewDFXMLWriter(w io.Writer) *DFXMLWriter {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return &DFXMLWriter{w: w, enc: enc}
}

// WriteHeader writes the XML declaration, opens the root element and
// encodes the metadata, creator and source blocks.
func (w *DFXMLWriter) WriteHeader(hdr DFXMLHeader) error {
	if _, err := io.WriteString(w.w, xml.Header); err != nil {
		return err
	}

	root := xml.StartElement{
		Name: xml.Name{Local: rootElement},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmloutputversion"}, Value: hdr.XmlOutput}},
	}
	if err := w.enc.EncodeToken(root); err != nil {
		return err
	}
	w.started = true

	for _, child := range []struct {
		name string
		v    any
	}{
		{"metadata", hdr.Metadata},
		{"creator", hdr.Creator},
		{"source", hdr.Source},
	} {
		if err := w.enc.EncodeElement(child.v, xml.StartElement{Name: xml.Name{Local: child.name}}); err != nil {
			return err
		}
	}
	return nil
}

// WriteVolume encodes one partition as a <volume> element.
func (w *DFXMLWriter) WriteVolume(v Volume) error {
	if !w.started {
		return ErrNoHeader
	}
	return w.enc.Encode(v)
}

// Close ends the root element and flushes the encoder.
func (w *DFXMLWriter) Close() error {
	if !w.started {
		return ErrNoHeader
	}
	w.started = false

	if err := w.enc.EncodeToken(xml.EndElement{Name: xml.Name{Local: rootElement}}); err != nil {
		return err
	}
	return w.enc.Flush()
}
