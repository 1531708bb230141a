package dfxml

import (
	"encoding/xml"
	"errors"
	"io"
)

// ReadVolumes parses and returns all <volume> elements from the reader.
func ReadVolumes(r io.Reader) ([]Volume, error) {
	dec := xml.NewDecoder(r)
	var volumes []Volume

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		if startElem, ok := tok.(xml.StartElement); ok && startElem.Name.Local == "volume" {
			var v Volume
			if err := dec.DecodeElement(&v, &startElem); err != nil {
				return nil, err
			}
			volumes = append(volumes, v)
		}
	}
	return volumes, nil
}
