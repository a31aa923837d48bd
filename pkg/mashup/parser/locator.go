// Package parser locates, decodes and splits the Power Query Data Mashup
// stored in an OOXML workbook.
package parser

import (
	"errors"
	"path"
)

const (
	// MashupPartPattern matches the custom XML parts that may hold the mashup.
	MashupPartPattern = "customXml/item*.xml"
	// MashupElement is the local name of the element carrying the Base64 blob.
	MashupElement = "DataMashup"
)

// ErrBlobNotFound indicates that no Data Mashup could be located.
var ErrBlobNotFound = errors.New("data mashup not found")

// EntryReader lists and reads the entries of an OOXML container.
type EntryReader interface {
	Entries() []string
	ReadEntry(name string) ([]byte, error)
}

// Location identifies the DataMashup element found in a workbook.
type Location struct {
	// Entry is the container entry holding the element.
	Entry string
	// Text is the element's text content (the Base64 blob).
	Text string
}

// Locate scans entries matching MashupPartPattern in the reader's
// enumeration order and returns the first one containing a DataMashup
// element. Parts that cannot be read or parsed are skipped.
func Locate(r EntryReader) (*Location, error) {
	for _, name := range r.Entries() {
		if ok, _ := path.Match(MashupPartPattern, name); !ok {
			continue
		}
		data, err := r.ReadEntry(name)
		if err != nil {
			continue
		}
		text, err := ElementText(data, MashupElement)
		if err != nil {
			continue
		}
		return &Location{Entry: name, Text: text}, nil
	}
	return nil, ErrBlobNotFound
}
