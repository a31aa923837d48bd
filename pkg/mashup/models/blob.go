// Package models defines data structures for Data Mashup handling.
package models

// Blob is a decoded Data Mashup payload: an opaque header followed by the
// inner package archive.
type Blob struct {
	// Header is everything before the first local file header signature.
	// It is replayed verbatim and never interpreted.
	Header []byte
	// Inner is the inner package archive, starting with "PK\x03\x04".
	Inner []byte
}

// Len returns the size of the raw blob.
func (b Blob) Len() int {
	return len(b.Header) + len(b.Inner)
}

// Bytes returns header and inner archive concatenated.
func (b Blob) Bytes() []byte {
	out := make([]byte, 0, b.Len())
	out = append(out, b.Header...)
	return append(out, b.Inner...)
}
