package parser

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"github.com/bradland/pqmashup-go/pkg/mashup/models"
)

// Signature is the ZIP local file header signature that starts the inner
// package archive of a Data Mashup.
var Signature = []byte{0x50, 0x4B, 0x03, 0x04}

// ErrSignatureNotFound indicates decoded mashup bytes with no inner archive.
var ErrSignatureNotFound = fmt.Errorf("%w: no package archive signature", ErrBlobNotFound)

// Decode decodes the Base64 text of a DataMashup element and splits it into
// the opaque header and the inner archive. Whitespace and missing padding
// are tolerated.
func Decode(text string) (models.Blob, error) {
	raw, err := DecodeBase64(text)
	if err != nil {
		return models.Blob{}, err
	}
	return SplitBlob(raw)
}

// DecodeBase64 decodes standard-alphabet Base64, with or without padding.
func DecodeBase64(text string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(compact, "="))
	if err != nil {
		return nil, fmt.Errorf("decode mashup base64: %w", err)
	}
	return raw, nil
}

// SplitBlob splits raw mashup bytes at the first occurrence of Signature.
func SplitBlob(raw []byte) (models.Blob, error) {
	i := bytes.Index(raw, Signature)
	if i < 0 {
		return models.Blob{}, ErrSignatureNotFound
	}
	return models.Blob{Header: raw[:i:i], Inner: raw[i:]}, nil
}

// Encode concatenates header and inner and returns padded standard Base64.
func Encode(header, inner []byte) string {
	return base64.StdEncoding.EncodeToString(models.Blob{Header: header, Inner: inner}.Bytes())
}
