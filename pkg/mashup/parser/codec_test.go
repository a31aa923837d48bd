package parser

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		inner  []byte
	}{
		{"typical header", []byte{0, 0, 0, 0, 0x2A, 0x01, 0, 0}, append([]byte("PK\x03\x04"), "package bytes"...)},
		{"empty header", nil, []byte("PK\x03\x04\x14\x00")},
		{"inner repeats signature", []byte{1, 2, 3}, []byte("PK\x03\x04firstPK\x03\x04second")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := Decode(Encode(tt.header, tt.inner))
			require.NoError(t, err)
			assert.Equal(t, len(tt.header), len(blob.Header))
			if len(tt.header) > 0 {
				assert.Equal(t, tt.header, blob.Header)
			}
			assert.Equal(t, tt.inner, blob.Inner)
		})
	}
}

func TestEncodeIsPadded(t *testing.T) {
	text := Encode([]byte{1}, []byte("PK\x03\x04"))
	assert.True(t, strings.HasSuffix(text, "="), "expected padded output, got %q", text)
}

func TestDecodeToleratesFormatting(t *testing.T) {
	raw := append([]byte{9, 9}, "PK\x03\x04data!"...)
	padded := base64.StdEncoding.EncodeToString(raw)
	unpadded := base64.RawStdEncoding.EncodeToString(raw)
	wrapped := padded[:4] + "\r\n  " + padded[4:] + "\n"

	for _, text := range []string{padded, unpadded, wrapped} {
		blob, err := Decode(text)
		require.NoError(t, err, text)
		assert.Equal(t, []byte{9, 9}, blob.Header)
		assert.Equal(t, []byte("PK\x03\x04data!"), blob.Inner)
	}
}

func TestDecodeWithoutSignature(t *testing.T) {
	_, err := Decode(base64.StdEncoding.EncodeToString([]byte("no archive here")))
	require.ErrorIs(t, err, ErrSignatureNotFound)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestDecodeInvalidBase64(t *testing.T) {
	_, err := Decode("not*base64")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBlobNotFound)
}
