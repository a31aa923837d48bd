package archive

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/richardlehane/mscfb"
)

var (
	// ErrEncrypted indicates a password-protected workbook. Excel stores
	// these as an OLE compound file wrapping the encrypted package.
	ErrEncrypted = errors.New("workbook is encrypted")
	// ErrUnsupportedFormat indicates a container that is not OOXML, such
	// as a legacy BIFF .xls workbook.
	ErrUnsupportedFormat = errors.New("unsupported workbook format")
)

// compoundSignature is the OLE2 compound file magic.
var compoundSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// checkCompound returns ErrEncrypted or ErrUnsupportedFormat when path is
// an OLE compound file, and nil otherwise.
func checkCompound(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	return checkCompoundReader(f)
}

func checkCompoundReader(r io.ReaderAt) error {
	magic := make([]byte, len(compoundSignature))
	if _, err := r.ReadAt(magic, 0); err != nil || !bytes.Equal(magic, compoundSignature) {
		return nil
	}

	doc, err := mscfb.New(r)
	if err != nil {
		return ErrUnsupportedFormat
	}
	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch entry.Name {
		case "EncryptionInfo", "EncryptedPackage":
			return ErrEncrypted
		}
	}
	return ErrUnsupportedFormat
}
