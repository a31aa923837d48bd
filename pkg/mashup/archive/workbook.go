// Package archive provides ZIP container access for workbooks and for the
// package archive embedded in a Data Mashup.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

var (
	// ErrMalformed indicates a ZIP container that cannot be parsed.
	ErrMalformed = errors.New("malformed archive")
	// ErrEntryNotFound indicates a requested entry is absent from the archive.
	ErrEntryNotFound = errors.New("archive entry not found")
)

// Reader is the read side of an OOXML container: entry names in
// enumeration order and entry contents by name.
type Reader interface {
	Entries() []string
	ReadEntry(name string) ([]byte, error)
}

// Workbook is an open OOXML workbook container.
type Workbook struct {
	zr     *zip.Reader
	closer io.Closer
}

// Open opens the workbook at path for reading. OLE compound files
// (encrypted workbooks, legacy .xls) are reported with ErrEncrypted or
// ErrUnsupportedFormat instead of a generic ZIP failure.
func Open(path string) (*Workbook, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if cerr := checkCompound(path); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, filepath.Base(path), err)
	}
	return &Workbook{zr: &rc.Reader, closer: rc}, nil
}

// OpenBytes reads a workbook already held in memory. Errors are reported
// as by Open.
func OpenBytes(data []byte) (*Workbook, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if cerr := checkCompoundReader(bytes.NewReader(data)); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &Workbook{zr: zr}, nil
}

// Entries returns entry names in central directory order.
func (w *Workbook) Entries() []string {
	names := make([]string, 0, len(w.zr.File))
	for _, f := range w.zr.File {
		names = append(names, f.Name)
	}
	return names
}

// ReadEntry returns the decompressed contents of the named entry.
func (w *Workbook) ReadEntry(name string) ([]byte, error) {
	return readZipFile(w.zr, name)
}

// Close releases the underlying file, if any.
func (w *Workbook) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}

// Rewrite writes a copy of the workbook at srcPath to dstPath, replacing
// the contents of the entries named in replacements. Untouched entries are
// copied raw, so their headers and compressed bytes stay identical. The
// output is staged next to dstPath and renamed into place, so dstPath may
// equal srcPath.
func Rewrite(srcPath, dstPath string, replacements map[string][]byte) error {
	dir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".pqmashup-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	err = copyWithReplacements(srcPath, tmp, replacements)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0644)
	}
	if err == nil {
		err = os.Rename(tmpName, dstPath)
	}
	if err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func copyWithReplacements(srcPath string, dst io.Writer, replacements map[string][]byte) error {
	src, err := zip.OpenReader(srcPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return err
		}
		return fmt.Errorf("%w: %s: %v", ErrMalformed, filepath.Base(srcPath), err)
	}
	defer src.Close()

	for name := range replacements {
		if !hasEntry(&src.Reader, name) {
			return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
		}
	}

	zw := zip.NewWriter(dst)
	for _, f := range src.File {
		data, ok := replacements[f.Name]
		if !ok {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		fh := f.FileHeader
		w, err := zw.CreateHeader(&fh)
		if err != nil {
			return fmt.Errorf("rewrite %s: %w", f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("rewrite %s: %w", f.Name, err)
		}
	}
	return zw.Close()
}

func hasEntry(r *zip.Reader, name string) bool {
	for _, f := range r.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
}
