package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrUnsafeEntry indicates an inner archive entry whose name would resolve
// outside the extraction directory.
var ErrUnsafeEntry = errors.New("unsafe archive entry name")

// Compression selects how Pack stores entries.
type Compression string

const (
	// CompressionDeflate deflates every entry.
	CompressionDeflate Compression = "deflate"
	// CompressionStore stores entries uncompressed.
	CompressionStore Compression = "store"
)

// ParseCompression validates a compression name. Empty selects deflate.
func ParseCompression(s string) (Compression, error) {
	switch Compression(strings.ToLower(s)) {
	case "", CompressionDeflate:
		return CompressionDeflate, nil
	case CompressionStore:
		return CompressionStore, nil
	default:
		return "", fmt.Errorf("invalid compression: %s (must be deflate or store)", s)
	}
}

func (c Compression) method() uint16 {
	if c == CompressionStore {
		return zip.Store
	}
	return zip.Deflate
}

// PackOptions configures Pack.
type PackOptions struct {
	// Compression defaults to deflate.
	Compression Compression
	// Exclude holds path.Match patterns over slash-separated entry names.
	// A pattern that names a directory also excludes everything below it.
	Exclude []string
}

// Unpack extracts every entry of the inner archive below destRoot, in
// stream order, and returns the paths written. Entry names are used as
// relative paths unchanged; names that would escape destRoot fail with
// ErrUnsafeEntry.
func Unpack(inner []byte, destRoot string) ([]string, error) {
	zr, err := openInner(inner)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(destRoot, 0755); err != nil {
		return nil, err
	}
	root, err := os.OpenRoot(destRoot)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	var written []string
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, "/")
		if !fs.ValidPath(name) || name == "." {
			return written, fmt.Errorf("%w: %q", ErrUnsafeEntry, f.Name)
		}
		local := filepath.FromSlash(name)

		if f.FileInfo().IsDir() {
			if err := root.MkdirAll(local, 0755); err != nil {
				return written, err
			}
			continue
		}
		if dir := path.Dir(name); dir != "." {
			if err := root.MkdirAll(filepath.FromSlash(dir), 0755); err != nil {
				return written, err
			}
		}

		data, err := readEntry(f)
		if err != nil {
			return written, fmt.Errorf("%w: %s: %v", ErrMalformed, f.Name, err)
		}
		if err := root.WriteFile(local, data, 0644); err != nil {
			return written, err
		}
		written = append(written, filepath.Join(destRoot, local))
	}

	return written, nil
}

// Pack builds an inner archive from every regular file under sourceRoot.
// Entry names are paths relative to sourceRoot with forward slashes.
// Directories and symbolic links are not stored.
func Pack(sourceRoot string, opts PackOptions) ([]byte, error) {
	root, err := os.OpenRoot(sourceRoot)
	if err != nil {
		return nil, err
	}
	defer root.Close()

	method := opts.Compression.method()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	err = fs.WalkDir(root.FS(), ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if excluded(name, opts.Exclude) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := fs.ReadFile(root.FS(), name)
		if err != nil {
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   method,
			Modified: info.ModTime(),
		})
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InnerEntries lists the entry names of an inner archive in stream order.
func InnerEntries(inner []byte) ([]string, error) {
	zr, err := openInner(inner)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// ReadInnerFile returns one entry of an inner archive without extracting it.
func ReadInnerFile(inner []byte, name string) ([]byte, error) {
	zr, err := openInner(inner)
	if err != nil {
		return nil, err
	}
	return readZipFile(zr, name)
}

const (
	eocdSignature = "PK\x05\x06"
	eocdLen       = 22
)

// openInner reads the package archive at the start of inner. A Data Mashup
// carries further sections after the package, so the reader is bounded to
// the package's own end of central directory record.
func openInner(inner []byte) (*zip.Reader, error) {
	pkg := packageBytes(inner)
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, fmt.Errorf("%w: inner package: %v", ErrMalformed, err)
	}
	return zr, nil
}

// packageBytes cuts inner after the first end of central directory record
// whose directory ends right where the record starts. Signature bytes that
// happen to occur inside entry data fail that check and are skipped. When
// no record qualifies (ZIP64 packages among them), inner is returned whole.
func packageBytes(inner []byte) []byte {
	for off := 0; off < len(inner); {
		i := bytes.Index(inner[off:], []byte(eocdSignature))
		if i < 0 {
			break
		}
		pos := off + i
		if pos+eocdLen <= len(inner) {
			rec := inner[pos : pos+eocdLen]
			cdSize := binary.LittleEndian.Uint32(rec[12:16])
			cdOffset := binary.LittleEndian.Uint32(rec[16:20])
			end := pos + eocdLen + int(binary.LittleEndian.Uint16(rec[20:22]))
			if uint64(cdOffset)+uint64(cdSize) == uint64(pos) && end <= len(inner) {
				return inner[:end]
			}
		}
		off = pos + 1
	}
	return inner
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func excluded(name string, patterns []string) bool {
	if name == "." {
		return false
	}
	for _, p := range patterns {
		p = strings.TrimSuffix(p, "/")
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
