package testutil

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

// MashupHeader is a stand-in for the opaque header Excel writes in front of
// the package archive (version and package length fields).
var MashupHeader = []byte{0x00, 0x00, 0x00, 0x00, 0x9C, 0x02, 0x00, 0x00}

// SampleSection is a small section document with two shared members.
const SampleSection = "section Section1;\r\n\r\n" +
	"shared Sales = let\r\n    Source = Excel.CurrentWorkbook(){[Name=\"Sales\"]}[Content]\r\nin\r\n    Source;\r\n\r\n" +
	"shared #\"Top Customers\" = Table.FirstN(Sales, 10);\r\n"

// SamplePackage returns the files of a minimal Data Mashup package.
func SamplePackage() map[string]string {
	return map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="utf-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"Config/Package.xml":  `<?xml version="1.0" encoding="utf-8"?><Package xmlns="http://schemas.microsoft.com/DataMashup"/>`,
		"Formulas/Section1.m": SampleSection,
	}
}

// ZipEntry is one entry of a fixture archive.
type ZipEntry struct {
	Name string
	Data []byte
}

// BuildZip returns a ZIP archive holding entries in the given order.
func BuildZip(t testing.TB, entries ...ZipEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("create %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// InnerPackage builds an inner package archive from files, sorted by name.
func InnerPackage(t testing.TB, files map[string]string) []byte {
	t.Helper()
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]ZipEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, ZipEntry{Name: name, Data: []byte(files[name])})
	}
	return BuildZip(t, entries...)
}

// MashupPart returns a customXml part carrying header+inner as a
// DataMashup element, encoded as UTF-16LE with a BOM like Excel writes it.
func MashupPart(t testing.TB, header, inner []byte) []byte {
	t.Helper()
	blob := append(append([]byte{}, header...), inner...)
	doc := `<?xml version="1.0" encoding="utf-16"?>` +
		`<DataMashup xmlns="http://schemas.microsoft.com/DataMashup">` +
		base64.StdEncoding.EncodeToString(blob) +
		`</DataMashup>`
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(doc))
	if err != nil {
		t.Fatalf("encode mashup part: %v", err)
	}
	return out
}

// NewWorkbook writes an excelize-generated workbook to path with extra
// entries appended after the standard parts.
func NewWorkbook(t testing.TB, path string, extra ...ZipEntry) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Customer")
	f.SetCellValue("Sheet1", "B1", "Amount")
	f.SetCellValue("Sheet1", "A2", "Contoso")
	f.SetCellValue("Sheet1", "B2", 1250.5)
	if _, err := f.NewSheet("Sales"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	var entries []ZipEntry
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			t.Fatalf("open %s: %v", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", zf.Name, err)
		}
		entries = append(entries, ZipEntry{Name: zf.Name, Data: data})
	}
	entries = append(entries, extra...)

	if err := os.WriteFile(path, BuildZip(t, entries...), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// MashupSections returns the length-prefixed sections Excel stores after
// the package archive: permissions, metadata and permission bindings. The
// metadata section embeds its own ZIP holding metadata.xml, and its XML is
// padded with metadataPad extra bytes.
func MashupSections(t testing.TB, metadataPad int) []byte {
	t.Helper()
	permissions := []byte(`<?xml version="1.0" encoding="utf-8"?><PermissionList xmlns:xsd="http://www.w3.org/2001/XMLSchema"><CanEvaluateFuturePackages>false</CanEvaluateFuturePackages></PermissionList>`)
	metadataXML := append([]byte(`<?xml version="1.0" encoding="utf-8"?><LocalPackageMetadataFile xmlns:xsd="http://www.w3.org/2001/XMLSchema"><Items/></LocalPackageMetadataFile>`),
		bytes.Repeat([]byte(" "), metadataPad)...)
	content := BuildZip(t, ZipEntry{Name: "metadata.xml", Data: []byte("<Metadata/>")})

	var metadata bytes.Buffer
	binary.Write(&metadata, binary.LittleEndian, uint32(0))
	binary.Write(&metadata, binary.LittleEndian, uint32(len(metadataXML)))
	metadata.Write(metadataXML)
	binary.Write(&metadata, binary.LittleEndian, uint32(len(content)))
	metadata.Write(content)

	var out bytes.Buffer
	for _, section := range [][]byte{permissions, metadata.Bytes(), {0x01, 0x02, 0x03, 0x04}} {
		binary.Write(&out, binary.LittleEndian, uint32(len(section)))
		out.Write(section)
	}
	return out.Bytes()
}

// NewMashupWorkbook writes a workbook at path whose customXml/item1.xml
// carries the given package files behind MashupHeader.
func NewMashupWorkbook(t testing.TB, path string, files map[string]string) {
	t.Helper()
	NewMashupWorkbookWithSections(t, path, files, nil)
}

// NewMashupWorkbookWithSections is NewMashupWorkbook with sections
// appended after the package archive.
func NewMashupWorkbookWithSections(t testing.TB, path string, files map[string]string, sections []byte) {
	t.Helper()
	inner := append(InnerPackage(t, files), sections...)
	NewWorkbook(t, path,
		ZipEntry{Name: "customXml/item1.xml", Data: MashupPart(t, MashupHeader, inner)},
		ZipEntry{Name: "customXml/itemProps1.xml", Data: []byte(`<ds:datastoreItem xmlns:ds="http://schemas.openxmlformats.org/officeDocument/2006/customXml"/>`)},
	)
}

// WriteTree writes files (slash-separated relative names) under root.
func WriteTree(t testing.TB, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}

// ReadTree returns every regular file under root keyed by slash-separated
// relative name.
func ReadTree(t testing.TB, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return files
}

// ZipEntries returns the decompressed entries of the archive at path in
// central directory order.
func ZipEntries(t testing.TB, path string) []ZipEntry {
	t.Helper()
	rc, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer rc.Close()

	var entries []ZipEntry
	for _, zf := range rc.File {
		r, err := zf.Open()
		if err != nil {
			t.Fatalf("open %s: %v", zf.Name, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			t.Fatalf("read %s: %v", zf.Name, err)
		}
		entries = append(entries, ZipEntry{Name: zf.Name, Data: data})
	}
	return entries
}
