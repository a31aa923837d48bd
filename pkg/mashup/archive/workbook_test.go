package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bradland/pqmashup-go/internal/testutil"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestOpenAndRead(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "book.xlsx")
	testutil.NewWorkbook(t, path, testutil.ZipEntry{Name: "customXml/item1.xml", Data: []byte("<x/>")})

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Contains(t, wb.Entries(), "xl/workbook.xml")
	assert.Equal(t, "customXml/item1.xml", wb.Entries()[len(wb.Entries())-1])

	data, err := wb.ReadEntry("customXml/item1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<x/>", string(data))

	_, err = wb.ReadEntry("customXml/item2.xml")
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestOpenErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	text := filepath.Join(dir, "plain.xlsx")
	require.NoError(t, os.WriteFile(text, []byte("not a zip"), 0644))
	_, err = Open(text)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCheckCompoundIgnoresOtherFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	short := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(short, compoundSignature[:4], 0644))
	assert.NoError(t, checkCompound(short))

	text := filepath.Join(dir, "text.bin")
	require.NoError(t, os.WriteFile(text, []byte("PK\x03\x04 and more"), 0644))
	assert.NoError(t, checkCompound(text))

	assert.NoError(t, checkCompound(filepath.Join(dir, "missing.bin")))
}

func TestOpenEncryptedWorkbook(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "locked.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SaveAs(path, excelize.Options{Password: "pw"}))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrEncrypted)
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestOpenBytes(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := filepath.Join(dir, "book.xlsx")
	testutil.NewWorkbook(t, path, testutil.ZipEntry{Name: "customXml/item1.xml", Data: []byte("<x/>")})
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	wb, err := OpenBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "customXml/item1.xml", wb.Entries()[len(wb.Entries())-1])
	entry, err := wb.ReadEntry("customXml/item1.xml")
	require.NoError(t, err)
	assert.Equal(t, "<x/>", string(entry))
	assert.NoError(t, wb.Close())

	locked := filepath.Join(dir, "locked.xlsx")
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SaveAs(locked, excelize.Options{Password: "pw"}))
	data, err = os.ReadFile(locked)
	require.NoError(t, err)
	_, err = OpenBytes(data)
	assert.ErrorIs(t, err, ErrEncrypted)

	_, err = OpenBytes([]byte("not a zip"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOpenUnreadableCompoundFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "legacy.xls")
	data := append(append([]byte{}, compoundSignature...), []byte("truncated header")...)
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err := Open(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRewritePreservesOtherEntries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "template.xlsx")
	dst := filepath.Join(dir, "out", "result.xlsx")
	testutil.NewWorkbook(t, src, testutil.ZipEntry{Name: "customXml/item1.xml", Data: []byte("<DataMashup>old</DataMashup>")})

	require.NoError(t, Rewrite(src, dst, map[string][]byte{
		"customXml/item1.xml": []byte("<DataMashup>new</DataMashup>"),
	}))

	before := rawHeaders(t, src)
	after := rawHeaders(t, dst)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Name, after[i].Name)
		if before[i].Name == "customXml/item1.xml" {
			continue
		}
		assert.Equal(t, before[i].CRC32, after[i].CRC32, before[i].Name)
		assert.Equal(t, before[i].CompressedSize64, after[i].CompressedSize64, before[i].Name)
		assert.Equal(t, before[i].Method, after[i].Method, before[i].Name)
	}

	srcEntries := testutil.ZipEntries(t, src)
	dstEntries := testutil.ZipEntries(t, dst)
	for i := range srcEntries {
		if srcEntries[i].Name == "customXml/item1.xml" {
			assert.Equal(t, "<DataMashup>new</DataMashup>", string(dstEntries[i].Data))
			continue
		}
		assert.Equal(t, srcEntries[i], dstEntries[i])
	}

	leftovers, err := filepath.Glob(filepath.Join(dir, "out", ".pqmashup-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestRewriteUnknownEntry(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := filepath.Join(dir, "template.xlsx")
	dst := filepath.Join(dir, "result.xlsx")
	testutil.NewWorkbook(t, src)

	err := Rewrite(src, dst, map[string][]byte{"customXml/item7.xml": []byte("x")})
	require.ErrorIs(t, err, ErrEntryNotFound)

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func rawHeaders(t *testing.T, path string) []zip.FileHeader {
	t.Helper()
	rc, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer rc.Close()

	headers := make([]zip.FileHeader, 0, len(rc.File))
	for _, f := range rc.File {
		headers = append(headers, f.FileHeader)
	}
	return headers
}
