package mashup

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/bradland/pqmashup-go/pkg/mashup/archive"
	"github.com/bradland/pqmashup-go/pkg/mashup/models"
	"github.com/bradland/pqmashup-go/pkg/mashup/parser"
	"github.com/xuri/excelize/v2"
)

// Inspect summarizes the workbook at path without writing anything.
// Workbooks without a Data Mashup yield a nil Mashup, not an error.
func Inspect(path string, opts Options) (*models.WorkbookInfo, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, NewOpError("inspect", path, ErrInputNotFound)
	}
	if err != nil {
		return nil, NewOpError("inspect", path, err)
	}

	// The package view and excelize share the bytes read above.
	wb, err := archive.OpenBytes(data)
	if err != nil {
		return nil, NewOpError("inspect", path, err)
	}
	blob, part, err := mashupOf(wb)
	if err != nil && !errors.Is(err, ErrBlobNotFound) {
		return nil, NewOpError("inspect", path, err)
	}

	info := &models.WorkbookInfo{BookName: filepath.Base(path)}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, NewOpError("inspect", path, err)
	}
	defer f.Close()
	info.Sheets = f.GetSheetList()

	if part == "" || blob.Inner == nil {
		opts.log().Info("workbook has no data mashup", "path", path)
		return info, nil
	}

	entries, err := archive.InnerEntries(blob.Inner)
	if err != nil {
		return nil, NewOpError("inspect", path, err)
	}
	info.Mashup = &models.MashupInfo{
		Part:       part,
		HeaderSize: len(blob.Header),
		InnerSize:  len(blob.Inner),
		Entries:    entries,
	}

	section, err := archive.ReadInnerFile(blob.Inner, parser.SectionPath)
	switch {
	case err == nil:
		info.Mashup.Queries = parser.SplitQueries(string(section))
	case errors.Is(err, archive.ErrEntryNotFound):
		opts.log().Warn("section document not found", "entry", parser.SectionPath)
	default:
		return nil, NewOpError("inspect", path, err)
	}

	return info, nil
}
