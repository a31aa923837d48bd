package mashup

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/bradland/pqmashup-go/pkg/mashup/archive"
	"github.com/bradland/pqmashup-go/pkg/mashup/models"
	"github.com/bradland/pqmashup-go/pkg/mashup/parser"
)

// ExtractResult lists what Extract wrote.
type ExtractResult struct {
	// Part is the workbook entry the mashup was read from.
	Part string
	// Files are the unpacked package files, in archive order.
	Files []string
	// QueryFiles are the per-query files written when splitting.
	QueryFiles []string
}

// Extract unpacks the Data Mashup package of the workbook at path into
// outputDir. Nothing is written when the workbook has no mashup.
func Extract(path, outputDir string, opts Options) (*ExtractResult, error) {
	logger := opts.log()

	blob, part, err := readMashup(path)
	if err != nil {
		return nil, NewOpError("extract", path, err)
	}
	logger.Info("found data mashup", "part", part, "header_bytes", len(blob.Header), "package_bytes", len(blob.Inner))

	files, err := archive.Unpack(blob.Inner, outputDir)
	if err != nil {
		return nil, NewOpError("extract", path, err)
	}
	for _, f := range files {
		logger.Debug("extracted", "path", f)
	}

	result := &ExtractResult{Part: part, Files: files}
	if opts.Split {
		section := filepath.Join(outputDir, filepath.FromSlash(parser.SectionPath))
		written, err := SplitSectionFile(section, filepath.Join(outputDir, opts.queriesDir()), logger)
		if err != nil {
			return result, NewOpError("extract", path, err)
		}
		result.QueryFiles = written
	}

	logger.Info("extracted data mashup", "files", len(files), "queries", len(result.QueryFiles), "output", outputDir)
	return result, nil
}

// readMashup opens the workbook, locates the DataMashup element and
// decodes it. A blob without a package archive is reported as
// ErrBlobNotFound.
func readMashup(path string) (models.Blob, string, error) {
	wb, err := openWorkbook(path)
	if err != nil {
		return models.Blob{}, "", err
	}
	defer wb.Close()
	return mashupOf(wb)
}

func mashupOf(wb archive.Reader) (models.Blob, string, error) {
	loc, err := parser.Locate(wb)
	if err != nil {
		return models.Blob{}, "", err
	}
	blob, err := parser.Decode(loc.Text)
	if err != nil {
		return models.Blob{}, loc.Entry, err
	}
	return blob, loc.Entry, nil
}

func openWorkbook(path string) (*archive.Workbook, error) {
	wb, err := archive.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrInputNotFound
	}
	return wb, err
}
