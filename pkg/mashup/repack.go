package mashup

import (
	"os"

	"github.com/bradland/pqmashup-go/pkg/mashup/archive"
	"github.com/bradland/pqmashup-go/pkg/mashup/parser"
)

// Repack packs sourceDir into a new inner package and writes a copy of the
// template workbook carrying it to outputPath.
func Repack(sourceDir, templatePath, outputPath string, opts Options) error {
	info, err := os.Stat(sourceDir)
	if err != nil || !info.IsDir() {
		return NewOpError("repack", sourceDir, ErrInputNotFound)
	}

	inner, err := archive.Pack(sourceDir, archive.PackOptions{
		Compression: opts.Compression,
		Exclude:     opts.Exclude,
	})
	if err != nil {
		return NewOpError("repack", sourceDir, err)
	}
	opts.log().Info("packed source directory", "dir", sourceDir, "package_bytes", len(inner))

	return Reinject(templatePath, inner, outputPath, opts)
}

// Reinject writes outputPath as a copy of templatePath whose DataMashup
// element carries the template's header followed by inner. Only the entry
// holding the element changes.
//
// When the template's mashup cannot be decoded, the header defaults to
// empty and a warning is logged, unless opts.StrictHeader is set. A
// template with no DataMashup element at all has nowhere to inject into
// and always fails with ErrBlobNotFound.
func Reinject(templatePath string, inner []byte, outputPath string, opts Options) error {
	logger := opts.log()

	entry, part, header, err := harvestTemplate(templatePath, opts)
	if err != nil {
		return NewOpError("reinject", templatePath, err)
	}

	text := parser.Encode(header, inner)
	updated, err := parser.ReplaceElementText(part, parser.MashupElement, text)
	if err != nil {
		return NewOpError("reinject", templatePath, err)
	}

	if err := archive.Rewrite(templatePath, outputPath, map[string][]byte{entry: updated}); err != nil {
		return NewOpError("reinject", outputPath, err)
	}

	logger.Info("wrote workbook", "output", outputPath, "part", entry, "header_bytes", len(header), "package_bytes", len(inner))
	return nil
}

// harvestTemplate returns the mashup entry of the template, its raw part
// bytes and the opaque header of the blob it currently carries.
func harvestTemplate(templatePath string, opts Options) (entry string, part, header []byte, err error) {
	wb, err := openWorkbook(templatePath)
	if err != nil {
		return "", nil, nil, err
	}
	defer wb.Close()

	loc, err := parser.Locate(wb)
	if err != nil {
		return "", nil, nil, err
	}
	part, err = wb.ReadEntry(loc.Entry)
	if err != nil {
		return "", nil, nil, err
	}

	blob, err := parser.Decode(loc.Text)
	if err != nil {
		if opts.StrictHeader {
			return "", nil, nil, err
		}
		opts.log().Warn("template mashup header not recovered, using empty header", "part", loc.Entry, "error", err)
		return loc.Entry, part, nil, nil
	}
	return loc.Entry, part, blob.Header, nil
}
