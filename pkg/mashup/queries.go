package mashup

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bradland/pqmashup-go/pkg/mashup/models"
	"github.com/bradland/pqmashup-go/pkg/mashup/parser"
)

// SplitSectionFile splits the section document at sectionPath into one
// .m file per shared query under outDir and returns the files written.
// A missing section document is logged and yields no files and no error.
func SplitSectionFile(sectionPath, outDir string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	data, err := os.ReadFile(sectionPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("section document not found, skipping query split", "path", sectionPath)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	queries := parser.SplitQueries(string(data))
	if len(queries) == 0 {
		logger.Warn("no shared queries found", "path", sectionPath)
		return nil, nil
	}
	return WriteQueries(queries, outDir)
}

// WriteQueries writes each query body to outDir/<FileName>. Queries whose
// names sanitize to the same file name overwrite one another in order.
func WriteQueries(queries []models.Query, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	var written []string
	seen := make(map[string]bool)
	for _, q := range queries {
		filename := filepath.Join(outDir, q.FileName)
		if err := os.WriteFile(filename, []byte(q.Body), 0644); err != nil {
			return written, err
		}
		if !seen[filename] {
			seen[filename] = true
			written = append(written, filename)
		}
	}
	return written, nil
}
