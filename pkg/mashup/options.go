// Package mashup extracts, splits, repacks and refreshes the Power Query
// Data Mashup embedded in Excel workbooks.
package mashup

import (
	"log/slog"

	"github.com/bradland/pqmashup-go/pkg/mashup/archive"
	"github.com/bradland/pqmashup-go/pkg/mashup/host"
)

// DefaultQueriesDir is the directory, relative to the extraction root, that
// receives one file per query when splitting.
const DefaultQueriesDir = "Individual_Queries"

// Options configures the extract and repack pipelines.
type Options struct {
	// Split also writes one file per shared query after extraction.
	Split bool
	// QueriesDir overrides DefaultQueriesDir.
	QueriesDir string
	// Compression selects how repacked entries are stored.
	Compression archive.Compression
	// Exclude lists path.Match patterns of source files left out of a repack.
	Exclude []string
	// StrictHeader fails a repack when the template's mashup header cannot
	// be recovered, instead of continuing with an empty header.
	StrictHeader bool
	// Logger receives progress and warnings. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	return Options{
		QueriesDir:  DefaultQueriesDir,
		Compression: archive.CompressionDeflate,
	}
}

func (o Options) log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o Options) queriesDir() string {
	if o.QueriesDir == "" {
		return DefaultQueriesDir
	}
	return o.QueriesDir
}

// RefreshOptions configures Refresh.
type RefreshOptions struct {
	// Visible shows the spreadsheet application while refreshing.
	Visible bool
	// Launcher starts the spreadsheet host. Nil selects host.Default().
	Launcher host.Launcher
	// Logger receives progress. Nil discards.
	Logger *slog.Logger
}

func (o RefreshOptions) log() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

func (o RefreshOptions) launcher() host.Launcher {
	if o.Launcher == nil {
		return host.Default()
	}
	return o.Launcher
}
