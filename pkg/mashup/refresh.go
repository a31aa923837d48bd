package mashup

import (
	"os"
	"path/filepath"

	"github.com/bradland/pqmashup-go/pkg/mashup/host"
)

// Refresh opens the workbook in the spreadsheet host, refreshes every query
// and connection, and saves it in place. It blocks until the host returns.
func Refresh(path string, opts RefreshOptions) error {
	logger := opts.log()

	abs, err := filepath.Abs(path)
	if err != nil {
		return NewOpError("refresh", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return NewOpError("refresh", path, ErrInputNotFound)
	}

	err = host.WithWorkbook(opts.launcher(), host.Settings{Visible: opts.Visible}, abs, func(wb host.Workbook) error {
		n, err := wb.DisableBackgroundRefresh()
		if err != nil {
			return err
		}
		logger.Debug("disabled background refresh", "connections", n)

		logger.Info("refreshing workbook", "path", abs)
		if err := wb.RefreshAll(); err != nil {
			return err
		}
		if err := wb.WaitForAsyncQueries(); err != nil {
			return err
		}
		return wb.Save()
	})
	if err != nil {
		return NewOpError("refresh", path, err)
	}

	logger.Info("refreshed workbook", "path", abs)
	return nil
}
