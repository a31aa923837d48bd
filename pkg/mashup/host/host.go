// Package host drives a spreadsheet application to refresh the queries of
// a workbook and save the results.
package host

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates no automation host exists on this platform.
	ErrUnavailable = errors.New("spreadsheet automation host unavailable")
	// ErrAutomation indicates the automation host reported a failure.
	ErrAutomation = errors.New("spreadsheet automation failed")
)

// Settings configures a launched application.
type Settings struct {
	// Visible shows the application window while it works.
	Visible bool
}

// Application is a running spreadsheet application.
type Application interface {
	// Open opens the workbook at an absolute path.
	Open(path string) (Workbook, error)
	// Quit closes the application and releases its handle.
	Quit() error
}

// Workbook is a workbook open in an Application.
type Workbook interface {
	// DisableBackgroundRefresh turns off background querying on OLE DB
	// connections so RefreshAll completes before returning. It returns the
	// number of connections changed.
	DisableBackgroundRefresh() (int, error)
	// RefreshAll refreshes every connection and query table.
	RefreshAll() error
	// WaitForAsyncQueries blocks until pending asynchronous queries finish.
	WaitForAsyncQueries() error
	// Save saves the workbook in place.
	Save() error
	// Close closes the workbook without saving and releases its handle.
	Close() error
}

// Launcher starts an Application.
type Launcher func(Settings) (Application, error)

// Default returns the launcher for the current platform. On platforms
// without an automation host it fails with ErrUnavailable.
func Default() Launcher {
	return launchPlatform
}

// WithWorkbook launches an application, opens path and runs fn. The
// workbook is closed and the application quit on every return path.
func WithWorkbook(launch Launcher, settings Settings, path string, fn func(Workbook) error) (err error) {
	app, err := launch(settings)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return err
		}
		return fmt.Errorf("%w: launch: %w", ErrAutomation, err)
	}
	defer func() {
		if qerr := app.Quit(); qerr != nil && err == nil {
			err = fmt.Errorf("%w: quit: %w", ErrAutomation, qerr)
		}
	}()

	wb, err := app.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrAutomation, path, err)
	}
	defer func() {
		if cerr := wb.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close: %w", ErrAutomation, cerr)
		}
	}()

	if err := fn(wb); err != nil {
		return fmt.Errorf("%w: %w", ErrAutomation, err)
	}
	return nil
}
