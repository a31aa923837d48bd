//go:build windows

package host

import (
	"errors"
	"runtime"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

const (
	// xlConnectionTypeOLEDB is XlConnectionType.xlConnectionTypeOLEDB.
	xlConnectionTypeOLEDB = 1
	// sFalse is returned by CoInitializeEx when COM is already initialized
	// on the calling thread.
	sFalse = 1
)

type excelApp struct {
	disp *ole.IDispatch
}

type excelWorkbook struct {
	app  *ole.IDispatch
	disp *ole.IDispatch
}

// launchPlatform starts Excel through COM. The calling goroutine stays
// locked to its OS thread until Quit, as COM apartments are per thread.
func launchPlatform(s Settings) (Application, error) {
	runtime.LockOSThread()
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		var oleErr *ole.OleError
		if !errors.As(err, &oleErr) || oleErr.Code() != sFalse {
			runtime.UnlockOSThread()
			return nil, err
		}
	}

	unknown, err := oleutil.CreateObject("Excel.Application")
	if err != nil {
		release()
		return nil, err
	}
	disp, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		release()
		return nil, err
	}

	app := &excelApp{disp: disp}
	if _, err := oleutil.PutProperty(disp, "Visible", s.Visible); err != nil {
		app.Quit()
		return nil, err
	}
	if _, err := oleutil.PutProperty(disp, "DisplayAlerts", false); err != nil {
		app.Quit()
		return nil, err
	}
	return app, nil
}

func release() {
	ole.CoUninitialize()
	runtime.UnlockOSThread()
}

func (a *excelApp) Open(path string) (Workbook, error) {
	books, err := oleutil.GetProperty(a.disp, "Workbooks")
	if err != nil {
		return nil, err
	}
	defer books.Clear()

	wb, err := oleutil.CallMethod(books.ToIDispatch(), "Open", path)
	if err != nil {
		return nil, err
	}
	return &excelWorkbook{app: a.disp, disp: wb.ToIDispatch()}, nil
}

func (a *excelApp) Quit() error {
	defer release()
	_, err := oleutil.CallMethod(a.disp, "Quit")
	a.disp.Release()
	return err
}

func (w *excelWorkbook) DisableBackgroundRefresh() (int, error) {
	conns, err := oleutil.GetProperty(w.disp, "Connections")
	if err != nil {
		return 0, err
	}
	defer conns.Clear()

	count, err := oleutil.GetProperty(conns.ToIDispatch(), "Count")
	if err != nil {
		return 0, err
	}

	changed := 0
	for i := 1; i <= int(count.Val); i++ {
		ok, err := disableConnection(conns.ToIDispatch(), i)
		if err != nil {
			return changed, err
		}
		if ok {
			changed++
		}
	}
	return changed, nil
}

func disableConnection(conns *ole.IDispatch, index int) (bool, error) {
	item, err := oleutil.CallMethod(conns, "Item", index)
	if err != nil {
		return false, err
	}
	defer item.Clear()

	typ, err := oleutil.GetProperty(item.ToIDispatch(), "Type")
	if err != nil {
		return false, err
	}
	if typ.Val != xlConnectionTypeOLEDB {
		return false, nil
	}

	oledb, err := oleutil.GetProperty(item.ToIDispatch(), "OLEDBConnection")
	if err != nil {
		return false, err
	}
	defer oledb.Clear()

	if _, err := oleutil.PutProperty(oledb.ToIDispatch(), "BackgroundQuery", false); err != nil {
		return false, err
	}
	return true, nil
}

func (w *excelWorkbook) RefreshAll() error {
	_, err := oleutil.CallMethod(w.disp, "RefreshAll")
	return err
}

func (w *excelWorkbook) WaitForAsyncQueries() error {
	_, err := oleutil.CallMethod(w.app, "CalculateUntilAsyncQueriesDone")
	return err
}

func (w *excelWorkbook) Save() error {
	_, err := oleutil.CallMethod(w.disp, "Save")
	return err
}

func (w *excelWorkbook) Close() error {
	_, err := oleutil.CallMethod(w.disp, "Close", false)
	w.disp.Release()
	return err
}
