package host

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls   []string
	failOn  string
	openErr error
}

func (r *recorder) fail(call string) error {
	r.calls = append(r.calls, call)
	if call == r.failOn {
		return errors.New(call + " exploded")
	}
	return nil
}

type fakeApp struct{ r *recorder }

func (a fakeApp) Open(path string) (Workbook, error) {
	a.r.calls = append(a.r.calls, "open "+path)
	if a.r.openErr != nil {
		return nil, a.r.openErr
	}
	return fakeWorkbook{a.r}, nil
}

func (a fakeApp) Quit() error { return a.r.fail("quit") }

type fakeWorkbook struct{ r *recorder }

func (w fakeWorkbook) DisableBackgroundRefresh() (int, error) {
	return 2, w.r.fail("disable")
}
func (w fakeWorkbook) RefreshAll() error          { return w.r.fail("refresh") }
func (w fakeWorkbook) WaitForAsyncQueries() error { return w.r.fail("wait") }
func (w fakeWorkbook) Save() error                { return w.r.fail("save") }
func (w fakeWorkbook) Close() error               { return w.r.fail("close") }

func launcher(r *recorder) Launcher {
	return func(s Settings) (Application, error) {
		r.calls = append(r.calls, "launch")
		return fakeApp{r}, nil
	}
}

func refresh(wb Workbook) error {
	if _, err := wb.DisableBackgroundRefresh(); err != nil {
		return err
	}
	if err := wb.RefreshAll(); err != nil {
		return err
	}
	return wb.Save()
}

func TestWithWorkbook(t *testing.T) {
	r := &recorder{}
	err := WithWorkbook(launcher(r), Settings{}, `C:\book.xlsx`, refresh)
	require.NoError(t, err)
	assert.Equal(t, []string{"launch", `open C:\book.xlsx`, "disable", "refresh", "save", "close", "quit"}, r.calls)
}

func TestWithWorkbookCleansUpOnFailure(t *testing.T) {
	r := &recorder{failOn: "refresh"}
	err := WithWorkbook(launcher(r), Settings{}, "book.xlsx", refresh)
	require.ErrorIs(t, err, ErrAutomation)
	assert.Contains(t, err.Error(), "refresh exploded")
	assert.Equal(t, []string{"launch", "open book.xlsx", "disable", "refresh", "close", "quit"}, r.calls)
}

func TestWithWorkbookOpenFailure(t *testing.T) {
	r := &recorder{openErr: errors.New("locked")}
	err := WithWorkbook(launcher(r), Settings{}, "book.xlsx", refresh)
	require.ErrorIs(t, err, ErrAutomation)
	assert.Equal(t, []string{"launch", "open book.xlsx", "quit"}, r.calls)
}

func TestWithWorkbookReportsCleanupFailure(t *testing.T) {
	r := &recorder{failOn: "close"}
	err := WithWorkbook(launcher(r), Settings{}, "book.xlsx", refresh)
	require.ErrorIs(t, err, ErrAutomation)
	assert.Contains(t, err.Error(), "close")
	assert.Equal(t, "quit", r.calls[len(r.calls)-1])
}

func TestWithWorkbookLaunchFailure(t *testing.T) {
	called := false
	unavailable := func(Settings) (Application, error) { return nil, ErrUnavailable }
	err := WithWorkbook(unavailable, Settings{}, "book.xlsx", func(Workbook) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrAutomation)
	assert.False(t, called)
}
