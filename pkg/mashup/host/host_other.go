//go:build !windows

package host

import (
	"fmt"
	"runtime"
)

func launchPlatform(Settings) (Application, error) {
	return nil, fmt.Errorf("%w on %s", ErrUnavailable, runtime.GOOS)
}
