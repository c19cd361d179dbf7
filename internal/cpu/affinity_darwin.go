//go:build darwin

package cpu

import (
	"runtime"
)

// Pin locks the goroutine to an OS thread.
// CPU pinning is not available on macOS, so core is always -1.
func Pin(slot int) (release func(), core int, err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, -1, nil
}
