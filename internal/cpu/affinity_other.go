//go:build !linux && !darwin && !windows

package cpu

import "runtime"

// Pin locks the goroutine to an OS thread; pinning is unsupported here.
func Pin(slot int) (release func(), core int, err error) {
	runtime.LockOSThread()
	return runtime.UnlockOSThread, -1, nil
}
