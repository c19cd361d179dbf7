//go:build linux

package cpu

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// pinToCore pins the current OS thread to a specific CPU core.
// Must be called after runtime.LockOSThread().
//
// Slots beyond the number of CPUs wrap around.
func pinToCore(slot int) (int, error) {
	core := coreFor(slot)

	var mask unix.CPUSet
	mask.Zero()
	mask.Set(core)

	if err := unix.SchedSetaffinity(0, &mask); err != nil { // 0 = current thread
		return -1, err
	}
	return core, nil
}

// Pin locks the calling goroutine to an OS thread and pins that thread to
// the core assigned to slot. The returned release func unlocks the thread;
// it must be called from the same goroutine.
//
// Pinning failures are reported through core = -1 and a non-nil error, but
// the goroutine stays locked so release is always safe to defer.
func Pin(slot int) (release func(), core int, err error) {
	runtime.LockOSThread()
	core, err = pinToCore(slot)
	return runtime.UnlockOSThread, core, err
}
