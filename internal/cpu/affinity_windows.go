//go:build windows

package cpu

import (
	"runtime"
	"syscall"
)

var (
	kernel32              = syscall.NewLazyDLL("kernel32.dll")
	setThreadAffinityMask = kernel32.NewProc("SetThreadAffinityMask")
	getCurrentThread      = kernel32.NewProc("GetCurrentThread")
)

// pinToCore sets the affinity mask of the current OS thread to the core
// assigned to slot. Must be called after runtime.LockOSThread().
func pinToCore(slot int) (int, error) {
	core := coreFor(slot)
	handle, _, _ := getCurrentThread.Call()

	// Bit N = CPU N
	prevMask, _, err := setThreadAffinityMask.Call(handle, uintptr(1)<<core)
	if prevMask == 0 {
		return -1, err
	}
	return core, nil
}

// Pin locks the calling goroutine to an OS thread and pins that thread to
// the core assigned to slot.
func Pin(slot int) (release func(), core int, err error) {
	runtime.LockOSThread()
	core, err = pinToCore(slot)
	return runtime.UnlockOSThread, core, err
}
