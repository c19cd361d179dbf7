// Package cpu pins executor slots to CPU cores where the platform allows it.
package cpu

import "runtime"

// NumCPU returns the number of logical CPUs available.
func NumCPU() int {
	return runtime.NumCPU()
}

// coreFor maps a slot number onto [0, NumCPU()).
func coreFor(slot int) int {
	n := runtime.NumCPU()
	if slot < 0 {
		slot = -slot
	}
	return slot % n
}
