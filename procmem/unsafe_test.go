package procmem

import "unsafe"

// uintptrOf returns the address of a variable in this process's own
// memory, for exercising Read/Write against /proc/self/mem.
func uintptrOf[T any](v *T) uintptr {
	return uintptr(unsafe.Pointer(v))
}
