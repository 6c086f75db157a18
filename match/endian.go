package match

import "encoding/binary"

// hostEndianPutUint64 packs a word read via ptrace into bytes in the
// same little-endian layout the tracer package uses internally.
func hostEndianPutUint64(buf []byte, v uint64) {
	binary.LittleEndian.PutUint64(buf, v)
}
