package tracer

import "encoding/binary"

// hostEndian packs/unpacks machine words for PEEKTEXT/POKETEXT. x86 and
// x86-64, the only architectures this tracer supports (see arch_*.go), are
// both little-endian.
var hostEndian = binary.LittleEndian
