package procmem

import (
	"bytes"
	"os"
	"testing"
)

func TestCanReadWritePidMem_Self(t *testing.T) {
	pid := os.Getpid()
	if !CanReadPidMem(pid) {
		t.Error("expected to be able to read our own /proc/self/mem")
	}
	if !CanWritePidMem(pid) {
		t.Error("expected to be able to write our own /proc/self/mem")
	}
}

func TestOpenReadOnly_RejectsWrite(t *testing.T) {
	m, err := OpenReadOnly(os.Getpid())
	if err != nil {
		t.Fatalf("OpenReadOnly: %v", err)
	}
	defer m.Close()

	var buf [8]byte
	var target uint64 = 0x1122334455667788
	_ = target // address below

	if _, err := m.Write(buf[:], uintptrOf(&target)); err == nil {
		t.Error("expected write to fail on a read-only handle")
	}
}

func TestReadFull_SelfMemory(t *testing.T) {
	var target [16]byte
	for i := range target {
		target[i] = byte(i + 1)
	}

	m, err := Open(os.Getpid())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	var out [16]byte
	n, err := m.ReadFull(out[:], uintptrOf(&target[0]))
	if err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if n != len(out) {
		t.Fatalf("ReadFull returned %d bytes, want %d", n, len(out))
	}
	if !bytes.Equal(out[:], target[:]) {
		t.Errorf("ReadFull = %v, want %v", out, target)
	}
}

func TestWriteFull_SelfMemory(t *testing.T) {
	var target [8]byte

	m, err := Open(os.Getpid())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	payload := []byte{9, 8, 7, 6, 5, 4, 3, 2}
	if _, err := m.WriteFull(payload, uintptrOf(&target[0])); err != nil {
		t.Fatalf("WriteFull: %v", err)
	}
	if !bytes.Equal(target[:], payload) {
		t.Errorf("target = %v, want %v", target, payload)
	}
}
