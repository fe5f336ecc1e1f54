package scan

import (
	"encoding/binary"
	"fmt"
	"math"

	"memprobe/process"
	"memprobe/process/memory_map"
)

// fakeRegion is one synthetic committed region backed by a byte slice.
type fakeRegion struct {
	base    uint64
	data    []byte
	protect memory_map.Protection
}

// fakeTarget implements process.Target over an in-memory byte map so the
// engine can be exercised without a live process.
type fakeTarget struct {
	name    string
	pid     uint32
	is64    bool
	base    uint64
	regions []*fakeRegion
}

func newFakeTarget(is64 bool, base uint64) *fakeTarget {
	return &fakeTarget{name: "fake.exe", pid: 4242, is64: is64, base: base}
}

func (t *fakeTarget) addRegion(base uint64, size uint, protect memory_map.Protection) *fakeRegion {
	r := &fakeRegion{base: base, data: make([]byte, size), protect: protect}
	t.regions = append(t.regions, r)
	return r
}

func (r *fakeRegion) putUint32(off uint64, v uint32) {
	binary.LittleEndian.PutUint32(r.data[off:], v)
}

func (r *fakeRegion) putUint64(off uint64, v uint64) {
	binary.LittleEndian.PutUint64(r.data[off:], v)
}

func (r *fakeRegion) putFloat32(off uint64, v float32) {
	r.putUint32(off, math.Float32bits(v))
}

func (t *fakeTarget) Name() string { return t.name }

func (t *fakeTarget) PID() uint32 { return t.pid }

func (t *fakeTarget) Is64Bit() bool { return t.is64 }

func (t *fakeTarget) PointerSize() int {
	if t.is64 {
		return 8
	}
	return 4
}

func (t *fakeTarget) ModuleBase() process.MemoryAddress {
	return process.MemoryAddress(t.base)
}

func (t *fakeTarget) ReadMemory(addr process.MemoryAddress, size process.MemorySize) ([]byte, error) {
	a := uint64(addr)
	for _, r := range t.regions {
		end := r.base + uint64(len(r.data))
		if a >= r.base && a+uint64(size) <= end {
			out := make([]byte, size)
			copy(out, r.data[a-r.base:])
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: no region covers %s", process.ErrShortRead, addr)
}

func (t *fakeTarget) Regions(protect memory_map.Protection) ([]memory_map.Region, error) {
	var out []memory_map.Region
	for _, r := range t.regions {
		if r.protect == protect {
			out = append(out, memory_map.Region{Base: r.base, Size: uint(len(r.data))})
		}
	}
	return out, nil
}

func (t *fakeTarget) ReadOnlyRegions() []memory_map.Region {
	ro, _ := t.Regions(memory_map.ProtectReadOnly)
	return ro
}

func (t *fakeTarget) Close() error { return nil }
