package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memprobe/process"
	"memprobe/process/memory_map"
)

const testModuleBase = 0x140000000

func TestWhereValueFindsAndBecameNarrows(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 0x1000, memory_map.ProtectReadWrite)
	rw.putUint32(0x400, 100)

	s := New(target)
	offsets := s.WhereValue(NewInt(Int32, 100))
	require.Equal(t, []process.ModuleOffset{0x400}, offsets)

	// every returned offset still reads back equal
	for _, off := range offsets {
		got, err := ReadValue(target, Int32, s.Absolute(off))
		require.NoError(t, err)
		assert.True(t, Equal(got, NewInt(Int32, 100)))
	}

	// the target mutates; the narrowed set must be empty
	rw.putUint32(0x400, 101)
	narrowed, err := s.WhereBecame(NewInt(Int32, 100))
	require.NoError(t, err)
	assert.Empty(t, narrowed)
}

func TestWhereChangedKeepsOnlyMutatedOffsets(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 0x1000, memory_map.ProtectReadWrite)
	rw.putUint32(0x400, 100)
	rw.putUint32(0x800, 100)

	s := New(target)
	offsets := s.WhereValue(NewInt(Int32, 100))
	require.Equal(t, []process.ModuleOffset{0x400, 0x800}, offsets)

	rw.putUint32(0x400, 101)
	changed, err := s.WhereChanged()
	require.NoError(t, err)
	assert.Equal(t, []process.ModuleOffset{0x400}, changed)

	// the last value survives changed, so a later became still narrows
	still, err := s.WhereBecame(NewInt(Int32, 101))
	require.NoError(t, err)
	assert.Equal(t, []process.ModuleOffset{0x400}, still)
}

func TestWhereBecameResultIsSubsetOfChain(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 0x1000, memory_map.ProtectReadWrite)
	for _, off := range []uint64{0x10, 0x40, 0x100, 0x200} {
		rw.putUint32(off, 7)
	}

	s := New(target)
	before := s.WhereValue(NewInt(Int32, 7))
	require.Len(t, before, 4)

	rw.putUint32(0x40, 8)
	after, err := s.WhereBecame(NewInt(Int32, 7))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(after), len(before))
	for _, off := range after {
		assert.Contains(t, before, off)
	}
}

func TestWhereStringFindsByteOffsets(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 0x2000, memory_map.ProtectReadWrite)
	copy(rw.data[0x1000:], "Hello")

	s := New(target)
	offsets := s.WhereString("Hello")
	assert.Equal(t, []process.ModuleOffset{0x1000}, offsets)
}

func TestWhereStringIsPositionInvariant(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 64, memory_map.ProtectReadWrite)
	// adjacent occurrences at odd, unaligned positions
	copy(rw.data[3:], "abab")
	copy(rw.data[9:], "ab")

	s := New(target)
	offsets := s.WhereString("ab")
	assert.Equal(t, []process.ModuleOffset{3, 5, 9}, offsets)
}

func TestWhereStringLeavesChainUntouched(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 0x1000, memory_map.ProtectReadWrite)
	rw.putUint32(0x400, 100)
	copy(rw.data[0x500:], "needle")

	s := New(target)
	s.WhereValue(NewInt(Int32, 100))
	s.WhereString("needle")

	offsets, err := s.WhereBecame(NewInt(Int32, 100))
	require.NoError(t, err)
	assert.Equal(t, []process.ModuleOffset{0x400}, offsets)
}

func TestWhereValueFloatTolerance(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 0x3000, memory_map.ProtectReadWrite)
	rw.putFloat32(0x2000, 3.14159)

	s := New(target)
	v, err := Parse(Float32, "3.1416")
	require.NoError(t, err)
	offsets := s.WhereValue(v)
	assert.Equal(t, []process.ModuleOffset{0x2000}, offsets)
}

func TestWhereValueScansReadOnlyAndReadWriteRegions(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	ro := target.addRegion(testModuleBase, 0x100, memory_map.ProtectReadOnly)
	rw := target.addRegion(testModuleBase+0x10000, 0x100, memory_map.ProtectReadWrite)
	ro.putUint32(0x20, 555)
	rw.putUint32(0x40, 555)

	s := New(target)
	offsets := s.WhereValue(NewInt(Int32, 555))
	assert.Equal(t, []process.ModuleOffset{0x20, 0x10040}, offsets)
}

func TestWhereValueStridesByElementWidth(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 64, memory_map.ProtectReadWrite)
	// value planted off-stride: invisible to an aligned int32 scan
	rw.putUint32(6, 900)

	s := New(target)
	assert.Empty(t, s.WhereValue(NewInt(Int32, 900)))
}

func TestNarrowingWithoutChainFails(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	s := New(target)

	_, err := s.WhereBecame(NewInt(Int32, 1))
	assert.ErrorIs(t, err, ErrEmptyChain)

	_, err = s.WhereChanged()
	assert.ErrorIs(t, err, ErrEmptyChain)

	_, err = s.ChainValue()
	assert.ErrorIs(t, err, ErrEmptyChain)
}

func TestBecameRejectsKindMismatch(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	target.addRegion(testModuleBase, 0x100, memory_map.ProtectReadWrite)

	s := New(target)
	s.WhereValue(NewInt(Int32, 1))

	_, err := s.WhereBecame(NewInt(Int64, 1))
	assert.ErrorIs(t, err, ErrChainTypeMismatch)
}

func TestWhereValueResetsChainKind(t *testing.T) {
	target := newFakeTarget(true, testModuleBase)
	rw := target.addRegion(testModuleBase, 0x100, memory_map.ProtectReadWrite)
	rw.putUint64(0x40, 12)

	s := New(target)
	s.WhereValue(NewInt(Int32, 99))
	s.WhereValue(NewInt(Int64, 12))

	offsets, err := s.WhereBecame(NewInt(Int64, 12))
	require.NoError(t, err)
	assert.Equal(t, []process.ModuleOffset{0x40}, offsets)
}
