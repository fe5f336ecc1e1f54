// Package memory_map describes the target's virtual address space as a list
// of committed regions filtered by protection class.
package memory_map

import (
	"fmt"
	"sort"
)

// Protection classifies a region by its exact page-protection value. The
// numeric values match the Windows PAGE_* constants so the platform layer
// can pass them straight to the region walk.
type Protection uint32

const (
	// ProtectReadOnly selects PAGE_READONLY regions.
	ProtectReadOnly Protection = 0x02

	// ProtectReadWrite selects PAGE_READWRITE regions.
	ProtectReadWrite Protection = 0x04
)

// Region is one contiguous run of the target's address space with uniform
// state and protection, the half-open interval [Base, Base+Size).
type Region struct {
	Base uint64 // starting address of the region
	Size uint   // size of the region in bytes
}

func (r Region) String() string {
	return fmt.Sprintf("Base: 0x%X, Size: %d", r.Base, r.Size)
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Base + uint64(r.Size)
}

// Contains reports whether addr falls inside the region.
func (r Region) Contains(addr uint64) bool {
	return addr >= r.Base && addr < r.End()
}

// ContainsRange reports whether other lies entirely inside the region.
// The start must be strictly inside; the end may touch the region end.
func (r Region) ContainsRange(other Region) bool {
	startsInRange := other.Base >= r.Base && other.Base < r.End()
	endsInRange := other.End() <= r.End()
	return startsInRange && endsInRange
}

// AddressAt returns the absolute address offset bytes into the region.
func (r Region) AddressAt(offset uint) uint64 {
	return r.Base + uint64(offset)
}

// FindRegion returns the region containing addr, or nil. The slice must be
// sorted by ascending base address.
func FindRegion(addr uint64, regions []Region) *Region {
	i := sort.Search(len(regions), func(i int) bool {
		return regions[i].End() > addr
	})
	if i < len(regions) && regions[i].Base <= addr {
		return &regions[i]
	}
	return nil
}

// IsValidAddress reports whether addr falls inside any of the regions.
func IsValidAddress(addr uint64, regions []Region) bool {
	for _, r := range regions {
		if r.Contains(addr) {
			return true
		}
	}
	return false
}
