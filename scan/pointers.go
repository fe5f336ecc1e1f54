package scan

import (
	"memprobe/process"
)

// PointerMap maps a target offset to the offsets whose raw contents
// interpret as a pointer to it. The map is closed under its values: every
// discovered pointer is itself a key.
type PointerMap map[process.ModuleOffset][]process.ModuleOffset

// PointersTo builds the reverse pointer index anchored at offset a: all
// locations holding the anchor's absolute address, then recursively all
// locations pointing at those. The traversal uses an explicit work list
// with a visited check, so cyclic and self-referential pointer graphs
// terminate and the stack stays flat no matter how deep the chains go.
func (s *Scanner) PointersTo(anchor process.ModuleOffset) PointerMap {
	pointedTo := make(PointerMap)
	work := []process.ModuleOffset{anchor}

	for len(work) > 0 {
		a := work[len(work)-1]
		work = work[:len(work)-1]
		if _, done := pointedTo[a]; done {
			continue
		}

		abs := uint64(s.Absolute(a))
		var needle Value
		if s.target.Is64Bit() {
			needle = NewUint(Uint64, abs)
		} else {
			needle = NewUint(Uint32, abs)
		}

		hits := s.whereValueInternal(needle)
		pointedTo[a] = hits
		work = append(work, hits...)
	}

	return pointedTo
}

// IsPossiblePointer reports whether v could hold a pointer on this target:
// an integer kind exactly one pointer wide.
func (s *Scanner) IsPossiblePointer(v Value) bool {
	return v.Kind().Integer() && int(v.Kind().Width()) == s.target.PointerSize()
}
