// Package scan implements the typed cross-process memory search engine: the
// scalar value model, full-memory and narrowing scans over the target's
// committed regions, and the recursive pointer reverse index.
package scan

import (
	"bytes"
	"errors"
	"fmt"

	"memprobe/process"
	"memprobe/process/memory_map"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	// ErrEmptyChain is returned by the narrowing verbs when no full scan
	// has armed the where-chain yet.
	ErrEmptyChain = errors.New("no active where chain")

	// ErrChainTypeMismatch is returned when a narrowing value's kind does
	// not match the chain's current kind.
	ErrChainTypeMismatch = errors.New("value kind does not match the where chain")
)

// whereChain is the persistent candidate set refined across successive
// observations of the target: the surviving offsets plus the last value
// they were matched against.
type whereChain struct {
	offsets []process.ModuleOffset
	last    Value
	armed   bool
}

// Scanner drives typed searches over one attached target and owns the
// where-chain. All offsets on the public surface are module-relative.
type Scanner struct {
	target process.Target
	log    *logger.Logger
	chain  whereChain
}

// New creates a Scanner over an attached target.
func New(target process.Target) *Scanner {
	return &Scanner{
		target: target,
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorTeal, coloransi.ColorOrange, fmt.Sprintf("scan-%d", target.PID()))),
	}
}

// Target returns the attached target.
func (s *Scanner) Target() process.Target {
	return s.target
}

// Absolute translates a module-relative offset to an absolute address.
func (s *Scanner) Absolute(off process.ModuleOffset) process.MemoryAddress {
	return s.target.ModuleBase() + process.MemoryAddress(off)
}

// allReadableRegions returns the read-only regions captured at attach time
// followed by a fresh enumeration of the read/write regions. The RW
// re-query keeps candidate sets current when the target's allocator moves.
func (s *Scanner) allReadableRegions() []memory_map.Region {
	all := s.target.ReadOnlyRegions()
	rw, err := s.target.Regions(memory_map.ProtectReadWrite)
	if err != nil {
		s.log.Warn("Failed to enumerate writable regions: ", err)
		return all
	}
	return append(all, rw...)
}

// whereValueInternal runs a full typed scan without touching the chain.
// Each region is read in one bulk request and strided by the element width
// from the region base; regions that fail to read are skipped.
func (s *Scanner) whereValueInternal(v Value) []process.ModuleOffset {
	width := uint64(v.Kind().Width())
	base := uint64(s.target.ModuleBase())

	var offsets []process.ModuleOffset
	for _, region := range s.allReadableRegions() {
		n := uint64(region.Size) / width
		if n == 0 {
			continue
		}

		data, err := s.target.ReadMemory(process.MemoryAddress(region.Base), process.MemorySize(n*width))
		if err != nil {
			s.log.Debugln("Skipping unreadable region at", fmt.Sprintf("0x%X", region.Base), err)
			continue
		}

		for i := uint64(0); i < n; i++ {
			if Equal(FromBytes(v.Kind(), data[i*width:]), v) {
				offsets = append(offsets, process.ModuleOffset(region.Base+i*width-base))
			}
		}
	}
	return offsets
}

// WhereValue scans every readable region for v and resets the where-chain
// to the matching offsets.
func (s *Scanner) WhereValue(v Value) []process.ModuleOffset {
	offsets := s.whereValueInternal(v)
	s.chain = whereChain{offsets: offsets, last: v, armed: true}
	s.log.Infoln("Full scan complete, found", len(offsets), "addresses")
	return offsets
}

// WhereString scans every readable region for the needle bytes at every
// byte offset. String search is out-of-band: the chain is untouched.
func (s *Scanner) WhereString(needle string) []process.ModuleOffset {
	pattern := []byte(needle)
	base := uint64(s.target.ModuleBase())

	var offsets []process.ModuleOffset
	if len(pattern) == 0 {
		return offsets
	}

	for _, region := range s.allReadableRegions() {
		data, err := s.target.ReadMemory(process.MemoryAddress(region.Base), process.MemorySize(region.Size))
		if err != nil {
			s.log.Debugln("Skipping unreadable region at", fmt.Sprintf("0x%X", region.Base), err)
			continue
		}

		for from := 0; from+len(pattern) <= len(data); {
			idx := bytes.Index(data[from:], pattern)
			if idx < 0 {
				break
			}
			offsets = append(offsets, process.ModuleOffset(region.Base+uint64(from+idx)-base))
			from += idx + 1
		}
	}

	s.log.Infoln("String scan complete, found", len(offsets), "addresses")
	return offsets
}

// WhereBecame re-reads every offset in the chain and keeps those whose
// current value equals v. Offsets that fail to read are dropped. The chain
// is replaced with the survivors and v becomes its last value.
func (s *Scanner) WhereBecame(v Value) ([]process.ModuleOffset, error) {
	if !s.chain.armed {
		return nil, ErrEmptyChain
	}
	if v.Kind() != s.chain.last.Kind() {
		return nil, ErrChainTypeMismatch
	}

	kept := make([]process.ModuleOffset, 0, len(s.chain.offsets))
	for _, off := range s.chain.offsets {
		cur, err := ReadValue(s.target, v.Kind(), s.Absolute(off))
		if err != nil {
			continue
		}
		if Equal(cur, v) {
			kept = append(kept, off)
		}
	}

	s.chain.offsets = kept
	s.chain.last = v
	return kept, nil
}

// WhereChanged re-reads every offset in the chain and keeps those whose
// current value no longer equals the chain's last value. The last value is
// deliberately left in place, so a later became continues from the changed
// set even though the help text calls this the end of the chain.
func (s *Scanner) WhereChanged() ([]process.ModuleOffset, error) {
	if !s.chain.armed {
		return nil, ErrEmptyChain
	}

	kind := s.chain.last.Kind()
	kept := make([]process.ModuleOffset, 0, len(s.chain.offsets))
	for _, off := range s.chain.offsets {
		cur, err := ReadValue(s.target, kind, s.Absolute(off))
		if err != nil {
			continue
		}
		if !Equal(cur, s.chain.last) {
			kept = append(kept, off)
		}
	}

	s.chain.offsets = kept
	return kept, nil
}

// ChainValue returns the chain's last matched value.
func (s *Scanner) ChainValue() (Value, error) {
	if !s.chain.armed {
		return Value{}, ErrEmptyChain
	}
	return s.chain.last, nil
}
