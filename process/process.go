// Package process defines the platform-neutral view of an attached target
// process: address types, the Target interface implemented by the platform
// packages, and the error values shared across the module.
package process

import (
	"errors"

	"memprobe/process/memory_map"
)

var (
	// ErrProcessNotFound is returned when no top-level window matches the
	// requested title.
	ErrProcessNotFound = errors.New("could not find process (is it running?)")

	// ErrOpenFailed is returned when the owning process could not be opened
	// for reading.
	ErrOpenFailed = errors.New("could not open process")

	// ErrBaseAddressNotFound is returned when no loaded module matches the
	// process name, leaving the module base unknown.
	ErrBaseAddressNotFound = errors.New("could not locate main module base address")

	// ErrProcessNotOpen is returned when an operation requiring an open
	// process is attempted after the handle has been released.
	ErrProcessNotOpen = errors.New("process not open")

	// ErrShortRead is returned when fewer bytes than requested could be
	// read. Reads are all-or-nothing; callers never see truncated buffers.
	ErrShortRead = errors.New("short read")
)

// Target is one attached process. A Target is the sole owner of the
// underlying OS handle; Close releases it exactly once, after which
// non-empty ReadMemory calls and Regions fail with ErrProcessNotOpen.
type Target interface {
	// Name returns the base name of the process executable.
	Name() string

	// PID returns the process ID.
	PID() uint32

	// Is64Bit reports whether the target runs a 64-bit image.
	Is64Bit() bool

	// PointerSize returns the target's pointer width in bytes (4 or 8).
	PointerSize() int

	// ModuleBase returns the load address of the main executable module.
	ModuleBase() MemoryAddress

	// ReadMemory reads exactly size bytes at addr. A partial read is an
	// error, never a truncated buffer.
	ReadMemory(addr MemoryAddress, size MemorySize) ([]byte, error)

	// Regions enumerates the committed regions whose protection exactly
	// matches protect, in ascending base order.
	Regions(protect memory_map.Protection) ([]memory_map.Region, error)

	// ReadOnlyRegions returns the read-only regions captured once at
	// attach time. The slice is never mutated after attach.
	ReadOnlyRegions() []memory_map.Region

	// Close releases the process handle.
	Close() error
}
