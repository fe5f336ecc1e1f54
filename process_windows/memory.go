//go:build windows

package process_windows

import (
	"fmt"
	"unsafe"

	"memprobe/process"
	"memprobe/process/memory_map"

	"golang.org/x/sys/windows"
)

// ReadMemory reads exactly size bytes at addr via ReadProcessMemory.
// A short read is reported as an error, never as a truncated buffer.
func (p *WindowsProcess) ReadMemory(addr process.MemoryAddress, size process.MemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	err := windows.ReadProcessMemory(handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead)
	if err != nil {
		return nil, fmt.Errorf("ReadProcessMemory failed at %s: %w", addr, err)
	}
	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("%w: expected %d, got %d", process.ErrShortRead, size, bytesRead)
	}

	return buf, nil
}

// Regions walks the target's address space with VirtualQueryEx, advancing by
// each region's reported size, and keeps committed regions whose protection
// exactly matches protect. Guard and unmapped regions never match.
func (p *WindowsProcess) Regions(protect memory_map.Protection) ([]memory_map.Region, error) {
	p.mu.Lock()
	handle := p.handle
	p.mu.Unlock()

	if handle == 0 {
		return nil, process.ErrProcessNotOpen
	}

	var regions []memory_map.Region
	var mbi windows.MemoryBasicInformation
	var addr uintptr

	for {
		err := windows.VirtualQueryEx(handle, addr, &mbi, unsafe.Sizeof(mbi))
		if err != nil {
			break
		}

		if mbi.State == windows.MEM_COMMIT && mbi.Protect == uint32(protect) {
			regions = append(regions, memory_map.Region{
				Base: uint64(mbi.BaseAddress),
				Size: uint(mbi.RegionSize),
			})
		}

		next := mbi.BaseAddress + mbi.RegionSize
		if next <= addr {
			break
		}
		addr = next
	}

	return regions, nil
}
