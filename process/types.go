package process

import (
	"fmt"
)

// MemoryAddress is an absolute address in the target's address space.
type MemoryAddress uint64

func (a MemoryAddress) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// MemorySize represents a size of memory in bytes.
type MemorySize uint

func (s MemorySize) String() string {
	return fmt.Sprintf("%d bytes", uint(s))
}

// ModuleOffset is an address expressed relative to the base address of the
// target's main executable module. Offsets stay meaningful when ASLR moves
// the module between attach sessions.
type ModuleOffset uint64

func (o ModuleOffset) String() string {
	return fmt.Sprintf("0x%X", uint64(o))
}
