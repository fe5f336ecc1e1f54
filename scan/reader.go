package scan

import (
	"strings"

	"memprobe/process"
)

// Typed reads over a process.Target. Addresses here are absolute; the
// Scanner applies the module-offset translation before calling in.

// ReadValue reads one value of kind k at addr. The read is all-or-nothing.
func ReadValue(t process.Target, k Kind, addr process.MemoryAddress) (Value, error) {
	data, err := t.ReadMemory(addr, process.MemorySize(k.Width()))
	if err != nil {
		return Value{}, err
	}
	return FromBytes(k, data), nil
}

// ReadArray reads count consecutive values of kind k starting at addr.
// A short read fails the whole array.
func ReadArray(t process.Target, k Kind, addr process.MemoryAddress, count int) ([]Value, error) {
	width := k.Width()
	data, err := t.ReadMemory(addr, process.MemorySize(uint(count)*width))
	if err != nil {
		return nil, err
	}

	values := make([]Value, count)
	for i := range values {
		values[i] = FromBytes(k, data[uint(i)*width:])
	}
	return values, nil
}

const stringChunkSize = 64

// ReadPrintableString reads at addr in fixed 64-byte chunks, accumulating
// bytes until one is NUL or not printable ASCII, maxBytes have been
// consumed, or a chunk read fails. Best effort: it never errors, it just
// returns what it has.
func ReadPrintableString(t process.Target, addr process.MemoryAddress, maxBytes uint) string {
	var str strings.Builder

	for total := uint(0); total < maxBytes; total += stringChunkSize {
		chunk, err := t.ReadMemory(addr+process.MemoryAddress(total), stringChunkSize)
		if err != nil {
			return str.String()
		}
		for _, b := range chunk {
			if b == 0 || !printableASCII(b) {
				return str.String()
			}
			str.WriteByte(b)
		}
	}

	return str.String()
}

// printableASCII is the locale-independent printable classification.
func printableASCII(b byte) bool {
	return b >= 0x20 && b < 0x7F
}
