package repl

import (
	"fmt"
	"strings"

	"memprobe/hexdump"
	"memprobe/process"
	"memprobe/scan"
)

// resolveKind maps a type code to a Kind, falling back to the 32-bit int
// default for unknown codes, like the original tool does.
func resolveKind(code string) scan.Kind {
	kind, _ := scan.KindFromCode(code)
	return kind
}

// formatValue prints a value the way the tool always has: integers get
// their hex rendition alongside.
func formatValue(v scan.Value) string {
	if v.Kind().Integer() {
		return fmt.Sprintf("%s\t( 0x%X )", v.String(), v.Bits())
	}
	return v.String()
}

func (r *REPL) printOffsets(offsets []process.ModuleOffset) {
	for _, off := range offsets {
		fmt.Fprintln(r.out, off)
	}
	fmt.Fprintln(r.out, "Addresses:", len(offsets))
}

func (r *REPL) handleWhere(args []string) {
	if len(args) == 0 {
		return
	}

	// Starting a where chain does a full scan; acknowledge the command
	// before grinding through the target's memory.
	fmt.Fprintln(r.out, "Scanning...")

	if strings.HasPrefix(args[0], "'") {
		r.printOffsets(r.scanner.WhereString(StringNeedle(args)))
		fmt.Fprintln(r.out, "Finished.")
		return
	}

	code := "i"
	if len(args) > 1 {
		code = args[1]
	}
	kind := resolveKind(code)

	v, err := scan.Parse(kind, args[0])
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	r.whereKind = kind
	r.printOffsets(r.scanner.WhereValue(v))
	fmt.Fprintln(r.out, "Finished.")
}

func (r *REPL) handleBecame(args []string) {
	if len(args) == 0 {
		return
	}

	v, err := scan.Parse(r.whereKind, args[0])
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	offsets, err := r.scanner.WhereBecame(v)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	for _, off := range offsets {
		fmt.Fprint(r.out, off, " => ")
		if cur, err := scan.ReadValue(r.scanner.Target(), r.whereKind, r.scanner.Absolute(off)); err == nil {
			fmt.Fprint(r.out, formatValue(cur))
		}
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out, "Addresses:", len(offsets))
}

func (r *REPL) handleChanged(args []string) {
	prev, err := r.scanner.ChainValue()
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	offsets, err := r.scanner.WhereChanged()
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	for _, off := range offsets {
		fmt.Fprint(r.out, off, " : ", prev.String(), "\t->\t")
		if cur, err := scan.ReadValue(r.scanner.Target(), prev.Kind(), r.scanner.Absolute(off)); err == nil {
			fmt.Fprint(r.out, cur.String())
		}
		fmt.Fprintln(r.out)
	}
	fmt.Fprintln(r.out, "Addresses changed:", len(offsets))
}

func (r *REPL) handleScan(args []string) {
	if len(args) == 0 {
		return
	}

	off, err := ParseOffset(args[0])
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	code := "i"
	if len(args) > 1 {
		code = args[1]
	}

	numElements := 1
	if len(args) > 2 {
		numElements, err = ParseCount(args[2])
		if err != nil {
			fmt.Fprintln(r.out, err)
			return
		}
	}
	if numElements == 0 {
		return
	}

	if code == "t" {
		fmt.Fprintln(r.out, scan.ReadPrintableString(r.scanner.Target(), r.scanner.Absolute(off), 256))
		return
	}

	kind := resolveKind(code)
	width := kind.Width()

	if numElements < 0 {
		numElements = -numElements
		off -= process.ModuleOffset(uint64(numElements-1) * uint64(width))
	}

	values, err := scan.ReadArray(r.scanner.Target(), kind, r.scanner.Absolute(off), numElements)
	if err != nil {
		fmt.Fprintln(r.out, "Read unsuccessful.")
		return
	}

	for i, v := range values {
		addr := off + process.ModuleOffset(uint64(i)*uint64(width))
		fmt.Fprint(r.out, addr, " - ", formatValue(v))
		if r.scanner.IsPossiblePointer(v) {
			r.printPointerPreview(process.MemoryAddress(v.Uint()))
		}
		fmt.Fprintln(r.out)
	}
}

// printPointerPreview dereferences a possible pointer value and, when the
// first bytes form a printable prefix, shows them as a string peek.
func (r *REPL) printPointerPreview(ptr process.MemoryAddress) {
	const numElements = 8
	data, err := r.scanner.Target().ReadMemory(ptr, numElements)
	if err != nil {
		// unreadable memory, cannot possibly be a pointer
		return
	}

	fmt.Fprint(r.out, " -> *(")
	printable := true
	var prefix []byte
	for _, b := range data {
		if b == 0 {
			break
		}
		if b < 0x20 || b >= 0x7F {
			printable = false
			break
		}
		prefix = append(prefix, b)
	}
	if printable {
		fmt.Fprint(r.out, string(prefix))
	}
	fmt.Fprint(r.out, ")")
}

func (r *REPL) handlePointers(args []string) {
	if len(args) == 0 {
		return
	}

	off, err := ParseOffset(args[0])
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	code := "i"
	if len(args) > 1 {
		code = args[1]
	}
	kind := resolveKind(code)
	width := uint64(kind.Width())

	rng := 1
	if len(args) > 2 {
		rng, err = ParseCount(args[2])
		if err != nil {
			fmt.Fprintln(r.out, err)
			return
		}
		if rng < 1 {
			rng = 1
		}
	}

	fmt.Fprintln(r.out, "Scanning...")

	start := off - process.ModuleOffset(uint64(rng-1)*width)
	end := off + process.ModuleOffset(width)
	for anchor := start; anchor < end; anchor += process.ModuleOffset(width) {
		fmt.Fprintln(r.out, anchor)
		m := r.scanner.PointersTo(anchor)
		r.printPointerMap(m, anchor, 1, map[process.ModuleOffset]bool{anchor: true})
	}

	fmt.Fprintln(r.out, "Finished.")
}

// printPointerMap renders the reverse index as an indented tree. The seen
// set guards against cycles in the pointer graph, which the map itself
// represents just fine but a naive recursive print would chase forever.
func (r *REPL) printPointerMap(m scan.PointerMap, anchor process.ModuleOffset, level int, seen map[process.ModuleOffset]bool) {
	for _, pointer := range m[anchor] {
		fmt.Fprint(r.out, strings.Repeat("\t", level))
		fmt.Fprintln(r.out, "<-", pointer)
		if !seen[pointer] {
			seen[pointer] = true
			r.printPointerMap(m, pointer, level+1, seen)
		}
	}
}

func (r *REPL) handleDump(args []string) {
	if len(args) == 0 {
		return
	}

	off, err := ParseOffset(args[0])
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	numBytes := 256
	if len(args) > 1 {
		numBytes, err = ParseCount(args[1])
		if err != nil {
			fmt.Fprintln(r.out, err)
			return
		}
	}
	if numBytes <= 0 {
		return
	}

	data, err := r.scanner.Target().ReadMemory(r.scanner.Absolute(off), process.MemorySize(numBytes))
	if err != nil {
		fmt.Fprintln(r.out, "Read unsuccessful.")
		return
	}

	options := hexdump.DefaultOptions()
	options.StartOffset = uint64(off)
	hexdump.DumpToWriter(r.out, data, options)
}
