// Package hexdump renders a byte window as colorized hex plus ASCII lines
// for the dump command.
package hexdump

import (
	"fmt"
	"io"
	"strings"

	"github.com/Moonlight-Companies/gologger/coloransi"
)

// Options control the dump layout and colors.
type Options struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// StartOffset is the address printed for the first byte
	StartOffset uint64

	// OffsetWidth is the width of the offset column in hex digits
	OffsetWidth int

	OffsetColor       coloransi.ColorCode
	HexColor          coloransi.ColorCode
	ASCIIColor        coloransi.ColorCode
	ZeroColor         coloransi.ColorCode
	NonPrintableColor coloransi.ColorCode
}

// DefaultOptions returns the default dump options.
func DefaultOptions() Options {
	return Options{
		BytesPerLine:      16,
		OffsetWidth:       8,
		OffsetColor:       coloransi.Cyan,
		HexColor:          coloransi.Green,
		ASCIIColor:        coloransi.White,
		ZeroColor:         coloransi.BrightBlack,
		NonPrintableColor: coloransi.BrightBlack,
	}
}

// Dump renders data with the given options and returns the result.
func Dump(data []byte, options Options) string {
	var sb strings.Builder
	DumpToWriter(&sb, data, options)
	return sb.String()
}

// DumpToWriter renders data line by line into writer.
func DumpToWriter(writer io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}

	for start := 0; start < len(data); start += options.BytesPerLine {
		end := start + options.BytesPerLine
		if end > len(data) {
			end = len(data)
		}
		formatLine(writer, data[start:end], options.StartOffset+uint64(start), options)
	}
}

func formatLine(writer io.Writer, line []byte, offset uint64, options Options) {
	offsetStr := fmt.Sprintf("%0*X", options.OffsetWidth, offset)
	fmt.Fprint(writer, coloransi.Foreground(options.OffsetColor, offsetStr), "  ")

	for i := 0; i < options.BytesPerLine; i++ {
		if i < len(line) {
			color := options.HexColor
			if line[i] == 0 {
				color = options.ZeroColor
			}
			fmt.Fprint(writer, coloransi.Foreground(color, fmt.Sprintf("%02X", line[i])), " ")
		} else {
			// keep the ASCII column aligned on the short final line
			fmt.Fprint(writer, "   ")
		}
	}

	fmt.Fprint(writer, " | ")
	for _, b := range line {
		switch {
		case b == 0:
			fmt.Fprint(writer, coloransi.Foreground(options.ZeroColor, "."))
		case b < 0x20 || b >= 0x7F:
			fmt.Fprint(writer, coloransi.Foreground(options.NonPrintableColor, "."))
		default:
			fmt.Fprint(writer, coloransi.Foreground(options.ASCIIColor, string(rune(b))))
		}
	}
	fmt.Fprintln(writer)
}
