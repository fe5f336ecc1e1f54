// Package repl implements the line-oriented operator loop over the scan
// engine: tokenizing, command dispatch, and output formatting. It consumes
// the Scanner's public operations and contributes no scan logic of its own.
package repl

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"memprobe/scan"
)

// REPL holds the per-session command state: the scanner and the active
// where type, initialized to the 32-bit int default.
type REPL struct {
	scanner   *scan.Scanner
	whereKind scan.Kind
	out       io.Writer
}

// New creates a REPL over an attached scanner writing to stdout.
func New(scanner *scan.Scanner) *REPL {
	return &REPL{
		scanner:   scanner,
		whereKind: scan.Int32,
		out:       os.Stdout,
	}
}

// NewWithOutput creates a REPL writing to out. Used by tests.
func NewWithOutput(scanner *scan.Scanner, out io.Writer) *REPL {
	r := New(scanner)
	r.out = out
	return r
}

// Run prints the intro banner and drives the line loop until quit or EOF.
func (r *REPL) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     os.ExpandEnv("$HOME/.memprobe_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer rl.Close()

	r.printIntro()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("readline error: %w", err)
		}

		if !r.Dispatch(line) {
			return nil
		}
	}
}

// Dispatch runs one command line. It returns false when the REPL should
// exit. Blank lines are ignored; unknown verbs print a message.
func (r *REPL) Dispatch(line string) bool {
	args := Tokenize(line)
	if len(args) == 0 {
		return true
	}

	verb, rest := args[0], args[1:]
	switch verb {
	case "quit", "q":
		return false
	case "where", "w":
		r.handleWhere(rest)
	case "became", "b":
		r.handleBecame(rest)
	case "changed", "c":
		r.handleChanged(rest)
	case "scan", "s":
		r.handleScan(rest)
	case "pointers", "p":
		r.handlePointers(rest)
	case "dump", "x":
		r.handleDump(rest)
	case "help", "h":
		r.printHelp()
	default:
		fmt.Fprint(r.out, "Invalid command\n\n")
	}
	return true
}

func (r *REPL) printIntro() {
	target := r.scanner.Target()
	fmt.Fprintln(r.out, "Found:")
	fmt.Fprintln(r.out, target.Name())
	fmt.Fprintln(r.out, "ID:", target.PID())
	if target.Is64Bit() {
		fmt.Fprint(r.out, "64 bit\n\n")
	} else {
		fmt.Fprint(r.out, "32 bit\n\n")
	}
	r.printHelp()
}

func (r *REPL) printHelp() {
	fmt.Fprint(r.out, `Types:
Integer types can be combined with a leading 'u' to find and print unsigned values.
c: 8 bit int
s: 16 bit int
i: 32 bit int (default)
l: 64 bit int
f: float
d: double
t: string (used only by the scan command)

Commands:
where [value] (type)
	Alias: w
	Prints a list of addresses where the value is located.
	If the value begins with an apostrophe ('), the value and all subsequent characters will be interpreted as a string.
	If the value is not a string, this command starts a chain and can be used with multiple 'became' commands or one 'changed' command.

became [value]
	Alias: b
	Filters the current addresses located by where, prints addresses where the value is now [value].

changed
	Alias: c
	Filters the current addresses located by where, prints addresses where the value is different from the value last given to where or became.
	This command is particularly useful for finding floating point numbers.
	Finishes the 'where' chain.

scan [address] (type) (range = 1)
	Alias: s
	Scans at the given address for value(s) of a given type.
	Range can be a negative number to instead scan upwards from the given address.
	If scanning for an integer the size of a pointer,
		will additionally indicate whether the value is potentially a pointer.
		If the pointer points to a printable string, will additionally print the first few characters of that string.

pointers [address] (type) (range = 1)
	Alias: p
	Searches for possible pointers to the given address, then recursively searches for pointers to those pointers.
	A range can be given to additionally scan for pointers to addresses at offsets equal to the given type's byte size above the given address.

dump [address] (bytes = 256)
	Alias: x
	Prints a hex and ASCII dump of memory at the given address.

quit
	Alias: q
	Exits the program.

help
	Alias: h
	Displays this help message.

`)
}
