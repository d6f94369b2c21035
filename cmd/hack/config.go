package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Preset is a RAM location to set before the program runs.
type Preset struct {
	Name  string // Symbol or decimal address.
	Value uint16
}

// Config defines program configuration.
type Config struct {
	Compile string   // Assembly source to compile.
	VM      string   // VM file or directory to translate and compile.
	Asm     string   // Path to store the translated VM assembly in.
	Binary  string   // .hack binary to load.
	Output  string   // Path to store the assembled .hack binary in.
	Listing bool     // Print a disassembly listing and exit.
	Strict  bool     // Undefined symbols are errors, not variables.
	Cycles  int      // Cycle budget; 0 runs until the program ends.
	Halt    string   // Starlark halt expression.
	Loop    bool     // Stop on the conventional end-of-program loop.
	Presets []Preset // RAM values to set after reset.
	Keys    string   // Keyboard script.
	Screen  string   // Path to store a PBM screenshot in after the run.
	DumpLo  uint16   // First RAM address to print after the run.
	DumpHi  uint16   // Last RAM address to print after the run.
	Dump    bool     // Print a RAM range after the run.
	Verbose bool     // Verbose logging.
	NoRun   bool     // Do not execute, only assemble.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.Cycles = 1_000_000

	flag.Usage = func() {
		fmt.Printf("%s [options] (-c <file.asm> | -vm <file.vm|dir> | -b <file.hack>)\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.StringVar(&c.Compile, "c", "", "Hack assembly file to compile.")
	flag.StringVar(&c.VM, "vm", "", "VM file, or directory of .vm files, to translate and compile.")
	flag.StringVar(&c.Asm, "asm", "", "Write the translated VM assembly to this file.")
	flag.StringVar(&c.Binary, "b", "", "Hack binary (.hack) file to load.")
	flag.StringVar(&c.Output, "o", "", "Write the assembled .hack binary to this file, do not execute.")
	flag.BoolVar(&c.Listing, "S", false, "Print a disassembly listing, do not execute.")
	flag.BoolVar(&c.Strict, "strict", false, "Undefined symbols are errors (assembly sources only).")
	flag.IntVar(&c.Cycles, "n", c.Cycles, "Maximum cycles to run; 0 for no limit.")
	flag.StringVar(&c.Halt, "halt", "", "Starlark expression; stop when true (e.g. 'PC == END').")
	flag.BoolVar(&c.Loop, "loop", false, "Stop at an '(END) @END 0;JMP' idle loop.")
	flag.Func("set", "Set RAM before running, as NAME=VALUE. May be repeated.", func(text string) (err error) {
		preset, err := parsePreset(text)
		if err != nil {
			return
		}
		c.Presets = append(c.Presets, preset)
		return
	})
	flag.StringVar(&c.Keys, "k", "", "Keyboard script file.")
	flag.StringVar(&c.Screen, "screen", "", "Write the final screen to this PBM file.")
	dump := flag.String("dump", "", "Print RAM from lo to hi (inclusive) after the run, as lo:hi.")
	flag.BoolVar(&c.Verbose, "v", false, "Verbose mode.")
	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if flag.NArg() != 0 || sources(&c) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if len(c.Asm) != 0 && len(c.VM) == 0 {
		fmt.Fprintln(os.Stderr, "-asm: needs -vm")
		os.Exit(1)
	}

	if c.Cycles < 0 {
		fmt.Fprintln(os.Stderr, "-n: cycle budget must not be negative")
		os.Exit(1)
	}

	if len(*dump) != 0 {
		var err error
		c.DumpLo, c.DumpHi, err = parseRange(*dump)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		c.Dump = true
	}

	c.NoRun = c.Listing || len(c.Output) != 0
	return &c
}

// sources counts the program sources given.
func sources(c *Config) (count int) {
	for _, path := range []string{c.Compile, c.VM, c.Binary} {
		if len(path) != 0 {
			count++
		}
	}
	return
}

// parsePreset parses a NAME=VALUE RAM preset. VALUE is a 16 bit number,
// signed or unsigned.
func parsePreset(text string) (preset Preset, err error) {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		err = errors.Errorf("%q: expected NAME=VALUE", text)
		return
	}

	number, err := strconv.ParseInt(value, 0, 32)
	if err != nil || number < -0x8000 || number > 0xffff {
		err = errors.Errorf("%q: value out of 16 bit range", text)
		return
	}

	preset = Preset{Name: name, Value: uint16(number)}
	return
}

// parseRange parses an inclusive lo:hi address range.
func parseRange(text string) (lo, hi uint16, err error) {
	los, his, ok := strings.Cut(text, ":")
	if !ok {
		his = los
	}

	low, err := strconv.ParseUint(los, 0, 15)
	if err != nil {
		err = errors.Wrapf(err, "-dump %s", text)
		return
	}
	high, err := strconv.ParseUint(his, 0, 15)
	if err != nil {
		err = errors.Wrapf(err, "-dump %s", text)
		return
	}
	if high < low {
		err = errors.Errorf("-dump %s: empty range", text)
		return
	}

	lo, hi = uint16(low), uint16(high)
	return
}
