// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator runs Hack programs: a CPU, its data memory, and the
// keyboard and screen devices mapped into that memory.
package emulator

import (
	"errors"
	goio "io"
	"log"

	"github.com/ezrec/hack/cpu"
	"github.com/ezrec/hack/io"
)

// Emulator state. CPU + ROM + RAM + devices.
//
// The emulator exclusively owns its memory; Tick and Run are the only
// operations that mutate it. Callers must not inspect Ram while a Tick
// is in progress.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Ram      cpu.Memory  // Data memory, including screen and keyboard.
	Keyboard io.Keyboard // Keyboard device, updated before every tick.
	Screen   io.Screen   // Screen device.

	rom []cpu.Code
}

// Halt is a predicate checked after every tick of Run.
type Halt func(emu *Emulator) bool

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	return
}

// Close the emulator
func (emu *Emulator) Close() (err error) {
	emu.rom = nil

	return
}

// Reset loads the program into ROM, and clears the CPU, RAM and devices.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if len(emu.Program.Opcodes) > cpu.ROM_SIZE {
		err = cpu.ErrBinarySize
		return
	}

	emu.rom = emu.Program.Rom()
	emu.Cpu.Reset()
	emu.Ram.Reset()
	emu.Keyboard.Rewind()

	if emu.Verbose {
		log.Printf("emulator: reset, %d instructions", len(emu.rom))
	}

	return
}

// LoadKeyScript replaces the keyboard script.
func (emu *Emulator) LoadKeyScript(input goio.Reader) (err error) {
	script, err := io.ParseKeyScript(input)
	if err != nil {
		return
	}

	emu.Keyboard.Script = script
	emu.Keyboard.Rewind()
	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Pc)
}

// Code returns the current instruction code.
func (emu *Emulator) Code() (code cpu.Code) {
	code, _ = emu.Cpu.FetchCode(emu.rom)
	return
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
// done is set when the program counter runs off the end of the program.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	err = emu.Keyboard.Update(&emu.Ram, emu.Cpu.Ticks)
	if err != nil {
		return
	}

	err = emu.Cpu.Tick(emu.rom, &emu.Ram)
	if errors.Is(err, cpu.ErrPcRange) {
		err = nil
		done = true
		return
	}

	return
}

// Run ticks the emulator until the program ends, halt (if not nil)
// returns true, or maxCycles ticks have run. It returns the number of
// ticks executed by this call.
func (emu *Emulator) Run(maxCycles int, halt Halt) (cycles int, err error) {
	for cycles < maxCycles {
		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
		cycles++

		if halt != nil && halt(emu) {
			if emu.Verbose {
				log.Printf("emulator: halted at pc %d after %d cycles", emu.Cpu.Pc, cycles)
			}
			return
		}
	}

	return
}

// HaltOnLoop stops at the conventional end-of-program idle loops:
// a jump to itself, or the '(END) @END 0;JMP' pair.
func HaltOnLoop(emu *Emulator) bool {
	pc := emu.Cpu.Pc
	if int(pc) >= len(emu.rom) {
		return false
	}

	code := emu.rom[pc]
	if code.IsAddress() {
		// About to load our own address, then jump to it?
		if code.Address() != pc || int(pc)+1 >= len(emu.rom) {
			return false
		}
		next := emu.rom[pc+1]
		if next.IsAddress() {
			return false
		}
		dest, _, jump := next.ComputeDecode()
		return jump == cpu.JUMP_JMP && dest == cpu.DEST_NONE
	}

	// Unconditional jump to here, without side effects.
	dest, _, jump := code.ComputeDecode()
	return jump == cpu.JUMP_JMP && dest == cpu.DEST_NONE && emu.Cpu.A == pc
}

// HaltAny combines halt predicates, stopping when any of them is true.
func HaltAny(halts ...Halt) Halt {
	return func(emu *Emulator) bool {
		for _, halt := range halts {
			if halt != nil && halt(emu) {
				return true
			}
		}
		return false
	}
}
