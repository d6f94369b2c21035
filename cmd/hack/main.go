// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"bytes"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/ezrec/hack/cpu"
	"github.com/ezrec/hack/emulator"
	"github.com/ezrec/hack/vmtrans"
)

func main() {
	config := parseArgs()

	prog, err := loadProgram(config)
	if err != nil {
		log.Fatal(err)
	}

	if len(config.Output) != 0 {
		err = writeHack(config.Output, prog)
		if err != nil {
			log.Fatal(err)
		}
	}

	if config.Listing {
		err = prog.Disassemble(os.Stdout)
		if err != nil {
			log.Fatal(err)
		}
	}

	if config.NoRun {
		return
	}

	err = run(config, prog)
	if err != nil {
		log.Fatal(err)
	}
}

// loadProgram assembles, translates or loads the requested program.
func loadProgram(c *Config) (prog *cpu.Program, err error) {
	if len(c.VM) != 0 {
		prog, err = translateProgram(c)
		return
	}

	path := c.Binary
	if len(c.Compile) != 0 {
		path = c.Compile
	}

	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	if len(c.Compile) != 0 {
		asm := &cpu.Assembler{Verbose: c.Verbose, Strict: c.Strict}
		prog, err = asm.Parse(inf)
	} else {
		prog, err = cpu.ReadHack(inf)
	}
	if err != nil {
		err = errors.Wrapf(err, "%s", path)
	}

	return
}

// translateProgram translates VM code to assembly, then assembles it.
func translateProgram(c *Config) (prog *cpu.Program, err error) {
	tr := &vmtrans.Translator{Verbose: c.Verbose}
	err = tr.Load(c.VM)
	if err != nil {
		err = errors.Wrapf(err, "%s", c.VM)
		return
	}

	var text bytes.Buffer
	err = tr.WriteAsm(&text)
	if err != nil {
		err = errors.Wrapf(err, "%s", c.VM)
		return
	}

	if len(c.Asm) != 0 {
		err = os.WriteFile(c.Asm, text.Bytes(), 0644)
		if err != nil {
			return
		}
	}

	// VM statics are assembler variables, so never assemble strictly.
	asm := &cpu.Assembler{Verbose: c.Verbose}
	prog, err = asm.Parse(&text)
	if err != nil {
		err = errors.Wrapf(err, "%s: translated assembly", c.VM)
	}
	return
}

// writeHack saves the program as a .hack binary.
func writeHack(path string, prog *cpu.Program) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = prog.WriteHack(ouf)
	if err != nil {
		err = errors.Wrapf(err, "%s", path)
	}
	return
}

// presetAddress resolves a preset name as a program symbol or a number.
func presetAddress(symbols *cpu.SymbolTable, name string) (addr uint16, err error) {
	if value, perr := strconv.ParseUint(name, 0, 15); perr == nil {
		addr = uint16(value)
		return
	}

	addr, ok := symbols.Lookup(name)
	if !ok {
		err = cpu.ErrSymbolUndefined(name)
	}
	return
}

// run executes the program, then reports the requested machine state.
func run(c *Config, prog *cpu.Program) (err error) {
	emu := emulator.NewEmulator()
	defer emu.Close()

	emu.Verbose = c.Verbose
	emu.Program = prog

	err = emu.Reset()
	if err != nil {
		return
	}

	symbols := prog.Symbols
	if symbols == nil {
		symbols = cpu.NewSymbolTable(nil)
	}

	for _, preset := range c.Presets {
		var addr uint16
		addr, err = presetAddress(symbols, preset.Name)
		if err != nil {
			return errors.Wrapf(err, "-set %s", preset.Name)
		}
		err = emu.Ram.Write(addr, preset.Value)
		if err != nil {
			return errors.Wrapf(err, "-set %s", preset.Name)
		}
	}

	if len(c.Keys) != 0 {
		var inf *os.File
		inf, err = os.Open(c.Keys)
		if err != nil {
			return
		}
		err = emu.LoadKeyScript(inf)
		inf.Close()
		if err != nil {
			return errors.Wrapf(err, "%s", c.Keys)
		}
	}

	var halts []emulator.Halt
	var expr *emulator.HaltExpr
	if len(c.Halt) != 0 {
		expr, err = emulator.CompileHalt(c.Halt)
		if err != nil {
			return
		}
		halts = append(halts, expr.Halt())
	}
	if c.Loop {
		halts = append(halts, emulator.HaltOnLoop)
	}

	budget := c.Cycles
	if budget == 0 {
		budget = math.MaxInt
	}

	cycles, err := emu.Run(budget, emulator.HaltAny(halts...))
	if err != nil {
		return
	}
	if expr != nil && expr.Err != nil {
		return expr.Err
	}

	if c.Verbose {
		log.Printf("hack: %d cycles", cycles)
		log.Print(emu.Cpu.String())
	}

	if c.Dump {
		for addr := int(c.DumpLo); addr <= int(c.DumpHi); addr++ {
			value := emu.Ram[addr]
			fmt.Printf("%5d: %04X (%d)\n", addr, value, int16(value))
		}
	}

	if len(c.Screen) != 0 {
		err = writeScreen(c.Screen, emu)
	}

	return
}

// writeScreen saves the screen as a PBM image.
func writeScreen(path string, emu *emulator.Emulator) (err error) {
	ouf, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		cerr := ouf.Close()
		if err == nil {
			err = cerr
		}
	}()

	err = emu.Screen.WritePBM(&emu.Ram, ouf)
	if err != nil {
		err = errors.Wrapf(err, "%s", path)
	}
	return
}
