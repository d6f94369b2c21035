package cpu

import (
	"errors"
	"fmt"
	"log"
)

// ALU control bits of the computation field.
const (
	ALU_ZX = CodeComp(1 << 5) // Zero the x input.
	ALU_NX = CodeComp(1 << 4) // Negate the x input.
	ALU_ZY = CodeComp(1 << 3) // Zero the y input.
	ALU_NY = CodeComp(1 << 2) // Negate the y input.
	ALU_F  = CodeComp(1 << 1) // Add if set, and if clear.
	ALU_NO = CodeComp(1 << 0) // Negate the output.
)

// Cpu is the simulation context for the Hack CPU.
//
// The CPU holds only registers; instruction and data memory belong to the
// caller and are passed in on every Tick.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	D  uint16 // Data register.
	A  uint16 // Address register.
	Pc uint16 // Program counter.

	Ticks int // CPU ticks counter.
}

// NewCpu creates a new CPU in the reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []struct {
		name  string
		value uint16
	}{
		{"pc", cpu.Pc},
		{"a", cpu.A},
		{"d", cpu.D},
	}
	for _, reg := range regs {
		text += fmt.Sprintf("% 5s: %04X (%d)\n", reg.name, reg.value, int16(reg.value))
	}
	text += fmt.Sprintf("% 5s: %d\n", "ticks", cpu.Ticks)

	return
}

// Reset the CPU registers and statistics.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.D = 0
	cpu.A = 0
	cpu.Pc = 0
	cpu.Ticks = 0
}

// Alu computes the ALU output for the control bits of comp.
func Alu(x, y uint16, comp CodeComp) (out uint16) {
	if comp&ALU_ZX != 0 {
		x = 0
	}
	if comp&ALU_NX != 0 {
		x = ^x
	}
	if comp&ALU_ZY != 0 {
		y = 0
	}
	if comp&ALU_NY != 0 {
		y = ^y
	}
	if comp&ALU_F != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if comp&ALU_NO != 0 {
		out = ^out
	}

	return
}

// FetchCode fetches the instruction at the program counter.
func (cpu *Cpu) FetchCode(rom []Code) (code Code, err error) {
	if int(cpu.Pc) >= len(rom) {
		err = ErrPcRange
		return
	}

	code = rom[cpu.Pc]
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick(rom []Code, ram *Memory) (err error) {
	code, err := cpu.FetchCode(rom)
	if err != nil {
		return
	}

	err = cpu.Execute(code, ram)
	return
}

// Execute executes a single decoded instruction.
// On error no register or memory is modified.
func (cpu *Cpu) Execute(code Code, ram *Memory) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%04x: %v", cpu.Pc, code)
	}

	if code.IsAddress() {
		cpu.A = code.Address()
		cpu.Pc++
		cpu.Ticks++
		return
	}

	dest, comp, jump := code.ComputeDecode()

	y := cpu.A
	if comp.UsesMemory() {
		y, err = ram.Read(cpu.A)
		if err != nil {
			err = ErrAddressRange{Pc: cpu.Pc, Address: cpu.A}
			return
		}
	}

	if dest&DEST_M != 0 && int(cpu.A) >= len(ram) {
		err = ErrAddressRange{Pc: cpu.Pc, Address: cpu.A}
		return
	}

	out := Alu(cpu.D, y, comp)

	// M and the jump target use A from before this instruction.
	addr := cpu.A

	if dest&DEST_M != 0 {
		ram[addr] = out
	}
	if dest&DEST_A != 0 {
		cpu.A = out
	}
	if dest&DEST_D != 0 {
		cpu.D = out
	}

	if jump.Taken(out) {
		cpu.Pc = addr
	} else {
		cpu.Pc++
	}

	cpu.Ticks++

	return
}
