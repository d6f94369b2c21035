package emulator

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/hack/cpu"
)

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.NotNil(emu.Program)

	// An empty program is done immediately.
	assert.NoError(emu.Reset())
	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)
	assert.NoError(emu.Close())
}

func loadProgram(t *testing.T, emu *Emulator, path string) {
	t.Helper()

	inf, err := os.Open(path)
	require.NoError(t, err)
	defer inf.Close()

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(inf)
	require.NoError(t, err)

	emu.Program = prog
	require.NoError(t, emu.Reset())
}

func parseProgram(t *testing.T, emu *Emulator, program ...string) {
	t.Helper()

	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(t, err)

	emu.Program = prog
	require.NoError(t, emu.Reset())
}

func TestEmulatorSingle(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"// R0 = 2 + 3",
		"@2",
		"D=A",
		"@3",
		"D=D+A",
		"@0",
		"M=D",
	}
	parseProgram(t, emu, program...)

	for _, op := range emu.Program.Opcodes {
		assert.Equal(op.LineNo, emu.LineNo())
		assert.Equal(op.Pc, emu.Pc())
		assert.Equal(op.Code, emu.Code())
		done, err := emu.Tick()
		assert.NoError(err, op.Text)
		assert.False(done, op.Text)
	}

	done, err := emu.Tick()
	assert.NoError(err)
	assert.True(done)

	assert.Equal(uint16(5), emu.Ram[0])
	assert.Equal(6, emu.Ticks())
}

func TestEmulatorRunDone(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	parseProgram(t, emu, "@7", "D=A", "@R5", "M=D")

	cycles, err := emu.Run(100, nil)
	assert.NoError(err)
	assert.Equal(4, cycles)
	assert.Equal(uint16(7), emu.Ram[5])
}

func TestEmulatorRunBudget(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	parseProgram(t, emu, "(LOOP)", "@count", "M=M+1", "@LOOP", "0;JMP")

	cycles, err := emu.Run(400, nil)
	assert.NoError(err)
	assert.Equal(400, cycles)
	assert.Equal(uint16(100), emu.Ram[16])

	// Run continues where it stopped.
	cycles, err = emu.Run(4, nil)
	assert.NoError(err)
	assert.Equal(4, cycles)
	assert.Equal(uint16(101), emu.Ram[16])
	assert.Equal(404, emu.Ticks())
}

func runMult(t *testing.T, r0, r1 uint16) (emu *Emulator) {
	emu = NewEmulator()
	loadProgram(t, emu, "testdata/Mult.asm")

	emu.Ram[0] = r0
	emu.Ram[1] = r1
	emu.Ram[2] = 0xdead

	cycles, err := emu.Run(100_000, HaltOnLoop)
	require.NoError(t, err)
	require.Less(t, cycles, 100_000)

	end, ok := emu.Program.Symbols.Lookup("END")
	require.True(t, ok)
	assert.Equal(t, int(end), emu.Pc())

	return
}

func TestEmulatorMult(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		r0, r1 uint16
		r2     uint16
	}{
		{0, 5, 0},
		{7, 6, 42},
		{0, 0, 0},
		{6, 7, 42},
		{1, 0, 0},
		{3, 1, 3},
		{100, 200, 20000},
	}

	for _, entry := range table {
		emu := runMult(t, entry.r0, entry.r1)
		assert.Equal(entry.r2, emu.Ram[2], "%d * %d", entry.r0, entry.r1)
		assert.Equal(entry.r1, emu.Ram[1], "%d * %d", entry.r0, entry.r1)
	}
}

func screenWords(emu *Emulator) []uint16 {
	return emu.Ram[cpu.SCREEN_BASE : cpu.SCREEN_BASE+cpu.SCREEN_WORDS]
}

func TestEmulatorFill(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	loadProgram(t, emu, "testdata/Fill.asm")

	loop, ok := emu.Program.Symbols.Lookup("LOOP")
	require.True(t, ok)

	// One full pass: leave LOOP, then come back to it.
	pass := func(emu *Emulator) bool {
		return emu.Cpu.Pc == loop
	}

	emu.Keyboard.Press('K')
	cycles, err := emu.Run(1_000_000, pass)
	assert.NoError(err)
	assert.Less(cycles, 1_000_000)
	assert.Equal(uint16('K'), emu.Ram[cpu.KBD])

	for n, word := range screenWords(emu) {
		if word != 0xffff {
			t.Fatalf("screen word %d is %04x after a pass with a key down", n, word)
		}
	}

	emu.Keyboard.Release()
	_, err = emu.Run(1_000_000, pass)
	assert.NoError(err)
	assert.Equal(uint16(0), emu.Ram[cpu.KBD])

	for n, word := range screenWords(emu) {
		if word != 0x0000 {
			t.Fatalf("screen word %d is %04x after a pass with no key", n, word)
		}
	}

	// Nothing outside of the screen, variables and keyboard was touched.
	assert.Equal(uint16(0), emu.Ram[0])
	assert.Equal(uint16(cpu.KBD), emu.Ram[16])
	assert.Equal(uint16(0), emu.Ram[17])
	assert.Equal(uint16(0), emu.Ram[18])
}

func TestEmulatorFillScript(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	loadProgram(t, emu, "testdata/Fill.asm")

	black, err := os.Open("testdata/black.keys")
	require.NoError(t, err)
	defer black.Close()

	require.NoError(t, emu.LoadKeyScript(black))

	_, err = emu.Run(200_000, nil)
	assert.NoError(err)

	black_row, err := emu.Screen.Row(&emu.Ram, 0)
	assert.NoError(err)
	for _, word := range black_row {
		assert.Equal(uint16(0xffff), word)
	}

	// The key is released at cycle 200000; clear the screen again.
	_, err = emu.Run(200_000, nil)
	assert.NoError(err)
	for _, word := range screenWords(emu) {
		if !assert.Equal(uint16(0), word) {
			break
		}
	}
}

func TestEmulatorAddressRange(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	program := []string{
		"@32767",
		"D=A",
		"@R3",
		"M=D",
		"A=D+1",
		"M=1 // out of range",
	}
	parseProgram(t, emu, program...)

	cycles, err := emu.Run(100, nil)
	assert.Equal(5, cycles)
	assert.Error(err)
	assert.ErrorIs(err, cpu.ErrAddressRange{})

	var runtime *ErrRuntime
	if assert.True(errors.As(err, &runtime)) {
		assert.Equal(6, runtime.LineNo)
		assert.Equal(uint16(5), runtime.Pc)
	}

	var bad cpu.ErrAddressRange
	if assert.True(errors.As(err, &bad)) {
		assert.Equal(uint16(0x8000), bad.Address)
	}

	// State is as it was before the failing instruction.
	assert.Equal(uint16(5), emu.Cpu.Pc)
	assert.Equal(uint16(0x8000), emu.Cpu.A)
	assert.Equal(uint16(0x7fff), emu.Cpu.D)
	assert.Equal(uint16(0x7fff), emu.Ram[3])
	assert.Equal(5, emu.Ticks())
}

func TestEmulatorHackBinary(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	loadProgram(t, emu, "testdata/Mult.asm")

	var hack strings.Builder
	require.NoError(t, emu.Program.WriteHack(&hack))

	prog, err := cpu.ReadHack(strings.NewReader(hack.String()))
	require.NoError(t, err)

	emu.Program = prog
	require.NoError(t, emu.Reset())
	emu.Ram[0] = 9
	emu.Ram[1] = 9

	_, err = emu.Run(10_000, HaltOnLoop)
	assert.NoError(err)
	assert.Equal(uint16(81), emu.Ram[2])
	// Binary programs map back to lines of the .hack text.
	assert.Equal(emu.Pc()+1, emu.LineNo())
}

func TestHaltOnLoop(t *testing.T) {
	assert := assert.New(t)

	table := []struct {
		program []string
		halts   bool
	}{
		{[]string{"(END)", "@END", "0;JMP"}, true},
		{[]string{"@2", "0;JMP", "(HERE)", "@HERE", "0;JMP"}, true},
		{[]string{"@1", "0;JMP"}, true},
		{[]string{"(END)", "@END", "M=M+1;JMP"}, false},
		{[]string{"(END)", "@END", "D;JNE"}, false},
		{[]string{"(LOOP)", "@LOOP", "D=D+1", "0;JMP"}, false},
	}

	for _, entry := range table {
		name := strings.Join(entry.program, "|")
		emu := NewEmulator()
		parseProgram(t, emu, entry.program...)
		emu.Cpu.D = 1

		cycles, err := emu.Run(1000, HaltOnLoop)
		assert.NoError(err, name)
		if entry.halts {
			assert.Less(cycles, 1000, name)
		} else {
			assert.Equal(1000, cycles, name)
		}
	}
}

func TestHaltAny(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	parseProgram(t, emu, "(LOOP)", "@LOOP", "0;JMP")

	never := func(*Emulator) bool { return false }
	at := func(n int) Halt {
		return func(emu *Emulator) bool { return emu.Ticks() >= n }
	}

	cycles, err := emu.Run(100, HaltAny(never, nil, at(7), at(3)))
	assert.NoError(err)
	assert.Equal(3, cycles)
}
