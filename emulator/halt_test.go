package emulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileHalt(t *testing.T) {
	assert := assert.New(t)

	for _, text := range []string{"PC == END", "ram(R2) > 0 and D < 0", "cycles >= 1000"} {
		halt, err := CompileHalt(text)
		assert.NoError(err, text)
		assert.Equal(text, halt.Source)
	}

	for _, text := range []string{"PC ==", "(", "x = 3"} {
		halt, err := CompileHalt(text)
		assert.Nil(halt, text)
		assert.ErrorIs(err, ErrHaltExpression, text)
	}
}

func TestHaltExpr_Mult(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	loadProgram(t, emu, "testdata/Mult.asm")
	emu.Ram[0] = 6
	emu.Ram[1] = 7

	halt, err := CompileHalt("PC == END")
	require.NoError(t, err)

	cycles, err := emu.Run(10_000, halt.Halt())
	assert.NoError(err)
	assert.NoError(halt.Err)
	assert.Less(cycles, 10_000)
	assert.Equal(uint16(42), emu.Ram[2])

	end, _ := emu.Program.Symbols.Lookup("END")
	assert.Equal(end, emu.Cpu.Pc)
}

func TestHaltExpr_Ram(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	parseProgram(t, emu, "(LOOP)", "@count", "M=M-1", "@LOOP", "0;JMP")

	// ram() values are signed.
	halt, err := CompileHalt("ram(count) == -3")
	require.NoError(t, err)

	cycles, err := emu.Run(1000, halt.Halt())
	assert.NoError(err)
	assert.NoError(halt.Err)
	assert.Equal(10, cycles)
	assert.Equal(uint16(0xfffd), emu.Ram[16])
}

func TestHaltExpr_Cycles(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	parseProgram(t, emu, "(LOOP)", "@LOOP", "0;JMP")

	halt, err := CompileHalt("cycles == 17")
	require.NoError(t, err)

	cycles, err := emu.Run(1000, halt.Halt())
	assert.NoError(err)
	assert.Equal(17, cycles)
}

func TestHaltExpr_Error(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator()
	parseProgram(t, emu, "(LOOP)", "@LOOP", "0;JMP")

	table := []string{
		"ram(40000) == 0",
		"ram(-1) == 0",
		"nosuchname == 1",
		"ram() == 1",
	}

	for _, text := range table {
		halt, err := CompileHalt(text)
		require.NoError(t, err, text)

		cycles, err := emu.Run(1000, halt.Halt())
		assert.NoError(err, text)
		assert.Equal(1, cycles, text)
		assert.ErrorIs(halt.Err, ErrHaltExpression, text)
	}
}

func TestHaltExpr_Shared(t *testing.T) {
	assert := assert.New(t)

	first := NewEmulator()
	loadProgram(t, first, "testdata/Mult.asm")
	first.Ram[0] = 6
	first.Ram[1] = 7

	// A second emulator running the very same program listing.
	second := NewEmulator()
	second.Program = first.Program
	require.NoError(t, second.Reset())
	second.Ram[0] = 3
	second.Ram[1] = 3

	halt, err := CompileHalt("PC == END and ram(R2) == 9")
	require.NoError(t, err)
	stop := halt.Halt()

	_, err = first.Run(10_000, HaltAny(stop, HaltOnLoop))
	assert.NoError(err)
	assert.Equal(uint16(42), first.Ram[2])

	// ram() must read the emulator being run, not the first one.
	cycles, err := second.Run(10_000, stop)
	assert.NoError(err)
	assert.NoError(halt.Err)
	assert.Less(cycles, 10_000)
	assert.Equal(uint16(9), second.Ram[2])
}
