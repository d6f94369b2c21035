package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/hack/emulator"
)

func TestTranslateProgram(t *testing.T) {
	assert := assert.New(t)

	c := &Config{
		VM:     "../../vmtrans/testdata/Calls",
		Asm:    filepath.Join(t.TempDir(), "Calls.asm"),
		Strict: true,
	}

	prog, err := loadProgram(c)
	require.NoError(t, err)

	text, err := os.ReadFile(c.Asm)
	require.NoError(t, err)
	assert.True(strings.HasPrefix(string(text), "// bootstrap\n@256\n"))

	emu := emulator.NewEmulator()
	emu.Program = prog
	require.NoError(t, emu.Reset())
	_, err = emu.Run(1_000_000, emulator.HaltOnLoop)
	assert.NoError(err)
	assert.Equal(uint16(720), emu.Ram[6])

	_, err = loadProgram(&Config{VM: "../../vmtrans/testdata/Missing"})
	assert.Error(err)
}
