package io

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/hack/cpu"
)

func TestScreen_Pixel(t *testing.T) {
	assert := assert.New(t)

	var ram cpu.Memory
	sc := &Screen{}

	// Top left pixel is bit 0 of the first word.
	ram[cpu.SCREEN_BASE] = 0x0001
	// Pixel (17, 1) is bit 1 of the second word of the second row.
	ram[cpu.SCREEN_BASE+32+1] = 0x0002
	// Bottom right pixel is bit 15 of the last word.
	ram[cpu.SCREEN_BASE+cpu.SCREEN_WORDS-1] = 0x8000

	table := []struct {
		x, y  int
		black bool
	}{
		{0, 0, true},
		{1, 0, false},
		{17, 1, true},
		{16, 1, false},
		{511, 255, true},
		{510, 255, false},
	}

	for _, entry := range table {
		black, err := sc.Pixel(&ram, entry.x, entry.y)
		assert.NoError(err)
		assert.Equal(entry.black, black, "(%d, %d)", entry.x, entry.y)
	}

	_, err := sc.Pixel(&ram, SCREEN_WIDTH, 0)
	assert.ErrorIs(err, ErrPixelRange)
	_, err = sc.Pixel(&ram, 0, -1)
	assert.ErrorIs(err, ErrPixelRange)
}

func TestScreen_WritePBM(t *testing.T) {
	assert := assert.New(t)

	var ram cpu.Memory
	sc := &Screen{}
	ram[cpu.SCREEN_BASE] = 0x0005

	var out strings.Builder
	err := sc.WritePBM(&ram, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal("P1", lines[0])
	assert.Equal("512 256", lines[1])
	assert.Equal(2+SCREEN_HEIGHT*ROW_WORDS/4, len(lines))
	assert.True(strings.HasPrefix(lines[2], "1010000000000000"), lines[2])
	for _, line := range lines[2:] {
		assert.Equal(64, len(line))
	}
}

func TestScreen_WriteText(t *testing.T) {
	assert := assert.New(t)

	var ram cpu.Memory
	sc := &Screen{Scale: 16}

	// One pixel in the last block of the first row of blocks.
	ram[cpu.SCREEN_BASE+31] = 0x8000

	var out strings.Builder
	err := sc.WriteText(&ram, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Equal(SCREEN_HEIGHT/16, len(lines))
	assert.Equal(strings.Repeat(".", 31)+"#", lines[0])
	assert.Equal(strings.Repeat(".", 32), lines[1])
}
