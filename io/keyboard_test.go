package io

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/hack/cpu"
)

func TestKeyboard_PressRelease(t *testing.T) {
	assert := assert.New(t)

	var ram cpu.Memory
	kb := &Keyboard{}

	kb.Press('A')
	err := kb.Update(&ram, 0)
	assert.NoError(err)
	assert.Equal(uint16('A'), ram[cpu.KBD])

	kb.Release()
	err = kb.Update(&ram, 1)
	assert.NoError(err)
	assert.Equal(KEY_NONE, ram[cpu.KBD])
}

func TestKeyboard_Script(t *testing.T) {
	assert := assert.New(t)

	var ram cpu.Memory
	kb := &Keyboard{
		Script: []KeyEvent{
			{Cycle: 10, Key: 'x'},
			{Cycle: 20, Key: KEY_NEWLINE},
			{Cycle: 20, Key: KEY_ESC},
			{Cycle: 30, Key: KEY_NONE},
		},
	}

	table := []struct {
		cycle int
		key   uint16
	}{
		{0, KEY_NONE},
		{9, KEY_NONE},
		{10, 'x'},
		{19, 'x'},
		{25, KEY_ESC},
		{30, KEY_NONE},
		{1000, KEY_NONE},
	}

	for _, entry := range table {
		err := kb.Update(&ram, entry.cycle)
		assert.NoError(err)
		assert.Equal(entry.key, ram[cpu.KBD], "cycle %d", entry.cycle)
	}

	kb.Rewind()
	assert.Equal(KEY_NONE, kb.Key)
	err := kb.Update(&ram, 15)
	assert.NoError(err)
	assert.Equal(uint16('x'), ram[cpu.KBD])
}

func TestParseKey(t *testing.T) {
	assert := assert.New(t)

	table := map[string]uint16{
		"'a'":      'a',
		"' '":      ' ',
		"space":    ' ',
		"65":       65,
		"0x80":     KEY_NEWLINE,
		"newline":  KEY_NEWLINE,
		"Left":     KEY_LEFT,
		"pagedown": KEY_PAGE_DOWN,
		"esc":      KEY_ESC,
		"f1":       KEY_F1,
		"F12":      KEY_F12,
		"release":  KEY_NONE,
	}

	for word, expected := range table {
		key, err := ParseKey(word)
		assert.NoError(err, word)
		assert.Equal(expected, key, word)
	}

	for _, word := range []string{"f13", "'ab'", "-1", "0x10000", "hello"} {
		_, err := ParseKey(word)
		assert.ErrorIs(err, ErrKeyInvalid, word)
	}
}

func TestParseKeyScript(t *testing.T) {
	assert := assert.New(t)

	script, err := ParseKeyScript(strings.NewReader(strings.Join([]string{
		"# press and hold",
		"0 'k'",
		"",
		"100   release  # let go",
		"100 down",
		"#200 up",
		"300 '#' # hash key",
		"400 35",
	}, "\n")))
	require.NoError(t, err)

	assert.Equal([]KeyEvent{
		{Cycle: 0, Key: 'k'},
		{Cycle: 100, Key: KEY_NONE},
		{Cycle: 100, Key: KEY_DOWN},
		{Cycle: 300, Key: '#'},
		{Cycle: 400, Key: '#'},
	}, script)

	table := []struct {
		text   string
		lineno int
		err    error
	}{
		{"10 a b", 1, ErrKeyInvalid},
		{"10 'a'\n5 'b'", 2, ErrKeyScriptOrder},
		{"\n\n10 bogus", 3, ErrKeyInvalid},
	}

	for _, entry := range table {
		script, err := ParseKeyScript(strings.NewReader(entry.text))
		assert.Nil(script)
		assert.ErrorIs(err, entry.err, entry.text)

		var syntax cpu.ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.text) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.text)
		}
	}

	_, err = ParseKeyScript(strings.NewReader("soon 'a'"))
	var number cpu.ErrParseNumber
	assert.True(errors.As(err, &number))
}
