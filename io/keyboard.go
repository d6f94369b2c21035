package io

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/ezrec/hack/cpu"
)

// Hack platform key codes for non-printable keys.
const (
	KEY_NONE      = uint16(0)
	KEY_NEWLINE   = uint16(128)
	KEY_BACKSPACE = uint16(129)
	KEY_LEFT      = uint16(130)
	KEY_UP        = uint16(131)
	KEY_RIGHT     = uint16(132)
	KEY_DOWN      = uint16(133)
	KEY_HOME      = uint16(134)
	KEY_END       = uint16(135)
	KEY_PAGE_UP   = uint16(136)
	KEY_PAGE_DOWN = uint16(137)
	KEY_INSERT    = uint16(138)
	KEY_DELETE    = uint16(139)
	KEY_ESC       = uint16(140)
	KEY_F1        = uint16(141) // F2..F12 follow in order.
	KEY_F12       = uint16(152)
)

var keyMap = map[string]uint16{
	"none":      KEY_NONE,
	"release":   KEY_NONE,
	"space":     ' ',
	"newline":   KEY_NEWLINE,
	"backspace": KEY_BACKSPACE,
	"left":      KEY_LEFT,
	"up":        KEY_UP,
	"right":     KEY_RIGHT,
	"down":      KEY_DOWN,
	"home":      KEY_HOME,
	"end":       KEY_END,
	"pageup":    KEY_PAGE_UP,
	"pagedown":  KEY_PAGE_DOWN,
	"insert":    KEY_INSERT,
	"delete":    KEY_DELETE,
	"esc":       KEY_ESC,
}

func init() {
	for n := range KEY_F12 - KEY_F1 + 1 {
		keyMap["f"+strconv.Itoa(int(n)+1)] = KEY_F1 + n
	}
}

// KeyEvent changes the pressed key at a given cycle.
type KeyEvent struct {
	Cycle int    // Cycle at which the key state changes.
	Key   uint16 // Key code, or KEY_NONE for release.
}

// Keyboard drives the KBD register with the currently pressed key.
//
// The key can be set directly with Press and Release, or follow a
// script of timed events.
type Keyboard struct {
	Key    uint16     // Currently pressed key.
	Script []KeyEvent // Timed key events, in cycle order.

	next int
}

// Press holds down a key.
func (kb *Keyboard) Press(key uint16) {
	kb.Key = key
}

// Release releases any pressed key.
func (kb *Keyboard) Release() {
	kb.Key = KEY_NONE
}

// Rewind restarts the key script with no key pressed.
func (kb *Keyboard) Rewind() {
	kb.next = 0
	kb.Key = KEY_NONE
}

// Update applies all script events due by cycle, then writes the
// pressed key to the KBD register.
func (kb *Keyboard) Update(bus Bus, cycle int) (err error) {
	for kb.next < len(kb.Script) && kb.Script[kb.next].Cycle <= cycle {
		kb.Key = kb.Script[kb.next].Key
		kb.next++
	}

	err = bus.Write(cpu.KBD, kb.Key)
	return
}

// ParseKey parses a key as a number, a quoted character, or a key name.
func ParseKey(word string) (key uint16, err error) {
	if len(word) == 3 && word[0] == '\'' && word[2] == '\'' {
		key = uint16(word[1])
		return
	}

	if key, ok := keyMap[strings.ToLower(word)]; ok {
		return key, nil
	}

	value, err := strconv.ParseUint(word, 0, 16)
	if err != nil {
		err = ErrKeyInvalid
		return
	}

	key = uint16(value)
	return
}

// ParseKeyScript reads a key script: one 'cycle key' event per line.
// A word starting with '#' begins a comment, so the quoted key '#' is
// still a key.
func ParseKeyScript(input io.Reader) (script []KeyEvent, err error) {
	scanner := bufio.NewScanner(input)

	var lineno int
	var line string

	defer func() {
		if err != nil {
			script = nil
			err = cpu.ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	for scanner.Scan() {
		line = scanner.Text()
		lineno += 1

		words := strings.Fields(line)
		for n, word := range words {
			if strings.HasPrefix(word, "#") {
				words = words[:n]
				break
			}
		}
		if len(words) == 0 {
			continue
		}
		if len(words) != 2 {
			err = ErrKeyInvalid
			return
		}

		var cycle uint64
		cycle, err = strconv.ParseUint(words[0], 10, 31)
		if err != nil {
			err = cpu.ErrParseNumber(words[0])
			return
		}

		var key uint16
		key, err = ParseKey(words[1])
		if err != nil {
			return
		}

		if len(script) > 0 && int(cycle) < script[len(script)-1].Cycle {
			err = ErrKeyScriptOrder
			return
		}

		script = append(script, KeyEvent{Cycle: int(cycle), Key: key})
	}

	err = scanner.Err()
	return
}
