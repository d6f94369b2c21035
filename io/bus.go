// Package io provides the external collaborators of the Hack machine.
// They reach the machine only through its memory mapped registers: the
// keyboard writes the KBD word, and the screen reads the bitmap words.
package io

import (
	"github.com/ezrec/hack/cpu"
)

// Bus defines the memory interface devices use to reach the machine.
// It is satisfied by *cpu.Memory.
type Bus interface {
	// Read returns the word at addr.
	Read(addr uint16) (value uint16, err error)
	// Write stores a word at addr.
	Write(addr uint16, value uint16) error
}

var _ Bus = (*cpu.Memory)(nil)
