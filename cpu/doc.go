// Package cpu implements the processor and assembler for the Hack computer.
//
// The CPU consists of a 16-bit data register (D), a 16-bit address register
// (A), a program counter (PC), and an ALU. Programs execute from a separate
// instruction ROM; data lives in a flat 32K-word RAM which also holds the
// memory-mapped screen bitmap and keyboard register.
//
// The assembler is a two-pass translator for the Hack assembly language:
// the first pass resolves jump labels, the second allocates variables and
// emits one 16-bit instruction word per instruction line.
package cpu
