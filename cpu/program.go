package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Opcode represents a line of assembled code with its source location.
type Opcode struct {
	LineNo int    // Source line number.
	Pc     int    // ROM address.
	Text   string // Instruction text, without comments or whitespace.
	Code   Code   // Generated instruction.
}

// Program is an assembled or loaded instruction listing.
type Program struct {
	Opcodes []Opcode
	Symbols *SymbolTable // nil for programs loaded from binary.
}

type Debug struct {
	*Opcode
}

// Debug returns the source opcode for a ROM address, if any.
func (prog *Program) Debug(pc uint16) (dbg Debug) {
	if int(pc) < len(prog.Opcodes) && prog.Opcodes[pc].Pc == int(pc) {
		dbg.Opcode = &prog.Opcodes[pc]
	}

	return
}

// Codes iterates the program in ROM order.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(pc uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !yield(uint16(op.Pc), op.Code) {
				return
			}
		}
	}
}

// Rom returns the instruction memory image.
func (prog *Program) Rom() (rom []Code) {
	rom = make([]Code, 0, len(prog.Opcodes))
	for _, code := range prog.Codes() {
		rom = append(rom, code)
	}
	return
}

// Binary returns the program as raw 16-bit words.
func (prog *Program) Binary() (bins []uint16) {
	for _, code := range prog.Codes() {
		bins = append(bins, uint16(code))
	}

	return
}

// WriteHack writes the program in the .hack text format:
// one 16 digit binary word per line.
func (prog *Program) WriteHack(output io.Writer) (err error) {
	w := bufio.NewWriter(output)
	for _, code := range prog.Codes() {
		_, err = fmt.Fprintln(w, code.Binary())
		if err != nil {
			return
		}
	}

	err = w.Flush()
	return
}

// Disassemble writes the program as assembly text, one instruction per line.
func (prog *Program) Disassemble(output io.Writer) (err error) {
	w := bufio.NewWriter(output)
	for _, code := range prog.Codes() {
		_, err = fmt.Fprintln(w, code.String())
		if err != nil {
			return
		}
	}

	err = w.Flush()
	return
}

// ReadHack loads a program from the .hack text format.
// Blank lines and '//' comments are ignored.
func ReadHack(input io.Reader) (prog *Program, err error) {
	lines, err := readSource(input)
	if err != nil {
		return
	}

	prog = &Program{}
	for _, line := range lines {
		if len(line.Body) == 0 {
			continue
		}

		var code Code
		code, err = parseBinary(line.Body)
		if err == nil && len(prog.Opcodes) >= ROM_SIZE {
			err = ErrBinarySize
		}
		if err != nil {
			prog = nil
			err = ErrSyntax{LineNo: line.LineNo, Line: line.Line, Err: err}
			return
		}

		pc := len(prog.Opcodes)
		prog.Opcodes = append(prog.Opcodes, Opcode{
			LineNo: line.LineNo,
			Pc:     pc,
			Text:   code.String(),
			Code:   code,
		})
	}

	return
}

// parseBinary parses a single .hack word.
func parseBinary(word string) (code Code, err error) {
	if len(word) != 16 || strings.Trim(word, "01") != "" {
		err = ErrBinaryInvalid
		return
	}

	value, err := strconv.ParseUint(word, 2, 16)
	if err != nil {
		err = ErrBinaryInvalid
		return
	}

	code = Code(value)
	return
}
