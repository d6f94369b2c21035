// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"io"
	"log"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// sourceLine is a line of assembly text with comments and whitespace removed.
type sourceLine struct {
	LineNo int    // 1-based line number.
	Line   string // Line as read.
	Body   string // Instruction text, empty for blank lines.
}

// Assembler is a two pass assembler for the Hack platform.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Strict  bool     // If set, unknown symbols are errors instead of variables.
	Opcode  []Opcode // List of generated opcodes.

	Symbols *SymbolTable // Symbols of the most recent Parse.

	predefine map[string]uint16 // Predefines
}

// Predefine defines a new symbol or redefines an existing one.
// The address must fit in an A-instruction.
func (asm *Assembler) Predefine(name string, addr uint16) (err error) {
	if !validSymbol(name) {
		err = ErrSymbolInvalid
		return
	}
	if addr > CODE_ADDR_MAX {
		err = ErrConstantRange
		return
	}

	if asm.predefine == nil {
		asm.predefine = map[string]uint16{name: addr}
	} else {
		asm.predefine[name] = addr
	}
	return
}

var symbolRegexp = regexp.MustCompile(`^[A-Za-z_.$:][A-Za-z0-9_.$:]*$`)

// validSymbol returns true for a legal label or variable name.
func validSymbol(name string) bool {
	return symbolRegexp.MatchString(name)
}

// stripLine removes the comment and all whitespace from a line.
func stripLine(text string) string {
	text, _, _ = strings.Cut(text, "//")
	return strings.Join(strings.Fields(text), "")
}

// readSource reads the whole input as stripped source lines.
func readSource(input io.Reader) (lines []sourceLine, err error) {
	scanner := bufio.NewScanner(input)

	var lineno int
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1
		lines = append(lines, sourceLine{LineNo: lineno, Line: text, Body: stripLine(text)})
	}

	err = scanner.Err()
	return
}

// isLabel returns true for a '(NAME)' line.
func (line sourceLine) isLabel() bool {
	return strings.HasPrefix(line.Body, "(")
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	lines, err := readSource(input)
	if err != nil {
		return
	}

	asm.Symbols = NewSymbolTable(asm.predefine)
	asm.Opcode = asm.Opcode[:0]

	err = asm.resolveLabels(lines)
	if err != nil {
		return
	}

	err = asm.generate(lines)
	if err != nil {
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Symbols: asm.Symbols,
	}

	return
}

// resolveLabels is the first pass, recording each label at the address of
// the instruction that follows it.
func (asm *Assembler) resolveLabels(lines []sourceLine) (err error) {
	var pc int

	for _, line := range lines {
		switch {
		case len(line.Body) == 0:
			continue
		case line.isLabel():
			err = asm.defineLabel(line.Body, pc)
		case pc >= ROM_SIZE:
			err = ErrBinarySize
		default:
			pc++
		}

		if err != nil {
			err = ErrSyntax{LineNo: line.LineNo, Line: line.Line, Err: err}
			return
		}
	}

	return
}

// defineLabel parses a '(NAME)' line.
func (asm *Assembler) defineLabel(body string, pc int) (err error) {
	if len(body) < 3 || !strings.HasSuffix(body, ")") {
		err = ErrLabelSyntax
		return
	}

	name := body[1 : len(body)-1]
	if !validSymbol(name) {
		err = ErrSymbolInvalid
		return
	}

	// A label past the last ROM word has no A-instruction encoding.
	if pc >= ROM_SIZE {
		err = ErrBinarySize
		return
	}

	err = asm.Symbols.DefineLabel(name, uint16(pc))
	return
}

// generate is the second pass, emitting one opcode per instruction line.
func (asm *Assembler) generate(lines []sourceLine) (err error) {
	for _, line := range lines {
		if len(line.Body) == 0 || line.isLabel() {
			continue
		}

		if asm.Verbose {
			log.Printf("%v: %v\n", line.LineNo, line.Line)
		}

		var code Code
		code, err = asm.parseInstruction(line.Body)
		if err != nil {
			err = ErrSyntax{LineNo: line.LineNo, Line: line.Line, Err: err}
			return
		}

		opcode := Opcode{LineNo: line.LineNo, Pc: len(asm.Opcode), Text: line.Body, Code: code}
		asm.Opcode = append(asm.Opcode, opcode)
	}

	return
}

// parseInstruction assembles a single A- or C-instruction.
func (asm *Assembler) parseInstruction(body string) (code Code, err error) {
	if token, ok := strings.CutPrefix(body, "@"); ok {
		var addr uint16
		addr, err = asm.resolve(token)
		if err != nil {
			return
		}
		code = MakeCodeAddress(addr)
		return
	}

	if strings.ContainsAny(body, "@()") {
		err = ErrInstructionInvalid
		return
	}

	code, err = parseCompute(body)
	return
}

// resolve resolves an A-instruction operand, allocating a variable for
// an unknown symbol.
func (asm *Assembler) resolve(token string) (addr uint16, err error) {
	if len(token) == 0 {
		err = ErrSymbolInvalid
		return
	}

	if token[0] >= '0' && token[0] <= '9' {
		var value uint64
		value, err = strconv.ParseUint(token, 10, 16)
		if err != nil {
			err = ErrParseNumber(token)
			return
		}
		if value > uint64(CODE_ADDR_MAX) {
			err = ErrConstantRange
			return
		}
		addr = uint16(value)
		return
	}

	if !validSymbol(token) {
		err = ErrSymbolInvalid
		return
	}

	addr, ok := asm.Symbols.Lookup(token)
	if ok {
		return
	}

	if asm.Strict {
		err = ErrSymbolUndefined(token)
		return
	}

	addr, err = asm.Symbols.Allocate(token)
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("variable %v at %v", token, addr)
	}

	return
}

// parseCompute assembles a 'dest=comp;jump' instruction.
func parseCompute(body string) (code Code, err error) {
	dest := DEST_NONE
	jump := JUMP_NONE

	text := body
	if lhs, rhs, ok := strings.Cut(text, "="); ok {
		dest, err = parseDest(lhs)
		if err != nil {
			return
		}
		text = rhs
	}

	if lhs, rhs, ok := strings.Cut(text, ";"); ok {
		jump, ok = jumpMap[rhs]
		if !ok {
			err = ErrJumpInvalid
			return
		}
		text = lhs
	}

	comp, ok := compMap[text]
	if !ok {
		err = ErrCompInvalid
		return
	}

	code = MakeCodeCompute(dest, comp, jump)
	return
}
