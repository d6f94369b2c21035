// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"strings"
)

// CodeComp is the 7-bit computation field (a-bit plus c1..c6) of a C-instruction.
type CodeComp uint16

const (
	COMP_ZERO       = CodeComp(0b0_101010) // 0
	COMP_ONE        = CodeComp(0b0_111111) // 1
	COMP_MINUS_ONE  = CodeComp(0b0_111010) // -1
	COMP_D          = CodeComp(0b0_001100) // D
	COMP_A          = CodeComp(0b0_110000) // A
	COMP_NOT_D      = CodeComp(0b0_001101) // !D
	COMP_NOT_A      = CodeComp(0b0_110001) // !A
	COMP_NEG_D      = CodeComp(0b0_001111) // -D
	COMP_NEG_A      = CodeComp(0b0_110011) // -A
	COMP_D_PLUS_1   = CodeComp(0b0_011111) // D+1
	COMP_A_PLUS_1   = CodeComp(0b0_110111) // A+1
	COMP_D_MINUS_1  = CodeComp(0b0_001110) // D-1
	COMP_A_MINUS_1  = CodeComp(0b0_110010) // A-1
	COMP_D_PLUS_A   = CodeComp(0b0_000010) // D+A
	COMP_D_MINUS_A  = CodeComp(0b0_010011) // D-A
	COMP_A_MINUS_D  = CodeComp(0b0_000111) // A-D
	COMP_D_AND_A    = CodeComp(0b0_000000) // D&A
	COMP_D_OR_A     = CodeComp(0b0_010101) // D|A
	COMP_M          = CodeComp(0b1_110000) // M
	COMP_NOT_M      = CodeComp(0b1_110001) // !M
	COMP_NEG_M      = CodeComp(0b1_110011) // -M
	COMP_M_PLUS_1   = CodeComp(0b1_110111) // M+1
	COMP_M_MINUS_1  = CodeComp(0b1_110010) // M-1
	COMP_D_PLUS_M   = CodeComp(0b1_000010) // D+M
	COMP_D_MINUS_M  = CodeComp(0b1_010011) // D-M
	COMP_M_MINUS_D  = CodeComp(0b1_000111) // M-D
	COMP_D_AND_M    = CodeComp(0b1_000000) // D&M
	COMP_D_OR_M     = CodeComp(0b1_010101) // D|M
	COMP_A_BIT      = CodeComp(0b1_000000) // Selects M instead of A as the y operand.
	COMP_FIELD_MASK = CodeComp(0b1_111111)
)

// compTable lists the canonical comp mnemonics in disassembly spelling.
var compTable = []struct {
	Name string
	Comp CodeComp
}{
	{"0", COMP_ZERO},
	{"1", COMP_ONE},
	{"-1", COMP_MINUS_ONE},
	{"D", COMP_D},
	{"A", COMP_A},
	{"!D", COMP_NOT_D},
	{"!A", COMP_NOT_A},
	{"-D", COMP_NEG_D},
	{"-A", COMP_NEG_A},
	{"D+1", COMP_D_PLUS_1},
	{"A+1", COMP_A_PLUS_1},
	{"D-1", COMP_D_MINUS_1},
	{"A-1", COMP_A_MINUS_1},
	{"D+A", COMP_D_PLUS_A},
	{"D-A", COMP_D_MINUS_A},
	{"A-D", COMP_A_MINUS_D},
	{"D&A", COMP_D_AND_A},
	{"D|A", COMP_D_OR_A},
	{"M", COMP_M},
	{"!M", COMP_NOT_M},
	{"-M", COMP_NEG_M},
	{"M+1", COMP_M_PLUS_1},
	{"M-1", COMP_M_MINUS_1},
	{"D+M", COMP_D_PLUS_M},
	{"D-M", COMP_D_MINUS_M},
	{"M-D", COMP_M_MINUS_D},
	{"D&M", COMP_D_AND_M},
	{"D|M", COMP_D_OR_M},
}

// compAlias holds the commutative spellings accepted by the assembler.
var compAlias = map[string]CodeComp{
	"1+D": COMP_D_PLUS_1,
	"1+A": COMP_A_PLUS_1,
	"1+M": COMP_M_PLUS_1,
	"A+D": COMP_D_PLUS_A,
	"A&D": COMP_D_AND_A,
	"A|D": COMP_D_OR_A,
	"M+D": COMP_D_PLUS_M,
	"M&D": COMP_D_AND_M,
	"M|D": COMP_D_OR_M,
}

var (
	compMap       = map[string]CodeComp{} // Every accepted spelling.
	compCanonical = map[CodeComp]string{} // Disassembly spelling.
)

func init() {
	for _, entry := range compTable {
		compMap[entry.Name] = entry.Comp
		compCanonical[entry.Comp] = entry.Name
	}
	for name, comp := range compAlias {
		compMap[name] = comp
	}
}

// String returns the canonical mnemonic, or the raw bits if not a known form.
func (comp CodeComp) String() string {
	name, ok := compCanonical[comp&COMP_FIELD_MASK]
	if !ok {
		return fmt.Sprintf("comp(0b%07b)", uint16(comp&COMP_FIELD_MASK))
	}
	return name
}

// UsesMemory returns true if the computation reads M.
func (comp CodeComp) UsesMemory() bool {
	return (comp & COMP_A_BIT) != 0
}

// CodeDest is the 3-bit destination field of a C-instruction.
type CodeDest uint16

const (
	DEST_NONE = CodeDest(0)
	DEST_M    = CodeDest(0b001)
	DEST_D    = CodeDest(0b010)
	DEST_A    = CodeDest(0b100)
)

// String returns the destination mnemonic in canonical A, M, D order.
func (dest CodeDest) String() (out string) {
	if dest&DEST_A != 0 {
		out += "A"
	}
	if dest&DEST_M != 0 {
		out += "M"
	}
	if dest&DEST_D != 0 {
		out += "D"
	}
	return
}

// parseDest parses a destination mnemonic.
// Letters may appear in any order, but each at most once.
func parseDest(word string) (dest CodeDest, err error) {
	if len(word) == 0 || len(word) > 3 {
		err = ErrDestInvalid
		return
	}
	for _, ch := range word {
		var bit CodeDest
		switch ch {
		case 'A':
			bit = DEST_A
		case 'D':
			bit = DEST_D
		case 'M':
			bit = DEST_M
		default:
			err = ErrDestInvalid
			return
		}
		if dest&bit != 0 {
			err = ErrDestInvalid
			return
		}
		dest |= bit
	}
	return
}

// CodeJump is the 3-bit jump condition of a C-instruction.
type CodeJump uint16

const (
	JUMP_NONE = CodeJump(0b000)
	JUMP_JGT  = CodeJump(0b001) // JGT
	JUMP_JEQ  = CodeJump(0b010) // JEQ
	JUMP_JGE  = CodeJump(0b011) // JGE
	JUMP_JLT  = CodeJump(0b100) // JLT
	JUMP_JNE  = CodeJump(0b101) // JNE
	JUMP_JLE  = CodeJump(0b110) // JLE
	JUMP_JMP  = CodeJump(0b111) // JMP
)

var jumpNames = [8]string{"", "JGT", "JEQ", "JGE", "JLT", "JNE", "JLE", "JMP"}

var jumpMap = map[string]CodeJump{
	"JGT": JUMP_JGT,
	"JEQ": JUMP_JEQ,
	"JGE": JUMP_JGE,
	"JLT": JUMP_JLT,
	"JNE": JUMP_JNE,
	"JLE": JUMP_JLE,
	"JMP": JUMP_JMP,
}

func (jump CodeJump) String() string {
	return jumpNames[jump&0x7]
}

// Taken returns true if the jump condition holds for an ALU output.
func (jump CodeJump) Taken(out uint16) bool {
	neg := int16(out) < 0
	zero := out == 0
	pos := !neg && !zero

	return (jump&JUMP_JLT != 0 && neg) ||
		(jump&JUMP_JEQ != 0 && zero) ||
		(jump&JUMP_JGT != 0 && pos)
}

const (
	CODE_COMPUTE  = uint16(0b111 << 13) // Prefix bits of an assembled C-instruction.
	CODE_C_BIT    = uint16(1 << 15)     // Set for C-instructions.
	CODE_ADDR_MAX = uint16(0x7fff)      // Largest A-instruction constant.
)

// Code is a single 16-bit Hack machine instruction.
type Code uint16

// MakeCodeAddress creates an A-instruction.
func MakeCodeAddress(value uint16) Code {
	return Code(value & CODE_ADDR_MAX)
}

// MakeCodeCompute creates a C-instruction.
func MakeCodeCompute(dest CodeDest, comp CodeComp, jump CodeJump) Code {
	return Code(CODE_COMPUTE |
		(uint16(comp&COMP_FIELD_MASK) << 6) |
		(uint16(dest&0x7) << 3) |
		(uint16(jump & 0x7)))
}

// IsAddress returns true for an A-instruction.
func (code Code) IsAddress() bool {
	return uint16(code)&CODE_C_BIT == 0
}

// Address returns the constant of an A-instruction.
func (code Code) Address() uint16 {
	return uint16(code) & CODE_ADDR_MAX
}

// ComputeDecode decodes the fields of a C-instruction.
func (code Code) ComputeDecode() (dest CodeDest, comp CodeComp, jump CodeJump) {
	word := uint16(code)
	comp = CodeComp((word >> 6) & 0x7f)
	dest = CodeDest((word >> 3) & 0x7)
	jump = CodeJump((word >> 0) & 0x7)
	return
}

// Valid returns true if the code is an A-instruction, or a C-instruction
// with the reserved bits set and a known computation.
func (code Code) Valid() bool {
	if code.IsAddress() {
		return true
	}
	if uint16(code)&CODE_COMPUTE != CODE_COMPUTE {
		return false
	}
	_, comp, _ := code.ComputeDecode()
	_, ok := compCanonical[comp]
	return ok
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	if code.IsAddress() {
		return fmt.Sprintf("@%d", code.Address())
	}

	dest, comp, jump := code.ComputeDecode()

	var out strings.Builder
	if dest != DEST_NONE {
		out.WriteString(dest.String())
		out.WriteByte('=')
	}
	out.WriteString(comp.String())
	if jump != JUMP_NONE {
		out.WriteByte(';')
		out.WriteString(jump.String())
	}

	return out.String()
}

// Binary returns the 16 character '0'/'1' representation used by .hack files.
func (code Code) Binary() string {
	return fmt.Sprintf("%016b", uint16(code))
}
