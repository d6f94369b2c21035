package cpu

import (
	"errors"

	"github.com/ezrec/hack/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrPcRange = errors.New(f("pc beyond program"))

	// Assembler errors
	ErrLabelSyntax        = errors.New(f("label syntax"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrSymbolInvalid      = errors.New(f("symbol invalid"))
	ErrConstantRange      = errors.New(f("constant out of range"))
	ErrVariableSpace      = errors.New(f("variable space exhausted"))
	ErrCompInvalid        = errors.New(f("comp invalid"))
	ErrDestInvalid        = errors.New(f("dest invalid"))
	ErrJumpInvalid        = errors.New(f("jump invalid"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))

	// Binary image errors
	ErrBinaryInvalid = errors.New(f("binary word invalid"))
	ErrBinarySize    = errors.New(f("binary exceeds rom"))
)

// ErrSymbolUndefined is returned for a reference to an unknown symbol
// when implicit variables are disabled.
type ErrSymbolUndefined string

func (es ErrSymbolUndefined) Error() string {
	return f("symbol %v undefined", string(es))
}

// ErrOpcode reports an instruction the CPU could not execute.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%04x %v", uint16(eo), Code(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrAddressRange reports a memory access beyond the end of RAM.
type ErrAddressRange struct {
	Pc      uint16
	Address uint16
}

func (err ErrAddressRange) Error() string {
	return f("pc %d address %d out of range", err.Pc, err.Address)
}

func (err ErrAddressRange) Is(target error) (ok bool) {
	_, ok = target.(ErrAddressRange)
	return
}

// ErrSyntax locates an assembler or loader error in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}
