package emulator

import (
	"errors"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/hack/cpu"
)

// CompileHalt compiles a Starlark expression into a halt predicate.
//
// The expression sees the registers D, A and PC, the tick count as
// 'cycles', every symbol of the running program, and a ram(addr)
// builtin. D, A and ram() values are signed 16-bit integers.
//
//	PC == END and ram(R2) > 0
//
// Evaluation errors stop the run; they are reported by Err.
func CompileHalt(expr string) (halt *HaltExpr, err error) {
	opts := syntax.FileOptions{}
	parsed, err := opts.ParseExpr("halt", expr, 0)
	if err != nil {
		err = errors.Join(ErrHaltExpression, err)
		return
	}

	halt = &HaltExpr{
		Source: expr,
		expr:   parsed,
	}
	return
}

// HaltExpr is a compiled halt expression.
type HaltExpr struct {
	Source string // Expression text.
	Err    error  // First evaluation error, if any.

	expr    syntax.Expr
	emu     *Emulator
	symbols *cpu.SymbolTable
	globals starlark.StringDict
}

// env builds the evaluation environment for the current machine state.
// The environment is rebuilt whenever the emulator or its program changes.
func (he *HaltExpr) env(emu *Emulator) starlark.StringDict {
	if he.globals == nil || he.emu != emu || he.symbols != emu.Program.Symbols {
		he.emu = emu
		he.symbols = emu.Program.Symbols
		he.globals = starlark.StringDict{}
		if he.symbols != nil {
			for name, addr := range he.symbols.All() {
				he.globals[name] = starlark.MakeInt(int(addr))
			}
		}
		he.globals["ram"] = starlark.NewBuiltin("ram", func(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
			var addr int
			err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &addr)
			if err != nil {
				return nil, err
			}
			if addr < 0 || addr > 0xffff {
				return nil, cpu.ErrAddressRange{Pc: emu.Cpu.Pc, Address: uint16(addr)}
			}
			value, err := emu.Ram.Read(uint16(addr))
			if err != nil {
				return nil, cpu.ErrAddressRange{Pc: emu.Cpu.Pc, Address: uint16(addr)}
			}
			return starlark.MakeInt(int(int16(value))), nil
		})
	}

	he.globals["D"] = starlark.MakeInt(int(int16(emu.Cpu.D)))
	he.globals["A"] = starlark.MakeInt(int(int16(emu.Cpu.A)))
	he.globals["PC"] = starlark.MakeInt(int(emu.Cpu.Pc))
	he.globals["cycles"] = starlark.MakeInt(emu.Cpu.Ticks)

	return he.globals
}

// Eval evaluates the expression against the emulator state.
func (he *HaltExpr) Eval(emu *Emulator) (stop bool, err error) {
	thread := starlark.Thread{Name: "halt"}
	opts := syntax.FileOptions{}

	value, err := starlark.EvalExprOptions(&opts, &thread, he.expr, he.env(emu))
	if err != nil {
		err = fmt.Errorf("%w: %v: %w", ErrHaltExpression, he.Source, err)
		return
	}

	stop = bool(value.Truth())
	return
}

// Halt returns the expression as a halt predicate. An evaluation error
// halts the run and is kept in Err.
func (he *HaltExpr) Halt() Halt {
	return func(emu *Emulator) bool {
		stop, err := he.Eval(emu)
		if err != nil {
			he.Err = err
			return true
		}
		return stop
	}
}
