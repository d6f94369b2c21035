// Package vmtrans translates stack machine VM code into Hack assembly.
//
// The output is plain Hack assembly text, ready for cpu.Assembler.
package vmtrans

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ezrec/hack/cpu"
)

// module is the parsed commands of one .vm file.
type module struct {
	Name     string
	Commands []*Command
}

// Translator converts VM modules to Hack assembly.
type Translator struct {
	Verbose   bool // If set, logs each translated command.
	Bootstrap bool // If set, emits SP=256 and 'call Sys.init 0' first.

	modules   []module
	functions map[string]int // Function names to their defining line.
}

// Parse reads one VM module. name is the module (file stem) name; it
// qualifies the module's static variables.
func (tr *Translator) Parse(name string, input io.Reader) (err error) {
	if !nameRegexp.MatchString(name) {
		err = ErrModuleInvalid
		return
	}
	if tr.functions == nil {
		tr.functions = map[string]int{}
	}

	mod := module{Name: name}

	scanner := bufio.NewScanner(input)

	var lineno int
	var function string
	for scanner.Scan() {
		line := scanner.Text()
		lineno += 1

		var cmd *Command
		cmd, err = ParseCommand(line)
		if err == nil && cmd != nil {
			switch cmd.Kind {
			case CMD_FUNCTION:
				function = cmd.Name
				tr.functions[function] = lineno
			case CMD_RETURN:
				if len(function) == 0 {
					err = ErrReturnOutside
				}
			}
		}
		if err != nil {
			err = cpu.ErrSyntax{LineNo: lineno, Line: line, Err: err}
			return
		}
		if cmd == nil {
			continue
		}

		cmd.LineNo = lineno
		mod.Commands = append(mod.Commands, cmd)
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	tr.modules = append(tr.modules, mod)
	return
}

// emitter writes assembly lines, keeping the first write error.
type emitter struct {
	w       *bufio.Writer
	err     error
	labelNo int
}

func (em *emitter) line(format string, args ...any) {
	if em.err != nil {
		return
	}
	_, em.err = fmt.Fprintf(em.w, format+"\n", args...)
}

// lines writes fixed assembly lines.
func (em *emitter) lines(text ...string) {
	for _, line := range text {
		em.line("%s", line)
	}
}

// unique returns a fresh internal label.
func (em *emitter) unique(kind string) string {
	em.labelNo++
	return fmt.Sprintf("$%s.%d", kind, em.labelNo)
}

// pushD pushes the D register.
func (em *emitter) pushD() {
	em.lines("@SP", "A=M", "M=D", "@SP", "M=M+1")
}

// popD pops the top of stack into D.
func (em *emitter) popD() {
	em.lines("@SP", "AM=M-1", "D=M")
}

// WriteAsm writes all parsed modules as Hack assembly.
func (tr *Translator) WriteAsm(output io.Writer) (err error) {
	em := &emitter{w: bufio.NewWriter(output)}

	if tr.Bootstrap {
		if _, ok := tr.functions["Sys.init"]; !ok {
			err = ErrFunctionMissing
			return
		}
		em.line("// bootstrap")
		em.lines(fmt.Sprintf("@%d", STACK_BASE), "D=A", "@SP", "M=D")
		tr.call(em, "bootstrap", "Sys.init", 0)
	}

	for _, mod := range tr.modules {
		scope := mod.Name
		for _, cmd := range mod.Commands {
			if cmd.Kind == CMD_FUNCTION {
				scope = cmd.Name
			}
			if tr.Verbose {
				log.Printf("%v:%v: %v", mod.Name, cmd.LineNo, cmd.Text)
			}
			em.line("// %s", cmd.Text)
			tr.command(em, mod.Name, scope, cmd)
		}
	}

	if em.err != nil {
		err = em.err
		return
	}

	err = em.w.Flush()
	return
}

// command emits the assembly of a single command.
func (tr *Translator) command(em *emitter, modName string, scope string, cmd *Command) {
	switch cmd.Kind {
	case CMD_ARITHMETIC:
		tr.arithmetic(em, cmd.Operator)
	case CMD_PUSH:
		tr.push(em, modName, cmd.Segment, cmd.Index)
	case CMD_POP:
		tr.pop(em, modName, cmd.Segment, cmd.Index)
	case CMD_LABEL:
		em.line("(%s$%s)", scope, cmd.Name)
	case CMD_GOTO:
		em.line("@%s$%s", scope, cmd.Name)
		em.line("0;JMP")
	case CMD_IF_GOTO:
		em.popD()
		em.line("@%s$%s", scope, cmd.Name)
		em.line("D;JNE")
	case CMD_FUNCTION:
		em.line("(%s)", cmd.Name)
		for range cmd.Index {
			em.lines("@SP", "A=M", "M=0", "@SP", "M=M+1")
		}
	case CMD_CALL:
		tr.call(em, scope, cmd.Name, cmd.Index)
	case CMD_RETURN:
		tr.ret(em)
	}
}

// arithmetic emits a stack operator.
func (tr *Translator) arithmetic(em *emitter, op string) {
	alu := arithmetic[op]
	switch op {
	case "neg", "not":
		em.lines("@SP", "A=M-1", "M="+alu)
	case "eq", "gt", "lt":
		done := em.unique("cmp")
		em.popD()
		em.lines("A=A-1", "D=M-D", "M=-1")
		em.line("@%s", done)
		em.line("D;%s", alu)
		em.lines("@SP", "A=M-1", "M=0")
		em.line("(%s)", done)
	default:
		em.popD()
		em.lines("A=A-1", "M="+alu)
	}
}

// address returns the fixed RAM symbol or address of a direct segment.
func address(modName string, seg Segment, index int) string {
	switch seg {
	case SEG_TEMP:
		return fmt.Sprintf("%d", TEMP_BASE+index)
	case SEG_POINTER:
		return fmt.Sprintf("%d", POINTER_BASE+index)
	default:
		return fmt.Sprintf("%s.%d", modName, index)
	}
}

// push emits a push from a segment.
func (tr *Translator) push(em *emitter, modName string, seg Segment, index int) {
	if base, ok := segmentBase[seg]; ok {
		em.line("@%d", index)
		em.line("D=A")
		em.line("@%s", base)
		em.lines("A=D+M", "D=M")
	} else if seg == SEG_CONSTANT {
		em.line("@%d", index)
		em.line("D=A")
	} else {
		em.line("@%s", address(modName, seg, index))
		em.line("D=M")
	}
	em.pushD()
}

// pop emits a pop into a segment. R13 holds the indirect target.
func (tr *Translator) pop(em *emitter, modName string, seg Segment, index int) {
	if base, ok := segmentBase[seg]; ok {
		em.line("@%d", index)
		em.line("D=A")
		em.line("@%s", base)
		em.lines("D=D+M", "@R13", "M=D")
		em.popD()
		em.lines("@R13", "A=M", "M=D")
		return
	}

	em.popD()
	em.line("@%s", address(modName, seg, index))
	em.line("M=D")
}

// call emits a function call with argc arguments already pushed.
func (tr *Translator) call(em *emitter, scope string, function string, argc int) {
	ret := fmt.Sprintf("%s$ret.%d", scope, em.labelNo+1)
	em.labelNo++

	em.line("@%s", ret)
	em.line("D=A")
	em.pushD()
	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		em.line("@%s", reg)
		em.line("D=M")
		em.pushD()
	}
	// ARG = SP - 5 - argc
	em.lines("@SP", "D=M")
	em.line("@%d", 5+argc)
	em.lines("D=D-A", "@ARG", "M=D")
	// LCL = SP
	em.lines("@SP", "D=M", "@LCL", "M=D")
	em.line("@%s", function)
	em.line("0;JMP")
	em.line("(%s)", ret)
}

// ret emits a function return. R13 holds the frame, R14 the return address.
func (tr *Translator) ret(em *emitter) {
	em.lines("@LCL", "D=M", "@R13", "M=D")
	em.lines("@5", "A=D-A", "D=M", "@R14", "M=D")
	em.popD()
	em.lines("@ARG", "A=M", "M=D")
	em.lines("@ARG", "D=M+1", "@SP", "M=D")
	for _, reg := range []string{"THAT", "THIS", "ARG", "LCL"} {
		em.lines("@R13", "AM=M-1", "D=M")
		em.line("@%s", reg)
		em.line("M=D")
	}
	em.lines("@R14", "A=M", "0;JMP")
}

// ParseFile reads a single .vm file, named by its file stem.
func (tr *Translator) ParseFile(path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	err = tr.Parse(name, inf)
	return
}

// Load reads a .vm file, or every .vm file of a directory in name order.
// A directory is a whole program, so it also turns on Bootstrap.
func (tr *Translator) Load(path string) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	if !info.IsDir() {
		err = tr.ParseFile(path)
		return
	}

	paths, err := filepath.Glob(filepath.Join(path, "*.vm"))
	if err != nil {
		return
	}
	slices.Sort(paths)

	for _, file := range paths {
		err = tr.ParseFile(file)
		if err != nil {
			return
		}
	}

	tr.Bootstrap = true
	return
}
