package vmtrans

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ezrec/hack/cpu"
)

// CommandKind is the operation of a VM command.
type CommandKind int

const (
	CMD_ARITHMETIC = CommandKind(iota)
	CMD_PUSH
	CMD_POP
	CMD_LABEL
	CMD_GOTO
	CMD_IF_GOTO
	CMD_FUNCTION
	CMD_CALL
	CMD_RETURN
)

var commandNames = map[string]CommandKind{
	"push":     CMD_PUSH,
	"pop":      CMD_POP,
	"label":    CMD_LABEL,
	"goto":     CMD_GOTO,
	"if-goto":  CMD_IF_GOTO,
	"function": CMD_FUNCTION,
	"call":     CMD_CALL,
	"return":   CMD_RETURN,
}

// arithmetic lists the stack operators, with their ALU mnemonic.
var arithmetic = map[string]string{
	"add": "D+M",
	"sub": "M-D",
	"and": "D&M",
	"or":  "D|M",
	"neg": "-M",
	"not": "!M",
	"eq":  "JEQ",
	"gt":  "JGT",
	"lt":  "JLT",
}

// Segment is a VM memory segment.
type Segment string

const (
	SEG_ARGUMENT = Segment("argument")
	SEG_LOCAL    = Segment("local")
	SEG_STATIC   = Segment("static")
	SEG_CONSTANT = Segment("constant")
	SEG_THIS     = Segment("this")
	SEG_THAT     = Segment("that")
	SEG_POINTER  = Segment("pointer")
	SEG_TEMP     = Segment("temp")
)

const (
	TEMP_BASE    = 5 // R5..R12
	TEMP_SIZE    = 8
	POINTER_BASE = 3 // THIS, THAT
	POINTER_SIZE = 2
	STACK_BASE   = 256 // Initial SP set by the bootstrap.
)

// segmentBase maps the indirect segments to their base pointer symbol.
var segmentBase = map[Segment]string{
	SEG_ARGUMENT: "ARG",
	SEG_LOCAL:    "LCL",
	SEG_THIS:     "THIS",
	SEG_THAT:     "THAT",
}

// segmentLimit is one past the largest index of a segment.
var segmentLimit = map[Segment]int{
	SEG_ARGUMENT: int(cpu.CODE_ADDR_MAX) + 1,
	SEG_LOCAL:    int(cpu.CODE_ADDR_MAX) + 1,
	SEG_STATIC:   cpu.SCREEN_BASE - cpu.VARIABLE_BASE,
	SEG_CONSTANT: int(cpu.CODE_ADDR_MAX) + 1,
	SEG_THIS:     int(cpu.CODE_ADDR_MAX) + 1,
	SEG_THAT:     int(cpu.CODE_ADDR_MAX) + 1,
	SEG_POINTER:  POINTER_SIZE,
	SEG_TEMP:     TEMP_SIZE,
}

// Command is a single parsed VM command.
type Command struct {
	LineNo int         // Source line number.
	Text   string      // Command text, without comments.
	Kind   CommandKind // Operation.

	Operator string  // Arithmetic operator.
	Segment  Segment // Push and pop segment.
	Name     string  // Label, or function name.
	Index    int     // Segment index, function locals, or call arguments.
}

var nameRegexp = regexp.MustCompile(`^[A-Za-z_.:][A-Za-z0-9_.:]*$`)

// parseIndex parses a non-negative decimal argument.
func parseIndex(word string) (index int, err error) {
	value, err := strconv.ParseUint(word, 10, 15)
	if err != nil {
		err = ErrIndexRange
		return
	}

	index = int(value)
	return
}

// ParseCommand parses one line of VM code. Blank and comment-only lines
// return a nil command.
func ParseCommand(line string) (cmd *Command, err error) {
	text, _, _ := strings.Cut(line, "//")
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	cmd = &Command{Text: strings.Join(words, " ")}

	if _, ok := arithmetic[words[0]]; ok {
		if len(words) != 1 {
			err = ErrArgumentCount
			return
		}
		cmd.Kind = CMD_ARITHMETIC
		cmd.Operator = words[0]
		return
	}

	kind, ok := commandNames[words[0]]
	if !ok {
		err = ErrCommandInvalid
		return
	}
	cmd.Kind = kind

	argc := map[CommandKind]int{
		CMD_PUSH:     2,
		CMD_POP:      2,
		CMD_LABEL:    1,
		CMD_GOTO:     1,
		CMD_IF_GOTO:  1,
		CMD_FUNCTION: 2,
		CMD_CALL:     2,
		CMD_RETURN:   0,
	}[kind]
	if len(words) != argc+1 {
		err = ErrArgumentCount
		return
	}

	switch kind {
	case CMD_PUSH, CMD_POP:
		cmd.Segment = Segment(words[1])
		limit, ok := segmentLimit[cmd.Segment]
		if !ok {
			err = ErrSegmentInvalid
			return
		}
		if kind == CMD_POP && cmd.Segment == SEG_CONSTANT {
			err = ErrPopConstant
			return
		}
		cmd.Index, err = parseIndex(words[2])
		if err != nil {
			return
		}
		if cmd.Index >= limit {
			err = ErrIndexRange
			return
		}
	case CMD_LABEL, CMD_GOTO, CMD_IF_GOTO, CMD_FUNCTION, CMD_CALL:
		cmd.Name = words[1]
		if !nameRegexp.MatchString(cmd.Name) {
			err = ErrNameInvalid
			return
		}
		if argc == 2 {
			cmd.Index, err = parseIndex(words[2])
			if err != nil {
				return
			}
		}
	}

	return
}
