package cpu

import (
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/ezrec/hack/internal"
)

// sysSymbol holds the predefined symbols of the Hack platform.
var sysSymbol = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": SCREEN_BASE,
	"KBD":    KBD,
}

func init() {
	for n := range 16 {
		sysSymbol[fmt.Sprintf("R%d", n)] = uint16(n)
	}
}

// SymbolTable maps symbols to resolved addresses.
//
// Labels are recorded by the first assembler pass, and variables by the
// second. Once assembly completes the table is read-only.
type SymbolTable struct {
	Predefined map[string]uint16 // Platform and caller supplied symbols.
	Label      map[string]uint16 // Jump labels to ROM addresses.
	Variable   map[string]uint16 // Variables to RAM addresses.

	variables    []string // Variables in allocation order.
	nextVariable uint16
}

// NewSymbolTable creates a symbol table holding the platform symbols and
// any extra predefines.
func NewSymbolTable(predefine map[string]uint16) (st *SymbolTable) {
	st = &SymbolTable{
		Predefined:   maps.Clone(sysSymbol),
		Label:        map[string]uint16{},
		Variable:     map[string]uint16{},
		nextVariable: VARIABLE_BASE,
	}
	maps.Copy(st.Predefined, predefine)

	return
}

// Lookup resolves a symbol.
func (st *SymbolTable) Lookup(name string) (addr uint16, ok bool) {
	if addr, ok = st.Predefined[name]; ok {
		return
	}
	if addr, ok = st.Label[name]; ok {
		return
	}
	addr, ok = st.Variable[name]
	return
}

// DefineLabel records a label at a ROM address.
func (st *SymbolTable) DefineLabel(name string, addr uint16) (err error) {
	if _, ok := st.Predefined[name]; ok {
		err = ErrLabelDuplicate
		return
	}
	if _, ok := st.Label[name]; ok {
		err = ErrLabelDuplicate
		return
	}

	st.Label[name] = addr
	return
}

// Allocate assigns the next free variable address to name.
func (st *SymbolTable) Allocate(name string) (addr uint16, err error) {
	if st.nextVariable >= SCREEN_BASE {
		err = ErrVariableSpace
		return
	}

	addr = st.nextVariable
	st.nextVariable++
	st.Variable[name] = addr
	st.variables = append(st.variables, name)

	return
}

// Variables returns the variable names in allocation order.
func (st *SymbolTable) Variables() []string {
	return slices.Clone(st.variables)
}

// sortedSeq iterates a symbol map in name order.
func sortedSeq(table map[string]uint16) iter.Seq2[string, uint16] {
	return func(yield func(string, uint16) bool) {
		for _, name := range slices.Sorted(maps.Keys(table)) {
			if !yield(name, table[name]) {
				return
			}
		}
	}
}

// All iterates predefined symbols, then labels (both by name), then
// variables in allocation order.
func (st *SymbolTable) All() iter.Seq2[string, uint16] {
	var variables iter.Seq2[string, uint16] = func(yield func(string, uint16) bool) {
		for _, name := range st.variables {
			if !yield(name, st.Variable[name]) {
				return
			}
		}
	}

	return internal.IterSeq2Concat(sortedSeq(st.Predefined), sortedSeq(st.Label), variables)
}
