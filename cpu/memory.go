package cpu

const (
	RAM_SIZE      = 0x8000 // Words of data memory.
	ROM_SIZE      = 0x8000 // Words of instruction memory.
	SCREEN_BASE   = 0x4000 // Screen bitmap, 32 words per row.
	SCREEN_WORDS  = 0x2000 // Words in the screen bitmap.
	KBD           = 0x6000 // Keyboard register.
	VARIABLE_BASE = 16     // First address handed out to assembler variables.
)

// Memory is the Hack data memory, including the memory mapped screen and
// keyboard. It is owned by a single driver, which passes it to the Cpu
// on every Tick.
type Memory [RAM_SIZE]uint16

// Read returns the word at addr.
func (mem *Memory) Read(addr uint16) (value uint16, err error) {
	if int(addr) >= len(mem) {
		err = ErrAddressRange{Address: addr}
		return
	}

	value = mem[addr]
	return
}

// Write stores value at addr.
func (mem *Memory) Write(addr uint16, value uint16) (err error) {
	if int(addr) >= len(mem) {
		err = ErrAddressRange{Address: addr}
		return
	}

	mem[addr] = value
	return
}

// Reset zeros all of memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}
