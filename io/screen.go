package io

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ezrec/hack/cpu"
)

const (
	SCREEN_WIDTH  = 512 // Pixels per row.
	SCREEN_HEIGHT = 256 // Rows.
	ROW_WORDS     = SCREEN_WIDTH / 16
)

// Screen reads the memory mapped bitmap. Each row is 32 words; the
// least significant bit of a word is its leftmost pixel, and a set bit
// is black.
type Screen struct {
	Scale int // Pixels per character edge for WriteText; 0 means 1.
}

// wordOf returns the memory address and bit of a pixel.
func wordOf(x, y int) (addr uint16, bit uint) {
	addr = uint16(cpu.SCREEN_BASE + y*ROW_WORDS + x/16)
	bit = uint(x % 16)
	return
}

// Pixel returns true if the pixel at (x, y) is black.
func (sc *Screen) Pixel(bus Bus, x, y int) (black bool, err error) {
	if x < 0 || x >= SCREEN_WIDTH || y < 0 || y >= SCREEN_HEIGHT {
		err = ErrPixelRange
		return
	}

	addr, bit := wordOf(x, y)
	word, err := bus.Read(addr)
	if err != nil {
		return
	}

	black = (word>>bit)&1 != 0
	return
}

// Row returns the bitmap words of a row.
func (sc *Screen) Row(bus Bus, y int) (words [ROW_WORDS]uint16, err error) {
	if y < 0 || y >= SCREEN_HEIGHT {
		err = ErrPixelRange
		return
	}

	for n := range words {
		words[n], err = bus.Read(uint16(cpu.SCREEN_BASE + y*ROW_WORDS + n))
		if err != nil {
			return
		}
	}

	return
}

// WritePBM writes the screen as a plain (P1) portable bitmap.
func (sc *Screen) WritePBM(bus Bus, output io.Writer) (err error) {
	w := bufio.NewWriter(output)

	fmt.Fprintf(w, "P1\n%d %d\n", SCREEN_WIDTH, SCREEN_HEIGHT)
	for y := range SCREEN_HEIGHT {
		var row [ROW_WORDS]uint16
		row, err = sc.Row(bus, y)
		if err != nil {
			return
		}
		// PBM lines should stay under 70 characters.
		for n, word := range row {
			for bit := range 16 {
				w.WriteByte('0' + byte((word>>bit)&1))
			}
			if n%4 == 3 {
				w.WriteByte('\n')
			}
		}
	}

	err = w.Flush()
	return
}

// WriteText writes the screen as text, one character per Scale x Scale
// block of pixels. A block with any black pixel is drawn as '#'.
func (sc *Screen) WriteText(bus Bus, output io.Writer) (err error) {
	scale := max(sc.Scale, 1)

	w := bufio.NewWriter(output)

	for y := 0; y < SCREEN_HEIGHT; y += scale {
		for x := 0; x < SCREEN_WIDTH; x += scale {
			ch := byte('.')
		block:
			for dy := range min(scale, SCREEN_HEIGHT-y) {
				for dx := range min(scale, SCREEN_WIDTH-x) {
					var black bool
					black, err = sc.Pixel(bus, x+dx, y+dy)
					if err != nil {
						return
					}
					if black {
						ch = '#'
						break block
					}
				}
			}
			w.WriteByte(ch)
		}
		w.WriteByte('\n')
	}

	err = w.Flush()
	return
}
