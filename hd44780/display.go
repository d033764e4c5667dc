// Package hd44780 drives HD44780 character LCDs behind a PCF8574 I2C
// backpack as a console.Display.
//
// Positions are character cells, so both fonts are one cell wide and one
// cell tall and colours are ignored. A 16x2 panel gives every level one row:
// none and heading share the top row, message and error the bottom one.
//
// Example usage:
//
//	lcd := hd44780.New(machine.I2C0, 16, 2)
//	c := console.New(lcd, console.Config{Logger: logger})
//	c.Init()
package hd44780

import (
	"errors"
	"image/color"

	"github.com/harveysanders/lcdconsole/console"
	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/hd44780i2c"
)

// Addresses lists the usual backpack addresses, probed in order.
var Addresses = []uint8{0x27, 0x3F}

// ErrNotFound is returned by Configure when no backpack answers.
var ErrNotFound = errors.New("LCD not found on addresses: 0x27, 0x3f")

// Display is a character LCD console display.
type Display struct {
	bus     drivers.I2C
	device  hd44780i2c.Device
	addr    uint8
	columns uint8
	rows    uint8
	glyph   [1]byte // reused by DrawGlyph, Print takes a slice
}

// New returns a display for a columns x rows panel on bus. The panel is not
// touched until Configure.
func New(bus drivers.I2C, columns, rows uint8) *Display {
	return &Display{bus: bus, columns: columns, rows: rows}
}

// Configure finds the backpack and initializes the controller.
func (d *Display) Configure() error {
	found := false
	for _, a := range Addresses {
		// The expander acks any single byte; 0x08 keeps the backlight on.
		if err := d.bus.Tx(uint16(a), []byte{0x08}, nil); err != nil {
			continue
		}
		d.addr = a
		found = true
		break
	}
	if !found {
		return ErrNotFound
	}
	d.device = hd44780i2c.New(d.bus, d.addr)
	err := d.device.Configure(hd44780i2c.Config{
		Width:  d.columns,
		Height: d.rows,
	})
	if err != nil {
		return errors.New("hd44780: configure:" + err.Error())
	}
	return nil
}

// Addr returns the address Configure found the panel on.
func (d *Display) Addr() uint8 { return d.addr }

// Size returns the panel size in cells.
func (d *Display) Size() (int16, int16) { return int16(d.columns), int16(d.rows) }

// SetFont is a no-op, the controller has one font.
func (d *Display) SetFont(console.Font) {}

// SetForeground is a no-op on a monochrome panel.
func (d *Display) SetForeground(color.RGBA) {}

// SetBackground is a no-op on a monochrome panel.
func (d *Display) SetBackground(color.RGBA) {}

// Clear blanks the panel and homes the cursor.
func (d *Display) Clear() { d.device.ClearDisplay() }

// DrawGlyph writes ch into cell (x, y). Cells off the panel are ignored.
func (d *Display) DrawGlyph(x, y int16, ch byte) {
	if x < 0 || y < 0 || x >= int16(d.columns) || y >= int16(d.rows) {
		return
	}
	d.device.SetCursor(uint8(x), uint8(y))
	d.glyph[0] = ch
	d.device.Print(d.glyph[:])
}

// GlyphSize is one cell for every font.
func (d *Display) GlyphSize(console.Font) (int16, int16) { return 1, 1 }
