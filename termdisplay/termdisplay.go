// Package termdisplay shows a console on a terminal through tcell, one
// character cell per glyph. It stands in for the panel when running on a
// host.
package termdisplay

import (
	"image/color"

	"github.com/gdamore/tcell/v2"
	"github.com/harveysanders/lcdconsole/console"
)

// Display is a console.Display on a tcell screen.
type Display struct {
	screen tcell.Screen
	fg, bg color.RGBA
	style  tcell.Style
	// Large text is drawn bold, there is only one cell size.
	bold bool
}

// New wraps an initialized screen.
func New(screen tcell.Screen) *Display {
	d := &Display{screen: screen, fg: console.White, bg: console.Blue}
	d.restyle()
	return d
}

// Size returns the screen size in cells.
func (d *Display) Size() (int16, int16) {
	w, h := d.screen.Size()
	return int16(w), int16(h)
}

// SetFont draws the large font bold.
func (d *Display) SetFont(f console.Font) {
	d.bold = f == console.FontLarge
	d.restyle()
}

// SetForeground sets the text colour of following glyphs.
func (d *Display) SetForeground(c color.RGBA) {
	d.fg = c
	d.restyle()
}

// SetBackground sets the colour used by Clear and behind glyphs.
func (d *Display) SetBackground(c color.RGBA) {
	d.bg = c
	d.restyle()
}

// Clear fills the screen with the background colour.
func (d *Display) Clear() {
	d.screen.Fill(' ', tcell.StyleDefault.Background(rgb(d.bg)))
	d.screen.Show()
}

// DrawGlyph puts ch into cell (x, y). Nothing shows until Flush.
func (d *Display) DrawGlyph(x, y int16, ch byte) {
	d.screen.SetContent(int(x), int(y), rune(ch), nil, d.style)
}

// GlyphSize is one cell for every font.
func (d *Display) GlyphSize(console.Font) (int16, int16) { return 1, 1 }

// Flush shows the drawn cells.
func (d *Display) Flush() error {
	d.screen.Show()
	return nil
}

func (d *Display) restyle() {
	d.style = tcell.StyleDefault.
		Foreground(rgb(d.fg)).
		Background(rgb(d.bg)).
		Bold(d.bold)
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
