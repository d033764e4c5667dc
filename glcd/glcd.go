// Package glcd paints console glyphs on pixel displays driven by
// tinygo.org/x/drivers, using tinyfont faces.
//
// Every glyph fills its cell with the background colour before the font
// bitmap is drawn, so a line printed over an older one leaves no residue.
package glcd

import (
	"image/color"

	"github.com/harveysanders/lcdconsole/console"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

// Face is a tinyfont font with the cell metrics the console lays it out by.
type Face struct {
	Font   tinyfont.Fonter
	Width  int16 // Horizontal advance.
	Height int16 // Line height.
	Ascent int16 // Distance from the top of the cell to the baseline.
}

// NewFace measures f. Fonts are expected to be monospaced.
func NewFace(f tinyfont.Fonter) Face {
	_, outbox := tinyfont.LineWidth(f, "0")
	h := int16(f.GetYAdvance())
	return Face{
		Font:   f,
		Width:  int16(outbox),
		Height: h,
		Ascent: h - h/4,
	}
}

// DefaultFaces returns the small and large faces used by the firmware.
func DefaultFaces() (small, large Face) {
	return NewFace(&proggy.TinySZ8pt7b), NewFace(&freemono.Bold9pt7b)
}

// screenFiller is implemented by drivers with a fast full-screen fill, such as ili9341.
type screenFiller interface {
	FillScreen(c color.RGBA)
}

// rectFiller is implemented by drivers that fill a window in one transfer.
// Setting pixels one at a time costs an SPI transaction each on ili9341.
type rectFiller interface {
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// Display adapts a drivers.Displayer to console.Display.
type Display struct {
	dev   drivers.Displayer
	faces [2]Face
	face  Face
	fg    color.RGBA
	bg    color.RGBA
}

// New returns a display drawing on dev with the given faces.
func New(dev drivers.Displayer, small, large Face) *Display {
	d := &Display{
		dev:   dev,
		faces: [2]Face{console.FontSmall: small, console.FontLarge: large},
		fg:    console.White,
		bg:    console.Blue,
	}
	d.face = small
	return d
}

// Size returns the panel size in pixels.
func (d *Display) Size() (int16, int16) { return d.dev.Size() }

// SetFont selects the face of following glyphs.
func (d *Display) SetFont(f console.Font) {
	if int(f) < len(d.faces) {
		d.face = d.faces[f]
	}
}

// SetForeground sets the glyph colour.
func (d *Display) SetForeground(c color.RGBA) { d.fg = c }

// SetBackground sets the colour used by Clear and behind every glyph.
func (d *Display) SetBackground(c color.RGBA) { d.bg = c }

// Clear fills the whole screen with the background colour.
func (d *Display) Clear() {
	if f, ok := d.dev.(screenFiller); ok {
		f.FillScreen(d.bg)
		return
	}
	w, h := d.dev.Size()
	d.fill(0, 0, w, h)
}

// DrawGlyph paints ch with its cell's top-left corner at (x, y).
func (d *Display) DrawGlyph(x, y int16, ch byte) {
	d.fill(x, y, d.face.Width, d.face.Height)
	tinyfont.DrawChar(d.dev, d.face.Font, x, y+d.face.Ascent, rune(ch), d.fg)
}

// GlyphSize reports the cell size of f.
func (d *Display) GlyphSize(f console.Font) (int16, int16) {
	if int(f) >= len(d.faces) {
		return 0, 0
	}
	return d.faces[f].Width, d.faces[f].Height
}

// Flush pushes buffered pixels to the panel.
func (d *Display) Flush() error { return d.dev.Display() }

func (d *Display) fill(x, y, w, h int16) {
	if f, ok := d.dev.(rectFiller); ok {
		if err := f.FillRectangle(x, y, w, h, d.bg); err == nil {
			return
		}
		// Out-of-bounds windows are rejected; clip pixel by pixel instead.
	}
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			d.dev.SetPixel(px, py, d.bg)
		}
	}
}
