package console

import "image/color"

// Display is the set of primitives the console paints with. Coordinates are
// in display units: pixels on a graphic panel, cells on a character LCD.
type Display interface {
	Size() (width, height int16)
	SetFont(f Font)
	SetForeground(c color.RGBA)
	SetBackground(c color.RGBA)
	Clear()
	DrawGlyph(x, y int16, ch byte)
}

// Configurer is implemented by displays that need hardware bring-up before
// the first draw. Init calls Configure once.
type Configurer interface {
	Configure() error
}

// Flusher is implemented by buffered displays. The renderer calls Flush once
// per rendered line while still holding the render lock.
type Flusher interface {
	Flush() error
}

// GlyphMetrics is implemented by displays that know the cell size of their
// fonts. Displays that don't get DefaultSmall and DefaultLarge.
type GlyphMetrics interface {
	GlyphSize(f Font) (width, height int16)
}

// Glyph is the fixed cell size of a font.
type Glyph struct {
	Width, Height int16
}

// Cell sizes of the 6x8 and 16x24 GLCD fonts.
var (
	DefaultSmall = Glyph{Width: 6, Height: 8}
	DefaultLarge = Glyph{Width: 16, Height: 24}
)
