package console

import (
	"image/color"
	"strconv"
)

// Level selects the screen region, font and colour of a printed line.
type Level uint8

const (
	LevelNone    Level = iota // Normal text, small font, top row.
	LevelHeading              // Heading text, green.
	LevelMessage              // Message text, white.
	LevelError                // Error text, red.

	MaxLevel  = LevelError
	NumLevels = int(MaxLevel) + 1
)

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool { return l <= MaxLevel }

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelHeading:
		return "heading"
	case LevelMessage:
		return "message"
	case LevelError:
		return "error"
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

// Font is a font selector. Display implementations map it to a concrete face.
type Font uint8

const (
	FontSmall Font = iota
	FontLarge
)

// Colors used by the level policy and Init.
var (
	White = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	Green = color.RGBA{G: 0xFF, A: 0xFF}
	Red   = color.RGBA{R: 0xFF, A: 0xFF}
	Blue  = color.RGBA{B: 0xFF, A: 0xFF}
)

// Style is the font and foreground colour a level is painted with.
type Style struct {
	Font  Font
	Color color.RGBA
}

// StyleFor returns the style of l. The second result is false for invalid levels.
func StyleFor(l Level) (Style, bool) {
	switch l {
	case LevelNone:
		return Style{Font: FontSmall, Color: White}, true
	case LevelHeading:
		return Style{Font: FontLarge, Color: Green}, true
	case LevelMessage:
		return Style{Font: FontLarge, Color: White}, true
	case LevelError:
		return Style{Font: FontLarge, Color: Red}, true
	}
	return Style{}, false
}
