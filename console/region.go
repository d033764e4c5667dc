package console

// Region is the rectangular band of the screen a level draws into.
// The cursor wraps inside the band and never leaves it.
type Region struct {
	OriginX, OriginY int16
	Width, Height    int16
	GlyphWidth       int16
	GlyphHeight      int16
	// NewlineReturn makes a line feed also move the cursor back to OriginX,
	// so "\n" behaves like "\r\n".
	NewlineReturn bool
}

// Cursor is the position the next glyph will be drawn at.
type Cursor struct {
	X, Y int16
}

// Walk lays text out inside the region starting at its origin and calls draw
// for every printable byte. It stops at the first NUL and returns the cursor
// following the last character.
func (r Region) Walk(text []byte, draw func(x, y int16, ch byte)) Cursor {
	c := Cursor{X: r.OriginX, Y: r.OriginY}
	for _, ch := range text {
		switch ch {
		case 0:
			return c
		case '\n':
			if r.NewlineReturn {
				c.X = r.OriginX
			}
			c.Y = r.nextRow(c.Y)
		case '\r':
			c.X = r.OriginX
		default:
			if draw != nil {
				draw(c.X, c.Y, ch)
			}
			c.X += r.GlyphWidth
			if c.X >= r.OriginX+r.Width {
				c.X = r.OriginX
				c.Y = r.nextRow(c.Y)
			}
		}
	}
	return c
}

// nextRow moves y down one glyph, rolling over to the top of the region.
func (r Region) nextRow(y int16) int16 {
	y += r.GlyphHeight
	if y >= r.OriginY+r.Height {
		y = r.OriginY
	}
	return y
}

// Row table of the large font: each level's first row and the row after its band.
var rowTable = [NumLevels][2]int16{
	LevelNone:    {0, 1},
	LevelHeading: {1, 5},
	LevelMessage: {5, 9},
	LevelError:   {9, 0}, // to the bottom of the screen
}

// Layout computes the region of every level for a width x height screen.
// Bands are measured in rows of the large font. Screens with at least 12 large
// rows use the fixed row table (heading on row 2, message on row 6, error on
// row 10); smaller screens share their rows evenly between the levels.
func Layout(width, height int16, small, large Glyph) [NumLevels]Region {
	var regions [NumLevels]Region
	rowHeight := large.Height
	if rowHeight <= 0 {
		rowHeight = 1
	}
	rows := height / rowHeight
	if rows < 1 {
		rows = 1
	}
	for i := range regions {
		lvl := Level(i)
		var first, end int16
		if rows >= 12 {
			first, end = rowTable[i][0], rowTable[i][1]
			if end == 0 {
				end = rows
			}
		} else {
			first = int16(i) * rows / int16(NumLevels)
			end = int16(i+1) * rows / int16(NumLevels)
			if end <= first {
				end = first + 1
			}
		}
		g := large
		if st, _ := StyleFor(lvl); st.Font == FontSmall {
			g = small
		}
		regions[i] = Region{
			OriginX:       0,
			OriginY:       first * rowHeight,
			Width:         width,
			Height:        (end - first) * rowHeight,
			GlyphWidth:    g.Width,
			GlyphHeight:   g.Height,
			NewlineReturn: true,
		}
	}
	return regions
}
