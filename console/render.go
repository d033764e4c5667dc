package console

// Renderer paints formatted text into the region of its level.
// Callers must serialize Render; Console does so with its render lock.
type Renderer struct {
	display Display
	regions [NumLevels]Region
}

// NewRenderer returns a renderer drawing on d with one region per level.
func NewRenderer(d Display, regions [NumLevels]Region) *Renderer {
	return &Renderer{display: d, regions: regions}
}

// Region returns the region of l.
func (r *Renderer) Region(l Level) (Region, bool) {
	if !l.Valid() {
		return Region{}, false
	}
	return r.regions[l], true
}

// Render selects the style of l, draws text from the origin of its region
// and returns the cursor following the last character. Invalid levels draw
// nothing. The error comes from flushing a buffered display.
func (r *Renderer) Render(l Level, text []byte) (Cursor, error) {
	st, ok := StyleFor(l)
	if !ok {
		return Cursor{}, ErrLevelRange
	}
	r.display.SetFont(st.Font)
	r.display.SetForeground(st.Color)
	c := r.regions[l].Walk(text, r.display.DrawGlyph)
	if f, ok := r.display.(Flusher); ok {
		return c, f.Flush()
	}
	return c, nil
}
