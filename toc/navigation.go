package toc

// Default geometry, in CSS pixels.
const (
	DefaultBandTop      = -100
	DefaultBandBottom   = 150
	DefaultScrollOffset = 80
)

// Band is the activation band measured from the top of the viewport. A
// heading whose top lies within [Top, Bottom] counts as scrolled past.
type Band struct {
	Top    float64
	Bottom float64
}

// DefaultBand returns the -100..150 band.
func DefaultBand() Band {
	return Band{Top: DefaultBandTop, Bottom: DefaultBandBottom}
}

// Position is a heading's vertical offset from the top of the viewport.
type Position struct {
	ID  string
	Top float64
}

// ActiveSection returns the id of the last heading, in document order, whose
// top lies inside band. positions must be in document order. It returns ""
// when no heading is inside the band.
func ActiveSection(positions []Position, band Band) string {
	active := ""
	for _, p := range positions {
		if p.Top >= band.Top && p.Top <= band.Bottom {
			active = p.ID
		}
	}
	return active
}

// ScrollTarget returns the document scroll offset that puts a heading whose
// viewport-relative top is headingTop exactly offset pixels below the top of
// the viewport, given the current scrollY.
func ScrollTarget(headingTop, scrollY, offset float64) float64 {
	y := headingTop + scrollY - offset
	if y < 0 {
		return 0
	}
	return y
}
