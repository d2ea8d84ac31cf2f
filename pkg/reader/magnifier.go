package reader

import "github.com/mokurodb/mokurodb/internal/store"

// Rect is an on-screen rectangle in viewport pixels, as reported by the
// rendering layer for a displayed page image.
type Rect struct {
	Left   int
	Top    int
	Width  int
	Height int
}

// Backdrop positions one page's zoomed image behind the lens: the size
// of the zoomed image and the offset that keeps the cursor pointing at
// the same spot in both the page and its magnified copy.
type Backdrop struct {
	OffsetX int
	OffsetY int
	Width   int
	Height  int
}

// Lens is the computed placement of the magnifier element plus the
// backdrop for each displayed page.
type Lens struct {
	Left   int
	Top    int
	Width  int
	Height int
	Radius int

	LeftPage  *Backdrop
	RightPage *Backdrop
}

// bias keeps the lens center from sliding off the page edge.
const bias = 5

// ComputeLens places the magnifier for a cursor position over one or two
// displayed pages. Either rect may be nil (single-page display); when
// both are nil, or the reference page has no size yet, there is nothing
// to magnify and ok is false.
//
// The math mirrors the classic image-magnifier-glass construction: the
// lens follows the cursor, its background is the page image scaled by
// zoom percent, shifted so the cursor hovers the same spot in both.
func ComputeLens(m store.MagnifierSettings, cursorX, cursorY int, left, right *Rect) (Lens, bool) {
	img := left
	if img == nil {
		img = right
	}
	if img == nil || img.Width == 0 || img.Height == 0 {
		return Lens{}, false
	}
	singlePage := (left == nil) != (right == nil)

	centerX, centerY := m.Width/2, m.Height/2

	// Clamp the lens center so it cannot leave the image area; two
	// displayed pages double the horizontal span.
	span := img.Width
	if !singlePage {
		span = 2 * img.Width
	}
	x := clamp(cursorX-img.Left, bias, span-bias)
	y := clamp(cursorY-img.Top, bias, img.Height-bias)

	zWidth := m.Zoom * img.Width / 100
	zHeight := m.Zoom * img.Height / 100

	xShift := centerX - (x*m.Zoom)/100
	yShift := centerY - (y*m.Zoom)/100

	lens := Lens{
		Left:   img.Left + x - centerX,
		Top:    img.Top + y - centerY,
		Width:  m.Width,
		Height: m.Height,
		Radius: m.Radius,
	}
	if left != nil {
		lens.LeftPage = &Backdrop{OffsetX: xShift, OffsetY: yShift, Width: zWidth, Height: zHeight}
	}
	if right != nil {
		rShift := xShift
		if !singlePage {
			// The right page's backdrop is shifted relative to its own
			// origin, one image-width past the left page's.
			rShift = centerX - ((x-img.Width)*m.Zoom)/100
		}
		lens.RightPage = &Backdrop{OffsetX: rShift, OffsetY: yShift, Width: zWidth, Height: zHeight}
	}
	return lens, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
