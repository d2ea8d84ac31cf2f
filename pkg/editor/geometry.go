package editor

import (
	"math"

	"github.com/mokurodb/mokurodb/internal/store"
	"github.com/mokurodb/mokurodb/pkg/reader"
)

// Geometry maps between stored image-pixel coordinates and on-screen
// viewport coordinates for one rendered page.
//
// Scale is image pixels per screen pixel: stored image height divided
// by the rendered page height. It is recomputed per render, never
// stored with the block.
type Geometry struct {
	Page          reader.Rect
	ViewportWidth float64
	Scale         float64
}

// NewGeometry derives the mapping for a page whose source image is
// imgHeight pixels tall.
func NewGeometry(page reader.Rect, viewportWidth float64, imgHeight int) Geometry {
	scale := 1.0
	if page.Height > 0 {
		scale = float64(imgHeight) / float64(page.Height)
	}
	return Geometry{Page: page, ViewportWidth: viewportWidth, Scale: scale}
}

// Placement is a block's computed on-screen position. Vertical blocks
// anchor to the right edge of the viewport instead of the left, so that
// vertical text grows leftward the way it reads.
type Placement struct {
	Top    float64
	Left   float64
	Right  float64 // distance from the viewport's right edge; vertical only
	Width  float64
	Height float64

	AnchorRight bool
	FontSize    float64
}

// Place computes where a block's stored box lands on screen.
func (g Geometry) Place(b store.OcrBlock) Placement {
	p := Placement{
		Top:         float64(g.Page.Top) + float64(b.Box.Top())/g.Scale,
		Left:        float64(g.Page.Left) + float64(b.Box.Left())/g.Scale,
		Width:       float64(b.Box.Width()) / g.Scale,
		Height:      float64(b.Box.Height()) / g.Scale,
		AnchorRight: b.Vertical,
		FontSize:    b.FontSize / g.Scale,
	}
	if b.Vertical {
		p.Right = g.ViewportWidth - p.Left - p.Width
	}
	return p
}

// BoxFromScreen converts an on-screen rectangle back into image-pixel
// space. This is the inverse of Place, applied when a drag commits.
func (g Geometry) BoxFromScreen(left, top, width, height float64) store.Box {
	l := (left - float64(g.Page.Left)) * g.Scale
	t := (top - float64(g.Page.Top)) * g.Scale
	return store.Box{
		int(math.Round(l)),
		int(math.Round(t)),
		int(math.Round(l + width*g.Scale)),
		int(math.Round(t + height*g.Scale)),
	}
}
