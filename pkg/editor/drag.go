package editor

import (
	"math"

	"github.com/maruel/ksid"

	"github.com/mokurodb/mokurodb/internal/store"
)

// DirtyThreshold is the cumulative screen-pixel movement below which a
// drag still counts as a plain click. Keeps a shaky click from being
// misread as a move or from minting a spurious edit.
const DirtyThreshold = 5.0

// MinBlockSize is the smallest dimension, in image pixels, a block
// created by dragging may have.
const MinBlockSize = 20

// Drag tracks one mouse-down-to-mouse-up session in screen pixels.
type Drag struct {
	startX, startY float64
	x, y           float64
	travel         float64
}

// StartDrag opens a session at the mouse-down point.
func StartDrag(x, y float64) *Drag {
	return &Drag{startX: x, startY: y, x: x, y: y}
}

// Move records a pointer position, accumulating total travel.
func (d *Drag) Move(x, y float64) {
	d.travel += math.Abs(x-d.x) + math.Abs(y-d.y)
	d.x, d.y = x, y
}

// Dirty reports whether the session moved far enough to count as a drag
// rather than a click.
func (d *Drag) Dirty() bool {
	return d.travel > DirtyThreshold
}

// Delta is the net displacement from the start point.
func (d *Drag) Delta() (dx, dy float64) {
	return d.x - d.startX, d.y - d.startY
}

// Leftward reports whether the session's net horizontal movement points
// left. A leftward background drag creates vertical text, since that is
// the direction vertical manga text is read in.
func (d *Drag) Leftward() bool {
	return d.x < d.startX
}

// CommitMove ends a drag on an existing block. The block's box is
// recomputed from the rendered element's final on-screen rect and
// committed only when the drag was dirty and the box actually changed.
func CommitMove(d *Drag, g Geometry, b store.OcrBlock, left, top, width, height float64) (store.OcrBlock, bool) {
	if !d.Dirty() {
		return b, false
	}
	box := g.BoxFromScreen(left, top, width, height)
	if box == b.Box {
		return b, false
	}
	b.Box = box
	return b, true
}

// NewBlock ends a drag on the page background, creating a block from
// the dragged rectangle. The box is clamped to MinBlockSize per side
// and verticality is inferred from the drag direction. Returns false
// for a drag that never got dirty.
func NewBlock(d *Drag, g Geometry, fontSize float64) (store.OcrBlock, bool) {
	if !d.Dirty() {
		return store.OcrBlock{}, false
	}

	left := math.Min(d.startX, d.x)
	top := math.Min(d.startY, d.y)
	width := math.Abs(d.x - d.startX)
	height := math.Abs(d.y - d.startY)

	box := g.BoxFromScreen(left, top, width, height)
	if box.Width() < MinBlockSize {
		box[2] = box[0] + MinBlockSize
	}
	if box.Height() < MinBlockSize {
		box[3] = box[1] + MinBlockSize
	}

	return store.OcrBlock{
		UUID:     ksid.NewID().String(),
		Box:      box,
		Vertical: d.Leftward(),
		FontSize: fontSize,
		Lines:    []string{},
	}, true
}
