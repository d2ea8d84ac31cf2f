package editor

import "github.com/mokurodb/mokurodb/internal/store"

// Commands applied to a focused block. Each returns the modified block;
// the caller dispatches it through the page reducer, which is what
// turns the edit into an eventual write.

// IncrementFont bumps the font size by one image-space unit.
func IncrementFont(b store.OcrBlock) store.OcrBlock {
	b.FontSize++
	return b
}

// DecrementFont lowers the font size, never below one.
func DecrementFont(b store.OcrBlock) store.OcrBlock {
	if b.FontSize > 1 {
		b.FontSize--
	}
	return b
}

// Nudge shifts the block's box by (dx, dy) image-space units, keeping
// the top-left corner inside the image.
func Nudge(b store.OcrBlock, dx, dy int) store.OcrBlock {
	if b.Box[0]+dx < 0 {
		dx = -b.Box[0]
	}
	if b.Box[1]+dy < 0 {
		dy = -b.Box[1]
	}
	b.Box = store.Box{b.Box[0] + dx, b.Box[1] + dy, b.Box[2] + dx, b.Box[3] + dy}
	return b
}

// Autosize recomputes the block's box as the union of the rendered
// bounding boxes of its text lines, given in image space. A block with
// no rendered lines keeps its box.
func Autosize(b store.OcrBlock, lineBoxes []store.Box) store.OcrBlock {
	if len(lineBoxes) == 0 {
		return b
	}
	union := lineBoxes[0]
	for _, lb := range lineBoxes[1:] {
		if lb.Left() < union[0] {
			union[0] = lb.Left()
		}
		if lb.Top() < union[1] {
			union[1] = lb.Top()
		}
		if lb.Right() > union[2] {
			union[2] = lb.Right()
		}
		if lb.Bottom() > union[3] {
			union[3] = lb.Bottom()
		}
	}
	b.Box = union
	return b
}
