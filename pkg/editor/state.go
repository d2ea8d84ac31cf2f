// Package editor implements the OCR annotation editing logic: the
// per-block state machine, drag session accounting, the screen/image
// geometry mapping, and the block-level edit commands. Everything here
// is pure computation over injected rectangles; no rendering layer is
// touched, which is what makes the geometry independently testable.
package editor

// State is the editing state of one OCR text block. Content editing is
// a sub-state of focused: a block must be focused before its text can
// be made directly editable.
type State int

const (
	Idle State = iota
	Editable
	EditableFocused
	EditableFocusedContent
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Editable:
		return "Editable"
	case EditableFocused:
		return "EditableFocused"
	case EditableFocusedContent:
		return "EditableFocusedContent"
	default:
		return "Unknown"
	}
}

// StateForEditable is the entry state when global edit mode flips.
func StateForEditable(editable bool) State {
	if editable {
		return Editable
	}
	return Idle
}

// IsEditable reports whether the block is in any editable state.
func (s State) IsEditable() bool {
	return s == Editable || s == EditableFocused || s == EditableFocusedContent
}

// IsFocused reports whether the block currently holds focus.
func (s State) IsFocused() bool {
	return s == EditableFocused || s == EditableFocusedContent
}

// Focus moves an editable block into the focused state. Idle blocks
// ignore focus; a content-editing block keeps its sub-state.
func (s State) Focus() State {
	switch s {
	case Editable, EditableFocused:
		return EditableFocused
	default:
		return s
	}
}

// Unfocus always lands on Editable while edit mode is on, never all the
// way back to Idle.
func (s State) Unfocus() State {
	if s.IsEditable() {
		return Editable
	}
	return Idle
}

// EditContent enters the content sub-state; only a focused block may.
func (s State) EditContent() State {
	if s == EditableFocused {
		return EditableFocusedContent
	}
	return s
}

// SetEditable applies a global edit-mode flip. A block already on the
// right side of the flip keeps its current (possibly focused) state.
func (s State) SetEditable(editable bool) State {
	if s.IsEditable() != editable {
		return StateForEditable(editable)
	}
	return s
}
