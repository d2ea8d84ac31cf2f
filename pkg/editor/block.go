package editor

import "github.com/mokurodb/mokurodb/internal/store"

// BlockEditor drives the state machine for one block and stages line
// text typed while in the content sub-state. The staged text is only
// committed into the block when focus is lost, so abandoning an edit
// mid-keystroke never half-applies.
type BlockEditor struct {
	block  store.OcrBlock
	state  State
	staged []string
}

// NewBlockEditor wraps a working copy of a block.
func NewBlockEditor(block store.OcrBlock, editable bool) *BlockEditor {
	return &BlockEditor{block: block, state: StateForEditable(editable)}
}

func (e *BlockEditor) State() State          { return e.state }
func (e *BlockEditor) Block() store.OcrBlock { return e.block }

// Focus requests focus for the block.
func (e *BlockEditor) Focus() {
	e.state = e.state.Focus()
}

// EditContent makes the block's text directly editable.
func (e *BlockEditor) EditContent() {
	e.state = e.state.EditContent()
}

// SetEditable applies a global edit-mode flip. Leaving edit mode drops
// any staged text.
func (e *BlockEditor) SetEditable(editable bool) {
	e.state = e.state.SetEditable(editable)
	if !e.state.IsEditable() {
		e.staged = nil
	}
}

// SetLines stages replacement line text. Ignored outside the content
// sub-state, where the text is not editable.
func (e *BlockEditor) SetLines(lines []string) {
	if e.state != EditableFocusedContent {
		return
	}
	e.staged = append([]string(nil), lines...)
}

// Unfocus leaves the focused states. When leaving the content sub-state
// with staged text that differs from the block's lines, the text is
// committed; the returned flag reports whether the block changed and
// needs to be written back.
func (e *BlockEditor) Unfocus() (store.OcrBlock, bool) {
	changed := false
	if e.state == EditableFocusedContent && e.staged != nil && !equalLines(e.staged, e.block.Lines) {
		e.block.Lines = e.staged
		changed = true
	}
	e.staged = nil
	e.state = e.state.Unfocus()
	return e.block, changed
}

func equalLines(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
