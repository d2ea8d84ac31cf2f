package editor

import (
	"testing"

	"github.com/mokurodb/mokurodb/internal/store"
	"github.com/mokurodb/mokurodb/pkg/reader"
)

func TestStateTransitions(t *testing.T) {
	cases := []struct {
		name string
		from State
		step func(State) State
		want State
	}{
		{"idle ignores focus", Idle, State.Focus, Idle},
		{"editable focuses", Editable, State.Focus, EditableFocused},
		{"focused stays focused", EditableFocused, State.Focus, EditableFocused},
		{"content keeps sub-state on focus", EditableFocusedContent, State.Focus, EditableFocusedContent},
		{"focused enters content", EditableFocused, State.EditContent, EditableFocusedContent},
		{"editable cannot enter content", Editable, State.EditContent, Editable},
		{"idle cannot enter content", Idle, State.EditContent, Idle},
		{"unfocus lands on editable", EditableFocused, State.Unfocus, Editable},
		{"unfocus from content lands on editable", EditableFocusedContent, State.Unfocus, Editable},
		{"unfocus from idle stays idle", Idle, State.Unfocus, Idle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.step(tc.from); got != tc.want {
				t.Errorf("%s -> %s, expected %s", tc.from, got, tc.want)
			}
		})
	}
}

func TestSetEditable(t *testing.T) {
	if got := EditableFocused.SetEditable(false); got != Idle {
		t.Errorf("Expected Idle, got %s", got)
	}
	if got := Idle.SetEditable(true); got != Editable {
		t.Errorf("Expected Editable, got %s", got)
	}
	// Already editable: the focused state survives the redundant flip.
	if got := EditableFocused.SetEditable(true); got != EditableFocused {
		t.Errorf("Expected EditableFocused, got %s", got)
	}
}

func TestBlockEditorCommitsOnUnfocus(t *testing.T) {
	block := store.OcrBlock{UUID: "b1", Lines: []string{"before"}}
	e := NewBlockEditor(block, true)

	e.Focus()
	e.EditContent()
	e.SetLines([]string{"after"})

	committed, changed := e.Unfocus()
	if !changed {
		t.Fatal("Expected the staged text to commit")
	}
	if committed.Lines[0] != "after" {
		t.Errorf("Expected committed line, got %q", committed.Lines[0])
	}
	if e.State() != Editable {
		t.Errorf("Expected Editable after unfocus, got %s", e.State())
	}
}

func TestBlockEditorUnchangedTextDoesNotCommit(t *testing.T) {
	block := store.OcrBlock{UUID: "b1", Lines: []string{"same"}}
	e := NewBlockEditor(block, true)

	e.Focus()
	e.EditContent()
	e.SetLines([]string{"same"})

	if _, changed := e.Unfocus(); changed {
		t.Error("Identical text must not count as a change")
	}
}

func TestBlockEditorIgnoresLinesOutsideContentState(t *testing.T) {
	block := store.OcrBlock{UUID: "b1", Lines: []string{"keep"}}
	e := NewBlockEditor(block, true)

	e.Focus()
	e.SetLines([]string{"dropped"}) // not in content sub-state

	if _, changed := e.Unfocus(); changed {
		t.Error("Text staged outside the content sub-state must be ignored")
	}
}

func testGeometry() Geometry {
	// 2400px-tall image rendered at 1200px: two image px per screen px.
	return NewGeometry(reader.Rect{Left: 100, Top: 50, Width: 800, Height: 1200}, 1920, 2400)
}

func TestPlaceHorizontalBlock(t *testing.T) {
	g := testGeometry()
	b := store.OcrBlock{Box: store.Box{200, 400, 600, 800}, FontSize: 32}

	p := g.Place(b)
	if p.Left != 100+200/2.0 || p.Top != 50+400/2.0 {
		t.Errorf("Placement origin wrong: left=%v top=%v", p.Left, p.Top)
	}
	if p.Width != 200 || p.Height != 200 {
		t.Errorf("Placement size wrong: %vx%v", p.Width, p.Height)
	}
	if p.AnchorRight {
		t.Error("Horizontal block must not anchor right")
	}
	if p.FontSize != 16 {
		t.Errorf("Expected screen font 16, got %v", p.FontSize)
	}
}

func TestPlaceVerticalBlockAnchorsRight(t *testing.T) {
	g := testGeometry()
	b := store.OcrBlock{Box: store.Box{200, 400, 600, 800}, Vertical: true}

	p := g.Place(b)
	if !p.AnchorRight {
		t.Fatal("Vertical block must anchor right")
	}
	if p.Right != 1920-p.Left-p.Width {
		t.Errorf("Right anchor wrong: %v", p.Right)
	}
}

func TestGeometryRoundTrip(t *testing.T) {
	g := testGeometry()
	b := store.OcrBlock{Box: store.Box{200, 400, 600, 800}}

	p := g.Place(b)
	if got := g.BoxFromScreen(p.Left, p.Top, p.Width, p.Height); got != b.Box {
		t.Errorf("Round trip changed the box: %v -> %v", b.Box, got)
	}
}

func TestDragDirtyThreshold(t *testing.T) {
	d := StartDrag(100, 100)
	d.Move(102, 101) // 3px of travel, under the threshold
	if d.Dirty() {
		t.Error("Small jitter must not count as a drag")
	}
	d.Move(105, 103)
	if !d.Dirty() {
		t.Error("Expected the session to turn dirty")
	}
}

func TestCommitMoveCleanDragIsNoop(t *testing.T) {
	g := testGeometry()
	b := store.OcrBlock{UUID: "b1", Box: store.Box{200, 400, 600, 800}}

	d := StartDrag(300, 300)
	d.Move(301, 300) // a click with 1px of shake

	if _, changed := CommitMove(d, g, b, 999, 999, 10, 10); changed {
		t.Error("A clean drag must never commit, whatever the rect says")
	}
}

func TestCommitMoveUnchangedBoxIsNoop(t *testing.T) {
	g := testGeometry()
	b := store.OcrBlock{UUID: "b1", Box: store.Box{200, 400, 600, 800}}
	p := g.Place(b)

	d := StartDrag(300, 300)
	d.Move(350, 300) // dirty, but the element ended up where it started

	if _, changed := CommitMove(d, g, b, p.Left, p.Top, p.Width, p.Height); changed {
		t.Error("A box identical to the stored one must not commit")
	}
}

func TestCommitMoveAppliesNewBox(t *testing.T) {
	g := testGeometry()
	b := store.OcrBlock{UUID: "b1", Box: store.Box{200, 400, 600, 800}}

	d := StartDrag(300, 300)
	d.Move(350, 320)

	// Element ended 50px right, 20px down of its placement.
	p := g.Place(b)
	moved, changed := CommitMove(d, g, b, p.Left+50, p.Top+20, p.Width, p.Height)
	if !changed {
		t.Fatal("Expected the move to commit")
	}
	want := store.Box{300, 440, 700, 840} // 2x scale
	if moved.Box != want {
		t.Errorf("Expected %v, got %v", want, moved.Box)
	}
}

func TestNewBlockFromDrag(t *testing.T) {
	g := testGeometry()

	// Rightward drag: horizontal text.
	d := StartDrag(200, 100)
	d.Move(300, 200)
	b, ok := NewBlock(d, g, 32)
	if !ok {
		t.Fatal("Expected a block")
	}
	if b.Vertical {
		t.Error("Rightward drag must create horizontal text")
	}
	if b.UUID == "" {
		t.Error("New block needs an id")
	}
	want := store.Box{200, 100, 400, 300} // 2x scale from (200-100, 100-50)
	if b.Box != want {
		t.Errorf("Expected %v, got %v", want, b.Box)
	}
	if b.FontSize != 32 {
		t.Errorf("Expected font size 32, got %v", b.FontSize)
	}
}

func TestNewBlockLeftwardDragIsVertical(t *testing.T) {
	g := testGeometry()
	d := StartDrag(400, 100)
	d.Move(300, 200)

	b, ok := NewBlock(d, g, 32)
	if !ok {
		t.Fatal("Expected a block")
	}
	if !b.Vertical {
		t.Error("Leftward drag must create vertical text")
	}
}

func TestNewBlockMinSize(t *testing.T) {
	g := testGeometry()
	d := StartDrag(200, 100)
	d.Move(204, 101) // dirty travel comes from wiggling
	d.Move(200, 100)
	d.Move(203, 102)

	b, ok := NewBlock(d, g, 32)
	if !ok {
		t.Fatal("Expected a block")
	}
	if b.Box.Width() < MinBlockSize || b.Box.Height() < MinBlockSize {
		t.Errorf("Expected min size clamp, got %dx%d", b.Box.Width(), b.Box.Height())
	}
}

func TestNewBlockCleanDragIsNoop(t *testing.T) {
	g := testGeometry()
	d := StartDrag(200, 100)
	d.Move(201, 100)

	if _, ok := NewBlock(d, g, 32); ok {
		t.Error("A clean drag must not create a block")
	}
}

func TestFontCommands(t *testing.T) {
	b := store.OcrBlock{FontSize: 2}
	if got := IncrementFont(b).FontSize; got != 3 {
		t.Errorf("Expected 3, got %v", got)
	}
	b.FontSize = 1
	if got := DecrementFont(b).FontSize; got != 1 {
		t.Errorf("Font size must not drop below 1, got %v", got)
	}
}

func TestNudgeClampsAtOrigin(t *testing.T) {
	b := store.OcrBlock{Box: store.Box{0, 5, 100, 105}}
	moved := Nudge(b, -1, -10)
	if moved.Box != (store.Box{0, 0, 100, 100}) {
		t.Errorf("Expected clamp at the image origin, got %v", moved.Box)
	}
	moved = Nudge(b, 3, 2)
	if moved.Box != (store.Box{3, 7, 103, 107}) {
		t.Errorf("Expected shifted box, got %v", moved.Box)
	}
}

func TestAutosize(t *testing.T) {
	b := store.OcrBlock{Box: store.Box{0, 0, 10, 10}}
	lines := []store.Box{
		{100, 200, 150, 400},
		{60, 210, 110, 390},
	}
	sized := Autosize(b, lines)
	if sized.Box != (store.Box{60, 200, 150, 400}) {
		t.Errorf("Expected the union of line boxes, got %v", sized.Box)
	}
	// No rendered lines: keep the box.
	if got := Autosize(b, nil); got.Box != b.Box {
		t.Errorf("Expected unchanged box, got %v", got.Box)
	}
}
