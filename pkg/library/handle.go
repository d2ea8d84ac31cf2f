package library

import "sync"

// Tracker counts live blob handles. The environments this store targets
// count open blob URLs against a quota, so the display layer keeps
// exactly one live handle per displayed page and the tracker makes a
// leak visible in tests and diagnostics.
type Tracker struct {
	mu   sync.Mutex
	live int
}

// Live returns the number of unreleased handles.
func (t *Tracker) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.live
}

func (t *Tracker) acquire(name string, data []byte) *Handle {
	t.mu.Lock()
	t.live++
	t.mu.Unlock()
	return &Handle{tracker: t, name: name, data: data}
}

// Handle is a scoped reference to one page's image bytes. Release it
// when the page leaves the screen; Release is idempotent and safe to
// defer.
type Handle struct {
	tracker  *Tracker
	name     string
	data     []byte
	released bool
}

// Name is the page name the handle was acquired for.
func (h *Handle) Name() string {
	return h.name
}

// Bytes returns the image data, or nil after release.
func (h *Handle) Bytes() []byte {
	if h.released {
		return nil
	}
	return h.data
}

// Release drops the handle and its bytes.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.data = nil
	h.tracker.mu.Lock()
	h.tracker.live--
	h.tracker.mu.Unlock()
}

// Slot holds the handle of one display position. Setting a new handle
// releases the previous one, which is what keeps "at most one live
// handle per displayed page" true on every path.
type Slot struct {
	h *Handle
}

// Set swaps in a new handle, releasing the old one.
func (s *Slot) Set(h *Handle) {
	if s.h != nil {
		s.h.Release()
	}
	s.h = h
}

// Handle returns the held handle, nil when empty.
func (s *Slot) Handle() *Handle {
	return s.h
}

// Release empties the slot.
func (s *Slot) Release() {
	s.Set(nil)
}
