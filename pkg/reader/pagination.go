// Package reader holds the pure display computations of the reading
// view: which page indices are shown, and where the hover magnifier
// lens and its zoomed backdrops sit. Nothing here touches the store.
package reader

import "github.com/mokurodb/mokurodb/internal/store"

// NoPage marks an absent secondary page slot.
const NoPage = -1

// SelectPages returns the indices of the page(s) to display: the primary
// page and, in two-page mode, the following page. The secondary slot is
// NoPage when single-page mode is on, when the first page is a cover
// displayed alone, or when no next page exists.
func SelectPages(st store.ReaderState, n int) (primary, secondary int) {
	p := st.CurrentPage
	if st.SinglePage || (p == 0 && st.FirstPageIsCover) || p+1 >= n {
		return p, NoPage
	}
	return p, p + 1
}

// Forward advances the reading position: by one when a single page is
// displayed, by two when a pair is. Never past the last page.
func Forward(st store.ReaderState, n int) store.ReaderState {
	step := 2
	if _, secondary := SelectPages(st, n); secondary == NoPage {
		step = 1
	}
	st.CurrentPage += step
	if st.CurrentPage > n-1 {
		st.CurrentPage = n - 1
	}
	if st.CurrentPage < 0 {
		st.CurrentPage = 0
	}
	return st
}

// Backward steps the reading position back, taking the step from the
// same condition as Forward so the two directions visit the same
// primaries: one when the current position displays a single page, two
// when a pair is shown. Never below page zero.
func Backward(st store.ReaderState, n int) store.ReaderState {
	step := 2
	if _, secondary := SelectPages(st, n); secondary == NoPage {
		step = 1
	}
	st.CurrentPage -= step
	if st.CurrentPage < 0 {
		st.CurrentPage = 0
	}
	return st
}
