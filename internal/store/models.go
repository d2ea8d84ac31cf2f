// Package store provides SQLite-backed persistence for mokurodb.
// Four logical tables back one reader application: global, volumes,
// pages, and ocr.
package store

import (
	"encoding/json"
	"fmt"
)

// VolumeID identifies a row in the volumes table. Zero means unassigned;
// the store issues a positive id on first insert.
type VolumeID int64

// PagePair names one page image and its OCR entry inside an archive.
// Serialized as a two-element JSON array to match the mokuro metadata
// layout: [[page_name, ocr_name], ...].
type PagePair struct {
	Name    string
	OCRName string
}

func (p PagePair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Name, p.OCRName})
}

func (p *PagePair) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("page pair: %w", err)
	}
	p.Name, p.OCRName = pair[0], pair[1]
	return nil
}

// Volume is one manga book's metadata plus its ordered page list.
// The ID is a local-store artifact: it is never serialized into the
// JSON value (neither in the volumes table nor in an exported archive).
type Volume struct {
	ID         VolumeID `json:"-"`
	Version    string   `json:"version"`
	CreatedAt  string   `json:"created_at"`
	ModifiedAt string   `json:"modified_at"`
	Title      string   `json:"title"`
	Series     string   `json:"volume"`
	UUID       string   `json:"volume_uuid"`

	// Pages is the ordered list of (page_name, ocr_name) pairs and is
	// the source of truth for which rows exist in the pages/ocr tables.
	Pages []PagePair `json:"pages"`

	// CoverName overrides the default cover (the first page) when set.
	CoverName string `json:"cover,omitempty"`

	HideSidebar bool              `json:"hide_sidebar,omitempty"`
	LineHeight  float64           `json:"line_height,omitempty"`
	Magnifier   MagnifierSettings `json:"magnifier"`
	ReaderState ReaderState       `json:"reader_state"`
}

// Cover resolves the page name used as the gallery thumbnail.
func (v *Volume) Cover() string {
	if v.CoverName != "" {
		return v.CoverName
	}
	if len(v.Pages) == 0 {
		return ""
	}
	return v.Pages[0].Name
}

// Validate checks the invariants a Volume must hold before it may be
// inserted: a non-empty page list and an in-range reader position.
func (v *Volume) Validate() error {
	if len(v.Pages) == 0 {
		return fmt.Errorf("volume %q: empty page list", v.Title)
	}
	if cp := v.ReaderState.CurrentPage; cp < 0 || cp >= len(v.Pages) {
		return fmt.Errorf("volume %q: current page %d out of range [0, %d)",
			v.Title, cp, len(v.Pages))
	}
	return nil
}

// MagnifierSettings holds the display parameters of the hover magnifier.
// Embedded per-volume and in the global Settings as the default for
// newly imported volumes.
type MagnifierSettings struct {
	Zoom   int `json:"zoom"`   // percent, 100-400
	Radius int `json:"radius"` // percent, 0-100
	Height int `json:"height"` // px, 100-1000
	Width  int `json:"width"`  // px, 100-1000
}

// DefaultMagnifier returns the settings used before the user changes anything.
func DefaultMagnifier() MagnifierSettings {
	return MagnifierSettings{Zoom: 200, Radius: 50, Height: 350, Width: 350}
}

// Clamp forces every parameter into its valid range.
func (m MagnifierSettings) Clamp() MagnifierSettings {
	m.Zoom = clampInt(m.Zoom, 100, 400)
	m.Radius = clampInt(m.Radius, 0, 100)
	m.Height = clampInt(m.Height, 100, 1000)
	m.Width = clampInt(m.Width, 100, 1000)
	return m
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ReaderState is the per-volume reading position.
// Invariant: 0 <= CurrentPage < len(pages).
type ReaderState struct {
	SinglePage       bool `json:"single_page"`
	CurrentPage      int  `json:"current_page"`
	FirstPageIsCover bool `json:"first_page_is_cover"`
}

// PageOcr is the OCR annotation row for one page, keyed (volume, page).
// Kept separate from the page blob because blobs are write-once while
// OCR rows are mutated in place; the store has no partial-row updates.
type PageOcr struct {
	ImgWidth  int        `json:"img_width"`
	ImgHeight int        `json:"img_height"`
	Blocks    []OcrBlock `json:"blocks"`
}

// Box is an axis-aligned rectangle (left, top, right, bottom) in
// source-image pixel space. Invariant: left <= right && top <= bottom.
type Box [4]int

func (b Box) Left() int   { return b[0] }
func (b Box) Top() int    { return b[1] }
func (b Box) Right() int  { return b[2] }
func (b Box) Bottom() int { return b[3] }

func (b Box) Width() int  { return b[2] - b[0] }
func (b Box) Height() int { return b[3] - b[1] }

// Valid reports whether the corner ordering invariant holds.
func (b Box) Valid() bool {
	return b[0] <= b[2] && b[1] <= b[3]
}

// OcrBlock is one user-editable text region on a page.
// UUID is stable and time-ordered (assigned at import or creation time).
type OcrBlock struct {
	UUID     string   `json:"uuid"`
	Box      Box      `json:"box"`
	Vertical bool     `json:"vertical"`
	FontSize float64  `json:"font_size"`
	Lines    []string `json:"lines"`
}

// Settings is the global singleton record, stored under key "settings"
// in the global table.
type Settings struct {
	Magnifier MagnifierSettings `json:"magnifier"`
}

// DefaultSettings is what GetSettings returns before anything was saved.
func DefaultSettings() Settings {
	return Settings{Magnifier: DefaultMagnifier()}
}
