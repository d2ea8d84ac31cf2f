// Package library is the boundary the UI layer talks to: volume
// import/export, deletion, updates, the gallery scan, and the blob
// handle discipline for displayed pages. It is the only layer that
// logs; the codec and store below it just return typed errors.
package library

import (
	"fmt"
	"log/slog"

	"github.com/mokurodb/mokurodb/internal/store"
	"github.com/mokurodb/mokurodb/pkg/archive"
)

// Service wraps a store with the operations the UI consumes.
type Service struct {
	store   *store.SQLiteStore
	log     *slog.Logger
	handles Tracker
}

func New(s *store.SQLiteStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: s, log: log}
}

// Store exposes the underlying store for read-only consumers such as
// the search scan.
func (s *Service) Store() *store.SQLiteStore {
	return s.store
}

// Handles exposes the live-handle tracker for leak accounting.
func (s *Service) Handles() *Tracker {
	return &s.handles
}

// Import decodes one archive into the store and returns the stored
// volume plus a display handle for its cover.
func (s *Service) Import(name string, data []byte) (*store.Volume, *Handle, error) {
	v, cover, err := archive.Import(s.store, data)
	if err != nil {
		s.log.Warn("import failed", "file", name, "error", err)
		return nil, nil, err
	}
	s.log.Info("imported volume", "file", name, "title", v.Title, "id", int64(v.ID), "pages", len(v.Pages))
	return v, s.handles.acquire(v.Cover(), cover), nil
}

// ImportResult is the per-file outcome of a batch import.
type ImportResult struct {
	Name   string
	Volume *store.Volume
	Err    error
}

// NamedFile pairs an archive's bytes with the name it arrived under.
type NamedFile struct {
	Name string
	Data []byte
}

// ImportAll imports archives one by one. A malformed file fails its own
// entry and never aborts the rest of the batch.
func (s *Service) ImportAll(files []NamedFile) []ImportResult {
	results := make([]ImportResult, 0, len(files))
	for _, f := range files {
		v, cover, err := s.Import(f.Name, f.Data)
		if cover != nil {
			// Batch imports display nothing; covers come back out of
			// the gallery scan instead.
			cover.Release()
		}
		results = append(results, ImportResult{Name: f.Name, Volume: v, Err: err})
	}
	return results
}

// Export re-encodes a stored volume as a downloadable archive.
func (s *Service) Export(id store.VolumeID) (*archive.File, error) {
	f, err := archive.Export(s.store, id)
	if err != nil {
		s.log.Error("export failed", "id", int64(id), "error", err)
		return nil, err
	}
	s.log.Info("exported volume", "id", int64(id), "file", f.Name, "bytes", len(f.Data))
	return f, nil
}

// DeleteVolume cascade deletes a volume and everything keyed to it.
func (s *Service) DeleteVolume(id store.VolumeID) error {
	if err := s.store.DeleteVolume(id); err != nil {
		s.log.Warn("delete failed", "id", int64(id), "error", err)
		return err
	}
	s.log.Info("deleted volume", "id", int64(id))
	return nil
}

// UpdateVolume writes back a volume working copy. The volume must carry
// the id of an existing row; this path never creates volumes. The store
// write is an upsert, so the row is checked first: a stale id must fail
// here rather than insert a volume with no page or OCR rows behind it.
func (s *Service) UpdateVolume(v *store.Volume) error {
	if v.ID == 0 {
		return fmt.Errorf("library: update of unassigned volume %q", v.Title)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetVolume(v.ID); err != nil {
		return err
	}
	if _, err := s.store.PutVolume(v); err != nil {
		s.log.Warn("volume update failed", "id", int64(v.ID), "error", err)
		return err
	}
	return nil
}

// UpdatePageOcr writes back one page's OCR record. The row must already
// exist; OCR rows are created only by import.
func (s *Service) UpdatePageOcr(id store.VolumeID, page string, ocr store.PageOcr) error {
	if _, err := s.store.GetOCR(id, page); err != nil {
		return err
	}
	if err := s.store.PutOCR(id, page, ocr); err != nil {
		s.log.Warn("ocr update failed", "id", int64(id), "page", page, "error", err)
		return err
	}
	return nil
}

// GalleryEntry is one volume's card in the gallery view.
type GalleryEntry struct {
	Volume *store.Volume
	Cover  *Handle
}

// Gallery scans all volumes with their covers, newest first. Each entry
// carries a live cover handle the caller must release when the gallery
// leaves the screen.
func (s *Service) Gallery() ([]GalleryEntry, error) {
	covers, err := s.store.ListVolumesWithCovers()
	if err != nil {
		s.log.Error("gallery scan failed", "error", err)
		return nil, err
	}
	entries := make([]GalleryEntry, 0, len(covers))
	for i := len(covers) - 1; i >= 0; i-- {
		c := covers[i]
		entries = append(entries, GalleryEntry{
			Volume: c.Volume,
			Cover:  s.handles.acquire(c.Volume.Cover(), c.Cover),
		})
	}
	return entries, nil
}

// Page fetches one page's image and OCR for display, the image behind a
// fresh handle.
func (s *Service) Page(id store.VolumeID, name string) (*Handle, store.PageOcr, error) {
	data, ocr, err := s.store.GetPageAndOCR(id, name)
	if err != nil {
		return nil, store.PageOcr{}, err
	}
	return s.handles.acquire(name, data), ocr, nil
}
