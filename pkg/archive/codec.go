// Package archive implements the volume archive codec: a single zip file
// holding one volume's metadata, page images, and OCR annotations, and
// the conversions between that container and the keyed store.
//
// Layout of a volume archive:
//
//	mokuro-metadata.json     volume metadata (legacy name: mokuro.json)
//	<page_name>              raw page image bytes
//	_ocr/<ocr_name>          PageOcr JSON
//
// Entries are stored uncompressed; the images inside are already
// compressed formats and deflating them again buys nothing.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/maruel/ksid"

	"github.com/mokurodb/mokurodb/internal/store"
)

const (
	// MetadataName is the archive entry holding the volume metadata.
	MetadataName = "mokuro-metadata.json"
	// LegacyMetadataName is accepted on read for archives produced by
	// older tooling.
	LegacyMetadataName = "mokuro.json"
	// OCRDir is the directory prefix OCR entries live under.
	OCRDir = "_ocr/"
)

// ocrPath maps an ocr_name from the page list to its archive entry path.
// Some producers already prefix names with the OCR directory.
func ocrPath(name string) string {
	if strings.HasPrefix(name, OCRDir) {
		return name
	}
	return OCRDir + name
}

// Extraction is the fully-decoded content of one volume archive, held in
// memory. Nothing is written to a store until every entry decoded, so a
// malformed archive can never leave a partial volume behind.
type Extraction struct {
	Volume store.Volume
	Cover  []byte
	Pages  map[string][]byte
	OCR    map[string]store.PageOcr
}

// Extract decodes a volume archive. It parses the metadata entry, clears
// any embedded store id (ids are local artifacts), assigns ids to OCR
// blocks that lack one, then reads every page and OCR entry the metadata
// declares. Any absent entry yields a MissingFileError.
func Extract(data []byte) (*Extraction, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("archive: open zip: %w", err)
	}

	meta, err := readEntry(zr, MetadataName)
	if err != nil {
		// Fall back to the legacy entry name, but report the modern
		// name when both are absent.
		legacy, legacyErr := readEntry(zr, LegacyMetadataName)
		if legacyErr != nil {
			return nil, err
		}
		meta = legacy
	}

	ext := &Extraction{
		Pages: make(map[string][]byte),
		OCR:   make(map[string]store.PageOcr),
	}
	if err := json.Unmarshal(meta, &ext.Volume); err != nil {
		return nil, fmt.Errorf("archive: parse metadata: %w", err)
	}
	ext.Volume.ID = 0
	if err := ext.Volume.Validate(); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}

	ext.Cover, err = readEntry(zr, ext.Volume.Cover())
	if err != nil {
		return nil, err
	}

	for _, pair := range ext.Volume.Pages {
		page, err := readEntry(zr, pair.Name)
		if err != nil {
			return nil, err
		}
		ext.Pages[pair.Name] = page

		raw, err := readEntry(zr, ocrPath(pair.OCRName))
		if err != nil {
			return nil, err
		}
		var ocr store.PageOcr
		if err := json.Unmarshal(raw, &ocr); err != nil {
			return nil, fmt.Errorf("archive: parse ocr %q: %w", pair.OCRName, err)
		}
		for i := range ocr.Blocks {
			if ocr.Blocks[i].UUID == "" {
				ocr.Blocks[i].UUID = ksid.NewID().String()
			}
		}
		ext.OCR[pair.Name] = ocr
	}

	return ext, nil
}

func readEntry(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, &MissingFileError{Name: name}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("archive: read %q: %w", name, err)
	}
	return data, nil
}

// Import decodes an archive and stages the whole volume into the store
// in one transaction. Volumes without a uuid get one assigned; magnifier
// settings start from the current global defaults, since archives are
// portable and display preferences are not. Returns the stored volume
// (id assigned) and the cover image bytes.
func Import(s *store.SQLiteStore, data []byte) (*store.Volume, []byte, error) {
	ext, err := Extract(data)
	if err != nil {
		return nil, nil, err
	}

	if ext.Volume.UUID == "" {
		ext.Volume.UUID = uuid.NewString()
	}
	settings, err := s.GetSettings()
	if err != nil {
		return nil, nil, fmt.Errorf("archive: load settings: %w", err)
	}
	ext.Volume.Magnifier = settings.Magnifier.Clamp()

	if _, err := s.InsertVolume(&ext.Volume, ext.Pages, ext.OCR); err != nil {
		return nil, nil, fmt.Errorf("archive: import %q: %w", ext.Volume.Title, err)
	}
	return &ext.Volume, ext.Cover, nil
}

// File is an encoded archive ready to hand to a download or filesystem.
type File struct {
	Name string
	Data []byte
}

// Export encodes the volume with matching id back into an archive:
// metadata first, then each declared page and OCR entry. The store id is
// never serialized. A declared row missing from the store means the
// store lost an invariant and the export fails with ErrCorrupt.
func Export(s *store.SQLiteStore, id store.VolumeID) (*File, error) {
	v, err := s.GetVolume(id)
	if err != nil {
		return nil, fmt.Errorf("archive: export volume %d: %w", id, err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	meta, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("archive: marshal metadata: %w", err)
	}
	if err := writeEntry(zw, MetadataName, meta); err != nil {
		return nil, err
	}
	if _, err := zw.CreateHeader(&zip.FileHeader{Name: OCRDir}); err != nil {
		return nil, fmt.Errorf("archive: write %q: %w", OCRDir, err)
	}

	for _, pair := range v.Pages {
		page, ocr, err := s.GetPageAndOCR(id, pair.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: page %q of volume %d: %v",
				ErrCorrupt, pair.Name, id, err)
		}
		if err := writeEntry(zw, pair.Name, page); err != nil {
			return nil, err
		}
		ocrData, err := json.Marshal(ocr)
		if err != nil {
			return nil, fmt.Errorf("archive: marshal ocr %q: %w", pair.OCRName, err)
		}
		if err := writeEntry(zw, ocrPath(pair.OCRName), ocrData); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: finish zip: %w", err)
	}
	return &File{Name: ExportName(v.Title), Data: buf.Bytes()}, nil
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("archive: write %q: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("archive: write %q: %w", name, err)
	}
	return nil
}

// ExportName derives the output filename from a volume title: unsafe
// characters replaced, always ending in ".zip".
func ExportName(title string) string {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if clean == "" {
		clean = "volume"
	}
	return clean + ".zip"
}
