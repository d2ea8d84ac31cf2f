package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mokurodb/mokurodb/internal/store"
)

func fixtureVolume() store.Volume {
	return store.Volume{
		Version:    "0.2.1",
		CreatedAt:  "2024-05-01T10:00:00Z",
		ModifiedAt: "2024-06-01T12:30:00Z",
		Title:      "Golden Volume",
		Series:     "Vol 3",
		UUID:       "0b0e8f62-7e67-4a3c-9d35-b1f3c7a9d210",
		Pages: []store.PagePair{
			{Name: "001.jpg", OCRName: "001.json"},
			{Name: "002.jpg", OCRName: "002.json"},
		},
		CoverName:   "002.jpg",
		HideSidebar: true,
		LineHeight:  1.5,
		Magnifier:   store.DefaultMagnifier(),
		ReaderState: store.ReaderState{CurrentPage: 1, FirstPageIsCover: true},
	}
}

func fixtureOcr(line string) store.PageOcr {
	return store.PageOcr{
		ImgWidth:  1600,
		ImgHeight: 2400,
		Blocks: []store.OcrBlock{{
			UUID:     "blk-" + line,
			Box:      store.Box{100, 200, 300, 600},
			Vertical: true,
			FontSize: 28,
			Lines:    []string{line},
		}},
	}
}

// buildArchive assembles a zip from raw entries, stored uncompressed.
func buildArchive(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func fixtureArchive(t *testing.T, metaName string) []byte {
	t.Helper()
	v := fixtureVolume()
	meta, err := json.Marshal(&v)
	require.NoError(t, err)

	ocr1, err := json.Marshal(fixtureOcr("one"))
	require.NoError(t, err)
	ocr2, err := json.Marshal(fixtureOcr("two"))
	require.NoError(t, err)

	return buildArchive(t, map[string][]byte{
		metaName:        meta,
		"001.jpg":       {0xFF, 0xD8, 0x01},
		"002.jpg":       {0xFF, 0xD8, 0x02},
		"_ocr/001.json": ocr1,
		"_ocr/002.json": ocr2,
	})
}

func TestExtract(t *testing.T) {
	ext, err := Extract(fixtureArchive(t, MetadataName))
	require.NoError(t, err)

	assert.Equal(t, "Golden Volume", ext.Volume.Title)
	assert.Equal(t, store.VolumeID(0), ext.Volume.ID)
	assert.Len(t, ext.Pages, 2)
	assert.Len(t, ext.OCR, 2)
	assert.Equal(t, []byte{0xFF, 0xD8, 0x01}, ext.Pages["001.jpg"])
	assert.Equal(t, []string{"two"}, ext.OCR["002.jpg"].Blocks[0].Lines)
	// CoverName points at the second page.
	assert.Equal(t, []byte{0xFF, 0xD8, 0x02}, ext.Cover)
	// Present block ids survive extraction untouched.
	assert.Equal(t, "blk-one", ext.OCR["001.jpg"].Blocks[0].UUID)
}

func TestExtractLegacyMetadataName(t *testing.T) {
	ext, err := Extract(fixtureArchive(t, LegacyMetadataName))
	require.NoError(t, err)
	assert.Equal(t, "Golden Volume", ext.Volume.Title)
}

func TestExtractAssignsBlockIDs(t *testing.T) {
	v := fixtureVolume()
	v.Pages = v.Pages[:1]
	v.CoverName = ""
	meta, err := json.Marshal(&v)
	require.NoError(t, err)

	ocr := fixtureOcr("one")
	ocr.Blocks[0].UUID = ""
	ocrData, err := json.Marshal(ocr)
	require.NoError(t, err)

	ext, err := Extract(buildArchive(t, map[string][]byte{
		MetadataName:    meta,
		"001.jpg":       {0xFF},
		"_ocr/001.json": ocrData,
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, ext.OCR["001.jpg"].Blocks[0].UUID)
}

func TestExtractMissingEntry(t *testing.T) {
	v := fixtureVolume()
	meta, err := json.Marshal(&v)
	require.NoError(t, err)

	ocr1, err := json.Marshal(fixtureOcr("one"))
	require.NoError(t, err)

	// 002.jpg and its OCR are declared but absent.
	data := buildArchive(t, map[string][]byte{
		MetadataName:    meta,
		"001.jpg":       {0xFF, 0xD8, 0x01},
		"_ocr/001.json": ocr1,
	})

	_, err = Extract(data)
	var missing *MissingFileError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "002.jpg", missing.Name)
}

func TestExtractNoMetadata(t *testing.T) {
	data := buildArchive(t, map[string][]byte{"001.jpg": {0xFF}})
	_, err := Extract(data)
	var missing *MissingFileError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, MetadataName, missing.Name)
}

func TestImportExportRoundTrip(t *testing.T) {
	s, err := store.NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	v, cover, err := Import(s, fixtureArchive(t, MetadataName))
	require.NoError(t, err)
	assert.NotZero(t, v.ID)
	assert.Equal(t, []byte{0xFF, 0xD8, 0x02}, cover)

	f, err := Export(s, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "Golden Volume.zip", f.Name)

	// The exported archive decodes back to the same content.
	ext, err := Extract(f.Data)
	require.NoError(t, err)
	assert.Equal(t, "Golden Volume", ext.Volume.Title)
	assert.Equal(t, v.UUID, ext.Volume.UUID)
	assert.Equal(t, []byte{0xFF, 0xD8, 0x01}, ext.Pages["001.jpg"])
	assert.Equal(t, []string{"two"}, ext.OCR["002.jpg"].Blocks[0].Lines)

	// Entries come out stored, not deflated.
	zr, err := zip.NewReader(bytes.NewReader(f.Data), int64(len(f.Data)))
	require.NoError(t, err)
	for _, zf := range zr.File {
		assert.Equal(t, zip.Store, zf.Method, "entry %q", zf.Name)
	}
}

func TestImportMissingEntryIsAtomic(t *testing.T) {
	v := fixtureVolume()
	meta, err := json.Marshal(&v)
	require.NoError(t, err)

	ocr1, err := json.Marshal(fixtureOcr("one"))
	require.NoError(t, err)

	data := buildArchive(t, map[string][]byte{
		MetadataName:    meta,
		"001.jpg":       {0xFF, 0xD8, 0x01},
		"002.jpg":       {0xFF, 0xD8, 0x02},
		"_ocr/001.json": ocr1,
		// _ocr/002.json declared but absent
	})

	s, err := store.NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	_, _, err = Import(s, data)
	var missing *MissingFileError
	require.ErrorAs(t, err, &missing)

	volumes, err := s.ListVolumes()
	require.NoError(t, err)
	assert.Empty(t, volumes, "failed import must not leave a volume row")
}

func TestImportStampsDefaults(t *testing.T) {
	s, err := store.NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	settings := store.DefaultSettings()
	settings.Magnifier.Zoom = 300
	require.NoError(t, s.PutSettings(settings))

	v := fixtureVolume()
	v.UUID = ""
	v.Magnifier = store.MagnifierSettings{}
	meta, err := json.Marshal(&v)
	require.NoError(t, err)

	ocr1, err := json.Marshal(fixtureOcr("one"))
	require.NoError(t, err)
	ocr2, err := json.Marshal(fixtureOcr("two"))
	require.NoError(t, err)

	imported, _, err := Import(s, buildArchive(t, map[string][]byte{
		MetadataName:    meta,
		"001.jpg":       {0xFF, 0xD8, 0x01},
		"002.jpg":       {0xFF, 0xD8, 0x02},
		"_ocr/001.json": ocr1,
		"_ocr/002.json": ocr2,
	}))
	require.NoError(t, err)

	assert.NotEmpty(t, imported.UUID)
	assert.Equal(t, 300, imported.Magnifier.Zoom)
}

func TestExportMissingRowIsCorrupt(t *testing.T) {
	s, err := store.NewSQLiteStore()
	require.NoError(t, err)
	defer s.Close()

	// Volume row declares pages that were never stored.
	v := fixtureVolume()
	id, err := s.PutVolume(&v)
	require.NoError(t, err)

	_, err = Export(s, id)
	require.ErrorIs(t, err, ErrCorrupt)
}

func TestExportName(t *testing.T) {
	assert.Equal(t, "My Manga.zip", ExportName("My Manga"))
	assert.Equal(t, "a_b_c.zip", ExportName(`a/b:c`))
	assert.Equal(t, "volume.zip", ExportName("   "))
}

func TestMetadataGolden(t *testing.T) {
	v := fixtureVolume()
	data, err := json.MarshalIndent(&v, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "metadata", data)
}
