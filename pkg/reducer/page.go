package reducer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mokurodb/mokurodb/internal/store"
)

// ErrNoBlock is returned when a block id no longer resolves to a block.
// A dangling id means the caller's view of the record is corrupt; this
// is never swallowed.
var ErrNoBlock = errors.New("reducer: no block with matching id")

// PageKey addresses one page's OCR record.
type PageKey struct {
	Volume store.VolumeID
	Name   string
}

// PageReducer keeps one page's OCR record in sync with its store row.
// Block edits go through its named actions.
type PageReducer struct {
	*Reducer[PageKey, store.PageOcr]
}

// NewPageReducer wires a reducer to the ocr table.
func NewPageReducer(s *store.SQLiteStore) *PageReducer {
	return &PageReducer{
		Reducer: New(
			func(_ context.Context, k PageKey) (store.PageOcr, error) {
				return s.GetOCR(k.Volume, k.Name)
			},
			func(_ context.Context, k PageKey, ocr store.PageOcr) error {
				return s.PutOCR(k.Volume, k.Name, ocr)
			},
		),
	}
}

func (r *PageReducer) findBlock(uuid string) (int, error) {
	if r.Current() == nil {
		return 0, ErrNotMounted
	}
	for i, b := range r.Current().Blocks {
		if b.UUID == uuid {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrNoBlock, uuid)
}

// UpdateBlock replaces the block sharing the given block's id.
func (r *PageReducer) UpdateBlock(block store.OcrBlock) error {
	i, err := r.findBlock(block.UUID)
	if err != nil {
		return err
	}
	r.Current().Blocks[i] = block
	return nil
}

// DeleteBlock removes the block with matching id.
func (r *PageReducer) DeleteBlock(uuid string) error {
	i, err := r.findBlock(uuid)
	if err != nil {
		return err
	}
	blocks := r.Current().Blocks
	r.Current().Blocks = append(blocks[:i], blocks[i+1:]...)
	return nil
}

// AddBlock appends a newly created block to the record.
func (r *PageReducer) AddBlock(block store.OcrBlock) error {
	return r.Dispatch(func(ocr *store.PageOcr) {
		ocr.Blocks = append(ocr.Blocks, block)
	})
}
