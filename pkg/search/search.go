// Package search scans OCR line text across every stored volume for a
// set of query terms. The terms are compiled into one Aho-Corasick
// automaton so a whole library scans in a single pass per line,
// whatever the term count.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"

	"github.com/mokurodb/mokurodb/internal/store"
)

// ErrEmptyQuery is returned when no usable term remains after
// normalization and stopword filtering.
var ErrEmptyQuery = errors.New("search: no usable query terms")

// Query is a compiled set of search terms.
type Query struct {
	ac    *ahocorasick.Automaton
	terms []string
}

// NewQuery normalizes and compiles terms. Empty terms are dropped, and
// so are stopwords when a checker is supplied (pass nil to skip
// filtering, e.g. for Japanese queries where an English stopword list
// has no business rejecting anything).
func NewQuery(terms []string, sw *stopwords.Stopwords) (*Query, error) {
	kept := make([]string, 0, len(terms))
	for _, t := range terms {
		t = foldASCII(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if sw != nil && sw.Contains(t) {
			continue
		}
		kept = append(kept, t)
	}
	if len(kept) == 0 {
		return nil, ErrEmptyQuery
	}

	// LeftmostLongest so "san francisco" wins over "san" when both are
	// query terms; overlapping matches are still reported per term.
	ac, err := ahocorasick.NewBuilder().
		AddStrings(kept).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, fmt.Errorf("search: build automaton: %w", err)
	}
	return &Query{ac: ac, terms: kept}, nil
}

// Terms returns the normalized terms that survived filtering.
func (q *Query) Terms() []string {
	return q.terms
}

// Hit is one term occurrence inside one OCR line.
type Hit struct {
	VolumeID store.VolumeID
	Page     string
	BlockID  string
	Line     int
	Text     string // the full line
	Term     string
	Start    int // byte offsets into Text
	End      int
}

// ScanLine reports every term occurrence in one line of text.
func (q *Query) ScanLine(text string) []Hit {
	matches := q.ac.FindAllOverlapping([]byte(foldASCII(text)))
	if len(matches) == 0 {
		return nil
	}
	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, Hit{
			Text:  text,
			Term:  q.terms[m.PatternID],
			Start: m.Start,
			End:   m.End,
		})
	}
	return hits
}

// Scan walks every OCR row of every volume and collects hits, tagged
// with their volume, page, block, and line position.
func (q *Query) Scan(s *store.SQLiteStore) ([]Hit, error) {
	volumes, err := s.ListVolumes()
	if err != nil {
		return nil, fmt.Errorf("search: list volumes: %w", err)
	}

	var hits []Hit
	for _, v := range volumes {
		for _, pair := range v.Pages {
			ocr, err := s.GetOCR(v.ID, pair.Name)
			if err != nil {
				return nil, fmt.Errorf("search: volume %d page %q: %w", v.ID, pair.Name, err)
			}
			for _, block := range ocr.Blocks {
				for i, line := range block.Lines {
					for _, h := range q.ScanLine(line) {
						h.VolumeID = v.ID
						h.Page = pair.Name
						h.BlockID = block.UUID
						h.Line = i
						hits = append(hits, h)
					}
				}
			}
		}
	}
	return hits, nil
}

// foldASCII lowercases ASCII letters only, preserving byte offsets.
// Query terms and haystacks go through the same fold, so matching is
// case-insensitive for latin text and exact for everything else.
func foldASCII(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}
