package archive

import (
	"errors"
	"fmt"
)

// ErrCorrupt marks invariant violations found while exporting: a page or
// OCR row declared by the volume metadata is absent from the store. This
// is fatal, not a user-recoverable condition.
var ErrCorrupt = errors.New("archive: store out of sync with volume metadata")

// MissingFileError reports an archive that lacks a required entry.
// It names the entry so the user can see what their zip is missing.
type MissingFileError struct {
	Name string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("archive: missing file %q", e.Name)
}
