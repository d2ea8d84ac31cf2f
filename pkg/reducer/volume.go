package reducer

import (
	"context"

	"github.com/mokurodb/mokurodb/internal/store"
	"github.com/mokurodb/mokurodb/pkg/reader"
)

// VolumeReducer keeps one volume's metadata in sync with its store row.
// Page navigation and display toggles go through its named actions.
type VolumeReducer struct {
	*Reducer[store.VolumeID, store.Volume]
}

// NewVolumeReducer wires a reducer to the volume table.
func NewVolumeReducer(s *store.SQLiteStore) *VolumeReducer {
	return &VolumeReducer{
		Reducer: New(
			func(_ context.Context, id store.VolumeID) (store.Volume, error) {
				v, err := s.GetVolume(id)
				if err != nil {
					return store.Volume{}, err
				}
				return *v, nil
			},
			func(_ context.Context, id store.VolumeID, v store.Volume) error {
				v.ID = id
				_, err := s.PutVolume(&v)
				return err
			},
		),
	}
}

// NextPage advances the reading position.
func (r *VolumeReducer) NextPage() error {
	return r.Dispatch(func(v *store.Volume) {
		v.ReaderState = reader.Forward(v.ReaderState, len(v.Pages))
	})
}

// PrevPage steps the reading position back.
func (r *VolumeReducer) PrevPage() error {
	return r.Dispatch(func(v *store.Volume) {
		v.ReaderState = reader.Backward(v.ReaderState, len(v.Pages))
	})
}

// ToggleSinglePage flips between one- and two-page display.
func (r *VolumeReducer) ToggleSinglePage() error {
	return r.Dispatch(func(v *store.Volume) {
		v.ReaderState.SinglePage = !v.ReaderState.SinglePage
	})
}

// ToggleCover flips whether page zero is displayed alone.
func (r *VolumeReducer) ToggleCover() error {
	return r.Dispatch(func(v *store.Volume) {
		v.ReaderState.FirstPageIsCover = !v.ReaderState.FirstPageIsCover
	})
}

// ToggleSidebar flips the sidebar visibility preference.
func (r *VolumeReducer) ToggleSidebar() error {
	return r.Dispatch(func(v *store.Volume) {
		v.HideSidebar = !v.HideSidebar
	})
}

// SetMagnifier replaces the magnifier settings, clamped to valid ranges.
func (r *VolumeReducer) SetMagnifier(m store.MagnifierSettings) error {
	return r.Dispatch(func(v *store.Volume) {
		v.Magnifier = m.Clamp()
	})
}
