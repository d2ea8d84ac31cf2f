package cli

import (
	"fmt"

	"github.com/orsinium-labs/stopwords"
	"github.com/spf13/cobra"

	"github.com/mokurodb/mokurodb/internal/store"
	"github.com/mokurodb/mokurodb/pkg/search"
)

// NewSearchCommand scans all OCR text for the given terms.
func NewSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM...",
		Short: "Search OCR text across all volumes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Stopword filtering only makes sense for languages we
			// have a list for.
			var sw *stopwords.Stopwords
			if opts.cfg.SearchLanguage == "en" {
				sw = stopwords.MustGet("en")
			}
			q, err := search.NewQuery(args, sw)
			if err != nil {
				return err
			}

			svc, closer, err := opts.openService()
			if err != nil {
				return err
			}
			defer closer()

			hits, err := q.Scan(svc.Store())
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			titles, err := volumeTitles(svc.Store())
			if err != nil {
				return err
			}
			for _, h := range hits {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", titles[h.VolumeID], h.Page, h.Text)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d match(es)\n", len(hits))
			return nil
		},
	}
}

func volumeTitles(s *store.SQLiteStore) (map[store.VolumeID]string, error) {
	volumes, err := s.ListVolumes()
	if err != nil {
		return nil, err
	}
	titles := make(map[store.VolumeID]string, len(volumes))
	for _, v := range volumes {
		titles[v.ID] = v.Title
	}
	return titles, nil
}
