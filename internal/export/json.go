package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/training"
)

type jsonExport struct {
	ExportedAt string           `json:"exported_at"`
	Range      caldate.Range    `json:"range"`
	Count      int              `json:"count"`
	Totals     training.Totals  `json:"totals"`
	Entries    []training.Entry `json:"entries"`
}

// ToJSON writes entries with their totals as an indented document.
func ToJSON(w io.Writer, r caldate.Range, entries []training.Entry, now time.Time) error {
	if entries == nil {
		entries = []training.Entry{}
	}
	doc := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Range:      r,
		Count:      len(entries),
		Totals:     training.Summarize(entries),
		Entries:    entries,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json export: %w", err)
	}
	return nil
}
