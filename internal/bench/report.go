package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/yndnr/cowkit-go/pkg/cowmap"
)

// Report summarizes a completed bench run.
type Report struct {
	RunID   string `json:"run_id"`
	Entries int    `json:"entries"`
	Readers int    `json:"readers"`
	Writers int    `json:"writers"`
	Ordered bool   `json:"ordered"`

	Elapsed      time.Duration `json:"elapsed_ns"`
	ReadOps      uint64        `json:"read_ops"`
	WriteOps     uint64        `json:"write_ops"`
	ReadsPerSec  float64       `json:"reads_per_sec"`
	WritesPerSec float64       `json:"writes_per_sec"`

	Map cowmap.Stats `json:"map"`
}

// Render writes the report in the given format (table or json).
func (r *Report) Render(w io.Writer, format string) error {
	switch format {
	case "json":
		return r.renderJSON(w)
	case "table", "":
		return r.renderTable(w)
	default:
		return fmt.Errorf("bench: unknown output format %q", format)
	}
}

func (r *Report) renderJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

func (r *Report) renderTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	rows := []struct {
		name  string
		value string
	}{
		{"RUN", r.RunID},
		{"ELAPSED", r.Elapsed.Round(time.Millisecond).String()},
		{"READERS", fmt.Sprintf("%d", r.Readers)},
		{"WRITERS", fmt.Sprintf("%d", r.Writers)},
		{"ORDERED", fmt.Sprintf("%t", r.Ordered)},
		{"READ OPS", fmt.Sprintf("%d", r.ReadOps)},
		{"WRITE OPS", fmt.Sprintf("%d", r.WriteOps)},
		{"READS/SEC", fmt.Sprintf("%.0f", r.ReadsPerSec)},
		{"WRITES/SEC", fmt.Sprintf("%.0f", r.WritesPerSec)},
		{"MAP ENTRIES", fmt.Sprintf("%d", r.Map.Entries)},
		{"MAP MUTATIONS", fmt.Sprintf("%d", r.Map.Mutations)},
		{"MAP PUBLISHES", fmt.Sprintf("%d", r.Map.Publishes)},
		{"SKIPPED COPIES", fmt.Sprintf("%d", r.Map.SkippedCopies)},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", row.name, row.value); err != nil {
			return err
		}
	}
	return tw.Flush()
}
