package printer

import (
	"encoding/json"

	"github.com/joshuapare/memkit/mem/arena"
)

// jsonReport is the JSON shape of a report.
type jsonReport struct {
	Length        int               `json:"length"`
	Usage         arena.Usage       `json:"usage"`
	Fragmentation float64           `json:"fragmentation"`
	Blocks        []arena.BlockInfo `json:"blocks"`
	Stats         *arena.Stats      `json:"stats,omitempty"`
}

func (p *Printer) printJSON(r arena.Report, stats *arena.Stats) error {
	out := jsonReport{
		Length:        r.Length,
		Usage:         r.Usage,
		Fragmentation: Fragmentation(r.Usage),
		Blocks:        r.Blocks,
		Stats:         stats,
	}
	if out.Blocks == nil {
		out.Blocks = []arena.BlockInfo{}
	}
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
