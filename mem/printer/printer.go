// Package printer renders arena block reports as text, JSON or a one-line
// summary.
package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/memkit/mem/arena"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs the block list table.
	FormatText Format = "text"

	// FormatJSON outputs the report as JSON.
	FormatJSON Format = "json"

	// FormatSummary outputs aggregate totals only.
	FormatSummary Format = "summary"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json, summary).
	// Default: FormatText
	Format Format

	// FreeOnly restricts the block list to free blocks (text and JSON).
	// Default: false
	FreeOnly bool

	// ShowStats appends operation counters.
	// Default: false
	ShowStats bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:    FormatText,
		FreeOnly:  false,
		ShowStats: false,
	}
}

// Source is what a Printer reads from. *arena.Arena satisfies it.
type Source interface {
	Report() (arena.Report, error)
	Stats() arena.Stats
}

// Printer handles formatted output of arena reports.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	return &Printer{opts: opts, writer: w}
}

// Print snapshots src and writes it in the configured format.
func (p *Printer) Print(src Source) error {
	r, err := src.Report()
	if err != nil {
		return fmt.Errorf("report: %w", err)
	}
	var stats *arena.Stats
	if p.opts.ShowStats {
		s := src.Stats()
		stats = &s
	}
	return p.PrintReport(r, stats)
}

// PrintReport writes r, and stats when non-nil, in the configured format.
func (p *Printer) PrintReport(r arena.Report, stats *arena.Stats) error {
	if p.opts.FreeOnly {
		r = freeOnly(r)
	}
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(r, stats)
	case FormatSummary:
		return p.printSummary(r, stats)
	case FormatText:
		return p.printText(r, stats)
	default:
		return p.printText(r, stats)
	}
}

// freeOnly drops busy blocks from the listing. Usage totals are kept.
func freeOnly(r arena.Report) arena.Report {
	blocks := make([]arena.BlockInfo, 0, r.Usage.FreeBlocks)
	for _, b := range r.Blocks {
		if !b.Allocated {
			blocks = append(blocks, b)
		}
	}
	r.Blocks = blocks
	return r
}
