package printer

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/memkit/mem/arena"
)

func (p *Printer) printText(r arena.Report, stats *arena.Stats) error {
	if err := arena.WriteReport(p.writer, r); err != nil {
		return err
	}
	if stats != nil {
		return p.printStats(*stats)
	}
	return nil
}

func (p *Printer) printSummary(r arena.Report, stats *arena.Stats) error {
	mp := message.NewPrinter(language.English)
	u := r.Usage
	if _, err := mp.Fprintf(p.writer,
		"%d bytes, %d blocks (%d free): busy %d, free %d, largest free %d, fragmentation %.1f%%\n",
		r.Length, u.Blocks, u.FreeBlocks, u.Busy, u.Free, u.LargestFree, Fragmentation(u)*100,
	); err != nil {
		return err
	}
	if stats != nil {
		return p.printStats(*stats)
	}
	return nil
}

func (p *Printer) printStats(s arena.Stats) error {
	mp := message.NewPrinter(language.English)
	_, err := mp.Fprintf(p.writer,
		"allocate: %d calls, %d failed, %d splits, %d bytes\nfree: %d calls, %d failed, %d forward merges, %d backward merges, %d bytes\n",
		s.AllocCalls, s.AllocFailures, s.Splits, s.BytesAllocated,
		s.FreeCalls, s.FreeFailures, s.CoalesceForward, s.CoalesceBackward, s.BytesFreed,
	)
	return err
}

// Fragmentation returns the share of free payload bytes that lie outside the
// largest free block: 0 when all free space is one block, approaching 1 as it
// scatters.
func Fragmentation(u arena.Usage) float64 {
	freePayload := u.Free - u.FreeBlocks*arena.HeaderSize
	if freePayload <= 0 {
		return 0
	}
	return 1 - float64(u.LargestFree)/float64(freePayload)
}

