package arena

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BlockInfo describes one block. Offsets are relative to the region start.
type BlockInfo struct {
	Ordinal   int  `json:"no"`        // 1-based position in the chain
	Allocated bool `json:"allocated"` // false for free blocks
	Begin     int  `json:"begin"`     // first payload byte
	End       int  `json:"end"`       // last payload byte
	Size      int  `json:"size"`      // payload bytes
	TotalSize int  `json:"t_size"`    // payload plus header
	Header    int  `json:"t_begin"`   // first header byte
}

// Status returns "Busy" or "Free".
func (b BlockInfo) Status() string {
	if b.Allocated {
		return "Busy"
	}
	return "Free"
}

// Usage aggregates the block list. Byte totals include headers.
type Usage struct {
	Busy        int `json:"busy"`
	Free        int `json:"free"`
	Total       int `json:"total"`
	Blocks      int `json:"blocks"`
	FreeBlocks  int `json:"free_blocks"`
	LargestFree int `json:"largest_free"` // largest free payload
}

// Report is a point-in-time snapshot of an arena.
type Report struct {
	Length int         `json:"length"`
	Blocks []BlockInfo `json:"blocks"`
	Usage  Usage       `json:"usage"`

	// Index lists the offsets recorded in the block-start index.
	Index []uint32 `json:"-"`
}

// Walk calls fn for each block in address order until fn returns false.
// It never modifies the arena.
func (a *Arena) Walk(fn func(BlockInfo) bool) error {
	if err := a.ready(); err != nil {
		return err
	}
	off := uint32(0)
	for n := 1; ; n++ {
		blk := a.readHeader(off)
		begin := int(off) + HeaderSize
		info := BlockInfo{
			Ordinal:   n,
			Allocated: blk.allocated,
			Begin:     begin,
			End:       int(blk.end(off)) - 1,
			Size:      int(blk.size),
			TotalSize: int(blk.size) + HeaderSize,
			Header:    int(off),
		}
		if !fn(info) || blk.next == noNext {
			return nil
		}
		// A corrupted chain must not send Walk backwards forever.
		if blk.next <= off || int(blk.next)+HeaderSize > len(a.data) {
			return fmt.Errorf("arena: broken chain at offset 0x%x (next 0x%x)", off, blk.next)
		}
		off = blk.next
	}
}

// Blocks returns every block in address order.
func (a *Arena) Blocks() ([]BlockInfo, error) {
	var out []BlockInfo
	err := a.Walk(func(b BlockInfo) bool {
		out = append(out, b)
		return true
	})
	return out, err
}

// Usage totals busy and free bytes across the block list.
func (a *Arena) Usage() (Usage, error) {
	blocks, err := a.Blocks()
	if err != nil {
		return Usage{}, err
	}
	return usageOf(blocks), nil
}

func usageOf(blocks []BlockInfo) Usage {
	var u Usage
	for _, b := range blocks {
		u.Blocks++
		if b.Allocated {
			u.Busy += b.TotalSize
			continue
		}
		u.Free += b.TotalSize
		u.FreeBlocks++
		u.LargestFree = max(u.LargestFree, b.Size)
	}
	u.Total = u.Busy + u.Free
	return u
}

// Report snapshots the block list, its totals and the block-start index.
func (a *Arena) Report() (Report, error) {
	blocks, err := a.Blocks()
	if err != nil {
		return Report{}, err
	}
	return Report{
		Length: len(a.data),
		Blocks: blocks,
		Usage:  usageOf(blocks),
		Index:  a.index.offsets(),
	}, nil
}

// Dump writes the block list table to w.
func (a *Arena) Dump(w io.Writer) error {
	r, err := a.Report()
	if err != nil {
		return err
	}
	return WriteReport(w, r)
}

var (
	banner = strings.Repeat("*", 81)
	rule   = strings.Repeat("-", 81)
)

// WriteReport renders r as the block list table:
//
//	No.  Status  Begin  End  Size  t_Size  t_Begin
//
// followed by busy, free and total byte counts.
func WriteReport(w io.Writer, r Report) error {
	p := message.NewPrinter(language.English)

	var sb strings.Builder
	sb.WriteString("************************************Block list***********************************\n")
	sb.WriteString("No.\tStatus\tBegin\t\tEnd\t\tSize\tt_Size\tt_Begin\n")
	sb.WriteString(rule + "\n")
	for _, b := range r.Blocks {
		fmt.Fprintf(&sb, "%d\t%s\t0x%08x\t0x%08x\t%d\t%d\t0x%08x\n",
			b.Ordinal, b.Status(), b.Begin, b.End, b.Size, b.TotalSize, b.Header)
	}
	sb.WriteString(rule + "\n")
	sb.WriteString(banner + "\n")
	p.Fprintf(&sb, "Total busy size = %d\n", r.Usage.Busy)
	p.Fprintf(&sb, "Total free size = %d\n", r.Usage.Free)
	p.Fprintf(&sb, "Total size = %d\n", r.Usage.Total)
	sb.WriteString(banner + "\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
