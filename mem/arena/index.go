package arena

import "github.com/RoaringBitmap/roaring/v2"

// blockIndex records the header offset of every block in the chain. It
// answers "is this a block start" and "which block precedes it" without
// walking the list.
type blockIndex struct {
	starts *roaring.Bitmap
}

func newBlockIndex() blockIndex {
	return blockIndex{starts: roaring.New()}
}

func (x blockIndex) add(off uint32)           { x.starts.Add(off) }
func (x blockIndex) remove(off uint32)        { x.starts.Remove(off) }
func (x blockIndex) contains(off uint32) bool { return x.starts.Contains(off) }
func (x blockIndex) offsets() []uint32        { return x.starts.ToArray() }

// prev returns the start of the block immediately before off. off must be
// present in the index.
func (x blockIndex) prev(off uint32) (uint32, bool) {
	rank := x.starts.Rank(off)
	if rank < 2 {
		return 0, false
	}
	p, err := x.starts.Select(uint32(rank - 2))
	if err != nil {
		return 0, false
	}
	return p, true
}
