package arena_test

import (
	"math/rand"
	"testing"

	"github.com/joshuapare/memkit/mem/arena"
)

// Benchmark_Arena_AllocFree measures an allocate/free pair on an empty arena.
func Benchmark_Arena_AllocFree(b *testing.B) {
	a := newTestArena(b, 1<<16)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		h, err := a.Allocate(64 + (i%64)*4)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Free(h); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark_Arena_Fragmented measures allocation when the chain holds many
// small free blocks ahead of the one that fits.
func Benchmark_Arena_Fragmented(b *testing.B) {
	a := newTestArena(b, 1<<20)
	sizes := make([]int, 512)
	for i := range sizes {
		sizes[i] = 16 + (i%8)*4
	}
	layoutFreeBlocks(b, a, sizes...)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		h, err := a.Allocate(256)
		if err != nil {
			b.Fatal(err)
		}
		if err := a.Free(h); err != nil {
			b.Fatal(err)
		}
	}
}

// Benchmark_Arena_RandomWorkload mixes allocations and frees of random sizes.
func Benchmark_Arena_RandomWorkload(b *testing.B) {
	a := newTestArena(b, 1<<20)
	rng := rand.New(rand.NewSource(42))
	live := make([]arena.Handle, 0, 1024)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if len(live) > 0 && (len(live) == cap(live) || rng.Intn(2) == 0) {
			i := rng.Intn(len(live))
			if err := a.Free(live[i]); err != nil {
				b.Fatal(err)
			}
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
			continue
		}
		h, err := a.Allocate(1 + rng.Intn(512))
		if err != nil {
			continue
		}
		live = append(live, h)
	}
}
