package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/memkit/mem/arena"
	"github.com/joshuapare/memkit/mem/region"
	"github.com/joshuapare/memkit/mem/verify"
)

var (
	stressWorkers  int
	stressOps      int
	stressSize     int
	stressMaxAlloc int
	stressSeed     uint64
	stressHeap     bool
	stressNoVerify bool
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressWorkers, "workers", 4, "Number of independent arenas driven in parallel")
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Operations per worker")
	cmd.Flags().IntVar(&stressSize, "size", 1<<16, "Arena size in bytes")
	cmd.Flags().IntVar(&stressMaxAlloc, "max-alloc", 512, "Largest single allocation")
	cmd.Flags().Uint64Var(&stressSeed, "seed", 1, "Random seed; worker i uses seed+i")
	cmd.Flags().BoolVar(&stressHeap, "heap", false, "Back arenas with the Go heap instead of anonymous mappings")
	cmd.Flags().BoolVar(&stressNoVerify, "no-verify", false, "Skip the invariant check after each operation")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run a randomized allocate/free workload",
		Long: `The stress command drives one arena per worker with a random mix of
allocations and frees. Each block is filled with a marker byte that is
checked before the block is freed, and the block list invariants are
verified after every operation.

Arenas are independent; an arena itself is never shared between workers.

Example:
  memctl stress
  memctl stress --workers 8 --ops 50000 --size 1048576
  memctl stress --seed 42 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(cmd.Context())
		},
	}
	return cmd
}

// stressConfig is one worker's workload.
type stressConfig struct {
	Size     int
	Ops      int
	MaxAlloc int
	Seed     uint64
	Heap     bool
	Verify   bool
}

// StressResult is the outcome of one worker.
type StressResult struct {
	Worker      int           `json:"worker"`
	Seed        uint64        `json:"seed"`
	Ops         int           `json:"ops"`
	Allocations int           `json:"allocations"`
	Frees       int           `json:"frees"`
	OutOfMemory int           `json:"out_of_memory"`
	PeakLive    int           `json:"peak_live"`
	Stats       arena.Stats   `json:"stats"`
	Usage       arena.Usage   `json:"usage"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

var errCorrupted = errors.New("block contents corrupted")

func runStress(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if stressWorkers <= 0 || stressOps < 0 || stressMaxAlloc <= 0 {
		return fmt.Errorf("workers and max-alloc must be positive, ops must not be negative")
	}

	results := make([]StressResult, stressWorkers)
	g, ctx := errgroup.WithContext(ctx)
	for i := range stressWorkers {
		cfg := stressConfig{
			Size:     stressSize,
			Ops:      stressOps,
			MaxAlloc: stressMaxAlloc,
			Seed:     stressSeed + uint64(i),
			Heap:     stressHeap,
			Verify:   !stressNoVerify,
		}
		g.Go(func() error {
			res, err := stressWorker(ctx, cfg)
			res.Worker = i
			results[i] = res
			if err != nil {
				return fmt.Errorf("worker %d (seed %d): %w", i, cfg.Seed, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if jsonOut {
		return printJSON(results)
	}
	var total StressResult
	for _, r := range results {
		printVerbose("worker %d: %d allocs, %d frees, %d oom, peak %d live, largest free %d\n",
			r.Worker, r.Allocations, r.Frees, r.OutOfMemory, r.PeakLive, r.Usage.LargestFree)
		total.Ops += r.Ops
		total.Allocations += r.Allocations
		total.Frees += r.Frees
		total.OutOfMemory += r.OutOfMemory
		total.Stats.Splits += r.Stats.Splits
		total.Stats.CoalesceForward += r.Stats.CoalesceForward
		total.Stats.CoalesceBackward += r.Stats.CoalesceBackward
	}
	printInfo("%d workers, %d ops: %d allocations, %d frees, %d out of memory, %d splits, %d coalesces\n",
		len(results), total.Ops, total.Allocations, total.Frees, total.OutOfMemory,
		total.Stats.Splits, total.Stats.CoalesceForward+total.Stats.CoalesceBackward)
	return nil
}

type liveBlock struct {
	h    arena.Handle
	mark byte
}

// stressWorker runs cfg against a private arena. Every block still live at
// the end is freed, which must leave a single free block.
func stressWorker(ctx context.Context, cfg stressConfig) (StressResult, error) {
	res := StressResult{Seed: cfg.Seed}
	start := time.Now()

	opts := arena.DefaultOptions()
	opts.Logger = newLogger()
	if cfg.Heap {
		opts.Provider = region.Heap()
	}
	a, err := arena.Open(cfg.Size, opts)
	if err != nil {
		return res, err
	}
	defer a.Close()

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	var live []liveBlock

	check := func() error {
		if !cfg.Verify {
			return nil
		}
		return verify.Arena(a)
	}
	release := func(i int) error {
		b := live[i]
		p, err := a.Bytes(b.h)
		if err != nil {
			return err
		}
		for _, c := range p {
			if c != b.mark {
				return fmt.Errorf("%w at 0x%08x", errCorrupted, uint32(b.h))
			}
		}
		if err := a.Free(b.h); err != nil {
			return err
		}
		live[i] = live[len(live)-1]
		live = live[:len(live)-1]
		res.Frees++
		return nil
	}

	for op := range cfg.Ops {
		if op%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		res.Ops++

		if len(live) > 0 && rng.IntN(2) == 0 {
			if err := release(rng.IntN(len(live))); err != nil {
				return res, fmt.Errorf("op %d: free: %w", op, err)
			}
		} else {
			h, err := a.Allocate(1 + rng.IntN(cfg.MaxAlloc))
			switch {
			case errors.Is(err, arena.ErrOutOfMemory):
				res.OutOfMemory++
			case err != nil:
				return res, fmt.Errorf("op %d: alloc: %w", op, err)
			default:
				mark := byte(op)
				p, err := a.Bytes(h)
				if err != nil {
					return res, fmt.Errorf("op %d: bytes: %w", op, err)
				}
				for i := range p {
					p[i] = mark
				}
				live = append(live, liveBlock{h: h, mark: mark})
				res.Allocations++
				res.PeakLive = max(res.PeakLive, len(live))
			}
		}
		if err := check(); err != nil {
			return res, fmt.Errorf("op %d: %w", op, err)
		}
	}

	for len(live) > 0 {
		if err := release(len(live) - 1); err != nil {
			return res, fmt.Errorf("drain: %w", err)
		}
	}
	if err := check(); err != nil {
		return res, fmt.Errorf("drain: %w", err)
	}
	u, err := a.Usage()
	if err != nil {
		return res, err
	}
	if u.Blocks != 1 || u.FreeBlocks != 1 {
		return res, fmt.Errorf("drain: %d blocks remain, want one free block", u.Blocks)
	}

	res.Usage = u
	res.Stats = a.Stats()
	res.Elapsed = time.Since(start)
	return res, nil
}
