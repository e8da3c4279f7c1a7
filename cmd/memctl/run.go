package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/mem/arena"
	"github.com/joshuapare/memkit/mem/printer"
	"github.com/joshuapare/memkit/mem/region"
)

var (
	runPageSize  int
	runHeap      bool
	runKeepGoing bool
	runFormat    string
	runFreeOnly  bool
	runMetrics   bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVar(&runPageSize, "page-size", 0, "Round the arena to this many bytes (0 = host page size)")
	cmd.Flags().BoolVar(&runHeap, "heap", false, "Back the arena with the Go heap instead of an anonymous mapping")
	cmd.Flags().BoolVar(&runKeepGoing, "keep-going", false, "Continue after a failing step")
	cmd.Flags().StringVar(&runFormat, "format", "text", "Dump format: text, summary or json")
	cmd.Flags().BoolVar(&runFreeOnly, "free-only", false, "List only free blocks in dumps")
	cmd.Flags().BoolVar(&runMetrics, "metrics", false, "Print Prometheus metrics for the arena when the script ends")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay an allocation script",
		Long: `The run command executes an allocation script against a fresh arena.
Each line holds one operation:

  init <size>          reserve the region
  alloc <name> <size>  allocate and remember the block as <name>
  free <name>          release a named block
  write <name> <text>  copy text into a named block
  read <name>          print what was written to a named block
  dump                 print the block list
  stats                print totals and operation counters
  check                verify the block list invariants
  close                release the region

A leading '!' marks a step that must fail. Lines starting with '#' are
comments. Use '-' to read the script from stdin.

Example:
  memctl run workload.txt
  memctl run workload.txt --format summary
  memctl run workload.txt --metrics
  memctl run - --heap --page-size 4 < workload.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(args)
		},
	}
	return cmd
}

func runScript(args []string) error {
	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	steps, err := parseScript(in)
	if err != nil {
		return err
	}
	printVerbose("Parsed %d steps\n", len(steps))

	opts := arena.DefaultOptions()
	opts.PageSize = runPageSize
	opts.Logger = newLogger()
	if runHeap {
		opts.Provider = region.Heap()
	}
	a := arena.New(opts)
	defer a.Close()

	popts := printer.DefaultOptions()
	popts.Format = reportFormat(printer.Format(runFormat))
	popts.FreeOnly = runFreeOnly

	var out io.Writer = os.Stdout
	if quiet {
		out = io.Discard
	}

	r := newRunner(a, out, popts)
	var failed []error
	for _, s := range steps {
		if err := r.exec(s); err != nil {
			if !runKeepGoing {
				return err
			}
			fmt.Fprintln(os.Stderr, "Error:", err)
			failed = append(failed, err)
		}
	}

	printVerbose("Ran %d steps, %d checks passed\n", len(steps), r.checked)
	if runMetrics {
		if err := writeMetrics(out, a, "script"); err != nil {
			return err
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d steps failed: %w", len(failed), len(steps), errors.Join(failed...))
	}
	return nil
}
