package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/joshuapare/memkit/mem/arena"
	"github.com/joshuapare/memkit/mem/printer"
	"github.com/joshuapare/memkit/mem/verify"
)

var (
	errUnknownOp      = errors.New("unknown operation")
	errUnknownName    = errors.New("unknown block name")
	errUsage          = errors.New("wrong number of arguments")
	errExpectedFailed = errors.New("operation succeeded but was expected to fail")
)

// step is one parsed script line.
type step struct {
	line       int
	op         string
	args       []string
	text       string // rest of line for write
	expectFail bool
}

func (s step) String() string {
	str := s.op
	if len(s.args) > 0 {
		str += " " + strings.Join(s.args, " ")
	}
	if s.text != "" {
		str += " " + s.text
	}
	if s.expectFail {
		str = "!" + str
	}
	return str
}

// arity is the argument count of each operation. write takes a name plus
// free text and is handled separately.
var arity = map[string]int{
	"init":  1,
	"alloc": 2,
	"free":  1,
	"write": 1,
	"read":  1,
	"dump":  0,
	"stats": 0,
	"check": 0,
	"close": 0,
}

// parseScript reads one operation per line. Blank lines and lines starting
// with '#' are skipped. A leading '!' marks a step that must fail.
func parseScript(r io.Reader) ([]step, error) {
	var steps []step
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s := step{line: lineNo}
		if rest, ok := strings.CutPrefix(line, "!"); ok {
			s.expectFail = true
			line = strings.TrimSpace(rest)
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("line %d: %w", lineNo, errUsage)
		}
		s.op = strings.ToLower(fields[0])
		want, ok := arity[s.op]
		if !ok {
			return nil, fmt.Errorf("line %d: %w %q", lineNo, errUnknownOp, fields[0])
		}

		if s.op == "write" {
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: write: %w", lineNo, errUsage)
			}
			s.args = fields[1:2]
			s.text = strings.Join(fields[2:], " ")
		} else {
			if len(fields)-1 != want {
				return nil, fmt.Errorf("line %d: %s: %w", lineNo, s.op, errUsage)
			}
			s.args = fields[1:]
		}
		steps = append(steps, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return steps, nil
}

// named is a block the script refers to by name.
type named struct {
	h       arena.Handle
	size    int
	written int
}

// runner executes parsed steps against one arena.
type runner struct {
	a       *arena.Arena
	out     io.Writer
	print   printer.Options
	names   map[string]*named
	checked int
}

func newRunner(a *arena.Arena, out io.Writer, popts printer.Options) *runner {
	return &runner{a: a, out: out, print: popts, names: make(map[string]*named)}
}

// exec runs s and applies its expected-failure marker.
func (r *runner) exec(s step) error {
	err := r.apply(s)
	if s.expectFail {
		if err == nil {
			return fmt.Errorf("line %d: %s: %w", s.line, s, errExpectedFailed)
		}
		fmt.Fprintf(r.out, "%s: failed as expected: %v\n", s, err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("line %d: %s: %w", s.line, s, err)
	}
	return nil
}

func (r *runner) lookup(name string) (*named, error) {
	n, ok := r.names[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownName, name)
	}
	return n, nil
}

func (r *runner) apply(s step) error {
	switch s.op {
	case "init":
		size, err := strconv.Atoi(s.args[0])
		if err != nil {
			return fmt.Errorf("size: %w", err)
		}
		if err := r.a.Initialize(size); err != nil {
			return err
		}
		fmt.Fprintf(r.out, "init %d -> region of %d bytes\n", size, r.a.Len())

	case "alloc":
		size, err := strconv.Atoi(s.args[1])
		if err != nil {
			return fmt.Errorf("size: %w", err)
		}
		h, err := r.a.Allocate(size)
		if err != nil {
			return err
		}
		got, err := r.a.SizeOf(h)
		if err != nil {
			return err
		}
		r.names[s.args[0]] = &named{h: h, size: got}
		fmt.Fprintf(r.out, "alloc %s %d -> 0x%08x (%d bytes)\n", s.args[0], size, uint32(h), got)

	case "free":
		n, err := r.lookup(s.args[0])
		if err != nil {
			return err
		}
		if err := r.a.Free(n.h); err != nil {
			return err
		}
		n.written = 0
		fmt.Fprintf(r.out, "free %s (0x%08x)\n", s.args[0], uint32(n.h))

	case "write":
		n, err := r.lookup(s.args[0])
		if err != nil {
			return err
		}
		p, err := r.a.Bytes(n.h)
		if err != nil {
			return err
		}
		if len(s.text) > len(p) {
			return fmt.Errorf("%d bytes do not fit in a %d byte block", len(s.text), len(p))
		}
		n.written = copy(p, s.text)
		fmt.Fprintf(r.out, "write %s %d bytes\n", s.args[0], n.written)

	case "read":
		n, err := r.lookup(s.args[0])
		if err != nil {
			return err
		}
		p, err := r.a.Bytes(n.h)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "read %s %q\n", s.args[0], p[:n.written])

	case "dump":
		return printer.New(r.out, r.print).Print(r.a)

	case "stats":
		opts := r.print
		opts.Format = printer.FormatSummary
		opts.ShowStats = true
		return printer.New(r.out, opts).Print(r.a)

	case "check":
		if err := verify.Arena(r.a); err != nil {
			return err
		}
		r.checked++
		fmt.Fprintln(r.out, "check ok")

	case "close":
		if err := r.a.Close(); err != nil {
			return err
		}
		fmt.Fprintln(r.out, "closed")

	default:
		return fmt.Errorf("%w %q", errUnknownOp, s.op)
	}
	return nil
}
