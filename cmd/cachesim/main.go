// Command cachesim replays a request trace through the LFU and
// optimal replacement engines and reports their hit counts.
//
// The trace is read from standard input (or -in) as whitespace separated
// integers: the cache capacity, the number of requests, then the requests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/djdv/go-cachesim/internal/sim"
	"github.com/djdv/go-cachesim/trace"
)

type settings struct {
	input       string
	verbose     bool
	progress    bool
	noLFU       bool
	noOptimal   bool
	baselines   bool
	progressGap time.Duration
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("cachesim: ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatal(err)
	}
}

func parseSettings(args []string, stderr io.Writer) (settings, error) {
	var (
		set   settings
		flags = flag.NewFlagSet("cachesim", flag.ContinueOnError)
	)
	flags.SetOutput(stderr)
	flags.StringVar(&set.input, "in", "", "trace file (default standard input)")
	flags.BoolVar(&set.verbose, "v", false, "dump cache state after every request")
	flags.BoolVar(&set.progress, "p", false, "report replay progress on standard error")
	flags.BoolVar(&set.noLFU, "no-lfu", false, "do not replay the LFU cache")
	flags.BoolVar(&set.noOptimal, "no-optimal", false, "do not replay the optimal cache")
	flags.BoolVar(&set.baselines, "baselines", false, "also replay LRU and ARC caches")
	flags.DurationVar(&set.progressGap, "progress-interval", 200*time.Millisecond, "progress report interval")
	if err := flags.Parse(args); err != nil {
		return set, err
	}
	if flags.NArg() != 0 {
		return set, fmt.Errorf("unexpected arguments: %v", flags.Args())
	}
	if set.progressGap <= 0 {
		return set, fmt.Errorf("progress interval must be positive: %s", set.progressGap)
	}
	return set, nil
}

func (set settings) policies() []string {
	var names []string
	if !set.noLFU {
		names = append(names, sim.LFU)
	}
	if !set.noOptimal {
		names = append(names, sim.Optimal)
	}
	if set.baselines {
		names = append(names, sim.LRU, sim.ARC)
	}
	return names
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	set, err := parseSettings(args, stderr)
	if err != nil {
		return err
	}
	tr, err := readTrace(set.input, stdin)
	if err != nil {
		return err
	}
	names := set.policies()
	var results []sim.Result
	if set.verbose {
		results, err = replayVerbose(ctx, tr, names, stdout)
	} else {
		results, err = replay(ctx, tr, names, set, stderr)
	}
	if err != nil {
		return err
	}
	for _, result := range results {
		if _, err := fmt.Fprintf(stdout, "%s cache hits: %d/%d\n",
			result.Policy, result.Hits, result.Requests()); err != nil {
			return err
		}
	}
	return nil
}

func readTrace(path string, stdin io.Reader) (*trace.Trace, error) {
	if path == "" {
		return trace.Read(stdin)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	tr, err := trace.Read(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tr, nil
}

func replay(
	ctx context.Context, tr *trace.Trace, names []string,
	set settings, stderr io.Writer,
) ([]sim.Result, error) {
	if !set.progress {
		return sim.RunAll(ctx, tr.Capacity, tr.Keys, names, nil)
	}
	var (
		progress sim.Progress
		finished = make(chan struct{})
		reported = make(chan struct{})
	)
	go func() {
		defer close(reported)
		reportProgress(&progress, set.progressGap, finished, stderr)
	}()
	results, err := sim.RunAll(ctx, tr.Capacity, tr.Keys, names, &progress)
	close(finished)
	<-reported
	return results, err
}

func reportProgress(progress *sim.Progress, interval time.Duration, finished <-chan struct{}, stderr io.Writer) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	report := func() {
		done, total := progress.Done()
		percent := 100.0
		if total > 0 {
			percent = float64(done) / float64(total) * 100
		}
		fmt.Fprintf(stderr, "\rreplayed %d/%d requests (%.0f%%)", done, total, percent)
	}
	for {
		select {
		case <-ticker.C:
			report()
		case <-finished:
			report()
			fmt.Fprintln(stderr)
			return
		}
	}
}

func replayVerbose(ctx context.Context, tr *trace.Trace, names []string, stdout io.Writer) ([]sim.Result, error) {
	results := make([]sim.Result, 0, len(names))
	for _, name := range names {
		policy, err := sim.New(name, tr.Capacity, tr.Keys)
		if err != nil {
			return nil, err
		}
		result, err := sim.Run(ctx, policy, tr.Keys, func(step sim.Step) error {
			return dumpStep(stdout, step)
		})
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func dumpStep(w io.Writer, step sim.Step) error {
	outcome := "miss"
	if step.Hit {
		outcome = "hit"
	}
	keys := slices.Sorted(step.Policy.Keys())
	if _, err := fmt.Fprintf(w, "%s [%d] %d: %s\ncache: %v\n",
		step.Policy.Name(), step.Position, step.Key, outcome, keys); err != nil {
		return err
	}
	if dumper, ok := step.Policy.(sim.Dumper); ok {
		if err := dumper.Dump(w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
