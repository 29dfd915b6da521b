package ident

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/crn-tools/crnident/pkg/network"
	"github.com/crn-tools/crnident/pkg/observability"
	"github.com/crn-tools/crnident/pkg/perm"
)

// progressInterval is how many emitted candidates pass between Progress
// callbacks.
const progressInterval = 1024

// Search looks for an assignment that maps ref onto target under the
// requested relation and mode. It returns:
//
//   - (assignment, nil) when a valid assignment was found;
//   - (nil, nil) when the constrained search space was exhausted and no
//     assignment exists (a definite NONE);
//   - (nil, ErrUndetermined) when the budget or timeout tripped first;
//   - (nil, ErrShapeMismatch) when the dimensions rule the mode out;
//   - (nil, ctx.Err()) when the caller's context was canceled.
//
// Search never mutates the networks and is safe to call concurrently for
// different pairs.
func Search(ctx context.Context, ref, target *network.Network, opts Options) (*Assignment, error) {
	rel, mode := opts.Relation.String(), opts.Mode.String()
	observability.Search().OnSearchStart(ctx, ref.Name(), target.Name(), rel, mode)
	start := time.Now()

	var evaluated int64
	userDebug := opts.Debug
	opts.Debug = func(d DebugInfo) {
		evaluated = d.Evaluated
		if userDebug != nil {
			userDebug(d)
		}
	}

	a, err := search(ctx, ref, target, opts)

	outcome := "none"
	switch {
	case a != nil:
		outcome = "match"
	case errors.Is(err, ErrUndetermined):
		outcome = "undetermined"
	case err != nil:
		outcome = "error"
	}
	observability.Search().OnSearchComplete(ctx, ref.Name(), target.Name(), rel, mode, outcome, evaluated, time.Since(start))
	return a, err
}

func search(ctx context.Context, ref, target *network.Network, opts Options) (*Assignment, error) {
	switch opts.Mode {
	case Subset:
		if ref.NumSpecies() > target.NumSpecies() || ref.NumReactions() > target.NumReactions() {
			return nil, ErrShapeMismatch
		}
		return searchSubset(ctx, ref, target, opts)
	default:
		if !ref.SameShape(target) {
			return nil, ErrShapeMismatch
		}
		return searchExact(ctx, ref, target, opts)
	}
}

func searchExact(ctx context.Context, ref, target *network.Network, opts Options) (*Assignment, error) {
	rowBlocks, ok := speciesBlocks(ref, target, opts.Relation)
	if !ok {
		emitDebug(opts, DebugInfo{Exhausted: true})
		return nil, nil
	}
	colBlocks, ok := reactionBlocks(ref, target, opts.Relation)
	if !ok {
		emitDebug(opts, DebugInfo{Exhausted: true})
		return nil, nil
	}

	info := DebugInfo{
		SpeciesBlockSizes:  blockSizes(rowBlocks),
		ReactionBlockSizes: blockSizes(colBlocks),
	}
	for _, b := range rowBlocks {
		info.Log10Candidates += perm.Log10Factorial(len(b.From))
	}
	for _, b := range colBlocks {
		info.Log10Candidates += perm.Log10Factorial(len(b.To))
	}

	produce := func(emit func(species, reactions []int) bool) bool {
		rowGen, err := perm.NewProduct(rowBlocks)
		if err != nil {
			return true // uneven blocks already rejected above
		}
		species := make([]int, ref.NumSpecies())
		for rowGen.Next(species) {
			colGen, err := perm.NewProduct(colBlocks)
			if err != nil {
				return true
			}
			reactions := make([]int, ref.NumReactions())
			for colGen.Next(reactions) {
				if !emit(species, reactions) {
					return false
				}
			}
		}
		return true
	}
	return run(ctx, ref, target, opts, info, produce)
}

func searchSubset(ctx context.Context, ref, target *network.Network, opts Options) (*Assignment, error) {
	rowCandidates, ok := subsetCandidates(ref, target, opts.Relation, true)
	if !ok {
		emitDebug(opts, DebugInfo{Exhausted: true})
		return nil, nil
	}
	colCandidates, ok := subsetCandidates(ref, target, opts.Relation, false)
	if !ok {
		emitDebug(opts, DebugInfo{Exhausted: true})
		return nil, nil
	}

	info := DebugInfo{
		SpeciesBlockSizes:  listSizes(rowCandidates),
		ReactionBlockSizes: listSizes(colCandidates),
	}
	rowGen := perm.NewInjective(rowCandidates, target.NumSpecies())
	info.Log10Candidates = rowGen.Log10Count() + perm.NewInjective(colCandidates, target.NumReactions()).Log10Count()

	produce := func(emit func(species, reactions []int) bool) bool {
		species := make([]int, ref.NumSpecies())
		for rowGen.Next(species) {
			colGen := perm.NewInjective(colCandidates, target.NumReactions())
			reactions := make([]int, ref.NumReactions())
			for colGen.Next(reactions) {
				if !emit(species, reactions) {
					return false
				}
			}
		}
		return true
	}
	return run(ctx, ref, target, opts, info, produce)
}

// candidate is one unit of evaluator work. Slices are private copies.
type candidate struct {
	species   []int
	reactions []int
}

// run drives the producer/worker pipeline: the producer enumerates
// candidates under the budget, a pool of workers evaluates them, and the
// first success cancels everything in flight. Cancellation is an
// optimization only; evaluators are read-only and idempotent.
func run(ctx context.Context, ref, target *network.Network, opts Options, info DebugInfo,
	produce func(emit func(species, reactions []int) bool) bool) (*Assignment, error) {

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.Timeout > 0 {
		var cancelT context.CancelFunc
		ctx, cancelT = context.WithTimeout(ctx, opts.Timeout)
		defer cancelT()
	}

	candidates := make(chan candidate, 4*workers)
	var found atomic.Pointer[Assignment]
	var evaluated atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range candidates {
				if found.Load() != nil {
					continue // drain without evaluating
				}
				evaluated.Add(1)
				if evaluate(ref, target, c.species, c.reactions, opts.Relation) {
					found.CompareAndSwap(nil, &Assignment{Species: c.species, Reactions: c.reactions})
					cancel()
				}
			}
		}()
	}

	var emitted int64
	budgetHit := false
	emit := func(species, reactions []int) bool {
		if opts.Budget > 0 && emitted >= opts.Budget {
			budgetHit = true
			return false
		}
		c := candidate{species: slices.Clone(species), reactions: slices.Clone(reactions)}
		select {
		case candidates <- c:
		case <-ctx.Done():
			return false
		}
		emitted++
		if opts.Progress != nil && emitted%progressInterval == 0 {
			opts.Progress(evaluated.Load())
		}
		return true
	}
	exhausted := produce(emit)
	close(candidates)
	wg.Wait()

	info.Evaluated = evaluated.Load()
	info.Exhausted = exhausted && !budgetHit
	emitDebug(opts, info)

	if a := found.Load(); a != nil {
		return a, nil
	}
	if budgetHit || errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
		return nil, ErrUndetermined
	}
	if err := ctx.Err(); err != nil && !exhausted {
		// Parent cancellation, not our own post-success cancel.
		return nil, err
	}
	return nil, nil
}

func emitDebug(opts Options, info DebugInfo) {
	if opts.Debug != nil {
		opts.Debug(info)
	}
}

func blockSizes(blocks []perm.Block) []int {
	sizes := make([]int, len(blocks))
	for i, b := range blocks {
		sizes[i] = len(b.From)
	}
	return sizes
}

func listSizes(lists [][]int) []int {
	sizes := make([]int, len(lists))
	for i, l := range lists {
		sizes[i] = len(l)
	}
	return sizes
}
