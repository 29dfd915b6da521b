package cluster

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/crn-tools/crnident/pkg/ident"
	"github.com/crn-tools/crnident/pkg/network"
	"github.com/crn-tools/crnident/pkg/observability"
)

// Algorithm selects the bucketing strategy for a clustering run.
type Algorithm int

const (
	// SIRN buckets by permutation-invariant fingerprint before searching.
	SIRN Algorithm = iota
	// Naive buckets by matrix shape only. Same answers, far more searches.
	Naive
)

// String returns the algorithm name used in logs and reports.
func (a Algorithm) String() string {
	if a == Naive {
		return "naive"
	}
	return "sirn"
}

// Options configures a clustering run.
type Options struct {
	// Relation is the identity relation clusters are built under.
	Relation ident.Relation

	// Algorithm selects SIRN fingerprint bucketing or the Naive baseline.
	Algorithm Algorithm

	// Budget caps the candidate assignments evaluated per pairwise search.
	// Zero means unlimited. Pairs that trip the cap land in
	// [Result.Undetermined].
	Budget int64

	// PairTimeout caps the wall-clock time of each pairwise search.
	// Zero means no timeout.
	PairTimeout time.Duration

	// SearchWorkers is the evaluator parallelism inside each pairwise
	// search. Zero means GOMAXPROCS.
	SearchWorkers int

	// Parallelism is how many buckets are clustered concurrently.
	// Zero means GOMAXPROCS. Buckets are independent, so this only
	// trades memory for speed.
	Parallelism int
}

// Pair names two networks whose pairwise search was undetermined.
type Pair struct {
	A string `json:"a"`
	B string `json:"b"`
}

// Violation records an observed non-transitive merge: A and B were the
// representatives of two distinct clusters, and Witness matched both. The
// clusters are merged anyway; the triple is kept so the caller can see
// where the budgeted relation failed to be transitive.
type Violation struct {
	A       string `json:"a"`
	B       string `json:"b"`
	Witness string `json:"witness"`
}

// Cluster is one structural identity class. Members appear in input order;
// the first member is the representative new networks were compared against.
type Cluster struct {
	Members []*network.Network
}

// Representative returns the network pairwise searches ran against.
func (c Cluster) Representative() *network.Network {
	return c.Members[0]
}

// Result is the outcome of a clustering run.
type Result struct {
	Algorithm Algorithm
	Relation  ident.Relation

	// Clusters holds the identity classes, largest first.
	Clusters []Cluster

	// Undetermined lists pairs whose search tripped the budget or timeout.
	// These pairs were conservatively kept apart.
	Undetermined []Pair

	// Violations lists the non-transitive merges observed during the run.
	Violations []Violation

	// Searched counts the pairwise searches performed.
	Searched int
}

// Build partitions networks into structural identity clusters.
//
// Build never returns an incomplete partition: every input network ends up in
// exactly one cluster of the result, even when some of its pairwise
// comparisons were undetermined. The first error from the context (or an
// internal failure) aborts the run.
func Build(ctx context.Context, networks []*network.Network, opts Options) (*Result, error) {
	start := time.Now()
	observability.Cluster().OnClusterStart(ctx, opts.Algorithm.String(), len(networks))

	buckets := bucketize(networks, opts)

	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	if parallelism > len(buckets) && len(buckets) > 0 {
		parallelism = len(buckets)
	}

	work := make(chan []*network.Network)
	results := make(chan bucketResult, len(buckets))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for nets := range work {
				br := clusterBucket(runCtx, nets, opts)
				results <- br
				if br.err != nil {
					cancel()
					return
				}
				observability.Cluster().OnBucketProcessed(runCtx, len(nets), len(br.clusters))
			}
		}()
	}

	go func() {
		defer close(work)
		for _, nets := range buckets {
			select {
			case work <- nets:
			case <-runCtx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	res := &Result{Algorithm: opts.Algorithm, Relation: opts.Relation}
	var firstErr error
	for br := range results {
		if br.err != nil {
			firstErr = causativeError(firstErr, br.err)
			continue
		}
		res.Clusters = append(res.Clusters, br.clusters...)
		res.Undetermined = append(res.Undetermined, br.undetermined...)
		res.Violations = append(res.Violations, br.violations...)
		res.Searched += br.searched
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, v := range res.Violations {
		observability.Cluster().OnViolation(ctx, v.A, v.B, v.Witness)
	}
	sort.SliceStable(res.Clusters, func(i, j int) bool {
		return len(res.Clusters[i].Members) > len(res.Clusters[j].Members)
	})
	observability.Cluster().OnClusterComplete(ctx, opts.Algorithm.String(),
		len(res.Clusters), len(res.Undetermined), time.Since(start))
	return res, nil
}

// causativeError keeps the most informative of two bucket failures. A real
// failure cancels the remaining workers, which then drain as
// context.Canceled; that noise must not mask the error that triggered the
// cancellation.
func causativeError(current, next error) error {
	if current == nil {
		return next
	}
	if errors.Is(current, context.Canceled) && !errors.Is(next, context.Canceled) {
		return next
	}
	return current
}

// bucketize splits the input into groups that can possibly contain identical
// pairs. SIRN uses the relation-appropriate fingerprint; Naive uses shape
// only. Bucket order follows first appearance in the input, so runs are
// deterministic for a fixed input order.
func bucketize(networks []*network.Network, opts Options) [][]*network.Network {
	index := make(map[string]int)
	var buckets [][]*network.Network
	for _, n := range networks {
		key := bucketKey(n, opts)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, nil)
		}
		buckets[i] = append(buckets[i], n)
	}
	return buckets
}

func bucketKey(n *network.Network, opts Options) string {
	if opts.Algorithm == Naive {
		return fmt.Sprintf("%dx%d", n.NumSpecies(), n.NumReactions())
	}
	if opts.Relation == ident.Strong {
		return n.TypedFingerprint().String()
	}
	return n.Fingerprint().String()
}

type bucketResult struct {
	clusters     []Cluster
	undetermined []Pair
	violations   []Violation
	searched     int
	err          error
}

// clusterBucket groups one bucket's networks. Each incoming network is
// compared against every current cluster representative; membership is then
// resolved through a union-find so that a multi-match merges clusters instead
// of dropping one of the edges.
func clusterBucket(ctx context.Context, nets []*network.Network, opts Options) bucketResult {
	var br bucketResult
	searchOpts := ident.Options{
		Relation: opts.Relation,
		Budget:   opts.Budget,
		Timeout:  opts.PairTimeout,
		Workers:  opts.SearchWorkers,
	}

	uf := newUnionFind(len(nets))
	var reps []int // indices of current cluster representatives

	for i, n := range nets {
		var matched []int
		for _, r := range reps {
			br.searched++
			a, err := ident.Search(ctx, n, nets[r], searchOpts)
			switch {
			case errors.Is(err, ident.ErrUndetermined):
				br.undetermined = append(br.undetermined, Pair{A: n.Name(), B: nets[r].Name()})
			case err != nil:
				br.err = err
				return br
			case a != nil:
				matched = append(matched, r)
			}
		}
		if len(matched) == 0 {
			reps = append(reps, i)
			continue
		}
		uf.union(matched[0], i)
		for _, r := range matched[1:] {
			br.violations = append(br.violations, Violation{
				A:       nets[matched[0]].Name(),
				B:       nets[r].Name(),
				Witness: n.Name(),
			})
			uf.union(matched[0], r)
		}
		if len(matched) > 1 {
			reps = activeReps(reps, uf)
		}
	}

	// Materialize clusters in input order of their first member.
	byRoot := make(map[int][]*network.Network)
	var roots []int
	for i, n := range nets {
		root := uf.find(i)
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], n)
	}
	for _, root := range roots {
		br.clusters = append(br.clusters, Cluster{Members: byRoot[root]})
	}
	return br
}

// activeReps drops representatives whose clusters were merged away, keeping
// one representative per union-find root (the earliest).
func activeReps(reps []int, uf *unionFind) []int {
	seen := make(map[int]bool, len(reps))
	out := reps[:0]
	for _, r := range reps {
		root := uf.find(r)
		if seen[root] {
			continue
		}
		seen[root] = true
		out = append(out, r)
	}
	return out
}

// unionFind is a plain disjoint-set forest with path compression. Union by
// lower index keeps the earliest member as the root, which is what makes
// cluster representatives stable.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
}
