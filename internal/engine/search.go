package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/fprecon/internal/canonical"
	"github.com/roach88/fprecon/internal/ir"
)

// DefaultParallelThreshold is the subset-space size below which the search
// stays on the calling goroutine.
const DefaultParallelThreshold = 1 << 12

// masksPerChunk is the number of undefined masks a worker claims at once.
const masksPerChunk = 64

// Searcher reconciles component dictionaries against target hashes.
//
// A Searcher is immutable after construction and safe for concurrent use.
// Every Reconcile call is a pure computation over its arguments.
type Searcher struct {
	profile           ir.Profile
	budget            Budget
	workers           int
	parallelThreshold int
	logger            *slog.Logger
}

// SearcherOption configures a Searcher.
type SearcherOption func(*Searcher)

// WithWorkers sets how many goroutines one search may use.
//
// Default: runtime.GOMAXPROCS(0). Use WithWorkers(1) for a strictly
// sequential search.
func WithWorkers(n int) SearcherOption {
	return func(s *Searcher) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithParallelThreshold sets the subset-space size at which the search
// starts partitioning work across goroutines.
func WithParallelThreshold(n int) SearcherOption {
	return func(s *Searcher) {
		s.parallelThreshold = n
	}
}

// WithLogger sets the logger for search diagnostics.
func WithLogger(l *slog.Logger) SearcherOption {
	return func(s *Searcher) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSearcher creates a Searcher for profile.
// The profile is validated and copied.
func NewSearcher(profile ir.Profile, opts ...SearcherOption) (*Searcher, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	s := &Searcher{
		profile:           profile.Clone(),
		budget:            NewBudget(profile.MaxEvaluations),
		workers:           runtime.GOMAXPROCS(0),
		parallelThreshold: DefaultParallelThreshold,
		logger:            slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Profile returns a copy of the search profile.
func (s *Searcher) Profile() ir.Profile {
	return s.profile.Clone()
}

// Reconcile recomputes the hash of dict under variant and, for V2, searches
// sentinel hypotheses until one reproduces target.
//
// The returned Result has Index zero; batch callers set it. An unmatched
// search is not an error: Match is false and Calculated is the direct hash.
// Errors are returned only for an unknown variant or a cancelled context.
func (s *Searcher) Reconcile(ctx context.Context, dict ir.Object, target string, variant ir.Variant) (ir.Result, error) {
	switch variant {
	case ir.VariantV1, ir.VariantV1NoUA:
		return s.reconcileV1(dict, target, variant)
	case ir.VariantV2:
		return s.reconcileV2(ctx, dict, target)
	default:
		return ir.Result{}, fmt.Errorf("unsupported variant %q", variant)
	}
}

// reconcileV1 has nothing to search: V1 has no sentinel markers.
func (s *Searcher) reconcileV1(dict ir.Object, target string, variant ir.Variant) (ir.Result, error) {
	got, err := canonical.Hash(variant, dict, ir.Hypothesis{})
	if err != nil {
		return ir.Result{}, err
	}
	res := ir.Result{
		Version:    variant,
		Expected:   target,
		Calculated: got,
		Match:      got == target,
		Seed:       variant.Seed(),
		Tried:      1,
		Strategy:   ir.StrategyExhausted,
	}
	if res.Match {
		res.Strategy = ir.StrategyDirect
		res.Hypothesis = emptyHypothesis()
	}
	return res, nil
}

func (s *Searcher) reconcileV2(ctx context.Context, dict ir.Object, target string) (ir.Result, error) {
	plan := canonical.NewV2Plan(dict)
	space := NewSpace(s.profile, dict)
	ev := newEvaluator(plan, space, target)

	direct := ev.hash(ir.Hypothesis{}, ir.VariantV2.Seed())
	res := ir.Result{
		Version:    ir.VariantV2,
		Expected:   target,
		Calculated: direct,
		Seed:       ir.VariantV2.Seed(),
	}

	total := space.Total()
	limit := s.budget.Clamp(total)

	ordinal, err := s.firstMatch(ctx, ev, limit)
	if err != nil {
		return ir.Result{}, err
	}

	if ordinal < 0 {
		res.Tried = limit
		res.Strategy = ir.StrategyExhausted
		if berr := s.budget.Check(total); berr != nil {
			res.Strategy = ir.StrategyBudget
			s.logger.Debug("search stopped by budget", "expected", target, "error", berr)
		} else {
			s.logger.Debug("search exhausted",
				"expected", target,
				"missing", len(space.Missing),
				"error_keys", len(space.ErrorKeys),
				"tried", limit,
			)
		}
		return res, nil
	}

	hyp, seed := space.At(ordinal)
	norm := ir.NewHypothesis(hyp.UndefinedKeys, hyp.ErrorKeys)
	res.Match = true
	res.Calculated = target
	res.Seed = seed
	res.Tried = ordinal + 1
	res.Strategy = space.Stage(ordinal)
	res.Hypothesis = &norm

	s.logger.Debug("hypothesis matched",
		"strategy", res.Strategy,
		"seed", seed,
		"tried", res.Tried,
		"undefined", norm.UndefinedKeys,
		"errors", norm.ErrorKeys,
	)
	return res, nil
}

// firstMatch returns the lowest matching ordinal below limit, or -1.
func (s *Searcher) firstMatch(ctx context.Context, ev *evaluator, limit int) (int, error) {
	space := ev.space
	base := space.SubsetBase()

	// Direct and all-missing stages are a handful of evaluations.
	for ord := 0; ord < min(base, limit); ord++ {
		if ev.matches(ord) {
			return ord, nil
		}
	}
	if limit <= base {
		return -1, nil
	}

	subsetLimit := limit - base
	if s.workers <= 1 || subsetLimit < s.parallelThreshold {
		return s.scanSequential(ctx, ev, base, limit)
	}
	return s.scanParallel(ctx, ev, base, limit)
}

func (s *Searcher) scanSequential(ctx context.Context, ev *evaluator, from, to int) (int, error) {
	for ord := from; ord < to; ord++ {
		if ord&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return -1, err
			}
		}
		if ev.matches(ord) {
			return ord, nil
		}
	}
	return -1, nil
}

// scanParallel partitions [from, to) into chunks of whole undefined masks.
// Workers claim chunks in ascending order and record the lowest matching
// ordinal; a chunk that starts past the best match so far is skipped, so
// the result equals what scanSequential would return.
func (s *Searcher) scanParallel(ctx context.Context, ev *evaluator, from, to int) (int, error) {
	chunk := masksPerChunk * ev.space.PerMask()
	chunks := (to - from + chunk - 1) / chunk

	var best atomic.Int64
	best.Store(int64(to))
	var next atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < min(s.workers, chunks); w++ {
		g.Go(func() error {
			local := ev.clone()
			for {
				c := int(next.Add(1) - 1)
				if c >= chunks {
					return nil
				}
				start := from + c*chunk
				if int64(start) >= best.Load() {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				end := min(start+chunk, to)
				for ord := start; ord < end; ord++ {
					if int64(ord) >= best.Load() {
						break
					}
					if local.matches(ord) {
						storeMin(&best, int64(ord))
						break
					}
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return -1, err
	}

	if b := int(best.Load()); b < to {
		return b, nil
	}
	return -1, nil
}

// storeMin lowers v to x if x is smaller.
func storeMin(v *atomic.Int64, x int64) {
	for {
		cur := v.Load()
		if x >= cur || v.CompareAndSwap(cur, x) {
			return
		}
	}
}

// evaluator hashes hypotheses by ordinal, reusing its buffers.
// Not safe for concurrent use; clone per goroutine.
type evaluator struct {
	plan   *canonical.V2Plan
	space  Space
	target string

	// Target as accumulators; ok is false for a target that is not 32
	// lowercase hex characters, which nothing can match.
	t1, t2 uint64
	ok     bool

	buf     []byte
	undef   []string
	errKeys []string
}

func newEvaluator(plan *canonical.V2Plan, space Space, target string) *evaluator {
	e := &evaluator{plan: plan, space: space, target: target}
	e.t1, e.t2, e.ok = ir.ParseHash(target)
	return e
}

func (e *evaluator) clone() *evaluator {
	c := *e
	c.buf, c.undef, c.errKeys = nil, nil, nil
	return &c
}

func (e *evaluator) hash(h ir.Hypothesis, seed uint32) string {
	e.buf = e.plan.Append(e.buf[:0], h)
	return ir.Hash128(e.buf, seed)
}

func (e *evaluator) equal(h ir.Hypothesis, seed uint32) bool {
	if !e.ok {
		return false
	}
	e.buf = e.plan.Append(e.buf[:0], h)
	h1, h2 := ir.Sum128(e.buf, seed)
	return h1 == e.t1 && h2 == e.t2
}

// matches reports whether the hypothesis at ordinal reproduces the target.
func (e *evaluator) matches(ordinal int) bool {
	sp := e.space
	switch sp.Stage(ordinal) {
	case ir.StrategyDirect:
		return e.equal(ir.Hypothesis{}, ir.VariantV2.Seed())
	case ir.StrategyAllMissing:
		return e.equal(ir.Hypothesis{UndefinedKeys: sp.Missing}, sp.Seeds[ordinal-1])
	}

	rel := ordinal - sp.SubsetBase()
	seeds := len(sp.Seeds)
	pair := rel / seeds
	mask, emask := pair/sp.ErrorCombos, pair%sp.ErrorCombos

	e.undef = selectBits(e.undef[:0], sp.Missing, mask)
	e.errKeys = selectBits(e.errKeys[:0], sp.ErrorKeys, emask)
	return e.equal(ir.Hypothesis{UndefinedKeys: e.undef, ErrorKeys: e.errKeys}, sp.Seeds[rel%seeds])
}

func emptyHypothesis() *ir.Hypothesis {
	h := ir.NewHypothesis(nil, nil)
	return &h
}
