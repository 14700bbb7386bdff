package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MJE43/pf-verify-go/internal/buildinfo"
	"github.com/MJE43/pf-verify-go/internal/engine"
	"github.com/MJE43/pf-verify-go/internal/games"
)

// TargetOp represents comparison operations for scanning
type TargetOp string

const (
	OpEqual        TargetOp = "eq"
	OpGreater      TargetOp = "gt"
	OpGreaterEqual TargetOp = "ge"
	OpLess         TargetOp = "lt"
	OpLessEqual    TargetOp = "le"
	OpBetween      TargetOp = "between"
	OpOutside      TargetOp = "outside"
)

// Valid reports whether op is a known comparison.
func (op TargetOp) Valid() bool {
	switch op {
	case OpEqual, OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpBetween, OpOutside:
		return true
	}
	return false
}

// ScanRequest represents a scan operation request
type ScanRequest struct {
	Game       string         `json:"game"`
	Seeds      games.Seeds    `json:"seeds"`
	NonceStart uint64         `json:"nonce_start"`
	NonceEnd   uint64         `json:"nonce_end"`
	Params     map[string]any `json:"params"`
	TargetOp   TargetOp       `json:"target_op"`
	TargetVal  float64        `json:"target_val"`
	TargetVal2 float64        `json:"target_val2,omitempty"` // for "between" and "outside"
	Tolerance  float64        `json:"tolerance"`
	Limit      int            `json:"limit,omitempty"`
	TimeoutMs  int            `json:"timeout_ms,omitempty"`
}

// Hit represents a single matching result
type Hit struct {
	Nonce  uint64  `json:"nonce"`
	Metric float64 `json:"metric"`
}

// Summary contains aggregate statistics over every hit found, including
// hits dropped by the limit.
type Summary struct {
	TotalEvaluated uint64  `json:"total_evaluated"`
	HitsFound      int     `json:"hits_found"`
	MinMetric      float64 `json:"min_metric"`
	MaxMetric      float64 `json:"max_metric"`
	MeanMetric     float64 `json:"mean_metric"`
	TimedOut       bool    `json:"timed_out,omitempty"`
}

// ScanResult contains the complete scan results
type ScanResult struct {
	RunID         string      `json:"run_id"`
	Hits          []Hit       `json:"hits"`
	Summary       Summary     `json:"summary"`
	EngineVersion string      `json:"engine_version"`
	Echo          ScanRequest `json:"echo"`
}

// scanJob is a contiguous batch of nonces, both ends inclusive.
type scanJob struct {
	NonceStart uint64
	NonceEnd   uint64
}

const (
	defaultTolerance = 1e-9
	defaultMaxRange  = 1_000_000
	jobBatchSize     = 4096
)

// Scanner re-derives a game across a nonce range and keeps the rounds
// whose metric matches a target.
type Scanner struct {
	workerCount int
	maxRange    uint64
	timeout     time.Duration
	logger      *log.Logger
	clock       quartz.Clock
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the number of evaluation goroutines.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithMaxRange caps how many nonces a single scan may cover.
func WithMaxRange(n uint64) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxRange = n
		}
	}
}

// WithTimeout bounds scans whose request carries no timeout of its own.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) { s.timeout = d }
}

// WithLogger sets the logger used for scan lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(s *Scanner) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used to time scans.
func WithClock(c quartz.Clock) Option {
	return func(s *Scanner) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewScanner creates a scanner with one worker per CPU.
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		workerCount: runtime.GOMAXPROCS(0),
		maxRange:    defaultMaxRange,
		logger:      log.New(io.Discard),
		clock:       quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxRange is the largest number of nonces a scan may cover.
func (s *Scanner) MaxRange() uint64 {
	return s.maxRange
}

// TargetEvaluator handles target condition evaluation with tolerance
type TargetEvaluator struct {
	op        TargetOp
	val1      float64
	val2      float64 // for "between" and "outside"
	tolerance float64
}

// NewTargetEvaluator creates a new target evaluator
func NewTargetEvaluator(op TargetOp, val1, val2, tolerance float64) *TargetEvaluator {
	return &TargetEvaluator{
		op:        op,
		val1:      val1,
		val2:      val2,
		tolerance: tolerance,
	}
}

// Matches checks if a metric matches the target criteria
func (te *TargetEvaluator) Matches(metric float64) bool {
	switch te.op {
	case OpEqual:
		return math.Abs(metric-te.val1) <= te.tolerance
	case OpGreater:
		return metric > te.val1+te.tolerance
	case OpGreaterEqual:
		return metric >= te.val1-te.tolerance
	case OpLess:
		return metric < te.val1-te.tolerance
	case OpLessEqual:
		return metric <= te.val1+te.tolerance
	case OpBetween:
		return metric >= te.val1-te.tolerance && metric <= te.val2+te.tolerance
	case OpOutside:
		return metric < te.val1-te.tolerance || metric > te.val2+te.tolerance
	default:
		return false
	}
}

// validate checks the request and resolves its game. The first nonce is
// evaluated once so that bad seeds or parameters fail the request instead
// of every round.
func (s *Scanner) validate(req ScanRequest) (games.Game, error) {
	game, ok := games.GetGame(req.Game)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, req.Game)
	}
	if game.Spec().Hash == "hash-chain" {
		return nil, fmt.Errorf("%w: %s", ErrNotScannable, req.Game)
	}
	if req.NonceEnd < req.NonceStart {
		return nil, fmt.Errorf("%w: end %d is before start %d", ErrInvalidRange, req.NonceEnd, req.NonceStart)
	}
	if span := req.NonceEnd - req.NonceStart; span >= s.maxRange {
		return nil, fmt.Errorf("%w: %d nonces requested, at most %d allowed", ErrRangeTooLarge, span+1, s.maxRange)
	}
	if !req.TargetOp.Valid() {
		return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalidTarget, req.TargetOp)
	}
	if (req.TargetOp == OpBetween || req.TargetOp == OpOutside) && req.TargetVal2 < req.TargetVal {
		return nil, fmt.Errorf("%w: target_val2 %v is below target_val %v", ErrInvalidTarget, req.TargetVal2, req.TargetVal)
	}
	if req.Tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must not be negative", ErrInvalidTarget)
	}

	if _, err := game.Evaluate(req.Seeds, engine.NonceFromUint(req.NonceStart), req.Params); err != nil {
		return nil, err
	}
	return game, nil
}

// Scan evaluates every nonce in [NonceStart, NonceEnd] in parallel. A scan
// that runs out of time returns the hits found so far with
// Summary.TimedOut set.
func (s *Scanner) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	game, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	timeout := s.timeout
	if req.TimeoutMs > 0 {
		timeout = time.Duration(req.TimeoutMs) * time.Millisecond
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = defaultTolerance
	}
	evaluator := NewTargetEvaluator(req.TargetOp, req.TargetVal, req.TargetVal2, tolerance)

	runID := uuid.NewString()
	logger := s.logger.With("run_id", runID, "game", req.Game)
	logger.Info("scan started", "nonce_start", req.NonceStart, "nonce_end", req.NonceEnd, "op", req.TargetOp, "workers", s.workerCount)
	started := s.clock.Now()

	var evaluated atomic.Uint64
	jobs := make(chan scanJob, s.workerCount*2)
	hits := make(chan Hit, 1024)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return generateJobs(gctx, jobs, req.NonceStart, req.NonceEnd)
	})
	for i := 0; i < s.workerCount; i++ {
		w := &scanWorker{
			jobs:      jobs,
			hits:      hits,
			game:      game,
			seeds:     req.Seeds,
			params:    req.Params,
			evaluator: evaluator,
			evaluated: &evaluated,
		}
		g.Go(func() error { return w.run(gctx) })
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- g.Wait()
		close(hits)
	}()

	collected := make([]Hit, 0, 256)
	for hit := range hits {
		collected = append(collected, hit)
	}

	timedOut := false
	if err := <-waitErr; err != nil {
		if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			logger.Error("scan failed", "err", err)
			return nil, err
		}
		timedOut = true
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].Nonce < collected[j].Nonce })
	summary := calculateSummary(collected, evaluated.Load(), timedOut)
	if req.Limit > 0 && len(collected) > req.Limit {
		collected = collected[:req.Limit]
	}

	logger.Info("scan finished",
		"evaluated", summary.TotalEvaluated,
		"hits", summary.HitsFound,
		"timed_out", timedOut,
		"elapsed", s.clock.Since(started).Round(time.Millisecond),
	)

	return &ScanResult{
		RunID:         runID,
		Hits:          collected,
		Summary:       summary,
		EngineVersion: buildinfo.Version,
		Echo:          req,
	}, nil
}

// scanWorker evaluates batches of nonces and forwards matches.
type scanWorker struct {
	jobs      <-chan scanJob
	hits      chan<- Hit
	game      games.Game
	seeds     games.Seeds
	params    map[string]any
	evaluator *TargetEvaluator
	evaluated *atomic.Uint64
}

func (w *scanWorker) run(ctx context.Context) error {
	for {
		select {
		case job, ok := <-w.jobs:
			if !ok {
				return nil
			}
			if err := w.process(ctx, job); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *scanWorker) process(ctx context.Context, job scanJob) error {
	for nonce := job.NonceStart; ; nonce++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := w.game.Evaluate(w.seeds, engine.NonceFromUint(nonce), w.params)
		if err != nil {
			return fmt.Errorf("nonce %d: %w", nonce, err)
		}
		w.evaluated.Add(1)

		if w.evaluator.Matches(result.Metric) {
			select {
			case w.hits <- Hit{Nonce: nonce, Metric: result.Metric}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		// NonceEnd may be math.MaxUint64, so stop before incrementing.
		if nonce == job.NonceEnd {
			return nil
		}
	}
}

// generateJobs splits [start, end] into batches.
func generateJobs(ctx context.Context, jobs chan<- scanJob, start, end uint64) error {
	defer close(jobs)

	for current := start; ; {
		batchEnd := end
		if end-current >= jobBatchSize {
			batchEnd = current + jobBatchSize - 1
		}

		select {
		case jobs <- scanJob{NonceStart: current, NonceEnd: batchEnd}:
		case <-ctx.Done():
			return ctx.Err()
		}

		if batchEnd == end {
			return nil
		}
		current = batchEnd + 1
	}
}

// calculateSummary computes aggregate statistics
func calculateSummary(hits []Hit, totalEvaluated uint64, timedOut bool) Summary {
	summary := Summary{
		TotalEvaluated: totalEvaluated,
		HitsFound:      len(hits),
		TimedOut:       timedOut,
	}
	if len(hits) == 0 {
		return summary
	}

	lo, hi, sum := hits[0].Metric, hits[0].Metric, 0.0
	for _, h := range hits {
		lo = min(lo, h.Metric)
		hi = max(hi, h.Metric)
		sum += h.Metric
	}

	summary.MinMetric = lo
	summary.MaxMetric = hi
	summary.MeanMetric = sum / float64(len(hits))
	return summary
}
