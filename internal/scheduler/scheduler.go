package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/clipsight/clipsight/internal/models"
)

// Analyzer is the slice of the inference client the scheduler needs.
type Analyzer interface {
	Analyze(ctx context.Context, frame models.Frame, prompt string) (models.FrameResult, error)
}

// Options bounds the fan-out. Both ceilings are enforced: Concurrency
// caps simultaneous calls and RequestsPerMinute caps dispatch rate;
// exceeding either delays dispatch, it never drops frames.
type Options struct {
	Concurrency       int
	RequestsPerMinute int
	Prompt            func(models.Frame) string
}

// Run dispatches one inference call per frame, at most opts.Concurrency
// at a time, and returns results aligned index-for-index with the input
// regardless of completion order. Each worker writes only its own result
// slot, so no ordering queue or sort is needed.
//
// The first frame is analyzed alone before the fan-out begins: a
// permanent failure there means systemic misconfiguration, and Run
// aborts with that error before spending anything on the remaining
// frames. Permanent failures after that first success are treated as
// per-frame failures like any other.
//
// On cancellation or deadline expiry the returned slice still carries
// every result that resolved in time, alongside models.ErrDeadline;
// frames never dispatched are marked as not attempted.
func Run(ctx context.Context, frames []models.Frame, client Analyzer, opts Options, logger *slog.Logger) ([]models.FrameResult, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.RequestsPerMinute < 1 {
		opts.RequestsPerMinute = 1
	}
	if opts.Prompt == nil {
		opts.Prompt = func(models.Frame) string { return "" }
	}

	slots := make([]models.FrameResult, len(frames))
	for i, f := range frames {
		slots[i] = models.FrameResult{
			FrameIndex: f.Index,
			Status:     models.StatusFailed,
			FailReason: "not attempted: run ended before dispatch",
		}
	}

	// Tokens per second = RPM / 60.
	limiter := rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1)

	// Canary call: frame 0 runs by itself so that an authentication or
	// configuration failure surfaces before any fan-out spend.
	if err := limiter.Wait(ctx); err != nil {
		return slots, models.ErrDeadline
	}
	first, err := client.Analyze(ctx, frames[0], opts.Prompt(frames[0]))
	slots[0] = first
	if err != nil {
		if models.IsPermanent(err) {
			return slots, fmt.Errorf("first inference call failed: %w", err)
		}
		// Cancellation during the canary: nothing else was dispatched.
		return slots, models.ErrDeadline
	}

	logger.Debug("fan-out starting",
		"frames", len(frames),
		"concurrency", opts.Concurrency,
		"rpm", opts.RequestsPerMinute)

	var completed atomic.Int64
	completed.Store(1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for i := 1; i < len(frames); i++ {
		frame := frames[i]
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				// Never dispatched; the prefilled slot stands.
				return nil
			}

			result, err := client.Analyze(gctx, frame, opts.Prompt(frame))
			slots[frame.Index] = result
			if err != nil && !models.IsPermanent(err) && gctx.Err() != nil {
				return nil
			}

			done := completed.Add(1)
			logger.Debug("frame analyzed",
				"frame", frame.Index,
				"done", done,
				"total", len(frames),
				"ok", result.Ok())
			return nil
		})
	}

	_ = g.Wait() // workers never return errors; slots carry the outcomes

	if ctx.Err() != nil {
		logger.Warn("fan-out cut short by deadline",
			"resolved", completed.Load(),
			"total", len(frames))
		return slots, models.ErrDeadline
	}
	return slots, nil
}
