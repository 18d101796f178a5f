package inference

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/clipsight/clipsight/internal/metrics"
	"github.com/clipsight/clipsight/internal/models"
)

// Options tunes the client's timeout and retry behavior.
type Options struct {
	PerCallTimeout time.Duration
	MaxRetries     int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
}

// DefaultOptions mirrors the documented defaults: 60s per call, 3
// retries, 1s initial backoff capped at 30s.
func DefaultOptions() Options {
	return Options{
		PerCallTimeout: 60 * time.Second,
		MaxRetries:     3,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
	}
}

// Client wraps the Engine with a per-call timeout, bounded retry with
// exponential backoff and jitter on transient failures, and a hard retry
// ceiling after which the call resolves to a Failed frame result rather
// than an error. Permanent failures are returned to the caller so the
// scheduler can apply its first-call fatal rule.
type Client struct {
	engine Engine
	opts   Options
	logger *slog.Logger
}

// NewClient builds a Client around the given engine.
func NewClient(engine Engine, opts Options, logger *slog.Logger) *Client {
	if opts.PerCallTimeout <= 0 {
		opts.PerCallTimeout = 60 * time.Second
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = time.Second
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = 30 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{engine: engine, opts: opts, logger: logger}
}

// Analyze runs one frame through the vision capability. The returned
// error is non-nil only for permanent failures and cancellation; a
// transient failure that survives every retry comes back as a Failed
// result with a nil error so a single bad frame never aborts the run.
func (c *Client) Analyze(ctx context.Context, frame models.Frame, prompt string) (models.FrameResult, error) {
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt)
			c.logger.Debug("retrying frame analysis",
				"frame", frame.Index,
				"attempt", attempt,
				"delay", delay,
				"err", lastErr)
			metrics.InferenceRetriesTotal.Inc()

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return failedResult(frame, "cancelled: "+ctx.Err().Error(), true), ctx.Err()
			case <-timer.C:
			}
		}

		raw, err := c.describeOnce(ctx, frame, prompt)
		if err == nil {
			metrics.InferenceCallsTotal.WithLabelValues(metrics.OutcomeOk).Inc()
			return models.FrameResult{
				FrameIndex: frame.Index,
				RawOutput:  raw,
				Fields:     ParseFields(raw),
				Status:     models.StatusOk,
				Attempted:  true,
			}, nil
		}

		if ctx.Err() != nil {
			return failedResult(frame, "cancelled: "+ctx.Err().Error(), true), ctx.Err()
		}

		classified := Classify(err)
		lastErr = classified

		if models.IsPermanent(classified) {
			metrics.InferenceCallsTotal.WithLabelValues(metrics.OutcomePermanent).Inc()
			return failedResult(frame, classified.Error(), true), classified
		}
		metrics.InferenceCallsTotal.WithLabelValues(metrics.OutcomeTransient).Inc()
	}

	c.logger.Warn("frame analysis failed after retries",
		"frame", frame.Index,
		"attempts", c.opts.MaxRetries+1,
		"err", lastErr)

	return failedResult(frame, lastErr.Error(), true), nil
}

func (c *Client) describeOnce(ctx context.Context, frame models.Frame, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.PerCallTimeout)
	defer cancel()
	return c.engine.Describe(callCtx, frame.Path, prompt)
}

// backoffDelay is exponential with a cap and ±25% jitter to keep
// concurrent retries from synchronizing.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := float64(c.opts.InitialDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(c.opts.MaxDelay) {
		delay = float64(c.opts.MaxDelay)
	}
	jitter := delay * 0.25
	delay = delay + (rand.Float64()*2-1)*jitter
	if delay < float64(c.opts.InitialDelay) {
		delay = float64(c.opts.InitialDelay)
	}
	return time.Duration(delay)
}

func failedResult(frame models.Frame, reason string, attempted bool) models.FrameResult {
	return models.FrameResult{
		FrameIndex: frame.Index,
		Status:     models.StatusFailed,
		FailReason: reason,
		Attempted:  attempted,
	}
}

// permanentMarkers identify failures retrying cannot fix. The provider
// surfaces plain errors, so classification is by message content.
var permanentMarkers = []string{
	"unauthorized",
	"authentication",
	"api key",
	"invalid key",
	"forbidden",
	"quota exceeded",
	"billing",
	"model not found",
	"invalid request",
	"bad request",
	"status 400",
	"status 401",
	"status 403",
	"status 404",
}

// Classify wraps an engine error as transient or permanent. Timeouts,
// network errors, rate-limit responses and 5xx-class failures are
// transient; anything matching a permanent marker is not. Unknown errors
// default to transient so a sporadic blip costs a retry, not the run.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if models.IsTransient(err) || models.IsPermanent(err) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &models.TransientError{Err: err}
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return &models.PermanentError{Err: err}
		}
	}
	return &models.TransientError{Err: err}
}
