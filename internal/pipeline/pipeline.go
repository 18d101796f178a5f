package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clipsight/clipsight/internal/aggregate"
	"github.com/clipsight/clipsight/internal/config"
	"github.com/clipsight/clipsight/internal/extractor"
	"github.com/clipsight/clipsight/internal/inference"
	"github.com/clipsight/clipsight/internal/metrics"
	"github.com/clipsight/clipsight/internal/models"
	"github.com/clipsight/clipsight/internal/report"
	"github.com/clipsight/clipsight/internal/scheduler"
	"github.com/clipsight/clipsight/internal/segment"
	"github.com/clipsight/clipsight/internal/video"
)

// Pipeline runs one video through extraction, fan-out analysis,
// aggregation and report assembly. Every invocation owns its own state;
// a single Pipeline is safe for concurrent Analyze calls.
type Pipeline struct {
	cfg     *config.Config
	decoder extractor.Decoder
	client  scheduler.Analyzer
	logger  *slog.Logger
	probe   func(ctx context.Context, path string) (float64, error)
}

// New wires a pipeline from its stages.
func New(cfg *config.Config, decoder extractor.Decoder, client scheduler.Analyzer, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		decoder: decoder,
		client:  client,
		logger:  logger,
		probe:   video.Probe,
	}
}

// Analyze produces the editorial report for one video. Fatal errors are
// limited to intake rejection, decode failure and a permanent inference
// failure on the very first call; everything else degrades into the
// report's coverage and warnings.
func (p *Pipeline) Analyze(ctx context.Context, videoPath string) (*models.AnalysisReport, error) {
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	logger.Info("analysis starting", "video", videoPath)

	if err := video.Validate(videoPath, p.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}

	deadline := time.Duration(p.cfg.DeadlineSeconds * float64(time.Second))
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	duration, err := p.probe(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	extractStart := time.Now()
	frames, cleanup, err := p.decoder.Extract(ctx, videoPath, duration, p.cfg.IntervalSeconds)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	metrics.StageDuration.WithLabelValues("extract").Observe(time.Since(extractStart).Seconds())
	metrics.FramesExtractedTotal.Add(float64(len(frames)))

	segments, warnings := segment.Partition(frames, p.cfg.IntervalSeconds)

	inferStart := time.Now()
	results, err := scheduler.Run(ctx, frames, p.client, scheduler.Options{
		Concurrency:       p.cfg.ConcurrencyLimit,
		RequestsPerMinute: p.cfg.RequestsPerMinute,
		Prompt: func(f models.Frame) string {
			return inference.FramePrompt(f.Index, f.Timestamp)
		},
	}, logger)
	metrics.StageDuration.WithLabelValues("inference").Observe(time.Since(inferStart).Seconds())

	if err != nil {
		if errors.Is(err, models.ErrDeadline) {
			warnings = append(warnings,
				"analysis ended early: overall deadline exceeded; report covers resolved frames only")
		} else {
			// Systemic misconfiguration surfaced by the first call.
			return nil, fmt.Errorf("analysis aborted: %w", err)
		}
	}

	aggStart := time.Now()
	agg := aggregate.Aggregate(segments, results)
	agg.Warnings = append(warnings, agg.Warnings...)
	metrics.StageDuration.WithLabelValues("aggregate").Observe(time.Since(aggStart).Seconds())
	metrics.ReportCoverage.Observe(agg.Coverage)

	rep, err := report.Assemble(runID, agg)
	if err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	logger.Info("analysis complete",
		"frames", len(frames),
		"segments", len(rep.Segments),
		"genre", rep.Genre.Label,
		"coverage", rep.Coverage,
		"warnings", len(rep.Warnings))
	return rep, nil
}
