package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipsight/clipsight/internal/config"
	"github.com/clipsight/clipsight/internal/extractor"
	"github.com/clipsight/clipsight/internal/inference"
	"github.com/clipsight/clipsight/internal/metrics"
	"github.com/clipsight/clipsight/internal/pipeline"
	"github.com/clipsight/clipsight/internal/video"
)

var (
	videoPath   string
	outputPath  string
	interval    float64
	concurrency int
	rpm         int
	deadline    float64
	metricsPort int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a video file and print the editorial report as JSON",
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !video.Available() {
		return fmt.Errorf("ffmpeg and ffprobe are required on the PATH")
	}

	if srv := metrics.StartServer(cfg.MetricsPort, logger); srv != nil {
		defer srv.Close()
	}

	ctx := cmd.Context()
	engine, err := inference.NewAgentEngine(ctx, inference.AgentOptions{
		BaseURL: cfg.OllamaBaseURL,
		Port:    cfg.OllamaPort,
		Model:   cfg.Model,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("initialize vision engine: %w", err)
	}

	client := inference.NewClient(engine, inference.Options{
		PerCallTimeout: time.Duration(cfg.PerCallTimeoutSecs * float64(time.Second)),
		MaxRetries:     cfg.MaxRetries,
		InitialDelay:   time.Second,
		MaxDelay:       30 * time.Second,
	}, logger)

	p := pipeline.New(cfg, extractor.NewFFmpeg(logger), client, logger)
	rep, err := p.Analyze(ctx, videoPath)
	if err != nil {
		return err
	}

	out := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// applyFlags lets explicit CLI flags win over environment configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("interval") {
		cfg.IntervalSeconds = interval
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.ConcurrencyLimit = concurrency
	}
	if cmd.Flags().Changed("rpm") {
		cfg.RequestsPerMinute = rpm
	}
	if cmd.Flags().Changed("deadline") {
		cfg.DeadlineSeconds = deadline
	}
	if cmd.Flags().Changed("metrics-port") {
		cfg.MetricsPort = metricsPort
	}
}

func init() {
	analyzeCmd.Flags().StringVar(&videoPath, "video", "", "path to the video file (required)")
	analyzeCmd.Flags().StringVar(&outputPath, "output", "", "write the report JSON here instead of stdout")
	analyzeCmd.Flags().Float64Var(&interval, "interval", 1.0, "frame sampling interval in seconds")
	analyzeCmd.Flags().IntVar(&concurrency, "concurrency", 4, "max concurrent inference calls")
	analyzeCmd.Flags().IntVar(&rpm, "rpm", 60, "max inference requests per minute")
	analyzeCmd.Flags().Float64Var(&deadline, "deadline", 600, "overall analysis deadline in seconds")
	analyzeCmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "expose prometheus metrics on this port (0 = off)")
	analyzeCmd.MarkFlagRequired("video")
	rootCmd.AddCommand(analyzeCmd)
}
