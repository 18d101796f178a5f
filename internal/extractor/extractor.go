package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/clipsight/clipsight/internal/models"
)

// Decoder turns a video file into an ordered, gap-free frame sequence
// sampled every interval seconds. The returned cleanup func releases any
// scratch space and must be called on every exit path.
type Decoder interface {
	Extract(ctx context.Context, videoPath string, duration, interval float64) (frames []models.Frame, cleanup func(), err error)
}

// FFmpeg extracts frames by shelling out to ffmpeg, writing JPEGs into a
// scratch directory rather than buffering the whole video in memory.
type FFmpeg struct {
	logger *slog.Logger
}

// NewFFmpeg returns an ffmpeg-backed Decoder.
func NewFFmpeg(logger *slog.Logger) *FFmpeg {
	return &FFmpeg{logger: logger}
}

// Extract samples floor(duration/interval) frames at evenly spaced
// timestamps starting at t=0. Frame timestamps never reach the declared
// duration.
func (f *FFmpeg) Extract(ctx context.Context, videoPath string, duration, interval float64) ([]models.Frame, func(), error) {
	scratch, err := os.MkdirTemp("", "clipsight-frames-*")
	if err != nil {
		return nil, nil, fmt.Errorf("create scratch dir: %w", err)
	}
	cleanup := func() { os.RemoveAll(scratch) }

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=1/%g", interval),
		"-q:v", "2",
		"-y",
		filepath.Join(scratch, "frame_%04d.jpg"),
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("%w: ffmpeg failed: %v\n%s", models.ErrDecode, err, string(out))
	}

	paths, err := filepath.Glob(filepath.Join(scratch, "frame_*.jpg"))
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("glob frames: %w", err)
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		cleanup()
		return nil, nil, fmt.Errorf("%w: ffmpeg produced no frames", models.ErrDecode)
	}

	want := int(duration / interval)
	if want < 1 {
		want = 1
	}
	if len(paths) > want {
		// ffmpeg's fps filter can emit one trailing frame past the
		// last sampling point; drop anything beyond floor(D/I).
		paths = paths[:want]
	}
	if len(paths) < want {
		f.logger.Warn("fewer frames extracted than expected",
			"expected", want, "got", len(paths))
	}

	frames := make([]models.Frame, len(paths))
	for i, p := range paths {
		frames[i] = models.Frame{
			Index:     i,
			Timestamp: float64(i) * interval,
			Path:      p,
		}
	}

	f.logger.Info("frames extracted",
		"count", len(frames),
		"interval_seconds", interval,
		"video_duration", duration)

	return frames, cleanup, nil
}
