package video

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/clipsight/clipsight/internal/models"
)

// allowedExtensions are the container formats the pipeline accepts.
var allowedExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
	".m4v":  true,
}

// Available returns true if both ffmpeg and ffprobe are on the PATH.
func Available() bool {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return false
	}
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// Validate rejects a video file before any decode or inference spend:
// missing file, unsupported container extension, or size over the ceiling.
func Validate(path string, maxBytes int64) error {
	stat, err := os.Stat(path)
	if err != nil {
		return &models.IntakeError{Path: path, Reason: "file not found"}
	}
	if stat.IsDir() {
		return &models.IntakeError{Path: path, Reason: "path is a directory"}
	}
	if stat.Size() > maxBytes {
		return &models.IntakeError{
			Path:   path,
			Reason: fmt.Sprintf("file size %d exceeds limit %d", stat.Size(), maxBytes),
		}
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !allowedExtensions[ext] {
		return &models.IntakeError{Path: path, Reason: fmt.Sprintf("unsupported container %q", ext)}
	}
	return nil
}

// probeOutput mirrors ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns the video duration in seconds using ffprobe. A container
// that cannot be read maps to models.ErrDecode; a duration of zero or
// less maps to models.ErrEmptyVideo.
func Probe(ctx context.Context, path string) (float64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, fmt.Errorf("ffprobe not found: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe failed: %v", models.ErrDecode, err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("%w: ffprobe JSON parse error: %v", models.ErrDecode, err)
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: unreadable duration %q", models.ErrDecode, probe.Format.Duration)
	}
	if dur <= 0 {
		return 0, models.ErrEmptyVideo
	}
	return dur, nil
}
