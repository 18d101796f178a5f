package video

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipsight/clipsight/internal/models"
)

func writeFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	return path
}

func TestValidateAcceptsSupportedContainer(t *testing.T) {
	path := writeFile(t, "clip.mp4", 1024)
	assert.NoError(t, Validate(path, 1<<20))
}

func TestValidateRejectsMissingFile(t *testing.T) {
	err := Validate(filepath.Join(t.TempDir(), "nope.mp4"), 1<<20)

	var intake *models.IntakeError
	require.ErrorAs(t, err, &intake)
	assert.Contains(t, intake.Reason, "not found")
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	path := writeFile(t, "big.mp4", 2048)
	err := Validate(path, 1024)

	var intake *models.IntakeError
	require.ErrorAs(t, err, &intake)
	assert.Contains(t, intake.Reason, "exceeds limit")
}

func TestValidateRejectsUnsupportedContainer(t *testing.T) {
	for _, name := range []string{"notes.txt", "song.mp3", "image.jpg", "noext"} {
		path := writeFile(t, name, 10)
		err := Validate(path, 1<<20)

		var intake *models.IntakeError
		require.ErrorAs(t, err, &intake, "file %s", name)
		assert.Contains(t, intake.Reason, "unsupported container")
	}
}

func TestValidateRejectsDirectory(t *testing.T) {
	err := Validate(t.TempDir(), 1<<20)

	var intake *models.IntakeError
	require.ErrorAs(t, err, &intake)
}

func TestProbeRejectsGarbage(t *testing.T) {
	if !Available() {
		t.Skip("ffmpeg/ffprobe not installed")
	}

	path := writeFile(t, "garbage.mp4", 512)
	_, err := Probe(context.Background(), path)
	assert.True(t, errors.Is(err, models.ErrDecode), "got %v", err)
}

func TestProbeReadsDuration(t *testing.T) {
	if !Available() {
		t.Skip("ffmpeg/ffprobe not installed")
	}

	path := filepath.Join(t.TempDir(), "test.mp4")
	cmd := exec.Command("ffmpeg",
		"-f", "lavfi", "-i", "testsrc=duration=3:size=320x240:rate=10",
		"-pix_fmt", "yuv420p", "-y", path)
	require.NoError(t, cmd.Run())

	dur, err := Probe(context.Background(), path)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, dur, 0.2)
}
