package inference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipsight/clipsight/internal/models"
)

type scriptedEngine struct {
	calls     int
	responses []func() (string, error)
}

func (e *scriptedEngine) Describe(ctx context.Context, imagePath, prompt string) (string, error) {
	step := e.calls
	e.calls++
	if step >= len(e.responses) {
		step = len(e.responses) - 1
	}
	return e.responses[step]()
}

func testOptions() Options {
	return Options{
		PerCallTimeout: time.Second,
		MaxRetries:     3,
		InitialDelay:   time.Millisecond,
		MaxDelay:       5 * time.Millisecond,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAnalyzeSuccess(t *testing.T) {
	engine := &scriptedEngine{responses: []func() (string, error){
		func() (string, error) { return "genre: vlog\nobservation: a beach", nil },
	}}
	client := NewClient(engine, testOptions(), discardLogger())

	result, err := client.Analyze(context.Background(), models.Frame{Index: 3}, "prompt")

	require.NoError(t, err)
	assert.True(t, result.Ok())
	assert.True(t, result.Attempted)
	assert.Equal(t, 3, result.FrameIndex)
	assert.Equal(t, "vlog", result.Field(models.FieldGenre))
	assert.Equal(t, 1, engine.calls)
}

func TestAnalyzeRetriesTransientThenSucceeds(t *testing.T) {
	engine := &scriptedEngine{responses: []func() (string, error){
		func() (string, error) { return "", errors.New("connection refused") },
		func() (string, error) { return "", errors.New("status 503") },
		func() (string, error) { return "observation: recovered", nil },
	}}
	client := NewClient(engine, testOptions(), discardLogger())

	result, err := client.Analyze(context.Background(), models.Frame{Index: 0}, "prompt")

	require.NoError(t, err)
	assert.True(t, result.Ok())
	assert.Equal(t, 3, engine.calls)
}

func TestAnalyzeTransientExhaustionBecomesFailedResult(t *testing.T) {
	engine := &scriptedEngine{responses: []func() (string, error){
		func() (string, error) { return "", errors.New("status 503") },
	}}
	client := NewClient(engine, testOptions(), discardLogger())

	result, err := client.Analyze(context.Background(), models.Frame{Index: 1}, "prompt")

	// A frame that never succeeds must not abort the pipeline.
	require.NoError(t, err)
	assert.False(t, result.Ok())
	assert.True(t, result.Attempted)
	assert.NotEmpty(t, result.FailReason)
	assert.Equal(t, 4, engine.calls) // initial call + 3 retries
}

func TestAnalyzePermanentShortCircuits(t *testing.T) {
	engine := &scriptedEngine{responses: []func() (string, error){
		func() (string, error) { return "", errors.New("status 401 unauthorized") },
	}}
	client := NewClient(engine, testOptions(), discardLogger())

	result, err := client.Analyze(context.Background(), models.Frame{Index: 0}, "prompt")

	require.Error(t, err)
	assert.True(t, models.IsPermanent(err))
	assert.False(t, result.Ok())
	assert.Equal(t, 1, engine.calls) // no retry budget spent
}

func TestAnalyzeHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	engine := &scriptedEngine{responses: []func() (string, error){
		func() (string, error) {
			cancel()
			return "", errors.New("connection reset")
		},
	}}
	client := NewClient(engine, testOptions(), discardLogger())

	result, err := client.Analyze(ctx, models.Frame{Index: 0}, "prompt")

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, result.Ok())
}

func TestClassify(t *testing.T) {
	transient := []error{
		errors.New("connection refused"),
		errors.New("status 500 internal server error"),
		errors.New("rate limit exceeded, status 429"),
		context.DeadlineExceeded,
		errors.New("something entirely novel"),
	}
	for _, err := range transient {
		assert.True(t, models.IsTransient(Classify(err)), "%v", err)
	}

	permanent := []error{
		errors.New("status 401 unauthorized"),
		errors.New("invalid api key"),
		errors.New("model not found"),
		errors.New("quota exceeded for this billing period"),
		fmt.Errorf("call failed: %w", errors.New("status 400 bad request")),
	}
	for _, err := range permanent {
		assert.True(t, models.IsPermanent(Classify(err)), "%v", err)
	}

	assert.NoError(t, Classify(nil))
}
