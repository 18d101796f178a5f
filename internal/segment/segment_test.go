package segment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipsight/clipsight/internal/models"
)

func makeFrames(n int, interval float64) []models.Frame {
	frames := make([]models.Frame, n)
	for i := range frames {
		frames[i] = models.Frame{Index: i, Timestamp: float64(i) * interval}
	}
	return frames
}

func TestPartitionTenFrames(t *testing.T) {
	// 10-second video at 1s interval: boundary formula yields segment
	// sizes 2,3,2,3.
	segments, warnings := Partition(makeFrames(10, 1.0), 1.0)

	require.Len(t, segments, 4)
	assert.Empty(t, warnings)

	sizes := []int{}
	for _, s := range segments {
		sizes = append(sizes, len(s.Frames))
	}
	assert.Equal(t, []int{2, 3, 2, 3}, sizes)

	assert.Equal(t, models.SegmentA, segments[0].Label)
	assert.Equal(t, models.SegmentD, segments[3].Label)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 10.0, segments[3].End)
}

func TestPartitionDisjointUnion(t *testing.T) {
	for n := 4; n <= 100; n++ {
		segments, warnings := Partition(makeFrames(n, 0.5), 0.5)
		require.Len(t, segments, 4, "n=%d", n)
		require.Empty(t, warnings, "n=%d", n)

		next := 0
		for _, s := range segments {
			require.NotEmpty(t, s.Frames, "n=%d segment %s", n, s.Label)
			for _, f := range s.Frames {
				require.Equal(t, next, f.Index, "n=%d", n)
				next++
			}
		}
		require.Equal(t, n, next, "n=%d", n)
	}
}

func TestPartitionDegradesBelowFourFrames(t *testing.T) {
	for n := 1; n < 4; n++ {
		segments, warnings := Partition(makeFrames(n, 1.0), 1.0)
		assert.Len(t, segments, n)
		assert.NotEmpty(t, warnings, "n=%d", n)
		for i, s := range segments {
			assert.Equal(t, models.SegmentLabels[i], s.Label)
			assert.Len(t, s.Frames, 1)
		}
	}
}

func TestPartitionEmpty(t *testing.T) {
	segments, warnings := Partition(nil, 1.0)
	assert.Empty(t, segments)
	assert.NotEmpty(t, warnings)
}

func TestLabelForMatchesPartition(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7, 10, 33, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			segments, _ := Partition(makeFrames(n, 1.0), 1.0)
			for _, s := range segments {
				for _, f := range s.Frames {
					label, ok := LabelFor(f.Index, n)
					require.True(t, ok)
					assert.Equal(t, s.Label, label)
				}
			}
		})
	}

	_, ok := LabelFor(-1, 10)
	assert.False(t, ok)
	_, ok = LabelFor(10, 10)
	assert.False(t, ok)
}
