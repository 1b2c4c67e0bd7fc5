package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildTimelineLiteralScenario(t *testing.T) {
	frames := []LevelFrame{
		{FrameIndex: 0, Peak: 0.1, RMS: 0.05},
		{FrameIndex: 1, Peak: 0.3, RMS: 0.12},
	}
	timeline := BuildTimeline(frames, 50)

	require.Len(t, timeline, 2)
	require.InDelta(t, 0.05, timeline[1].TimeS, 1e-9)
	require.Greater(t, timeline[1].Energy, timeline[0].Energy)
	require.Greater(t, timeline[1].Beat, 0.0)
}

func TestBuildTimelineBeatRequiresExceedingThreshold(t *testing.T) {
	frames := []LevelFrame{
		{FrameIndex: 0, Peak: 0.01, RMS: 0.01},
		{FrameIndex: 1, Peak: 0.01, RMS: 0.01},
	}
	timeline := BuildTimeline(frames, 100)
	for _, f := range timeline {
		require.Equal(t, 0.0, f.Beat)
	}
}

func TestBuildTimelineEnergyAndBeatAreClamped(t *testing.T) {
	frames := []LevelFrame{{FrameIndex: 0, Peak: 5.0, RMS: 5.0}}
	timeline := BuildTimeline(frames, 50)
	require.LessOrEqual(t, timeline[0].Energy, 1.0)
	require.LessOrEqual(t, timeline[0].Beat, 1.0)
}

func TestSilentTimelineFrameCountRoundsUp(t *testing.T) {
	timeline := SilentTimeline(1.0, 300)
	require.Len(t, timeline, 4) // ceil(1000/300) == 4

	for _, f := range timeline {
		require.Equal(t, 0.0, f.RMS)
		require.Equal(t, 0.0, f.Peak)
		require.Equal(t, 0.0, f.Energy)
		require.Equal(t, 0.0, f.Beat)
	}
}

func TestSilentTimelineTimestamps(t *testing.T) {
	timeline := SilentTimeline(0.5, 50)
	require.Len(t, timeline, 10)
	require.Equal(t, 0.0, timeline[0].TimeS)
	require.InDelta(t, 0.45, timeline[9].TimeS, 1e-9)
}
