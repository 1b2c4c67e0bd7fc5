// Package audio turns short windows of captured audio-level frames into
// the per-frame uniform timeline consumed by the composition sinks.
package audio

import "math"

// LevelFrame is one captured audio level sample at frame_index.
type LevelFrame struct {
	FrameIndex int
	Peak       float64
	RMS        float64
}

// UniformFrame is a single row of the emitted uniform timeline.
type UniformFrame struct {
	TimeS  float64
	RMS    float64
	Peak   float64
	Energy float64
	Beat   float64
}

const (
	emaDecay       = 0.85
	emaGain        = 0.15
	thresholdScale = 1.55
	thresholdFloor = 0.02
	beatGain       = 4.5
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BuildTimeline walks captured level frames in order, maintaining the
// exponential RMS average used for beat-threshold detection, and emits
// one UniformFrame per input frame.
func BuildTimeline(frames []LevelFrame, frameMs int) []UniformFrame {
	out := make([]UniformFrame, 0, len(frames))
	emaRMS := 0.0
	for _, f := range frames {
		emaRMS = emaDecay*emaRMS + emaGain*f.RMS
		energy := clamp01(math.Pow(f.RMS*3, 0.75))
		threshold := math.Max(emaRMS*thresholdScale, thresholdFloor)
		beat := 0.0
		if f.Peak > threshold {
			beat = clamp01((f.Peak - threshold) * beatGain)
		}
		out = append(out, UniformFrame{
			TimeS:  float64(f.FrameIndex) * float64(frameMs) / 1000,
			RMS:    f.RMS,
			Peak:   f.Peak,
			Energy: energy,
			Beat:   beat,
		})
	}
	return out
}

// SilentTimeline synthesizes a deterministic zero-valued timeline for the
// case where live audio capture failed, so downstream composition still
// has a well-formed uniform track to drive.
func SilentTimeline(seconds float64, frameMs int) []UniformFrame {
	count := int(math.Ceil(seconds * 1000 / float64(frameMs)))
	out := make([]UniformFrame, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, UniformFrame{TimeS: float64(i) * float64(frameMs) / 1000})
	}
	return out
}
