package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/kitsune-livewallpaper/scenepipe/engine/core"
)

const (
	captureSampleRate = 48000
	captureChannels   = 2
	bytesPerSample    = 2
)

// StreamResult is the raw level-frame capture produced by monitoring the
// default audio sink for a bounded window.
type StreamResult struct {
	Source   string
	FrameMs  int
	Frames   []LevelFrame
	Duration time.Duration
}

// DefaultMonitorSource asks PulseAudio/PipeWire-pulse for the system's
// default sink and returns its ".monitor" source name.
func DefaultMonitorSource(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "pactl", "get-default-sink").Output()
	if err != nil {
		return "", &core.ExternalToolError{Tool: "pactl", Err: err}
	}
	sink := strings.TrimSpace(string(out))
	if sink == "" {
		return "", &core.ExternalToolError{Tool: "pactl", Err: fmt.Errorf("empty default sink")}
	}
	target := sink + ".monitor"

	list, err := exec.CommandContext(ctx, "pactl", "list", "short", "sources").Output()
	if err != nil {
		return "", &core.ExternalToolError{Tool: "pactl", Err: err}
	}
	for _, line := range strings.Split(string(list), "\n") {
		fields := strings.Fields(line)
		if len(fields) > 1 && fields[1] == target {
			return target, nil
		}
	}
	return "", &core.ExternalToolError{Tool: "pactl", Err: fmt.Errorf("monitor source %q not found", target)}
}

// StreamLevels spawns parec against the given (or auto-detected) source
// and reduces the raw s16le PCM stream into per-frame peak/rms pairs. The
// capture obeys a wall-clock deadline of seconds+2s per the scheduling
// model; a non-nil error means the caller should fall back to a silent
// timeline rather than abort the pipeline.
func StreamLevels(ctx context.Context, source string, seconds float64, frameMs int) (*StreamResult, error) {
	if source == "" {
		detected, err := DefaultMonitorSource(ctx)
		if err != nil {
			return nil, err
		}
		source = detected
	}

	deadline := time.Duration(seconds*float64(time.Second)) + 2*time.Second
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "parec",
		"--raw",
		"--format=s16le",
		fmt.Sprintf("--rate=%d", captureSampleRate),
		fmt.Sprintf("--channels=%d", captureChannels),
		"-d", source,
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &core.ExternalToolError{Tool: "parec", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &core.ExternalToolError{Tool: "parec", Err: err}
	}
	defer func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
	}()

	targetBytes := int(float64(captureSampleRate*captureChannels*bytesPerSample) * seconds)
	samplesPerFrame := (captureSampleRate * captureChannels * frameMs) / 1000
	if samplesPerFrame < 1 {
		samplesPerFrame = 1
	}

	start := time.Now()
	var frames []LevelFrame
	var framePeak float64
	var frameSqSum float64
	frameSamples := 0
	frameIdx := 0
	readTotal := 0
	allSamples := 0

	buf := make([]byte, 64*1024)
	for readTotal < targetBytes && time.Since(start) < deadline {
		n, readErr := stdout.Read(buf)
		if n > 0 {
			usable := n - (n % 2)
			reader := bytes.NewReader(buf[:usable])
			for reader.Len() >= 2 {
				var raw int16
				if err := binary.Read(reader, binary.LittleEndian, &raw); err != nil {
					break
				}
				sample := float64(raw) / 32768.0
				abs := math.Abs(sample)
				if abs > framePeak {
					framePeak = abs
				}
				frameSqSum += sample * sample
				frameSamples++
				allSamples++

				if frameSamples >= samplesPerFrame {
					frames = append(frames, LevelFrame{
						FrameIndex: frameIdx,
						Peak:       framePeak,
						RMS:        math.Sqrt(frameSqSum / float64(frameSamples)),
					})
					frameIdx++
					framePeak, frameSqSum, frameSamples = 0, 0, 0
				}
			}
			readTotal += n
		}
		if readErr == io.EOF || readErr != nil {
			break
		}
	}
	if frameSamples > 0 {
		frames = append(frames, LevelFrame{
			FrameIndex: frameIdx,
			Peak:       framePeak,
			RMS:        math.Sqrt(frameSqSum / float64(frameSamples)),
		})
	}

	if allSamples == 0 {
		return nil, &core.ExternalToolError{Tool: "parec", Err: fmt.Errorf("no audio samples captured from source %q", source)}
	}

	return &StreamResult{
		Source:   source,
		FrameMs:  frameMs,
		Frames:   frames,
		Duration: time.Since(start),
	}, nil
}
