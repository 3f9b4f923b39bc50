package processing

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const frameTimestamp = "2"

// VideoMeta carries the probe results persisted alongside the record.
type VideoMeta struct {
	Width    int
	Height   int
	Duration float64
	Format   string
}

type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
	} `json:"format"`
}

// ProbeVideo shells out to ffprobe and reads dimensions and duration from
// its JSON output. Videos are stored as uploaded; only the metadata and a
// poster frame are produced.
func ProbeVideo(ctx context.Context, ffprobePath, path string) (VideoMeta, error) {
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return VideoMeta{}, fmt.Errorf("ffprobe: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return VideoMeta{}, fmt.Errorf("ffprobe: %w", err)
	}

	var probe ffprobeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return VideoMeta{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	meta := VideoMeta{Format: probe.Format.FormatName}
	if probe.Format.Duration != "" {
		if d, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
			meta.Duration = d
		}
	}
	for _, s := range probe.Streams {
		if s.CodecType == "video" {
			meta.Width = s.Width
			meta.Height = s.Height
			break
		}
	}

	if meta.Width == 0 || meta.Height == 0 {
		return VideoMeta{}, fmt.Errorf("no video stream in %s", path)
	}
	return meta, nil
}

// ExtractFrame grabs a poster frame near the start of the video and writes
// it as a JPEG thumbnail. The source is left untouched.
func ExtractFrame(ctx context.Context, ffmpegPath, path, thumbPath string) error {
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-v", "error",
		"-ss", frameTimestamp,
		"-i", path,
		"-frames:v", "1",
		"-q:v", "3",
		"-y",
		thumbPath,
	)

	if out, err := cmd.CombinedOutput(); err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("ffmpeg frame extract: %w", err)
		}
		return fmt.Errorf("ffmpeg frame extract: %s", msg)
	}
	return nil
}
