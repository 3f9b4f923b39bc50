package processing

import "context"

// Pipeline bundles the image and video steps behind one value so callers
// can swap it out in tests. Binary paths come from configuration; plain
// "ffmpeg"/"ffprobe" resolve through PATH.
type Pipeline struct {
	ffmpegPath  string
	ffprobePath string
}

func NewPipeline(ffmpegPath, ffprobePath string) *Pipeline {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Pipeline{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

func (p *Pipeline) ProcessImage(ctx context.Context, path, thumbPath string) (ImageMeta, error) {
	return ProcessImage(path, thumbPath)
}

func (p *Pipeline) ProcessVideo(ctx context.Context, path, thumbPath string) (VideoMeta, error) {
	meta, err := ProbeVideo(ctx, p.ffprobePath, path)
	if err != nil {
		return VideoMeta{}, err
	}
	if err := ExtractFrame(ctx, p.ffmpegPath, path, thumbPath); err != nil {
		return VideoMeta{}, err
	}
	return meta, nil
}
