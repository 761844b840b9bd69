// Package frame grabs still images from hive recordings with ffmpeg.
package frame

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

var (
	// ErrNoVideo is returned when the input recording cannot be opened.
	ErrNoVideo = errors.New("could not open video")
	// ErrNoFrame is returned when ffmpeg succeeds but writes no image.
	ErrNoFrame = errors.New("could not read the first frame")
)

type Extractor struct {
	// FFmpegPath defaults to "ffmpeg" on PATH.
	FFmpegPath string
	logger     *zap.Logger
}

func NewExtractor(ffmpegPath string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{FFmpegPath: ffmpegPath, logger: logger}
}

func (e *Extractor) binary() string {
	if e.FFmpegPath == "" {
		return "ffmpeg"
	}
	return e.FFmpegPath
}

// firstFrameArgs decodes only the first video frame and writes it at the
// source resolution.
func firstFrameArgs(videoPath, outputPath string) []string {
	return []string{
		"-v", "error",
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		"-y",
		outputPath,
	}
}

// ExtractFirstFrame saves the first frame of videoPath to outputPath. The
// image format follows the output extension.
func (e *Extractor) ExtractFirstFrame(ctx context.Context, videoPath, outputPath string) error {
	info, err := os.Stat(videoPath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNoVideo, videoPath)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoVideo, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNoVideo, videoPath)
	}

	cmd := exec.CommandContext(ctx, e.binary(), firstFrameArgs(videoPath, outputPath)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w, output: %s", err, strings.TrimSpace(string(output)))
	}

	out, err := os.Stat(outputPath)
	if err != nil || out.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrNoFrame, videoPath)
	}

	e.logger.Info("first frame saved",
		zap.String("video", videoPath),
		zap.String("output", outputPath),
		zap.Int64("bytes", out.Size()),
	)
	return nil
}
