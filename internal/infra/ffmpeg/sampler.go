// Package ffmpeg decodes video containers into a sparse, time-indexed
// frame sequence using the ffmpeg and ffprobe binaries.
package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
)

type Sampler struct {
	intervalSec float64
	defaultFPS  float64
	format      string
	logger      *zap.Logger
}

// NewSampler samples one frame every intervalSec seconds of source video.
// defaultFPS is assumed when the container reports no frame rate.
func NewSampler(intervalSec, defaultFPS float64, format string, logger *zap.Logger) *Sampler {
	if intervalSec <= 0 {
		intervalSec = 1
	}
	if defaultFPS <= 0 {
		defaultFPS = 30
	}
	return &Sampler{
		intervalSec: intervalSec,
		defaultFPS:  defaultFPS,
		format:      format,
		logger:      logger,
	}
}

// StrideFrames converts a frame rate and sampling interval into a frame
// stride, floored at 1 so sampling always advances.
func StrideFrames(fps, intervalSec float64) int {
	stride := int(math.Round(fps * intervalSec))
	if stride < 1 {
		return 1
	}
	return stride
}

// Open probes the container and decodes every stride-th frame into a
// private workdir. An error here means the container itself is
// unopenable, which is fatal for the scan; everything after Open degrades
// per frame instead.
func (s *Sampler) Open(ctx context.Context, videoPath string) (port.FrameSequence, error) {
	meta, err := s.probe(ctx, videoPath)
	if err != nil {
		return nil, fmt.Errorf("probe container: %w", err)
	}

	fps := meta.fps
	if fps <= 0 {
		s.logger.Warn("container reports no frame rate, assuming default",
			zap.Float64("default_fps", s.defaultFPS),
			zap.String("video", videoPath),
		)
		fps = s.defaultFPS
	}
	stride := StrideFrames(fps, s.intervalSec)

	workdir, err := os.MkdirTemp("", "scan-frames-*")
	if err != nil {
		return nil, fmt.Errorf("create frame workdir: %w", err)
	}

	pattern := filepath.Join(workdir, "frame_%05d."+s.format)
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("select=not(mod(n\\,%d))", stride),
		"-vsync", "vfr",
		"-y",
		pattern,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.RemoveAll(workdir)
		return nil, fmt.Errorf("ffmpeg decode: %w, output: %s", err, string(output))
	}

	paths, err := filepath.Glob(filepath.Join(workdir, "*."+s.format))
	if err != nil || len(paths) == 0 {
		os.RemoveAll(workdir)
		return nil, fmt.Errorf("no frames decoded from container %s", videoPath)
	}
	sort.Strings(paths)

	s.logger.Debug("frame sampling prepared",
		zap.Int("sampled_frames", len(paths)),
		zap.Int("stride_frames", stride),
		zap.Float64("fps", fps),
	)

	return &sequence{
		paths:   paths,
		workdir: workdir,
		stride:  stride,
		fps:     fps,
		logger:  s.logger,
	}, nil
}

// sequence is lazy and non-restartable: each Next decodes one frame file,
// and Close removes every transient frame artifact.
type sequence struct {
	paths   []string
	idx     int
	stride  int
	fps     float64
	workdir string
	logger  *zap.Logger
	closed  bool
}

func (q *sequence) Next(ctx context.Context) (*port.SampledFrame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for q.idx < len(q.paths) {
		i := q.idx
		q.idx++

		img, err := decodeFrame(q.paths[i])
		if err != nil {
			q.logger.Warn("frame decode failed, skipping",
				zap.String("frame", q.paths[i]),
				zap.Error(err),
			)
			continue
		}

		return &port.SampledFrame{
			Image:     img,
			Timestamp: float64(i*q.stride) / q.fps,
			Index:     i,
		}, nil
	}

	return nil, nil
}

func (q *sequence) Close() error {
	if q.closed {
		return nil
	}
	q.closed = true
	return os.RemoveAll(q.workdir)
}

type containerMeta struct {
	fps        float64
	frameCount int
	duration   float64
}

func (s *Sampler) probe(ctx context.Context, videoPath string) (containerMeta, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=r_frame_rate,nb_frames",
		"-show_entries", "format=duration",
		"-of", "json",
		videoPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return containerMeta{}, fmt.Errorf("ffprobe: %w", err)
	}

	var probed struct {
		Streams []struct {
			RFrameRate string `json:"r_frame_rate"`
			NBFrames   string `json:"nb_frames"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(output, &probed); err != nil {
		return containerMeta{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 {
		return containerMeta{}, fmt.Errorf("no video stream in %s", videoPath)
	}

	meta := containerMeta{
		fps: parseFrameRate(probed.Streams[0].RFrameRate),
	}
	meta.frameCount, _ = strconv.Atoi(probed.Streams[0].NBFrames)
	meta.duration, _ = strconv.ParseFloat(probed.Format.Duration, 64)
	return meta, nil
}

// parseFrameRate handles ffprobe's rational frame rates like "30000/1001".
// Missing or malformed rates yield 0 and are defaulted by the caller.
func parseFrameRate(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0/0" {
		return 0
	}

	num, den, found := strings.Cut(raw, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !found {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

func decodeFrame(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}
