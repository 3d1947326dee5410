package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/entity"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/metrics"
)

// AnalyzeVideoUseCase runs the full scan pipeline for one inbound message:
// fetch the video, sample frames, locate faces, collect both detection
// signals per frame, fuse them into a verdict and persist the report.
type AnalyzeVideoUseCase struct {
	store      port.ReportStore
	videos     port.VideoStorage
	sampler    port.FrameSampler
	locator    port.FaceLocator
	classifier port.ImageClassifier
	anomaly    port.AnomalyScorer
	publisher  port.StatusPublisher
	dlq        port.DLQPublisher
	notifier   port.FailureNotifier
	logger     *zap.Logger
	cfg        AnalyzeConfig
}

type AnalyzeConfig struct {
	TempDir        string
	Fusion         FusionConfig
	PlaceholderMin float64
	PlaceholderMax float64
}

func NewAnalyzeVideoUseCase(
	store port.ReportStore,
	videos port.VideoStorage,
	sampler port.FrameSampler,
	locator port.FaceLocator,
	classifier port.ImageClassifier,
	anomaly port.AnomalyScorer,
	publisher port.StatusPublisher,
	dlq port.DLQPublisher,
	notifier port.FailureNotifier,
	logger *zap.Logger,
	cfg AnalyzeConfig,
) *AnalyzeVideoUseCase {
	return &AnalyzeVideoUseCase{
		store:      store,
		videos:     videos,
		sampler:    sampler,
		locator:    locator,
		classifier: classifier,
		anomaly:    anomaly,
		publisher:  publisher,
		dlq:        dlq,
		notifier:   notifier,
		logger:     logger,
		cfg:        cfg,
	}
}

func (uc *AnalyzeVideoUseCase) Execute(ctx context.Context, rawMsg []byte) error {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "AnalyzeVideoUseCase.Execute")
	defer span.End()

	totalTimer := time.Now()

	var msg entity.ScanRequestMessage
	if err := json.Unmarshal(rawMsg, &msg); err != nil {
		uc.logger.Error("failed to unmarshal message", zap.Error(err), zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "unmarshal_error: "+err.Error())
		return nil
	}
	if msg.ScanID == "" || msg.VideoKey == "" {
		uc.logger.Error("message missing scan_id or video_key", zap.ByteString("body", rawMsg))
		_ = uc.dlq.PublishToDLQ(ctx, rawMsg, "invalid_message: missing scan_id or video_key")
		return nil
	}

	span.SetAttributes(
		attribute.String("scan.id", msg.ScanID),
		attribute.String("scan.video_key", msg.VideoKey),
	)

	log := uc.logger.With(zap.String("scan_id", msg.ScanID), zap.String("video_key", msg.VideoKey))

	scan := entity.NewScan(msg.ScanID, msg.VideoKey, msg.FileSize)
	scan.MarkProcessing()

	metrics.ActiveWorkers.Inc()
	defer metrics.ActiveWorkers.Dec()

	if err := uc.runPipeline(ctx, scan, msg, rawMsg, log); err != nil {
		return err
	}

	if scan.Status == entity.ScanStatusCompleted {
		metrics.ScansProcessedTotal.WithLabelValues("completed").Inc()
		metrics.ScanStageDuration.WithLabelValues("total").Observe(time.Since(totalTimer).Seconds())
	}

	return nil
}

func (uc *AnalyzeVideoUseCase) runPipeline(
	ctx context.Context,
	scan *entity.Scan,
	msg entity.ScanRequestMessage,
	rawMsg []byte,
	log *zap.Logger,
) error {
	tracer := otel.Tracer("usecase")

	workDir := filepath.Join(uc.cfg.TempDir, scan.ScanID)
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return fmt.Errorf("create workdir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("failed to remove workdir", zap.String("dir", workDir), zap.Error(err))
		}
	}()

	// Fetch the video. Download failures are the one transient stage: the
	// message goes back to the queue and the broker drives the retry.
	dlStart := time.Now()
	ctxDl, spanDl := tracer.Start(ctx, "fetch_video")
	videoPath, err := uc.fetchVideo(ctxDl, msg.VideoKey, workDir)
	spanDl.End()
	if err != nil {
		log.Error("failed to fetch video", zap.Error(err))
		return fmt.Errorf("fetch video: %w", err)
	}
	metrics.ScanStageDuration.WithLabelValues("fetch").Observe(time.Since(dlStart).Seconds())

	// Open the container. An undecodable video never becomes decodable, so
	// this failure is terminal for the scan.
	smStart := time.Now()
	ctxSm, spanSm := tracer.Start(ctx, "sample_frames")
	seq, err := uc.sampler.Open(ctxSm, videoPath)
	spanSm.End()
	if err != nil {
		log.Error("failed to open video for sampling", zap.Error(err))
		return uc.failScan(ctx, scan, msg, rawMsg, "open_video: "+err.Error(), log)
	}
	defer seq.Close()
	metrics.ScanStageDuration.WithLabelValues("sample").Observe(time.Since(smStart).Seconds())

	anStart := time.Now()
	frames, err := uc.analyzeFrames(ctx, seq, log)
	if err != nil {
		return err
	}
	metrics.ScanStageDuration.WithLabelValues("analyze").Observe(time.Since(anStart).Seconds())

	verdict, confidence := FuseScores(frames, uc.cfg.Fusion)
	report := entity.NewReport(scan.ScanID, verdict, confidence, frames)

	if err := uc.insertReport(ctx, report); err != nil {
		// The evidence is already computed; dump it so the report can be
		// recovered by hand before failing the scan.
		reportJSON, _ := json.Marshal(report)
		log.Error("failed to persist report",
			zap.Error(err),
			zap.ByteString("report", reportJSON),
		)
		return uc.failScan(ctx, scan, msg, rawMsg, "persist_report: "+err.Error(), log)
	}

	scan.MarkCompleted()
	metrics.VerdictsTotal.WithLabelValues(string(verdict)).Inc()

	uc.publishStatus(ctx, entity.ScanStatusMessage{
		ScanID:          scan.ScanID,
		Status:          entity.ScanStatusCompleted,
		Verdict:         verdict,
		ConfidenceScore: report.ConfidenceScore,
		FramesAnalyzed:  report.TotalFramesAnalyzed,
		VideoKey:        scan.VideoKey,
	}, log)

	log.Info("scan completed",
		zap.String("verdict", string(verdict)),
		zap.Float64("confidence", report.ConfidenceScore),
		zap.Int("frames_analyzed", report.TotalFramesAnalyzed),
	)

	return nil
}

func (uc *AnalyzeVideoUseCase) analyzeFrames(
	ctx context.Context,
	seq port.FrameSequence,
	log *zap.Logger,
) ([]entity.FrameResult, error) {
	frames := make([]entity.FrameResult, 0, 32)

	for {
		frame, err := seq.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("next frame: %w", err)
		}
		if frame == nil {
			break
		}
		metrics.FramesSampledTotal.Inc()

		region, found := uc.locator.Locate(frame.Image)
		if !found {
			continue
		}
		if region.Fallback {
			metrics.FallbackCropsTotal.Inc()
		}

		aiProb := uc.predictFakeProbability(ctx, region, log)
		fftScore := uc.anomaly.Score(region.Image)

		frames = append(frames, entity.FrameResult{
			Timestamp:     entity.Round2(frame.Timestamp),
			AIProbability: entity.Round4(aiProb),
			FFTAnomaly:    entity.Round2(fftScore),
		})
		metrics.FramesAnalyzedTotal.Inc()
	}

	return frames, nil
}

func (uc *AnalyzeVideoUseCase) fetchVideo(ctx context.Context, videoKey, workDir string) (string, error) {
	if uc.videos == nil {
		return videoKey, nil
	}
	videoPath := filepath.Join(workDir, "input"+filepath.Ext(videoKey))
	if err := uc.videos.DownloadVideo(ctx, videoKey, videoPath); err != nil {
		return "", err
	}
	return videoPath, nil
}

// predictFakeProbability returns P(fake) for a cropped face region. With no
// classifier wired it answers a bounded random placeholder so the spectral
// signal still dominates the blend; a classifier call error degrades to a
// neutral 0.5 instead of sinking the frame.
func (uc *AnalyzeVideoUseCase) predictFakeProbability(
	ctx context.Context,
	region port.FaceRegion,
	log *zap.Logger,
) float64 {
	if uc.classifier == nil {
		return uc.cfg.PlaceholderMin + rand.Float64()*(uc.cfg.PlaceholderMax-uc.cfg.PlaceholderMin)
	}

	result, err := uc.classifier.Classify(ctx, region.Image)
	if err != nil {
		log.Warn("classifier call failed, using neutral probability", zap.Error(err))
		return 0.5
	}
	return NormalizeFakeProbability(result)
}

// NormalizeFakeProbability maps a labeled classification to P(fake). A
// label naming the fake class keeps its confidence; any other label is read
// as the authentic class and inverted.
func NormalizeFakeProbability(c Classification) float64 {
	label := strings.ToLower(c.Label)
	var p float64
	if strings.Contains(label, "fake") || strings.Contains(label, "deepfake") {
		p = c.Confidence
	} else {
		p = 1 - c.Confidence
	}
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Classification aliases the port type so callers outside the pipeline can
// normalize raw classifier output without importing the port package.
type Classification = port.Classification

func (uc *AnalyzeVideoUseCase) insertReport(ctx context.Context, report *entity.Report) error {
	if uc.store == nil {
		return fmt.Errorf("no report store configured")
	}
	return uc.store.Insert(ctx, report)
}

func (uc *AnalyzeVideoUseCase) failScan(
	ctx context.Context,
	scan *entity.Scan,
	msg entity.ScanRequestMessage,
	rawMsg []byte,
	errMsg string,
	log *zap.Logger,
) error {
	scan.MarkFailed(errMsg)

	_ = uc.dlq.PublishToDLQ(ctx, rawMsg, errMsg)

	uc.publishStatus(ctx, entity.ScanStatusMessage{
		ScanID:       scan.ScanID,
		Status:       entity.ScanStatusFailed,
		VideoKey:     scan.VideoKey,
		ErrorMessage: errMsg,
	}, log)

	metrics.ScansProcessedTotal.WithLabelValues("failed").Inc()

	if uc.notifier != nil && msg.UploaderEmail != "" {
		_ = uc.notifier.NotifyFailure(ctx, msg.UploaderEmail, scan.ScanID, scan.VideoKey, errMsg)
	}

	return nil
}

func (uc *AnalyzeVideoUseCase) publishStatus(ctx context.Context, msg entity.ScanStatusMessage, log *zap.Logger) {
	data, _ := json.Marshal(msg)
	if err := uc.publisher.PublishStatus(ctx, data); err != nil {
		log.Error("failed to publish status", zap.Error(err))
	}
}
