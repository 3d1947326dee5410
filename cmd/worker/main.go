package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/config"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/email"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/facedetect"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/ffmpeg"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/gemini"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/huggingface"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/metrics"
	miniostorage "github.com/DHARANIVIP/Deepfake-Detection/internal/infra/minio"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/mongodb"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/opencv"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/postgres"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/rabbitmq"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/spectral"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/infra/tracing"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/usecase"
	"github.com/DHARANIVIP/Deepfake-Detection/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	fatalOnErr(err, "load config")

	log, err := logger.New(cfg.LogLevel)
	fatalOnErr(err, "init logger")
	defer log.Sync()

	log.Info("starting deepfake-analysis-service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Tracing (non-fatal if Jaeger unavailable)
	tp, err := tracing.InitTracer(ctx, cfg.JaegerEndpoint)
	if err != nil {
		log.Warn("tracing init failed, continuing without tracing", zap.Error(err))
	} else {
		defer tp.Shutdown(ctx)
	}

	// Report store
	store := buildStore(ctx, cfg, log)

	// Object storage. An empty endpoint means video keys are local paths.
	var videos port.VideoStorage
	if cfg.MinIOEndpoint != "" {
		storage, err := miniostorage.NewStorage(miniostorage.StorageConfig{
			Endpoint:     cfg.MinIOEndpoint,
			AccessKey:    cfg.MinIOAccessKey,
			SecretKey:    cfg.MinIOSecretKey,
			UseSSL:       cfg.MinIOUseSSL,
			UploadBucket: cfg.MinIOUploadBucket,
		})
		fatalOnErr(err, "create minio storage")
		fatalOnErr(storage.EnsureBucket(ctx), "ensure minio bucket")
		videos = storage
	} else {
		log.Info("no minio endpoint configured, treating video keys as local paths")
	}

	// RabbitMQ publisher connection
	rmqConn, err := amqp.Dial(cfg.RabbitMQURL)
	fatalOnErr(err, "connect to rabbitmq for publisher")
	defer rmqConn.Close()

	pub, err := rabbitmq.NewPublisher(rmqConn, cfg.RabbitMQExchange)
	fatalOnErr(err, "create rabbitmq publisher")

	statusPub := rabbitmq.NewStatusPublisher(pub)
	dlqPub := rabbitmq.NewDLQPublisher(pub, cfg.RabbitMQDLQ)

	// Infra adapters
	locator := buildLocator(cfg, log)
	classifier := buildClassifier(ctx, cfg, log)
	sampler := ffmpeg.NewSampler(cfg.SampleIntervalSec, cfg.DefaultFPS, cfg.FrameFormat, log)
	anomaly := spectral.NewScorer(cfg.FFTMaskSize, cfg.FFTBaseline, cfg.FFTCeiling)
	notifier := email.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, log)

	// Use case
	uc := usecase.NewAnalyzeVideoUseCase(
		store, videos, sampler, locator, classifier, anomaly,
		statusPub, dlqPub, notifier,
		log,
		usecase.AnalyzeConfig{
			TempDir: cfg.TempDir,
			Fusion: usecase.FusionConfig{
				AIWeight:          cfg.AIWeight,
				FFTWeight:         cfg.FFTWeight,
				DeepfakeThreshold: cfg.DeepfakeThreshold,
				MaxConfidence:     cfg.MaxConfidence,
			},
			PlaceholderMin: cfg.PlaceholderMin,
			PlaceholderMax: cfg.PlaceholderMax,
		},
	)

	// Metrics server
	metricsSrv := metrics.StartMetricsServer(ctx, cfg.MetricsPort, log)

	// Consumer (worker pool)
	consumer, err := rabbitmq.NewConsumer(rabbitmq.ConsumerConfig{
		URL:         cfg.RabbitMQURL,
		Queue:       cfg.RabbitMQScanQueue,
		Exchange:    cfg.RabbitMQExchange,
		DLQ:         cfg.RabbitMQDLQ,
		StatusQueue: cfg.RabbitMQStatusQueue,
		Prefetch:    cfg.RabbitMQPrefetch,
		WorkerCount: cfg.WorkerCount,
		MaxAttempts: cfg.MaxRetries,
		BaseDelayMs: cfg.RetryBaseDelayMs,
	}, uc.Execute, dlqPub, log)
	fatalOnErr(err, "create consumer")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	log.Info("deepfake-analysis-service started, consuming messages")

	if err := consumer.Start(ctx); err != nil {
		log.Error("consumer error", zap.Error(err))
	}

	// Shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Shutdown(shutdownCtx)

	consumer.Close()
	log.Info("deepfake-analysis-service stopped")
}

func buildStore(ctx context.Context, cfg *config.Config, log *zap.Logger) port.ReportStore {
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		fatalOnErr(err, "connect to postgres")
		if err := postgres.RunMigrations(cfg.DatabaseURL, "migrations"); err != nil {
			log.Warn("migration warning", zap.Error(err))
		}
		return postgres.NewStore(pool)
	default:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		fatalOnErr(err, "connect to mongodb")
		return mongodb.NewStore(client, cfg.MongoDatabase, cfg.MongoCollection)
	}
}

// buildLocator assembles the detection cascade. Either learned detector may
// be unavailable on a given host; the center-crop terminator always is.
func buildLocator(cfg *config.Config, log *zap.Logger) port.FaceLocator {
	strategies := make([]facedetect.Strategy, 0, 3)

	if pigoStrat, err := facedetect.NewPigoStrategy(cfg.FaceFinderPath); err != nil {
		log.Warn("pigo face detector unavailable", zap.Error(err))
	} else {
		strategies = append(strategies, pigoStrat)
	}

	if haarStrat, err := opencv.NewHaarStrategy(cfg.HaarCascadePath); err != nil {
		log.Warn("haar cascade detector unavailable", zap.Error(err))
	} else {
		strategies = append(strategies, haarStrat)
	}

	strategies = append(strategies, facedetect.CenterCrop{})
	return facedetect.NewLocator(cfg.FacePadding, log, strategies...)
}

func buildClassifier(ctx context.Context, cfg *config.Config, log *zap.Logger) port.ImageClassifier {
	switch cfg.ClassifierBackend {
	case "huggingface":
		return huggingface.NewClassifier(cfg.HFEndpoint, cfg.HFModel, cfg.HFToken, log)
	case "gemini":
		c, err := gemini.NewClassifier(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
		fatalOnErr(err, "create gemini classifier")
		return c
	default:
		log.Warn("no classifier backend configured, using placeholder probabilities")
		return nil
	}
}

func fatalOnErr(err error, msg string) {
	if err != nil {
		panic(msg + ": " + err.Error())
	}
}
