package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/entity"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
)

// SubmitService enqueues scan requests. It assigns the scan id when the
// caller did not bring one, so the id can be handed back immediately while
// the analysis runs in the background.
type SubmitService struct {
	publisher port.ScanPublisher
	logger    *zap.Logger
}

func NewSubmitService(publisher port.ScanPublisher, logger *zap.Logger) *SubmitService {
	return &SubmitService{publisher: publisher, logger: logger}
}

func (s *SubmitService) Submit(ctx context.Context, req entity.ScanRequestMessage) (string, error) {
	if req.VideoKey == "" {
		return "", fmt.Errorf("video key is required")
	}
	if req.ScanID == "" {
		req.ScanID = uuid.NewString()
	}

	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal scan request: %w", err)
	}

	if err := s.publisher.PublishScan(ctx, data); err != nil {
		return "", fmt.Errorf("publish scan request: %w", err)
	}

	s.logger.Info("scan request enqueued",
		zap.String("scan_id", req.ScanID),
		zap.String("video_key", req.VideoKey),
	)
	return req.ScanID, nil
}
