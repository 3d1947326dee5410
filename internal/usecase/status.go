package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/entity"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
)

// ReportQueryService answers read-side questions about scans. Only terminal
// reports are stored, so an unknown scan id reads as still processing.
type ReportQueryService struct {
	store  port.ReportStore
	logger *zap.Logger
}

func NewReportQueryService(store port.ReportStore, logger *zap.Logger) *ReportQueryService {
	return &ReportQueryService{store: store, logger: logger}
}

func (s *ReportQueryService) GetStatus(ctx context.Context, scanID string) (*entity.Report, error) {
	report, err := s.store.FindByID(ctx, scanID)
	if errors.Is(err, port.ErrReportNotFound) {
		return entity.ProcessingReport(scanID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	return report, nil
}

func (s *ReportQueryService) Recent(ctx context.Context, limit int) ([]entity.Report, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.store.ListRecent(ctx, limit)
}

func (s *ReportQueryService) Delete(ctx context.Context, scanID string) (bool, error) {
	deleted, err := s.store.Delete(ctx, scanID)
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	if deleted {
		s.logger.Info("report deleted", zap.String("scan_id", scanID))
	}
	return deleted, nil
}
