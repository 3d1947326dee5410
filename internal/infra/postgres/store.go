// Package postgres is the alternative report store backend. Frame
// evidence is stored as a JSONB column so the report round-trips without
// a second table.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/entity"
	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/port"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Insert(ctx context.Context, report *entity.Report) error {
	frameData, err := json.Marshal(report.FrameData)
	if err != nil {
		return fmt.Errorf("marshal frame data: %w", err)
	}

	query := `
		INSERT INTO scan_reports (
			scan_id, status, verdict, confidence_score,
			total_frames_analyzed, frame_data, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = s.pool.Exec(ctx, query,
		report.ScanID, string(report.Status), string(report.Verdict),
		report.ConfidenceScore, report.TotalFramesAnalyzed,
		frameData, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, scanID string) (*entity.Report, error) {
	query := `
		SELECT scan_id, status, verdict, confidence_score,
			total_frames_analyzed, frame_data, created_at
		FROM scan_reports WHERE scan_id=$1`

	report, err := scanRow(s.pool.QueryRow(ctx, query, scanID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find report by id: %w", err)
	}
	return report, nil
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]entity.Report, error) {
	query := `
		SELECT scan_id, status, verdict, confidence_score,
			total_frames_analyzed, frame_data, created_at
		FROM scan_reports ORDER BY created_at DESC LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent reports: %w", err)
	}
	defer rows.Close()

	var reports []entity.Report
	for rows.Next() {
		report, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("decode recent report: %w", err)
		}
		reports = append(reports, *report)
	}
	return reports, rows.Err()
}

func (s *Store) Delete(ctx context.Context, scanID string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM scan_reports WHERE scan_id=$1`, scanID)
	if err != nil {
		return false, fmt.Errorf("delete report: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanRow(row pgx.Row) (*entity.Report, error) {
	report := &entity.Report{}
	var status, verdict string
	var frameData []byte

	err := row.Scan(
		&report.ScanID, &status, &verdict, &report.ConfidenceScore,
		&report.TotalFramesAnalyzed, &frameData, &report.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(frameData, &report.FrameData); err != nil {
		return nil, fmt.Errorf("unmarshal frame data: %w", err)
	}
	report.Status = entity.ScanStatus(status)
	report.Verdict = entity.Verdict(verdict)
	return report, nil
}
