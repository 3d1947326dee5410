package entity

import (
	"time"
)

type ScanStatus string

const (
	ScanStatusPending    ScanStatus = "PENDING"
	ScanStatusProcessing ScanStatus = "PROCESSING"
	ScanStatusCompleted  ScanStatus = "COMPLETED"
	ScanStatusFailed     ScanStatus = "FAILED"
)

type Verdict string

const (
	VerdictReal      Verdict = "REAL"
	VerdictDeepfake  Verdict = "DEEPFAKE"
	VerdictUncertain Verdict = "UNCERTAIN"
)

// Scan is one end-to-end analysis of one uploaded video. It is owned
// exclusively by the pipeline until it reaches a terminal status.
type Scan struct {
	ScanID       string
	VideoKey     string
	FileSize     int64
	Status       ScanStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

func NewScan(scanID, videoKey string, fileSize int64) *Scan {
	now := time.Now().UTC()
	return &Scan{
		ScanID:    scanID,
		VideoKey:  videoKey,
		FileSize:  fileSize,
		Status:    ScanStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Scan) MarkProcessing() {
	s.Status = ScanStatusProcessing
	s.UpdatedAt = time.Now().UTC()
}

func (s *Scan) MarkCompleted() {
	now := time.Now().UTC()
	s.Status = ScanStatusCompleted
	s.UpdatedAt = now
	s.CompletedAt = &now
}

func (s *Scan) MarkFailed(errMsg string) {
	s.Status = ScanStatusFailed
	s.ErrorMessage = errMsg
	s.UpdatedAt = time.Now().UTC()
}

func (s *Scan) Terminal() bool {
	return s.Status == ScanStatusCompleted || s.Status == ScanStatusFailed
}
