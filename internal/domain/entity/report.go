package entity

import (
	"math"
	"time"
)

// FrameResult is the persisted evidence unit for one analyzed frame.
// Immutable once appended to a report.
type FrameResult struct {
	Timestamp     float64 `json:"timestamp" bson:"timestamp"`
	AIProbability float64 `json:"ai_probability" bson:"ai_probability"`
	FFTAnomaly    float64 `json:"fft_anomaly" bson:"fft_anomaly"`
}

// Report is the terminal artifact of a scan. Field names are the wire
// contract shared by the JSON API and the document store.
type Report struct {
	ScanID              string        `json:"scan_id" bson:"scan_id"`
	Status              ScanStatus    `json:"status" bson:"status"`
	Verdict             Verdict       `json:"verdict" bson:"verdict"`
	ConfidenceScore     float64       `json:"confidence_score" bson:"confidence_score"`
	TotalFramesAnalyzed int           `json:"total_frames_analyzed" bson:"total_frames_analyzed"`
	FrameData           []FrameResult `json:"frame_data" bson:"frame_data"`
	CreatedAt           float64       `json:"created_at" bson:"created_at"`
}

// NewReport assembles a completed report. TotalFramesAnalyzed is derived
// from the frame data, never set independently.
func NewReport(scanID string, verdict Verdict, confidence float64, frames []FrameResult) *Report {
	return &Report{
		ScanID:              scanID,
		Status:              ScanStatusCompleted,
		Verdict:             verdict,
		ConfidenceScore:     Round2(confidence),
		TotalFramesAnalyzed: len(frames),
		FrameData:           frames,
		CreatedAt:           float64(time.Now().UnixMilli()) / 1000.0,
	}
}

// ProcessingReport is the placeholder answer for a scan that has no stored
// report yet: analysis is still in flight, or the id is unknown.
func ProcessingReport(scanID string) *Report {
	return &Report{
		ScanID:  scanID,
		Status:  ScanStatusProcessing,
		Verdict: VerdictUncertain,
	}
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
