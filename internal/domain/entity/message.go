package entity

// ScanRequestMessage is the inbound message from the scan.analysis queue.
// VideoKey is either an object-storage key or a local filesystem path.
type ScanRequestMessage struct {
	ScanID        string `json:"scan_id"`
	VideoKey      string `json:"video_key"`
	FileSize      int64  `json:"file_size,omitempty"`
	UploaderEmail string `json:"uploader_email,omitempty"`
}

// ScanStatusMessage is the outbound message published to the scan.status
// queue whenever a scan reaches a terminal state.
type ScanStatusMessage struct {
	ScanID          string     `json:"scan_id"`
	Status          ScanStatus `json:"status"`
	Verdict         Verdict    `json:"verdict,omitempty"`
	ConfidenceScore float64    `json:"confidence_score,omitempty"`
	FramesAnalyzed  int        `json:"frames_analyzed,omitempty"`
	VideoKey        string     `json:"video_key"`
	ErrorMessage    string     `json:"error_message,omitempty"`
}
