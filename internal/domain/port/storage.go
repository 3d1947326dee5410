package port

import "context"

// VideoStorage fetches an uploaded video object into a local path for
// decoding.
type VideoStorage interface {
	DownloadVideo(ctx context.Context, objectKey string, destPath string) error
}
