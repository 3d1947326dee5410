package port

import "context"

// ScanPublisher enqueues a scan request for background processing. The
// caller never blocks on the analysis itself.
type ScanPublisher interface {
	PublishScan(ctx context.Context, msg []byte) error
}

type StatusPublisher interface {
	PublishStatus(ctx context.Context, msg []byte) error
}

type DLQPublisher interface {
	PublishToDLQ(ctx context.Context, msg []byte, reason string) error
}
