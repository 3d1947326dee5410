package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, userEmail string, scanID string, videoKey string, errorMsg string) error
}
