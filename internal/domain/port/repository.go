package port

import (
	"context"
	"errors"

	"github.com/DHARANIVIP/Deepfake-Detection/internal/domain/entity"
)

// ErrReportNotFound is returned by FindByID when no report exists for the
// scan id. Callers translate it into a PROCESSING answer.
var ErrReportNotFound = errors.New("report not found")

// ReportStore persists terminal scan reports. Insert is a single atomic
// write of one immutable report; there are no partial updates.
type ReportStore interface {
	Insert(ctx context.Context, report *entity.Report) error
	FindByID(ctx context.Context, scanID string) (*entity.Report, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Report, error)
	Delete(ctx context.Context, scanID string) (bool, error)
}
