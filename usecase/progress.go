package usecase

import (
	"context"

	"github.com/fastygo/taskpulse/domain"
)

// ProgressEngine recomputes a project's derived fields after its tasks change.
type ProgressEngine interface {
	Recalculate(ctx context.Context, projectID string) (*domain.Project, error)
}
