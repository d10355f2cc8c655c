package usecase

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// Notifier is the optional due-date notification capability. Implementations
// contain their own failures; callers never see an error.
type Notifier interface {
	Enabled() bool
	SendDueTomorrowDigest(ctx context.Context, tasks []domain.Task)
	SendTest(ctx context.Context)
}
