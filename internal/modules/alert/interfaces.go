package alert

import (
	"context"

	"vehiclerent/internal/domain"
)

type AlertRepository interface {
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]domain.Alert, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
	MarkAllAsRead(ctx context.Context, userID int64) error
}
