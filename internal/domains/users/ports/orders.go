package ports

import "context"

// OrderReferences exposes the order store to the user delete policy.
type OrderReferences interface {
	CountByUser(ctx context.Context, userID int64) (int64, error)
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
}
