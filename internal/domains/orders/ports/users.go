package ports

import "context"

// UserDirectory answers whether a user id is currently registered.
type UserDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
