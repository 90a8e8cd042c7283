package dao

import (
	"context"
)

// Service is a generic data-access contract shared by every entity store in
// the module (operation requests, approval requests, decisions, history).
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
