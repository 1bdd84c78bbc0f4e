package service

import (
	"context"
)

// AvatarStore persists avatar images. media.Store satisfies it.
type AvatarStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}
