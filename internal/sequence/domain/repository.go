package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Get(ctx context.Context, db *gorm.DB, key string) (*Setting, error)
	Put(ctx context.Context, db *gorm.DB, setting *Setting) error
	Delete(ctx context.Context, db *gorm.DB, key string) error
}
