package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, profile *Profile) error
	Update(ctx context.Context, db *gorm.DB, profile *Profile) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Profile, error)
	FindByNameKey(ctx context.Context, db *gorm.DB, kind Kind, nameKey string) (*Profile, error)
	List(ctx context.Context, db *gorm.DB, kind Kind) ([]*Profile, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	DeleteAll(ctx context.Context, db *gorm.DB, kind Kind) error
}
