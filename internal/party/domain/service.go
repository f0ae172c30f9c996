package domain

import (
	"context"
	"errors"
)

type SaveProfileRequest struct {
	Kind  Kind
	Party Party
}

type SaveProfileResponse struct {
	Profile Profile
	Updated bool
}

type Service interface {
	Save(context.Context, SaveProfileRequest) (SaveProfileResponse, error)
	List(context.Context, Kind) ([]Profile, error)
	GetByID(ctx context.Context, id string) (Profile, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidKind      = errors.New("invalid_profile_kind")
	ErrInvalidFirstName = errors.New("invalid_first_name")
	ErrInvalidLastName  = errors.New("invalid_last_name")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
)
