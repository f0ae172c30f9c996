package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicekit/internal/clock"
	"github.com/smallbiznis/invoicekit/internal/party/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("party.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// Save inserts a profile, or updates the existing one with the same
// case-insensitive first and last name.
func (s *Service) Save(ctx context.Context, req domain.SaveProfileRequest) (domain.SaveProfileResponse, error) {
	if !req.Kind.Valid() {
		return domain.SaveProfileResponse{}, domain.ErrInvalidKind
	}

	party := req.Party.Normalize()
	if party.FirstName == "" {
		return domain.SaveProfileResponse{}, domain.ErrInvalidFirstName
	}
	if party.LastName == "" {
		return domain.SaveProfileResponse{}, domain.ErrInvalidLastName
	}

	key := domain.NameKeyFor(party)
	now := s.clock.Now()

	var resp domain.SaveProfileResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByNameKey(ctx, tx, req.Kind, key)
		if err != nil {
			return err
		}

		if existing != nil {
			existing.Party = party
			existing.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, existing); err != nil {
				return err
			}
			resp = domain.SaveProfileResponse{Profile: *existing, Updated: true}
			return nil
		}

		profile := domain.Profile{
			ID:        s.genID.Generate(),
			Kind:      req.Kind,
			NameKey:   key,
			Party:     party,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, tx, &profile); err != nil {
			return err
		}
		resp = domain.SaveProfileResponse{Profile: profile}
		return nil
	})
	if err != nil {
		return domain.SaveProfileResponse{}, err
	}

	s.log.Info("profile saved",
		zap.String("kind", string(req.Kind)),
		zap.String("profile_id", resp.Profile.ID.String()),
		zap.Bool("updated", resp.Updated),
	)
	return resp, nil
}

func (s *Service) List(ctx context.Context, kind domain.Kind) ([]domain.Profile, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidKind
	}

	items, err := s.repo.List(ctx, s.db, kind)
	if err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		profiles = append(profiles, *item)
	}
	return profiles, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	profileID, err := parseID(id)
	if err != nil {
		return domain.Profile{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, profileID)
	if err != nil {
		return domain.Profile{}, err
	}
	if item == nil {
		return domain.Profile{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	profileID, err := parseID(id)
	if err != nil {
		return err
	}

	item, err := s.repo.FindByID(ctx, s.db, profileID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, profileID); err != nil {
		return err
	}
	s.log.Info("profile deleted", zap.String("profile_id", profileID.String()))
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
