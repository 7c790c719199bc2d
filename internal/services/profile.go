package services

import (
	"context"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

type profileService struct {
	profileRepo    domain.ProfileRepository
	tx             domain.TxManager
	contextTimeout time.Duration
}

// NewProfileService creates a ProfileService backed by the given repository.
func NewProfileService(profileRepo domain.ProfileRepository, tx domain.TxManager, timeout time.Duration) domain.ProfileService {
	return &profileService{
		profileRepo:    profileRepo,
		tx:             tx,
		contextTimeout: timeout,
	}
}

func (s *profileService) GetProfile(ctx context.Context, caller domain.Caller) (*domain.Profile, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.profileRepo.GetOrCreate(ctx, profileFor(caller))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// SaveProfile applies the set fields of update. The profile row is locked so a
// concurrent registration cannot be overwritten with stale membership sets.
func (s *profileService) SaveProfile(ctx context.Context, caller domain.Caller, update domain.ProfileUpdate) (*domain.Profile, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	var size domain.TeeShirtSize
	if update.TeeShirtSize != nil && *update.TeeShirtSize != "" {
		parsed, err := domain.ParseTeeShirtSize(string(*update.TeeShirtSize))
		if err != nil {
			return nil, err
		}
		size = parsed
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var saved *domain.Profile
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.profileRepo.GetOrCreate(ctx, profileFor(caller))
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		if update.DisplayName != nil && *update.DisplayName != "" {
			p.DisplayName = *update.DisplayName
		}
		if size != "" {
			p.TeeShirtSize = size
		}
		if err := s.profileRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
