package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

type registrationService struct {
	profileRepo    domain.ProfileRepository
	conferenceRepo domain.ConferenceRepository
	sessionRepo    domain.SessionRepository
	speakerRepo    domain.SpeakerRepository
	tx             domain.TxManager
	tasks          domain.TaskQueue
	contextTimeout time.Duration
}

// NewRegistrationService creates the RegistrationService. Seat counts and
// membership sets are only changed inside tx, with the profile locked before
// the conference.
func NewRegistrationService(
	profileRepo domain.ProfileRepository,
	conferenceRepo domain.ConferenceRepository,
	sessionRepo domain.SessionRepository,
	speakerRepo domain.SpeakerRepository,
	tx domain.TxManager,
	tasks domain.TaskQueue,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		profileRepo:    profileRepo,
		conferenceRepo: conferenceRepo,
		sessionRepo:    sessionRepo,
		speakerRepo:    speakerRepo,
		tx:             tx,
		tasks:          tasks,
		contextTimeout: timeout,
	}
}

func (s *registrationService) RegisterForConference(ctx context.Context, caller domain.Caller, ref domain.ConferenceRef) (bool, error) {
	if !caller.Authenticated() {
		return false, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, conf, err := s.loadForRegistration(ctx, caller, ref)
		if err != nil {
			return err
		}
		if p.IsAttending(ref) {
			return domain.ErrAlreadyRegistered
		}
		if conf.SeatsAvailable <= 0 {
			return domain.ErrNoSeatsAvailable
		}
		p.Attend(ref)
		conf.SeatsAvailable--
		return s.save(ctx, p, conf)
	})
	if err != nil {
		return false, err
	}
	s.tasks.Submit(domain.TaskRefreshAnnouncement, nil)
	return true, nil
}

// UnregisterFromConference returns false without error when the caller was not registered.
func (s *registrationService) UnregisterFromConference(ctx context.Context, caller domain.Caller, ref domain.ConferenceRef) (bool, error) {
	if !caller.Authenticated() {
		return false, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var removed bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, conf, err := s.loadForRegistration(ctx, caller, ref)
		if err != nil {
			return err
		}
		if !p.Unattend(ref) {
			return nil
		}
		if conf.SeatsAvailable < conf.MaxAttendees {
			conf.SeatsAvailable++
		}
		removed = true
		return s.save(ctx, p, conf)
	})
	if err != nil {
		return false, err
	}
	if removed {
		s.tasks.Submit(domain.TaskRefreshAnnouncement, nil)
	}
	return removed, nil
}

func (s *registrationService) loadForRegistration(ctx context.Context, caller domain.Caller, ref domain.ConferenceRef) (*domain.Profile, *domain.Conference, error) {
	p, err := s.profileRepo.GetOrCreate(ctx, profileFor(caller))
	if err != nil {
		return nil, nil, fmt.Errorf("get profile: %w", err)
	}
	conf, err := s.conferenceRepo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get conference: %w", err)
	}
	return p, conf, nil
}

func (s *registrationService) save(ctx context.Context, p *domain.Profile, conf *domain.Conference) error {
	if err := s.profileRepo.Update(ctx, p); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if err := s.conferenceRepo.Update(ctx, conf); err != nil {
		return fmt.Errorf("update conference: %w", err)
	}
	return nil
}

func (s *registrationService) AddSessionToWishlist(ctx context.Context, caller domain.Caller, ref domain.SessionRef) (bool, error) {
	return s.updateWishlist(ctx, caller, ref, func(p *domain.Profile) (bool, error) {
		if !p.Wish(ref) {
			return false, domain.ErrAlreadyWishlisted
		}
		return true, nil
	})
}

// RemoveSessionFromWishlist returns false without error when the session was not wishlisted.
func (s *registrationService) RemoveSessionFromWishlist(ctx context.Context, caller domain.Caller, ref domain.SessionRef) (bool, error) {
	return s.updateWishlist(ctx, caller, ref, func(p *domain.Profile) (bool, error) {
		return p.Unwish(ref), nil
	})
}

func (s *registrationService) updateWishlist(ctx context.Context, caller domain.Caller, ref domain.SessionRef, mutate func(p *domain.Profile) (bool, error)) (bool, error) {
	if !caller.Authenticated() {
		return false, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var changed bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.profileRepo.GetOrCreate(ctx, profileFor(caller))
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		if _, err := s.sessionRepo.Get(ctx, ref); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get session: %w", err)
		}
		changed, err = mutate(p)
		if err != nil || !changed {
			return err
		}
		if err := s.profileRepo.Update(ctx, p); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (s *registrationService) ListWishlist(ctx context.Context, caller domain.Caller) ([]*domain.SessionView, error) {
	return s.listWishlist(ctx, caller, func(domain.SessionRef) bool { return true })
}

// ListWishlistByConference keeps the wishlisted sessions whose parent conference is conference.
func (s *registrationService) ListWishlistByConference(ctx context.Context, caller domain.Caller, conference domain.ConferenceRef) ([]*domain.SessionView, error) {
	return s.listWishlist(ctx, caller, func(ref domain.SessionRef) bool { return ref.Conference == conference })
}

func (s *registrationService) listWishlist(ctx context.Context, caller domain.Caller, keep func(domain.SessionRef) bool) ([]*domain.SessionView, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.profileRepo.GetOrCreate(ctx, profileFor(caller))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	refs := make([]domain.SessionRef, 0, len(p.SessionKeysWishlist))
	for _, ref := range p.SessionKeysWishlist {
		if keep(ref) {
			refs = append(refs, ref)
		}
	}
	sessions, err := s.sessionRepo.GetMulti(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}
	return sessionViews(ctx, s.speakerRepo, sessions)
}
