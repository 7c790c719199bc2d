package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conferencecentral/internal/domain"
)

type conferenceService struct {
	profileRepo    domain.ProfileRepository
	conferenceRepo domain.ConferenceRepository
	tx             domain.TxManager
	tasks          domain.TaskQueue
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewConferenceService creates a ConferenceService. Confirmation emails and
// announcement refreshes are handed to tasks after each write.
func NewConferenceService(
	profileRepo domain.ProfileRepository,
	conferenceRepo domain.ConferenceRepository,
	tx domain.TxManager,
	tasks domain.TaskQueue,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ConferenceService {
	return &conferenceService{
		profileRepo:    profileRepo,
		conferenceRepo: conferenceRepo,
		tx:             tx,
		tasks:          tasks,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *conferenceService) CreateConference(ctx context.Context, caller domain.Caller, in domain.ConferenceInput) (*domain.ConferenceView, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	startDate, err := parseOptionalDate(in.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate(in.EndDate)
	if err != nil {
		return nil, err
	}

	organizer, err := s.profileRepo.GetOrCreate(ctx, profileFor(caller))
	if err != nil {
		return nil, fmt.Errorf("get organizer profile: %w", err)
	}

	conf := &domain.Conference{
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		OrganizerUserID: caller.UserID,
		Topics:          in.Topics,
		City:            in.City,
		EndDate:         endDate,
		MaxAttendees:    in.MaxAttendees,
	}
	if conf.City == "" {
		conf.City = domain.DefaultConferenceCity
	}
	if len(conf.Topics) == 0 {
		conf.Topics = domain.DefaultConferenceTopics()
	}
	conf.SetStartDate(startDate)
	if conf.MaxAttendees > 0 {
		conf.SeatsAvailable = conf.MaxAttendees
	}

	id, err := s.conferenceRepo.AllocateID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("allocate conference id: %w", err)
	}
	conf.Key = domain.ConferenceRef{OwnerID: caller.UserID, LocalID: id}
	if err := s.conferenceRepo.Create(ctx, conf); err != nil {
		return nil, fmt.Errorf("create conference: %w", err)
	}

	view := &domain.ConferenceView{Conference: *conf, OrganizerDisplayName: organizer.DisplayName}
	s.submitConfirmation(caller.Email, view)
	s.tasks.Submit(domain.TaskRefreshAnnouncement, nil)
	return view, nil
}

func (s *conferenceService) submitConfirmation(email string, view *domain.ConferenceView) {
	if email == "" {
		return
	}
	snapshot, err := json.Marshal(view)
	if err != nil {
		s.logger.Warn("encode conference snapshot", "conference", view.Key.String(), "err", err)
		return
	}
	s.tasks.Submit(domain.TaskSendConfirmationEmail, map[string]string{
		domain.TaskParamEmail:          email,
		domain.TaskParamConferenceInfo: string(snapshot),
	})
}

func (s *conferenceService) UpdateConference(ctx context.Context, caller domain.Caller, ref domain.ConferenceRef, update domain.ConferenceUpdate) (*domain.ConferenceView, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var updated *domain.Conference
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		conf, err := s.conferenceRepo.Get(ctx, ref)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get conference: %w", err)
		}
		if !conf.IsOwnedBy(caller.UserID) {
			return domain.ErrForbidden
		}
		if err := applyConferenceUpdate(conf, update); err != nil {
			return err
		}
		if err := s.conferenceRepo.Update(ctx, conf); err != nil {
			return fmt.Errorf("update conference: %w", err)
		}
		updated = conf
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.tasks.Submit(domain.TaskRefreshAnnouncement, nil)

	views, err := conferenceViews(ctx, s.profileRepo, []*domain.Conference{updated})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// applyConferenceUpdate copies the set fields of u onto c. Changing maxAttendees
// keeps the number of registered attendees and moves seatsAvailable with it.
func applyConferenceUpdate(c *domain.Conference, u domain.ConferenceUpdate) error {
	if u.Name != nil && strings.TrimSpace(*u.Name) != "" {
		c.Name = strings.TrimSpace(*u.Name)
	}
	if u.Description != nil && *u.Description != "" {
		c.Description = *u.Description
	}
	if u.Topics != nil {
		c.Topics = u.Topics
	}
	if u.City != nil && *u.City != "" {
		c.City = *u.City
	}
	if u.StartDate != nil && *u.StartDate != "" {
		d, err := domain.ParseDate(*u.StartDate)
		if err != nil {
			return err
		}
		c.SetStartDate(&d)
	}
	if u.EndDate != nil && *u.EndDate != "" {
		d, err := domain.ParseDate(*u.EndDate)
		if err != nil {
			return err
		}
		c.EndDate = &d
	}
	if u.MaxAttendees != nil && *u.MaxAttendees != c.MaxAttendees {
		registered := c.Registered()
		if *u.MaxAttendees < registered {
			return domain.NewValidationError("max attendees cannot be lower than the %d registered attendees", registered)
		}
		c.MaxAttendees = *u.MaxAttendees
		c.SeatsAvailable = c.MaxAttendees - registered
	}
	return nil
}

func (s *conferenceService) GetConference(ctx context.Context, ref domain.ConferenceRef) (*domain.ConferenceView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.conferenceRepo.Get(ctx, ref)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	views, err := conferenceViews(ctx, s.profileRepo, []*domain.Conference{conf})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *conferenceService) ListConferencesCreated(ctx context.Context, caller domain.Caller) ([]*domain.ConferenceView, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	confs, err := s.conferenceRepo.ListByOrganizer(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list conferences: %w", err)
	}
	return conferenceViews(ctx, s.profileRepo, confs)
}

func (s *conferenceService) QueryConferences(ctx context.Context, filters []domain.ConferenceFilter) ([]*domain.ConferenceView, error) {
	q, err := domain.BuildConferenceQuery(filters)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	confs, err := s.conferenceRepo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	return conferenceViews(ctx, s.profileRepo, confs)
}

func (s *conferenceService) ListConferencesToAttend(ctx context.Context, caller domain.Caller) ([]*domain.ConferenceView, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.profileRepo.GetOrCreate(ctx, profileFor(caller))
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	confs, err := s.conferenceRepo.GetMulti(ctx, p.ConferenceKeysToAttend)
	if err != nil {
		return nil, fmt.Errorf("get conferences: %w", err)
	}
	return conferenceViews(ctx, s.profileRepo, confs)
}
