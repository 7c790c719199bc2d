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

type sessionService struct {
	conferenceRepo domain.ConferenceRepository
	sessionRepo    domain.SessionRepository
	speakerRepo    domain.SpeakerRepository
	tasks          domain.TaskQueue
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewSessionService creates the SessionService for sessions and speakers.
func NewSessionService(
	conferenceRepo domain.ConferenceRepository,
	sessionRepo domain.SessionRepository,
	speakerRepo domain.SpeakerRepository,
	tasks domain.TaskQueue,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SessionService {
	return &sessionService{
		conferenceRepo: conferenceRepo,
		sessionRepo:    sessionRepo,
		speakerRepo:    speakerRepo,
		tasks:          tasks,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *sessionService) CreateSession(ctx context.Context, caller domain.Caller, conference domain.ConferenceRef, in domain.SessionInput) (*domain.SessionView, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	conf, err := s.conferenceRepo.Get(ctx, conference)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if !conf.IsOwnedBy(caller.UserID) {
		return nil, domain.ErrForbidden
	}
	sess, err := newSession(conference, in)
	if err != nil {
		return nil, err
	}

	var speaker *domain.Speaker
	if email := strings.TrimSpace(in.SpeakerEmail); email != "" {
		speaker, err = s.upsertSpeaker(ctx, domain.SpeakerInput{Name: in.SpeakerName, Email: email, Gender: in.SpeakerGender})
		if err != nil {
			return nil, err
		}
		sess.SpeakerID = &speaker.ID
	}

	id, err := s.sessionRepo.AllocateID(ctx, conference)
	if err != nil {
		return nil, fmt.Errorf("allocate session id: %w", err)
	}
	sess.Key = domain.SessionRef{Conference: conference, LocalID: id}
	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	view := &domain.SessionView{Session: *sess}
	if speaker != nil {
		view.SpeakerName = speaker.Name
		view.SpeakerEmail = speaker.Email
		view.SpeakerGender = speaker.Gender
		s.checkFeaturedSpeaker(ctx, conference, speaker)
	}
	return view, nil
}

func newSession(conference domain.ConferenceRef, in domain.SessionInput) (*domain.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sess := &domain.Session{
		ConferenceKey: conference,
		Name:          strings.TrimSpace(in.Name),
		Highlights:    in.Highlights,
		Duration:      in.Duration,
	}
	for _, raw := range in.TypeOfSession {
		t, err := domain.ParseSessionType(raw)
		if err != nil {
			return nil, err
		}
		if !sess.HasType(t) {
			sess.TypeOfSession = append(sess.TypeOfSession, t)
		}
	}
	if len(sess.TypeOfSession) == 0 {
		sess.TypeOfSession = []domain.SessionType{domain.SessionTypeNotSpecified}
	}
	date, err := parseOptionalDate(in.Date)
	if err != nil {
		return nil, err
	}
	sess.Date = date
	if strings.TrimSpace(in.StartTime) != "" {
		t, err := domain.ParseTimeOfDay(strings.TrimSpace(in.StartTime))
		if err != nil {
			return nil, err
		}
		sess.StartTime = &t
	}
	return sess, nil
}

// upsertSpeaker updates the speaker with in.Email or creates one. Empty name or
// gender keep the stored values.
func (s *sessionService) upsertSpeaker(ctx context.Context, in domain.SpeakerInput) (*domain.Speaker, error) {
	sp, err := s.speakerRepo.GetByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if in.Name != "" {
			sp.Name = in.Name
		}
		if in.Gender != "" {
			sp.Gender = in.Gender
		}
		if err := s.speakerRepo.Update(ctx, sp); err != nil {
			return nil, fmt.Errorf("update speaker: %w", err)
		}
		return sp, nil
	case errors.Is(err, domain.ErrNotFound):
		sp = &domain.Speaker{Name: in.Name, Email: in.Email, Gender: in.Gender}
		if sp.Name == "" {
			sp.Name = in.Email
		}
		if err := s.speakerRepo.Create(ctx, sp); err != nil {
			if errors.Is(err, domain.ErrDuplicateSpeakerEmail) {
				// Lost a race with another create for the same email.
				return s.upsertSpeaker(ctx, in)
			}
			return nil, fmt.Errorf("create speaker: %w", err)
		}
		return sp, nil
	default:
		return nil, fmt.Errorf("get speaker: %w", err)
	}
}

// checkFeaturedSpeaker queues a featured-speaker update when speaker has more
// than one session in the conference. Failures are logged only.
func (s *sessionService) checkFeaturedSpeaker(ctx context.Context, conference domain.ConferenceRef, speaker *domain.Speaker) {
	sessions, err := s.sessionRepo.ListByConferenceAndSpeaker(ctx, conference, speaker.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "featured speaker lookup failed", "conference", conference.String(), "speaker_id", speaker.ID, "err", err)
		return
	}
	if len(sessions) <= 1 {
		return
	}
	names := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		names = append(names, sess.Name)
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		s.logger.WarnContext(ctx, "encode featured sessions", "err", err)
		return
	}
	s.tasks.Submit(domain.TaskSetFeaturedSpeaker, map[string]string{
		domain.TaskParamSpeaker:      speaker.Name,
		domain.TaskParamSessionNames: string(encoded),
	})
}

func (s *sessionService) ListSessions(ctx context.Context, conference domain.ConferenceRef) ([]*domain.SessionView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions, err := s.sessionRepo.ListByConference(ctx, conference)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessionViews(ctx, s.speakerRepo, sessions)
}

func (s *sessionService) ListSessionsByType(ctx context.Context, conference domain.ConferenceRef, t domain.SessionType) ([]*domain.SessionView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions, err := s.sessionRepo.ListByConferenceAndType(ctx, conference, t)
	if err != nil {
		return nil, fmt.Errorf("list sessions by type: %w", err)
	}
	return sessionViews(ctx, s.speakerRepo, sessions)
}

func (s *sessionService) ListSessionsBySpeakerEmail(ctx context.Context, email string) ([]*domain.SessionView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	speaker, err := s.speakerRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no speaker found with email address %s", domain.ErrNotFound, email)
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	sessions, err := s.sessionRepo.ListBySpeaker(ctx, speaker.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions by speaker: %w", err)
	}
	return sessionViews(ctx, s.speakerRepo, sessions)
}

// ListPreferredSessions returns sessions that are not workshops and start before 19:00.
// The store filters on type; the start time filter runs here since the store
// allows an inequality on one property only.
func (s *sessionService) ListPreferredSessions(ctx context.Context, conference domain.ConferenceRef) ([]*domain.SessionView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	candidates, err := s.sessionRepo.ListByConferenceExcludingType(ctx, conference, domain.SessionTypeWorkshop)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions := make([]*domain.Session, 0, len(candidates))
	for _, sess := range candidates {
		if sess.StartsBefore(domain.PreferredSessionCutoff) {
			sessions = append(sessions, sess)
		}
	}
	return sessionViews(ctx, s.speakerRepo, sessions)
}

func (s *sessionService) CreateSpeaker(ctx context.Context, caller domain.Caller, in domain.SpeakerInput) (*domain.Speaker, error) {
	if !caller.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sp := &domain.Speaker{
		Name:   strings.TrimSpace(in.Name),
		Email:  strings.TrimSpace(in.Email),
		Gender: in.Gender,
	}
	if err := s.speakerRepo.Create(ctx, sp); err != nil {
		if errors.Is(err, domain.ErrDuplicateSpeakerEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create speaker: %w", err)
	}
	return sp, nil
}

func (s *sessionService) ListSpeakers(ctx context.Context) ([]*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	speakers, err := s.speakerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list speakers: %w", err)
	}
	return speakers, nil
}

func (s *sessionService) ListSpeakersByConference(ctx context.Context, conference domain.ConferenceRef) ([]*domain.Speaker, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	sessions, err := s.sessionRepo.ListByConference(ctx, conference)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	speakers, err := s.speakerRepo.GetMulti(ctx, speakerIDs(sessions))
	if err != nil {
		return nil, fmt.Errorf("get speakers: %w", err)
	}
	return speakers, nil
}

func (s *sessionService) FindSpeakers(ctx context.Context, search domain.SpeakerSearch) ([]*domain.Speaker, error) {
	email := strings.TrimSpace(search.Email)
	name := strings.TrimSpace(search.Name)
	if email == "" && name == "" {
		return nil, domain.NewValidationError("speaker 'email' or 'name' required")
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if email != "" {
		sp, err := s.speakerRepo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return []*domain.Speaker{}, nil
			}
			return nil, fmt.Errorf("get speaker: %w", err)
		}
		return []*domain.Speaker{sp}, nil
	}
	speakers, err := s.speakerRepo.ListByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("list speakers by name: %w", err)
	}
	return speakers, nil
}
