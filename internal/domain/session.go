package domain

import (
	"context"
	"slices"
	"strings"
)

// SessionType classifies a session.
type SessionType string

const (
	SessionTypeNotSpecified SessionType = "NOT_SPECIFIED"
	SessionTypeWorkshop     SessionType = "WORKSHOP"
	SessionTypeLecture      SessionType = "LECTURE"
	SessionTypeKeynote      SessionType = "KEYNOTE"
	SessionTypeLunch        SessionType = "LUNCH"
	SessionTypeDinner       SessionType = "DINNER"
	SessionTypeParty        SessionType = "PARTY"
)

var sessionTypes = []SessionType{
	SessionTypeNotSpecified,
	SessionTypeWorkshop,
	SessionTypeLecture,
	SessionTypeKeynote,
	SessionTypeLunch,
	SessionTypeDinner,
	SessionTypeParty,
}

// ParseSessionType validates a session type name, case-insensitively.
func ParseSessionType(s string) (SessionType, error) {
	t := SessionType(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(sessionTypes, t) {
		return "", NewValidationError("unknown session type %q", s)
	}
	return t, nil
}

// PreferredSessionCutoff is the start time at or after which a session is
// excluded from the preferred-sessions listing.
var PreferredSessionCutoff = TimeOfDay{Hour: 19}

// Session is a talk or activity scheduled inside a conference.
// swagger:model Session
type Session struct {
	Key           SessionRef    `json:"websafe_key"`
	ConferenceKey ConferenceRef `json:"websafe_conference_key"`
	Name          string        `json:"name"`
	Highlights    string        `json:"highlights"`
	SpeakerID     *int64        `json:"speaker_id,omitempty"`
	Duration      int           `json:"duration"`
	TypeOfSession []SessionType `json:"type_of_session"`
	Date          *Date         `json:"date,omitempty"`
	StartTime     *TimeOfDay    `json:"start_time,omitempty"`
}

// HasType reports whether t is one of the session's types.
func (s *Session) HasType(t SessionType) bool {
	return slices.Contains(s.TypeOfSession, t)
}

// StartsBefore reports whether the session has a start time strictly earlier than cutoff.
// Sessions without a start time are kept.
func (s *Session) StartsBefore(cutoff TimeOfDay) bool {
	return s.StartTime == nil || s.StartTime.Before(cutoff)
}

// SessionView is a session as returned to clients, with its speaker resolved.
// swagger:model SessionView
type SessionView struct {
	Session
	SpeakerName   string `json:"speaker_name,omitempty"`
	SpeakerEmail  string `json:"speaker_email,omitempty"`
	SpeakerGender string `json:"speaker_gender,omitempty"`
}

// SessionInput carries the fields of a new session. Date is YYYY-MM-DD and StartTime HH:MM.
// When SpeakerEmail is set the speaker is upserted by email.
type SessionInput struct {
	Name          string
	Highlights    string
	Duration      int
	TypeOfSession []string
	Date          string
	StartTime     string
	SpeakerName   string
	SpeakerEmail  string
	SpeakerGender string
}

// Validate checks required fields.
func (in SessionInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("session 'name' field required")
	}
	if in.Duration < 0 {
		return NewValidationError("duration must not be negative")
	}
	return nil
}

// SessionRepository defines the interface for session storage.
type SessionRepository interface {
	AllocateID(ctx context.Context, conference ConferenceRef) (int64, error)
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, ref SessionRef) (*Session, error)
	GetMulti(ctx context.Context, refs []SessionRef) ([]*Session, error)
	// ListByConference returns the sessions of a conference ordered by name.
	ListByConference(ctx context.Context, conference ConferenceRef) ([]*Session, error)
	ListByConferenceAndType(ctx context.Context, conference ConferenceRef, t SessionType) ([]*Session, error)
	ListByConferenceExcludingType(ctx context.Context, conference ConferenceRef, t SessionType) ([]*Session, error)
	// ListByConferenceAndSpeaker returns sessions in creation order.
	ListByConferenceAndSpeaker(ctx context.Context, conference ConferenceRef, speakerID int64) ([]*Session, error)
	ListBySpeaker(ctx context.Context, speakerID int64) ([]*Session, error)
}

// SessionService defines the business logic for sessions and speakers.
type SessionService interface {
	CreateSession(ctx context.Context, caller Caller, conference ConferenceRef, in SessionInput) (*SessionView, error)
	ListSessions(ctx context.Context, conference ConferenceRef) ([]*SessionView, error)
	ListSessionsByType(ctx context.Context, conference ConferenceRef, t SessionType) ([]*SessionView, error)
	ListSessionsBySpeakerEmail(ctx context.Context, email string) ([]*SessionView, error)
	ListPreferredSessions(ctx context.Context, conference ConferenceRef) ([]*SessionView, error)

	CreateSpeaker(ctx context.Context, caller Caller, in SpeakerInput) (*Speaker, error)
	ListSpeakers(ctx context.Context) ([]*Speaker, error)
	ListSpeakersByConference(ctx context.Context, conference ConferenceRef) ([]*Speaker, error)
	FindSpeakers(ctx context.Context, search SpeakerSearch) ([]*Speaker, error)
}
