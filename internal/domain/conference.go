package domain

import (
	"context"
	"strings"
)

// Defaults applied to conference fields left unset on creation.
const (
	DefaultConferenceCity = "Default City"
)

// DefaultConferenceTopics returns the placeholder topics stored when none are given.
func DefaultConferenceTopics() []string {
	return []string{"Default", "Topic"}
}

// Conference is an event created and owned by an organizer profile.
// swagger:model Conference
type Conference struct {
	Key             ConferenceRef `json:"websafe_key"`
	Name            string        `json:"name"`
	Description     string        `json:"description"`
	OrganizerUserID string        `json:"organizer_user_id"`
	Topics          []string      `json:"topics"`
	City            string        `json:"city"`
	StartDate       *Date         `json:"start_date,omitempty"`
	EndDate         *Date         `json:"end_date,omitempty"`
	Month           int           `json:"month"`
	MaxAttendees    int           `json:"max_attendees"`
	SeatsAvailable  int           `json:"seats_available"`
}

// SetStartDate stores the start date and recomputes the derived month.
func (c *Conference) SetStartDate(d *Date) {
	c.StartDate = d
	c.Month = 0
	if d != nil {
		c.Month = int(d.Month())
	}
}

// Registered returns the number of seats taken.
func (c *Conference) Registered() int {
	return c.MaxAttendees - c.SeatsAvailable
}

// IsOwnedBy reports whether userID organizes the conference.
func (c *Conference) IsOwnedBy(userID string) bool {
	return userID != "" && c.OrganizerUserID == userID
}

// ConferenceView is a conference as returned to clients.
// swagger:model ConferenceView
type ConferenceView struct {
	Conference
	OrganizerDisplayName string `json:"organizer_display_name"`
}

// ConferenceInput carries the fields of a new conference. Dates are YYYY-MM-DD text.
type ConferenceInput struct {
	Name         string
	Description  string
	Topics       []string
	City         string
	StartDate    string
	EndDate      string
	MaxAttendees int
}

// Validate checks required fields.
func (in ConferenceInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("conference 'name' field required")
	}
	if in.MaxAttendees < 0 {
		return NewValidationError("max attendees must not be negative")
	}
	return nil
}

// ConferenceUpdate carries the fields of a partial conference update.
// Nil pointers and a nil Topics slice leave the stored value unchanged; so do empty strings.
type ConferenceUpdate struct {
	Name         *string
	Description  *string
	Topics       []string
	City         *string
	StartDate    *string
	EndDate      *string
	MaxAttendees *int
}

// ConferenceRepository defines the interface for conference storage.
// Inside a transaction, Get locks the row until commit.
type ConferenceRepository interface {
	AllocateID(ctx context.Context, ownerID string) (int64, error)
	Create(ctx context.Context, c *Conference) error
	Get(ctx context.Context, ref ConferenceRef) (*Conference, error)
	GetMulti(ctx context.Context, refs []ConferenceRef) ([]*Conference, error)
	Update(ctx context.Context, c *Conference) error
	ListByOrganizer(ctx context.Context, ownerID string) ([]*Conference, error)
	Query(ctx context.Context, q ConferenceQuery) ([]*Conference, error)
	QueryNames(ctx context.Context, q ConferenceQuery) ([]string, error)
}

// ConferenceService defines the business logic for conferences.
type ConferenceService interface {
	CreateConference(ctx context.Context, caller Caller, in ConferenceInput) (*ConferenceView, error)
	UpdateConference(ctx context.Context, caller Caller, ref ConferenceRef, update ConferenceUpdate) (*ConferenceView, error)
	GetConference(ctx context.Context, ref ConferenceRef) (*ConferenceView, error)
	ListConferencesCreated(ctx context.Context, caller Caller) ([]*ConferenceView, error)
	QueryConferences(ctx context.Context, filters []ConferenceFilter) ([]*ConferenceView, error)
	ListConferencesToAttend(ctx context.Context, caller Caller) ([]*ConferenceView, error)
}
