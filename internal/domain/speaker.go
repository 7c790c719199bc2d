package domain

import (
	"context"
	"strings"
)

// Speaker is a person presenting sessions. Email is unique across speakers.
// swagger:model Speaker
type Speaker struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Gender string `json:"gender"`
}

// SpeakerInput carries the fields of a new speaker.
type SpeakerInput struct {
	Name   string
	Email  string
	Gender string
}

// Validate checks required fields.
func (in SpeakerInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return NewValidationError("speaker 'name' and 'email' fields required")
	}
	return nil
}

// SpeakerSearch selects speakers by email or by name. Email wins when both are set.
type SpeakerSearch struct {
	Email string
	Name  string
}

// SpeakerRepository defines the interface for speaker storage.
type SpeakerRepository interface {
	Create(ctx context.Context, sp *Speaker) error
	Update(ctx context.Context, sp *Speaker) error
	GetByEmail(ctx context.Context, email string) (*Speaker, error)
	GetMulti(ctx context.Context, ids []int64) ([]*Speaker, error)
	List(ctx context.Context) ([]*Speaker, error)
	ListByName(ctx context.Context, name string) ([]*Speaker, error)
}
