package services

import (
	"context"
	"fmt"
	"strings"

	"conferencecentral/internal/domain"
)

// profileFor returns the profile a first-time caller gets.
func profileFor(caller domain.Caller) *domain.Profile {
	displayName := caller.DisplayName
	if displayName == "" {
		displayName, _, _ = strings.Cut(caller.Email, "@")
	}
	return domain.NewProfile(caller.UserID, displayName, caller.Email)
}

// conferenceViews attaches organizer display names resolved with one batched lookup.
func conferenceViews(ctx context.Context, profiles domain.ProfileRepository, confs []*domain.Conference) ([]*domain.ConferenceView, error) {
	views := make([]*domain.ConferenceView, 0, len(confs))
	if len(confs) == 0 {
		return views, nil
	}
	seen := make(map[string]struct{}, len(confs))
	var owners []string
	for _, c := range confs {
		if _, ok := seen[c.OrganizerUserID]; ok {
			continue
		}
		seen[c.OrganizerUserID] = struct{}{}
		owners = append(owners, c.OrganizerUserID)
	}
	byID, err := profiles.GetMulti(ctx, owners)
	if err != nil {
		return nil, fmt.Errorf("get organizers: %w", err)
	}
	for _, c := range confs {
		v := &domain.ConferenceView{Conference: *c}
		if p, ok := byID[c.OrganizerUserID]; ok {
			v.OrganizerDisplayName = p.DisplayName
		}
		views = append(views, v)
	}
	return views, nil
}

// sessionViews attaches speaker details resolved with one batched lookup.
func sessionViews(ctx context.Context, speakers domain.SpeakerRepository, sessions []*domain.Session) ([]*domain.SessionView, error) {
	views := make([]*domain.SessionView, 0, len(sessions))
	if len(sessions) == 0 {
		return views, nil
	}
	ids := speakerIDs(sessions)
	byID := make(map[int64]*domain.Speaker, len(ids))
	if len(ids) > 0 {
		found, err := speakers.GetMulti(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("get speakers: %w", err)
		}
		for _, sp := range found {
			byID[sp.ID] = sp
		}
	}
	for _, s := range sessions {
		v := &domain.SessionView{Session: *s}
		if s.SpeakerID != nil {
			if sp, ok := byID[*s.SpeakerID]; ok {
				v.SpeakerName = sp.Name
				v.SpeakerEmail = sp.Email
				v.SpeakerGender = sp.Gender
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// speakerIDs returns the distinct speaker ids of sessions in first-seen order.
func speakerIDs(sessions []*domain.Session) []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, s := range sessions {
		if s.SpeakerID == nil {
			continue
		}
		if _, ok := seen[*s.SpeakerID]; ok {
			continue
		}
		seen[*s.SpeakerID] = struct{}{}
		ids = append(ids, *s.SpeakerID)
	}
	return ids
}

func parseOptionalDate(s string) (*domain.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
