package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"conferencecentral/internal/domain"
)

// RegisterHandlers wires the handlers for every task kind the services submit.
func RegisterHandlers(q *Queue, emails domain.EmailService, announcements domain.AnnouncementService) {
	q.Register(domain.TaskSendConfirmationEmail, ConfirmationEmailHandler(emails))
	q.Register(domain.TaskSetFeaturedSpeaker, FeaturedSpeakerHandler(announcements))
	q.Register(domain.TaskRefreshAnnouncement, RefreshAnnouncementHandler(announcements))
}

// ConfirmationEmailHandler mails the conference snapshot in the task to its organizer.
func ConfirmationEmailHandler(emails domain.EmailService) domain.TaskHandler {
	return func(ctx context.Context, params map[string]string) error {
		var conf domain.ConferenceView
		if err := json.Unmarshal([]byte(params[domain.TaskParamConferenceInfo]), &conf); err != nil {
			return fmt.Errorf("decode conference info: %w", err)
		}
		return emails.SendConferenceCreated(ctx, &domain.ConferenceCreatedEmailData{
			Email:      params[domain.TaskParamEmail],
			Conference: conf,
		})
	}
}

// FeaturedSpeakerHandler publishes the featured speaker message.
func FeaturedSpeakerHandler(announcements domain.AnnouncementService) domain.TaskHandler {
	return func(ctx context.Context, params map[string]string) error {
		var names []string
		if err := json.Unmarshal([]byte(params[domain.TaskParamSessionNames]), &names); err != nil {
			return fmt.Errorf("decode session names: %w", err)
		}
		_, err := announcements.PublishFeaturedSpeaker(ctx, params[domain.TaskParamSpeaker], names)
		return err
	}
}

// RefreshAnnouncementHandler recomputes the nearly-sold-out announcement.
func RefreshAnnouncementHandler(announcements domain.AnnouncementService) domain.TaskHandler {
	return func(ctx context.Context, _ map[string]string) error {
		_, err := announcements.RefreshAnnouncement(ctx)
		return err
	}
}
