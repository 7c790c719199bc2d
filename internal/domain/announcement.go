package domain

import "context"

// Message formats of the derived cache entries.
const (
	AnnouncementFormat    = "Last chance to attend! The following conferences are nearly sold out: %s"
	FeaturedSpeakerFormat = "Join Featured Speaker %s for the following sessions: %s"
)

// AnnouncementService recomputes and reads the announcement and featured-speaker messages.
type AnnouncementService interface {
	// RefreshAnnouncement rebuilds the nearly-sold-out announcement from stored conferences.
	RefreshAnnouncement(ctx context.Context) (string, error)
	PublishFeaturedSpeaker(ctx context.Context, speakerName string, sessionNames []string) (string, error)
	Announcement(ctx context.Context) (string, error)
	FeaturedSpeaker(ctx context.Context) (string, error)
}
