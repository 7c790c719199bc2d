package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conferencecentral/internal/domain"
)

type announcementService struct {
	conferenceRepo domain.ConferenceRepository
	cache          domain.Cache
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAnnouncementService creates the AnnouncementService that keeps the derived
// messages in cache.
func NewAnnouncementService(conferenceRepo domain.ConferenceRepository, cache domain.Cache, logger *slog.Logger, timeout time.Duration) domain.AnnouncementService {
	return &announcementService{
		conferenceRepo: conferenceRepo,
		cache:          cache,
		logger:         logger,
		contextTimeout: timeout,
	}
}

// RefreshAnnouncement lists conferences with 0 < seatsAvailable <= 5. The cache
// entry is cleared when there are none.
func (s *announcementService) RefreshAnnouncement(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	names, err := s.conferenceRepo.QueryNames(ctx, domain.NearlySoldOutQuery())
	if err != nil {
		return "", fmt.Errorf("query nearly sold out conferences: %w", err)
	}
	if len(names) == 0 {
		if err := s.cache.Clear(ctx, domain.CacheKeyAnnouncement); err != nil {
			return "", fmt.Errorf("clear announcement: %w", err)
		}
		return "", nil
	}
	announcement := fmt.Sprintf(domain.AnnouncementFormat, strings.Join(names, ", "))
	if err := s.cache.Set(ctx, domain.CacheKeyAnnouncement, announcement); err != nil {
		return "", fmt.Errorf("set announcement: %w", err)
	}
	return announcement, nil
}

func (s *announcementService) PublishFeaturedSpeaker(ctx context.Context, speakerName string, sessionNames []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	featured := fmt.Sprintf(domain.FeaturedSpeakerFormat, speakerName, strings.Join(sessionNames, ", "))
	if err := s.cache.Set(ctx, domain.CacheKeyFeaturedSpeaker, featured); err != nil {
		return "", fmt.Errorf("set featured speaker: %w", err)
	}
	return featured, nil
}

func (s *announcementService) Announcement(ctx context.Context) (string, error) {
	return s.read(ctx, domain.CacheKeyAnnouncement)
}

func (s *announcementService) FeaturedSpeaker(ctx context.Context) (string, error) {
	return s.read(ctx, domain.CacheKeyFeaturedSpeaker)
}

// read treats a miss or an unreachable cache as an empty message.
func (s *announcementService) read(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed", "key", key, "err", err)
		return "", nil
	}
	if !ok {
		return "", nil
	}
	return value, nil
}
