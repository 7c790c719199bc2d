package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var testCaller = domain.Caller{UserID: "user-1", Email: "user-1@example.com", DisplayName: "User One"}

var testConferenceRef = domain.ConferenceRef{OwnerID: "user-1", LocalID: 7}

// fakeConferenceService implements domain.ConferenceService for handler tests.
type fakeConferenceService struct {
	err         error
	view        *domain.ConferenceView
	views       []*domain.ConferenceView
	lastCaller  domain.Caller
	lastRef     domain.ConferenceRef
	lastInput   domain.ConferenceInput
	lastUpdate  domain.ConferenceUpdate
	lastFilters []domain.ConferenceFilter
}

func (f *fakeConferenceService) CreateConference(_ context.Context, caller domain.Caller, in domain.ConferenceInput) (*domain.ConferenceView, error) {
	f.lastCaller, f.lastInput = caller, in
	return f.view, f.err
}

func (f *fakeConferenceService) UpdateConference(_ context.Context, caller domain.Caller, ref domain.ConferenceRef, u domain.ConferenceUpdate) (*domain.ConferenceView, error) {
	f.lastCaller, f.lastRef, f.lastUpdate = caller, ref, u
	return f.view, f.err
}

func (f *fakeConferenceService) GetConference(_ context.Context, ref domain.ConferenceRef) (*domain.ConferenceView, error) {
	f.lastRef = ref
	return f.view, f.err
}

func (f *fakeConferenceService) ListConferencesCreated(_ context.Context, caller domain.Caller) ([]*domain.ConferenceView, error) {
	f.lastCaller = caller
	return f.views, f.err
}

func (f *fakeConferenceService) QueryConferences(_ context.Context, filters []domain.ConferenceFilter) ([]*domain.ConferenceView, error) {
	f.lastFilters = filters
	return f.views, f.err
}

func (f *fakeConferenceService) ListConferencesToAttend(_ context.Context, caller domain.Caller) ([]*domain.ConferenceView, error) {
	f.lastCaller = caller
	return f.views, f.err
}

// fakeAnnouncementService implements domain.AnnouncementService.
type fakeAnnouncementService struct {
	announcement string
	featured     string
}

func (f *fakeAnnouncementService) RefreshAnnouncement(context.Context) (string, error) {
	return f.announcement, nil
}

func (f *fakeAnnouncementService) PublishFeaturedSpeaker(context.Context, string, []string) (string, error) {
	return f.featured, nil
}

func (f *fakeAnnouncementService) Announcement(context.Context) (string, error) {
	return f.announcement, nil
}

func (f *fakeAnnouncementService) FeaturedSpeaker(context.Context) (string, error) {
	return f.featured, nil
}

// fakeProfileService implements domain.ProfileService.
type fakeProfileService struct {
	profile    *domain.Profile
	err        error
	lastUpdate domain.ProfileUpdate
}

func (f *fakeProfileService) GetProfile(_ context.Context, _ domain.Caller) (*domain.Profile, error) {
	return f.profile, f.err
}

func (f *fakeProfileService) SaveProfile(_ context.Context, _ domain.Caller, u domain.ProfileUpdate) (*domain.Profile, error) {
	f.lastUpdate = u
	return f.profile, f.err
}

// fakeRegistrationService implements domain.RegistrationService.
type fakeRegistrationService struct {
	result         bool
	err            error
	views          []*domain.SessionView
	lastRef        domain.ConferenceRef
	lastSessionRef domain.SessionRef
}

func (f *fakeRegistrationService) RegisterForConference(_ context.Context, _ domain.Caller, ref domain.ConferenceRef) (bool, error) {
	f.lastRef = ref
	return f.result, f.err
}

func (f *fakeRegistrationService) UnregisterFromConference(_ context.Context, _ domain.Caller, ref domain.ConferenceRef) (bool, error) {
	f.lastRef = ref
	return f.result, f.err
}

func (f *fakeRegistrationService) AddSessionToWishlist(_ context.Context, _ domain.Caller, ref domain.SessionRef) (bool, error) {
	f.lastSessionRef = ref
	return f.result, f.err
}

func (f *fakeRegistrationService) RemoveSessionFromWishlist(_ context.Context, _ domain.Caller, ref domain.SessionRef) (bool, error) {
	f.lastSessionRef = ref
	return f.result, f.err
}

func (f *fakeRegistrationService) ListWishlist(_ context.Context, _ domain.Caller) ([]*domain.SessionView, error) {
	return f.views, f.err
}

func (f *fakeRegistrationService) ListWishlistByConference(_ context.Context, _ domain.Caller, ref domain.ConferenceRef) ([]*domain.SessionView, error) {
	f.lastRef = ref
	return f.views, f.err
}

// fakeSessionService implements domain.SessionService.
type fakeSessionService struct {
	err         error
	view        *domain.SessionView
	views       []*domain.SessionView
	speaker     *domain.Speaker
	speakers    []*domain.Speaker
	lastRef     domain.ConferenceRef
	lastType    domain.SessionType
	lastEmail   string
	lastInput   domain.SessionInput
	lastSpeaker domain.SpeakerInput
	lastSearch  domain.SpeakerSearch
}

func (f *fakeSessionService) CreateSession(_ context.Context, _ domain.Caller, ref domain.ConferenceRef, in domain.SessionInput) (*domain.SessionView, error) {
	f.lastRef, f.lastInput = ref, in
	return f.view, f.err
}

func (f *fakeSessionService) ListSessions(_ context.Context, ref domain.ConferenceRef) ([]*domain.SessionView, error) {
	f.lastRef = ref
	return f.views, f.err
}

func (f *fakeSessionService) ListSessionsByType(_ context.Context, ref domain.ConferenceRef, t domain.SessionType) ([]*domain.SessionView, error) {
	f.lastRef, f.lastType = ref, t
	return f.views, f.err
}

func (f *fakeSessionService) ListSessionsBySpeakerEmail(_ context.Context, email string) ([]*domain.SessionView, error) {
	f.lastEmail = email
	return f.views, f.err
}

func (f *fakeSessionService) ListPreferredSessions(_ context.Context, ref domain.ConferenceRef) ([]*domain.SessionView, error) {
	f.lastRef = ref
	return f.views, f.err
}

func (f *fakeSessionService) CreateSpeaker(_ context.Context, _ domain.Caller, in domain.SpeakerInput) (*domain.Speaker, error) {
	f.lastSpeaker = in
	return f.speaker, f.err
}

func (f *fakeSessionService) ListSpeakers(context.Context) ([]*domain.Speaker, error) {
	return f.speakers, f.err
}

func (f *fakeSessionService) ListSpeakersByConference(_ context.Context, ref domain.ConferenceRef) ([]*domain.Speaker, error) {
	f.lastRef = ref
	return f.speakers, f.err
}

func (f *fakeSessionService) FindSpeakers(_ context.Context, search domain.SpeakerSearch) ([]*domain.Speaker, error) {
	f.lastSearch = search
	return f.speakers, f.err
}

// serve routes a single request to handler registered under pattern, optionally as testCaller.
func serve(t *testing.T, pattern string, handler http.HandlerFunc, method, target, body string, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if authenticated {
		req = req.WithContext(middleware.SetCaller(req.Context(), testCaller))
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var envelope struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if dest != nil && envelope.Error == nil {
		require.NoError(t, json.Unmarshal(envelope.Data, dest))
	}
	return envelope.Error
}
