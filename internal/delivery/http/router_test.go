package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type rejectAll struct{}

func (rejectAll) Verify(context.Context, string) (domain.Caller, error) {
	return domain.Caller{}, domain.ErrUnauthenticated
}

type staticAnnouncements struct{ domain.AnnouncementService }

func (staticAnnouncements) Announcement(context.Context) (string, error)    { return "a", nil }
func (staticAnnouncements) FeaturedSpeaker(context.Context) (string, error) { return "f", nil }

func newTestRouter() *http.ServeMux {
	announcements := staticAnnouncements{}
	return NewRouter(Controllers{
		Conference:   controllers.NewConferenceController(testLogger, nil, announcements),
		Profile:      controllers.NewProfileController(testLogger, nil),
		Registration: controllers.NewRegistrationController(testLogger, nil),
		Session:      controllers.NewSessionController(testLogger, nil, announcements),
	}, middleware.RequireAuth(rejectAll{}, testLogger))
}

func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter()
	for _, path := range []string{"/announcement", "/speakers/featured", "/healthz"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestRouter_GuardedRoutes(t *testing.T) {
	router := newTestRouter()
	key := domain.ConferenceRef{OwnerID: "u", LocalID: 1}.Encode()
	sessionKey := domain.SessionRef{Conference: domain.ConferenceRef{OwnerID: "u", LocalID: 1}, LocalID: 2}.Encode()

	routes := []struct {
		method, path string
	}{
		{http.MethodPost, "/conferences"},
		{http.MethodPost, "/conferences/query"},
		{http.MethodGet, "/conferences/created"},
		{http.MethodGet, "/conferences/attending"},
		{http.MethodGet, "/conferences/" + key},
		{http.MethodPut, "/conferences/" + key},
		{http.MethodPost, "/conferences/" + key + "/registration"},
		{http.MethodDelete, "/conferences/" + key + "/registration"},
		{http.MethodGet, "/conferences/" + key + "/wishlist"},
		{http.MethodGet, "/wishlist"},
		{http.MethodPost, "/wishlist/" + sessionKey},
		{http.MethodDelete, "/wishlist/" + sessionKey},
		{http.MethodGet, "/profile"},
		{http.MethodPost, "/profile"},
		{http.MethodPost, "/conferences/" + key + "/sessions"},
		{http.MethodGet, "/conferences/" + key + "/sessions"},
		{http.MethodGet, "/conferences/" + key + "/sessions/type/WORKSHOP"},
		{http.MethodGet, "/conferences/" + key + "/sessions/preferred"},
		{http.MethodGet, "/conferences/" + key + "/speakers"},
		{http.MethodPost, "/speakers"},
		{http.MethodGet, "/speakers"},
		{http.MethodPost, "/speakers/search"},
		{http.MethodGet, "/speakers/ann@example.com/sessions"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(rt.method, rt.path, nil))
			require.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
