package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/helpers"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Conference   *controllers.ConferenceController
	Profile      *controllers.ProfileController
	Registration *controllers.RegistrationController
	Session      *controllers.SessionController
}

// NewRouter initializes the HTTP router with all application routes.
// requireAuth guards every route except the announcement, the featured speaker,
// the health check and the API docs.
func NewRouter(c Controllers, requireAuth func(http.HandlerFunc) http.HandlerFunc) *http.ServeMux {
	mux := http.NewServeMux()

	// Conferences
	mux.HandleFunc("POST /conferences", requireAuth(c.Conference.CreateConference))
	mux.HandleFunc("POST /conferences/query", requireAuth(c.Conference.QueryConferences))
	mux.HandleFunc("GET /conferences/created", requireAuth(c.Conference.ListConferencesCreated))
	mux.HandleFunc("GET /conferences/attending", requireAuth(c.Conference.ListConferencesToAttend))
	mux.HandleFunc("GET /conferences/{conferenceKey}", requireAuth(c.Conference.GetConference))
	mux.HandleFunc("PUT /conferences/{conferenceKey}", requireAuth(c.Conference.UpdateConference))
	mux.HandleFunc("GET /announcement", c.Conference.GetAnnouncement)

	// Registration and wishlist
	mux.HandleFunc("POST /conferences/{conferenceKey}/registration", requireAuth(c.Registration.RegisterForConference))
	mux.HandleFunc("DELETE /conferences/{conferenceKey}/registration", requireAuth(c.Registration.UnregisterFromConference))
	mux.HandleFunc("GET /conferences/{conferenceKey}/wishlist", requireAuth(c.Registration.ListWishlistByConference))
	mux.HandleFunc("GET /wishlist", requireAuth(c.Registration.ListWishlist))
	mux.HandleFunc("POST /wishlist/{sessionKey}", requireAuth(c.Registration.AddSessionToWishlist))
	mux.HandleFunc("DELETE /wishlist/{sessionKey}", requireAuth(c.Registration.RemoveSessionFromWishlist))

	// Profile
	mux.HandleFunc("GET /profile", requireAuth(c.Profile.GetProfile))
	mux.HandleFunc("POST /profile", requireAuth(c.Profile.SaveProfile))

	// Sessions and speakers
	mux.HandleFunc("POST /conferences/{conferenceKey}/sessions", requireAuth(c.Session.CreateSession))
	mux.HandleFunc("GET /conferences/{conferenceKey}/sessions", requireAuth(c.Session.ListSessions))
	mux.HandleFunc("GET /conferences/{conferenceKey}/sessions/type/{typeOfSession}", requireAuth(c.Session.ListSessionsByType))
	mux.HandleFunc("GET /conferences/{conferenceKey}/sessions/preferred", requireAuth(c.Session.ListPreferredSessions))
	mux.HandleFunc("GET /conferences/{conferenceKey}/speakers", requireAuth(c.Session.ListSpeakersByConference))
	mux.HandleFunc("POST /speakers", requireAuth(c.Session.CreateSpeaker))
	mux.HandleFunc("GET /speakers", requireAuth(c.Session.ListSpeakers))
	mux.HandleFunc("POST /speakers/search", requireAuth(c.Session.FindSpeakers))
	mux.HandleFunc("GET /speakers/{email}/sessions", requireAuth(c.Session.ListSessionsBySpeaker))
	mux.HandleFunc("GET /speakers/featured", c.Session.GetFeaturedSpeaker)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, "ok")
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
