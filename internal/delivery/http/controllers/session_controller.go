package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// SessionRequest is the request body for POST /conferences/{conferenceKey}/sessions.
// When speaker_email is set the speaker is created or updated by email.
type SessionRequest struct {
	Name          string   `json:"name"`
	Highlights    string   `json:"highlights"`
	Duration      int      `json:"duration"`
	TypeOfSession []string `json:"type_of_session"`
	Date          string   `json:"date"`
	StartTime     string   `json:"start_time"`
	SpeakerName   string   `json:"speaker_name"`
	SpeakerEmail  string   `json:"speaker_email"`
	SpeakerGender string   `json:"speaker_gender"`
}

// Validate implements Validator.
func (s SessionRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	if s.Duration < 0 {
		errs = append(errs, "duration must not be negative")
	}
	return errs
}

func (s SessionRequest) input() domain.SessionInput {
	return domain.SessionInput{
		Name:          s.Name,
		Highlights:    s.Highlights,
		Duration:      s.Duration,
		TypeOfSession: s.TypeOfSession,
		Date:          s.Date,
		StartTime:     s.StartTime,
		SpeakerName:   s.SpeakerName,
		SpeakerEmail:  s.SpeakerEmail,
		SpeakerGender: s.SpeakerGender,
	}
}

// SpeakerRequest is the request body for POST /speakers.
type SpeakerRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Gender string `json:"gender"`
}

// Validate implements Validator.
func (s SpeakerRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(s.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// SpeakerSearchRequest is the request body for POST /speakers/search. Email wins when both are set.
type SpeakerSearchRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements Validator.
func (s SpeakerSearchRequest) Validate() []string {
	if strings.TrimSpace(s.Email) == "" && strings.TrimSpace(s.Name) == "" {
		return []string{"email or name is required"}
	}
	return nil
}

// SessionSuccessResponse is the success envelope for single-session responses.
type SessionSuccessResponse struct {
	Data  *domain.SessionView `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// SpeakerSuccessResponse is the success envelope for single-speaker responses.
type SpeakerSuccessResponse struct {
	Data  *domain.Speaker   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SpeakerListSuccessResponse is the success envelope for speaker listings.
type SpeakerListSuccessResponse struct {
	Data  []*domain.Speaker `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type SessionController struct {
	Logger        *slog.Logger
	Service       domain.SessionService
	Announcements domain.AnnouncementService
}

func NewSessionController(logger *slog.Logger, svc domain.SessionService, announcements domain.AnnouncementService) *SessionController {
	return &SessionController{
		Logger:        logger,
		Service:       svc,
		Announcements: announcements,
	}
}

// CreateSession godoc
// @Summary Create a session in a conference
// @Description Only the conference organizer can add sessions. A speaker with more than one session in the conference becomes the featured speaker.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Param session body SessionRequest true "Session data"
// @Success 201 {object} controllers.SessionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey}/sessions [post]
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	var req SessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	view, err := c.Service.CreateSession(r.Context(), caller, ref, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, view)
}

// ListSessions godoc
// @Summary List the sessions of a conference
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey}/sessions [get]
func (c *SessionController) ListSessions(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	views, err := c.Service.ListSessions(r.Context(), ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}

// ListSessionsByType godoc
// @Summary List the sessions of a conference with a given type
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Param typeOfSession path string true "NOT_SPECIFIED|WORKSHOP|LECTURE|KEYNOTE|LUNCH|DINNER|PARTY"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey}/sessions/type/{typeOfSession} [get]
func (c *SessionController) ListSessionsByType(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	t, err := domain.ParseSessionType(r.PathValue("typeOfSession"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	views, err := c.Service.ListSessionsByType(r.Context(), ref, t)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}

// ListPreferredSessions godoc
// @Summary List non-workshop sessions starting before 19:00
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey}/sessions/preferred [get]
func (c *SessionController) ListPreferredSessions(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	views, err := c.Service.ListPreferredSessions(r.Context(), ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}

// ListSessionsBySpeaker godoc
// @Summary List the sessions of a speaker across conferences
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param email path string true "Speaker email"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/{email}/sessions [get]
func (c *SessionController) ListSessionsBySpeaker(w http.ResponseWriter, r *http.Request) {
	views, err := c.Service.ListSessionsBySpeakerEmail(r.Context(), r.PathValue("email"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}

// CreateSpeaker godoc
// @Summary Create a speaker
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param speaker body SpeakerRequest true "Speaker data"
// @Success 201 {object} controllers.SpeakerSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (email taken)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers [post]
func (c *SessionController) CreateSpeaker(w http.ResponseWriter, r *http.Request) {
	var req SpeakerRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	sp, err := c.Service.CreateSpeaker(r.Context(), caller, domain.SpeakerInput{Name: req.Name, Email: req.Email, Gender: req.Gender})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, sp)
}

// ListSpeakers godoc
// @Summary List all speakers
// @Tags speakers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.SpeakerListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers [get]
func (c *SessionController) ListSpeakers(w http.ResponseWriter, r *http.Request) {
	speakers, err := c.Service.ListSpeakers(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(speakers))
}

// ListSpeakersByConference godoc
// @Summary List the speakers of a conference
// @Tags speakers
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Success 200 {object} controllers.SpeakerListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey}/speakers [get]
func (c *SessionController) ListSpeakersByConference(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	speakers, err := c.Service.ListSpeakersByConference(r.Context(), ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(speakers))
}

// FindSpeakers godoc
// @Summary Find speakers by email or name
// @Tags speakers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body SpeakerSearchRequest true "Search by email or name"
// @Success 200 {object} controllers.SpeakerListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /speakers/search [post]
func (c *SessionController) FindSpeakers(w http.ResponseWriter, r *http.Request) {
	var req SpeakerSearchRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	speakers, err := c.Service.FindSpeakers(r.Context(), domain.SpeakerSearch{Email: req.Email, Name: req.Name})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(speakers))
}

// GetFeaturedSpeaker godoc
// @Summary Get the featured speaker message
// @Description Returns the cached featured speaker message, or an empty string when there is none.
// @Tags speakers
// @Produce json
// @Success 200 {object} helpers.StringResponse
// @Router /speakers/featured [get]
func (c *SessionController) GetFeaturedSpeaker(w http.ResponseWriter, r *http.Request) {
	msg, err := c.Announcements.FeaturedSpeaker(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msg)
}
