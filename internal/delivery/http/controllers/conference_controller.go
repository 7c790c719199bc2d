package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// ConferenceRequest is the request body for POST /conferences.
type ConferenceRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Topics       []string `json:"topics"`
	City         string   `json:"city"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	MaxAttendees int      `json:"max_attendees"`
}

// Validate implements Validator.
func (c ConferenceRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name is required")
	}
	if c.MaxAttendees < 0 {
		errs = append(errs, "max_attendees must not be negative")
	}
	return errs
}

func (c ConferenceRequest) input() domain.ConferenceInput {
	return domain.ConferenceInput{
		Name:         c.Name,
		Description:  c.Description,
		Topics:       c.Topics,
		City:         c.City,
		StartDate:    c.StartDate,
		EndDate:      c.EndDate,
		MaxAttendees: c.MaxAttendees,
	}
}

// UpdateConferenceRequest is the request body for PUT /conferences/{conferenceKey}.
// Omitted or empty fields are unchanged.
type UpdateConferenceRequest struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Topics       []string `json:"topics"`
	City         *string  `json:"city"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	MaxAttendees *int     `json:"max_attendees"`
}

// Validate implements Validator.
func (u UpdateConferenceRequest) Validate() []string {
	var errs []string
	if u.MaxAttendees != nil && *u.MaxAttendees < 0 {
		errs = append(errs, "max_attendees must not be negative")
	}
	return errs
}

func (u UpdateConferenceRequest) update() domain.ConferenceUpdate {
	return domain.ConferenceUpdate{
		Name:         u.Name,
		Description:  u.Description,
		Topics:       u.Topics,
		City:         u.City,
		StartDate:    u.StartDate,
		EndDate:      u.EndDate,
		MaxAttendees: u.MaxAttendees,
	}
}

// QueryConferencesRequest is the request body for POST /conferences/query.
type QueryConferencesRequest struct {
	Filters []domain.ConferenceFilter `json:"filters"`
}

// ConferenceSuccessResponse is the success envelope for single-conference responses.
type ConferenceSuccessResponse struct {
	Data  *domain.ConferenceView `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ConferenceListSuccessResponse is the success envelope for conference listings.
type ConferenceListSuccessResponse struct {
	Data  []*domain.ConferenceView `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

type ConferenceController struct {
	Logger        *slog.Logger
	Service       domain.ConferenceService
	Announcements domain.AnnouncementService
}

func NewConferenceController(logger *slog.Logger, svc domain.ConferenceService, announcements domain.AnnouncementService) *ConferenceController {
	return &ConferenceController{
		Logger:        logger,
		Service:       svc,
		Announcements: announcements,
	}
}

// CreateConference godoc
// @Summary Create a conference
// @Description Creates a conference organized by the caller. Unset city and topics get defaults; seats_available starts at max_attendees.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conference body ConferenceRequest true "Conference data"
// @Success 201 {object} controllers.ConferenceSuccessResponse "data contains the created conference"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [post]
func (c *ConferenceController) CreateConference(w http.ResponseWriter, r *http.Request) {
	var req ConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	view, err := c.Service.CreateConference(r.Context(), caller, req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, view)
}

// UpdateConference godoc
// @Summary Update a conference
// @Description Updates the fields present in the body. Only the organizer can update. Changing start_date recomputes month.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Param body body UpdateConferenceRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.ConferenceSuccessResponse "data contains the updated conference"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not organizer)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey} [put]
func (c *ConferenceController) UpdateConference(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	var req UpdateConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	view, err := c.Service.UpdateConference(r.Context(), caller, ref, req.update())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// GetConference godoc
// @Summary Get a conference
// @Description Returns the conference with its organizer display name.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey} [get]
func (c *ConferenceController) GetConference(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	view, err := c.Service.GetConference(r.Context(), ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// ListConferencesCreated godoc
// @Summary List conferences created by the caller
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/created [get]
func (c *ConferenceController) ListConferencesCreated(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	views, err := c.Service.ListConferencesCreated(r.Context(), caller)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}

// QueryConferences godoc
// @Summary Query conferences
// @Description Filters conferences by city, topic, month or max attendees. Inequality operators may target one field only; results are ordered by that field, then name.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body QueryConferencesRequest true "Filters (field: CITY|TOPIC|MONTH|MAX_ATTENDEES, operator: EQ|GT|GTEQ|LT|LTEQ|NE)"
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/query [post]
func (c *ConferenceController) QueryConferences(w http.ResponseWriter, r *http.Request) {
	var req QueryConferencesRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	views, err := c.Service.QueryConferences(r.Context(), req.Filters)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}

// ListConferencesToAttend godoc
// @Summary List conferences the caller registered for
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/attending [get]
func (c *ConferenceController) ListConferencesToAttend(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	views, err := c.Service.ListConferencesToAttend(r.Context(), caller)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}

// GetAnnouncement godoc
// @Summary Get the nearly-sold-out announcement
// @Description Returns the cached announcement, or an empty string when there is none.
// @Tags conferences
// @Produce json
// @Success 200 {object} helpers.StringResponse
// @Router /announcement [get]
func (c *ConferenceController) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	msg, err := c.Announcements.Announcement(r.Context())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msg)
}
