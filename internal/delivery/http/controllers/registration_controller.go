package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// SessionListSuccessResponse is the success envelope for session listings.
type SessionListSuccessResponse struct {
	Data  []*domain.SessionView `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{Logger: logger, Service: svc}
}

// RegisterForConference godoc
// @Summary Register for a conference
// @Description Takes one seat and adds the conference to the caller's attendance list.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Success 200 {object} helpers.BoolResponse "data is true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered or no seats)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey}/registration [post]
func (c *RegistrationController) RegisterForConference(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	done, err := c.Service.RegisterForConference(r.Context(), caller, ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, done)
}

// UnregisterFromConference godoc
// @Summary Unregister from a conference
// @Description Frees the caller's seat. data is false when the caller was not registered.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Success 200 {object} helpers.BoolResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey}/registration [delete]
func (c *RegistrationController) UnregisterFromConference(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	done, err := c.Service.UnregisterFromConference(r.Context(), caller, ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, done)
}

// AddSessionToWishlist godoc
// @Summary Add a session to the caller's wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param sessionKey path string true "Session websafe key"
// @Success 200 {object} helpers.BoolResponse "data is true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already in wishlist)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wishlist/{sessionKey} [post]
func (c *RegistrationController) AddSessionToWishlist(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionKey(w, r)
	if !ok {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	done, err := c.Service.AddSessionToWishlist(r.Context(), caller, ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, done)
}

// RemoveSessionFromWishlist godoc
// @Summary Remove a session from the caller's wishlist
// @Description data is false when the session was not in the wishlist.
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param sessionKey path string true "Session websafe key"
// @Success 200 {object} helpers.BoolResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wishlist/{sessionKey} [delete]
func (c *RegistrationController) RemoveSessionFromWishlist(w http.ResponseWriter, r *http.Request) {
	ref, ok := sessionKey(w, r)
	if !ok {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	done, err := c.Service.RemoveSessionFromWishlist(r.Context(), caller, ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, done)
}

// ListWishlist godoc
// @Summary List the sessions in the caller's wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /wishlist [get]
func (c *RegistrationController) ListWishlist(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	views, err := c.Service.ListWishlist(r.Context(), caller)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}

// ListWishlistByConference godoc
// @Summary List the caller's wishlisted sessions in one conference
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Conference websafe key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceKey}/wishlist [get]
func (c *RegistrationController) ListWishlistByConference(w http.ResponseWriter, r *http.Request) {
	ref, ok := conferenceKey(w, r)
	if !ok {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	views, err := c.Service.ListWishlistByConference(r.Context(), caller, ref)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(views))
}
