package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// ProfileRequest is the request body for POST /profile. Omitted fields are unchanged.
type ProfileRequest struct {
	DisplayName  *string `json:"display_name"`
	TeeShirtSize *string `json:"tee_shirt_size"`
}

// Validate implements Validator.
func (p ProfileRequest) Validate() []string {
	if p.TeeShirtSize != nil && *p.TeeShirtSize != "" {
		if _, err := domain.ParseTeeShirtSize(*p.TeeShirtSize); err != nil {
			return []string{err.Error()}
		}
	}
	return nil
}

func (p ProfileRequest) update() (domain.ProfileUpdate, error) {
	u := domain.ProfileUpdate{DisplayName: p.DisplayName}
	if p.TeeShirtSize != nil && *p.TeeShirtSize != "" {
		size, err := domain.ParseTeeShirtSize(*p.TeeShirtSize)
		if err != nil {
			return domain.ProfileUpdate{}, err
		}
		u.TeeShirtSize = &size
	}
	return u, nil
}

// ProfileSuccessResponse is the success envelope for profile responses.
type ProfileSuccessResponse struct {
	Data  *domain.Profile   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type ProfileController struct {
	Logger  *slog.Logger
	Service domain.ProfileService
}

func NewProfileController(logger *slog.Logger, svc domain.ProfileService) *ProfileController {
	return &ProfileController{Logger: logger, Service: svc}
}

// GetProfile godoc
// @Summary Get the caller's profile
// @Description Returns the caller's profile, creating it on first access.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [get]
func (c *ProfileController) GetProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	profile, err := c.Service.GetProfile(r.Context(), caller)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}

// SaveProfile godoc
// @Summary Update the caller's profile
// @Description Updates display_name and tee_shirt_size when present and non-empty.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ProfileRequest true "Profile fields"
// @Success 200 {object} controllers.ProfileSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /profile [post]
func (c *ProfileController) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	update, err := req.update()
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	profile, err := c.Service.SaveProfile(r.Context(), caller, update)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, profile)
}
