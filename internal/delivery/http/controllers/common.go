package controllers

import (
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"
)

// requireCaller returns the authenticated caller or writes 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (domain.Caller, bool) {
	caller, ok := middleware.CallerFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return domain.Caller{}, false
	}
	return caller, true
}

// conferenceKey decodes the {conferenceKey} path value or writes 400.
func conferenceKey(w http.ResponseWriter, r *http.Request) (domain.ConferenceRef, bool) {
	ref, err := domain.DecodeConferenceRef(r.PathValue("conferenceKey"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return domain.ConferenceRef{}, false
	}
	return ref, true
}

// sessionKey decodes the {sessionKey} path value or writes 400.
func sessionKey(w http.ResponseWriter, r *http.Request) (domain.SessionRef, bool) {
	ref, err := domain.DecodeSessionRef(r.PathValue("sessionKey"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return domain.SessionRef{}, false
	}
	return ref, true
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
