package domain

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	refSeparator     = "\x1f"
	conferenceRefTag = "conference"
	sessionRefTag    = "session"
)

// ConferenceRef identifies a conference together with the profile that owns it.
// Conference ids are allocated per owner, so both parts are needed.
type ConferenceRef struct {
	OwnerID string
	LocalID int64
}

// IsZero reports whether r has not been set.
func (r ConferenceRef) IsZero() bool {
	return r.OwnerID == "" && r.LocalID == 0
}

// Encode returns the opaque websafe key exchanged with clients.
func (r ConferenceRef) Encode() string {
	raw := strings.Join([]string{conferenceRefTag, r.OwnerID, strconv.FormatInt(r.LocalID, 10)}, refSeparator)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func (r ConferenceRef) String() string { return r.Encode() }

// MarshalJSON encodes the reference as its websafe key.
func (r ConferenceRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(r.Encode())
}

// UnmarshalJSON decodes a websafe key.
func (r *ConferenceRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*r = ConferenceRef{}
		return nil
	}
	ref, err := DecodeConferenceRef(s)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// DecodeConferenceRef parses a websafe conference key. Session keys are rejected.
func DecodeConferenceRef(key string) (ConferenceRef, error) {
	parts, err := decodeRefParts(key, conferenceRefTag, 3)
	if err != nil {
		return ConferenceRef{}, err
	}
	id, err := parseLocalID(parts[2])
	if err != nil {
		return ConferenceRef{}, err
	}
	return ConferenceRef{OwnerID: parts[1], LocalID: id}, nil
}

// SessionRef identifies a session inside its parent conference.
type SessionRef struct {
	Conference ConferenceRef
	LocalID    int64
}

// IsZero reports whether r has not been set.
func (r SessionRef) IsZero() bool {
	return r.Conference.IsZero() && r.LocalID == 0
}

// Encode returns the opaque websafe key exchanged with clients.
func (r SessionRef) Encode() string {
	raw := strings.Join([]string{
		sessionRefTag,
		r.Conference.OwnerID,
		strconv.FormatInt(r.Conference.LocalID, 10),
		strconv.FormatInt(r.LocalID, 10),
	}, refSeparator)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func (r SessionRef) String() string { return r.Encode() }

// MarshalJSON encodes the reference as its websafe key.
func (r SessionRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(r.Encode())
}

// UnmarshalJSON decodes a websafe key.
func (r *SessionRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*r = SessionRef{}
		return nil
	}
	ref, err := DecodeSessionRef(s)
	if err != nil {
		return err
	}
	*r = ref
	return nil
}

// DecodeSessionRef parses a websafe session key. Conference keys are rejected.
func DecodeSessionRef(key string) (SessionRef, error) {
	parts, err := decodeRefParts(key, sessionRefTag, 4)
	if err != nil {
		return SessionRef{}, err
	}
	confID, err := parseLocalID(parts[2])
	if err != nil {
		return SessionRef{}, err
	}
	id, err := parseLocalID(parts[3])
	if err != nil {
		return SessionRef{}, err
	}
	return SessionRef{
		Conference: ConferenceRef{OwnerID: parts[1], LocalID: confID},
		LocalID:    id,
	}, nil
}

func decodeRefParts(key, tag string, n int) ([]string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(key))
	if err != nil {
		return nil, ErrInvalidReference
	}
	parts := strings.Split(string(raw), refSeparator)
	if len(parts) != n || parts[0] != tag || parts[1] == "" {
		return nil, ErrInvalidReference
	}
	return parts, nil
}

func parseLocalID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidReference
	}
	return id, nil
}
