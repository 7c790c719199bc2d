package domain

import (
	"context"
	"slices"
	"strings"
)

// TeeShirtSize is the shirt size a profile asked for.
type TeeShirtSize string

const (
	TeeShirtNotSpecified TeeShirtSize = "NOT_SPECIFIED"
	TeeShirtXSM          TeeShirtSize = "XS_M"
	TeeShirtXSW          TeeShirtSize = "XS_W"
	TeeShirtSM           TeeShirtSize = "S_M"
	TeeShirtSW           TeeShirtSize = "S_W"
	TeeShirtMM           TeeShirtSize = "M_M"
	TeeShirtMW           TeeShirtSize = "M_W"
	TeeShirtLM           TeeShirtSize = "L_M"
	TeeShirtLW           TeeShirtSize = "L_W"
	TeeShirtXLM          TeeShirtSize = "XL_M"
	TeeShirtXLW          TeeShirtSize = "XL_W"
	TeeShirtXXLM         TeeShirtSize = "XXL_M"
	TeeShirtXXLW         TeeShirtSize = "XXL_W"
	TeeShirtXXXLM        TeeShirtSize = "XXXL_M"
	TeeShirtXXXLW        TeeShirtSize = "XXXL_W"
)

var teeShirtSizes = []TeeShirtSize{
	TeeShirtNotSpecified,
	TeeShirtXSM, TeeShirtXSW,
	TeeShirtSM, TeeShirtSW,
	TeeShirtMM, TeeShirtMW,
	TeeShirtLM, TeeShirtLW,
	TeeShirtXLM, TeeShirtXLW,
	TeeShirtXXLM, TeeShirtXXLW,
	TeeShirtXXXLM, TeeShirtXXXLW,
}

// ParseTeeShirtSize validates a tee-shirt size name, case-insensitively.
func ParseTeeShirtSize(s string) (TeeShirtSize, error) {
	size := TeeShirtSize(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(teeShirtSizes, size) {
		return "", NewValidationError("unknown tee shirt size %q", s)
	}
	return size, nil
}

// Profile is the per-user record holding attendance and wishlist membership.
// swagger:model Profile
type Profile struct {
	UserID                 string          `json:"-"`
	DisplayName            string          `json:"display_name"`
	MainEmail              string          `json:"main_email"`
	TeeShirtSize           TeeShirtSize    `json:"tee_shirt_size"`
	ConferenceKeysToAttend []ConferenceRef `json:"conference_keys_to_attend"`
	SessionKeysWishlist    []SessionRef    `json:"session_keys_wishlist"`
}

// NewProfile returns a profile with default tee-shirt size and empty membership sets.
func NewProfile(userID, displayName, mainEmail string) *Profile {
	return &Profile{
		UserID:                 userID,
		DisplayName:            displayName,
		MainEmail:              mainEmail,
		TeeShirtSize:           TeeShirtNotSpecified,
		ConferenceKeysToAttend: []ConferenceRef{},
		SessionKeysWishlist:    []SessionRef{},
	}
}

// IsAttending reports whether ref is in the attendance set.
func (p *Profile) IsAttending(ref ConferenceRef) bool {
	return slices.Contains(p.ConferenceKeysToAttend, ref)
}

// Attend adds ref to the attendance set. It returns false when already present.
func (p *Profile) Attend(ref ConferenceRef) bool {
	if p.IsAttending(ref) {
		return false
	}
	p.ConferenceKeysToAttend = append(p.ConferenceKeysToAttend, ref)
	return true
}

// Unattend removes ref from the attendance set. It returns false when absent.
func (p *Profile) Unattend(ref ConferenceRef) bool {
	i := slices.Index(p.ConferenceKeysToAttend, ref)
	if i < 0 {
		return false
	}
	p.ConferenceKeysToAttend = slices.Delete(p.ConferenceKeysToAttend, i, i+1)
	return true
}

// InWishlist reports whether ref is in the session wishlist.
func (p *Profile) InWishlist(ref SessionRef) bool {
	return slices.Contains(p.SessionKeysWishlist, ref)
}

// Wish adds ref to the wishlist. It returns false when already present.
func (p *Profile) Wish(ref SessionRef) bool {
	if p.InWishlist(ref) {
		return false
	}
	p.SessionKeysWishlist = append(p.SessionKeysWishlist, ref)
	return true
}

// Unwish removes ref from the wishlist. It returns false when absent.
func (p *Profile) Unwish(ref SessionRef) bool {
	i := slices.Index(p.SessionKeysWishlist, ref)
	if i < 0 {
		return false
	}
	p.SessionKeysWishlist = slices.Delete(p.SessionKeysWishlist, i, i+1)
	return true
}

// ProfileUpdate carries the fields of a partial profile update. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName  *string
	TeeShirtSize *TeeShirtSize
}

// ProfileRepository defines the interface for profile storage.
type ProfileRepository interface {
	// GetOrCreate returns the stored profile for p.UserID, inserting p first if none exists.
	GetOrCreate(ctx context.Context, p *Profile) (*Profile, error)
	Get(ctx context.Context, userID string) (*Profile, error)
	GetMulti(ctx context.Context, userIDs []string) (map[string]*Profile, error)
	Update(ctx context.Context, p *Profile) error
}

// ProfileService manages the calling user's profile.
type ProfileService interface {
	GetProfile(ctx context.Context, caller Caller) (*Profile, error)
	SaveProfile(ctx context.Context, caller Caller, update ProfileUpdate) (*Profile, error)
}
