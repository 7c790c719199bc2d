package domain

import "context"

// RegistrationService registers profiles for conferences and maintains session wishlists.
// Every mutation runs in one transaction over the profile and the conference or session it touches.
type RegistrationService interface {
	RegisterForConference(ctx context.Context, caller Caller, ref ConferenceRef) (bool, error)
	UnregisterFromConference(ctx context.Context, caller Caller, ref ConferenceRef) (bool, error)
	AddSessionToWishlist(ctx context.Context, caller Caller, ref SessionRef) (bool, error)
	RemoveSessionFromWishlist(ctx context.Context, caller Caller, ref SessionRef) (bool, error)
	ListWishlist(ctx context.Context, caller Caller) ([]*SessionView, error)
	ListWishlistByConference(ctx context.Context, caller Caller, conference ConferenceRef) ([]*SessionView, error)
}
