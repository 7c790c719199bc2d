package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"conferencecentral/internal/domain"
)

func TestRegistrationService_RegisterRoundTrip(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	conf := createConference(t, env, "org", domain.ConferenceInput{Name: "Conf", MaxAttendees: 50})

	ok, err := env.registrations.RegisterForConference(ctx, caller("att"), conf.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 49, env.conference(conf.Key).SeatsAvailable)
	assert.Equal(t, []domain.ConferenceRef{conf.Key}, env.profile("att").ConferenceKeysToAttend)

	_, err = env.registrations.RegisterForConference(ctx, caller("att"), conf.Key)
	require.ErrorIs(t, err, domain.ErrAlreadyRegistered)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 49, env.conference(conf.Key).SeatsAvailable)
	assert.Len(t, env.profile("att").ConferenceKeysToAttend, 1)

	ok, err = env.registrations.UnregisterFromConference(ctx, caller("att"), conf.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 50, env.conference(conf.Key).SeatsAvailable)
	assert.Empty(t, env.profile("att").ConferenceKeysToAttend)
}

func TestRegistrationService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("no seats", func(t *testing.T) {
		env := newTestEnv()
		conf := createConference(t, env, "org", domain.ConferenceInput{Name: "Tiny", MaxAttendees: 1})
		_, err := env.registrations.RegisterForConference(ctx, caller("a"), conf.Key)
		require.NoError(t, err)
		_, err = env.registrations.RegisterForConference(ctx, caller("b"), conf.Key)
		require.ErrorIs(t, err, domain.ErrNoSeatsAvailable)
		assert.Nil(t, env.profile("b"), "profile created in the failed transaction must not persist")
		assert.Equal(t, 0, env.conference(conf.Key).SeatsAvailable)
		assert.Equal(t, []domain.ConferenceRef{conf.Key}, env.profile("a").ConferenceKeysToAttend)
	})

	t.Run("unlimited conference has no seats", func(t *testing.T) {
		env := newTestEnv()
		conf := createConference(t, env, "org", domain.ConferenceInput{Name: "Open"})
		_, err := env.registrations.RegisterForConference(ctx, caller("a"), conf.Key)
		require.ErrorIs(t, err, domain.ErrNoSeatsAvailable)
	})

	t.Run("unknown conference", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.registrations.RegisterForConference(ctx, caller("a"), domain.ConferenceRef{OwnerID: "x", LocalID: 1})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.registrations.RegisterForConference(ctx, domain.Caller{}, domain.ConferenceRef{OwnerID: "x", LocalID: 1})
		require.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("unregister when not registered is a no-op", func(t *testing.T) {
		env := newTestEnv()
		conf := createConference(t, env, "org", domain.ConferenceInput{Name: "Conf", MaxAttendees: 5})
		ok, err := env.registrations.UnregisterFromConference(ctx, caller("a"), conf.Key)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 5, env.conference(conf.Key).SeatsAvailable)
	})

	t.Run("failed conference write rolls back profile", func(t *testing.T) {
		env := newTestEnv()
		conf := createConference(t, env, "org", domain.ConferenceInput{Name: "Conf", MaxAttendees: 5})
		env.store.updateConferenceErr = errors.New("disk full")
		_, err := env.registrations.RegisterForConference(ctx, caller("a"), conf.Key)
		require.Error(t, err)
		env.store.updateConferenceErr = nil
		assert.Equal(t, 5, env.conference(conf.Key).SeatsAvailable)
		assert.Nil(t, env.profile("a"))

		ok, err := env.registrations.RegisterForConference(ctx, caller("a"), conf.Key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []domain.ConferenceRef{conf.Key}, env.profile("a").ConferenceKeysToAttend)
	})
}

func TestRegistrationService_ConcurrentRegistrationsDoNotOversell(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	conf := createConference(t, env, "org", domain.ConferenceInput{Name: "Hot", MaxAttendees: 10})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := range 40 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := env.registrations.RegisterForConference(ctx, caller(fmt.Sprintf("u%d", i)), conf.Key)
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrNoSeatsAvailable)
				return
			}
			if ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, env.conference(conf.Key).SeatsAvailable)
}

// TestRegistrationService_SeatInvariant checks seat accounting against a model
// over random register and unregister sequences.
func TestRegistrationService_SeatInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		env := newTestEnv()
		ctx := context.Background()
		maxAttendees := rapid.IntRange(0, 4).Draw(rt, "maxAttendees")
		conf, err := env.conferences.CreateConference(ctx, caller("org"), domain.ConferenceInput{Name: "Prop", MaxAttendees: maxAttendees})
		require.NoError(rt, err)

		users := rapid.IntRange(1, 6).Draw(rt, "users")
		registered := make(map[string]bool)
		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := range steps {
			user := fmt.Sprintf("u%d", rapid.IntRange(0, users-1).Draw(rt, fmt.Sprintf("user%d", i)))
			if rapid.Bool().Draw(rt, fmt.Sprintf("register%d", i)) {
				ok, err := env.registrations.RegisterForConference(ctx, caller(user), conf.Key)
				switch {
				case registered[user]:
					require.ErrorIs(rt, err, domain.ErrAlreadyRegistered)
				case len(registered) >= maxAttendees:
					require.ErrorIs(rt, err, domain.ErrNoSeatsAvailable)
				default:
					require.NoError(rt, err)
					require.True(rt, ok)
					registered[user] = true
				}
			} else {
				ok, err := env.registrations.UnregisterFromConference(ctx, caller(user), conf.Key)
				require.NoError(rt, err)
				require.Equal(rt, registered[user], ok)
				delete(registered, user)
			}

			seats := env.conference(conf.Key).SeatsAvailable
			require.GreaterOrEqual(rt, seats, 0)
			require.LessOrEqual(rt, seats, maxAttendees)
			require.Equal(rt, maxAttendees-len(registered), seats)
		}
	})
}

func TestRegistrationService_Wishlist(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	confA := createConference(t, env, "org", domain.ConferenceInput{Name: "A"})
	confB := createConference(t, env, "org", domain.ConferenceInput{Name: "B"})
	s1, err := env.sessions.CreateSession(ctx, caller("org"), confA.Key, domain.SessionInput{Name: "S1", SpeakerEmail: "sp@example.com", SpeakerName: "Sam"})
	require.NoError(t, err)
	s2, err := env.sessions.CreateSession(ctx, caller("org"), confB.Key, domain.SessionInput{Name: "S2"})
	require.NoError(t, err)

	ok, err := env.registrations.AddSessionToWishlist(ctx, caller("att"), s1.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = env.registrations.AddSessionToWishlist(ctx, caller("att"), s1.Key)
	require.ErrorIs(t, err, domain.ErrAlreadyWishlisted)
	_, err = env.registrations.AddSessionToWishlist(ctx, caller("att"), s2.Key)
	require.NoError(t, err)

	_, err = env.registrations.AddSessionToWishlist(ctx, caller("att"), domain.SessionRef{Conference: confA.Key, LocalID: 99})
	require.ErrorIs(t, err, domain.ErrNotFound)

	all, err := env.registrations.ListWishlist(ctx, caller("att"))
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Sam", all[0].SpeakerName)

	perConf, err := env.registrations.ListWishlistByConference(ctx, caller("att"), confB.Key)
	require.NoError(t, err)
	require.Len(t, perConf, 1)
	assert.Equal(t, "S2", perConf[0].Name)

	ok, err = env.registrations.RemoveSessionFromWishlist(ctx, caller("att"), s1.Key)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = env.registrations.RemoveSessionFromWishlist(ctx, caller("att"), s1.Key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []domain.SessionRef{s2.Key}, env.profile("att").SessionKeysWishlist)
}
