package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConferenceView_JSONFieldNames(t *testing.T) {
	ref := ConferenceRef{OwnerID: "u1", LocalID: 4}
	start := NewDate(2026, 7, 14)
	c := Conference{Key: ref, Name: "GopherCon", OrganizerUserID: "u1", MaxAttendees: 10, SeatsAvailable: 9}
	c.SetStartDate(&start)

	b, err := json.Marshal(ConferenceView{Conference: c, OrganizerDisplayName: "Ann"})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, ref.Encode(), got["websafe_key"])
	assert.Equal(t, "Ann", got["organizer_display_name"])
	assert.Equal(t, "2026-07-14", got["start_date"])
	assert.EqualValues(t, 7, got["month"])
	assert.EqualValues(t, 9, got["seats_available"])
	assert.NotContains(t, got, "websafeKey")
	assert.NotContains(t, got, "organizerDisplayName")
}

func TestSessionView_JSONFieldNames(t *testing.T) {
	conf := ConferenceRef{OwnerID: "u1", LocalID: 4}
	ref := SessionRef{Conference: conf, LocalID: 2}
	v := SessionView{
		Session:      Session{Key: ref, ConferenceKey: conf, Name: "Intro", TypeOfSession: []SessionType{SessionTypeLecture}},
		SpeakerName:  "Ann",
		SpeakerEmail: "ann@example.com",
	}

	b, err := json.Marshal(v)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, ref.Encode(), got["websafe_key"])
	assert.Equal(t, conf.Encode(), got["websafe_conference_key"])
	assert.Equal(t, "Ann", got["speaker_name"])
	assert.Equal(t, "ann@example.com", got["speaker_email"])
	assert.NotContains(t, got, "speaker_gender")
	assert.Equal(t, []any{"LECTURE"}, got["type_of_session"])
}
