package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferencecentral/internal/domain"
)

var sessionRowColumns = []string{"organizer_user_id", "conference_id", "id", "name", "highlights", "speaker_id", "duration", "type_of_session", "date", "start_time"}

func TestSessionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conf := domain.ConferenceRef{OwnerID: "org-1", LocalID: 2}
	speakerID := int64(11)
	date := domain.NewDate(2026, time.June, 2)
	s := &domain.Session{
		Key:           domain.SessionRef{Conference: conf, LocalID: 5},
		ConferenceKey: conf,
		Name:          "Intro to Go",
		SpeakerID:     &speakerID,
		Duration:      45,
		TypeOfSession: []domain.SessionType{domain.SessionTypeLecture},
		Date:          &date,
		StartTime:     &domain.TimeOfDay{Hour: 10},
	}

	mock.ExpectExec(`INSERT INTO sessions .* \$10::time\)`).
		WithArgs("org-1", int64(2), int64(5), "Intro to Go", "", int64(11), 45,
			pq.Array([]string{"LECTURE"}), date.Time, "10:00").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewSessionRepository(db).Create(context.Background(), s))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_ListByConferenceAndSpeaker(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conf := domain.ConferenceRef{OwnerID: "org-1", LocalID: 2}
	mock.ExpectQuery(`WHERE organizer_user_id = \$1 AND conference_id = \$2 AND speaker_id = \$3 ORDER BY id`).
		WithArgs("org-1", int64(2), int64(11)).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow("org-1", int64(2), int64(1), "First", "", int64(11), 30, "{KEYNOTE}", nil, "09:30").
			AddRow("org-1", int64(2), int64(3), "Second", "", int64(11), 30, "{WORKSHOP,LECTURE}", nil, nil))

	got, err := NewSessionRepository(db).ListByConferenceAndSpeaker(context.Background(), conf, 11)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, conf, got[0].ConferenceKey)
	assert.Equal(t, &domain.TimeOfDay{Hour: 9, Minute: 30}, got[0].StartTime)
	assert.Nil(t, got[1].StartTime)
	assert.True(t, got[1].HasType(domain.SessionTypeWorkshop))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_ListByConferenceExcludingType(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	conf := domain.ConferenceRef{OwnerID: "org-1", LocalID: 2}
	mock.ExpectQuery(`NOT \(\$3 = ANY\(type_of_session\)\) ORDER BY name, id`).
		WithArgs("org-1", int64(2), "WORKSHOP").
		WillReturnRows(sqlmock.NewRows(sessionRowColumns))

	got, err := NewSessionRepository(db).ListByConferenceExcludingType(context.Background(), conf, domain.SessionTypeWorkshop)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
