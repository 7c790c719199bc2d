package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

const sessionIDKind = "session"

const sessionSelectColumns = `organizer_user_id, conference_id, id, name, highlights, speaker_id, duration,
	type_of_session, date, to_char(start_time, 'HH24:MI')`

type sessionRepository struct {
	DB *sql.DB
}

func NewSessionRepository(db *sql.DB) domain.SessionRepository {
	return &sessionRepository{
		DB: db,
	}
}

func (r *sessionRepository) AllocateID(ctx context.Context, conference domain.ConferenceRef) (int64, error) {
	return allocateID(ctx, conn(ctx, r.DB), sessionIDKind, conference.Encode())
}

func (r *sessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (organizer_user_id, conference_id, id, name, highlights, speaker_id, duration,
			type_of_session, date, start_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::time)
	`
	var startTime any
	if s.StartTime != nil {
		startTime = s.StartTime.String()
	}
	var speakerID any
	if s.SpeakerID != nil {
		speakerID = *s.SpeakerID
	}
	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		s.Key.Conference.OwnerID, s.Key.Conference.LocalID, s.Key.LocalID, s.Name, s.Highlights, speakerID,
		s.Duration, pq.Array(sessionTypeNames(s.TypeOfSession)), nullDate(s.Date), startTime,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: session %s already exists", domain.ErrConflict, s.Key)
		}
		return err
	}
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, ref domain.SessionRef) (*domain.Session, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE organizer_user_id = $1 AND conference_id = $2 AND id = $3
	`
	s, err := scanSession(conn(ctx, r.DB).QueryRowContext(ctx, query,
		ref.Conference.OwnerID, ref.Conference.LocalID, ref.LocalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetMulti returns the sessions that exist among refs, in the order of refs.
func (r *sessionRepository) GetMulti(ctx context.Context, refs []domain.SessionRef) ([]*domain.Session, error) {
	if len(refs) == 0 {
		return []*domain.Session{}, nil
	}
	owners := make([]string, len(refs))
	confIDs := make([]int64, len(refs))
	ids := make([]int64, len(refs))
	for i, ref := range refs {
		owners[i] = ref.Conference.OwnerID
		confIDs[i] = ref.Conference.LocalID
		ids[i] = ref.LocalID
	}
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE (organizer_user_id, conference_id, id) IN (SELECT * FROM unnest($1::text[], $2::bigint[], $3::bigint[]))
	`
	found, err := r.list(ctx, query, pq.Array(owners), pq.Array(confIDs), pq.Array(ids))
	if err != nil {
		return nil, err
	}
	byRef := make(map[domain.SessionRef]*domain.Session, len(found))
	for _, s := range found {
		byRef[s.Key] = s
	}
	out := make([]*domain.Session, 0, len(found))
	for _, ref := range refs {
		if s, ok := byRef[ref]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *sessionRepository) ListByConference(ctx context.Context, conference domain.ConferenceRef) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE organizer_user_id = $1 AND conference_id = $2
		ORDER BY name, id
	`
	return r.list(ctx, query, conference.OwnerID, conference.LocalID)
}

func (r *sessionRepository) ListByConferenceAndType(ctx context.Context, conference domain.ConferenceRef, t domain.SessionType) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE organizer_user_id = $1 AND conference_id = $2 AND $3 = ANY(type_of_session)
		ORDER BY name, id
	`
	return r.list(ctx, query, conference.OwnerID, conference.LocalID, string(t))
}

func (r *sessionRepository) ListByConferenceExcludingType(ctx context.Context, conference domain.ConferenceRef, t domain.SessionType) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE organizer_user_id = $1 AND conference_id = $2 AND NOT ($3 = ANY(type_of_session))
		ORDER BY name, id
	`
	return r.list(ctx, query, conference.OwnerID, conference.LocalID, string(t))
}

func (r *sessionRepository) ListByConferenceAndSpeaker(ctx context.Context, conference domain.ConferenceRef, speakerID int64) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE organizer_user_id = $1 AND conference_id = $2 AND speaker_id = $3
		ORDER BY id
	`
	return r.list(ctx, query, conference.OwnerID, conference.LocalID, speakerID)
}

func (r *sessionRepository) ListBySpeaker(ctx context.Context, speakerID int64) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionSelectColumns + `
		FROM sessions
		WHERE speaker_id = $1
		ORDER BY name, organizer_user_id, conference_id, id
	`
	return r.list(ctx, query, speakerID)
}

func (r *sessionRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sessions := make([]*domain.Session, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*domain.Session, error) {
	s := &domain.Session{}
	var speakerID sql.NullInt64
	var types []string
	var date sql.NullTime
	var startTime sql.NullString
	if err := row.Scan(
		&s.Key.Conference.OwnerID, &s.Key.Conference.LocalID, &s.Key.LocalID, &s.Name, &s.Highlights,
		&speakerID, &s.Duration, pq.Array(&types), &date, &startTime,
	); err != nil {
		return nil, err
	}
	s.ConferenceKey = s.Key.Conference
	if speakerID.Valid {
		id := speakerID.Int64
		s.SpeakerID = &id
	}
	s.TypeOfSession = make([]domain.SessionType, 0, len(types))
	for _, t := range types {
		s.TypeOfSession = append(s.TypeOfSession, domain.SessionType(t))
	}
	s.Date = scanDate(date)
	if startTime.Valid {
		tod, err := domain.ParseTimeOfDay(startTime.String)
		if err != nil {
			return nil, fmt.Errorf("session %s: stored start time: %w", s.Key, err)
		}
		s.StartTime = &tod
	}
	return s, nil
}

func sessionTypeNames(types []domain.SessionType) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, string(t))
	}
	return names
}
