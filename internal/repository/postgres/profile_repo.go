package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

const profileColumns = `user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend, session_keys_wishlist`

type profileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) domain.ProfileRepository {
	return &profileRepository{
		DB: db,
	}
}

func (r *profileRepository) GetOrCreate(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	conferenceKeys, sessionKeys := encodeMembership(p)
	insert := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO NOTHING
	`
	q := conn(ctx, r.DB)
	if _, err := q.ExecContext(ctx, insert,
		p.UserID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize),
		pq.Array(conferenceKeys), pq.Array(sessionKeys),
	); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return r.Get(ctx, p.UserID)
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1` + forUpdate(ctx)
	p, err := scanProfile(conn(ctx, r.DB).QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) GetMulti(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	out := make(map[string]*domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = ANY($1)`
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	return out, rows.Err()
}

func (r *profileRepository) Update(ctx context.Context, p *domain.Profile) error {
	conferenceKeys, sessionKeys := encodeMembership(p)
	query := `
		UPDATE profiles
		SET display_name = $2, main_email = $3, tee_shirt_size = $4,
			conference_keys_to_attend = $5, session_keys_wishlist = $6
		WHERE user_id = $1
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		p.UserID, p.DisplayName, p.MainEmail, string(p.TeeShirtSize),
		pq.Array(conferenceKeys), pq.Array(sessionKeys),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	p := &domain.Profile{}
	var size string
	var conferenceKeys, sessionKeys []string
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.MainEmail, &size,
		pq.Array(&conferenceKeys), pq.Array(&sessionKeys)); err != nil {
		return nil, err
	}
	p.TeeShirtSize = domain.TeeShirtSize(size)
	p.ConferenceKeysToAttend = make([]domain.ConferenceRef, 0, len(conferenceKeys))
	for _, k := range conferenceKeys {
		ref, err := domain.DecodeConferenceRef(k)
		if err != nil {
			return nil, fmt.Errorf("profile %s: stored conference key %q: %w", p.UserID, k, err)
		}
		p.ConferenceKeysToAttend = append(p.ConferenceKeysToAttend, ref)
	}
	p.SessionKeysWishlist = make([]domain.SessionRef, 0, len(sessionKeys))
	for _, k := range sessionKeys {
		ref, err := domain.DecodeSessionRef(k)
		if err != nil {
			return nil, fmt.Errorf("profile %s: stored session key %q: %w", p.UserID, k, err)
		}
		p.SessionKeysWishlist = append(p.SessionKeysWishlist, ref)
	}
	return p, nil
}

func encodeMembership(p *domain.Profile) (conferenceKeys, sessionKeys []string) {
	conferenceKeys = make([]string, 0, len(p.ConferenceKeysToAttend))
	for _, ref := range p.ConferenceKeysToAttend {
		conferenceKeys = append(conferenceKeys, ref.Encode())
	}
	sessionKeys = make([]string, 0, len(p.SessionKeysWishlist))
	for _, ref := range p.SessionKeysWishlist {
		sessionKeys = append(sessionKeys, ref.Encode())
	}
	return conferenceKeys, sessionKeys
}
