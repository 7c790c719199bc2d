package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

type speakerRepository struct {
	DB *sql.DB
}

func NewSpeakerRepository(db *sql.DB) domain.SpeakerRepository {
	return &speakerRepository{
		DB: db,
	}
}

func (r *speakerRepository) Create(ctx context.Context, sp *domain.Speaker) error {
	query := `
		INSERT INTO speakers (name, email, gender)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, sp.Name, sp.Email, sp.Gender).Scan(&sp.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSpeakerEmail
		}
		return err
	}
	return nil
}

func (r *speakerRepository) Update(ctx context.Context, sp *domain.Speaker) error {
	query := `UPDATE speakers SET name = $2, email = $3, gender = $4 WHERE id = $1`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query, sp.ID, sp.Name, sp.Email, sp.Gender)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSpeakerEmail
		}
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

func (r *speakerRepository) GetByEmail(ctx context.Context, email string) (*domain.Speaker, error) {
	query := `SELECT id, name, email, gender FROM speakers WHERE email = $1`
	sp := &domain.Speaker{}
	err := conn(ctx, r.DB).QueryRowContext(ctx, query, email).Scan(&sp.ID, &sp.Name, &sp.Email, &sp.Gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sp, nil
}

func (r *speakerRepository) GetMulti(ctx context.Context, ids []int64) ([]*domain.Speaker, error) {
	if len(ids) == 0 {
		return []*domain.Speaker{}, nil
	}
	query := `SELECT id, name, email, gender FROM speakers WHERE id = ANY($1) ORDER BY name, id`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *speakerRepository) List(ctx context.Context) ([]*domain.Speaker, error) {
	return r.list(ctx, `SELECT id, name, email, gender FROM speakers ORDER BY name, id`)
}

func (r *speakerRepository) ListByName(ctx context.Context, name string) ([]*domain.Speaker, error) {
	return r.list(ctx, `SELECT id, name, email, gender FROM speakers WHERE name = $1 ORDER BY id`, name)
}

func (r *speakerRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Speaker, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	speakers := make([]*domain.Speaker, 0)
	for rows.Next() {
		sp := &domain.Speaker{}
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.Email, &sp.Gender); err != nil {
			return nil, err
		}
		speakers = append(speakers, sp)
	}
	return speakers, rows.Err()
}
