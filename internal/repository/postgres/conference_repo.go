package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"conferencecentral/internal/domain"
)

const conferenceIDKind = "conference"

const conferenceColumns = `organizer_user_id, id, name, description, topics, city, start_date, end_date, month, max_attendees, seats_available`

var conferenceFieldColumns = map[domain.FilterField]string{
	domain.FieldCity:           "city",
	domain.FieldTopics:         "topics",
	domain.FieldMonth:          "month",
	domain.FieldMaxAttendees:   "max_attendees",
	domain.FieldSeatsAvailable: "seats_available",
}

type conferenceRepository struct {
	DB *sql.DB
}

func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{
		DB: db,
	}
}

func (r *conferenceRepository) AllocateID(ctx context.Context, ownerID string) (int64, error) {
	return allocateID(ctx, conn(ctx, r.DB), conferenceIDKind, ownerID)
}

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	query := `
		INSERT INTO conferences (` + conferenceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := conn(ctx, r.DB).ExecContext(ctx, query,
		c.Key.OwnerID, c.Key.LocalID, c.Name, c.Description, pq.Array(c.Topics), c.City,
		nullDate(c.StartDate), nullDate(c.EndDate), c.Month, c.MaxAttendees, c.SeatsAvailable,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: conference %s already exists", domain.ErrConflict, c.Key)
		}
		return err
	}
	return nil
}

func (r *conferenceRepository) Get(ctx context.Context, ref domain.ConferenceRef) (*domain.Conference, error) {
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE organizer_user_id = $1 AND id = $2` + forUpdate(ctx)
	c, err := scanConference(conn(ctx, r.DB).QueryRowContext(ctx, query, ref.OwnerID, ref.LocalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetMulti returns the conferences that exist among refs, in the order of refs.
func (r *conferenceRepository) GetMulti(ctx context.Context, refs []domain.ConferenceRef) ([]*domain.Conference, error) {
	if len(refs) == 0 {
		return []*domain.Conference{}, nil
	}
	owners := make([]string, len(refs))
	ids := make([]int64, len(refs))
	for i, ref := range refs {
		owners[i] = ref.OwnerID
		ids[i] = ref.LocalID
	}
	query := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE (organizer_user_id, id) IN (SELECT * FROM unnest($1::text[], $2::bigint[]))
	`
	found, err := r.list(ctx, query, pq.Array(owners), pq.Array(ids))
	if err != nil {
		return nil, err
	}
	byRef := make(map[domain.ConferenceRef]*domain.Conference, len(found))
	for _, c := range found {
		byRef[c.Key] = c
	}
	out := make([]*domain.Conference, 0, len(found))
	for _, ref := range refs {
		if c, ok := byRef[ref]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *conferenceRepository) Update(ctx context.Context, c *domain.Conference) error {
	query := `
		UPDATE conferences
		SET name = $3, description = $4, topics = $5, city = $6, start_date = $7, end_date = $8,
			month = $9, max_attendees = $10, seats_available = $11
		WHERE organizer_user_id = $1 AND id = $2
	`
	res, err := conn(ctx, r.DB).ExecContext(ctx, query,
		c.Key.OwnerID, c.Key.LocalID, c.Name, c.Description, pq.Array(c.Topics), c.City,
		nullDate(c.StartDate), nullDate(c.EndDate), c.Month, c.MaxAttendees, c.SeatsAvailable,
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

func (r *conferenceRepository) ListByOrganizer(ctx context.Context, ownerID string) ([]*domain.Conference, error) {
	query := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE organizer_user_id = $1
		ORDER BY name, id
	`
	return r.list(ctx, query, ownerID)
}

func (r *conferenceRepository) Query(ctx context.Context, q domain.ConferenceQuery) ([]*domain.Conference, error) {
	where, order, args, err := conferenceQuerySQL(q)
	if err != nil {
		return nil, err
	}
	return r.list(ctx, `SELECT `+conferenceColumns+` FROM conferences`+where+order, args...)
}

func (r *conferenceRepository) QueryNames(ctx context.Context, q domain.ConferenceQuery) ([]string, error) {
	where, order, args, err := conferenceQuerySQL(q)
	if err != nil {
		return nil, err
	}
	rows, err := conn(ctx, r.DB).QueryContext(ctx, `SELECT name FROM conferences`+where+order, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// conferenceQuerySQL renders a validated query as WHERE and ORDER BY clauses.
// Topics is a list column, so its predicates match when any topic satisfies them.
func conferenceQuerySQL(q domain.ConferenceQuery) (where, order string, args []any, err error) {
	var conds []string
	for _, f := range q.Filters {
		col, ok := conferenceFieldColumns[f.Field]
		if !ok {
			return "", "", nil, domain.ErrInvalidFilter
		}
		args = append(args, f.Value)
		placeholder := fmt.Sprintf("$%d", len(args))
		if f.Field == domain.FieldTopics {
			conds = append(conds, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(topics) AS t(topic) WHERE t.topic %s %s)", f.Operator, placeholder))
			continue
		}
		conds = append(conds, fmt.Sprintf("%s %s %s", col, f.Operator, placeholder))
	}
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	keys := q.OrderBy()
	cols := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "name" {
			cols = append(cols, "name")
			continue
		}
		cols = append(cols, conferenceFieldColumns[domain.FilterField(k)])
	}
	order = " ORDER BY " + strings.Join(cols, ", ")
	return where, order, args, nil
}

func (r *conferenceRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Conference, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	conferences := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		conferences = append(conferences, c)
	}
	return conferences, rows.Err()
}

func scanConference(row rowScanner) (*domain.Conference, error) {
	c := &domain.Conference{}
	var startDate, endDate sql.NullTime
	if err := row.Scan(
		&c.Key.OwnerID, &c.Key.LocalID, &c.Name, &c.Description, pq.Array(&c.Topics), &c.City,
		&startDate, &endDate, &c.Month, &c.MaxAttendees, &c.SeatsAvailable,
	); err != nil {
		return nil, err
	}
	c.OrganizerUserID = c.Key.OwnerID
	c.StartDate = scanDate(startDate)
	c.EndDate = scanDate(endDate)
	if c.Topics == nil {
		c.Topics = []string{}
	}
	return c, nil
}
