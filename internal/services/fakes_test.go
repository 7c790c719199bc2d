package services

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"conferencecentral/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const testTimeout = 5 * time.Second

// memStore is an in-memory entity store. Transactions are serialized by txMu
// and roll back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	profiles     map[string]*domain.Profile
	conferences  map[domain.ConferenceRef]*domain.Conference
	sessions     map[domain.SessionRef]*domain.Session
	sessionOrder []domain.SessionRef
	speakers     map[int64]*domain.Speaker
	ids          map[string]int64
	nextSpeaker  int64

	updateConferenceErr error
}

type memTxKey struct{}

func newMemStore() *memStore {
	return &memStore{
		profiles:    make(map[string]*domain.Profile),
		conferences: make(map[domain.ConferenceRef]*domain.Conference),
		sessions:    make(map[domain.SessionRef]*domain.Session),
		speakers:    make(map[int64]*domain.Speaker),
		ids:         make(map[string]int64),
	}
}

func (m *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	profiles := maps.Clone(m.profiles)
	conferences := maps.Clone(m.conferences)
	m.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.mu.Lock()
		m.profiles = profiles
		m.conferences = conferences
		m.mu.Unlock()
		return err
	}
	return nil
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	c := *p
	c.ConferenceKeysToAttend = slices.Clone(p.ConferenceKeysToAttend)
	c.SessionKeysWishlist = slices.Clone(p.SessionKeysWishlist)
	if c.ConferenceKeysToAttend == nil {
		c.ConferenceKeysToAttend = []domain.ConferenceRef{}
	}
	if c.SessionKeysWishlist == nil {
		c.SessionKeysWishlist = []domain.SessionRef{}
	}
	return &c
}

func cloneConference(c *domain.Conference) *domain.Conference {
	out := *c
	out.Topics = slices.Clone(c.Topics)
	return &out
}

func cloneSession(s *domain.Session) *domain.Session {
	out := *s
	out.TypeOfSession = slices.Clone(s.TypeOfSession)
	return &out
}

type memProfileRepo struct{ s *memStore }

func (r memProfileRepo) GetOrCreate(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if existing, ok := r.s.profiles[p.UserID]; ok {
		return cloneProfile(existing), nil
	}
	r.s.profiles[p.UserID] = cloneProfile(p)
	return cloneProfile(p), nil
}

func (r memProfileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r memProfileRepo) GetMulti(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[string]*domain.Profile)
	for _, id := range userIDs {
		if p, ok := r.s.profiles[id]; ok {
			out[id] = cloneProfile(p)
		}
	}
	return out, nil
}

func (r memProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.UserID]; !ok {
		return domain.ErrNotFound
	}
	r.s.profiles[p.UserID] = cloneProfile(p)
	return nil
}

type memConferenceRepo struct{ s *memStore }

func (r memConferenceRepo) AllocateID(ctx context.Context, ownerID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ids["conference/"+ownerID]++
	return r.s.ids["conference/"+ownerID], nil
}

func (r memConferenceRepo) Create(ctx context.Context, c *domain.Conference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.conferences[c.Key]; ok {
		return domain.ErrConflict
	}
	r.s.conferences[c.Key] = cloneConference(c)
	return nil
}

func (r memConferenceRepo) Get(ctx context.Context, ref domain.ConferenceRef) (*domain.Conference, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.conferences[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneConference(c), nil
}

func (r memConferenceRepo) GetMulti(ctx context.Context, refs []domain.ConferenceRef) ([]*domain.Conference, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Conference, 0, len(refs))
	for _, ref := range refs {
		if c, ok := r.s.conferences[ref]; ok {
			out = append(out, cloneConference(c))
		}
	}
	return out, nil
}

func (r memConferenceRepo) Update(ctx context.Context, c *domain.Conference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.updateConferenceErr != nil {
		return r.s.updateConferenceErr
	}
	if _, ok := r.s.conferences[c.Key]; !ok {
		return domain.ErrNotFound
	}
	r.s.conferences[c.Key] = cloneConference(c)
	return nil
}

func (r memConferenceRepo) ListByOrganizer(ctx context.Context, ownerID string) ([]*domain.Conference, error) {
	return r.filter(func(c *domain.Conference) bool { return c.OrganizerUserID == ownerID }, nil), nil
}

func (r memConferenceRepo) Query(ctx context.Context, q domain.ConferenceQuery) ([]*domain.Conference, error) {
	return r.filter(func(c *domain.Conference) bool { return matchesQuery(c, q) }, &q), nil
}

func (r memConferenceRepo) QueryNames(ctx context.Context, q domain.ConferenceQuery) ([]string, error) {
	var names []string
	for _, c := range r.filter(func(c *domain.Conference) bool { return matchesQuery(c, q) }, &q) {
		names = append(names, c.Name)
	}
	return names, nil
}

func (r memConferenceRepo) filter(keep func(*domain.Conference) bool, q *domain.ConferenceQuery) []*domain.Conference {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Conference, 0)
	for _, c := range r.s.conferences {
		if keep(c) {
			out = append(out, cloneConference(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if q != nil && q.InequalityField != "" {
			a, b := numericField(out[i], q.InequalityField), numericField(out[j], q.InequalityField)
			if a != b {
				return a < b
			}
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func numericField(c *domain.Conference, f domain.FilterField) int {
	switch f {
	case domain.FieldMonth:
		return c.Month
	case domain.FieldMaxAttendees:
		return c.MaxAttendees
	case domain.FieldSeatsAvailable:
		return c.SeatsAvailable
	}
	return 0
}

func matchesQuery(c *domain.Conference, q domain.ConferenceQuery) bool {
	for _, f := range q.Filters {
		switch f.Field {
		case domain.FieldCity:
			if !compareStrings(c.City, f.Operator, f.Value.(string)) {
				return false
			}
		case domain.FieldTopics:
			if !slices.ContainsFunc(c.Topics, func(t string) bool { return compareStrings(t, f.Operator, f.Value.(string)) }) {
				return false
			}
		default:
			if !compareInts(numericField(c, f.Field), f.Operator, f.Value.(int)) {
				return false
			}
		}
	}
	return true
}

func compareStrings(a string, op domain.FilterOperator, b string) bool {
	return compareInts(strings.Compare(a, b), op, 0)
}

func compareInts(a int, op domain.FilterOperator, b int) bool {
	switch op {
	case domain.OpEQ:
		return a == b
	case domain.OpGT:
		return a > b
	case domain.OpGTEQ:
		return a >= b
	case domain.OpLT:
		return a < b
	case domain.OpLTEQ:
		return a <= b
	case domain.OpNE:
		return a != b
	}
	return false
}

type memSessionRepo struct{ s *memStore }

func (r memSessionRepo) AllocateID(ctx context.Context, conference domain.ConferenceRef) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := "session/" + conference.Encode()
	r.s.ids[key]++
	return r.s.ids[key], nil
}

func (r memSessionRepo) Create(ctx context.Context, sess *domain.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.conferences[sess.Key.Conference]; !ok {
		return domain.ErrNotFound
	}
	r.s.sessions[sess.Key] = cloneSession(sess)
	r.s.sessionOrder = append(r.s.sessionOrder, sess.Key)
	return nil
}

func (r memSessionRepo) Get(ctx context.Context, ref domain.SessionRef) (*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[ref]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneSession(sess), nil
}

func (r memSessionRepo) GetMulti(ctx context.Context, refs []domain.SessionRef) ([]*domain.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Session, 0, len(refs))
	for _, ref := range refs {
		if sess, ok := r.s.sessions[ref]; ok {
			out = append(out, cloneSession(sess))
		}
	}
	return out, nil
}

// inCreationOrder returns matching sessions in creation order.
func (r memSessionRepo) inCreationOrder(keep func(*domain.Session) bool) []*domain.Session {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Session, 0)
	for _, ref := range r.s.sessionOrder {
		if sess := r.s.sessions[ref]; keep(sess) {
			out = append(out, cloneSession(sess))
		}
	}
	return out
}

func byName(sessions []*domain.Session) []*domain.Session {
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Name < sessions[j].Name })
	return sessions
}

func (r memSessionRepo) ListByConference(ctx context.Context, conference domain.ConferenceRef) ([]*domain.Session, error) {
	return byName(r.inCreationOrder(func(s *domain.Session) bool { return s.Key.Conference == conference })), nil
}

func (r memSessionRepo) ListByConferenceAndType(ctx context.Context, conference domain.ConferenceRef, t domain.SessionType) ([]*domain.Session, error) {
	return byName(r.inCreationOrder(func(s *domain.Session) bool { return s.Key.Conference == conference && s.HasType(t) })), nil
}

func (r memSessionRepo) ListByConferenceExcludingType(ctx context.Context, conference domain.ConferenceRef, t domain.SessionType) ([]*domain.Session, error) {
	return byName(r.inCreationOrder(func(s *domain.Session) bool { return s.Key.Conference == conference && !s.HasType(t) })), nil
}

func (r memSessionRepo) ListByConferenceAndSpeaker(ctx context.Context, conference domain.ConferenceRef, speakerID int64) ([]*domain.Session, error) {
	return r.inCreationOrder(func(s *domain.Session) bool {
		return s.Key.Conference == conference && s.SpeakerID != nil && *s.SpeakerID == speakerID
	}), nil
}

func (r memSessionRepo) ListBySpeaker(ctx context.Context, speakerID int64) ([]*domain.Session, error) {
	return byName(r.inCreationOrder(func(s *domain.Session) bool { return s.SpeakerID != nil && *s.SpeakerID == speakerID })), nil
}

type memSpeakerRepo struct{ s *memStore }

func (r memSpeakerRepo) Create(ctx context.Context, sp *domain.Speaker) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.speakers {
		if existing.Email == sp.Email {
			return domain.ErrDuplicateSpeakerEmail
		}
	}
	r.s.nextSpeaker++
	sp.ID = r.s.nextSpeaker
	c := *sp
	r.s.speakers[sp.ID] = &c
	return nil
}

func (r memSpeakerRepo) Update(ctx context.Context, sp *domain.Speaker) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.speakers[sp.ID]; !ok {
		return domain.ErrNotFound
	}
	c := *sp
	r.s.speakers[sp.ID] = &c
	return nil
}

func (r memSpeakerRepo) GetByEmail(ctx context.Context, email string) (*domain.Speaker, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sp := range r.s.speakers {
		if sp.Email == email {
			c := *sp
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r memSpeakerRepo) GetMulti(ctx context.Context, ids []int64) ([]*domain.Speaker, error) {
	return r.list(func(sp *domain.Speaker) bool { return slices.Contains(ids, sp.ID) }), nil
}

func (r memSpeakerRepo) List(ctx context.Context) ([]*domain.Speaker, error) {
	return r.list(func(*domain.Speaker) bool { return true }), nil
}

func (r memSpeakerRepo) ListByName(ctx context.Context, name string) ([]*domain.Speaker, error) {
	return r.list(func(sp *domain.Speaker) bool { return sp.Name == name }), nil
}

func (r memSpeakerRepo) list(keep func(*domain.Speaker) bool) []*domain.Speaker {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Speaker, 0)
	for _, sp := range r.s.speakers {
		if keep(sp) {
			c := *sp
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type submittedTask struct {
	Kind   domain.TaskKind
	Params map[string]string
}

// recordingQueue records submitted tasks instead of running them.
type recordingQueue struct {
	mu    sync.Mutex
	tasks []submittedTask
}

func (q *recordingQueue) Submit(kind domain.TaskKind, params map[string]string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, submittedTask{Kind: kind, Params: params})
}

func (q *recordingQueue) ofKind(kind domain.TaskKind) []submittedTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []submittedTask
	for _, t := range q.tasks {
		if t.Kind == kind {
			out = append(out, t)
		}
	}
	return out
}

type fakeCache struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *fakeCache) Clear(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

// testEnv wires every service over one memStore.
type testEnv struct {
	store         *memStore
	tasks         *recordingQueue
	cache         *fakeCache
	profiles      domain.ProfileService
	conferences   domain.ConferenceService
	registrations domain.RegistrationService
	sessions      domain.SessionService
	announcements domain.AnnouncementService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	tasks := &recordingQueue{}
	cache := newFakeCache()
	profileRepo := memProfileRepo{store}
	conferenceRepo := memConferenceRepo{store}
	sessionRepo := memSessionRepo{store}
	speakerRepo := memSpeakerRepo{store}
	return &testEnv{
		store:         store,
		tasks:         tasks,
		cache:         cache,
		profiles:      NewProfileService(profileRepo, store, testTimeout),
		conferences:   NewConferenceService(profileRepo, conferenceRepo, store, tasks, testLogger, testTimeout),
		registrations: NewRegistrationService(profileRepo, conferenceRepo, sessionRepo, speakerRepo, store, tasks, testTimeout),
		sessions:      NewSessionService(conferenceRepo, sessionRepo, speakerRepo, tasks, testLogger, testTimeout),
		announcements: NewAnnouncementService(conferenceRepo, cache, testLogger, testTimeout),
	}
}

func caller(id string) domain.Caller {
	return domain.Caller{UserID: id, Email: id + "@example.com", DisplayName: strings.ToUpper(id)}
}

func (e *testEnv) conference(ref domain.ConferenceRef) *domain.Conference {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	return cloneConference(e.store.conferences[ref])
}

// profile returns a copy of the stored profile, or nil when none was ever committed.
func (e *testEnv) profile(userID string) *domain.Profile {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	p, ok := e.store.profiles[userID]
	if !ok || p == nil {
		return nil
	}
	return cloneProfile(p)
}
