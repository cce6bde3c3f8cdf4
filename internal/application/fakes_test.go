package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
	repo "github.com/oksasatya/go-access-control/internal/domain/repository"
	"github.com/oksasatya/go-access-control/pkg/helpers"
)

type memUsers struct {
	mu     sync.Mutex
	byID   map[string]*entity.User
	seq    int
	err    error
	lookup int
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]*entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, x := range m.byID {
		if x.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	m.seq++
	u.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
	if u.Role == "" {
		u.Role = entity.RoleUser
	}
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup++
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookup++
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *memUsers) List(_ context.Context) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]entity.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// memAccessLogs mimics the Postgres listing: newest first, joined with users.
type memAccessLogs struct {
	mu    sync.Mutex
	users *memUsers
	rows  []entity.AccessLog
	seq   int
	err   error
}

func newMemAccessLogs(users *memUsers) *memAccessLogs { return &memAccessLogs{users: users} }

func (m *memAccessLogs) Create(_ context.Context, l *entity.AccessLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.seq++
	l.ID = fmt.Sprintf("log-%04d", m.seq)
	m.rows = append(m.rows, *l)
	return nil
}

func (m *memAccessLogs) List(ctx context.Context, f repo.AccessLogFilter) ([]entity.AccessLog, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	out := make([]entity.AccessLog, 0, len(m.rows))
	for _, r := range m.rows {
		if f.UserID == "" || r.UserID == f.UserID {
			out = append(out, r)
		}
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []entity.AccessLog{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	for i := range out {
		if out[i].UserID == "" || m.users == nil {
			continue
		}
		if u, err := m.users.FindByID(ctx, out[i].UserID); err == nil {
			pub := u.Public()
			out[i].User = &pub
		}
	}
	return out, nil
}

func (m *memAccessLogs) all() []entity.AccessLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.AccessLog(nil), m.rows...)
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (plainHasher) Verify(hash, plain string) bool {
	return strings.TrimPrefix(hash, "hashed:") == plain && strings.HasPrefix(hash, "hashed:")
}

// stepClock returns strictly increasing times.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type notification struct {
	UserID string
	Status entity.AccessStatus
	IP     string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *recordingNotifier) NotifyLogin(_ context.Context, u *entity.User, status entity.AccessStatus, client ClientInfo, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{UserID: u.ID, Status: status, IP: client.IPAddress})
	return n.err
}

type failingIssuer struct{}

func (failingIssuer) GenerateAccessToken(helpers.TokenSubject) (string, time.Time, error) {
	return "", time.Time{}, errors.New("signer down")
}

type fakeIndexer struct {
	indexed []entity.AccessLog
	err     error
	hits    []entity.AccessLog
	lastQ   string
	lastN   int
}

func (f *fakeIndexer) Index(_ context.Context, l entity.AccessLog) error {
	f.indexed = append(f.indexed, l)
	return f.err
}

func (f *fakeIndexer) Search(_ context.Context, q string, size int) ([]entity.AccessLog, error) {
	f.lastQ, f.lastN = q, size
	return f.hits, nil
}

type fakeExporter struct {
	got []entity.AccessLog
	url string
	err error
}

func (f *fakeExporter) Export(_ context.Context, logs []entity.AccessLog) (string, error) {
	f.got = logs
	return f.url, f.err
}

type mapCache struct {
	m       map[string]entity.PublicUser
	readErr error
}

func (c *mapCache) Get(_ context.Context, id string) (*entity.PublicUser, bool, error) {
	if c.readErr != nil {
		return nil, false, c.readErr
	}
	u, ok := c.m[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (c *mapCache) Set(_ context.Context, u entity.PublicUser) error {
	c.m[u.ID] = u
	return nil
}
