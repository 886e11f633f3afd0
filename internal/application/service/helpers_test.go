package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/dispatcher"
	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/auth"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/domain/event"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/repository"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/lecturer-claims/internal/testutil"
)

// env wires the services against a temp-file database
type env struct {
	db        *sqlite.DB
	claimRepo port.ClaimRepository
	docRepo   port.DocumentRepository
	history   port.HistoryRepository
	userRepo  port.UserRepository
	storage   *memoryStorage
	claims    ClaimService
	documents DocumentService
	users     UserService
	events    *eventRecorder
}

// eventRecorder collects every dispatched event
type eventRecorder struct {
	mu     sync.Mutex
	events []*event.Event
}

func (r *eventRecorder) record(_ context.Context, evt *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *eventRecorder) ofType(t event.Type) []*event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*event.Event
	for _, evt := range r.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	logger := zap.NewNop()

	e := &env{
		db:        db,
		claimRepo: repository.NewClaimRepository(db, logger),
		docRepo:   repository.NewDocumentRepository(db, logger),
		history:   repository.NewHistoryRepository(db, logger),
		userRepo:  repository.NewUserRepository(db, logger),
		storage:   newMemoryStorage(),
	}
	e.events = &eventRecorder{}
	events := dispatcher.NewDispatcher(dispatcher.WithLogger(logger))
	for _, typ := range []event.Type{event.TypeClaimSubmitted, event.TypeClaimDecided, event.TypeDocumentAttached} {
		events.SubscribeNamed(typ, "recorder", e.events.record)
	}

	e.claims = NewClaimService(e.claimRepo, e.history, e.userRepo, db, logger, WithClaimEvents(events))
	e.documents = NewDocumentService(e.claimRepo, e.docRepo, e.storage, logger, WithDocumentEvents(events))
	e.users = NewUserService(e.userRepo, auth.NewTokenManager("test-secret", 0, "test"), logger)
	return e
}

func (e *env) user(t *testing.T, email string, role entity.Role, rate int64) entity.Caller {
	t.Helper()
	u := &entity.User{
		Email:        email,
		FullName:     "User " + email,
		Role:         role,
		HourlyRate:   decimal.NewFromInt(rate),
		IsActive:     true,
		PasswordHash: "unused",
	}
	require.NoError(t, e.userRepo.Create(context.Background(), u))
	return entity.Caller{UserID: u.ID, Role: role}
}

func (e *env) submit(t *testing.T, caller entity.Caller, hours, rate int64) *entity.Claim {
	t.Helper()
	r := decimal.NewFromInt(rate)
	claim, err := e.claims.Submit(context.Background(), caller, SubmitClaimInput{
		HoursWorked: decimal.NewFromInt(hours),
		HourlyRate:  &r,
	})
	require.NoError(t, err)
	return claim
}

// memoryStorage is an in-memory port.FileStorage
type memoryStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	saveErr error
	deleted []string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: map[string][]byte{}}
}

func (m *memoryStorage) Save(ctx context.Context, name string, content []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return "", m.saveErr
	}
	m.files[name] = append([]byte(nil), content...)
	return name, nil
}

func (m *memoryStorage) Read(ctx context.Context, path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.files[path]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return content, nil
}

func (m *memoryStorage) Delete(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, path)
	m.deleted = append(m.deleted, path)
	return nil
}

func (m *memoryStorage) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}
