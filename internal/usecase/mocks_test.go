package usecase

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arklim/realmeye-identity/internal/core/domain"
	"github.com/arklim/realmeye-identity/internal/infra/config"
	"github.com/arklim/realmeye-identity/internal/repository"
)

type mockUserRepo struct {
	byName map[string]*domain.User

	insertErr    error
	replaceErr   error
	findErr      error
	insertCalls  int
	replaceCalls int
	nextID       int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{byName: map[string]*domain.User{}}
}

func (m *mockUserRepo) add(user domain.User) {
	copied := user
	m.byName[user.Name] = &copied
}

func (m *mockUserRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	user, ok := m.byName[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range m.byName {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) Insert(_ context.Context, user domain.User) (domain.User, error) {
	m.insertCalls++
	if m.insertErr != nil {
		return domain.User{}, m.insertErr
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	m.add(user)
	return user, nil
}

func (m *mockUserRepo) ReplaceByID(_ context.Context, id string, user domain.User) error {
	m.replaceCalls++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	for name, existing := range m.byName {
		if existing.ID == id {
			delete(m.byName, name)
			user.ID = id
			m.add(user)
			return nil
		}
	}
	return repository.ErrNotFound
}

type mockSessionStore struct {
	sessions map[string]domain.RegistrationSession

	saveTTL     time.Duration
	saveErr     error
	deleteCalls int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]domain.RegistrationSession{}}
}

func (m *mockSessionStore) Save(_ context.Context, session domain.RegistrationSession, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saveTTL = ttl
	m.sessions[session.ID] = session
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, sessionID string) (*domain.RegistrationSession, error) {
	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := session
	return &copied, nil
}

func (m *mockSessionStore) Delete(_ context.Context, sessionID string) error {
	m.deleteCalls++
	if _, ok := m.sessions[sessionID]; !ok {
		return repository.ErrNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

type mockAuthCodeStore struct {
	bindings map[string]string

	saveTTL time.Duration
	saveErr error
}

func newMockAuthCodeStore() *mockAuthCodeStore {
	return &mockAuthCodeStore{bindings: map[string]string{}}
}

func (m *mockAuthCodeStore) Save(_ context.Context, code, userID string, ttl time.Duration) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saveTTL = ttl
	m.bindings[code] = userID
	return nil
}

func (m *mockAuthCodeStore) Consume(_ context.Context, code string) (string, error) {
	userID, ok := m.bindings[code]
	if !ok {
		return "", repository.ErrNotFound
	}
	delete(m.bindings, code)
	return userID, nil
}

// mockHasher is a deterministic stand-in; engine tests exercise
// orchestration, not Argon2 itself.
type mockHasher struct {
	saltCounter int
}

func (m *mockHasher) Hash(password, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, fmt.Errorf("empty salt")
	}
	return []byte("hash(" + string(password) + "|" + string(salt) + ")"), nil
}

func (m *mockHasher) GenerateSalt() ([]byte, error) {
	m.saltCounter++
	return []byte(fmt.Sprintf("salt-%d", m.saltCounter)), nil
}

type mockCodeGen struct {
	counter int
}

func (m *mockCodeGen) GenerateCode() (string, error) {
	m.counter++
	return fmt.Sprintf("RID_code-%d", m.counter), nil
}

type mockVerifier struct {
	result    bool
	err       error
	delay     time.Duration
	exactName string

	calls    int
	lastName string
	lastCode string
}

func (m *mockVerifier) VerifyCode(ctx context.Context, name, code string) (string, bool, error) {
	m.calls++
	m.lastName = name
	m.lastCode = code
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", false, ctx.Err()
		}
	}
	if m.err != nil {
		return "", false, m.err
	}
	if !m.result {
		return "", false, nil
	}
	if m.exactName != "" {
		return m.exactName, true, nil
	}
	return name, true, nil
}

type mockPublisher struct {
	registered []domain.UserRegisteredEvent
	changed    []domain.PasswordChangedEvent
	err        error
}

func (m *mockPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	if m.err != nil {
		return m.err
	}
	m.registered = append(m.registered, event)
	return nil
}

func (m *mockPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	if m.err != nil {
		return m.err
	}
	m.changed = append(m.changed, event)
	return nil
}

type serviceFixture struct {
	service  *Service
	users    *mockUserRepo
	sessions *mockSessionStore
	codes    *mockAuthCodeStore
	hasher   *mockHasher
	codegen  *mockCodeGen
	verifier *mockVerifier
	events   *mockPublisher
	now      time.Time
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Registration: config.RegistrationSettings{
			SessionIDLength: 16,
			SessionLifetime: 15 * time.Minute,
			CodeLength:      16,
		},
		AuthCode: config.AuthCodeSettings{
			Length:   16,
			Lifetime: time.Minute,
		},
		Token: config.TokenSettings{
			Issuer:     "realmeye-identity-test",
			SigningKey: base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32))),
			Lifetime:   15 * time.Minute,
		},
	}
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		users:    newMockUserRepo(),
		sessions: newMockSessionStore(),
		codes:    newMockAuthCodeStore(),
		hasher:   &mockHasher{},
		codegen:  &mockCodeGen{},
		verifier: &mockVerifier{result: true},
		events:   &mockPublisher{},
		// Parsing validates exp against the wall clock, so the frozen test
		// clock has to start at real time. Truncated because token
		// timestamps carry second precision.
		now: time.Now().UTC().Truncate(time.Second),
	}

	service, err := NewService(
		testConfig(),
		f.users,
		f.sessions,
		f.codes,
		f.hasher,
		f.codegen,
		f.verifier,
		f.events,
		nil,
	)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	f.service = service.WithClock(func() time.Time { return f.now })
	return f
}

// registeredUser seeds a user whose password verifies under the mock hasher.
func (f *serviceFixture) registeredUser(t *testing.T, name, password string) domain.User {
	t.Helper()

	salt, err := f.hasher.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt returned error: %v", err)
	}
	hash, err := f.hasher.Hash([]byte(password), salt)
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}

	user, err := f.users.Insert(context.Background(), domain.User{
		Name:         name,
		PasswordHash: hash,
		Salt:         salt,
	})
	if err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	return user
}
