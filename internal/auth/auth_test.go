package auth

import (
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/house-aratus/membership-api/internal/config"
	"github.com/house-aratus/membership-api/internal/db/models"
	"github.com/house-aratus/membership-api/internal/directory"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.SetupJoinTable(&models.User{}, "Groups", &models.UserGroup{}); err != nil {
		t.Fatalf("failed to set up join table: %v", err)
	}

	err = db.AutoMigrate(
		&models.Group{},
		&models.User{},
		&models.UserGroup{},
		&models.Character{},
		&models.RefreshToken{},
	)
	if err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(config.JWT{
		Secret: "test-secret",
		Issuer: "membership-api-test",
		TTL:    time.Minute,
	})
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Enabled:  true,
		Username: username,
		Email:    username + "@housearatus.space",
		Roles:    []string{models.RoleUser},
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return user
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var count int64
	if err := db.Model(model).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}

	return count
}

// memStates is an in-memory StateStore for tests.
type memStates struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStates() *memStates {
	return &memStates{data: make(map[string]string)}
}

func (m *memStates) Put(sessionID, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[sessionID] = state

	return nil
}

func (m *memStates) Take(sessionID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.data[sessionID]
	delete(m.data, sessionID)

	return state, ok
}

// fakeDirectory is a Directory double recording calls.
type fakeDirectory struct {
	entry       *directory.UserEntry
	authErr     error
	ensureErr   error
	createErr   error
	ensureCalls int
	createCalls int
}

func (f *fakeDirectory) Authenticate(username, _ string) (*directory.UserEntry, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}

	if f.entry != nil {
		return f.entry, nil
	}

	return &directory.UserEntry{
		DN:       "uniqueIdentifier=" + username + ",ou=people,dc=housearatus,dc=space",
		Username: username,
		Email:    username + "@housearatus.space",
	}, nil
}

func (f *fakeDirectory) EnsureGroupMember(string) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeDirectory) CreateUser(string, string, string) error {
	f.createCalls++
	return f.createErr
}
