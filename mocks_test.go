package access_test

import (
	"context"
	"sync"

	access "github.com/goliatone/go-access"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/mock"
)

// MockUserDirectory implements access.UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) FindByEmail(ctx context.Context, email string) (*access.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*access.User)
	return user, args.Error(1)
}

func (m *MockUserDirectory) FindByID(ctx context.Context, id string) (*access.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*access.User)
	return user, args.Error(1)
}

func (m *MockUserDirectory) Create(ctx context.Context, record *access.User) (*access.User, error) {
	args := m.Called(ctx, record)
	user, _ := args.Get(0).(*access.User)
	return user, args.Error(1)
}

func (m *MockUserDirectory) Save(ctx context.Context, record *access.User) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockIdentityProvider implements access.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (access.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(access.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (access.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(access.Identity)
	return identity, args.Error(1)
}

// MockAuditRecorder implements access.AuditRecorder
type MockAuditRecorder struct {
	mock.Mock
}

func (m *MockAuditRecorder) Record(ctx context.Context, entry access.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockMailer implements access.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg access.MailMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockConfig implements access.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	audience, _ := args.Get(0).([]string)
	return audience
}

func newMockConfig() *MockConfig {
	mockConfig := new(MockConfig)
	mockConfig.On("GetSigningKey").Return("test-signing-key")
	mockConfig.On("GetTokenExpiration").Return(8)
	mockConfig.On("GetIssuer").Return("test-issuer")
	mockConfig.On("GetAudience").Return([]string{"test:audience"})
	return mockConfig
}

// capturingRecorder collects entries so tests can assert on their shape.
type capturingRecorder struct {
	mu      sync.Mutex
	entries []access.AuditEntry
}

func (c *capturingRecorder) Record(ctx context.Context, entry access.AuditEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
	return nil
}

func (c *capturingRecorder) all() []access.AuditEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]access.AuditEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func notFoundErr() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound)
}

func defaultTestPolicy() access.PermissionPolicy {
	return access.PermissionPolicy{
		Defaults: map[access.Role][]string{
			access.RoleAdmin:   {"*"},
			access.RoleManager: {"tickets:read", "tickets:write", "agents:read"},
			access.RoleAgent:   {"tickets:read"},
		},
		Universal: []string{"tickets:read", "tickets:write", "agents:read", "agents:write", "reports:read"},
	}
}
