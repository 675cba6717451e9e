package access_test

import (
	"context"
	"sync"
	"testing"
	"time"

	access "github.com/goliatone/go-access"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryDirectory is an in-memory UserDirectory for exercising the full
// register, login, and recovery flows without a database.
type memoryDirectory struct {
	mu    sync.Mutex
	users map[string]*access.User
}

func newMemoryDirectory() *memoryDirectory {
	return &memoryDirectory{users: map[string]*access.User{}}
}

func (d *memoryDirectory) FindByEmail(ctx context.Context, email string) (*access.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, user := range d.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, notFoundErr()
}

func (d *memoryDirectory) FindByID(ctx context.Context, id string) (*access.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if user, ok := d.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, notFoundErr()
}

func (d *memoryDirectory) Create(ctx context.Context, record *access.User) (*access.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, user := range d.users {
		if user.Email == record.Email {
			return nil, access.ErrDuplicateEmail
		}
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	clone := *record
	d.users[record.ID.String()] = &clone
	return record, nil
}

func (d *memoryDirectory) Save(ctx context.Context, record *access.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[record.ID.String()]; !ok {
		return notFoundErr()
	}
	clone := *record
	d.users[record.ID.String()] = &clone
	return nil
}

var _ access.UserDirectory = (*memoryDirectory)(nil)

// sentCode pulls the recovery code out of a captured mail body.
func sentCode(t *testing.T, body string) string {
	t.Helper()
	code := recoveryCodePattern.FindString(body)
	require.NotEmpty(t, code, "mail body should carry a six digit code")
	return code
}

// collectingMailer keeps every message so tests can read the codes back.
type collectingMailer struct {
	mu       sync.Mutex
	messages []access.MailMessage
}

func (m *collectingMailer) Send(ctx context.Context, msg access.MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *collectingMailer) last() access.MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.messages[len(m.messages)-1]
}

func TestRegisterThenLoginFlow(t *testing.T) {
	ctx := context.Background()
	directory := newMemoryDirectory()
	policy := defaultTestPolicy()
	sink := &capturingRecorder{}

	register := access.NewRegisterUserHandler(directory, policy).
		WithAuditRecorder(sink)
	authenticator := access.NewAuthenticator(
		access.NewUserProvider(directory), policy, newMockConfig(),
	).WithAuditRecorder(sink)

	require.NoError(t, register.Execute(ctx, access.RegisterUserMessage{
		Name:     "Morty Manager",
		Email:    "morty@example.com",
		Password: "manager-secret",
		Role:     access.RoleManager,
	}))

	manager, err := directory.FindByEmail(ctx, "morty@example.com")
	require.NoError(t, err)

	require.NoError(t, register.Execute(ctx, access.RegisterUserMessage{
		Name:      "Amy Agent",
		Email:     "amy@example.com",
		Password:  "agent-secret",
		Role:      access.RoleAgent,
		ManagerID: manager.ID.String(),
	}))

	// Duplicate registration is refused.
	err = register.Execute(ctx, access.RegisterUserMessage{
		Name:     "Morty Again",
		Email:    "morty@example.com",
		Password: "another-secret",
		Role:     access.RoleManager,
	})
	require.Error(t, err)
	assert.Equal(t, access.ErrDuplicateEmail, err)

	result, err := authenticator.Login(ctx, "amy@example.com", "agent-secret")
	require.NoError(t, err)
	assert.Equal(t, policy.Defaults[access.RoleAgent], result.User.Permissions)

	_, err = authenticator.Login(ctx, "amy@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, access.ErrMismatchedHashAndPassword, err)

	session, err := authenticator.SessionFromToken(result.Token)
	require.NoError(t, err)
	assert.True(t, access.HasUserUUID(session))

	identity, err := authenticator.IdentityFromSession(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, "amy@example.com", identity.Email())

	// Two register entries plus one login entry.
	actions := []access.AuditAction{}
	for _, entry := range sink.all() {
		actions = append(actions, entry.Action)
	}
	assert.Equal(t, []access.AuditAction{
		access.AuditActionRegisterUser,
		access.AuditActionRegisterUser,
		access.AuditActionLogin,
	}, actions)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	ctx := context.Background()
	directory := newMemoryDirectory()
	policy := defaultTestPolicy()
	mailer := &collectingMailer{}

	register := access.NewRegisterUserHandler(directory, policy)
	request := access.NewRequestPasswordResetHandler(directory).WithMailer(mailer)
	confirm := access.NewConfirmPasswordResetHandler(directory)
	authenticator := access.NewAuthenticator(
		access.NewUserProvider(directory), policy, newMockConfig(),
	)

	require.NoError(t, register.Execute(ctx, access.RegisterUserMessage{
		Name:     "Morty Manager",
		Email:    "morty@example.com",
		Password: "original-secret",
		Role:     access.RoleManager,
	}))

	require.NoError(t, request.Execute(ctx, access.RequestPasswordResetMessage{
		Email: "morty@example.com",
	}))
	code := sentCode(t, mailer.last().Body)

	require.NoError(t, confirm.Execute(ctx, access.ConfirmPasswordResetMessage{
		Email:    "morty@example.com",
		OTP:      code,
		Password: "replacement-secret",
	}))

	// The old credential is gone and the code is single use.
	_, err := authenticator.Login(ctx, "morty@example.com", "original-secret")
	require.Error(t, err)

	err = confirm.Execute(ctx, access.ConfirmPasswordResetMessage{
		Email:    "morty@example.com",
		OTP:      code,
		Password: "yet-another-secret",
	})
	require.Error(t, err)
	assert.Equal(t, access.ErrInvalidOrExpiredOTP, err)

	result, err := authenticator.Login(ctx, "morty@example.com", "replacement-secret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
}

func TestPasswordRecoveryLastRequestWins(t *testing.T) {
	ctx := context.Background()
	directory := newMemoryDirectory()
	policy := defaultTestPolicy()
	mailer := &collectingMailer{}

	register := access.NewRegisterUserHandler(directory, policy)
	request := access.NewRequestPasswordResetHandler(directory).WithMailer(mailer)
	confirm := access.NewConfirmPasswordResetHandler(directory)

	require.NoError(t, register.Execute(ctx, access.RegisterUserMessage{
		Name:     "Morty Manager",
		Email:    "morty@example.com",
		Password: "original-secret",
		Role:     access.RoleManager,
	}))

	require.NoError(t, request.Execute(ctx, access.RequestPasswordResetMessage{Email: "morty@example.com"}))
	first := sentCode(t, mailer.last().Body)

	require.NoError(t, request.Execute(ctx, access.RequestPasswordResetMessage{Email: "morty@example.com"}))
	second := sentCode(t, mailer.last().Body)

	if first != second {
		err := confirm.Execute(ctx, access.ConfirmPasswordResetMessage{
			Email:    "morty@example.com",
			OTP:      first,
			Password: "replacement-secret",
		})
		require.Error(t, err)
		assert.Equal(t, access.ErrInvalidOrExpiredOTP, err)
	}

	require.NoError(t, confirm.Execute(ctx, access.ConfirmPasswordResetMessage{
		Email:    "morty@example.com",
		OTP:      second,
		Password: "replacement-secret",
	}))
}

func TestPasswordRecoveryExpiredCode(t *testing.T) {
	ctx := context.Background()
	directory := newMemoryDirectory()
	policy := defaultTestPolicy()
	mailer := &collectingMailer{}

	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	register := access.NewRegisterUserHandler(directory, policy)
	request := access.NewRequestPasswordResetHandler(directory).
		WithMailer(mailer).
		WithClock(func() time.Time { return start })
	confirm := access.NewConfirmPasswordResetHandler(directory).
		WithClock(func() time.Time { return start.Add(access.OTPTTL + time.Second) })

	require.NoError(t, register.Execute(ctx, access.RegisterUserMessage{
		Name:     "Morty Manager",
		Email:    "morty@example.com",
		Password: "original-secret",
		Role:     access.RoleManager,
	}))

	require.NoError(t, request.Execute(ctx, access.RequestPasswordResetMessage{Email: "morty@example.com"}))
	code := sentCode(t, mailer.last().Body)

	err := confirm.Execute(ctx, access.ConfirmPasswordResetMessage{
		Email:    "morty@example.com",
		OTP:      code,
		Password: "replacement-secret",
	})
	require.Error(t, err)
	assert.Equal(t, access.ErrInvalidOrExpiredOTP, err)
}
