package access

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

type RegisterUserMessage struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	ManagerID   string   `json:"manager_id,omitempty"`
	UseHashid   bool     `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates a user with its role-derived permission set.
// No token is issued on registration; the caller logs in separately.
type RegisterUserHandler struct {
	directory UserDirectory
	policy    PermissionPolicy
	audit     AuditRecorder
	logger    Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(directory UserDirectory, policy PermissionPolicy) *RegisterUserHandler {
	return &RegisterUserHandler{
		directory: directory,
		policy:    policy,
		audit:     noopAuditRecorder{},
		logger:    defLogger{},
	}
}

// WithAuditRecorder sets the sink register_user entries are appended to.
func (h *RegisterUserHandler) WithAuditRecorder(recorder AuditRecorder) *RegisterUserHandler {
	h.audit = normalizeAuditRecorder(recorder)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	permissions, err := h.policy.ResolveForNewUser(event.Role, event.Permissions)
	if err != nil {
		return err
	}

	managerID, err := h.resolveManager(ctx, event)
	if err != nil {
		return err
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	user := &User{
		Name:         event.Name,
		Email:        event.Email,
		PasswordHash: hash,
		Role:         event.Role,
		Permissions:  permissions,
		ManagerID:    managerID,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = id
		}
	}

	if user, err = h.directory.Create(ctx, user); err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	actor, ok := ActorFromContext(ctx)
	if !ok {
		// Self-registration: the new user answers for its own creation.
		actor = ActorRef{ID: user.ID.String(), Email: user.Email}
	}

	entry := AuditEntry{
		Actor:  actor,
		Action: AuditActionRegisterUser,
		Details: map[string]any{
			"created_user_id":    user.ID.String(),
			"created_user_email": user.Email,
			"role":               user.Role,
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeAuditRecorder(h.audit).Record(ctx, entry); err != nil {
		h.logger.Error("register user audit record error", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record registration audit entry")
	}

	return nil
}

func (h *RegisterUserHandler) resolveManager(ctx context.Context, event RegisterUserMessage) (*uuid.UUID, error) {
	if event.Role != RoleAgent {
		return nil, nil
	}

	if event.ManagerID == "" {
		return nil, ErrMissingManager
	}

	manager, err := h.directory.FindByID(ctx, event.ManagerID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrInvalidManager
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve manager")
	}

	if manager == nil || !CanManageAgents(manager.Role) {
		return nil, ErrInvalidManager
	}

	id := manager.ID
	return &id, nil
}
