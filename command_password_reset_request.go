package access

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type RequestPasswordResetMessage struct {
	Email string `json:"email" example:"pepe.rone@example.com" doc:"Account email."`
}

func (p RequestPasswordResetMessage) Type() string { return "user.password_reset_request" }

// RequestPasswordResetHandler generates a recovery code, persists it with its
// expiry on the user record, and dispatches it through the mailer. The send
// is awaited: a delivery failure fails the operation while the stored code
// stays put, so calling again overwrites code and expiry (idempotent retry).
type RequestPasswordResetHandler struct {
	directory UserDirectory
	mailer    Mailer
	audit     AuditRecorder
	logger    Logger
	now       func() time.Time
}

// NewRequestPasswordResetHandler creates a handler with sane defaults. The
// default mailer prints to stdout; production wiring must provide a real one
// through WithMailer.
func NewRequestPasswordResetHandler(directory UserDirectory) *RequestPasswordResetHandler {
	return &RequestPasswordResetHandler{
		directory: directory,
		mailer:    stdoutMailer{},
		audit:     noopAuditRecorder{},
		logger:    defLogger{},
		now:       time.Now,
	}
}

// WithMailer sets the notification sink recovery codes are dispatched through.
func (h *RequestPasswordResetHandler) WithMailer(mailer Mailer) *RequestPasswordResetHandler {
	h.mailer = normalizeMailer(mailer)
	return h
}

// WithAuditRecorder sets the sink password_reset_request entries are
// appended to.
func (h *RequestPasswordResetHandler) WithAuditRecorder(recorder AuditRecorder) *RequestPasswordResetHandler {
	h.audit = normalizeAuditRecorder(recorder)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RequestPasswordResetHandler) WithLogger(logger Logger) *RequestPasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithClock injects a custom clock (useful for tests).
func (h *RequestPasswordResetHandler) WithClock(clock func() time.Time) *RequestPasswordResetHandler {
	if clock != nil {
		h.now = clock
	}
	return h
}

func (h *RequestPasswordResetHandler) Execute(ctx context.Context, event RequestPasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestPasswordResetHandler) execute(ctx context.Context, event RequestPasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.directory.FindByEmail(ctx, event.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrIdentityNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if user == nil {
		return ErrIdentityNotFound
	}

	code, err := GenerateOTP()
	if err != nil {
		return err
	}

	user.SetResetChallenge(code, h.now().Add(OTPTTL))

	if err := h.directory.Save(ctx, user); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist recovery code")
	}

	if err := normalizeMailer(h.mailer).Send(ctx, recoveryCodeMessage(user.Email, code)); err != nil {
		h.logger.Error("recovery code delivery error", "error", err)
		return ErrDeliveryFailed
	}

	entry := AuditEntry{
		Actor:  ActorRef{ID: user.ID.String(), Email: user.Email},
		Action: AuditActionResetRequest,
		Details: map[string]any{
			"message": "password reset requested",
		},
		OccurredAt: h.now(),
	}

	if err := normalizeAuditRecorder(h.audit).Record(ctx, entry); err != nil {
		h.logger.Error("password reset audit record error", "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to record reset request audit entry")
	}

	return nil
}
