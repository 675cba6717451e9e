package access

import (
	"context"
	"time"
)

// AuditAction enumerates recorded action tags. The set is extensible; these
// are the ones this package emits.
type AuditAction string

const (
	AuditActionRegisterUser AuditAction = "register_user"
	AuditActionLogin        AuditAction = "login"
	AuditActionLoginFailed  AuditAction = "login_failed"
	AuditActionResetRequest AuditAction = "password_reset_request"
)

// ActorRef identifies who triggered an audited action.
type ActorRef struct {
	ID    string
	Email string
}

// AuditEntry captures an immutable record of a security-relevant action.
type AuditEntry struct {
	Actor      ActorRef
	Action     AuditAction
	Details    map[string]any
	OccurredAt time.Time
}

// AuditRecorder appends immutable action records. Record failures are part of
// each operation's result contract, not best-effort background calls.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditRecorderFunc adapts a function to the AuditRecorder interface.
type AuditRecorderFunc func(ctx context.Context, entry AuditEntry) error

// Record implements AuditRecorder.
func (f AuditRecorderFunc) Record(ctx context.Context, entry AuditEntry) error {
	if f == nil {
		return nil
	}
	return f(ctx, entry)
}

type noopAuditRecorder struct{}

func (noopAuditRecorder) Record(context.Context, AuditEntry) error {
	return nil
}

func normalizeAuditRecorder(r AuditRecorder) AuditRecorder {
	if r == nil {
		return noopAuditRecorder{}
	}
	return r
}

// AuditPolicy controls which transitions produce entries. The current design
// audits registration, successful login, and delivered reset requests;
// failure auditing is opt-in.
type AuditPolicy struct {
	// RecordFailures also emits entries for failed login attempts.
	RecordFailures bool
}
