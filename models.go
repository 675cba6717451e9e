package access

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel   `bun:"table:users,alias:usr"`
	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name            string     `bun:"name,notnull" json:"name,omitempty"`
	Email           string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash    string     `bun:"password_hash" json:"-"`
	Role            Role       `bun:"user_role,notnull" json:"user_role,omitempty"`
	Permissions     []string   `bun:"permissions,type:jsonb" json:"permissions,omitempty"`
	ManagerID       *uuid.UUID `bun:"manager_id,nullzero" json:"manager_id,omitempty"`
	Manager         *User      `bun:"rel:belongs-to,join:manager_id=id" json:"manager,omitempty"`
	ResetOTP        *string    `bun:"reset_otp,nullzero" json:"-"`
	ResetOTPExpires *time.Time `bun:"reset_otp_expires,nullzero" json:"-"`
	CreatedAt       *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt       *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// SetResetChallenge stores a pending recovery code with its absolute expiry.
// A second call overwrites the previous challenge; last write wins.
func (u *User) SetResetChallenge(code string, expires time.Time) *User {
	u.ResetOTP = &code
	u.ResetOTPExpires = &expires
	return u
}

// ClearResetChallenge removes the pending recovery code. Fields go back to
// absent, never empty string, so a cleared code can never compare equal to a
// presented one.
func (u *User) ClearResetChallenge() *User {
	u.ResetOTP = nil
	u.ResetOTPExpires = nil
	return u
}

// ResetChallengeValid checks the presented code against the stored challenge:
// exact string match and expiry strictly in the future.
func (u *User) ResetChallengeValid(code string, now time.Time) bool {
	if u.ResetOTP == nil || u.ResetOTPExpires == nil {
		return false
	}
	return *u.ResetOTP == code && u.ResetOTPExpires.After(now)
}

// Public returns the projection safe to hand back to callers. The credential
// hash and any pending recovery code never leave the record.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID.String(),
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: clonePermissions(u.Permissions),
	}
}

// PublicUser is the outward-facing user projection
type PublicUser struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        Role     `json:"role"`
	Permissions []string `json:"permissions"`
}

// AuditLog is an immutable record of a security-relevant action. Rows are
// appended by the auth operations and never updated or deleted here.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_log,alias:adt"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	ActorID       string         `bun:"actor_id,notnull" json:"actor_id,omitempty"`
	ActorEmail    string         `bun:"actor_email,notnull" json:"actor_email,omitempty"`
	Action        AuditAction    `bun:"action,notnull" json:"action,omitempty"`
	Details       map[string]any `bun:"details,type:jsonb" json:"details,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,notnull,default:current_timestamp" json:"created_at,omitempty"`
}
