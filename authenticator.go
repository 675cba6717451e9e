package access

import (
	"context"
	"reflect"
	"time"
)

// LoginResult is what a successful login hands back: the bearer token and the
// public user projection. The credential hash never leaves the store.
type LoginResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// Auther composes credential verification, permission resolution, token
// issuance, and audit recording into the login operation.
type Auther struct {
	provider        IdentityProvider
	policy          PermissionPolicy
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
	tokenValidator  TokenValidator
	audit           AuditRecorder
	auditPolicy     AuditPolicy
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, policy PermissionPolicy, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:        provider,
		policy:          policy,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
		audit:           noopAuditRecorder{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	// Update the TokenService logger as well
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// WithAuditRecorder configures the sink audit entries are appended to.
func (s *Auther) WithAuditRecorder(recorder AuditRecorder) *Auther {
	s.audit = normalizeAuditRecorder(recorder)
	return s
}

// WithAuditPolicy overrides which transitions produce audit entries.
func (s *Auther) WithAuditPolicy(policy AuditPolicy) *Auther {
	s.auditPolicy = policy
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the presented credentials, resolves the permission claim
// (admins receive the universal set regardless of what is stored), and issues
// a signed bearer token. The audit entry is written only after credential
// success; failed attempts are recorded only when the policy opts in.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		if auditErr := s.recordLoginFailure(ctx, identifier, err); auditErr != nil {
			return nil, auditErr
		}
		return nil, err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		if auditErr := s.recordLoginFailure(ctx, identifier, ErrIdentityNotFound); auditErr != nil {
			return nil, auditErr
		}
		return nil, ErrIdentityNotFound
	}

	permissions := s.policy.ResolveForLogin(identity.Role(), identity.Permissions())

	token, err := s.tokenService.Generate(identity, permissions)
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return nil, err
	}

	details := map[string]any{
		"message": "user logged in",
	}
	if ip, ok := ClientIPFromContext(ctx); ok {
		details["ip"] = ip
	}

	entry := AuditEntry{
		Actor:      ActorRef{ID: identity.ID(), Email: identity.Email()},
		Action:     AuditActionLogin,
		Details:    details,
		OccurredAt: time.Now(),
	}

	if err := normalizeAuditRecorder(s.audit).Record(ctx, entry); err != nil {
		s.logger.Error("Login audit record error", "error", err)
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User: PublicUser{
			ID:          identity.ID(),
			Name:        identity.Name(),
			Email:       identity.Email(),
			Role:        identity.Role(),
			Permissions: permissions,
		},
	}, nil
}

// SessionFromToken validates a raw token and converts its claims to a session.
func (s Auther) SessionFromToken(raw string) (Session, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}

	claims, err := validator.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromSession resolves the identity the session belongs to.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("IdentityFromSession find identity by identifier", "error", err)
		return nil, err
	}

	return identity, nil
}

func (s *Auther) recordLoginFailure(ctx context.Context, identifier string, cause error) error {
	if !s.auditPolicy.RecordFailures {
		return nil
	}

	entry := AuditEntry{
		Actor:  ActorRef{Email: identifier},
		Action: AuditActionLoginFailed,
		Details: map[string]any{
			"identifier": identifier,
			"error":      cause.Error(),
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeAuditRecorder(s.audit).Record(ctx, entry); err != nil {
		s.logger.Error("Login failure audit record error", "error", err)
		return err
	}

	return nil
}

var _ Authenticator = (*Auther)(nil)
