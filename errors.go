package access

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCreds uniform code for credential mismatches
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeInvalidGrant wildcard grant rejected for non admin roles
	TextCodeInvalidGrant = "INVALID_GRANT"
	// TextCodeMissingManager agents must reference a manager
	TextCodeMissingManager = "MISSING_MANAGER"
	// TextCodeInvalidManager manager reference missing or wrong role
	TextCodeInvalidManager = "INVALID_MANAGER"
	// TextCodeDuplicateEmail email already registered
	TextCodeDuplicateEmail = "DUPLICATE_EMAIL"
	// TextCodeInvalidOTP combined wrong-or-expired recovery code
	TextCodeInvalidOTP = "INVALID_OR_EXPIRED_OTP"
	// TextCodeDeliveryFailed notification sink failure
	TextCodeDeliveryFailed = "DELIVERY_FAILED"
	// TextCodeTokenExpired bearer token past its absolute expiry
	TextCodeTokenExpired = "TOKEN_EXPIRED"
	// TextCodeTokenMalformed bearer token could not be parsed
	TextCodeTokenMalformed = "TOKEN_MALFORMED"
)

// ErrIdentityNotFound is the error we return for non found identities.
// Note this deliberately stays distinct from credential errors; the
// account-existence leak is a documented property of the current design.
var ErrIdentityNotFound = goerrors.New("account not found", goerrors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword uniform credential failure
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty secrets before hashing
var ErrNoEmptyString = goerrors.New("value must not be an empty string", goerrors.CategoryBadInput).
	WithCode(goerrors.CodeBadRequest)

// ErrWildcardGrant only admin users may hold the wildcard permission
var ErrWildcardGrant = goerrors.New("only users with role admin may hold the wildcard permission", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidGrant).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingManager agents require a manager reference at creation
var ErrMissingManager = goerrors.New("a manager id is required for agent users", goerrors.CategoryValidation).
	WithTextCode(TextCodeMissingManager).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidManager the referenced manager is absent or cannot manage agents
var ErrInvalidManager = goerrors.New("invalid manager", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidManager).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateEmail email is already taken
var ErrDuplicateEmail = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrInvalidOrExpiredOTP single combined error: callers cannot tell a wrong
// code from a stale one.
var ErrInvalidOrExpiredOTP = goerrors.New("the recovery code is invalid or has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidOTP).
	WithCode(goerrors.CodeUnauthorized)

// ErrDeliveryFailed the recovery code could not be dispatched; the pending
// code stays on the record so the caller can retry.
var ErrDeliveryFailed = goerrors.New("failed to deliver the recovery code", goerrors.CategoryInternal).
	WithTextCode(TextCodeDeliveryFailed)

// ErrTokenExpired bearer token past its expiry
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed bearer token failed to parse or verify
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode claims into a session
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
