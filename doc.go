// Package access provides role-aware authentication primitives for multi-role
// applications: registration with role-derived permission sets, credential
// login that issues signed JWTs carrying a permission claim, and password
// recovery through short-lived one-time codes delivered out-of-band.
//
// Permission resolution:
//   - PermissionPolicy is an injected table mapping roles to default
//     permission sets plus the universal set granted to admins at login.
//     Both resolver methods are pure so the privilege-sensitive branches can
//     be tested without storage or transport.
//
// Collaborators:
//   - UserDirectory and AuditRecorder are consumed as interfaces. The package
//     ships bun-backed defaults (NewUsersRepository, NewAuditLogsRepository)
//     but any store satisfying the contracts will do.
//   - Mailer delivers recovery codes. Delivery failures surface as part of
//     the operation result so callers can retry; the pending code stays on
//     the record and is overwritten by the next request.
//
// Operations are composed the command way: RegisterUserHandler,
// RequestPasswordResetHandler, and ConfirmPasswordResetHandler wrap one
// request/response unit each, while Auther handles login and token work.
package access
