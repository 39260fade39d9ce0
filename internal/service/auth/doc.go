// Package auth issues and validates JWT access tokens, verifies bcrypt
// passwords and resolves request credentials to a domain.Principal.
package auth
