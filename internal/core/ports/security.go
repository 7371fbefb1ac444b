package ports

import "context"

// PasswordHasher computes and checks salted one-way password hashes.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify never errors; any mismatch or malformed hash yields false.
	Verify(plaintext, hash string) bool
}

// TokenService issues and verifies signed, time-bound session tokens.
type TokenService interface {
	Issue(subjectID string) (string, error)
	// Verify returns the subject ID or an error wrapping domain.ErrInvalidToken.
	Verify(token string) (string, error)
}

// LoginLimiter throttles repeated failed logins per email.
type LoginLimiter interface {
	Allow(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
