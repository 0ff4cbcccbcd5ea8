// Package common defines shared constants and sentinel errors used across
// the sealstream pipeline. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Local validation errors. No network effect has happened yet.
	ErrInvalidInput = errors.New("invalid input")

	// Encryption adapter errors. Recoverable by retrying from the start:
	// no ledger state exists before encryption succeeds.
	ErrEncryptionUnavailable = errors.New("encryption quorum unavailable")
	ErrEncryptionRejected    = errors.New("encryption rejected")

	// Signer errors. The user declined or the wallet timed out; the job's
	// ciphertext and any registration are preserved for a same-phase retry.
	ErrUserRejected = errors.New("transaction rejected by signer")

	// Relay errors. Registration is preserved; only the upload phase retries.
	ErrUploadTimeout = errors.New("relay upload timed out")
	ErrRelayRejected = errors.New("relay rejected upload")

	// Protocol drift between this client and the ledger program. Not retryable.
	ErrObjectNotFound = errors.New("expected object not found in effects")

	// Access/decrypt errors.
	ErrAccessDenied      = errors.New("access denied")
	ErrCredentialExpired = errors.New("session credential expired")
	ErrDecryptionFailed  = errors.New("decryption failed")

	// Gas precondition errors.
	ErrInsufficientBalance = errors.New("insufficient balance")
)
