package types

import "errors"

var (
	// ErrDecode covers every way an encrypted donor token can be rejected:
	// bad encoding, failed decryption, invalid JSON or schema violations.
	ErrDecode = errors.New("invalid donor data token")

	// ErrConfiguration is returned when the encryption secret is missing or unusable.
	ErrConfiguration = errors.New("encryption is not configured")

	ErrDonorNotFound = errors.New("donor not found")
	ErrBackend       = errors.New("backend request failed")
	ErrInvalidAmount = errors.New("donation amount must be a non-negative number")
	ErrSessionClosed = errors.New("session is closed")
)
