package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	idSize     = 21
	idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// NanoID returns a random id for donation rows and session cookies.
func NanoID() string {
	return gonanoid.MustGenerate(idAlphabet, idSize)
}
