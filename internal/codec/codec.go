// Package codec encrypts donor data into the URL-safe `data` token and decodes
// it back into a validated donor record.
package codec

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/url"

	"foodshare/pkg/types"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// TokenName is the query parameter carrying the encrypted donor token. It is
// also bound into the token's MAC.
const TokenName = "data"

const (
	minSecretLength = 16
	maxTokenLength  = 8192

	tokenPurpose   = "foodshare donor token"
	sessionPurpose = "foodshare session cookie"
)

type SecureCodec struct {
	cookie *securecookie.SecureCookie
}

// New builds a codec keyed by secret. It refuses empty or short secrets.
func New(secret string) (*SecureCodec, error) {
	sc, err := newSecureCookie(secret, tokenPurpose)
	if err != nil {
		return nil, err
	}

	return &SecureCodec{cookie: sc}, nil
}

// NewSessionCookie builds the cookie codec used for session ids. Its keys are
// derived from the same secret under a different label, so a donor token can
// never be replayed as a session cookie.
func NewSessionCookie(secret string, maxAgeSec int) (*securecookie.SecureCookie, error) {
	sc, err := newSecureCookie(secret, sessionPurpose)
	if err != nil {
		return nil, err
	}

	sc.MaxAge(maxAgeSec)
	return sc, nil
}

func newSecureCookie(secret, purpose string) (*securecookie.SecureCookie, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: set ENCRYPTION_KEY", types.ErrConfiguration)
	}
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("%w: ENCRYPTION_KEY must be at least %d bytes", types.ErrConfiguration, minSecretLength)
	}

	hashKey, err := deriveKey(secret, purpose+" hash")
	if err != nil {
		return nil, err
	}
	blockKey, err := deriveKey(secret, purpose+" block")
	if err != nil {
		return nil, err
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(0)
	sc.MaxLength(maxTokenLength)

	return sc, nil
}

func deriveKey(secret, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", info, err)
	}
	return key, nil
}

// Encode encrypts an arbitrary payload. Nil values are dropped before encoding.
func (c *SecureCodec) Encode(payload map[string]any) (string, error) {
	if c == nil || c.cookie == nil {
		return "", types.ErrConfiguration
	}

	filtered := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		filtered[k] = v
	}

	token, err := c.cookie.Encode(TokenName, filtered)
	if err != nil {
		return "", fmt.Errorf("encode donor token: %w", err)
	}
	return token, nil
}

func (c *SecureCodec) EncodeRecord(rec types.DonorRecord) (string, error) {
	if c == nil || c.cookie == nil {
		return "", types.ErrConfiguration
	}

	token, err := c.cookie.Encode(TokenName, rec)
	if err != nil {
		return "", fmt.Errorf("encode donor token: %w", err)
	}
	return token, nil
}

// Decode reverses Encode and validates the result against the donor record
// schema. Every failure wraps types.ErrDecode.
func (c *SecureCodec) Decode(token string) (*types.DonorRecord, error) {
	if c == nil || c.cookie == nil {
		return nil, types.ErrConfiguration
	}

	var raw map[string]any
	if err := c.cookie.Decode(TokenName, token, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrDecode, err)
	}

	return recordFromMap(raw)
}

// SecureURL returns path with payload encrypted into a single `data` parameter.
func (c *SecureCodec) SecureURL(path string, payload map[string]any) (string, error) {
	token, err := c.Encode(payload)
	if err != nil {
		return "", err
	}

	return path + "?" + url.Values{TokenName: {token}}.Encode(), nil
}
