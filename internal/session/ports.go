package session

import (
	"context"
	"net/url"

	"foodshare/internal/resolver"
	"foodshare/pkg/types"
)

// Session store keys.
const (
	KeyDonorFirstName         = "donorFirstName"
	KeyWrappedDonorData       = "wrappedDonorData"
	KeySecureWrappedDonorData = "secureWrappedDonorData"
	KeyDonorParams            = "donorParams"
	KeyOriginalURLParams      = "originalUrlParams"
	KeyDonorEmail             = "donorEmail"
)

// Navigator is the browser location of one session.
type Navigator interface {
	Current() *url.URL
	// Replace swaps the current location without adding a history entry.
	Replace(u *url.URL)
	Push(u *url.URL)
}

// Store is string-keyed storage scoped to one browsing session.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Clear()
}

type Backend interface {
	LookupDonor(ctx context.Context, identifier string) (*types.DonorLookup, error)
	LogDonation(ctx context.Context, req types.LogDonationRequest) error
	CalculateImpact(ctx context.Context, amount float64) (*types.DonationImpact, error)
}

type Encoder interface {
	EncodeRecord(rec types.DonorRecord) (string, error)
	SecureURL(path string, payload map[string]any) (string, error)
}

type Resolver interface {
	Resolve(u *url.URL) *resolver.Resolved
}
