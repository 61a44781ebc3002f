package resolver

import (
	"net/url"

	"foodshare/internal/codec"
	"foodshare/internal/utils"
	"foodshare/pkg/types"
)

const (
	DefaultAmount = 100.0

	lifetimeShare    = 0.10
	minEstimatedGift = 50.0
	maxEstimatedGift = 1000.0
)

// DeriveAmount picks the donation amount a returning donor's presentation is
// built around: the last gift, then the average gift, then a clamped share of
// lifetime giving, then DefaultAmount.
func DeriveAmount(rec types.DonorRecord) float64 {
	lastGift := utils.PtrFloat64(rec.LastGiftAmount)
	lifetime := utils.PtrFloat64(rec.LifetimeGiving)
	gifts := utils.PtrInt(rec.TotalGifts)

	amount := DefaultAmount
	switch {
	case lastGift > 0:
		amount = lastGift
	case lifetime > 0 && gifts > 0:
		amount = lifetime / float64(gifts)
	case lifetime > 0:
		amount = min(max(lifetime*lifetimeShare, minEstimatedGift), maxEstimatedGift)
	}

	return utils.RoundFloat64(amount, 2)
}

// SecureQuery rewrites query for the address bar: donor parameters are
// replaced by a single encrypted token, everything else stays visible. A
// requested amount is not donor data and stays as it is.
func SecureQuery(query url.Values, token string) url.Values {
	out := make(url.Values, len(query))
	for k, v := range query {
		if isDonorParam(k) {
			continue
		}
		out[k] = v
	}

	out.Set(codec.TokenName, token)
	return out
}

func isDonorParam(key string) bool {
	switch key {
	case "email", "firstName", "First Name", "first_name",
		"largestGiftDate", "givingFY22", "givingFY23", "givingFY24", "givingFY25",
		codec.TokenName:
		return true
	}
	return isSensitive(key)
}
