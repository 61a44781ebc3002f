package types

// DonorRecord is the donor data carried by a personalized URL, either inside the
// encrypted `data` token or as individually named legacy query parameters.
// Pointer fields distinguish "absent" from zero.
type DonorRecord struct {
	FirstName              *string  `json:"firstName,omitempty"`
	Email                  *string  `json:"email,omitempty"`
	FirstGiftDate          *string  `json:"firstGiftDate,omitempty"`
	LastGiftDate           *string  `json:"lastGiftDate,omitempty"`
	LastGiftAmount         *float64 `json:"lastGiftAmount,omitempty"`
	LifetimeGiving         *float64 `json:"lifetimeGiving,omitempty"`
	ConsecutiveYearsGiving *int     `json:"consecutiveYearsGiving,omitempty"`
	TotalGifts             *int     `json:"totalGifts,omitempty"`
	LargestGiftAmount      *float64 `json:"largestGiftAmount,omitempty"`
	LargestGiftDate        *string  `json:"largestGiftDate,omitempty"`
	GivingFY22             *float64 `json:"givingFY22,omitempty"`
	GivingFY23             *float64 `json:"givingFY23,omitempty"`
	GivingFY24             *float64 `json:"givingFY24,omitempty"`
	GivingFY25             *float64 `json:"givingFY25,omitempty"`

	// Amount is a requested donation amount, set by share and submission links.
	Amount *float64 `json:"amount,omitempty"`
}

// DonorLookup is the backend's answer for GET /api/donor/{identifier}.
type DonorLookup struct {
	Donation DonorDonation   `json:"donation"`
	Impact   *DonationImpact `json:"impact"`
}

type DonorDonation struct {
	Amount float64 `json:"amount"`
	Email  string  `json:"email"`
}
