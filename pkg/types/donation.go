package types

import "time"

type DonationLog struct {
	ID        string    `db:"id" json:"id"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Amount    float64   `db:"amount" json:"amount"`
	DonatedAt time.Time `db:"donated_at" json:"donatedAt"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// LogDonationRequest is the body of POST /api/log-donation. Amount is sent as a
// string by browser clients, so it is kept verbatim and parsed by the handler.
type LogDonationRequest struct {
	Amount    string `json:"amount"`
	Timestamp string `json:"timestamp"`
	Email     string `json:"email"`
}

type CalculateImpactRequest struct {
	Amount float64 `json:"amount"`
}

type CalculateImpactResponse struct {
	Impact DonationImpact `json:"impact"`
}

// DonationForm is submitted from the welcome slide.
type DonationForm struct {
	Amount float64 `form:"amount"`
	Email  string  `form:"email"`
}
