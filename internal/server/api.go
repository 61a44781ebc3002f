package server

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodshare/internal/codec"
	"foodshare/internal/impact"
	"foodshare/pkg/types"
)

type logDonationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

func (s *Service) handleGetDonor(w http.ResponseWriter, r *http.Request) {
	identifier := strings.TrimSpace(r.PathValue("id"))
	if identifier == "" {
		s.writeError(w, http.StatusNotFound, "donor not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	donation, err := s.donations.LatestByEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, types.ErrDonorNotFound) {
			s.writeError(w, http.StatusNotFound, "donor not found")
			return
		}
		s.logger.WithError(err).Error("failed to look up donor")
		s.internalServerError(w)
		return
	}

	result := impact.Calculate(donation.Amount)
	s.writeJSON(w, http.StatusOK, types.DonorLookup{
		Donation: types.DonorDonation{
			Amount: donation.Amount,
			Email:  identifier,
		},
		Impact: &result,
	})
}

func (s *Service) handlePostLogDonation(w http.ResponseWriter, r *http.Request) {
	var req types.LogDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(req.Amount), 64)
	if err != nil || !validAmount(amount) {
		s.writeError(w, http.StatusBadRequest, "amount must be a non-negative number")
		return
	}

	donatedAt := time.Now().UTC()
	if req.Timestamp != "" {
		donatedAt, err = time.Parse(time.RFC3339Nano, req.Timestamp)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "timestamp must be RFC 3339")
			return
		}
	}

	email := strings.TrimSpace(req.Email)
	if email != "" && !codec.ValidEmail(email) {
		s.writeError(w, http.StatusBadRequest, "email is invalid")
		return
	}

	donation := &types.DonationLog{
		Amount:    amount,
		DonatedAt: donatedAt.UTC(),
	}
	if email != "" {
		donation.Email = &email
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.donations.LogDonation(ctx, donation); err != nil {
		s.logger.WithError(err).Error("failed to log donation")
		s.internalServerError(w)
		return
	}

	s.writeJSON(w, http.StatusCreated, logDonationResponse{Success: true, ID: donation.ID})
}

func (s *Service) handlePostCalculateImpact(w http.ResponseWriter, r *http.Request) {
	var req types.CalculateImpactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid json payload")
		return
	}

	if !validAmount(req.Amount) {
		s.writeError(w, http.StatusBadRequest, "amount must be a non-negative number")
		return
	}

	s.writeJSON(w, http.StatusOK, types.CalculateImpactResponse{Impact: impact.Calculate(req.Amount)})
}

func validAmount(amount float64) bool {
	return amount >= 0 && !math.IsInf(amount, 0) && !math.IsNaN(amount)
}
