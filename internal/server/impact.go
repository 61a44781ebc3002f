package server

import (
	"errors"
	"net/http"
	"strings"

	"foodshare/internal/codec"
	"foodshare/internal/sequencer"
	"foodshare/internal/session"
	"foodshare/pkg/types"
)

// sessionView is what the presentation front end renders from.
type sessionView struct {
	State        types.SessionState `json:"state"`
	Slide        string             `json:"slide"`
	IsFirstSlide bool               `json:"isFirstSlide"`
	IsLastSlide  bool               `json:"isLastSlide"`
	URL          string             `json:"url"`
}

func (s *Service) writeView(w http.ResponseWriter, ctrl *session.Controller, state types.SessionState) {
	s.writeJSON(w, http.StatusOK, sessionView{
		State:        state,
		Slide:        state.Step.String(),
		IsFirstSlide: sequencer.IsFirstSlide(state.Step, state.Personalized),
		IsLastSlide:  sequencer.IsLastSlide(state.Step),
		URL:          ctrl.Location().String(),
	})
}

// activeController returns the controller of the caller's existing session,
// writing a 404 when there is none.
func (s *Service) activeController(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	if id, ok := s.readSessionID(r); ok {
		if ctrl, ok := s.sessions.Get(id); ok {
			return ctrl, true
		}
	}

	s.writeError(w, http.StatusNotFound, "no active session")
	return nil, false
}

func (s *Service) handleGetImpact(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessionID(w, r)
	if err != nil {
		s.logger.WithError(err).Error("failed to start session")
		s.internalServerError(w)
		return
	}

	ctrl := s.sessions.GetOrCreate(id)
	state := ctrl.Init(r.URL)

	s.writeView(w, ctrl, state)
}

func (s *Service) handleGetImpactState(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.activeController(w, r)
	if !ok {
		return
	}

	s.writeView(w, ctrl, ctrl.Snapshot())
}

func (s *Service) handlePostImpactNext(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.activeController(w, r)
	if !ok {
		return
	}

	s.writeView(w, ctrl, ctrl.Next())
}

func (s *Service) handlePostImpactPrevious(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.activeController(w, r)
	if !ok {
		return
	}

	s.writeView(w, ctrl, ctrl.Previous())
}

func (s *Service) handlePostImpactReset(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.activeController(w, r)
	if !ok {
		return
	}

	s.writeView(w, ctrl, ctrl.Reset())
}

// handlePostImpactDonate accepts the welcome form. It may be the first request
// of a session, since the form is also shown on the landing page.
func (s *Service) handlePostImpactDonate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	var donation types.DonationForm
	if err := decoder.Decode(&donation, r.Form); err != nil {
		s.logger.WithError(err).Debug("failed to decode donation form")
		s.writeError(w, http.StatusBadRequest, "amount must be a number")
		return
	}

	donation.Email = strings.TrimSpace(donation.Email)
	if donation.Email != "" && !codec.ValidEmail(donation.Email) {
		s.writeError(w, http.StatusBadRequest, "email is invalid")
		return
	}

	id, err := s.sessionID(w, r)
	if err != nil {
		s.logger.WithError(err).Error("failed to start session")
		s.internalServerError(w)
		return
	}

	ctrl := s.sessions.GetOrCreate(id)
	state, err := ctrl.Submit(donation.Amount, donation.Email)
	if err != nil {
		if errors.Is(err, types.ErrInvalidAmount) {
			s.writeError(w, http.StatusBadRequest, "amount must not be negative")
			return
		}
		if errors.Is(err, types.ErrSessionClosed) {
			s.writeError(w, http.StatusNotFound, "no active session")
			return
		}
		s.logger.WithError(err).Error("failed to submit donation")
		s.internalServerError(w)
		return
	}

	s.writeView(w, ctrl, state)
}

func (s *Service) handleGetImpactShare(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := s.activeController(w, r)
	if !ok {
		return
	}

	s.writeJSON(w, http.StatusOK, ctrl.Share())
}
