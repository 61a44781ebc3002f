package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"foodshare/internal/session"
	"foodshare/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// DonationStore persists logged donations.
type DonationStore interface {
	LogDonation(ctx context.Context, donation *types.DonationLog) error
	LatestByEmail(ctx context.Context, email string) (*types.DonationLog, error)
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	donations DonationStore
	sessions  *session.Registry

	cookie *securecookie.SecureCookie

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	donations DonationStore,
	sessions *session.Registry,
	cookie *securecookie.SecureCookie,
) *Service {
	mux := flow.New()

	s := &Service{
		logger:    logger,
		config:    config,
		donations: donations,
		sessions:  sessions,
		cookie:    cookie,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	// unmatched paths never reach route middleware, so slash stripping wraps
	// the whole mux
	s.server.Handler = s.StripTrailingSlash(mux)

	return s
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	// presentation session
	r.HandleFunc("/impact", s.handleGetImpact, http.MethodGet)
	r.HandleFunc("/impact/state", s.handleGetImpactState, http.MethodGet)
	r.HandleFunc("/impact/next", s.handlePostImpactNext, http.MethodPost)
	r.HandleFunc("/impact/previous", s.handlePostImpactPrevious, http.MethodPost)
	r.HandleFunc("/impact/reset", s.handlePostImpactReset, http.MethodPost)
	r.HandleFunc("/impact/donate", s.handlePostImpactDonate, http.MethodPost)
	r.HandleFunc("/impact/share", s.handleGetImpactShare, http.MethodGet)

	// donation backend
	r.Group(func(r *flow.Mux) {
		r.Use(s.LimitBody)

		r.HandleFunc("/api/donor/:id", s.handleGetDonor, http.MethodGet)
		r.HandleFunc("/api/log-donation", s.handlePostLogDonation, http.MethodPost)
		r.HandleFunc("/api/calculate-impact", s.handlePostCalculateImpact, http.MethodPost)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
