package session

import (
	"context"
	"errors"
	"io"
	"math"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"foodshare/internal/codec"
	"foodshare/internal/impact"
	"foodshare/internal/resolver"
	"foodshare/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "session-test-secret-value"

type mapStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMapStore() *mapStore { return &mapStore{data: make(map[string]string)} }

func (s *mapStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *mapStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

func (s *mapStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
}

type fakeBackend struct {
	mu sync.Mutex

	lookup    *types.DonorLookup
	lookupErr error
	mealBoost int
	calcErr   error
	logged    []types.LogDonationRequest
	calcCalls int
}

func (b *fakeBackend) LookupDonor(ctx context.Context, identifier string) (*types.DonorLookup, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lookupErr != nil {
		return nil, b.lookupErr
	}
	if b.lookup == nil {
		return nil, types.ErrDonorNotFound
	}
	return b.lookup, nil
}

func (b *fakeBackend) LogDonation(ctx context.Context, req types.LogDonationRequest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logged = append(b.logged, req)
	return nil
}

func (b *fakeBackend) CalculateImpact(ctx context.Context, amount float64) (*types.DonationImpact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calcCalls++
	if b.calcErr != nil {
		return nil, b.calcErr
	}
	result := impact.Calculate(amount)
	result.MealsProvided += b.mealBoost
	return &result, nil
}

func (b *fakeBackend) loggedRequests() []types.LogDonationRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]types.LogDonationRequest(nil), b.logged...)
}

type harness struct {
	ctrl    *Controller
	nav     *URLNavigator
	store   *mapStore
	backend *fakeBackend
	codec   *codec.SecureCodec
}

func newHarness(t *testing.T, delay time.Duration) *harness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := codec.New(testSecret)
	require.NoError(t, err)

	h := &harness{
		nav:     NewURLNavigator(),
		store:   newMapStore(),
		backend: &fakeBackend{mealBoost: 1000},
		codec:   c,
	}
	h.ctrl = NewController(Dependencies{
		Navigator: h.nav,
		Store:     h.store,
		Backend:   h.backend,
		Encoder:   c,
		Resolver:  resolver.New(c, logger),
		Logger:    logger,
	}, Options{LoadingDelay: delay})
	h.ctrl.now = func() time.Time { return time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC) }

	t.Cleanup(h.ctrl.Close)
	return h
}

func parse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestInitWrappedLegacyURL(t *testing.T) {
	h := newHarness(t, 0)

	state := h.ctrl.Init(parse(t, "/impact?lastGiftAmount=250&firstGiftDate=2023-01-01&email=ana%40example.org&firstName=Ana&donorUI=true"))
	assert.Equal(t, types.SlideLoading, state.Step)
	assert.True(t, state.IsLoading)
	assert.True(t, state.Personalized)

	current := h.nav.Current()
	assert.Equal(t, "/impact", current.Path)
	assert.ElementsMatch(t, []string{"data", "donorUI"}, keys(current.Query()))

	rec, err := h.codec.Decode(current.Query().Get("data"))
	require.NoError(t, err)
	assert.Equal(t, 250.0, *rec.LastGiftAmount)
	assert.Equal(t, "ana@example.org", *rec.Email)

	h.ctrl.Settle()
	state = h.ctrl.Snapshot()

	assert.Equal(t, types.SlideDonorIntro, state.Step)
	assert.Equal(t, 250.0, state.Amount)
	assert.False(t, state.IsLoading)
	require.NotNil(t, state.Impact)
	assert.Equal(t, 380+1000, state.Impact.MealsProvided)
	require.NotNil(t, state.Notice)
	assert.Equal(t, noticeWelcomeBackWrapped, *state.Notice)

	name, _ := h.store.Get(KeyDonorFirstName)
	assert.Equal(t, "Ana", name)
	original, _ := h.store.Get(KeyOriginalURLParams)
	assert.Contains(t, original, "data=")
	assert.NotContains(t, original, "lastGiftAmount")
	_, ok := h.store.Get(KeyWrappedDonorData)
	assert.True(t, ok)
	_, ok = h.store.Get(KeyDonorParams)
	assert.True(t, ok)
	assert.Empty(t, h.backend.loggedRequests())
}

func TestInitRecalculationFailureKeepsLocalImpact(t *testing.T) {
	h := newHarness(t, 0)
	h.backend.calcErr = errors.New("connection refused")

	h.ctrl.Init(parse(t, "/impact?lastGiftAmount=250&lastGiftDate=2024-02-02"))
	h.ctrl.Settle()

	state := h.ctrl.Snapshot()
	assert.Equal(t, types.SlideDonorIntro, state.Step)
	require.NotNil(t, state.Impact)
	assert.Equal(t, 380, state.Impact.MealsProvided)
	assert.Nil(t, state.Error)
	assert.False(t, state.IsLoading)
}

func TestInitEncryptedURL(t *testing.T) {
	h := newHarness(t, 0)

	link, err := h.codec.SecureURL("/impact", map[string]any{
		"firstName":      "Ana",
		"lifetimeGiving": 1000.0,
		"totalGifts":     4,
		"lastGiftDate":   "2024-12-01",
	})
	require.NoError(t, err)

	h.ctrl.Init(parse(t, link))
	h.ctrl.Settle()

	state := h.ctrl.Snapshot()
	assert.Equal(t, 250.0, state.Amount)
	assert.Equal(t, types.SlideDonorIntro, state.Step)
	assert.False(t, state.Personalized)

	_, ok := h.store.Get(KeySecureWrappedDonorData)
	assert.True(t, ok)
}

func TestInitReloadOfUpgradedURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		upgraded bool
		step     types.Slide
		amount   float64
	}{
		{
			name: "unresolved placeholders",
			url:  "/impact?email=a%40b.co&lastGiftAmount=*|LAST_GIF_A|*&firstGiftDate=*|FIRS_GIF_D|*",
			step: types.SlideWelcome,
		},
		{
			name:     "giving history",
			url:      "/impact?email=a%40b.co&lastGiftAmount=250&firstGiftDate=2023-01-01&amount=35&donorUI=true",
			upgraded: true,
			step:     types.SlideDonorIntro,
			amount:   250,
		},
		{
			name:     "giving history without date",
			url:      "/impact?email=a%40b.co&lastGiftAmount=250&firstGiftDate=*|FIRS_GIF_D|*",
			upgraded: true,
			step:     types.SlideWelcome,
		},
		{
			name:     "requested amount with partial history",
			url:      "/impact?lifetimeGiving=900&amount=35",
			upgraded: true,
			step:     types.SlideDonorIntro,
			amount:   35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := newHarness(t, 0)
			first.ctrl.Init(parse(t, tt.url))
			first.ctrl.Settle()
			loaded := first.ctrl.Snapshot()

			current := first.nav.Current()
			assert.Equal(t, tt.upgraded, current.Query().Has(codec.TokenName))
			if tt.upgraded {
				assert.False(t, current.Query().Has("lastGiftAmount") || current.Query().Has("lifetimeGiving"))
			}

			second := newHarness(t, 0)
			second.ctrl.Init(current)
			second.ctrl.Settle()
			reloaded := second.ctrl.Snapshot()

			assert.Equal(t, tt.step, loaded.Step)
			assert.Equal(t, tt.amount, loaded.Amount)

			assert.Equal(t, loaded.Step, reloaded.Step)
			assert.Equal(t, loaded.Amount, reloaded.Amount)
			assert.Equal(t, loaded.Personalized, reloaded.Personalized)
			assert.Equal(t, loaded.DonorEmail, reloaded.DonorEmail)
			assert.Equal(t, loaded.Notice, reloaded.Notice)
		})
	}
}

func TestInitDonorLookup(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		h := newHarness(t, 0)
		found := impact.Calculate(75)
		h.backend.lookup = &types.DonorLookup{
			Donation: types.DonorDonation{Amount: 75, Email: "found@example.org"},
			Impact:   &found,
		}

		state := h.ctrl.Init(parse(t, "/impact?email=found%40example.org"))
		assert.True(t, state.IsLoading)

		h.ctrl.Settle()
		state = h.ctrl.Snapshot()
		assert.Equal(t, types.SlideDonorIntro, state.Step)
		assert.Equal(t, 75.0, state.Amount)
		assert.Equal(t, "found@example.org", *state.DonorEmail)
		assert.Equal(t, noticeWelcomeBackLookup, *state.Notice)

		email, _ := h.store.Get(KeyDonorEmail)
		assert.Equal(t, "found@example.org", email)
	})

	for name, lookupErr := range map[string]error{
		"not found":     nil,
		"network error": errors.New("dial tcp: timeout"),
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, 0)
			h.backend.lookupErr = lookupErr

			h.ctrl.Init(parse(t, "/impact?email=new%40example.org"))
			h.ctrl.Settle()

			state := h.ctrl.Snapshot()
			assert.Equal(t, types.SlideWelcome, state.Step)
			assert.False(t, state.IsLoading)
			assert.Nil(t, state.Impact)
			assert.Nil(t, state.Error)
			assert.Equal(t, noticeDonorNotFound, *state.Notice)
		})
	}
}

func TestInitBadToken(t *testing.T) {
	h := newHarness(t, 0)

	state := h.ctrl.Init(parse(t, "/impact?data=not-a-real-token"))
	assert.Equal(t, types.SlideWelcome, state.Step)
	require.NotNil(t, state.Notice)
	assert.Equal(t, types.NoticeDestructive, state.Notice.Variant)
	assert.Equal(t, noticeDecodeFailed, *state.Notice)
	assert.Nil(t, state.Error)
}

func TestInitWithoutEncryption(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	nav := NewURLNavigator()
	ctrl := NewController(Dependencies{
		Navigator: nav,
		Store:     newMapStore(),
		Resolver:  resolver.New(nil, logger),
		Logger:    logger,
	}, Options{})
	t.Cleanup(ctrl.Close)

	state := ctrl.Init(parse(t, "/impact?lastGiftAmount=20&firstGiftDate=2020-01-01"))
	require.NotNil(t, state.Error)
	assert.Equal(t, msgNotConfigured, *state.Error)
	assert.Equal(t, noticeNotConfigured, *state.Notice)
	assert.Equal(t, "lastGiftAmount=20&firstGiftDate=2020-01-01", nav.Current().RawQuery)

	ctrl.Settle()
	assert.Equal(t, types.SlideDonorIntro, ctrl.Snapshot().Step)
}

func TestInitAmountOnly(t *testing.T) {
	h := newHarness(t, 0)

	h.ctrl.Init(parse(t, "/impact?amount=40"))
	h.ctrl.Settle()

	state := h.ctrl.Snapshot()
	assert.Equal(t, 40.0, state.Amount)
	assert.Equal(t, types.SlideDonorIntro, state.Step)
	assert.Nil(t, state.Notice)
	assert.Empty(t, h.backend.loggedRequests())
}

func TestSubmit(t *testing.T) {
	h := newHarness(t, 0)

	state, err := h.ctrl.Submit(100, "donor@example.org")
	require.NoError(t, err)
	assert.Equal(t, types.SlideLoading, state.Step)
	assert.True(t, state.IsLoading)

	current := h.nav.Current()
	assert.Equal(t, "/impact", current.Path)
	rec, err := h.codec.Decode(current.Query().Get("data"))
	require.NoError(t, err)
	assert.Equal(t, "donor@example.org", *rec.Email)
	assert.Equal(t, 100.0, *rec.Amount)

	h.ctrl.Settle()
	state = h.ctrl.Snapshot()
	assert.Equal(t, types.SlideDonorIntro, state.Step)
	assert.Equal(t, 100.0, state.Amount)
	assert.Equal(t, 152+1000, state.Impact.MealsProvided)
	assert.Nil(t, state.Notice)

	assert.Equal(t, []types.LogDonationRequest{{
		Amount:    "100",
		Timestamp: "2025-06-01T12:30:00.000Z",
		Email:     "donor@example.org",
	}}, h.backend.loggedRequests())

	state = h.ctrl.Next()
	assert.Equal(t, types.SlideMeals, state.Step)
	state = h.ctrl.Previous()
	assert.Equal(t, types.SlideDonorSummary, state.Step)
	assert.Equal(t, types.DirectionBackward, state.TransitionDirection)
}

func TestSubmitAnonymous(t *testing.T) {
	h := newHarness(t, 0)

	_, err := h.ctrl.Submit(25.5, "")
	require.NoError(t, err)
	assert.Equal(t, "/impact?amount=25.5", h.nav.Current().String())

	h.ctrl.Settle()
	logged := h.backend.loggedRequests()
	require.Len(t, logged, 1)
	assert.Empty(t, logged[0].Email)
	assert.Equal(t, "25.5", logged[0].Amount)
}

func TestSubmitOnImpactPageKeepsURL(t *testing.T) {
	h := newHarness(t, 0)
	h.ctrl.Init(parse(t, "/impact?donorUI=true"))

	_, err := h.ctrl.Submit(10, "")
	require.NoError(t, err)
	assert.Equal(t, "/impact?donorUI=true", h.nav.Current().String())
	h.ctrl.Settle()
}

func TestSubmitRejectsInvalidAmount(t *testing.T) {
	h := newHarness(t, 0)

	for _, amount := range []float64{-1, math.NaN(), math.Inf(1)} {
		state, err := h.ctrl.Submit(amount, "")
		assert.ErrorIs(t, err, types.ErrInvalidAmount)
		assert.Equal(t, types.SlideWelcome, state.Step)
	}
	assert.Empty(t, h.backend.loggedRequests())
}

func TestResetSupersedesPendingWork(t *testing.T) {
	h := newHarness(t, 20*time.Millisecond)

	_, err := h.ctrl.Submit(10, "")
	require.NoError(t, err)

	state := h.ctrl.Reset()
	assert.Equal(t, types.SlideWelcome, state.Step)
	assert.Equal(t, types.SlideLoading, state.PreviousStep)

	h.ctrl.Settle()
	state = h.ctrl.Snapshot()
	assert.Equal(t, types.SlideWelcome, state.Step)
	assert.Nil(t, state.Impact)
	assert.Zero(t, state.Amount)
	assert.Zero(t, h.backend.calcCalls)
}

func TestNewerSubmissionWins(t *testing.T) {
	h := newHarness(t, 20*time.Millisecond)

	_, err := h.ctrl.Submit(10, "")
	require.NoError(t, err)
	_, err = h.ctrl.Submit(500, "")
	require.NoError(t, err)

	h.ctrl.Settle()
	state := h.ctrl.Snapshot()
	assert.Equal(t, 500.0, state.Amount)
	assert.Equal(t, 760+1000, state.Impact.MealsProvided)
	assert.Len(t, h.backend.loggedRequests(), 2)
}

func TestReset(t *testing.T) {
	t.Run("personalized", func(t *testing.T) {
		h := newHarness(t, 0)
		h.ctrl.Init(parse(t, "/impact?lastGiftAmount=250&firstGiftDate=2023-01-01&firstName=Ana&donorUI=true"))
		h.ctrl.Settle()

		state := h.ctrl.Reset()
		assert.True(t, state.Personalized)
		assert.Equal(t, types.SlideWelcome, state.Step)
		assert.Equal(t, "/impact?donorUI=true", h.nav.Current().String())

		_, ok := h.store.Get(KeyDonorFirstName)
		assert.False(t, ok)
	})

	t.Run("standard", func(t *testing.T) {
		h := newHarness(t, 0)
		_, err := h.ctrl.Submit(30, "")
		require.NoError(t, err)
		h.ctrl.Settle()

		state := h.ctrl.Reset()
		assert.Equal(t, types.DirectionBackward, state.TransitionDirection)
		assert.Equal(t, "/", h.nav.Current().String())
	})
}

func TestShare(t *testing.T) {
	h := newHarness(t, 0)
	h.ctrl.Init(parse(t, "/impact?lastGiftAmount=250&lifetimeGiving=2000&totalGifts=8&largestGiftAmount=900&firstGiftDate=2023-01-01&firstName=Ana"))
	h.ctrl.Settle()

	link := h.ctrl.Share()
	assert.Equal(t, shareTitle, link.Title)
	assert.Equal(t, "I just donated $250 to Community Food Share, providing 1380 meals and helping 127 people in our community!", link.Text)
	require.True(t, strings.HasPrefix(link.URL, "/impact?data="))

	rec, err := h.codec.Decode(parse(t, link.URL).Query().Get("data"))
	require.NoError(t, err)
	assert.Equal(t, 250.0, *rec.Amount)
	assert.Equal(t, "Ana", *rec.FirstName)
	assert.Equal(t, 2000.0, *rec.LifetimeGiving)
	assert.Equal(t, 8, *rec.TotalGifts)
	assert.Nil(t, rec.LargestGiftAmount)
	assert.Nil(t, rec.FirstGiftDate)
}

func keys(v url.Values) []string {
	out := make([]string, 0, len(v))
	for k := range v {
		out = append(out, k)
	}
	return out
}

func TestClosedControllerStartsNoWork(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.ctrl.Close()

	state := h.ctrl.Init(parse(t, "/impact?lastGiftAmount=250&firstGiftDate=2023-01-01&email=ana%40example.org"))
	assert.Equal(t, types.SlideWelcome, state.Step)

	_, err := h.ctrl.Submit(10, "ana@example.org")
	assert.ErrorIs(t, err, types.ErrSessionClosed)

	h.ctrl.Reset()
	h.ctrl.Settle()

	for _, key := range []string{KeyWrappedDonorData, KeyOriginalURLParams, KeyDonorEmail} {
		_, ok := h.store.Get(key)
		assert.False(t, ok, key)
	}
	assert.Empty(t, h.backend.loggedRequests())
	assert.Zero(t, h.backend.calcCalls)
}

func TestCloseDuringSubmissions(t *testing.T) {
	h := newHarness(t, time.Hour)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.ctrl.Submit(float64(i), ""); err != nil {
				assert.ErrorIs(t, err, types.ErrSessionClosed)
			}
		}()
	}

	h.ctrl.Close()
	wg.Wait()
	h.ctrl.Settle()

	_, err := h.ctrl.Submit(1, "")
	assert.ErrorIs(t, err, types.ErrSessionClosed)
}
