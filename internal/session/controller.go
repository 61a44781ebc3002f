package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"sync"
	"time"

	"foodshare/internal/impact"
	"foodshare/internal/resolver"
	"foodshare/internal/utils"
	"foodshare/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	DefaultImpactPath     = "/impact"
	defaultBackendTimeout = 5 * time.Second

	shareTitle = "My Donation Impact at Community Food Share"
)

type Options struct {
	// LoadingDelay is how long the loading slide shows before the local
	// impact is presented.
	LoadingDelay   time.Duration
	BackendTimeout time.Duration
	ImpactPath     string
}

type Dependencies struct {
	Navigator Navigator
	Store     Store
	Backend   Backend
	Encoder   Encoder
	Resolver  Resolver
	Logger    logrus.FieldLogger
}

// Controller owns the state of one donor's presentation. Every public method
// holds the controller's lock for its whole run, so handlers never
// interleave. Slow work (the loading delay and backend calls) runs in
// background goroutines that report back through the reducer.
type Controller struct {
	mu    sync.Mutex
	state types.SessionState

	nav      Navigator
	store    Store
	backend  Backend
	encoder  Encoder
	resolver Resolver
	logger   logrus.FieldLogger
	opts     Options

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now func() time.Time
}

func NewController(deps Dependencies, opts Options) *Controller {
	if opts.ImpactPath == "" {
		opts.ImpactPath = DefaultImpactPath
	}
	if opts.BackendTimeout <= 0 {
		opts.BackendTimeout = defaultBackendTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Controller{
		state:    types.NewSessionState(),
		nav:      deps.Navigator,
		store:    deps.Store,
		backend:  deps.Backend,
		encoder:  deps.Encoder,
		resolver: deps.Resolver,
		logger:   deps.Logger,
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		now:      time.Now,
	}
}

// ShareLink is what a donor shares after the presentation.
type ShareLink struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Init handles a page load of u. Donor parameters found in the URL start the
// personalized presentation; sensitive plain-text parameters are moved into
// an encrypted token in the visible URL first.
func (c *Controller) Init(u *url.URL) types.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return c.state
	}

	c.nav.Push(u)
	res := c.resolver.Resolve(u)
	upgradeErr := c.upgradeURL(u, res)

	c.apply(Started{Personalized: res.Personalized})

	switch {
	case errors.Is(res.DecodeErr, types.ErrConfiguration), errors.Is(upgradeErr, types.ErrConfiguration):
		c.apply(Failed{Message: msgNotConfigured})
		c.apply(Noticed{Notice: noticeNotConfigured})
	case res.DecodeErr != nil:
		c.apply(Noticed{Notice: noticeDecodeFailed})
	}

	if q := c.nav.Current().RawQuery; q != "" {
		c.store.Set(KeyOriginalURLParams, q)
	}
	if res.FirstName != "" {
		c.store.Set(KeyDonorFirstName, res.FirstName)
	}
	if res.Encrypted {
		c.setJSON(KeySecureWrappedDonorData, res.Record)
	}

	switch {
	case res.HasWrappedData:
		c.setJSON(KeyWrappedDonorData, res.WrappedData)
		c.setJSON(KeyDonorParams, res.AllParams)
		c.apply(LoadingStarted{DonorEmail: res.Email})
		c.present(res.Amount, &noticeWelcomeBackWrapped)

	case res.Email != "":
		c.store.Set(KeyDonorEmail, res.Email)
		c.apply(LookupStarted{})
		c.lookupDonor(res.Email)

	case res.RequestedAmount != nil && *res.RequestedAmount > 0:
		c.apply(LoadingStarted{})
		c.present(utils.RoundFloat64(*res.RequestedAmount, 2), nil)
	}

	return c.state
}

// upgradeURL replaces visible sensitive parameters with an encrypted token.
func (c *Controller) upgradeURL(u *url.URL, res *resolver.Resolved) error {
	if !res.NeedsUpgrade {
		return nil
	}
	if c.encoder == nil {
		return types.ErrConfiguration
	}

	// the requested amount stays visible, see resolver.SecureQuery
	rec := res.Record
	rec.Amount = nil

	token, err := c.encoder.EncodeRecord(rec)
	if err != nil {
		c.logger.WithError(err).Error("failed to encrypt donor parameters, leaving url unchanged")
		return err
	}

	secured := *u
	secured.RawQuery = resolver.SecureQuery(u.Query(), token).Encode()
	c.nav.Replace(&secured)

	return nil
}

// Submit starts the presentation for a donation entered on the welcome slide.
func (c *Controller) Submit(amount float64, email string) (types.SessionState, error) {
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return c.Snapshot(), fmt.Errorf("%w: %v", types.ErrInvalidAmount, amount)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return c.state, types.ErrSessionClosed
	}

	c.apply(Submitted{Amount: amount, Email: email})
	if email != "" {
		c.store.Set(KeyDonorEmail, email)
	}

	c.navigateToImpact(amount, email)

	var notice *types.Notice
	if _, ok := c.store.Get(KeyWrappedDonorData); ok {
		notice = &noticeWelcomeBackSubmitted
	}

	c.logDonation(amount, email)
	c.present(amount, notice)

	return c.state, nil
}

func (c *Controller) navigateToImpact(amount float64, email string) {
	if c.nav.Current().Path == c.opts.ImpactPath {
		return
	}

	wrapped, hasWrapped := c.wrappedPayload()
	if email != "" || hasWrapped {
		payload := wrapped
		if payload == nil {
			payload = make(map[string]any)
		}
		if email != "" {
			payload["email"] = email
		}
		payload["amount"] = amount
		payload["donationDate"] = c.now().Format(time.DateOnly)

		if u, ok := c.secureImpactURL(payload); ok {
			c.nav.Push(u)
			return
		}
	}

	// anonymous donations only carry the amount
	q := url.Values{}
	q.Set("amount", formatAmount(amount))
	c.nav.Push(&url.URL{Path: c.opts.ImpactPath, RawQuery: q.Encode()})
}

func (c *Controller) secureImpactURL(payload map[string]any) (*url.URL, bool) {
	if c.encoder == nil {
		return nil, false
	}

	link, err := c.encoder.SecureURL(c.opts.ImpactPath, payload)
	if err != nil {
		c.logger.WithError(err).Warn("failed to build secure impact url")
		return nil, false
	}

	u, err := url.Parse(link)
	if err != nil {
		c.logger.WithError(err).WithField("url", link).Warn("failed to parse secure impact url")
		return nil, false
	}

	return u, true
}

func (c *Controller) wrappedPayload() (map[string]any, bool) {
	raw, ok := c.store.Get(KeyWrappedDonorData)
	if !ok {
		return nil, false
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		c.logger.WithError(err).Warn("failed to parse stored wrapped donor data")
		return nil, false
	}
	return payload, true
}

func (c *Controller) Next() types.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apply(NavigatedNext{})
	return c.state
}

func (c *Controller) Previous() types.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apply(NavigatedPrevious{})
	return c.state
}

// Reset clears the session and returns to the entry slide. Personalized
// sessions stay on the impact page with donorUI kept in the URL.
func (c *Controller) Reset() types.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		return c.state
	}

	personalized := c.state.Personalized
	c.apply(Reset{})
	c.store.Clear()

	if personalized {
		c.nav.Push(&url.URL{Path: c.opts.ImpactPath, RawQuery: "donorUI=true"})
	} else {
		c.nav.Push(&url.URL{Path: "/"})
	}

	return c.state
}

// Share builds a link that replays this donor's presentation. Only summary
// giving figures are included. If encryption fails the current URL is shared.
func (c *Controller) Share() ShareLink {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := map[string]any{"amount": c.state.Amount}
	if c.state.HasDonorEmail() {
		payload["email"] = *c.state.DonorEmail
	}
	if name, ok := c.store.Get(KeyDonorFirstName); ok && name != "" {
		payload["firstName"] = name
	}
	if raw, ok := c.store.Get(KeyWrappedDonorData); ok {
		var wrapped types.DonorRecord
		if err := json.Unmarshal([]byte(raw), &wrapped); err != nil {
			c.logger.WithError(err).Warn("failed to parse stored wrapped donor data")
		} else {
			addSummaryFigures(payload, wrapped)
		}
	}

	link := ShareLink{
		Title: shareTitle,
		Text:  shareText(c.state),
		URL:   c.nav.Current().String(),
	}

	if c.encoder == nil {
		c.logger.Warn("encryption is not configured, sharing current url")
		return link
	}

	secure, err := c.encoder.SecureURL(c.opts.ImpactPath, payload)
	if err != nil {
		c.logger.WithError(err).Warn("failed to build secure share url, sharing current url")
		return link
	}

	link.URL = secure
	return link
}

func addSummaryFigures(payload map[string]any, rec types.DonorRecord) {
	if v := utils.PtrFloat64(rec.LastGiftAmount); v != 0 {
		payload["lastGiftAmount"] = v
	}
	if v := utils.PtrFloat64(rec.LifetimeGiving); v != 0 {
		payload["lifetimeGiving"] = v
	}
	if v := utils.PtrInt(rec.TotalGifts); v != 0 {
		payload["totalGifts"] = v
	}
	if v := utils.PtrInt(rec.ConsecutiveYearsGiving); v != 0 {
		payload["consecutiveYearsGiving"] = v
	}
}

func shareText(state types.SessionState) string {
	var meals, people int
	if state.Impact != nil {
		meals = state.Impact.MealsProvided
		people = state.Impact.PeopleServed
	}

	return fmt.Sprintf(
		"I just donated $%s to Community Food Share, providing %d meals and helping %d people in our community!",
		formatAmount(state.Amount), meals, people,
	)
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// Location is the session's current URL.
func (c *Controller) Location() *url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.nav.Current()
}

func (c *Controller) Snapshot() types.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Settle blocks until all background work started so far has finished.
func (c *Controller) Settle() {
	c.wg.Wait()
}

// Close abandons pending background work and waits for it to stop. A closed
// controller starts no new work and no longer writes to its store.
func (c *Controller) Close() {
	c.mu.Lock()
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
}

// closed must be called with c.mu held.
func (c *Controller) closed() bool {
	return c.ctx.Err() != nil
}

func (c *Controller) apply(evt Event) {
	c.state = Reduce(c.state, evt)
}

func (c *Controller) setJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("failed to store session value")
		return
	}
	c.store.Set(key, string(data))
}

// spawn must be called with c.mu held, which orders it against Close.
func (c *Controller) spawn(fn func(ctx context.Context)) {
	if c.closed() {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
}

// present shows the locally computed impact for amount once the loading delay
// has passed, then asks the backend for a fresher one.
func (c *Controller) present(amount float64, notice *types.Notice) {
	gen := c.state.Generation

	c.spawn(func(ctx context.Context) {
		if !sleep(ctx, c.opts.LoadingDelay) {
			return
		}

		computed := impact.Calculate(amount)

		c.mu.Lock()
		current := c.state.Generation == gen
		c.apply(ImpactComputed{Generation: gen, Amount: amount, Impact: computed})
		if current && notice != nil {
			c.apply(Noticed{Notice: *notice})
		}
		c.mu.Unlock()

		if current {
			c.recalculate(ctx, gen, amount)
		}
	})
}

// recalculate replaces the local impact with the backend's. Failure keeps the
// local impact and never moves the slide.
func (c *Controller) recalculate(ctx context.Context, gen uint64, amount float64) {
	if c.backend == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.BackendTimeout)
	defer cancel()

	result, err := c.backend.CalculateImpact(ctx, amount)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil || result == nil {
		c.logger.WithError(err).WithField("amount", amount).Warn("failed to recalculate impact, keeping local impact")
		c.apply(RecalculationFailed{Generation: gen})
		return
	}

	c.apply(ImpactRecalculated{Generation: gen, Impact: *result})
}

func (c *Controller) lookupDonor(email string) {
	gen := c.state.Generation

	c.spawn(func(ctx context.Context) {
		var (
			lookup *types.DonorLookup
			err    = types.ErrDonorNotFound
		)
		if c.backend != nil {
			lctx, cancel := context.WithTimeout(ctx, c.opts.BackendTimeout)
			lookup, err = c.backend.LookupDonor(lctx, email)
			cancel()
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.state.Generation != gen {
			return
		}

		if err == nil && lookup != nil && lookup.Impact != nil {
			c.apply(DonorLoaded{
				Generation: gen,
				Amount:     lookup.Donation.Amount,
				Email:      lookup.Donation.Email,
				Impact:     *lookup.Impact,
			})
			c.apply(Noticed{Notice: noticeWelcomeBackLookup})
			return
		}

		if err != nil && !errors.Is(err, types.ErrDonorNotFound) {
			c.logger.WithError(err).Warn("donor lookup failed, treating donor as not found")
		}
		c.apply(LookupFinished{Generation: gen})
		c.apply(Noticed{Notice: noticeDonorNotFound})
	})
}

func (c *Controller) logDonation(amount float64, email string) {
	if c.backend == nil {
		return
	}

	req := types.LogDonationRequest{
		Amount:    formatAmount(amount),
		Timestamp: c.now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Email:     email,
	}

	c.spawn(func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, c.opts.BackendTimeout)
		defer cancel()

		if err := c.backend.LogDonation(ctx, req); err != nil {
			c.logger.WithError(err).Warn("failed to log donation")
		}
	})
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
