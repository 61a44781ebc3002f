// Package resolver turns the URL a donor arrived on into a normalized donor
// session, from either the encrypted `data` token or the legacy mail-merge
// parameters.
package resolver

import (
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"foodshare/internal/codec"
	"foodshare/internal/utils"
	"foodshare/pkg/types"

	"github.com/go-playground/form/v4"
	"github.com/sirupsen/logrus"
)

// placeholderPattern matches unresolved mail-merge tags such as *|LAST_GIF_A|*.
var placeholderPattern = regexp.MustCompile(`^\*\|[^|]+\|\*$`)

// sensitiveParams are the legacy parameters that must not stay visible in the
// address bar.
var sensitiveParams = []string{
	"firstGiftDate",
	"lastGiftDate",
	"lastGiftAmount",
	"lifetimeGiving",
	"consecutiveYearsGiving",
	"totalGifts",
	"largestGiftAmount",
}

// Decoder decodes an encrypted donor token.
type Decoder interface {
	Decode(token string) (*types.DonorRecord, error)
}

type Resolver struct {
	decoder Decoder
	form    *form.Decoder
	logger  logrus.FieldLogger
}

func New(decoder Decoder, logger logrus.FieldLogger) *Resolver {
	return &Resolver{
		decoder: decoder,
		form:    form.NewDecoder(),
		logger:  logger,
	}
}

// Resolved is the donor session recovered from a URL.
type Resolved struct {
	Email     string
	FirstName string

	// HasWrappedData reports whether the URL carried enough giving history to
	// personalize the presentation without a backend lookup.
	HasWrappedData bool
	WrappedData    *types.DonorRecord

	// Record holds every real donor field found, wrapped or not.
	Record        types.DonorRecord
	AllParams     map[string]any
	OriginalQuery string
	Encrypted     bool
	Personalized  bool

	// Amount is derived from the wrapped data and is only meaningful when
	// HasWrappedData is set.
	Amount          float64
	RequestedAmount *float64

	// DecodeErr is set when a `data` token was present but could not be decoded.
	DecodeErr error

	// NeedsUpgrade is set when sensitive legacy parameters with real values
	// are visible without an encrypted token.
	NeedsUpgrade bool
}

func (r *Resolver) Resolve(u *url.URL) *Resolved {
	query := u.Query()

	out := &Resolved{
		OriginalQuery: u.RawQuery,
		Personalized:  query.Get("donorUI") == "true",
	}

	if token := query.Get(codec.TokenName); token != "" {
		rec, err := r.decode(token)
		if err == nil {
			r.fromRecord(out, *rec, query)
			return out
		}

		r.logger.WithError(err).Warn("failed to decode donor token, falling back to legacy parameters")
		out.DecodeErr = err
	}

	r.fromLegacy(out, query)
	return out
}

func (r *Resolver) decode(token string) (*types.DonorRecord, error) {
	if r.decoder == nil {
		return nil, types.ErrConfiguration
	}

	return r.decoder.Decode(token)
}

// fromRecord applies the same wrapped data rule as legacy parameters, so a URL
// reads the same before and after its parameters are encrypted. Links this
// service builds for sharing or after a submission carry an amount and always
// count as wrapped.
func (r *Resolver) fromRecord(out *Resolved, rec types.DonorRecord, query url.Values) {
	out.Encrypted = true
	out.Record = rec
	out.Email = utils.PtrString(rec.Email)
	out.FirstName = utils.PtrString(rec.FirstName)
	out.AllParams = recordParams(rec)

	out.RequestedAmount = rec.Amount
	if out.RequestedAmount == nil {
		out.RequestedAmount = visibleAmount(query)
	}

	shared := utils.PtrFloat64(rec.Amount) > 0
	if !shared && !hasWrappedData(rec) {
		return
	}

	out.HasWrappedData = true
	out.WrappedData = &out.Record
	out.Amount = DeriveAmount(rec)

	// shared links carry the shared amount instead of giving history
	if shared && !hasGivingFigures(rec) {
		out.Amount = utils.RoundFloat64(*rec.Amount, 2)
	}
}

func (r *Resolver) fromLegacy(out *Resolved, query url.Values) {
	out.AllParams = make(map[string]any, len(query))
	for k := range query {
		out.AllParams[k] = query.Get(k)
	}

	var params legacyParams
	if err := r.form.Decode(&params, scrubPlaceholders(query)); err != nil {
		r.logger.WithError(err).Warn("failed to decode legacy donor parameters")
	}

	rec := params.record(r.logger)
	out.Record = rec
	out.Email = utils.PtrString(rec.Email)
	out.FirstName = utils.PtrString(rec.FirstName)
	out.RequestedAmount = rec.Amount

	// placeholders and invalid values are absent, so only real values are
	// worth hiding
	out.NeedsUpgrade = query.Get(codec.TokenName) == "" && hasSensitiveValues(rec)

	if hasWrappedData(rec) {
		out.HasWrappedData = true
		out.WrappedData = &out.Record
		out.Amount = DeriveAmount(rec)
	}
}

// visibleAmount reads the plain `amount` parameter kept next to a token.
func visibleAmount(query url.Values) *float64 {
	params := legacyParams{Amount: scrubPlaceholders(query).Get("amount")}
	return params.record(nil).Amount
}

// hasWrappedData requires a positive gift figure and at least one gift date.
func hasWrappedData(rec types.DonorRecord) bool {
	hasDate := rec.FirstGiftDate != nil || rec.LastGiftDate != nil
	return hasGivingFigures(rec) && hasDate
}

func hasGivingFigures(rec types.DonorRecord) bool {
	return utils.PtrFloat64(rec.LastGiftAmount) > 0 || utils.PtrFloat64(rec.LifetimeGiving) > 0
}

func hasSensitiveValues(rec types.DonorRecord) bool {
	return rec.FirstGiftDate != nil || rec.LastGiftDate != nil ||
		rec.LastGiftAmount != nil || rec.LifetimeGiving != nil ||
		rec.ConsecutiveYearsGiving != nil || rec.TotalGifts != nil ||
		rec.LargestGiftAmount != nil
}

func isSensitive(key string) bool {
	for _, p := range sensitiveParams {
		if p == key {
			return true
		}
	}
	return false
}

// scrubPlaceholders returns a copy of query with mail-merge placeholders and
// blank values removed.
func scrubPlaceholders(query url.Values) url.Values {
	out := make(url.Values, len(query))
	for k, values := range query {
		for _, v := range values {
			v = strings.TrimSpace(v)
			if v == "" || placeholderPattern.MatchString(v) {
				continue
			}
			out[k] = append(out[k], v)
		}
	}
	return out
}

func recordParams(rec types.DonorRecord) map[string]any {
	out := make(map[string]any)
	data, err := json.Marshal(rec)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}

// legacyParams are the individually named parameters written by email
// campaigns. Values stay strings until validated.
type legacyParams struct {
	Email                  string `form:"email"`
	FirstName              string `form:"firstName"`
	FirstNameSpaced        string `form:"First Name"`
	FirstNameSnake         string `form:"first_name"`
	FirstGiftDate          string `form:"firstGiftDate"`
	LastGiftDate           string `form:"lastGiftDate"`
	LastGiftAmount         string `form:"lastGiftAmount"`
	LifetimeGiving         string `form:"lifetimeGiving"`
	ConsecutiveYearsGiving string `form:"consecutiveYearsGiving"`
	TotalGifts             string `form:"totalGifts"`
	LargestGiftAmount      string `form:"largestGiftAmount"`
	LargestGiftDate        string `form:"largestGiftDate"`
	GivingFY22             string `form:"givingFY22"`
	GivingFY23             string `form:"givingFY23"`
	GivingFY24             string `form:"givingFY24"`
	GivingFY25             string `form:"givingFY25"`
	Amount                 string `form:"amount"`
}

// record converts the raw parameters into a donor record, dropping any value
// that does not satisfy the donor record field rules.
func (p legacyParams) record(logger logrus.FieldLogger) types.DonorRecord {
	var dropped []string
	drop := func(key string) { dropped = append(dropped, key) }

	text := func(key, v string, valid func(string) bool) *string {
		if v == "" {
			return nil
		}
		if valid != nil && !valid(v) {
			drop(key)
			return nil
		}
		return &v
	}

	number := func(key, v string) *float64 {
		if v == "" {
			return nil
		}
		n, ok := parseFigure(v)
		if !ok {
			drop(key)
			return nil
		}
		return &n
	}

	count := func(key, v string) *int {
		if v == "" {
			return nil
		}
		n, ok := parseFigure(v)
		if !ok || n != math.Trunc(n) || n > math.MaxInt32 {
			drop(key)
			return nil
		}
		c := int(n)
		return &c
	}

	firstName := p.FirstName
	if firstName == "" {
		firstName = p.FirstNameSpaced
	}
	if firstName == "" {
		firstName = p.FirstNameSnake
	}

	rec := types.DonorRecord{
		FirstName:              text("firstName", firstName, nil),
		Email:                  text("email", p.Email, codec.ValidEmail),
		FirstGiftDate:          text("firstGiftDate", p.FirstGiftDate, codec.ValidDate),
		LastGiftDate:           text("lastGiftDate", p.LastGiftDate, codec.ValidDate),
		LastGiftAmount:         number("lastGiftAmount", p.LastGiftAmount),
		LifetimeGiving:         number("lifetimeGiving", p.LifetimeGiving),
		ConsecutiveYearsGiving: count("consecutiveYearsGiving", p.ConsecutiveYearsGiving),
		TotalGifts:             count("totalGifts", p.TotalGifts),
		LargestGiftAmount:      number("largestGiftAmount", p.LargestGiftAmount),
		LargestGiftDate:        text("largestGiftDate", p.LargestGiftDate, codec.ValidDate),
		GivingFY22:             number("givingFY22", p.GivingFY22),
		GivingFY23:             number("givingFY23", p.GivingFY23),
		GivingFY24:             number("givingFY24", p.GivingFY24),
		GivingFY25:             number("givingFY25", p.GivingFY25),
		Amount:                 number("amount", p.Amount),
	}

	if len(dropped) > 0 && logger != nil {
		logger.WithField("params", dropped).Warn("ignoring invalid donor parameters")
	}

	return rec
}

// parseFigure reads a non-negative number as written by donor CRM exports,
// which may group thousands with commas ("1,000.50").
func parseFigure(v string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	if err != nil || n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
