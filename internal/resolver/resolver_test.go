package resolver

import (
	"io"
	"net/url"
	"testing"

	"foodshare/internal/codec"
	"foodshare/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestResolver(t *testing.T) (*Resolver, *codec.SecureCodec) {
	t.Helper()
	c, err := codec.New("resolver-test-secret-value")
	require.NoError(t, err)
	return New(c, testLogger()), c
}

func f64(v float64) *float64 { return &v }

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestResolveLegacyPlaceholderFallsThroughToLifetime(t *testing.T) {
	r, _ := newTestResolver(t)

	got := r.Resolve(mustParse(t, "/impact?lastGiftAmount=*|LAST_GIF_A|*&lifetimeGiving=500&firstGiftDate=2023-01-01"))

	assert.False(t, got.Encrypted)
	assert.True(t, got.HasWrappedData)
	assert.Nil(t, got.Record.LastGiftAmount)
	assert.Equal(t, 50.0, got.Amount)
	assert.True(t, got.NeedsUpgrade)
}

func TestResolveLegacyLastGiftWins(t *testing.T) {
	r, _ := newTestResolver(t)

	got := r.Resolve(mustParse(t, "/impact?lastGiftAmount=250&lifetimeGiving=9000&totalGifts=3&lastGiftDate=04/01/2024"))

	assert.True(t, got.HasWrappedData)
	assert.Equal(t, 250.0, got.Amount)
}

func TestResolveLegacyWrappedDataRule(t *testing.T) {
	r, _ := newTestResolver(t)

	tests := []struct {
		name    string
		query   string
		wrapped bool
	}{
		{"amount and date", "lastGiftAmount=20&firstGiftDate=2020-01-01", true},
		{"lifetime and last date", "lifetimeGiving=20&lastGiftDate=01/02/2020", true},
		{"amount without date", "lastGiftAmount=20", false},
		{"date without amount", "firstGiftDate=2020-01-01&totalGifts=4", false},
		{"zero amounts", "lastGiftAmount=0&lifetimeGiving=0&firstGiftDate=2020-01-01", false},
		{"placeholder date", "lastGiftAmount=20&firstGiftDate=*|FIRS_GIF_D|*", false},
		{"malformed date", "lastGiftAmount=20&firstGiftDate=yesterday", false},
		{"negative amount", "lastGiftAmount=-20&firstGiftDate=2020-01-01", false},
		{"non numeric amount", "lastGiftAmount=lots&firstGiftDate=2020-01-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(mustParse(t, "/impact?"+tt.query))
			assert.Equal(t, tt.wrapped, got.HasWrappedData)
			if !tt.wrapped {
				assert.Nil(t, got.WrappedData)
			}
		})
	}
}

func TestResolveLegacyIdentity(t *testing.T) {
	r, _ := newTestResolver(t)

	t.Run("first name variants", func(t *testing.T) {
		got := r.Resolve(mustParse(t, "/impact?First+Name=Rosa&first_name=Other"))
		assert.Equal(t, "Rosa", got.FirstName)

		got = r.Resolve(mustParse(t, "/impact?first_name=Lee"))
		assert.Equal(t, "Lee", got.FirstName)

		got = r.Resolve(mustParse(t, "/impact?firstName=*|FNAME|*&first_name=Lee"))
		assert.Equal(t, "Lee", got.FirstName)
	})

	t.Run("email", func(t *testing.T) {
		got := r.Resolve(mustParse(t, "/impact?email=donor%40example.org"))
		assert.Equal(t, "donor@example.org", got.Email)
		assert.False(t, got.HasWrappedData)
		assert.False(t, got.NeedsUpgrade)

		got = r.Resolve(mustParse(t, "/impact?email=*|EMAIL|*"))
		assert.Empty(t, got.Email)

		got = r.Resolve(mustParse(t, "/impact?email=nope"))
		assert.Empty(t, got.Email)
	})

	t.Run("mode and amount", func(t *testing.T) {
		got := r.Resolve(mustParse(t, "/impact?donorUI=true&amount=35"))
		assert.True(t, got.Personalized)
		require.NotNil(t, got.RequestedAmount)
		assert.Equal(t, 35.0, *got.RequestedAmount)
		assert.Equal(t, "true", got.AllParams["donorUI"])
		assert.Equal(t, "donorUI=true&amount=35", got.OriginalQuery)

		got = r.Resolve(mustParse(t, "/impact?donorUI=1"))
		assert.False(t, got.Personalized)
	})
}

func TestResolveEncrypted(t *testing.T) {
	r, c := newTestResolver(t)

	token, err := c.Encode(map[string]any{
		"firstName":      "Ana",
		"email":          "ana@example.org",
		"lifetimeGiving": 1200.0,
		"totalGifts":     4,
		"firstGiftDate":  "2021-05-01",
	})
	require.NoError(t, err)

	q := url.Values{codec.TokenName: {token}, "donorUI": {"true"}, "email": {"legacy@example.org"}}
	got := r.Resolve(mustParse(t, "/impact?"+q.Encode()))

	require.NoError(t, got.DecodeErr)
	assert.True(t, got.Encrypted)
	assert.True(t, got.Personalized)
	assert.True(t, got.HasWrappedData)
	assert.Equal(t, "ana@example.org", got.Email)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, 300.0, got.Amount)
	assert.Equal(t, 1200.0, got.AllParams["lifetimeGiving"])
	assert.False(t, got.NeedsUpgrade)
}

func TestResolveSharedLinkUsesSharedAmount(t *testing.T) {
	r, c := newTestResolver(t)

	link, err := c.SecureURL("/impact", map[string]any{"amount": 42.5, "firstName": "Ana"})
	require.NoError(t, err)

	got := r.Resolve(mustParse(t, link))
	assert.True(t, got.HasWrappedData)
	assert.Equal(t, 42.5, got.Amount)

	link, err = c.SecureURL("/impact", map[string]any{"amount": 42.5, "lastGiftAmount": 80.0})
	require.NoError(t, err)

	got = r.Resolve(mustParse(t, link))
	assert.Equal(t, 80.0, got.Amount)
}

func TestResolveEncryptedWrappedDataRule(t *testing.T) {
	r, c := newTestResolver(t)

	tests := []struct {
		name    string
		payload map[string]any
		query   url.Values
		wrapped bool
		amount  float64
		request *float64
	}{
		{
			name:    "giving history with date",
			payload: map[string]any{"lastGiftAmount": 60.0, "lastGiftDate": "2024-02-02"},
			wrapped: true,
			amount:  60,
		},
		{
			name:    "giving history without date",
			payload: map[string]any{"email": "ana@example.org", "lastGiftAmount": 60.0},
		},
		{
			name:    "identity only",
			payload: map[string]any{"email": "ana@example.org"},
		},
		{
			name:    "visible amount next to token",
			payload: map[string]any{"lifetimeGiving": 900.0},
			query:   url.Values{"amount": {"35"}},
			request: f64(35),
		},
		{
			name:    "placeholder visible amount",
			payload: map[string]any{"lifetimeGiving": 900.0},
			query:   url.Values{"amount": {"*|AMOUNT|*"}},
		},
		{
			name:    "token amount",
			payload: map[string]any{"amount": 12.0},
			query:   url.Values{"amount": {"35"}},
			wrapped: true,
			amount:  12,
			request: f64(12),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := c.Encode(tt.payload)
			require.NoError(t, err)

			q := url.Values{codec.TokenName: {token}}
			for k, v := range tt.query {
				q[k] = v
			}

			got := r.Resolve(mustParse(t, "/impact?"+q.Encode()))
			assert.True(t, got.Encrypted)
			assert.Equal(t, tt.wrapped, got.HasWrappedData)
			assert.Equal(t, tt.amount, got.Amount)
			assert.Equal(t, tt.request, got.RequestedAmount)
			if !tt.wrapped {
				assert.Nil(t, got.WrappedData)
			}
		})
	}
}

func TestResolveLegacyNeedsUpgrade(t *testing.T) {
	r, _ := newTestResolver(t)

	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{"real giving figure", "email=a%40b.co&lastGiftAmount=25", true},
		{"real date only", "firstGiftDate=2020-01-01", true},
		{"placeholders only", "email=a%40b.co&lastGiftAmount=*|LAST_GIF_A|*&firstGiftDate=*|FIRS_GIF_D|*", false},
		{"invalid values only", "lastGiftAmount=lots&firstGiftDate=yesterday", false},
		{"identity only", "email=a%40b.co&firstName=Ana&amount=20", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(mustParse(t, "/impact?"+tt.query))
			assert.Equal(t, tt.want, got.NeedsUpgrade)
		})
	}
}

func TestResolveLegacyFigures(t *testing.T) {
	r, _ := newTestResolver(t)

	got := r.Resolve(mustParse(t, "/impact?lifetimeGiving=1,250.50&totalGifts=3.0&consecutiveYearsGiving=2.5&largestGiftAmount=1e400"))

	require.NotNil(t, got.Record.LifetimeGiving)
	assert.Equal(t, 1250.5, *got.Record.LifetimeGiving)
	require.NotNil(t, got.Record.TotalGifts)
	assert.Equal(t, 3, *got.Record.TotalGifts)
	assert.Nil(t, got.Record.ConsecutiveYearsGiving)
	assert.Nil(t, got.Record.LargestGiftAmount)
}

func TestResolveBadTokenFallsBack(t *testing.T) {
	r, _ := newTestResolver(t)

	got := r.Resolve(mustParse(t, "/impact?data=garbage&email=donor%40example.org"))

	assert.ErrorIs(t, got.DecodeErr, types.ErrDecode)
	assert.False(t, got.Encrypted)
	assert.False(t, got.HasWrappedData)
	assert.Equal(t, "donor@example.org", got.Email)
	assert.False(t, got.NeedsUpgrade)
}

func TestResolveWithoutDecoder(t *testing.T) {
	r := New(nil, testLogger())

	got := r.Resolve(mustParse(t, "/impact?data=anything"))
	assert.ErrorIs(t, got.DecodeErr, types.ErrConfiguration)
}

func TestDeriveAmount(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }

	tests := []struct {
		name string
		rec  types.DonorRecord
		want float64
	}{
		{"last gift", types.DonorRecord{LastGiftAmount: f(250), LifetimeGiving: f(10)}, 250},
		{"average gift", types.DonorRecord{LifetimeGiving: f(1000), TotalGifts: i(3)}, 333.33},
		{"lifetime share", types.DonorRecord{LifetimeGiving: f(4321)}, 432.1},
		{"lifetime floor", types.DonorRecord{LifetimeGiving: f(100)}, 50},
		{"lifetime ceiling", types.DonorRecord{LifetimeGiving: f(250000)}, 1000},
		{"zero gifts ignored", types.DonorRecord{LifetimeGiving: f(500), TotalGifts: i(0)}, 50},
		{"default", types.DonorRecord{}, DefaultAmount},
		{"rounded", types.DonorRecord{LastGiftAmount: f(19.999)}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DeriveAmount(tt.rec), 1e-9)
		})
	}
}

func TestSecureQuery(t *testing.T) {
	query := url.Values{
		"email":          {"a@b.co"},
		"lastGiftAmount": {"25"},
		"First Name":     {"Ana"},
		"donorUI":        {"true"},
		"utm_source":     {"newsletter"},
		"amount":         {"35"},
	}

	got := SecureQuery(query, "TOKEN")

	assert.Equal(t, url.Values{
		"data":       {"TOKEN"},
		"donorUI":    {"true"},
		"utm_source": {"newsletter"},
		"amount":     {"35"},
	}, got)
}
