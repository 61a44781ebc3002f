package seed

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"foodshare/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRepo struct {
	logged    []*types.DonationLog
	deleted   []string
	failAfter int
}

func (r *recordingRepo) LogDonation(ctx context.Context, donation *types.DonationLog) error {
	if r.failAfter > 0 && len(r.logged) >= r.failAfter {
		return errors.New("insert failed")
	}
	r.logged = append(r.logged, donation)
	return nil
}

func (r *recordingRepo) DeleteByEmailSuffix(ctx context.Context, suffix string) (int64, error) {
	r.deleted = append(r.deleted, suffix)
	return 3, nil
}

func TestSeedFakeDonations(t *testing.T) {
	repo := &recordingRepo{}

	require.NoError(t, SeedFakeDonations(context.Background(), repo, 12, true))
	assert.Equal(t, []string{SeedEmailSuffix}, repo.deleted)
	require.Len(t, repo.logged, 12)

	for _, d := range repo.logged {
		require.NotNil(t, d.Email)
		assert.True(t, strings.HasSuffix(*d.Email, SeedEmailSuffix))
		assert.Greater(t, d.Amount, 0.0)
	}
}

func TestSeedFakeDonationsSkipsAndFails(t *testing.T) {
	repo := &recordingRepo{}
	require.NoError(t, SeedFakeDonations(context.Background(), repo, 0, true))
	assert.Empty(t, repo.deleted)

	repo = &recordingRepo{failAfter: 2}
	err := SeedFakeDonations(context.Background(), repo, 5, false)
	assert.ErrorContains(t, err, "fake donation 3")
}

func TestFakeDonationWithinLastYear(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		d := FakeDonation(rng, now)
		assert.False(t, d.DonatedAt.After(now))
		assert.True(t, d.DonatedAt.After(now.AddDate(-1, 0, -1)))
	}
}
